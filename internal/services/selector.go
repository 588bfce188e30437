// Package services contains the application use cases: the activity
// selection algorithm, the scheduling engine, and focus history logging.
package services

import (
	"math/rand"
	"time"

	"taskroll/internal/domain"
)

// dieSides is the size of the duration die. Rolls are zero-indexed; zero is
// the break sentinel rather than a literal roll of zero minutes.
const dieSides = 6

// Selector rolls the duration die and draws the next activity from a scored
// candidate set. The random source is injected so tests can seed it.
//
// The ritual comes from the Gladden Design Paper Apps TO/DO: roll a d6 for a
// work session, take a break on the sentinel, otherwise work roll*10 minutes.
type Selector struct {
	rng         *rand.Rand
	breakLength time.Duration
	slotLength  time.Duration
}

// NewSelector creates a selector with the given random source, break length
// and work-slot unit length.
func NewSelector(rng *rand.Rand, breakLength, slotLength time.Duration) *Selector {
	return &Selector{
		rng:         rng,
		breakLength: breakLength,
		slotLength:  slotLength,
	}
}

// Select rolls the die and returns the next activity. onBreak tells the
// selector the engine is already resting; the break sentinel is then
// re-interpreted as the minimum work bucket so breaks never chain without an
// explicit extension.
func (s *Selector) Select(now time.Time, tasks []domain.Task, onBreak bool) (domain.Activity, error) {
	roll := s.rng.Intn(dieSides)

	if roll == 0 && !onBreak {
		return domain.BreakActivity(now, s.breakLength), nil
	}
	if roll == 0 {
		roll = 1
	}

	target := time.Duration(roll) * s.slotLength

	task, err := s.pickWeighted(tasks)
	if err != nil {
		return domain.Activity{}, err
	}

	length := target
	if task.Estimate != nil && *task.Estimate < target {
		length = *task.Estimate
	}

	return domain.WorkingActivity(*task, now, length), nil
}

// pickWeighted draws one task with probability proportional to its urgency.
// Tasks with non-positive urgency are never eligible; if that leaves nothing
// to draw from, the selection fails explicitly so the data problem surfaces
// upstream instead of being papered over.
func (s *Selector) pickWeighted(tasks []domain.Task) (*domain.Task, error) {
	var total float64
	for i := range tasks {
		if w := tasks[i].Urgency; w > 0 {
			total += w
		}
	}
	if len(tasks) == 0 || total <= 0 {
		return nil, domain.ErrNoTaskAvailable
	}

	r := s.rng.Float64() * total
	var last *domain.Task
	for i := range tasks {
		w := tasks[i].Urgency
		if w <= 0 {
			continue
		}
		last = &tasks[i]
		r -= w
		if r < 0 {
			return &tasks[i], nil
		}
	}

	// Floating point slack can leave r marginally above zero; the last
	// eligible task absorbs it.
	return last, nil
}
