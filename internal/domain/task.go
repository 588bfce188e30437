// Package domain contains the core entities for taskroll.
// These entities represent the scheduler's view of the world and are
// independent of the Taskwarrior binary or any terminal framework.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Common domain errors.
var (
	ErrNoTaskAvailable = errors.New("no task available for selection")
	ErrNoCurrentTask   = errors.New("no task is currently active")
	ErrInvalidTaskJSON = errors.New("invalid task export JSON")
)

// taskTimeLayout is the compact UTC timestamp format used by Taskwarrior
// exports, e.g. "20260826T143000Z".
const taskTimeLayout = "20060102T150405Z"

// Task is a point-in-time snapshot of one Taskwarrior task. The scheduler
// never mutates it; changes go back through the tracker boundary and are
// picked up by an explicit refresh.
type Task struct {
	ID          int
	UUID        string
	Description string
	Tags        []string
	Project     string
	Due         *time.Time
	Estimate    *time.Duration
	Annotations []Annotation
	Urgency     float64
}

// Annotation is a timestamped note attached to a task.
type Annotation struct {
	Entry       time.Time
	Description string
}

// taskJSON mirrors the wire shape of `task export`.
type taskJSON struct {
	ID          int              `json:"id"`
	UUID        string           `json:"uuid"`
	Description string           `json:"description"`
	Tags        []string         `json:"tags"`
	Project     string           `json:"project"`
	Due         string           `json:"due"`
	Estimate    string           `json:"estimate"`
	Annotations []annotationJSON `json:"annotations"`
	Urgency     float64          `json:"urgency"`
}

type annotationJSON struct {
	Entry       string `json:"entry"`
	Description string `json:"description"`
}

// UnmarshalJSON decodes a single task from Taskwarrior export output.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw taskJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTaskJSON, err)
	}

	task := Task{
		ID:          raw.ID,
		UUID:        raw.UUID,
		Description: raw.Description,
		Tags:        raw.Tags,
		Project:     raw.Project,
		Urgency:     raw.Urgency,
	}

	if raw.Due != "" {
		due, err := time.Parse(taskTimeLayout, raw.Due)
		if err != nil {
			return fmt.Errorf("%w: bad due timestamp %q", ErrInvalidTaskJSON, raw.Due)
		}
		task.Due = &due
	}

	if raw.Estimate != "" {
		estimate, err := ParseTaskDuration(raw.Estimate)
		if err != nil {
			return fmt.Errorf("%w: bad estimate %q", ErrInvalidTaskJSON, raw.Estimate)
		}
		task.Estimate = &estimate
	}

	for _, a := range raw.Annotations {
		entry, err := time.Parse(taskTimeLayout, a.Entry)
		if err != nil {
			return fmt.Errorf("%w: bad annotation timestamp %q", ErrInvalidTaskJSON, a.Entry)
		}
		task.Annotations = append(task.Annotations, Annotation{
			Entry:       entry,
			Description: a.Description,
		})
	}

	*t = task
	return nil
}

// DecodeTasks parses a full `task export` payload.
func DecodeTasks(data []byte) ([]Task, error) {
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTaskJSON, err)
	}
	return tasks, nil
}

// ParseTaskDuration parses an ISO 8601 duration as emitted by Taskwarrior
// duration UDAs (e.g. "PT1H30M", "P2DT4H", "P2M") or a plain Go duration
// string. Calendar units follow Taskwarrior's fixed conversions: a year is
// 365 days, a month 30 days.
func ParseTaskDuration(s string) (time.Duration, error) {
	if !strings.HasPrefix(s, "P") {
		return time.ParseDuration(s)
	}

	var total time.Duration
	var digits strings.Builder
	inTime := false

	for _, r := range s[1:] {
		switch {
		case r == 'T':
			inTime = true
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		default:
			if digits.Len() == 0 {
				return 0, fmt.Errorf("malformed ISO duration %q", s)
			}
			n, err := strconv.Atoi(digits.String())
			if err != nil {
				return 0, fmt.Errorf("malformed ISO duration %q", s)
			}
			digits.Reset()

			switch {
			case r == 'Y' && !inTime:
				total += time.Duration(n) * 365 * 24 * time.Hour
			case r == 'W' && !inTime:
				total += time.Duration(n) * 7 * 24 * time.Hour
			case r == 'D' && !inTime:
				total += time.Duration(n) * 24 * time.Hour
			case r == 'M' && !inTime:
				total += time.Duration(n) * 30 * 24 * time.Hour
			case r == 'H' && inTime:
				total += time.Duration(n) * time.Hour
			case r == 'M' && inTime:
				total += time.Duration(n) * time.Minute
			case r == 'S' && inTime:
				total += time.Duration(n) * time.Second
			default:
				return 0, fmt.Errorf("unsupported ISO duration unit %q in %q", r, s)
			}
		}
	}
	if digits.Len() != 0 {
		return 0, fmt.Errorf("malformed ISO duration %q", s)
	}
	return total, nil
}

// Label renders the one-line task summary shown above the countdown:
// "12: write the report +work +urgent pro:acme".
func (t *Task) Label() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d: %s", t.ID, t.Description)

	for _, tag := range t.Tags {
		b.WriteString(" +")
		b.WriteString(tag)
	}

	if t.Project != "" {
		b.WriteString(" pro:")
		b.WriteString(t.Project)
	}

	return b.String()
}

// DueIn returns the time until the due date, if one is set.
func (t *Task) DueIn(now time.Time) (time.Duration, bool) {
	if t.Due == nil {
		return 0, false
	}
	return t.Due.Sub(now), true
}
