// Package taskwarrior implements the ports.TaskTracker interface by invoking
// the Taskwarrior binary as a subprocess.
package taskwarrior

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"taskroll/internal/domain"
	"taskroll/internal/ports"
)

// Client calls the task binary. Every method blocks until the subprocess
// exits; a non-zero exit or unparsable output propagates as an error with the
// tracker's stderr attached.
type Client struct {
	binary       string
	filters      []string
	coefficients map[string]float64
}

// Ensure Client implements ports.TaskTracker.
var _ ports.TaskTracker = (*Client)(nil)

// New creates a client for the given binary. filters narrow the candidate
// export (e.g. "+READY"); coefficients override urgency coefficients on top
// of the defaults that zero out the date-driven ones.
func New(binary string, filters []string, coefficients map[string]float64) *Client {
	merged := map[string]float64{
		// Selection weight should reflect only the residual urgency
		// signal, not date-driven boosts.
		"due":      0,
		"age":      0,
		"blocked":  0,
		"blocking": 0,
	}
	for key, value := range coefficients {
		merged[key] = value
	}

	return &Client{
		binary:       binary,
		filters:      filters,
		coefficients: merged,
	}
}

// FetchCandidates exports the tasks eligible for selection.
func (c *Client) FetchCandidates(ctx context.Context) ([]domain.Task, error) {
	args := c.coefficientArgs()
	args = append(args, c.filters...)
	args = append(args, "export")

	out, err := c.run(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve tasks: %w", err)
	}

	tasks, err := domain.DecodeTasks(out)
	if err != nil {
		return nil, fmt.Errorf("could not deserialize tasks: %w", err)
	}
	return tasks, nil
}

// FetchOne retrieves the current snapshot of a single task by UUID.
func (c *Client) FetchOne(ctx context.Context, uuid string) (*domain.Task, error) {
	args := c.coefficientArgs()
	args = append(args, "uuid:"+uuid, "export")

	out, err := c.run(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve task %s: %w", uuid, err)
	}

	tasks, err := domain.DecodeTasks(out)
	if err != nil {
		return nil, fmt.Errorf("could not deserialize task %s: %w", uuid, err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("task %s: %w", uuid, domain.ErrNoCurrentTask)
	}
	return &tasks[0], nil
}

// MarkComplete marks a task done.
func (c *Client) MarkComplete(ctx context.Context, uuid string) error {
	args := []string{"rc.confirmation=off", "uuid:" + uuid, "done"}
	if _, err := c.run(ctx, args); err != nil {
		return fmt.Errorf("could not mark %s done: %w", uuid, err)
	}
	return nil
}

// Modify applies field mutations to a task.
func (c *Client) Modify(ctx context.Context, uuid string, mutations ...string) error {
	args := append([]string{"rc.confirmation=off", "uuid:" + uuid, "modify"}, mutations...)
	if _, err := c.run(ctx, args); err != nil {
		return fmt.Errorf("could not modify %s: %w", uuid, err)
	}
	return nil
}

// coefficientArgs renders the urgency coefficient overrides as rc arguments,
// sorted for stable command lines.
func (c *Client) coefficientArgs() []string {
	keys := make([]string, 0, len(c.coefficients))
	for key := range c.coefficients {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	args := make([]string, 0, len(keys))
	for _, key := range keys {
		args = append(args, fmt.Sprintf("rc.urgency.%s.coefficient=%v", key, c.coefficients[key]))
	}
	return args
}

// run executes the task binary and returns stdout. On failure the tracker's
// stderr is folded into the error so the cause chain stays readable.
func (c *Client) run(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", c.binary, strings.Join(args, " "), err, detail)
		}
		return nil, fmt.Errorf("%s %s: %w", c.binary, strings.Join(args, " "), err)
	}

	return stdout.Bytes(), nil
}
