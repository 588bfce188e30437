package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"taskroll/internal/services"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks [query]",
	Short: "List the tasks currently eligible for selection",
	Long: `List the candidate tasks the scheduler draws from, sorted by
urgency weight. An optional query fuzzily filters by description.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := tracker.FetchCandidates(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to fetch candidates: %w", err)
		}

		if len(args) > 0 {
			tasks = services.FilterTasks(tasks, args[0])
		} else {
			sort.SliceStable(tasks, func(i, j int) bool {
				return tasks[i].Urgency > tasks[j].Urgency
			})
		}

		if len(tasks) == 0 {
			fmt.Println("No eligible tasks.")
			return nil
		}

		width := 80
		if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
			width = w
		}

		headerStyle := lipgloss.NewStyle().Bold(true)
		dimStyle := lipgloss.NewStyle().Faint(true)

		fmt.Println(headerStyle.Render(fmt.Sprintf("%-6s %8s %8s  %s", "ID", "URGENCY", "EST", "DESCRIPTION")))
		for _, task := range tasks {
			estimate := "-"
			if task.Estimate != nil {
				estimate = task.Estimate.String()
			}

			desc := task.Description
			for _, tag := range task.Tags {
				desc += " +" + tag
			}
			if task.Project != "" {
				desc += " pro:" + task.Project
			}

			line := truncateLine(fmt.Sprintf("%-6d %8.1f %8s  %s", task.ID, task.Urgency, estimate, desc), width)

			if task.Urgency <= 0 {
				// Never eligible for the weighted draw; shown for context.
				fmt.Println(dimStyle.Render(line))
			} else {
				fmt.Println(line)
			}
		}

		return nil
	},
}

// truncateLine trims a line to the terminal width by display cells rather
// than bytes, so multibyte descriptions are never split mid-rune.
func truncateLine(line string, width int) string {
	if lipgloss.Width(line) <= width {
		return line
	}

	runes := []rune(line)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
