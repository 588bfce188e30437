package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"taskroll/internal/domain"
)

var statsPeriod string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a dashboard of focus session statistics",
	Long:  `Display focus session counts, completion rate and time per project from the local history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historySvc == nil {
			return fmt.Errorf("focus history is disabled in the config")
		}

		ctx := cmd.Context()
		now := time.Now()

		var stats *domain.PeriodStats
		var err error
		switch statsPeriod {
		case "month":
			stats, err = historySvc.MonthStats(ctx, now)
		default:
			stats, err = historySvc.WeekStats(ctx, now)
		}
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		titleStyle := lipgloss.NewStyle().Bold(true)
		valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(appConfig.Theme.ColorWork))
		dimStyle := lipgloss.NewStyle().Faint(true)

		fmt.Println(titleStyle.Render(fmt.Sprintf("🎲 Focus stats — %s", stats.Label)))
		fmt.Println()
		fmt.Printf("Sessions:   %s\n", valueStyle.Render(fmt.Sprintf("%d", stats.Sessions)))
		fmt.Printf("Completed:  %s\n", valueStyle.Render(fmt.Sprintf("%d (%.0f%%)", stats.Completed, stats.CompletionRate()*100)))
		fmt.Printf("Rerolled:   %s\n", valueStyle.Render(fmt.Sprintf("%d", stats.Rerolled)))
		fmt.Printf("Focus time: %s\n", valueStyle.Render(formatStatsDuration(stats.FocusTime)))

		if len(stats.ByProject) > 0 {
			fmt.Println()
			fmt.Println(titleStyle.Render("By project"))

			type projectFocus struct {
				name  string
				focus time.Duration
			}
			projects := make([]projectFocus, 0, len(stats.ByProject))
			for name, focus := range stats.ByProject {
				projects = append(projects, projectFocus{name, focus})
			}
			sort.Slice(projects, func(i, j int) bool {
				return projects[i].focus > projects[j].focus
			})

			for _, p := range projects {
				barLen := 0
				if stats.FocusTime > 0 {
					barLen = int(float64(p.focus) / float64(stats.FocusTime) * 20)
				}
				bar := strings.Repeat("█", barLen)
				fmt.Printf("%-20s %s %s\n", p.name, dimStyle.Render(bar), formatStatsDuration(p.focus))
			}
		}

		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsPeriod, "period", "week", "Time period: week or month")
}

func formatStatsDuration(d time.Duration) string {
	hours := int(d / time.Hour)
	minutes := int(d/time.Minute) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh%02dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
