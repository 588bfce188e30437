package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"taskroll/internal/domain"
)

var (
	exportFormat string
	exportPeriod string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export focus session history",
	Long:  "Export your focus session history in markdown or CSV format.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historySvc == nil {
			return fmt.Errorf("focus history is disabled in the config")
		}

		var since time.Time
		switch exportPeriod {
		case "week":
			since = time.Now().AddDate(0, 0, -7)
		case "month":
			since = time.Now().AddDate(0, -1, 0)
		default: // "all"
			since = time.Time{}
		}

		records, err := historySvc.Recent(cmd.Context(), since)
		if err != nil {
			return fmt.Errorf("failed to fetch focus records: %w", err)
		}

		switch exportFormat {
		case "csv":
			return exportCSV(records)
		default:
			return exportMarkdown(records)
		}
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "md", "Output format: md or csv")
	exportCmd.Flags().StringVar(&exportPeriod, "period", "week", "Time period: week, month, or all")
}

func exportMarkdown(records []*domain.FocusRecord) error {
	fmt.Printf("# taskroll Focus Export\n\n")
	fmt.Printf("| Started | Task | Project | Planned | Outcome | Branch |\n")
	fmt.Printf("|---------|------|---------|---------|---------|--------|\n")

	for _, record := range records {
		fmt.Printf("| %s | %s | %s | %s | %s | %s |\n",
			record.StartedAt.Format("2006-01-02 15:04"),
			record.Description,
			record.Project,
			record.Planned,
			record.Outcome,
			record.GitBranch,
		)
	}

	return nil
}

func exportCSV(records []*domain.FocusRecord) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"started_at", "ended_at", "task_uuid", "description", "project", "planned", "outcome", "git_branch", "git_commit"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range records {
		endedAt := ""
		if record.EndedAt != nil {
			endedAt = record.EndedAt.Format(time.RFC3339)
		}

		row := []string{
			record.StartedAt.Format(time.RFC3339),
			endedAt,
			record.TaskUUID,
			record.Description,
			record.Project,
			record.Planned.String(),
			string(record.Outcome),
			record.GitBranch,
			record.GitCommit,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}
