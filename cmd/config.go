package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskroll/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		fmt.Printf("Config file: %s\n\n", path)
		fmt.Printf("taskwarrior.binary:       %s\n", appConfig.Taskwarrior.Binary)
		fmt.Printf("taskwarrior.filters:      %s\n", strings.Join(appConfig.Taskwarrior.Filters, " "))
		fmt.Printf("scheduler.break_length:   %s\n", appConfig.Scheduler.BreakLength)
		fmt.Printf("scheduler.slot_length:    %s\n", appConfig.Scheduler.SlotLength)
		fmt.Printf("interaction.defer:        %s\n", appConfig.Interaction.DeferMutation)
		fmt.Printf("interaction.open:         %s\n", strings.Join(appConfig.Interaction.OpenCommand, " "))
		fmt.Printf("interaction.breakdown:    %s\n", strings.Join(appConfig.Interaction.BreakdownCommand, " "))
		fmt.Printf("history.enabled:          %t\n", appConfig.History.Enabled)
		fmt.Printf("history.auto_log:         %t\n", appConfig.History.AutoLog)
		fmt.Printf("history.data_dir:         %s\n", appConfig.History.DataDir)
		fmt.Printf("notifications.enabled:    %t\n", appConfig.Notifications.Enabled)

		if len(appConfig.Taskwarrior.Coefficients) > 0 {
			fmt.Println("\nUrgency coefficient overrides:")
			for key, value := range appConfig.Taskwarrior.Coefficients {
				fmt.Printf("  %s = %v\n", key, value)
			}
		}

		return nil
	},
}
