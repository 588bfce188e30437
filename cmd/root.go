// Package cmd provides the CLI commands for taskroll.
package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskroll/internal/adapters/git"
	"taskroll/internal/adapters/notification"
	"taskroll/internal/adapters/storage"
	"taskroll/internal/adapters/taskwarrior"
	"taskroll/internal/adapters/tui"
	"taskroll/internal/config"
	"taskroll/internal/ports"
	"taskroll/internal/services"
)

var (
	// Version info (set at build time via ldflags)
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	// Global flags
	taskBinFlag string
	dbPath      string

	// Global dependencies
	appConfig  *config.Config
	tracker    ports.TaskTracker
	historyDB  ports.HistoryRepository
	historySvc *services.HistoryService
	notifier   *notification.Notifier
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "taskroll",
	Short: "taskroll - roll a die to decide what to work on next",
	Long: `taskroll sits on top of Taskwarrior and periodically picks a single
task (or a break) for you to focus on: roll a d6, take a break on the
sentinel, otherwise work roll*10 minutes on a task drawn by urgency.

Run "taskroll" with no arguments to start the live scheduler.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanupServices()
	},
	RunE: runScheduler,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&taskBinFlag, "task-bin", "", "Path to the Taskwarrior binary (default: from config)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the focus history database (default: ~/.taskroll/history.db)")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("taskroll\nVersion: {{.Version}}\n")

	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mcpCmd)
}

// initializeServices sets up the adapters shared by all commands.
func initializeServices() error {
	var err error
	appConfig, err = config.Load()
	if err != nil {
		appConfig = config.DefaultConfig()
	}

	notifier = notification.New(&appConfig.Notifications)

	binary := appConfig.Taskwarrior.Binary
	if taskBinFlag != "" {
		binary = taskBinFlag
	}
	tracker = taskwarrior.New(binary, appConfig.Taskwarrior.Filters, appConfig.Taskwarrior.Coefficients)

	if appConfig.History.Enabled {
		if dbPath == "" {
			dbPath = config.GetDBPath(appConfig)
		}
		if err := os.MkdirAll(appConfig.History.DataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		historyDB, err = storage.Open(dbPath)
		if err != nil {
			return fmt.Errorf("failed to initialize focus history: %w", err)
		}
		historySvc = services.NewHistoryService(historyDB, git.NewDetector())
	}

	return nil
}

// cleanupServices closes all resources.
func cleanupServices() error {
	if historyDB != nil {
		return historyDB.Close()
	}
	return nil
}

// setupSignalHandler sets up a context that cancels on interrupt signals.
func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	return ctx
}

// runScheduler implements the bare "taskroll" command: the live scheduling
// loop.
func runScheduler(cmd *cobra.Command, args []string) error {
	ctx := setupSignalHandler()

	selector := services.NewSelector(
		rand.New(rand.NewSource(time.Now().UnixNano())),
		time.Duration(appConfig.Scheduler.BreakLength),
		time.Duration(appConfig.Scheduler.SlotLength),
	)

	binary := appConfig.Taskwarrior.Binary
	if taskBinFlag != "" {
		binary = taskBinFlag
	}
	engine := services.NewEngine(tracker, selector, historySvc, services.InteractionCommands{
		TaskBin:       binary,
		DeferMutation: appConfig.Interaction.DeferMutation,
		Open:          appConfig.Interaction.OpenCommand,
		Breakdown:     appConfig.Interaction.BreakdownCommand,
	}, appConfig.History.AutoLog)

	if appConfig.FirstRun {
		appConfig.FirstRun = false
		_ = config.Save(appConfig)
	}

	return tui.Run(ctx, engine, notifier, appConfig.Theme)
}
