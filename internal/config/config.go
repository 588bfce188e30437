// Package config provides configuration management for taskroll.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for taskroll.
type Config struct {
	FirstRun      bool               `mapstructure:"first_run"`
	Taskwarrior   TaskwarriorConfig  `mapstructure:"taskwarrior"`
	Scheduler     SchedulerConfig    `mapstructure:"scheduler"`
	Interaction   InteractionConfig  `mapstructure:"interaction"`
	History       HistoryConfig      `mapstructure:"history"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Theme         ThemeConfig        `mapstructure:"theme"`
}

// TaskwarriorConfig locates the tracker binary and shapes the candidate
// export.
type TaskwarriorConfig struct {
	// Binary is the task executable.
	Binary string `mapstructure:"binary"`

	// Filters narrow the candidate export; tasks must additionally be
	// ready to start. Site-specific status filters (e.g. a backlog UDA)
	// belong here.
	Filters []string `mapstructure:"filters"`

	// Coefficients are extra urgency coefficient overrides applied on top
	// of the built-in zeroing of due, age, blocked and blocking.
	Coefficients map[string]float64 `mapstructure:"coefficients"`
}

// SchedulerConfig holds the duration die settings.
type SchedulerConfig struct {
	// BreakLength is the fixed rest length when the die lands on the
	// break sentinel.
	BreakLength Duration `mapstructure:"break_length"`

	// SlotLength is the work-slot unit: a roll of n yields n slots.
	SlotLength Duration `mapstructure:"slot_length"`
}

// InteractionConfig holds the external programs staged by handoff actions.
type InteractionConfig struct {
	// DeferMutation is the field mutation applied by the defer action.
	DeferMutation string `mapstructure:"defer_mutation"`

	// OpenCommand opens the current task externally; the task UUID is
	// appended, e.g. ["taskopen"].
	OpenCommand []string `mapstructure:"open_command"`

	// BreakdownCommand splits the current task into subtasks; the task
	// UUID is appended.
	BreakdownCommand []string `mapstructure:"breakdown_command"`
}

// HistoryConfig controls focus session logging.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// AutoLog opens a focus record for every selected task. When off,
	// logging starts only on the focus-session-start action.
	AutoLog bool `mapstructure:"auto_log"`

	DataDir string `mapstructure:"data_dir"`
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Sound   bool `mapstructure:"sound"`
}

// ThemeConfig holds theme customization settings.
type ThemeConfig struct {
	ColorWork          string `mapstructure:"color_work"`
	ColorBreak         string `mapstructure:"color_break"`
	ColorOverdue       string `mapstructure:"color_overdue"`
	ColorTitle         string `mapstructure:"color_title"`
	ColorHelp          string `mapstructure:"color_help"`
	WorkGradientStart  string `mapstructure:"work_gradient_start"`
	WorkGradientEnd    string `mapstructure:"work_gradient_end"`
	BreakGradientStart string `mapstructure:"break_gradient_start"`
	BreakGradientEnd   string `mapstructure:"break_gradient_end"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorWork:          "#7C6FE0",
		ColorBreak:         "#4ECDC4",
		ColorOverdue:       "#E06C75",
		ColorTitle:         "#6B7280",
		ColorHelp:          "#95A5A6",
		WorkGradientStart:  "#7C6FE0",
		WorkGradientEnd:    "#A78BFA",
		BreakGradientStart: "#4ECDC4",
		BreakGradientEnd:   "#2ECC71",
	}
}

// Duration is a wrapper around time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		FirstRun: true,
		Taskwarrior: TaskwarriorConfig{
			Binary:  "task",
			Filters: []string{"+READY"},
		},
		Scheduler: SchedulerConfig{
			BreakLength: Duration(10 * time.Minute),
			SlotLength:  Duration(10 * time.Minute),
		},
		Interaction: InteractionConfig{
			DeferMutation: "wait:+1d",
			OpenCommand:   []string{"taskopen"},
		},
		History: HistoryConfig{
			Enabled: true,
			AutoLog: true,
			DataDir: "~/.taskroll",
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Sound:   false,
		},
		Theme: DefaultThemeConfig(),
	}
}

// Load reads the configuration, creating the file with defaults on first
// run.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("toml")

	setDefaults()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.History.DataDir = expandHome(cfg.History.DataDir)
	return &cfg, nil
}

// Save writes the configuration to the config file.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("toml")

	viper.Set("first_run", cfg.FirstRun)
	viper.Set("taskwarrior.binary", cfg.Taskwarrior.Binary)
	viper.Set("taskwarrior.filters", cfg.Taskwarrior.Filters)
	viper.Set("taskwarrior.coefficients", cfg.Taskwarrior.Coefficients)
	viper.Set("scheduler.break_length", cfg.Scheduler.BreakLength.String())
	viper.Set("scheduler.slot_length", cfg.Scheduler.SlotLength.String())
	viper.Set("interaction.defer_mutation", cfg.Interaction.DeferMutation)
	viper.Set("interaction.open_command", cfg.Interaction.OpenCommand)
	viper.Set("interaction.breakdown_command", cfg.Interaction.BreakdownCommand)
	viper.Set("history.enabled", cfg.History.Enabled)
	viper.Set("history.auto_log", cfg.History.AutoLog)
	viper.Set("history.data_dir", cfg.History.DataDir)
	viper.Set("notifications.enabled", cfg.Notifications.Enabled)
	viper.Set("notifications.sound", cfg.Notifications.Sound)
	viper.Set("theme.color_work", cfg.Theme.ColorWork)
	viper.Set("theme.color_break", cfg.Theme.ColorBreak)
	viper.Set("theme.color_overdue", cfg.Theme.ColorOverdue)
	viper.Set("theme.color_title", cfg.Theme.ColorTitle)
	viper.Set("theme.color_help", cfg.Theme.ColorHelp)
	viper.Set("theme.work_gradient_start", cfg.Theme.WorkGradientStart)
	viper.Set("theme.work_gradient_end", cfg.Theme.WorkGradientEnd)
	viper.Set("theme.break_gradient_start", cfg.Theme.BreakGradientStart)
	viper.Set("theme.break_gradient_end", cfg.Theme.BreakGradientEnd)

	return viper.WriteConfig()
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".taskroll", "config.toml"), nil
}

// GetDBPath returns the path to the focus history database.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.History.DataDir, "history.db")
}

// setDefaults sets default values for viper.
func setDefaults() {
	viper.SetDefault("first_run", true)
	viper.SetDefault("taskwarrior.binary", "task")
	viper.SetDefault("taskwarrior.filters", []string{"+READY"})
	viper.SetDefault("scheduler.break_length", "10m")
	viper.SetDefault("scheduler.slot_length", "10m")
	viper.SetDefault("interaction.defer_mutation", "wait:+1d")
	viper.SetDefault("interaction.open_command", []string{"taskopen"})
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.auto_log", true)
	viper.SetDefault("history.data_dir", "~/.taskroll")
	viper.SetDefault("notifications.enabled", true)
	viper.SetDefault("notifications.sound", false)

	defaults := DefaultThemeConfig()
	viper.SetDefault("theme.color_work", defaults.ColorWork)
	viper.SetDefault("theme.color_break", defaults.ColorBreak)
	viper.SetDefault("theme.color_overdue", defaults.ColorOverdue)
	viper.SetDefault("theme.color_title", defaults.ColorTitle)
	viper.SetDefault("theme.color_help", defaults.ColorHelp)
	viper.SetDefault("theme.work_gradient_start", defaults.WorkGradientStart)
	viper.SetDefault("theme.work_gradient_end", defaults.WorkGradientEnd)
	viper.SetDefault("theme.break_gradient_start", defaults.BreakGradientStart)
	viper.SetDefault("theme.break_gradient_end", defaults.BreakGradientEnd)
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[1:])
}
