package config

// Config is the on-disk configuration (JSON, or YAML by file extension).
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type Config struct {
	Telegram  TelegramConfig  `json:"telegram"`
	Logging   LoggingConfig   `json:"logging"`
	Storage   StorageConfig   `json:"storage"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Reminder  ReminderConfig  `json:"reminder"`
	Notifier  NotifierConfig  `json:"notifier"`
	Router    RouterConfig    `json:"router"`
}

type TelegramConfig struct {
	// Token may also come from DOGCARE_TOKEN or TOKEN; environment wins.
	Token       string `json:"token"`
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig selects the profile store.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./data/dogcare.db" }
type StorageConfig struct {
	Driver      string `json:"driver,omitempty"` // "memory" (default) | "sqlite"
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// SchedulerConfig controls the cron trigger. Enabled defaults to true.
type SchedulerConfig struct {
	Enabled  *bool  `json:"enabled,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// ReminderConfig controls the daily due-treatment sweep.
//
// Defaults: enabled, at "09:00", timeout "5m".
type ReminderConfig struct {
	Enabled *bool  `json:"enabled,omitempty"`
	At      string `json:"at,omitempty"`
	Timeout string `json:"timeout,omitempty"`
}

type NotifierConfig struct {
	RatePerSec    int    `json:"rate_per_sec,omitempty"`
	RetryMax      int    `json:"retry_max,omitempty"`
	RetryBase     string `json:"retry_base,omitempty"`
	RetryMaxDelay string `json:"retry_max_delay,omitempty"`
	SendTimeout   string `json:"send_timeout,omitempty"`
}

type RouterConfig struct {
	Workers        int    `json:"workers,omitempty"`
	QueueSize      int    `json:"queue_size,omitempty"`
	HandlerTimeout string `json:"handler_timeout,omitempty"`
}

const DefaultReminderAt = "09:00"

func (c SchedulerConfig) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

func (c ReminderConfig) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

// AtOrDefault returns the configured sweep time, or 09:00.
func (c ReminderConfig) AtOrDefault() string {
	if c.At == "" {
		return DefaultReminderAt
	}
	return c.At
}
