package config

import (
	"strings"

	logx "dogcare/pkg/logx"
)

// SummarizeConfigChange returns the changed section names and log fields
// describing the new values. The token is never included.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}
	var (
		changed []string
		attrs   []logx.Field
	)
	trim := strings.TrimSpace

	if oldCfg.Telegram.Token != newCfg.Telegram.Token || trim(oldCfg.Telegram.PollTimeout) != trim(newCfg.Telegram.PollTimeout) {
		changed = append(changed, "telegram")
		attrs = append(attrs,
			logx.Bool("telegram.token_changed", oldCfg.Telegram.Token != newCfg.Telegram.Token),
			logx.String("telegram.poll_timeout", trim(newCfg.Telegram.PollTimeout)),
		)
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if oldCfg.Storage != newCfg.Storage {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", newCfg.Storage.Driver),
			logx.String("storage.path", newCfg.Storage.Path),
		)
	}

	if oldCfg.Scheduler.IsEnabled() != newCfg.Scheduler.IsEnabled() || trim(oldCfg.Scheduler.Timezone) != trim(newCfg.Scheduler.Timezone) {
		changed = append(changed, "scheduler")
		attrs = append(attrs,
			logx.Bool("scheduler.enabled", newCfg.Scheduler.IsEnabled()),
			logx.String("scheduler.timezone", trim(newCfg.Scheduler.Timezone)),
		)
	}

	if oldCfg.Reminder.IsEnabled() != newCfg.Reminder.IsEnabled() ||
		oldCfg.Reminder.AtOrDefault() != newCfg.Reminder.AtOrDefault() ||
		trim(oldCfg.Reminder.Timeout) != trim(newCfg.Reminder.Timeout) {
		changed = append(changed, "reminder")
		attrs = append(attrs,
			logx.Bool("reminder.enabled", newCfg.Reminder.IsEnabled()),
			logx.String("reminder.at", newCfg.Reminder.AtOrDefault()),
		)
	}

	if oldCfg.Notifier != newCfg.Notifier {
		changed = append(changed, "notifier")
		attrs = append(attrs,
			logx.Int("notifier.rate_per_sec", newCfg.Notifier.RatePerSec),
			logx.Int("notifier.retry_max", newCfg.Notifier.RetryMax),
		)
	}

	if oldCfg.Router != newCfg.Router {
		changed = append(changed, "router")
		attrs = append(attrs,
			logx.Int("router.workers", newCfg.Router.Workers),
			logx.Int("router.queue_size", newCfg.Router.QueueSize),
		)
	}
	return changed, attrs
}

// RestartRequired lists changed sections that only take effect on restart.
func RestartRequired(changed []string) []string {
	var out []string
	for _, s := range changed {
		switch s {
		case "telegram", "storage", "router":
			out = append(out, s)
		}
	}
	return out
}
