package app

import (
	"time"

	"dogcare/internal/config"
	"dogcare/internal/notifier"
	"dogcare/internal/storage"
	"dogcare/internal/task/scheduler"
	telegram "dogcare/internal/transport/telegram/adapter"
	"dogcare/internal/transport/telegram/router"
	logx "dogcare/pkg/logx"
)

// reminderJob is the scheduler entry that runs the daily sweep.
const reminderJob = "reminder.daily"

const defaultReminderTimeout = 5 * time.Minute

func mapLoggingConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapTelegramConfig(cfg *config.Config) telegram.Config {
	return telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: config.DurationOr("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second),
	}
}

func mapStorageConfig(cfg *config.Config) storage.Config {
	return storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: config.DurationOr("storage.busy_timeout", cfg.Storage.BusyTimeout, 0),
	}
}

func mapSchedulerConfig(cfg *config.Config) scheduler.Config {
	return scheduler.Config{
		Enabled:  cfg.Scheduler.IsEnabled(),
		Timezone: cfg.Scheduler.Timezone,
	}
}

func mapNotifierConfig(cfg *config.Config) notifier.Config {
	n := cfg.Notifier
	return notifier.Config{
		RatePerSec:    n.RatePerSec,
		RetryMax:      n.RetryMax,
		RetryBase:     config.DurationOr("notifier.retry_base", n.RetryBase, 0),
		RetryMaxDelay: config.DurationOr("notifier.retry_max_delay", n.RetryMaxDelay, 0),
		SendTimeout:   config.DurationOr("notifier.send_timeout", n.SendTimeout, 0),
	}
}

func mapRouterConfig(cfg *config.Config) router.Config {
	r := cfg.Router
	return router.Config{
		Workers:        r.Workers,
		QueueSize:      r.QueueSize,
		HandlerTimeout: config.DurationOr("router.handler_timeout", r.HandlerTimeout, 0),
	}
}

// reminderSchedule is the daily sweep registration derived from config.
type reminderSchedule struct {
	enabled bool
	at      string
	timeout time.Duration
}

func mapReminderSchedule(cfg *config.Config) reminderSchedule {
	return reminderSchedule{
		enabled: cfg.Reminder.IsEnabled(),
		at:      cfg.Reminder.AtOrDefault(),
		timeout: config.DurationOr("reminder.timeout", cfg.Reminder.Timeout, defaultReminderTimeout),
	}
}

// applyReminderSchedule registers or removes the daily sweep.
func applyReminderSchedule(s *scheduler.Service, rs reminderSchedule, job scheduler.Job) error {
	if !rs.enabled {
		s.Remove(reminderJob)
		return nil
	}
	_, err := s.AddDaily(reminderJob, rs.at, rs.timeout, job)
	return err
}
