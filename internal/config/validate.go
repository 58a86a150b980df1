package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dogcare/internal/task/scheduler"
)

// Validate checks values that would otherwise fail later at wiring time.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Telegram.Token) == "" {
		errs = append(errs, errors.New("telegram.token is required (or set DOGCARE_TOKEN)"))
	}
	switch strings.ToLower(strings.TrimSpace(c.Storage.Driver)) {
	case "", "memory", "sqlite", "sqlite3":
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}
	if tz := strings.TrimSpace(c.Scheduler.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			errs = append(errs, fmt.Errorf("scheduler.timezone: %w", err))
		}
	}
	if err := scheduler.ValidateHHMM(c.Reminder.AtOrDefault()); err != nil {
		errs = append(errs, fmt.Errorf("reminder.at: %w", err))
	}
	if c.Router.Workers < 0 || c.Router.QueueSize < 0 {
		errs = append(errs, errors.New("router.workers and router.queue_size must be >= 0"))
	}
	if c.Notifier.RatePerSec < 0 || c.Notifier.RetryMax < 0 {
		errs = append(errs, errors.New("notifier.rate_per_sec and notifier.retry_max must be >= 0"))
	}
	for path, raw := range map[string]string{
		"telegram.poll_timeout":    c.Telegram.PollTimeout,
		"storage.busy_timeout":     c.Storage.BusyTimeout,
		"reminder.timeout":         c.Reminder.Timeout,
		"notifier.retry_base":      c.Notifier.RetryBase,
		"notifier.retry_max_delay": c.Notifier.RetryMaxDelay,
		"notifier.send_timeout":    c.Notifier.SendTimeout,
		"router.handler_timeout":   c.Router.HandlerTimeout,
	} {
		if _, err := ParseDurationField(path, raw); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
