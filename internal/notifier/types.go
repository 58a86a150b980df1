package notifier

import "time"

// Config controls delivery policy. Zero values get defaults.
type Config struct {
	RatePerSec    int           // default 20
	RetryMax      int           // extra attempts after the first; default 0
	RetryBase     time.Duration // default 500ms
	RetryMaxDelay time.Duration // default 10s
	SendTimeout   time.Duration // per platform call; default 10s
}

func (c Config) withDefaults() Config {
	if c.RatePerSec <= 0 {
		c.RatePerSec = 20
	}
	if c.RetryMax < 0 {
		c.RetryMax = 0
	}
	if c.RetryBase <= 0 {
		c.RetryBase = 500 * time.Millisecond
	}
	if c.RetryMaxDelay <= 0 {
		c.RetryMaxDelay = 10 * time.Second
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 10 * time.Second
	}
	return c
}
