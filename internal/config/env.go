package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverrides are applied on top of the parsed file.
type envOverrides struct {
	Token       string `env:"DOGCARE_TOKEN"`
	LegacyToken string `env:"TOKEN"`
	LogLevel    string `env:"DOGCARE_LOG_LEVEL"`
	Timezone    string `env:"DOGCARE_TIMEZONE"`
}

// applyEnv overlays environment values onto cfg. A nil environ reads the
// process environment.
func applyEnv(cfg *Config, environ map[string]string) error {
	var e envOverrides
	if err := env.ParseWithOptions(&e, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	switch {
	case strings.TrimSpace(e.Token) != "":
		cfg.Telegram.Token = strings.TrimSpace(e.Token)
	case strings.TrimSpace(e.LegacyToken) != "":
		cfg.Telegram.Token = strings.TrimSpace(e.LegacyToken)
	}
	if v := strings.TrimSpace(e.LogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(e.Timezone); v != "" {
		cfg.Scheduler.Timezone = v
	}
	return nil
}
