package checkedmem

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment-controlled settings applied by Install.
type Config struct {
	// Env names the deployment; "production" or "prod" sanitizes fault errors.
	Env string `env:"CHECKEDMEM_ENV" envDefault:"development"`
	// Debug=false also sanitizes fault errors.
	Debug bool `env:"CHECKEDMEM_DEBUG" envDefault:"true"`
	// Mover selects the built-in data mover: byte, word or unrolled.
	Mover string `env:"CHECKEDMEM_MOVER" envDefault:"word"`
	// LogLevel is used by the CLI when it builds its logger.
	LogLevel slog.Level `env:"CHECKEDMEM_LOG_LEVEL" envDefault:"INFO"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("checkedmem: parse env: %w", err)
	}
	cfg.Mover = strings.ToLower(strings.TrimSpace(cfg.Mover))
	return cfg, nil
}

// Production reports whether fault errors should omit addresses.
func (c Config) Production() bool {
	switch strings.ToLower(c.Env) {
	case "production", "prod":
		return true
	}
	return !c.Debug
}
