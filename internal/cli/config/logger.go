package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"pet-health-bot/internal/platform/logging"
)

// Logger holds the process logging configuration.
type Logger struct {
	level  string
	format string
}

func (x *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Sources:     cli.EnvVars("LOG_LEVEL"),
			Value:       "info",
			Destination: &x.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (console, json)",
			Sources:     cli.EnvVars("LOG_FORMAT"),
			Value:       "console",
			Destination: &x.format,
		},
	}
}

func (x *Logger) Configure() (*slog.Logger, error) {
	return logging.Configure(x.level, x.format)
}
