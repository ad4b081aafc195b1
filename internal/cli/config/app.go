package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"pet-health-bot/internal/domain/reminder"
)

// App is the tunable application configuration: an optional TOML file,
// with flags/env taking precedence over file values.
type App struct {
	Reminders Reminders `toml:"reminders"`
	Report    Report    `toml:"report"`

	path string

	flagInterval  time.Duration
	flagLookahead time.Duration
	flagFontDir   string
}

type Reminders struct {
	// Interval is the scan cadence, Lookahead the due window. Both are
	// Go duration strings ("1h", "168h").
	Interval  string `toml:"interval"`
	Lookahead string `toml:"lookahead"`
}

type Report struct {
	// FontDir holds DejaVuSans.ttf / DejaVuSans-Bold.ttf. Empty falls
	// back to the built-in Latin-only font (dev only).
	FontDir string `toml:"font_dir"`
}

func (x *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to a TOML config file",
			Sources:     cli.EnvVars("CONFIG_FILE"),
			Destination: &x.path,
		},
		&cli.DurationFlag{
			Name:        "reminder-interval",
			Usage:       "reminder scan cadence (overrides the config file)",
			Sources:     cli.EnvVars("REMINDER_INTERVAL"),
			Destination: &x.flagInterval,
		},
		&cli.DurationFlag{
			Name:        "reminder-lookahead",
			Usage:       "reminder due-date lookahead window (overrides the config file)",
			Sources:     cli.EnvVars("REMINDER_LOOKAHEAD"),
			Destination: &x.flagLookahead,
		},
		&cli.StringFlag{
			Name:        "font-dir",
			Usage:       "directory with the DejaVu TTF assets for PDF reports",
			Sources:     cli.EnvVars("FONT_DIR"),
			Destination: &x.flagFontDir,
		},
	}
}

// Load reads the config file (when given) and applies flag overrides.
func (x *App) Load() error {
	if x.path != "" {
		raw, err := os.ReadFile(x.path)
		if err != nil {
			return goerr.Wrap(err, "failed to read config file", goerr.V("path", x.path))
		}
		if err := toml.Unmarshal(raw, x); err != nil {
			return goerr.Wrap(err, "failed to parse config file", goerr.V("path", x.path))
		}
	}
	if x.flagFontDir != "" {
		x.Report.FontDir = x.flagFontDir
	}
	return x.validate()
}

func (x *App) validate() error {
	for _, d := range []string{x.Reminders.Interval, x.Reminders.Lookahead} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return goerr.Wrap(err, "invalid duration in [reminders]", goerr.V("value", d))
		}
	}
	return nil
}

// ReminderConfig resolves the scheduler settings: flags beat the file,
// the file beats the documented defaults (1h cadence, 7d lookahead).
func (x *App) ReminderConfig() reminder.Config {
	cfg := reminder.Config{
		Interval:  x.flagInterval,
		Lookahead: x.flagLookahead,
	}
	if cfg.Interval == 0 && x.Reminders.Interval != "" {
		cfg.Interval, _ = time.ParseDuration(x.Reminders.Interval)
	}
	if cfg.Lookahead == 0 && x.Reminders.Lookahead != "" {
		cfg.Lookahead, _ = time.ParseDuration(x.Reminders.Lookahead)
	}
	return cfg
}
