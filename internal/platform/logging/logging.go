package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
)

// Configure builds the process logger and installs it as slog's default.
// format: "console" (human-readable, colored) or "json".
func Configure(level, format string) (*slog.Logger, error) {
	lv, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lv})
	case "console", "":
		handler = clog.New(
			clog.WithWriter(os.Stdout),
			clog.WithLevel(lv),
			clog.WithColor(true),
		)
	default:
		return nil, goerr.New("unknown log format", goerr.V("format", format))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}

func Default() *slog.Logger {
	return slog.Default()
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, goerr.New("unknown log level", goerr.V("level", s))
	}
}
