package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"pet-health-bot/internal/cli/config"
	"pet-health-bot/internal/platform/logging"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger

	app := &cli.Command{
		Name:    "petbot",
		Usage:   "pet health history chat bot",
		Version: version,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if _, err := loggerCfg.Configure(); err != nil {
				return ctx, err
			}
			logging.Default().Info("starting petbot", "version", version)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdMigrate(),
			cmdScan(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}
	return nil
}

func joinFlags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
