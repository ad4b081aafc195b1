package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"pet-health-bot/internal/adapters/storage/postgres"
	"pet-health-bot/internal/cli/config"
	"pet-health-bot/internal/platform/logging"
)

func cmdMigrate() *cli.Command {
	var dbCfg config.Database

	return &cli.Command{
		Name:  "migrate",
		Usage: "apply the database schema and exit",
		Flags: dbCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if dbCfg.DSN == "" {
				return goerr.New("migrate requires a postgres DSN (set DB_DSN)")
			}

			db, err := dbCfg.Open()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
			logging.Default().Info("migration applied")
			return nil
		},
	}
}
