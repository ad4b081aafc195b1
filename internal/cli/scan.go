package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"pet-health-bot/internal/adapters/storage/postgres"
	"pet-health-bot/internal/adapters/telegram"
	"pet-health-bot/internal/cli/config"
	"pet-health-bot/internal/domain/reminder"
	"pet-health-bot/internal/platform/httpclient"
	"pet-health-bot/internal/platform/logging"
)

// cmdScan runs exactly one reminder scan and exits. Useful for cron-style
// deployments and for poking the scheduler without waiting a cycle.
func cmdScan() *cli.Command {
	var (
		dbCfg  config.Database
		tgCfg  config.Telegram
		appCfg config.App
	)

	return &cli.Command{
		Name:  "scan",
		Usage: "run a single reminder scan and exit",
		Flags: joinFlags(dbCfg.Flags(), tgCfg.Flags(), appCfg.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			if dbCfg.DSN == "" {
				return goerr.New("scan requires a postgres DSN (set DB_DSN)")
			}
			if err := tgCfg.Validate(); err != nil {
				return err
			}
			if err := appCfg.Load(); err != nil {
				return err
			}

			db, err := dbCfg.Open()
			if err != nil {
				return err
			}
			defer db.Close()

			bot, err := telegram.New(tgCfg.Token, nil, httpclient.New(telegram.DefaultClientTimeout), logging.Default())
			if err != nil {
				return err
			}

			sched := reminder.NewScheduler(
				postgres.NewEventsRepo(db),
				postgres.NewPetsRepo(db),
				bot,
				appCfg.ReminderConfig(),
				logging.Default(),
			)

			sent, err := sched.ScanOnce(ctx)
			if err != nil {
				return err
			}
			logging.Default().Info("scan finished", "reminders_sent", sent)
			return nil
		},
	}
}
