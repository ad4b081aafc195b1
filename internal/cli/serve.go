package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"pet-health-bot/internal/adapters/storage/memory"
	"pet-health-bot/internal/adapters/storage/postgres"
	"pet-health-bot/internal/adapters/telegram"
	"pet-health-bot/internal/cli/config"
	"pet-health-bot/internal/domain/dialog"
	"pet-health-bot/internal/domain/health"
	"pet-health-bot/internal/domain/pets"
	"pet-health-bot/internal/domain/reminder"
	"pet-health-bot/internal/platform/httpclient"
	"pet-health-bot/internal/platform/logging"
	"pet-health-bot/internal/report"
	"pet-health-bot/internal/router"
)

func cmdServe() *cli.Command {
	var (
		dbCfg  config.Database
		tgCfg  config.Telegram
		appCfg config.App
		addr   string
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "run the bot, the reminder scheduler and the ops endpoint",
		Flags: joinFlags(
			dbCfg.Flags(),
			tgCfg.Flags(),
			appCfg.Flags(),
			[]cli.Flag{
				&cli.StringFlag{
					Name:        "addr",
					Usage:       "listen address for the ops /health endpoint",
					Sources:     cli.EnvVars("ADDR"),
					Value:       ":8080",
					Destination: &addr,
				},
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if err := tgCfg.Validate(); err != nil {
				return err
			}
			if err := appCfg.Load(); err != nil {
				return err
			}

			petRepo, eventRepo, err := openRepos(ctx, &dbCfg)
			if err != nil {
				return err
			}

			petsSvc := pets.NewService(petRepo)
			healthSvc := health.NewService(eventRepo, petsSvc)
			reportSvc := report.NewService(petsSvc, healthSvc, appCfg.Report.FontDir)
			engine := dialog.NewEngine(petsSvc, healthSvc, reportSvc, logger)

			bot, err := telegram.New(tgCfg.Token, engine, httpclient.New(telegram.DefaultClientTimeout), logger)
			if err != nil {
				return err
			}

			sched := reminder.NewScheduler(eventRepo, petRepo, bot, appCfg.ReminderConfig(), logger)

			srv := &http.Server{
				Addr:         addr,
				Handler:      router.New(),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error { return bot.Run(ctx) })
			eg.Go(func() error { return sched.Run(ctx) })
			eg.Go(func() error {
				logger.Info("ops endpoint listening", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

// openRepos wires the record store: Postgres when a DSN is configured
// (with the boot migration applied), the in-memory store otherwise.
func openRepos(ctx context.Context, dbCfg *config.Database) (pets.Repository, health.Repository, error) {
	db, err := dbCfg.Open()
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		logging.Default().Warn("no db-dsn configured; using the in-memory store, data is lost on restart")
		store := memory.NewStore()
		return store.Pets(), store.Events(), nil
	}

	if err := postgres.Migrate(ctx, db); err != nil {
		return nil, nil, err
	}
	return postgres.NewPetsRepo(db), postgres.NewEventsRepo(db), nil
}
