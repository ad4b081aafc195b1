package config

import (
	"database/sql"

	"github.com/urfave/cli/v3"

	"pet-health-bot/internal/adapters/storage/postgres"
)

// Database selects the record store backend. An empty DSN means the
// in-memory store (dev mode; data is lost on restart).
type Database struct {
	DSN string
}

func (x *Database) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db-dsn",
			Usage:       "postgres DSN; empty runs the in-memory store",
			Sources:     cli.EnvVars("DB_DSN"),
			Destination: &x.DSN,
		},
	}
}

// Open returns (nil, nil) when no DSN is configured.
func (x *Database) Open() (*sql.DB, error) {
	if x.DSN == "" {
		return nil, nil
	}
	return postgres.Open(x.DSN)
}
