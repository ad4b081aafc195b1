package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

type Telegram struct {
	Token string
}

func (x *Telegram) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "telegram-token",
			Usage:       "telegram bot API token",
			Sources:     cli.EnvVars("TELEGRAM_BOT_TOKEN"),
			Destination: &x.Token,
		},
	}
}

func (x *Telegram) Validate() error {
	if x.Token == "" {
		return goerr.New("telegram token is required (set TELEGRAM_BOT_TOKEN)")
	}
	return nil
}
