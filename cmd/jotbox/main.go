package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/andrebq/jotbox/cmd/jotbox/reclaim"
	"github.com/andrebq/jotbox/cmd/jotbox/serve"
	"github.com/andrebq/jotbox/cmd/jotbox/user"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "jotbox",
		Usage: "Share to-do lists with everyone!",
		Commands: []*cli.Command{
			serve.Cmd(),
			user.Cmd(),
			reclaim.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
	}
}
