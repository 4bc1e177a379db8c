package serve

import (
	"github.com/andrebq/jotbox/api"
	"github.com/andrebq/jotbox/auth"
	"github.com/andrebq/jotbox/internal/cmdflags"
	"github.com/andrebq/jotbox/internal/httpserver"
	"github.com/andrebq/jotbox/notebook"
	"github.com/andrebq/jotbox/reclaim"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:7040"
	notebookPath := "jotbox.db"
	tokenKeyEnvVar := auth.TokenKeyEnvVar
	sessionTTL := api.DefaultSessionTTL
	reclaimDelay := reclaim.DefaultInitialDelay
	reclaimInterval := reclaim.DefaultInterval
	return &cli.Command{
		Name:  "serve",
		Usage: "Start a jotbox instance over the given notebook",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "bind",
				Usage:       "Address to bind and export the notebook",
				Value:       bindAddr,
				Destination: &bindAddr,
			},
			cmdflags.Notebook(&notebookPath),
			cmdflags.TokenKeyEnvVar(&tokenKeyEnvVar),
			&cli.DurationFlag{
				Name:        "session-ttl",
				Usage:       "How long issued tokens stay usable",
				Value:       sessionTTL,
				Destination: &sessionTTL,
			},
			&cli.DurationFlag{
				Name:        "reclaim-delay",
				Usage:       "How long after startup the first reclamation sweep runs",
				Value:       reclaimDelay,
				Destination: &reclaimDelay,
			},
			&cli.DurationFlag{
				Name:        "reclaim-interval",
				Usage:       "How often reclamation sweeps run after the first one",
				Value:       reclaimInterval,
				Destination: &reclaimInterval,
			},
		},
		Action: func(ctx *cli.Context) error {
			key, err := auth.KeyFromEnv(tokenKeyEnvVar, nil, nil)
			if err != nil {
				return err
			}
			cipher, err := auth.NewTokenCipher(key)
			key.Zero()
			if err != nil {
				return err
			}
			book, err := notebook.Open(ctx.Context, notebookPath)
			if err != nil {
				return err
			}
			defer book.Close()
			gate, err := auth.NewGate(book, cipher)
			if err != nil {
				return err
			}
			job := reclaim.Job{
				Book:         book,
				InitialDelay: reclaimDelay,
				Interval:     reclaimInterval,
			}
			go job.Run(ctx.Context)
			handler := api.AsHandler(book, gate, sessionTTL)
			return httpserver.Serve(ctx.Context, bindAddr, handler)
		},
	}
}
