package reclaim

import (
	"github.com/andrebq/jotbox/internal/cmdflags"
	"github.com/andrebq/jotbox/notebook"
	"github.com/andrebq/jotbox/reclaim"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	var notebookPath string
	return &cli.Command{
		Name:  "reclaim",
		Usage: "Run one reclamation sweep (expired sessions, orphan lists) and exit",
		Flags: []cli.Flag{
			cmdflags.Notebook(&notebookPath),
		},
		Action: func(ctx *cli.Context) error {
			book, err := notebook.Open(ctx.Context, notebookPath)
			if err != nil {
				return err
			}
			defer book.Close()
			reclaim.Job{Book: book}.Sweep(ctx.Context)
			return nil
		},
	}
}
