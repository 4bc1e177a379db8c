package user

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/andrebq/jotbox/auth"
	"github.com/andrebq/jotbox/internal/cmdflags"
	"github.com/andrebq/jotbox/notebook"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	var book *notebook.Control
	var notebookPath string
	return &cli.Command{
		Name:  "user",
		Usage: "Manage user accounts of a notebook directly, without going through the API",
		Flags: []cli.Flag{
			cmdflags.Notebook(&notebookPath),
		},
		Before: func(ctx *cli.Context) error {
			var err error
			book, err = notebook.Open(ctx.Context, notebookPath)
			return err
		},
		After: func(ctx *cli.Context) error {
			if book != nil {
				return book.Close()
			}
			return nil
		},
		Subcommands: []*cli.Command{
			addCmd(&book),
			rmCmd(&book),
		},
	}
}

func addCmd(book **notebook.Control) *cli.Command {
	var username string
	return &cli.Command{
		Name:  "add",
		Usage: "Add a new user to the given notebook (password is read from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u", "user"},
				Usage:       "Name of the user to add",
				Destination: &username,
				Required:    true,
			},
		},
		Action: func(ctx *cli.Context) error {
			sc := bufio.NewScanner(os.Stdin)
			if !sc.Scan() {
				return sc.Err()
			}
			password := strings.TrimSpace(sc.Text())
			if len(password) == 0 {
				return errors.New("missing password from stdin")
			}
			cred, err := auth.DeriveCredential([]byte(password))
			if err != nil {
				return err
			}
			_, err = (*book).CreateUser(ctx.Context, username, "", "", cred)
			return err
		},
	}
}

func rmCmd(book **notebook.Control) *cli.Command {
	var username string
	return &cli.Command{
		Name:  "rm",
		Usage: "Remove a user, its sessions and its grants from the given notebook",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u", "user"},
				Usage:       "Name of the user to remove",
				Destination: &username,
				Required:    true,
			},
		},
		Action: func(ctx *cli.Context) error {
			user, _, err := (*book).LookupLogin(ctx.Context, username)
			if err != nil {
				return err
			}
			return (*book).DeleteUser(ctx.Context, user.ID)
		},
	}
}
