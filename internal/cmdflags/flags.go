package cmdflags

import (
	"github.com/andrebq/jotbox/auth"
	"github.com/urfave/cli/v2"
)

func Notebook(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = "jotbox.db"
	}
	return &cli.StringFlag{
		Name:        "notebook",
		Aliases:     []string{"n", "db"},
		Usage:       "Path to the notebook database file",
		Destination: out,
		Value:       *out,
	}
}

func TokenKeyEnvVar(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = auth.TokenKeyEnvVar
	}
	return &cli.StringFlag{
		Name:        "token-key-envvar-name",
		Usage:       "Name of the environment variable that holds the token sealing key. The key itself should not be passed as an argument",
		Hidden:      true,
		Value:       *out,
		Destination: out,
	}
}
