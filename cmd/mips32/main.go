// Command mips32 is a command-line front end for the MIPS32 interpreter.
package main

import (
	"context"
	"os"

	"github.com/arvandi/mips32/internal/cli"
	"github.com/arvandi/mips32/internal/cli/cmd"
)

func main() {
	ctx := context.Background()

	commands := []cli.Command{
		cmd.Run(),
		cmd.Step(),
	}

	commander := cli.New(ctx).
		WithCommands(commands).
		WithHelp(cmd.Help(commands)).
		WithLogger(os.Stderr)

	os.Exit(commander.Execute(os.Args[1:]))
}
