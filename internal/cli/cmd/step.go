package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/arvandi/mips32/internal/cli"
	"github.com/arvandi/mips32/internal/console"
	"github.com/arvandi/mips32/internal/cpu"
	"github.com/arvandi/mips32/internal/elog"
	"github.com/arvandi/mips32/internal/memory"
	"github.com/arvandi/mips32/internal/program"
)

// Step is the command that loads a raw .text image and drives it with the
// interactive, single-step terminal console: every key press executes one
// cycle and prints the resulting outcome and register dump.
func Step() cli.Command {
	return new(step)
}

type step struct {
	debug bool
}

func (step) Description() string {
	return "single-step a raw .text program image interactively"
}

func (step) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `step [ -debug ] FILE

Load FILE as raw bytes into .text and single-step it: each key press
advances the machine by one cycle and prints the resulting state.`)

	return err
}

func (s *step) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("step", flag.ExitOnError)
	fs.BoolVar(&s.debug, "debug", false, "enable debug logging")

	return fs
}

func (s *step) Run(ctx context.Context, args []string, out io.Writer, logger *elog.Logger) int {
	if len(args) == 0 {
		fmt.Fprintln(out, "step: missing FILE argument")
		return 1
	}

	if s.debug {
		elog.LogLevel.Set(elog.Debug)
	}

	code, err := os.ReadFile(args[0])
	if err != nil {
		logger.Error("error reading image", "err", err)
		return 2
	}

	img := program.NewImage()
	loader := program.NewLoader(img)
	loader.Load(memory.Text, 0x00400000, code)

	machine := cpu.New(img.Map, cpu.WithLogger(logger))

	ctx, cons, cancel := console.ConsoleContext(ctx, advancing{machine})
	defer cancel()

	if cons == nil {
		logger.Error("step requires an interactive terminal")
		return 2
	}

	fmt.Fprint(cons.Writer(), machine.DebugSnapshot())

	<-ctx.Done()

	return 0
}

// advancing applies each cycle's Forward or Branch outcome to PC, as
// CPU.Run does, so that successive steps move through the program.
type advancing struct{ *cpu.CPU }

func (a advancing) Step() cpu.Next {
	next := a.CPU.Step()

	switch next.Outcome {
	case cpu.Forward:
		a.Reg.PC += 4
	case cpu.Branch:
		a.Reg.PC = next.Target
	}

	return next
}
