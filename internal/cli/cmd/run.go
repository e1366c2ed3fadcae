package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/arvandi/mips32/internal/cli"
	"github.com/arvandi/mips32/internal/cpu"
	"github.com/arvandi/mips32/internal/elog"
	"github.com/arvandi/mips32/internal/memory"
	"github.com/arvandi/mips32/internal/program"
)

// Run is the command that loads a raw .text image and executes it to
// completion (an architectural exception, a VM-internal fault, or a
// timeout), printing the final debug dump.
func Run() cli.Command {
	return &run{timeout: 5 * time.Second}
}

type run struct {
	debug   bool
	timeout time.Duration
}

func (run) Description() string {
	return "load and run a raw .text program image"
}

func (run) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `run [ -debug ] FILE

Load FILE as raw bytes into .text and execute until an exception, a
VM-internal fault, or the timeout, printing the final register dump.`)

	return err
}

func (r *run) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.BoolVar(&r.debug, "debug", false, "enable debug logging")

	return fs
}

func (r *run) Run(ctx context.Context, args []string, out io.Writer, logger *elog.Logger) int {
	if len(args) == 0 {
		fmt.Fprintln(out, "run: missing FILE argument")
		return 1
	}

	if r.debug {
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

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	logger.Info("running program", "file", args[0], "bytes", len(code))

	runErr := machine.Run(ctx)

	switch {
	case errors.Is(runErr, context.DeadlineExceeded):
		logger.Warn("run timed out")
	case runErr != nil:
		logger.Error("run error", "err", runErr)
		return 2
	default:
		logger.Info("stopped", "outcome", machine.LastNext.String())
	}

	fmt.Fprint(out, machine.DebugSnapshot())

	return 0
}
