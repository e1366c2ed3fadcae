package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/arvandi/mips32/internal/cli"
	"github.com/arvandi/mips32/internal/elog"
)

type help struct {
	cmd []cli.Command
}

var _ cli.Command = (*help)(nil)

func (help) Description() string {
	return "display help for commands"
}

func (h help) FlagSet() *cli.FlagSet {
	return flag.NewFlagSet("help", flag.ExitOnError)
}

func (h help) Run(_ context.Context, args []string, out io.Writer, _ *elog.Logger) int {
	if len(args) == 1 {
		for _, cmd := range h.cmd {
			if args[0] == cmd.FlagSet().Name() {
				h.printCommandHelp(cmd)
			}
		}
	} else {
		out := flag.CommandLine.Output()
		if err := h.Usage(out); err != nil {
			return 1
		}
	}

	return 0
}

func (h *help) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
mips32 is a user-mode interpreter for the MIPS32 instruction set.

Usage:

        mips32 <command> [option]... [arg]...

Commands:`)
	if err != nil {
		return err
	}

	for _, cmd := range h.cmd {
		fs := cmd.FlagSet()
		fmt.Fprintf(out, "  %-20s %s\n", fs.Name(), cmd.Description())
	}

	fmt.Fprintf(out, "  %-20s %s\n", h.FlagSet().Name(), h.Description())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Use `mips32 help <command>` to get help for a command.")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Address space:")

	for _, l := range addressSpaceLayout {
		fmt.Fprintf(out, "  %-8s %#010x - %#010x\n", l.name, l.low, l.high)
	}

	return err
}

// addressSpaceLayout is the fixed section table commands load .text into
// and CPU.Step fetches and dereferences against; help prints it so a user
// picking an origin for Load knows which section it lands in.
var addressSpaceLayout = []struct {
	name      string
	low, high uint32
}{
	{"text", 0x00400000, 0x0fffffff},
	{"extern", 0x10000000, 0x1000ffff},
	{"data", 0x10010000, 0x1003ffff},
	{"heap", 0x10040000, 0x7fffffff},
	{"ktext", 0x80000000, 0x8fffffff},
	{"kdata", 0x90000000, 0xffffffff},
}

func (h *help) printCommandHelp(cmd cli.Command) {
	out := flag.CommandLine.Output()
	_ = cmd.FlagSet().Parse(nil)

	fmt.Fprint(out, "Usage:\n\n        mips32 ")

	if err := cmd.Usage(out); err != nil {
		return
	}

	fmt.Fprintln(out, "\nOptions:")
	cmd.FlagSet().PrintDefaults()
}

func Help(cmd []cli.Command) *help {
	return &help{
		cmd: cmd,
	}
}
