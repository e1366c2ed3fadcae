// Package console provides an interactive, single-step terminal front end for
// the interpreter. It adapts a raw Unix terminal[^1] so every key press
// advances the machine by one cycle and the updated debug dump is echoed
// back to the terminal.
//
// [1]: See: tty(4), termios(4).
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/arvandi/mips32/internal/cpu"
)

// Stepper is the subset of cpu.CPU the console needs to drive single-stepping.
type Stepper interface {
	Step() cpu.Next
	DebugSnapshot() cpu.DebugState
}

// Console is a serial console for the machine, implemented with Unix raw
// terminal I/O. Key presses on the console advance the machine one cycle at
// a time; the resulting debug dump is written back to the terminal.
type Console struct {
	in    *os.File
	out   *term.Terminal
	fd    int
	state *term.State

	keyCh chan byte
}

// ErrNoTTY is returned if standard input is not a terminal. In this case,
// interactive stepping is not supported.
var ErrNoTTY error = errors.New("console: not a TTY")

// ConsoleContext creates a Console bound to the standard streams and starts
// the stepping loop against machine. Calling the returned cancel function
// restores the terminal state and stops the loop.
func ConsoleContext(parent context.Context, machine Stepper) (
	context.Context, *Console, context.CancelFunc,
) {
	ctx, cause := context.WithCancelCause(parent)

	cons, err := NewConsole(os.Stdin, os.Stdout)
	if err != nil {
		cause(err)
		return ctx, cons, func() { cause(err) }
	}

	go cons.readTerminal(ctx, cause)
	go cons.runStepper(ctx, machine, cause)

	return ctx, cons, cons.Restore
}

// NewConsole creates a Console using the provided streams. If the input
// stream is not a terminal, ErrNoTTY is returned. Callers are responsible
// for calling Restore to return the terminal to its initial state.
func NewConsole(sin, sout *os.File) (*Console, error) {
	fd := int(sin.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}

	rw := struct {
		io.Reader
		io.Writer
	}{sin, sout}

	cons := Console{
		fd:    fd,
		in:    sin,
		out:   term.NewTerminal(rw, "step> "),
		state: saved,
		keyCh: make(chan byte, 1),
	}

	if err := cons.setTerminalParams(1, 0); err != nil {
		return nil, err
	}

	return &cons, nil
}

// Press injects a key press, as if typed at the console.
func (c Console) Press(key byte) {
	c.keyCh <- key
}

// Writer returns an io.Writer that writes to the terminal.
func (c Console) Writer() io.Writer {
	return c.out
}

// Restore returns the terminal to its initial state and cancels in-progress reads.
func (c *Console) Restore() {
	_ = os.Stdin.SetReadDeadline(time.Now())
	_ = term.Restore(c.fd, c.state)
}

func (c *Console) setTerminalParams(vmin, vtime byte) error {
	_ = syscall.SetNonblock(c.fd, true)

	termIO, err := unix.IoctlGetTermios(c.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	if err := unix.IoctlSetTermios(c.fd, setTermiosIoctl, termIO); err != nil {
		return err
	}

	_ = os.Stdin.SetReadDeadline(time.Time{})

	return nil
}

// readTerminal reads bytes from the terminal and writes them to the key
// channel until the context is cancelled.
func (c Console) readTerminal(ctx context.Context, cancel context.CancelCauseFunc) {
	buf := bufio.NewReader(c.in)

	_ = syscall.SetNonblock(c.fd, false)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		b, err := buf.ReadByte()
		if err != nil {
			cancel(err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case c.keyCh <- b:
		}
	}
}

// runStepper advances machine by one cycle for every key pressed ('q' quits)
// and writes the resulting debug dump to the terminal. It blocks until the
// context is cancelled.
func (c Console) runStepper(ctx context.Context, machine Stepper, cancel context.CancelCauseFunc) {
	fmt.Fprintln(c.out, "press any key to step, 'q' to quit")

	for {
		select {
		case <-ctx.Done():
			return
		case key := <-c.keyCh:
			if key == 'q' {
				cancel(context.Canceled)
				return
			}

			next := machine.Step()
			fmt.Fprintf(c.out, "%s\n%s\n", next, machine.DebugSnapshot())
		}
	}
}
