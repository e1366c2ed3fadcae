// Package cpu implements the MIPS32 decode/execute cycle: the register
// file, the instruction semantics table, and the driver loop that threads
// one through the other.
package cpu

import (
	"context"
	"fmt"

	"github.com/arvandi/mips32/internal/elog"
	"github.com/arvandi/mips32/internal/memory"
)

// CPU couples a register file to a memory map and runs the fetch/decode/
// execute cycle against them.
type CPU struct {
	Reg *Registers
	Mem *memory.Map
	Ctx memory.Context

	log *elog.Logger

	// LastNext is the outcome of the most recently executed cycle. Run
	// stops and reports it when it is not Forward or Branch.
	LastNext Next
}

// OptionFn configures a CPU at construction.
type OptionFn func(*CPU)

// WithRegisters supplies an already-initialized register file instead of
// the seeded default.
func WithRegisters(r *Registers) OptionFn {
	return func(c *CPU) { c.Reg = r }
}

// WithLogger configures the logger debug-level tracing is written to.
func WithLogger(l *elog.Logger) OptionFn {
	return func(c *CPU) { c.log = l }
}

// WithContext sets the privilege level instructions execute under. User
// mode, the default, is the only context this repository's loader and CLI
// ever construct a CPU with; it exists as a field, not a constant, so
// tests can exercise the kernel-only sections of the memory map.
func WithContext(ctx memory.Context) OptionFn {
	return func(c *CPU) { c.Ctx = ctx }
}

// New creates a CPU backed by mem, with registers seeded per
// NewRegistersSeeded unless WithRegisters overrides them.
func New(mem *memory.Map, opts ...OptionFn) *CPU {
	c := &CPU{
		Reg: NewRegistersSeeded(),
		Mem: mem,
		Ctx: memory.ContextUser,
		log: elog.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Step performs one fetch/decode/execute cycle and returns its outcome. It
// does not itself update PC; Run does that, applying Forward and Branch
// outcomes and stopping on anything else.
func (c *CPU) Step() Next {
	word, ok := c.Mem.LoadWord(c.Ctx, c.Reg.PC)
	if !ok {
		return Raise(AddrLoadFetch)
	}

	w := Word(word)

	c.log.Debug("fetched", elog.PC(c.Reg.PC), elog.Word(word))

	next := c.dispatch(w)

	c.log.Debug("decoded", "opcode", fmt.Sprintf("%#02x", w.Opcode()), "outcome", next.String())

	return next
}

// Run steps the CPU until ctx is done or a cycle produces anything other
// than Forward or Branch. It returns ctx.Err() if the context ended the
// run, or nil if an architectural exception or VM-internal fault did;
// callers inspect LastNext to tell those two apart.
func (c *CPU) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		next := c.Step()
		c.LastNext = next

		switch next.Outcome {
		case Forward:
			c.Reg.PC += 4
		case Branch:
			c.Reg.PC = next.Target
		default:
			return nil
		}
	}
}

// DebugState is a point-in-time snapshot of the register file, formatted
// for the debug dump.
type DebugState struct {
	PC, HI, LO uint32
	GPR        [32]uint32
}

// DebugSnapshot captures the current register file for display.
func (c *CPU) DebugSnapshot() DebugState {
	return DebugState{
		PC:  c.Reg.PC,
		HI:  c.Reg.HI,
		LO:  c.Reg.LO,
		GPR: c.Reg.Snapshot(),
	}
}

func (d DebugState) String() string {
	s := fmt.Sprintf("PC: %#08x (%d)\nHI: %#08x (%d)\nLO: %#08x (%d)\n",
		d.PC, int32(d.PC), d.HI, int32(d.HI), d.LO, int32(d.LO))

	for i, v := range d.GPR {
		s += fmt.Sprintf("r%d: %#08x\n", i, v)
	}

	return s
}
