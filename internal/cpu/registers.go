package cpu

import "fmt"

// Registers is the general-purpose register file plus the program counter
// and the wide multiply/divide accumulators.
type Registers struct {
	gpr [32]uint32
	PC  uint32
	HI  uint32
	LO  uint32
}

// NewRegisters returns a register file reset to the architectural initial
// state: PC at the start of .text, HI/LO and all GPRs zero.
func NewRegisters() *Registers {
	return &Registers{PC: 0x00400000}
}

// NewRegistersSeeded is NewRegisters, but with $t0 and $t1 set to small,
// fixed values. It exists only so a program loaded without its own
// initialization code has something other than zero to compute with when
// run from the command line; nothing in the architecture requires it, and
// no guest program may rely on it.
func NewRegistersSeeded() *Registers {
	r := NewRegisters()
	r.gpr[8] = 3
	r.gpr[9] = 4

	return r
}

// Read returns the value of register n. Reading register 0 always returns
// zero. Out-of-range indices are a VM-internal fault, reported via ok=false.
func (r *Registers) Read(n uint32) (uint32, bool) {
	if n >= 32 {
		return 0, false
	}

	if n == 0 {
		return 0, true
	}

	return r.gpr[n], true
}

// Write stores v into register n. Writes to register 0 are discarded, per
// the architecture. Out-of-range indices are a VM-internal fault.
func (r *Registers) Write(n uint32, v uint32) bool {
	if n >= 32 {
		return false
	}

	if n == 0 {
		return true
	}

	r.gpr[n] = v

	return true
}

// Link writes PC+4 into register n, the return address a jump-and-link
// instruction leaves behind.
func (r *Registers) Link(n uint32) bool {
	return r.Write(n, r.PC+4)
}

// Triad is a copied snapshot of three registers read together for an
// instruction's operands, and a pending destination to write back. It
// realizes a borrow-once-then-release discipline without literal Go
// aliasing: the three values are copies, so there is no possibility of two
// live mutable references to the same register colliding mid-instruction.
// Commit performs the single writeback the instruction's semantics
// produced.
type Triad struct {
	Rd, Rs, Rt uint32
	dst        uint32
	regs       *Registers
}

// BorrowTriple reads rd, rs and rt as copies for use as an instruction's
// operands. An out-of-range index is a VM-internal fault.
func (r *Registers) BorrowTriple(rd, rs, rt uint32) (Triad, bool) {
	rdv, ok := r.Read(rd)
	if !ok {
		return Triad{}, false
	}

	rsv, ok := r.Read(rs)
	if !ok {
		return Triad{}, false
	}

	rtv, ok := r.Read(rt)
	if !ok {
		return Triad{}, false
	}

	return Triad{Rd: rdv, Rs: rsv, Rt: rtv, dst: rd, regs: r}, true
}

// Commit writes v back to the destination register the triad was borrowed
// for.
func (t Triad) Commit(v uint32) bool {
	return t.regs.Write(t.dst, v)
}

// Snapshot returns a copy of the 32 general-purpose registers, for debug
// display. It never observes a partially written register because writes
// only ever happen between instructions, never concurrently with a read.
func (r *Registers) Snapshot() [32]uint32 {
	return r.gpr
}

func (r *Registers) String() string {
	return fmt.Sprintf("PC=%#08x HI=%#08x LO=%#08x", r.PC, r.HI, r.LO)
}
