package cpu

import (
	"context"
	"testing"

	"github.com/arvandi/mips32/internal/memory"
)

func encodeR(opcode, rs, rt, rd, shamt, funct uint32) Word {
	return Word(opcode<<26 | rs<<21 | rt<<16 | rd<<11 | shamt<<6 | funct)
}

func encodeI(opcode, rs, rt uint32, imm uint16) Word {
	return Word(opcode<<26 | rs<<21 | rt<<16 | uint32(imm))
}

func encodeJ(opcode, target uint32) Word {
	return Word(opcode<<26 | (target & 0x03FFFFFF))
}

func newTestCPU(words ...Word) *CPU {
	mem := memory.NewMap()

	for i, w := range words {
		mem.Text.(*memory.Hybrid).InsertContinuous(uint32(i*4), []byte{
			byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24),
		})
	}

	return New(mem, WithRegisters(NewRegisters()))
}

// Scenario 1: three-register add.
func TestScenarioThreeRegisterAdd(t *testing.T) {
	c := newTestCPU(encodeR(0x00, 8, 9, 10, 0, 0x20)) // add $10, $8, $9
	c.Reg.Write(8, 3)
	c.Reg.Write(9, 4)

	next := c.Step()
	if next.Outcome != Forward {
		t.Fatalf("expected Forward, got %s", next)
	}

	v, _ := c.Reg.Read(10)
	if v != 7 {
		t.Fatalf("expected $10 = 7, got %d", v)
	}
}

// Scenario 2: immediate add then a taken branch.
func TestScenarioImmediateAddAndBranch(t *testing.T) {
	c := newTestCPU(
		encodeI(0x08, 0, 8, 5),           // addi $8, $0, 5
		encodeI(0x04, 8, 9, 2),           // beq $8, $9, +2
		encodeR(0x00, 0, 0, 0, 0, 0x20),  // add $0, $0, $0 (skipped if branch taken)
	)
	c.Reg.Write(9, 5)

	next := c.Step() // addi
	if next.Outcome != Forward {
		t.Fatalf("addi: expected Forward, got %s", next)
	}
	c.Reg.PC += 4

	next = c.Step() // beq, taken since $8 == $9 == 5
	if next.Outcome != Branch {
		t.Fatalf("beq: expected Branch, got %s", next)
	}

	want := c.Reg.PC + 4 + (2 << 2)
	if next.Target != want {
		t.Fatalf("beq: expected target %#08x, got %#08x", want, next.Target)
	}
}

// Scenario 3: signed add that overflows traps.
func TestScenarioOverflowTrap(t *testing.T) {
	c := newTestCPU(encodeR(0x00, 8, 9, 10, 0, 0x20)) // add $10, $8, $9
	c.Reg.Write(8, 0x7FFFFFFF)
	c.Reg.Write(9, 1)

	next := c.Step()
	if next.Outcome != Raised || next.Kind != Overflow {
		t.Fatalf("expected Overflow exception, got %s", next)
	}
}

// Scenario 4: jump-and-link sets $ra and transfers control.
func TestScenarioJumpAndLink(t *testing.T) {
	c := newTestCPU(encodeJ(0x03, 0x00100000>>2)) // jal 0x00100000

	startPC := c.Reg.PC
	next := c.Step()

	if next.Outcome != Branch {
		t.Fatalf("expected Branch, got %s", next)
	}

	ra, _ := c.Reg.Read(31)
	if ra != startPC+4 {
		t.Fatalf("expected $ra = %#08x, got %#08x", startPC+4, ra)
	}
}

// Scenario 5: load byte sign-extends a negative value.
func TestScenarioLoadByteSignExtend(t *testing.T) {
	c := newTestCPU(encodeI(0x20, 8, 9, 0)) // lb $9, 0($8)

	c.Reg.Write(8, 0x10010000)
	c.Mem.StoreByte(memory.ContextUser, 0x10010000, 0xFF)

	next := c.Step()
	if next.Outcome != Forward {
		t.Fatalf("expected Forward, got %s", next)
	}

	v, _ := c.Reg.Read(9)
	if int32(v) != -1 {
		t.Fatalf("expected sign-extended -1, got %d", int32(v))
	}
}

// Scenario 6: teq traps when its operands are equal.
func TestScenarioTrapOnEqual(t *testing.T) {
	c := newTestCPU(encodeR(0x00, 8, 9, 0, 0, 0x34)) // teq $8, $9
	c.Reg.Write(8, 42)
	c.Reg.Write(9, 42)

	next := c.Step()
	if next.Outcome != Raised || next.Kind != Trap {
		t.Fatalf("expected Trap exception, got %s", next)
	}
}

func TestRegisterZeroIsHardwired(t *testing.T) {
	r := NewRegisters()
	r.Write(0, 0xFFFFFFFF)

	v, ok := r.Read(0)
	if !ok || v != 0 {
		t.Fatalf("expected $zero to stay zero, got %d", v)
	}
}

func TestRegisterOutOfRangeIsVMFault(t *testing.T) {
	r := NewRegisters()

	if _, ok := r.Read(32); ok {
		t.Fatal("expected out-of-range read to fail")
	}

	if r.Write(32, 1) {
		t.Fatal("expected out-of-range write to fail")
	}
}

func TestAdduDoesNotTrapOnOverflow(t *testing.T) {
	c := newTestCPU(encodeR(0x00, 8, 9, 10, 0, 0x21)) // addu $10, $8, $9
	c.Reg.Write(8, 0xFFFFFFFF)
	c.Reg.Write(9, 1)

	next := c.Step()
	if next.Outcome != Forward {
		t.Fatalf("expected Forward (wraps, no trap), got %s", next)
	}

	v, _ := c.Reg.Read(10)
	if v != 0 {
		t.Fatalf("expected wraparound to 0, got %d", v)
	}
}

func TestSltiSignedComparesCorrectly(t *testing.T) {
	c := newTestCPU(encodeI(0x0A, 8, 9, 0xFFFF)) // slti $9, $8, -1
	c.Reg.Write(8, 0xFFFFFFFE)                   // -2, signed

	next := c.Step()
	if next.Outcome != Forward {
		t.Fatalf("expected Forward, got %s", next)
	}

	v, _ := c.Reg.Read(9)
	if v != 1 {
		t.Fatalf("expected -2 < -1 to be true (1), got %d", v)
	}
}

func TestSraReplicatesSignBit(t *testing.T) {
	c := newTestCPU(encodeR(0x00, 0, 8, 9, 1, 0x03)) // sra $9, $8, 1
	c.Reg.Write(8, 0x80000000)

	next := c.Step()
	if next.Outcome != Forward {
		t.Fatalf("expected Forward, got %s", next)
	}

	v, _ := c.Reg.Read(9)
	if v != 0xC0000000 {
		t.Fatalf("expected 0x80000000 >> 1 (arithmetic) = 0xc0000000, got %#08x", v)
	}
}

func TestMultuComputesFullUnsigned64BitProduct(t *testing.T) {
	c := newTestCPU(encodeR(0x00, 8, 9, 0, 0, 0x19)) // multu $8, $9
	c.Reg.Write(8, 0xFFFFFFFF)
	c.Reg.Write(9, 0xFFFFFFFF)

	next := c.Step()
	if next.Outcome != Forward {
		t.Fatalf("expected Forward, got %s", next)
	}

	if c.Reg.HI != 0xFFFFFFFE || c.Reg.LO != 0x00000001 {
		t.Fatalf("expected HI=0xfffffffe LO=0x00000001, got HI=%#08x LO=%#08x", c.Reg.HI, c.Reg.LO)
	}
}

func TestUnknownOpcodeIsVMError(t *testing.T) {
	c := newTestCPU(Word(0x3F << 26)) // opcode 0x3F is unassigned

	next := c.Step()
	if next.Outcome != Faulted {
		t.Fatalf("expected Faulted, got %s", next)
	}
}

func TestRunStopsOnException(t *testing.T) {
	c := newTestCPU(encodeR(0x00, 8, 9, 0, 0, 0x34)) // teq $8, $9
	c.Reg.Write(8, 1)
	c.Reg.Write(9, 1)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.LastNext.Outcome != Raised || c.LastNext.Kind != Trap {
		t.Fatalf("expected LastNext to be the Trap exception, got %s", c.LastNext)
	}
}
