package cpu

// This file holds the semantics of every decoded instruction. Each
// function reads its operands, computes a result, and returns the cycle's
// Next outcome; none of them update PC themselves — that is Run's job.

// branchTarget computes the PC-relative target of a conditional or
// REGIMM branch. There is no branch-delay slot: the branch, once taken,
// transfers control immediately.
func branchTarget(pc uint32, imm16 uint16) uint32 {
	return pc + 4 + (SignExtend16(imm16) << 2)
}

func (c *CPU) execBranch(w Word, cond func(rs, rt uint32) bool) Next {
	rs, ok := c.Reg.Read(w.Rs())
	if !ok {
		return VMError("register out of range")
	}

	rt, ok := c.Reg.Read(w.Rt())
	if !ok {
		return VMError("register out of range")
	}

	if cond(rs, rt) {
		return BranchTo(branchTarget(c.Reg.PC, w.Imm16()))
	}

	return ForwardNext()
}

func (c *CPU) execBranchZ(w Word, cond func(rs int32) bool) Next {
	rs, ok := c.Reg.Read(w.Rs())
	if !ok {
		return VMError("register out of range")
	}

	if cond(int32(rs)) {
		return BranchTo(branchTarget(c.Reg.PC, w.Imm16()))
	}

	return ForwardNext()
}

func (c *CPU) execBranchZLink(w Word, link bool, cond func(rs int32) bool) Next {
	rs, ok := c.Reg.Read(w.Rs())
	if !ok {
		return VMError("register out of range")
	}

	taken := cond(int32(rs))

	if link {
		if !c.Reg.Link(31) {
			return VMError("link failed")
		}
	}

	if taken {
		return BranchTo(branchTarget(c.Reg.PC, w.Imm16()))
	}

	return ForwardNext()
}

func (c *CPU) execJ(w Word) Next {
	target := c.Reg.PC&0xF0000000 | (w.Target26() << 2)
	return BranchTo(target)
}

func (c *CPU) execJal(w Word) Next {
	if !c.Reg.Link(31) {
		return VMError("link failed")
	}

	target := c.Reg.PC&0xF0000000 | (w.Target26() << 2)

	return BranchTo(target)
}

func (c *CPU) execJr(w Word) Next {
	rs, ok := c.Reg.Read(w.Rs())
	if !ok {
		return VMError("register out of range")
	}

	return BranchTo(rs)
}

func (c *CPU) execJalr(w Word) Next {
	rs, ok := c.Reg.Read(w.Rs())
	if !ok {
		return VMError("register out of range")
	}

	dst := w.Rd()
	if dst == 0 {
		dst = 31
	}

	if !c.Reg.Link(dst) {
		return VMError("link failed")
	}

	return BranchTo(rs)
}

func (c *CPU) execMovz(w Word) Next {
	t, ok := c.Reg.BorrowTriple(w.Rd(), w.Rs(), w.Rt())
	if !ok {
		return VMError("register out of range")
	}

	if t.Rt == 0 {
		t.Commit(t.Rs)
	}

	return ForwardNext()
}

func (c *CPU) execMovn(w Word) Next {
	t, ok := c.Reg.BorrowTriple(w.Rd(), w.Rs(), w.Rt())
	if !ok {
		return VMError("register out of range")
	}

	if t.Rt != 0 {
		t.Commit(t.Rs)
	}

	return ForwardNext()
}

func (c *CPU) execMfhi(w Word) Next {
	if !c.Reg.Write(w.Rd(), c.Reg.HI) {
		return VMError("register out of range")
	}

	return ForwardNext()
}

func (c *CPU) execMthi(w Word) Next {
	rs, ok := c.Reg.Read(w.Rs())
	if !ok {
		return VMError("register out of range")
	}

	c.Reg.HI = rs

	return ForwardNext()
}

func (c *CPU) execMflo(w Word) Next {
	if !c.Reg.Write(w.Rd(), c.Reg.LO) {
		return VMError("register out of range")
	}

	return ForwardNext()
}

func (c *CPU) execMtlo(w Word) Next {
	rs, ok := c.Reg.Read(w.Rs())
	if !ok {
		return VMError("register out of range")
	}

	c.Reg.LO = rs

	return ForwardNext()
}

func (c *CPU) execMultu(w Word) Next {
	rs, ok := c.Reg.Read(w.Rs())
	if !ok {
		return VMError("register out of range")
	}

	rt, ok := c.Reg.Read(w.Rt())
	if !ok {
		return VMError("register out of range")
	}

	product := uint64(rs) * uint64(rt)
	c.Reg.LO = uint32(product)
	c.Reg.HI = uint32(product >> 32)

	return ForwardNext()
}

func (c *CPU) execAdd(w Word, trapping bool) Next {
	t, ok := c.Reg.BorrowTriple(w.Rd(), w.Rs(), w.Rt())
	if !ok {
		return VMError("register out of range")
	}

	sum := t.Rs + t.Rt

	if trapping && twosComplementOverflowed(t.Rs, t.Rt, sum) {
		return Raise(Overflow)
	}

	t.Commit(sum)

	return ForwardNext()
}

func (c *CPU) execSub(w Word, trapping bool) Next {
	t, ok := c.Reg.BorrowTriple(w.Rd(), w.Rs(), w.Rt())
	if !ok {
		return VMError("register out of range")
	}

	negRt := -t.Rt
	diff := t.Rs + negRt

	if trapping && twosComplementOverflowed(t.Rs, negRt, diff) {
		return Raise(Overflow)
	}

	t.Commit(diff)

	return ForwardNext()
}

func (c *CPU) execLogical(w Word, f func(rs, rt uint32) uint32) Next {
	t, ok := c.Reg.BorrowTriple(w.Rd(), w.Rs(), w.Rt())
	if !ok {
		return VMError("register out of range")
	}

	t.Commit(f(t.Rs, t.Rt))

	return ForwardNext()
}

func (c *CPU) execSltReg(w Word, signed bool) Next {
	t, ok := c.Reg.BorrowTriple(w.Rd(), w.Rs(), w.Rt())
	if !ok {
		return VMError("register out of range")
	}

	var less bool
	if signed {
		less = int32(t.Rs) < int32(t.Rt)
	} else {
		less = t.Rs < t.Rt
	}

	if less {
		t.Commit(1)
	} else {
		t.Commit(0)
	}

	return ForwardNext()
}

func (c *CPU) execTrap(w Word, cond func(rs, rt uint32) bool) Next {
	rs, ok := c.Reg.Read(w.Rs())
	if !ok {
		return VMError("register out of range")
	}

	rt, ok := c.Reg.Read(w.Rt())
	if !ok {
		return VMError("register out of range")
	}

	if cond(rs, rt) {
		return Raise(Trap)
	}

	return ForwardNext()
}

func (c *CPU) execShift(w Word, f func(v, sh uint32) uint32) Next {
	rt, ok := c.Reg.Read(w.Rt())
	if !ok {
		return VMError("register out of range")
	}

	if !c.Reg.Write(w.Rd(), f(rt, w.Shamt())) {
		return VMError("register out of range")
	}

	return ForwardNext()
}

func (c *CPU) execShiftV(w Word, f func(v, sh uint32) uint32) Next {
	rs, ok := c.Reg.Read(w.Rs())
	if !ok {
		return VMError("register out of range")
	}

	rt, ok := c.Reg.Read(w.Rt())
	if !ok {
		return VMError("register out of range")
	}

	if !c.Reg.Write(w.Rd(), f(rt, rs&0x1F)) {
		return VMError("register out of range")
	}

	return ForwardNext()
}

func (c *CPU) execAddi(w Word, trapping bool) Next {
	rs, ok := c.Reg.Read(w.Rs())
	if !ok {
		return VMError("register out of range")
	}

	imm := SignExtend16(w.Imm16())
	sum := rs + imm

	if trapping && twosComplementOverflowed(rs, imm, sum) {
		return Raise(Overflow)
	}

	if !c.Reg.Write(w.Rt(), sum) {
		return VMError("register out of range")
	}

	return ForwardNext()
}

func (c *CPU) execSlti(w Word, signed bool) Next {
	rs, ok := c.Reg.Read(w.Rs())
	if !ok {
		return VMError("register out of range")
	}

	var less bool
	if signed {
		less = int32(rs) < int32(SignExtend16(w.Imm16()))
	} else {
		less = rs < ZeroExtend16(w.Imm16())
	}

	var v uint32
	if less {
		v = 1
	}

	if !c.Reg.Write(w.Rt(), v) {
		return VMError("register out of range")
	}

	return ForwardNext()
}

func (c *CPU) execLogicalImm(w Word, f func(rs, imm uint32) uint32, extend func(uint16) uint32) Next {
	rs, ok := c.Reg.Read(w.Rs())
	if !ok {
		return VMError("register out of range")
	}

	if !c.Reg.Write(w.Rt(), f(rs, extend(w.Imm16()))) {
		return VMError("register out of range")
	}

	return ForwardNext()
}

func (c *CPU) execLui(w Word) Next {
	if !c.Reg.Write(w.Rt(), uint32(w.Imm16())<<16) {
		return VMError("register out of range")
	}

	return ForwardNext()
}

func (c *CPU) execLoad(w Word, size int, signed bool) Next {
	base, ok := c.Reg.Read(w.Rs())
	if !ok {
		return VMError("register out of range")
	}

	addr := base + SignExtend16(w.Imm16())

	var (
		v   uint32
		got bool
	)

	switch size {
	case 1:
		b, okRead := c.Mem.LoadByte(c.Ctx, addr)
		got = okRead

		if signed {
			v = SignExtend8(b)
		} else {
			v = uint32(b)
		}
	case 2:
		h, okRead := c.Mem.LoadHalfword(c.Ctx, addr)
		got = okRead

		if signed {
			v = SignExtend16(h)
		} else {
			v = uint32(h)
		}
	case 4:
		word, okRead := c.Mem.LoadWord(c.Ctx, addr)
		got = okRead
		v = word
	}

	if !got {
		return Raise(AddrLoadFetch)
	}

	if !c.Reg.Write(w.Rt(), v) {
		return VMError("register out of range")
	}

	return ForwardNext()
}

func (c *CPU) execStore(w Word, size int) Next {
	base, ok := c.Reg.Read(w.Rs())
	if !ok {
		return VMError("register out of range")
	}

	rt, ok := c.Reg.Read(w.Rt())
	if !ok {
		return VMError("register out of range")
	}

	addr := base + SignExtend16(w.Imm16())

	var stored bool

	switch size {
	case 1:
		stored = c.Mem.StoreByte(c.Ctx, addr, byte(rt))
	case 2:
		stored = c.Mem.StoreHalfword(c.Ctx, addr, uint16(rt))
	case 4:
		stored = c.Mem.StoreWord(c.Ctx, addr, rt)
	}

	if !stored {
		return Raise(AddrStore)
	}

	return ForwardNext()
}
