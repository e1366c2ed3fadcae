package cpu

import "fmt"

// dispatch decodes w by its primary opcode field and executes the matching
// instruction, producing the cycle's Next outcome.
func (c *CPU) dispatch(w Word) Next {
	switch w.Opcode() {
	case 0x00:
		return c.execSpecial(w)
	case 0x01:
		return c.execRegimm(w)
	case 0x02:
		return c.execJ(w)
	case 0x03:
		return c.execJal(w)
	case 0x04:
		return c.execBranch(w, func(rs, rt uint32) bool { return rs == rt })
	case 0x05:
		return c.execBranch(w, func(rs, rt uint32) bool { return rs != rt })
	case 0x06:
		return c.execBranchZ(w, func(rs int32) bool { return rs <= 0 })
	case 0x07:
		return c.execBranchZ(w, func(rs int32) bool { return rs > 0 })
	case 0x08:
		return c.execAddi(w, true)
	case 0x09:
		return c.execAddi(w, false)
	case 0x0A:
		return c.execSlti(w, true)
	case 0x0B:
		return c.execSlti(w, false)
	case 0x0C:
		return c.execLogicalImm(w, func(rs, imm uint32) uint32 { return rs & imm }, ZeroExtend16)
	case 0x0D:
		return c.execLogicalImm(w, func(rs, imm uint32) uint32 { return rs | imm }, ZeroExtend16)
	case 0x0E:
		return c.execLogicalImm(w, func(rs, imm uint32) uint32 { return rs ^ imm }, ZeroExtend16)
	case 0x0F:
		return c.execLui(w)
	case 0x20:
		return c.execLoad(w, 1, true)
	case 0x21:
		return c.execLoad(w, 2, true)
	case 0x23:
		return c.execLoad(w, 4, true)
	case 0x24:
		return c.execLoad(w, 1, false)
	case 0x25:
		return c.execLoad(w, 2, false)
	case 0x28:
		return c.execStore(w, 1)
	case 0x29:
		return c.execStore(w, 2)
	case 0x2B:
		return c.execStore(w, 4)
	default:
		return VMError(fmt.Sprintf("unknown opcode %#02x", w.Opcode()))
	}
}

// execSpecial dispatches an R-type instruction (opcode 0x00) by its funct
// field.
func (c *CPU) execSpecial(w Word) Next {
	switch w.Funct() {
	case 0x00:
		return c.execShift(w, func(v uint32, sh uint32) uint32 { return v << sh })
	case 0x02:
		return c.execShift(w, func(v uint32, sh uint32) uint32 { return v >> sh })
	case 0x03:
		return c.execShift(w, func(v uint32, sh uint32) uint32 { return uint32(int32(v) >> sh) })
	case 0x04:
		return c.execShiftV(w, func(v uint32, sh uint32) uint32 { return v << sh })
	case 0x06:
		return c.execShiftV(w, func(v uint32, sh uint32) uint32 { return v >> sh })
	case 0x07:
		return c.execShiftV(w, func(v uint32, sh uint32) uint32 { return uint32(int32(v) >> sh) })
	case 0x08:
		return c.execJr(w)
	case 0x09:
		return c.execJalr(w)
	case 0x0A:
		return c.execMovz(w)
	case 0x0B:
		return c.execMovn(w)
	case 0x0C:
		return Raise(Syscall)
	case 0x10:
		return c.execMfhi(w)
	case 0x11:
		return c.execMthi(w)
	case 0x12:
		return c.execMflo(w)
	case 0x13:
		return c.execMtlo(w)
	case 0x19:
		return c.execMultu(w)
	case 0x20:
		return c.execAdd(w, true)
	case 0x21:
		return c.execAdd(w, false)
	case 0x22:
		return c.execSub(w, true)
	case 0x23:
		return c.execSub(w, false)
	case 0x24:
		return c.execLogical(w, func(rs, rt uint32) uint32 { return rs & rt })
	case 0x25:
		return c.execLogical(w, func(rs, rt uint32) uint32 { return rs | rt })
	case 0x26:
		return c.execLogical(w, func(rs, rt uint32) uint32 { return rs ^ rt })
	case 0x27:
		return c.execLogical(w, func(rs, rt uint32) uint32 { return ^(rs | rt) })
	case 0x2A:
		return c.execSltReg(w, true)
	case 0x2B:
		return c.execSltReg(w, false)
	case 0x31:
		return c.execTrap(w, func(rs, rt uint32) bool { return rs >= rt })
	case 0x33:
		return c.execTrap(w, func(rs, rt uint32) bool { return rs < rt })
	case 0x34:
		return c.execTrap(w, func(rs, rt uint32) bool { return rs == rt })
	case 0x36:
		return c.execTrap(w, func(rs, rt uint32) bool { return rs != rt })
	default:
		return VMError(fmt.Sprintf("unknown funct %#02x", w.Funct()))
	}
}

// execRegimm dispatches opcode 0x01 (the "REGIMM" family) by the rt field.
func (c *CPU) execRegimm(w Word) Next {
	switch w.Rt() {
	case 0x00:
		return c.execBranchZLink(w, false, func(rs int32) bool { return rs < 0 })
	case 0x01:
		return c.execBranchZLink(w, false, func(rs int32) bool { return rs >= 0 })
	case 0x10:
		return c.execBranchZLink(w, true, func(rs int32) bool { return rs < 0 })
	case 0x11:
		return c.execBranchZLink(w, true, func(rs int32) bool { return rs >= 0 })
	default:
		return VMError(fmt.Sprintf("unknown regimm rt %#02x", w.Rt()))
	}
}
