package ie32vm

// IF2 sub-mode codes, encoded in the third V1 operand.
const (
	subModeOR    = 1
	subModeAND   = 2
	subModeXOR   = 3
	subModeNOR   = 4
	subModeNAND  = 5
	subModeLEFT  = 6
	subModeRIGHT = 7
)

// execute runs the decoded instruction against the CPU's current state
// and returns any Fault raised along the way. It never advances pc
// itself for the ordinary sequential case; Next applies the uniform
// +4 rule once execute returns.
func (c *CPU) execute(i Instruction) Fault {
	switch i.Opcode {
	case OpCPY:
		return c.opCPY(i)
	case OpEX:
		return c.opEX(i)
	case OpADD:
		return c.opArith(i, func(a, b uint32) (uint32, bool, bool) {
			r := a + b
			carry, overflow := addCarryOverflow(a, b, r)
			return r, carry, overflow
		})
	case OpSUB:
		return c.opArith(i, func(a, b uint32) (uint32, bool, bool) {
			r := a - b
			carry, overflow := subCarryOverflow(a, b, r)
			return r, carry, overflow
		})
	case OpMUL:
		return c.opArith(i, func(a, b uint32) (uint32, bool, bool) {
			r, carry, overflow := mulCarryOverflow(int32(a), int32(b))
			return r, carry, overflow
		})
	case OpDIV:
		return c.opDivMod(i, true)
	case OpMOD:
		return c.opDivMod(i, false)
	case OpAND:
		return c.opArith(i, func(a, b uint32) (uint32, bool, bool) { return a & b, false, false })
	case OpBOR:
		return c.opArith(i, func(a, b uint32) (uint32, bool, bool) { return a | b, false, false })
	case OpXOR:
		return c.opArith(i, func(a, b uint32) (uint32, bool, bool) { return a ^ b, false, false })
	case OpSHL:
		return c.opShift(i, true)
	case OpSHR:
		return c.opShift(i, false)
	case OpCMP:
		return c.opCMP(i)
	case OpJPR:
		return c.opJPR(i)
	case OpLSM:
		return c.opLSM(i)
	case OpITR:
		return c.opITR(i)
	case OpIF:
		return c.opIF(i, false)
	case OpIFN:
		return c.opIF(i, true)
	case OpIF2:
		return c.opIF2(i)
	case OpLSA:
		return c.opLSA(i)
	case OpLEA:
		return c.opLEA(i)
	case OpWSA:
		return c.opWSA(i)
	case OpWEA:
		return c.opWEA(i)
	case OpSRM:
		return c.opSRM(i)
	case OpPUSH:
		return c.opPUSH(i)
	case OpPOP:
		return c.opPOP(i)
	case OpCALL:
		return c.opCALL(i)
	case OpHWD:
		return c.opHWD(i)
	case OpCYCLES:
		return c.opCYCLES(i)
	case OpHALT:
		c.State = Halted
		return noFault
	case OpRESET:
		return c.opRESET(i)
	default:
		return Fault{Code: ExUnknownOpcode}
	}
}

func (c *CPU) opCPY(i Instruction) Fault {
	dst := i.Operands[0]
	src, fault := c.resolve(i.v2(1, 1))
	if fault.IsSet() {
		return fault
	}
	pcChanged, fault := c.writeReg(dst, src)
	c.markPC(pcChanged)
	return fault
}

func (c *CPU) opEX(i Instruction) Fault {
	r1, r2 := i.Operands[0], i.Operands[1]
	v1, fault := c.readReg(r1)
	if fault.IsSet() {
		return fault
	}
	v2, fault := c.readReg(r2)
	if fault.IsSet() {
		return fault
	}
	pcChanged, fault := c.writeReg(r1, v2)
	if fault.IsSet() {
		return fault
	}
	c.markPC(pcChanged)
	pcChanged, fault = c.writeReg(r2, v1)
	c.markPC(pcChanged)
	return fault
}

// opArith implements the R,V2 dst := dst <op> src family with flag
// derivation: ADD, SUB, MUL, AND, BOR, XOR.
func (c *CPU) opArith(i Instruction, op func(a, b uint32) (result uint32, carry, overflow bool)) Fault {
	dst := i.Operands[0]
	a, fault := c.readReg(dst)
	if fault.IsSet() {
		return fault
	}
	b, fault := c.resolve(i.v2(1, 1))
	if fault.IsSet() {
		return fault
	}

	result, carry, overflow := op(a, b)

	pcChanged, fault := c.writeReg(dst, result)
	if fault.IsSet() {
		return fault
	}
	c.markPC(pcChanged)
	c.Regs.AF = deriveFlags(result, carry, overflow)
	return noFault
}

func (c *CPU) opShift(i Instruction, left bool) Fault {
	dst := i.Operands[0]
	a, fault := c.readReg(dst)
	if fault.IsSet() {
		return fault
	}
	amount, fault := c.resolve(i.v1(1, 1))
	if fault.IsSet() {
		return fault
	}
	shift := amount & 0xFF

	// Mirrors Rust's overflowing_shl/overflowing_shr on a u32: the shift
	// actually applied is taken mod 32 (so shift==32 is a no-op, not a
	// zeroing), and carry/overflow both just report shift>=32.
	maskedShift := shift % 32
	carry := shift >= 32
	var result uint32
	if left {
		result = a << maskedShift
	} else {
		result = a >> maskedShift
	}

	pcChanged, fault := c.writeReg(dst, result)
	if fault.IsSet() {
		return fault
	}
	c.markPC(pcChanged)
	c.Regs.AF = deriveFlags(result, carry, carry)
	return noFault
}

func (c *CPU) opCMP(i Instruction) Fault {
	dst := i.Operands[0]
	a, fault := c.readReg(dst)
	if fault.IsSet() {
		return fault
	}
	b, fault := c.resolve(i.v2(1, 1))
	if fault.IsSet() {
		return fault
	}
	result := a - b
	carry, overflow := subCarryOverflow(a, b, result)
	c.Regs.AF = deriveFlags(result, carry, overflow)
	return noFault
}

func (c *CPU) opJPR(i Instruction) Fault {
	op := i.v2(0, 0)
	var delta uint32
	if op.isReg {
		v, fault := c.readReg(op.reg)
		if fault.IsSet() {
			return fault
		}
		delta = v
	} else {
		delta = uint32(int32(int16(uint16(op.lit))))
	}
	c.jumpTo(c.Regs.PC + delta)
	return noFault
}

func (c *CPU) opLSM(i Instruction) Fault {
	if c.Regs.SMT == 0 {
		return Fault{Code: ExSupervisorReserved}
	}
	target, fault := c.resolve(i.v2(0, 0))
	if fault.IsSet() {
		return fault
	}
	c.Regs.SMT = 0
	c.inHandler = false
	c.jumpTo(target)
	return noFault
}

func (c *CPU) opITR(i Instruction) Fault {
	code, fault := c.resolve(i.v1(0, 0))
	if fault.IsSet() {
		return fault
	}
	return Fault{Code: ExInterruption, Data: uint16(code & 0xFF)}
}

func flagBit(idx uint32) (uint32, bool) {
	if idx < 1 || idx > 7 {
		return 0, false
	}
	return 1 << idx, true
}

func (c *CPU) opIF(i Instruction, negate bool) Fault {
	idxVal, fault := c.resolve(i.v1(0, 0))
	if fault.IsSet() {
		return fault
	}
	bit, ok := flagBit(idxVal)
	if !ok {
		return Fault{Code: ExInvalidConditionFlag}
	}
	set := c.Regs.AF&bit != 0
	skip := set == negate
	if skip {
		c.jumpTo(c.Regs.PC + 8)
	}
	return noFault
}

func (c *CPU) opIF2(i Instruction) Fault {
	aVal, fault := c.resolve(i.v1(0, 0))
	if fault.IsSet() {
		return fault
	}
	bVal, fault := c.resolve(i.v1(1, 1))
	if fault.IsSet() {
		return fault
	}
	modeVal, fault := c.resolve(i.v1(2, 2))
	if fault.IsSet() {
		return fault
	}

	aBit, ok := flagBit(aVal)
	if !ok {
		return Fault{Code: ExInvalidConditionFlag}
	}
	bBit, ok := flagBit(bVal)
	if !ok {
		return Fault{Code: ExInvalidConditionFlag}
	}
	a := c.Regs.AF&aBit != 0
	b := c.Regs.AF&bBit != 0

	var predicate bool
	switch modeVal {
	case subModeOR:
		predicate = a || b
	case subModeAND:
		predicate = a && b
	case subModeXOR:
		predicate = a != b
	case subModeNOR:
		predicate = !(a || b)
	case subModeNAND:
		predicate = !(a && b)
	case subModeLEFT:
		predicate = a
	case subModeRIGHT:
		predicate = b
	default:
		return Fault{Code: ExInvalidIF2SubMode}
	}

	if !predicate {
		c.jumpTo(c.Regs.PC + 8)
	}
	return noFault
}

func (c *CPU) opLSA(i Instruction) Fault {
	dst := i.Operands[0]
	addr, fault := c.resolve(i.v1(1, 1))
	if fault.IsSet() {
		return fault
	}
	add, fault := c.resolve(i.v1(2, 2))
	if fault.IsSet() {
		return fault
	}
	word, fault := c.memRead(addr+add, ActionRead)
	if fault.IsSet() {
		return fault
	}
	pcChanged, fault := c.writeReg(dst, word)
	c.markPC(pcChanged)
	return fault
}

func (c *CPU) opLEA(i Instruction) Fault {
	addr, fault := c.resolve(i.v1(0, 0))
	if fault.IsSet() {
		return fault
	}
	add, fault := c.resolve(i.v1(1, 1))
	if fault.IsSet() {
		return fault
	}
	mul, fault := c.resolve(i.v1(2, 2))
	if fault.IsSet() {
		return fault
	}
	word, fault := c.memRead(addr+add*mul, ActionRead)
	if fault.IsSet() {
		return fault
	}
	c.Regs.AVR = word
	return noFault
}

func (c *CPU) opWSA(i Instruction) Fault {
	addr, fault := c.resolve(i.v1(0, 0))
	if fault.IsSet() {
		return fault
	}
	add, fault := c.resolve(i.v1(1, 1))
	if fault.IsSet() {
		return fault
	}
	val, fault := c.resolve(i.v1(2, 2))
	if fault.IsSet() {
		return fault
	}
	return c.memWrite(addr+add, val, ActionWrite)
}

func (c *CPU) opWEA(i Instruction) Fault {
	addr, fault := c.resolve(i.v1(0, 0))
	if fault.IsSet() {
		return fault
	}
	add, fault := c.resolve(i.v1(1, 1))
	if fault.IsSet() {
		return fault
	}
	mul, fault := c.resolve(i.v1(2, 2))
	if fault.IsSet() {
		return fault
	}
	return c.memWrite(addr+add*mul, c.Regs.AVR, ActionWrite)
}

func (c *CPU) opSRM(i Instruction) Fault {
	addr, fault := c.resolve(i.v1(0, 0))
	if fault.IsSet() {
		return fault
	}
	add, fault := c.resolve(i.v1(1, 1))
	if fault.IsSet() {
		return fault
	}
	reg := i.Operands[2]

	memVal, fault := c.memRead(addr+add, ActionRead)
	if fault.IsSet() {
		return fault
	}
	regVal, fault := c.readReg(reg)
	if fault.IsSet() {
		return fault
	}
	if fault = c.memWrite(addr+add, regVal, ActionWrite); fault.IsSet() {
		return fault
	}
	pcChanged, fault := c.writeReg(reg, memVal)
	c.markPC(pcChanged)
	return fault
}

func (c *CPU) opPUSH(i Instruction) Fault {
	src, fault := c.resolve(i.v2(0, 0))
	if fault.IsSet() {
		return fault
	}
	return c.push(src)
}

func (c *CPU) opPOP(i Instruction) Fault {
	dst := i.Operands[0]
	word, fault := c.pop()
	if fault.IsSet() {
		return fault
	}
	pcChanged, fault := c.writeReg(dst, word)
	c.markPC(pcChanged)
	return fault
}

func (c *CPU) opCALL(i Instruction) Fault {
	target, fault := c.resolve(i.v2(0, 0))
	if fault.IsSet() {
		return fault
	}
	returnAddr := c.Regs.PC + 4
	if fault = c.push(returnAddr); fault.IsSet() {
		return fault
	}
	c.jumpTo(target)
	return noFault
}

func (c *CPU) opCYCLES(i Instruction) Fault {
	dst := i.Operands[0]
	pcChanged, fault := c.writeReg(dst, uint32(c.Cycles))
	c.markPC(pcChanged)
	return fault
}

// markPC folds a register-write's pcChanged outcome into the cycle's
// suppressed-advance marker without ever clearing it back to false.
func (c *CPU) markPC(pcChanged bool) {
	if pcChanged {
		c.pcChanged = true
	}
}
