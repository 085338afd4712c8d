package ie32vm

import "math"

func substituteForZero(p DivZeroPolicy) (uint32, bool) {
	switch p {
	case PolicyMin:
		return 0x80000000, true
	case PolicyZero:
		return 0, true
	case PolicyMax:
		return 0x7FFFFFFF, true
	default:
		return 0, false
	}
}

func substituteForOverflow(p DivOverflowPolicy) (uint32, bool) {
	switch p {
	case OverflowMin:
		return 0x80000000, true
	case OverflowZero:
		return 0, true
	case OverflowMax:
		return 0x7FFFFFFF, true
	default:
		return 0, false
	}
}

// opDivMod implements both DIV and MOD: they share operand shape,
// mode-byte decoding, and substitution policy, differing only in which
// arithmetic result they keep.
func (c *CPU) opDivMod(i Instruction, isDiv bool) Fault {
	dst := i.Operands[0]
	a, fault := c.readReg(dst)
	if fault.IsSet() {
		return fault
	}
	b, fault := c.resolve(i.v1(1, 1))
	if fault.IsSet() {
		return fault
	}
	modeVal, fault := c.resolve(i.v1(2, 2))
	if fault.IsSet() {
		return fault
	}
	mode := DecodeDivMode(uint8(modeVal))

	if b == 0 {
		result, ok := substituteForZero(mode.ZeroPolicy)
		if !ok {
			return Fault{Code: ExDivideByZero}
		}
		return c.commitDivResult(dst, result, true, true)
	}

	if mode.Signed {
		ai, bi := int32(a), int32(b)
		if ai == math.MinInt32 && bi == -1 {
			result, ok := substituteForOverflow(mode.OverflowPolicy)
			if !ok {
				return Fault{Code: ExOverflowingDivide}
			}
			return c.commitDivResult(dst, result, true, true)
		}
		var result int32
		if isDiv {
			result = ai / bi
		} else {
			result = ai % bi
		}
		return c.commitDivResult(dst, uint32(result), false, false)
	}

	var result uint32
	if isDiv {
		result = a / b
	} else {
		result = a % b
	}
	return c.commitDivResult(dst, result, false, false)
}

func (c *CPU) commitDivResult(dst uint8, result uint32, carry, overflow bool) Fault {
	pcChanged, fault := c.writeReg(dst, result)
	if fault.IsSet() {
		return fault
	}
	c.markPC(pcChanged)
	c.Regs.AF = deriveFlags(result, carry, overflow)
	return noFault
}
