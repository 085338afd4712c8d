package ie32vm

// opRESET implements the RESET instruction: the high nibble of the mode
// byte optionally resets the CPU itself, the low nibble selects which
// attached devices get reset. Device selection reads avr as it stood at
// the start of the instruction, before any self-reset clears it.
func (c *CPU) opRESET(i Instruction) Fault {
	modeVal, fault := c.resolve(i.v1(0, 0))
	if fault.IsSet() {
		return fault
	}
	mode := uint8(modeVal)
	avrAtStart := c.Regs.AVR

	bridge := c.Bridge()
	for idx := 0; idx < bridge.Count(); idx++ {
		if deviceSelected(mode&0x0F, uint32(idx), avrAtStart) {
			bridge.Reset(idx)
		}
	}

	if mode>>4 == 0 {
		c.Regs.Reset()
		c.Regs.SMT = 1
		c.Cycles = 0
		c.State = Running
		c.inHandler = false
		c.jumpTo(c.bootAddr)
	}
	return noFault
}

func deviceSelected(selector uint8, idx, avr uint32) bool {
	switch selector {
	case 0:
		return true
	case 1:
		return idx == avr
	case 2:
		return idx != avr
	case 3:
		return idx < avr
	case 4:
		return idx > avr
	default:
		return false
	}
}
