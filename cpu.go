package ie32vm

// CPU is the fetch/decode/execute core: one register file, one MMU, and
// a reference to the mapped memory it fetches instructions and data
// through. It drives nothing on its own; callers step it one cycle at a
// time via Next.
type CPU struct {
	Regs   Registers
	Cycles uint64
	State  RunState

	mmu       MMU
	mem       *MappedMemory
	bootAddr  uint32
	pcChanged bool
	inHandler bool
}

// NewCPU builds a CPU wired to mem, in the Running state with every
// register zeroed.
func NewCPU(mem *MappedMemory) *CPU {
	return &CPU{mem: mem, State: Running}
}

// SetBootAddress configures the pc value a full reset (RESET with a
// zero high nibble, or Motherboard.Reset) installs.
func (c *CPU) SetBootAddress(addr uint32) { c.bootAddr = addr }

// Bridge exposes the device bridge backing this CPU's mapped memory, for
// components (HWD, RESET) that need to address devices by index rather
// than by mapped address.
func (c *CPU) Bridge() *Bridge { return c.mem.Bridge() }

// Next executes exactly one cycle: fetch, decode, execute, and the
// uniform pc-advance/exception-redirection rule. It is a no-op once the
// CPU has halted.
func (c *CPU) Next() {
	if c.State == Halted {
		return
	}

	c.pcChanged = false
	startPC := c.Regs.PC

	fault := c.cycle(startPC)
	if fault.IsSet() {
		c.raiseFault(fault, startPC)
	}

	c.Cycles++
	if !c.pcChanged {
		c.Regs.PC = startPC + 4
	}
}

func (c *CPU) cycle(startPC uint32) Fault {
	if startPC%4 != 0 {
		return Fault{Code: ExUnalignedAddress, Data: uint16(startPC)}
	}

	pAddr, denied, devEx := c.mmu.Translate(c.mem, &c.Regs, startPC, ActionExec)
	if devEx != 0 {
		return Fault{Code: ExDeviceException, Data: devEx}
	}
	if denied {
		return Fault{Code: mmuExceptionFor(ActionExec)}
	}

	var ex uint16
	word := c.mem.Read(pAddr, &ex)
	if ex != 0 {
		return Fault{Code: ExDeviceException, Data: ex}
	}

	return c.execute(DecodeInstruction(word))
}

// raiseFault resolves a pending Fault into the architectural exception
// state: et is rebuilt from scratch, pc redirects to ev, smt is forced
// to 1, and the cycle's pc-advance is suppressed. A fault raised while
// already inside a handler updates the same registers and then halts the
// CPU, so the handler is not entered again; LSM marks the return from a
// handler by clearing the in-handler flag.
func (c *CPU) raiseFault(f Fault, faultPC uint32) {
	var supBit uint32
	if c.Regs.SMT != 0 {
		supBit = 1 << 24
	}
	c.Regs.ET = supBit | uint32(f.Code)<<16 | uint32(f.Data)
	c.Regs.ERA = faultPC
	c.Regs.PC = c.Regs.EV
	c.Regs.SMT = 1
	c.pcChanged = true

	if c.inHandler {
		c.State = Halted
	}
	c.inHandler = true
}

// readReg reads register code under the CPU's current privilege mode,
// translating a privilege or unknown-register violation into a Fault.
func (c *CPU) readReg(code uint8) (uint32, Fault) {
	v, access := c.Regs.Read(code, c.Regs.SMT != 0)
	switch access {
	case RegUnknown:
		return 0, Fault{Code: ExUnknownRegister}
	case RegProtected:
		return 0, Fault{Code: ExReadProtected}
	default:
		return v, noFault
	}
}

// writeReg writes register code under the CPU's current privilege mode.
// pcChanged reports whether pc itself was the target.
func (c *CPU) writeReg(code uint8, value uint32) (pcChanged bool, fault Fault) {
	access, pcw := c.Regs.Write(code, c.Regs.SMT != 0, value)
	switch access {
	case RegUnknown:
		return false, Fault{Code: ExUnknownRegister}
	case RegProtected:
		return false, Fault{Code: ExWriteProtected}
	default:
		return pcw, noFault
	}
}

// resolve reads an operand's value: a register (subject to privilege)
// or a literal already widened to 32 bits.
func (c *CPU) resolve(op operand) (uint32, Fault) {
	if op.isReg {
		return c.readReg(op.reg)
	}
	return op.lit, noFault
}

// memRead translates vAddr for action and loads the word there,
// wrapping MMU denial and device failure into the matching Fault.
func (c *CPU) memRead(vAddr uint32, action MemAction) (uint32, Fault) {
	pAddr, denied, devEx := c.mmu.Translate(c.mem, &c.Regs, vAddr, action)
	if devEx != 0 {
		return 0, Fault{Code: ExDeviceException, Data: devEx}
	}
	if denied {
		return 0, Fault{Code: mmuExceptionFor(action)}
	}
	if pAddr%4 != 0 {
		return 0, Fault{Code: ExUnalignedAddress, Data: uint16(pAddr)}
	}
	var ex uint16
	word := c.mem.Read(pAddr, &ex)
	if ex != 0 {
		return 0, Fault{Code: ExDeviceException, Data: ex}
	}
	return word, noFault
}

// memWrite translates vAddr for action and stores word there, wrapping
// MMU denial and device failure into the matching Fault.
func (c *CPU) memWrite(vAddr uint32, word uint32, action MemAction) Fault {
	pAddr, denied, devEx := c.mmu.Translate(c.mem, &c.Regs, vAddr, action)
	if devEx != 0 {
		return Fault{Code: ExDeviceException, Data: devEx}
	}
	if denied {
		return Fault{Code: mmuExceptionFor(action)}
	}
	if pAddr%4 != 0 {
		return Fault{Code: ExUnalignedAddress, Data: uint16(pAddr)}
	}
	var ex uint16
	c.mem.Write(pAddr, word, &ex)
	if ex != 0 {
		return Fault{Code: ExDeviceException, Data: ex}
	}
	return noFault
}

func (c *CPU) stackPointer() *uint32 {
	if c.Regs.SMT == 0 {
		return &c.Regs.USP
	}
	return &c.Regs.SSP
}

// push pre-decrements the active-mode stack pointer and stores word.
func (c *CPU) push(word uint32) Fault {
	sp := c.stackPointer()
	*sp -= 4
	return c.memWrite(*sp, word, ActionWrite)
}

// pop loads from the active-mode stack pointer and post-increments it on
// success only.
func (c *CPU) pop() (uint32, Fault) {
	sp := c.stackPointer()
	word, fault := c.memRead(*sp, ActionRead)
	if !fault.IsSet() {
		*sp += 4
	}
	return word, fault
}

// jumpTo redirects pc to addr and marks the cycle's advance as handled.
func (c *CPU) jumpTo(addr uint32) {
	c.Regs.PC = addr
	c.pcChanged = true
}
