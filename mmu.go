package ie32vm

// MemAction identifies the kind of access a translation is performed on
// behalf of, since page/directory entries carry independent permission
// bits per action.
type MemAction int

const (
	ActionRead MemAction = iota
	ActionWrite
	ActionExec
)

type privMode int

const (
	modeUser privMode = iota
	modeSup
)

// MMU translates virtual addresses to physical addresses through the
// two-level page table resident in mapped memory. It holds no state of
// its own: every translation re-reads the directory and table entries it
// needs, parameterised by the CPU's pda/mtt/smt registers.
type MMU struct{}

// Translate resolves vAddr for the given action. If mtt is zero the
// translation is the identity. On success it returns the physical
// address and denied=false, deviceEx=0. If a page/directory entry
// forbids the access, denied is true. If reading an entry itself raised
// a device exception, deviceEx carries that exception's code unchanged.
func (MMU) Translate(mem *MappedMemory, regs *Registers, vAddr uint32, action MemAction) (pAddr uint32, denied bool, deviceEx uint16) {
	if regs.MTT == 0 {
		return vAddr, false, 0
	}

	mode := modeUser
	if regs.SMT != 0 {
		mode = modeSup
	}

	var ex uint16

	dirEntryAddr := regs.PDA + (vAddr&0x3FF)*4
	dirEntry := mem.Read(dirEntryAddr, &ex)
	if ex != 0 {
		return 0, false, ex
	}

	vPage, passThrough, denied := decodeEntry(dirEntry, action, mode)
	if passThrough {
		return vAddr, false, 0
	}
	if denied {
		return 0, true, 0
	}

	vPageAddr := vPage * 16384
	tableEntryAddr := vPageAddr + ((vAddr<<10)>>22)*4
	tableEntry := mem.Read(tableEntryAddr, &ex)
	if ex != 0 {
		return 0, false, ex
	}

	pPage, passThrough, denied := decodeEntry(tableEntry, action, mode)
	if passThrough {
		return vAddr, false, 0
	}
	if denied {
		return 0, true, 0
	}

	return pPage*1024 + (vAddr & 0x3FF), false, 0
}

// decodeEntry interprets a single page-directory or page-table entry for
// the given action and privilege mode. It never looks at a device; its
// inputs are a raw word already read from mapped memory.
func decodeEntry(entry uint32, action MemAction, mode privMode) (value uint32, passThrough, denied bool) {
	presentBit := uint32(1) << 30
	if mode == modeSup {
		presentBit = uint32(1) << 31
	}
	if entry&presentBit == 0 {
		return 0, true, false
	}

	actionShift := 0
	switch action {
	case ActionRead:
		actionShift = 2
	case ActionWrite:
		actionShift = 1
	case ActionExec:
		actionShift = 0
	}
	modeShift := 0
	if mode == modeSup {
		modeShift = 3
	}

	permBit := uint32(1) << uint(24+actionShift+modeShift)
	if entry&permBit == 0 {
		return 0, false, true
	}
	return entry & 0x00FFFFFF, false, false
}
