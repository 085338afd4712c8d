package ie32vm

import "testing"

func TestMMUIdentityWhenDisabled(t *testing.T) {
	bridge := NewBridge([]Device{newRAM("ram", 1, 0x10000)})
	mem := NewMappedMemory(bridge)
	mem.Map(0, 0)

	var regs Registers
	regs.MTT = 0

	addr, denied, devEx := (MMU{}).Translate(mem, &regs, 0x1234, ActionRead)
	if denied || devEx != 0 {
		t.Fatalf("unexpected denial/exception: denied=%v devEx=%v", denied, devEx)
	}
	if addr != 0x1234 {
		t.Fatalf("addr = %#x, want identity 0x1234", addr)
	}
}

const (
	testPresentSup   = uint32(1) << 31
	testPermReadSup  = uint32(1) << 29
	testPermAllSup   = uint32(0x3F) << 24
)

func TestMMUTwoLevelTranslationSuccess(t *testing.T) {
	bridge := NewBridge([]Device{newRAM("ram", 1, 0x8000)})
	mem := NewMappedMemory(bridge)
	mem.Map(0, 0)

	// Directory entry for v_addr=0 at pda+0: present+all-perms, vpage=1.
	var ex uint16
	mem.Write(0, testPresentSup|testPermAllSup|1, &ex)
	// Table entry at vpage*16384 + 0: present+all-perms, ppage=2.
	mem.Write(16384, testPresentSup|testPermAllSup|2, &ex)

	var regs Registers
	regs.MTT = 1
	regs.SMT = 1
	regs.PDA = 0

	addr, denied, devEx := (MMU{}).Translate(mem, &regs, 0, ActionRead)
	if denied || devEx != 0 {
		t.Fatalf("unexpected denial/exception: denied=%v devEx=%v", denied, devEx)
	}
	if addr != 2048 {
		t.Fatalf("addr = %d, want 2048", addr)
	}
}

func TestMMUPermissionDenied(t *testing.T) {
	bridge := NewBridge([]Device{newRAM("ram", 1, 0x8000)})
	mem := NewMappedMemory(bridge)
	mem.Map(0, 0)

	var ex uint16
	// Present but no permission bits granted at all.
	mem.Write(0, testPresentSup|1, &ex)
	mem.Write(16384, testPresentSup|testPermAllSup|2, &ex)

	var regs Registers
	regs.MTT = 1
	regs.SMT = 1
	regs.PDA = 0

	_, denied, devEx := (MMU{}).Translate(mem, &regs, 0, ActionRead)
	if !denied || devEx != 0 {
		t.Fatalf("expected permission-denied, got denied=%v devEx=%v", denied, devEx)
	}
}

func TestMMUPassThroughWhenPresentBitClear(t *testing.T) {
	bridge := NewBridge([]Device{newRAM("ram", 1, 0x8000)})
	mem := NewMappedMemory(bridge)
	mem.Map(0, 0)

	var ex uint16
	mem.Write(0, 0, &ex) // present bit clear for every mode

	var regs Registers
	regs.MTT = 1
	regs.SMT = 1
	regs.PDA = 0

	addr, denied, devEx := (MMU{}).Translate(mem, &regs, 0x55, ActionRead)
	if denied || devEx != 0 {
		t.Fatalf("unexpected denial/exception: denied=%v devEx=%v", denied, devEx)
	}
	if addr != 0x55 {
		t.Fatalf("addr = %#x, want pass-through 0x55", addr)
	}
}
