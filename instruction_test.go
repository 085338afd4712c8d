package ie32vm

import "testing"

func TestInstructionRoundTrip(t *testing.T) {
	cases := []Instruction{
		{Opcode: OpHALT, RegFlags: [3]bool{false, false, false}, Operands: [3]byte{0, 0, 0}},
		{Opcode: OpCPY, RegFlags: [3]bool{true, false, false}, Operands: [3]byte{0x05, 0xAB, 0xCD}},
		{Opcode: OpDIV, RegFlags: [3]bool{true, true, false}, Operands: [3]byte{0x01, 0x02, 0x03}},
		{Opcode: OpRESET, RegFlags: [3]bool{false, false, false}, Operands: [3]byte{0xFF, 0, 0}},
		{Opcode: OpIF2, RegFlags: [3]bool{true, true, true}, Operands: [3]byte{7, 3, 2}},
	}

	for _, want := range cases {
		word := EncodeInstruction(want)
		got := DecodeInstruction(word)
		if got != want {
			t.Fatalf("round trip mismatch: want %+v, got %+v (word=0x%08X)", want, got, word)
		}
	}
}

func TestDecodeInstructionFieldLayout(t *testing.T) {
	// opcode 0x01 (CPY), flags 1,0,1, operand bytes 0x11,0x22,0x33.
	word := uint32(0x01)<<27 | uint32(1)<<26 | uint32(0)<<25 | uint32(1)<<24 |
		uint32(0x11)<<16 | uint32(0x22)<<8 | uint32(0x33)

	i := DecodeInstruction(word)
	if i.Opcode != OpCPY {
		t.Fatalf("opcode = %#x, want %#x", i.Opcode, OpCPY)
	}
	if i.RegFlags != [3]bool{true, false, true} {
		t.Fatalf("regFlags = %v, want [true false true]", i.RegFlags)
	}
	if i.Operands != [3]byte{0x11, 0x22, 0x33} {
		t.Fatalf("operands = %v", i.Operands)
	}
}
