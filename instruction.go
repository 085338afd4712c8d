package ie32vm

// Opcode identifies one of the 31 defined instructions.
type Opcode uint8

const (
	OpCPY    Opcode = 0x01
	OpEX     Opcode = 0x02
	OpADD    Opcode = 0x03
	OpSUB    Opcode = 0x04
	OpMUL    Opcode = 0x05
	OpDIV    Opcode = 0x06
	OpMOD    Opcode = 0x07
	OpAND    Opcode = 0x08
	OpBOR    Opcode = 0x09
	OpXOR    Opcode = 0x0A
	OpSHL    Opcode = 0x0B
	OpSHR    Opcode = 0x0C
	OpCMP    Opcode = 0x0D
	OpJPR    Opcode = 0x0E
	OpLSM    Opcode = 0x0F
	OpITR    Opcode = 0x10
	OpIF     Opcode = 0x11
	OpIFN    Opcode = 0x12
	OpIF2    Opcode = 0x13
	OpLSA    Opcode = 0x14
	OpLEA    Opcode = 0x15
	OpWSA    Opcode = 0x16
	OpWEA    Opcode = 0x17
	OpSRM    Opcode = 0x18
	OpPUSH   Opcode = 0x19
	OpPOP    Opcode = 0x1A
	OpCALL   Opcode = 0x1B
	OpHWD    Opcode = 0x1C
	OpCYCLES Opcode = 0x1D
	OpHALT   Opcode = 0x1E
	OpRESET  Opcode = 0x1F
)

// Instruction is a decoded 32-bit word: an opcode, three
// operand-is-register flags (MSB = operand 1), and the three raw operand
// bytes that follow.
type Instruction struct {
	Opcode    Opcode
	RegFlags  [3]bool
	Operands  [3]byte
}

// DecodeInstruction unpacks a big-endian instruction word.
func DecodeInstruction(word uint32) Instruction {
	b0 := byte(word >> 24)
	return Instruction{
		Opcode: Opcode(b0 >> 3),
		RegFlags: [3]bool{
			b0&0x04 != 0,
			b0&0x02 != 0,
			b0&0x01 != 0,
		},
		Operands: [3]byte{
			byte(word >> 16),
			byte(word >> 8),
			byte(word),
		},
	}
}

// EncodeInstruction packs an Instruction back into its big-endian word.
// DecodeInstruction(EncodeInstruction(i)) == i for every Instruction
// produced by DecodeInstruction.
func EncodeInstruction(i Instruction) uint32 {
	b0 := byte(i.Opcode) << 3
	if i.RegFlags[0] {
		b0 |= 0x04
	}
	if i.RegFlags[1] {
		b0 |= 0x02
	}
	if i.RegFlags[2] {
		b0 |= 0x01
	}
	return uint32(b0)<<24 | uint32(i.Operands[0])<<16 | uint32(i.Operands[1])<<8 | uint32(i.Operands[2])
}

// operand is a resolved instruction operand: either a register code
// (to be read/written through Registers) or a literal value already
// widened to 32 bits.
type operand struct {
	isReg bool
	reg   uint8
	lit   uint32
}

// reg builds an R-shaped operand: always a register index, regardless of
// the corresponding flag bit (the shape itself guarantees it).
func (i Instruction) reg(byteIdx int) operand {
	return operand{isReg: true, reg: i.Operands[byteIdx]}
}

// v1 builds a V1-shaped operand at the given flag/byte index: a register
// index if the flag is set, otherwise the raw byte as a literal.
func (i Instruction) v1(flagIdx, byteIdx int) operand {
	if i.RegFlags[flagIdx] {
		return operand{isReg: true, reg: i.Operands[byteIdx]}
	}
	return operand{lit: uint32(i.Operands[byteIdx])}
}

// v2 builds a V2-shaped operand occupying two consecutive operand bytes
// starting at byteIdx: a register index (first byte only) if the flag is
// set, otherwise the two bytes read big-endian as a 16-bit literal.
func (i Instruction) v2(flagIdx, byteIdx int) operand {
	if i.RegFlags[flagIdx] {
		return operand{isReg: true, reg: i.Operands[byteIdx]}
	}
	v := uint32(i.Operands[byteIdx])<<8 | uint32(i.Operands[byteIdx+1])
	return operand{lit: v}
}
