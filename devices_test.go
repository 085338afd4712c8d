package ie32vm

// ramDevice and romDevice are minimal Device implementations used only by
// this package's tests, grounded in the layout of a plain byte-addressed
// memory component (the kind of thing lrvm_aux's ram/bootrom would be).

type ramDevice struct {
	name string
	uid  uint64
	data []byte
}

func newRAM(name string, uid uint64, size uint32) *ramDevice {
	return &ramDevice{name: name, uid: uid, data: make([]byte, size)}
}

func (d *ramDevice) Name() string { return d.name }

func (d *ramDevice) Metadata() [8]uint32 {
	return [8]uint32{
		uint32(d.uid >> 32), uint32(d.uid),
		uint32(len(d.data)), 1, 1, 1, 0, 0,
	}
}

func (d *ramDevice) Read(offset uint32, ex *uint16) uint32 {
	return uint32(d.data[offset])<<24 | uint32(d.data[offset+1])<<16 |
		uint32(d.data[offset+2])<<8 | uint32(d.data[offset+3])
}

func (d *ramDevice) Write(offset uint32, word uint32, ex *uint16) {
	d.data[offset] = byte(word >> 24)
	d.data[offset+1] = byte(word >> 16)
	d.data[offset+2] = byte(word >> 8)
	d.data[offset+3] = byte(word)
}

func (d *ramDevice) Reset() {
	for i := range d.data {
		d.data[i] = 0
	}
}

func (d *ramDevice) loadProgram(words []uint32) {
	for i, w := range words {
		d.Write(uint32(i*4), w, new(uint16))
	}
}

// romDevice behaves like ramDevice for reads but rejects every write
// with a device-specific "not writable" code.
type romDevice struct {
	*ramDevice
}

const romNotWritable uint16 = 0x01

func newROM(name string, uid uint64, size uint32) *romDevice {
	return &romDevice{ramDevice: newRAM(name, uid, size)}
}

func (d *romDevice) Write(offset uint32, word uint32, ex *uint16) {
	*ex = romNotWritable
}

func instrWord(op Opcode, flags [3]bool, b0, b1, b2 byte) uint32 {
	return EncodeInstruction(Instruction{
		Opcode:   op,
		RegFlags: flags,
		Operands: [3]byte{b0, b1, b2},
	})
}
