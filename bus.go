package ie32vm

// Device is the capability set every auxiliary component attached to the
// bridge must expose. Offsets passed to Read and Write are guaranteed by
// the caller to be word-aligned and strictly less than the size reported
// in Metadata; a device never has to defend against misaligned or
// out-of-range accesses itself.
//
// A device signals failure by writing a nonzero code into *ex rather than
// through a Go error return, matching the bus ABI the rest of the core is
// built around: the exception channel is a shared out-parameter so the
// hot fetch/decode/execute path never allocates to report a fault.
type Device interface {
	// Name returns a short textual label. The bridge truncates it to at
	// most 32 bytes when caching.
	Name() string

	// Metadata returns eight words: UID-high, UID-low, size-in-bytes,
	// category, type, model, data-high, data-low. Size must be nonzero
	// and a multiple of 4.
	Metadata() [8]uint32

	// Read returns the word at offset. On failure it writes a nonzero
	// device-specific code into *ex; the returned word is then undefined.
	Read(offset uint32, ex *uint16) uint32

	// Write stores word at offset. On failure it writes a nonzero
	// device-specific code into *ex.
	Write(offset uint32, word uint32, ex *uint16)

	// Reset clears volatile device state.
	Reset()
}

// metadata field indices, in the order Device.Metadata returns them.
const (
	metaUIDHigh = iota
	metaUIDLow
	metaSize
	metaCategory
	metaType
	metaModel
	metaDataHigh
	metaDataLow
)

const maxDeviceNameBytes = 32
