package ie32vm

import "math"

// deviceCache is the immutable snapshot of a device's identity taken once
// at attach time, so the fetch path never blocks on Name()/Metadata().
type deviceCache struct {
	name     string
	uidHigh  uint32
	uidLow   uint32
	size     uint32
	category uint32
	typ      uint32
	model    uint32
	dataHigh uint32
	dataLow  uint32
}

// Bridge owns a dense, index-addressed collection of devices and
// dispatches reads, writes and resets to the device an index names. It
// never locks: devices are assumed single-threaded, and the bridge itself
// is driven by exactly one goroutine (the CPU's).
type Bridge struct {
	devices []Device
	cache   []deviceCache
}

// NewBridge attaches devices in index order, querying Name and Metadata
// exactly once per device. It panics if more devices are supplied than an
// address space with 32-bit indices could ever reference; this mirrors
// the documented-precondition panics the rest of the core uses for host
// misuse that cannot be recovered from mid-call.
func NewBridge(devices []Device) *Bridge {
	if uint64(len(devices)) > math.MaxUint32+1 {
		panic("ie32vm: bridge cannot hold more than 2^32 devices")
	}

	b := &Bridge{
		devices: devices,
		cache:   make([]deviceCache, len(devices)),
	}
	for i, d := range devices {
		b.cache[i] = cacheDevice(d)
	}
	return b
}

func cacheDevice(d Device) deviceCache {
	name := d.Name()
	if len(name) > maxDeviceNameBytes {
		name = name[:maxDeviceNameBytes]
	}
	md := d.Metadata()
	return deviceCache{
		name:     name,
		uidHigh:  md[metaUIDHigh],
		uidLow:   md[metaUIDLow],
		size:     md[metaSize],
		category: md[metaCategory],
		typ:      md[metaType],
		model:    md[metaModel],
		dataHigh: md[metaDataHigh],
		dataLow:  md[metaDataLow],
	}
}

// Count returns the number of attached devices.
func (b *Bridge) Count() int { return len(b.devices) }

// CacheOf returns the cached descriptor for device i, or false if i is
// out of range.
func (b *Bridge) CacheOf(i int) (deviceCache, bool) {
	if i < 0 || i >= len(b.cache) {
		return deviceCache{}, false
	}
	return b.cache[i], true
}

// Read forwards a read to device i at offset, which must be word-aligned.
// It returns false if i is out of range.
func (b *Bridge) Read(i int, offset uint32, ex *uint16) (uint32, bool) {
	if i < 0 || i >= len(b.devices) {
		return 0, false
	}
	if offset%4 != 0 {
		panic("ie32vm: bridge read with unaligned offset")
	}
	return b.devices[i].Read(offset, ex), true
}

// Write forwards a write to device i at offset, which must be
// word-aligned. It returns false if i is out of range.
func (b *Bridge) Write(i int, offset uint32, word uint32, ex *uint16) bool {
	if i < 0 || i >= len(b.devices) {
		return false
	}
	if offset%4 != 0 {
		panic("ie32vm: bridge write with unaligned offset")
	}
	b.devices[i].Write(offset, word, ex)
	return true
}

// Reset forwards a reset to device i. It returns false if i is out of
// range.
func (b *Bridge) Reset(i int) bool {
	if i < 0 || i >= len(b.devices) {
		return false
	}
	b.devices[i].Reset()
	return true
}
