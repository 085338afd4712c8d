package ie32vm

import (
	"fmt"
)

// Mapping records that device DeviceIndex has been assigned the inclusive
// physical byte range [Start, End].
type Mapping struct {
	DeviceIndex int
	DeviceUID   uint64
	Start       uint32
	End         uint32
}

// Size returns the number of bytes covered by the mapping.
func (m Mapping) Size() uint32 { return m.End - m.Start + 1 }

// MappingErrorKind enumerates the closed set of ways a mapping attempt
// can be rejected.
type MappingErrorKind int

const (
	ErrUnknownComponent MappingErrorKind = iota
	ErrUnalignedStartAddress
	ErrUnalignedBusSize
	ErrUnalignedEndAddress
	ErrNullOrNegAddressRange
	ErrAlreadyMapped
	ErrNullBusSize
	ErrAddressOverlaps
	ErrMappingTooLarge
)

func (k MappingErrorKind) String() string {
	switch k {
	case ErrUnknownComponent:
		return "unknown component"
	case ErrUnalignedStartAddress:
		return "unaligned start address"
	case ErrUnalignedBusSize:
		return "unaligned bus size"
	case ErrUnalignedEndAddress:
		return "unaligned end address"
	case ErrNullOrNegAddressRange:
		return "null or negative address range"
	case ErrAlreadyMapped:
		return "already mapped"
	case ErrNullBusSize:
		return "null bus size"
	case ErrAddressOverlaps:
		return "address overlaps existing mapping"
	case ErrMappingTooLarge:
		return "mapping too large for device"
	default:
		return "unknown mapping error"
	}
}

// MappingError reports why a map/map_abs attempt was rejected. Existing
// is populated only for ErrAddressOverlaps; AuxSize only for
// ErrMappingTooLarge.
type MappingError struct {
	Kind     MappingErrorKind
	Existing Mapping
	AuxSize  uint32
}

func (e *MappingError) Error() string {
	switch e.Kind {
	case ErrAddressOverlaps:
		return fmt.Sprintf("ie32vm: %s: [0x%08X, 0x%08X] already owned by device %d",
			e.Kind, e.Existing.Start, e.Existing.End, e.Existing.DeviceIndex)
	case ErrMappingTooLarge:
		return fmt.Sprintf("ie32vm: %s: device size is 0x%X", e.Kind, e.AuxSize)
	default:
		return "ie32vm: " + e.Kind.String()
	}
}

// ContiguousResult is the outcome of MapContiguous: a per-device status
// list that is always populated, plus the overall range, which is
// non-nil only if every device in the request mapped successfully.
type ContiguousResult struct {
	Range     *Mapping
	PerDevice []ContiguousStatus
}

// ContiguousStatus is one device's outcome within a MapContiguous call.
type ContiguousStatus struct {
	DeviceIndex int
	Mapping     Mapping
	Err         error
}

// MappedMemory holds the address-range-to-device mapping table and
// forwards physical reads and writes to the bridge that owns the
// mapped devices.
type MappedMemory struct {
	bridge   *Bridge
	mappings []Mapping
}

// NewMappedMemory builds an empty mapping table over bridge.
func NewMappedMemory(bridge *Bridge) *MappedMemory {
	return &MappedMemory{bridge: bridge}
}

// Bridge exposes the device bridge backing this mapping table, for
// callers (hardware introspection) that need to address devices by
// index rather than by mapped address.
func (m *MappedMemory) Bridge() *Bridge { return m.bridge }

// Map attaches device i starting at addr, taking the device's full
// reported size.
func (m *MappedMemory) Map(addr uint32, i int) (Mapping, error) {
	return m.mapInternal(addr, nil, i)
}

// MapAbs attaches device i starting at addr with an explicit inclusive
// end address; the span [addr, endAddr] must not exceed the device's own
// size.
func (m *MappedMemory) MapAbs(addr, endAddr uint32, i int) (Mapping, error) {
	return m.mapInternal(addr, &endAddr, i)
}

func (m *MappedMemory) mapInternal(addr uint32, explicitEnd *uint32, i int) (Mapping, error) {
	cache, ok := m.bridge.CacheOf(i)
	if !ok {
		return Mapping{}, &MappingError{Kind: ErrUnknownComponent}
	}

	if addr%4 != 0 {
		return Mapping{}, &MappingError{Kind: ErrUnalignedStartAddress}
	}
	if cache.size == 0 {
		return Mapping{}, &MappingError{Kind: ErrNullBusSize}
	}
	if cache.size%4 != 0 {
		return Mapping{}, &MappingError{Kind: ErrUnalignedBusSize}
	}

	endAddr := addr + cache.size - 1
	if explicitEnd != nil {
		endAddr = *explicitEnd
	}

	if (endAddr+1)%4 != 0 {
		return Mapping{}, &MappingError{Kind: ErrUnalignedEndAddress}
	}
	if addr > endAddr {
		return Mapping{}, &MappingError{Kind: ErrNullOrNegAddressRange}
	}

	size := endAddr - addr + 1
	if size > cache.size {
		return Mapping{}, &MappingError{Kind: ErrMappingTooLarge, AuxSize: cache.size}
	}

	for _, existing := range m.mappings {
		if existing.DeviceIndex == i {
			return Mapping{}, &MappingError{Kind: ErrAlreadyMapped}
		}
	}

	for _, existing := range m.mappings {
		if addr <= existing.End && existing.Start <= endAddr {
			return Mapping{}, &MappingError{Kind: ErrAddressOverlaps, Existing: existing}
		}
	}

	mapping := Mapping{
		DeviceIndex: i,
		DeviceUID:   uint64(cache.uidHigh)<<32 | uint64(cache.uidLow),
		Start:       addr,
		End:         endAddr,
	}
	m.mappings = append(m.mappings, mapping)
	return mapping, nil
}

// MapContiguous tries to place each listed device back-to-back starting
// at addr, each taking its full reported size. It always returns a
// per-device status; Range is non-nil only if every device mapped.
func (m *MappedMemory) MapContiguous(addr uint32, ids []int) ContiguousResult {
	result := ContiguousResult{PerDevice: make([]ContiguousStatus, len(ids))}

	next := addr
	allOK := true
	for idx, i := range ids {
		mapping, err := m.Map(next, i)
		result.PerDevice[idx] = ContiguousStatus{DeviceIndex: i, Mapping: mapping, Err: err}
		if err != nil {
			allOK = false
			continue
		}
		next = mapping.End + 1
	}

	if allOK && len(ids) > 0 {
		result.Range = &Mapping{
			Start: result.PerDevice[0].Mapping.Start,
			End:   result.PerDevice[len(result.PerDevice)-1].Mapping.End,
		}
	}
	return result
}

// GetMapping returns device i's mapping, if any.
func (m *MappedMemory) GetMapping(i int) (Mapping, bool) {
	for _, existing := range m.mappings {
		if existing.DeviceIndex == i {
			return existing, true
		}
	}
	return Mapping{}, false
}

func (m *MappedMemory) findMapping(addr uint32) (Mapping, bool) {
	for _, existing := range m.mappings {
		if existing.Start <= addr && addr <= existing.End {
			return existing, true
		}
	}
	return Mapping{}, false
}

// Read returns the word at physical address addr, or 0 with a device
// exception recorded in *ex. An access to unmapped space reads as 0.
// addr must be word-aligned; this is a documented precondition, not a
// recoverable error.
func (m *MappedMemory) Read(addr uint32, ex *uint16) uint32 {
	if addr%4 != 0 {
		panic("ie32vm: mapped memory read with unaligned address")
	}
	mapping, ok := m.findMapping(addr)
	if !ok {
		defaultLogger.Debug("read from unmapped address", "addr", addr)
		return 0
	}
	word, _ := m.bridge.Read(mapping.DeviceIndex, addr-mapping.Start, ex)
	if *ex != 0 {
		return 0
	}
	return word
}

// Write stores word at physical address addr. An access to unmapped
// space is silently discarded. addr must be word-aligned.
func (m *MappedMemory) Write(addr uint32, word uint32, ex *uint16) {
	if addr%4 != 0 {
		panic("ie32vm: mapped memory write with unaligned address")
	}
	mapping, ok := m.findMapping(addr)
	if !ok {
		defaultLogger.Debug("write to unmapped address", "addr", addr)
		return
	}
	m.bridge.Write(mapping.DeviceIndex, addr-mapping.Start, word, ex)
}
