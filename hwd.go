package ie32vm

// HWD info codes.
const (
	hwdUIDHigh     = 0x01
	hwdUIDLow      = 0x02
	hwdNameLength  = 0x10
	hwdNameWord0   = 0x11
	hwdNameWord7   = 0x18
	hwdSize        = 0x20
	hwdCategory    = 0x21
	hwdType        = 0x22
	hwdModel       = 0x23
	hwdDataHigh    = 0x24
	hwdDataLow     = 0x25
	hwdIsMapped    = 0xA0
	hwdMappingLow  = 0xA1
	hwdMappingHigh = 0xA2
)

// opHWD implements hardware introspection: aux selects a device by
// index, info selects which fact about it to return in dst. The
// sentinel aux=0, info=0 returns the attached device count instead of
// querying device 0.
func (c *CPU) opHWD(i Instruction) Fault {
	dst := i.Operands[0]
	auxVal, fault := c.resolve(i.v1(1, 1))
	if fault.IsSet() {
		return fault
	}
	infoVal, fault := c.resolve(i.v1(2, 2))
	if fault.IsSet() {
		return fault
	}

	if auxVal == 0 && infoVal == 0 {
		return c.commitHWD(dst, uint32(c.Bridge().Count()))
	}

	deviceIndex := int(auxVal)
	cache, ok := c.Bridge().CacheOf(deviceIndex)
	if !ok {
		return Fault{Code: ExUnknownComponent}
	}

	switch {
	case infoVal == hwdUIDHigh:
		return c.commitHWD(dst, cache.uidHigh)
	case infoVal == hwdUIDLow:
		return c.commitHWD(dst, cache.uidLow)
	case infoVal == hwdNameLength:
		return c.commitHWD(dst, uint32(len(cache.name)))
	case infoVal >= hwdNameWord0 && infoVal <= hwdNameWord7:
		return c.commitHWD(dst, nameWord(cache.name, int(infoVal-hwdNameWord0)))
	case infoVal == hwdSize:
		return c.commitHWD(dst, cache.size)
	case infoVal == hwdCategory:
		return c.commitHWD(dst, cache.category)
	case infoVal == hwdType:
		return c.commitHWD(dst, cache.typ)
	case infoVal == hwdModel:
		return c.commitHWD(dst, cache.model)
	case infoVal == hwdDataHigh:
		return c.commitHWD(dst, cache.dataHigh)
	case infoVal == hwdDataLow:
		return c.commitHWD(dst, cache.dataLow)
	case infoVal == hwdIsMapped:
		_, mapped := c.mem.GetMapping(deviceIndex)
		if mapped {
			return c.commitHWD(dst, 1)
		}
		return c.commitHWD(dst, 0)
	case infoVal == hwdMappingLow || infoVal == hwdMappingHigh:
		mapping, mapped := c.mem.GetMapping(deviceIndex)
		if !mapped {
			return Fault{Code: ExComponentNotMapped}
		}
		if infoVal == hwdMappingLow {
			return c.commitHWD(dst, mapping.Start)
		}
		return c.commitHWD(dst, mapping.End)
	default:
		return Fault{Code: ExUnknownHWInfoCode}
	}
}

func (c *CPU) commitHWD(dst uint8, value uint32) Fault {
	pcChanged, fault := c.writeReg(dst, value)
	c.markPC(pcChanged)
	return fault
}

// nameWord packs four bytes of name starting at wordIdx*4 into a
// big-endian word, zero-padding past the name's actual length.
func nameWord(name string, wordIdx int) uint32 {
	var b [4]byte
	base := wordIdx * 4
	for k := 0; k < 4; k++ {
		pos := base + k
		if pos < len(name) {
			b[k] = name[pos]
		}
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
