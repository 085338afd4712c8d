package ie32vm

// Motherboard wires a bridge, mapped memory and CPU together and owns
// their shared lifecycle: construction, reset, and single-stepping.
type Motherboard struct {
	Bridge *Bridge
	Memory *MappedMemory
	CPU    *CPU

	bootAddr uint32
}

// Option configures a Motherboard at construction time. There is no
// config file, environment variable, or CLI surface at this layer; every
// knob is a Go-level functional option.
type Option func(*Motherboard)

// WithBootAddress overrides the default boot address (0) that pc and the
// CPU's own self-reset install.
func WithBootAddress(addr uint32) Option {
	return func(m *Motherboard) { m.bootAddr = addr }
}

// NewMotherboard attaches devices to a fresh bridge and mapped-memory
// pair, wires a CPU on top, and applies opts before the first Reset.
func NewMotherboard(devices []Device, opts ...Option) *Motherboard {
	bridge := NewBridge(devices)
	mem := NewMappedMemory(bridge)
	cpu := NewCPU(mem)

	m := &Motherboard{Bridge: bridge, Memory: mem, CPU: cpu}
	for _, opt := range opts {
		opt(m)
	}
	cpu.SetBootAddress(m.bootAddr)
	m.Reset()
	return m
}

// Reset zeroes the register file and cycle counter, forces supervisor
// mode, sets pc to the configured boot address, and resets every
// attached device.
func (m *Motherboard) Reset() {
	m.CPU.Regs.Reset()
	m.CPU.Regs.SMT = 1
	m.CPU.Regs.PC = m.bootAddr
	m.CPU.Cycles = 0
	m.CPU.State = Running
	m.CPU.inHandler = false

	for i := 0; i < m.Bridge.Count(); i++ {
		m.Bridge.Reset(i)
	}
}

// Step runs exactly one CPU cycle.
func (m *Motherboard) Step() { m.CPU.Next() }

// Run steps the CPU until it halts or maxCycles cycles have run,
// whichever comes first. maxCycles <= 0 means no limit; callers driving
// untrusted or unbounded guest code should always pass a limit.
func (m *Motherboard) Run(maxCycles int) {
	for n := 0; m.CPU.State != Halted && (maxCycles <= 0 || n < maxCycles); n++ {
		m.Step()
	}
}
