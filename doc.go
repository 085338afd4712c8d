// Package ie32vm implements the core of a 32-bit virtual machine runtime: a
// single CPU with a two-level-page-table MMU, a mapped physical address
// space, and a uniform bus for attaching auxiliary devices (RAM, ROM,
// displays, keyboards, clocks, debug sinks).
//
// The package covers exactly the hard, educational core described by the
// motherboard analogy: CPU fetch/decode/execute, MMU translation, mapped
// memory and the hardware bridge, and the 32-register register file with
// its privilege rules. Concrete device implementations, an assembler or
// disassembler, program builders and CLI wrappers are deliberately left to
// callers of this package; they interact with it only through the Device
// interface and the Motherboard/CPU/MappedMemory API surface.
//
// The core is single-threaded and cooperative: a single goroutine drives
// the CPU, the CPU drives the MMU, the MMU drives mapped memory, and mapped
// memory drives exactly one device per bus access. Nothing here spawns
// goroutines or blocks; callers drive the CPU with Motherboard.Step, or
// with Motherboard.Run for a bounded loop.
package ie32vm
