// Package bus models the Mach16 memory system: a 64K word-addressed store
// with the top page overlaid by memory-mapped device registers.
package bus

import "io"

const (
	// MemWords is the size of the word-addressed store.
	MemWords = 1 << 16

	// MMIOBase is the first address routed to the device layer.
	MMIOBase = 0xFF00
)

// Bus owns the word store and the console device. Reads and writes at or
// above MMIOBase are routed to the device and never touch the underlying
// storage; the string-print device reads the storage back directly, as does
// Raw.
type Bus struct {
	cells [MemWords]uint16
	con   *Console
}

// New returns a zeroed bus whose device output goes to out.
func New(out io.Writer) *Bus {
	return &Bus{con: NewConsole(out)}
}

// BindClock supplies the cycle-counter source observed by TIMER reads.
func (b *Bus) BindClock(clock func() uint64) {
	b.con.clock = clock
}

// Read returns the word at addr, routing the MMIO window to the device.
func (b *Bus) Read(addr uint16) uint16 {
	if addr >= MMIOBase {
		return b.con.Read(addr)
	}
	return b.cells[addr]
}

// Write stores v at addr, routing the MMIO window to the device.
func (b *Bus) Write(addr, v uint16) {
	if addr >= MMIOBase {
		b.con.Write(addr, v)
		return
	}
	b.cells[addr] = v
}

// Raw returns the underlying word at addr, bypassing device routing.
// Memory dumps use this so that dumping has no device side effects.
func (b *Bus) Raw(addr uint16) uint16 {
	return b.cells[addr]
}

// Load copies words into the store starting at base, truncating at the end
// of the address space.
func (b *Bus) Load(words []uint16, base uint16) {
	for i, w := range words {
		addr := int(base) + i
		if addr >= MemWords {
			break
		}
		b.cells[addr] = w
	}
}

// Drain emits any armed string print. The CPU calls this once after each
// executed instruction, so the program's stores to the string contents have
// completed before characters appear.
func (b *Bus) Drain() {
	b.con.drain(func(addr uint16) uint16 { return b.cells[addr] })
}

// Flush forces buffered device output to the sink.
func (b *Bus) Flush() {
	b.con.Flush()
}
