package bus

import (
	"bufio"
	"fmt"
	"io"

	"github.com/golang/glog"
)

// Device register addresses inside the MMIO window.
const (
	AddrTxChar = 0xFF00 // write emits the low 8 bits as a character
	AddrTxStr  = 0xFF10 // write latches an address and arms a string print
	AddrTxInt  = 0xFF12 // write emits the value as unsigned decimal + newline
	AddrTimer  = 0xFF20 // read returns the low 16 bits of the cycle counter
)

// Console is the machine's output device. Writes to TX_STR_ADDR only arm
// the print; the burst is emitted by drain, once per arming.
type Console struct {
	w     *bufio.Writer
	clock func() uint64

	strPending bool
	strAddr    uint16
}

// NewConsole returns a console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{w: bufio.NewWriter(out)}
}

// Read services a device read. TIMER observes the cycle counter; every
// other register reads as 0.
func (c *Console) Read(addr uint16) uint16 {
	if addr == AddrTimer {
		if c.clock == nil {
			return 0
		}
		return uint16(c.clock())
	}
	glog.V(1).Infof("device read from 0x%04X returns 0", addr)
	return 0
}

// Write services a device write.
func (c *Console) Write(addr, v uint16) {
	switch addr {
	case AddrTxChar:
		c.w.WriteByte(byte(v))
		c.Flush()
	case AddrTxStr:
		c.strPending = true
		c.strAddr = v
	case AddrTxInt:
		fmt.Fprintf(c.w, "%d\n", v)
		c.Flush()
	default:
		glog.V(1).Infof("device write to 0x%04X ignored: data=0x%04X", addr, v)
	}
}

// drain emits the armed string, if any, reading the underlying storage via
// read. The scan runs upward from the latched address to the first zero
// word, stopping at the end of the address space.
func (c *Console) drain(read func(uint16) uint16) {
	if !c.strPending {
		return
	}
	c.strPending = false
	for a := int(c.strAddr); a < MemWords; a++ {
		w := read(uint16(a))
		if w == 0 {
			break
		}
		c.w.WriteByte(byte(w))
	}
	c.Flush()
}

// Flush forces buffered output to the sink.
func (c *Console) Flush() {
	c.w.Flush()
}
