// Package cpu implements the Mach16 processor core: an 8-register 16-bit
// machine with a downward-growing stack and memory-mapped output devices.
package cpu

import (
	"errors"
	"fmt"
	"io"

	"github.com/golang/glog"
	"github.com/oisee/mach16/pkg/bus"
	"github.com/oisee/mach16/pkg/isa"
)

// SP is the register-file index of the stack pointer.
const SP = 7

// ResetSP is the stack pointer value after reset: below the MMIO window and
// below typical code, leaving ample room for the downward-growing stack.
const ResetSP = 0xF000

// ErrUnknownOpcode is recorded when execution hits an undefined opcode.
// The machine halts cleanly with PC pointing at the faulting instruction.
var ErrUnknownOpcode = errors.New("unknown opcode")

// CPU is the fetch/decode/execute engine. Create one with New, load an
// image through Load and call Run; Err holds the fault, if any, after halt.
type CPU struct {
	R      [8]uint16
	PC     uint16
	Flags  Flags
	Halted bool
	Cycles uint64
	Err    error

	// Trace, when non-nil, receives one line per executed instruction.
	Trace io.Writer

	bus *bus.Bus
}

// New returns a reset CPU attached to b. The bus's TIMER device observes
// this CPU's cycle counter.
func New(b *bus.Bus) *CPU {
	c := &CPU{bus: b}
	b.BindClock(func() uint64 { return c.Cycles })
	c.Reset()
	return c
}

// Reset returns the machine to its power-on state.
func (c *CPU) Reset() {
	c.R = [8]uint16{}
	c.PC = 0
	c.Flags = Flags{}
	c.Halted = false
	c.Cycles = 0
	c.Err = nil
	c.R[SP] = ResetSP
}

// Load copies an image into memory starting at base.
func (c *CPU) Load(words []uint16, base uint16) {
	glog.V(1).Infof("loading %d words at 0x%04X", len(words), base)
	c.bus.Load(words, base)
}

// Run executes instructions until the machine halts.
func (c *CPU) Run() {
	for !c.Halted {
		c.Step()
	}
	c.bus.Flush()
}

// Step executes one instruction, then drains any armed device output so a
// string print observes the completed store.
func (c *CPU) Step() {
	if c.Halted {
		return
	}
	instrAddr := c.PC
	w := c.fetch()
	op, rd, rs := isa.Decode(w)

	switch op {
	case isa.NOP:
	case isa.MOV:
		c.writeReg(rd, c.R[rs])
	case isa.ADD:
		c.writeReg(rd, aluAdd(&c.Flags, c.R[rd], c.R[rs]))
	case isa.SUB:
		c.writeReg(rd, aluSub(&c.Flags, c.R[rd], c.R[rs]))
	case isa.AND:
		c.writeReg(rd, aluAnd(&c.Flags, c.R[rd], c.R[rs]))
	case isa.OR:
		c.writeReg(rd, aluOr(&c.Flags, c.R[rd], c.R[rs]))
	case isa.XOR:
		c.writeReg(rd, aluXor(&c.Flags, c.R[rd], c.R[rs]))
	case isa.NOT:
		c.writeReg(rd, aluNot(&c.Flags, c.R[rd]))
	case isa.SHL:
		c.writeReg(rd, aluShl(&c.Flags, c.R[rd], c.R[rs]))
	case isa.SHR:
		c.writeReg(rd, aluShr(&c.Flags, c.R[rd], c.R[rs]))
	case isa.CMP:
		res := aluSub(&c.Flags, c.R[rd], c.R[rs])
		c.Flags.setZN(res)
	case isa.PUSH:
		c.R[SP]--
		c.memWrite(c.R[SP], c.R[rs])
		c.Cycles++
	case isa.POP:
		v := c.memRead(c.R[SP])
		c.R[SP]++
		c.writeReg(rd, v)
		c.Cycles++
	case isa.LD_ABS:
		addr := c.fetch()
		c.writeReg(rd, c.memRead(addr))
	case isa.ST_ABS:
		addr := c.fetch()
		c.memWrite(addr, c.R[rs])
		c.Cycles++
	case isa.LDI, isa.LEA:
		c.writeReg(rd, c.fetch())
	case isa.ADDI:
		c.writeReg(rd, aluAdd(&c.Flags, c.R[rd], c.fetch()))
	case isa.SUBI:
		c.writeReg(rd, aluSub(&c.Flags, c.R[rd], c.fetch()))
	case isa.JMP:
		c.PC = c.fetch()
	case isa.JZ:
		target := c.fetch()
		if c.Flags.Z {
			c.PC = target
		}
	case isa.JNZ:
		target := c.fetch()
		if !c.Flags.Z {
			c.PC = target
		}
	case isa.JC:
		target := c.fetch()
		if c.Flags.C {
			c.PC = target
		}
	case isa.JN:
		target := c.fetch()
		if c.Flags.N {
			c.PC = target
		}
	case isa.CALL:
		target := c.fetch()
		c.R[SP]--
		c.memWrite(c.R[SP], c.PC)
		c.Cycles++
		c.PC = target
	case isa.RET:
		c.PC = c.memRead(c.R[SP])
		c.R[SP]++
		c.Cycles++
	case isa.LD_IND:
		c.writeReg(rd, c.memRead(c.R[rs]))
	case isa.ST_IND:
		c.memWrite(c.R[rd], c.R[rs])
		c.Cycles++
	case isa.MUL:
		c.writeReg(rd, aluMul(&c.Flags, c.R[rd], c.R[rs]))
	case isa.HALT:
		c.Halted = true
	default:
		c.Err = fmt.Errorf("%w 0x%02X at 0x%04X", ErrUnknownOpcode, uint8(op), instrAddr)
		glog.Errorf("halting: %v", c.Err)
		c.PC = instrAddr
		c.Halted = true
	}

	c.bus.Drain()

	if c.Trace != nil {
		c.traceStep(instrAddr, w)
	}
}

// fetch reads the word at PC and advances PC and the cycle counter. Both
// instruction and payload fetches go through here.
func (c *CPU) fetch() uint16 {
	w := c.bus.Read(c.PC)
	c.PC++
	c.Cycles++
	return w
}

// memRead performs one data-bus read.
func (c *CPU) memRead(addr uint16) uint16 {
	c.Cycles++
	return c.bus.Read(addr)
}

// memWrite performs one data-bus write.
func (c *CPU) memWrite(addr, v uint16) {
	c.Cycles++
	c.bus.Write(addr, v)
}

// writeReg stores v into the register file and recomputes Z/N from it.
func (c *CPU) writeReg(i int, v uint16) {
	c.R[i] = v
	c.Flags.setZN(v)
	c.Cycles++
}

func (c *CPU) traceStep(addr, w uint16) {
	var payload uint16
	op, _, _ := isa.Decode(w)
	if isa.Valid(op) && isa.HasPayload(op) {
		payload = c.bus.Raw(addr + 1)
	}
	fmt.Fprintf(c.Trace, "%04X  %-18s R=%04X %04X %04X %04X %04X %04X %04X %04X  Z=%d N=%d C=%d V=%d  cyc=%d\n",
		addr, isa.Disassemble(w, payload),
		c.R[0], c.R[1], c.R[2], c.R[3], c.R[4], c.R[5], c.R[6], c.R[7],
		b2i(c.Flags.Z), b2i(c.Flags.N), b2i(c.Flags.C), b2i(c.Flags.V), c.Cycles)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
