package asm

import (
	"fmt"

	"github.com/oisee/mach16/pkg/isa"
)

const memWords = 1 << 16

// Assemble translates source text into a word image. It fails fast: the
// first error of either pass aborts translation and no image is produced.
func Assemble(src string) ([]uint16, error) {
	lines, err := lex(src)
	if err != nil {
		return nil, err
	}
	syms, err := layout(lines)
	if err != nil {
		return nil, err
	}
	return emit(lines, syms)
}

// layout is pass 1: walk the line vector with a word cursor, recording the
// address of every label. Unknown mnemonics are sized as one word so the
// emit pass can report the canonical error.
func layout(lines []line) (map[string]uint16, error) {
	syms := make(map[string]uint16)
	cursor := 0
	for _, l := range lines {
		switch l.kind {
		case kindLabel:
			if _, dup := syms[l.label]; dup {
				return nil, fmt.Errorf("line %d: duplicate label %q", l.num, l.label)
			}
			syms[l.label] = uint16(cursor)
		case kindOrg:
			cursor = int(l.org)
		case kindWord:
			cursor += len(l.args)
		case kindAsciiz:
			cursor += len(l.text) + 1
		case kindInstr:
			cursor += instrWords(l.mnemonic, l.args)
		}
		if cursor > memWords {
			return nil, fmt.Errorf("line %d: layout passes the end of the address space", l.num)
		}
	}
	return syms, nil
}

// image is the sparse word vector pass 2 emits into. Writing past the
// current length zero-fills the gap, which is what .org forward jumps
// rely on.
type image struct {
	words []uint16
}

func (im *image) put(addr int, w uint16) error {
	if addr >= memWords {
		return fmt.Errorf("address 0x%X outside the address space", addr)
	}
	for len(im.words) <= addr {
		im.words = append(im.words, 0)
	}
	im.words[addr] = w
	return nil
}

// emit is pass 2: re-walk the lines with a fresh cursor, resolve operands
// against the symbol table and encode the word stream.
func emit(lines []line, syms map[string]uint16) ([]uint16, error) {
	im := &image{}
	cursor := 0
	put := func(l line, w uint16) error {
		if err := im.put(cursor, w); err != nil {
			return fmt.Errorf("line %d: %v", l.num, err)
		}
		cursor++
		return nil
	}

	for _, l := range lines {
		switch l.kind {
		case kindLabel:
			// addresses were assigned in pass 1

		case kindOrg:
			cursor = int(l.org)

		case kindWord:
			for _, arg := range l.args {
				v, err := resolveValue(arg, syms)
				if err != nil {
					return nil, fmt.Errorf("line %d: %v", l.num, err)
				}
				if err := put(l, v); err != nil {
					return nil, err
				}
			}

		case kindAsciiz:
			for i := 0; i < len(l.text); i++ {
				if err := put(l, uint16(l.text[i])); err != nil {
					return nil, err
				}
			}
			if err := put(l, 0); err != nil {
				return nil, err
			}

		case kindInstr:
			words, err := encodeInstr(l, syms)
			if err != nil {
				return nil, err
			}
			for _, w := range words {
				if err := put(l, w); err != nil {
					return nil, err
				}
			}
		}
	}
	return im.words, nil
}

// encodeInstr validates the operands of one instruction line and returns
// its encoded words.
func encodeInstr(l line, syms map[string]uint16) ([]uint16, error) {
	errf := func(format string, args ...any) error {
		return fmt.Errorf("line %d: %s", l.num, fmt.Sprintf(format, args...))
	}
	wantArgs := func(n int) error {
		if len(l.args) != n {
			return errf("%s takes %d operand(s), got %d", l.mnemonic, n, len(l.args))
		}
		return nil
	}
	reg := func(tok string) (int, error) {
		r, ok := parseReg(tok)
		if !ok {
			return 0, errf("%s expects a register, got %q", l.mnemonic, tok)
		}
		return r, nil
	}

	switch l.mnemonic {
	case "NOP", "HALT", "RET":
		if err := wantArgs(0); err != nil {
			return nil, err
		}
		return []uint16{isa.Encode(simpleOps[l.mnemonic], 0, 0)}, nil

	case "PUSH":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		rs, err := reg(l.args[0])
		if err != nil {
			return nil, err
		}
		return []uint16{isa.Encode(isa.PUSH, 0, rs)}, nil

	case "POP", "NOT":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		rd, err := reg(l.args[0])
		if err != nil {
			return nil, err
		}
		return []uint16{isa.Encode(simpleOps[l.mnemonic], rd, 0)}, nil

	case "MOV", "ADD", "SUB", "AND", "OR", "XOR", "SHL", "SHR", "CMP", "MUL":
		if err := wantArgs(2); err != nil {
			return nil, err
		}
		rd, err := reg(l.args[0])
		if err != nil {
			return nil, err
		}
		rs, err := reg(l.args[1])
		if err != nil {
			return nil, err
		}
		return []uint16{isa.Encode(simpleOps[l.mnemonic], rd, rs)}, nil

	case "LDI", "LEA", "ADDI", "SUBI":
		if err := wantArgs(2); err != nil {
			return nil, err
		}
		rd, err := reg(l.args[0])
		if err != nil {
			return nil, err
		}
		v, err := resolveValue(l.args[1], syms)
		if err != nil {
			return nil, errf("%v", err)
		}
		return []uint16{isa.Encode(simpleOps[l.mnemonic], rd, 0), v}, nil

	case "LD":
		if err := wantArgs(2); err != nil {
			return nil, err
		}
		rd, err := reg(l.args[0])
		if err != nil {
			return nil, err
		}
		inner, ok := memOperand(l.args[1])
		if !ok {
			return nil, errf("LD expects a [memory] operand, got %q", l.args[1])
		}
		if rs, isReg := parseReg(inner); isReg {
			return []uint16{isa.Encode(isa.LD_IND, rd, rs)}, nil
		}
		v, err := resolveValue(inner, syms)
		if err != nil {
			return nil, errf("%v", err)
		}
		return []uint16{isa.Encode(isa.LD_ABS, rd, 0), v}, nil

	case "ST":
		if err := wantArgs(2); err != nil {
			return nil, err
		}
		src, err := reg(l.args[0])
		if err != nil {
			return nil, err
		}
		inner, ok := memOperand(l.args[1])
		if !ok {
			return nil, errf("ST expects a [memory] operand, got %q", l.args[1])
		}
		if ra, isReg := parseReg(inner); isReg {
			// address register in rd, source in rs
			return []uint16{isa.Encode(isa.ST_IND, ra, src)}, nil
		}
		v, err := resolveValue(inner, syms)
		if err != nil {
			return nil, errf("%v", err)
		}
		return []uint16{isa.Encode(isa.ST_ABS, 0, src), v}, nil

	case "JMP", "JZ", "JNZ", "JC", "JN", "CALL":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		v, err := resolveValue(l.args[0], syms)
		if err != nil {
			return nil, errf("%v", err)
		}
		return []uint16{isa.Encode(simpleOps[l.mnemonic], 0, 0), v}, nil

	default:
		return nil, errf("unknown mnemonic %q", l.mnemonic)
	}
}
