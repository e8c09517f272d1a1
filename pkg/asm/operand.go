package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oisee/mach16/pkg/isa"
)

// simpleOps maps mnemonics with a fixed encoding to their opcode. LD and ST
// are absent: their opcode depends on the operand (indirect vs absolute).
var simpleOps = map[string]isa.OpCode{
	"NOP":  isa.NOP,
	"MOV":  isa.MOV,
	"ADD":  isa.ADD,
	"SUB":  isa.SUB,
	"AND":  isa.AND,
	"OR":   isa.OR,
	"XOR":  isa.XOR,
	"NOT":  isa.NOT,
	"SHL":  isa.SHL,
	"SHR":  isa.SHR,
	"CMP":  isa.CMP,
	"PUSH": isa.PUSH,
	"POP":  isa.POP,
	"LDI":  isa.LDI,
	"JMP":  isa.JMP,
	"JZ":   isa.JZ,
	"JNZ":  isa.JNZ,
	"JC":   isa.JC,
	"JN":   isa.JN,
	"CALL": isa.CALL,
	"RET":  isa.RET,
	"HALT": isa.HALT,
	"LEA":  isa.LEA,
	"ADDI": isa.ADDI,
	"SUBI": isa.SUBI,
	"MUL":  isa.MUL,
}

// parseReg recognizes r0..r7 (case-insensitive) and the sp alias for r7.
func parseReg(tok string) (int, bool) {
	t := strings.ToLower(tok)
	if t == "sp" {
		return 7, true
	}
	if len(t) == 2 && t[0] == 'r' && t[1] >= '0' && t[1] <= '7' {
		return int(t[1] - '0'), true
	}
	return 0, false
}

// memOperand strips the brackets from a memory operand, returning the
// inner token. The inner token decides the addressing mode: a register
// selects the one-word indirect form, anything else the two-word absolute
// form.
func memOperand(tok string) (string, bool) {
	if len(tok) >= 2 && tok[0] == '[' && tok[len(tok)-1] == ']' {
		return strings.TrimSpace(tok[1 : len(tok)-1]), true
	}
	return "", false
}

// parseLiteral parses a decimal, hex or character literal as an unsigned
// 16-bit value, wrapping silently on overflow.
func parseLiteral(tok string) (uint16, error) {
	if len(tok) >= 3 && tok[0] == '\'' && tok[len(tok)-1] == '\'' {
		inner := tok[1 : len(tok)-1]
		if len(inner) != 1 {
			return 0, fmt.Errorf("invalid character literal %s", tok)
		}
		return uint16(inner[0]), nil
	}
	if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
		v, err := strconv.ParseUint(tok[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hex literal %s", tok)
		}
		return uint16(v), nil
	}
	v, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid literal %s", tok)
	}
	return uint16(v), nil
}

// resolveValue parses tok as a literal or resolves it through the symbol
// table.
func resolveValue(tok string, syms map[string]uint16) (uint16, error) {
	if labelRe.MatchString(tok) {
		v, ok := syms[tok]
		if !ok {
			return 0, fmt.Errorf("undefined label %q", tok)
		}
		return v, nil
	}
	return parseLiteral(tok)
}

// instrWords is the sizing rule shared by both passes: one word unless the
// opcode carries a payload, with LD/ST decided by their memory operand.
// Unknown mnemonics size as one word so the emit pass reports the error.
func instrWords(mnem string, args []string) int {
	switch mnem {
	case "LD", "ST":
		if len(args) == 2 {
			if inner, ok := memOperand(args[1]); ok {
				if _, isReg := parseReg(inner); isReg {
					return 1
				}
				return 2
			}
		}
		return 1
	default:
		if op, ok := simpleOps[mnem]; ok {
			return isa.Words(op)
		}
		return 1
	}
}
