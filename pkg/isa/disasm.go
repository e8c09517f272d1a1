package isa

import "fmt"

// Disassemble returns assembly text for one decoded instruction. For
// two-word forms, payload is the word following the instruction word.
func Disassemble(w, payload uint16) string {
	op, rd, rs := Decode(w)
	if !Valid(op) {
		return fmt.Sprintf("DW 0x%04X", w)
	}
	info := &Catalog[op]
	switch info.Fmt {
	case FmtRdRs:
		return fmt.Sprintf("%s r%d, r%d", info.Mnemonic, rd, rs)
	case FmtRd:
		return fmt.Sprintf("%s r%d", info.Mnemonic, rd)
	case FmtRs:
		return fmt.Sprintf("%s r%d", info.Mnemonic, rs)
	case FmtRdImm:
		return fmt.Sprintf("%s r%d, 0x%04X", info.Mnemonic, rd, payload)
	case FmtRdAbs:
		return fmt.Sprintf("%s r%d, [0x%04X]", info.Mnemonic, rd, payload)
	case FmtRsAbs:
		return fmt.Sprintf("%s r%d, [0x%04X]", info.Mnemonic, rs, payload)
	case FmtRdInd:
		return fmt.Sprintf("%s r%d, [r%d]", info.Mnemonic, rd, rs)
	case FmtRsInd:
		return fmt.Sprintf("%s r%d, [r%d]", info.Mnemonic, rs, rd)
	case FmtAddr:
		return fmt.Sprintf("%s 0x%04X", info.Mnemonic, payload)
	default:
		return info.Mnemonic
	}
}
