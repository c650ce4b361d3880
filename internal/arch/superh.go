package arch

import (
	"fmt"

	"github.com/objdiff/objdiff-go/internal/config"
	"github.com/objdiff/objdiff-go/internal/obj"
)

func init() {
	Register("superh", func() Adapter { return &superhAdapter{} })
}

// superhAdapter hand-decodes SH-2/SH-4 16-bit fixed-width instructions
// (Dreamcast/Saturn targets). As with mipsAdapter, no example repo in the
// retrieval pack carries a SuperH decoder, so this follows the teacher's
// own hand-rolled-bitfield precedent rather than inventing a dependency.
// Coverage is a small subset of the format families (n, nm, d, d12, i, ni):
// nop/rts/rte, bra/bsr, bt/bf, jmp/jsr, add, cmp/eq and register/immediate
// mov. Loads and stores are not decoded; they and anything else fall back
// to a raw ".word" opcode dump.
type superhAdapter struct{}

func (a *superhAdapter) Name() string { return "superh" }

var superhBranchOps = map[string]bool{
	"bra": true, "bsr": true, "bt": true, "bf": true, "jmp": true, "jsr": true,
}

func (a *superhAdapter) Disassemble(code []byte, address uint64, endian obj.Endianness, relocs []obj.Relocation, cfg *config.Config) []obj.Instruction {
	readWord := leUint16
	if endian == obj.BigEndian {
		readWord = beUint16
	}
	var out []obj.Instruction
	for pos := 0; pos+2 <= len(code); pos += 2 {
		word := readWord(code[pos : pos+2])
		mnemonic, args := decodeSuperH(word)
		ins := obj.Instruction{
			Address:  address + uint64(pos),
			Size:     2,
			Opcode:   uint32(word),
			Mnemonic: mnemonic,
			Args:     args,
			Code:     append([]byte(nil), code[pos:pos+2]...),
		}
		attachRelocAndBranch(&ins, relocs, pos, 2, superhBranchOps[mnemonic])
		out = append(out, ins)
	}
	return out
}

func decodeSuperH(word uint16) (string, []obj.Argument) {
	n := (word >> 8) & 0xf
	m := (word >> 4) & 0xf
	d8 := uint8(word & 0xff)
	d12 := word & 0xfff

	switch word & 0xf000 {
	case 0x0000:
		switch word {
		case 0x0009:
			return "nop", nil
		case 0x000b:
			return "rts", nil
		case 0x002b:
			return "rte", nil
		}
	case 0xa000:
		return "bra", []obj.Argument{obj.Signed(signExtend12(d12) * 2)}
	case 0xb000:
		return "bsr", []obj.Argument{obj.Signed(signExtend12(d12) * 2)}
	case 0x8000:
		switch (word >> 8) & 0xf {
		case 0x9:
			return "bt", []obj.Argument{obj.Signed(int64(int8(d8)) * 2)}
		case 0xb:
			return "bf", []obj.Argument{obj.Signed(int64(int8(d8)) * 2)}
		case 0x8:
			return "cmp/eq", []obj.Argument{obj.Signed(int64(int8(d8))), obj.PlainText(","), shReg(0)}
		}
	case 0x4000:
		if word&0xff == 0x0b {
			return "jsr", []obj.Argument{obj.PlainText("@"), shReg(n)}
		}
		if word&0xff == 0x2b {
			return "jmp", []obj.Argument{obj.PlainText("@"), shReg(n)}
		}
	case 0x3000:
		switch word & 0xf {
		case 0xc:
			return "add", []obj.Argument{shReg(m), obj.PlainText(","), shReg(n)}
		case 0x0:
			return "cmp/eq", []obj.Argument{shReg(m), obj.PlainText(","), shReg(n)}
		}
	case 0x6000:
		if word&0xf == 0x3 {
			return "mov", []obj.Argument{shReg(m), obj.PlainText(","), shReg(n)}
		}
	case 0xe000:
		return "mov", []obj.Argument{obj.Signed(int64(int8(d8))), obj.PlainText(","), shReg(n)}
	}
	return ".word", []obj.Argument{obj.Opaque(fmt.Sprintf("0x%04x", word))}
}

func signExtend12(v uint16) int64 {
	x := (int32(v) << 20) >> 20
	return int64(x)
}

func shReg(n uint16) obj.Argument {
	return obj.PlainText(fmt.Sprintf("r%d", n))
}

func leUint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func beUint16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func (a *superhAdapter) DisplayRelocName(rawType uint32) string {
	switch rawType {
	case 1:
		return "R_SH_DIR32"
	case 2:
		return "R_SH_REL32"
	default:
		return "R_SH_UNKNOWN"
	}
}

func (a *superhAdapter) ImplicitAddend(code []byte, offset uint64, rawType uint32, endian obj.Endianness) (int64, bool) {
	return 0, false
}

func (a *superhAdapter) DataFlow(insts []obj.Instruction, cfg *config.Config) FlowResult {
	return FlowResult{}
}

func (a *superhAdapter) GuessUnitSize() int          { return 2 }
func (a *superhAdapter) DefaultSectionAlign() uint64 { return 4 }
