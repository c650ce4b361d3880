package arch

import (
	"encoding/binary"
	"strings"

	"golang.org/x/arch/ppc64/ppc64asm"

	"github.com/objdiff/objdiff-go/internal/config"
	"github.com/objdiff/objdiff-go/internal/obj"
)

func init() {
	Register("ppc", func() Adapter { return &ppcAdapter{} })
}

// ppcAdapter decodes PowerPC (32-bit, big-endian) code via
// golang.org/x/arch/ppc64/ppc64asm, the same decoder cmd/objdump uses for
// ppc64 — the ISA is a superset of the 32-bit PowerPC variant this backend
// targets so the decoder degrades gracefully on unsupported 64-bit-only
// forms by reporting them undecodable rather than misdecoding.
type ppcAdapter struct{}

func (a *ppcAdapter) Name() string { return "ppc" }

var ppcBranchMnemonics = map[string]bool{
	"b": true, "bl": true, "ba": true, "bla": true,
	"beq": true, "bne": true, "blt": true, "bgt": true, "ble": true, "bge": true,
}

func (a *ppcAdapter) Disassemble(code []byte, address uint64, endian obj.Endianness, relocs []obj.Relocation, cfg *config.Config) []obj.Instruction {
	var out []obj.Instruction
	pos := 0
	for pos < len(code) {
		remain := code[pos:]
		inst, err := ppc64asm.Decode(remain, binary.BigEndian)
		size := inst.Len
		if err != nil || size == 0 {
			out = append(out, invalidInstruction(remain, address+uint64(pos)))
			pos += 4
			continue
		}
		text := ppc64asm.GNUSyntax(inst, 0)
		mnemonic, operandText := SplitMnemonic(text)
		args := TokenizeOperands(operandText)

		ins := obj.Instruction{
			Address:  address + uint64(pos),
			Size:     size,
			Opcode:   uint32(inst.Op),
			Mnemonic: mnemonic,
			Args:     args,
			Code:     append([]byte(nil), remain[:size]...),
		}
		attachRelocAndBranch(&ins, relocs, pos, size, ppcBranchMnemonics[strings.ToLower(mnemonic)])
		out = append(out, ins)
		pos += size
	}
	return out
}

func (a *ppcAdapter) DisplayRelocName(rawType uint32) string {
	// R_PPC_* constants (elf.R_PPC_*): named subset covers what a linker
	// commonly emits for code and data relocations.
	switch rawType {
	case 1:
		return "R_PPC_ADDR32"
	case 2:
		return "R_PPC_ADDR24"
	case 4:
		return "R_PPC_ADDR16_LO"
	case 6:
		return "R_PPC_ADDR16_HA"
	case 10:
		return "R_PPC_REL24"
	case 26:
		return "R_PPC_REL32"
	case 109:
		return "R_PPC_EMB_SDA21"
	default:
		return "R_PPC_UNKNOWN"
	}
}

func (a *ppcAdapter) ImplicitAddend(code []byte, offset uint64, rawType uint32, endian obj.Endianness) (int64, bool) {
	return 0, false // PowerPC ELF relocations always carry an explicit addend (RELA)
}

func (a *ppcAdapter) DataFlow(insts []obj.Instruction, cfg *config.Config) FlowResult {
	return FlowResult{}
}

func (a *ppcAdapter) GuessUnitSize() int      { return 4 }
func (a *ppcAdapter) DefaultSectionAlign() uint64 { return 8 }
