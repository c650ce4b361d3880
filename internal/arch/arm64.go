package arch

import (
	"strings"

	"golang.org/x/arch/arm64/arm64asm"

	"github.com/objdiff/objdiff-go/internal/config"
	"github.com/objdiff/objdiff-go/internal/obj"
)

func init() {
	Register("arm64", func() Adapter { return &arm64Adapter{} })
}

// arm64Adapter decodes AArch64 code via golang.org/x/arch/arm64/arm64asm,
// the fixed-width decoder used throughout the retrieval pack's ARM64 tooling.
type arm64Adapter struct{}

func (a *arm64Adapter) Name() string { return "arm64" }

var arm64BranchMnemonics = map[string]bool{
	"b": true, "bl": true, "cbz": true, "cbnz": true, "tbz": true, "tbnz": true,
}

func isConditionalBranch(mnemonic string) bool {
	return strings.HasPrefix(mnemonic, "b.")
}

func (a *arm64Adapter) Disassemble(code []byte, address uint64, endian obj.Endianness, relocs []obj.Relocation, cfg *config.Config) []obj.Instruction {
	var out []obj.Instruction
	pos := 0
	for pos+4 <= len(code) {
		remain := code[pos : pos+4]
		inst, err := arm64asm.Decode(remain)
		if err != nil {
			out = append(out, invalidInstruction(remain, address+uint64(pos)))
			pos += 4
			continue
		}
		text := arm64asm.GNUSyntax(inst)
		mnemonic, operandText := SplitMnemonic(text)
		args := TokenizeOperands(operandText)

		ins := obj.Instruction{
			Address:  address + uint64(pos),
			Size:     4,
			Opcode:   uint32(inst.Op),
			Mnemonic: mnemonic,
			Args:     args,
			Code:     append([]byte(nil), remain...),
		}
		lower := strings.ToLower(mnemonic)
		attachRelocAndBranch(&ins, relocs, pos, 4, arm64BranchMnemonics[lower] || isConditionalBranch(lower))
		out = append(out, ins)
		pos += 4
	}
	if pos < len(code) {
		out = append(out, invalidInstruction(code[pos:], address+uint64(pos)))
	}
	return out
}

func (a *arm64Adapter) DisplayRelocName(rawType uint32) string {
	switch rawType {
	case 257:
		return "R_AARCH64_ABS64"
	case 258:
		return "R_AARCH64_ABS32"
	case 283:
		return "R_AARCH64_CALL26"
	case 282:
		return "R_AARCH64_JUMP26"
	case 275:
		return "R_AARCH64_ADR_PREL_PG_HI21"
	case 277:
		return "R_AARCH64_ADD_ABS_LO12_NC"
	default:
		return "R_AARCH64_UNKNOWN"
	}
}

func (a *arm64Adapter) ImplicitAddend(code []byte, offset uint64, rawType uint32, endian obj.Endianness) (int64, bool) {
	return 0, false // AArch64 ELF relocations always carry an explicit RELA addend
}

func (a *arm64Adapter) DataFlow(insts []obj.Instruction, cfg *config.Config) FlowResult {
	return FlowResult{}
}

func (a *arm64Adapter) GuessUnitSize() int          { return 8 }
func (a *arm64Adapter) DefaultSectionAlign() uint64 { return 8 }
