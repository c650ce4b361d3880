package arch

import (
	"strings"

	"golang.org/x/arch/arm/armasm"

	"github.com/objdiff/objdiff-go/internal/config"
	"github.com/objdiff/objdiff-go/internal/obj"
)

func init() {
	Register("arm", func() Adapter { return &armAdapter{} })
}

// armAdapter decodes 32-bit ARM (A32) code via golang.org/x/arch/arm/armasm.
// Thumb interworking is common in embedded targets but is out of scope here;
// the loader always requests ModeARM decoding for this adapter's sections.
type armAdapter struct{}

func (a *armAdapter) Name() string { return "arm" }

var armBranchMnemonics = map[string]bool{
	"b": true, "bl": true, "bx": true, "blx": true,
}

func (a *armAdapter) Disassemble(code []byte, address uint64, endian obj.Endianness, relocs []obj.Relocation, cfg *config.Config) []obj.Instruction {
	var out []obj.Instruction
	pos := 0
	for pos+4 <= len(code) {
		remain := code[pos:]
		inst, err := armasm.Decode(remain, armasm.ModeARM)
		if err != nil {
			out = append(out, invalidInstruction(remain, address+uint64(pos)))
			pos += 4
			continue
		}
		size := inst.Len
		text := armasm.GNUSyntax(inst)
		mnemonic, operandText := SplitMnemonic(text)
		mnemonic = strings.TrimSuffix(mnemonic, ".w")
		args := TokenizeOperands(operandText)

		ins := obj.Instruction{
			Address:  address + uint64(pos),
			Size:     size,
			Opcode:   uint32(inst.Op),
			Mnemonic: mnemonic,
			Args:     args,
			Code:     append([]byte(nil), remain[:size]...),
		}
		attachRelocAndBranch(&ins, relocs, pos, size, armBranchMnemonics[strings.ToLower(mnemonic)])
		out = append(out, ins)
		pos += size
	}
	if pos < len(code) {
		out = append(out, invalidInstruction(code[pos:], address+uint64(pos)))
	}
	return out
}

func (a *armAdapter) DisplayRelocName(rawType uint32) string {
	switch rawType {
	case 2:
		return "R_ARM_ABS32"
	case 3:
		return "R_ARM_REL32"
	case 25:
		return "R_ARM_BASE_PREL"
	case 26:
		return "R_ARM_GOT_BREL"
	default:
		return "R_ARM_UNKNOWN"
	}
}

func (a *armAdapter) ImplicitAddend(code []byte, offset uint64, rawType uint32, endian obj.Endianness) (int64, bool) {
	return 0, false
}

func (a *armAdapter) DataFlow(insts []obj.Instruction, cfg *config.Config) FlowResult {
	return FlowResult{}
}

func (a *armAdapter) GuessUnitSize() int          { return 4 }
func (a *armAdapter) DefaultSectionAlign() uint64 { return 4 }
