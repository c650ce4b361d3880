package arch

import (
	"strings"

	"golang.org/x/arch/x86/x86asm"

	"github.com/objdiff/objdiff-go/internal/config"
	"github.com/objdiff/objdiff-go/internal/obj"
)

func init() {
	Register("x86", func() Adapter { return &x86Adapter{} })
}

// x86Adapter decodes x86/x86-64 code via golang.org/x/arch/x86/x86asm, the
// decoder behind cmd/objdump's amd64 support. mode selects the addressing
// width; both 32 and 64-bit objects share this backend since the decoder
// itself is mode-parameterised rather than needing two separate adapters.
type x86Adapter struct {
	mode int // 32 or 64, defaults to 64
}

func (a *x86Adapter) Name() string { return "x86" }

func (a *x86Adapter) effectiveMode() int {
	if a.mode == 0 {
		return 64
	}
	return a.mode
}

var x86BranchMnemonics = map[string]bool{
	"jmp": true, "call": true,
	"jz": true, "jnz": true, "je": true, "jne": true,
	"jl": true, "jle": true, "jg": true, "jge": true,
	"ja": true, "jae": true, "jb": true, "jbe": true,
	"js": true, "jns": true, "jo": true, "jno": true,
	"jp": true, "jnp": true, "jecxz": true, "jrcxz": true,
	"loop": true, "loope": true, "loopne": true,
}

func (a *x86Adapter) formatterMode(cfg *config.Config) string {
	if cfg != nil {
		return string(cfg.X86Formatter)
	}
	return string(config.X86Intel)
}

func (a *x86Adapter) Disassemble(code []byte, address uint64, endian obj.Endianness, relocs []obj.Relocation, cfg *config.Config) []obj.Instruction {
	var out []obj.Instruction
	pos := 0
	mode := a.effectiveMode()
	for pos < len(code) {
		remain := code[pos:]
		inst, err := x86asm.Decode(remain, mode)
		size := inst.Len
		if err != nil || size == 0 || inst.Op == 0 {
			out = append(out, invalidInstruction(remain, address+uint64(pos)))
			pos++
			continue
		}
		var text string
		switch a.formatterMode(cfg) {
		case "intel":
			text = x86asm.IntelSyntax(inst, 0, nil)
		default:
			text = x86asm.GNUSyntax(inst, 0, nil)
		}
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
		attachRelocAndBranch(&ins, relocs, pos, size, x86BranchMnemonics[strings.ToLower(mnemonic)])
		out = append(out, ins)
		pos += size
	}
	return out
}

func (a *x86Adapter) DisplayRelocName(rawType uint32) string {
	// R_386_* / R_X86_64_* overlap numerically; the loader tags the
	// container's ELF machine so callers pick the right table, but for
	// display purposes here we cover the common cross-arch subset.
	switch rawType {
	case 1:
		return "R_386_32 / R_X86_64_64"
	case 2:
		return "R_386_PC32 / R_X86_64_PC32"
	case 8:
		return "R_386_RELATIVE"
	default:
		return "R_X86_UNKNOWN"
	}
}

func (a *x86Adapter) ImplicitAddend(code []byte, offset uint64, rawType uint32, endian obj.Endianness) (int64, bool) {
	return 0, false // implicit addends of x86 REL entries are not read back; such relocations keep a zero addend
}

func (a *x86Adapter) DataFlow(insts []obj.Instruction, cfg *config.Config) FlowResult {
	return FlowResult{}
}

func (a *x86Adapter) GuessUnitSize() int          { return 4 }
func (a *x86Adapter) DefaultSectionAlign() uint64 { return 16 }
