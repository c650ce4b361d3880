package arch

import "github.com/objdiff/objdiff-go/internal/obj"

// invalidInstruction builds the total-decode fallback required by the
// Adapter contract: undecodable bytes still produce a row, tagged
// OpcodeInvalid with the raw byte as an opaque argument, so the differ never
// has to special-case a decode failure (§4.E failure semantics).
func invalidInstruction(code []byte, address uint64) obj.Instruction {
	b := code[0]
	return obj.Instruction{
		Address:  address,
		Size:     1,
		Opcode:   obj.OpcodeInvalid,
		Mnemonic: ".byte",
		Args:     []obj.Argument{obj.Opaque(hexByte(b))},
		Code:     []byte{b},
	}
}

func hexByte(b byte) string {
	const hex = "0123456789abcdef"
	return "0x" + string([]byte{hex[b>>4], hex[b&0xf]})
}

// findReloc returns the relocation touching the byte range [start, start+size),
// where offsets in relocs are already rebased to the start of the
// instruction stream being decoded.
func findReloc(relocs []obj.Relocation, start uint64, size int) *obj.Relocation {
	end := start + uint64(size)
	for i := range relocs {
		if relocs[i].Offset >= start && relocs[i].Offset < end {
			return &relocs[i]
		}
	}
	return nil
}

// attachRelocAndBranch performs the shared per-instruction finishing touches
// every backend needs after decoding+tokenizing: a relocation whose offset
// falls within the instruction becomes an ArgRelocation operand, and (for
// direct branch mnemonics whose sole numeric operand is a PC-relative
// displacement) the raw displacement becomes an absolute BranchDest, so the
// differ's branch-arrow logic (§4.E stage 4) never has to know the ISA's
// addressing mode. pos/size are offsets local to the code slice passed to
// Disassemble, matching how relocs is scoped by the Adapter contract.
func attachRelocAndBranch(ins *obj.Instruction, relocs []obj.Relocation, pos, size int, isBranch bool) {
	if r := findReloc(relocs, uint64(pos), size); r != nil {
		reloc := *r
		ins.Reloc = &reloc
		ins.Args = ReplaceOrAppendReloc(ins.Args)
		return
	}
	if !isBranch {
		return
	}
	for i, a := range ins.Args {
		if a.Kind != obj.ArgSigned && a.Kind != obj.ArgUnsigned {
			continue
		}
		var disp int64
		if a.Kind == obj.ArgSigned {
			disp = a.Signed
		} else {
			disp = int64(a.Unsigned)
		}
		dest := uint64(int64(ins.Address) + disp)
		ins.Args[i] = obj.BranchDestArg(dest)
		ins.BranchDest = &dest
		return
	}
}
