package arch

import (
	"testing"

	"github.com/objdiff/objdiff-go/internal/obj"
)

func TestInvalidInstruction(t *testing.T) {
	ins := invalidInstruction([]byte{0xAB, 0xCD}, 0x1000)
	if ins.Opcode != obj.OpcodeInvalid {
		t.Errorf("expected OpcodeInvalid, got %#x", ins.Opcode)
	}
	if ins.Size != 1 {
		t.Errorf("expected a total-decode fallback to consume exactly one byte, got %d", ins.Size)
	}
	if len(ins.Args) != 1 || ins.Args[0].Text != "0xab" {
		t.Errorf("expected an opaque byte argument, got %+v", ins.Args)
	}
}

func TestFindReloc(t *testing.T) {
	relocs := []obj.Relocation{{Offset: 4, RawType: 1}, {Offset: 12, RawType: 2}}
	if r := findReloc(relocs, 4, 4); r == nil || r.RawType != 1 {
		t.Errorf("expected to find relocation at offset 4, got %v", r)
	}
	if r := findReloc(relocs, 0, 4); r != nil {
		t.Errorf("expected no relocation in [0,4), got %+v", r)
	}
	if r := findReloc(relocs, 8, 4); r != nil {
		t.Errorf("expected no relocation in [8,12), got %+v", r)
	}
}

func TestAttachRelocAndBranchPrefersReloc(t *testing.T) {
	ins := &obj.Instruction{Address: 0x1000, Args: []obj.Argument{obj.Unsigned(0x40)}}
	relocs := []obj.Relocation{{Offset: 0, TargetSymbol: 3, Addend: 8}}

	attachRelocAndBranch(ins, relocs, 0, 4, true)

	if ins.Reloc == nil || ins.Reloc.TargetSymbol != 3 {
		t.Fatalf("expected relocation attached, got %+v", ins.Reloc)
	}
	if len(ins.Args) != 1 || ins.Args[0].Kind != obj.ArgRelocation {
		t.Errorf("expected the numeric arg replaced by a relocation marker, got %+v", ins.Args)
	}
	if ins.BranchDest != nil {
		t.Errorf("a relocated operand should not also become a branch dest")
	}
}

func TestAttachRelocAndBranchComputesDisplacement(t *testing.T) {
	ins := &obj.Instruction{Address: 0x1000, Args: []obj.Argument{obj.Signed(0x10)}}

	attachRelocAndBranch(ins, nil, 0, 4, true)

	if ins.BranchDest == nil || *ins.BranchDest != 0x1010 {
		t.Fatalf("expected branch dest 0x1010, got %v", ins.BranchDest)
	}
	if ins.Args[0].Kind != obj.ArgBranchDest {
		t.Errorf("expected the displacement arg replaced with a branch dest marker, got %+v", ins.Args[0])
	}
}

func TestAttachRelocAndBranchSkipsNonBranch(t *testing.T) {
	ins := &obj.Instruction{Address: 0x1000, Args: []obj.Argument{obj.Signed(0x10)}}

	attachRelocAndBranch(ins, nil, 0, 4, false)

	if ins.BranchDest != nil {
		t.Errorf("non-branch instructions must not gain a branch dest")
	}
	if ins.Args[0].Kind != obj.ArgSigned {
		t.Errorf("non-branch args should be left untouched, got %+v", ins.Args[0])
	}
}
