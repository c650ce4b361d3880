package differ

import (
	"testing"

	"github.com/objdiff/objdiff-go/internal/obj"
)

func ins(addr uint64, opcode uint32, mnemonic string, size int, args ...obj.Argument) obj.Instruction {
	return obj.Instruction{Address: addr, Opcode: opcode, Mnemonic: mnemonic, Size: size, Args: args}
}

func newDiffer() *CodeDiffer {
	target := &obj.Object{Symbols: []obj.Symbol{{Name: "f", Address: 0}}}
	base := &obj.Object{Symbols: []obj.Symbol{{Name: "f", Address: 0}}}
	return &CodeDiffer{
		Target: target, Base: base,
		TargetToBase: map[int]int{}, BaseToTarget: map[int]int{},
	}
}

func TestDiffFunctionsIdenticalStreamsScoreFull(t *testing.T) {
	d := newDiffer()
	stream := []obj.Instruction{
		ins(0, 1, "add", 4, obj.PlainText("r1"), obj.PlainText(","), obj.PlainText("r2")),
		ins(4, 2, "sub", 4, obj.PlainText("r3"), obj.PlainText(","), obj.PlainText("r4")),
	}
	tDiff, bDiff := d.DiffFunctions(0, 0, stream, stream)
	if tDiff.MatchPercent != 100 || bDiff.MatchPercent != 100 {
		t.Fatalf("expected 100%% match for identical streams, got %v / %v", tDiff.MatchPercent, bDiff.MatchPercent)
	}
	if len(tDiff.Rows) != len(bDiff.Rows) {
		t.Fatalf("rows must be equal length: %d vs %d", len(tDiff.Rows), len(bDiff.Rows))
	}
	for _, r := range tDiff.Rows {
		if r.Kind != KindNone {
			t.Errorf("expected all rows None, got %v", r.Kind)
		}
	}
}

func TestDiffFunctionsArgMismatch(t *testing.T) {
	d := newDiffer()
	target := []obj.Instruction{ins(0, 1, "add", 4, obj.Signed(1))}
	base := []obj.Instruction{ins(0, 1, "add", 4, obj.Signed(2))}

	tDiff, _ := d.DiffFunctions(0, 0, target, base)
	if len(tDiff.Rows) != 1 || tDiff.Rows[0].Kind != KindArgMismatch {
		t.Fatalf("expected single ArgMismatch row, got %+v", tDiff.Rows)
	}
	if tDiff.MatchPercent != 0 {
		t.Errorf("single differing arg out of one arg should score 0%%, got %v", tDiff.MatchPercent)
	}
}

func TestDiffFunctionsOpMismatchHalfWeight(t *testing.T) {
	d := newDiffer()
	target := []obj.Instruction{ins(0, 1, "add", 4)}
	base := []obj.Instruction{ins(0, 2, "add", 4)} // same mnemonic, different opcode

	tDiff, _ := d.DiffFunctions(0, 0, target, base)
	if tDiff.Rows[0].Kind != KindOpMismatch {
		t.Fatalf("expected OpMismatch, got %v", tDiff.Rows[0].Kind)
	}
	if tDiff.MatchPercent != 50 {
		t.Errorf("OpMismatch should cost half weight (50%% match), got %v", tDiff.MatchPercent)
	}
}

func TestDiffFunctionsInsertedInstruction(t *testing.T) {
	d := newDiffer()
	target := []obj.Instruction{
		ins(0, 1, "add", 4),
		ins(4, 2, "sub", 4),
	}
	base := []obj.Instruction{ins(0, 1, "add", 4)} // base is missing "sub"

	tDiff, bDiff := d.DiffFunctions(0, 0, target, base)
	if len(tDiff.Rows) != 2 {
		t.Fatalf("expected 2 rows (one None, one Delete-from-base-perspective), got %d", len(tDiff.Rows))
	}
	if tDiff.Rows[1].Kind != KindDelete {
		t.Errorf("target has an instruction base lacks: expected Delete, got %v", tDiff.Rows[1].Kind)
	}
	if bDiff.Rows[1].Ins != nil {
		t.Errorf("base row for the missing instruction should carry no instruction, got %+v", bDiff.Rows[1].Ins)
	}
	if tDiff.MatchPercent >= 100 {
		t.Errorf("expected less than 100%% due to the extra instruction, got %v", tDiff.MatchPercent)
	}
}

func TestDiffFunctionsBranchCrossLink(t *testing.T) {
	d := newDiffer()
	dest := uint64(8)
	stream := []obj.Instruction{
		ins(0, 1, "b", 4, obj.BranchDestArg(8)),
		ins(4, 2, "nop", 4),
		ins(8, 3, "ret", 4),
	}
	stream[0].BranchDest = &dest

	tDiff, _ := d.DiffFunctions(0, 0, stream, stream)
	if tDiff.Rows[0].BranchTo == nil {
		t.Fatal("expected branch-to link on row 0")
	}
	if tDiff.Rows[0].BranchTo.RowIndex != 2 {
		t.Errorf("expected branch to row 2, got %d", tDiff.Rows[0].BranchTo.RowIndex)
	}
	if tDiff.Rows[2].BranchFrom == nil || len(tDiff.Rows[2].BranchFrom.RowIndices) != 1 || tDiff.Rows[2].BranchFrom.RowIndices[0] != 0 {
		t.Errorf("expected branch-from back-link on row 2, got %+v", tDiff.Rows[2].BranchFrom)
	}
}

func TestDiffFunctionsRelocationEquivalenceRequiresPairing(t *testing.T) {
	target := &obj.Object{Symbols: []obj.Symbol{{Name: "f", Address: 0}, {Name: "g_t"}}}
	base := &obj.Object{Symbols: []obj.Symbol{{Name: "f", Address: 0}, {Name: "g_b"}}}

	t.Run("paired symbols with equal addend are equivalent", func(t *testing.T) {
		d := &CodeDiffer{Target: target, Base: base, TargetToBase: map[int]int{1: 1}, BaseToTarget: map[int]int{1: 1}}
		targetIns := []obj.Instruction{{Address: 0, Opcode: 1, Mnemonic: "lis", Size: 4, Args: []obj.Argument{obj.RelocArg()}, Reloc: &obj.Relocation{TargetSymbol: 1, Addend: 4}}}
		baseIns := []obj.Instruction{{Address: 0, Opcode: 1, Mnemonic: "lis", Size: 4, Args: []obj.Argument{obj.RelocArg()}, Reloc: &obj.Relocation{TargetSymbol: 1, Addend: 4}}}
		tDiff, _ := d.DiffFunctions(0, 0, targetIns, baseIns)
		if tDiff.Rows[0].Kind != KindNone {
			t.Errorf("expected None for paired relocation targets, got %v", tDiff.Rows[0].Kind)
		}
	})

	t.Run("unpaired symbols are not equivalent", func(t *testing.T) {
		d := &CodeDiffer{Target: target, Base: base, TargetToBase: map[int]int{}, BaseToTarget: map[int]int{}}
		targetIns := []obj.Instruction{{Address: 0, Opcode: 1, Mnemonic: "lis", Size: 4, Args: []obj.Argument{obj.RelocArg()}, Reloc: &obj.Relocation{TargetSymbol: 1, Addend: 4}}}
		baseIns := []obj.Instruction{{Address: 0, Opcode: 1, Mnemonic: "lis", Size: 4, Args: []obj.Argument{obj.RelocArg()}, Reloc: &obj.Relocation{TargetSymbol: 1, Addend: 4}}}
		tDiff, _ := d.DiffFunctions(0, 0, targetIns, baseIns)
		if tDiff.Rows[0].Kind == KindNone {
			t.Errorf("expected a mismatch classification since relocation targets are unpaired")
		}
		if tDiff.MatchPercent == 100 {
			t.Errorf("an unpaired relocation must be charged as a difference, got 100%% match")
		}
	})
}

func TestDiffFunctionsEmptyStreamsAreFullMatch(t *testing.T) {
	d := newDiffer()
	tDiff, bDiff := d.DiffFunctions(0, 0, nil, nil)
	if tDiff.MatchPercent != 100 || bDiff.MatchPercent != 100 {
		t.Errorf("two empty functions should be a full (vacuous) match, got %v / %v", tDiff.MatchPercent, bDiff.MatchPercent)
	}
	if len(tDiff.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(tDiff.Rows))
	}
}
