// Package differ implements the function differ (§4.E) and data differ
// (§4.F): aligning two instruction or byte streams, classifying each element
// of the alignment, and scoring similarity. It is a pure, deterministic,
// single-threaded computation over already-loaded obj.Objects — no I/O, no
// shared mutable state (§5).
package differ

import "github.com/objdiff/objdiff-go/internal/obj"

// InstructionDiffKind classifies one row of an aligned instruction pair.
type InstructionDiffKind int

const (
	KindNone InstructionDiffKind = iota
	KindReplace
	KindDelete
	KindInsert
	KindOpMismatch
	KindArgMismatch
)

func (k InstructionDiffKind) String() string {
	switch k {
	case KindReplace:
		return "replace"
	case KindDelete:
		return "delete"
	case KindInsert:
		return "insert"
	case KindOpMismatch:
		return "op-mismatch"
	case KindArgMismatch:
		return "arg-mismatch"
	default:
		return "none"
	}
}

// ArgDiffIndex is the small integer linking equivalent-but-differing
// arguments across the two sides of a diff row so the display layer can
// colour them consistently (§3 Instruction / GLOSSARY "diff index"). A nil
// pointer means the argument at that position is not part of a difference.
type ArgDiffIndex struct {
	Idx int
}

// BranchFrom records instructions (by row index) that branch to this row.
type BranchFrom struct {
	RowIndices []int
	BranchIdx  int
}

// BranchTo records the row index this row's branch targets.
type BranchTo struct {
	RowIndex  int
	BranchIdx int
}

// InstructionDiffRow is one row of a FunctionDiff: either a real instruction
// (present on this side) or a placeholder standing in for the other side's
// Insert/Delete.
type InstructionDiffRow struct {
	Ins        *obj.Instruction
	Kind       InstructionDiffKind
	BranchFrom *BranchFrom
	BranchTo   *BranchTo
	ArgDiff    []*ArgDiffIndex // parallel to Ins.Args; nil entries mean "not a diff"
}

// FunctionDiff is the result of aligning two symbols' instruction streams.
type FunctionDiff struct {
	// TargetSymbol is the paired symbol index on the other side, or -1 if
	// this side has no counterpart (a pure orphan rendered as Insert/Delete).
	TargetSymbol int
	Rows         []InstructionDiffRow
	MatchPercent float64 // [0, 100]; only meaningful when TargetSymbol >= 0
	DiffScore    uint64
	MaxScore     uint64
}

// DataDiffKind classifies one chunk of a DataDiff.
type DataDiffKind int

const (
	DataNone DataDiffKind = iota
	DataReplace
	DataDelete
	DataInsert
)

// DataDiffChunk is one run-length-coded chunk of a byte-level data diff.
// Size may exceed len(Data) when zero-byte runs are coalesced (§4.F).
type DataDiffChunk struct {
	Data []byte
	Kind DataDiffKind
	Size int
}

// SectionDataDiff is the byte-level diff of one data (or bss) section pair.
type SectionDataDiff struct {
	Chunks       []DataDiffChunk
	MatchPercent float64
}

// SymbolMapping is an explicit user override pinning one target symbol to
// one base symbol, bidirectionally and one-to-one (§3 SymbolMapping).
type SymbolMapping struct {
	TargetSymbol string
	BaseSymbol   string
}
