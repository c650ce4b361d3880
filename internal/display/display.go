// Package display implements the pure, on-demand instruction-row renderer
// from §4.G: turning one InstructionDiffRow into an ordered sequence of
// typed, colour-tagged text segments. It never touches a terminal or a GUI
// toolkit directly — that's the job of a caller like cmd/objdiff's ANSI
// renderer (grounded on the teacher's colorize.go).
package display

import (
	"fmt"

	"github.com/objdiff/objdiff-go/internal/differ"
	"github.com/objdiff/objdiff-go/internal/obj"
)

// SegmentKind tags what a Segment's Text represents, mirroring §4.G's
// taxonomy exactly.
type SegmentKind int

const (
	SegAddress SegmentKind = iota
	SegLine
	SegOpcode
	SegSigned
	SegUnsigned
	SegOpaque
	SegBranchDest
	SegSymbol
	SegAddend
	SegSpacing
	SegBasic
	SegEol
)

// ColorClass tags a Segment's colour role. Rotating carries a palette index
// in Segment.RotatingIndex for arguments linked across a diff pair (§4.G,
// §4.E stage 3 diff indices).
type ColorClass int

const (
	ColorNormal ColorClass = iota
	ColorDim
	ColorBright
	ColorReplace
	ColorDataFlow
	ColorDelete
	ColorInsert
	ColorRotating
)

// Segment is one span of rendered text with its semantic kind and colour.
type Segment struct {
	Kind          SegmentKind
	Text          string
	Color         ColorClass
	RotatingIndex int // meaningful only when Color == ColorRotating
}

// SymbolNamer resolves a relocation's target symbol name for display,
// letting the caller decide between mangled and demangled forms.
type SymbolNamer func(symbolIndex int) string

// Options controls the toggles RenderRow honours: hiding symbol addresses,
// showing data-flow annotations and spacing between arguments. Function
// order and register syntax variants are not among them; RenderRow renders
// the one row it is given with the mnemonic and operand text as decoded.
type Options struct {
	HideSymbolAddresses bool
	ShowDataFlow        bool
	SpaceBetweenArgs    bool
}

// RenderRow produces the segment sequence for one row. flow supplies the
// optional data-flow annotation for this row's instruction (nil when
// unavailable or disabled).
func RenderRow(row differ.InstructionDiffRow, namer SymbolNamer, flow []string, opts Options) []Segment {
	var segs []Segment
	rowColor := colorForKind(row.Kind)

	if row.Ins == nil {
		return []Segment{{Kind: SegBasic, Text: "", Color: rowColor}, {Kind: SegEol}}
	}

	if !opts.HideSymbolAddresses {
		segs = append(segs, Segment{Kind: SegAddress, Text: fmt.Sprintf("%08x", row.Ins.Address), Color: ColorDim})
		segs = append(segs, Segment{Kind: SegSpacing, Text: "  "})
	}
	if row.Ins.Line != nil {
		segs = append(segs, Segment{Kind: SegLine, Text: fmt.Sprintf("%d", *row.Ins.Line), Color: ColorDim})
		segs = append(segs, Segment{Kind: SegSpacing, Text: " "})
	}

	opcodeColor := rowColor
	if row.Kind == differ.KindNone {
		opcodeColor = ColorNormal
	}
	segs = append(segs, Segment{Kind: SegOpcode, Text: row.Ins.Mnemonic, Color: opcodeColor})

	sep := ","
	if opts.SpaceBetweenArgs {
		sep = ", "
	}
	for i, a := range row.Ins.Args {
		if a.Kind == obj.ArgPlainText && a.Text == "," {
			segs = append(segs, Segment{Kind: SegSpacing, Text: sep})
			continue
		}
		segs = append(segs, argSegment(a, i, row, namer, rowColor)...)
	}

	if opts.ShowDataFlow && len(flow) > 0 {
		for _, f := range flow {
			segs = append(segs, Segment{Kind: SegSpacing, Text: "  "})
			segs = append(segs, Segment{Kind: SegBasic, Text: f, Color: ColorDataFlow})
		}
	}

	segs = append(segs, Segment{Kind: SegEol})
	return segs
}

func argSegment(a obj.Argument, argIdx int, row differ.InstructionDiffRow, namer SymbolNamer, rowColor ColorClass) []Segment {
	color := colorForArg(argIdx, row, rowColor)
	segs := buildArgSegment(a, argIdx, row, namer, color)
	if color == ColorRotating && argIdx < len(row.ArgDiff) && row.ArgDiff[argIdx] != nil {
		segs[0].RotatingIndex = row.ArgDiff[argIdx].Idx
	}
	return segs
}

// buildArgSegment returns one segment per argument, except ArgRelocation,
// which emits a Symbol segment and — only when the relocation carries a
// nonzero addend — a trailing Addend segment (§4.G's taxonomy keeps the two
// distinct so a renderer can color or hide them independently).
func buildArgSegment(a obj.Argument, argIdx int, row differ.InstructionDiffRow, namer SymbolNamer, color ColorClass) []Segment {
	switch a.Kind {
	case obj.ArgPlainText:
		return []Segment{{Kind: SegBasic, Text: a.Text, Color: ColorNormal}}
	case obj.ArgSigned:
		return []Segment{{Kind: SegSigned, Text: fmt.Sprintf("%d", a.Signed), Color: color}}
	case obj.ArgUnsigned:
		return []Segment{{Kind: SegUnsigned, Text: fmt.Sprintf("0x%x", a.Unsigned), Color: color}}
	case obj.ArgOpaque:
		return []Segment{{Kind: SegOpaque, Text: a.Text, Color: color}}
	case obj.ArgBranchDest:
		return []Segment{{Kind: SegBranchDest, Text: fmt.Sprintf("0x%x", a.BranchDest), Color: color}}
	case obj.ArgRelocation:
		name := ""
		if namer != nil && row.Ins.Reloc != nil {
			name = namer(row.Ins.Reloc.TargetSymbol)
		}
		segs := []Segment{{Kind: SegSymbol, Text: name, Color: color}}
		if row.Ins.Reloc != nil && row.Ins.Reloc.Addend != 0 {
			segs = append(segs, Segment{Kind: SegAddend, Text: fmt.Sprintf("+0x%x", row.Ins.Reloc.Addend), Color: color})
		}
		return segs
	default:
		return []Segment{{Kind: SegBasic, Text: "?", Color: color}}
	}
}

func colorForArg(argIdx int, row differ.InstructionDiffRow, rowColor ColorClass) ColorClass {
	if argIdx < len(row.ArgDiff) && row.ArgDiff[argIdx] != nil {
		return ColorRotating
	}
	if row.Kind == differ.KindNone {
		return ColorNormal
	}
	return rowColor
}

func colorForKind(k differ.InstructionDiffKind) ColorClass {
	switch k {
	case differ.KindInsert:
		return ColorInsert
	case differ.KindDelete:
		return ColorDelete
	case differ.KindReplace, differ.KindOpMismatch:
		return ColorReplace
	case differ.KindArgMismatch:
		return ColorBright
	default:
		return ColorNormal
	}
}
