package differ

import (
	"github.com/objdiff/objdiff-go/internal/config"
	"github.com/objdiff/objdiff-go/internal/obj"
)

// CodeDiffer aligns and scores the instruction streams of one matched
// function pair (§4.E). It holds only read references to the two objects
// and the matcher's pairing maps — safe to reuse or run concurrently across
// many function pairs (§5).
type CodeDiffer struct {
	Target, Base               *obj.Object
	TargetToBase, BaseToTarget map[int]int
	RelocDiffs                 config.FunctionRelocDiffs // §6 functionRelocDiffs; zero value behaves as name_address
}

// DiffFunctions runs all five stages of §4.E over one paired function and
// returns the target-side and base-side diffs, whose Rows are always equal
// length. targetIns/baseIns must already be disassembled by the appropriate
// arch.Adapter for the respective object — decoding is not this package's
// concern (§5: the differ is a pure computation over already-loaded data).
func (d *CodeDiffer) DiffFunctions(targetSymIdx, baseSymIdx int, targetIns, baseIns []obj.Instruction) (FunctionDiff, FunctionDiff) {
	targetSym := &d.Target.Symbols[targetSymIdx]
	baseSym := &d.Base.Symbols[baseSymIdx]

	pairs := d.lcs(targetIns, baseIns, targetSym.Address, baseSym.Address)
	rows := d.buildRows(targetIns, baseIns, pairs)
	argDiffs := d.assignArgDiffIndices(rows)
	targetRows, baseRows := splitRows(rows, argDiffs)
	resolveBranches(targetRows, targetIns)
	resolveBranches(baseRows, baseIns)

	diffScore, maxScore := d.scoreRows(rows)
	matchPct := matchPercent(diffScore, maxScore)

	return FunctionDiff{
			TargetSymbol: baseSymIdx,
			Rows:         targetRows,
			MatchPercent: matchPct,
			DiffScore:    diffScore,
			MaxScore:     maxScore,
		}, FunctionDiff{
			TargetSymbol: targetSymIdx,
			Rows:         baseRows,
			MatchPercent: matchPct,
			DiffScore:    diffScore,
			MaxScore:     maxScore,
		}
}

// DiffOrphanTarget builds the all-Delete FunctionDiff for a target symbol
// left unpaired by the matcher (§4.D.3, §8 "Unpaired symbol": its
// instructions render as pure Delete, with no impact on any other
// function's score since it never enters another pair's LCS).
func DiffOrphanTarget(targetIns []obj.Instruction) FunctionDiff {
	return orphanDiff(targetIns, KindDelete)
}

// DiffOrphanBase is DiffOrphanTarget's mirror for a base symbol left
// unpaired by the matcher: its instructions render as pure Insert.
func DiffOrphanBase(baseIns []obj.Instruction) FunctionDiff {
	return orphanDiff(baseIns, KindInsert)
}

func orphanDiff(insts []obj.Instruction, kind InstructionDiffKind) FunctionDiff {
	rows := make([]InstructionDiffRow, len(insts))
	var diffScore, maxScore uint64
	for i := range insts {
		ins := &insts[i]
		rows[i] = InstructionDiffRow{Ins: ins, Kind: kind}
		maxScore += uint64(ins.Size)
	}
	diffScore = maxScore
	return FunctionDiff{TargetSymbol: -1, Rows: rows, MatchPercent: matchPercent(diffScore, maxScore), DiffScore: diffScore, MaxScore: maxScore}
}

// row is an internal intermediate combining both sides before the equal-length
// split, so branch/arg-diff passes can see both instructions at once.
type row struct {
	targetIns, baseIns *obj.Instruction
	kind               InstructionDiffKind
}

// lcs computes the longest run of equivalence-class-matched instruction
// index pairs (§4.E stage 1) via classic O(n·m) dynamic programming —
// function bodies are small enough (typically low hundreds of instructions)
// that quadratic DP is the right tool; no LCS/diff library appears anywhere
// in the pack to reach for instead (see DESIGN.md).
type indexPair struct{ t, b int }

func (d *CodeDiffer) lcs(target, base []obj.Instruction, targetFuncAddr, baseFuncAddr uint64) []indexPair {
	n, m := len(target), len(base)
	if n == 0 || m == 0 {
		return nil
	}
	dp := make([][]int32, n+1)
	for i := range dp {
		dp[i] = make([]int32, m+1)
	}
	eq := make([][]bool, n)
	for i := range eq {
		eq[i] = make([]bool, m)
		for j := range eq[i] {
			eq[i][j] = d.equivalent(&target[i], &base[j], targetFuncAddr, baseFuncAddr)
		}
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if eq[i][j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}
	var pairs []indexPair
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case eq[i][j]:
			pairs = append(pairs, indexPair{i, j})
			i++
			j++
		case dp[i+1][j] >= dp[i][j+1]:
			i++
		default:
			j++
		}
	}
	return pairs
}

// equivalent implements the §4.E stage 1 equivalence-class predicate.
func (d *CodeDiffer) equivalent(t, b *obj.Instruction, targetFuncAddr, baseFuncAddr uint64) bool {
	if t.Opcode != b.Opcode || len(t.Args) != len(b.Args) {
		return false
	}
	for k := range t.Args {
		if !d.argsEquivalent(t, b, t.Args[k], b.Args[k], targetFuncAddr, baseFuncAddr) {
			return false
		}
	}
	return true
}

func (d *CodeDiffer) argsEquivalent(t, b *obj.Instruction, ta, ba obj.Argument, targetFuncAddr, baseFuncAddr uint64) bool {
	if ta.Kind != ba.Kind {
		return false
	}
	switch ta.Kind {
	case obj.ArgPlainText, obj.ArgOpaque, obj.ArgSigned, obj.ArgUnsigned:
		return ta.LooseEq(ba)
	case obj.ArgBranchDest:
		if t.BranchDest == nil || b.BranchDest == nil {
			return false
		}
		return int64(*t.BranchDest)-int64(targetFuncAddr) == int64(*b.BranchDest)-int64(baseFuncAddr)
	case obj.ArgRelocation:
		return d.relocArgsEqual(t, b)
	default:
		return true
	}
}

// relocArgsEqual resolves the ArgRelocation carve-out obj.Argument.LooseEq
// leaves to the differ (obj.go: "caller must additionally check symbol
// pairing + addend"), honoring the configured functionRelocDiffs strictness
// (§6; grounded on original_source's reloc_eq in objdiff-core/src/diff/code.rs).
func (d *CodeDiffer) relocArgsEqual(t, b *obj.Instruction) bool {
	switch {
	case t.Reloc == nil && b.Reloc == nil:
		return true
	case t.Reloc == nil || b.Reloc == nil:
		// one side has no relocation at this instruction at all (e.g. the
		// target object was built without relocation info); only the most
		// permissive setting treats that as a non-difference.
		return d.RelocDiffs == config.RelocDiffsNone
	}
	if d.RelocDiffs == config.RelocDiffsNone {
		return true
	}
	pairedBase, ok := d.TargetToBase[t.Reloc.TargetSymbol]
	sameTarget := ok && pairedBase == b.Reloc.TargetSymbol
	if d.RelocDiffs == config.RelocDiffsDataValue {
		// data-value mode only cares that the relocation lands in the same
		// kind of place, not that the exact symbol or addend line up.
		return sameTarget || d.sameSectionKind(t.Reloc.TargetSymbol, b.Reloc.TargetSymbol)
	}
	if d.RelocDiffs == config.RelocDiffsAll && t.Reloc.RawType != b.Reloc.RawType {
		return false
	}
	return sameTarget && t.Reloc.Addend == b.Reloc.Addend
}

func (d *CodeDiffer) sameSectionKind(targetSymIdx, baseSymIdx int) bool {
	if targetSymIdx < 0 || targetSymIdx >= len(d.Target.Symbols) || baseSymIdx < 0 || baseSymIdx >= len(d.Base.Symbols) {
		return false
	}
	ts, bs := &d.Target.Symbols[targetSymIdx], &d.Base.Symbols[baseSymIdx]
	if ts.Section < 0 || bs.Section < 0 {
		return false
	}
	return d.Target.Sections[ts.Section].Name == d.Base.Sections[bs.Section].Name
}

// buildRows fills the gaps between LCS anchors with the stage 2 edit
// classification, walking each editing region index-wise (§4.E stage 2
// "re-pair instructions one-to-one in order").
func (d *CodeDiffer) buildRows(target, base []obj.Instruction, anchors []indexPair) []row {
	var rows []row
	ti, bi := 0, 0
	flushGap := func(tEnd, bEnd int) {
		for ti < tEnd && bi < bEnd {
			rows = append(rows, classifyPair(&target[ti], &base[bi]))
			ti++
			bi++
		}
		for ti < tEnd {
			rows = append(rows, row{targetIns: &target[ti], kind: KindDelete})
			ti++
		}
		for bi < bEnd {
			rows = append(rows, row{baseIns: &base[bi], kind: KindInsert})
			bi++
		}
	}
	for _, a := range anchors {
		flushGap(a.t, a.b)
		rows = append(rows, row{targetIns: &target[a.t], baseIns: &base[a.b], kind: KindNone})
		ti, bi = a.t+1, a.b+1
	}
	flushGap(len(target), len(base))
	return rows
}

func classifyPair(t, b *obj.Instruction) row {
	switch {
	case t.Opcode == b.Opcode:
		return row{targetIns: t, baseIns: b, kind: KindArgMismatch}
	case t.Mnemonic == b.Mnemonic:
		return row{targetIns: t, baseIns: b, kind: KindOpMismatch}
	default:
		return row{targetIns: t, baseIns: b, kind: KindReplace}
	}
}

// argEqual is the single arg-level equality test shared by stage 3
// (assignArgDiffIndices) and stage 5 (scoreRows), so a relocation argument
// is judged by the same pairing/addend rule everywhere instead of only in
// the stage 1 equivalence class.
func (d *CodeDiffer) argEqual(ta, ba obj.Argument, t, b *obj.Instruction) bool {
	if ta.Kind != ba.Kind {
		return false
	}
	if ta.Kind == obj.ArgRelocation {
		return d.relocArgsEqual(t, b)
	}
	return ta.LooseEq(ba)
}

// assignArgDiffIndices runs stage 3: for every ArgMismatch/OpMismatch row,
// non-PlainText argument slots that differ get a fresh, function-local index
// shared by both sides of the pair. The result is parallel to rows.
func (d *CodeDiffer) assignArgDiffIndices(rows []row) [][]*ArgDiffIndex {
	out := make([][]*ArgDiffIndex, len(rows))
	next := 0
	for i, r := range rows {
		if r.kind != KindArgMismatch && r.kind != KindOpMismatch {
			continue
		}
		n := len(r.targetIns.Args)
		if len(r.baseIns.Args) < n {
			n = len(r.baseIns.Args)
		}
		diffs := make([]*ArgDiffIndex, n)
		for k := 0; k < n; k++ {
			ta, ba := r.targetIns.Args[k], r.baseIns.Args[k]
			if ta.Kind == obj.ArgPlainText {
				continue
			}
			if d.argEqual(ta, ba, r.targetIns, r.baseIns) {
				continue
			}
			idx := &ArgDiffIndex{Idx: next}
			next++
			diffs[k] = idx
		}
		out[i] = diffs
	}
	return out
}

// splitRows separates the combined rows into the two equal-length,
// side-specific row lists the differ contract returns.
func splitRows(rows []row, argDiffs [][]*ArgDiffIndex) ([]InstructionDiffRow, []InstructionDiffRow) {
	targetRows := make([]InstructionDiffRow, len(rows))
	baseRows := make([]InstructionDiffRow, len(rows))
	for i, r := range rows {
		targetRows[i] = InstructionDiffRow{Ins: r.targetIns, Kind: r.kind, ArgDiff: argDiffs[i]}
		baseRows[i] = InstructionDiffRow{Ins: r.baseIns, Kind: r.kind, ArgDiff: argDiffs[i]}
	}
	return targetRows, baseRows
}

// resolveBranches implements stage 4: for each row whose instruction carries
// a resolved local BranchDest, find the row index of the targeted
// instruction and cross-link BranchTo/BranchFrom, numbering arrows by
// originator order of first appearance.
func resolveBranches(rows []InstructionDiffRow, insts []obj.Instruction) {
	addrToRow := make(map[uint64]int, len(rows))
	for i, r := range rows {
		if r.Ins != nil {
			addrToRow[r.Ins.Address] = i
		}
	}
	nextIdx := 0
	for i := range rows {
		r := &rows[i]
		if r.Ins == nil || r.Ins.BranchDest == nil {
			continue
		}
		targetRow, ok := addrToRow[*r.Ins.BranchDest]
		if !ok {
			continue
		}
		r.BranchTo = &BranchTo{RowIndex: targetRow, BranchIdx: nextIdx}
		dst := &rows[targetRow]
		if dst.BranchFrom == nil {
			dst.BranchFrom = &BranchFrom{BranchIdx: nextIdx}
		}
		dst.BranchFrom.RowIndices = append(dst.BranchFrom.RowIndices, i)
		nextIdx++
	}
}

// scoreRows implements stage 5's cost/weight model exactly as specified:
// None costs nothing; Insert/Delete/Replace cost their full row weight;
// OpMismatch costs half; ArgMismatch costs a share of the weight
// proportional to how many of its non-PlainText argument slots actually
// differ.
func (d *CodeDiffer) scoreRows(rows []row) (diffScore, maxScore uint64) {
	for _, r := range rows {
		weight := rowWeight(r)
		maxScore += weight
		switch r.kind {
		case KindNone:
		case KindInsert, KindDelete, KindReplace:
			diffScore += weight
		case KindOpMismatch:
			diffScore += weight / 2
		case KindArgMismatch:
			total, differing := 0, 0
			n := len(r.targetIns.Args)
			if len(r.baseIns.Args) < n {
				n = len(r.baseIns.Args)
			}
			for k := 0; k < n; k++ {
				ta, ba := r.targetIns.Args[k], r.baseIns.Args[k]
				if ta.Kind == obj.ArgPlainText {
					continue
				}
				total++
				if !d.argEqual(ta, ba, r.targetIns, r.baseIns) {
					differing++
				}
			}
			if total == 0 {
				diffScore += weight
			} else {
				diffScore += weight * uint64(differing) / uint64(total)
			}
		}
	}
	return
}

func rowWeight(r row) uint64 {
	switch {
	case r.targetIns != nil && r.baseIns != nil:
		if r.targetIns.Size > r.baseIns.Size {
			return uint64(r.targetIns.Size)
		}
		return uint64(r.baseIns.Size)
	case r.targetIns != nil:
		return uint64(r.targetIns.Size)
	case r.baseIns != nil:
		return uint64(r.baseIns.Size)
	default:
		return 0
	}
}

func matchPercent(diffScore, maxScore uint64) float64 {
	if maxScore == 0 {
		return 100.0
	}
	pct := 100.0 * (1.0 - float64(diffScore)/float64(maxScore))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
