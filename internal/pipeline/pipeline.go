// Package pipeline wires the core components together end to end: given two
// already loaded objects, match their symbols, disassemble and diff paired functions and
// data sections, then aggregate a report. It is the one place in this
// module that knows about all of §4's components at once; everything it
// calls is otherwise independently testable.
package pipeline

import (
	"fmt"

	"github.com/objdiff/objdiff-go/internal/arch"
	"github.com/objdiff/objdiff-go/internal/config"
	"github.com/objdiff/objdiff-go/internal/differ"
	"github.com/objdiff/objdiff-go/internal/match"
	"github.com/objdiff/objdiff-go/internal/objerr"
	"github.com/objdiff/objdiff-go/internal/objlog"
	"github.com/objdiff/objdiff-go/internal/obj"
	"github.com/objdiff/objdiff-go/internal/report"
)

// FunctionResult pairs one matched function's target/base diffs.
type FunctionResult struct {
	TargetSymbol, BaseSymbol int
	Target, Base             differ.FunctionDiff
}

// DataResult is one matched section pair's data diff.
type DataResult struct {
	TargetSection, BaseSection int
	Diff                       differ.SectionDataDiff
}

// Result is everything DiffObjects produces for one target/base pair.
type Result struct {
	Match     *match.Result
	Functions []FunctionResult
	Data      []DataResult
	Unit      report.UnitReport
}

// DiffObjects runs the full pipeline (§4.D through §4.H) over two already
// loaded objects.
func DiffObjects(target, base *obj.Object, cfg *config.Config, mappings []differ.SymbolMapping) (*Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	targetAdapter := arch.New(target.Arch)
	if targetAdapter == nil {
		return nil, objerr.New(objerr.UnsupportedArchitecture, target.Arch)
	}
	baseAdapter := arch.New(base.Arch)
	if baseAdapter == nil {
		return nil, objerr.New(objerr.UnsupportedArchitecture, base.Arch)
	}

	m := match.Match(target, base, mappings)
	cd := &differ.CodeDiffer{
		Target: target, Base: base,
		TargetToBase: m.TargetToBase, BaseToTarget: m.BaseToTarget,
		RelocDiffs: cfg.FunctionRelocDiffs,
	}

	var funcResults []FunctionResult
	var codeItems, dataItems []report.ItemSummary

	for ti := range target.Symbols {
		bi, ok := m.TargetToBase[ti]
		if !ok {
			continue
		}
		ts := &target.Symbols[ti]
		bs := &base.Symbols[bi]
		if ts.Kind != obj.SymbolFunction {
			continue
		}
		targetCode, targetErr := codeFor(target, ts)
		baseCode, baseErr := codeFor(base, bs)
		if targetErr != nil || baseErr != nil {
			objlog.Default.Warn("skipping function pair with unreadable code", "target", ts.Name, "base", bs.Name)
			continue
		}
		targetIns := targetAdapter.Disassemble(targetCode, ts.Address, target.Endian, relocsIn(target, ts), cfg)
		baseIns := baseAdapter.Disassemble(baseCode, bs.Address, base.Endian, relocsIn(base, bs), cfg)
		targetIns = arch.ScanInstructions(targetIns, ts.Address, ts.Size)
		baseIns = arch.ScanInstructions(baseIns, bs.Address, bs.Size)

		tDiff, bDiff := cd.DiffFunctions(ti, bi, targetIns, baseIns)
		funcResults = append(funcResults, FunctionResult{TargetSymbol: ti, BaseSymbol: bi, Target: tDiff, Base: bDiff})
		codeItems = append(codeItems, report.ItemSummary{Name: ts.Name, Size: ts.Size, MatchPercent: tDiff.MatchPercent})
	}

	// §4.D.3/§8 "Unpaired symbol": orphan functions are surfaced as pure
	// Insert/Delete rows rather than silently dropped from the report.
	targetOrphans, baseOrphans := match.Orphans(target, base, m)
	for _, ti := range targetOrphans {
		ts := &target.Symbols[ti]
		if ts.Kind != obj.SymbolFunction {
			continue
		}
		code, err := codeFor(target, ts)
		if err != nil {
			objlog.Default.Warn("skipping orphan function with unreadable code", "target", ts.Name)
			continue
		}
		ins := targetAdapter.Disassemble(code, ts.Address, target.Endian, relocsIn(target, ts), cfg)
		ins = arch.ScanInstructions(ins, ts.Address, ts.Size)
		diff := differ.DiffOrphanTarget(ins)
		funcResults = append(funcResults, FunctionResult{TargetSymbol: ti, BaseSymbol: -1, Target: diff})
		codeItems = append(codeItems, report.ItemSummary{Name: ts.Name, Size: ts.Size, MatchPercent: diff.MatchPercent})
	}
	for _, bi := range baseOrphans {
		bs := &base.Symbols[bi]
		if bs.Kind != obj.SymbolFunction {
			continue
		}
		code, err := codeFor(base, bs)
		if err != nil {
			objlog.Default.Warn("skipping orphan function with unreadable code", "base", bs.Name)
			continue
		}
		ins := baseAdapter.Disassemble(code, bs.Address, base.Endian, relocsIn(base, bs), cfg)
		ins = arch.ScanInstructions(ins, bs.Address, bs.Size)
		diff := differ.DiffOrphanBase(ins)
		funcResults = append(funcResults, FunctionResult{TargetSymbol: -1, BaseSymbol: bi, Base: diff})
		codeItems = append(codeItems, report.ItemSummary{Name: bs.Name, Size: bs.Size, MatchPercent: diff.MatchPercent})
	}

	var dataResults []DataResult
	for ti, sec := range target.Sections {
		if sec.Kind != obj.SectionData && sec.Kind != obj.SectionBss {
			continue
		}
		bi := findSectionByName(base, sec.Name)
		if bi < 0 {
			continue
		}
		var d differ.SectionDataDiff
		if sec.Kind == obj.SectionBss {
			d = differ.DiffBSS(sec.Size, base.Sections[bi].Size)
		} else {
			d = differ.DiffData(sec.Data, base.Sections[bi].Data)
		}
		dataResults = append(dataResults, DataResult{TargetSection: ti, BaseSection: bi, Diff: d})
		dataItems = append(dataItems, report.ItemSummary{Name: sec.Name, Size: sec.Size, MatchPercent: d.MatchPercent})
	}

	unit := report.UnitReport{
		Name: target.Name,
		Code: report.Aggregate(codeItems),
		Data: report.Aggregate(dataItems),
	}

	return &Result{Match: m, Functions: funcResults, Data: dataResults, Unit: unit}, nil
}

func codeFor(o *obj.Object, sym *obj.Symbol) ([]byte, error) {
	if sym.Section < 0 || sym.Section >= len(o.Sections) {
		return nil, fmt.Errorf("symbol %q has no section", sym.Name)
	}
	sec := &o.Sections[sym.Section]
	// Symbol.Address is documented as absolute, post section-combine
	// (obj.go); DataRange takes an absolute address and does the
	// section-base subtraction itself, so this is correct whether or not
	// sym's section was merged by loader.Combine. SectionAddress tracks the
	// symbol's pre-combine offset for display and must not be used here —
	// after a merge it no longer corresponds to a position in this
	// section's (concatenated) Data.
	data, ok := sec.DataRange(sym.Address, sym.Size)
	if !ok {
		return nil, fmt.Errorf("symbol %q out of section bounds", sym.Name)
	}
	return data, nil
}

func relocsIn(o *obj.Object, sym *obj.Symbol) []obj.Relocation {
	if sym.Section < 0 {
		return nil
	}
	sec := &o.Sections[sym.Section]
	// Relocation.Offset is section-relative to sec.Address (loader.Combine
	// rebases both post-merge, so this stays consistent whether or not
	// sym's section was combined); SectionAddress would be stale here for
	// the same reason codeFor can't use it.
	lo := sym.Address - sec.Address
	hi := lo + sym.Size
	var out []obj.Relocation
	for _, r := range sec.Relocations {
		if r.Offset >= lo && r.Offset < hi {
			rebased := r
			rebased.Offset = r.Offset - lo
			out = append(out, rebased)
		}
	}
	return out
}

func findSectionByName(o *obj.Object, name string) int {
	for i, s := range o.Sections {
		if s.Name == name {
			return i
		}
	}
	return -1
}
