// Package match implements the symbol matcher (§4.D): pairing target-side
// symbols with base-side symbols so the differ has something to diff.
package match

import (
	"strings"

	"github.com/objdiff/objdiff-go/internal/differ"
	"github.com/objdiff/objdiff-go/internal/obj"
)

// Result is the two parallel pairing maps a matcher run produces. An
// unpaired symbol (an orphan, §4.D.3) has no entry in either map.
type Result struct {
	TargetToBase map[int]int // target symbol index -> base symbol index
	BaseToTarget map[int]int // base symbol index -> target symbol index
}

func (r *Result) pair(target, base int) {
	r.TargetToBase[target] = base
	r.BaseToTarget[base] = target
}

func (r *Result) targetPaired(i int) bool { _, ok := r.TargetToBase[i]; return ok }
func (r *Result) basePaired(i int) bool   { _, ok := r.BaseToTarget[i]; return ok }

// Match pairs symbols of target against base, honouring explicit mappings
// first and falling back to name/kind/size heuristics (§4.D algorithm).
func Match(target, base *obj.Object, mappings []differ.SymbolMapping) *Result {
	res := &Result{TargetToBase: map[int]int{}, BaseToTarget: map[int]int{}}

	targetByName := indexByName(target)
	baseByName := indexByName(base)

	for _, m := range mappings {
		ti, tok := targetByName[m.TargetSymbol]
		bi, bok := baseByName[m.BaseSymbol]
		if !tok || !bok {
			continue
		}
		if target.Symbols[ti].Kind != base.Symbols[bi].Kind {
			continue // override wins only when the kinds are actually compatible
		}
		if res.targetPaired(ti) || res.basePaired(bi) {
			continue
		}
		res.pair(ti, bi)
	}

	// Group base candidates by name for O(1) lookup during the heuristic pass.
	baseCandidatesByName := map[string][]int{}
	for i, s := range base.Symbols {
		if s.Flags.Has(obj.FlagIgnored) || res.basePaired(i) {
			continue
		}
		baseCandidatesByName[s.Name] = append(baseCandidatesByName[s.Name], i)
	}

	for ti, ts := range target.Symbols {
		if ts.Flags.Has(obj.FlagIgnored) || res.targetPaired(ti) {
			continue
		}
		candidates := candidatesFor(target, base, ti, baseCandidatesByName, res)
		if len(candidates) == 0 {
			continue
		}
		if bi, ok := pickBest(target, base, ti, candidates, res); ok {
			res.pair(ti, bi)
		}
	}
	return res
}

// candidatesFor returns unpaired base symbols compatible with the target
// symbol by exact name and section kind, including the Metrowerks pool
// suffix relaxation (poolNameMatches).
func candidatesFor(target, base *obj.Object, ti int, baseCandidatesByName map[string][]int, res *Result) []int {
	ts := &target.Symbols[ti]
	tKind := sectionKind(target, ts.Section)

	var out []int
	for _, bi := range baseCandidatesByName[ts.Name] {
		bs := &base.Symbols[bi]
		if !res.basePaired(bi) && sectionKind(base, bs.Section) == tKind {
			out = append(out, bi)
		}
	}
	if len(out) > 0 {
		return out
	}
	// Fall back to the pool-symbol suffix rule when no exact name matched.
	for name, bis := range baseCandidatesByName {
		if !poolNameMatches(ts.Name, name) {
			continue
		}
		for _, bi := range bis {
			if !res.basePaired(bi) && sectionKind(base, base.Symbols[bi].Section) == tKind {
				out = append(out, bi)
			}
		}
	}
	return out
}

// poolNameMatches implements the Metrowerks pool-constant matching rule: a
// name and its "@<n>" pool-suffixed sibling refer to the same logical
// constant duplicated per translation unit, so they are treated as
// name-equivalent for matching purposes (§4.D via the original's
// symbol_name_matches).
func poolNameMatches(a, b string) bool {
	if a == b {
		return true
	}
	return stripPoolSuffix(a) == stripPoolSuffix(b) && stripPoolSuffix(a) != ""
}

func stripPoolSuffix(name string) string {
	i := strings.LastIndex(name, "@")
	if i < 0 {
		return ""
	}
	suffix := name[i+1:]
	if suffix == "" {
		return ""
	}
	for _, c := range suffix {
		if c < '0' || c > '9' {
			return ""
		}
	}
	return name[:i]
}

// pickBest applies the tie-break order from §4.D.2: same section name >
// closest size > first in address order. The address-order step always
// settles a remaining tie, so for a non-empty candidate list ok is always
// true; a target with no candidates at all is left unpaired by the caller.
func pickBest(target, base *obj.Object, ti int, candidates []int, res *Result) (int, bool) {
	if len(candidates) == 1 {
		return candidates[0], true
	}
	ts := &target.Symbols[ti]
	targetSectionName := ""
	if ts.Section >= 0 {
		targetSectionName = target.Sections[ts.Section].Name
	}

	var sameSectionName []int
	for _, bi := range candidates {
		bs := &base.Symbols[bi]
		bSectionName := ""
		if bs.Section >= 0 {
			bSectionName = base.Sections[bs.Section].Name
		}
		if bSectionName == targetSectionName {
			sameSectionName = append(sameSectionName, bi)
		}
	}
	pool := candidates
	if len(sameSectionName) > 0 {
		pool = sameSectionName
	}
	if len(pool) == 1 {
		return pool[0], true
	}

	best := -1
	bestDelta := ^uint64(0)
	tie := false
	for _, bi := range pool {
		delta := absDelta(ts.Size, base.Symbols[bi].Size)
		if delta < bestDelta {
			bestDelta, best, tie = delta, bi, false
		} else if delta == bestDelta {
			tie = true
		}
	}
	if !tie {
		return best, true
	}

	// Final tie-break: first in address order among the size-tied pool.
	tiedPool := make([]int, 0, len(pool))
	for _, bi := range pool {
		if absDelta(ts.Size, base.Symbols[bi].Size) == bestDelta {
			tiedPool = append(tiedPool, bi)
		}
	}
	best = tiedPool[0]
	for _, bi := range tiedPool[1:] {
		if base.Symbols[bi].Address < base.Symbols[best].Address {
			best = bi
		}
	}
	return best, true
}

func absDelta(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

func sectionKind(o *obj.Object, section int) obj.SectionKind {
	if section < 0 || section >= len(o.Sections) {
		return obj.SectionUnknown
	}
	return o.Sections[section].Kind
}

func indexByName(o *obj.Object) map[string]int {
	m := make(map[string]int, len(o.Symbols))
	for i, s := range o.Symbols {
		if _, exists := m[s.Name]; !exists {
			m[s.Name] = i
		}
	}
	return m
}

// Orphans returns the target and base symbol indices left unpaired by r,
// excluding Ignored symbols (§4.D.3, §4.D "Ignored symbols... excluded from
// matching and aggregation").
func Orphans(target, base *obj.Object, r *Result) (targetOrphans, baseOrphans []int) {
	for i, s := range target.Symbols {
		if s.Flags.Has(obj.FlagIgnored) || r.targetPaired(i) {
			continue
		}
		targetOrphans = append(targetOrphans, i)
	}
	for i, s := range base.Symbols {
		if s.Flags.Has(obj.FlagIgnored) || r.basePaired(i) {
			continue
		}
		baseOrphans = append(baseOrphans, i)
	}
	return
}
