// Package report implements the aggregator (§4.H): rolling per-function
// match percentages up into per-section, per-unit and per-report summaries,
// plus the report-category and version-split supplements pulled from the
// original's bindings/report.rs (SPEC_FULL "Report categories and version
// split").
package report

// ItemSummary is one scored item (a function or a data section) contributing
// to a rollup.
type ItemSummary struct {
	Name         string
	Size         uint64
	MatchPercent float64 // [0, 100]
}

// Rollup is a size-weighted aggregate over a set of ItemSummary values.
type Rollup struct {
	TotalBytes       uint64
	MatchedBytes     uint64 // bytes belonging to fully-matched (100.0) items
	FuzzyMatchPercent float64
	MatchedPercent   float64 // matched_*_percent: fraction of bytes in fully-matched items
	ItemCount        int
	MatchedItemCount int
}

// Aggregate computes a Rollup over a set of items (§4.H "size-weighted mean").
func Aggregate(items []ItemSummary) Rollup {
	var r Rollup
	var weightedSum float64
	for _, it := range items {
		r.TotalBytes += it.Size
		r.ItemCount++
		weightedSum += float64(it.Size) * it.MatchPercent
		if it.MatchPercent >= 100.0 {
			r.MatchedBytes += it.Size
			r.MatchedItemCount++
		}
	}
	if r.TotalBytes > 0 {
		r.FuzzyMatchPercent = weightedSum / float64(r.TotalBytes)
		r.MatchedPercent = 100.0 * float64(r.MatchedBytes) / float64(r.TotalBytes)
	} else if r.ItemCount > 0 {
		// Every item is zero-sized (e.g. all-BSS unit): fall back to an
		// unweighted mean so a unit of empty-but-matched symbols still
		// reports 100, not NaN.
		var sum float64
		for _, it := range items {
			sum += it.MatchPercent
		}
		r.FuzzyMatchPercent = sum / float64(len(items))
		if r.MatchedItemCount == r.ItemCount {
			r.MatchedPercent = 100.0
		}
	}
	return r
}

// UnitReport is the per-unit rollup (§4.H "per unit: code and data totals;
// counts of functions/units; complete flag from external metadata").
type UnitReport struct {
	Name       string
	Code       Rollup
	Data       Rollup
	Complete   bool // from ProjectUnitMeta.Complete, orthogonal to match percentage
	Categories []string
}

// CategoryReport is one progress-category rollup, keyed by the category tag
// used in ProjectUnitMeta.ProgressCategories.
type CategoryReport struct {
	ID   string
	Code Rollup
	Data Rollup
}

// Report is the per-report rollup: sums over units, plus per-category
// breakdowns (§4.H "per report: sums over units, plus per-category
// breakdowns").
type Report struct {
	Units      []UnitReport
	Code       Rollup
	Data       Rollup
	Categories []CategoryReport
}

// Build sums a set of already-computed unit reports into the top-level
// report, splitting by category tag the way the original's
// calculate_progress_categories does (SPEC_FULL supplemented feature).
func Build(units []UnitReport) Report {
	var allCode, allData []ItemSummary
	catCode := map[string][]ItemSummary{}
	catData := map[string][]ItemSummary{}

	for _, u := range units {
		allCode = append(allCode, ItemSummary{Name: u.Name, Size: u.Code.TotalBytes, MatchPercent: u.Code.FuzzyMatchPercent})
		allData = append(allData, ItemSummary{Name: u.Name, Size: u.Data.TotalBytes, MatchPercent: u.Data.FuzzyMatchPercent})
		for _, cat := range u.Categories {
			catCode[cat] = append(catCode[cat], ItemSummary{Name: u.Name, Size: u.Code.TotalBytes, MatchPercent: u.Code.FuzzyMatchPercent})
			catData[cat] = append(catData[cat], ItemSummary{Name: u.Name, Size: u.Data.TotalBytes, MatchPercent: u.Data.FuzzyMatchPercent})
		}
	}

	var cats []CategoryReport
	seen := map[string]bool{}
	for _, u := range units {
		for _, cat := range u.Categories {
			if seen[cat] {
				continue
			}
			seen[cat] = true
			cats = append(cats, CategoryReport{ID: cat, Code: Aggregate(catCode[cat]), Data: Aggregate(catData[cat])})
		}
	}

	return Report{
		Units:      units,
		Code:       Aggregate(allCode),
		Data:       Aggregate(allData),
		Categories: cats,
	}
}

// Split partitions a report's units into two reports by name membership,
// mirroring the original's Report::split — used to compare a report against
// an older baseline restricted to the same unit set (SPEC_FULL supplement).
func Split(r Report, unitNames map[string]bool) (matched, unmatched Report) {
	var mUnits, uUnits []UnitReport
	for _, u := range r.Units {
		if unitNames[u.Name] {
			mUnits = append(mUnits, u)
		} else {
			uUnits = append(uUnits, u)
		}
	}
	return Build(mUnits), Build(uUnits)
}
