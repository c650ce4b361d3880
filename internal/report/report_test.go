package report

import "testing"

func TestAggregateSizeWeightedMean(t *testing.T) {
	items := []ItemSummary{
		{Name: "a", Size: 100, MatchPercent: 100},
		{Name: "b", Size: 100, MatchPercent: 0},
	}
	r := Aggregate(items)
	if r.FuzzyMatchPercent != 50 {
		t.Errorf("expected 50%%, got %v", r.FuzzyMatchPercent)
	}
	if r.MatchedBytes != 100 {
		t.Errorf("expected 100 matched bytes, got %d", r.MatchedBytes)
	}
	if r.MatchedItemCount != 1 {
		t.Errorf("expected 1 fully matched item, got %d", r.MatchedItemCount)
	}
}

func TestAggregateWeightsBySize(t *testing.T) {
	items := []ItemSummary{
		{Name: "big", Size: 900, MatchPercent: 0},
		{Name: "small", Size: 100, MatchPercent: 100},
	}
	r := Aggregate(items)
	if r.FuzzyMatchPercent != 10 {
		t.Errorf("expected size-weighted 10%%, got %v", r.FuzzyMatchPercent)
	}
}

func TestAggregateAllZeroSizeFallsBackToUnweightedMean(t *testing.T) {
	items := []ItemSummary{
		{Name: "a", Size: 0, MatchPercent: 100},
		{Name: "b", Size: 0, MatchPercent: 50},
	}
	r := Aggregate(items)
	if r.FuzzyMatchPercent != 75 {
		t.Errorf("expected unweighted mean 75%%, got %v", r.FuzzyMatchPercent)
	}
}

func TestAggregateEmpty(t *testing.T) {
	r := Aggregate(nil)
	if r.FuzzyMatchPercent != 0 || r.ItemCount != 0 {
		t.Errorf("expected zero-value rollup for no items, got %+v", r)
	}
}

func TestBuildSplitsByCategory(t *testing.T) {
	units := []UnitReport{
		{Name: "u1", Code: Rollup{TotalBytes: 100, FuzzyMatchPercent: 100}, Categories: []string{"core"}},
		{Name: "u2", Code: Rollup{TotalBytes: 100, FuzzyMatchPercent: 0}, Categories: []string{"core", "extra"}},
	}
	rep := Build(units)
	if len(rep.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(rep.Categories))
	}
	var core CategoryReport
	for _, c := range rep.Categories {
		if c.ID == "core" {
			core = c
		}
	}
	if core.Code.FuzzyMatchPercent != 50 {
		t.Errorf("expected core category to average both units, got %v", core.Code.FuzzyMatchPercent)
	}
}

func TestSplitPartitionsByUnitName(t *testing.T) {
	units := []UnitReport{
		{Name: "u1", Code: Rollup{TotalBytes: 100, FuzzyMatchPercent: 100}},
		{Name: "u2", Code: Rollup{TotalBytes: 100, FuzzyMatchPercent: 0}},
	}
	full := Build(units)
	matched, unmatched := Split(full, map[string]bool{"u1": true})
	if len(matched.Units) != 1 || matched.Units[0].Name != "u1" {
		t.Fatalf("expected matched split to contain only u1, got %+v", matched.Units)
	}
	if len(unmatched.Units) != 1 || unmatched.Units[0].Name != "u2" {
		t.Fatalf("expected unmatched split to contain only u2, got %+v", unmatched.Units)
	}
}
