package pipeline

import (
	"testing"

	"github.com/objdiff/objdiff-go/internal/config"
	"github.com/objdiff/objdiff-go/internal/obj"
)

func dataObject(arch string, data []byte) *obj.Object {
	return &obj.Object{
		Name: "unit",
		Arch: arch,
		Sections: []obj.Section{
			{Name: ".data", Kind: obj.SectionData, Size: uint64(len(data)), Data: data},
		},
	}
}

func TestDiffObjectsUnknownArchitecture(t *testing.T) {
	target := dataObject("does-not-exist", []byte{1})
	base := dataObject("does-not-exist", []byte{1})
	if _, err := DiffObjects(target, base, nil, nil); err == nil {
		t.Fatal("expected an error for an unregistered architecture")
	}
}

func TestDiffObjectsMatchesDataSectionsByName(t *testing.T) {
	target := dataObject("ppc", []byte{1, 2, 3, 4})
	base := dataObject("ppc", []byte{1, 2, 3, 4})

	res, err := DiffObjects(target, base, config.Default(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Data) != 1 {
		t.Fatalf("expected one matched data section, got %d", len(res.Data))
	}
	if res.Data[0].Diff.MatchPercent != 100 {
		t.Errorf("identical data sections should be 100%% match, got %v", res.Data[0].Diff.MatchPercent)
	}
	if res.Unit.Data.FuzzyMatchPercent != 100 {
		t.Errorf("expected unit rollup to reflect the full match, got %v", res.Unit.Data.FuzzyMatchPercent)
	}
}

func TestDiffObjectsSkipsUnmatchedSectionNames(t *testing.T) {
	target := dataObject("ppc", []byte{1, 2, 3})
	base := &obj.Object{
		Name: "unit",
		Arch: "ppc",
		Sections: []obj.Section{
			{Name: ".rodata", Kind: obj.SectionData, Size: 3, Data: []byte{9, 9, 9}},
		},
	}

	res, err := DiffObjects(target, base, config.Default(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Data) != 0 {
		t.Errorf("expected no matched sections when names differ, got %d", len(res.Data))
	}
}

func TestDiffObjectsDefaultsConfigWhenNil(t *testing.T) {
	target := dataObject("ppc", []byte{1})
	base := dataObject("ppc", []byte{1})
	if _, err := DiffObjects(target, base, nil, nil); err != nil {
		t.Fatalf("expected a nil config to fall back to defaults, got error: %v", err)
	}
}
