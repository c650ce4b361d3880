package loader

import (
	"testing"

	"github.com/objdiff/objdiff-go/internal/obj"
)

func TestCombineMergesSectionsOfOneKind(t *testing.T) {
	o := &obj.Object{
		Sections: []obj.Section{
			{Name: ".data.a", Kind: obj.SectionData, Address: 0, Size: 4, Data: []byte{1, 2, 3, 4}},
			{Name: ".data.b", Kind: obj.SectionData, Address: 0x100, Size: 2, Data: []byte{5, 6}},
			{Name: ".text", Kind: obj.SectionText, Address: 0x200, Size: 4},
		},
		Symbols: []obj.Symbol{
			{Name: "in_a", Section: 0, Address: 2},
			{Name: "in_b", Section: 1, Address: 0x101},
			{Name: "in_text", Section: 2, Address: 0x200},
		},
	}

	Combine(o, obj.SectionData)

	if len(o.Sections) != 2 {
		t.Fatalf("expected the two data sections merged into one (plus .text), got %d sections", len(o.Sections))
	}
	var merged *obj.Section
	for i := range o.Sections {
		if o.Sections[i].Kind == obj.SectionData {
			merged = &o.Sections[i]
		}
	}
	if merged == nil {
		t.Fatal("expected a merged data section")
	}
	if len(merged.Data) != 6 {
		t.Fatalf("expected 6 bytes of merged data, got %d", len(merged.Data))
	}

	mergedIdx := o.SectionByName("data")
	if mergedIdx < 0 {
		t.Fatal("expected a merged section named after its kind")
	}
	if o.Symbols[0].Section != mergedIdx {
		t.Errorf("symbol in_a should now reference the merged section, got %d", o.Symbols[0].Section)
	}
	if o.Symbols[0].Address != 2 {
		t.Errorf("in_a should sit at offset 2 in the merged section, got %d", o.Symbols[0].Address)
	}
	if o.Symbols[1].Address != 5 {
		t.Errorf("in_b should sit at offset 4+1=5 in the merged section, got %d", o.Symbols[1].Address)
	}

	textIdx := o.SectionByName(".text")
	if textIdx < 0 {
		t.Fatal("expected .text to survive the merge")
	}
	if o.Symbols[2].Section != textIdx {
		t.Errorf("unrelated .text symbol should be remapped to .text's new index (%d), got %d", textIdx, o.Symbols[2].Section)
	}
}

func TestCombineNoOpWithFewerThanTwoSections(t *testing.T) {
	o := &obj.Object{
		Sections: []obj.Section{{Name: ".data", Kind: obj.SectionData, Size: 4, Data: []byte{1, 2, 3, 4}}},
	}
	Combine(o, obj.SectionData)
	if len(o.Sections) != 1 || o.Sections[0].Name != ".data" {
		t.Errorf("expected no changes with a single section of the kind, got %+v", o.Sections)
	}
}

func TestLooksLikeCOFFFailsOnMissingFile(t *testing.T) {
	// looksLikeCOFF reports the read error for a path that cannot be opened
	// rather than guessing; the machine-field checks themselves are covered
	// by TestLooksLikeCOFFBytesRecognizesKnownMachines.
	if ok, err := looksLikeCOFF("/nonexistent-path-for-test"); ok || err == nil {
		t.Errorf("expected looksLikeCOFF to fail opening a nonexistent file, got ok=%v err=%v", ok, err)
	}
}

func TestLoadBytesRejectsPEExecutableImage(t *testing.T) {
	if _, err := LoadBytes([]byte{'M', 'Z', 0, 0}); err == nil {
		t.Error("expected LoadBytes to reject an MZ-stamped executable image")
	}
}

func TestLoadBytesRejectsTooShortBuffer(t *testing.T) {
	if _, err := LoadBytes([]byte{1, 2}); err == nil {
		t.Error("expected LoadBytes to reject a buffer too short to carry a magic number")
	}
}

func TestLoadBytesRejectsUnrecognizedContainer(t *testing.T) {
	if _, err := LoadBytes([]byte{0xde, 0xad, 0xbe, 0xef}); err == nil {
		t.Error("expected LoadBytes to reject an unrecognized magic")
	}
}

func TestLooksLikeCOFFBytesRecognizesKnownMachines(t *testing.T) {
	for _, machine := range []uint16{0x14c, 0x8664, 0x1c0, 0xaa64} {
		data := []byte{byte(machine), byte(machine >> 8), 0, 0}
		if !looksLikeCOFFBytes(data) {
			t.Errorf("expected machine %#x to look like COFF", machine)
		}
	}
	if looksLikeCOFFBytes([]byte{0xff, 0xff, 0, 0}) {
		t.Error("expected an unrecognized machine field to not look like COFF")
	}
	if looksLikeCOFFBytes([]byte{1, 2}) {
		t.Error("expected a too-short buffer to not look like COFF")
	}
}
