package display

import "testing"

func TestRenderANSIPreservesText(t *testing.T) {
	segs := []Segment{
		{Kind: SegOpcode, Text: "add", Color: ColorNormal},
		{Kind: SegSpacing, Text: " "},
		{Kind: SegBasic, Text: "r1", Color: ColorDelete},
		{Kind: SegEol},
	}
	out := RenderANSI(segs)
	for _, want := range []string{"add", "r1"} {
		if !contains(out, want) {
			t.Errorf("expected rendered output to contain %q, got %q", want, out)
		}
	}
	if !contains(out, "\n") {
		t.Errorf("expected a trailing newline from SegEol, got %q", out)
	}
}

func TestRenderANSIRotatingPaletteWraps(t *testing.T) {
	// RotatingIndex beyond the palette length must not panic; it should wrap.
	seg := Segment{Kind: SegSigned, Text: "1", Color: ColorRotating, RotatingIndex: len(rotatingPalette) + 2}
	_ = RenderANSI([]Segment{seg})
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
