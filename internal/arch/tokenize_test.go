package arch

import (
	"reflect"
	"testing"

	"github.com/objdiff/objdiff-go/internal/obj"
)

func TestTokenizeOperandsRegisters(t *testing.T) {
	got := TokenizeOperands("r3, r4")
	want := []obj.Argument{obj.PlainText("r3"), obj.PlainText(","), obj.PlainText("r4")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestTokenizeOperandsImmediate(t *testing.T) {
	got := TokenizeOperands("4")
	want := []obj.Argument{obj.Unsigned(4)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestTokenizeOperandsNegativeImmediate(t *testing.T) {
	got := TokenizeOperands("-8")
	want := []obj.Argument{obj.Signed(-8)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestTokenizeOperandsHexImmediate(t *testing.T) {
	got := TokenizeOperands("0x10")
	want := []obj.Argument{obj.Unsigned(0x10)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestTokenizeOperandsOffsetRegister(t *testing.T) {
	got := TokenizeOperands("4(r1)")
	want := []obj.Argument{obj.Unsigned(4), obj.PlainText("("), obj.PlainText("r1"), obj.PlainText(")")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestTokenizeOperandsEmpty(t *testing.T) {
	if got := TokenizeOperands(""); got != nil {
		t.Errorf("expected nil for empty operand text, got %+v", got)
	}
}

func TestSplitMnemonic(t *testing.T) {
	cases := []struct{ in, mnem, ops string }{
		{"bl 0x1000", "bl", "0x1000"},
		{"add r3, r3, r4", "add", "r3, r3, r4"},
		{"nop", "nop", ""},
		{"  ret  ", "ret", ""},
	}
	for _, c := range cases {
		mnem, ops := SplitMnemonic(c.in)
		if mnem != c.mnem || ops != c.ops {
			t.Errorf("SplitMnemonic(%q) = (%q, %q), want (%q, %q)", c.in, mnem, ops, c.mnem, c.ops)
		}
	}
}

func TestReplaceOrAppendRelocReplacesNumeric(t *testing.T) {
	args := []obj.Argument{obj.PlainText("r3"), obj.PlainText(","), obj.Unsigned(0x1000)}
	got := ReplaceOrAppendReloc(args)
	if len(got) != 3 || got[2].Kind != obj.ArgRelocation {
		t.Fatalf("expected the numeric arg replaced with a relocation marker, got %+v", got)
	}
	// original slice must be untouched
	if args[2].Kind != obj.ArgUnsigned {
		t.Errorf("ReplaceOrAppendReloc must not mutate its input, got %+v", args)
	}
}

func TestReplaceOrAppendRelocAppendsWhenNoNumeric(t *testing.T) {
	args := []obj.Argument{obj.PlainText("r3")}
	got := ReplaceOrAppendReloc(args)
	if len(got) != 2 || got[1].Kind != obj.ArgRelocation {
		t.Fatalf("expected relocation marker appended, got %+v", got)
	}
}
