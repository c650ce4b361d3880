package objerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesKind(t *testing.T) {
	err := New(UnsupportedArchitecture, "riscv")
	if !Is(err, UnsupportedArchitecture) {
		t.Error("expected Is to match the error's own kind")
	}
	if Is(err, MalformedObject) {
		t.Error("expected Is to reject a different kind")
	}
}

func TestIsUnwrapsThroughFmtErrorf(t *testing.T) {
	base := New(MalformedObject, "bad section table")
	wrapped := fmt.Errorf("loading foo.o: %w", base)
	if !Is(wrapped, MalformedObject) {
		t.Error("expected Is to unwrap through fmt.Errorf wrapping")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("EOF")
	err := Wrap(MalformedObject, "reading header", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if err.Error() == "" {
		t.Error("expected a non-empty error message")
	}
}

func TestIsFalseForPlainError(t *testing.T) {
	if Is(errors.New("plain"), MalformedObject) {
		t.Error("expected Is to return false for a non-*Error")
	}
}
