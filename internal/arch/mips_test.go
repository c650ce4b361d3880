package arch

import (
	"testing"

	"github.com/objdiff/objdiff-go/internal/obj"
)

func TestDecodeMipsNop(t *testing.T) {
	mnemonic, args := decodeMips(0)
	if mnemonic != "nop" || args != nil {
		t.Errorf("got (%q, %v)", mnemonic, args)
	}
}

func TestDecodeMipsRType(t *testing.T) {
	// add $t0($8), $t1($9), $t2($10): op=0, rs=9, rt=10, rd=8, funct=0x20.
	word := uint32(0)<<26 | uint32(9)<<21 | uint32(10)<<16 | uint32(8)<<11 | uint32(0x20)
	mnemonic, args := decodeMips(word)
	if mnemonic != "add" {
		t.Fatalf("expected add, got %q", mnemonic)
	}
	if len(args) != 5 || args[0].Text != "$8" || args[2].Text != "$9" || args[4].Text != "$10" {
		t.Errorf("unexpected args %+v", args)
	}
}

func TestDecodeMipsAddiu(t *testing.T) {
	// addiu $t1($9), $t0($8), -4: op=0x09, rs=8, rt=9, imm=0xfffc.
	word := uint32(0x09)<<26 | uint32(8)<<21 | uint32(9)<<16 | uint32(0xfffc)
	mnemonic, args := decodeMips(word)
	if mnemonic != "addiu" {
		t.Fatalf("expected addiu, got %q", mnemonic)
	}
	if args[4].Signed != -4 {
		t.Errorf("expected immediate -4, got %+v", args[4])
	}
}

func TestDecodeMipsBranchScalesDisplacement(t *testing.T) {
	// beq $0, $0, 4 (word-scaled by 4 per the MIPS branch encoding).
	word := uint32(0x04)<<26 | uint32(0)<<21 | uint32(0)<<16 | uint32(4)
	mnemonic, args := decodeMips(word)
	if mnemonic != "beq" {
		t.Fatalf("expected beq, got %q", mnemonic)
	}
	if args[4].Signed != 16 {
		t.Errorf("expected displacement 4<<2=16, got %+v", args[4])
	}
}

func TestDecodeMipsJumpTarget(t *testing.T) {
	word := uint32(0x02)<<26 | uint32(0x100) // j with a small target field
	mnemonic, args := decodeMips(word)
	if mnemonic != "j" {
		t.Fatalf("expected j, got %q", mnemonic)
	}
	if args[0].Unsigned != 0x400 {
		t.Errorf("expected target<<2 = 0x400, got %+v", args[0])
	}
}

func TestDecodeMipsUnknownOpcodeIsTotalNotError(t *testing.T) {
	word := uint32(0x3e) << 26 // an opcode not in the table
	mnemonic, args := decodeMips(word)
	if mnemonic == "" || len(args) == 0 {
		t.Errorf("expected a fallback mnemonic and opaque arg, got (%q, %+v)", mnemonic, args)
	}
}

func TestMipsAdapterDisassembleAttachesRelocation(t *testing.T) {
	a := &mipsAdapter{}
	// lui $at, 0 at offset 0, four bytes.
	word := uint32(0x0f)<<26 | uint32(1)<<16
	code := []byte{byte(word >> 24), byte(word >> 16), byte(word >> 8), byte(word)}
	relocs := []obj.Relocation{{Offset: 0, RawType: 5, TargetSymbol: 2}}

	insts := a.Disassemble(code, 0x1000, obj.BigEndian, relocs, nil)
	if len(insts) != 1 {
		t.Fatalf("expected 1 instruction, got %d", len(insts))
	}
	if insts[0].Reloc == nil || insts[0].Reloc.TargetSymbol != 2 {
		t.Errorf("expected the relocation attached, got %+v", insts[0].Reloc)
	}
}

func TestMipsAdapterDisassembleHonorsLittleEndian(t *testing.T) {
	a := &mipsAdapter{}
	// Same lui $at, 0 word as the big-endian test, byte-swapped.
	word := uint32(0x0f)<<26 | uint32(1)<<16
	code := []byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}

	insts := a.Disassemble(code, 0x1000, obj.LittleEndian, nil, nil)
	if len(insts) != 1 || insts[0].Mnemonic != "lui" {
		t.Fatalf("expected a decoded lui instruction on a little-endian MIPS object, got %+v", insts)
	}
}

func TestMipsImplicitAddendForHiLo(t *testing.T) {
	a := &mipsAdapter{}
	word := uint32(0x1234)
	code := []byte{0, 0, byte(word >> 8), byte(word)}
	addend, ok := a.ImplicitAddend(code, 0, 5, obj.BigEndian)
	if !ok || addend != 0x1234 {
		t.Errorf("expected addend 0x1234, got %d (ok=%v)", addend, ok)
	}
	if _, ok := a.ImplicitAddend(code, 0, 2, obj.BigEndian); ok {
		t.Errorf("expected R_MIPS_32 to report no implicit addend")
	}
}

func TestMipsImplicitAddendLittleEndian(t *testing.T) {
	a := &mipsAdapter{}
	word := uint32(0x1234)
	code := []byte{byte(word), byte(word >> 8), 0, 0}
	addend, ok := a.ImplicitAddend(code, 0, 5, obj.LittleEndian)
	if !ok || addend != 0x1234 {
		t.Errorf("expected addend 0x1234 on a little-endian read, got %d (ok=%v)", addend, ok)
	}
}
