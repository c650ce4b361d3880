// Package loader turns a relocatable object file on disk into the neutral
// obj.Object model. Container parsing leans entirely on the standard
// library's debug/elf, debug/pe and debug/dwarf packages — this is the one
// concern where the whole retrieval pack, teacher included, reaches for
// stdlib rather than a third-party parser, so this backend follows suit
// (documented in DESIGN.md).
package loader

import (
	"bytes"
	"debug/elf"
	"fmt"
	"os"
	"sort"

	"github.com/ianlancetaylor/demangle"

	"github.com/objdiff/objdiff-go/internal/arch"
	"github.com/objdiff/objdiff-go/internal/objerr"
	"github.com/objdiff/objdiff-go/internal/obj"
)

// LoadELF reads path off disk and parses it as an ELF relocatable object
// (ET_REL). Thin os.ReadFile wrapper around LoadELFBytes.
func LoadELF(path string) (*obj.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, objerr.Wrap(objerr.UnsupportedContainer, "open elf "+path, err)
	}
	o, err := LoadELFBytes(data)
	if err != nil {
		return nil, err
	}
	o.Name, o.Path = path, path
	return o, nil
}

// LoadELFBytes parses an ELF relocatable object already resident in memory
// into the neutral model (§5 "the core performs no I/O"; the entry point a
// GUI or wasm collaborator uses instead of touching the filesystem).
// Grounded on elfx.Open's error-wrapping shape, minus the mmap and PLT-stub
// machinery that belongs to a running-binary analyzer rather than a linker
// object.
func LoadELFBytes(data []byte) (*obj.Object, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, objerr.Wrap(objerr.UnsupportedContainer, "parse elf", err)
	}
	defer f.Close()

	archTag, endian, err := elfArch(f)
	if err != nil {
		return nil, err
	}

	o := &obj.Object{
		Arch:     archTag,
		Endian:   endian,
		LineInfo: map[uint64]uint32{},
	}

	secIndex := make(map[int]int, len(f.Sections)) // ELF section index -> obj.Section index
	for i, s := range f.Sections {
		kind := elfSectionKind(s)
		if kind == obj.SectionUnknown && s.Type != elf.SHT_PROGBITS && s.Type != elf.SHT_NOBITS {
			continue // skip symtab/strtab/relocation/note/etc sections themselves
		}
		var data []byte
		if kind != obj.SectionBss {
			data, err = s.Data()
			if err != nil {
				return nil, objerr.Wrap(objerr.MalformedObject, "read section "+s.Name, err)
			}
		}
		secIndex[i] = len(o.Sections)
		o.Sections = append(o.Sections, obj.Section{
			Name:    s.Name,
			Kind:    kind,
			Address: s.Addr,
			Size:    s.Size,
			Data:    data,
			Index:   i,
		})
	}

	syms, err := f.Symbols()
	if err != nil && err != elf.ErrNoSymbols {
		return nil, objerr.Wrap(objerr.MalformedObject, "read symbols", err)
	}
	for _, s := range syms {
		if elf.ST_TYPE(s.Info) == elf.STT_FILE || s.Name == "" {
			continue
		}
		si, ok := secIndex[int(s.Section)]
		flags := elfSymbolFlags(s)
		symIdx := len(o.Symbols)
		address := s.Value
		sectionAddr := s.Value
		if ok {
			address = o.Sections[si].Address + (s.Value - o.Sections[si].Address)
			o.Sections[si].Symbols = append(o.Sections[si].Symbols, symIdx)
		} else {
			si = -1
		}
		o.Symbols = append(o.Symbols, obj.Symbol{
			Name:           s.Name,
			DemangledName:  demangleName(s.Name),
			Address:        address,
			SectionAddress: sectionAddr,
			Size:           s.Size,
			Kind:           elfSymbolKind(s),
			Section:        si,
			Flags:          flags,
		})
	}
	inferZeroSizes(o)

	adapter := arch.New(archTag) // may be nil if this build doesn't link the ISA's decoder (§9 feature gating)
	for i, s := range f.Sections {
		si, ok := secIndex[i]
		if !ok {
			continue
		}
		relocs, err := elfRelocations(f, s, o, si, adapter)
		if err != nil {
			return nil, err
		}
		o.Sections[si].Relocations = relocs
	}

	if lines, err := elfLineInfo(f); err == nil {
		o.LineInfo = lines
	}

	if err := o.Validate(); err != nil {
		return nil, objerr.Wrap(objerr.MalformedObject, "validate object", err)
	}
	return o, nil
}

func elfArch(f *elf.File) (string, obj.Endianness, error) {
	endian := obj.LittleEndian
	if f.ByteOrder.String() == "BigEndian" {
		endian = obj.BigEndian
	}
	switch f.Machine {
	case elf.EM_PPC, elf.EM_PPC64:
		return "ppc", endian, nil
	case elf.EM_386, elf.EM_X86_64:
		return "x86", endian, nil
	case elf.EM_ARM:
		return "arm", endian, nil
	case elf.EM_AARCH64:
		return "arm64", endian, nil
	case elf.EM_MIPS:
		return "mips", endian, nil
	case elf.EM_SH:
		return "superh", endian, nil
	default:
		return "", endian, objerr.New(objerr.UnsupportedArchitecture, fmt.Sprintf("elf machine %v", f.Machine))
	}
}

func elfSectionKind(s *elf.Section) obj.SectionKind {
	switch {
	case s.Type == elf.SHT_NOBITS:
		return obj.SectionBss
	case s.Flags&elf.SHF_EXECINSTR != 0:
		return obj.SectionText
	case s.Type == elf.SHT_PROGBITS:
		return obj.SectionData
	default:
		return obj.SectionUnknown
	}
}

func elfSymbolKind(s elf.Symbol) obj.SymbolKind {
	switch elf.ST_TYPE(s.Info) {
	case elf.STT_FUNC:
		return obj.SymbolFunction
	case elf.STT_OBJECT:
		return obj.SymbolObject
	case elf.STT_SECTION:
		return obj.SymbolSection
	default:
		return obj.SymbolUnknown
	}
}

func elfSymbolFlags(s elf.Symbol) obj.SymbolFlag {
	var flags obj.SymbolFlag
	switch elf.ST_BIND(s.Info) {
	case elf.STB_GLOBAL:
		flags |= obj.FlagGlobal
	case elf.STB_LOCAL:
		flags |= obj.FlagLocal
	case elf.STB_WEAK:
		flags |= obj.FlagWeak
	}
	if s.Section == elf.SHN_COMMON {
		flags |= obj.FlagCommon
	}
	if elf.ST_VISIBILITY(s.Other) == elf.STV_HIDDEN {
		flags |= obj.FlagHidden
	}
	return flags
}

func demangleName(name string) string {
	out := demangle.Filter(name, demangle.NoClones)
	if out == name {
		return ""
	}
	return out
}

// inferZeroSizes fills in the size of every zero-size symbol that has a
// section, of any kind, from the distance to the next symbol in the same
// section (or to the section's end), tagging the guess with
// FlagSizeInferred so the differ and reporter can treat it as approximate
// (spec §4.C.4).
func inferZeroSizes(o *obj.Object) {
	bySection := make(map[int][]int, len(o.Sections))
	for i, s := range o.Symbols {
		if s.Section >= 0 {
			bySection[s.Section] = append(bySection[s.Section], i)
		}
	}
	for si, idxs := range bySection {
		sort.Slice(idxs, func(a, b int) bool { return o.Symbols[idxs[a]].Address < o.Symbols[idxs[b]].Address })
		sec := &o.Sections[si]
		for k, idx := range idxs {
			sym := &o.Symbols[idx]
			if sym.Size != 0 {
				continue
			}
			var end uint64
			if k+1 < len(idxs) {
				end = o.Symbols[idxs[k+1]].Address
			} else {
				end = sec.Address + sec.Size
			}
			if end > sym.Address {
				sym.Size = end - sym.Address
				sym.Flags |= obj.FlagSizeInferred
			}
		}
	}
}

func elfRelocations(f *elf.File, s *elf.Section, o *obj.Object, secIdx int, adapter arch.Adapter) ([]obj.Relocation, error) {
	relSection := findRelocSection(f, s)
	if relSection == nil {
		return nil, nil
	}
	data, err := relSection.Data()
	if err != nil {
		return nil, objerr.Wrap(objerr.MalformedObject, "read relocations for "+s.Name, err)
	}
	syms, err := f.Symbols()
	if err != nil {
		syms = nil
	}
	entsize := int(relSection.Entsize)
	if entsize == 0 {
		entsize = 8
	}
	rela := relSection.Type == elf.SHT_RELA
	secData := o.Sections[secIdx].Data // nil for BSS, where relocations don't carry implicit addends anyway
	var relocs []obj.Relocation
	for off := 0; off+entsize <= len(data); off += entsize {
		r := parseElfRelEntry(f, data[off:off+entsize], rela)
		targetIdx := resolveRelocSymbol(o, syms, r.symIndex)
		addend := r.addend
		// §4.C.4: REL sections (x86-32, ARM, MIPS o32) carry no explicit
		// addend field; the addend lives in the instruction/data bytes
		// themselves and the adapter knows how to read it back out.
		if !rela && adapter != nil {
			if implicit, ok := adapter.ImplicitAddend(secData, r.offset, r.relType, o.Endian); ok {
				addend = implicit
			}
		}
		relocs = append(relocs, obj.Relocation{
			Offset:       r.offset,
			Kind:         relocKindFor(f.Machine, r.relType),
			RawType:      r.relType,
			TargetSymbol: targetIdx,
			Addend:       addend,
		})
	}
	return relocs, nil
}

type elfRelEntry struct {
	offset   uint64
	symIndex uint32
	relType  uint32
	addend   int64
}

func parseElfRelEntry(f *elf.File, raw []byte, rela bool) elfRelEntry {
	bo := f.ByteOrder
	var off, info uint64
	var addend int64
	if f.Class == elf.ELFCLASS64 {
		off = bo.Uint64(raw[0:8])
		info = bo.Uint64(raw[8:16])
		if rela && len(raw) >= 24 {
			addend = int64(bo.Uint64(raw[16:24]))
		}
	} else {
		off = uint64(bo.Uint32(raw[0:4]))
		info = uint64(bo.Uint32(raw[4:8]))
		if rela && len(raw) >= 12 {
			addend = int64(int32(bo.Uint32(raw[8:12])))
		}
	}
	var symIndex uint32
	var relType uint32
	if f.Class == elf.ELFCLASS64 {
		symIndex = uint32(info >> 32)
		relType = uint32(info)
	} else {
		symIndex = uint32(info >> 8)
		relType = uint32(info & 0xff)
	}
	return elfRelEntry{offset: off, symIndex: symIndex, relType: relType, addend: addend}
}

func resolveRelocSymbol(o *obj.Object, syms []elf.Symbol, elfSymIndex uint32) int {
	if int(elfSymIndex) >= len(syms) {
		return -1
	}
	name := syms[elfSymIndex].Name
	for i := range o.Symbols {
		if o.Symbols[i].Name == name {
			return i
		}
	}
	return -1
}

func findRelocSection(f *elf.File, s *elf.Section) *elf.Section {
	for _, rs := range f.Sections {
		if (rs.Type == elf.SHT_REL || rs.Type == elf.SHT_RELA) && (".rel"+s.Name == rs.Name || ".rela"+s.Name == rs.Name) {
			return rs
		}
	}
	return nil
}

func relocKindFor(machine elf.Machine, relType uint32) obj.RelocationKind {
	switch machine {
	case elf.EM_PPC:
		switch relType {
		case 1, 2, 4: // R_PPC_ADDR32, R_PPC_ADDR24, R_PPC_ADDR16_LO
			return obj.RelocAbsolute
		case 10, 26: // R_PPC_REL24, R_PPC_REL32
			return obj.RelocPCRelative
		}
	case elf.EM_X86_64, elf.EM_386:
		switch relType {
		case 2, 4, 9, 24: // *_PC32/PLT32-family
			return obj.RelocPCRelative
		}
	case elf.EM_AARCH64:
		switch relType {
		case 282, 283, 273, 274, 275: // JUMP26/CALL26, LD_PREL_LO19, ADR_PREL_LO21/ADR_PREL_PG_HI21 are PC-relative
			return obj.RelocPCRelative
		}
	}
	return obj.RelocArchSpecific
}
