package loader

import (
	"bytes"
	"debug/pe"
	"fmt"
	"os"

	"github.com/objdiff/objdiff-go/internal/objerr"
	"github.com/objdiff/objdiff-go/internal/obj"
)

// LoadPE reads path off disk and parses it as a COFF/PE relocatable object.
// Thin os.ReadFile wrapper around LoadPEBytes.
func LoadPE(path string) (*obj.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, objerr.Wrap(objerr.UnsupportedContainer, "open pe "+path, err)
	}
	o, err := LoadPEBytes(data)
	if err != nil {
		return nil, err
	}
	o.Name, o.Path = path, path
	return o, nil
}

// LoadPEBytes parses a COFF/PE relocatable object (.obj, as MSVC and MWCC's
// Windows targets emit) already resident in memory into the neutral model
// (§5 "the core performs no I/O"). Coverage is narrower than LoadELFBytes —
// COFF objects in decompilation projects are almost always x86 — but the
// section/symbol/relocation shape maps onto the same obj.Object.
func LoadPEBytes(data []byte) (*obj.Object, error) {
	f, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, objerr.Wrap(objerr.UnsupportedContainer, "parse pe", err)
	}
	defer f.Close()

	archTag, err := peArch(f)
	if err != nil {
		return nil, err
	}

	o := &obj.Object{
		Arch:     archTag,
		Endian:   obj.LittleEndian, // COFF/PE targets in this ecosystem are all little-endian
		LineInfo: map[uint64]uint32{},
	}

	secIndex := make(map[int]int, len(f.Sections))
	for i, s := range f.Sections {
		kind := peSectionKind(s)
		if kind == obj.SectionUnknown {
			continue
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
			Address: uint64(s.VirtualAddress),
			Size:    uint64(s.Size),
			Data:    data,
			Index:   i,
		})
	}

	for _, s := range f.Symbols {
		if s.SectionNumber <= 0 {
			continue // absolute/undefined/debug symbols
		}
		si, ok := secIndex[int(s.SectionNumber)-1]
		if !ok {
			continue
		}
		symIdx := len(o.Symbols)
		address := o.Sections[si].Address + uint64(s.Value)
		o.Sections[si].Symbols = append(o.Sections[si].Symbols, symIdx)
		o.Symbols = append(o.Symbols, obj.Symbol{
			Name:           s.Name,
			Address:        address,
			SectionAddress: uint64(s.Value),
			Kind:           peSymbolKind(s),
			Section:        si,
			Flags:          peSymbolFlags(s),
		})
	}
	inferZeroSizes(o)

	for i, s := range f.Sections {
		si, ok := secIndex[i]
		if !ok {
			continue
		}
		for _, r := range s.Relocs {
			o.Sections[si].Relocations = append(o.Sections[si].Relocations, obj.Relocation{
				Offset:       uint64(r.VirtualAddress),
				Kind:         obj.RelocArchSpecific,
				RawType:      uint32(r.Type),
				TargetSymbol: resolvePESymbol(o, f, r.SymbolTableIndex),
			})
		}
	}

	if err := o.Validate(); err != nil {
		return nil, objerr.Wrap(objerr.MalformedObject, "validate object", err)
	}
	return o, nil
}

func peArch(f *pe.File) (string, error) {
	switch f.Machine {
	case pe.IMAGE_FILE_MACHINE_I386, pe.IMAGE_FILE_MACHINE_AMD64:
		return "x86", nil
	case pe.IMAGE_FILE_MACHINE_ARM, pe.IMAGE_FILE_MACHINE_ARMNT:
		return "arm", nil
	case pe.IMAGE_FILE_MACHINE_ARM64:
		return "arm64", nil
	default:
		return "", objerr.New(objerr.UnsupportedArchitecture, fmt.Sprintf("pe machine %#x", f.Machine))
	}
}

func peSectionKind(s *pe.Section) obj.SectionKind {
	switch {
	case s.Characteristics&0x00000080 != 0: // IMAGE_SCN_CNT_UNINITIALIZED_DATA
		return obj.SectionBss
	case s.Characteristics&0x20000000 != 0: // IMAGE_SCN_MEM_EXECUTE
		return obj.SectionText
	case s.Characteristics&0x00000040 != 0: // IMAGE_SCN_CNT_INITIALIZED_DATA
		return obj.SectionData
	default:
		return obj.SectionUnknown
	}
}

func peSymbolKind(s *pe.Symbol) obj.SymbolKind {
	if s.Type&0xf0 == 0x20 {
		return obj.SymbolFunction
	}
	return obj.SymbolObject
}

func peSymbolFlags(s *pe.Symbol) obj.SymbolFlag {
	if s.StorageClass == 2 { // IMAGE_SYM_CLASS_EXTERNAL
		return obj.FlagGlobal
	}
	return obj.FlagLocal
}

func resolvePESymbol(o *obj.Object, f *pe.File, coffIndex uint32) int {
	if int(coffIndex) >= len(f.Symbols) {
		return -1
	}
	name := f.Symbols[coffIndex].Name
	for i := range o.Symbols {
		if o.Symbols[i].Name == name {
			return i
		}
	}
	return -1
}
