package loader

import (
	"bytes"
	"os"
	"sort"

	"github.com/objdiff/objdiff-go/internal/objerr"
	"github.com/objdiff/objdiff-go/internal/obj"
)

// Load reads path off disk and auto-detects the container format from its
// magic bytes (§4.C.1 "container auto-detection"). It is a thin
// os.ReadFile wrapper around LoadBytes; every actual parsing decision below
// this point runs on the in-memory buffer, so cmd/objdiff is the only
// collaborator that needs to touch the filesystem at all — a GUI or wasm
// caller that already has the object's bytes calls LoadBytes directly.
func Load(path string) (*obj.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, objerr.Wrap(objerr.UnsupportedContainer, "open "+path, err)
	}
	o, err := LoadBytes(data)
	if err != nil {
		return nil, err
	}
	o.Name, o.Path = path, path
	return o, nil
}

// LoadBytes auto-detects the container format from its magic bytes and
// parses an already in-memory buffer into the neutral model (§4.C.1;
// §5 "the core performs no I/O"; §6 "byte buffers for each object").
func LoadBytes(data []byte) (*obj.Object, error) {
	if len(data) < 4 {
		return nil, objerr.New(objerr.MalformedObject, "container too short to identify")
	}
	switch {
	case bytes.Equal(data[:4], []byte{0x7f, 'E', 'L', 'F'}):
		return LoadELFBytes(data)
	case data[0] == 'M' && data[1] == 'Z':
		return nil, objerr.New(objerr.UnsupportedContainer, "PE executable image, not a COFF object")
	default:
		// COFF .obj files have no fixed magic; the leading little-endian
		// machine field is checked against a short list of known machine
		// types (looksLikeCOFFBytes). The section count is not examined.
		if looksLikeCOFFBytes(data) {
			return LoadPEBytes(data)
		}
		return nil, objerr.New(objerr.UnsupportedContainer, "unrecognized container")
	}
}

func looksLikeCOFFBytes(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	machine := uint16(data[0]) | uint16(data[1])<<8
	switch machine {
	case 0x14c, 0x8664, 0x1c0, 0xaa64: // I386, AMD64, ARM, ARM64
		return true
	default:
		return false
	}
}

func looksLikeCOFF(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return looksLikeCOFFBytes(data), nil
}

// Combine merges every section of the given kind into a single contiguous
// section, the loader-side half of the "combine text/data sections" feature
// (config.CombineDataSections / CombineTextSections, §6): projects that
// split translation units across many small linker sections diff far more
// legibly when those sections are addressed as one contiguous range.
// Symbol.Address becomes the merged, absolute address; Symbol.SectionAddress
// keeps the original pre-combine offset so callers can still report which
// original section a symbol came from.
func Combine(o *obj.Object, kind obj.SectionKind) {
	oldSections := o.Sections

	var toMerge []int
	for i, s := range oldSections {
		if s.Kind == kind {
			toMerge = append(toMerge, i)
		}
	}
	if len(toMerge) < 2 {
		return
	}
	sort.Slice(toMerge, func(a, b int) bool { return oldSections[toMerge[a]].Address < oldSections[toMerge[b]].Address })

	removed := make(map[int]bool, len(toMerge))
	for _, si := range toMerge {
		removed[si] = true
	}

	merged := obj.Section{Kind: kind, Name: kind.String(), Index: oldSections[toMerge[0]].Index}
	oldToMergedOffset := make(map[int]uint64, len(toMerge))
	cursor := uint64(0)
	for _, si := range toMerge {
		oldToMergedOffset[si] = cursor
		merged.Data = append(merged.Data, oldSections[si].Data...)
		merged.Size += oldSections[si].Size
		if kind == obj.SectionBss {
			cursor += oldSections[si].Size
		} else {
			cursor = uint64(len(merged.Data))
		}
	}
	for _, si := range toMerge {
		base := oldToMergedOffset[si]
		for _, r := range oldSections[si].Relocations {
			r.Offset += base
			merged.Relocations = append(merged.Relocations, r)
		}
	}

	// Every surviving section shifts index as removed ones drop out, not
	// just the merged section, so the whole old-to-new map is built up front
	// rather than special-casing only the sections being merged away.
	oldToNewSection := make(map[int]int, len(oldSections))
	var kept []obj.Section
	for i, s := range oldSections {
		if removed[i] {
			continue
		}
		oldToNewSection[i] = len(kept)
		kept = append(kept, s)
	}
	mergedIndex := len(kept)
	kept = append(kept, merged)
	o.Sections = kept

	for i := range o.Symbols {
		sym := &o.Symbols[i]
		if sym.Section < 0 {
			continue
		}
		if removed[sym.Section] {
			base := oldToMergedOffset[sym.Section]
			offsetInOld := sym.Address - oldSections[sym.Section].Address
			sym.Address = base + offsetInOld
			sym.SectionAddress = offsetInOld
			sym.Section = mergedIndex
			o.Sections[mergedIndex].Symbols = append(o.Sections[mergedIndex].Symbols, i)
			continue
		}
		sym.Section = oldToNewSection[sym.Section]
	}
}
