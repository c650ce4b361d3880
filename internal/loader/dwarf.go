package loader

import (
	"debug/dwarf"
	"debug/elf"
)

// elfLineInfo walks the compilation units' line tables and builds an
// address -> source line map (§4.C.5, feeds obj.Object.LineInfo). Absent or
// malformed DWARF is not an error — line numbers are an optional display
// annotation, not required for diffing.
func elfLineInfo(f *elf.File) (map[uint64]uint32, error) {
	d, err := f.DWARF()
	if err != nil {
		return nil, err
	}
	lines := map[uint64]uint32{}
	r := d.Reader()
	for {
		entry, err := r.Next()
		if err != nil || entry == nil {
			break
		}
		if entry.Tag != dwarf.TagCompileUnit {
			continue
		}
		lr, err := d.LineReader(entry)
		if err != nil || lr == nil {
			continue
		}
		var le dwarf.LineEntry
		for lr.Next(&le) == nil {
			if !le.IsStmt {
				continue
			}
			lines[uint64(le.Address)] = uint32(le.Line)
		}
	}
	return lines, nil
}
