// Package arch defines the architecture adapter contract (§4.B): the
// capability set every instruction-set backend implements. Adapters are
// small value types selected by tag at load time — there is no inheritance
// hierarchy, only this interface — so a new ISA is added by implementing
// the set, never by subclassing (spec §9 "Architecture adapters as
// capability sets").
package arch

import (
	"github.com/objdiff/objdiff-go/internal/config"
	"github.com/objdiff/objdiff-go/internal/obj"
)

// FlowValue is one register's known-value annotation produced by optional
// data-flow analysis (§4.B data_flow).
type FlowValue struct {
	Register string
	Value    string // human-readable, e.g. "0x1000" or "r3+4"
}

// FlowResult is the per-instruction data-flow annotation set for one
// function, indexed in parallel with the instruction slice passed in.
type FlowResult struct {
	PerInstruction [][]FlowValue
}

// Adapter is the capability set an architecture backend implements (§4.B).
// Implementations must be side-effect free and safe for concurrent use
// across goroutines sharing the same *config.Config (§5).
type Adapter interface {
	// Name is the architecture tag used in obj.Object.Arch and config lookups.
	Name() string

	// Disassemble decodes the raw bytes of one function/section range into a
	// sequence of neutral Instructions. relocs contains only the
	// relocations whose offsets fall within [0, len(code)), already sorted
	// by offset. endian is the source object's byte order (obj.Object.Endian);
	// adapters whose ISA supports both orderings (MIPS, SuperH) must honor
	// it rather than assume one. Implementations must be total: undecodable
	// bytes become an Instruction with obj.OpcodeInvalid and a single
	// ArgOpaque argument (§4.E failure semantics), never an error return.
	Disassemble(code []byte, address uint64, endian obj.Endianness, relocs []obj.Relocation, cfg *config.Config) []obj.Instruction

	// DisplayRelocName returns the human-readable name for a raw relocation
	// type number, for UI display (§4.B display_reloc_name).
	DisplayRelocName(rawType uint32) string

	// ImplicitAddend extracts an addend encoded in instruction bytes rather
	// than the relocation record itself, for ISAs that do this (§4.B
	// implicit_addend). endian is the source object's byte order, same as
	// Disassemble's. Returns (0, false) when the architecture always
	// carries an explicit addend.
	ImplicitAddend(code []byte, offset uint64, rawType uint32, endian obj.Endianness) (int64, bool)

	// DataFlow performs optional per-register value-flow analysis over an
	// already-disassembled function. Returns a zero-value FlowResult when
	// disabled or unsupported by this adapter (§4.B, config.AnalyzeDataFlow
	// gates whether callers invoke this at all).
	DataFlow(insts []obj.Instruction, cfg *config.Config) FlowResult

	// GuessUnitSize returns the loader's default scalar width for
	// data-section heuristics (pool constant sizing, alignment guesses).
	GuessUnitSize() int

	// DefaultSectionAlign returns the default section alignment this ISA's
	// linker convention assumes, used when the container doesn't specify one.
	DefaultSectionAlign() uint64
}

// registry maps architecture tags to constructors. Adapters register
// themselves from an init() in their own package; the loader looks them up
// by tag detected from the container's machine field (§4.B architecture
// auto-detection). This indirection keeps unused adapters excludable at
// compile time (§9 "Feature gating") — a build that never imports, say,
// arch/superh never links its decoder.
var registry = map[string]func() Adapter{}

// Register adds a constructor for the named architecture tag. Called from
// each adapter package's init().
func Register(name string, ctor func() Adapter) {
	registry[name] = ctor
}

// New constructs the adapter for the named architecture tag, or nil if none
// is registered (compiled in).
func New(name string) Adapter {
	ctor, ok := registry[name]
	if !ok {
		return nil
	}
	return ctor()
}

// Available lists the architecture tags with a registered adapter.
func Available() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
