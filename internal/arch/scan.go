package arch

import "github.com/objdiff/objdiff-go/internal/obj"

// ScanInstructions applies the architecture-neutral post-processing every
// backend needs to the output of an adapter's Disassemble: a branch
// destination the adapter already resolved to an absolute address is cleared
// when it falls outside [funcAddr, funcAddr+funcSize), so that a call to
// another function is never mistaken for a local branch arrow (§4.E
// "branch arrows only span rows within the same function"). Relocations are
// not consulted; only existing BranchDest values are checked.
//
// This mirrors the original's approach of keeping the per-instruction
// decoding rules inside each backend while doing the shared bookkeeping once,
// generically, over the interface.
func ScanInstructions(insts []obj.Instruction, funcAddr, funcSize uint64) []obj.Instruction {
	funcEnd := funcAddr + funcSize
	for i := range insts {
		in := &insts[i]
		if in.BranchDest == nil {
			continue
		}
		dest := *in.BranchDest
		if dest < funcAddr || dest >= funcEnd {
			in.BranchDest = nil
		}
	}
	return insts
}
