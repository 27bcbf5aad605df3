package ssa

import (
	"bril/internal/cfg"
	"bril/internal/ir"
	"bril/internal/tdce"
)

// FromSSA removes phi nodes: for every phi in every block, a
// corresponding `id` copy is inserted at the tail of each predecessor
// block (immediately before its terminator), binding the phi's dest to
// whatever value flows in along that edge; the phi instructions are then
// stripped and the function swept with TDCE.
func FromSSA(fn ir.Function) ir.Function {
	blocks := cfg.PlainBlocks(fn)
	byName := make(map[string]int, len(blocks))
	for _, b := range blocks {
		byName[b.Name] = b.ID
	}

	for _, b := range blocks {
		for _, instr := range b.Instr {
			v, ok := instr.(ir.ValueInstr)
			if !ok || v.Op != ir.OpPhi {
				continue
			}
			for i, label := range v.Labels {
				predID, ok := byName[label]
				if !ok {
					continue
				}
				insertCopyBeforeTerminator(&blocks[predID], v.Dest, v.Args[i], v.Type)
			}
		}
	}

	for i, b := range blocks {
		var kept []ir.Instruction
		for _, instr := range b.Instr {
			if v, ok := instr.(ir.ValueInstr); ok && v.Op == ir.OpPhi {
				continue
			}
			kept = append(kept, instr)
		}
		blocks[i].Instr = kept
	}

	fn.Code = cfg.Reassemble(blocks)
	return tdce.Run(fn)
}

func insertCopyBeforeTerminator(b *cfg.Block, dest, src string, typ ir.Type) {
	copyInstr := ir.ValueInstr{Dest: dest, Type: typ, Op: ir.OpID, Args: []string{src}}
	n := len(b.Instr)
	if n == 0 {
		b.Instr = append(b.Instr, copyInstr)
		return
	}
	if _, ok := b.Instr[n-1].(ir.EffectInstr); ok {
		b.Instr = append(b.Instr[:n-1], append([]ir.Instruction{copyInstr}, b.Instr[n-1])...)
		return
	}
	b.Instr = append(b.Instr, copyInstr)
}
