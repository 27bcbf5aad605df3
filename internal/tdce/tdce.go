// Package tdce implements trivial dead code elimination: a global pass
// that drops instructions whose result is never referenced anywhere in
// the function, and a local pass that drops a definition immediately
// superseded by another definition of the same name before any
// intervening use, both iterated to a fixpoint.
package tdce

import (
	"bril/internal/cfg"
	"bril/internal/ir"
)

// Run applies the global and local passes, alternating, until neither
// changes the function.
func Run(fn ir.Function) ir.Function {
	for {
		var g, l bool
		fn, g = globalPass(fn)
		fn, l = localPass(fn)
		if !g && !l {
			return fn
		}
	}
}

func destOf(instr ir.Instruction) (string, bool) {
	switch v := instr.(type) {
	case ir.ConstantInstr:
		return v.Dest, true
	case ir.ValueInstr:
		return v.Dest, true
	default:
		return "", false
	}
}

func argsOf(instr ir.Instruction) []string {
	switch v := instr.(type) {
	case ir.ValueInstr:
		return v.Args
	case ir.EffectInstr:
		return v.Args
	default:
		return nil
	}
}

// globalPass drops any Constant/Value instruction whose dest is never
// used anywhere in the function, keeping all Effect instructions and
// Labels unconditionally. Reports whether anything was removed.
func globalPass(fn ir.Function) (ir.Function, bool) {
	used := map[string]bool{}
	for _, item := range fn.Code {
		instr, ok := item.(ir.Instruction)
		if !ok {
			continue
		}
		for _, a := range argsOf(instr) {
			used[a] = true
		}
	}

	changed := false
	var out []ir.CodeItem
	for _, item := range fn.Code {
		instr, ok := item.(ir.Instruction)
		if !ok {
			out = append(out, item)
			continue
		}
		if ir.HasSideEffect(instr) {
			out = append(out, item)
			continue
		}
		dest, hasDest := destOf(instr)
		if hasDest && !used[dest] {
			changed = true
			continue
		}
		out = append(out, item)
	}
	fn.Code = out
	return fn, changed
}

// localPass drops a definition that is immediately superseded, within
// the same block, by another definition of the same name with no
// intervening use of the first — tracked via a per-block "last
// definition index" map, matching the original per-block kill scan.
func localPass(fn ir.Function) (ir.Function, bool) {
	blocks := cfg.PlainBlocks(fn)
	anyChanged := false
	for bi, b := range blocks {
		lastDef := map[string]int{}
		toRemove := map[int]bool{}
		for i, instr := range b.Instr {
			for _, a := range argsOf(instr) {
				delete(lastDef, a)
			}
			if dest, ok := destOf(instr); ok {
				if prev, exists := lastDef[dest]; exists {
					toRemove[prev] = true
				}
				lastDef[dest] = i
			}
		}
		if len(toRemove) == 0 {
			continue
		}
		anyChanged = true
		var kept []ir.Instruction
		for i, instr := range b.Instr {
			if !toRemove[i] {
				kept = append(kept, instr)
			}
		}
		blocks[bi].Instr = kept
	}
	if !anyChanged {
		return fn, false
	}
	fn.Code = cfg.Reassemble(blocks)
	return fn, true
}
