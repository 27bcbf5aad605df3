package interp

import (
	"bril/internal/cfg"
	"bril/internal/ir"
)

// numInstr mirrors one instruction's variable references as dense
// integer slots instead of names: dest is -1 when the instruction has no
// destination.
type numInstr struct {
	dest int
	args []int
}

// numFunc is a function together with its control-flow graph and a dense
// numbering of every variable name it references, so the interpreter's
// hot loop indexes a flat slice instead of hashing strings.
type numFunc struct {
	name      string
	g         cfg.CFG
	numVars   int
	paramNums []int
	instrs    [][]numInstr // parallel to g.Blocks[i].Instr
	retType   ir.Type
}

// numify builds the dense numbering for fn: parameters are numbered
// first (in declaration order), then every other variable the first time
// it is seen while scanning blocks in CFG order.
func numify(fn ir.Function) numFunc {
	g := cfg.Build(fn)

	nameToNum := map[string]int{}
	next := 0
	fresh := func(name string) int {
		if n, ok := nameToNum[name]; ok {
			return n
		}
		n := next
		nameToNum[name] = n
		next++
		return n
	}

	paramNums := make([]int, len(fn.Params))
	for i, p := range fn.Params {
		paramNums[i] = fresh(p.Name)
	}

	instrs := make([][]numInstr, len(g.Blocks))
	for bi, b := range g.Blocks {
		row := make([]numInstr, len(b.Instr))
		for ii, instr := range b.Instr {
			switch v := instr.(type) {
			case ir.ConstantInstr:
				row[ii] = numInstr{dest: fresh(v.Dest), args: nil}
			case ir.ValueInstr:
				args := make([]int, len(v.Args))
				for k, a := range v.Args {
					args[k] = fresh(a)
				}
				d := -1
				if v.Dest != "" {
					d = fresh(v.Dest)
				}
				row[ii] = numInstr{dest: d, args: args}
			case ir.EffectInstr:
				args := make([]int, len(v.Args))
				for k, a := range v.Args {
					args[k] = fresh(a)
				}
				row[ii] = numInstr{dest: -1, args: args}
			}
		}
		instrs[bi] = row
	}

	return numFunc{
		name:      fn.Name,
		g:         g,
		numVars:   next,
		paramNums: paramNums,
		instrs:    instrs,
		retType:   fn.ReturnType,
	}
}
