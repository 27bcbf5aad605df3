// Package ssa converts a function to and from static single assignment
// form: phi placement via the dominance frontier, dominator-tree-ordered
// renaming with per-variable stacks, and the reverse transform that
// materializes phi arguments as predecessor-tail copies.
package ssa

import (
	"sort"

	"bril/internal/cfg"
	"bril/internal/dominators"
	"bril/internal/ir"
	"bril/internal/tdce"
)

// Undefined is the sentinel phi argument used when a predecessor path
// cannot reach any definition of the variable (e.g. the synthetic entry
// edge, or genuinely unreachable code).
const Undefined = "__undefined"

type phi struct {
	dest   string
	orig   string // original (pre-rename) variable name
	typ    ir.Type
	args   []string
	labels []string
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

func typeOf(instr ir.Instruction) ir.Type {
	switch v := instr.(type) {
	case ir.ConstantInstr:
		return v.Type
	case ir.ValueInstr:
		return v.Type
	default:
		return nil
	}
}

// ToSSA rewrites fn into SSA form.
func ToSSA(fn ir.Function) ir.Function {
	g := cfg.Build(fn)
	dom := dominators.FindDominators(g)
	idom := dominators.ImmediateDominators(g, dom)
	tree := dominators.BuildDomTree(g, idom)
	df := dominators.DominanceFrontier(g, dom)

	phis := placePhis(g, df)
	rename(g, tree, phis, fn.Params)

	for i, b := range g.Blocks {
		var code []ir.Instruction
		for _, p := range phis[b.ID] {
			code = append(code, ir.ValueInstr{Dest: p.dest, Type: p.typ, Op: ir.OpPhi, Args: p.args, Labels: p.labels})
		}
		code = append(code, b.Instr...)
		g.Blocks[i].Instr = code
	}

	fn.Code = cfg.Reassemble(g.Blocks)
	return tdce.Run(fn)
}

// placePhis computes, for every block, the list of phi nodes that must be
// inserted there, by iterating: for every variable's current def blocks,
// insert a phi in every block in their dominance frontier that doesn't
// already have one, and treat that insertion as a new def site, repeating
// until no more insertions occur.
func placePhis(g cfg.CFG, df []dominators.IDSet) map[int][]phi {
	defBlocks := map[string]map[int]bool{}
	varType := map[string]ir.Type{}
	for _, b := range g.Blocks {
		for _, instr := range b.Instr {
			if dest, ok := destOf(instr); ok {
				if defBlocks[dest] == nil {
					defBlocks[dest] = map[int]bool{}
				}
				defBlocks[dest][b.ID] = true
				if t := typeOf(instr); t != nil {
					varType[dest] = t
				}
			}
		}
	}

	hasPhi := map[int]map[string]bool{}
	result := map[int][]phi{}

	var names []string
	for name := range defBlocks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		worklist := make([]int, 0, len(defBlocks[name]))
		for b := range defBlocks[name] {
			worklist = append(worklist, b)
		}
		sort.Ints(worklist)
		for len(worklist) > 0 {
			d := worklist[0]
			worklist = worklist[1:]
			var frontier []int
			for b := range df[d] {
				frontier = append(frontier, b)
			}
			sort.Ints(frontier)
			for _, b := range frontier {
				if hasPhi[b] == nil {
					hasPhi[b] = map[string]bool{}
				}
				if hasPhi[b][name] {
					continue
				}
				hasPhi[b][name] = true
				result[b] = append(result[b], phi{dest: name, orig: name, typ: varType[name]})
				if !defBlocks[name][b] {
					defBlocks[name][b] = true
					worklist = append(worklist, b)
				}
			}
		}
	}
	return result
}

type stacks map[string][]string

func (s stacks) clone() stacks {
	out := make(stacks, len(s))
	for k, v := range s {
		cp := make([]string, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

func (s stacks) top(name string) string {
	st := s[name]
	if len(st) == 0 {
		return Undefined
	}
	return st[len(st)-1]
}

func (s stacks) push(name, val string) {
	s[name] = append(s[name], val)
}

var renameCounter int

func freshName(orig string) string {
	renameCounter++
	return orig + ".ssa" + itoa(renameCounter)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// rename performs the dominator-tree DFS rename pass: params are
// pre-defined in the entry block, every other variable starts with an
// empty stack; at each block, phi dests get a fresh name pushed, every
// instruction's args are rewritten to the top of their stack and its dest
// (if any) gets a fresh name pushed; phi arguments in CFG successors are
// filled in from the current top of stack for each variable; the whole
// stacks map is snapshotted before recursing into dominator-tree children
// and restored after, so siblings don't see each other's definitions.
func rename(g cfg.CFG, tree dominators.DomTree, phis map[int][]phi, params []ir.Param) {
	st := stacks{}
	for _, p := range params {
		st.push(p.Name, p.Name)
	}

	var visit func(b int)
	visit = func(b int) {
		backup := st.clone()

		for i := range phis[b] {
			fresh := freshName(phis[b][i].orig)
			phis[b][i].dest = fresh
			st.push(phis[b][i].orig, fresh)
		}

		block := &g.Blocks[b]
		for i, instr := range block.Instr {
			block.Instr[i] = rewriteInstr(instr, st)
		}

		for _, s := range g.Succ[b] {
			for i := range phis[s] {
				p := &phis[s][i]
				p.args = append(p.args, st.top(p.orig))
				p.labels = append(p.labels, g.Blocks[b].Name)
			}
		}

		for _, child := range tree.Nodes[b].Children {
			visit(child)
		}

		st = backup
	}
	visit(g.Entry)
}

func rewriteInstr(instr ir.Instruction, st stacks) ir.Instruction {
	switch v := instr.(type) {
	case ir.ConstantInstr:
		v.Dest = pushFresh(st, v.Dest)
		return v
	case ir.ValueInstr:
		newArgs := make([]string, len(v.Args))
		for i, a := range v.Args {
			newArgs[i] = st.top(a)
		}
		v.Args = newArgs
		if v.Dest != "" {
			v.Dest = pushFresh(st, v.Dest)
		}
		return v
	case ir.EffectInstr:
		newArgs := make([]string, len(v.Args))
		for i, a := range v.Args {
			newArgs[i] = st.top(a)
		}
		v.Args = newArgs
		return v
	default:
		return instr
	}
}

func pushFresh(st stacks, orig string) string {
	fresh := freshName(orig)
	st.push(orig, fresh)
	return fresh
}
