package dataflow

import (
	"bril/internal/cfg"
	"bril/internal/ir"
)

// DefinedVars is the forward analysis: In[b] is the set of variables
// defined along at least one path reaching b; Out[b] = In[b] ∪ defs(b).
// Grounded on the DefinedVars struct in the dataflow reference material:
// a forward, union-merge analysis whose transfer function just adds a
// block's own definitions to what flowed in.
type DefinedVars struct{}

func (DefinedVars) IsReverse() bool { return false }

func (DefinedVars) Init() Fact { return Fact{} }

func (DefinedVars) Merge(facts []Fact) Fact {
	out := Fact{}
	for _, f := range facts {
		out = Union(out, f)
	}
	return out
}

func (DefinedVars) Transfer(b cfg.Block, in Fact) Fact {
	out := Union(in, Fact{})
	for _, instr := range b.Instr {
		if dest, ok := destOf(instr); ok {
			out[dest] = true
		}
	}
	return out
}

// destOf returns the variable an instruction defines, if any. Only
// Constant and Value instructions have a dest; Effect instructions never
// define a variable.
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

// argsOf returns the variable names an instruction reads.
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
