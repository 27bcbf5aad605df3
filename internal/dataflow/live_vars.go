package dataflow

import "bril/internal/cfg"

// LiveVars is the reverse analysis: Out[b] is the set of variables that
// may be read along some path leaving b; In[b] = uses(b) ∪ (Out[b] \
// defs(b)), where uses(b) respects local kill order — a variable counts
// as used-before-redefined only up to the point in the block where it is
// next assigned.
type LiveVars struct{}

func (LiveVars) IsReverse() bool { return true }

func (LiveVars) Init() Fact { return Fact{} }

func (LiveVars) Merge(facts []Fact) Fact {
	out := Fact{}
	for _, f := range facts {
		out = Union(out, f)
	}
	return out
}

func (LiveVars) Transfer(b cfg.Block, out Fact) Fact {
	live := Union(out, Fact{})
	// A use only counts toward In[b] if nothing earlier in the block has
	// already redefined that name — walk forward tracking what's been
	// defined so far, and only record a use when its variable isn't yet
	// in that set.
	used := Fact{}
	defined := Fact{}
	for _, instr := range b.Instr {
		for _, a := range argsOf(instr) {
			if !defined[a] {
				used[a] = true
			}
		}
		if d, ok := destOf(instr); ok {
			defined[d] = true
		}
	}
	for v := range defined {
		delete(live, v)
	}
	return Union(live, used)
}
