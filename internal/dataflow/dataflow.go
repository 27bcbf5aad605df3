// Package dataflow implements a generic worklist dataflow-analysis engine
// over a cfg.CFG, instantiated here for defined-variables (forward) and
// live-variables (reverse) analyses.
package dataflow

import (
	"bril/internal/cfg"
)

// Fact is one dataflow fact: a set of variable names. Both analyses this
// package ships use the same "set of names" domain, so Fact is shared
// rather than parameterized.
type Fact map[string]bool

// NewFact builds a Fact from a variadic name list.
func NewFact(names ...string) Fact {
	f := make(Fact, len(names))
	for _, n := range names {
		f[n] = true
	}
	return f
}

// Union returns the set union of a and b, allocating a new Fact.
func Union(a, b Fact) Fact {
	out := make(Fact, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

// Equal reports whether a and b contain exactly the same names.
func Equal(a, b Fact) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// Analysis is the interface a concrete dataflow analysis implements: how
// to combine facts from multiple edges (Merge), how one block transforms
// an incoming fact into an outgoing one (Transfer), which direction the
// analysis runs, and what the initial fact at the boundary is.
type Analysis interface {
	// Merge combines facts flowing into a block from each of its
	// (forward: predecessor, reverse: successor) edges.
	Merge(facts []Fact) Fact
	// Transfer computes a block's outgoing fact from its incoming fact.
	Transfer(b cfg.Block, in Fact) Fact
	// IsReverse reports whether this analysis flows against CFG edges.
	IsReverse() bool
	// Init is the fact assumed at the analysis's entry boundary (forward:
	// the CFG entry block's In; reverse: every exit block's Out).
	Init() Fact
}

// Result holds the fixpoint In/Out fact computed for every block, indexed
// by block id.
type Result struct {
	In  []Fact
	Out []Fact
}

// Solve runs the generic worklist algorithm to a fixpoint: for a forward
// analysis In[b] = Merge(Out[p] for p in Pred[b]), Out[b] = Transfer(b,
// In[b]); for a reverse analysis the roles of Pred/Succ and In/Out swap.
// Blocks are (re)processed until no block's computed fact changes.
func Solve(g cfg.CFG, a Analysis) Result {
	n := len(g.Blocks)
	in := make([]Fact, n)
	out := make([]Fact, n)
	for i := range in {
		in[i] = Fact{}
		out[i] = Fact{}
	}
	reverse := a.IsReverse()

	// upstream(b) names the blocks whose fact must be merged to produce
	// b's boundary fact; downstream(b) names the blocks to re-enqueue
	// when b's own fact changes. Forward: upstream=Pred, downstream=Succ.
	// Reverse: upstream=Succ, downstream=Pred.
	upstream, downstream := g.Pred, g.Succ
	if reverse {
		upstream, downstream = g.Succ, g.Pred
	}
	// boundaryFact(b) reads the already-computed fact on the far side of
	// an upstream edge: forward reads Out[p], reverse reads In[s].
	boundaryFact := out
	computedFact := in
	if reverse {
		boundaryFact = in
		computedFact = out
	}

	worklist := make([]int, n)
	for i := range worklist {
		worklist[i] = i
	}

	for len(worklist) > 0 {
		b := worklist[0]
		worklist = worklist[1:]

		var facts []Fact
		if len(upstream[b]) == 0 {
			facts = []Fact{a.Init()}
		} else {
			for _, u := range upstream[b] {
				facts = append(facts, boundaryFact[u])
			}
		}
		merged := a.Merge(facts)
		computedFact[b] = merged
		transferred := a.Transfer(g.Blocks[b], merged)

		changed := !Equal(transferred, boundaryFact[b])
		boundaryFact[b] = transferred

		if changed {
			worklist = append(worklist, downstream[b]...)
		}
	}

	return Result{In: in, Out: out}
}
