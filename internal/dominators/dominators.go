// Package dominators computes dominator sets, immediate dominators, the
// dominator tree, and dominance frontiers over a cfg.CFG.
package dominators

import (
	"sort"

	"bril/internal/cfg"
)

// IDSet is a set of block ids.
type IDSet map[int]bool

func newIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func intersect(sets ...IDSet) IDSet {
	if len(sets) == 0 {
		return IDSet{}
	}
	out := IDSet{}
	for id := range sets[0] {
		in := true
		for _, s := range sets[1:] {
			if !s[id] {
				in = false
				break
			}
		}
		if in {
			out[id] = true
		}
	}
	return out
}

func postOrder(g cfg.CFG) []int {
	visited := make([]bool, len(g.Blocks))
	var order []int
	var rec func(int)
	rec = func(b int) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range g.Succ[b] {
			rec(s)
		}
		order = append(order, b)
	}
	rec(g.Entry)
	return order
}

// ReversePostOrder returns block ids in reverse post-order starting from
// the CFG's entry, the traversal order the dominator fixpoint iterates in
// for fast convergence.
func ReversePostOrder(g cfg.CFG) []int {
	po := postOrder(g)
	rpo := make([]int, len(po))
	for i, id := range po {
		rpo[len(po)-1-i] = id
	}
	return rpo
}

// FindDominators computes, for every block, the set of blocks that
// dominate it (including itself), via iterative fixpoint over reverse
// post-order: dom(entry) = {entry}; dom(b) = {b} ∪ ⋂ dom(p) for p in
// Pred(b), repeated until no set changes.
func FindDominators(g cfg.CFG) []IDSet {
	n := len(g.Blocks)
	all := make(IDSet, n)
	for i := 0; i < n; i++ {
		all[i] = true
	}
	dom := make([]IDSet, n)
	for i := range dom {
		dom[i] = all
	}
	dom[g.Entry] = newIDSet(g.Entry)

	rpo := ReversePostOrder(g)
	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == g.Entry {
				continue
			}
			if len(g.Pred[b]) == 0 {
				continue
			}
			preds := make([]IDSet, 0, len(g.Pred[b]))
			for _, p := range g.Pred[b] {
				preds = append(preds, dom[p])
			}
			newDom := intersect(preds...)
			newDom[b] = true
			if !idSetEqual(newDom, dom[b]) {
				dom[b] = newDom
				changed = true
			}
		}
	}
	return dom
}

func idSetEqual(a, b IDSet) bool {
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

// StrictDominators returns dom(b) \ {b} for every block.
func StrictDominators(dom []IDSet) []IDSet {
	out := make([]IDSet, len(dom))
	for b, d := range dom {
		sd := make(IDSet, len(d))
		for id := range d {
			if id != b {
				sd[id] = true
			}
		}
		out[b] = sd
	}
	return out
}

// ImmediateDominators returns, for every non-entry block, the unique
// strict dominator that itself dominates no other strict dominator of
// that block (idom(entry) is -1, it has none).
func ImmediateDominators(g cfg.CFG, dom []IDSet) []int {
	sdom := StrictDominators(dom)
	idom := make([]int, len(dom))
	for b := range idom {
		idom[b] = -1
	}
	for b, sd := range sdom {
		if len(sd) == 0 {
			continue
		}
		for cand := range sd {
			isImmediate := true
			for other := range sd {
				if other != cand && sdom[other][cand] {
					isImmediate = false
					break
				}
			}
			if isImmediate {
				idom[b] = cand
				break
			}
		}
	}
	return idom
}

// DomNode is one node of the dominator tree.
type DomNode struct {
	ID       int
	Parent   int // -1 for the root
	Children []int
}

// DomTree is the dominator tree as a flat arena of DomNode, indexed by
// block id, matching the arena-of-nodes shape used by the original
// Rust implementation (avoids pointer cycles, plays well with Go's GC).
type DomTree struct {
	Nodes []DomNode
	Root  int
}

// BuildDomTree constructs the dominator tree from immediate dominators.
// Children are sorted ascending by block id — later passes (SSA renaming)
// rely on this order for a deterministic DFS.
func BuildDomTree(g cfg.CFG, idom []int) DomTree {
	nodes := make([]DomNode, len(g.Blocks))
	for i := range nodes {
		nodes[i] = DomNode{ID: i, Parent: -1}
	}
	for b, p := range idom {
		if p == -1 {
			continue
		}
		nodes[b].Parent = p
		nodes[p].Children = append(nodes[p].Children, b)
	}
	for i := range nodes {
		sort.Ints(nodes[i].Children)
	}
	return DomTree{Nodes: nodes, Root: g.Entry}
}

// DominanceFrontier computes DF(b) for every block: a ∈ DF(b) iff b does
// not strictly dominate a, but b dominates some predecessor of a.
func DominanceFrontier(g cfg.CFG, dom []IDSet) []IDSet {
	sdom := StrictDominators(dom)
	df := make([]IDSet, len(g.Blocks))
	for i := range df {
		df[i] = IDSet{}
	}
	for a := range g.Blocks {
		for _, p := range g.Pred[a] {
			// Walk every block b that dominates p; if b does not
			// strictly dominate a, a is in DF(b).
			for b := range dom[p] {
				if sdom[a][b] {
					continue
				}
				if df[b] == nil {
					df[b] = IDSet{}
				}
				df[b][a] = true
			}
		}
	}
	return df
}
