package dominators

import "bril/internal/cfg"

// Validate checks the dominator sets computed by FindDominators against
// the textbook definition by brute-force path enumeration: b dominates a
// iff every path from the entry to a passes through b. Used by tests and
// by `bril-cli dom --validate` as an independent cross-check of the
// fixpoint result.
func Validate(g cfg.CFG, dom []IDSet) bool {
	for a := range g.Blocks {
		paths := allPaths(g, g.Entry, a, make([]bool, len(g.Blocks)))
		for b := range g.Blocks {
			want := dom[a][b]
			got := allPathsContain(paths, b)
			if want != got {
				return false
			}
		}
	}
	return true
}

func allPaths(g cfg.CFG, from, to int, visiting []bool) [][]int {
	if from == to {
		return [][]int{{to}}
	}
	if visiting[from] {
		return nil
	}
	visiting[from] = true
	defer func() { visiting[from] = false }()

	var out [][]int
	for _, s := range g.Succ[from] {
		for _, p := range allPaths(g, s, to, visiting) {
			out = append(out, append([]int{from}, p...))
		}
	}
	return out
}

func allPathsContain(paths [][]int, b int) bool {
	if len(paths) == 0 {
		return true // vacuously true: b dominates an unreachable block
	}
	for _, p := range paths {
		found := false
		for _, id := range p {
			if id == b {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
