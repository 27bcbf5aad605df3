package cli

import (
	"runtime"
	"sync"

	"bril/internal/ir"
)

// runPerFunctionParallel computes render(fn) for every function in prog,
// bounded to GOMAXPROCS concurrent workers, and returns the results in
// the program's original function order regardless of completion order —
// the concurrency allowance of SPEC_FULL.md §5: blocks/cfg/df/dom are
// pure functions of one function's own instructions and share no mutable
// state, so nothing here needs locking beyond collecting into a
// pre-sized slice by index.
func runPerFunctionParallel(prog ir.Program, render func(ir.Function) string) []string {
	n := len(prog.Functions)
	out := make([]string, n)
	if n == 0 {
		return out
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int, n)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = render(prog.Functions[i])
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}
