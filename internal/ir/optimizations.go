package ir

// Pass is one named transformation over a Function. Passes run to
// completion and report whether they changed anything, so a Pipeline can
// decide whether another round is worthwhile.
type Pass interface {
	Name() string
	Apply(fn *Function) bool
}

// Pipeline runs a sequence of passes over every function of a Program.
type Pipeline struct {
	passes []Pass
}

// NewPipeline builds a Pipeline from the given passes, applied in order.
func NewPipeline(passes ...Pass) *Pipeline {
	return &Pipeline{passes: passes}
}

// Add appends a pass to the end of the pipeline.
func (p *Pipeline) Add(pass Pass) {
	p.passes = append(p.passes, pass)
}

// Run applies every pass, in order, to every function in prog and reports
// whether any pass changed anything.
func (p *Pipeline) Run(prog *Program) bool {
	changed := false
	for i := range prog.Functions {
		for _, pass := range p.passes {
			if pass.Apply(&prog.Functions[i]) {
				changed = true
			}
		}
	}
	return changed
}

// FuncPass adapts a plain function into a Pass, for simple one-off passes
// that don't need their own named type.
type FuncPass struct {
	PassName string
	Fn       func(fn *Function) bool
}

func (f FuncPass) Name() string           { return f.PassName }
func (f FuncPass) Apply(fn *Function) bool { return f.Fn(fn) }
