// Package jit implements the skeleton tracing-JIT driver: it rewrites a
// recorded linear trace into a guarded, on-trace fragment spliced into
// the IR's main function. It does not execute traces itself — the
// speculate/commit/guard ops it emits are recognized but not implemented
// by internal/interp; a speculating interpreter is out of scope.
package jit

import (
	"encoding/json"
	"fmt"
	"os"

	"bril/internal/ir"
)

// TraceItem is one recorded trace element: the instruction executed, and
// the source line (an index into main's flat Code list) it came from.
type TraceItem struct {
	Instr   ir.Instruction
	LineNum int64
}

type rawTraceItem struct {
	Instr   json.RawMessage `json:"instr"`
	LineNum int64           `json:"line_num"`
}

// ReadTraceFile reads and decodes the JSON array of trace elements at
// path (normally /tmp/trace.txt, per spec.md §6's "Persisted trace"
// interface).
func ReadTraceFile(path string) ([]TraceItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jit: read trace file: %w", err)
	}
	return DecodeTrace(data)
}

// DecodeTrace parses the JSON array of {instr, line_num} trace elements.
func DecodeTrace(data []byte) ([]TraceItem, error) {
	var raw []rawTraceItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("jit: decode trace: %w", err)
	}
	trace := make([]TraceItem, 0, len(raw))
	for _, r := range raw {
		instr, err := ir.DecodeInstruction(r.Instr)
		if err != nil {
			return nil, fmt.Errorf("jit: decode trace instruction: %w", err)
		}
		trace = append(trace, TraceItem{Instr: instr, LineNum: r.LineNum})
	}
	return trace, nil
}

// sideEffectOp reports whether instr's opcode is one of the ops the
// trace recorder must stop at (spec.md §4.9 step 1): print, call,
// store, alloc, free.
func sideEffectOp(instr ir.Instruction) bool {
	switch v := instr.(type) {
	case ir.ValueInstr:
		return ir.IsSideEffecting(string(v.Op))
	case ir.EffectInstr:
		return ir.IsSideEffecting(string(v.Op))
	default:
		return false
	}
}

// CutoffTrace trims trace to end at its first side-effecting
// instruction, inclusive; a trace with no side-effecting instruction is
// returned unchanged.
func CutoffTrace(trace []TraceItem) []TraceItem {
	out := make([]TraceItem, 0, len(trace))
	for _, t := range trace {
		out = append(out, t)
		if sideEffectOp(t.Instr) {
			break
		}
	}
	return out
}

// InsertTraceEndLabel inserts a fresh `traceend` label into main's code
// at the position of the trace's last recorded line, then drops that
// trailing trace element — the cut instruction keeps executing exactly
// once, naturally, by falling through to the label rather than being
// replayed inside the straight-line trace fragment. Returns the
// (possibly shortened) trace; prog.Functions is mutated in place.
func InsertTraceEndLabel(prog *ir.Program, trace []TraceItem) ([]TraceItem, error) {
	if len(trace) == 0 {
		return trace, nil
	}
	mainIdx := -1
	for i, fn := range prog.Functions {
		if fn.Name == "main" {
			mainIdx = i
		}
	}
	if mainIdx < 0 {
		return nil, fmt.Errorf("jit: program has no function named main")
	}
	loc := trace[len(trace)-1].LineNum
	mainFn := &prog.Functions[mainIdx]
	if loc < 0 || int(loc) > len(mainFn.Code) {
		return nil, fmt.Errorf("jit: trace line %d out of range for main (%d code items)", loc, len(mainFn.Code))
	}
	code := make([]ir.CodeItem, 0, len(mainFn.Code)+1)
	code = append(code, mainFn.Code[:loc]...)
	code = append(code, ir.Label{Name: "traceend"})
	code = append(code, mainFn.Code[loc:]...)
	mainFn.Code = code
	return trace[:len(trace)-1], nil
}

// stripLineNums discards the per-element source line, returning the bare
// instruction sequence to materialize as straight-line code.
func stripLineNums(trace []TraceItem) []ir.Instruction {
	out := make([]ir.Instruction, len(trace))
	for i, t := range trace {
		out[i] = t.Instr
	}
	return out
}

// ConvertToStraightLine rewrites a recorded instruction trace into a
// guarded, linear code fragment (spec.md §4.9 step 3):
//   - prepend `speculate`;
//   - drop every `jmp` (a linear trace has no need to jump to itself);
//   - rewrite every `br c L` into `guard c, abort` (a failing guard
//     means the trace diverged from what was recorded, so execution
//     must fall back to the original control flow at the abort label);
//   - append `commit`, then `jmp traceend`, then a `label abort`.
func ConvertToStraightLine(trace []ir.Instruction) []ir.CodeItem {
	code := make([]ir.CodeItem, 0, len(trace)+4)
	code = append(code, ir.EffectInstr{Op: ir.OpSpeculate})

	for _, instr := range trace {
		eff, ok := instr.(ir.EffectInstr)
		if !ok {
			code = append(code, instr.(ir.CodeItem))
			continue
		}
		switch eff.Op {
		case ir.OpJmp:
			// dropped: a linear trace never needs to jump to itself.
		case ir.OpBr:
			code = append(code, ir.EffectInstr{
				Op:     ir.OpGuard,
				Args:   []string{eff.Args[0]},
				Labels: []string{"abort"},
			})
		default:
			code = append(code, eff)
		}
	}

	code = append(code, ir.EffectInstr{Op: ir.OpCommit})
	code = append(code, ir.EffectInstr{Op: ir.OpJmp, Labels: []string{"traceend"}})
	code = append(code, ir.Label{Name: "abort"})
	return code
}

// insertTrace prepends code to fn's body, so the guarded trace fragment
// runs before the original function logic on entry.
func insertTrace(fn *ir.Function, code []ir.CodeItem) {
	fn.Code = append(append([]ir.CodeItem{}, code...), fn.Code...)
}

// Apply runs the full tracing-JIT pipeline against prog: it reads
// trace, trims it to its first side-effecting instruction, splices a
// `traceend` label into main at the trimmed trace's recorded position,
// rewrites the remaining instructions into a guarded straight-line
// fragment, and prepends that fragment to main. prog is not mutated;
// the patched copy is returned.
func Apply(prog ir.Program, trace []TraceItem) (ir.Program, error) {
	out := prog
	out.Functions = append([]ir.Function{}, prog.Functions...)

	trimmed := CutoffTrace(trace)
	remaining, err := InsertTraceEndLabel(&out, trimmed)
	if err != nil {
		return ir.Program{}, err
	}

	fragment := ConvertToStraightLine(stripLineNums(remaining))

	mainIdx := -1
	for i, fn := range out.Functions {
		if fn.Name == "main" {
			mainIdx = i
		}
	}
	insertTrace(&out.Functions[mainIdx], fragment)
	return out, nil
}
