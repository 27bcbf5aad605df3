package jit

import (
	"testing"

	"bril/internal/ir"
)

func TestCutoffTraceStopsAtFirstSideEffect(t *testing.T) {
	trace := []TraceItem{
		{Instr: ir.ConstantInstr{Dest: "a", Type: ir.TInt, Value: ir.IntLit(1)}, LineNum: 0},
		{Instr: ir.EffectInstr{Op: ir.OpPrint, Args: []string{"a"}}, LineNum: 1},
		{Instr: ir.ConstantInstr{Dest: "b", Type: ir.TInt, Value: ir.IntLit(2)}, LineNum: 2},
	}

	got := CutoffTrace(trace)
	if len(got) != 2 {
		t.Fatalf("expected trace trimmed to 2 elements, got %d", len(got))
	}
	if _, ok := got[1].Instr.(ir.EffectInstr); !ok {
		t.Fatalf("expected last element to be the print effect")
	}
}

func TestCutoffTraceNoSideEffectKeepsAll(t *testing.T) {
	trace := []TraceItem{
		{Instr: ir.ConstantInstr{Dest: "a", Type: ir.TInt, Value: ir.IntLit(1)}, LineNum: 0},
		{Instr: ir.ValueInstr{Dest: "b", Type: ir.TInt, Op: ir.OpAdd, Args: []string{"a", "a"}}, LineNum: 1},
	}
	got := CutoffTrace(trace)
	if len(got) != 2 {
		t.Fatalf("expected no trimming, got %d elements", len(got))
	}
}

func TestConvertToStraightLineRewritesBrAndDropsJmp(t *testing.T) {
	trace := []ir.Instruction{
		ir.ConstantInstr{Dest: "a", Type: ir.TInt, Value: ir.IntLit(1)},
		ir.EffectInstr{Op: ir.OpJmp, Labels: []string{"loop"}},
		ir.EffectInstr{Op: ir.OpBr, Args: []string{"cond"}, Labels: []string{"then", "else"}},
		ir.EffectInstr{Op: ir.OpPrint, Args: []string{"a"}},
	}

	code := ConvertToStraightLine(trace)

	if eff, ok := code[0].(ir.EffectInstr); !ok || eff.Op != ir.OpSpeculate {
		t.Fatalf("expected leading speculate, got %#v", code[0])
	}
	for _, item := range code {
		if eff, ok := item.(ir.EffectInstr); ok && eff.Op == ir.OpJmp && len(eff.Labels) == 1 && eff.Labels[0] == "loop" {
			t.Fatalf("jmp should have been dropped, found %#v", eff)
		}
	}
	var sawGuard bool
	for _, item := range code {
		if eff, ok := item.(ir.EffectInstr); ok && eff.Op == ir.OpGuard {
			sawGuard = true
			if len(eff.Args) != 1 || eff.Args[0] != "cond" {
				t.Fatalf("guard should carry the br condition, got %#v", eff)
			}
			if len(eff.Labels) != 1 || eff.Labels[0] != "abort" {
				t.Fatalf("guard should target abort, got %#v", eff)
			}
		}
	}
	if !sawGuard {
		t.Fatalf("expected br to be rewritten into a guard")
	}
	last3 := code[len(code)-3:]
	if eff, ok := last3[0].(ir.EffectInstr); !ok || eff.Op != ir.OpCommit {
		t.Fatalf("expected commit before the trailing jmp/label, got %#v", last3[0])
	}
	if eff, ok := last3[1].(ir.EffectInstr); !ok || eff.Op != ir.OpJmp || eff.Labels[0] != "traceend" {
		t.Fatalf("expected jmp traceend, got %#v", last3[1])
	}
	if lbl, ok := last3[2].(ir.Label); !ok || lbl.Name != "abort" {
		t.Fatalf("expected trailing abort label, got %#v", last3[2])
	}
}

func TestInsertTraceEndLabelSplicesAtRecordedLine(t *testing.T) {
	prog := ir.Program{Functions: []ir.Function{{
		Name: "main",
		Code: []ir.CodeItem{
			ir.ConstantInstr{Dest: "a", Type: ir.TInt, Value: ir.IntLit(1)},
			ir.EffectInstr{Op: ir.OpPrint, Args: []string{"a"}},
			ir.EffectInstr{Op: ir.OpRet},
		},
	}}}
	trace := []TraceItem{
		{Instr: ir.ConstantInstr{Dest: "a", Type: ir.TInt, Value: ir.IntLit(1)}, LineNum: 0},
		{Instr: ir.EffectInstr{Op: ir.OpPrint, Args: []string{"a"}}, LineNum: 1},
	}

	remaining, err := InsertTraceEndLabel(&prog, trace)
	if err != nil {
		t.Fatalf("InsertTraceEndLabel: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected the trailing trace element dropped, got %d remaining", len(remaining))
	}
	if lbl, ok := prog.Functions[0].Code[1].(ir.Label); !ok || lbl.Name != "traceend" {
		t.Fatalf("expected traceend label spliced at index 1, got %#v", prog.Functions[0].Code[1])
	}
}

func TestApplyPrependsGuardedFragmentToMain(t *testing.T) {
	prog := ir.Program{Functions: []ir.Function{{
		Name: "main",
		Code: []ir.CodeItem{
			ir.ConstantInstr{Dest: "a", Type: ir.TInt, Value: ir.IntLit(1)},
			ir.EffectInstr{Op: ir.OpPrint, Args: []string{"a"}},
			ir.EffectInstr{Op: ir.OpRet},
		},
	}}}
	trace := []TraceItem{
		{Instr: ir.ConstantInstr{Dest: "a", Type: ir.TInt, Value: ir.IntLit(1)}, LineNum: 0},
		{Instr: ir.EffectInstr{Op: ir.OpPrint, Args: []string{"a"}}, LineNum: 1},
	}

	patched, err := Apply(prog, trace)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	main, ok := patched.FuncByName("main")
	if !ok {
		t.Fatalf("patched program has no main")
	}
	if eff, ok := main.Code[0].(ir.EffectInstr); !ok || eff.Op != ir.OpSpeculate {
		t.Fatalf("expected main to begin with the spliced speculate, got %#v", main.Code[0])
	}
	var sawTraceEnd bool
	for _, item := range main.Code {
		if lbl, ok := item.(ir.Label); ok && lbl.Name == "traceend" {
			sawTraceEnd = true
		}
	}
	if !sawTraceEnd {
		t.Fatalf("expected a traceend label somewhere in patched main")
	}
	if len(prog.Functions[0].Code) != 3 {
		t.Fatalf("Apply must not mutate the input program, original main now has %d code items", len(prog.Functions[0].Code))
	}
}
