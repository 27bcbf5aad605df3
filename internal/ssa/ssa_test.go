package ssa

import (
	"testing"

	"bril/internal/ir"
)

func decodeFn(t *testing.T, doc string) ir.Function {
	t.Helper()
	prog, err := ir.DecodeProgram([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return prog.Functions[0]
}

func countOp(fn ir.Function, op ir.ValueOp) int {
	n := 0
	for _, item := range fn.Code {
		if v, ok := item.(ir.ValueInstr); ok && v.Op == op {
			n++
		}
	}
	return n
}

func TestToSSAInsertsPhiAtMergePoint(t *testing.T) {
	const doc = `{"functions":[{"name":"f","instrs":[
		{"op":"const","dest":"cond","type":"bool","value":true},
		{"op":"const","dest":"x","type":"int","value":1},
		{"op":"br","args":["cond"],"labels":["then","else"]},
		{"label":"then"},
		{"op":"const","dest":"x","type":"int","value":2},
		{"op":"jmp","labels":["end"]},
		{"label":"else"},
		{"op":"jmp","labels":["end"]},
		{"label":"end"},
		{"op":"print","args":["x"]},
		{"op":"ret","args":[]}
	]}]}`
	fn := decodeFn(t, doc)
	out := ToSSA(fn)
	if countOp(out, ir.OpPhi) == 0 {
		t.Fatalf("expected a phi node at the merge block, got none: %+v", out.Code)
	}
}

func TestFromSSARemovesPhis(t *testing.T) {
	const doc = `{"functions":[{"name":"f","instrs":[
		{"op":"const","dest":"cond","type":"bool","value":true},
		{"op":"const","dest":"x","type":"int","value":1},
		{"op":"br","args":["cond"],"labels":["then","else"]},
		{"label":"then"},
		{"op":"const","dest":"x","type":"int","value":2},
		{"op":"jmp","labels":["end"]},
		{"label":"else"},
		{"op":"jmp","labels":["end"]},
		{"label":"end"},
		{"op":"print","args":["x"]},
		{"op":"ret","args":[]}
	]}]}`
	fn := decodeFn(t, doc)
	ssaForm := ToSSA(fn)
	back := FromSSA(ssaForm)
	if countOp(back, ir.OpPhi) != 0 {
		t.Fatalf("expected no phi nodes after FromSSA, got %d", countOp(back, ir.OpPhi))
	}
}

func TestToSSARenamesEveryDef(t *testing.T) {
	const doc = `{"functions":[{"name":"f","instrs":[
		{"op":"const","dest":"a","type":"int","value":1},
		{"op":"const","dest":"a","type":"int","value":2},
		{"op":"print","args":["a"]},
		{"op":"ret","args":[]}
	]}]}`
	fn := decodeFn(t, doc)
	out := ToSSA(fn)
	seen := map[string]bool{}
	for _, item := range out.Code {
		if c, ok := item.(ir.ConstantInstr); ok {
			if seen[c.Dest] {
				t.Fatalf("dest %s assigned twice, not in SSA form", c.Dest)
			}
			seen[c.Dest] = true
		}
	}
}
