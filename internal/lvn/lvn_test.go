package lvn

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

func TestLVNCommonSubexpressionBecomesCopy(t *testing.T) {
	const doc = `{"functions":[{"name":"f","instrs":[
		{"op":"const","dest":"a","type":"int","value":1},
		{"op":"const","dest":"b","type":"int","value":2},
		{"op":"add","dest":"c","type":"int","args":["a","b"]},
		{"op":"add","dest":"d","type":"int","args":["a","b"]},
		{"op":"print","args":["d"]}
	]}]}`
	fn := decodeFn(t, doc)
	fn = RunFunction(fn, Options{})
	var dInstr ir.Instruction
	for _, item := range fn.Code {
		if v, ok := item.(ir.ValueInstr); ok && v.Dest == "d" {
			dInstr = v
		}
	}
	v, ok := dInstr.(ir.ValueInstr)
	if !ok {
		t.Fatalf("expected d to still be a ValueInstr (an id copy), got %T", dInstr)
	}
	if v.Op != ir.OpID || v.Args[0] != "c" {
		t.Fatalf("expected d = id c, got %+v", v)
	}
}

func TestLVNConstantFolding(t *testing.T) {
	const doc = `{"functions":[{"name":"f","instrs":[
		{"op":"const","dest":"a","type":"int","value":2},
		{"op":"const","dest":"b","type":"int","value":3},
		{"op":"add","dest":"c","type":"int","args":["a","b"]},
		{"op":"print","args":["c"]}
	]}]}`
	fn := decodeFn(t, doc)
	fn = RunFunction(fn, Options{Fold: true})
	var cInstr ir.Instruction
	for _, item := range fn.Code {
		if c, ok := item.(ir.ConstantInstr); ok && c.Dest == "c" {
			cInstr = c
		}
	}
	c, ok := cInstr.(ir.ConstantInstr)
	if !ok {
		t.Fatalf("expected c to be folded to a constant, got %T", cInstr)
	}
	if c.Value.Int != 5 {
		t.Fatalf("expected c = 5, got %v", c.Value)
	}
}

func TestLVNCommutativeCanonicalization(t *testing.T) {
	const doc = `{"functions":[{"name":"f","instrs":[
		{"op":"const","dest":"a","type":"int","value":1},
		{"op":"const","dest":"b","type":"int","value":2},
		{"op":"add","dest":"c","type":"int","args":["a","b"]},
		{"op":"add","dest":"d","type":"int","args":["b","a"]},
		{"op":"print","args":["d"]}
	]}]}`
	fn := decodeFn(t, doc)
	fn = RunFunction(fn, Options{Comm: true})
	var dInstr ir.Instruction
	for _, item := range fn.Code {
		if v, ok := item.(ir.ValueInstr); ok && v.Dest == "d" {
			dInstr = v
		}
	}
	v, ok := dInstr.(ir.ValueInstr)
	if !ok || v.Op != ir.OpID {
		t.Fatalf("expected d = id c after commutative canonicalization, got %+v", dInstr)
	}
}

func TestLVNCopyPropagation(t *testing.T) {
	const doc = `{"functions":[{"name":"f","instrs":[
		{"op":"const","dest":"a","type":"int","value":1},
		{"op":"id","dest":"b","type":"int","args":["a"]},
		{"op":"add","dest":"c","type":"int","args":["b","b"]},
		{"op":"print","args":["c"]}
	]}]}`
	fn := decodeFn(t, doc)
	fn = RunFunction(fn, Options{Prop: true, Fold: true})
	var cInstr ir.Instruction
	for _, item := range fn.Code {
		if item == nil {
			continue
		}
		if v, ok := item.(ir.ConstantInstr); ok && v.Dest == "c" {
			cInstr = v
		}
	}
	c, ok := cInstr.(ir.ConstantInstr)
	if !ok {
		t.Fatalf("expected c folded through propagated copy to a constant, got %T: %+v", cInstr, fn.Code)
	}
	if c.Value.Int != 2 {
		t.Fatalf("expected c = 2, got %v", c.Value)
	}
}

func TestOverwrittenLaterRenamesEarlierDef(t *testing.T) {
	const doc = `{"functions":[{"name":"f","instrs":[
		{"op":"const","dest":"a","type":"int","value":1},
		{"op":"print","args":["a"]},
		{"op":"const","dest":"a","type":"int","value":2},
		{"op":"print","args":["a"]}
	]}]}`
	fn := decodeFn(t, doc)
	fn = RunFunction(fn, Options{})
	var firstDest, secondDest string
	count := 0
	for _, item := range fn.Code {
		if c, ok := item.(ir.ConstantInstr); ok {
			count++
			if count == 1 {
				firstDest = c.Dest
			} else {
				secondDest = c.Dest
			}
		}
	}
	if firstDest == secondDest {
		t.Fatalf("first definition of 'a' should be renamed since it is overwritten later, got both = %s", firstDest)
	}
	if secondDest != "a" {
		t.Fatalf("the last definition of 'a' should keep its name, got %s", secondDest)
	}
}
