package cfg

import (
	"testing"

	"bril/internal/ir"
)

func mustDecode(t *testing.T, doc string) ir.Function {
	t.Helper()
	prog, err := ir.DecodeProgram([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return prog.Functions[0]
}

func TestFormBlocksSplitsOnLabelsAndTerminators(t *testing.T) {
	const doc = `{"functions":[{"name":"f","instrs":[
		{"op":"const","dest":"a","type":"int","value":1},
		{"op":"br","args":["a"],"labels":["then","else"]},
		{"label":"then"},
		{"op":"const","dest":"x","type":"int","value":1},
		{"op":"jmp","labels":["end"]},
		{"label":"else"},
		{"op":"const","dest":"x","type":"int","value":2},
		{"label":"end"},
		{"op":"ret","args":[]}
	]}]}`
	fn := mustDecode(t, doc)
	blocks := FormBlocks(fn)
	if len(blocks) != 4 {
		t.Fatalf("want 4 blocks, got %d: %+v", len(blocks), blocks)
	}
	names := []string{blocks[0].Name, blocks[1].Name, blocks[2].Name, blocks[3].Name}
	want := []string{"", "then", "else", "end"}
	for i, w := range want {
		if w != "" && names[i] != w {
			t.Errorf("block %d name = %s, want %s", i, names[i], w)
		}
	}
	if names[0] == "" {
		t.Errorf("first block should have a generated fresh name, got empty")
	}
}

func TestAddTerminatorsAppendsFallthroughJump(t *testing.T) {
	const doc = `{"functions":[{"name":"f","instrs":[
		{"op":"const","dest":"a","type":"int","value":1},
		{"label":"next"},
		{"op":"const","dest":"b","type":"int","value":2}
	]}]}`
	fn := mustDecode(t, doc)
	blocks := AddTerminators(FormBlocks(fn))
	if len(blocks) != 2 {
		t.Fatalf("want 2 blocks, got %d", len(blocks))
	}
	term0, ok := blocks[0].Terminator()
	if !ok || term0.Op != ir.OpJmp || term0.Labels[0] != "next" {
		t.Fatalf("block 0 should fall through to next via jmp, got %+v", term0)
	}
	term1, ok := blocks[1].Terminator()
	if !ok || term1.Op != ir.OpRet {
		t.Fatalf("last block should get an implicit ret, got %+v", term1)
	}
}

func TestBuildAddsSyntheticEntryWhenEntryIsATarget(t *testing.T) {
	const doc = `{"functions":[{"name":"f","instrs":[
		{"label":"loop"},
		{"op":"const","dest":"a","type":"int","value":1},
		{"op":"jmp","labels":["loop"]}
	]}]}`
	fn := mustDecode(t, doc)
	g := Build(fn)
	if g.Blocks[0].Name == "loop" {
		t.Fatalf("expected a synthetic entry ahead of loop, blocks: %+v", g.Blocks)
	}
	term, ok := g.Blocks[0].Terminator()
	if !ok || term.Op != ir.OpJmp || term.Labels[0] != "loop" {
		t.Fatalf("synthetic entry should jmp to original entry, got %+v", term)
	}
	if len(g.Pred[g.NameToID["loop"]]) != 2 {
		t.Fatalf("loop should have 2 predecessors (synthetic entry + self), got %d", len(g.Pred[g.NameToID["loop"]]))
	}
}

func TestBuildNoSyntheticEntryWhenEntryNotATarget(t *testing.T) {
	const doc = `{"functions":[{"name":"f","instrs":[
		{"op":"const","dest":"a","type":"int","value":1},
		{"op":"ret","args":[]}
	]}]}`
	fn := mustDecode(t, doc)
	g := Build(fn)
	if len(g.Blocks) != 1 {
		t.Fatalf("want 1 block, no synthetic entry, got %d", len(g.Blocks))
	}
}

func TestReassembleRoundtrip(t *testing.T) {
	const doc = `{"functions":[{"name":"f","instrs":[
		{"op":"const","dest":"a","type":"int","value":1},
		{"op":"ret","args":[]}
	]}]}`
	fn := mustDecode(t, doc)
	g := Build(fn)
	items := Reassemble(g.Blocks)
	if len(items) != 3 {
		t.Fatalf("want label + 2 instrs = 3 items, got %d", len(items))
	}
}
