// Package cfg builds basic blocks and the control-flow graph over them
// from a flat function body, normalizing terminators along the way.
package cfg

import (
	"fmt"

	"bril/internal/ir"
)

// Block is one basic block: a dense id, the name it is addressed by (its
// label, or a freshly generated one), and its non-label instructions.
// The last instruction, if any, is always an Effect instruction after
// normalization; AddTerminators guarantees this.
type Block struct {
	ID    int
	Name  string
	Instr []ir.Instruction
}

// Terminator returns the block's terminating Effect instruction. Blocks
// are guaranteed non-empty and terminator-ending once AddTerminators has
// run, so this never returns ok=false on a normalized CFG.
func (b Block) Terminator() (ir.EffectInstr, bool) {
	if len(b.Instr) == 0 {
		return ir.EffectInstr{}, false
	}
	e, ok := b.Instr[len(b.Instr)-1].(ir.EffectInstr)
	return e, ok
}

// CFG is a function's blocks plus the predecessor/successor edge lists
// between them, indexed by block id. Edge lists preserve multiplicity: a
// `br` instruction with both targets pointing at the same block produces
// two entries in that target's predecessor list.
type CFG struct {
	FuncName string
	Blocks   []Block
	NameToID map[string]int
	Succ     [][]int
	Pred     [][]int
	Entry    int
}

// freshName generates a name not present in taken, using counter (owned
// by the caller) to produce candidates. counter is local to each
// FormBlocks/AddEntry call rather than a shared package global, so
// concurrent calls across goroutines (internal/cli/parallel.go runs one
// per function) never race on it.
func freshName(taken map[string]bool, counter *int) string {
	for {
		*counter++
		name := fmt.Sprintf("b%d", *counter)
		if !taken[name] {
			taken[name] = true
			return name
		}
	}
}

// FormBlocks partitions a function's flat code list into basic blocks. A
// Label starts a new block (and names it); any other instruction starts a
// new block only if it immediately follows a terminator (or is the very
// first instruction). Instructions are appended to the block currently
// being built; terminators are not yet guaranteed present at block ends —
// AddTerminators fixes that up.
func FormBlocks(fn ir.Function) []Block {
	taken := map[string]bool{}
	for _, item := range fn.Code {
		if l, ok := item.(ir.Label); ok {
			taken[l.Name] = true
		}
	}

	var blocks []Block
	var cur *Block
	counter := 0
	flush := func() {
		if cur != nil {
			blocks = append(blocks, *cur)
			cur = nil
		}
	}
	start := func(name string) {
		flush()
		cur = &Block{Name: name}
	}

	for _, item := range fn.Code {
		switch v := item.(type) {
		case ir.Label:
			start(v.Name)
		default:
			instr := item.(ir.Instruction)
			if cur == nil {
				start(freshName(taken, &counter))
			}
			cur.Instr = append(cur.Instr, instr)
			if e, ok := instr.(ir.EffectInstr); ok && e.IsTerminator() {
				flush()
			}
		}
	}
	flush()

	for i := range blocks {
		blocks[i].ID = i
	}
	return blocks
}

// AddTerminators ensures every block ends in an explicit terminator: the
// function's last block, if it has none, gets `ret`; any other
// terminator-less block (including an empty one) gets
// `jmp <next-block-name>` appended. A block
// whose final instruction is itself a Constant or Value (never an
// Effect) also gets a `jmp <next>` appended rather than being treated as
// already terminated.
func AddTerminators(blocks []Block) []Block {
	for i := range blocks {
		b := &blocks[i]
		last := -1
		if len(b.Instr) > 0 {
			last = len(b.Instr) - 1
		}
		hasTerm := last >= 0
		if hasTerm {
			if e, ok := b.Instr[last].(ir.EffectInstr); !ok || !e.IsTerminator() {
				hasTerm = false
			}
		}
		if hasTerm {
			continue
		}
		if i == len(blocks)-1 {
			b.Instr = append(b.Instr, ir.EffectInstr{Op: ir.OpRet, Args: nil})
		} else {
			b.Instr = append(b.Instr, ir.EffectInstr{Op: ir.OpJmp, Labels: []string{blocks[i+1].Name}})
		}
	}
	return blocks
}

// termSuccessors returns the label names a block's terminator jumps to:
// jmp/br have 1 or 2 labels respectively, ret has none.
func termSuccessors(b Block) []string {
	term, ok := b.Terminator()
	if !ok {
		panic("cfg: block has no terminator: " + b.Name)
	}
	switch term.Op {
	case ir.OpJmp, ir.OpBr:
		return term.Labels
	case ir.OpRet:
		return nil
	default:
		panic(fmt.Sprintf("cfg: not a terminator op: %s", term.Op))
	}
}

// AddEdges builds Succ/Pred (indexed by block id) from each block's
// terminator. Duplicate targets (both arms of a `br` pointing at the same
// label) yield duplicate edge-list entries, matching the original
// semantics of "number of times a predecessor can reach a successor".
func AddEdges(blocks []Block, nameToID map[string]int) (succ, pred [][]int) {
	succ = make([][]int, len(blocks))
	pred = make([][]int, len(blocks))
	for _, b := range blocks {
		for _, name := range termSuccessors(b) {
			tgt, ok := nameToID[name]
			if !ok {
				panic("cfg: unknown label target: " + name)
			}
			succ[b.ID] = append(succ[b.ID], tgt)
			pred[tgt] = append(pred[tgt], b.ID)
		}
	}
	return succ, pred
}

// AddEntry inserts a synthetic, empty entry block ahead of the original
// entry whenever any instruction in the function targets the original
// entry's label (i.e. the entry is itself a branch/jump target) — a
// dominance analysis requires the entry block to have no predecessors.
// The synthetic block's normalized terminator then chains explicitly to
// the original entry via an inserted `jmp` and its corresponding edge.
func AddEntry(blocks []Block, nameToID map[string]int) ([]Block, map[string]int) {
	if len(blocks) == 0 {
		return blocks, nameToID
	}
	entryName := blocks[0].Name
	isTarget := false
	for _, b := range blocks {
		term, ok := b.Terminator()
		if !ok {
			continue
		}
		for _, l := range term.Labels {
			if l == entryName {
				isTarget = true
			}
		}
	}
	if !isTarget {
		return blocks, nameToID
	}

	taken := map[string]bool{}
	for name := range nameToID {
		taken[name] = true
	}
	counter := 0
	synthName := freshName(taken, &counter)
	synth := Block{
		Name:  synthName,
		Instr: []ir.Instruction{ir.EffectInstr{Op: ir.OpJmp, Labels: []string{entryName}}},
	}

	newBlocks := make([]Block, 0, len(blocks)+1)
	newBlocks = append(newBlocks, synth)
	newBlocks = append(newBlocks, blocks...)
	for i := range newBlocks {
		newBlocks[i].ID = i
	}
	newNameToID := make(map[string]int, len(newBlocks))
	for _, b := range newBlocks {
		newNameToID[b.Name] = b.ID
	}
	return newBlocks, newNameToID
}

// PlainBlocks forms and terminator-normalizes a function's basic blocks
// without synthesizing an entry block or computing edges. Passes that
// only need a per-block view of the instructions (LVN, the local and
// global TDCE sweeps) use this instead of Build, so that repeatedly
// re-forming blocks across chained passes never grows an extra synthetic
// entry block each time.
func PlainBlocks(fn ir.Function) []Block {
	return AddTerminators(FormBlocks(fn))
}

// Build constructs a fully normalized CFG for one function: blocks are
// formed, terminators normalized, a synthetic entry added if needed, and
// edges computed from the final block set.
func Build(fn ir.Function) CFG {
	blocks := FormBlocks(fn)
	blocks = AddTerminators(blocks)

	nameToID := make(map[string]int, len(blocks))
	for _, b := range blocks {
		nameToID[b.Name] = b.ID
	}

	blocks, nameToID = AddEntry(blocks, nameToID)

	succ, pred := AddEdges(blocks, nameToID)
	return CFG{
		FuncName: fn.Name,
		Blocks:   blocks,
		NameToID: nameToID,
		Succ:     succ,
		Pred:     pred,
		Entry:    0,
	}
}

// Reassemble flattens a CFG's blocks back into a flat CodeItem list
// (label + instructions per block, in block order) — the inverse of
// FormBlocks, used once a transform pass is done with a block-structured
// view and needs to hand a flat Function body back to the caller.
func Reassemble(blocks []Block) []ir.CodeItem {
	var out []ir.CodeItem
	for _, b := range blocks {
		out = append(out, ir.Label{Name: b.Name})
		for _, instr := range b.Instr {
			out = append(out, instr.(ir.CodeItem))
		}
	}
	return out
}
