// Package lvn implements local value numbering: within one basic block,
// canonicalize repeated computations to a copy of their first result,
// fold constant expressions, and propagate copies — optionally treating
// commutative operators as order-independent for the purposes of
// recognizing a repeated computation.
package lvn

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"bril/internal/cfg"
	"bril/internal/ir"
)

// Options toggles the optional LVN behaviors, matching the CLI flags
// this package is driven by.
type Options struct {
	Prop bool // propagate copies (dereference "id" chains)
	Comm bool // canonicalize commutative operators by sorting operands
	Fold bool // constant-fold foldable expressions
}

// entry is one row of the value-numbering table: either a constant, or a
// canonical (op, arg value numbers) expression. home is the variable
// currently holding this value, used to rewrite later references via a
// copy instead of recomputing.
type entry struct {
	isConst bool
	lit     ir.Literal
	op      string
	args    []int
	home    string
}

func (e entry) key() string {
	if e.isConst {
		return fmt.Sprintf("const:%d:%s", e.lit.Kind, e.lit.String())
	}
	parts := make([]string, len(e.args))
	for i, a := range e.args {
		parts[i] = strconv.Itoa(a)
	}
	return e.op + ":" + strings.Join(parts, ",")
}

// table is the per-block LVN state: a dense list of entries addressed by
// value number, an index from canonical key to value number for reuse
// detection, and the variable -> current value number mapping.
type table struct {
	entries []entry
	byKey   map[string]int
	var2num map[string]int
}

func newTable() *table {
	return &table{byKey: map[string]int{}, var2num: map[string]int{}}
}

func (t *table) add(e entry) int {
	num := len(t.entries)
	t.entries = append(t.entries, e)
	t.byKey[e.key()] = num
	return num
}

func (t *table) lookupByKey(key string) (int, bool) {
	n, ok := t.byKey[key]
	return n, ok
}

// overwrittenLater marks, for each instruction in program order, whether
// its dest is redefined again later in the same block: the last
// definition of a name gets false, every earlier one gets true.
func overwrittenLater(instrs []ir.Instruction) []bool {
	flags := make([]bool, len(instrs))
	seen := map[string]bool{}
	for i := len(instrs) - 1; i >= 0; i-- {
		dest, ok := destOf(instrs[i])
		if !ok {
			continue
		}
		flags[i] = seen[dest]
		seen[dest] = true
	}
	return flags
}

func destOf(instr ir.Instruction) (string, bool) {
	switch v := instr.(type) {
	case ir.ConstantInstr:
		return v.Dest, true
	case ir.ValueInstr:
		return v.Dest, true
	default:
		return "", false
	}
}

// blockInputs returns the set of variables read before being written in
// the block — these must be seeded into the table as opaque (non-const,
// no expression) entries so later lookups by name still resolve to a
// value number.
func blockInputs(instrs []ir.Instruction) []string {
	defined := map[string]bool{}
	var inputs []string
	seen := map[string]bool{}
	for _, instr := range instrs {
		for _, a := range argsOf(instr) {
			if !defined[a] && !seen[a] {
				inputs = append(inputs, a)
				seen[a] = true
			}
		}
		if d, ok := destOf(instr); ok {
			defined[d] = true
		}
	}
	return inputs
}

func argsOf(instr ir.Instruction) []string {
	switch v := instr.(type) {
	case ir.ValueInstr:
		return v.Args
	case ir.EffectInstr:
		return v.Args
	default:
		return nil
	}
}

func newVar(num int) string {
	return fmt.Sprintf("lvn.%d", num)
}

// RunBlock applies local value numbering to one block's instructions,
// returning the rewritten instruction list as a new slice; instrs itself
// is not modified.
func RunBlock(instrs []ir.Instruction, opt Options) []ir.Instruction {
	t := newTable()
	for _, name := range blockInputs(instrs) {
		num := t.add(entry{home: name})
		t.var2num[name] = num
	}

	overwritten := overwrittenLater(instrs)
	out := make([]ir.Instruction, len(instrs))

	for i, instr := range instrs {
		switch v := instr.(type) {
		case ir.ConstantInstr:
			key := entry{isConst: true, lit: v.Value}.key()
			if num, ok := t.lookupByKey(key); ok && opt.Fold {
				home := t.entries[num].home
				t.var2num[v.Dest] = num
				out[i] = ir.ValueInstr{Dest: v.Dest, Type: v.Type, Op: ir.OpID, Args: []string{home}, Pos: v.Pos}
				continue
			}
			dest := v.Dest
			if overwritten[i] {
				dest = newVar(len(t.entries))
			}
			num := t.add(entry{isConst: true, lit: v.Value, home: dest})
			t.var2num[v.Dest] = num
			out[i] = ir.ConstantInstr{Dest: dest, Type: v.Type, Value: v.Value, Pos: v.Pos}

		case ir.ValueInstr:
			out[i] = runValue(t, v, overwritten[i], opt)

		default:
			out[i] = rewriteEffect(t, instr.(ir.EffectInstr), opt)
		}
	}
	return out
}

func runValue(t *table, v ir.ValueInstr, overwritten bool, opt Options) ir.Instruction {
	if v.Op == ir.OpCall {
		return rewriteArgsOnly(t, v, opt)
	}

	argNums := make([]int, len(v.Args))
	for i, a := range v.Args {
		argNums[i] = resolveNum(t, a)
	}

	if opt.Prop && v.Op == ir.OpID && len(argNums) == 1 {
		src := t.entries[argNums[0]]
		dest := v.Dest
		if overwritten {
			dest = newVar(len(t.entries))
		}
		num := t.add(entry{isConst: src.isConst, lit: src.lit, op: src.op, args: src.args, home: dest})
		t.var2num[v.Dest] = num
		return ir.ValueInstr{Dest: dest, Type: v.Type, Op: ir.OpID, Args: []string{src.home}, Pos: v.Pos}
	}

	if opt.Fold {
		if folded, ok := tryFold(t, v.Op, argNums); ok {
			key := entry{isConst: true, lit: folded}.key()
			if num, exists := t.lookupByKey(key); exists {
				home := t.entries[num].home
				t.var2num[v.Dest] = num
				return ir.ValueInstr{Dest: v.Dest, Type: v.Type, Op: ir.OpID, Args: []string{home}, Pos: v.Pos}
			}
			dest := v.Dest
			if overwritten {
				dest = newVar(len(t.entries))
			}
			num := t.add(entry{isConst: true, lit: folded, home: dest})
			t.var2num[v.Dest] = num
			return ir.ConstantInstr{Dest: dest, Type: v.Type, Value: folded, Pos: v.Pos}
		}
	}

	canonArgs := append([]int(nil), argNums...)
	if opt.Comm && ir.CommutativeValueOps[v.Op] {
		sort.Ints(canonArgs)
	}
	key := entry{op: string(v.Op), args: canonArgs}.key()
	if num, ok := t.lookupByKey(key); ok {
		home := t.entries[num].home
		t.var2num[v.Dest] = num
		return ir.ValueInstr{Dest: v.Dest, Type: v.Type, Op: ir.OpID, Args: []string{home}, Pos: v.Pos}
	}

	dest := v.Dest
	if overwritten {
		dest = newVar(len(t.entries))
	}
	num := t.add(entry{op: string(v.Op), args: canonArgs, home: dest})
	t.var2num[v.Dest] = num

	newArgs := make([]string, len(v.Args))
	for i, n := range argNums {
		newArgs[i] = t.entries[n].home
	}
	return ir.ValueInstr{Dest: dest, Type: v.Type, Op: v.Op, Args: newArgs, Funcs: v.Funcs, Labels: v.Labels, Pos: v.Pos}
}

func rewriteArgsOnly(t *table, v ir.ValueInstr, opt Options) ir.Instruction {
	newArgs := make([]string, len(v.Args))
	for i, a := range v.Args {
		newArgs[i] = homeOf(t, a)
	}
	num := t.add(entry{home: v.Dest})
	t.var2num[v.Dest] = num
	return ir.ValueInstr{Dest: v.Dest, Type: v.Type, Op: v.Op, Args: newArgs, Funcs: v.Funcs, Labels: v.Labels, Pos: v.Pos}
}

func rewriteEffect(t *table, e ir.EffectInstr, opt Options) ir.Instruction {
	newArgs := make([]string, len(e.Args))
	for i, a := range e.Args {
		newArgs[i] = homeOf(t, a)
	}
	return ir.EffectInstr{Op: e.Op, Args: newArgs, Funcs: e.Funcs, Labels: e.Labels, Pos: e.Pos}
}

func resolveNum(t *table, name string) int {
	if n, ok := t.var2num[name]; ok {
		return n
	}
	num := t.add(entry{home: name})
	t.var2num[name] = num
	return num
}

func homeOf(t *table, name string) string {
	return t.entries[resolveNum(t, name)].home
}

// RunFunction applies RunBlock to every block of a function's CFG and
// reassembles the flat instruction list.
func RunFunction(fn ir.Function, opt Options) ir.Function {
	blocks := cfg.PlainBlocks(fn)
	for i, b := range blocks {
		blocks[i].Instr = RunBlock(b.Instr, opt)
	}
	fn.Code = cfg.Reassemble(blocks)
	return fn
}
