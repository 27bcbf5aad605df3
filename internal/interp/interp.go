// Package interp is a tree-walking, numified, single-threaded
// interpreter for the IR, backed by a semispace copying garbage
// collector for pointer-typed allocations.
package interp

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	brilerrors "bril/internal/errors"
	"bril/internal/ir"
)

// Interpreter executes one Program, caching each function's numified
// form the first time it is called.
type Interpreter struct {
	prog       ir.Program
	funcs      map[string]ir.Function
	numified   map[string]numFunc
	writer     func(string)
	heap       *Heap
	instrCount int64
}

// New constructs an Interpreter whose `print` output is written via
// write (typically os.Stdout), with a heap sized per the layered
// configuration (internal/config) rather than a hardcoded constant.
func New(prog ir.Program, write func(string), heapSize, initialGCLimit, gcGrowth int64) *Interpreter {
	funcs := make(map[string]ir.Function, len(prog.Functions))
	for _, f := range prog.Functions {
		funcs[f.Name] = f
	}
	return &Interpreter{
		prog:     prog,
		funcs:    funcs,
		numified: map[string]numFunc{},
		writer:   write,
		heap:     NewHeap(heapSize, initialGCLimit, gcGrowth),
	}
}

// InstructionCount returns the number of instructions dynamically
// executed so far, for the --profile total_dyn_inst line.
func (it *Interpreter) InstructionCount() int64 { return it.instrCount }

func (it *Interpreter) numFuncFor(fn ir.Function) numFunc {
	if nf, ok := it.numified[fn.Name]; ok {
		return nf
	}
	nf := numify(fn)
	it.numified[fn.Name] = nf
	return nf
}

// ExecuteMain runs the program's main function with inputArgs bound to
// its declared parameters (parsed per their declared type), and, when
// profiling is true, writes "total_dyn_inst: N" to stderr afterward.
func (it *Interpreter) ExecuteMain(inputArgs []string, profiling bool) error {
	mainFn, ok := it.funcs["main"]
	if !ok {
		return brilerrors.RuntimeError{Code: brilerrors.ErrorNoMainFunction, Message: "program has no function named main"}
	}
	if mainFn.ReturnType != nil {
		return brilerrors.RuntimeError{Code: brilerrors.ErrorNonEmptyRetForFunc, Message: "main must not declare a return type"}.AddPos(mainFn.Pos)
	}

	nf := it.numFuncFor(mainFn)
	env := newEnvironment(newScope(nf.numVars))

	if err := it.parseArgs(env, mainFn, nf, inputArgs); err != nil {
		if re, ok := brilerrors.AsRuntimeError(err); ok {
			return re.AddPos(mainFn.Pos)
		}
		return err
	}

	if _, _, err := it.execute(mainFn, nf, env); err != nil {
		return err
	}

	if profiling {
		fmt.Fprintf(os.Stderr, "total_dyn_inst: %d\n", it.instrCount)
	}
	return nil
}

// parseArgs binds inputs (command-line strings) to main's declared
// parameters, parsing each according to its declared type.
func (it *Interpreter) parseArgs(env *Environment, fn ir.Function, nf numFunc, inputs []string) error {
	if len(fn.Params) == 0 && len(inputs) == 0 {
		return nil
	}
	if len(inputs) != len(fn.Params) {
		return brilerrors.RuntimeError{
			Code:    brilerrors.ErrorBadNumFuncArgs,
			Message: fmt.Sprintf("expected %d arguments, got %d", len(fn.Params), len(inputs)),
		}
	}
	for i, p := range fn.Params {
		slot := nf.paramNums[i]
		pt, ok := p.Type.(ir.PrimType)
		if !ok {
			panic("interp: pointer-typed main arguments are not supported")
		}
		switch pt {
		case ir.TBool:
			b, err := strconv.ParseBool(inputs[i])
			if err != nil {
				return brilerrors.RuntimeError{Code: brilerrors.ErrorBadFuncArgType, Message: fmt.Sprintf("could not parse %q as bool", inputs[i])}
			}
			env.current().set(slot, boolValue(b))
		case ir.TInt:
			n, err := strconv.ParseInt(inputs[i], 10, 64)
			if err != nil {
				return brilerrors.RuntimeError{Code: brilerrors.ErrorBadFuncArgType, Message: fmt.Sprintf("could not parse %q as int", inputs[i])}
			}
			env.current().set(slot, intValue(n))
		case ir.TFloat:
			f, err := strconv.ParseFloat(inputs[i], 64)
			if err != nil {
				return brilerrors.RuntimeError{Code: brilerrors.ErrorBadFuncArgType, Message: fmt.Sprintf("could not parse %q as float", inputs[i])}
			}
			env.current().set(slot, floatValue(f))
		}
	}
	return nil
}

// execute runs fn to completion (a ret with no successor block), walking
// its CFG one block at a time and dispatching each instruction by kind.
// It returns the function's return value (if any) and whether one was
// produced.
func (it *Interpreter) execute(fn ir.Function, nf numFunc, env *Environment) (Value, bool, error) {
	currBlock := nf.g.Entry
	var lastLabel, currentLabel string
	var lastLabelOK, currentLabelOK bool
	var result Value
	var haveResult bool

	for {
		block := nf.g.Blocks[currBlock]
		rows := nf.instrs[currBlock]
		it.instrCount += int64(len(block.Instr))

		lastLabel, lastLabelOK = currentLabel, currentLabelOK
		currentLabel, currentLabelOK = block.Name, true

		succ := nf.g.Succ[currBlock]
		nextBlock := -1
		if len(succ) == 1 {
			nextBlock = succ[0]
		}

		for i, instr := range block.Instr {
			ni := rows[i]
			switch v := instr.(type) {
			case ir.ConstantInstr:
				env.current().set(ni.dest, constValue(v))

			case ir.ValueInstr:
				if err := it.execValueOp(env, v, ni, lastLabel, lastLabelOK); err != nil {
					return Value{}, false, addPos(err, v.Pos)
				}

			case ir.EffectInstr:
				res, hasRes, next, err := it.execEffectOp(fn, env, v, ni, succ)
				if err != nil {
					return Value{}, false, addPos(err, v.Pos)
				}
				if hasRes {
					result, haveResult = res, true
				}
				if next >= 0 {
					nextBlock = next
				}
			}
		}

		if nextBlock >= 0 {
			currBlock = nextBlock
		} else {
			return result, haveResult, nil
		}
	}
}

func addPos(err error, pos ir.Position) error {
	if re, ok := brilerrors.AsRuntimeError(err); ok {
		return re.AddPos(pos)
	}
	return err
}

func constValue(v ir.ConstantInstr) Value {
	if pt, ok := v.Type.(ir.PrimType); ok && pt == ir.TFloat {
		switch v.Value.Kind {
		case ir.KindInt:
			return floatValue(float64(v.Value.Int))
		case ir.KindFloat:
			return floatValue(v.Value.Flt)
		}
	}
	switch v.Value.Kind {
	case ir.KindInt:
		return intValue(v.Value.Int)
	case ir.KindBool:
		return boolValue(v.Value.Bool)
	case ir.KindFloat:
		return floatValue(v.Value.Flt)
	}
	return Value{}
}

// execValueOp dispatches one Value instruction. It never redirects
// control flow itself — only execEffectOp's jmp/br do that.
func (it *Interpreter) execValueOp(env *Environment, v ir.ValueInstr, ni numInstr, lastLabel string, lastLabelOK bool) error {
	cur := env.current()
	get := func(i int) Value { return cur.get(ni.args[i]) }

	switch v.Op {
	case ir.OpAdd:
		cur.set(ni.dest, intValue(get(0).i+get(1).i))
	case ir.OpMul:
		cur.set(ni.dest, intValue(get(0).i*get(1).i))
	case ir.OpSub:
		cur.set(ni.dest, intValue(get(0).i-get(1).i))
	case ir.OpDiv:
		cur.set(ni.dest, intValue(get(0).i/get(1).i))
	case ir.OpEq:
		cur.set(ni.dest, boolValue(get(0).i == get(1).i))
	case ir.OpLt:
		cur.set(ni.dest, boolValue(get(0).i < get(1).i))
	case ir.OpGt:
		cur.set(ni.dest, boolValue(get(0).i > get(1).i))
	case ir.OpLe:
		cur.set(ni.dest, boolValue(get(0).i <= get(1).i))
	case ir.OpGe:
		cur.set(ni.dest, boolValue(get(0).i >= get(1).i))
	case ir.OpNot:
		cur.set(ni.dest, boolValue(!get(0).b))
	case ir.OpAnd:
		cur.set(ni.dest, boolValue(get(0).b && get(1).b))
	case ir.OpOr:
		cur.set(ni.dest, boolValue(get(0).b || get(1).b))
	case ir.OpID:
		cur.set(ni.dest, get(0))
	case ir.OpFAdd:
		cur.set(ni.dest, floatValue(get(0).f+get(1).f))
	case ir.OpFMul:
		cur.set(ni.dest, floatValue(get(0).f*get(1).f))
	case ir.OpFSub:
		cur.set(ni.dest, floatValue(get(0).f-get(1).f))
	case ir.OpFDiv:
		cur.set(ni.dest, floatValue(get(0).f/get(1).f))
	case ir.OpFEq:
		cur.set(ni.dest, boolValue(get(0).f == get(1).f))
	case ir.OpFLt:
		cur.set(ni.dest, boolValue(get(0).f < get(1).f))
	case ir.OpFGt:
		cur.set(ni.dest, boolValue(get(0).f > get(1).f))
	case ir.OpFLe:
		cur.set(ni.dest, boolValue(get(0).f <= get(1).f))
	case ir.OpFGe:
		cur.set(ni.dest, boolValue(get(0).f >= get(1).f))

	case ir.OpCall:
		callee, ok := it.funcs[v.Funcs[0]]
		if !ok {
			return brilerrors.RuntimeError{Code: brilerrors.ErrorFuncNotFound, Message: fmt.Sprintf("function %q is not defined in this program", v.Funcs[0])}
		}
		calleeNF := it.numFuncFor(callee)
		it.makeFuncArgs(env, callee, calleeNF, ni.args)
		res, _, err := it.execute(callee, calleeNF, env)
		env.pop()
		if err != nil {
			return err
		}
		env.current().set(ni.dest, res)

	case ir.OpPhi:
		if !lastLabelOK {
			return brilerrors.RuntimeError{Code: brilerrors.ErrorNoLastLabel, Message: "phi instruction ran with no preceding label"}
		}
		idx := -1
		for i, l := range v.Labels {
			if l == lastLabel {
				idx = i
				break
			}
		}
		if idx < 0 {
			return brilerrors.RuntimeError{Code: brilerrors.ErrorPhiMissingLabel, Message: fmt.Sprintf("phi has no argument for incoming edge %q", lastLabel)}
		}
		cur.set(ni.dest, get(idx))

	case ir.OpAlloc:
		amount := get(0).i
		if it.heap.shouldRunGC(amount) {
			it.heap.gc(env)
		}
		ptr, err := it.heap.alloc(amount)
		if err != nil {
			return err
		}
		cur.set(ni.dest, ptrValue(ptr))

	case ir.OpLoad:
		val, err := it.heap.read(get(0).ptr)
		if err != nil {
			return err
		}
		cur.set(ni.dest, val)

	case ir.OpPtrAdd:
		cur.set(ni.dest, ptrValue(get(0).ptr.add(get(1).i)))
	}
	return nil
}

// makeFuncArgs builds the new call frame for a callee: a dense Scope of
// the callee's variable count, with each declared parameter slot bound to
// the corresponding argument's current value, then pushes it.
func (it *Interpreter) makeFuncArgs(env *Environment, callee ir.Function, calleeNF numFunc, argSlots []int) {
	newScope := newScope(calleeNF.numVars)
	for i, paramSlot := range calleeNF.paramNums {
		newScope.set(paramSlot, env.current().get(argSlots[i]))
	}
	env.push(newScope)
}

// execEffectOp dispatches one Effect instruction. It returns (result,
// hasResult, nextBlock, err); nextBlock is -1 when the instruction
// doesn't redirect control flow (the caller's fallthrough successor, if
// any, still applies).
func (it *Interpreter) execEffectOp(fn ir.Function, env *Environment, v ir.EffectInstr, ni numInstr, succ []int) (Value, bool, int, error) {
	switch v.Op {
	case ir.OpJmp:
		return Value{}, false, succ[0], nil

	case ir.OpBr:
		cond := env.current().get(ni.args[0]).b
		idx := 1
		if cond {
			idx = 0
		}
		return Value{}, false, succ[idx], nil

	case ir.OpRet:
		if fn.ReturnType != nil {
			return env.current().get(ni.args[0]), true, -1, nil
		}
		return Value{}, false, -1, nil

	case ir.OpPrint:
		parts := make([]string, len(ni.args))
		for i, a := range ni.args {
			parts[i] = env.current().get(a).String()
		}
		it.writer(strings.Join(parts, " ") + "\n")
		return Value{}, false, -1, nil

	case ir.OpNop:
		return Value{}, false, -1, nil

	case ir.OpCallEff:
		callee, ok := it.funcs[v.Funcs[0]]
		if !ok {
			return Value{}, false, -1, brilerrors.RuntimeError{Code: brilerrors.ErrorFuncNotFound, Message: fmt.Sprintf("function %q is not defined in this program", v.Funcs[0])}
		}
		calleeNF := it.numFuncFor(callee)
		it.makeFuncArgs(env, callee, calleeNF, ni.args)
		_, _, err := it.execute(callee, calleeNF, env)
		env.pop()
		if err != nil {
			return Value{}, false, -1, err
		}
		return Value{}, false, -1, nil

	case ir.OpStore:
		ptr := env.current().get(ni.args[0]).ptr
		val := env.current().get(ni.args[1])
		if err := it.heap.write(ptr, val); err != nil {
			return Value{}, false, -1, err
		}
		return Value{}, false, -1, nil

	case ir.OpFree:
		ptr := env.current().get(ni.args[0]).ptr
		if err := it.heap.free(ptr); err != nil {
			return Value{}, false, -1, err
		}
		return Value{}, false, -1, nil

	case ir.OpSpeculate, ir.OpCommit, ir.OpGuard:
		panic(fmt.Sprintf("interp: %s is not implemented by this interpreter", v.Op))
	}
	return Value{}, false, -1, nil
}
