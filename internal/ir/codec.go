package ir

import (
	"encoding/json"
	"fmt"
)

// rawType is the loosely-typed wire shape of a Type: either the bare
// string "int"/"bool"/"float", or {"ptr": <rawType>}.
type rawType struct {
	prim string
	ptr  *rawType
}

func (r *rawType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.prim = s
		return nil
	}
	var obj struct {
		Ptr *rawType `json:"ptr"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("ir: decode type: %w", err)
	}
	r.ptr = obj.Ptr
	return nil
}

func (r *rawType) MarshalJSON() ([]byte, error) {
	if r.ptr != nil {
		return json.Marshal(struct {
			Ptr *rawType `json:"ptr"`
		}{r.ptr})
	}
	return json.Marshal(r.prim)
}

func (r *rawType) resolve() (Type, error) {
	if r == nil {
		return nil, nil
	}
	if r.ptr != nil {
		elem, err := r.ptr.resolve()
		if err != nil {
			return nil, err
		}
		return PointerType{Elem: elem}, nil
	}
	switch r.prim {
	case "int":
		return TInt, nil
	case "bool":
		return TBool, nil
	case "float":
		return TFloat, nil
	default:
		return nil, fmt.Errorf("ir: unknown primitive type %q", r.prim)
	}
}

func fromType(t Type) *rawType {
	if t == nil {
		return nil
	}
	if p, ok := t.(PointerType); ok {
		return &rawType{ptr: fromType(p.Elem)}
	}
	return &rawType{prim: t.String()}
}

// decodeLiteral decodes any of the three JSON literal shapes (number, bool,
// float) based on the constant's declared type, since bare JSON numbers
// don't distinguish int from float.
func decodeLiteral(raw json.RawMessage, typ Type) (Literal, error) {
	prim, _ := typ.(PrimType)
	switch prim {
	case TBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Literal{}, fmt.Errorf("ir: decode bool literal: %w", err)
		}
		return BoolLit(b), nil
	case TFloat:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return Literal{}, fmt.Errorf("ir: decode float literal: %w", err)
		}
		return FloatLit(f), nil
	default:
		var i int64
		if err := json.Unmarshal(raw, &i); err == nil {
			return IntLit(i), nil
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return BoolLit(b), nil
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return Literal{}, fmt.Errorf("ir: decode literal: %w", err)
		}
		return FloatLit(f), nil
	}
}

func encodeLiteral(l Literal) interface{} {
	switch l.Kind {
	case KindInt:
		return l.Int
	case KindBool:
		return l.Bool
	case KindFloat:
		return l.Flt
	default:
		return nil
	}
}

// rawCode is the union wire shape of a CodeItem: a Label ({"label": ...})
// or an Instruction ({"op": ...} with op=="const" for constants, any
// dest-bearing op for value instructions, else an effect instruction).
type rawCode struct {
	Label     string           `json:"label,omitempty"`
	Op        string           `json:"op,omitempty"`
	Dest      string           `json:"dest,omitempty"`
	Type      *rawType         `json:"type,omitempty"`
	Value     json.RawMessage  `json:"value,omitempty"`
	Args      []string         `json:"args,omitempty"`
	Funcs     []string         `json:"funcs,omitempty"`
	Labels    []string         `json:"labels,omitempty"`
	Pos       *rawPos          `json:"pos,omitempty"`
}

type rawPos struct {
	Filename string `json:"filename,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"col"`
}

func (p *rawPos) resolve() Position {
	if p == nil {
		return Position{}
	}
	return Position{Filename: p.Filename, Line: p.Line, Column: p.Column}
}

func fromPos(pos Position) *rawPos {
	if !pos.HasPosition() {
		return nil
	}
	return &rawPos{Filename: pos.Filename, Line: pos.Line, Column: pos.Column}
}

func (r rawCode) resolve() (CodeItem, error) {
	if r.Label != "" {
		return Label{Name: r.Label, Pos: r.Pos.resolve()}, nil
	}
	if r.Op == string(OpConst) {
		typ, err := r.Type.resolve()
		if err != nil {
			return nil, err
		}
		val, err := decodeLiteral(r.Value, typ)
		if err != nil {
			return nil, err
		}
		return ConstantInstr{Dest: r.Dest, Type: typ, Value: val, Pos: r.Pos.resolve()}, nil
	}
	if r.Dest != "" {
		typ, err := r.Type.resolve()
		if err != nil {
			return nil, err
		}
		return ValueInstr{
			Dest: r.Dest, Type: typ, Op: ValueOp(r.Op),
			Args: r.Args, Funcs: r.Funcs, Labels: r.Labels, Pos: r.Pos.resolve(),
		}, nil
	}
	return EffectInstr{
		Op: EffectOp(r.Op), Args: r.Args, Funcs: r.Funcs, Labels: r.Labels, Pos: r.Pos.resolve(),
	}, nil
}

func fromCodeItem(c CodeItem) rawCode {
	switch v := c.(type) {
	case Label:
		return rawCode{Label: v.Name, Pos: fromPos(v.Pos)}
	case ConstantInstr:
		raw, _ := json.Marshal(encodeLiteral(v.Value))
		return rawCode{Op: string(OpConst), Dest: v.Dest, Type: fromType(v.Type), Value: raw, Pos: fromPos(v.Pos)}
	case ValueInstr:
		return rawCode{
			Op: string(v.Op), Dest: v.Dest, Type: fromType(v.Type),
			Args: v.Args, Funcs: v.Funcs, Labels: v.Labels, Pos: fromPos(v.Pos),
		}
	case EffectInstr:
		return rawCode{Op: string(v.Op), Args: v.Args, Funcs: v.Funcs, Labels: v.Labels, Pos: fromPos(v.Pos)}
	default:
		panic(fmt.Sprintf("ir: unknown CodeItem %T", c))
	}
}

type rawParam struct {
	Name string   `json:"name"`
	Type *rawType `json:"type"`
}

type rawFunction struct {
	Name   string     `json:"name"`
	Args   []rawParam `json:"args,omitempty"`
	Type   *rawType   `json:"type,omitempty"`
	Instrs []rawCode  `json:"instrs"`
	Pos    *rawPos    `json:"pos,omitempty"`
}

type rawProgram struct {
	Functions []rawFunction `json:"functions"`
}

func decodeProgram(data []byte) (Program, error) {
	var rp rawProgram
	if err := json.Unmarshal(data, &rp); err != nil {
		return Program{}, fmt.Errorf("ir: decode program: %w", err)
	}
	prog := Program{Functions: make([]Function, 0, len(rp.Functions))}
	for _, rf := range rp.Functions {
		fn := Function{Name: rf.Name, Pos: rf.Pos.resolve()}
		for _, rp := range rf.Args {
			typ, err := rp.Type.resolve()
			if err != nil {
				return Program{}, err
			}
			fn.Params = append(fn.Params, Param{Name: rp.Name, Type: typ})
		}
		retType, err := rf.Type.resolve()
		if err != nil {
			return Program{}, err
		}
		fn.ReturnType = retType
		for _, rc := range rf.Instrs {
			item, err := rc.resolve()
			if err != nil {
				return Program{}, fmt.Errorf("ir: function %s: %w", fn.Name, err)
			}
			fn.Code = append(fn.Code, item)
		}
		prog.Functions = append(prog.Functions, fn)
	}
	return prog, nil
}

// DecodeInstruction decodes a single instruction from its flat JSON
// instruction-object shape (the same shape a Code item uses, minus the
// Label alternative) — used by internal/jit to parse trace elements from
// /tmp/trace.txt, which are always instructions, never labels.
func DecodeInstruction(data []byte) (Instruction, error) {
	var rc rawCode
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("ir: decode instruction: %w", err)
	}
	item, err := rc.resolve()
	if err != nil {
		return nil, err
	}
	instr, ok := item.(Instruction)
	if !ok {
		return nil, fmt.Errorf("ir: expected an instruction, found a label")
	}
	return instr, nil
}

// EncodeInstruction is the mirror of DecodeInstruction.
func EncodeInstruction(instr Instruction) ([]byte, error) {
	return json.Marshal(fromCodeItem(instr.(CodeItem)))
}

func encodeProgram(p Program) ([]byte, error) {
	rp := rawProgram{Functions: make([]rawFunction, 0, len(p.Functions))}
	for _, fn := range p.Functions {
		rf := rawFunction{Name: fn.Name, Pos: fromPos(fn.Pos)}
		for _, param := range fn.Params {
			rf.Args = append(rf.Args, rawParam{Name: param.Name, Type: fromType(param.Type)})
		}
		rf.Type = fromType(fn.ReturnType)
		for _, item := range fn.Code {
			rf.Instrs = append(rf.Instrs, fromCodeItem(item))
		}
		rp.Functions = append(rp.Functions, rf)
	}
	return json.Marshal(rp)
}
