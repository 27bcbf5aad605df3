package ir

import "testing"

const sampleProgramJSON = `{
  "functions": [
    {
      "name": "main",
      "instrs": [
        {"op": "const", "dest": "a", "type": "int", "value": 1},
        {"op": "const", "dest": "b", "type": "int", "value": 2},
        {"op": "add", "dest": "c", "type": "int", "args": ["a", "b"]},
        {"op": "print", "args": ["c"]},
        {"op": "ret", "args": []}
      ]
    }
  ]
}`

func TestDecodeProgramBasic(t *testing.T) {
	prog, err := DecodeProgram([]byte(sampleProgramJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(prog.Functions) != 1 {
		t.Fatalf("want 1 function, got %d", len(prog.Functions))
	}
	main := prog.Functions[0]
	if main.Name != "main" {
		t.Fatalf("want main, got %s", main.Name)
	}
	if len(main.Code) != 5 {
		t.Fatalf("want 5 code items, got %d", len(main.Code))
	}
	add, ok := main.Code[2].(ValueInstr)
	if !ok {
		t.Fatalf("want ValueInstr at index 2, got %T", main.Code[2])
	}
	if add.Op != OpAdd || add.Dest != "c" || len(add.Args) != 2 {
		t.Fatalf("unexpected add instr: %+v", add)
	}
}

func TestRoundtrip(t *testing.T) {
	prog, err := DecodeProgram([]byte(sampleProgramJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	encoded, err := EncodeProgram(prog)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	prog2, err := DecodeProgram(encoded)
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if len(prog.Functions) != len(prog2.Functions) {
		t.Fatalf("function count mismatch after roundtrip")
	}
	if len(prog.Functions[0].Code) != len(prog2.Functions[0].Code) {
		t.Fatalf("code length mismatch after roundtrip")
	}
}

func TestDecodePointerType(t *testing.T) {
	const doc = `{"functions":[{"name":"f","args":[{"name":"p","type":{"ptr":"int"}}],"instrs":[{"op":"ret","args":[]}]}]}`
	prog, err := DecodeProgram([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	param := prog.Functions[0].Params[0]
	ptrType, ok := param.Type.(PointerType)
	if !ok {
		t.Fatalf("want PointerType, got %T", param.Type)
	}
	if ptrType.Elem.String() != "int" {
		t.Fatalf("want ptr<int>, got ptr<%s>", ptrType.Elem)
	}
}

func TestDecodeFloatLiteral(t *testing.T) {
	const doc = `{"functions":[{"name":"f","instrs":[{"op":"const","dest":"x","type":"float","value":3.5}]}]}`
	prog, err := DecodeProgram([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	c := prog.Functions[0].Code[0].(ConstantInstr)
	if c.Value.Kind != KindFloat || c.Value.Flt != 3.5 {
		t.Fatalf("unexpected literal: %+v", c.Value)
	}
}
