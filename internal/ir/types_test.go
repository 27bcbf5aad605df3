package ir

import "testing"

func TestLiteralString(t *testing.T) {
	if IntLit(42).String() != "42" {
		t.Errorf("int literal stringify wrong")
	}
	if BoolLit(true).String() != "true" {
		t.Errorf("bool literal stringify wrong")
	}
}

func TestPointerTypeString(t *testing.T) {
	pt := PointerType{Elem: TInt}
	if pt.String() != "ptr<int>" {
		t.Errorf("want ptr<int>, got %s", pt.String())
	}
}

func TestCommutativeValueOps(t *testing.T) {
	if !CommutativeValueOps[OpAdd] || !CommutativeValueOps[OpMul] {
		t.Errorf("add/mul should be commutative")
	}
	if CommutativeValueOps[OpSub] {
		t.Errorf("sub should not be commutative")
	}
}

func TestEffectInstrIsTerminator(t *testing.T) {
	if !(EffectInstr{Op: OpJmp}).IsTerminator() {
		t.Errorf("jmp should be a terminator")
	}
	if (EffectInstr{Op: OpPrint}).IsTerminator() {
		t.Errorf("print should not be a terminator")
	}
}
