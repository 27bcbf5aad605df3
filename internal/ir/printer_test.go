package ir

import (
	"strings"
	"testing"
)

func TestCountOpAddInstructions(t *testing.T) {
	prog, err := DecodeProgram([]byte(sampleProgramJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := CountOp(prog, OpAdd); got != 1 {
		t.Fatalf("want 1 add instruction, got %d", got)
	}
}

func TestPrintIncludesFunctionSignature(t *testing.T) {
	prog, err := DecodeProgram([]byte(sampleProgramJSON))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out := Print(prog)
	if !strings.Contains(out, "@main(") {
		t.Fatalf("printed output missing function header: %s", out)
	}
	if !strings.Contains(out, "add") {
		t.Fatalf("printed output missing add instruction: %s", out)
	}
}
