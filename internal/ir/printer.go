package ir

import (
	"fmt"
	"strings"
)

// Print returns a disassembly-style textual rendering of a Program,
// matching the donor's "pretty-print the thing, don't round-trip it"
// intent for `blocks`/`cfg` style human-facing output.
func Print(p Program) string {
	var b strings.Builder
	for i, fn := range p.Functions {
		if i > 0 {
			b.WriteString("\n")
		}
		printFunction(&b, fn)
	}
	return b.String()
}

func printFunction(b *strings.Builder, fn Function) {
	b.WriteString("@" + fn.Name + "(")
	for i, p := range fn.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s: %s", p.Name, p.Type)
	}
	b.WriteString(")")
	if fn.ReturnType != nil {
		fmt.Fprintf(b, ": %s", fn.ReturnType)
	}
	b.WriteString(" {\n")
	for _, item := range fn.Code {
		printItem(b, item)
	}
	b.WriteString("}\n")
}

func printItem(b *strings.Builder, item CodeItem) {
	switch v := item.(type) {
	case Label:
		fmt.Fprintf(b, ".%s:\n", v.Name)
	case ConstantInstr:
		fmt.Fprintf(b, "  %s\n", v.String())
	case ValueInstr:
		fmt.Fprintf(b, "  %s\n", v.String())
	case EffectInstr:
		fmt.Fprintf(b, "  %s\n", v.String())
	}
}

// CountOp returns the number of Value instructions in p whose opcode is op
// — the primitive the literal "Program contains N add instructions" CLI
// scenario is built on.
func CountOp(p Program, op ValueOp) int {
	n := 0
	for _, fn := range p.Functions {
		for _, item := range fn.Code {
			if v, ok := item.(ValueInstr); ok && v.Op == op {
				n++
			}
		}
	}
	return n
}
