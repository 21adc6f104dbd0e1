package bytecode

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/aiscriptdev/aiscript/internal/lexer"
	"github.com/aiscriptdev/aiscript/internal/parser"
)

func TestDisassembleConstant(t *testing.T) {
	c := NewChunk("<test>")
	idx := c.AddConstant(NumberValue(42))
	c.Write(OpConstant, idx, 0, 1)

	out := Disassemble(c, "<test>")
	if !strings.Contains(out, "CONSTANT") || !strings.Contains(out, "42") {
		t.Errorf("Disassemble() = %q, want it to mention CONSTANT and 42", out)
	}
}

func TestDisassembleElidesRepeatedLineNumbers(t *testing.T) {
	c := NewChunk("<test>")
	c.Write(OpNil, 0, 0, 5)
	c.Write(OpPop, 0, 0, 5)
	c.Write(OpNil, 0, 0, 6)

	lines := strings.Split(strings.TrimRight(Disassemble(c, "<test>"), "\n"), "\n")
	if len(lines) != 4 { // header + 3 instructions
		t.Fatalf("got %d lines, want 4: %v", len(lines), lines)
	}
	if !strings.Contains(lines[2], "|") {
		t.Errorf("second instruction on the same line should elide its line number, got %q", lines[2])
	}
	if strings.Contains(lines[3], "|") {
		t.Errorf("third instruction changes line and should print it, got %q", lines[3])
	}
}

func TestDisassembleJumpShowsTarget(t *testing.T) {
	c := NewChunk("<test>")
	jmp := c.Write(OpJumpIfFalse, 0, 0, 1)
	c.Write(OpPop, 0, 0, 1)
	c.PatchJump(jmp)
	c.Write(OpNil, 0, 0, 1)

	out := DisassembleInstruction(c, jmp)
	if !strings.Contains(out, "-> 2") {
		t.Errorf("DisassembleInstruction(jump) = %q, want it to point at offset 2", out)
	}
}

func TestDisassembleLocalSlotOperand(t *testing.T) {
	c := NewChunk("<test>")
	c.Write(OpGetLocal, 3, 0, 1)

	out := DisassembleInstruction(c, 0)
	if !strings.Contains(out, "GET_LOCAL") || !strings.Contains(out, "3") {
		t.Errorf("DisassembleInstruction(local) = %q, want GET_LOCAL and slot 3", out)
	}
}

// TestDisassembleFunctionSnapshot pins the full text form of a small
// program's top-level chunk (the function's closure creation, its global
// definition and a call to it; the function body's own chunk is not
// rendered) against a recorded snapshot, in the style of go-dws's use of
// gkampitakis/go-snaps for regression coverage over generated text.
func TestDisassembleFunctionSnapshot(t *testing.T) {
	src := `
		fn classify(n) {
			if n < 0 {
				return "negative"
			}
			return "non-negative"
		}
		classify(-1)
	`
	l := lexer.New(src)
	p := parser.New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	chunk, errs := Compile(prog)
	if len(errs) > 0 {
		t.Fatalf("compile errors: %v", errs)
	}
	snaps.MatchSnapshot(t, Disassemble(chunk, "classify"))
}

func TestOpCodeStringUnknown(t *testing.T) {
	var op OpCode = 250
	if got := op.String(); got != "UNKNOWN" {
		t.Errorf("String() = %q, want UNKNOWN", got)
	}
}
