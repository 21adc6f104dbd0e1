package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders every instruction in a chunk as human-readable
// text, used by `aiscript compile --disassemble` and golden-tested with
// go-snaps.
func Disassemble(c *Chunk, name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	for offset := range c.Code {
		sb.WriteString(DisassembleInstruction(c, offset))
		sb.WriteString("\n")
	}
	return sb.String()
}

// DisassembleInstruction renders a single instruction at offset, one
// line, with its line number (elided with "|" when unchanged from the
// previous instruction, matching go-dws's disassembler convention).
func DisassembleInstruction(c *Chunk, offset int) string {
	inst := c.Code[offset]
	var sb strings.Builder
	fmt.Fprintf(&sb, "%04d ", offset)
	if offset > 0 && c.Code[offset-1].Line == inst.Line {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(&sb, "%4d ", inst.Line)
	}

	switch inst.Op {
	case OpConstant:
		fmt.Fprintf(&sb, "%-16s %4d '%s'", inst.Op, inst.A, constantString(c, inst.A))
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue:
		fmt.Fprintf(&sb, "%-16s %4d", inst.Op, inst.A)
	case OpGetGlobal, OpSetGlobal, OpDefineGlobal:
		fmt.Fprintf(&sb, "%-16s %4d '%s'", inst.Op, inst.A, constantString(c, inst.A))
	case OpJump, OpJumpIfFalse, OpJumpIfTrue:
		fmt.Fprintf(&sb, "%-16s %4d -> %d", inst.Op, inst.B, offset+1+int(inst.B))
	case OpLoop:
		fmt.Fprintf(&sb, "%-16s %4d -> %d", inst.Op, inst.B, offset+1-int(inst.B))
	case OpCall:
		fmt.Fprintf(&sb, "%-16s pos=%d kw=%d", inst.Op, inst.A, inst.B)
	case OpInvoke, OpSuperInvoke:
		fmt.Fprintf(&sb, "%-16s '%s' (%d args)", inst.Op, constantString(c, inst.A), inst.B)
	case OpGetProperty, OpSetProperty, OpGetSuper, OpClass, OpEnum, OpAgent:
		fmt.Fprintf(&sb, "%-16s %4d '%s'", inst.Op, inst.A, constantString(c, inst.A))
	case OpClosure:
		fmt.Fprintf(&sb, "%-16s %4d", inst.Op, inst.A)
	case OpMakeArray, OpMakeMap, OpPopN:
		fmt.Fprintf(&sb, "%-16s %4d", inst.Op, inst.A)
	case OpImportModule:
		fmt.Fprintf(&sb, "%-16s %4d '%s'", inst.Op, inst.A, constantString(c, inst.A))
	case OpGetModuleVar:
		fmt.Fprintf(&sb, "%-16s %4d.%d", inst.Op, inst.A, inst.B)
	default:
		fmt.Fprintf(&sb, "%-16s", inst.Op)
	}
	return sb.String()
}

func constantString(c *Chunk, idx uint16) string {
	if int(idx) >= len(c.Constants) {
		return "?"
	}
	return c.Constants[idx].String()
}
