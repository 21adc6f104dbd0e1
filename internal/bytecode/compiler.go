package bytecode

import (
	"fmt"

	"github.com/aiscriptdev/aiscript/internal/ast"
	"github.com/aiscriptdev/aiscript/internal/lexer"
)

// CompileError is a host-visible, source-positioned compile-time
// diagnostic (spec §7: compile errors never reach script code).
type CompileError struct {
	Message string
	Pos     lexer.Position
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

type functionKind int

const (
	kindScript functionKind = iota
	kindFunction
	kindMethod
	kindAIFunction
)

// local is a compile-time record of a stack-resident binding.
type local struct {
	name       string
	depth      int
	isCaptured bool
	isConst    bool
}

// loopContext tracks break/continue patch sites for the innermost loop
// being compiled.
type loopContext struct {
	breaks    []int
	continueAt int
	enclosing *loopContext
}

// classContext tracks the class (or agent, treated as a class for
// method-compilation purposes) currently being compiled, so `self` and
// `super` resolve correctly inside method bodies.
type classContext struct {
	hasSuperclass bool
	enclosing     *classContext
}

// Compiler performs a single pass from *ast.Program to a *Chunk tree,
// one Chunk per function literal, linked by OpClosure constant indices.
// Compiler instances nest: compiling a function literal pushes a new
// Compiler referencing its enclosing one, mirroring go-dws's
// compiler_functions.go forward-reference handling.
type Compiler struct {
	enclosing *Compiler
	chunk     *Chunk
	kind      functionKind

	locals     []local
	maxLocals  int
	upvalues   []UpvalueDef
	scopeDepth int

	loop  *loopContext
	class *classContext

	errors []*CompileError

	// moduleResolver resolves `use` paths to a ModuleObject constant at
	// compile time is NOT done here; OpImportModule defers resolution to
	// the VM/module manager at run time, so only the path string is
	// embedded as a constant.
}

// NewCompiler creates a root (script-level) compiler.
func NewCompiler() *Compiler {
	c := &Compiler{chunk: NewChunk("<script>"), kind: kindScript}
	c.locals = append(c.locals, local{name: "", depth: 0}) // slot 0 reserved for the script's implicit self-less frame
	c.maxLocals = 1
	return c
}

// Compile compiles a parsed program into a top-level Chunk.
func Compile(program *ast.Program) (*Chunk, []*CompileError) {
	c := NewCompiler()
	for i, stmt := range program.Statements {
		// A trailing expression statement keeps its value on the stack:
		// it is the result OpHalt hands back from VM.Run.
		if es, ok := stmt.(*ast.ExpressionStatement); ok && i == len(program.Statements)-1 {
			c.compileExpression(es.Expression)
			continue
		}
		c.compileStatement(stmt)
	}
	c.emit(OpHalt, 0, 0, 0)
	c.chunk.LocalCount = c.maxLocals
	return c.chunk, c.errors
}

func (c *Compiler) errorf(pos lexer.Position, format string, args ...interface{}) {
	c.errors = append(c.errors, &CompileError{Message: fmt.Sprintf(format, args...), Pos: pos})
}

func (c *Compiler) emit(op OpCode, a, b uint16, line int) int {
	return c.chunk.Write(op, a, b, line)
}

func (c *Compiler) emitConstant(v Value, line int) {
	idx := c.chunk.AddConstant(v)
	c.emit(OpConstant, idx, 0, line)
}

func (c *Compiler) beginScope() { c.scopeDepth++ }

// endScope drops every local declared in the scope being closed. Locals
// live in the frame's separate locals array (not on the operand stack),
// so there is nothing to pop here; a captured local still needs its
// upvalue closed before its slot is logically gone.
func (c *Compiler) endScope(line int) {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		last := c.locals[len(c.locals)-1]
		if last.isCaptured {
			c.emit(OpCloseUpvalue, uint16(len(c.locals)-1), 0, line)
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// declareLocal reserves (or, within the same scope, re-binds) a local
// slot and returns its index. Callers that declare a local after
// pushing its initial value onto the stack still need to emit an
// explicit OpSetLocal/OpPop pair (see defineVariable) since the slot
// and the stack are separate.
func (c *Compiler) declareLocal(name string, isConst bool) int {
	if c.scopeDepth == 0 {
		return -1 // globals are looked up by name, not slot
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].depth < c.scopeDepth {
			break
		}
		if c.locals[i].name == name {
			c.locals[i].isConst = isConst // shadowing within the same scope re-binds
			return i
		}
	}
	c.locals = append(c.locals, local{name: name, depth: c.scopeDepth, isConst: isConst})
	if len(c.locals) > c.maxLocals {
		c.maxLocals = len(c.locals)
	}
	return len(c.locals) - 1
}

func (c *Compiler) resolveLocal(name string) (int, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return i, true
		}
	}
	return 0, false
}

func (c *Compiler) resolveUpvalue(name string) (int, bool) {
	if c.enclosing == nil {
		return 0, false
	}
	if idx, ok := c.enclosing.resolveLocal(name); ok {
		c.enclosing.locals[idx].isCaptured = true
		return c.addUpvalue(uint8(idx), true), true
	}
	if idx, ok := c.enclosing.resolveUpvalue(name); ok {
		return c.addUpvalue(uint8(idx), false), true
	}
	return 0, false
}

func (c *Compiler) addUpvalue(index uint8, fromLocal bool) int {
	for i, u := range c.upvalues {
		if u.Index == index && u.FromLocal == fromLocal {
			return i
		}
	}
	c.upvalues = append(c.upvalues, UpvalueDef{Index: index, FromLocal: fromLocal})
	return len(c.upvalues) - 1
}

// inAIContext reports whether the innermost enclosing function is
// `ai fn`, used to validate `prompt` legality at compile time.
func (c *Compiler) inAIContext() bool {
	for cc := c; cc != nil; cc = cc.enclosing {
		if cc.kind == kindAIFunction {
			return true
		}
		if cc.kind == kindFunction || cc.kind == kindMethod {
			return false
		}
	}
	return false
}
