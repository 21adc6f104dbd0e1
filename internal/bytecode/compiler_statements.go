package bytecode

import (
	"github.com/aiscriptdev/aiscript/internal/ast"
)

func (c *Compiler) compileStatement(stmt ast.Statement) {
	if stmt == nil {
		return
	}
	line := stmt.Pos().Line
	switch s := stmt.(type) {
	case *ast.LetStatement:
		c.compileLet(s, line)
	case *ast.ConstStatement:
		c.compileConst(s, line)
	case *ast.ExpressionStatement:
		c.compileExpression(s.Expression)
		c.emit(OpPop, 0, 0, line)
	case *ast.AssignmentStatement:
		c.compileAssignment(s, line)
	case *ast.BlockStatement:
		c.beginScope()
		for _, inner := range s.Statements {
			c.compileStatement(inner)
		}
		c.endScope(line)
	case *ast.IfStatement:
		c.compileIf(s, line)
	case *ast.WhileStatement:
		c.compileWhile(s, line)
	case *ast.ForStatement:
		c.compileFor(s, line)
	case *ast.ReturnStatement:
		if s.ReturnValue != nil {
			c.compileExpression(s.ReturnValue)
		} else {
			c.emit(OpNil, 0, 0, line)
		}
		c.emit(OpReturn, 0, 0, line)
	case *ast.BreakStatement:
		if c.loop == nil {
			c.errorf(s.Pos(), "break outside of a loop")
			return
		}
		jmp := c.emit(OpJump, 0, 0, line)
		c.loop.breaks = append(c.loop.breaks, jmp)
	case *ast.ContinueStatement:
		if c.loop == nil {
			c.errorf(s.Pos(), "continue outside of a loop")
			return
		}
		back := len(c.chunk.Code) - c.loop.continueAt + 1
		c.emit(OpLoop, 0, uint16(back), line)
	case *ast.PromptStatement:
		if !c.inAIContext() {
			c.errorf(s.Pos(), "prompt is only legal inside an 'ai fn'")
			return
		}
		c.compileExpression(s.Value)
		c.emit(OpPrompt, 0, 0, line)
		c.emit(OpPop, 0, 0, line)
	case *ast.ModuleUseStatement:
		c.compileUse(s, line)
	case *ast.FunctionDeclaration:
		c.compileFunctionDeclaration(s)
	case *ast.ClassDeclaration:
		c.compileClassDeclaration(s)
	case *ast.EnumDeclaration:
		c.compileEnumDeclaration(s)
	case *ast.AgentDeclaration:
		c.compileAgentDeclaration(s)
	default:
		c.errorf(stmt.Pos(), "unsupported statement node %T", stmt)
	}
}

func (c *Compiler) compileLet(s *ast.LetStatement, line int) {
	if s.Value != nil {
		c.compileExpression(s.Value)
	} else {
		c.emit(OpNil, 0, 0, line)
	}
	c.defineVariable(s.Name.Value, false, line)
}

func (c *Compiler) compileConst(s *ast.ConstStatement, line int) {
	c.compileExpression(s.Value)
	c.defineVariable(s.Name.Value, true, line)
}

// defineVariable binds the value currently on top of the stack to name.
// At global scope that value is consumed by OpDefineGlobal; at local
// scope it must be copied into the new local's slot in frame.locals
// (a separate array from the operand stack) and then discarded.
func (c *Compiler) defineVariable(name string, isConst bool, line int) {
	if c.scopeDepth > 0 {
		slot := c.declareLocal(name, isConst)
		c.emit(OpSetLocal, uint16(slot), 0, line)
		c.emit(OpPop, 0, 0, line)
		return
	}
	nameIdx := c.chunk.AddConstant(StringValue(name))
	c.emit(OpDefineGlobal, nameIdx, 0, line)
}

func (c *Compiler) compileAssignment(s *ast.AssignmentStatement, line int) {
	valueOf := func() {
		if s.Operator == "=" {
			c.compileExpression(s.Value)
			return
		}
		c.compileExpression(s.Target)
		c.compileExpression(s.Value)
		switch s.Operator {
		case "+=":
			c.emit(OpAdd, 0, 0, line)
		case "-=":
			c.emit(OpSubtract, 0, 0, line)
		case "*=":
			c.emit(OpMultiply, 0, 0, line)
		case "/=":
			c.emit(OpDivide, 0, 0, line)
		}
	}

	switch target := s.Target.(type) {
	case *ast.Identifier:
		valueOf()
		if idx, ok := c.resolveLocal(target.Value); ok {
			if c.locals[idx].isConst {
				c.errorf(s.Pos(), "cannot assign to const %q", target.Value)
			}
			c.emit(OpSetLocal, uint16(idx), 0, line)
			c.emit(OpPop, 0, 0, line)
			return
		}
		if idx, ok := c.resolveUpvalue(target.Value); ok {
			c.emit(OpSetUpvalue, uint16(idx), 0, line)
			c.emit(OpPop, 0, 0, line)
			return
		}
		nameIdx := c.chunk.AddConstant(StringValue(target.Value))
		c.emit(OpSetGlobal, nameIdx, 0, line)
		c.emit(OpPop, 0, 0, line)
	case *ast.DotExpression:
		c.compileExpression(target.Object)
		valueOf()
		nameIdx := c.chunk.AddConstant(StringValue(target.Property.Value))
		c.emit(OpSetProperty, nameIdx, 0, line)
		c.emit(OpPop, 0, 0, line)
	case *ast.IndexExpression:
		c.compileExpression(target.Left)
		c.compileExpression(target.Index)
		valueOf()
		c.emit(OpIndexSet, 0, 0, line)
		c.emit(OpPop, 0, 0, line)
	default:
		c.errorf(s.Pos(), "invalid assignment target %T", s.Target)
	}
}

func (c *Compiler) compileIf(s *ast.IfStatement, line int) {
	c.compileExpression(s.Condition)
	thenJump := c.emit(OpJumpIfFalse, 0, 0, line)
	c.emit(OpPop, 0, 0, line)
	c.compileStatement(s.Consequence)

	if s.Alternative == nil {
		c.chunk.PatchJump(thenJump)
		return
	}
	elseJump := c.emit(OpJump, 0, 0, line)
	c.chunk.PatchJump(thenJump)
	c.emit(OpPop, 0, 0, line)
	c.compileStatement(s.Alternative)
	c.chunk.PatchJump(elseJump)
}

func (c *Compiler) compileWhile(s *ast.WhileStatement, line int) {
	loopStart := len(c.chunk.Code)
	c.loop = &loopContext{continueAt: loopStart, enclosing: c.loop}

	c.compileExpression(s.Condition)
	exitJump := c.emit(OpJumpIfFalse, 0, 0, line)
	c.emit(OpPop, 0, 0, line)
	c.compileStatement(s.Body)
	back := len(c.chunk.Code) - loopStart + 1
	c.emit(OpLoop, 0, uint16(back), line)

	c.chunk.PatchJump(exitJump)
	c.emit(OpPop, 0, 0, line)
	for _, b := range c.loop.breaks {
		c.chunk.PatchJump(b)
	}
	c.loop = c.loop.enclosing
}

// compileFor lowers `for x in iterable { ... }`. A literal `a..b` range
// is compiled as a counting loop directly over the bounds (spec §4.4:
// the end is exclusive); anything else is compiled as an index-driven
// while loop over the iterable's elements via its `len` method.
func (c *Compiler) compileFor(s *ast.ForStatement, line int) {
	if r, ok := s.Iterable.(*ast.RangeExpression); ok {
		c.compileForRange(s, r, line)
		return
	}
	c.beginScope()

	c.compileExpression(s.Iterable)
	iterIdx := c.declareLocal("$iter", false)
	c.emit(OpSetLocal, uint16(iterIdx), 0, line)
	c.emit(OpPop, 0, 0, line)

	c.emitConstant(NumberValue(0), line)
	idxIdx := c.declareLocal("$i", false)
	c.emit(OpSetLocal, uint16(idxIdx), 0, line)
	c.emit(OpPop, 0, 0, line)

	loopStart := len(c.chunk.Code)
	c.loop = &loopContext{continueAt: loopStart, enclosing: c.loop}

	// condition: $i < len($iter)
	c.emit(OpGetLocal, uint16(idxIdx), 0, line)
	c.emit(OpGetLocal, uint16(iterIdx), 0, line)
	lenIdx := c.chunk.AddConstant(StringValue("len"))
	c.emit(OpInvoke, lenIdx, 0, line)
	c.emit(OpLess, 0, 0, line)
	exitJump := c.emit(OpJumpIfFalse, 0, 0, line)
	c.emit(OpPop, 0, 0, line)

	c.beginScope()
	c.emit(OpGetLocal, uint16(iterIdx), 0, line)
	c.emit(OpGetLocal, uint16(idxIdx), 0, line)
	c.emit(OpIndexGet, 0, 0, line)
	loopVarIdx := c.declareLocal(s.Name.Value, false)
	c.emit(OpSetLocal, uint16(loopVarIdx), 0, line)
	c.emit(OpPop, 0, 0, line)
	for _, inner := range s.Body.Statements {
		c.compileStatement(inner)
	}
	c.endScope(line)

	// $i += 1
	c.emit(OpGetLocal, uint16(idxIdx), 0, line)
	c.emitConstant(NumberValue(1), line)
	c.emit(OpAdd, 0, 0, line)
	c.emit(OpSetLocal, uint16(idxIdx), 0, line)
	c.emit(OpPop, 0, 0, line)

	back := len(c.chunk.Code) - loopStart + 1
	c.emit(OpLoop, 0, uint16(back), line)
	c.chunk.PatchJump(exitJump)
	c.emit(OpPop, 0, 0, line)
	for _, b := range c.loop.breaks {
		c.chunk.PatchJump(b)
	}
	c.loop = c.loop.enclosing

	c.endScope(line)
}

// compileForRange lowers `for x in a..b { ... }` into a counting loop
// over the bounds directly, without materializing an array: $i and
// $end hold the bounds, and x is re-bound to $i's value each iteration
// so mutating x in the body never perturbs the loop's own counter.
func (c *Compiler) compileForRange(s *ast.ForStatement, r *ast.RangeExpression, line int) {
	c.beginScope()

	c.compileExpression(r.Start)
	idxIdx := c.declareLocal("$i", false)
	c.emit(OpSetLocal, uint16(idxIdx), 0, line)
	c.emit(OpPop, 0, 0, line)

	c.compileExpression(r.End)
	endIdx := c.declareLocal("$end", false)
	c.emit(OpSetLocal, uint16(endIdx), 0, line)
	c.emit(OpPop, 0, 0, line)

	loopStart := len(c.chunk.Code)
	c.loop = &loopContext{continueAt: loopStart, enclosing: c.loop}

	c.emit(OpGetLocal, uint16(idxIdx), 0, line)
	c.emit(OpGetLocal, uint16(endIdx), 0, line)
	c.emit(OpLess, 0, 0, line)
	exitJump := c.emit(OpJumpIfFalse, 0, 0, line)
	c.emit(OpPop, 0, 0, line)

	c.beginScope()
	c.emit(OpGetLocal, uint16(idxIdx), 0, line)
	loopVarIdx := c.declareLocal(s.Name.Value, false)
	c.emit(OpSetLocal, uint16(loopVarIdx), 0, line)
	c.emit(OpPop, 0, 0, line)
	for _, inner := range s.Body.Statements {
		c.compileStatement(inner)
	}
	c.endScope(line)

	c.emit(OpGetLocal, uint16(idxIdx), 0, line)
	c.emitConstant(NumberValue(1), line)
	c.emit(OpAdd, 0, 0, line)
	c.emit(OpSetLocal, uint16(idxIdx), 0, line)
	c.emit(OpPop, 0, 0, line)

	back := len(c.chunk.Code) - loopStart + 1
	c.emit(OpLoop, 0, uint16(back), line)
	c.chunk.PatchJump(exitJump)
	c.emit(OpPop, 0, 0, line)
	for _, b := range c.loop.breaks {
		c.chunk.PatchJump(b)
	}
	c.loop = c.loop.enclosing

	c.endScope(line)
}

func (c *Compiler) compileUse(s *ast.ModuleUseStatement, line int) {
	pathIdx := c.chunk.AddConstant(StringValue(s.Path))
	c.emit(OpImportModule, pathIdx, 0, line)
	name := s.Alias
	if name == "" {
		name = moduleDefaultBinding(s.Path)
	}
	c.defineVariable(name, true, line)
}

func moduleDefaultBinding(path string) string {
	last := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			last = path[i+1:]
			break
		}
	}
	return last
}
