package bytecode

import (
	"github.com/aiscriptdev/aiscript/internal/ast"
)

func (c *Compiler) compileExpression(expr ast.Expression) {
	if expr == nil {
		return
	}
	line := expr.Pos().Line
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		c.emitConstant(NumberValue(e.Value), line)
	case *ast.StringLiteral:
		c.emitConstant(StringValue(e.Value), line)
	case *ast.BooleanLiteral:
		if e.Value {
			c.emit(OpTrue, 0, 0, line)
		} else {
			c.emit(OpFalse, 0, 0, line)
		}
	case *ast.NilLiteral:
		c.emit(OpNil, 0, 0, line)
	case *ast.Identifier:
		c.compileIdentifierGet(e.Value, line)
	case *ast.SelfExpression:
		if idx, ok := c.resolveLocal("self"); ok {
			c.emit(OpGetLocal, uint16(idx), 0, line)
		} else if idx, ok := c.resolveUpvalue("self"); ok {
			c.emit(OpGetUpvalue, uint16(idx), 0, line)
		} else {
			c.errorf(e.Pos(), "'self' used outside of a method")
		}
	case *ast.SuperExpression:
		c.compileSuperCall(e, nil, line)
	case *ast.GroupedExpression:
		c.compileExpression(e.Expression)
	case *ast.UnaryExpression:
		c.compileExpression(e.Right)
		switch e.Operator {
		case "-":
			c.emit(OpNegate, 0, 0, line)
		case "not", "!":
			c.emit(OpNot, 0, 0, line)
		}
	case *ast.BinaryExpression:
		c.compileBinary(e, line)
	case *ast.CoalesceExpression:
		c.compileCoalesce(e, line)
	case *ast.RangeExpression:
		// Represented as a 2-element array [start, end]; range iteration
		// in `for x in a..b` is special-cased by the statement compiler.
		c.compileExpression(e.Start)
		c.compileExpression(e.End)
		c.emit(OpMakeArray, 2, 0, line)
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			c.compileExpression(el)
		}
		c.emit(OpMakeArray, uint16(len(e.Elements)), 0, line)
	case *ast.ObjectLiteral:
		for i, k := range e.Keys {
			c.emitConstant(StringValue(k), line)
			c.compileExpression(e.Values[i])
		}
		c.emit(OpMakeMap, uint16(len(e.Keys)), 0, line)
	case *ast.IndexExpression:
		c.compileExpression(e.Left)
		c.compileExpression(e.Index)
		c.emit(OpIndexGet, 0, 0, line)
	case *ast.DotExpression:
		c.compileExpression(e.Object)
		nameIdx := c.chunk.AddConstant(StringValue(e.Property.Value))
		c.emit(OpGetProperty, nameIdx, 0, line)
	case *ast.EnumAccessExpression:
		c.compileEnumAccess(e, line)
	case *ast.CallExpression:
		c.compileCall(e, line)
	case *ast.TryExpression:
		c.compileExpression(e.Value)
		c.emit(OpPropagate, 0, 0, line)
	case *ast.PipelineExpression:
		c.compilePipeline(e, line)
	case *ast.MatchExpression:
		c.compileMatch(e, line)
	case *ast.FunctionLiteral:
		c.compileFunctionLiteral(e, kindFunction)
	default:
		c.errorf(expr.Pos(), "unsupported expression node %T", expr)
	}
}

func (c *Compiler) compileIdentifierGet(name string, line int) {
	if idx, ok := c.resolveLocal(name); ok {
		c.emit(OpGetLocal, uint16(idx), 0, line)
		return
	}
	if idx, ok := c.resolveUpvalue(name); ok {
		c.emit(OpGetUpvalue, uint16(idx), 0, line)
		return
	}
	nameIdx := c.chunk.AddConstant(StringValue(name))
	c.emit(OpGetGlobal, nameIdx, 0, line)
}

func (c *Compiler) compileBinary(e *ast.BinaryExpression, line int) {
	switch e.Operator {
	case "and":
		c.compileExpression(e.Left)
		jmp := c.emit(OpJumpIfFalse, 0, 0, line)
		c.emit(OpPop, 0, 0, line)
		c.compileExpression(e.Right)
		c.chunk.PatchJump(jmp)
		return
	case "or":
		c.compileExpression(e.Left)
		jmp := c.emit(OpJumpIfTrue, 0, 0, line)
		c.emit(OpPop, 0, 0, line)
		c.compileExpression(e.Right)
		c.chunk.PatchJump(jmp)
		return
	}

	c.compileExpression(e.Left)
	c.compileExpression(e.Right)
	switch e.Operator {
	case "+":
		c.emit(OpAdd, 0, 0, line)
	case "-":
		c.emit(OpSubtract, 0, 0, line)
	case "*":
		c.emit(OpMultiply, 0, 0, line)
	case "/":
		c.emit(OpDivide, 0, 0, line)
	case "%":
		c.emit(OpModulo, 0, 0, line)
	case "**":
		c.emit(OpPower, 0, 0, line)
	case "==":
		c.emit(OpEqual, 0, 0, line)
	case "!=":
		c.emit(OpNotEqual, 0, 0, line)
	case "<":
		c.emit(OpLess, 0, 0, line)
	case "<=":
		c.emit(OpLessEqual, 0, 0, line)
	case ">":
		c.emit(OpGreater, 0, 0, line)
	case ">=":
		c.emit(OpGreaterEqual, 0, 0, line)
	default:
		c.errorf(e.Pos(), "unsupported binary operator %q", e.Operator)
	}
}

func (c *Compiler) compileCoalesce(e *ast.CoalesceExpression, line int) {
	c.compileExpression(e.Left)
	c.emit(OpNil, 0, 0, line)
	c.emit(OpNotEqual, 0, 0, line)
	jmp := c.emit(OpJumpIfFalse, 0, 0, line)
	c.emit(OpPop, 0, 0, line)
	// The comparison consumed left, so it is compiled a second time to
	// push its value as the result (its side effects run twice).
	c.compileExpression(e.Left)
	end := c.emit(OpJump, 0, 0, line)
	c.chunk.PatchJump(jmp)
	c.emit(OpPop, 0, 0, line)
	c.compileExpression(e.Right)
	c.chunk.PatchJump(end)
}

func (c *Compiler) compilePipeline(e *ast.PipelineExpression, line int) {
	call, ok := e.Right.(*ast.CallExpression)
	if !ok {
		c.errorf(e.Pos(), "right side of |> must be a call expression")
		return
	}
	args := append([]*ast.Argument{{Value: e.Left}}, call.Arguments...)
	synthetic := &ast.CallExpression{Token: call.Token, Callee: call.Callee, Arguments: args, Handler: call.Handler}
	c.compileCall(synthetic, line)
}

func (c *Compiler) compileEnumAccess(e *ast.EnumAccessExpression, line int) {
	enumNameIdx := c.chunk.AddConstant(StringValue(e.Enum.Value))
	c.compileIdentifierGet(e.Enum.Value, line)
	_ = enumNameIdx
	variantIdx := c.chunk.AddConstant(StringValue(e.Variant.Value))
	for _, arg := range e.Arguments {
		c.compileExpression(arg.Value)
	}
	c.emit(OpMakeEnumValue, variantIdx, uint16(len(e.Arguments)), line)
}

func (c *Compiler) compileCall(e *ast.CallExpression, line int) {
	if se, ok := e.Callee.(*ast.SuperExpression); ok {
		c.compileSuperCall(se, e.Arguments, line)
		return
	}
	if de, ok := e.Callee.(*ast.DotExpression); ok {
		c.compileExpression(de.Object)
		nameIdx := c.chunk.AddConstant(StringValue(de.Property.Value))
		positional, keyword := c.compileArguments(e.Arguments)
		c.emit(OpInvoke, nameIdx, uint16(positional)|uint16(keyword)<<8, line)
		return
	}
	c.compileExpression(e.Callee)
	positional, keyword := c.compileArguments(e.Arguments)
	c.emit(OpCall, uint16(positional), uint16(keyword), line)
}

// compileArguments pushes positional args, then keyword args as
// name/value constant-string + value pairs inline (the VM's OpCall
// handler binds them against the callee's parameter list).
func (c *Compiler) compileArguments(args []*ast.Argument) (positional, keyword int) {
	for _, a := range args {
		if a.Name == "" {
			c.compileExpression(a.Value)
			positional++
		}
	}
	for _, a := range args {
		if a.Name != "" {
			nameIdx := c.chunk.AddConstant(StringValue(a.Name))
			c.emit(OpConstant, nameIdx, 0, 0)
			c.compileExpression(a.Value)
			keyword++
		}
	}
	return
}

func (c *Compiler) compileSuperCall(se *ast.SuperExpression, args []*ast.Argument, line int) {
	if idx, ok := c.resolveLocal("self"); ok {
		c.emit(OpGetLocal, uint16(idx), 0, line)
	} else if idx, ok := c.resolveUpvalue("self"); ok {
		c.emit(OpGetUpvalue, uint16(idx), 0, line)
	} else {
		c.errorf(se.Pos(), "'super' used outside of a method")
	}
	nameIdx := c.chunk.AddConstant(StringValue(se.Method.Value))
	if args == nil {
		c.emit(OpGetSuper, nameIdx, 0, line)
		return
	}
	positional, keyword := c.compileArguments(args)
	c.emit(OpSuperInvoke, nameIdx, uint16(positional)|uint16(keyword)<<8, line)
}

// compileMatch lowers a match expression into a chain of equality
// comparisons against the subject, each arm's body producing the
// expression's value; the wildcard arm `_` compiles unconditionally.
func (c *Compiler) compileMatch(e *ast.MatchExpression, line int) {
	subjectIdx, temp := c.cacheInTemp()
	c.compileExpression(e.Subject)
	c.emit(OpSetLocal, uint16(subjectIdx), 0, line)
	c.emit(OpPop, 0, 0, line)

	var endJumps []int
	for _, arm := range e.Arms {
		if arm.Pattern == nil {
			c.compileExpression(arm.Body)
			endJumps = append(endJumps, c.emit(OpJump, 0, 0, line))
			continue
		}
		c.emit(OpGetLocal, uint16(subjectIdx), 0, line)
		c.compileExpression(arm.Pattern)
		c.emit(OpEqual, 0, 0, line)
		skip := c.emit(OpJumpIfFalse, 0, 0, line)
		c.emit(OpPop, 0, 0, line)
		c.compileExpression(arm.Body)
		endJumps = append(endJumps, c.emit(OpJump, 0, 0, line))
		c.chunk.PatchJump(skip)
		c.emit(OpPop, 0, 0, line)
	}
	c.emit(OpNil, 0, 0, line) // no arm matched and no wildcard present
	for _, j := range endJumps {
		c.chunk.PatchJump(j)
	}
	c.releaseTemp(temp)
}

// cacheInTemp reserves an anonymous local slot for holding an
// intermediate value (e.g. a match subject) without re-evaluating its
// expression for every arm comparison. The slot starts out nil simply
// because frame.locals is zero-valued on allocation; the caller is
// responsible for storing into it with OpSetLocal.
func (c *Compiler) cacheInTemp() (int, int) {
	c.locals = append(c.locals, local{name: "$match", depth: c.scopeDepth})
	if len(c.locals) > c.maxLocals {
		c.maxLocals = len(c.locals)
	}
	return len(c.locals) - 1, len(c.locals) - 1
}

func (c *Compiler) releaseTemp(idx int) {
	// Temp lifetime ends with the enclosing scope; nothing to pop here
	// since endScope handles it when the block closes.
}
