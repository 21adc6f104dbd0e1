package bytecode

import "github.com/aiscriptdev/aiscript/internal/ast"

// ValidatorArg is a single validator annotation argument, already
// constant-folded to a Value. Name is "" for a bare positional
// argument, or the keyword name for a `name: value` argument.
type ValidatorArg struct {
	Name  string
	Value Value
}

// ValidatorBuilder resolves a `@kind(args...)` parameter/field
// annotation into a runtime Validator. It is populated by
// internal/validator's package init (via a blank import from the
// embedder or CLI entrypoint) rather than imported directly here, to
// keep internal/bytecode free of a dependency on the validator package.
var ValidatorBuilder func(kind string, args []ValidatorArg) (Validator, error)

func (c *Compiler) buildValidators(annotations []*ast.ValidatorAnnotation) []Validator {
	if len(annotations) == 0 || ValidatorBuilder == nil {
		return nil
	}
	var out []Validator
	for _, ann := range annotations {
		args := make([]ValidatorArg, 0, len(ann.Args))
		for _, a := range ann.Args {
			if named, ok := a.(*ast.NamedArgExpression); ok {
				args = append(args, ValidatorArg{Name: named.Name, Value: c.foldConstant(named.Value)})
				continue
			}
			args = append(args, ValidatorArg{Value: c.foldConstant(a)})
		}
		v, err := ValidatorBuilder(ann.Kind, args)
		if err != nil {
			c.errorf(ann.Token.Pos, "invalid @%s validator: %v", ann.Kind, err)
			continue
		}
		out = append(out, v)
	}
	return out
}

// foldConstant evaluates a validator-argument expression at compile
// time; only literal expressions are legal here (spec §4.4: validator
// arguments are compile-time constants).
func (c *Compiler) foldConstant(expr ast.Expression) Value {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return NumberValue(e.Value)
	case *ast.StringLiteral:
		return StringValue(e.Value)
	case *ast.BooleanLiteral:
		return BoolValue(e.Value)
	case *ast.NilLiteral:
		return NilValue()
	case *ast.UnaryExpression:
		if e.Operator == "-" {
			inner := c.foldConstant(e.Right)
			if inner.IsNumber() {
				return NumberValue(-inner.AsNumber())
			}
		}
	}
	c.errorf(expr.Pos(), "validator arguments must be compile-time constants")
	return NilValue()
}

func (c *Compiler) compileFunctionDeclaration(fd *ast.FunctionDeclaration) {
	c.compileFunctionLiteral(fd.Function, kindFunction)
	c.defineVariable(fd.Function.Name, true, fd.Pos().Line)
	if fd.Public && c.scopeDepth == 0 {
		c.chunk.MarkPublic(fd.Function.Name)
	}
}

// compileFunctionLiteral compiles a function literal (named or
// anonymous) into its own Chunk, emits an OpClosure referencing it in
// the enclosing chunk, and leaves the resulting closure on the stack.
func (c *Compiler) compileFunctionLiteral(fl *ast.FunctionLiteral, kind functionKind) {
	sub := &Compiler{enclosing: c, chunk: NewChunk(fl.Name), kind: kind, class: c.class}
	sub.chunk.IsAI = fl.IsAI
	sub.chunk.Doc = fl.Doc
	if fl.IsAI {
		sub.kind = kindAIFunction
	}
	sub.beginScope() // function bodies are always their own local scope, even before any `{ }` block
	sub.locals = append(sub.locals, local{name: "self", depth: sub.scopeDepth})
	sub.maxLocals = 1

	spec := make([]FieldSpec, 0, len(fl.Parameters))
	for _, p := range fl.Parameters {
		sub.declareLocal(p.Name.Value, false)
		spec = append(spec, FieldSpec{
			Name:       p.Name.Value,
			Validators: sub.buildValidators(p.Validators),
			HasDefault: p.Default != nil,
		})
	}
	_ = spec // parameter validators are enforced by the VM's call-binding
	// path, which reads them from the callee's Chunk.Validators;
	// see vm_calls.go's enforceValidators.
	for i, p := range fl.Parameters {
		if p.Default == nil {
			continue
		}
		idx := i + 1 // +1 because local slot 0 is self
		sub.emit(OpGetLocal, uint16(idx), 0, fl.Pos().Line)
		sub.emit(OpNil, 0, 0, fl.Pos().Line)
		sub.emit(OpEqual, 0, 0, fl.Pos().Line)
		skip := sub.emit(OpJumpIfFalse, 0, 0, fl.Pos().Line)
		sub.emit(OpPop, 0, 0, fl.Pos().Line)
		sub.compileExpression(p.Default)
		sub.emit(OpSetLocal, uint16(idx), 0, fl.Pos().Line)
		sub.emit(OpPop, 0, 0, fl.Pos().Line)
		sub.chunk.PatchJump(skip)
		sub.emit(OpPop, 0, 0, fl.Pos().Line)
	}

	for _, stmt := range fl.Body.Statements {
		sub.compileStatement(stmt)
	}
	sub.emit(OpNil, 0, 0, fl.Pos().Line)
	sub.emit(OpReturn, 0, 0, fl.Pos().Line)
	c.errors = append(c.errors, sub.errors...)

	paramNames := make([]string, len(fl.Parameters))
	for i, p := range fl.Parameters {
		paramNames[i] = p.Name.Value
	}
	fn := &FunctionObject{
		Name:        fl.Name,
		Arity:       len(fl.Parameters),
		ParamNames:  paramNames,
		Chunk:       sub.chunk,
		UpvalueDefs: sub.upvalues,
		IsAI:        fl.IsAI,
		Doc:         fl.Doc,
	}
	fn.Chunk.Validators = paramValidatorTable(spec)
	sub.chunk.LocalCount = sub.maxLocals
	idx := c.chunk.AddConstant(Value{Type: valueFunctionProto, Data: fn})
	c.emit(OpClosure, idx, 0, fl.Pos().Line)
}

// valueFunctionProto is an internal-only Value tag used solely in the
// constant pool to carry *FunctionObject prototypes to OpClosure; it
// never appears as a runtime Value outside that slot.
const valueFunctionProto ValueType = 255

func paramValidatorTable(specs []FieldSpec) map[string][]Validator {
	if len(specs) == 0 {
		return nil
	}
	m := make(map[string][]Validator, len(specs))
	for _, s := range specs {
		if len(s.Validators) > 0 {
			m[s.Name] = s.Validators
		}
	}
	return m
}
