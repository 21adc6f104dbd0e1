package bytecode

import "github.com/aiscriptdev/aiscript/internal/ast"

func (c *Compiler) compileClassDeclaration(cd *ast.ClassDeclaration) {
	class := &ClassObject{Name: cd.Name.Value, Methods: make(map[string]*Closure), Doc: cd.Doc}
	for _, f := range cd.Fields {
		class.Fields = append(class.Fields, c.compileFieldSpec(f))
	}
	for _, m := range cd.Methods {
		class.Methods[m.Function.Name] = c.compileMethodClosure(m.Function)
	}
	if cd.Superclass != nil {
		c.class = &classContext{hasSuperclass: true, enclosing: c.class}
		defer func() { c.class = c.class.enclosing }()
	}
	classIdx := c.chunk.AddConstant(ClassValue(class))
	c.emit(OpClass, classIdx, 0, cd.Pos().Line)
	if cd.Superclass != nil {
		// Superclass resolution happens at class-definition time, not at
		// field-compile time, so a class can subclass one declared later
		// in the same module (the same forward-reference rule functions
		// already get via OpDefineGlobal/OpGetGlobal).
		c.compileIdentifierGet(cd.Superclass.Value, cd.Pos().Line)
		c.emit(OpInherit, 0, 0, cd.Pos().Line)
	}
	c.defineVariable(cd.Name.Value, true, cd.Pos().Line)
	if cd.Public && c.scopeDepth == 0 {
		c.chunk.MarkPublic(cd.Name.Value)
	}
}

func (c *Compiler) compileFieldSpec(f *ast.FieldDeclaration) FieldSpec {
	spec := FieldSpec{Name: f.Name.Value, Validators: c.buildValidators(f.Validators)}
	if f.Default != nil {
		spec.HasDefault = true
		sub := &Compiler{enclosing: c, chunk: NewChunk(f.Name.Value + "$default"), kind: kindFunction}
		sub.compileExpression(f.Default)
		sub.emit(OpReturn, 0, 0, f.Pos().Line)
		c.errors = append(c.errors, sub.errors...)
		sub.chunk.LocalCount = sub.maxLocals
		spec.Default = &FunctionObject{Name: spec.Name + "$default", Chunk: sub.chunk, UpvalueDefs: sub.upvalues}
	}
	return spec
}

func (c *Compiler) compileMethodClosure(fl *ast.FunctionLiteral) *Closure {
	sub := &Compiler{enclosing: c, chunk: NewChunk(fl.Name), kind: kindMethod, class: c.class}
	sub.chunk.IsAI = fl.IsAI
	if fl.IsAI {
		sub.kind = kindAIFunction
	}
	sub.beginScope()
	sub.locals = append(sub.locals, local{name: "self", depth: sub.scopeDepth})
	sub.maxLocals = 1
	for _, p := range fl.Parameters {
		sub.declareLocal(p.Name.Value, false)
	}
	for _, stmt := range fl.Body.Statements {
		sub.compileStatement(stmt)
	}
	sub.emit(OpNil, 0, 0, fl.Pos().Line)
	sub.emit(OpReturn, 0, 0, fl.Pos().Line)
	c.errors = append(c.errors, sub.errors...)
	sub.chunk.LocalCount = sub.maxLocals

	paramNames := make([]string, len(fl.Parameters))
	for i, p := range fl.Parameters {
		paramNames[i] = p.Name.Value
	}
	fn := &FunctionObject{Name: fl.Name, Arity: len(fl.Parameters), ParamNames: paramNames, Chunk: sub.chunk, UpvalueDefs: sub.upvalues, IsAI: fl.IsAI}
	// Methods compiled directly to a prototype Closure (no upvalue
	// capture needed from the class-declaration scope in the common
	// case); the VM re-binds `self` as local slot 0 at call time.
	return &Closure{Function: fn}
}

func (c *Compiler) compileEnumDeclaration(ed *ast.EnumDeclaration) {
	enum := &EnumObject{Name: ed.Name.Value, Variants: make(map[string]*EnumVariantDef), Methods: make(map[string]*Closure), Doc: ed.Doc}
	for _, v := range ed.Variants {
		def := &EnumVariantDef{Name: v.Name.Value}
		for _, f := range v.Fields {
			def.Fields = append(def.Fields, f.Value)
		}
		enum.Variants[v.Name.Value] = def
	}
	for _, m := range ed.Methods {
		enum.Methods[m.Function.Name] = c.compileMethodClosure(m.Function)
	}
	idx := c.chunk.AddConstant(EnumValue(enum))
	c.emit(OpEnum, idx, 0, ed.Pos().Line)
	c.defineVariable(ed.Name.Value, true, ed.Pos().Line)
	if ed.Public && c.scopeDepth == 0 {
		c.chunk.MarkPublic(ed.Name.Value)
	}
}

// compileAgentDeclaration reuses the class machinery: an agent's fields
// and `ai fn` methods compile exactly like a class's, and OpAgent marks
// the resulting prototype so the VM constructs an AgentObject (rather
// than a plain Instance) when it is later invoked as a constructor.
func (c *Compiler) compileAgentDeclaration(ad *ast.AgentDeclaration) {
	class := &ClassObject{Name: ad.Name.Value, Methods: make(map[string]*Closure), Doc: ad.Doc, IsAgent: true}
	for _, f := range ad.Fields {
		class.Fields = append(class.Fields, c.compileFieldSpec(f))
	}
	for _, m := range ad.Methods {
		class.Methods[m.Function.Name] = c.compileMethodClosure(m.Function)
	}
	idx := c.chunk.AddConstant(ClassValue(class))
	c.emit(OpAgent, idx, 0, ad.Pos().Line)
	c.defineVariable(ad.Name.Value, true, ad.Pos().Line)
	if ad.Public && c.scopeDepth == 0 {
		c.chunk.MarkPublic(ad.Name.Value)
	}
}
