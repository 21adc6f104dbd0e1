package bytecode

import (
	"testing"

	"github.com/aiscriptdev/aiscript/internal/lexer"
	"github.com/aiscriptdev/aiscript/internal/parser"
)

func compileSource(t *testing.T, src string) *Chunk {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		for _, e := range p.Errors() {
			t.Errorf("parse error: %v", e)
		}
		t.FailNow()
	}
	chunk, errs := Compile(prog)
	if len(errs) > 0 {
		for _, e := range errs {
			t.Errorf("compile error: %v", e)
		}
		t.FailNow()
	}
	return chunk
}

func opcodes(c *Chunk) []OpCode {
	out := make([]OpCode, len(c.Code))
	for i, inst := range c.Code {
		out[i] = inst.Op
	}
	return out
}

func containsOp(c *Chunk, op OpCode) bool {
	for _, inst := range c.Code {
		if inst.Op == op {
			return true
		}
	}
	return false
}

func TestCompileLetStoresIntoLocalSlot(t *testing.T) {
	chunk := compileSource(t, `
		{
			let x = 1
			let y = x + 2
		}
	`)
	if !containsOp(chunk, OpSetLocal) {
		t.Fatalf("expected OpSetLocal to be emitted for a local `let`, got %v", opcodes(chunk))
	}
	if chunk.LocalCount < 3 {
		t.Errorf("LocalCount = %d, want at least 3 (reserved slot 0 + x + y)", chunk.LocalCount)
	}
}

func TestCompileGlobalLetUsesDefineGlobal(t *testing.T) {
	chunk := compileSource(t, `let x = 42`)
	if !containsOp(chunk, OpDefineGlobal) {
		t.Fatalf("expected OpDefineGlobal at script scope, got %v", opcodes(chunk))
	}
}

func TestCompileForLowersToIndexLoop(t *testing.T) {
	chunk := compileSource(t, `
		for x in [1, 2, 3] {
			let y = x
		}
	`)
	for _, op := range []OpCode{OpGetLocal, OpSetLocal, OpInvoke, OpLoop, OpJumpIfFalse} {
		if !containsOp(chunk, op) {
			t.Errorf("expected %s in a compiled for-loop, got %v", op, opcodes(chunk))
		}
	}
}

func TestCompileClassEmitsClassAndPrototype(t *testing.T) {
	chunk := compileSource(t, `
		class Point {
			x = 0
			y = 0

			fn sum() {
				return self.x + self.y
			}
		}
	`)
	if !containsOp(chunk, OpClass) {
		t.Fatalf("expected OpClass, got %v", opcodes(chunk))
	}
	var proto *ClassObject
	for _, c := range chunk.Constants {
		if c.Type == ValueClass {
			proto = c.AsClass()
		}
	}
	if proto == nil {
		t.Fatal("expected a ClassObject in the constant pool")
	}
	if proto.IsAgent {
		t.Error("a plain class should not be marked IsAgent")
	}
	if len(proto.Fields) != 2 {
		t.Errorf("len(Fields) = %d, want 2", len(proto.Fields))
	}
	if _, ok := proto.Methods["sum"]; !ok {
		t.Error("expected method `sum` on the compiled class prototype")
	}
}

func TestCompileClassWithSuperclassEmitsInherit(t *testing.T) {
	chunk := compileSource(t, `
		class Animal {
			fn speak() { return "..." }
		}
		class Dog : Animal {
			fn speak() { return "woof" }
		}
	`)
	if !containsOp(chunk, OpInherit) {
		t.Fatalf("expected OpInherit for a subclass, got %v", opcodes(chunk))
	}
}

func TestCompileAgentEmitsAgentOpcodeWithIsAgentSet(t *testing.T) {
	chunk := compileSource(t, `
		agent Greeter {
			ai fn greet() {
				prompt "hello"
			}
		}
	`)
	if !containsOp(chunk, OpAgent) {
		t.Fatalf("expected OpAgent, got %v", opcodes(chunk))
	}
	var proto *ClassObject
	for _, c := range chunk.Constants {
		if c.Type == ValueClass {
			proto = c.AsClass()
		}
	}
	if proto == nil || !proto.IsAgent {
		t.Fatal("expected an IsAgent ClassObject prototype in the constant pool")
	}
}

func TestCompileEnumEmitsVariantTable(t *testing.T) {
	chunk := compileSource(t, `
		enum Shape {
			Circle(radius),
			Square(side),
		}
	`)
	if !containsOp(chunk, OpEnum) {
		t.Fatalf("expected OpEnum, got %v", opcodes(chunk))
	}
	var proto *EnumObject
	for _, c := range chunk.Constants {
		if c.Type == ValueEnum {
			proto = c.AsEnum()
		}
	}
	if proto == nil {
		t.Fatal("expected an EnumObject in the constant pool")
	}
	if _, ok := proto.Variants["Circle"]; !ok {
		t.Error("expected variant Circle")
	}
	if _, ok := proto.Variants["Square"]; !ok {
		t.Error("expected variant Square")
	}
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	chunk := compileSource(t, `
		fn makeCounter() {
			let count = 0
			fn increment() {
				count = count + 1
				return count
			}
			return increment
		}
	`)
	var outer *FunctionObject
	for _, c := range chunk.Constants {
		if c.Type == valueFunctionProto {
			fn := c.Data.(*FunctionObject)
			if fn.Name == "makeCounter" {
				outer = fn
			}
		}
	}
	if outer == nil {
		t.Fatal("expected makeCounter's FunctionObject in the constant pool")
	}
	var inner *FunctionObject
	for _, c := range outer.Chunk.Constants {
		if c.Type == valueFunctionProto {
			inner = c.Data.(*FunctionObject)
		}
	}
	if inner == nil {
		t.Fatal("expected increment's FunctionObject nested in makeCounter's constants")
	}
	if len(inner.UpvalueDefs) != 1 || !inner.UpvalueDefs[0].FromLocal {
		t.Errorf("increment should capture `count` as a from-local upvalue, got %+v", inner.UpvalueDefs)
	}
}

func TestCompileQuestionMarkCompilesToPropagate(t *testing.T) {
	chunk := compileSource(t, `
		fn risky() {
			return 1
		}
		fn caller() {
			let v = risky()?
			return v
		}
	`)
	var caller *FunctionObject
	for _, c := range chunk.Constants {
		if c.Type == valueFunctionProto {
			fn := c.Data.(*FunctionObject)
			if fn.Name == "caller" {
				caller = fn
			}
		}
	}
	if caller == nil {
		t.Fatal("expected caller's FunctionObject in the constant pool")
	}
	if !containsOp(caller.Chunk, OpPropagate) {
		t.Errorf("expected `?` to compile to OpPropagate, got %v", opcodes(caller.Chunk))
	}
}

func TestDeclareLocalReturnsSlotAndHandlesShadowing(t *testing.T) {
	c := NewCompiler()
	c.beginScope()
	first := c.declareLocal("x", false)
	second := c.declareLocal("x", false)
	if first != second {
		t.Errorf("re-declaring `x` in the same scope should reuse its slot: got %d then %d", first, second)
	}
	if len(c.locals) != 2 { // reserved slot 0 + x
		t.Errorf("len(locals) = %d, want 2", len(c.locals))
	}
}

func TestDeclareLocalAtGlobalScopeReturnsSentinel(t *testing.T) {
	c := NewCompiler()
	if slot := c.declareLocal("x", false); slot != -1 {
		t.Errorf("declareLocal at scope depth 0 = %d, want -1", slot)
	}
}
