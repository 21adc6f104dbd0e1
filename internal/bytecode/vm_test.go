package bytecode

import (
	"testing"

	"github.com/aiscriptdev/aiscript/internal/lexer"
	"github.com/aiscriptdev/aiscript/internal/parser"
)

func runSource(t *testing.T, src string) Value {
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
	vm := NewVM()
	result, err := vm.Run(chunk)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return result
}

func TestVMArithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{`1 + 2 * 3`, 7},
		{`(1 + 2) * 3`, 9},
		{`10 / 4`, 2.5},
		{`2 ** 10`, 1024},
		{`7 % 3`, 1},
	}
	for _, tc := range cases {
		got := runSource(t, tc.src)
		if !got.IsNumber() || got.AsNumber() != tc.want {
			t.Errorf("%s = %v, want %v", tc.src, got, tc.want)
		}
	}
}

func TestVMLocalsRoundTripThroughSeparateFrameArray(t *testing.T) {
	got := runSource(t, `
		let a = 1
		let b = 2
		let c = a + b
		c
	`)
	if got.AsNumber() != 3 {
		t.Fatalf("got %v, want 3 (a let-bound local must survive to later reads)", got)
	}
}

func TestVMBlockScopedLocalsDoNotLeakOutward(t *testing.T) {
	got := runSource(t, `
		let x = 1
		if true {
			let x = 2
			x
		}
		x
	`)
	// The inner `x` statement's value is discarded; the trailing `x`
	// after the block reads the outer binding.
	if got.AsNumber() != 1 {
		t.Fatalf("got %v, want 1 (inner `x` must not overwrite the outer binding)", got)
	}
}

func TestVMForLoopSumsAnArray(t *testing.T) {
	got := runSource(t, `
		let total = 0
		for n in [1, 2, 3, 4] {
			total = total + n
		}
		total
	`)
	if got.AsNumber() != 10 {
		t.Fatalf("got %v, want 10", got)
	}
}

func TestVMForLoopOverRange(t *testing.T) {
	got := runSource(t, `
		let total = 0
		for n in 1..5 {
			total = total + n
		}
		total
	`)
	if got.AsNumber() != 10 { // 1+2+3+4, end exclusive: the range loop stops when $i reaches $end
		t.Fatalf("got %v, want 10", got)
	}
}

func TestVMClosureCapturesAndMutatesUpvalue(t *testing.T) {
	got := runSource(t, `
		fn makeCounter() {
			let count = 0
			fn increment() {
				count = count + 1
				return count
			}
			return increment
		}
		let counter = makeCounter()
		counter()
		counter()
		counter()
	`)
	if got.AsNumber() != 3 {
		t.Fatalf("got %v, want 3 (each call should see the previous mutation)", got)
	}
}

func TestVMTwoClosuresFromSameCallHaveIndependentState(t *testing.T) {
	got := runSource(t, `
		fn makeCounter() {
			let count = 0
			fn increment() {
				count = count + 1
				return count
			}
			return increment
		}
		let a = makeCounter()
		let b = makeCounter()
		a()
		a()
		b()
		a() + b()
	`)
	if got.AsNumber() != 5 { // a: 1,2,3  b: 1,2 -> 3 + 2
		t.Fatalf("got %v, want 5 (independent closures must not share an upvalue)", got)
	}
}

func TestVMClassFieldDefaultsAndInit(t *testing.T) {
	got := runSource(t, `
		class Point {
			x = 0
			y = 0

			fn init(x, y) {
				self.x = x
				self.y = y
			}

			fn sum() {
				return self.x + self.y
			}
		}
		let p = Point(3, 4)
		p.sum()
	`)
	if got.AsNumber() != 7 {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestVMClassDefaultFieldWithoutInit(t *testing.T) {
	got := runSource(t, `
		class Counter {
			value = 10
		}
		let c = Counter()
		c.value
	`)
	if got.AsNumber() != 10 {
		t.Fatalf("got %v, want 10", got)
	}
}

func TestVMSuperCallsParentMethod(t *testing.T) {
	got := runSource(t, `
		class Animal {
			fn speak() {
				return "..."
			}
		}
		class Dog : Animal {
			fn speak() {
				return super.speak()
			}
		}
		let d = Dog()
		d.speak()
	`)
	if !got.IsString() || got.AsString() != "..." {
		t.Fatalf("got %v, want \"...\"", got)
	}
}

func TestVMArrayBuiltinMethods(t *testing.T) {
	got := runSource(t, `
		let a = [1, 2, 3]
		a.push(4)
		a.len()
	`)
	if got.AsNumber() != 4 {
		t.Fatalf("got %v, want 4", got)
	}
}

func TestVMStringBuiltinMethods(t *testing.T) {
	got := runSource(t, `"Hello".lower()`)
	if !got.IsString() || got.AsString() != "hello" {
		t.Fatalf("got %v, want \"hello\"", got)
	}
}

func TestVMMapBuiltinMethods(t *testing.T) {
	got := runSource(t, `
		let m = {a: 1, b: 2}
		m.has("a")
	`)
	if !got.IsBool() || !got.AsBool() {
		t.Fatalf("got %v, want true", got)
	}
}

func TestVMMatchExpression(t *testing.T) {
	got := runSource(t, `
		fn classify(n) {
			return match n {
				1 => "one",
				2 => "two",
				_ => "many",
			}
		}
		classify(2)
	`)
	if !got.IsString() || got.AsString() != "two" {
		t.Fatalf("got %v, want \"two\"", got)
	}
}

func TestVMQuestionMarkPassesNonErrorValuesThrough(t *testing.T) {
	got := runSource(t, `
		fn lookup() {
			return {}.get("missing")?
		}
		fn caller() {
			let v = lookup()?
			return v
		}
		caller()
	`)
	if !got.IsNil() {
		t.Fatalf("got %v, want nil (map.get on a missing key yields nil, not an error, so `?` is a no-op here)", got)
	}
}

func TestVMKeywordArgumentsBindByName(t *testing.T) {
	got := runSource(t, `
		fn greet(name, greeting) {
			return greeting + ", " + name
		}
		greet(greeting: "Hi", name: "World")
	`)
	if !got.IsString() || got.AsString() != "Hi, World" {
		t.Fatalf("got %v, want \"Hi, World\"", got)
	}
}
