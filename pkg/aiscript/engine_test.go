package aiscript

import (
	"bytes"
	"testing"

	"github.com/aiscriptdev/aiscript/internal/agentrt"
	"github.com/aiscriptdev/aiscript/internal/bytecode"
)

func TestCompileRunAndEvalFunctionByID(t *testing.T) {
	e := New()
	id, err := e.Compile(`
fn add(a, b) {
	return a + b;
}
let seen = add(1, 2);
`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	result, err := e.EvalFunctionByID(id, "add", bytecode.NumberValue(4), bytecode.NumberValue(5))
	if err != nil {
		t.Fatalf("EvalFunctionByID: %v", err)
	}
	if result.AsNumber() != 9 {
		t.Errorf("add(4, 5) = %v, want 9", result)
	}

	seen, ok := e.VM().Global("seen")
	if !ok || seen.AsNumber() != 3 {
		t.Errorf("seen = %v, ok = %v, want 3", seen, ok)
	}
}

func TestInjectVariable(t *testing.T) {
	var out bytes.Buffer
	e := New(WithOutput(&out))
	if err := e.InjectVariable("count", "42"); err != nil {
		t.Fatalf("InjectVariable: %v", err)
	}

	id, err := e.Compile(`print(count);`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := e.Run(id); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "42\n" {
		t.Errorf("output = %q, want %q", out.String(), "42\n")
	}
}

func TestInjectInstance(t *testing.T) {
	e := New()
	if err := e.InjectInstance("cfg", "Config", map[string]any{"retries": 3}); err != nil {
		t.Fatalf("InjectInstance: %v", err)
	}

	id, err := e.Compile(`let r = cfg.retries;`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := e.Run(id); err != nil {
		t.Fatalf("Run: %v", err)
	}
	r, ok := e.VM().Global("r")
	if !ok || r.AsNumber() != 3 {
		t.Errorf("r = %v, ok = %v, want 3", r, ok)
	}
}

func TestRegisterNativeFunction(t *testing.T) {
	e := New()
	e.RegisterNativeFunction("double", func(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
		return bytecode.NumberValue(args[0].AsNumber() * 2), nil
	})

	id, err := e.Compile(`let d = double(21);`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := e.Run(id); err != nil {
		t.Fatalf("Run: %v", err)
	}
	d, ok := e.VM().Global("d")
	if !ok || d.AsNumber() != 42 {
		t.Errorf("d = %v, ok = %v, want 42", d, ok)
	}
}

func TestImportModule(t *testing.T) {
	e := New()
	mod, err := e.ImportModule("std.math")
	if err != nil {
		t.Fatalf("ImportModule: %v", err)
	}
	pi, ok := mod.Exports.Get("pi")
	if !ok || pi.AsNumber() < 3.14 {
		t.Errorf("std.math.pi = %v", pi)
	}
}

func TestWithDisabledModules(t *testing.T) {
	e := New(WithDisabledModules("std.http"))
	if _, err := e.ImportModule("std.http"); err == nil {
		t.Fatal("expected ImportModule(\"std.http\") to fail once disabled")
	}
	if _, err := e.ImportModule("std.math"); err != nil {
		t.Errorf("std.math should remain available: %v", err)
	}
}

func TestWithAgentRunner(t *testing.T) {
	scripted := &agentrt.ScriptedRunner{Responses: []string{"hello back"}}
	e := New(WithAgentRunner(scripted))

	resp, err := e.VM().Prompt(nil, bytecode.StringValue("hi"))
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	if resp.AsString() != "hello back" {
		t.Errorf("resp = %v, want %q", resp, "hello back")
	}
	if scripted.Calls() != 1 {
		t.Errorf("Calls() = %d, want 1", scripted.Calls())
	}
}
