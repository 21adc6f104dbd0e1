package stdlib

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aiscriptdev/aiscript/internal/bytecode"
	"github.com/aiscriptdev/aiscript/internal/module"
)

func callModuleFn(t *testing.T, mgr *module.Manager, path, name string, args []bytecode.Value) (bytecode.Value, error) {
	t.Helper()
	mod, err := mgr.Resolve(path)
	if err != nil {
		t.Fatalf("Resolve(%q): %v", path, err)
	}
	fnVal, ok := mod.Exports.Get(name)
	if !ok {
		t.Fatalf("module %q has no export %q", path, name)
	}
	vm := bytecode.NewVM()
	return fnVal.AsNativeFunction().Fn(vm, args)
}

func TestJSONRoundTrip(t *testing.T) {
	mgr := module.New(nil)
	Install(mgr)

	original := bytecode.NewMap()
	original.Set("name", bytecode.StringValue("ada"))
	original.Set("count", bytecode.NumberValue(3))
	arr := bytecode.NewArray([]bytecode.Value{bytecode.NumberValue(1), bytecode.NumberValue(2)})
	original.Set("tags", bytecode.ArrayValue(arr))

	encoded, err := callModuleFn(t, mgr, "std.json", "encode", []bytecode.Value{bytecode.MapValue(original)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(encoded.AsString(), `"name":"ada"`) {
		t.Errorf("encoded JSON missing expected field: %s", encoded.AsString())
	}

	decoded, err := callModuleFn(t, mgr, "std.json", "decode", []bytecode.Value{encoded})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	m := decoded.AsMap()
	if v, _ := m.Get("name"); v.AsString() != "ada" {
		t.Errorf("name = %v, want ada", v)
	}
	if v, _ := m.Get("count"); v.AsNumber() != 3 {
		t.Errorf("count = %v, want 3", v)
	}
}

func TestJSONDecodeInvalid(t *testing.T) {
	mgr := module.New(nil)
	Install(mgr)
	result, err := callModuleFn(t, mgr, "std.json", "decode", []bytecode.Value{bytecode.StringValue("{not json")})
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !result.IsError() {
		t.Errorf("expected a script-level error value, got %v", result)
	}
}

func TestMathModule(t *testing.T) {
	mgr := module.New(nil)
	Install(mgr)

	mod, err := mgr.Resolve("std.math")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	pi, ok := mod.Exports.Get("pi")
	if !ok || pi.AsNumber() < 3.14 || pi.AsNumber() > 3.15 {
		t.Errorf("pi export = %v", pi)
	}

	result, err := callModuleFn(t, mgr, "std.math", "max", []bytecode.Value{
		bytecode.NumberValue(1), bytecode.NumberValue(9), bytecode.NumberValue(4),
	})
	if err != nil || result.AsNumber() != 9 {
		t.Errorf("max = %v, err = %v", result, err)
	}

	result, err = callModuleFn(t, mgr, "std.math", "sqrt", []bytecode.Value{bytecode.NumberValue(16)})
	if err != nil || result.AsNumber() != 4 {
		t.Errorf("sqrt(16) = %v, err = %v", result, err)
	}
}

func TestDateTimeModule(t *testing.T) {
	mgr := module.New(nil)
	Install(mgr)

	encoded, err := callModuleFn(t, mgr, "std.datetime", "encode", []bytecode.Value{
		bytecode.NumberValue(2024), bytecode.NumberValue(3), bytecode.NumberValue(15),
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	year, err := callModuleFn(t, mgr, "std.datetime", "year", []bytecode.Value{encoded})
	if err != nil || year.AsNumber() != 2024 {
		t.Errorf("year = %v, err = %v", year, err)
	}

	later, err := callModuleFn(t, mgr, "std.datetime", "add_days", []bytecode.Value{encoded, bytecode.NumberValue(1)})
	if err != nil {
		t.Fatalf("add_days: %v", err)
	}
	day, err := callModuleFn(t, mgr, "std.datetime", "day", []bytecode.Value{later})
	if err != nil || day.AsNumber() != 16 {
		t.Errorf("day after add_days = %v, err = %v", day, err)
	}

	between, err := callModuleFn(t, mgr, "std.datetime", "days_between", []bytecode.Value{encoded, later})
	if err != nil || between.AsNumber() != 1 {
		t.Errorf("days_between = %v, err = %v", between, err)
	}
}

func TestStringsModule(t *testing.T) {
	mgr := module.New(nil)
	Install(mgr)

	upper, err := callModuleFn(t, mgr, "std.strings", "upper", []bytecode.Value{bytecode.StringValue("ada")})
	if err != nil || upper.AsString() != "ADA" {
		t.Errorf("upper(\"ada\") = %v, err = %v", upper, err)
	}

	parts, err := callModuleFn(t, mgr, "std.strings", "split", []bytecode.Value{
		bytecode.StringValue("a,b,c"), bytecode.StringValue(","),
	})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if elems := parts.AsArray().Elements; len(elems) != 3 || elems[1].AsString() != "b" {
		t.Errorf("split result = %v", elems)
	}

	joined, err := callModuleFn(t, mgr, "std.strings", "join", []bytecode.Value{parts, bytecode.StringValue("-")})
	if err != nil || joined.AsString() != "a-b-c" {
		t.Errorf("join = %v, err = %v", joined, err)
	}

	normalized, err := callModuleFn(t, mgr, "std.strings", "normalize", []bytecode.Value{bytecode.StringValue("café")})
	if err != nil || normalized.AsString() != "café" {
		t.Errorf("normalize = %q, err = %v", normalized.AsString(), err)
	}

	cmp, err := callModuleFn(t, mgr, "std.strings", "compare_locale", []bytecode.Value{
		bytecode.StringValue("apple"), bytecode.StringValue("banana"),
	})
	if err != nil || cmp.AsNumber() >= 0 {
		t.Errorf("compare_locale(apple, banana) = %v, err = %v, want negative", cmp, err)
	}
}

func TestStubModulesRaiseNotImplemented(t *testing.T) {
	mgr := module.New(nil)
	Install(mgr)

	for _, c := range []struct{ path, fn string }{
		{"std.http", "get"},
		{"std.sql", "query"},
		{"std.redis", "get"},
	} {
		result, err := callModuleFn(t, mgr, c.path, c.fn, nil)
		if err != nil {
			t.Fatalf("%s.%s: unexpected Go error: %v", c.path, c.fn, err)
		}
		if !result.IsError() || result.AsError().Kind != "NotImplementedError" {
			t.Errorf("%s.%s = %v, want a NotImplementedError value", c.path, c.fn, result)
		}
	}
}

func TestInstallGlobals(t *testing.T) {
	vm := bytecode.NewVM()
	var buf bytes.Buffer
	vm.Output = &buf
	InstallGlobals(vm)

	printFn, ok := vm.Global("print")
	if !ok {
		t.Fatal("expected \"print\" global")
	}
	if _, err := printFn.AsNativeFunction().Fn(vm, []bytecode.Value{bytecode.StringValue("hi"), bytecode.NumberValue(1)}); err != nil {
		t.Fatalf("print: %v", err)
	}
	if got := buf.String(); got != "hi 1\n" {
		t.Errorf("print output = %q, want %q", got, "hi 1\n")
	}

	typeOfFn, _ := vm.Global("type_of")
	result, err := typeOfFn.AsNativeFunction().Fn(vm, []bytecode.Value{bytecode.NumberValue(5)})
	if err != nil || result.AsString() != "number" {
		t.Errorf("type_of(5) = %v, err = %v", result, err)
	}

	assertFn, _ := vm.Global("assert")
	result, err = assertFn.AsNativeFunction().Fn(vm, []bytecode.Value{bytecode.BoolValue(false), bytecode.StringValue("boom")})
	if err != nil {
		t.Fatalf("assert: %v", err)
	}
	if !result.IsError() || result.AsError().Message != "boom" {
		t.Errorf("assert(false) = %v, want AssertionError \"boom\"", result)
	}
}
