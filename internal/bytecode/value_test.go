package bytecode

import "testing"

func TestValueTruthiness(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", NilValue(), false},
		{"false", BoolValue(false), false},
		{"true", BoolValue(true), true},
		{"zero number", NumberValue(0), true},
		{"empty string", StringValue(""), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.IsTruthy(); got != tc.want {
				t.Errorf("IsTruthy() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValueEquals(t *testing.T) {
	arr := NewArray(nil)
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"numbers equal", NumberValue(3), NumberValue(3), true},
		{"numbers differ", NumberValue(3), NumberValue(4), false},
		{"strings equal", StringValue("hi"), StringValue("hi"), true},
		{"nil equals nil", NilValue(), NilValue(), true},
		{"nil not bool", NilValue(), BoolValue(false), false},
		{"same array identity", ArrayValue(arr), ArrayValue(arr), true},
		{"different array identity", ArrayValue(arr), ArrayValue(NewArray(nil)), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equals(tc.b); got != tc.want {
				t.Errorf("Equals() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValueEqualsEnumVariant(t *testing.T) {
	some := func(n float64) Value {
		return EnumVariantValue(&EnumVariantValueData{Enum: "Option", Variant: "Some", Fields: []Value{NumberValue(n)}})
	}
	if !some(1).Equals(some(1)) {
		t.Error("Some(1) should equal Some(1)")
	}
	if some(1).Equals(some(2)) {
		t.Error("Some(1) should not equal Some(2)")
	}
	none := EnumVariantValue(&EnumVariantValueData{Enum: "Option", Variant: "None"})
	if some(1).Equals(none) {
		t.Error("Some(1) should not equal None")
	}
}

func TestValueTypeName(t *testing.T) {
	inst := &Instance{Class: &ClassObject{Name: "Widget"}, Fields: NewMap()}
	cases := []struct {
		v    Value
		want string
	}{
		{NilValue(), "nil"},
		{BoolValue(true), "bool"},
		{NumberValue(1), "number"},
		{StringValue("x"), "string"},
		{ArrayValue(NewArray(nil)), "array"},
		{MapValue(NewMap()), "object"},
		{InstanceValue(inst), "Widget instance"},
	}
	for _, tc := range cases {
		if got := tc.v.TypeName(); got != tc.want {
			t.Errorf("TypeName() = %q, want %q", got, tc.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		n    float64
		want string
	}{
		{3, "3"},
		{-3, "-3"},
		{3.5, "3.5"},
		{0, "0"},
	}
	for _, tc := range cases {
		if got := formatNumber(tc.n); got != tc.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestMapObjectPreservesInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set("b", NumberValue(2))
	m.Set("a", NumberValue(1))
	m.Set("b", NumberValue(20)) // re-set shouldn't move it in key order

	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Errorf("Keys() = %v, want [b a]", keys)
	}
	v, ok := m.Get("b")
	if !ok || v.AsNumber() != 20 {
		t.Errorf("Get(b) = %v, %v, want 20, true", v, ok)
	}
}

func TestMapObjectDelete(t *testing.T) {
	m := NewMap()
	m.Set("a", NumberValue(1))
	m.Set("b", NumberValue(2))
	m.Delete("a")
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
	if _, ok := m.Get("a"); ok {
		t.Error("Get(a) found a deleted key")
	}
}

func TestClassObjectFindMethodThroughSuperclass(t *testing.T) {
	base := &ClassObject{Name: "Base", Methods: map[string]*Closure{
		"greet": {Function: &FunctionObject{Name: "greet"}},
	}}
	derived := &ClassObject{Name: "Derived", Superclass: base, Methods: map[string]*Closure{}}

	m, ok := derived.FindMethod("greet")
	if !ok || m.Function.Name != "greet" {
		t.Fatalf("FindMethod(greet) = %v, %v, want base's greet", m, ok)
	}
	if _, ok := derived.FindMethod("missing"); ok {
		t.Error("FindMethod(missing) should fail")
	}
}
