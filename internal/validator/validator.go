// Package validator implements AIScript's `@kind(args...)` parameter
// and field validators: the concrete Validator kinds consulted by
// internal/bytecode's compiler and VM through the ValidatorBuilder
// hook, which this package's init assigns.
//
// Ported from the directive validators of the original Rust
// implementation (src/validator/{mod,date,format}.rs), adapted to
// AIScript's flat `ValidatorAnnotation.Args []Expression` grammar:
// the Rust source lets @not/@any take a nested directive as an
// argument, which this grammar has no node for, so both are expressed
// here as a flattened convention (see NotValidator/AnyValidator below)
// rather than ported literally.
package validator

import (
	"fmt"
	"math"
	"strings"

	"github.com/aiscriptdev/aiscript/internal/bytecode"
)

func init() {
	bytecode.ValidatorBuilder = Build
}

// Build resolves a validator annotation's kind and arguments into a
// concrete bytecode.Validator. Called once per annotation at compile
// time; the result is baked into the chunk's constant-derived
// validator table, not re-resolved per call.
func Build(kind string, args []bytecode.ValidatorArg) (bytecode.Validator, error) {
	switch kind {
	case "string":
		return newStringValidator(args)
	case "number":
		return newNumberValidator(args)
	case "range":
		return newRangeValidator(args)
	case "date":
		return newDateValidator(args)
	case "format":
		return newFormatValidator(args)
	case "in":
		return newInValidator(args)
	case "any":
		return newAnyValidator(args)
	case "not":
		return newNotValidator(args)
	default:
		return nil, fmt.Errorf("unknown validator kind %q", kind)
	}
}

// argValue resolves a validator argument by keyword name first, falling
// back to its position among the annotation's unnamed arguments. pos <
// 0 disables the positional fallback (for arguments that must be named).
func argValue(args []bytecode.ValidatorArg, name string, pos int) (bytecode.Value, bool) {
	for _, a := range args {
		if a.Name != "" && a.Name == name {
			return a.Value, true
		}
	}
	if pos < 0 {
		return bytecode.Value{}, false
	}
	i := 0
	for _, a := range args {
		if a.Name != "" {
			continue
		}
		if i == pos {
			return a.Value, true
		}
		i++
	}
	return bytecode.Value{}, false
}

func argNumber(args []bytecode.ValidatorArg, name string, pos int) (float64, bool) {
	v, ok := argValue(args, name, pos)
	if !ok || !v.IsNumber() {
		return 0, false
	}
	return v.AsNumber(), true
}

func argString(args []bytecode.ValidatorArg, name string, pos int) (string, bool) {
	v, ok := argValue(args, name, pos)
	if !ok || !v.IsString() {
		return "", false
	}
	return v.AsString(), true
}

func argBool(args []bytecode.ValidatorArg, name string, pos int) (bool, bool) {
	v, ok := argValue(args, name, pos)
	if !ok || !v.IsBool() {
		return false, false
	}
	return v.AsBool(), true
}

// StringValidator enforces length and prefix/suffix constraints on a
// string value. Grounded on validator/mod.rs's StringValidator.
type StringValidator struct {
	MinLen, MaxLen, ExactLen *int
	StartWith, EndWith       *string
}

func newStringValidator(args []bytecode.ValidatorArg) (bytecode.Validator, error) {
	v := &StringValidator{}
	if n, ok := argNumber(args, "min_len", 0); ok {
		i := int(n)
		v.MinLen = &i
	}
	if n, ok := argNumber(args, "max_len", 1); ok {
		i := int(n)
		v.MaxLen = &i
	}
	if n, ok := argNumber(args, "exact_len", -1); ok {
		i := int(n)
		v.ExactLen = &i
	}
	if s, ok := argString(args, "start_with", -1); ok {
		v.StartWith = &s
	}
	if s, ok := argString(args, "end_with", -1); ok {
		v.EndWith = &s
	}
	return v, nil
}

func (v *StringValidator) Name() string { return "string" }

func (v *StringValidator) Validate(val bytecode.Value) error {
	if !val.IsString() {
		return fmt.Errorf("expected a string, got %s", val.TypeName())
	}
	s := []rune(val.AsString())
	n := len(s)
	if v.ExactLen != nil && n != *v.ExactLen {
		return fmt.Errorf("length must be exactly %d, got %d", *v.ExactLen, n)
	}
	if v.MinLen != nil && n < *v.MinLen {
		return fmt.Errorf("length must be at least %d, got %d", *v.MinLen, n)
	}
	if v.MaxLen != nil && n > *v.MaxLen {
		return fmt.Errorf("length must be at most %d, got %d", *v.MaxLen, n)
	}
	if v.StartWith != nil && !strings.HasPrefix(string(s), *v.StartWith) {
		return fmt.Errorf("must start with %q", *v.StartWith)
	}
	if v.EndWith != nil && !strings.HasSuffix(string(s), *v.EndWith) {
		return fmt.Errorf("must end with %q", *v.EndWith)
	}
	return nil
}

// NumberValidator enforces bounds and integer/float strictness on a
// number value. Grounded on validator/mod.rs's NumberValidator.
type NumberValidator struct {
	Min, Max, Equal        *float64
	StrictInt, StrictFloat bool
}

func newNumberValidator(args []bytecode.ValidatorArg) (bytecode.Validator, error) {
	v := &NumberValidator{}
	if n, ok := argNumber(args, "min", 0); ok {
		v.Min = &n
	}
	if n, ok := argNumber(args, "max", 1); ok {
		v.Max = &n
	}
	if n, ok := argNumber(args, "equal", -1); ok {
		v.Equal = &n
	}
	if b, ok := argBool(args, "strict_int", -1); ok {
		v.StrictInt = b
	}
	if b, ok := argBool(args, "strict_float", -1); ok {
		v.StrictFloat = b
	}
	return v, nil
}

func (v *NumberValidator) Name() string { return "number" }

func (v *NumberValidator) Validate(val bytecode.Value) error {
	if !val.IsNumber() {
		return fmt.Errorf("expected a number, got %s", val.TypeName())
	}
	n := val.AsNumber()
	if v.StrictInt && n != math.Trunc(n) {
		return fmt.Errorf("must be an integer, got %v", n)
	}
	if v.StrictFloat && n == math.Trunc(n) {
		return fmt.Errorf("must be a non-integer float, got %v", n)
	}
	if v.Equal != nil && n != *v.Equal {
		return fmt.Errorf("must equal %v, got %v", *v.Equal, n)
	}
	if v.Min != nil && n < *v.Min {
		return fmt.Errorf("must be >= %v, got %v", *v.Min, n)
	}
	if v.Max != nil && n > *v.Max {
		return fmt.Errorf("must be <= %v, got %v", *v.Max, n)
	}
	return nil
}

// RangeValidator is a plain numeric bounds check, distinct from
// NumberValidator in that it carries no integer/float strictness.
type RangeValidator struct {
	Min, Max *float64
}

func newRangeValidator(args []bytecode.ValidatorArg) (bytecode.Validator, error) {
	v := &RangeValidator{}
	if n, ok := argNumber(args, "min", 0); ok {
		v.Min = &n
	}
	if n, ok := argNumber(args, "max", 1); ok {
		v.Max = &n
	}
	return v, nil
}

func (v *RangeValidator) Name() string { return "range" }

func (v *RangeValidator) Validate(val bytecode.Value) error {
	if !val.IsNumber() {
		return fmt.Errorf("expected a number, got %s", val.TypeName())
	}
	n := val.AsNumber()
	if v.Min != nil && n < *v.Min {
		return fmt.Errorf("must be >= %v, got %v", *v.Min, n)
	}
	if v.Max != nil && n > *v.Max {
		return fmt.Errorf("must be <= %v, got %v", *v.Max, n)
	}
	return nil
}

// InValidator requires the value to equal one of a fixed set of
// literal values, e.g. `@in("a", "b", "c")`.
type InValidator struct {
	Values []bytecode.Value
}

func newInValidator(args []bytecode.ValidatorArg) (bytecode.Validator, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("@in requires at least one value")
	}
	vals := make([]bytecode.Value, 0, len(args))
	for _, a := range args {
		vals = append(vals, a.Value)
	}
	return &InValidator{Values: vals}, nil
}

func (v *InValidator) Name() string { return "in" }

func (v *InValidator) Validate(val bytecode.Value) error {
	for _, c := range v.Values {
		if val.Equals(c) {
			return nil
		}
	}
	return fmt.Errorf("value %s is not one of the allowed values", val.String())
}

// anyValidator is @any, which the Rust original itself aliases to its
// AnyValidator via a confusing "array" => AnyValidator dispatch; here
// it is simply InValidator's one-of-list check under its own name.
type anyValidator struct{ *InValidator }

func (a *anyValidator) Name() string { return "any" }

func newAnyValidator(args []bytecode.ValidatorArg) (bytecode.Validator, error) {
	in, err := newInValidator(args)
	if err != nil {
		return nil, err
	}
	return &anyValidator{in.(*InValidator)}, nil
}

// NotValidator negates a nested validator. The flat annotation grammar
// has no node for a nested directive, so `@not(kind, args...)` names
// the nested kind as its first (string) argument and forwards the rest
// positionally, e.g. `@not("in", "banned")`.
type NotValidator struct {
	Inner bytecode.Validator
}

func newNotValidator(args []bytecode.ValidatorArg) (bytecode.Validator, error) {
	if len(args) == 0 || !args[0].Value.IsString() {
		return nil, fmt.Errorf("@not requires a nested validator kind as its first argument")
	}
	inner, err := Build(args[0].Value.AsString(), args[1:])
	if err != nil {
		return nil, fmt.Errorf("@not: %w", err)
	}
	return &NotValidator{Inner: inner}, nil
}

func (v *NotValidator) Name() string { return "not:" + v.Inner.Name() }

func (v *NotValidator) Validate(val bytecode.Value) error {
	if v.Inner.Validate(val) == nil {
		return fmt.Errorf("must not satisfy @%s", v.Inner.Name())
	}
	return nil
}
