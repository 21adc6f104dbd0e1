package stdlib

import (
	"math"
	"math/rand"

	"github.com/aiscriptdev/aiscript/internal/bytecode"
	"github.com/aiscriptdev/aiscript/internal/module"
)

// mathModule builds "std.math": a table of one-Go-function-per-builtin
// entries, the same registration-table shape go-dws uses for its own
// math builtins (internal/bytecode/vm_builtins_math.go), rebuilt as a
// module export table instead of a VM-global builtin map.
func mathModule() module.NativeLoader {
	return func() (*bytecode.ModuleObject, error) {
		exports := bytecode.NewMap()
		exports.Set("pi", bytecode.NumberValue(math.Pi))
		exports.Set("e", bytecode.NumberValue(math.E))
		exports.Set("abs", nativeFn("std.math.abs", unary(math.Abs)))
		exports.Set("floor", nativeFn("std.math.floor", unary(math.Floor)))
		exports.Set("ceil", nativeFn("std.math.ceil", unary(math.Ceil)))
		exports.Set("round", nativeFn("std.math.round", unary(math.Round)))
		exports.Set("trunc", nativeFn("std.math.trunc", unary(math.Trunc)))
		exports.Set("sqrt", nativeFn("std.math.sqrt", unary(math.Sqrt)))
		exports.Set("sin", nativeFn("std.math.sin", unary(math.Sin)))
		exports.Set("cos", nativeFn("std.math.cos", unary(math.Cos)))
		exports.Set("tan", nativeFn("std.math.tan", unary(math.Tan)))
		exports.Set("log", nativeFn("std.math.log", unary(math.Log)))
		exports.Set("log10", nativeFn("std.math.log10", unary(math.Log10)))
		exports.Set("exp", nativeFn("std.math.exp", unary(math.Exp)))
		exports.Set("sign", nativeFn("std.math.sign", fnSign))
		exports.Set("pow", nativeFn("std.math.pow", fnPow))
		exports.Set("min", nativeFn("std.math.min", fnMin))
		exports.Set("max", nativeFn("std.math.max", fnMax))
		exports.Set("random", nativeFn("std.math.random", fnRandom))
		exports.Set("random_int", nativeFn("std.math.random_int", fnRandomInt))
		return &bytecode.ModuleObject{Path: "std.math", Exports: exports}, nil
	}
}

func unary(f func(float64) float64) func(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	return func(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
		if len(args) != 1 {
			return vm.RaiseError("ArgumentError", "expects 1 numeric argument"), nil
		}
		return bytecode.NumberValue(f(args[0].AsNumber())), nil
	}
}

func fnSign(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 1 {
		return vm.RaiseError("ArgumentError", "sign expects 1 argument"), nil
	}
	n := args[0].AsNumber()
	switch {
	case n > 0:
		return bytecode.NumberValue(1), nil
	case n < 0:
		return bytecode.NumberValue(-1), nil
	default:
		return bytecode.NumberValue(0), nil
	}
}

func fnPow(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 2 {
		return vm.RaiseError("ArgumentError", "pow expects 2 arguments"), nil
	}
	return bytecode.NumberValue(math.Pow(args[0].AsNumber(), args[1].AsNumber())), nil
}

func fnMin(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) == 0 {
		return vm.RaiseError("ArgumentError", "min expects at least 1 argument"), nil
	}
	m := args[0].AsNumber()
	for _, a := range args[1:] {
		if a.AsNumber() < m {
			m = a.AsNumber()
		}
	}
	return bytecode.NumberValue(m), nil
}

func fnMax(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) == 0 {
		return vm.RaiseError("ArgumentError", "max expects at least 1 argument"), nil
	}
	m := args[0].AsNumber()
	for _, a := range args[1:] {
		if a.AsNumber() > m {
			m = a.AsNumber()
		}
	}
	return bytecode.NumberValue(m), nil
}

func fnRandom(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 0 {
		return vm.RaiseError("ArgumentError", "random expects no arguments"), nil
	}
	return bytecode.NumberValue(rand.Float64()), nil
}

func fnRandomInt(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 1 {
		return vm.RaiseError("ArgumentError", "random_int expects 1 argument (exclusive upper bound)"), nil
	}
	n := int(args[0].AsNumber())
	if n <= 0 {
		return vm.RaiseError("ArgumentError", "random_int's upper bound must be positive"), nil
	}
	return bytecode.NumberValue(float64(rand.Intn(n))), nil
}
