package stdlib

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/aiscriptdev/aiscript/internal/bytecode"
	"github.com/aiscriptdev/aiscript/internal/module"
)

// stringsModule builds "std.strings": locale-aware comparison and
// Unicode normalization on top of golang.org/x/text, grounded on
// go-dws's internal/bytecode/vm_builtins_string.go (CompareText,
// SameText) which reaches for the same package for its own
// case/locale-insensitive comparisons. Plain ASCII-ish helpers
// (upper/lower/trim/split/join) are the stdlib strings package,
// matching the rest of this file's non-Unicode-sensitive builtins.
func stringsModule() module.NativeLoader {
	return func() (*bytecode.ModuleObject, error) {
		exports := bytecode.NewMap()
		exports.Set("upper", nativeFn("std.strings.upper", fnUpper))
		exports.Set("lower", nativeFn("std.strings.lower", fnLower))
		exports.Set("trim", nativeFn("std.strings.trim", fnTrim))
		exports.Set("split", nativeFn("std.strings.split", fnSplit))
		exports.Set("join", nativeFn("std.strings.join", fnJoin))
		exports.Set("contains", nativeFn("std.strings.contains", fnContains))
		exports.Set("normalize", nativeFn("std.strings.normalize", fnNormalize))
		exports.Set("compare_locale", nativeFn("std.strings.compare_locale", fnCompareLocale))
		return &bytecode.ModuleObject{Path: "std.strings", Exports: exports}, nil
	}
}

func fnUpper(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 1 {
		return vm.RaiseError("ArgumentError", "upper expects 1 argument"), nil
	}
	return bytecode.StringValue(strings.ToUpper(args[0].AsString())), nil
}

func fnLower(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 1 {
		return vm.RaiseError("ArgumentError", "lower expects 1 argument"), nil
	}
	return bytecode.StringValue(strings.ToLower(args[0].AsString())), nil
}

func fnTrim(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 1 {
		return vm.RaiseError("ArgumentError", "trim expects 1 argument"), nil
	}
	return bytecode.StringValue(strings.TrimSpace(args[0].AsString())), nil
}

func fnSplit(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 2 {
		return vm.RaiseError("ArgumentError", "split expects (text, separator)"), nil
	}
	parts := strings.Split(args[0].AsString(), args[1].AsString())
	elems := make([]bytecode.Value, len(parts))
	for i, p := range parts {
		elems[i] = bytecode.StringValue(p)
	}
	return vm.NewArray(elems), nil
}

func fnJoin(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 2 {
		return vm.RaiseError("ArgumentError", "join expects (array, separator)"), nil
	}
	arr := args[0].AsArray()
	parts := make([]string, len(arr.Elements))
	for i, e := range arr.Elements {
		parts[i] = e.AsString()
	}
	return bytecode.StringValue(strings.Join(parts, args[1].AsString())), nil
}

func fnContains(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 2 {
		return vm.RaiseError("ArgumentError", "contains expects (text, substring)"), nil
	}
	return bytecode.BoolValue(strings.Contains(args[0].AsString(), args[1].AsString())), nil
}

// fnNormalize applies Unicode NFC normalization, so script-level string
// equality behaves the same for visually-identical but differently
// composed input (e.g. precomposed "é" vs "e"+combining-acute) — the
// same class of problem go-dws's encoding.go's norm.NFC use addresses
// for DWScript source/string literals.
func fnNormalize(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 1 {
		return vm.RaiseError("ArgumentError", "normalize expects 1 argument"), nil
	}
	return bytecode.StringValue(norm.NFC.String(args[0].AsString())), nil
}

// fnCompareLocale orders two strings under the default collation
// locale (spec leaves locale-aware ordering unspecified; collate.New
// with no language tag gives root-locale/Unicode-default ordering),
// grounded on go-dws's CompareText builtin which wraps
// golang.org/x/text/collate the same way.
func fnCompareLocale(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 2 {
		return vm.RaiseError("ArgumentError", "compare_locale expects 2 arguments"), nil
	}
	c := collate.New(language.Und)
	return bytecode.NumberValue(float64(c.CompareString(args[0].AsString(), args[1].AsString()))), nil
}
