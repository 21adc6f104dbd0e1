package stdlib

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/aiscriptdev/aiscript/internal/bytecode"
	"github.com/aiscriptdev/aiscript/internal/module"
)

// jsonModule builds the "std.json" native module: `encode`/`decode`
// bridging bytecode.Value directly to JSON text via gjson (parse) and
// sjson (incremental build), the same pair of libraries the embedder's
// ReturnValue/inject-variable projection (spec §6) uses for the JSON
// scalar side of the bridge.
func jsonModule() module.NativeLoader {
	return func() (*bytecode.ModuleObject, error) {
		exports := bytecode.NewMap()
		exports.Set("encode", bytecode.NativeFunctionValue(&bytecode.NativeFunction{
			Name: "std.json.encode",
			Fn: func(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
				if len(args) != 1 {
					return vm.RaiseError("ArgumentError", "encode expects 1 argument"), nil
				}
				text, err := valueToJSON(args[0])
				if err != nil {
					return vm.RaiseError("JSONError", err.Error()), nil
				}
				return bytecode.StringValue(text), nil
			},
		}))
		exports.Set("decode", bytecode.NativeFunctionValue(&bytecode.NativeFunction{
			Name: "std.json.decode",
			Fn: func(vm bytecode.NativeVM, args []bytecode.Value) (bytecode.Value, error) {
				if len(args) != 1 {
					return vm.RaiseError("ArgumentError", "decode expects 1 argument"), nil
				}
				text := args[0].AsString()
				if !gjson.Valid(text) {
					return vm.RaiseError("JSONError", "invalid JSON text"), nil
				}
				return gjsonToValue(vm, gjson.Parse(text)), nil
			},
		}))
		return &bytecode.ModuleObject{Path: "std.json", Exports: exports}, nil
	}
}

// JSONToValue parses JSON text into a bytecode.Value, exported for
// pkg/aiscript's inject-variable bridge (spec §6) to share with
// std.json's own decode function rather than re-implementing the
// gjson traversal.
func JSONToValue(vm bytecode.NativeVM, text string) (bytecode.Value, error) {
	if !gjson.Valid(text) {
		return bytecode.Value{}, fmt.Errorf("invalid JSON text")
	}
	return gjsonToValue(vm, gjson.Parse(text)), nil
}

// ValueToJSON renders a bytecode.Value as JSON text, exported for
// pkg/aiscript's ReturnValue projection (spec §6).
func ValueToJSON(v bytecode.Value) (string, error) {
	return valueToJSON(v)
}

// valueToJSON renders a bytecode.Value as JSON text. Composite values are
// built incrementally with sjson.SetRaw, grafting each child's own
// encoded text in at its key/index path rather than hand-assembling
// braces and commas.
func valueToJSON(v bytecode.Value) (string, error) {
	switch v.Type {
	case bytecode.ValueNil:
		return "null", nil
	case bytecode.ValueBool:
		if v.AsBool() {
			return "true", nil
		}
		return "false", nil
	case bytecode.ValueNumber:
		return strconv.FormatFloat(v.AsNumber(), 'g', -1, 64), nil
	case bytecode.ValueString:
		return quoteJSON(v.AsString()), nil
	case bytecode.ValueArray:
		arr := v.AsArray()
		out := "[]"
		for i, e := range arr.Elements {
			child, err := valueToJSON(e)
			if err != nil {
				return "", err
			}
			out, err = sjson.SetRaw(out, strconv.Itoa(i), child)
			if err != nil {
				return "", fmt.Errorf("encoding array index %d: %w", i, err)
			}
		}
		return out, nil
	case bytecode.ValueMap:
		m := v.AsMap()
		out := "{}"
		for _, k := range m.Keys() {
			fv, _ := m.Get(k)
			child, err := valueToJSON(fv)
			if err != nil {
				return "", err
			}
			out, err = sjson.SetRaw(out, sjsonEscapeKey(k), child)
			if err != nil {
				return "", fmt.Errorf("encoding field %q: %w", k, err)
			}
		}
		return out, nil
	case bytecode.ValueInstance:
		inst := v.AsInstance()
		return valueToJSON(bytecode.MapValue(inst.Fields))
	default:
		return "", fmt.Errorf("cannot encode a %s as JSON", v.TypeName())
	}
}

// quoteJSON produces a JSON string literal for s, via sjson.Set against
// a throwaway single-field document, the bridge's only use of sjson's
// scalar (not SetRaw) form.
func quoteJSON(s string) string {
	out, _ := sjson.Set("{}", "v", s)
	result := gjson.Get(out, "v").Raw
	return result
}

// sjsonEscapeKey escapes sjson path metacharacters (".", "*", "?") in an
// object key so it round-trips as a literal field name instead of being
// read as a path wildcard.
func sjsonEscapeKey(k string) string {
	out := make([]byte, 0, len(k))
	for i := 0; i < len(k); i++ {
		switch k[i] {
		case '.', '*', '?':
			out = append(out, '\\')
		}
		out = append(out, k[i])
	}
	return string(out)
}

// gjsonToValue converts a parsed gjson.Result into a bytecode.Value,
// allocating arrays/maps through vm so the collector tracks them like
// any other script-visible allocation.
func gjsonToValue(vm bytecode.NativeVM, r gjson.Result) bytecode.Value {
	switch r.Type {
	case gjson.Null:
		return bytecode.NilValue()
	case gjson.False:
		return bytecode.BoolValue(false)
	case gjson.True:
		return bytecode.BoolValue(true)
	case gjson.Number:
		return bytecode.NumberValue(r.Num)
	case gjson.String:
		return bytecode.StringValue(r.Str)
	default:
		if r.IsArray() {
			var elems []bytecode.Value
			r.ForEach(func(_, v gjson.Result) bool {
				elems = append(elems, gjsonToValue(vm, v))
				return true
			})
			return vm.NewArray(elems)
		}
		mv := vm.NewMap()
		m := mv.AsMap()
		r.ForEach(func(k, v gjson.Result) bool {
			m.Set(k.String(), gjsonToValue(vm, v))
			return true
		})
		return mv
	}
}
