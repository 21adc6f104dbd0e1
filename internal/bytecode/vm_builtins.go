package bytecode

import (
	"strings"
)

// RegisterGlobal installs a native function (or any constant value, e.g.
// a module table) as a global binding, for use by the embedder API and
// internal/stdlib before a program runs.
func (vm *VM) RegisterGlobal(name string, v Value) {
	vm.globals[name] = v
}

// RegisterNativeFunction is a convenience wrapper around RegisterGlobal
// for the common case of exposing a Go function to scripts.
func (vm *VM) RegisterNativeFunction(name string, fn func(vm NativeVM, args []Value) (Value, error)) {
	vm.RegisterGlobal(name, NativeFunctionValue(&NativeFunction{Name: name, Fn: fn}))
}

// NewArray implements NativeVM.
func (vm *VM) NewArray(elems []Value) Value {
	a := NewArray(elems)
	vm.gcRegister(a)
	return ArrayValue(a)
}

// NewMap implements NativeVM.
func (vm *VM) NewMap() Value {
	m := NewMap()
	vm.gcRegister(m)
	return MapValue(m)
}

// RaiseError implements NativeVM: builds the ErrorObject value native
// functions return to signal a script-catchable failure (picked up by
// OpPropagate at the call site that awaited this native call via `?`).
func (vm *VM) RaiseError(kind, message string) Value {
	return ErrorValue(&ErrorObject{Kind: kind, Message: message})
}

// invokeBuiltinMethod dispatches `receiver.name(args)` for the built-in
// method tables of strings, arrays, and objects/maps (spec §10's
// supplemented string/array/map methods), used whenever OpInvoke's
// receiver isn't a class instance or agent with a matching method.
func (vm *VM) invokeBuiltinMethod(receiver Value, name string, args []Value, frame *callFrame) error {
	switch receiver.Type {
	case ValueArray:
		return vm.invokeArrayMethod(receiver.AsArray(), name, args, frame)
	case ValueString:
		return vm.invokeStringMethod(receiver.AsString(), name, args, frame)
	case ValueMap:
		return vm.invokeMapMethod(receiver.AsMap(), name, args, frame)
	default:
		return vm.runtimeErrorf(frame, "%s has no method %q", receiver.TypeName(), name)
	}
}

func (vm *VM) invokeArrayMethod(arr *ArrayObject, name string, args []Value, frame *callFrame) error {
	switch name {
	case "len":
		vm.push(NumberValue(float64(len(arr.Elements))))
	case "push":
		arr.Elements = append(arr.Elements, args...)
		vm.push(ArrayValue(arr))
	case "pop":
		if len(arr.Elements) == 0 {
			return vm.runtimeErrorf(frame, "pop on empty array")
		}
		last := arr.Elements[len(arr.Elements)-1]
		arr.Elements = arr.Elements[:len(arr.Elements)-1]
		vm.push(last)
	case "first":
		if len(arr.Elements) == 0 {
			vm.push(NilValue())
		} else {
			vm.push(arr.Elements[0])
		}
	case "last":
		if len(arr.Elements) == 0 {
			vm.push(NilValue())
		} else {
			vm.push(arr.Elements[len(arr.Elements)-1])
		}
	case "contains":
		if len(args) != 1 {
			return vm.runtimeErrorf(frame, "contains expects 1 argument")
		}
		found := false
		for _, e := range arr.Elements {
			if e.Equals(args[0]) {
				found = true
				break
			}
		}
		vm.push(BoolValue(found))
	case "join":
		sep := ","
		if len(args) == 1 {
			sep = args[0].AsString()
		}
		parts := make([]string, len(arr.Elements))
		for i, e := range arr.Elements {
			parts[i] = e.String()
		}
		vm.push(StringValue(strings.Join(parts, sep)))
	case "reverse":
		out := make([]Value, len(arr.Elements))
		for i, e := range arr.Elements {
			out[len(arr.Elements)-1-i] = e
		}
		vm.push(ArrayValue(NewArray(out)))
	default:
		return vm.runtimeErrorf(frame, "array has no method %q", name)
	}
	return nil
}

func (vm *VM) invokeStringMethod(s string, name string, args []Value, frame *callFrame) error {
	switch name {
	case "len":
		vm.push(NumberValue(float64(len([]rune(s)))))
	case "upper":
		vm.push(StringValue(strings.ToUpper(s)))
	case "lower":
		vm.push(StringValue(strings.ToLower(s)))
	case "trim":
		vm.push(StringValue(strings.TrimSpace(s)))
	case "contains":
		if len(args) != 1 {
			return vm.runtimeErrorf(frame, "contains expects 1 argument")
		}
		vm.push(BoolValue(strings.Contains(s, args[0].AsString())))
	case "starts_with":
		if len(args) != 1 {
			return vm.runtimeErrorf(frame, "starts_with expects 1 argument")
		}
		vm.push(BoolValue(strings.HasPrefix(s, args[0].AsString())))
	case "ends_with":
		if len(args) != 1 {
			return vm.runtimeErrorf(frame, "ends_with expects 1 argument")
		}
		vm.push(BoolValue(strings.HasSuffix(s, args[0].AsString())))
	case "split":
		sep := ""
		if len(args) == 1 {
			sep = args[0].AsString()
		}
		parts := strings.Split(s, sep)
		elems := make([]Value, len(parts))
		for i, p := range parts {
			elems[i] = StringValue(p)
		}
		vm.push(ArrayValue(NewArray(elems)))
	case "replace":
		if len(args) != 2 {
			return vm.runtimeErrorf(frame, "replace expects 2 arguments")
		}
		vm.push(StringValue(strings.ReplaceAll(s, args[0].AsString(), args[1].AsString())))
	default:
		return vm.runtimeErrorf(frame, "string has no method %q", name)
	}
	return nil
}

func (vm *VM) invokeMapMethod(m *MapObject, name string, args []Value, frame *callFrame) error {
	switch name {
	case "len":
		vm.push(NumberValue(float64(m.Len())))
	case "keys":
		keys := m.Keys()
		elems := make([]Value, len(keys))
		for i, k := range keys {
			elems[i] = StringValue(k)
		}
		vm.push(ArrayValue(NewArray(elems)))
	case "has":
		if len(args) != 1 {
			return vm.runtimeErrorf(frame, "has expects 1 argument")
		}
		_, ok := m.Get(args[0].AsString())
		vm.push(BoolValue(ok))
	case "get":
		if len(args) != 1 {
			return vm.runtimeErrorf(frame, "get expects 1 argument")
		}
		v, ok := m.Get(args[0].AsString())
		if !ok {
			vm.push(NilValue())
		} else {
			vm.push(v)
		}
	case "delete":
		if len(args) != 1 {
			return vm.runtimeErrorf(frame, "delete expects 1 argument")
		}
		m.Delete(args[0].AsString())
		vm.push(NilValue())
	default:
		return vm.runtimeErrorf(frame, "object has no method %q", name)
	}
	return nil
}
