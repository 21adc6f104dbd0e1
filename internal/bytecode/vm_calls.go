package bytecode

import (
	"fmt"
	"math"
)

func numMod(x, y float64) float64 { return math.Mod(x, y) }
func numPow(x, y float64) float64 { return math.Pow(x, y) }

// Call invokes a callable Value (a closure, bound method, native
// function, or class) with positional args and returns its result,
// for hosts (pkg/aiscript's eval-function-by-id) driving a specific
// function after Run has already populated the globals it closed over.
// It reuses the same synchronous nested-call machinery OpCall uses, so
// validators, constructors, and `?`-propagated errors all behave
// exactly as they would from script-issued bytecode.
func (vm *VM) Call(callee Value, args []Value) (Value, error) {
	before := len(vm.stack)
	if err := vm.call(callee, args, nil, nil); err != nil {
		return NilValue(), err
	}
	if len(vm.stack) <= before {
		return NilValue(), nil
	}
	result := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:before]
	return result, nil
}

func (vm *VM) runtimeErrorf(frame *callFrame, format string, args ...interface{}) error {
	line := 0
	name := "<script>"
	if frame != nil {
		if frame.ip-1 >= 0 && frame.ip-1 < len(frame.chunk.Code) {
			line = frame.chunk.Code[frame.ip-1].Line
		}
		name = frame.chunk.Name
	}
	trace := vm.buildStackTrace()
	return &RuntimeError{Kind: "RuntimeError", Message: fmt.Sprintf(format, args...), Trace: append([]Frame{{FunctionName: name, Line: line}}, trace...)}
}

func (vm *VM) buildStackTrace() []Frame {
	trace := make([]Frame, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := &vm.frames[i]
		line := 0
		if f.ip-1 >= 0 && f.ip-1 < len(f.chunk.Code) {
			line = f.chunk.Code[f.ip-1].Line
		}
		trace = append(trace, Frame{FunctionName: f.chunk.Name, Line: line})
	}
	return trace
}

// unhandledError turns a thrown ErrorObject (or arbitrary value) that
// reached OpThrow with no handler into a host-visible RuntimeError.
func (vm *VM) unhandledError(v Value, frame *callFrame) error {
	if v.IsError() {
		e := v.AsError()
		return vm.runtimeErrorf(frame, "unhandled error %s: %s", e.Kind, e.Message)
	}
	return vm.runtimeErrorf(frame, "uncaught throw: %s", v.String())
}

func (vm *VM) execArith(op OpCode) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}
	if op == OpAdd && a.IsString() && b.IsString() {
		vm.push(StringValue(a.AsString() + b.AsString()))
		return nil
	}
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeErrorf(vm.topFrame(), "cannot apply %s to %s and %s", op, a.TypeName(), b.TypeName())
	}
	x, y := a.AsNumber(), b.AsNumber()
	switch op {
	case OpAdd:
		vm.push(NumberValue(x + y))
	case OpSubtract:
		vm.push(NumberValue(x - y))
	case OpMultiply:
		vm.push(NumberValue(x * y))
	case OpDivide:
		if y == 0 {
			return vm.runtimeErrorf(vm.topFrame(), "division by zero")
		}
		vm.push(NumberValue(x / y))
	case OpModulo:
		if y == 0 {
			return vm.runtimeErrorf(vm.topFrame(), "division by zero")
		}
		vm.push(NumberValue(numMod(x, y)))
	case OpPower:
		vm.push(NumberValue(numPow(x, y)))
	}
	return nil
}

func (vm *VM) execCompare(op OpCode, frame *callFrame) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}
	switch op {
	case OpEqual:
		vm.push(BoolValue(a.Equals(b)))
		return nil
	case OpNotEqual:
		vm.push(BoolValue(!a.Equals(b)))
		return nil
	}
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeErrorf(frame, "cannot compare %s and %s", a.TypeName(), b.TypeName())
	}
	x, y := a.AsNumber(), b.AsNumber()
	switch op {
	case OpGreater:
		vm.push(BoolValue(x > y))
	case OpGreaterEqual:
		vm.push(BoolValue(x >= y))
	case OpLess:
		vm.push(BoolValue(x < y))
	case OpLessEqual:
		vm.push(BoolValue(x <= y))
	}
	return nil
}

// makeClosure builds a runtime Closure from a compiled prototype,
// capturing each upvalue from the defining frame per UpvalueDef.
func (vm *VM) makeClosure(proto *FunctionObject, defining *callFrame) *Closure {
	closure := &Closure{Function: proto, Upvalues: make([]*Upvalue, len(proto.UpvalueDefs))}
	for i, def := range proto.UpvalueDefs {
		if def.FromLocal {
			closure.Upvalues[i] = vm.captureUpvalue(&defining.locals[def.Index])
		} else {
			closure.Upvalues[i] = defining.closure.Upvalues[def.Index]
		}
	}
	vm.gcRegister(closure)
	return closure
}

func (vm *VM) captureUpvalue(location *Value) *Upvalue {
	for _, uv := range vm.openUpvalues {
		if uv.Location == location {
			return uv
		}
	}
	uv := &Upvalue{Location: location}
	vm.openUpvalues = append(vm.openUpvalues, uv)
	vm.gcRegister(uv)
	return uv
}

// closeUpvaluesFrom closes and detaches every open upvalue pointing into
// the given frame's locals slice, called when that frame returns.
func (vm *VM) closeUpvaluesFrom(locals []Value) {
	if len(locals) == 0 || len(vm.openUpvalues) == 0 {
		return
	}
	kept := vm.openUpvalues[:0]
	for _, uv := range vm.openUpvalues {
		inRange := false
		for i := range locals {
			if uv.Location == &locals[i] {
				inRange = true
				break
			}
		}
		if inRange {
			uv.Close()
		} else {
			kept = append(kept, uv)
		}
	}
	vm.openUpvalues = kept
}

// closeUpvalueAt closes the open upvalue (if any) pointing at the given
// local slot in frame, used when a captured local's scope ends.
func (vm *VM) closeUpvalueAt(frame *callFrame, slot uint16) {
	loc := &frame.locals[slot]
	for i, uv := range vm.openUpvalues {
		if uv.Location == loc {
			uv.Close()
			vm.openUpvalues = append(vm.openUpvalues[:i], vm.openUpvalues[i+1:]...)
			return
		}
	}
}

// call dispatches a callable value: closures/bound methods push a new
// frame and run it to completion via runFrames before returning (the
// VM has no suspended-continuation support, so every call site blocks
// here exactly like a native Go function call), classes construct an
// instance, and native functions run synchronously.
func (vm *VM) call(callee Value, positional []Value, keyword map[string]Value, selfOverride *Value) error {
	switch callee.Type {
	case ValueClosure:
		return vm.callClosure(callee.AsClosure(), positional, keyword, selfOverride)
	case ValueBoundMethod:
		bm := callee.AsBoundMethod()
		self := InstanceValue(bm.Receiver)
		return vm.callClosure(bm.Method, positional, keyword, &self)
	case ValueNativeFunction:
		return vm.callNative(callee.AsNativeFunction(), positional, keyword)
	case ValueClass:
		return vm.instantiate(callee.AsClass(), positional, keyword)
	default:
		return vm.runtimeErrorf(vm.topFrame(), "attempt to call a %s value", callee.TypeName())
	}
}

func (vm *VM) callClosure(closure *Closure, positional []Value, keyword map[string]Value, selfOverride *Value) error {
	fn := closure.Function
	locals := make([]Value, fn.Chunk.LocalCount)
	if selfOverride != nil {
		locals[0] = *selfOverride
	} else if closure.BoundSelf != nil {
		locals[0] = InstanceValue(closure.BoundSelf)
	} else {
		locals[0] = NilValue()
	}
	for i := 0; i < fn.Arity && i < len(fn.ParamNames); i++ {
		if i < len(positional) {
			locals[i+1] = positional[i]
		} else {
			locals[i+1] = NilValue()
		}
	}
	for name, v := range keyword {
		for i, pn := range fn.ParamNames {
			if pn == name {
				locals[i+1] = v
				break
			}
		}
	}
	if errVal, failed := vm.enforceValidators(fn, locals); failed {
		// A validation failure is a normal call result, not a host
		// error: push it exactly where OpReturn would push a return
		// value, so `?` and ordinary assignment both see a
		// ValidationError value rather than an aborted VM.
		vm.push(errVal)
		return nil
	}

	depth := len(vm.frames)
	vm.frames = append(vm.frames, callFrame{closure: closure, chunk: fn.Chunk, locals: locals})
	return vm.runFrames(depth)
}

func (vm *VM) callNative(nf *NativeFunction, positional []Value, keyword map[string]Value) error {
	args := positional
	if len(keyword) > 0 {
		args = append(append([]Value(nil), positional...), mapValues(keyword)...)
	}
	result, err := nf.Fn(vm, args)
	if err != nil {
		return vm.runtimeErrorf(vm.topFrame(), "%s: %v", nf.Name, err)
	}
	vm.push(result)
	return nil
}

func mapValues(m map[string]Value) []Value {
	out := make([]Value, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// instantiate constructs a new Instance (or AgentObject, for an agent
// class) of class: each field's default initializer runs to completion
// before `init` is invoked, matching the declaration-order
// initialization a reader would expect.
func (vm *VM) instantiate(class *ClassObject, positional []Value, keyword map[string]Value) error {
	fields := NewMap()
	vm.gcRegister(fields)
	for _, spec := range class.Fields {
		if !spec.HasDefault {
			fields.Set(spec.Name, NilValue())
			continue
		}
		v, err := vm.runInitializer(spec.Default)
		if err != nil {
			return err
		}
		fields.Set(spec.Name, v)
	}

	var result Value
	if class.IsAgent {
		agent := &AgentObject{Name: class.Name, Fields: fields, Methods: class.Methods}
		vm.gcRegister(agent)
		result = AgentValue(agent)
	} else {
		inst := &Instance{Class: class, Fields: fields}
		vm.gcRegister(inst)
		result = InstanceValue(inst)
	}

	if init, ok := class.FindMethod("init"); ok {
		if err := vm.callClosure(init, positional, keyword, &result); err != nil {
			return err
		}
		initResult, err := vm.pop() // init's own return value, normally discarded
		if err != nil {
			return err
		}
		if initResult.IsError() {
			// A constructor's validators failed: the ValidationError
			// becomes the constructor call's result instead of the
			// instance (spec: `Ctor(...)?` propagates the error).
			vm.push(initResult)
			return nil
		}
	}
	vm.push(result)
	return nil
}

// runInitializer runs a field's zero-arg default-value chunk to
// completion and returns the value it leaves on the stack.
func (vm *VM) runInitializer(fn *FunctionObject) (Value, error) {
	depth := len(vm.frames)
	vm.frames = append(vm.frames, callFrame{chunk: fn.Chunk, locals: make([]Value, fn.Chunk.LocalCount)})
	if err := vm.runFrames(depth); err != nil {
		return NilValue(), err
	}
	return vm.pop()
}

// enforceValidators checks every parameter-level validator against its
// bound argument and aggregates ALL failing fields into a single
// ValidationError value instead of stopping at the first failure.
// failed is false (and the returned Value is meaningless) when every
// parameter passes.
func (vm *VM) enforceValidators(fn *FunctionObject, locals []Value) (Value, bool) {
	if len(fn.Chunk.Validators) == 0 {
		return Value{}, false
	}
	var fieldErrors []Value
	for i, name := range fn.ParamNames {
		vs, ok := fn.Chunk.Validators[name]
		if !ok {
			continue
		}
		arg := locals[i+1]
		for _, v := range vs {
			if err := v.Validate(arg); err != nil {
				fe := NewMap()
				fe.Set("field", StringValue(name))
				fe.Set("kind", StringValue(v.Name()))
				fe.Set("message", StringValue(err.Error()))
				fe.Set("value", arg)
				fieldErrors = append(fieldErrors, MapValue(fe))
			}
		}
	}
	if len(fieldErrors) == 0 {
		return Value{}, false
	}
	data := NewMap()
	data.Set("errors", ArrayValue(NewArray(fieldErrors)))
	msg := fmt.Sprintf("%d parameter(s) failed validation", len(fieldErrors))
	return ErrorValue(&ErrorObject{Kind: "ValidationError", Message: msg, Data: data}), true
}

func (vm *VM) getProperty(obj Value, name string, frame *callFrame) (Value, error) {
	switch obj.Type {
	case ValueInstance:
		inst := obj.AsInstance()
		if v, ok := inst.Fields.Get(name); ok {
			return v, nil
		}
		if m, ok := inst.Class.FindMethod(name); ok {
			return BoundMethodValue(&BoundMethod{Receiver: inst, Method: m}), nil
		}
		return NilValue(), vm.runtimeErrorf(frame, "%s has no property %q", obj.TypeName(), name)
	case ValueAgent:
		agent := obj.AsAgent()
		if v, ok := agent.Fields.Get(name); ok {
			return v, nil
		}
		if m, ok := agent.Methods[name]; ok {
			return ClosureValue(&Closure{Function: m.Function, Upvalues: m.Upvalues}), nil
		}
		return NilValue(), vm.runtimeErrorf(frame, "agent has no property %q", name)
	case ValueMap:
		if v, ok := obj.AsMap().Get(name); ok {
			return v, nil
		}
		return NilValue(), nil
	case ValueModule:
		if v, ok := obj.AsModule().Exports.Get(name); ok {
			return v, nil
		}
		return NilValue(), vm.runtimeErrorf(frame, "module has no export %q", name)
	case ValueError:
		e := obj.AsError()
		switch name {
		case "kind":
			return StringValue(e.Kind), nil
		case "message":
			return StringValue(e.Message), nil
		case "data":
			if e.Data != nil {
				return MapValue(e.Data), nil
			}
			return NilValue(), nil
		}
		return NilValue(), vm.runtimeErrorf(frame, "error has no property %q", name)
	default:
		return NilValue(), vm.runtimeErrorf(frame, "%s has no property %q", obj.TypeName(), name)
	}
}

func (vm *VM) setProperty(obj Value, name string, value Value, frame *callFrame) error {
	switch obj.Type {
	case ValueInstance:
		obj.AsInstance().Fields.Set(name, value)
		return nil
	case ValueAgent:
		obj.AsAgent().Fields.Set(name, value)
		return nil
	case ValueMap:
		obj.AsMap().Set(name, value)
		return nil
	default:
		return vm.runtimeErrorf(frame, "cannot set property %q on a %s", name, obj.TypeName())
	}
}

// invoke is OpInvoke's handler: a fused `obj.method(args)` that avoids
// materializing an intermediate BoundMethod for the common case, and
// falls back to a value/collection's builtin method table when obj
// isn't a class instance.
func (vm *VM) invoke(receiver Value, name string, positional []Value, keyword map[string]Value, frame *callFrame) error {
	switch receiver.Type {
	case ValueInstance:
		inst := receiver.AsInstance()
		if m, ok := inst.Class.FindMethod(name); ok {
			return vm.callClosure(m, positional, keyword, &receiver)
		}
		if v, ok := inst.Fields.Get(name); ok && v.IsCallable() {
			return vm.call(v, positional, keyword, nil)
		}
	case ValueAgent:
		agent := receiver.AsAgent()
		if m, ok := agent.Methods[name]; ok {
			return vm.callClosure(m, positional, keyword, &receiver)
		}
	case ValueEnumVariant:
		ev := receiver.AsEnumVariant()
		enumVal, ok := vm.globals[ev.Enum]
		if ok && enumVal.Type == ValueEnum {
			if m, ok := enumVal.AsEnum().Methods[name]; ok {
				return vm.callClosure(m, positional, keyword, &receiver)
			}
		}
	}
	return vm.invokeBuiltinMethod(receiver, name, positional, frame)
}

func (vm *VM) getSuperMethod(self Value, name string, frame *callFrame) (Value, error) {
	if self.Type != ValueInstance {
		return NilValue(), vm.runtimeErrorf(frame, "'super' used outside of an instance method")
	}
	inst := self.AsInstance()
	if inst.Class.Superclass == nil {
		return NilValue(), vm.runtimeErrorf(frame, "class %s has no superclass", inst.Class.Name)
	}
	m, ok := inst.Class.Superclass.FindMethod(name)
	if !ok {
		return NilValue(), vm.runtimeErrorf(frame, "superclass %s has no method %q", inst.Class.Superclass.Name, name)
	}
	return ClosureValue(m), nil
}

func (vm *VM) indexGet(coll, idx Value, frame *callFrame) (Value, error) {
	switch coll.Type {
	case ValueArray:
		arr := coll.AsArray()
		i, err := arrayIndex(idx, len(arr.Elements), frame, vm)
		if err != nil {
			return NilValue(), err
		}
		return arr.Elements[i], nil
	case ValueString:
		s := []rune(coll.AsString())
		i, err := arrayIndex(idx, len(s), frame, vm)
		if err != nil {
			return NilValue(), err
		}
		return StringValue(string(s[i])), nil
	case ValueMap:
		if !idx.IsString() {
			return NilValue(), vm.runtimeErrorf(frame, "object keys must be strings")
		}
		v, ok := coll.AsMap().Get(idx.AsString())
		if !ok {
			return NilValue(), nil
		}
		return v, nil
	default:
		return NilValue(), vm.runtimeErrorf(frame, "cannot index a %s", coll.TypeName())
	}
}

func (vm *VM) indexSet(coll, idx, value Value, frame *callFrame) error {
	switch coll.Type {
	case ValueArray:
		arr := coll.AsArray()
		i, err := arrayIndex(idx, len(arr.Elements), frame, vm)
		if err != nil {
			return err
		}
		arr.Elements[i] = value
		return nil
	case ValueMap:
		if !idx.IsString() {
			return vm.runtimeErrorf(frame, "object keys must be strings")
		}
		coll.AsMap().Set(idx.AsString(), value)
		return nil
	default:
		return vm.runtimeErrorf(frame, "cannot index-assign a %s", coll.TypeName())
	}
}

func arrayIndex(idx Value, length int, frame *callFrame, vm *VM) (int, error) {
	if !idx.IsNumber() {
		return 0, vm.runtimeErrorf(frame, "index must be a number")
	}
	i := int(idx.AsNumber())
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, vm.runtimeErrorf(frame, "index %d out of range (length %d)", int(idx.AsNumber()), length)
	}
	return i, nil
}
