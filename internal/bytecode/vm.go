package bytecode

import (
	"fmt"
	"io"

	"github.com/aiscriptdev/aiscript/internal/gc"
)

const (
	defaultStackCapacity = 256
	defaultFrameCapacity = 16
)

// callFrame is a single activation record in the VM's call stack.
type callFrame struct {
	closure *Closure
	chunk   *Chunk
	locals  []Value
	ip      int
}

// ModuleResolver resolves a `use` path to a module's export table. It is
// set by internal/module so internal/bytecode stays free of a direct
// dependency on the module registry, mirroring how ValidatorBuilder
// decouples internal/validator.
type ModuleResolver func(path string) (*ModuleObject, error)

// AgentPrompter issues a prompt from inside an `ai fn` and returns the
// agent runtime's response; set by internal/agentrt.
type AgentPrompter func(agent *AgentObject, prompt Value) (Value, error)

// VM executes chunks produced by the compiler.
type VM struct {
	Output io.Writer

	stack        []Value
	frames       []callFrame
	globals      map[string]Value
	openUpvalues []*Upvalue

	ResolveModule ModuleResolver
	Prompt        AgentPrompter

	// GC tracks liveness of the heap objects allocated during this VM's
	// lifetime (see internal/gc). Never nil; NewVM always installs one.
	GC *gc.Collector

	currentAgent *AgentObject // set while executing inside an agent method, for OpPrompt
}

func NewVM() *VM {
	return &VM{
		stack:   make([]Value, 0, defaultStackCapacity),
		frames:  make([]callFrame, 0, defaultFrameCapacity),
		globals: make(map[string]Value),
		GC:      gc.NewCollector(0),
		Output:  nil,
	}
}

// gcRegister tracks a freshly allocated heap object with the collector
// and runs a collection pass if enough fuel has accumulated. Called from
// every allocation site (NewArray, NewMap, makeClosure, captureUpvalue,
// instantiate) instead of only at opcode dispatch boundaries, so a tight
// allocation loop inside a single instruction still gets collected.
func (vm *VM) gcRegister(obj any) {
	vm.GC.Register(obj)
	if vm.GC.ShouldCollect() {
		vm.GC.Collect(vm.gcRoots)
	}
}

// gcRoots is the GC's root-walking function: every heap value directly
// reachable from VM state without going through another heap object
// (the operand stack, every live frame's locals, the open-upvalue
// chain, and the global table) per spec §4.5's root-set definition.
func (vm *VM) gcRoots(mark func(obj any)) {
	for _, v := range vm.stack {
		if ref := v.HeapRef(); ref != nil {
			mark(ref)
		}
	}
	for i := range vm.frames {
		for _, v := range vm.frames[i].locals {
			if ref := v.HeapRef(); ref != nil {
				mark(ref)
			}
		}
		if vm.frames[i].closure != nil {
			mark(vm.frames[i].closure)
		}
	}
	for _, uv := range vm.openUpvalues {
		mark(uv)
	}
	for _, v := range vm.globals {
		if ref := v.HeapRef(); ref != nil {
			mark(ref)
		}
	}
}

// Run executes a top-level chunk (the compiled program) and returns its
// final value (the operand OpHalt leaves on the stack, nil if the
// program never pushed one).
func (vm *VM) Run(chunk *Chunk) (Value, error) {
	if chunk == nil {
		return NilValue(), fmt.Errorf("bytecode: nil chunk")
	}
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	vm.openUpvalues = vm.openUpvalues[:0]

	vm.frames = append(vm.frames, callFrame{
		chunk:  chunk,
		locals: make([]Value, chunk.LocalCount),
	})

	if err := vm.execute(); err != nil {
		return NilValue(), err
	}
	if len(vm.stack) == 0 {
		return NilValue(), nil
	}
	return vm.stack[len(vm.stack)-1], nil
}

// Global looks up a top-level binding by name, for hosts (internal/module,
// pkg/aiscript) that need to read a module's result after Run returns.
func (vm *VM) Global(name string) (Value, bool) {
	v, ok := vm.globals[name]
	return v, ok
}

// execute runs the fetch-decode-dispatch loop until the frame stack
// empties (top-level OpHalt/OpReturn) or a propagated error/exception
// escapes every frame.
func (vm *VM) execute() error {
	return vm.runFrames(0)
}

// runFrames drives the dispatch loop until the frame stack depth drops
// back to minDepth. A synchronous nested call (constructor field
// initializers, `init` methods, super calls made outside the main
// execute() entry point) pushes its frame and calls runFrames(depth
// before push) so the call completes before the enclosing instruction
// continues, without duplicating the switch below.
func (vm *VM) runFrames(minDepth int) error {
	for len(vm.frames) > minDepth {
		frame := &vm.frames[len(vm.frames)-1]

		if frame.ip >= len(frame.chunk.Code) {
			vm.closeUpvaluesFrom(frame.locals)
			vm.frames = vm.frames[:len(vm.frames)-1]
			continue
		}

		inst := frame.chunk.Code[frame.ip]
		frame.ip++

		switch inst.Op {
		case OpHalt:
			return nil

		case OpConstant:
			vm.push(frame.chunk.Constants[inst.A])
		case OpNil:
			vm.push(NilValue())
		case OpTrue:
			vm.push(BoolValue(true))
		case OpFalse:
			vm.push(BoolValue(false))

		case OpPop:
			if _, err := vm.pop(); err != nil {
				return err
			}
		case OpPopN:
			for i := uint16(0); i < inst.A; i++ {
				if _, err := vm.pop(); err != nil {
					return err
				}
			}

		case OpAdd, OpSubtract, OpMultiply, OpDivide, OpModulo, OpPower:
			if err := vm.execArith(inst.Op); err != nil {
				return err
			}
		case OpNegate:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			if !v.IsNumber() {
				return vm.runtimeErrorf(frame, "cannot negate a %s", v.TypeName())
			}
			vm.push(NumberValue(-v.AsNumber()))
		case OpNot:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			vm.push(BoolValue(!v.IsTruthy()))

		case OpEqual, OpNotEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
			if err := vm.execCompare(inst.Op, frame); err != nil {
				return err
			}

		case OpDefineGlobal:
			name := frame.chunk.Constants[inst.A].AsString()
			v, err := vm.pop()
			if err != nil {
				return err
			}
			vm.globals[name] = v
		case OpGetGlobal:
			name := frame.chunk.Constants[inst.A].AsString()
			v, ok := vm.globals[name]
			if !ok {
				return vm.runtimeErrorf(frame, "undefined variable %q", name)
			}
			vm.push(v)
		case OpSetGlobal:
			name := frame.chunk.Constants[inst.A].AsString()
			v, err := vm.peek(0)
			if err != nil {
				return err
			}
			if _, ok := vm.globals[name]; !ok {
				return vm.runtimeErrorf(frame, "undefined variable %q", name)
			}
			vm.globals[name] = v
		case OpGetLocal:
			vm.push(frame.locals[inst.A])
		case OpSetLocal:
			v, err := vm.peek(0)
			if err != nil {
				return err
			}
			frame.locals[inst.A] = v
		case OpGetUpvalue:
			vm.push(*frame.closure.Upvalues[inst.A].Location)
		case OpSetUpvalue:
			v, err := vm.peek(0)
			if err != nil {
				return err
			}
			*frame.closure.Upvalues[inst.A].Location = v
		case OpCloseUpvalue:
			vm.closeUpvalueAt(frame, inst.A)

		case OpJump:
			frame.ip += int(inst.B)
		case OpJumpIfFalse:
			v, err := vm.peek(0)
			if err != nil {
				return err
			}
			if !v.IsTruthy() {
				frame.ip += int(inst.B)
			}
		case OpJumpIfTrue:
			v, err := vm.peek(0)
			if err != nil {
				return err
			}
			if v.IsTruthy() {
				frame.ip += int(inst.B)
			}
		case OpLoop:
			frame.ip -= int(inst.B)

		case OpClosure:
			proto := frame.chunk.Constants[inst.A].Data.(*FunctionObject)
			closure := vm.makeClosure(proto, frame)
			vm.push(ClosureValue(closure))

		case OpCall:
			positional, kw, err := vm.popCallArgs(int(inst.A), int(inst.B))
			if err != nil {
				return err
			}
			callee, err := vm.pop()
			if err != nil {
				return err
			}
			if err := vm.call(callee, positional, kw, nil); err != nil {
				return err
			}
		case OpReturn:
			result, err := vm.pop()
			if err != nil {
				return err
			}
			vm.closeUpvaluesFrom(frame.locals)
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.push(result)

		case OpGetProperty:
			name := frame.chunk.Constants[inst.A].AsString()
			obj, err := vm.pop()
			if err != nil {
				return err
			}
			v, err := vm.getProperty(obj, name, frame)
			if err != nil {
				return err
			}
			vm.push(v)
		case OpSetProperty:
			name := frame.chunk.Constants[inst.A].AsString()
			value, err := vm.pop()
			if err != nil {
				return err
			}
			obj, err := vm.pop()
			if err != nil {
				return err
			}
			if err := vm.setProperty(obj, name, value, frame); err != nil {
				return err
			}
			vm.push(value)
		case OpInvoke:
			name := frame.chunk.Constants[inst.A].AsString()
			positional, kw, err := vm.popCallArgs(int(inst.B&0xFF), int((inst.B>>8)&0xFF))
			if err != nil {
				return err
			}
			receiver, err := vm.pop()
			if err != nil {
				return err
			}
			if err := vm.invoke(receiver, name, positional, kw, frame); err != nil {
				return err
			}
		case OpGetSuper:
			name := frame.chunk.Constants[inst.A].AsString()
			self, err := vm.pop()
			if err != nil {
				return err
			}
			v, err := vm.getSuperMethod(self, name, frame)
			if err != nil {
				return err
			}
			vm.push(v)
		case OpSuperInvoke:
			name := frame.chunk.Constants[inst.A].AsString()
			positional, kw, err := vm.popCallArgs(int(inst.B&0xFF), int((inst.B>>8)&0xFF))
			if err != nil {
				return err
			}
			self, err := vm.pop()
			if err != nil {
				return err
			}
			method, err := vm.getSuperMethod(self, name, frame)
			if err != nil {
				return err
			}
			if err := vm.call(method, positional, kw, &self); err != nil {
				return err
			}

		case OpClass:
			proto := frame.chunk.Constants[inst.A].Data.(*ClassObject)
			vm.push(ClassValue(cloneClass(proto)))
		case OpInherit:
			super, err := vm.pop()
			if err != nil {
				return err
			}
			class, err := vm.peek(0)
			if err != nil {
				return err
			}
			if super.Type != ValueClass {
				return vm.runtimeErrorf(frame, "superclass must be a class, got %s", super.TypeName())
			}
			class.AsClass().Superclass = super.AsClass()
		case OpAgent:
			proto := frame.chunk.Constants[inst.A].Data.(*ClassObject)
			vm.push(ClassValue(cloneClass(proto)))
		case OpEnum:
			proto := frame.chunk.Constants[inst.A].Data.(*EnumObject)
			vm.push(EnumValue(proto))
		case OpMakeEnumValue:
			variantName := frame.chunk.Constants[inst.A].AsString()
			fields, err := vm.popN(int(inst.B))
			if err != nil {
				return err
			}
			enumVal, err := vm.pop()
			if err != nil {
				return err
			}
			if enumVal.Type != ValueEnum {
				return vm.runtimeErrorf(frame, "expected an enum, got %s", enumVal.TypeName())
			}
			en := enumVal.AsEnum()
			if _, ok := en.Variants[variantName]; !ok {
				return vm.runtimeErrorf(frame, "enum %s has no variant %s", en.Name, variantName)
			}
			vm.push(EnumVariantValue(&EnumVariantValueData{Enum: en.Name, Variant: variantName, Fields: fields}))

		case OpMakeArray:
			elems, err := vm.popN(int(inst.A))
			if err != nil {
				return err
			}
			arr := NewArray(elems)
			vm.gcRegister(arr)
			vm.push(ArrayValue(arr))
		case OpMakeMap:
			n := int(inst.A)
			m := NewMap()
			vm.gcRegister(m)
			kvs, err := vm.popN(2 * n)
			if err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				m.Set(kvs[2*i].AsString(), kvs[2*i+1])
			}
			vm.push(MapValue(m))
		case OpIndexGet:
			idx, err := vm.pop()
			if err != nil {
				return err
			}
			coll, err := vm.pop()
			if err != nil {
				return err
			}
			v, err := vm.indexGet(coll, idx, frame)
			if err != nil {
				return err
			}
			vm.push(v)
		case OpIndexSet:
			value, err := vm.pop()
			if err != nil {
				return err
			}
			idx, err := vm.pop()
			if err != nil {
				return err
			}
			coll, err := vm.pop()
			if err != nil {
				return err
			}
			if err := vm.indexSet(coll, idx, value, frame); err != nil {
				return err
			}
			vm.push(value)

		case OpThrow:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			return vm.unhandledError(v, frame)
		case OpPropagate:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			if v.IsError() {
				vm.closeUpvaluesFrom(frame.locals)
				vm.frames = vm.frames[:len(vm.frames)-1]
				vm.push(v)
				continue
			}
			vm.push(v)
		case OpTry:
			// Reserved: structured try regions are not currently emitted by
			// the compiler (the `?` operator compiles straight to
			// OpPropagate); kept for a future multi-statement try block.

		case OpImportModule:
			path := frame.chunk.Constants[inst.A].AsString()
			if vm.ResolveModule == nil {
				return vm.runtimeErrorf(frame, "no module resolver configured, cannot import %q", path)
			}
			mod, err := vm.ResolveModule(path)
			if err != nil {
				return vm.runtimeErrorf(frame, "importing %q: %v", path, err)
			}
			vm.push(ModuleValue(mod))
		case OpGetModuleVar:
			modName := frame.chunk.Constants[inst.A].AsString()
			varName := frame.chunk.Constants[inst.B].AsString()
			modVal, ok := vm.globals[modName]
			if !ok || modVal.Type != ValueModule {
				return vm.runtimeErrorf(frame, "%q is not an imported module", modName)
			}
			v, ok := modVal.AsModule().Exports.Get(varName)
			if !ok {
				return vm.runtimeErrorf(frame, "module %q has no export %q", modName, varName)
			}
			vm.push(v)

		case OpPrompt:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			if vm.Prompt == nil {
				return vm.runtimeErrorf(frame, "no agent runtime configured, cannot prompt")
			}
			resp, err := vm.Prompt(vm.currentAgent, v)
			if err != nil {
				return vm.runtimeErrorf(frame, "prompt failed: %v", err)
			}
			vm.push(resp)

		default:
			return vm.runtimeErrorf(frame, "unimplemented opcode %s", inst.Op)
		}
	}
	return nil
}

func cloneClass(proto *ClassObject) *ClassObject {
	c := &ClassObject{Name: proto.Name, Superclass: proto.Superclass, Doc: proto.Doc, IsAgent: proto.IsAgent}
	c.Fields = append([]FieldSpec(nil), proto.Fields...)
	c.Methods = make(map[string]*Closure, len(proto.Methods))
	for k, v := range proto.Methods {
		c.Methods[k] = v
	}
	return c
}
