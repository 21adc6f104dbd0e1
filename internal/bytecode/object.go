package bytecode

import "strings"

// ArrayObject is AIScript's mutable, heap-allocated array.
type ArrayObject struct {
	Elements []Value
}

func NewArray(elems []Value) *ArrayObject { return &ArrayObject{Elements: elems} }

// TraceRefs implements gc.Tracer: an array's children are its elements.
func (a *ArrayObject) TraceRefs(visit func(any)) {
	for _, e := range a.Elements {
		if ref := e.HeapRef(); ref != nil {
			visit(ref)
		}
	}
}

func (a *ArrayObject) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, e := range a.Elements {
		if i > 0 {
			sb.WriteString(", ")
		}
		if e.Type == ValueString {
			sb.WriteString("\"" + e.AsString() + "\"")
		} else {
			sb.WriteString(e.String())
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// MapObject is AIScript's insertion-ordered object/map value: keys
// retain declaration order for literal objects as well as instance
// fields.
type MapObject struct {
	keys   []string
	values map[string]Value
}

func NewMap() *MapObject {
	return &MapObject{values: make(map[string]Value)}
}

func (m *MapObject) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *MapObject) Set(key string, v Value) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

func (m *MapObject) Delete(key string) {
	if _, exists := m.values[key]; !exists {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m *MapObject) Keys() []string { return m.keys }
func (m *MapObject) Len() int       { return len(m.keys) }

// TraceRefs implements gc.Tracer: a map's children are its values.
func (m *MapObject) TraceRefs(visit func(any)) {
	for _, v := range m.values {
		if ref := v.HeapRef(); ref != nil {
			visit(ref)
		}
	}
}

func (m *MapObject) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range m.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		v := m.values[k]
		sb.WriteString(k + ": ")
		if v.Type == ValueString {
			sb.WriteString("\"" + v.AsString() + "\"")
		} else {
			sb.WriteString(v.String())
		}
	}
	sb.WriteString("}")
	return sb.String()
}

// UpvalueDef describes, at compile time, where a closure's upvalue
// slot comes from: a local slot in the immediately enclosing function,
// or an upvalue already captured by that enclosing function.
type UpvalueDef struct {
	Index     uint8
	FromLocal bool
}

// FunctionObject is a compiled function: its chunk plus metadata needed
// to build closures over it.
type FunctionObject struct {
	Name        string
	Arity       int
	ParamNames  []string // in declaration order, for keyword-argument binding
	Chunk       *Chunk
	UpvalueDefs []UpvalueDef
	IsAI        bool
	Doc         string
}

// Upvalue is a reference to a variable captured by a closure. While
// Location points into a live stack slot the upvalue is "open"; once the
// owning frame returns, Close copies the value into Closed and Location
// is repointed at it, matching spec §3's open/closed upvalue invariant.
type Upvalue struct {
	Location *Value
	Closed   Value
	Next     *Upvalue // not linked by the VM, which keeps open upvalues in its openUpvalues slice
}

func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// TraceRefs implements gc.Tracer: an upvalue keeps its current pointee
// (open or closed) alive.
func (u *Upvalue) TraceRefs(visit func(any)) {
	if u.Location == nil {
		return
	}
	if ref := u.Location.HeapRef(); ref != nil {
		visit(ref)
	}
}

// Closure pairs a compiled function with its captured upvalues.
type Closure struct {
	Function *FunctionObject
	Upvalues []*Upvalue
	// BoundSelf is set for methods materialized as closures outside a
	// BoundMethod wrapper (e.g. class static/enum methods with no self).
	BoundSelf *Instance
}

// TraceRefs implements gc.Tracer: a closure keeps its captured upvalues
// (and, if bound, its receiver) alive. The underlying FunctionObject is
// a compile-time constant reachable through the owning chunk, not a
// separately GC-tracked allocation.
func (c *Closure) TraceRefs(visit func(any)) {
	for _, uv := range c.Upvalues {
		if uv != nil {
			visit(uv)
		}
	}
	if c.BoundSelf != nil {
		visit(c.BoundSelf)
	}
}

// NativeFunction wraps a Go function registered via the embedder API or
// a stdlib module.
type NativeFunction struct {
	Name string
	Fn   func(vm NativeVM, args []Value) (Value, error)
}

// NativeVM is the subset of VM capabilities exposed to native function
// implementations, keeping internal/stdlib decoupled from the VM's
// internal frame/stack representation.
type NativeVM interface {
	NewArray(elems []Value) Value
	NewMap() Value
	RaiseError(kind, message string) Value
}

// ClassObject is a class: its fields' defaults/validators and its
// method table. Superclass, if non-nil, is consulted for methods not
// found locally (single inheritance, per spec §3).
type ClassObject struct {
	Name       string
	Superclass *ClassObject
	Fields     []FieldSpec
	Methods    map[string]*Closure
	Doc        string
	IsAgent    bool
}

// FieldSpec is a class or agent field's compiled shape: its default
// value expression (compiled into an initializer chunk run per
// instance) and its validators.
type FieldSpec struct {
	Name       string
	Validators []Validator
	HasDefault bool
	Default    *FunctionObject // zero-arg initializer chunk, nil if HasDefault is false
}

// Validator is implemented by internal/validator's concrete validator
// kinds; bytecode only depends on this narrow interface to avoid an
// import cycle.
type Validator interface {
	Name() string
	Validate(v Value) error
}

func (c *ClassObject) FindMethod(name string) (*Closure, bool) {
	if m, ok := c.Methods[name]; ok {
		return m, true
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil, false
}

// Instance is a live object of a ClassObject.
type Instance struct {
	Class  *ClassObject
	Fields *MapObject
}

// TraceRefs implements gc.Tracer: an instance keeps its field map alive.
// Class is a compile-time prototype, not separately tracked.
func (i *Instance) TraceRefs(visit func(any)) {
	if i.Fields != nil {
		visit(i.Fields)
	}
}

// BoundMethod pairs a receiver instance with one of its class's methods,
// produced by `instance.method` access (without a call).
type BoundMethod struct {
	Receiver *Instance
	Method   *Closure
}

// TraceRefs implements gc.Tracer.
func (b *BoundMethod) TraceRefs(visit func(any)) {
	if b.Receiver != nil {
		visit(b.Receiver)
	}
	if b.Method != nil {
		visit(b.Method)
	}
}

// EnumObject is an enum type's variant table.
type EnumObject struct {
	Name     string
	Variants map[string]*EnumVariantDef
	Methods  map[string]*Closure
	Doc      string
}

type EnumVariantDef struct {
	Name   string
	Fields []string
}

// EnumVariantValueData is a constructed enum value: which variant, and
// its associated-value fields in declaration order.
type EnumVariantValueData struct {
	Enum    string
	Variant string
	Fields  []Value
}

// AgentObject is a live agent instance: fields plus `ai fn` methods that
// may issue prompt opcodes routed through internal/agentrt.
type AgentObject struct {
	Name    string
	Fields  *MapObject
	Methods map[string]*Closure
}

// TraceRefs implements gc.Tracer: an agent keeps its field map alive.
// Methods are compile-time closures reachable through the class
// prototype, not separately tracked per instance.
func (a *AgentObject) TraceRefs(visit func(any)) {
	if a.Fields != nil {
		visit(a.Fields)
	}
}

// ModuleObject is a resolved module's export table, populated by
// internal/module after running (or registering) the module.
type ModuleObject struct {
	Path    string
	Exports *MapObject
}

// TraceRefs implements gc.Tracer.
func (m *ModuleObject) TraceRefs(visit func(any)) {
	if m.Exports != nil {
		visit(m.Exports)
	}
}

// ErrorObject is a typed, script-visible error value: the kind of error
// thrown, a message, and arbitrary structured payload data (used for
// ValidationError's per-field breakdown).
type ErrorObject struct {
	Kind    string
	Message string
	Data    *MapObject
}

// TraceRefs implements gc.Tracer.
func (e *ErrorObject) TraceRefs(visit func(any)) {
	if e.Data != nil {
		visit(e.Data)
	}
}
