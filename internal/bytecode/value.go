// Package bytecode implements the AIScript chunk format, compiler, and
// stack-based virtual machine.
package bytecode

import (
	"fmt"
	"math"
	"strconv"
)

// ValueType discriminates the tagged union held by Value.
type ValueType uint8

const (
	ValueNil ValueType = iota
	ValueBool
	ValueNumber
	ValueString
	ValueArray
	ValueMap
	ValueClosure
	ValueNativeFunction
	ValueClass
	ValueInstance
	ValueBoundMethod
	ValueEnum
	ValueEnumVariant
	ValueAgent
	ValueModule
	ValueError
)

// Value is AIScript's tagged-union runtime value. A fixed struct shape
// (rather than a bare interface{}) keeps the hot dispatch path in the VM
// to a single field compare, and gives every heap variant a stable place
// to register with the garbage collector (see internal/gc).
type Value struct {
	Type ValueType
	Data interface{}
}

func NilValue() Value             { return Value{Type: ValueNil} }
func BoolValue(b bool) Value      { return Value{Type: ValueBool, Data: b} }
func NumberValue(n float64) Value { return Value{Type: ValueNumber, Data: n} }
func StringValue(s string) Value  { return Value{Type: ValueString, Data: s} }

func ArrayValue(a *ArrayObject) Value             { return Value{Type: ValueArray, Data: a} }
func MapValue(m *MapObject) Value                 { return Value{Type: ValueMap, Data: m} }
func ClosureValue(c *Closure) Value                { return Value{Type: ValueClosure, Data: c} }
func NativeFunctionValue(f *NativeFunction) Value  { return Value{Type: ValueNativeFunction, Data: f} }
func ClassValue(c *ClassObject) Value               { return Value{Type: ValueClass, Data: c} }
func InstanceValue(i *Instance) Value               { return Value{Type: ValueInstance, Data: i} }
func BoundMethodValue(b *BoundMethod) Value         { return Value{Type: ValueBoundMethod, Data: b} }
func EnumValue(e *EnumObject) Value                 { return Value{Type: ValueEnum, Data: e} }
func EnumVariantValue(v *EnumVariantValueData) Value { return Value{Type: ValueEnumVariant, Data: v} }
func AgentValue(a *AgentObject) Value               { return Value{Type: ValueAgent, Data: a} }
func ModuleValue(m *ModuleObject) Value             { return Value{Type: ValueModule, Data: m} }
func ErrorValue(e *ErrorObject) Value               { return Value{Type: ValueError, Data: e} }

func (v Value) IsNil() bool    { return v.Type == ValueNil }
func (v Value) IsBool() bool   { return v.Type == ValueBool }
func (v Value) IsNumber() bool { return v.Type == ValueNumber }
func (v Value) IsString() bool { return v.Type == ValueString }
func (v Value) IsError() bool  { return v.Type == ValueError }
func (v Value) IsCallable() bool {
	switch v.Type {
	case ValueClosure, ValueNativeFunction, ValueBoundMethod, ValueClass:
		return true
	}
	return false
}

func (v Value) AsBool() bool       { return v.Data.(bool) }
func (v Value) AsNumber() float64  { return v.Data.(float64) }
func (v Value) AsString() string   { return v.Data.(string) }
func (v Value) AsArray() *ArrayObject       { return v.Data.(*ArrayObject) }
func (v Value) AsMap() *MapObject           { return v.Data.(*MapObject) }
func (v Value) AsClosure() *Closure         { return v.Data.(*Closure) }
func (v Value) AsNativeFunction() *NativeFunction { return v.Data.(*NativeFunction) }
func (v Value) AsClass() *ClassObject       { return v.Data.(*ClassObject) }
func (v Value) AsInstance() *Instance       { return v.Data.(*Instance) }
func (v Value) AsBoundMethod() *BoundMethod { return v.Data.(*BoundMethod) }
func (v Value) AsEnum() *EnumObject         { return v.Data.(*EnumObject) }
func (v Value) AsEnumVariant() *EnumVariantValueData { return v.Data.(*EnumVariantValueData) }
func (v Value) AsAgent() *AgentObject       { return v.Data.(*AgentObject) }
func (v Value) AsModule() *ModuleObject     { return v.Data.(*ModuleObject) }
func (v Value) AsError() *ErrorObject       { return v.Data.(*ErrorObject) }

// HeapRef returns the underlying heap object pointer for the variants
// internal/gc tracks (nil for nil/bool/number/string, which the
// collector has no reason to register). Used by the VM's root-walking
// function to feed stack/local/global/upvalue values into a mark pass.
func (v Value) HeapRef() any {
	switch v.Type {
	case ValueArray, ValueMap, ValueClosure, ValueNativeFunction, ValueClass,
		ValueInstance, ValueBoundMethod, ValueEnum, ValueEnumVariant,
		ValueAgent, ValueModule, ValueError:
		return v.Data
	default:
		return nil
	}
}

// IsTruthy implements AIScript's truthiness rule: nil and false are
// falsy, everything else (including 0 and "") is truthy.
func (v Value) IsTruthy() bool {
	switch v.Type {
	case ValueNil:
		return false
	case ValueBool:
		return v.AsBool()
	default:
		return true
	}
}

// Equals implements AIScript's value-equality rule (spec §3 invariant):
// numbers compare by value, strings by byte content, nil equals only
// nil, and all heap object kinds compare by identity except strings.
func (v Value) Equals(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValueNil:
		return true
	case ValueBool:
		return v.AsBool() == other.AsBool()
	case ValueNumber:
		return v.AsNumber() == other.AsNumber()
	case ValueString:
		return v.AsString() == other.AsString()
	case ValueArray:
		return v.Data.(*ArrayObject) == other.Data.(*ArrayObject)
	case ValueMap:
		return v.Data.(*MapObject) == other.Data.(*MapObject)
	case ValueClosure:
		return v.Data.(*Closure) == other.Data.(*Closure)
	case ValueInstance:
		return v.Data.(*Instance) == other.Data.(*Instance)
	case ValueClass:
		return v.Data.(*ClassObject) == other.Data.(*ClassObject)
	case ValueEnumVariant:
		a, b := v.Data.(*EnumVariantValueData), other.Data.(*EnumVariantValueData)
		if a.Enum != b.Enum || a.Variant != b.Variant {
			return false
		}
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if !a.Fields[i].Equals(b.Fields[i]) {
				return false
			}
		}
		return true
	default:
		return v.Data == other.Data
	}
}

// TypeName returns the AIScript-level type name used in error messages
// and the `type_of` builtin.
func (v Value) TypeName() string {
	switch v.Type {
	case ValueNil:
		return "nil"
	case ValueBool:
		return "bool"
	case ValueNumber:
		return "number"
	case ValueString:
		return "string"
	case ValueArray:
		return "array"
	case ValueMap:
		return "object"
	case ValueClosure, ValueNativeFunction, ValueBoundMethod:
		return "function"
	case ValueClass:
		return "class"
	case ValueInstance:
		return v.AsInstance().Class.Name + " instance"
	case ValueEnum:
		return "enum"
	case ValueEnumVariant:
		return v.AsEnumVariant().Enum
	case ValueAgent:
		return "agent"
	case ValueModule:
		return "module"
	case ValueError:
		return "error"
	default:
		return "unknown"
	}
}

// String renders a Value for `print`/string interpolation. Numbers with
// no fractional part print without a decimal point, matching AIScript's
// "integers are emulated by truncation, not a distinct type" rule.
func (v Value) String() string {
	switch v.Type {
	case ValueNil:
		return "nil"
	case ValueBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case ValueNumber:
		return formatNumber(v.AsNumber())
	case ValueString:
		return v.AsString()
	case ValueArray:
		return v.AsArray().String()
	case ValueMap:
		return v.AsMap().String()
	case ValueClosure:
		return "<fn " + v.AsClosure().Function.Name + ">"
	case ValueNativeFunction:
		return "<native fn " + v.AsNativeFunction().Name + ">"
	case ValueClass:
		return "<class " + v.AsClass().Name + ">"
	case ValueInstance:
		return "<" + v.AsInstance().Class.Name + " instance>"
	case ValueBoundMethod:
		return "<bound method>"
	case ValueEnum:
		return "<enum " + v.AsEnum().Name + ">"
	case ValueEnumVariant:
		ev := v.AsEnumVariant()
		if len(ev.Fields) == 0 {
			return ev.Enum + "::" + ev.Variant
		}
		return fmt.Sprintf("%s::%s(...)", ev.Enum, ev.Variant)
	case ValueAgent:
		return "<agent " + v.AsAgent().Name + ">"
	case ValueModule:
		return "<module " + v.AsModule().Path + ">"
	case ValueError:
		return "<error " + v.AsError().Kind + ": " + v.AsError().Message + ">"
	default:
		return "<unknown>"
	}
}

func formatNumber(n float64) string {
	if math.IsNaN(n) {
		return "nan"
	}
	if math.IsInf(n, 1) {
		return "inf"
	}
	if math.IsInf(n, -1) {
		return "-inf"
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
