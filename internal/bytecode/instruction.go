package bytecode

// OpCode identifies a bytecode operation. Unlike go-dws's packed
// 32-bit instruction word, AIScript's encoding keeps each opcode's
// operands as typed struct fields (see Instruction) per the
// "discriminated value, not byte-stream" requirement.
type OpCode uint8

const (
	// Constants & literals.
	OpConstant OpCode = iota // A: constant pool index -> push Chunk.Constants[A]
	OpNil                    // push nil
	OpTrue                   // push true
	OpFalse                  // push false

	// Stack management.
	OpPop       // pop and discard top of stack
	OpPopN      // A: pop A values and discard

	// Arithmetic (binary: pop b, pop a, push a OP b).
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpPower
	OpNegate // unary: pop a, push -a
	OpNot    // unary: pop a, push !truthy(a)

	// Comparison.
	OpEqual
	OpNotEqual
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual

	// Variables.
	OpDefineGlobal // A: name constant index; pop value, bind in current module globals
	OpGetGlobal    // A: name constant index; push current module global
	OpSetGlobal    // A: name constant index; peek value, assign current module global
	OpGetLocal     // A: frame-local slot index; push frame.locals[A]
	OpSetLocal     // A: frame-local slot index; peek value, assign frame.locals[A]
	OpGetUpvalue   // A: upvalue index; push *closure.Upvalues[A].Location
	OpSetUpvalue   // A: upvalue index; peek value, assign *closure.Upvalues[A].Location
	OpCloseUpvalue // A: frame-local slot index; close the open upvalue pointing at frame.locals[A], if any

	// Control flow. B is an unsigned jump distance in instructions,
	// counted from the instruction after the jump.
	OpJump         // unconditional: ip += B
	OpJumpIfFalse  // peek condition (left on the stack); if falsy, ip += B
	OpJumpIfTrue   // peek condition (left on the stack); if truthy, ip += B (used for and/or short-circuit)
	OpLoop         // unconditional backward jump: ip -= B

	// Functions & calls.
	OpClosure     // A: function-constant index; build a Closure, capturing upvalues per UpvalueDefs
	OpCall        // A: positional arg count, B: keyword arg count; call value below args
	OpReturn      // pop return value, pop frame, push return value in caller
	OpGetProperty // A: name constant index; pop object, push object.field (or bound method)
	OpSetProperty // A: name constant index; pop value, pop object, set object.field = value, push value
	OpInvoke      // A: name constant index, B: positional arg count (high byte: keyword count); optimized obj.method(args) without an intermediate bound-method allocation
	OpGetSuper    // A: name constant index; resolve a bound method from the superclass
	OpSuperInvoke // A: name constant index, B: positional arg count (high byte: keyword count); call a superclass method directly

	// Classes, enums, agents. Class/enum/agent prototypes (fields,
	// validators, and methods already compiled to Closures) are built
	// whole at compile time and shipped through the constant pool, the
	// same way OpClosure ships a fully-compiled FunctionObject; OpClass
	// only needs to push that prototype and, for a subclass, splice in
	// the superclass resolved at definition time.
	OpClass   // A: class-constant index; push the prototype ClassObject
	OpInherit // pop superclass (peek class below it), wire class.Superclass, leave class on top
	OpEnum    // A: enum-constant index; push the prototype EnumObject
	OpMakeEnumValue // A: name constant index (variant), B: field count; pop B field values, pop enum, push constructed EnumVariantValueData
	OpAgent   // A: class-constant index; push the prototype ClassObject (IsAgent set)

	// Collections.
	OpMakeArray // A: element count; pop A values, push ArrayObject
	OpMakeMap   // A: key/value pair count; pop 2*A values, push MapObject
	OpIndexGet  // pop index, pop collection, push collection[index]
	OpIndexSet  // pop value, pop index, pop collection, set collection[index] = value, push value

	// Errors & the `?` operator.
	OpThrow      // pop error value and end the run with a RuntimeError; no handler is searched
	OpTry        // reserved: the compiler never emits it and the VM treats it as a no-op
	OpPropagate  // pop value; if it is an ErrorObject, return it from the current frame immediately

	// Modules.
	OpImportModule  // A: path constant index; resolve and push a ModuleObject
	OpGetModuleVar  // A: module-name constant, B: var-name constant; push module.Exports[var]

	// Agent/AI runtime.
	OpPrompt // pop prompt value; invoke the agent runtime, push its response

	// Misc.
	OpHalt // stop the VM, returning the current top of stack as the program result
)

// Instruction is a single bytecode instruction: a discriminated value
// carrying its operands inline rather than a packed byte stream. A and B
// are repurposed per-opcode as documented above; Line supports runtime
// stack traces and disassembly.
type Instruction struct {
	Op   OpCode
	A    uint16
	B    uint16
	Line int
}

var opcodeNames = map[OpCode]string{
	OpConstant: "CONSTANT", OpNil: "NIL", OpTrue: "TRUE", OpFalse: "FALSE",
	OpPop: "POP", OpPopN: "POPN",
	OpAdd: "ADD", OpSubtract: "SUBTRACT", OpMultiply: "MULTIPLY", OpDivide: "DIVIDE",
	OpModulo: "MODULO", OpPower: "POWER", OpNegate: "NEGATE", OpNot: "NOT",
	OpEqual: "EQUAL", OpNotEqual: "NOT_EQUAL", OpGreater: "GREATER",
	OpGreaterEqual: "GREATER_EQUAL", OpLess: "LESS", OpLessEqual: "LESS_EQUAL",
	OpDefineGlobal: "DEFINE_GLOBAL", OpGetGlobal: "GET_GLOBAL", OpSetGlobal: "SET_GLOBAL",
	OpGetLocal: "GET_LOCAL", OpSetLocal: "SET_LOCAL",
	OpGetUpvalue: "GET_UPVALUE", OpSetUpvalue: "SET_UPVALUE", OpCloseUpvalue: "CLOSE_UPVALUE",
	OpJump: "JUMP", OpJumpIfFalse: "JUMP_IF_FALSE", OpJumpIfTrue: "JUMP_IF_TRUE", OpLoop: "LOOP",
	OpClosure: "CLOSURE", OpCall: "CALL", OpReturn: "RETURN",
	OpGetProperty: "GET_PROPERTY", OpSetProperty: "SET_PROPERTY", OpInvoke: "INVOKE",
	OpGetSuper: "GET_SUPER", OpSuperInvoke: "SUPER_INVOKE",
	OpClass: "CLASS", OpInherit: "INHERIT",
	OpEnum: "ENUM", OpMakeEnumValue: "MAKE_ENUM_VALUE",
	OpAgent: "AGENT",
	OpMakeArray: "MAKE_ARRAY", OpMakeMap: "MAKE_MAP", OpIndexGet: "INDEX_GET", OpIndexSet: "INDEX_SET",
	OpThrow: "THROW", OpTry: "TRY", OpPropagate: "PROPAGATE",
	OpImportModule: "IMPORT_MODULE", OpGetModuleVar: "GET_MODULE_VAR",
	OpPrompt: "PROMPT",
	OpHalt:   "HALT",
}

func (op OpCode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}
