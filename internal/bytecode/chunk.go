package bytecode

// Chunk holds one function's compiled instructions and its constant
// pool. String constants are deduplicated by AddConstant; other
// constants get a new pool entry each time they are added.
type Chunk struct {
	Code       []Instruction
	Constants  []Value
	Name       string
	IsAI       bool
	Doc        string
	Validators map[string][]Validator
	// LocalCount is the high-water mark of stack-local slots used by this
	// chunk's body, so the VM can preallocate a frame's locals slice.
	LocalCount int
	// PublicNames holds the top-level `pub` declarations of a module's
	// entry chunk (fn/class/enum/agent only; plain let/const globals
	// aren't exportable). internal/module reads this after running the
	// chunk to build the resulting ModuleObject's export table.
	PublicNames map[string]bool
}

// MarkPublic records name as an exported top-level declaration.
func (c *Chunk) MarkPublic(name string) {
	if c.PublicNames == nil {
		c.PublicNames = make(map[string]bool)
	}
	c.PublicNames[name] = true
}

func NewChunk(name string) *Chunk {
	return &Chunk{Name: name}
}

// Write appends an instruction, returning its index.
func (c *Chunk) Write(op OpCode, a, b uint16, line int) int {
	c.Code = append(c.Code, Instruction{Op: op, A: a, B: b, Line: line})
	return len(c.Code) - 1
}

// AddConstant appends v to the constant pool and returns its index. A
// string equal to one already in the pool reuses that entry's index.
func (c *Chunk) AddConstant(v Value) uint16 {
	if v.Type == ValueString {
		for i, k := range c.Constants {
			if k.Type == ValueString && k.AsString() == v.AsString() {
				return uint16(i)
			}
		}
	}
	c.Constants = append(c.Constants, v)
	return uint16(len(c.Constants) - 1)
}

// PatchJump backfills the B operand of a jump instruction emitted before
// its target was known, computing the offset from the instruction after
// `at` to the chunk's current end.
func (c *Chunk) PatchJump(at int) {
	offset := len(c.Code) - at - 1
	c.Code[at].B = uint16(offset)
}
