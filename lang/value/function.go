package value

import "github.com/mna/lumen/lang/opcode"

// Chunk is a compiled unit of bytecode: the instruction stream, a
// parallel line table for runtime error reporting, and the constant
// pool that CONSTANT-family opcodes index into.
type Chunk struct {
	Code      []byte
	Lines     []int // Lines[i] is the source line of Code[i]
	Constants []Value
}

// Write appends a single byte to the chunk, recording line for it.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op opcode.Opcode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends val to the constant pool and returns its index.
// The compiler is responsible for rejecting pools that would overflow
// the one-byte operand (256 entries).
func (c *Chunk) AddConstant(val Value) int {
	c.Constants = append(c.Constants, val)
	return len(c.Constants) - 1
}

// ObjFunction is a compiled function prototype: its arity, how many
// upvalues its closures capture, its bytecode, and an optional name
// (nil for the implicit top-level script function).
type ObjFunction struct {
	Header
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Name         *String // nil for the top-level script
}

var _ Obj = (*ObjFunction)(nil)

func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return "<fn " + f.Name.Chars + ">"
}
func (f *ObjFunction) Type() string      { return "function" }
func (f *ObjFunction) Truth() bool       { return true }
func (f *ObjFunction) ObjKind() Kind     { return KindFunction }
func (f *ObjFunction) gcHeader() *Header { return &f.Header }
