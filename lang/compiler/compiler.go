// Package compiler turns lumen source text directly into bytecode in a
// single pass: there is no intermediate AST. Parsing, scope resolution
// and code generation for any given construct all happen inside the
// same recursive-descent/Pratt parsing step that recognizes it.
package compiler

import (
	"fmt"

	"github.com/mna/lumen/lang/opcode"
	"github.com/mna/lumen/lang/scanner"
	"github.com/mna/lumen/lang/token"
	"github.com/mna/lumen/lang/value"
)

// Interner is the allocator surface the compiler needs from its host:
// interning string literals and identifiers so they participate in the
// same table the VM uses at run time, and allocating the Function
// objects that back each compiled function (including the implicit
// top-level script). PushCompilerRoot/PopCompilerRoot let the host
// protect an in-progress Function from collection for the duration of
// its compilation, since it is reachable only from the Go call stack
// until OP_CLOSURE makes it a real value.
type Interner interface {
	InternString(chars string) *value.String
	NewFunction() *value.ObjFunction
	PushCompilerRoot(fn *value.ObjFunction)
	PopCompilerRoot()
}

// Error is a single compile-time diagnostic.
type Error struct {
	Line int
	Msg  string
}

func (e Error) Error() string { return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Msg) }

// Errors collects every diagnostic produced by a single Compile call.
type Errors []Error

func (es Errors) Error() string {
	if len(es) == 1 {
		return es[0].Error()
	}
	s := fmt.Sprintf("%d compile errors:", len(es))
	for _, e := range es {
		s += "\n  " + e.Error()
	}
	return s
}

const (
	maxLocals    = 256 // one-byte operand
	maxUpvalues  = 256
	maxArgs      = 255
	maxConstants = 256
)

type funcKind int

const (
	kindScript funcKind = iota
	kindFunction
	kindMethod
	kindInitializer
)

type local struct {
	name       string
	depth      int // -1 while being declared, before its initializer runs
	isCaptured bool
}

type upvalueRef struct {
	index   uint8
	isLocal bool
}

// funcState is one entry in the nested stack of functions currently
// being compiled: the top-level script, and one per nested fun/method
// body. Each has its own locals, its own upvalue list, and its own
// target Function object.
type funcState struct {
	enclosing *funcState
	fn        *value.ObjFunction
	kind      funcKind

	locals     []local
	upvalues   []upvalueRef
	scopeDepth int
}

// classState tracks the class currently being compiled, for super/this
// resolution and chaining to an enclosing class (for nested classes).
type classState struct {
	enclosing   *classState
	hasSuper    bool
	name        string
}

// Compiler holds all single-pass compilation state: the token stream,
// the stack of function scopes, and the stack of class scopes.
type Compiler struct {
	scanner scanner.Scanner
	interner Interner

	cur, prev token.Value
	curTok, prevTok token.Token

	errs      Errors
	panicMode bool

	fs *funcState
	cs *classState
}

// Compile compiles source into a top-level Function (the implicit
// script), or returns the diagnostics collected along the way. A
// non-nil Errors means fn is nil: the compiler does not hand back
// partially-built bytecode.
func Compile(source string, interner Interner) (*value.ObjFunction, Errors) {
	c := &Compiler{interner: interner}
	c.scanner.Init(source)

	fn := interner.NewFunction()
	interner.PushCompilerRoot(fn)
	defer interner.PopCompilerRoot()

	c.fs = &funcState{fn: fn, kind: kindScript}
	// slot 0 is reserved for the receiver in methods, and is simply
	// unused (but still present) for plain functions and the script.
	c.fs.locals = append(c.fs.locals, local{name: "", depth: 0})

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.emitReturn()

	if len(c.errs) > 0 {
		return nil, c.errs
	}
	return fn, nil
}

// --- token stream ---------------------------------------------------

func (c *Compiler) advance() {
	c.prev, c.prevTok = c.cur, c.curTok
	for {
		c.curTok = c.scanner.Scan(&c.cur)
		if c.curTok != token.ILLEGAL {
			break
		}
		c.errorAtCurrent(c.cur.Raw)
	}
}

func (c *Compiler) check(t token.Token) bool { return c.curTok == t }

func (c *Compiler) match(t token.Token) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t token.Token, msg string) {
	if c.curTok == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.cur, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.prev, msg) }

func (c *Compiler) errorAt(tv token.Value, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.errs = append(c.errs, Error{Line: int(tv.Pos), Msg: msg})
}

// synchronize discards tokens after a parse error until it reaches a
// plausible statement boundary, so one mistake reports one error
// instead of a cascade.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.curTok != token.EOF {
		if c.prevTok == token.SEMICOLON {
			return
		}
		switch c.curTok {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

// --- bytecode emission ------------------------------------------------

func (c *Compiler) chunk() *value.Chunk { return &c.fs.fn.Chunk }

func (c *Compiler) emitByte(b byte) { c.chunk().Write(b, int(c.prev.Pos)) }
func (c *Compiler) emitOp(op opcode.Opcode) { c.chunk().WriteOp(op, int(c.prev.Pos)) }

func (c *Compiler) emitOps(ops ...opcode.Opcode) {
	for _, op := range ops {
		c.emitOp(op)
	}
}

func (c *Compiler) emitOpByte(op opcode.Opcode, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

// emitJump emits a jump instruction with a placeholder 16-bit operand
// and returns the offset of its first operand byte, to be patched by
// patchJump once the target address is known.
func (c *Compiler) emitJump(op opcode.Opcode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xffff {
		c.error("too much code to jump over")
		return
	}
	c.chunk().Code[offset] = byte(jump >> 8)
	c.chunk().Code[offset+1] = byte(jump)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(opcode.LOOP)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error("loop body too large")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

func (c *Compiler) emitReturn() {
	if c.fs.kind == kindInitializer {
		c.emitOpByte(opcode.GET_LOCAL, 0)
	} else {
		c.emitOp(opcode.NIL)
	}
	c.emitOp(opcode.RETURN)
}

func (c *Compiler) makeConstant(v value.Value) byte {
	idx := c.chunk().AddConstant(v)
	if idx >= maxConstants {
		c.error("too many constants in one chunk")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOpByte(opcode.CONSTANT, c.makeConstant(v))
}

func (c *Compiler) identifierConstant(name string) byte {
	return c.makeConstant(c.interner.InternString(name))
}

// --- scopes -----------------------------------------------------------

func (c *Compiler) beginScope() { c.fs.scopeDepth++ }

func (c *Compiler) endScope() {
	c.fs.scopeDepth--
	locals := c.fs.locals
	for len(locals) > 0 && locals[len(locals)-1].depth > c.fs.scopeDepth {
		if locals[len(locals)-1].isCaptured {
			c.emitOp(opcode.CLOSE_UPVALUE)
		} else {
			c.emitOp(opcode.POP)
		}
		locals = locals[:len(locals)-1]
	}
	c.fs.locals = locals
}
