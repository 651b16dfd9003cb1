package compiler

import (
	"github.com/mna/lumen/lang/opcode"
	"github.com/mna/lumen/lang/token"
)

// declareVariable registers the variable being parsed as a new local
// in the current scope (global scope does nothing: globals are looked
// up by name at run time, not by slot). Redeclaring a name already
// bound in the same scope is an error, mirroring the reference
// implementation's "already a variable with this name in this scope"
// check.
func (c *Compiler) declareVariable(name string) {
	if c.fs.scopeDepth == 0 {
		return
	}
	for i := len(c.fs.locals) - 1; i >= 0; i-- {
		l := c.fs.locals[i]
		if l.depth != -1 && l.depth < c.fs.scopeDepth {
			break
		}
		if l.name == name {
			c.error("already a variable with this name in this scope")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if len(c.fs.locals) >= maxLocals {
		c.error("too many local variables in function")
		return
	}
	c.fs.locals = append(c.fs.locals, local{name: name, depth: -1})
}

func (c *Compiler) markInitialized() {
	if c.fs.scopeDepth == 0 {
		return
	}
	c.fs.locals[len(c.fs.locals)-1].depth = c.fs.scopeDepth
}

// parseVariable consumes an identifier, declares it if inside a local
// scope, and returns the constant-pool index to use for a subsequent
// DEFINE_GLOBAL (ignored for locals).
func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(token.IDENT, errMsg)
	name := c.prev.Raw
	c.declareVariable(name)
	if c.fs.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *Compiler) defineVariable(global byte) {
	if c.fs.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(opcode.DEFINE_GLOBAL, global)
}

// resolveLocal returns the slot index of name in fs, searching
// innermost-scope-first, or -1 if it is not a local there.
func resolveLocal(fs *funcState, name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			if fs.locals[i].depth == -1 {
				return -2 // sentinel: "read in its own initializer"
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue finds name in an enclosing function, capturing it as
// a local or a transitive upvalue in every function state between fs
// and the one that owns it. Returns -1 if name is not found anywhere
// in the enclosing chain (so it must be a global).
func resolveUpvalue(fs *funcState, name string) int {
	if fs.enclosing == nil {
		return -1
	}
	if local := resolveLocal(fs.enclosing, name); local >= 0 {
		fs.enclosing.locals[local].isCaptured = true
		return addUpvalue(fs, uint8(local), true)
	}
	if up := resolveUpvalue(fs.enclosing, name); up >= 0 {
		return addUpvalue(fs, uint8(up), false)
	}
	return -1
}

func addUpvalue(fs *funcState, index uint8, isLocal bool) int {
	for i, u := range fs.upvalues {
		if u.index == index && u.isLocal == isLocal {
			return i
		}
	}
	if len(fs.upvalues) >= maxUpvalues {
		return -1
	}
	fs.upvalues = append(fs.upvalues, upvalueRef{index: index, isLocal: isLocal})
	fs.fn.UpvalueCount = len(fs.upvalues)
	return len(fs.upvalues) - 1
}
