package compiler

import (
	"github.com/mna/lumen/lang/opcode"
	"github.com/mna/lumen/lang/token"
)

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("expected function name")
	c.markInitialized()
	c.function(kindFunction)
	c.defineVariable(global)
}

// function compiles one function body (parameter list plus block) as
// a nested funcState, then emits the CLOSURE instruction that turns
// its finished Function prototype into a runtime value, followed by
// one (isLocal, index) pair per captured upvalue for the VM to
// resolve at closure-creation time.
func (c *Compiler) function(kind funcKind) {
	fn := c.interner.NewFunction()
	c.interner.PushCompilerRoot(fn)
	defer c.interner.PopCompilerRoot()

	if kind != kindScript {
		fn.Name = c.interner.InternString(c.prev.Raw)
	}

	enclosing := c.fs
	c.fs = &funcState{enclosing: enclosing, fn: fn, kind: kind}
	recv := ""
	if kind == kindMethod || kind == kindInitializer {
		recv = "this"
	}
	c.fs.locals = append(c.fs.locals, local{name: recv, depth: 0})

	c.beginScope()
	c.consume(token.LPAREN, "expected '(' after function name")
	if !c.check(token.RPAREN) {
		for {
			fn.Arity++
			if fn.Arity > maxArgs {
				c.errorAtCurrent("can't have more than 255 parameters")
			}
			constant := c.parseVariable("expected parameter name")
			c.defineVariable(constant)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "expected ')' after parameters")
	c.consume(token.LBRACE, "expected '{' before function body")
	c.block()
	c.emitReturn()

	upvalues := c.fs.upvalues
	c.fs = enclosing

	c.emitOpByte(opcode.CLOSURE, c.makeConstant(fn))
	for _, u := range upvalues {
		if u.isLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(u.index)
	}
}

func (c *Compiler) classDeclaration() {
	c.consume(token.IDENT, "expected class name")
	name := c.prev.Raw
	nameConstant := c.identifierConstant(name)
	c.declareVariable(name)

	c.emitOpByte(opcode.CLASS, nameConstant)
	c.defineVariable(nameConstant)

	cs := &classState{enclosing: c.cs, name: name}
	c.cs = cs

	if c.match(token.LT) {
		c.consume(token.IDENT, "expected superclass name")
		c.variable(false)
		if c.prev.Raw == name {
			c.error("a class can't inherit from itself")
		}

		c.beginScope()
		c.addLocal("super")
		c.defineVariable(0)

		c.namedVariable(name, false)
		c.emitOp(opcode.INHERIT)
		cs.hasSuper = true
	}

	c.namedVariable(name, false)
	c.consume(token.LBRACE, "expected '{' before class body")
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RBRACE, "expected '}' after class body")
	c.emitOp(opcode.POP) // drop the class loaded above for the METHOD instructions

	if cs.hasSuper {
		c.endScope()
	}
	c.cs = cs.enclosing
}

func (c *Compiler) method() {
	c.consume(token.IDENT, "expected method name")
	name := c.prev.Raw
	nameConstant := c.identifierConstant(name)

	kind := kindMethod
	if name == "init" {
		kind = kindInitializer
	}
	c.function(kind)
	c.emitOpByte(opcode.METHOD, nameConstant)
}
