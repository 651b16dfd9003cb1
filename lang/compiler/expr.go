package compiler

import (
	"github.com/mna/lumen/lang/opcode"
	"github.com/mna/lumen/lang/token"
	"github.com/mna/lumen/lang/value"
)

type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[token.Token]rule

func init() {
	rules = map[token.Token]rule{
		token.LPAREN:    {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: precCall},
		token.DOT:       {infix: (*Compiler).dot, precedence: precCall},
		token.MINUS:     {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: precTerm},
		token.PLUS:      {infix: (*Compiler).binary, precedence: precTerm},
		token.SLASH:     {infix: (*Compiler).binary, precedence: precFactor},
		token.STAR:      {infix: (*Compiler).binary, precedence: precFactor},
		token.BANG:      {prefix: (*Compiler).unary},
		token.BANG_EQ:   {infix: (*Compiler).binary, precedence: precEquality},
		token.EQ_EQ:     {infix: (*Compiler).binary, precedence: precEquality},
		token.GT:        {infix: (*Compiler).binary, precedence: precComparison},
		token.GT_EQ:     {infix: (*Compiler).binary, precedence: precComparison},
		token.LT:        {infix: (*Compiler).binary, precedence: precComparison},
		token.LT_EQ:     {infix: (*Compiler).binary, precedence: precComparison},
		token.IDENT:     {prefix: (*Compiler).variable},
		token.STRING:    {prefix: (*Compiler).stringLit},
		token.NUMBER:    {prefix: (*Compiler).number},
		token.AND:       {infix: (*Compiler).and, precedence: precAnd},
		token.OR:        {infix: (*Compiler).or, precedence: precOr},
		token.FALSE:     {prefix: (*Compiler).literal},
		token.NIL:       {prefix: (*Compiler).literal},
		token.TRUE:      {prefix: (*Compiler).literal},
		token.THIS:      {prefix: (*Compiler).this},
		token.SUPER:     {prefix: (*Compiler).super},
	}
}

func (c *Compiler) getRule(t token.Token) rule { return rules[t] }

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

func (c *Compiler) parsePrecedence(p precedence) {
	c.advance()
	prefix := c.getRule(c.prevTok).prefix
	if prefix == nil {
		c.error("expected expression")
		return
	}

	canAssign := p <= precAssignment
	prefix(c, canAssign)

	for p <= c.getRule(c.curTok).precedence {
		c.advance()
		infix := c.getRule(c.prevTok).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.error("invalid assignment target")
	}
}

func (c *Compiler) number(_ bool) {
	c.emitConstant(value.Number(c.prev.Num))
}

func (c *Compiler) stringLit(_ bool) {
	c.emitConstant(c.interner.InternString(c.prev.Str))
}

func (c *Compiler) literal(_ bool) {
	switch c.prevTok {
	case token.FALSE:
		c.emitOp(opcode.FALSE)
	case token.TRUE:
		c.emitOp(opcode.TRUE)
	case token.NIL:
		c.emitOp(opcode.NIL)
	}
}

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(token.RPAREN, "expected ')' after expression")
}

func (c *Compiler) unary(_ bool) {
	op := c.prevTok
	c.parsePrecedence(precUnary)
	switch op {
	case token.BANG:
		c.emitOp(opcode.NOT)
	case token.MINUS:
		c.emitOp(opcode.NEGATE)
	}
}

func (c *Compiler) binary(_ bool) {
	op := c.prevTok
	r := c.getRule(op)
	c.parsePrecedence(r.precedence + 1)
	switch op {
	case token.BANG_EQ:
		c.emitOps(opcode.EQUAL, opcode.NOT)
	case token.EQ_EQ:
		c.emitOp(opcode.EQUAL)
	case token.GT:
		c.emitOp(opcode.GREATER)
	case token.GT_EQ:
		c.emitOps(opcode.LESS, opcode.NOT)
	case token.LT:
		c.emitOp(opcode.LESS)
	case token.LT_EQ:
		c.emitOps(opcode.GREATER, opcode.NOT)
	case token.PLUS:
		c.emitOp(opcode.ADD)
	case token.MINUS:
		c.emitOp(opcode.SUBTRACT)
	case token.STAR:
		c.emitOp(opcode.MULTIPLY)
	case token.SLASH:
		c.emitOp(opcode.DIVIDE)
	}
}

func (c *Compiler) and(_ bool) {
	endJump := c.emitJump(opcode.JUMP_IF_FALSE)
	c.emitOp(opcode.POP)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(_ bool) {
	elseJump := c.emitJump(opcode.JUMP_IF_FALSE)
	endJump := c.emitJump(opcode.JUMP)
	c.patchJump(elseJump)
	c.emitOp(opcode.POP)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(_ bool) {
	argc := c.argumentList()
	c.emitOpByte(opcode.CALL, argc)
}

func (c *Compiler) argumentList() byte {
	var argc int
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argc == maxArgs {
				c.error("can't have more than 255 arguments")
			}
			argc++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "expected ')' after arguments")
	return byte(argc)
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.IDENT, "expected property name after '.'")
	name := c.identifierConstant(c.prev.Raw)

	switch {
	case canAssign && c.match(token.EQ):
		c.expression()
		c.emitOpByte(opcode.SET_PROPERTY, name)
	case c.match(token.LPAREN):
		argc := c.argumentList()
		c.emitOpByte(opcode.INVOKE, name)
		c.emitByte(argc)
	default:
		c.emitOpByte(opcode.GET_PROPERTY, name)
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.prev.Raw, canAssign)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp opcode.Opcode
	slot := resolveLocal(c.fs, name)
	switch {
	case slot == -2:
		c.error("can't read local variable in its own initializer")
		slot = 0
		getOp, setOp = opcode.GET_LOCAL, opcode.SET_LOCAL
	case slot >= 0:
		getOp, setOp = opcode.GET_LOCAL, opcode.SET_LOCAL
	default:
		if up := resolveUpvalue(c.fs, name); up >= 0 {
			slot = up
			getOp, setOp = opcode.GET_UPVALUE, opcode.SET_UPVALUE
		} else {
			slot = int(c.identifierConstant(name))
			getOp, setOp = opcode.GET_GLOBAL, opcode.SET_GLOBAL
		}
	}

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitOpByte(setOp, byte(slot))
	} else {
		c.emitOpByte(getOp, byte(slot))
	}
}

func (c *Compiler) this(_ bool) {
	if c.cs == nil {
		c.error("can't use 'this' outside of a class")
		return
	}
	c.variable(false)
}

func (c *Compiler) super(_ bool) {
	switch {
	case c.cs == nil:
		c.error("can't use 'super' outside of a class")
	case !c.cs.hasSuper:
		c.error("can't use 'super' in a class with no superclass")
	}

	c.consume(token.DOT, "expected '.' after 'super'")
	c.consume(token.IDENT, "expected superclass method name")
	name := c.identifierConstant(c.prev.Raw)

	c.namedVariable("this", false)
	if c.match(token.LPAREN) {
		argc := c.argumentList()
		c.namedVariable("super", false)
		c.emitOpByte(opcode.SUPER_INVOKE, name)
		c.emitByte(argc)
		return
	}
	c.namedVariable("super", false)
	c.emitOpByte(opcode.GET_SUPER, name)
}
