// Package opcode defines the instruction set shared by the compiler, the
// virtual machine, and the disassembler.
package opcode

import "fmt"

// Opcode is a single bytecode instruction. Each instruction is one byte
// followed by zero or more operand bytes, as documented per constant below.
type Opcode byte

//nolint:revive
const (
	NOP Opcode = iota

	// literals and stack shuffling
	CONSTANT // CONSTANT<u8>    -         push constants[u8]
	NIL      //                 -   Nil
	TRUE     //                 -   True
	FALSE    //                 -   False
	POP      //               x   -

	// variables
	GET_LOCAL     // GET_LOCAL<u8>     -       stack[base+u8]
	SET_LOCAL     // SET_LOCAL<u8>     v       v (write, leaves v on stack)
	GET_UPVALUE   // GET_UPVALUE<u8>   -       *upvalues[u8]
	SET_UPVALUE   // SET_UPVALUE<u8>   v       v
	GET_GLOBAL    // GET_GLOBAL<u8>    -       globals[name]
	DEFINE_GLOBAL // DEFINE_GLOBAL<u8> v       -
	SET_GLOBAL    // SET_GLOBAL<u8>    v       v

	// comparisons and arithmetic
	EQUAL
	GREATER
	LESS
	ADD
	SUBTRACT
	MULTIPLY
	DIVIDE
	NOT
	NEGATE

	PRINT
	RETURN

	// control flow (u16 operands, big-endian)
	JUMP          // JUMP<u16>
	JUMP_IF_FALSE // JUMP_IF_FALSE<u16>  (peeks, does not pop)
	LOOP          // LOOP<u16>           (backward)

	CALL // CALL<u8 argc>

	// closures and upvalues
	CLOSURE      // CLOSURE<u8 fn-const> (is_local,index)*upvalueCount
	CLOSE_UPVALUE

	// classes and instances
	CLASS         // CLASS<u8 name-const>
	INHERIT
	METHOD        // METHOD<u8 name-const>
	GET_PROPERTY  // GET_PROPERTY<u8 name-const>
	SET_PROPERTY  // SET_PROPERTY<u8 name-const>
	GET_SUPER     // GET_SUPER<u8 name-const>
	INVOKE        // INVOKE<u8 name-const><u8 argc>
	SUPER_INVOKE  // SUPER_INVOKE<u8 name-const><u8 argc>

	maxOpcode
)

var names = [...]string{
	NOP:           "nop",
	CONSTANT:      "constant",
	NIL:           "nil",
	TRUE:          "true",
	FALSE:         "false",
	POP:           "pop",
	GET_LOCAL:     "get_local",
	SET_LOCAL:     "set_local",
	GET_UPVALUE:   "get_upvalue",
	SET_UPVALUE:   "set_upvalue",
	GET_GLOBAL:    "get_global",
	DEFINE_GLOBAL: "define_global",
	SET_GLOBAL:    "set_global",
	EQUAL:         "equal",
	GREATER:       "greater",
	LESS:          "less",
	ADD:           "add",
	SUBTRACT:      "subtract",
	MULTIPLY:      "multiply",
	DIVIDE:        "divide",
	NOT:           "not",
	NEGATE:        "negate",
	PRINT:         "print",
	RETURN:        "return",
	JUMP:          "jump",
	JUMP_IF_FALSE: "jump_if_false",
	LOOP:          "loop",
	CALL:          "call",
	CLOSURE:       "closure",
	CLOSE_UPVALUE: "close_upvalue",
	CLASS:         "class",
	INHERIT:       "inherit",
	METHOD:        "method",
	GET_PROPERTY:  "get_property",
	SET_PROPERTY:  "set_property",
	GET_SUPER:     "get_super",
	INVOKE:        "invoke",
	SUPER_INVOKE:  "super_invoke",
}

func (op Opcode) String() string {
	if op < maxOpcode {
		if n := names[op]; n != "" {
			return n
		}
	}
	return fmt.Sprintf("illegal op (%d)", byte(op))
}
