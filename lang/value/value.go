// Package value defines the runtime value model of lumen: the tagged
// nil/bool/number/object union, the heap object kinds reachable from it, and
// the open-addressed hash table used for string interning, instance fields
// and class method tables.
package value

import "strconv"

// Value is any value the virtual machine can hold in a variable, on the
// operand stack, or in the constant pool: Nil, Bool, Number, or an Obj
// reference.
type Value interface {
	// String returns the value's textual form, per the language's print
	// format (nil, true/false, numbers, raw string content, <fn name>, etc).
	String() string
	// Type returns a short, stable type name for the value.
	Type() string
	// Truth reports whether the value is truthy. Only Nil and the boolean
	// false are falsey.
	Truth() bool
}

// Nil is the unit value.
type Nil struct{}

// NilValue is the single instance of Nil.
var NilValue = Nil{}

func (Nil) String() string { return "nil" }
func (Nil) Type() string   { return "nil" }
func (Nil) Truth() bool    { return false }

// Bool is the type of boolean values.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Bool) Type() string { return "bool" }
func (b Bool) Truth() bool  { return bool(b) }

// Number is the language's only numeric type: an IEEE-754 double.
type Number float64

func (n Number) String() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }
func (n Number) Type() string   { return "number" }
func (n Number) Truth() bool    { return true }
