package machine_test

import (
	"bytes"
	"testing"

	"github.com/mna/lumen/lang/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (stdout string, err error) {
	t.Helper()
	var buf bytes.Buffer
	vm := machine.New(&buf)
	err = vm.Interpret(src)
	return buf.String(), err
}

func TestArithmeticPrint(t *testing.T) {
	out, err := run(t, `print 1 + 2;`)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, err := run(t, `var a = "foo"; var b = "bar"; print a + b;`)
	require.NoError(t, err)
	assert.Equal(t, "foobar\n", out)
}

func TestClosureCapturesParameter(t *testing.T) {
	out, err := run(t, `
		fun make(x) {
			fun inner() { return x; }
			return inner;
		}
		var f = make(42);
		print f();
	`)
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestMethodCall(t *testing.T) {
	out, err := run(t, `
		class A {
			greet() { print "hi"; }
		}
		A().greet();
	`)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)
}

func TestInheritanceAndSuper(t *testing.T) {
	out, err := run(t, `
		class Base {
			m() { print "B"; }
		}
		class Derived < Base {
			m() { print "D"; super.m(); }
		}
		Derived().m();
	`)
	require.NoError(t, err)
	assert.Equal(t, "D\nB\n", out)
}

func TestInitializerSetsField(t *testing.T) {
	out, err := run(t, `
		class C {
			init(x) { this.x = x; }
		}
		print C(7).x;
	`)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	_, err := run(t, `print doesNotExist;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable")
}

func TestTypeMismatchIsRuntimeError(t *testing.T) {
	_, err := run(t, `print 1 + "nope";`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Operands must be two numbers or two strings.")
}

func TestCallingNonCallableIsRuntimeError(t *testing.T) {
	_, err := run(t, `var x = 1; x();`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can only call")
}

func TestSuperclassNotAClassIsRuntimeError(t *testing.T) {
	_, err := run(t, `var NotAClass = 1; class A < NotAClass {}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Superclass must be a class.")
}

func TestCompileErrorsDoNotRun(t *testing.T) {
	_, err := run(t, `print ;`)
	require.Error(t, err)
}

func TestREPLPersistsGlobalsAcrossCalls(t *testing.T) {
	var buf bytes.Buffer
	vm := machine.New(&buf)
	require.NoError(t, vm.Interpret(`var counter = 0;`))
	require.NoError(t, vm.Interpret(`counter = counter + 1; print counter;`))
	require.NoError(t, vm.Interpret(`counter = counter + 1; print counter;`))
	assert.Equal(t, "1\n2\n", buf.String())
}

func TestClockNativeReturnsNumber(t *testing.T) {
	out, err := run(t, `print clock() >= 0;`)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestGarbageCollectionKeepsReachableClosuresAlive(t *testing.T) {
	// Each doubling of s interns a new, distinct string, so every
	// iteration's previous value becomes unreachable garbage; by the
	// 20th doubling the accumulated allocations cross the 1 MiB
	// collection threshold, and the last doublings force several real
	// mark-sweep cycles while the top-level script closure (whose
	// Function has no name) is on the frame stack the whole time and a
	// closure over make's parameter stays alive across all of them.
	var buf bytes.Buffer
	vm := machine.New(&buf)
	src := `
		fun make(x) {
			fun inner() { return x; }
			return inner;
		}
		var keep = make(99);

		var s = "x";
		for (var i = 0; i < 22; i = i + 1) {
			s = s + s;
		}

		print keep();
	`
	require.NoError(t, vm.Interpret(src))
	assert.Equal(t, "99\n", buf.String())
}

func TestTraceDoesNotPanic(t *testing.T) {
	var buf bytes.Buffer
	vm := machine.New(&buf)
	vm.Trace = true
	require.NoError(t, vm.Interpret(`print 1 + 1;`))
	assert.Contains(t, buf.String(), "constant")
}
