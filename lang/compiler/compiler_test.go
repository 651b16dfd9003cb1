package compiler_test

import (
	"testing"

	"github.com/mna/lumen/lang/compiler"
	"github.com/mna/lumen/lang/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInterner is a minimal compiler.Interner for tests that don't
// need a real VM: it interns strings in its own table and allocates
// bare Functions, ignoring the GC-rooting calls.
type fakeInterner struct {
	strings *value.Table
}

func newFakeInterner() *fakeInterner {
	return &fakeInterner{strings: value.NewTable()}
}

func (f *fakeInterner) InternString(chars string) *value.String {
	return f.strings.Intern(chars, func(chars string, hash uint32) *value.String {
		return &value.String{Chars: chars, Hash: hash}
	})
}

func (f *fakeInterner) NewFunction() *value.ObjFunction    { return &value.ObjFunction{} }
func (f *fakeInterner) PushCompilerRoot(*value.ObjFunction) {}
func (f *fakeInterner) PopCompilerRoot()                    {}

func compile(t *testing.T, src string) *value.ObjFunction {
	t.Helper()
	fn, errs := compiler.Compile(src, newFakeInterner())
	require.Empty(t, errs)
	require.NotNil(t, fn)
	return fn
}

func TestCompileArithmeticExpression(t *testing.T) {
	fn := compile(t, `print 1 + 2 * 3;`)
	assert.NotEmpty(t, fn.Chunk.Code)
	assert.Len(t, fn.Chunk.Constants, 3)
}

func TestCompileVariableDeclarationAndUse(t *testing.T) {
	fn := compile(t, `var x = 10; print x;`)
	assert.NotEmpty(t, fn.Chunk.Code)
}

func TestCompileFunctionDeclaration(t *testing.T) {
	fn := compile(t, `
		fun add(a, b) {
			return a + b;
		}
		print add(1, 2);
	`)
	assert.NotEmpty(t, fn.Chunk.Constants)
}

func TestCompileClassWithInheritanceAndSuper(t *testing.T) {
	fn := compile(t, `
		class Animal {
			speak() {
				print "...";
			}
		}
		class Dog < Animal {
			speak() {
				super.speak();
				print "woof";
			}
		}
		var d = Dog();
		d.speak();
	`)
	assert.NotEmpty(t, fn.Chunk.Code)
}

func TestCompileErrorUnterminatedString(t *testing.T) {
	_, errs := compiler.Compile(`print "unterminated;`, newFakeInterner())
	require.NotEmpty(t, errs)
}

func TestCompileErrorReturnOutsideFunction(t *testing.T) {
	_, errs := compiler.Compile(`return 1;`, newFakeInterner())
	require.NotEmpty(t, errs)
	assert.Contains(t, errs.Error(), "return from top-level")
}

func TestCompileErrorSelfReferentialInitializer(t *testing.T) {
	_, errs := compiler.Compile(`{ var a = a; }`, newFakeInterner())
	require.NotEmpty(t, errs)
	assert.Contains(t, errs.Error(), "own initializer")
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	fn := compile(t, `
		fun outer() {
			var x = 1;
			fun inner() {
				return x;
			}
			return inner;
		}
	`)
	assert.NotEmpty(t, fn.Chunk.Constants)
}

func TestDisassembleProducesOutput(t *testing.T) {
	fn := compile(t, `print 1 + 2;`)
	out := compiler.Disassemble(&fn.Chunk, "test")
	assert.Contains(t, out, "== test ==")
	assert.Contains(t, out, "constant")
}
