// Package machine implements the lumen virtual machine: bytecode
// dispatch, call frames, closures and upvalues, class/instance
// semantics, and a precise mark-sweep collector over the heap objects
// the compiler and the VM itself allocate.
package machine

import (
	"fmt"
	"io"

	"github.com/mna/lumen/lang/compiler"
	"github.com/mna/lumen/lang/value"
)

const (
	// StackMax is the operand stack's fixed capacity.
	StackMax = 16384
	// FramesMax is the call frame stack's fixed capacity, which bounds
	// recursion depth.
	FramesMax = 64

	gcGrowthFactor  = 2
	initialNextGC   = 1 << 20 // 1 MiB of estimated allocation before the first collection
)

// VM is a single, self-contained lumen interpreter instance: its own
// operand stack, call frames, globals, string-interning table and
// heap. Nothing is shared between VM values.
type VM struct {
	// stack has a fixed capacity (StackMax) for its whole lifetime: an
	// ObjUpvalue captures an open variable as a raw *value.Value pointing
	// directly into this array, which would dangle if growing the stack
	// ever reallocated its backing array.
	stack    [StackMax]value.Value
	stackTop int
	frames   []callFrame

	globals *globals
	strings *value.Table

	openUpvalues *value.ObjUpvalue

	initString *value.String

	// heap bookkeeping for the mark-sweep collector
	objects        value.Obj
	bytesAllocated int
	nextGC         int
	grayStack      []value.Obj
	compilerRoots  []*value.ObjFunction

	// Stdout receives PRINT output and is the sole observable effect of
	// running a program, besides its exit status.
	Stdout io.Writer
	// Trace, when true, disassembles every instruction to Stdout before
	// it executes (the --trace debugging hook).
	Trace bool

	// DisableGC stops collectGarbage from ever running. Intended for
	// tests that want to assert on heap shape without a collection
	// reordering or freeing objects mid-assertion.
	DisableGC bool
}

// New returns a ready-to-use VM that writes PRINT output to stdout.
func New(stdout io.Writer) *VM {
	vm := &VM{
		frames:  make([]callFrame, 0, FramesMax),
		globals: newGlobals(),
		strings: value.NewTable(),
		Stdout:  stdout,
		nextGC:  initialNextGC,
	}
	vm.initString = vm.InternString("init")
	vm.defineNatives()
	return vm
}

// Interpret compiles and runs source as a new top-level script,
// sharing this VM's globals and interned strings with any program
// previously run in it (the REPL's persistence contract).
func (vm *VM) Interpret(source string) error {
	fn, errs := compiler.Compile(source, vm)
	if len(errs) > 0 {
		return errs
	}

	closure := vm.allocClosure(fn)
	vm.push(closure)
	if rerr := vm.callValue(closure, 0); rerr != nil {
		return rerr
	}

	return vm.run()
}

// --- compiler.Interner ------------------------------------------------

func (vm *VM) InternString(chars string) *value.String {
	return vm.strings.Intern(chars, func(chars string, hash uint32) *value.String {
		s := &value.String{Chars: chars, Hash: hash}
		vm.track(s, len(chars))
		return s
	})
}

func (vm *VM) NewFunction() *value.ObjFunction {
	fn := &value.ObjFunction{}
	vm.track(fn, 64)
	return fn
}

func (vm *VM) PushCompilerRoot(fn *value.ObjFunction) {
	vm.compilerRoots = append(vm.compilerRoots, fn)
}

func (vm *VM) PopCompilerRoot() {
	vm.compilerRoots = vm.compilerRoots[:len(vm.compilerRoots)-1]
}

// --- stack helpers ------------------------------------------------------

func (vm *VM) push(v value.Value) {
	if vm.stackTop >= StackMax {
		panic(newRuntimeError("Stack overflow."))
	}
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	v := vm.stack[vm.stackTop]
	vm.stack[vm.stackTop] = nil
	return v
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) frame() *callFrame { return &vm.frames[len(vm.frames)-1] }

// --- allocation -----------------------------------------------------

// track links o into the heap's intrusive list and folds size into
// the allocation funnel, triggering a collection if it crosses nextGC.
func (vm *VM) track(o value.Obj, size int) {
	h := value.GCHeader(o)
	h.Next = vm.objects
	h.Size = size
	vm.objects = o
	vm.bytesAllocated += size
	if vm.bytesAllocated > vm.nextGC && !vm.DisableGC {
		vm.collectGarbage()
	}
}

func (vm *VM) allocClosure(fn *value.ObjFunction) *value.ObjClosure {
	c := &value.ObjClosure{Fn: fn, Upvalues: make([]*value.ObjUpvalue, fn.UpvalueCount)}
	vm.track(c, 32)
	return c
}

func (vm *VM) allocClass(name *value.String) *value.ObjClass {
	c := value.NewClass(name)
	vm.track(c, 64)
	return c
}

func (vm *VM) allocInstance(class *value.ObjClass) *value.ObjInstance {
	i := value.NewInstance(class)
	vm.track(i, 64)
	return i
}

func (vm *VM) allocBoundMethod(recv value.Value, m *value.ObjClosure) *value.ObjBoundMethod {
	b := &value.ObjBoundMethod{Receiver: recv, Method: m}
	vm.track(b, 32)
	return b
}

func (vm *VM) allocUpvalue(slot *value.Value) *value.ObjUpvalue {
	u := &value.ObjUpvalue{Location: slot}
	vm.track(u, 32)
	return u
}

func (vm *VM) defineNative(name string, arity int, fn value.NativeFn) {
	n := &value.ObjNative{Name: name, Arity: arity, Fn: fn}
	vm.track(n, 16)
	vm.globals.set(vm.InternString(name), n)
}

// runtimeError builds a RuntimeError annotated with the current call
// stack trace, innermost frame first, matching the reference
// interpreter's "[line N] in <name>" reporting.
func (vm *VM) runtimeError(format string, args ...interface{}) *RuntimeError {
	err := newRuntimeError(format, args...)
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := &vm.frames[i]
		name := "script"
		if f.closure.Fn.Name != nil {
			name = f.closure.Fn.Name.Chars
		}
		err.Trace = append(err.Trace, fmt.Sprintf("[line %d] in %s", f.line(), name))
	}
	return err
}
