package machine

import (
	"unsafe"

	"github.com/mna/lumen/lang/value"
)

// callValue dispatches a value appearing in call position: a closure
// runs its body in a new frame, a class constructs (and runs init, if
// any) an instance, a bound method rebinds its receiver into slot 0
// and calls its underlying closure, and a native runs immediately in
// Go. Anything else is a runtime error: this language has no implicit
// conversion to a callable.
func (vm *VM) callValue(callee value.Value, argc int) *RuntimeError {
	switch c := callee.(type) {
	case *value.ObjClosure:
		return vm.call(c, argc)
	case *value.ObjClass:
		inst := vm.allocInstance(c)
		vm.stack[vm.stackTop-1-argc] = inst
		if init, ok := c.Methods.Get(vm.initString); ok {
			return vm.call(init.(*value.ObjClosure), argc)
		}
		if argc != 0 {
			return vm.runtimeError("Expected 0 arguments but got %d.", argc)
		}
		return nil
	case *value.ObjBoundMethod:
		vm.stack[vm.stackTop-1-argc] = c.Receiver
		return vm.call(c.Method, argc)
	case *value.ObjNative:
		if argc != c.Arity {
			return vm.runtimeError("Expected %d arguments but got %d.", c.Arity, argc)
		}
		argv := make([]value.Value, argc)
		copy(argv, vm.stack[vm.stackTop-argc:vm.stackTop])
		result, err := c.Fn(argv)
		if err != nil {
			return vm.runtimeError("%s", err.Error())
		}
		vm.stackTop -= argc + 1
		vm.push(result)
		return nil
	default:
		return vm.runtimeError("Can only call functions and classes.")
	}
}

func (vm *VM) call(closure *value.ObjClosure, argc int) *RuntimeError {
	if argc != closure.Fn.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", closure.Fn.Arity, argc)
	}
	if len(vm.frames) >= FramesMax {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames = append(vm.frames, callFrame{
		closure: closure,
		base:    vm.stackTop - argc - 1,
	})
	return nil
}

// invoke is the fused "get property, then call it" fast path that
// OP_INVOKE uses to avoid materializing a bound method object for the
// common `recv.method(args)` call shape. OP_SUPER_INVOKE skips the
// field lookup and calls invokeFromClass directly.
func (vm *VM) invoke(name *value.String, argc int) *RuntimeError {
	recv, ok := vm.peek(argc).(*value.ObjInstance)
	if !ok {
		return vm.runtimeError("Only instances have methods.")
	}

	if field, ok := recv.Fields.Get(name); ok {
		vm.stack[vm.stackTop-1-argc] = field
		return vm.callValue(field, argc)
	}
	return vm.invokeFromClass(recv.Class, name, argc)
}

func (vm *VM) invokeFromClass(class *value.ObjClass, name *value.String, argc int) *RuntimeError {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	return vm.call(method.(*value.ObjClosure), argc)
}

func (vm *VM) bindMethod(class *value.ObjClass, name *value.String) (*value.ObjBoundMethod, bool) {
	method, ok := class.Methods.Get(name)
	if !ok {
		return nil, false
	}
	recv := vm.peek(0)
	return vm.allocBoundMethod(recv, method.(*value.ObjClosure)), true
}

// captureUpvalue finds-or-creates the open upvalue for the stack slot
// at index, keeping the VM's open list sorted by descending slot so
// that two closures capturing the same local share one ObjUpvalue.
func (vm *VM) captureUpvalue(index int) *value.ObjUpvalue {
	var prev *value.ObjUpvalue
	up := vm.openUpvalues
	for up != nil && vm.slotIndex(up.Location) > index {
		prev = up
		up = up.Next
	}
	if up != nil && vm.slotIndex(up.Location) == index {
		return up
	}

	created := vm.allocUpvalue(&vm.stack[index])
	created.Next = up
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// slotIndex recovers the stack index a captured variable's pointer
// refers to. Location always points somewhere inside vm.stack while
// open, so the offset from the array's base (in element units) is the
// index; this is the one place the VM reaches for unsafe pointer
// arithmetic, to keep the open-upvalue list ordered without giving
// ObjUpvalue its own redundant index field.
func (vm *VM) slotIndex(p *value.Value) int {
	base := unsafe.Pointer(&vm.stack[0])
	return int((uintptr(unsafe.Pointer(p)) - uintptr(base)) / unsafe.Sizeof(vm.stack[0]))
}

// closeUpvalues closes every open upvalue whose slot is at or above
// from, detaching them from the VM's open list. Called when a scope
// that might have been captured ends (block exit, function return).
func (vm *VM) closeUpvalues(from int) {
	for vm.openUpvalues != nil && vm.slotIndex(vm.openUpvalues.Location) >= from {
		up := vm.openUpvalues
		up.Close()
		vm.openUpvalues = up.Next
	}
}
