package machine

import (
	"fmt"
	"strings"

	"github.com/mna/lumen/lang/compiler"
	"github.com/mna/lumen/lang/opcode"
	"github.com/mna/lumen/lang/value"
)

func (vm *VM) readByte() byte {
	f := vm.frame()
	b := f.chunk().Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) readShort() uint16 {
	f := vm.frame()
	hi, lo := f.chunk().Code[f.ip], f.chunk().Code[f.ip+1]
	f.ip += 2
	return uint16(hi)<<8 | uint16(lo)
}

func (vm *VM) readConstant() value.Value {
	return vm.frame().chunk().Constants[vm.readByte()]
}

func (vm *VM) readString() *value.String {
	return vm.readConstant().(*value.String)
}

// run executes bytecode starting at the current top call frame until
// that frame (and everything it calls) returns; the returning frame's
// result is discarded. Runtime errors surface as a returned error
// rather than a panic, except operand-stack overflow, which push
// raises via panic and run recovers into the returned error.
func (vm *VM) run() (err error) {
	baseFrame := len(vm.frames) - 1
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(*RuntimeError); ok {
				err = rerr
				return
			}
			panic(r)
		}
	}()

	for {
		if vm.Trace {
			var b strings.Builder
			compiler.DisassembleInstruction(&b, vm.frame().chunk(), vm.frame().ip)
			fmt.Fprint(vm.Stdout, b.String())
		}

		op := opcode.Opcode(vm.readByte())
		switch op {
		case opcode.NOP:

		case opcode.CONSTANT:
			vm.push(vm.readConstant())
		case opcode.NIL:
			vm.push(value.NilValue)
		case opcode.TRUE:
			vm.push(value.Bool(true))
		case opcode.FALSE:
			vm.push(value.Bool(false))
		case opcode.POP:
			vm.pop()

		case opcode.GET_LOCAL:
			slot := vm.readByte()
			vm.push(vm.stack[vm.frame().base+int(slot)])
		case opcode.SET_LOCAL:
			slot := vm.readByte()
			vm.stack[vm.frame().base+int(slot)] = vm.peek(0)

		case opcode.GET_UPVALUE:
			slot := vm.readByte()
			vm.push(*vm.frame().closure.Upvalues[slot].Location)
		case opcode.SET_UPVALUE:
			slot := vm.readByte()
			*vm.frame().closure.Upvalues[slot].Location = vm.peek(0)

		case opcode.GET_GLOBAL:
			name := vm.readString()
			v, ok := vm.globals.get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.push(v)
		case opcode.DEFINE_GLOBAL:
			name := vm.readString()
			vm.globals.set(name, vm.peek(0))
			vm.pop()
		case opcode.SET_GLOBAL:
			name := vm.readString()
			if !vm.globals.setIfExists(name, vm.peek(0)) {
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}

		case opcode.EQUAL:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(valuesEqual(a, b)))
		case opcode.GREATER:
			if err := vm.numericBinary(func(a, b float64) value.Value { return value.Bool(a > b) }); err != nil {
				return err
			}
		case opcode.LESS:
			if err := vm.numericBinary(func(a, b float64) value.Value { return value.Bool(a < b) }); err != nil {
				return err
			}
		case opcode.ADD:
			if err := vm.add(); err != nil {
				return err
			}
		case opcode.SUBTRACT:
			if err := vm.numericBinary(func(a, b float64) value.Value { return value.Number(a - b) }); err != nil {
				return err
			}
		case opcode.MULTIPLY:
			if err := vm.numericBinary(func(a, b float64) value.Value { return value.Number(a * b) }); err != nil {
				return err
			}
		case opcode.DIVIDE:
			if err := vm.numericBinary(func(a, b float64) value.Value { return value.Number(a / b) }); err != nil {
				return err
			}
		case opcode.NOT:
			vm.push(value.Bool(!vm.pop().Truth()))
		case opcode.NEGATE:
			n, ok := vm.peek(0).(value.Number)
			if !ok {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.pop()
			vm.push(-n)

		case opcode.PRINT:
			fmt.Fprintln(vm.Stdout, vm.pop().String())

		case opcode.JUMP:
			offset := vm.readShort()
			vm.frame().ip += int(offset)
		case opcode.JUMP_IF_FALSE:
			offset := vm.readShort()
			if !vm.peek(0).Truth() {
				vm.frame().ip += int(offset)
			}
		case opcode.LOOP:
			offset := vm.readShort()
			vm.frame().ip -= int(offset)

		case opcode.CALL:
			argc := int(vm.readByte())
			if rerr := vm.callValue(vm.peek(argc), argc); rerr != nil {
				return rerr
			}

		case opcode.CLOSURE:
			fn := vm.readConstant().(*value.ObjFunction)
			closure := vm.allocClosure(fn)
			vm.push(closure)
			for i := range closure.Upvalues {
				isLocal := vm.readByte()
				index := int(vm.readByte())
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(vm.frame().base + index)
				} else {
					closure.Upvalues[i] = vm.frame().closure.Upvalues[index]
				}
			}
		case opcode.CLOSE_UPVALUE:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case opcode.CLASS:
			vm.push(vm.allocClass(vm.readString()))
		case opcode.INHERIT:
			super, ok := vm.peek(1).(*value.ObjClass)
			if !ok {
				return vm.runtimeError("Superclass must be a class.")
			}
			sub := vm.peek(0).(*value.ObjClass)
			for _, k := range super.Methods.Keys() {
				v, _ := super.Methods.Get(k)
				sub.Methods.Set(k, v)
			}
			vm.pop() // subclass only; superclass stays bound as the "super" local
		case opcode.METHOD:
			vm.defineMethod(vm.readString())

		case opcode.GET_PROPERTY:
			inst, ok := vm.peek(0).(*value.ObjInstance)
			if !ok {
				return vm.runtimeError("Only instances have properties.")
			}
			name := vm.readString()
			if field, ok := inst.Fields.Get(name); ok {
				vm.pop()
				vm.push(field)
				break
			}
			bound, ok := vm.bindMethod(inst.Class, name)
			if !ok {
				return vm.runtimeError("Undefined property '%s'.", name.Chars)
			}
			vm.pop()
			vm.push(bound)
		case opcode.SET_PROPERTY:
			inst, ok := vm.peek(1).(*value.ObjInstance)
			if !ok {
				return vm.runtimeError("Only instances have fields.")
			}
			name := vm.readString()
			inst.Fields.Set(name, vm.peek(0))
			v := vm.pop()
			vm.pop()
			vm.push(v)
		case opcode.GET_SUPER:
			name := vm.readString()
			super := vm.pop().(*value.ObjClass)
			bound, ok := vm.bindMethod(super, name)
			if !ok {
				return vm.runtimeError("Undefined property '%s'.", name.Chars)
			}
			vm.pop()
			vm.push(bound)

		case opcode.INVOKE:
			name := vm.readString()
			argc := int(vm.readByte())
			if rerr := vm.invoke(name, argc); rerr != nil {
				return rerr
			}
		case opcode.SUPER_INVOKE:
			name := vm.readString()
			argc := int(vm.readByte())
			super := vm.pop().(*value.ObjClass)
			if rerr := vm.invokeFromClass(super, name, argc); rerr != nil {
				return rerr
			}

		case opcode.RETURN:
			result := vm.pop()
			f := vm.frame()
			vm.closeUpvalues(f.base)
			vm.stackTop = f.base
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) <= baseFrame {
				// the implicit top-level return: its value is never observed
				return nil
			}
			vm.push(result)

		default:
			return vm.runtimeError("Illegal opcode %d.", byte(op))
		}
	}
}

func valuesEqual(a, b value.Value) bool {
	switch av := a.(type) {
	case value.Nil:
		_, ok := b.(value.Nil)
		return ok
	case value.Bool:
		bv, ok := b.(value.Bool)
		return ok && av == bv
	case value.Number:
		bv, ok := b.(value.Number)
		return ok && av == bv
	case *value.String:
		bv, ok := b.(*value.String)
		return ok && av == bv // interned: reference equality suffices
	default:
		return a == b
	}
}

func (vm *VM) numericBinary(fn func(a, b float64) value.Value) *RuntimeError {
	b, bOk := vm.peek(0).(value.Number)
	a, aOk := vm.peek(1).(value.Number)
	if !aOk || !bOk {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	vm.push(fn(float64(a), float64(b)))
	return nil
}

func (vm *VM) add() *RuntimeError {
	bs, bIsStr := vm.peek(0).(*value.String)
	as, aIsStr := vm.peek(1).(*value.String)
	if aIsStr && bIsStr {
		vm.pop()
		vm.pop()
		vm.push(vm.InternString(as.Chars + bs.Chars))
		return nil
	}

	bn, bIsNum := vm.peek(0).(value.Number)
	an, aIsNum := vm.peek(1).(value.Number)
	if aIsNum && bIsNum {
		vm.pop()
		vm.pop()
		vm.push(an + bn)
		return nil
	}

	return vm.runtimeError("Operands must be two numbers or two strings.")
}

func (vm *VM) defineMethod(name *value.String) {
	method := vm.peek(0).(*value.ObjClosure)
	class := vm.peek(1).(*value.ObjClass)
	class.Methods.Set(name, method)
	vm.pop()
}
