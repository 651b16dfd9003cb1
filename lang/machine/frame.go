package machine

import "github.com/mna/lumen/lang/value"

// callFrame is one active function call: the closure being executed,
// its instruction pointer, and the base index into the VM's operand
// stack where its locals (parameters first, slot 0 the receiver for
// methods) begin.
type callFrame struct {
	closure *value.ObjClosure
	ip      int
	base    int
}

func (f *callFrame) chunk() *value.Chunk { return &f.closure.Fn.Chunk }

func (f *callFrame) line() int {
	if f.ip == 0 {
		return 0
	}
	return f.chunk().Lines[f.ip-1]
}
