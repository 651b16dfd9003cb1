package compiler

import (
	"fmt"
	"strings"

	"github.com/mna/lumen/lang/opcode"
	"github.com/mna/lumen/lang/value"
)

// Disassemble renders every instruction in chunk as human-readable
// text, labeled name. It backs the VM's optional trace hook.
func Disassemble(chunk *value.Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		offset = DisassembleInstruction(&b, chunk, offset)
	}
	return b.String()
}

// DisassembleInstruction writes one instruction at offset to w and
// returns the offset of the next one.
func DisassembleInstruction(w *strings.Builder, chunk *value.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", chunk.Lines[offset])
	}

	op := opcode.Opcode(chunk.Code[offset])
	switch op {
	case opcode.CONSTANT, opcode.DEFINE_GLOBAL, opcode.GET_GLOBAL, opcode.SET_GLOBAL,
		opcode.CLASS, opcode.METHOD, opcode.GET_PROPERTY, opcode.SET_PROPERTY, opcode.GET_SUPER:
		return constantInstruction(w, op, chunk, offset)
	case opcode.GET_LOCAL, opcode.SET_LOCAL, opcode.GET_UPVALUE, opcode.SET_UPVALUE, opcode.CALL:
		return byteInstruction(w, op, chunk, offset)
	case opcode.JUMP, opcode.JUMP_IF_FALSE:
		return jumpInstruction(w, op, chunk, offset, 1)
	case opcode.LOOP:
		return jumpInstruction(w, op, chunk, offset, -1)
	case opcode.INVOKE, opcode.SUPER_INVOKE:
		return invokeInstruction(w, op, chunk, offset)
	case opcode.CLOSURE:
		return closureInstruction(w, chunk, offset)
	default:
		fmt.Fprintf(w, "%s\n", op)
		return offset + 1
	}
}

func constantInstruction(w *strings.Builder, op opcode.Opcode, chunk *value.Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, chunk.Constants[idx].String())
	return offset + 2
}

func byteInstruction(w *strings.Builder, op opcode.Opcode, chunk *value.Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", op, slot)
	return offset + 2
}

func jumpInstruction(w *strings.Builder, op opcode.Opcode, chunk *value.Chunk, offset int, sign int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, offset+3+sign*jump)
	return offset + 3
}

func invokeInstruction(w *strings.Builder, op opcode.Opcode, chunk *value.Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	argc := chunk.Code[offset+2]
	fmt.Fprintf(w, "%-16s (%d args) %4d '%s'\n", op, argc, idx, chunk.Constants[idx].String())
	return offset + 3
}

func closureInstruction(w *strings.Builder, chunk *value.Chunk, offset int) int {
	offset++
	idx := chunk.Code[offset]
	offset++
	fmt.Fprintf(w, "%-16s %4d '%s'\n", opcode.CLOSURE, idx, chunk.Constants[idx].String())

	fn, ok := chunk.Constants[idx].(*value.ObjFunction)
	if !ok {
		return offset
	}
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := chunk.Code[offset]
		index := chunk.Code[offset+1]
		offset += 2
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset-2, kind, index)
	}
	return offset
}
