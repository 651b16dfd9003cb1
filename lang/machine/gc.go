package machine

import "github.com/mna/lumen/lang/value"

// collectGarbage runs one full mark-sweep cycle: mark every object
// reachable from a root, remove now-unreachable keys from the
// string-interning table (it holds weak references), then sweep the
// heap, unlinking anything left unmarked. Marks are cleared as part of
// the sweep so the next cycle starts clean.
func (vm *VM) collectGarbage() {
	vm.markRoots()
	vm.traceReferences()
	vm.strings.DeleteUnmarkedKeys(func(o value.Obj) bool {
		return value.GCHeader(o).Marked
	})
	vm.sweep()

	vm.nextGC = vm.bytesAllocated * gcGrowthFactor
	if vm.nextGC < initialNextGC {
		vm.nextGC = initialNextGC
	}
}

func (vm *VM) markRoots() {
	for i := 0; i < vm.stackTop; i++ {
		vm.markValue(vm.stack[i])
	}
	for i := range vm.frames {
		vm.markObject(vm.frames[i].closure)
	}
	for up := vm.openUpvalues; up != nil; up = up.Next {
		vm.markObject(up)
	}
	vm.globals.each(func(name *value.String, v value.Value) {
		vm.markObject(name)
		vm.markValue(v)
	})
	vm.markObject(vm.initString)
	for _, fn := range vm.compilerRoots {
		vm.markObject(fn)
	}
}

func (vm *VM) markValue(v value.Value) {
	if o, ok := v.(value.Obj); ok {
		vm.markObject(o)
	}
}

func (vm *VM) markObject(o value.Obj) {
	if o == nil {
		return
	}
	h := value.GCHeader(o)
	if h.Marked {
		return
	}
	h.Marked = true
	vm.grayStack = append(vm.grayStack, o)
}

// traceReferences drains the gray worklist, marking each object's
// children (blackening it) until nothing gray remains.
func (vm *VM) traceReferences() {
	for len(vm.grayStack) > 0 {
		o := vm.grayStack[len(vm.grayStack)-1]
		vm.grayStack = vm.grayStack[:len(vm.grayStack)-1]
		vm.blacken(o)
	}
}

func (vm *VM) blacken(o value.Obj) {
	switch obj := o.(type) {
	case *value.String, *value.ObjNative:
		// leaf objects: no outgoing references

	case *value.ObjFunction:
		// Name is nil for the top-level script: passing that nil *String
		// through the Obj interface would make markObject's nil check miss
		// (typed nil) and panic on the header dereference.
		if obj.Name != nil {
			vm.markObject(obj.Name)
		}
		for _, c := range obj.Chunk.Constants {
			vm.markValue(c)
		}

	case *value.ObjClosure:
		vm.markObject(obj.Fn)
		for _, u := range obj.Upvalues {
			vm.markObject(u)
		}

	case *value.ObjUpvalue:
		vm.markValue(*obj.Location)

	case *value.ObjClass:
		vm.markObject(obj.Name)
		obj.Methods.Entries(func(key *value.String, v value.Value) {
			vm.markObject(key)
			vm.markValue(v)
		})

	case *value.ObjInstance:
		vm.markObject(obj.Class)
		obj.Fields.Entries(func(key *value.String, v value.Value) {
			vm.markObject(key)
			vm.markValue(v)
		})

	case *value.ObjBoundMethod:
		vm.markValue(obj.Receiver)
		vm.markObject(obj.Method)
	}
}

// sweep walks the heap's intrusive linked list, dropping every object
// that stayed unmarked (unreachable since the previous cycle) and
// clearing the mark bit on every survivor.
func (vm *VM) sweep() {
	var prev value.Obj
	cur := vm.objects
	for cur != nil {
		h := value.GCHeader(cur)
		if h.Marked {
			h.Marked = false
			prev = cur
			cur = h.Next
			continue
		}
		unreached := cur
		cur = h.Next
		if prev != nil {
			value.GCHeader(prev).Next = cur
		} else {
			vm.objects = cur
		}
		vm.bytesAllocated -= h.Size
		_ = unreached // eligible for Go's own GC once unlinked here
	}
}
