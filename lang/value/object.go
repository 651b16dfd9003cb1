package value

// Kind identifies the concrete type of a heap object.
type Kind byte

//nolint:revive
const (
	KindString Kind = iota
	KindFunction
	KindClosure
	KindUpvalue
	KindClass
	KindInstance
	KindBoundMethod
	KindNative
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindClosure:
		return "closure"
	case KindUpvalue:
		return "upvalue"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindBoundMethod:
		return "bound method"
	case KindNative:
		return "native"
	}
	return "unknown object"
}

// Header is embedded in every heap object. It is the object's GC mark bit
// plus its link in the VM's intrusive singly-linked heap list. The
// collector is the only code that ever mutates these fields after
// allocation.
type Header struct {
	Marked bool
	Next   Obj
	Size   int // estimated bytes charged against the allocator's GC funnel
}

// Obj is implemented by every heap-allocated value: strings, functions,
// closures, upvalues, classes, instances, bound methods and natives.
type Obj interface {
	Value
	ObjKind() Kind
	gcHeader() *Header
}

// GCHeader returns the object's mark/link header, exported for the
// collector package boundary (the collector lives in the machine package,
// one level up, and needs to flip Marked and walk Next without this package
// exposing those as public fields on every concrete type).
func GCHeader(o Obj) *Header { return o.gcHeader() }
