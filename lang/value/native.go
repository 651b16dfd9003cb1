package value

// NativeFn is the signature of a function implemented in Go and
// exposed to scripts as a callable value (e.g. clock()). argv excludes
// the receiver; natives report failures as a Go error, which the
// caller turns into a runtime error at the native's call site.
type NativeFn func(argv []Value) (Value, error)

// ObjNative wraps a NativeFn with the name it was installed under and
// the argument count it expects; the caller checks Arity before
// invoking Fn.
type ObjNative struct {
	Header
	Name  string
	Arity int
	Fn    NativeFn
}

var _ Obj = (*ObjNative)(nil)

func (n *ObjNative) String() string    { return "<native fn>" }
func (n *ObjNative) Type() string      { return "native function" }
func (n *ObjNative) Truth() bool       { return true }
func (n *ObjNative) ObjKind() Kind     { return KindNative }
func (n *ObjNative) gcHeader() *Header { return &n.Header }
