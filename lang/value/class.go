package value

// ObjClass is a class: its name and its method table. Inheritance is
// resolved at class-definition time (OP_INHERIT copies the
// superclass's methods into the subclass), so a class's Methods table
// is always a complete, flattened view — looking up a method never
// walks a superclass chain at call time.
type ObjClass struct {
	Header
	Name    *String
	Methods *Table
}

var _ Obj = (*ObjClass)(nil)

// NewClass returns an empty class named name.
func NewClass(name *String) *ObjClass {
	return &ObjClass{Name: name, Methods: NewTable()}
}

func (c *ObjClass) String() string    { return c.Name.Chars }
func (c *ObjClass) Type() string      { return "class" }
func (c *ObjClass) Truth() bool       { return true }
func (c *ObjClass) ObjKind() Kind     { return KindClass }
func (c *ObjClass) gcHeader() *Header { return &c.Header }

// ObjInstance is an instance of a class: its class pointer plus its
// own, independent field table.
type ObjInstance struct {
	Header
	Class  *ObjClass
	Fields *Table
}

var _ Obj = (*ObjInstance)(nil)

// NewInstance returns a fresh, fieldless instance of class.
func NewInstance(class *ObjClass) *ObjInstance {
	return &ObjInstance{Class: class, Fields: NewTable()}
}

func (i *ObjInstance) String() string    { return i.Class.Name.Chars + " instance" }
func (i *ObjInstance) Type() string      { return "instance" }
func (i *ObjInstance) Truth() bool       { return true }
func (i *ObjInstance) ObjKind() Kind     { return KindInstance }
func (i *ObjInstance) gcHeader() *Header { return &i.Header }

// ObjBoundMethod pairs a receiver with one of its class's closures,
// produced by property access that resolves to a method (e.g.
// `obj.method`, before it is called).
type ObjBoundMethod struct {
	Header
	Receiver Value
	Method   *ObjClosure
}

var _ Obj = (*ObjBoundMethod)(nil)

func (b *ObjBoundMethod) String() string    { return b.Method.String() }
func (b *ObjBoundMethod) Type() string      { return "bound method" }
func (b *ObjBoundMethod) Truth() bool       { return true }
func (b *ObjBoundMethod) ObjKind() Kind     { return KindBoundMethod }
func (b *ObjBoundMethod) gcHeader() *Header { return &b.Header }
