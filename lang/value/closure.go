package value

// ObjUpvalue is a closure's reference to a variable captured from an
// enclosing stack frame. While Open, Location points into the live
// operand stack; Close copies the value inline and parks Location at
// Closed, matching the stack slot it used to alias.
type ObjUpvalue struct {
	Header
	Location *Value // points at a stack slot while open, or &Closed once closed
	Closed   Value
	Next     *ObjUpvalue // next-lower-slot open upvalue, for the VM's open list
}

var _ Obj = (*ObjUpvalue)(nil)

func (u *ObjUpvalue) String() string    { return "<upvalue>" }
func (u *ObjUpvalue) Type() string      { return "upvalue" }
func (u *ObjUpvalue) Truth() bool       { return true }
func (u *ObjUpvalue) ObjKind() Kind     { return KindUpvalue }
func (u *ObjUpvalue) gcHeader() *Header { return &u.Header }

// Close copies the current value out of the stack slot it points at
// and repoints Location at its own Closed field.
func (u *ObjUpvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// ObjClosure pairs a compiled function with the upvalues its body
// captured at creation time.
type ObjClosure struct {
	Header
	Fn       *ObjFunction
	Upvalues []*ObjUpvalue
}

var _ Obj = (*ObjClosure)(nil)

func (c *ObjClosure) String() string    { return c.Fn.String() }
func (c *ObjClosure) Type() string      { return "closure" }
func (c *ObjClosure) Truth() bool       { return true }
func (c *ObjClosure) ObjKind() Kind     { return KindClosure }
func (c *ObjClosure) gcHeader() *Header { return &c.Header }
