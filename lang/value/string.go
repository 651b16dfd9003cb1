package value

// String is an interned, immutable sequence of bytes. Two Strings with
// equal content are always the same reference — see Table.Intern — so
// equality and map keys may use pointer identity.
type String struct {
	Header
	Chars string
	Hash  uint32
}

var (
	_ Obj = (*String)(nil)
)

func (s *String) String() string    { return s.Chars }
func (s *String) Type() string      { return "string" }
func (s *String) Truth() bool       { return true }
func (s *String) ObjKind() Kind     { return KindString }
func (s *String) gcHeader() *Header { return &s.Header }

// FNVOffsetBasis and FNVPrime are the 32-bit FNV-1a constants used to hash
// string content for interning and table probing.
const (
	FNVOffsetBasis uint32 = 2166136261
	FNVPrime       uint32 = 16777619
)

// HashString computes the 32-bit FNV-1a hash of s.
func HashString(s string) uint32 {
	h := FNVOffsetBasis
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= FNVPrime
	}
	return h
}
