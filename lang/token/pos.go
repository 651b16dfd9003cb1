package token

// Pos is a 1-based source line number. The scanner stamps every token with
// one, the compiler copies it byte-for-byte into the chunk's line table, and
// runtime errors walk the call stack reporting one line per frame.
type Pos int

// NoPos means "unknown position".
const NoPos Pos = 0

// Value carries a scanned token's kind-independent payload: its raw lexeme
// and, for literals, the interpreted value.
type Value struct {
	Raw string // exact source text of the token (the error message for ILLEGAL)
	Pos Pos
	Str string  // decoded string literal content (STRING tokens only)
	Num float64 // decoded numeric value (NUMBER tokens only)
}
