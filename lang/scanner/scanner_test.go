package scanner_test

import (
	"testing"

	"github.com/mna/lumen/lang/scanner"
	"github.com/mna/lumen/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []token.Value {
	t.Helper()

	var (
		s   scanner.Scanner
		out []token.Value
		val token.Value
	)
	s.Init(src)
	for {
		tok := s.Scan(&val)
		val.Raw = tok.String() + ":" + val.Raw
		out = append(out, val)
		if tok == token.EOF {
			break
		}
	}
	return out
}

func TestScanPunctuationAndKeywords(t *testing.T) {
	src := `var x = 1; // comment
print x;`
	toks := scanAll(t, src)
	require.Equal(t, "var:var", toks[0].Raw)
	require.Equal(t, "identifier:x", toks[1].Raw)
	require.Equal(t, "=:=", toks[2].Raw)
	require.Equal(t, "number literal:1", toks[3].Raw)
	require.Equal(t, ";:;", toks[4].Raw)
	require.Equal(t, "print:print", toks[5].Raw)
	require.Equal(t, token.Pos(2), toks[5].Pos)
}

func TestScanNumbers(t *testing.T) {
	var s scanner.Scanner
	var val token.Value

	s.Init("123 1.5")
	tok := s.Scan(&val)
	require.Equal(t, token.NUMBER, tok)
	require.InDelta(t, 123, val.Num, 0)

	tok = s.Scan(&val)
	require.Equal(t, token.NUMBER, tok)
	require.InDelta(t, 1.5, val.Num, 0)
}

func TestScanString(t *testing.T) {
	var s scanner.Scanner
	var val token.Value

	s.Init(`"hello
world"`)
	tok := s.Scan(&val)
	require.Equal(t, token.STRING, tok)
	require.Equal(t, "hello\nworld", val.Str)
}

func TestScanUnterminatedString(t *testing.T) {
	var s scanner.Scanner
	var val token.Value

	s.Init(`"hello`)
	tok := s.Scan(&val)
	require.Equal(t, token.ILLEGAL, tok)
}

func TestScanBlockComment(t *testing.T) {
	toks := scanAll(t, "/* skip\nthis */ nil")
	require.Equal(t, "nil:nil", toks[0].Raw)
}

func TestScanIllegalCharacter(t *testing.T) {
	var s scanner.Scanner
	var val token.Value

	s.Init("@")
	tok := s.Scan(&val)
	require.Equal(t, token.ILLEGAL, tok)
}
