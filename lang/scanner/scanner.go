// Package scanner tokenizes lumen source text for the compiler to consume.
// It never fails outright: unrecognized input becomes an ILLEGAL token that
// the compiler turns into a diagnostic, and scanning always ends with an
// EOF token.
package scanner

import (
	"strconv"

	"github.com/mna/lumen/lang/token"
)

// Scanner produces tokens on demand from a source buffer.
type Scanner struct {
	src  string
	line int

	start int // start offset of the token currently being scanned
	cur   int // offset of the next unread byte
}

// Init resets the scanner to tokenize src from line 1.
func (s *Scanner) Init(src string) {
	s.src = src
	s.line = 1
	s.start = 0
	s.cur = 0
}

// Scan returns the next token and fills tokVal with its raw lexeme,
// position and, for literals, decoded value.
func (s *Scanner) Scan(tokVal *token.Value) token.Token {
	s.skipWhitespaceAndComments()
	s.start = s.cur

	if s.atEnd() {
		return s.emit(token.EOF, tokVal)
	}

	c := s.advance()
	switch {
	case isAlpha(c):
		return s.identifier(tokVal)
	case isDigit(c):
		return s.number(tokVal)
	}

	switch c {
	case '(':
		return s.emit(token.LPAREN, tokVal)
	case ')':
		return s.emit(token.RPAREN, tokVal)
	case '{':
		return s.emit(token.LBRACE, tokVal)
	case '}':
		return s.emit(token.RBRACE, tokVal)
	case ',':
		return s.emit(token.COMMA, tokVal)
	case '.':
		return s.emit(token.DOT, tokVal)
	case '-':
		return s.emit(token.MINUS, tokVal)
	case '+':
		return s.emit(token.PLUS, tokVal)
	case ';':
		return s.emit(token.SEMICOLON, tokVal)
	case '*':
		return s.emit(token.STAR, tokVal)
	case '/':
		return s.emit(token.SLASH, tokVal)
	case '!':
		if s.match('=') {
			return s.emit(token.BANG_EQ, tokVal)
		}
		return s.emit(token.BANG, tokVal)
	case '=':
		if s.match('=') {
			return s.emit(token.EQ_EQ, tokVal)
		}
		return s.emit(token.EQ, tokVal)
	case '<':
		if s.match('=') {
			return s.emit(token.LT_EQ, tokVal)
		}
		return s.emit(token.LT, tokVal)
	case '>':
		if s.match('=') {
			return s.emit(token.GT_EQ, tokVal)
		}
		return s.emit(token.GT, tokVal)
	case '"':
		return s.string(tokVal)
	}

	return s.errorToken(tokVal, "unexpected character")
}

func (s *Scanner) identifier(tokVal *token.Value) token.Token {
	for !s.atEnd() && (isAlpha(s.peek()) || isDigit(s.peek())) {
		s.advance()
	}
	lit := s.src[s.start:s.cur]
	return s.emit(token.Lookup(lit), tokVal)
}

func (s *Scanner) number(tokVal *token.Value) token.Token {
	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}
	if !s.atEnd() && s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance() // consume '.'
		for !s.atEnd() && isDigit(s.peek()) {
			s.advance()
		}
	}

	lit := s.src[s.start:s.cur]
	tok := s.emit(token.NUMBER, tokVal)
	// error is impossible: isDigit guarantees a well-formed decimal literal.
	tokVal.Num, _ = strconv.ParseFloat(lit, 64)
	return tok
}

func (s *Scanner) string(tokVal *token.Value) token.Token {
	startLine := s.line
	for !s.atEnd() && s.peek() != '"' {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		return s.errorTokenAt(tokVal, startLine, "unterminated string")
	}
	content := s.src[s.start+1 : s.cur]
	s.advance() // closing quote

	tok := s.emitAt(token.STRING, startLine, tokVal)
	tokVal.Str = content
	return tok
}

func (s *Scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		switch c := s.peek(); c {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekAt(1) == '/' {
				for !s.atEnd() && s.peek() != '\n' {
					s.advance()
				}
			} else if s.peekAt(1) == '*' {
				s.skipBlockComment()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) skipBlockComment() {
	s.advance() // '/'
	s.advance() // '*'
	for !s.atEnd() {
		if s.peek() == '*' && s.peekAt(1) == '/' {
			s.advance()
			s.advance()
			return
		}
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
}

func (s *Scanner) atEnd() bool { return s.cur >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.cur]
	s.cur++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.cur]
}

func (s *Scanner) peekAt(n int) byte {
	if s.cur+n >= len(s.src) {
		return 0
	}
	return s.src[s.cur+n]
}

func (s *Scanner) match(want byte) bool {
	if s.atEnd() || s.src[s.cur] != want {
		return false
	}
	s.cur++
	return true
}

func (s *Scanner) emit(tok token.Token, tokVal *token.Value) token.Token {
	return s.emitAt(tok, s.line, tokVal)
}

func (s *Scanner) emitAt(tok token.Token, line int, tokVal *token.Value) token.Token {
	*tokVal = token.Value{Raw: s.src[s.start:s.cur], Pos: token.Pos(line)}
	return tok
}

func (s *Scanner) errorToken(tokVal *token.Value, msg string) token.Token {
	return s.errorTokenAt(tokVal, s.line, msg)
}

func (s *Scanner) errorTokenAt(tokVal *token.Value, line int, msg string) token.Token {
	*tokVal = token.Value{Raw: msg, Pos: token.Pos(line)}
	return token.ILLEGAL
}

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
