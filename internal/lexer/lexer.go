// Package lexer scans Simple C source text into a token stream. It is
// an external collaborator to the compiler core (spec §6): the parser
// consumes Next()/Peek() and never inspects source bytes itself.
package lexer

import (
	"strconv"
	"strings"

	"github.com/devin-wakefield/simple-c-compiler/internal/diag"
	"github.com/devin-wakefield/simple-c-compiler/internal/token"
)

// Lexer scans a single in-memory source buffer. It keeps one token of
// lookahead buffered so Peek does not re-scan.
type Lexer struct {
	src  string
	pos  int
	line int

	diag *diag.Reporter

	buffered  *token.Token
	hasBuffer bool
}

// New returns a Lexer over src.
func New(src string, d *diag.Reporter) *Lexer {
	return &Lexer{src: src, line: 1, diag: d}
}

// Next consumes and returns the next token.
func (l *Lexer) Next() token.Token {
	if l.hasBuffer {
		l.hasBuffer = false
		t := *l.buffered
		return t
	}
	return l.scan()
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() token.Token {
	if !l.hasBuffer {
		t := l.scan()
		l.buffered = &t
		l.hasBuffer = true
	}
	return *l.buffered
}

func (l *Lexer) cur() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) at(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.cur()
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '/' && l.at(1) == '/':
			for l.pos < len(l.src) && l.cur() != '\n' {
				l.pos++
			}
		case c == '/' && l.at(1) == '*':
			l.pos += 2
			for l.pos < len(l.src) && !(l.cur() == '*' && l.at(1) == '/') {
				if l.cur() == '\n' {
					l.line++
				}
				l.pos++
			}
			if l.pos >= len(l.src) {
				l.diag.SyntaxErrorf("syntax error at end of file")
			}
			l.pos += 2
		default:
			return
		}
	}
}

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlnum(c byte) bool {
	return isAlpha(c) || isDigit(c)
}

func (l *Lexer) scan() token.Token {
	l.skipSpaceAndComments()
	line := l.line
	if l.pos >= len(l.src) {
		return token.Token{Kind: token.EOF, Lexeme: "", Line: line}
	}

	c := l.cur()

	switch {
	case isAlpha(c):
		return l.scanIdentifier(line)
	case isDigit(c), c == '.' && isDigit(l.at(1)):
		return l.scanNumber(line)
	case c == '"':
		return l.scanString(line)
	default:
		return l.scanPunct(line)
	}
}

func (l *Lexer) scanIdentifier(line int) token.Token {
	start := l.pos
	for l.pos < len(l.src) && isAlnum(l.cur()) {
		l.pos++
	}
	text := l.src[start:l.pos]
	if kind, ok := token.Lookup(text); ok {
		return token.Token{Kind: kind, Lexeme: text, Line: line}
	}
	return token.Token{Kind: token.ID, Lexeme: text, Line: line}
}

func (l *Lexer) scanNumber(line int) token.Token {
	start := l.pos
	isReal := false
	for l.pos < len(l.src) && isDigit(l.cur()) {
		l.pos++
	}
	if l.cur() == '.' {
		isReal = true
		l.pos++
		for l.pos < len(l.src) && isDigit(l.cur()) {
			l.pos++
		}
	}
	if l.cur() == 'e' || l.cur() == 'E' {
		save := l.pos
		p := l.pos + 1
		if p < len(l.src) && (l.src[p] == '+' || l.src[p] == '-') {
			p++
		}
		if p < len(l.src) && isDigit(l.src[p]) {
			isReal = true
			l.pos = p
			for l.pos < len(l.src) && isDigit(l.cur()) {
				l.pos++
			}
		} else {
			l.pos = save
		}
	}
	text := l.src[start:l.pos]
	if isReal {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			l.diag.SyntaxErrorf("syntax error at '%s'", text)
		}
		return token.Token{Kind: token.REAL, Lexeme: text, RealValue: v, Line: line}
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		l.diag.SyntaxErrorf("syntax error at '%s'", text)
	}
	return token.Token{Kind: token.INTEGER, Lexeme: text, IntValue: v, Line: line}
}

func (l *Lexer) scanString(line int) token.Token {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	sb.WriteByte('"')
	for l.pos < len(l.src) && l.cur() != '"' {
		if l.cur() == '\\' && l.pos+1 < len(l.src) {
			sb.WriteByte(l.cur())
			l.pos++
			sb.WriteByte(l.cur())
			l.pos++
			continue
		}
		if l.cur() == '\n' {
			l.diag.SyntaxErrorf("syntax error at '%s'", l.src[start:l.pos])
		}
		sb.WriteByte(l.cur())
		l.pos++
	}
	if l.pos >= len(l.src) {
		l.diag.SyntaxErrorf("syntax error at end of file")
	}
	sb.WriteByte('"')
	l.pos++ // closing quote
	return token.Token{Kind: token.STRING, Lexeme: sb.String(), Line: line}
}

var twoCharPuncts = map[string]token.Kind{
	"<=": token.LEQ,
	">=": token.GEQ,
	"==": token.EQL,
	"!=": token.NEQ,
	"&&": token.AND,
	"||": token.OR,
}

func (l *Lexer) scanPunct(line int) token.Token {
	if l.pos+1 < len(l.src) {
		two := l.src[l.pos : l.pos+2]
		if kind, ok := twoCharPuncts[two]; ok {
			l.pos += 2
			return token.Token{Kind: kind, Lexeme: two, Line: line}
		}
	}
	c := l.cur()
	switch c {
	case '+', '-', '*', '/', '%', '(', ')', '{', '}', '[', ']', ';', ',', '&', '<', '>', '=', '!':
		l.pos++
		return token.Token{Kind: token.PUNCT, Lexeme: string(c), Line: line}
	default:
		l.diag.SyntaxErrorf("syntax error at '%c'", c)
		panic("unreachable")
	}
}
