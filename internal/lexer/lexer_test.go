package lexer

import (
	"bytes"
	"testing"

	"github.com/devin-wakefield/simple-c-compiler/internal/diag"
	"github.com/devin-wakefield/simple-c-compiler/internal/token"
	"github.com/nalgeon/be"
)

func kinds(src string) []token.Kind {
	var buf bytes.Buffer
	l := New(src, diag.New(&buf))
	var out []token.Kind
	for {
		tok := l.Next()
		out = append(out, tok.Kind)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	got := kinds("int double return while if else void sizeof foo")
	want := []token.Kind{
		token.INT, token.DOUBLE, token.RETURN, token.WHILE, token.IF,
		token.ELSE, token.VOID, token.SIZEOF, token.ID, token.EOF,
	}
	be.Equal(t, len(want), len(got))
	for i := range want {
		be.Equal(t, want[i], got[i])
	}
}

func TestIntegerLiteral(t *testing.T) {
	var buf bytes.Buffer
	l := New("42", diag.New(&buf))
	tok := l.Next()
	be.Equal(t, token.INTEGER, tok.Kind)
	be.Equal(t, int64(42), tok.IntValue)
}

func TestRealLiteralForms(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"1.5", 1.5},
		{"0.5", 0.5},
		{"1e3", 1000},
		{"2.5e-1", 0.25},
	}
	for _, test := range tests {
		var buf bytes.Buffer
		l := New(test.src, diag.New(&buf))
		tok := l.Next()
		be.Equal(t, token.REAL, tok.Kind)
		be.Equal(t, test.want, tok.RealValue)
	}
}

func TestStringLiteralKeepsQuotesAndEscapes(t *testing.T) {
	var buf bytes.Buffer
	l := New(`"hello\n"`, diag.New(&buf))
	tok := l.Next()
	be.Equal(t, token.STRING, tok.Kind)
	be.Equal(t, `"hello\n"`, tok.Lexeme)
}

func TestTwoCharPunctuators(t *testing.T) {
	got := kinds("<= >= == != && ||")
	want := []token.Kind{token.LEQ, token.GEQ, token.EQL, token.NEQ, token.AND, token.OR, token.EOF}
	be.Equal(t, len(want), len(got))
	for i := range want {
		be.Equal(t, want[i], got[i])
	}
}

func TestSingleCharPunctuatorsCarryLexeme(t *testing.T) {
	var buf bytes.Buffer
	l := New("+", diag.New(&buf))
	tok := l.Next()
	be.Equal(t, token.PUNCT, tok.Kind)
	be.Equal(t, "+", tok.Lexeme)
}

func TestCommentsAreSkipped(t *testing.T) {
	got := kinds("1 // a comment\n2 /* block\ncomment */ 3")
	want := []token.Kind{token.INTEGER, token.INTEGER, token.INTEGER, token.EOF}
	be.Equal(t, len(want), len(got))
}

func TestPeekDoesNotConsume(t *testing.T) {
	var buf bytes.Buffer
	l := New("1 2", diag.New(&buf))
	peeked := l.Peek()
	be.Equal(t, token.INTEGER, peeked.Kind)
	be.Equal(t, int64(1), peeked.IntValue)

	first := l.Next()
	be.Equal(t, int64(1), first.IntValue)

	second := l.Next()
	be.Equal(t, int64(2), second.IntValue)
}

func TestLineNumbersAdvanceAcrossNewlines(t *testing.T) {
	var buf bytes.Buffer
	l := New("1\n2\n3", diag.New(&buf))
	be.Equal(t, 1, l.Next().Line)
	be.Equal(t, 2, l.Next().Line)
	be.Equal(t, 3, l.Next().Line)
}
