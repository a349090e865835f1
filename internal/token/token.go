// Package token enumerates the lexeme kinds produced by the lexer and
// consumed by the parser, per spec §6's lexer contract.
package token

// Kind identifies the category of a lexeme. Punctuation is carried as
// its own Kind with the literal text in Lexeme (e.g. "+", "(", "{"),
// mirroring lexan()'s convention of returning the ASCII value of the
// character for single-character punctuators.
type Kind int

const (
	EOF Kind = iota
	ID
	INTEGER
	REAL
	STRING

	// Keywords.
	INT
	DOUBLE
	RETURN
	WHILE
	IF
	ELSE
	VOID
	SIZEOF

	// Multi-character punctuators.
	LEQ // <=
	GEQ // >=
	EQL // ==
	NEQ // !=
	AND // &&
	OR  // ||

	// Single-character punctuators are carried with Kind == PUNCT and
	// the character itself in Lexeme.
	PUNCT
)

// Token is the value produced by one call to the lexer.
type Token struct {
	Kind   Kind
	Lexeme string // exact source text; for STRING, includes the quotes

	// Numeric literal values, meaningful only when Kind is INTEGER or REAL.
	IntValue  int64
	RealValue float64

	Line int // 1-based source line, for diagnostics
}

var keywords = map[string]Kind{
	"int":    INT,
	"double": DOUBLE,
	"return": RETURN,
	"while":  WHILE,
	"if":     IF,
	"else":   ELSE,
	"void":   VOID,
	"sizeof": SIZEOF,
}

// Lookup returns the keyword Kind for name, and ok=true if name is a
// keyword; otherwise it returns ID, false.
func Lookup(name string) (Kind, bool) {
	if k, isKeyword := keywords[name]; isKeyword {
		return k, true
	}
	return ID, false
}

// String names a Kind for diagnostics and tests.
func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of file"
	case ID:
		return "identifier"
	case INTEGER:
		return "integer literal"
	case REAL:
		return "real literal"
	case STRING:
		return "string literal"
	case INT:
		return "int"
	case DOUBLE:
		return "double"
	case RETURN:
		return "return"
	case WHILE:
		return "while"
	case IF:
		return "if"
	case ELSE:
		return "else"
	case VOID:
		return "void"
	case SIZEOF:
		return "sizeof"
	case LEQ:
		return "<="
	case GEQ:
		return ">="
	case EQL:
		return "=="
	case NEQ:
		return "!="
	case AND:
		return "&&"
	case OR:
		return "||"
	case PUNCT:
		return "punctuation"
	default:
		return "unknown"
	}
}
