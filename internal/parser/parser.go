// Package parser implements the hand-written recursive-descent parser
// that drives the checker's check_* entry points as it reduces
// productions, and triggers allocation and generation for each
// function definition as soon as it is complete (spec §2, §6).
package parser

import (
	"github.com/devin-wakefield/simple-c-compiler/internal/asm"
	"github.com/devin-wakefield/simple-c-compiler/internal/ast"
	"github.com/devin-wakefield/simple-c-compiler/internal/checker"
	"github.com/devin-wakefield/simple-c-compiler/internal/codegen"
	"github.com/devin-wakefield/simple-c-compiler/internal/diag"
	"github.com/devin-wakefield/simple-c-compiler/internal/lexer"
	"github.com/devin-wakefield/simple-c-compiler/internal/symtab"
	"github.com/devin-wakefield/simple-c-compiler/internal/token"
	"github.com/devin-wakefield/simple-c-compiler/internal/types"
)

// Parser holds one token of lookahead (cur) and reaches one token of
// peek-ahead through the lexer's own buffer (spec §5).
type Parser struct {
	lex     *lexer.Lexer
	diag    *diag.Reporter
	checker *checker.Checker
	gen     *codegen.Generator
	mod     *asm.Module

	cur token.Token
}

// New returns a Parser ready to parse a translation unit.
func New(lex *lexer.Lexer, d *diag.Reporter, chk *checker.Checker, gen *codegen.Generator) *Parser {
	p := &Parser{lex: lex, diag: d, checker: chk, gen: gen, mod: &asm.Module{}}
	p.cur = lex.Next()
	return p
}

// ParseProgram parses the whole translation unit, generating each
// function as it completes, and returns the assembled module. Globals
// and literal tables are flushed only if no error occurred (spec §5
// "cancellation").
func (p *Parser) ParseProgram() *asm.Module {
	for p.cur.Kind != token.EOF {
		p.topLevelDecl()
	}
	if p.diag.OK() {
		p.mod.Data = codegen.GenerateGlobals(p.checker.Outermost, p.checker.Literals)
	}
	return p.mod
}

func (p *Parser) advance() { p.cur = p.lex.Next() }

func (p *Parser) at(k token.Kind) bool { return p.cur.Kind == k }

func (p *Parser) atPunct(ch string) bool {
	return p.cur.Kind == token.PUNCT && p.cur.Lexeme == ch
}

func (p *Parser) syntaxError() {
	if p.cur.Kind == token.EOF {
		p.diag.SyntaxErrorf("syntax error at end of file")
		return
	}
	p.diag.SyntaxErrorf("syntax error at '%s'", p.cur.Lexeme)
}

func (p *Parser) expectPunct(ch string) {
	if !p.atPunct(ch) {
		p.syntaxError()
	}
	p.advance()
}

func (p *Parser) expect(k token.Kind) token.Token {
	if p.cur.Kind != k {
		p.syntaxError()
	}
	t := p.cur
	p.advance()
	return t
}

// castAhead reports whether the token following the '(' currently
// under cur starts a type-name, distinguishing a cast or a
// sizeof(type) from a parenthesized expression.
func (p *Parser) castAhead() bool {
	next := p.lex.Peek()
	return next.Kind == token.INT || next.Kind == token.DOUBLE
}

func (p *Parser) atTypeSpecifier() bool {
	return p.at(token.INT) || p.at(token.DOUBLE)
}

func (p *Parser) typeSpecifier() types.Specifier {
	switch {
	case p.at(token.INT):
		p.advance()
		return types.INT
	case p.at(token.DOUBLE):
		p.advance()
		return types.DOUBLE
	default:
		p.syntaxError()
		return types.INT
	}
}

func (p *Parser) pointers() uint32 {
	var n uint32
	for p.atPunct("*") {
		n++
		p.advance()
	}
	return n
}

// --- top level ---------------------------------------------------------------

func (p *Parser) topLevelDecl() {
	spec := p.typeSpecifier()
	ind := p.pointers()
	name := p.expect(token.ID).Lexeme

	if p.atPunct("(") {
		p.advance()
		p.functionOrPrototype(spec, ind, name)
		return
	}

	p.declareGlobalVar(spec, ind, name)
	for p.atPunct(",") {
		p.advance()
		ind2 := p.pointers()
		name2 := p.expect(token.ID).Lexeme
		p.declareGlobalVar(spec, ind2, name2)
	}
	p.expectPunct(";")
}

func (p *Parser) declareGlobalVar(spec types.Specifier, ind uint32, name string) {
	t := types.Type{Specifier: spec, Indirection: ind, Shape: types.Scalar}
	if p.atPunct("[") {
		p.advance()
		n := p.expect(token.INTEGER).IntValue
		p.expectPunct("]")
		t = types.Type{Specifier: spec, Indirection: ind, Shape: types.Array, Length: int(n)}
	}
	p.checker.DeclareVariable(name, t)
}

// functionOrPrototype parses the parameter list and either a
// prototype's trailing ';' or a full definition's block, in which
// case it allocates and generates the function immediately if no
// error has occurred yet anywhere in the program so far.
func (p *Parser) functionOrPrototype(spec types.Specifier, ind uint32, name string) {
	ptypes, prototyped, paramNames, paramTypes := p.paramList()
	fnType := types.Type{
		Specifier: spec, Indirection: ind, Shape: types.Function,
		Parameters: ptypes, Prototyped: prototyped,
	}
	sym := p.checker.DeclareFunction(name, fnType)

	if p.atPunct(";") {
		p.advance()
		return
	}

	p.checker.OpenScope()
	var params []*symtab.Symbol
	for i, pname := range paramNames {
		params = append(params, p.checker.DeclareParameter(pname, paramTypes[i]))
	}
	p.checker.SetReturnType(types.Type{Specifier: spec, Indirection: ind, Shape: types.Scalar})
	body := p.blockBody()

	fn := &ast.Function{Name: name, Symbol: sym, Parameters: params, Body: body}
	if p.diag.OK() {
		codegen.Allocate(fn)
		p.mod.Functions = append(p.mod.Functions, p.gen.GenerateFunction(fn))
	}
}

// paramList parses "()" (unprototyped), "(void)" or a comma-separated
// parameter list. It returns the parameter types for the function
// type, whether the list is a prototype, and (for a definition) the
// parameter names and types in declaration order.
func (p *Parser) paramList() (ptypes []types.Type, prototyped bool, names []string, types_ []types.Type) {
	if p.atPunct(")") {
		p.advance()
		return nil, false, nil, nil
	}
	if p.at(token.VOID) {
		p.advance()
		p.expectPunct(")")
		return []types.Type{}, true, nil, nil
	}
	for {
		spec := p.typeSpecifier()
		ind := p.pointers()
		name := p.expect(token.ID).Lexeme
		t := types.Type{Specifier: spec, Indirection: ind, Shape: types.Scalar}
		ptypes = append(ptypes, t)
		names = append(names, name)
		types_ = append(types_, t)
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectPunct(")")
	return ptypes, true, names, types_
}

// --- statements ----------------------------------------------------------------

// parseBlock opens a fresh child scope for a nested compound statement.
func (p *Parser) parseBlock() *ast.Stmt {
	p.checker.OpenScope()
	return p.blockBody()
}

// blockBody parses "{ declarations statements }" against whatever
// scope is already open — either one parseBlock just opened, or the
// scope a function definition shares between its parameters and body.
func (p *Parser) blockBody() *ast.Stmt {
	p.expectPunct("{")
	for p.atTypeSpecifier() {
		p.localDeclaratorList()
	}
	var stmts []*ast.Stmt
	for !p.atPunct("}") && !p.at(token.EOF) {
		stmts = append(stmts, p.statement())
	}
	p.expectPunct("}")
	scope := p.checker.CloseScope()
	return &ast.Stmt{Kind: ast.BlockStmt, Body: stmts, Scope: scope}
}

func (p *Parser) localDeclaratorList() {
	spec := p.typeSpecifier()
	for {
		ind := p.pointers()
		name := p.expect(token.ID).Lexeme
		t := types.Type{Specifier: spec, Indirection: ind, Shape: types.Scalar}
		if p.atPunct("[") {
			p.advance()
			n := p.expect(token.INTEGER).IntValue
			p.expectPunct("]")
			t = types.Type{Specifier: spec, Indirection: ind, Shape: types.Array, Length: int(n)}
		}
		p.checker.DeclareVariable(name, t)
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectPunct(";")
}

func (p *Parser) statement() *ast.Stmt {
	switch {
	case p.atPunct("{"):
		return p.parseBlock()

	case p.at(token.RETURN):
		p.advance()
		e := p.expr()
		p.expectPunct(";")
		return p.checker.CheckReturn(e)

	case p.at(token.WHILE):
		p.advance()
		p.expectPunct("(")
		cond := p.checker.CheckTest(p.expr())
		p.expectPunct(")")
		body := p.statement()
		return &ast.Stmt{Kind: ast.WhileStmt, Cond: cond, While: body}

	case p.at(token.IF):
		p.advance()
		p.expectPunct("(")
		cond := p.checker.CheckTest(p.expr())
		p.expectPunct(")")
		then := p.statement()
		var els *ast.Stmt
		if p.at(token.ELSE) {
			p.advance()
			els = p.statement()
		}
		return &ast.Stmt{Kind: ast.IfStmt, Cond: cond, Then: then, Else: els}

	default:
		e := p.expr()
		p.expectPunct(";")
		return &ast.Stmt{Kind: ast.ExprStmt, Expr: e}
	}
}

// --- expressions, precedence-climbing from lowest to highest ------------------

func (p *Parser) expr() *ast.Expr { return p.assign() }

func (p *Parser) assign() *ast.Expr {
	left := p.logicalOr()
	if p.atPunct("=") {
		p.advance()
		right := p.assign()
		return p.checker.CheckAssign(left, right)
	}
	return left
}

func (p *Parser) logicalOr() *ast.Expr {
	left := p.logicalAnd()
	for p.at(token.OR) {
		p.advance()
		left = p.checker.CheckLogicalOr(left, p.logicalAnd())
	}
	return left
}

func (p *Parser) logicalAnd() *ast.Expr {
	left := p.equality()
	for p.at(token.AND) {
		p.advance()
		left = p.checker.CheckLogicalAnd(left, p.equality())
	}
	return left
}

func (p *Parser) equality() *ast.Expr {
	left := p.relational()
	for p.at(token.EQL) || p.at(token.NEQ) {
		isEq := p.at(token.EQL)
		p.advance()
		if isEq {
			left = p.checker.CheckEqual(left, p.relational())
		} else {
			left = p.checker.CheckNotEqual(left, p.relational())
		}
	}
	return left
}

func (p *Parser) relational() *ast.Expr {
	left := p.additive()
	for p.atPunct("<") || p.atPunct(">") || p.at(token.LEQ) || p.at(token.GEQ) {
		switch {
		case p.atPunct("<"):
			p.advance()
			left = p.checker.CheckLessThan(left, p.additive())
		case p.atPunct(">"):
			p.advance()
			left = p.checker.CheckGreaterThan(left, p.additive())
		case p.at(token.LEQ):
			p.advance()
			left = p.checker.CheckLessOrEqual(left, p.additive())
		default:
			p.advance()
			left = p.checker.CheckGreaterOrEqual(left, p.additive())
		}
	}
	return left
}

func (p *Parser) additive() *ast.Expr {
	left := p.term()
	for p.atPunct("+") || p.atPunct("-") {
		if p.atPunct("+") {
			p.advance()
			left = p.checker.CheckAdd(left, p.term())
		} else {
			p.advance()
			left = p.checker.CheckSubtract(left, p.term())
		}
	}
	return left
}

func (p *Parser) term() *ast.Expr {
	left := p.unary()
	for p.atPunct("*") || p.atPunct("/") || p.atPunct("%") {
		switch {
		case p.atPunct("*"):
			p.advance()
			left = p.checker.CheckMultiply(left, p.unary())
		case p.atPunct("/"):
			p.advance()
			left = p.checker.CheckDivide(left, p.unary())
		default:
			p.advance()
			left = p.checker.CheckRemainder(left, p.unary())
		}
	}
	return left
}

func (p *Parser) unary() *ast.Expr {
	switch {
	case p.atPunct("!"):
		p.advance()
		return p.checker.CheckNot(p.unary())
	case p.atPunct("-"):
		p.advance()
		return p.checker.CheckNegate(p.unary())
	case p.atPunct("*"):
		p.advance()
		return p.checker.CheckDereference(p.unary())
	case p.atPunct("&"):
		p.advance()
		return p.checker.CheckAddress(p.unary())

	case p.at(token.SIZEOF):
		p.advance()
		if p.atPunct("(") && p.castAhead() {
			p.advance()
			spec := p.typeSpecifier()
			ind := p.pointers()
			p.expectPunct(")")
			return p.checker.CheckSizeofType(types.Type{Specifier: spec, Indirection: ind, Shape: types.Scalar})
		}
		return p.checker.CheckSizeofExpr(p.unary())

	case p.atPunct("(") && p.castAhead():
		p.advance()
		spec := p.typeSpecifier()
		ind := p.pointers()
		p.expectPunct(")")
		return p.checker.CheckCast(types.Type{Specifier: spec, Indirection: ind, Shape: types.Scalar}, p.unary())

	default:
		return p.postfix()
	}
}

// postfix parses a primary expression and its single trailing `[...]`
// index or `(...)` call, if any.
func (p *Parser) postfix() *ast.Expr {
	if p.at(token.ID) {
		name := p.cur.Lexeme
		p.advance()

		if p.atPunct("(") {
			p.advance()
			id := p.checker.CheckIdentifier(name)
			var args []*ast.Expr
			if !p.atPunct(")") {
				args = append(args, p.assign())
				for p.atPunct(",") {
					p.advance()
					args = append(args, p.assign())
				}
			}
			p.expectPunct(")")
			return p.checker.CheckCall(id, args)
		}

		e := p.checker.CheckIdentifier(name)
		if p.atPunct("[") {
			p.advance()
			idx := p.expr()
			p.expectPunct("]")
			return p.checker.CheckIndex(e, idx)
		}
		return e
	}
	return p.primary()
}

func (p *Parser) primary() *ast.Expr {
	switch {
	case p.at(token.INTEGER):
		v := p.cur.IntValue
		p.advance()
		return p.checker.CheckIntegerLiteral(v)

	case p.at(token.REAL):
		v := p.cur.RealValue
		p.advance()
		return p.checker.CheckRealLiteral(v)

	case p.at(token.STRING):
		s := p.cur.Lexeme
		p.advance()
		return p.checker.CheckStringLiteral(s)

	case p.atPunct("("):
		p.advance()
		e := p.expr()
		p.expectPunct(")")
		return e

	default:
		p.syntaxError()
		return nil
	}
}
