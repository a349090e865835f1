// Package checker implements the semantic checker (spec §4.D): it
// builds AST nodes while validating types, inserting implicit casts,
// array decay and pointer-arithmetic scaling, and managing scopes.
// Parsing productions call straight into these check_* entry points as
// they reduce; the checker never looks at tokens itself.
package checker

import (
	"github.com/devin-wakefield/simple-c-compiler/internal/ast"
	"github.com/devin-wakefield/simple-c-compiler/internal/diag"
	"github.com/devin-wakefield/simple-c-compiler/internal/literals"
	"github.com/devin-wakefield/simple-c-compiler/internal/symtab"
	"github.com/devin-wakefield/simple-c-compiler/internal/types"
)

// Checker owns the scope chain, the diagnostic sink and the literal
// intern pool for one translation unit.
type Checker struct {
	Diag     *diag.Reporter
	Literals *literals.Pool

	Outermost *symtab.Scope
	current   *symtab.Scope

	// returnType is the declared return type of the function whose body
	// is currently being checked; CheckReturn converts against it.
	returnType types.Type
}

// New returns a Checker with a fresh outermost scope.
func New(d *diag.Reporter, lit *literals.Pool) *Checker {
	outer := symtab.New(nil)
	return &Checker{Diag: d, Literals: lit, Outermost: outer, current: outer}
}

// CurrentScope returns the innermost open scope.
func (c *Checker) CurrentScope() *symtab.Scope { return c.current }

// OpenScope pushes a new scope as a child of the current one.
func (c *Checker) OpenScope() {
	c.current = symtab.New(c.current)
}

// CloseScope pops the current scope and returns it; ownership passes to
// the caller (the Block statement being built).
func (c *Checker) CloseScope() *symtab.Scope {
	closed := c.current
	c.current = c.current.Parent
	return closed
}

// SetReturnType records the return type that CheckReturn converts
// against while a function body is being checked.
func (c *Checker) SetReturnType(t types.Type) {
	c.returnType = t
}

// --- declarations -----------------------------------------------------

// DeclareFunction installs name in the outermost scope.
func (c *Checker) DeclareFunction(name string, t types.Type) *symtab.Symbol {
	sym := &symtab.Symbol{Name: name, Type: t}
	if _, redeclared := c.Outermost.Declare(sym); redeclared {
		c.Diag.Errorf("function %s is previously declared", name)
	}
	return sym
}

// DeclareVariable installs name in the current scope.
func (c *Checker) DeclareVariable(name string, t types.Type) *symtab.Symbol {
	sym := &symtab.Symbol{Name: name, Type: t}
	if _, redeclared := c.current.Declare(sym); redeclared {
		c.Diag.Errorf("variable %s is previously declared", name)
	}
	return sym
}

// DeclareParameter installs name in the current scope (the scope
// shared by a function's parameters and its body).
func (c *Checker) DeclareParameter(name string, t types.Type) *symtab.Symbol {
	sym := &symtab.Symbol{Name: name, Type: t}
	if _, redeclared := c.current.Declare(sym); redeclared {
		c.Diag.Errorf("parameter %s is previously declared", name)
	}
	return sym
}

// CheckIdentifier resolves name by walking up the scope chain. An
// unresolved name is diagnosed once and given an ERROR-typed symbol
// installed in the current scope, suppressing repeat diagnostics for
// further uses of the same name in this scope.
func (c *Checker) CheckIdentifier(name string) *ast.Expr {
	sym, ok := c.current.Lookup(name)
	if !ok {
		c.Diag.Errorf("%s is undeclared", name)
		sym = &symtab.Symbol{Name: name, Type: types.Err}
		c.current.Declare(sym)
	}
	lvalue := !sym.Type.IsArray() && !sym.Type.IsFunction()
	return &ast.Expr{Kind: ast.Identifier, Type: sym.Type, Lvalue: lvalue, Symbol: sym}
}

// --- literals -----------------------------------------------------------

// CheckIntegerLiteral builds an Integer node for an int literal.
func (c *Checker) CheckIntegerLiteral(v int64) *ast.Expr {
	return &ast.Expr{Kind: ast.Integer, Type: types.Int, IntValue: v}
}

// CheckRealLiteral builds a Real node for a double literal, interning
// its textual value into the float-label table.
func (c *Checker) CheckRealLiteral(v float64) *ast.Expr {
	label := c.Literals.InternFloat(v)
	return &ast.Expr{Kind: ast.Real, Type: types.Double, RealValue: v, FloatLabel: label}
}

// stringType is the type given to a string literal: there is no `char`
// specifier in this language's type model (spec §3 only defines
// INT/DOUBLE/ERROR), and strings appear only as call arguments, so a
// literal is typed directly as a pointer scalar rather than an array
// that would need its own element specifier.
var stringType = types.Type{Specifier: types.INT, Indirection: 1, Shape: types.Scalar}

// CheckStringLiteral builds a String node, interning lexeme (with its
// surrounding quotes and escapes as written) into the string-label table.
func (c *Checker) CheckStringLiteral(lexeme string) *ast.Expr {
	label := c.Literals.InternString(lexeme)
	return &ast.Expr{Kind: ast.String, Type: stringType, StringValue: lexeme, StringLabel: label}
}

// --- implicit conversions -----------------------------------------------

func errExpr() *ast.Expr {
	return &ast.Expr{Kind: ast.Integer, Type: types.Err}
}

// promoteArray implements array-to-pointer decay: if e's type is an
// array, wrap it in an Address node carrying the promoted type.
func promoteArray(e *ast.Expr) *ast.Expr {
	if !e.Type.IsArray() {
		return e
	}
	return &ast.Expr{Kind: ast.Address, Type: e.Type.Promote(), X: e}
}

// promoteToDouble implements int-to-double promotion (spec §4.D
// "promote(e, target)"): only applies when e is a plain INT scalar AND
// target is a plain DOUBLE scalar. An integer literal is rewritten in
// place to a Real; anything else is wrapped in a Cast.
func promoteToDouble(e *ast.Expr, target types.Type, lit *literals.Pool) *ast.Expr {
	if e.Type.Specifier != types.INT || e.Type.Shape != types.Scalar || e.Type.Indirection != 0 {
		return e
	}
	if target.Specifier != types.DOUBLE || target.Shape != types.Scalar || target.Indirection != 0 {
		return e
	}
	if e.Kind == ast.Integer {
		e.Kind = ast.Real
		e.RealValue = float64(e.IntValue)
		e.FloatLabel = lit.InternFloat(e.RealValue)
		e.Type = types.Double
		return e
	}
	return &ast.Expr{Kind: ast.Cast, Type: types.Double, X: e}
}

// convert applies double-to-int narrowing (if needed), then
// int-to-double promotion, then array decay, landing e at target's
// type whenever that conversion is legal.
func (c *Checker) convert(e *ast.Expr, target types.Type) *ast.Expr {
	if e.Type.IsReal() && target.Specifier == types.INT && target.Shape == types.Scalar && target.Indirection == 0 {
		e = &ast.Expr{Kind: ast.Cast, Type: types.Int, X: e}
	}
	e = promoteToDouble(e, target, c.Literals)
	e = promoteArray(e)
	return e
}

// --- unary operators ------------------------------------------------------

// CheckNot implements `!e`.
func (c *Checker) CheckNot(x *ast.Expr) *ast.Expr {
	x = promoteArray(x)
	if x.Type.IsError() {
		return errExpr()
	}
	if !x.Type.IsValue() {
		c.Diag.Errorf("invalid operand to unary %s", "!")
		return errExpr()
	}
	return &ast.Expr{Kind: ast.Not, Type: types.Int, X: x}
}

// CheckNegate implements unary `-e`.
func (c *Checker) CheckNegate(x *ast.Expr) *ast.Expr {
	if x.Type.IsError() {
		return errExpr()
	}
	if !x.Type.IsNumeric() {
		c.Diag.Errorf("invalid operand to unary %s", "-")
		return errExpr()
	}
	return &ast.Expr{Kind: ast.Negate, Type: x.Type, X: x}
}

// CheckDereference implements unary `*e`.
func (c *Checker) CheckDereference(x *ast.Expr) *ast.Expr {
	x = promoteArray(x)
	if x.Type.IsError() {
		return errExpr()
	}
	if !x.Type.IsPointer() {
		c.Diag.Errorf("invalid operand to unary %s", "*")
		return errExpr()
	}
	return &ast.Expr{Kind: ast.Dereference, Type: x.Type.Deref(), Lvalue: true, X: x}
}

// CheckAddress implements unary `&e`.
func (c *Checker) CheckAddress(x *ast.Expr) *ast.Expr {
	if x.Type.IsError() {
		return errExpr()
	}
	if !x.Lvalue {
		c.Diag.Errorf("invalid operand to unary %s", "&")
		return errExpr()
	}
	return &ast.Expr{Kind: ast.Address, Type: x.Type.AddrOf(), X: x}
}

// CheckCast implements `(T)e`.
func (c *Checker) CheckCast(target types.Type, x *ast.Expr) *ast.Expr {
	x = promoteArray(x)
	if x.Type.IsError() {
		return errExpr()
	}
	ok := (target.IsNumeric() && x.Type.IsNumeric()) ||
		(target.IsPointer() && x.Type.IsPointer()) ||
		(target.IsPointer() && x.Type.Equal(types.Int)) ||
		(target.Equal(types.Int) && x.Type.IsPointer())
	if !ok {
		c.Diag.Errorf("invalid operand in cast expression")
		return errExpr()
	}
	return &ast.Expr{Kind: ast.Cast, Type: target, X: x}
}

// CheckSizeofExpr implements `sizeof unary-expr`: it measures e's
// undecayed type, so `sizeof arr` on an `int[10]` is 40, not 4.
func (c *Checker) CheckSizeofExpr(e *ast.Expr) *ast.Expr {
	if e.Type.IsError() {
		return errExpr()
	}
	return &ast.Expr{Kind: ast.Integer, Type: types.Int, IntValue: int64(e.Type.Size())}
}

// CheckSizeofType implements `sizeof(type-name)`.
func (c *Checker) CheckSizeofType(t types.Type) *ast.Expr {
	return &ast.Expr{Kind: ast.Integer, Type: types.Int, IntValue: int64(t.Size())}
}

// --- binary arithmetic ----------------------------------------------------

func (c *Checker) arithResult(l, r *ast.Expr) types.Type {
	if l.Type.Specifier == types.DOUBLE || r.Type.Specifier == types.DOUBLE {
		return types.Double
	}
	return types.Int
}

// numericArith builds a binary arithmetic node over two already-numeric
// operands: it picks the Int/Double result type and promotes whichever
// operand needs it to match (a no-op when both are already Int).
func (c *Checker) numericArith(kind ast.ExprKind, l, r *ast.Expr) *ast.Expr {
	result := c.arithResult(l, r)
	l = promoteToDouble(l, result, c.Literals)
	r = promoteToDouble(r, result, c.Literals)
	return &ast.Expr{Kind: kind, Type: result, Left: l, Right: r}
}

func (c *Checker) checkNumericBinary(kind ast.ExprKind, op string, l, r *ast.Expr) *ast.Expr {
	l, r = promoteArray(l), promoteArray(r)
	if l.Type.IsError() || r.Type.IsError() {
		return errExpr()
	}
	if !l.Type.IsNumeric() || !r.Type.IsNumeric() {
		c.Diag.Errorf("invalid operands to binary %s", op)
		return errExpr()
	}
	return c.numericArith(kind, l, r)
}

// CheckMultiply implements `*`.
func (c *Checker) CheckMultiply(l, r *ast.Expr) *ast.Expr {
	return c.checkNumericBinary(ast.Multiply, "*", l, r)
}

// CheckDivide implements `/`.
func (c *Checker) CheckDivide(l, r *ast.Expr) *ast.Expr {
	return c.checkNumericBinary(ast.Divide, "/", l, r)
}

// CheckRemainder implements `%`: both operands must be int, with no
// numeric promotion.
func (c *Checker) CheckRemainder(l, r *ast.Expr) *ast.Expr {
	if l.Type.IsError() || r.Type.IsError() {
		return errExpr()
	}
	if !l.Type.Equal(types.Int) || !r.Type.Equal(types.Int) {
		c.Diag.Errorf("invalid operands to binary %s", "%")
		return errExpr()
	}
	return &ast.Expr{Kind: ast.Remainder, Type: types.Int, Left: l, Right: r}
}

// scaled wraps i in a Multiply by the pointee size of ptr's type, for
// pointer arithmetic scaling.
func scaled(i *ast.Expr, ptr types.Type) *ast.Expr {
	size := ptr.Deref().Size()
	return &ast.Expr{
		Kind:  ast.Multiply,
		Type:  types.Int,
		Left:  i,
		Right: &ast.Expr{Kind: ast.Integer, Type: types.Int, IntValue: int64(size)},
	}
}

// CheckAdd implements `+`: numeric arithmetic, or pointer+int with the
// int operand scaled by the pointee size (either operand order).
func (c *Checker) CheckAdd(l, r *ast.Expr) *ast.Expr {
	l, r = promoteArray(l), promoteArray(r)
	if l.Type.IsError() || r.Type.IsError() {
		return errExpr()
	}
	switch {
	case l.Type.IsNumeric() && r.Type.IsNumeric():
		return c.numericArith(ast.Add, l, r)
	case l.Type.IsPointer() && r.Type.Equal(types.Int):
		return &ast.Expr{Kind: ast.Add, Type: l.Type, Left: l, Right: scaled(r, l.Type)}
	case l.Type.Equal(types.Int) && r.Type.IsPointer():
		return &ast.Expr{Kind: ast.Add, Type: r.Type, Left: scaled(l, r.Type), Right: r}
	default:
		c.Diag.Errorf("invalid operands to binary %s", "+")
		return errExpr()
	}
}

// CheckSubtract implements `-`: numeric arithmetic, pointer-int with
// the int scaled, or pointer-pointer (identical pointee) producing an
// int byte-distance divided down by the pointee size.
func (c *Checker) CheckSubtract(l, r *ast.Expr) *ast.Expr {
	l, r = promoteArray(l), promoteArray(r)
	if l.Type.IsError() || r.Type.IsError() {
		return errExpr()
	}
	switch {
	case l.Type.IsNumeric() && r.Type.IsNumeric():
		return c.numericArith(ast.Subtract, l, r)
	case l.Type.IsPointer() && r.Type.Equal(types.Int):
		return &ast.Expr{Kind: ast.Subtract, Type: l.Type, Left: l, Right: scaled(r, l.Type)}
	case l.Type.IsPointer() && r.Type.IsPointer() && l.Type.Equal(r.Type):
		size := l.Type.Deref().Size()
		sub := &ast.Expr{Kind: ast.Subtract, Type: types.Int, Left: l, Right: r}
		return &ast.Expr{
			Kind: ast.Divide, Type: types.Int, Left: sub,
			Right: &ast.Expr{Kind: ast.Integer, Type: types.Int, IntValue: int64(size)},
		}
	default:
		c.Diag.Errorf("invalid operands to binary %s", "-")
		return errExpr()
	}
}

// --- comparisons and logical operators ------------------------------------

var relationalOp = map[ast.ExprKind]string{
	ast.LessThan: "<", ast.GreaterThan: ">",
	ast.LessOrEqual: "<=", ast.GreaterOrEqual: ">=",
	ast.Equal: "==", ast.NotEqual: "!=",
}

func (c *Checker) checkRelational(kind ast.ExprKind, l, r *ast.Expr) *ast.Expr {
	l, r = promoteArray(l), promoteArray(r)
	if l.Type.IsError() || r.Type.IsError() {
		return errExpr()
	}
	if !l.Type.Equal(r.Type) || !l.Type.IsValue() {
		c.Diag.Errorf("invalid operands to binary %s", relationalOp[kind])
		return errExpr()
	}
	return &ast.Expr{Kind: kind, Type: types.Int, Left: l, Right: r}
}

// CheckLessThan implements `<`.
func (c *Checker) CheckLessThan(l, r *ast.Expr) *ast.Expr { return c.checkRelational(ast.LessThan, l, r) }

// CheckGreaterThan implements `>`.
func (c *Checker) CheckGreaterThan(l, r *ast.Expr) *ast.Expr {
	return c.checkRelational(ast.GreaterThan, l, r)
}

// CheckLessOrEqual implements `<=`.
func (c *Checker) CheckLessOrEqual(l, r *ast.Expr) *ast.Expr {
	return c.checkRelational(ast.LessOrEqual, l, r)
}

// CheckGreaterOrEqual implements `>=`.
func (c *Checker) CheckGreaterOrEqual(l, r *ast.Expr) *ast.Expr {
	return c.checkRelational(ast.GreaterOrEqual, l, r)
}

// CheckEqual implements `==`.
func (c *Checker) CheckEqual(l, r *ast.Expr) *ast.Expr { return c.checkRelational(ast.Equal, l, r) }

// CheckNotEqual implements `!=`.
func (c *Checker) CheckNotEqual(l, r *ast.Expr) *ast.Expr {
	return c.checkRelational(ast.NotEqual, l, r)
}

func (c *Checker) checkLogical(kind ast.ExprKind, op string, l, r *ast.Expr) *ast.Expr {
	l, r = promoteArray(l), promoteArray(r)
	if l.Type.IsError() || r.Type.IsError() {
		return errExpr()
	}
	if !l.Type.IsValue() || !r.Type.IsValue() {
		c.Diag.Errorf("invalid operands to binary %s", op)
		return errExpr()
	}
	return &ast.Expr{Kind: kind, Type: types.Int, Left: l, Right: r}
}

// CheckLogicalAnd implements `&&`.
func (c *Checker) CheckLogicalAnd(l, r *ast.Expr) *ast.Expr {
	return c.checkLogical(ast.LogicalAnd, "&&", l, r)
}

// CheckLogicalOr implements `||`.
func (c *Checker) CheckLogicalOr(l, r *ast.Expr) *ast.Expr {
	return c.checkLogical(ast.LogicalOr, "||", l, r)
}

// --- assignment, call, index, return, test --------------------------------

// CheckAssign implements `=`.
func (c *Checker) CheckAssign(lhs, rhs *ast.Expr) *ast.Expr {
	if lhs.Type.IsError() || rhs.Type.IsError() {
		return errExpr()
	}
	rhsConv := c.convert(rhs, lhs.Type)
	if !lhs.Lvalue {
		c.Diag.Errorf("invalid lvalue in expression")
		return errExpr()
	}
	if !rhsConv.Type.Equal(lhs.Type) || !lhs.Type.IsValue() {
		c.Diag.Errorf("invalid operands to binary %s", "=")
		return errExpr()
	}
	return &ast.Expr{Kind: ast.Assign, Type: lhs.Type, Left: lhs, Right: rhsConv}
}

// CheckIndex implements `a[b]`, desugaring to
// `Dereference(Add(a, Multiply(b, sizeof(*a))))`.
func (c *Checker) CheckIndex(a, b *ast.Expr) *ast.Expr {
	a = promoteArray(a)
	if a.Type.IsError() || b.Type.IsError() {
		return errExpr()
	}
	if !a.Type.IsPointer() || !b.Type.Equal(types.Int) {
		c.Diag.Errorf("invalid operands to binary %s", "[]")
		return errExpr()
	}
	add := &ast.Expr{Kind: ast.Add, Type: a.Type, Left: a, Right: scaled(b, a.Type)}
	return &ast.Expr{Kind: ast.Dereference, Type: a.Type.Deref(), Lvalue: true, X: add}
}

// CheckCall implements `id(args)`. id must already be a checked
// Identifier expression (built by CheckIdentifier).
func (c *Checker) CheckCall(id *ast.Expr, args []*ast.Expr) *ast.Expr {
	if id.Type.IsError() {
		return errExpr()
	}
	if !id.Type.IsFunction() {
		c.Diag.Errorf("called object is not a function")
		return errExpr()
	}
	ft := id.Symbol.Type
	result := types.Type{Specifier: ft.Specifier, Indirection: ft.Indirection, Shape: types.Scalar}

	var checked []*ast.Expr
	if ft.Prototyped {
		if len(args) != len(ft.Parameters) {
			c.Diag.Errorf("invalid arguments to called function")
			return errExpr()
		}
		for i, a := range args {
			if a.Type.IsError() {
				return errExpr()
			}
			conv := c.convert(a, ft.Parameters[i])
			if !conv.Type.Equal(ft.Parameters[i]) {
				c.Diag.Errorf("invalid arguments to called function")
				return errExpr()
			}
			checked = append(checked, conv)
		}
	} else {
		for _, a := range args {
			if a.Type.IsError() {
				return errExpr()
			}
			checked = append(checked, promoteArray(a))
		}
	}
	return &ast.Expr{Kind: ast.Call, Type: result, Symbol: id.Symbol, Args: checked}
}

// CheckReturn implements `return e;`, converting e to the enclosing
// function's declared return type.
func (c *Checker) CheckReturn(e *ast.Expr) *ast.Stmt {
	conv := c.convert(e, c.returnType)
	if !e.Type.IsError() && !conv.Type.Equal(c.returnType) {
		c.Diag.Errorf("invalid return type")
		conv = errExpr()
	}
	return &ast.Stmt{Kind: ast.ReturnStmt, Expr: conv}
}

// CheckTest implements the `if`/`while` test expression.
func (c *Checker) CheckTest(e *ast.Expr) *ast.Expr {
	e = promoteArray(e)
	if e.Type.IsError() {
		return e
	}
	if !e.Type.IsValue() {
		c.Diag.Errorf("invalid type for test expression")
		return errExpr()
	}
	return e
}
