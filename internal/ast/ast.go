// Package ast defines the tagged node variants built by the checker
// (spec §3): every expression carries its computed type, an lvalue
// flag and a mutable operand string the generator fills in; statements
// and the function node round out the tree consumed by the generator.
package ast

import (
	"github.com/devin-wakefield/simple-c-compiler/internal/symtab"
	"github.com/devin-wakefield/simple-c-compiler/internal/types"
)

// ExprKind discriminates expression node variants.
type ExprKind int

const (
	String ExprKind = iota
	Identifier
	Integer
	Real
	Call

	// Unary.
	Not
	Negate
	Dereference
	Address
	Cast

	// Binary.
	Multiply
	Divide
	Remainder
	Add
	Subtract
	LessThan
	GreaterThan
	LessOrEqual
	GreaterOrEqual
	Equal
	NotEqual
	LogicalAnd
	LogicalOr
	Assign
)

// Expr is every expression node variant. The checker populates Type
// and Lvalue; Operand starts empty and is assigned by the generator's
// temporary/location tracking (spec §4.E).
type Expr struct {
	Kind   ExprKind
	Type   types.Type
	Lvalue bool

	// Operand is the generator's chosen location for this node's
	// value: "$N" for an integer constant, "-8(%ebp)" for a stack
	// slot, a bare name for a global, ".fpN"/".LN" for interned
	// literals. Empty until the generator visits the node.
	Operand string

	StringValue string // String: literal lexeme as written, quotes and escapes included
	StringLabel string // String: assigned .LN label

	Symbol *symtab.Symbol // Identifier, Call: resolved symbol

	IntValue int64 // Integer

	RealValue  float64 // Real
	FloatLabel string  // Real: assigned .fpN label

	Args []*Expr // Call: argument expressions, in source order

	X           *Expr // unary operand: Not, Negate, Dereference, Address, Cast
	Left, Right *Expr // binary operands
}

// StmtKind discriminates statement node variants.
type StmtKind int

const (
	ExprStmt StmtKind = iota
	ReturnStmt
	BlockStmt
	WhileStmt
	IfStmt
)

// Stmt is every statement node variant, including Block which owns the
// Scope opened for it (spec §4.D "Scope lifecycle").
type Stmt struct {
	Kind StmtKind

	Expr *Expr // ExprStmt: the expression; ReturnStmt: the returned value

	Body  []*Stmt      // BlockStmt: contained statements, in order
	Scope *symtab.Scope // BlockStmt: the scope closed when the block's `}` was reached

	Cond  *Expr // WhileStmt, IfStmt: test expression
	While *Stmt // WhileStmt: loop body
	Then  *Stmt // IfStmt: then-branch
	Else  *Stmt // IfStmt: else-branch, nil if absent

	// StartOffset is set on BlockStmt only: the offset reached once the
	// allocator has assigned this block's own locals. The generator
	// resets its temporary-offset tracker to it before emitting each
	// statement inside the Block (spec §4.E).
	StartOffset int32
}

// Function is the function-definition node: parameters share the
// scope opened for the body (spec §4.D).
type Function struct {
	Name       string
	Symbol     *symtab.Symbol   // declared in the outermost scope
	Parameters []*symtab.Symbol // in declaration order, offsets 8, 8+size(p0), ...
	Body       *Stmt            // always a BlockStmt

	// BodyOffset is the offset in effect at the start of the body,
	// i.e. after parameters have been assigned their positive offsets
	// and before any local has been assigned a negative one. Always 0.
	BodyOffset int32
}

// Program is the root of a translation unit: every function definition
// that survived checking, in definition order, plus the outermost
// scope holding prototypes and global variables.
type Program struct {
	Functions []*Function
	Outermost *symtab.Scope
}
