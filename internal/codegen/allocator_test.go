package codegen

import (
	"testing"

	"github.com/devin-wakefield/simple-c-compiler/internal/ast"
	"github.com/devin-wakefield/simple-c-compiler/internal/symtab"
	"github.com/devin-wakefield/simple-c-compiler/internal/types"
	"github.com/nalgeon/be"
)

func param(name string, t types.Type) *symtab.Symbol {
	return &symtab.Symbol{Name: name, Type: t}
}

func local(name string, t types.Type) *symtab.Symbol {
	return &symtab.Symbol{Name: name, Type: t}
}

func block(locals []*symtab.Symbol, body ...*ast.Stmt) *ast.Stmt {
	scope := symtab.New(nil)
	for _, l := range locals {
		scope.Declare(l)
	}
	return &ast.Stmt{Kind: ast.BlockStmt, Scope: scope, Body: body}
}

func TestAllocateParametersStartAtEightAndGrow(t *testing.T) {
	p0 := param("a", types.Int)    // size 4
	p1 := param("b", types.Double) // size 8
	fn := &ast.Function{
		Parameters: []*symtab.Symbol{p0, p1},
		Body:       block(nil),
	}
	Allocate(fn)
	be.Equal(t, int32(8), p0.Offset)
	be.Equal(t, int32(12), p1.Offset)
}

func TestAllocateLocalsDecreaseFromZero(t *testing.T) {
	a := local("a", types.Int)
	b := local("b", types.Int)
	fn := &ast.Function{Body: block([]*symtab.Symbol{a, b})}
	Allocate(fn)
	be.Equal(t, int32(-4), a.Offset)
	be.Equal(t, int32(-8), b.Offset)
}

func TestAllocateSiblingBlocksReuseOffset(t *testing.T) {
	x := local("x", types.Int)
	outer := local("outer", types.Int)

	firstChildLocal := local("a", types.Int)
	secondChildLocal := local("b", types.Int)

	first := block([]*symtab.Symbol{firstChildLocal})
	second := block([]*symtab.Symbol{secondChildLocal})
	fn := &ast.Function{
		Body: block([]*symtab.Symbol{outer, x}, first, second),
	}
	Allocate(fn)

	// outer block declares outer, x at -4, -8; both sibling blocks must
	// start allocating their own locals from -8, not continue past it.
	be.Equal(t, int32(-4), outer.Offset)
	be.Equal(t, int32(-8), x.Offset)
	be.Equal(t, int32(-12), firstChildLocal.Offset)
	be.Equal(t, int32(-12), secondChildLocal.Offset)
}

func TestAllocateIfTakesMinOfBothBranches(t *testing.T) {
	thenLocal := local("t", types.Double) // 8 bytes
	elseLocal := local("e", types.Int)    // 4 bytes

	thenBlock := block([]*symtab.Symbol{thenLocal})
	elseBlock := block([]*symtab.Symbol{elseLocal})

	ifStmt := &ast.Stmt{Kind: ast.IfStmt, Then: thenBlock, Else: elseBlock}
	fn := &ast.Function{Body: block(nil, ifStmt)}
	Allocate(fn)

	be.Equal(t, int32(-8), thenLocal.Offset)
	be.Equal(t, int32(-4), elseLocal.Offset)
	// both branches allocate from the same pre-if offset (0), independently
	be.Equal(t, int32(-8), thenBlock.StartOffset)
	be.Equal(t, int32(-4), elseBlock.StartOffset)
}

func TestAllocateWhilePassesOffsetThrough(t *testing.T) {
	bodyLocal := local("i", types.Int)
	body := block([]*symtab.Symbol{bodyLocal})
	whileStmt := &ast.Stmt{Kind: ast.WhileStmt, While: body}
	outerLocal := local("n", types.Int)
	fn := &ast.Function{Body: block([]*symtab.Symbol{outerLocal}, whileStmt)}
	Allocate(fn)

	be.Equal(t, int32(-4), outerLocal.Offset)
	be.Equal(t, int32(-8), bodyLocal.Offset)
}
