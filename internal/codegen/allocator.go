// Package codegen implements the storage allocator (spec §4.C) and
// the code generator (spec §4.E): together they assign every local,
// parameter and intermediate expression result a stack location and
// emit the corresponding AT&T assembly.
package codegen

import "github.com/devin-wakefield/simple-c-compiler/internal/ast"

// Allocate assigns frame offsets to fn's parameters (positive, from 8)
// and to every local declared in fn's body (negative), recursing
// through nested blocks and branches per spec §4.C.
func Allocate(fn *ast.Function) {
	offset := int32(8)
	for _, p := range fn.Parameters {
		p.Offset = offset
		offset += int32(p.Type.Size())
	}
	allocateStmt(fn.Body, 0)
}

// allocateStmt assigns offsets to the locals declared directly in s
// (if s is a Block) and recurses into s's children, returning the
// deepest (most negative) offset reached by s or anything nested in
// it. Siblings within the same block are each allocated starting from
// the same post-declarations offset, not accumulated across siblings:
// their temporaries don't outlive the statement, so they may safely
// reuse the same stack space (spec §4.C).
func allocateStmt(s *ast.Stmt, offset int32) int32 {
	switch s.Kind {
	case ast.BlockStmt:
		for _, sym := range s.Scope.Symbols() {
			if sym.Offset == 0 {
				offset -= int32(sym.Type.Size())
				sym.Offset = offset
			}
		}
		s.StartOffset = offset
		min := offset
		for _, inner := range s.Body {
			if m := allocateStmt(inner, offset); m < min {
				min = m
			}
		}
		return min

	case ast.WhileStmt:
		return allocateStmt(s.While, offset)

	case ast.IfStmt:
		min := allocateStmt(s.Then, offset)
		if s.Else != nil {
			if m := allocateStmt(s.Else, offset); m < min {
				min = m
			}
		}
		return min

	default: // ExprStmt, ReturnStmt: no declarations, offset unchanged.
		return offset
	}
}
