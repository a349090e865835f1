// Package symtab implements the symbol table and scope chain of spec
// §3/§4.A: a Symbol records a declared name's type and eventual frame
// offset; a Scope is one link in the lookup chain.
package symtab

import "github.com/devin-wakefield/simple-c-compiler/internal/types"

// Symbol is a declared name: a variable, parameter or function.
// Offset is 0 until the allocator assigns one; positive offsets are
// parameters (relative to %ebp, starting at 8), negative offsets are
// locals and temporaries, and a zero offset that survives to code
// generation names a global.
type Symbol struct {
	Name   string
	Type   types.Type
	Offset int32
}

// Scope is one link in the lookup chain: an ordered list of symbols
// (insertion order matters for parameter offset assignment) plus a
// pointer to the enclosing scope.
type Scope struct {
	symbols []*Symbol
	Parent  *Scope
}

// New returns a fresh, empty scope enclosed by parent. parent may be
// nil for the outermost scope.
func New(parent *Scope) *Scope {
	return &Scope{Parent: parent}
}

// Find looks up name in this scope only, not its ancestors.
func (s *Scope) Find(name string) (*Symbol, bool) {
	for _, sym := range s.symbols {
		if sym.Name == name {
			return sym, true
		}
	}
	return nil, false
}

// Lookup walks up the scope chain starting at s, returning the first
// symbol named name.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if sym, ok := sc.Find(name); ok {
			return sym, true
		}
	}
	return nil, false
}

// Declare inserts sym into s, replacing (not merging with) any prior
// entry of the same name already in this exact scope. Declare itself
// always succeeds and returns whether a prior entry of the same name
// was displaced; the caller diagnoses the redeclaration from that flag.
func (s *Scope) Declare(sym *Symbol) (prior *Symbol, redeclared bool) {
	for i, existing := range s.symbols {
		if existing.Name == sym.Name {
			s.symbols[i] = sym
			return existing, true
		}
	}
	s.symbols = append(s.symbols, sym)
	return nil, false
}

// Symbols returns the scope's own symbols in declaration order. Used
// by the allocator to walk locals and by the generator to walk globals.
func (s *Scope) Symbols() []*Symbol {
	return s.symbols
}
