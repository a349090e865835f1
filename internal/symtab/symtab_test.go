package symtab

import (
	"testing"

	"github.com/devin-wakefield/simple-c-compiler/internal/types"
	"github.com/nalgeon/be"
)

func TestDeclareAndFind(t *testing.T) {
	s := New(nil)
	sym := &Symbol{Name: "x", Type: types.Int}
	_, redeclared := s.Declare(sym)
	be.True(t, !redeclared)

	found, ok := s.Find("x")
	be.True(t, ok)
	be.Equal(t, sym, found)

	_, ok = s.Find("y")
	be.True(t, !ok)
}

func TestDeclareReplacesPriorEntry(t *testing.T) {
	s := New(nil)
	first := &Symbol{Name: "x", Type: types.Int}
	second := &Symbol{Name: "x", Type: types.Double}

	s.Declare(first)
	prior, redeclared := s.Declare(second)

	be.True(t, redeclared)
	be.Equal(t, first, prior)
	found, _ := s.Find("x")
	be.Equal(t, second, found)
}

func TestLookupWalksParentChain(t *testing.T) {
	outer := New(nil)
	outer.Declare(&Symbol{Name: "g", Type: types.Int})

	inner := New(outer)
	inner.Declare(&Symbol{Name: "x", Type: types.Double})

	_, ok := inner.Find("g")
	be.True(t, !ok) // Find does not walk ancestors

	sym, ok := inner.Lookup("g")
	be.True(t, ok)
	be.Equal(t, types.Int, sym.Type)

	_, ok = inner.Lookup("missing")
	be.True(t, !ok)
}

func TestLookupPrefersInnermostScope(t *testing.T) {
	outer := New(nil)
	outer.Declare(&Symbol{Name: "x", Type: types.Int})

	inner := New(outer)
	inner.Declare(&Symbol{Name: "x", Type: types.Double})

	sym, _ := inner.Lookup("x")
	be.Equal(t, types.Double, sym.Type)
}

func TestSymbolsPreservesDeclarationOrder(t *testing.T) {
	s := New(nil)
	s.Declare(&Symbol{Name: "a", Type: types.Int})
	s.Declare(&Symbol{Name: "b", Type: types.Double})
	s.Declare(&Symbol{Name: "c", Type: types.Int})

	names := []string{}
	for _, sym := range s.Symbols() {
		names = append(names, sym.Name)
	}
	be.Equal(t, []string{"a", "b", "c"}, names)
}
