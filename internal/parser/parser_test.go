package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/devin-wakefield/simple-c-compiler/internal/checker"
	"github.com/devin-wakefield/simple-c-compiler/internal/codegen"
	"github.com/devin-wakefield/simple-c-compiler/internal/diag"
	"github.com/devin-wakefield/simple-c-compiler/internal/lexer"
	"github.com/devin-wakefield/simple-c-compiler/internal/literals"
	"github.com/nalgeon/be"
)

// compile runs the whole pipeline end to end and returns the rendered
// module text plus the number of semantic diagnostics reported. A
// syntax error would call os.Exit through diag.Reporter, so every
// fixture here must be syntactically valid Simple C.
func compile(src string) (string, int) {
	var diagBuf bytes.Buffer
	d := diag.New(&diagBuf)
	lit := literals.NewPool()
	chk := checker.New(d, lit)
	lex := lexer.New(src, d)
	gen := codegen.NewGenerator()
	p := New(lex, d, chk, gen)
	mod := p.ParseProgram()
	return mod.String(), d.Count()
}

// TestE1ReturnZero is spec scenario E1: the simplest possible
// function, whose body is just `movl $0, %eax; jmp .Lret_0` and whose
// frame needs no stack space at all.
func TestE1ReturnZero(t *testing.T) {
	out, errs := compile("int main(void) { return 0; }")
	be.Equal(t, 0, errs)
	be.True(t, strings.Contains(out, "movl $0, %eax"))
	be.True(t, strings.Contains(out, "jmp .Lret_0"))
	be.True(t, strings.Contains(out, ".set main.size, 0"))
}

// TestPlainIntArithmeticStaysInteger guards against a regression where
// int-to-double promotion ran unconditionally regardless of the
// arithmetic result type: `1 + 2` must stay on the 32-bit integer
// path end to end, never touching the x87/double machinery or the
// float-literal table.
func TestPlainIntArithmeticStaysInteger(t *testing.T) {
	out, errs := compile("int main(void) { return 1 + 2; }")
	be.Equal(t, 0, errs)
	be.True(t, strings.Contains(out, "movl $1, %eax"))
	be.True(t, strings.Contains(out, "movl $2, %ecx"))
	be.True(t, strings.Contains(out, "addl %ecx, %eax"))
	be.True(t, !strings.Contains(out, ".fp"))
	be.True(t, !strings.Contains(out, "fldl"))
}

// TestE2GlobalsAndParameterOffsets is spec scenario E2: globals land
// in .comm entries sized from their declared type, and parameters are
// assigned increasing positive %ebp offsets starting at 8.
func TestE2GlobalsAndParameterOffsets(t *testing.T) {
	out, errs := compile("int a; double b; int f(int x, double y) { return x; }")
	be.Equal(t, 0, errs)
	be.True(t, strings.Contains(out, "\t.comm a, 4, 4"))
	be.True(t, strings.Contains(out, "\t.comm b, 8, 4"))
	be.True(t, strings.Contains(out, "movl 8(%ebp), %eax"))
}

// TestE3ArrayIndexScalesAndStoresIndirectly is spec scenario E3: the
// index multiplies by the element size, and the assignment/return
// through the computed address go through the indirect store/load path.
func TestE3ArrayIndexScalesAndStoresIndirectly(t *testing.T) {
	out, errs := compile("int a[10]; int main(void) { a[3] = 7; return a[3]; }")
	be.Equal(t, 0, errs)
	be.True(t, strings.Contains(out, "\t.comm a, 40, 4"))
	be.True(t, strings.Contains(out, "imull %ecx, %eax")) // index * sizeof(int)
	be.True(t, strings.Contains(out, "movl %eax, (%ecx)")) // indirect store
	be.True(t, strings.Contains(out, "movl (%eax), %eax"))  // indirect load
}

// TestE4IntegerLiteralRewrittenToReal is spec scenario E4: an integer
// literal added to a double is rewritten in place to a Real node (no
// Cast wrapper), sharing the float-literal table with its sibling.
func TestE4IntegerLiteralRewrittenToReal(t *testing.T) {
	out, errs := compile("double f(void) { return 1 + 2.0; }")
	be.Equal(t, 0, errs)
	// 2.0 is parsed (and interned) first, as the right operand; the
	// integer literal 1 is only rewritten to a Real, interning its own
	// label, once CheckAdd promotes it.
	be.True(t, strings.Contains(out, ".fp0:\n\t.double 2"))
	be.True(t, strings.Contains(out, ".fp1:\n\t.double 1"))
	be.True(t, strings.Contains(out, "fldl .fp1"))
	be.True(t, strings.Contains(out, "faddl .fp0"))
	be.True(t, strings.Contains(out, "fstpl"))
}

// TestE5AddressOfAndIndirectAssign is spec scenario E5: `&x` computes
// a stack address with leal, and `*p = 5` loads p into %ecx before
// storing through it.
func TestE5AddressOfAndIndirectAssign(t *testing.T) {
	out, errs := compile("int main(void) { int *p; int x; p = &x; *p = 5; return *p; }")
	be.Equal(t, 0, errs)
	be.True(t, strings.Contains(out, "leal"))
	be.True(t, strings.Contains(out, "movl $5, %eax"))
	be.True(t, strings.Contains(out, "movl %eax, (%ecx)"))
}

// TestE6ComparisonAndBranchToSharedReturnLabel is spec scenario E6: a
// comparison lowers to cmpl/setl/movzbl, the test branches on testl,
// and both arms of the if/else jump to the same function-wide return
// label since nothing nests a second function in between.
func TestE6ComparisonAndBranchToSharedReturnLabel(t *testing.T) {
	out, errs := compile("int main(void) { if (1 < 2) return 1; else return 0; }")
	be.Equal(t, 0, errs)
	be.True(t, strings.Contains(out, "cmpl"))
	be.True(t, strings.Contains(out, "setl %al"))
	be.True(t, strings.Contains(out, "movzbl %al, %eax"))
	be.True(t, strings.Contains(out, "testl %eax, %eax"))
	be.Equal(t, 2, strings.Count(out, "jmp .Lret_0"))
}

// TestUnprototypedCallOnlyDecaysArguments exercises the unprototyped
// call path end to end: calling a function declared as `g()` (not
// `g(void)`) type-checks without arity or parameter-type validation,
// only decaying array arguments to pointers.
func TestUnprototypedCallOnlyDecaysArguments(t *testing.T) {
	out, errs := compile("int g(); int a[4]; int main(void) { return g(a, 1, 2); }")
	be.Equal(t, 0, errs)
	be.True(t, strings.Contains(out, "call g"))
}

// TestRedeclarationAndUndeclaredIdentifierAreDiagnosed confirms the
// parser's diagnostics flow end to end: a semantic error is counted
// but does not abort the parse (only a syntax error does that).
func TestRedeclarationAndUndeclaredIdentifierAreDiagnosed(t *testing.T) {
	_, errs := compile("int main(void) { int x; int x; return y; }")
	be.Equal(t, 2, errs) // redeclared x, undeclared y
}

// TestErrorSuppressesCodeGeneration confirms spec's cancellation rule:
// once any semantic error has been seen, no function body or data
// section is emitted at all.
func TestErrorSuppressesCodeGeneration(t *testing.T) {
	out, errs := compile("int main(void) { return y; }")
	be.True(t, errs > 0)
	be.Equal(t, "", out)
}
