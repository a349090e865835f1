package codegen

import (
	"fmt"

	"github.com/devin-wakefield/simple-c-compiler/internal/asm"
	"github.com/devin-wakefield/simple-c-compiler/internal/ast"
	"github.com/devin-wakefield/simple-c-compiler/internal/literals"
	"github.com/devin-wakefield/simple-c-compiler/internal/symtab"
)

// Generator walks a checked, allocated function and emits its AT&T
// body into an *asm.Function (spec §4.E). One Generator is shared
// across an entire translation unit so that label numbers stay unique
// program-wide even though each function is generated as soon as it
// is parsed.
type Generator struct {
	labelN int

	fn          *asm.Function
	returnLabel string

	// tempOffset is the offset the next temporary is assigned at; it is
	// reset to the enclosing block's post-declarations offset before
	// every statement, since a statement's temporaries never outlive it.
	tempOffset int32
}

// NewGenerator returns a Generator ready to emit the first function of
// a translation unit.
func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) newLabel(prefix string) string {
	n := g.labelN
	g.labelN++
	return fmt.Sprintf(".L%s_%d", prefix, n)
}

func (g *Generator) emit(mnemonic string, operands ...string) {
	g.fn.Emit(asm.Emit(mnemonic, operands...))
}

func (g *Generator) label(name string) {
	g.fn.Emit(asm.LabelLine(name))
}

func (g *Generator) recordDepth(offset int32) {
	if offset < g.fn.MaxDepth {
		g.fn.MaxDepth = offset
	}
}

// assignTemp carves out a new stack slot for e's result, sized from
// e.Type, and records it as e.Operand.
func (g *Generator) assignTemp(e *ast.Expr) string {
	g.tempOffset -= int32(e.Type.Size())
	g.recordDepth(g.tempOffset)
	e.Operand = fmt.Sprintf("%d(%%ebp)", g.tempOffset)
	return e.Operand
}

// GenerateFunction emits fn's prologue, body and epilogue into a fresh
// *asm.Function, sharing this Generator's label counter with whatever
// functions were generated before it.
func (g *Generator) GenerateFunction(fn *ast.Function) *asm.Function {
	g.fn = &asm.Function{Name: fn.Name}
	g.returnLabel = g.newLabel("ret")
	g.tempOffset = fn.Body.StartOffset
	g.recordDepth(fn.Body.StartOffset)

	g.emit("pushl", "%ebp")
	g.emit("movl", "%esp", "%ebp")
	g.emit("subl", fmt.Sprintf("$%s.size", fn.Name), "%esp")

	g.generateStmt(fn.Body, fn.Body.StartOffset)

	g.label(g.returnLabel)
	g.emit("movl", "%ebp", "%esp")
	g.emit("popl", "%ebp")
	g.emit("ret")

	return g.fn
}

// GenerateGlobals builds the trailing data section: one `.comm` per
// global variable declared (but never defined as a function) in
// outermost, followed by the interned float and string literal tables
// (spec §4.E "Globals/data section").
func GenerateGlobals(outermost *symtab.Scope, lit *literals.Pool) []asm.DataItem {
	var data []asm.DataItem
	for _, sym := range outermost.Symbols() {
		if sym.Type.IsFunction() || sym.Type.IsError() {
			continue
		}
		data = append(data, asm.GlobalVar{Name: sym.Name, Size: sym.Type.Size(), Align: 4})
	}
	for _, f := range lit.Floats() {
		data = append(data, asm.FloatLiteral{Label: f.Label, Value: f.Value})
	}
	for _, s := range lit.Strings() {
		data = append(data, asm.StringLiteral{Label: s.Label, Value: s.Value})
	}
	return data
}

// --- statements ------------------------------------------------------------

func (g *Generator) generateStmt(s *ast.Stmt, resetOffset int32) {
	switch s.Kind {
	case ast.ExprStmt:
		g.tempOffset = resetOffset
		g.generate(s.Expr)

	case ast.ReturnStmt:
		g.tempOffset = resetOffset
		if s.Expr != nil {
			v := g.generate(s.Expr)
			if s.Expr.Type.IsReal() {
				g.emit("fldl", v)
			} else {
				g.emit("movl", v, "%eax")
			}
		}
		g.emit("jmp", g.returnLabel)

	case ast.BlockStmt:
		g.recordDepth(s.StartOffset)
		for _, inner := range s.Body {
			g.generateStmt(inner, s.StartOffset)
		}

	case ast.WhileStmt:
		loopLabel := g.newLabel("loop")
		endLabel := g.newLabel("end")
		g.label(loopLabel)
		g.tempOffset = resetOffset
		cond := g.generate(s.Cond)
		g.emit("movl", cond, "%eax")
		g.emit("testl", "%eax", "%eax")
		g.emit("je", endLabel)
		g.generateStmt(s.While, resetOffset)
		g.emit("jmp", loopLabel)
		g.label(endLabel)

	case ast.IfStmt:
		g.tempOffset = resetOffset
		cond := g.generate(s.Cond)
		g.emit("movl", cond, "%eax")
		g.emit("testl", "%eax", "%eax")
		skipLabel := g.newLabel("skip")
		g.emit("je", skipLabel)
		g.generateStmt(s.Then, resetOffset)
		if s.Else != nil {
			joinLabel := g.newLabel("join")
			g.emit("jmp", joinLabel)
			g.label(skipLabel)
			g.generateStmt(s.Else, resetOffset)
			g.label(joinLabel)
		} else {
			g.label(skipLabel)
		}
	}
}

// --- expressions -------------------------------------------------------------

// generate evaluates e and returns the operand holding its value,
// loading through a pointer for Dereference.
func (g *Generator) generate(e *ast.Expr) string {
	op, _ := g.generateMaybeIndirect(e, false)
	return op
}

// generateIndirect is the form Assign's left-hand side uses: for a
// Dereference it reports the pointer's own operand and indirect=true
// without loading, so the caller can store through it instead.
func (g *Generator) generateIndirect(e *ast.Expr) (operand string, indirect bool) {
	return g.generateMaybeIndirect(e, true)
}

func (g *Generator) generateMaybeIndirect(e *ast.Expr, wantIndirect bool) (string, bool) {
	if wantIndirect && e.Kind == ast.Dereference {
		ptr := g.generate(e.X)
		e.Operand = ptr
		return ptr, true
	}
	return g.generatePlain(e), false
}

func (g *Generator) generatePlain(e *ast.Expr) string {
	switch e.Kind {
	case ast.String:
		e.Operand = e.StringLabel
		return e.Operand

	case ast.Integer:
		e.Operand = fmt.Sprintf("$%d", e.IntValue)
		return e.Operand

	case ast.Real:
		e.Operand = e.FloatLabel
		return e.Operand

	case ast.Identifier:
		if e.Symbol.Offset != 0 {
			e.Operand = fmt.Sprintf("%d(%%ebp)", e.Symbol.Offset)
		} else {
			e.Operand = e.Symbol.Name
		}
		return e.Operand

	case ast.Call:
		return g.generateCall(e)
	case ast.Not:
		return g.generateNot(e)
	case ast.Negate:
		return g.generateNegate(e)
	case ast.Dereference:
		return g.generateDereferenceLoad(e)
	case ast.Address:
		return g.generateAddress(e)
	case ast.Cast:
		return g.generateCast(e)
	case ast.Multiply, ast.Divide, ast.Remainder, ast.Add, ast.Subtract:
		return g.generateArith(e)
	case ast.LessThan, ast.GreaterThan, ast.LessOrEqual, ast.GreaterOrEqual, ast.Equal, ast.NotEqual:
		return g.generateComparison(e)
	case ast.LogicalAnd:
		return g.generateLogical(e, "je")
	case ast.LogicalOr:
		return g.generateLogical(e, "jne")
	case ast.Assign:
		return g.generateAssign(e)
	}
	panic("codegen: unhandled expression kind")
}

func (g *Generator) generateCall(e *ast.Expr) string {
	var pushed int
	for i := len(e.Args) - 1; i >= 0; i-- {
		arg := e.Args[i]
		op := g.generate(arg)
		if arg.Type.IsReal() {
			g.emit("subl", "$8", "%esp")
			g.emit("fldl", op)
			g.emit("fstpl", "(%esp)")
			pushed += 8
		} else {
			g.emit("pushl", op)
			pushed += 4
		}
	}
	g.emit("call", e.Symbol.Name)
	if pushed > 0 {
		g.emit("addl", fmt.Sprintf("$%d", pushed), "%esp")
	}
	g.assignTemp(e)
	if e.Type.IsReal() {
		g.emit("fstpl", e.Operand)
	} else {
		g.emit("movl", "%eax", e.Operand)
	}
	return e.Operand
}

func (g *Generator) generateNot(e *ast.Expr) string {
	x := g.generate(e.X)
	g.assignTemp(e)
	if e.X.Type.IsReal() {
		g.emit("fldl", x)
		g.emit("ftst")
		g.emit("fnstsw", "%ax")
		g.emit("sahf")
	} else {
		g.emit("movl", x, "%eax")
		g.emit("testl", "%eax", "%eax")
	}
	g.emit("sete", "%al")
	g.emit("movzbl", "%al", "%eax")
	g.emit("movl", "%eax", e.Operand)
	return e.Operand
}

func (g *Generator) generateNegate(e *ast.Expr) string {
	x := g.generate(e.X)
	g.assignTemp(e)
	if e.Type.IsReal() {
		g.emit("fldl", x)
		g.emit("fchs")
		g.emit("fstpl", e.Operand)
	} else {
		g.emit("movl", x, "%eax")
		g.emit("negl", "%eax")
		g.emit("movl", "%eax", e.Operand)
	}
	return e.Operand
}

// generateDereferenceLoad is the plain (non-indirect) form of `*e`: it
// loads the pointer then loads through it.
func (g *Generator) generateDereferenceLoad(e *ast.Expr) string {
	ptr := g.generate(e.X)
	g.assignTemp(e)
	g.emit("movl", ptr, "%eax")
	if e.Type.IsReal() {
		g.emit("fldl", "(%eax)")
		g.emit("fstpl", e.Operand)
	} else {
		g.emit("movl", "(%eax)", "%eax")
		g.emit("movl", "%eax", e.Operand)
	}
	return e.Operand
}

// generateAddress implements `&e`: a plain lvalue's address is
// computed with leal; the address of a dereferenced pointer is just
// that pointer's own value, already sitting in a location.
func (g *Generator) generateAddress(e *ast.Expr) string {
	op, indirect := g.generateIndirect(e.X)
	g.assignTemp(e)
	if indirect {
		g.emit("movl", op, "%eax")
	} else {
		g.emit("leal", op, "%eax")
	}
	g.emit("movl", "%eax", e.Operand)
	return e.Operand
}

func (g *Generator) generateCast(e *ast.Expr) string {
	x := g.generate(e.X)
	g.assignTemp(e)
	switch {
	case e.Type.IsReal() && !e.X.Type.IsReal():
		g.emit("fildl", x)
		g.emit("fstpl", e.Operand)
	case !e.Type.IsReal() && e.X.Type.IsReal():
		g.emit("fldl", x)
		g.emit("fistpl", e.Operand)
	default:
		g.emit("movl", x, "%eax")
		g.emit("movl", "%eax", e.Operand)
	}
	return e.Operand
}

var realArithMnemonic = map[ast.ExprKind]string{
	ast.Add: "faddl", ast.Subtract: "fsubl", ast.Multiply: "fmull", ast.Divide: "fdivl",
}

func (g *Generator) generateArith(e *ast.Expr) string {
	l := g.generate(e.Left)
	r := g.generate(e.Right)
	g.assignTemp(e)
	if e.Type.IsReal() {
		g.emit("fldl", l)
		g.emit(realArithMnemonic[e.Kind], r)
		g.emit("fstpl", e.Operand)
		return e.Operand
	}
	g.emit("movl", l, "%eax")
	g.emit("movl", r, "%ecx")
	switch e.Kind {
	case ast.Add:
		g.emit("addl", "%ecx", "%eax")
	case ast.Subtract:
		g.emit("subl", "%ecx", "%eax")
	case ast.Multiply:
		g.emit("imull", "%ecx", "%eax")
	case ast.Divide:
		g.emit("cltd")
		g.emit("idivl", "%ecx")
	case ast.Remainder:
		g.emit("cltd")
		g.emit("idivl", "%ecx")
		g.emit("movl", "%edx", "%eax")
	}
	g.emit("movl", "%eax", e.Operand)
	return e.Operand
}

// intSetMnemonic and realSetMnemonic are kept separate tables: integer
// relationals use the signed condition codes, double relationals the
// unsigned ones, since sahf maps the x87 comparison into flags that
// only the unsigned codes read correctly. GreaterOrEqual uses the
// correct setge here, not the documented setle lookalike bug.
var intSetMnemonic = map[ast.ExprKind]string{
	ast.LessThan: "setl", ast.GreaterThan: "setg",
	ast.LessOrEqual: "setle", ast.GreaterOrEqual: "setge",
	ast.Equal: "sete", ast.NotEqual: "setne",
}

var realSetMnemonic = map[ast.ExprKind]string{
	ast.LessThan: "setb", ast.GreaterThan: "seta",
	ast.LessOrEqual: "setbe", ast.GreaterOrEqual: "setae",
	ast.Equal: "sete", ast.NotEqual: "setne",
}

func (g *Generator) generateComparison(e *ast.Expr) string {
	l := g.generate(e.Left)
	r := g.generate(e.Right)
	g.assignTemp(e)
	if e.Left.Type.IsReal() {
		g.emit("fldl", l)
		g.emit("fcompl", r)
		g.emit("fnstsw", "%ax")
		g.emit("sahf")
		g.emit(realSetMnemonic[e.Kind], "%al")
	} else {
		g.emit("movl", l, "%eax")
		g.emit("cmpl", r, "%eax")
		g.emit(intSetMnemonic[e.Kind], "%al")
	}
	g.emit("movzbl", "%al", "%eax")
	g.emit("movl", "%eax", e.Operand)
	return e.Operand
}

// generateLogical implements short-circuit &&/||: both paths converge
// on a single join label, each arriving with the flags of its own
// testl, so one setne materializes the result whichever way control
// arrived.
func (g *Generator) generateLogical(e *ast.Expr, shortCircuitOn string) string {
	l := g.generate(e.Left)
	g.emit("movl", l, "%eax")
	g.emit("testl", "%eax", "%eax")
	join := g.newLabel("join")
	g.emit(shortCircuitOn, join)
	r := g.generate(e.Right)
	g.emit("movl", r, "%eax")
	g.emit("testl", "%eax", "%eax")
	g.label(join)
	g.emit("setne", "%al")
	g.emit("movzbl", "%al", "%eax")
	g.assignTemp(e)
	g.emit("movl", "%eax", e.Operand)
	return e.Operand
}

// generateAssign implements the four cases of `=`: {real,non-real} x
// {indirect,non-indirect}, per spec §4.E.
func (g *Generator) generateAssign(e *ast.Expr) string {
	lhs, indirect := g.generateIndirect(e.Left)
	rhs := g.generate(e.Right)
	g.assignTemp(e)
	switch {
	case !e.Type.IsReal() && !indirect:
		g.emit("movl", rhs, "%eax")
		g.emit("movl", "%eax", lhs)
		g.emit("movl", "%eax", e.Operand)
	case !e.Type.IsReal() && indirect:
		g.emit("movl", rhs, "%eax")
		g.emit("movl", lhs, "%ecx")
		g.emit("movl", "%eax", "(%ecx)")
		g.emit("movl", "%eax", e.Operand)
	case e.Type.IsReal() && !indirect:
		g.emit("fldl", rhs)
		g.emit("fstl", lhs)
		g.emit("fstpl", e.Operand)
	default: // real, indirect
		g.emit("fldl", rhs)
		g.emit("movl", lhs, "%eax")
		g.emit("fstl", "(%eax)")
		g.emit("fstpl", e.Operand)
	}
	return e.Operand
}
