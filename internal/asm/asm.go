// Package asm is a small textual-IR builder for the AT&T-syntax output
// of the code generator. It is adapted from the teacher repo's unused
// `ir` package (github.com/confucianzuoyuan/zcc's QBE-flavored
// instruction IR, never wired into that repo's own main.go): the same
// shape — typed Line values with a String() producing one line of
// output, grouped into a Function, grouped into a Module with a
// trailing data section — rewritten so every mnemonic and operand is
// GAS AT&T x86, not QBE IL.
package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// Line is one line of emitted assembly text.
type Line interface {
	String() string
}

// Instr is a single mnemonic plus its AT&T-order operand list, e.g.
// {"movl", []string{"$4", "%eax"}} → "\tmovl $4, %eax".
type Instr struct {
	Mnemonic string
	Operands []string
}

// Emit constructs an Instr from a mnemonic and operands, for callers
// that want a Line value instead of a direct String.
func Emit(mnemonic string, operands ...string) Instr {
	return Instr{Mnemonic: mnemonic, Operands: operands}
}

func (i Instr) String() string {
	if len(i.Operands) == 0 {
		return "\t" + i.Mnemonic
	}
	return "\t" + i.Mnemonic + " " + strings.Join(i.Operands, ", ")
}

// LabelLine emits a bare "name:" line, used for jump targets.
type LabelLine string

func (l LabelLine) String() string { return string(l) + ":" }

// Directive emits a raw ".directive args" line verbatim, for the
// handful of GAS directives (.global, .set) that don't fit the
// mnemonic/operands shape of Instr.
type Directive string

func (d Directive) String() string { return "\t" + string(d) }

// Function is one assembled function body: its prologue, statements
// and epilogue as a flat line list, framed by name/name.size.
type Function struct {
	Name  string
	Lines []Line

	// MaxDepth is the deepest (most negative) stack offset reached
	// while generating this function's body; it becomes the operand of
	// the deferred `.set name.size` directive (spec §4.E).
	MaxDepth int32
}

// Emit appends a line to the function body.
func (f *Function) Emit(l Line) {
	f.Lines = append(f.Lines, l)
}

func (f *Function) String() string {
	var sb strings.Builder
	sb.WriteString(f.Name + ":\n")
	for _, l := range f.Lines {
		sb.WriteString(l.String())
		sb.WriteString("\n")
	}
	sb.WriteString("\t.global " + f.Name + "\n")
	sb.WriteString(fmt.Sprintf("\t.set %s.size, %d\n", f.Name, -f.MaxDepth))
	return sb.String()
}

// GlobalVar is one `.comm` entry for an uninitialized global.
type GlobalVar struct {
	Name  string
	Size  int
	Align int
}

func (g GlobalVar) String() string {
	return fmt.Sprintf("\t.comm %s, %d, %d", g.Name, g.Size, g.Align)
}

// FloatLiteral is one `.fpN: .double <value>` entry.
type FloatLiteral struct {
	Label string
	Value float64
}

func (f FloatLiteral) String() string {
	return fmt.Sprintf("%s:\n\t.double %s", f.Label, strconv.FormatFloat(f.Value, 'g', -1, 64))
}

// StringLiteral is one `.LN: .asciz "<value>"` entry.
type StringLiteral struct {
	Label string
	Value string
}

func (s StringLiteral) String() string {
	return fmt.Sprintf("%s:\n\t.asciz %s", s.Label, s.Value)
}

// DataItem is any entry placed in the trailing `.data` section.
type DataItem interface {
	String() string
}

// Module is the whole compiled program: every function in definition
// order, then a single `.data` section, emitted only when non-empty
// (spec §4.E "Globals/data section").
type Module struct {
	Functions []*Function
	Data      []DataItem
}

func (m *Module) String() string {
	var sb strings.Builder
	for _, f := range m.Functions {
		sb.WriteString(f.String())
	}
	if len(m.Data) > 0 {
		sb.WriteString("\t.data\n")
		for _, d := range m.Data {
			sb.WriteString(d.String())
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
