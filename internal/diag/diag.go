// Package diag implements the error reporter contract consumed by the
// rest of the compiler: a format string plus at most one argument,
// written to a diagnostic stream, incrementing a process-wide count.
package diag

import (
	"fmt"
	"io"
	"os"
)

// Reporter is the compiler's single diagnostic sink. The lexer, parser
// and checker report through it; the parser consults OK to decide
// whether to emit code for a function or the trailing data section.
type Reporter struct {
	w     io.Writer
	count int
}

// New returns a Reporter that writes to w. Passing nil defaults to
// os.Stderr.
func New(w io.Writer) *Reporter {
	if w == nil {
		w = os.Stderr
	}
	return &Reporter{w: w}
}

// Errorf reports a semantic error: format with at most one %s,
// increments Count, continues compilation.
func (r *Reporter) Errorf(format string, args ...any) {
	r.count++
	fmt.Fprintf(r.w, format, args...)
	fmt.Fprintln(r.w)
}

// SyntaxErrorf reports a syntax error and aborts the process with a
// nonzero status, per spec: syntax errors are fatal, semantic errors
// are not.
func (r *Reporter) SyntaxErrorf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
	fmt.Fprintln(r.w)
	os.Exit(1)
}

// Count returns the number of semantic errors reported so far.
func (r *Reporter) Count() int {
	return r.count
}

// OK reports whether no semantic error has been seen yet.
func (r *Reporter) OK() bool {
	return r.count == 0
}
