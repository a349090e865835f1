// Command simple-c-compiler reads a Simple C translation unit from
// stdin and writes 32-bit x86 AT&T assembly to stdout (spec §1, §6).
// It takes no flags: the entire configuration surface is "read stdin,
// write stdout".
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/devin-wakefield/simple-c-compiler/internal/checker"
	"github.com/devin-wakefield/simple-c-compiler/internal/codegen"
	"github.com/devin-wakefield/simple-c-compiler/internal/diag"
	"github.com/devin-wakefield/simple-c-compiler/internal/lexer"
	"github.com/devin-wakefield/simple-c-compiler/internal/literals"
	"github.com/devin-wakefield/simple-c-compiler/internal/parser"
)

func main() {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	reporter := diag.New(os.Stderr)
	lit := literals.NewPool()
	chk := checker.New(reporter, lit)
	lex := lexer.New(string(src), reporter)
	gen := codegen.NewGenerator()
	p := parser.New(lex, reporter, chk, gen)

	mod := p.ParseProgram()
	os.Stdout.WriteString(mod.String())
}
