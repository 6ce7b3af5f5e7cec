// debug_tokens dumps every token of a file, including malformed ones, with
// its raw type number.
package main

import (
	"fmt"
	"os"

	"github.com/tinyrange/c4/internal/diag"
	"github.com/tinyrange/c4/internal/lexer"
	"github.com/tinyrange/c4/internal/source"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: debug_tokens <file|->")
		os.Exit(2)
	}
	f, err := source.Read(os.Args[1], os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	errs := diag.NewReporter(os.Stderr)
	lx := lexer.New(f.Name, f.Data, errs)
	for {
		t := lx.Next()
		fmt.Printf("%d %-12s %q at %s %v\n", t.Type, t.Type, t.Lex, t.Pos, t.Errors)
		if t.Type == lexer.EOF {
			break
		}
	}
	os.Exit(errs.Summary())
}
