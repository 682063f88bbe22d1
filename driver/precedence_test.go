package driver

import (
	"strings"
	"testing"

	"github.com/kymerac/lalrgen/diag"
	"github.com/kymerac/lalrgen/frontend"
	"github.com/kymerac/lalrgen/grammar"
	"github.com/kymerac/lalrgen/lexical"
)

// Left-associative arithmetic under %left precedence: "1+2*3" must parse as
// 1+(2*3), never (1+2)*3, and every shift/reduce collision the table
// compiler hits must resolve through precedence rather than falling back to
// the default rule.
func TestParser_PrecedenceResolvesArithmetic(t *testing.T) {
	specSrc := `
g {
%left '+' '-' ;
%left '*' '/' ;
expr : expr '+' expr | expr '-' expr | expr '*' expr | expr '/' expr | integer ;
integer : "[0-9]+" ;
}
`
	col := &diag.Collector{}
	b := frontend.Parse(specSrc, col)
	gram, errCount := b.Finalize()
	if errCount > 0 {
		t.Fatal(col.Errors())
	}

	compiled, _, nWarn, err := grammar.Compile(gram, col)
	if err != nil {
		t.Fatal(err)
	}
	if nWarn != 0 {
		t.Fatalf("expected every conflict to resolve by precedence, got %v warning(s): %v", nWarn, col.Errors())
	}

	p, err := NewParser(compiled, strings.NewReader(`1+2*3`), MakeCST())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	if len(p.SyntaxErrors()) > 0 {
		t.Fatalf("unexpected syntax errors: %v", p.SyntaxErrors())
	}

	plus := lexical.LiteralSymbolName("+")
	star := lexical.LiteralSymbolName("*")
	intLit := lexical.RegexSymbolName("[0-9]+")

	digit := func(text string) *Node {
		return nonTermNode("integer", termNode(intLit, text))
	}

	want := nonTermNode("expr",
		nonTermNode("expr", digit("1")),
		termNode(plus, "+"),
		nonTermNode("expr",
			nonTermNode("expr", digit("2")),
			termNode(star, "*"),
			nonTermNode("expr", digit("3")),
		),
	)
	testTree(t, p.CST(), want)
}
