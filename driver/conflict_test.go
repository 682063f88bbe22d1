package driver

import (
	"io"
	"strings"
	"testing"

	"github.com/kymerac/lalrgen/diag"
	"github.com/kymerac/lalrgen/frontend"
	"github.com/kymerac/lalrgen/grammar"
	"github.com/kymerac/lalrgen/lexical"
)

func TestParserWithConflicts(t *testing.T) {
	tests := []struct {
		caption string
		specSrc string
		src     string
		cst     *Node
	}{
		{
			caption: "a shift/reduce conflict is resolved in favor of the shift",
			specSrc: `
g {
expr : expr assign expr | id ;
id : "[A-Za-z0-9_]+" ;
assign : '=' ;
%whitespace "[ \t]+" ;
}
`,
			src: `foo=bar`,
			cst: nonTermNode("expr",
				nonTermNode("expr",
					nonTermNode("id",
						termNode(lexical.RegexSymbolName("[A-Za-z0-9_]+"), "foo"),
					),
				),
				nonTermNode("assign",
					termNode(lexical.LiteralSymbolName("="), "="),
				),
				nonTermNode("expr",
					nonTermNode("id",
						termNode(lexical.RegexSymbolName("[A-Za-z0-9_]+"), "bar"),
					),
				),
			),
		},
		{
			caption: "a reduce/reduce conflict is resolved in favor of the earlier production",
			specSrc: `
g {
s : a | b ;
a : id ;
b : id ;
id : "[A-Za-z0-9_]+" ;
%whitespace "[ \t]+" ;
}
`,
			src: `foo`,
			cst: nonTermNode("s",
				nonTermNode("a",
					nonTermNode("id",
						termNode(lexical.RegexSymbolName("[A-Za-z0-9_]+"), "foo"),
					),
				),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			col := &diag.Collector{}
			b := frontend.Parse(tt.specSrc, col)
			gram, errCount := b.Finalize()
			if errCount > 0 {
				t.Fatal(col.Errors())
			}

			compiled, _, _, err := grammar.Compile(gram, col)
			if err != nil {
				t.Fatal(err)
			}

			p, err := NewParser(compiled, strings.NewReader(tt.src), MakeCST())
			if err != nil {
				t.Fatal(err)
			}
			if err := p.Parse(); err != nil {
				t.Fatal(err)
			}
			if len(p.SyntaxErrors()) > 0 {
				t.Fatalf("unexpected syntax errors: %v", p.SyntaxErrors())
			}

			PrintTree(io.Discard, p.CST())
			testTree(t, p.CST(), tt.cst)
		})
	}
}
