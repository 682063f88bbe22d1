package driver

import (
	"fmt"
	"strings"
	"testing"

	"github.com/kymerac/lalrgen/diag"
	"github.com/kymerac/lalrgen/frontend"
	"github.com/kymerac/lalrgen/grammar"
)

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		specSrc string
		src     string
	}{
		{
			specSrc: `
expr {
expr : expr '+' term | term ;
term : term '*' factor | factor ;
factor : '(' expr ')' | id ;
id : "[A-Za-z_][0-9A-Za-z_]*" ;
%whitespace "[ \t]+" ;
}
`,
			src: `(a+(b+c))*d+e`,
		},
		{
			specSrc: `
list {
list : '[' elems ']' [list] ;
elems : elems ',' id [elems] | id ;
id : "[A-Za-z]+" ;
%whitespace "[ \t]+" ;
}
`,
			src: `[a, b, c]`,
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v", i), func(t *testing.T) {
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

			p, err := NewParser(compiled, strings.NewReader(tt.src), MakeAST(), MakeCST())
			if err != nil {
				t.Fatal(err)
			}
			if err := p.Parse(); err != nil {
				t.Fatal(err)
			}
			if len(p.SyntaxErrors()) > 0 {
				t.Fatalf("unexpected syntax errors: %v", p.SyntaxErrors())
			}

			var buf strings.Builder
			PrintTree(&buf, p.CST())
			PrintTree(&buf, p.AST())
		})
	}
}
