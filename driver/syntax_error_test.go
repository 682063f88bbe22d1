package driver

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/kymerac/lalrgen/diag"
	"github.com/kymerac/lalrgen/frontend"
	"github.com/kymerac/lalrgen/grammar"
	"github.com/kymerac/lalrgen/lexical"
)

func TestParserWithSyntaxErrors(t *testing.T) {
	tests := []struct {
		caption     string
		specSrc     string
		src         string
		synErrCount int
	}{
		{
			caption: "the parser can report a syntax error",
			specSrc: `
g {
s : foo ;
foo : 'foo' ;
}
`,
			src:         `bar`,
			synErrCount: 1,
		},
		{
			caption: "errors after a trapped error are not reported until the parser has left the error state",
			specSrc: `
g {
seq : seq elem ';' | elem ';' | error ';' ;
elem : a b c ;
a : 'a' ;
b : 'b' ;
c : 'c' ;
%whitespace "[ \t]+" ;
}
`,
			src:         `! ! !; a!; ab!;`,
			synErrCount: 1,
		},
		{
			caption: "after three shifts the parser recovers from the error state",
			specSrc: `
g {
seq : seq elem ';' | elem ';' | error '*' '*' ';' ;
elem : a b c ;
a : 'a' ;
b : 'b' ;
c : 'c' ;
}
`,
			src:         `!**; a!**; ab!**; abc!`,
			synErrCount: 4,
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

			p, err := NewParser(compiled, strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			if err := p.Parse(); err != nil {
				t.Fatal(err)
			}

			synErrs := p.SyntaxErrors()
			if len(synErrs) != tt.synErrCount {
				t.Fatalf("unexpected syntax error count; want: %v, got: %v", tt.synErrCount, len(synErrs))
			}
		})
	}
}

func TestParserWithSyntaxErrorAndExpectedLookahead(t *testing.T) {
	tests := []struct {
		caption  string
		specSrc  string
		src      string
		cause    string
		expected []string
	}{
		{
			caption: "the parser reports an expected lookahead symbol",
			specSrc: `
g {
s : foo ;
foo : 'foo' ;
}
`,
			src:      `bar`,
			cause:    `bar`,
			expected: []string{lexical.LiteralSymbolName("foo")},
		},
		{
			caption: "the parser reports expected lookahead symbols",
			specSrc: `
g {
s : foo | bar ;
foo : 'foo' ;
bar : 'bar' ;
}
`,
			src:      `baz`,
			cause:    `baz`,
			expected: []string{lexical.LiteralSymbolName("foo"), lexical.LiteralSymbolName("bar")},
		},
		{
			caption: "the parser may report the EOF as an expected lookahead symbol",
			specSrc: `
g {
s : foo ;
foo : 'foo' ;
}
`,
			src:      `foobar`,
			cause:    `bar`,
			expected: []string{"<eof>"},
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

			p, err := NewParser(compiled, strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			if err := p.Parse(); err != nil {
				t.Fatal(err)
			}

			synErrs := p.SyntaxErrors()
			if len(synErrs) != 1 {
				t.Fatalf("expected exactly one syntax error, got: %v", len(synErrs))
			}
			synErr := synErrs[0]
			if string(synErr.Token.Lexeme) != tt.cause {
				t.Fatalf("unexpected lexeme: want: %v, got: %v", tt.cause, string(synErr.Token.Lexeme))
			}
			if len(synErr.ExpectedTerminals) != len(tt.expected) {
				t.Fatalf("unexpected lookahead symbols: want: %v, got: %v", tt.expected, synErr.ExpectedTerminals)
			}
			sort.Strings(tt.expected)
			sort.Strings(synErr.ExpectedTerminals)
			for i, e := range tt.expected {
				if synErr.ExpectedTerminals[i] != e {
					t.Errorf("unexpected lookahead symbol: want: %v, got: %v", e, synErr.ExpectedTerminals[i])
				}
			}
		})
	}
}
