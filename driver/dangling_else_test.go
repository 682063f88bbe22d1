package driver

import (
	"strings"
	"testing"

	"github.com/kymerac/lalrgen/diag"
	"github.com/kymerac/lalrgen/frontend"
	"github.com/kymerac/lalrgen/grammar"
)

// The classic dangling-else grammar has no precedence declaration at all,
// so the one shift/reduce conflict it produces on 'else' can only resolve
// through the table compiler's default rule (shift wins), which is also
// reported as an unresolved-conflict warning.
func TestParser_DanglingElseShiftsByDefault(t *testing.T) {
	specSrc := `
g {
stmt : 'if' expr stmt | 'if' expr stmt 'else' stmt | 'other' ;
expr : "[A-Za-z0-9_]+" ;
%whitespace "[ \t]+" ;
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
	if nWarn != 1 {
		t.Fatalf("expected exactly one unresolved conflict, got %v: %v", nWarn, col.Errors())
	}
	found := false
	for _, e := range col.Errors() {
		if e.Kind == diag.KindUnresolvedConflict {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a %v warning, got: %v", diag.KindUnresolvedConflict, col.Errors())
	}

	p, err := NewParser(compiled, strings.NewReader(`if a if b other else other`), MakeCST())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	if len(p.SyntaxErrors()) > 0 {
		t.Fatalf("unexpected syntax errors: %v", p.SyntaxErrors())
	}

	// else must bind to the nearest if: the outer if must come away with
	// no else clause of its own, only the inner one does.
	root := p.CST()
	if root.KindName != "stmt" {
		t.Fatalf("unexpected root kind: %v", root.KindName)
	}
	if len(root.Children) != 3 {
		t.Fatalf("outer if must not have an else clause, got %v children", len(root.Children))
	}
	inner := root.Children[2]
	if inner.KindName != "stmt" {
		t.Fatalf("unexpected inner kind: %v", inner.KindName)
	}
	if len(inner.Children) != 5 {
		t.Fatalf("inner if must have an else clause, got %v children", len(inner.Children))
	}
}
