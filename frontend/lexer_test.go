package frontend

import (
	"testing"

	"github.com/kymerac/lalrgen/diag"
)

func TestLexer_UnterminatedLiteral(t *testing.T) {
	col := &diag.Collector{}
	Parse(`G { a : 'x ; }`, col)

	if !col.HasErrors() {
		t.Fatal("expected an error, got none")
	}

	found := false
	for _, e := range col.Errors() {
		if e.Kind == diag.KindUnterminatedLiteral {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a %v error, got: %v", diag.KindUnterminatedLiteral, col.Errors())
	}
}
