package grammar_test

import (
	"testing"

	"github.com/kymerac/lalrgen/diag"
	"github.com/kymerac/lalrgen/frontend"
)

func TestFinalize_UndefinedSymbol(t *testing.T) {
	src := `
g {
a : b ;
}
`
	col := &diag.Collector{}
	bld := frontend.Parse(src, col)
	gram, errCount := bld.Finalize()
	if errCount == 0 {
		t.Fatal("expected an error, got none")
	}
	if gram != nil {
		t.Fatal("Finalize must return a nil Grammar on a fatal error")
	}

	found := false
	for _, e := range col.Errors() {
		if e.Kind == diag.KindUndefinedSymbol {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a %v error, got: %v", diag.KindUndefinedSymbol, col.Errors())
	}
}
