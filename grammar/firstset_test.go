package grammar

import (
	"testing"

	"github.com/kymerac/lalrgen/diag"
	"github.com/kymerac/lalrgen/lexical"
)

// An empty-deriving non-terminal must still propagate the FIRST set of
// whatever follows it: A: B C with B: 'b' | (empty) and C: 'c' means
// FIRST(A) has to include 'c' even though 'c' never begins B itself.
func TestGenFirstSet_EpsilonProduction(t *testing.T) {
	col := &diag.Collector{}
	bld := NewBuilder(col).Grammar("g").
		Production("a", 1).Identifier("b", 1).Identifier("c", 1).EndProduction().
		Production("b", 2).Literal("b", 2).EndExpression(2).EndProduction().
		Production("c", 3).Literal("c", 3).EndProduction()
	gram, errCount := bld.Finalize()
	if errCount > 0 {
		t.Fatal(col.Errors())
	}

	fst, err := genFirstSet(gram.productions)
	if err != nil {
		t.Fatal(err)
	}

	reader := gram.symTab.Reader()
	aSym, ok := reader.ToSymbol("a")
	if !ok {
		t.Fatal("symbol not found: a")
	}
	bTermSym, ok := reader.ToSymbol(lexical.LiteralSymbolName("b"))
	if !ok {
		t.Fatal("symbol not found: 'b'")
	}
	cTermSym, ok := reader.ToSymbol(lexical.LiteralSymbolName("c"))
	if !ok {
		t.Fatal("symbol not found: 'c'")
	}

	entry := fst.of(aSym)
	if entry == nil {
		t.Fatal("no FIRST entry for a")
	}
	if entry.empty {
		t.Error("FIRST(a) must not include empty; c never derives it")
	}
	if _, ok := entry.symbols[bTermSym]; !ok {
		t.Error("FIRST(a) is missing 'b'")
	}
	if _, ok := entry.symbols[cTermSym]; !ok {
		t.Error("FIRST(a) is missing 'c'")
	}
	if len(entry.symbols) != 2 {
		t.Errorf("FIRST(a) has unexpected extra members: %v", entry.symbols)
	}
}
