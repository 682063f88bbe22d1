package grammar

import "github.com/kymerac/lalrgen/grammar/symbol"

// assoc is a declared operator associativity.
type assoc string

const (
	assocNone  = assoc("")
	assocLeft  = assoc("left")
	assocRight = assoc("right")
)

const (
	precNil = 0
	precMin = 1
)

// precedenceTable is the side table the table compiler (component E)
// consults to resolve shift/reduce and reduce/reduce conflicts. It is kept
// separate from symbol.Symbol and production values on purpose: precedence
// is a property of how a grammar author ordered %left/%right/%none
// declarations, not an intrinsic property of a symbol's identity, so it
// does not belong packed into the symbol bits or hung off *production.
type precedenceTable struct {
	termPrec  map[symbol.SymbolNum]int
	termAssoc map[symbol.SymbolNum]assoc

	// prodPrec/prodAssoc are inherited from the rightmost terminal of a
	// production's body, unless an explicit %precedence override symbol
	// was given.
	prodPrec  map[productionNum]int
	prodAssoc map[productionNum]assoc
}

func newPrecedenceTable() *precedenceTable {
	return &precedenceTable{
		termPrec:  map[symbol.SymbolNum]int{},
		termAssoc: map[symbol.SymbolNum]assoc{},
		prodPrec:  map[productionNum]int{},
		prodAssoc: map[productionNum]assoc{},
	}
}

func (t *precedenceTable) declareTerminal(sym symbol.Symbol, prec int, a assoc) {
	t.termPrec[sym.Num()] = prec
	t.termAssoc[sym.Num()] = a
}

func (t *precedenceTable) terminalPrecedence(sym symbol.SymbolNum) int {
	return t.termPrec[sym]
}

func (t *precedenceTable) terminalAssociativity(sym symbol.SymbolNum) assoc {
	return t.termAssoc[sym]
}

func (t *precedenceTable) productionPrecedence(prod productionNum) int {
	return t.prodPrec[prod]
}

func (t *precedenceTable) productionAssociativity(prod productionNum) assoc {
	return t.prodAssoc[prod]
}

// deriveProductionPrecedence fills in prodPrec/prodAssoc for every
// production: an explicit precSym wins, otherwise the production inherits
// the precedence of the rightmost terminal in its body, and a production
// with neither gets no precedence at all (resolved by the shift-wins /
// lowest-production-number defaults in the table compiler).
func (t *precedenceTable) deriveProductionPrecedence(prods *productionSet) {
	for _, prod := range prods.all() {
		switch {
		case !prod.precSym.IsNil():
			t.prodPrec[prod.num] = t.termPrec[prod.precSym.Num()]
			t.prodAssoc[prod.num] = t.termAssoc[prod.precSym.Num()]
		default:
			if rightmost, ok := prod.rightmostTerminal(); ok {
				t.prodPrec[prod.num] = t.termPrec[rightmost.Num()]
				t.prodAssoc[prod.num] = t.termAssoc[rightmost.Num()]
			}
		}
	}
}
