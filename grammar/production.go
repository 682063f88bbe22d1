package grammar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/kymerac/lalrgen/grammar/symbol"
)

// productionID content-addresses a production by its head and body, so
// two productions built from equal symbol sequences collapse to one
// regardless of where in the source they were declared.
type productionID [32]byte

func (id productionID) String() string {
	return hex.EncodeToString(id[:])
}

func genProductionID(lhs symbol.Symbol, rhs []symbol.Symbol) productionID {
	seq := lhs.Byte()
	for _, sym := range rhs {
		seq = append(seq, sym.Byte()...)
	}
	return productionID(sha256.Sum256(seq))
}

type productionNum uint16

const (
	productionNumNil   = productionNum(0)
	productionNumStart = productionNum(1)
	productionNumMin   = productionNum(2)
)

func (n productionNum) Int() int {
	return int(n)
}

// production is one grammar alternative: a head symbol and its body. The
// action tag and precedence-override symbol recorded here are opaque to
// item-set construction (components C/D) and are only consulted by the
// table compiler (component E) and by the emitted artifact.
type production struct {
	id         productionID
	num        productionNum
	lhs        symbol.Symbol
	rhs        []symbol.Symbol
	actionTag  string
	precSym    symbol.Symbol // explicit %precedence override, or SymbolNil
}

func newProduction(lhs symbol.Symbol, rhs []symbol.Symbol) (*production, error) {
	if lhs.IsNil() {
		return nil, fmt.Errorf("production head must not be nil; head: %v, body: %v", lhs, rhs)
	}
	for _, sym := range rhs {
		if sym.IsNil() {
			return nil, fmt.Errorf("production body must not contain a nil symbol; head: %v, body: %v", lhs, rhs)
		}
	}
	return &production{
		id:  genProductionID(lhs, rhs),
		lhs: lhs,
		rhs: rhs,
	}, nil
}

func (p *production) equals(q *production) bool {
	return p.id == q.id
}

func (p *production) isEmpty() bool {
	return len(p.rhs) == 0
}

func (p *production) rhsLen() int {
	return len(p.rhs)
}

// rightmostTerminal returns the rightmost terminal symbol in the body, used
// to inherit precedence for a production that declares no explicit
// %precedence override (the yacc rule).
func (p *production) rightmostTerminal() (symbol.Symbol, bool) {
	for i := len(p.rhs) - 1; i >= 0; i-- {
		if p.rhs[i].IsTerminal() {
			return p.rhs[i], true
		}
	}
	return symbol.SymbolNil, false
}

type productionSet struct {
	byHead map[symbol.Symbol][]*production
	byID   map[productionID]*production
	next   productionNum
}

func newProductionSet() *productionSet {
	return &productionSet{
		byHead: map[symbol.Symbol][]*production{},
		byID:   map[productionID]*production{},
		next:   productionNumMin,
	}
}

// append registers prod, assigning it a dense production number, and
// reports whether it was new (a duplicate production body under the same
// head is a semantic error the caller must raise, not silently merge).
func (ps *productionSet) append(prod *production) bool {
	if _, ok := ps.byID[prod.id]; ok {
		return false
	}
	if prod.lhs.IsStart() {
		prod.num = productionNumStart
	} else {
		prod.num = ps.next
		ps.next++
	}
	ps.byHead[prod.lhs] = append(ps.byHead[prod.lhs], prod)
	ps.byID[prod.id] = prod
	return true
}

func (ps *productionSet) findByID(id productionID) (*production, bool) {
	prod, ok := ps.byID[id]
	return prod, ok
}

func (ps *productionSet) findByHead(lhs symbol.Symbol) ([]*production, bool) {
	if lhs.IsNil() {
		return nil, false
	}
	prods, ok := ps.byHead[lhs]
	return prods, ok
}

func (ps *productionSet) all() map[productionID]*production {
	return ps.byID
}
