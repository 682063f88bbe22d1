package grammar

import (
	"fmt"

	"github.com/kymerac/lalrgen/grammar/symbol"
)

// firstEntry is FIRST(X) for a single non-terminal X: the terminals that
// can begin a string it derives, plus whether X can derive the empty
// string.
type firstEntry struct {
	symbols map[symbol.Symbol]struct{}
	empty   bool
}

func newFirstEntry() *firstEntry {
	return &firstEntry{symbols: map[symbol.Symbol]struct{}{}}
}

func (e *firstEntry) add(sym symbol.Symbol) bool {
	if _, ok := e.symbols[sym]; ok {
		return false
	}
	e.symbols[sym] = struct{}{}
	return true
}

func (e *firstEntry) addEmpty() bool {
	if e.empty {
		return false
	}
	e.empty = true
	return true
}

func (e *firstEntry) mergeTerminalsOf(other *firstEntry) bool {
	if other == nil {
		return false
	}
	changed := false
	for sym := range other.symbols {
		if e.add(sym) {
			changed = true
		}
	}
	return changed
}

// firstSet is FIRST(X) for every non-terminal X of the grammar, computed by
// repeated passes over every production until no entry changes.
type firstSet struct {
	byHead map[symbol.Symbol]*firstEntry
}

func newFirstSet(prods *productionSet) *firstSet {
	fs := &firstSet{byHead: map[symbol.Symbol]*firstEntry{}}
	for _, prod := range prods.all() {
		if _, ok := fs.byHead[prod.lhs]; !ok {
			fs.byHead[prod.lhs] = newFirstEntry()
		}
	}
	return fs
}

func (fs *firstSet) of(sym symbol.Symbol) *firstEntry {
	return fs.byHead[sym]
}

// suffix computes FIRST of the production body starting at the given
// offset — used by lalrClosure (the lookahead propagator, component D) to
// decide what lookahead an added item should spontaneously carry.
func (fs *firstSet) suffix(prod *production, from int) (*firstEntry, error) {
	entry := newFirstEntry()
	if from >= prod.rhsLen() {
		entry.addEmpty()
		return entry, nil
	}
	for _, sym := range prod.rhs[from:] {
		if sym.IsTerminal() {
			entry.add(sym)
			return entry, nil
		}
		e := fs.of(sym)
		if e == nil {
			return nil, fmt.Errorf("no FIRST entry for symbol %s", sym)
		}
		for s := range e.symbols {
			entry.add(s)
		}
		if !e.empty {
			return entry, nil
		}
	}
	entry.addEmpty()
	return entry, nil
}

func genFirstSet(prods *productionSet) (*firstSet, error) {
	fs := newFirstSet(prods)
	for {
		changed := false
		for _, prod := range prods.all() {
			acc := fs.of(prod.lhs)
			c, err := accumulateFirst(fs, acc, prod)
			if err != nil {
				return nil, err
			}
			if c {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return fs, nil
}

func accumulateFirst(fs *firstSet, acc *firstEntry, prod *production) (bool, error) {
	if prod.isEmpty() {
		return acc.addEmpty(), nil
	}
	for _, sym := range prod.rhs {
		if sym.IsTerminal() {
			return acc.add(sym), nil
		}
		e := fs.of(sym)
		if e == nil {
			return false, fmt.Errorf("no FIRST entry for symbol %s", sym)
		}
		changed := acc.mergeTerminalsOf(e)
		if !e.empty {
			return changed, nil
		}
	}
	return acc.addEmpty(), nil
}
