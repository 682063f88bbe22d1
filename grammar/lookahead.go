package grammar

import (
	"fmt"

	"github.com/kymerac/lalrgen/grammar/symbol"
)

// stateItem addresses a single item inside a single automaton state, used
// to describe a propagation edge without holding a live pointer (the
// automaton's states map can still be rebuilt between passes).
type stateItem struct {
	state kernelID
	item  lrItemID
}

// edge records that lookahead symbols flowing into src must also flow into
// every entry of dest; this is discovered once per item by lalrClosure and
// then replayed to a fixed point by propagate.
type edge struct {
	src  stateItem
	dest []stateItem
}

// lalrAutomaton is the LR(0) automaton annotated with LALR(1) lookahead
// sets: the state graph and transitions are unchanged, only the items'
// lookAhead fields have been filled in.
type lalrAutomaton struct {
	*automaton
}

// genLALRAutomaton runs the DeRemer-Pennello lookahead propagation method:
// rather than building the full (much larger) canonical LR(1) automaton, it
// computes, for every LR(0) kernel item, whether its closure spontaneously
// generates lookahead for another item or merely propagates its own, then
// iterates the propagation edges to a fixed point.
func genLALRAutomaton(lr0 *automaton, prods *productionSet, first *firstSet) (*lalrAutomaton, error) {
	initState := lr0.states[lr0.initial]
	initState.items[0].lookAhead.symbols = map[symbol.Symbol]struct{}{
		symbol.SymbolEOF: {},
	}

	var edges []*edge
	for _, state := range lr0.states {
		for _, kItem := range state.items {
			items, err := lalrClosure(kItem, prods, first)
			if err != nil {
				return nil, err
			}
			kItem.lookAhead.propagation = true

			var dests []stateItem
			for _, item := range items {
				if item.reducible {
					prod, ok := prods.findByID(item.prod)
					if !ok {
						return nil, fmt.Errorf("genLALRAutomaton: production not found: %v", item.prod)
					}
					if !prod.isEmpty() {
						continue
					}
					target := findByID(state.emptyProdItems, item.id)
					if target == nil {
						return nil, fmt.Errorf("genLALRAutomaton: empty-production item not found: %v", item.id)
					}
					mergeInto(target, item.lookAhead.symbols)
					if item.lookAhead.propagation {
						dests = append(dests, stateItem{state: state.id, item: item.id})
					}
					continue
				}

				nextState := state.next[item.dottedSymbol]
				nextItemID, err := advancedItemID(prods, item)
				if err != nil {
					return nil, err
				}

				if item.lookAhead.propagation {
					dests = append(dests, stateItem{state: nextState, item: nextItemID})
					continue
				}

				dst := lr0.states[nextState]
				target := findByID(dst.items, nextItemID)
				if target == nil {
					return nil, fmt.Errorf("genLALRAutomaton: item not found: %v", nextItemID)
				}
				mergeInto(target, item.lookAhead.symbols)
			}
			if len(dests) == 0 {
				continue
			}
			edges = append(edges, &edge{
				src:  stateItem{state: state.id, item: kItem.id},
				dest: dests,
			})
		}
	}

	if err := propagate(lr0, edges); err != nil {
		return nil, fmt.Errorf("lookahead propagation failed: %w", err)
	}

	return &lalrAutomaton{automaton: lr0}, nil
}

func findByID(items []*lrItem, id lrItemID) *lrItem {
	for _, item := range items {
		if item.id == id {
			return item
		}
	}
	return nil
}

func mergeInto(item *lrItem, symbols map[symbol.Symbol]struct{}) {
	if item.lookAhead.symbols == nil {
		item.lookAhead.symbols = map[symbol.Symbol]struct{}{}
	}
	for a := range symbols {
		item.lookAhead.symbols[a] = struct{}{}
	}
}

func advancedItemID(prods *productionSet, item *lrItem) (lrItemID, error) {
	prod, ok := prods.findByID(item.prod)
	if !ok {
		return lrItemID{}, fmt.Errorf("advancedItemID: production not found: %v", item.prod)
	}
	advanced, err := newLR0Item(prod, item.dot+1)
	if err != nil {
		return lrItemID{}, err
	}
	return advanced.id, nil
}

// lalrClosure computes an LR(1)-style closure over a single kernel item
// without materializing a full LR(1) state: each generated item either
// carries a concretely computed lookahead symbol (spontaneous generation,
// when FIRST of the remaining body is non-nullable) or is marked as a
// propagation target (when the remaining body is nullable, so it inherits
// whatever lookahead the source item ends up with).
func lalrClosure(src *lrItem, prods *productionSet, first *firstSet) ([]*lrItem, error) {
	items := []*lrItem{src}
	seenConcrete := map[lrItemID]map[symbol.Symbol]struct{}{}
	seenPropagating := map[lrItemID]struct{}{}
	frontier := []*lrItem{src}

	for len(frontier) > 0 {
		var next []*lrItem
		for _, item := range frontier {
			if item.dottedSymbol.IsTerminal() {
				continue
			}
			prod, ok := prods.findByID(item.prod)
			if !ok {
				return nil, fmt.Errorf("lalrClosure: production not found: %v", item.prod)
			}

			fst, err := first.suffix(prod, item.dot+1)
			if err != nil {
				return nil, err
			}

			bodies, _ := prods.findByHead(item.dottedSymbol)
			for _, body := range bodies {
				for a := range fst.symbols {
					if syms, ok := seenConcrete[itemAtZero(body)]; ok {
						if _, ok := syms[a]; ok {
							continue
						}
					}
					newItem, err := newLR0Item(body, 0)
					if err != nil {
						return nil, err
					}
					newItem.lookAhead.symbols = map[symbol.Symbol]struct{}{a: {}}
					items = append(items, newItem)
					if seenConcrete[newItem.id] == nil {
						seenConcrete[newItem.id] = map[symbol.Symbol]struct{}{}
					}
					seenConcrete[newItem.id][a] = struct{}{}
					next = append(next, newItem)
				}

				if fst.empty {
					if _, ok := seenPropagating[itemAtZero(body)]; ok {
						continue
					}
					newItem, err := newLR0Item(body, 0)
					if err != nil {
						return nil, err
					}
					newItem.lookAhead.propagation = true
					items = append(items, newItem)
					seenPropagating[newItem.id] = struct{}{}
					next = append(next, newItem)
				}
			}
		}
		frontier = next
	}
	return items, nil
}

func itemAtZero(prod *production) lrItemID {
	item, _ := newLR0Item(prod, 0)
	return item.id
}

// propagate iterates the recorded edges to a fixed point: as long as any
// edge still has lookahead on its source that is missing from a
// destination, another pass is required.
func propagate(lr0 *automaton, edges []*edge) error {
	for {
		changed := false
		for _, e := range edges {
			srcState, ok := lr0.states[e.src.state]
			if !ok {
				return fmt.Errorf("propagate: state not found: %v", e.src.state)
			}
			srcItem := findByID(srcState.items, e.src.item)
			if srcItem == nil {
				return fmt.Errorf("propagate: source item not found: %v", e.src.item)
			}

			for _, d := range e.dest {
				dstState, ok := lr0.states[d.state]
				if !ok {
					return fmt.Errorf("propagate: state not found: %v", d.state)
				}
				dstItem := findByID(dstState.items, d.item)
				if dstItem == nil {
					dstItem = findByID(dstState.emptyProdItems, d.item)
				}
				if dstItem == nil {
					return fmt.Errorf("propagate: destination item not found: %v", d.item)
				}

				if dstItem.lookAhead.symbols == nil {
					dstItem.lookAhead.symbols = map[symbol.Symbol]struct{}{}
				}
				for a := range srcItem.lookAhead.symbols {
					if _, ok := dstItem.lookAhead.symbols[a]; ok {
						continue
					}
					dstItem.lookAhead.symbols[a] = struct{}{}
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	return nil
}
