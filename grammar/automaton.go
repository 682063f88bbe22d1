package grammar

import (
	"fmt"
	"sort"

	"github.com/kymerac/lalrgen/grammar/symbol"
)

// automaton is the canonical LR(0) state graph: states are discovered
// breadth-first from the initial kernel and deduplicated by kernel
// signature, so two syntactically distinct derivations that reach the same
// set of dotted productions collapse onto one state.
type automaton struct {
	initial kernelID
	states  map[kernelID]*lrState
}

func genLR0Automaton(prods *productionSet, start, errSym symbol.Symbol) (*automaton, error) {
	if !start.IsStart() {
		return nil, fmt.Errorf("genLR0Automaton: symbol %s is not a start symbol", start)
	}

	auto := &automaton{states: map[kernelID]*lrState{}}
	seen := map[kernelID]struct{}{}

	startProds, _ := prods.findByHead(start)
	initItem, err := newLR0Item(startProds[0], 0)
	if err != nil {
		return nil, err
	}
	initKernel, err := newKernel([]*lrItem{initItem})
	if err != nil {
		return nil, err
	}
	auto.initial = initKernel.id
	seen[initKernel.id] = struct{}{}

	frontier := []*kernel{initKernel}
	num := stateNumInitial
	for len(frontier) > 0 {
		var next []*kernel
		for _, k := range frontier {
			state, neighbours, err := buildState(k, prods, errSym)
			if err != nil {
				return nil, err
			}
			state.num = num
			num = num.next()
			auto.states[state.id] = state

			for _, n := range neighbours {
				if _, ok := seen[n.id]; ok {
					continue
				}
				seen[n.id] = struct{}{}
				next = append(next, n)
			}
		}
		frontier = next
	}

	return auto, nil
}

func buildState(k *kernel, prods *productionSet, errSym symbol.Symbol) (*lrState, []*kernel, error) {
	items, err := closure(k, prods)
	if err != nil {
		return nil, nil, err
	}
	neighbours, err := gotoKernels(items, prods)
	if err != nil {
		return nil, nil, err
	}

	transitions := map[symbol.Symbol]kernelID{}
	var kernels []*kernel
	for _, n := range neighbours {
		transitions[n.symbol] = n.kernel.id
		kernels = append(kernels, n.kernel)
	}

	reducible := map[productionID]struct{}{}
	var emptyItems []*lrItem
	isErrorTrapper := false
	for _, item := range items {
		if !errSym.IsNil() && item.dottedSymbol == errSym {
			isErrorTrapper = true
		}
		if !item.reducible {
			continue
		}
		reducible[item.prod] = struct{}{}
		prod, ok := prods.findByID(item.prod)
		if !ok {
			return nil, nil, fmt.Errorf("buildState: reducible production not found: %v", item.prod)
		}
		if prod.isEmpty() {
			emptyItems = append(emptyItems, item)
		}
	}

	return &lrState{
		kernel:         k,
		next:           transitions,
		reducible:      reducible,
		emptyProdItems: emptyItems,
		isErrorTrapper: isErrorTrapper,
	}, kernels, nil
}

// closure expands a kernel into the full item set reachable by repeatedly
// adding, for every item with the dot before a non-terminal, that
// non-terminal's productions at dot 0.
func closure(k *kernel, prods *productionSet) ([]*lrItem, error) {
	items := append([]*lrItem{}, k.items...)
	seen := map[lrItemID]struct{}{}
	frontier := append([]*lrItem{}, k.items...)

	for len(frontier) > 0 {
		var next []*lrItem
		for _, item := range frontier {
			if item.dottedSymbol.IsTerminal() {
				continue
			}
			bodies, _ := prods.findByHead(item.dottedSymbol)
			for _, prod := range bodies {
				added, err := newLR0Item(prod, 0)
				if err != nil {
					return nil, err
				}
				if _, ok := seen[added.id]; ok {
					continue
				}
				seen[added.id] = struct{}{}
				items = append(items, added)
				next = append(next, added)
			}
		}
		frontier = next
	}
	return items, nil
}

type neighbourKernel struct {
	symbol symbol.Symbol
	kernel *kernel
}

// gotoKernels partitions a state's closure by dotted symbol and advances
// the dot past each symbol, producing the kernels of the states this state
// transitions to. Symbols are iterated in a fixed (numeric) order so two
// runs over the same grammar always discover states in the same order.
func gotoKernels(items []*lrItem, prods *productionSet) ([]*neighbourKernel, error) {
	bySymbol := map[symbol.Symbol][]*lrItem{}
	for _, item := range items {
		if item.dottedSymbol.IsNil() {
			continue
		}
		prod, ok := prods.findByID(item.prod)
		if !ok {
			return nil, fmt.Errorf("gotoKernels: production not found: %v", item.prod)
		}
		advanced, err := newLR0Item(prod, item.dot+1)
		if err != nil {
			return nil, err
		}
		bySymbol[item.dottedSymbol] = append(bySymbol[item.dottedSymbol], advanced)
	}

	syms := make([]symbol.Symbol, 0, len(bySymbol))
	for sym := range bySymbol {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })

	var result []*neighbourKernel
	for _, sym := range syms {
		k, err := newKernel(bySymbol[sym])
		if err != nil {
			return nil, err
		}
		result = append(result, &neighbourKernel{symbol: sym, kernel: k})
	}
	return result, nil
}
