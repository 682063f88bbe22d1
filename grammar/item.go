package grammar

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"

	"github.com/kymerac/lalrgen/grammar/symbol"
)

// lrItemID content-addresses an item by its production and dot position.
type lrItemID [32]byte

func (id lrItemID) String() string {
	return fmt.Sprintf("%x", id.num())
}

func (id lrItemID) num() uint32 {
	return binary.LittleEndian.Uint32(id[:])
}

// lookAhead is the mutable side-table slot the propagator (component D)
// owns: core item identity never changes once an lrItem is built, but its
// lookahead set is filled in after the fact by repeated fixed-point passes.
type lookAhead struct {
	symbols map[symbol.Symbol]struct{}

	// propagation marks an item whose lookahead flows from the kernel item
	// a closure started from (that kernel item included) rather than being
	// generated spontaneously; genLALRAutomaton records a propagation edge
	// for it. Once set it is never reset.
	propagation bool
}

// lrItem is a dotted production: head → body₀ … bodyₖ₋₁ · bodyₖ … bodyₙ.
//
//	Dot | Dotted symbol | Item
//	----+---------------+-------------
//	0   | body₀         | E →・E + T
//	1   | +             | E → E・+ T
//	2   | T             | E → E +・T
//	3   | (none)        | E → E + T・
type lrItem struct {
	id   lrItemID
	prod productionID

	dot          int
	dottedSymbol symbol.Symbol

	// initial marks S' →・S, the sole item of the initial state's kernel.
	initial bool

	// reducible marks an item with the dot at the end of its body.
	reducible bool

	// kernel marks an item that is either initial or has dot > 0; these
	// are the only items a state's identity (its kernel signature) is
	// computed from — items the closure adds are reproducible from them.
	kernel bool

	lookAhead lookAhead
}

func newLR0Item(prod *production, dot int) (*lrItem, error) {
	if prod == nil {
		return nil, fmt.Errorf("production must be non-nil")
	}
	if dot < 0 || dot > prod.rhsLen() {
		return nil, fmt.Errorf("dot must be between 0 and %v", prod.rhsLen())
	}

	b := make([]byte, 0, len(prod.id)+8)
	b = append(b, prod.id[:]...)
	bDot := make([]byte, 8)
	binary.LittleEndian.PutUint64(bDot, uint64(dot))
	b = append(b, bDot...)
	id := lrItemID(sha256.Sum256(b))

	dottedSymbol := symbol.SymbolNil
	if dot < prod.rhsLen() {
		dottedSymbol = prod.rhs[dot]
	}

	return &lrItem{
		id:           id,
		prod:         prod.id,
		dot:          dot,
		dottedSymbol: dottedSymbol,
		initial:      prod.lhs.IsStart() && dot == 0,
		reducible:    dot == prod.rhsLen(),
		kernel:       (prod.lhs.IsStart() && dot == 0) || dot > 0,
	}, nil
}

// kernelID content-addresses a state by the sorted ids of its kernel items.
type kernelID [32]byte

func (id kernelID) String() string {
	return fmt.Sprintf("%x", binary.LittleEndian.Uint32(id[:]))
}

type kernel struct {
	id    kernelID
	items []*lrItem
}

func newKernel(items []*lrItem) (*kernel, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("a kernel needs at least one item")
	}

	dedup := map[lrItemID]*lrItem{}
	for _, item := range items {
		if !item.kernel {
			return nil, fmt.Errorf("not a kernel item: %v", item.id)
		}
		dedup[item.id] = item
	}
	sorted := make([]*lrItem, 0, len(dedup))
	for _, item := range dedup {
		sorted = append(sorted, item)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].id.num() < sorted[j].id.num()
	})

	b := make([]byte, 0, len(sorted)*32)
	for _, item := range sorted {
		b = append(b, item.id[:]...)
	}

	return &kernel{
		id:    sha256.Sum256(b),
		items: sorted,
	}, nil
}

type stateNum int

const stateNumInitial = stateNum(0)

func (n stateNum) Int() int { return int(n) }

func (n stateNum) String() string { return strconv.Itoa(int(n)) }

func (n stateNum) next() stateNum { return stateNum(n + 1) }

// lrState is one node of the LR(0)/LALR(1) automaton: a kernel plus the
// transitions discovered out of its closure.
type lrState struct {
	*kernel
	num       stateNum
	next      map[symbol.Symbol]kernelID
	reducible map[productionID]struct{}

	// isErrorTrapper is true when this state's closure contains an item
	// with the dot immediately before the reserved error pseudo-terminal;
	// the runtime driver uses this to find a state it can recover to.
	isErrorTrapper bool

	// emptyProdItems holds the `head → ・ε` items this state's closure
	// produced for empty productions. They are reducible but are not
	// kernel items (dot is 0 with an empty body), so they need a separate
	// slot to carry their propagated lookahead.
	emptyProdItems []*lrItem
}
