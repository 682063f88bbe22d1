package grammar

import (
	"fmt"
	"sort"

	"github.com/kymerac/lalrgen/artifact"
	"github.com/kymerac/lalrgen/diag"
	"github.com/kymerac/lalrgen/grammar/symbol"
)

type ActionType string

const (
	ActionShift  = ActionType("shift")
	ActionReduce = ActionType("reduce")
	ActionError  = ActionType("error")
)

// actionEntry packs one action-table cell: negative encodes a shift to
// that (negated) state, positive encodes a reduce by that production
// number, zero is error. A single machine word per cell keeps the dense
// table compact even for grammars with thousands of states.
type actionEntry int

const actionEmpty = actionEntry(0)

func newShiftEntry(s stateNum) actionEntry    { return actionEntry(-s) }
func newReduceEntry(p productionNum) actionEntry { return actionEntry(p) }

func (e actionEntry) isEmpty() bool { return e == actionEmpty }

func (e actionEntry) describe() (ActionType, stateNum, productionNum) {
	switch {
	case e == actionEmpty:
		return ActionError, stateNumInitial, productionNumNil
	case e < 0:
		return ActionShift, stateNum(-e), productionNumNil
	default:
		return ActionReduce, stateNumInitial, productionNum(e)
	}
}

type GoToType string

const (
	GoToRegistered = GoToType("registered")
	GoToError      = GoToType("error")
)

type goToEntry uint

const goToEmpty = goToEntry(0)

func newGoToEntry(s stateNum) goToEntry { return goToEntry(s) }

func (e goToEntry) describe() (GoToType, stateNum) {
	if e == goToEmpty {
		return GoToError, stateNumInitial
	}
	return GoToRegistered, stateNum(e)
}

type conflictResolution int

const (
	resolvedByPrec      conflictResolution = artifact.ResolvedByPrec
	resolvedByAssoc     conflictResolution = artifact.ResolvedByAssoc
	resolvedByShift     conflictResolution = artifact.ResolvedByShift
	resolvedByProdOrder conflictResolution = artifact.ResolvedByProdOrder
)

func (m conflictResolution) Int() int { return int(m) }

type conflict interface{ conflict() }

type shiftReduceConflict struct {
	state      stateNum
	sym        symbol.Symbol
	nextState  stateNum
	prodNum    productionNum
	resolvedBy conflictResolution
}

func (*shiftReduceConflict) conflict() {}

type reduceReduceConflict struct {
	state      stateNum
	sym        symbol.Symbol
	prodNum1   productionNum
	prodNum2   productionNum
	resolvedBy conflictResolution
}

func (*reduceReduceConflict) conflict() {}

// ParsingTable is the dense, emittable action/goto table.
type ParsingTable struct {
	action           []actionEntry
	goTo             []goToEntry
	stateCount       int
	terminalCount    int
	nonTerminalCount int

	errorTrapperStates []int

	InitialState stateNum
}

func (t *ParsingTable) getAction(s stateNum, sym symbol.SymbolNum) (ActionType, stateNum, productionNum) {
	return t.action[s.Int()*t.terminalCount+sym.Int()].describe()
}

func (t *ParsingTable) getGoTo(s stateNum, sym symbol.SymbolNum) (GoToType, stateNum) {
	return t.goTo[s.Int()*t.nonTerminalCount+sym.Int()].describe()
}

func (t *ParsingTable) readAction(row, col int) actionEntry {
	return t.action[row*t.terminalCount+col]
}

func (t *ParsingTable) writeAction(row, col int, e actionEntry) {
	t.action[row*t.terminalCount+col] = e
}

func (t *ParsingTable) writeGoTo(s stateNum, sym symbol.Symbol, next stateNum) {
	t.goTo[s.Int()*t.nonTerminalCount+sym.Num().Int()] = newGoToEntry(next)
}

// tableBuilder walks the annotated automaton once, writing a shift or
// reduce cell for every transition/reducible item it finds and resolving
// any collision according to precedence, associativity, or production
// order.
type tableBuilder struct {
	automaton *automaton
	prods     *productionSet
	termCount int
	nontCount int
	symTab    *symbol.Reader
	prec      *precedenceTable
	sink      diag.Sink

	conflicts []conflict
}

// reportConflicts sends every conflict that fell back to the default
// resolution rule (shift over reduce, or the earlier production on a
// reduce/reduce tie) to sink as a diag.KindUnresolvedConflict warning —
// conflicts resolved by an explicit precedence or associativity
// declaration are working as the grammar author intended and are not
// reported. It returns the number of warnings reported.
func (b *tableBuilder) reportConflicts() int {
	n := 0
	for _, c := range b.conflicts {
		switch c := c.(type) {
		case *shiftReduceConflict:
			if c.resolvedBy != resolvedByShift {
				continue
			}
			symName, _ := b.symTab.ToText(c.sym)
			b.sink.Report(&diag.SpecError{
				Kind: diag.KindUnresolvedConflict,
				Args: []any{"shift/reduce", "state", c.state.Int(), "symbol", symName, "production", c.prodNum.Int()},
			})
			n++
		case *reduceReduceConflict:
			if c.resolvedBy != resolvedByProdOrder {
				continue
			}
			symName, _ := b.symTab.ToText(c.sym)
			b.sink.Report(&diag.SpecError{
				Kind: diag.KindUnresolvedConflict,
				Args: []any{"reduce/reduce", "state", c.state.Int(), "symbol", symName, "production", c.prodNum1.Int(), c.prodNum2.Int()},
			})
			n++
		}
	}
	return n
}

func (b *tableBuilder) build() (*ParsingTable, error) {
	initial := b.automaton.states[b.automaton.initial]
	tab := &ParsingTable{
		action:             make([]actionEntry, len(b.automaton.states)*b.termCount),
		goTo:               make([]goToEntry, len(b.automaton.states)*b.nontCount),
		stateCount:         len(b.automaton.states),
		terminalCount:      b.termCount,
		nonTerminalCount:   b.nontCount,
		errorTrapperStates: make([]int, len(b.automaton.states)),
		InitialState:       initial.num,
	}

	for _, state := range b.automaton.states {
		if state.isErrorTrapper {
			tab.errorTrapperStates[state.num] = 1
		}

		for sym, kID := range state.next {
			next := b.automaton.states[kID]
			if sym.IsTerminal() {
				b.writeShift(tab, state.num, sym, next.num)
			} else {
				tab.writeGoTo(state.num, sym, next.num)
			}
		}

		for prodID := range state.reducible {
			prod, ok := b.prods.findByID(prodID)
			if !ok {
				return nil, fmt.Errorf("tableBuilder.build: production not found: %v", prodID)
			}

			item := findByID(state.items, itemIDOf(prod, state))
			if item == nil {
				item = findEmptyReducible(state, prod)
			}
			if item == nil {
				return nil, fmt.Errorf("tableBuilder.build: reducible item not found; state=%v production=%v", state.num, prod.num)
			}

			for a := range item.lookAhead.symbols {
				b.writeReduce(tab, state.num, a, prod.num)
			}
		}
	}

	return tab, nil
}

func itemIDOf(prod *production, state *lrState) lrItemID {
	for _, item := range state.items {
		if item.prod == prod.id {
			return item.id
		}
	}
	return lrItemID{}
}

func findEmptyReducible(state *lrState, prod *production) *lrItem {
	for _, item := range state.emptyProdItems {
		if item.prod == prod.id {
			return item
		}
	}
	return nil
}

// writeShift always wins a shift/reduce collision unless resolution says
// otherwise; a plain shift into an empty cell never conflicts with anything.
func (b *tableBuilder) writeShift(tab *ParsingTable, state stateNum, sym symbol.Symbol, next stateNum) {
	existing := tab.readAction(state.Int(), sym.Num().Int())
	if !existing.isEmpty() {
		ty, _, prod := existing.describe()
		if ty == ActionReduce {
			act, method := b.resolveShiftReduce(sym.Num(), prod)
			b.conflicts = append(b.conflicts, &shiftReduceConflict{
				state: state, sym: sym, nextState: next, prodNum: prod, resolvedBy: method,
			})
			if act == ActionShift {
				tab.writeAction(state.Int(), sym.Num().Int(), newShiftEntry(next))
			}
			return
		}
	}
	tab.writeAction(state.Int(), sym.Num().Int(), newShiftEntry(next))
}

// writeReduce resolves a collision with either a shift (precedence rules
// decide) or another reduce (the lower production number, i.e. the
// alternative declared earlier in the source, always wins).
func (b *tableBuilder) writeReduce(tab *ParsingTable, state stateNum, sym symbol.Symbol, prod productionNum) {
	existing := tab.readAction(state.Int(), sym.Num().Int())
	if existing.isEmpty() {
		tab.writeAction(state.Int(), sym.Num().Int(), newReduceEntry(prod))
		return
	}

	ty, next, other := existing.describe()
	switch ty {
	case ActionReduce:
		if other == prod {
			return
		}
		b.conflicts = append(b.conflicts, &reduceReduceConflict{
			state: state, sym: sym, prodNum1: other, prodNum2: prod, resolvedBy: resolvedByProdOrder,
		})
		winner := other
		if prod < other {
			winner = prod
		}
		tab.writeAction(state.Int(), sym.Num().Int(), newReduceEntry(winner))
	case ActionShift:
		act, method := b.resolveShiftReduce(sym.Num(), prod)
		b.conflicts = append(b.conflicts, &shiftReduceConflict{
			state: state, sym: sym, nextState: next, prodNum: prod, resolvedBy: method,
		})
		if act == ActionReduce {
			tab.writeAction(state.Int(), sym.Num().Int(), newReduceEntry(prod))
		}
	}
}

// resolveShiftReduce: no precedence on either side defaults to shift;
// equal precedence falls back to associativity (right
// or none-associative shifts, left-associative reduces); otherwise the
// higher-precedence side wins.
func (b *tableBuilder) resolveShiftReduce(sym symbol.SymbolNum, prod productionNum) (ActionType, conflictResolution) {
	symPrec := b.prec.terminalPrecedence(sym)
	prodPrec := b.prec.productionPrecedence(prod)
	if symPrec == precNil || prodPrec == precNil {
		return ActionShift, resolvedByShift
	}
	if symPrec == prodPrec {
		if b.prec.productionAssociativity(prod) != assocLeft {
			return ActionShift, resolvedByAssoc
		}
		return ActionReduce, resolvedByAssoc
	}
	if symPrec > prodPrec {
		return ActionShift, resolvedByPrec
	}
	return ActionReduce, resolvedByPrec
}

// genReport renders the automaton and its conflicts into the artifact
// package's JSON-serializable Report shape, for `describe`-style tooling.
func (b *tableBuilder) genReport(tab *ParsingTable, gram *Grammar) (*artifact.Report, error) {
	terms, err := b.reportTerminals()
	if err != nil {
		return nil, err
	}
	nonTerms, err := b.reportNonTerminals()
	if err != nil {
		return nil, err
	}
	prods := b.reportProductions(gram)
	states, err := b.reportStates(tab)
	if err != nil {
		return nil, err
	}

	return &artifact.Report{
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  prods,
		States:       states,
	}, nil
}

func (b *tableBuilder) reportTerminals() ([]*artifact.Terminal, error) {
	syms := b.symTab.Terminals()
	out := make([]*artifact.Terminal, len(syms)+1)
	for _, sym := range syms {
		name, ok := b.symTab.ToText(sym)
		if !ok {
			return nil, fmt.Errorf("reportTerminals: symbol not found: %v", sym)
		}
		t := &artifact.Terminal{Number: sym.Num().Int(), Name: name}
		if prec := b.prec.terminalPrecedence(sym.Num()); prec != precNil {
			t.Precedence = prec
		}
		switch b.prec.terminalAssociativity(sym.Num()) {
		case assocLeft:
			t.Associativity = "l"
		case assocRight:
			t.Associativity = "r"
		}
		out[sym.Num()] = t
	}
	return out, nil
}

func (b *tableBuilder) reportNonTerminals() ([]*artifact.NonTerminal, error) {
	syms := b.symTab.NonTerminals()
	out := make([]*artifact.NonTerminal, len(syms)+1)
	for _, sym := range syms {
		name, ok := b.symTab.ToText(sym)
		if !ok {
			return nil, fmt.Errorf("reportNonTerminals: symbol not found: %v", sym)
		}
		out[sym.Num()] = &artifact.NonTerminal{Number: sym.Num().Int(), Name: name}
	}
	return out, nil
}

func (b *tableBuilder) reportProductions(gram *Grammar) []*artifact.Production {
	all := gram.productions.all()
	out := make([]*artifact.Production, len(all)+1)
	for _, p := range all {
		rhs := make([]int, len(p.rhs))
		for i, e := range p.rhs {
			if e.IsTerminal() {
				rhs[i] = e.Num().Int()
			} else {
				rhs[i] = -e.Num().Int()
			}
		}
		prod := &artifact.Production{Number: p.num.Int(), LHS: p.lhs.Num().Int(), RHS: rhs, ActionTag: p.actionTag}
		if prec := b.prec.productionPrecedence(p.num); prec != precNil {
			prod.Precedence = prec
		}
		switch b.prec.productionAssociativity(p.num) {
		case assocLeft:
			prod.Associativity = "l"
		case assocRight:
			prod.Associativity = "r"
		}
		out[p.num.Int()] = prod
	}
	return out
}

func (b *tableBuilder) reportStates(tab *ParsingTable) ([]*artifact.State, error) {
	srByState := map[stateNum][]*shiftReduceConflict{}
	rrByState := map[stateNum][]*reduceReduceConflict{}
	for _, c := range b.conflicts {
		switch cc := c.(type) {
		case *shiftReduceConflict:
			srByState[cc.state] = append(srByState[cc.state], cc)
		case *reduceReduceConflict:
			rrByState[cc.state] = append(rrByState[cc.state], cc)
		}
	}

	states := make([]*artifact.State, len(b.automaton.states))
	for _, s := range b.automaton.states {
		kernel := make([]*artifact.Item, len(s.items))
		for i, item := range s.items {
			p, ok := b.prods.findByID(item.prod)
			if !ok {
				return nil, fmt.Errorf("reportStates: production not found: %v", item.prod)
			}
			kernel[i] = &artifact.Item{Production: p.num.Int(), Dot: item.dot}
		}
		sort.Slice(kernel, func(i, j int) bool {
			if kernel[i].Production != kernel[j].Production {
				return kernel[i].Production < kernel[j].Production
			}
			return kernel[i].Dot < kernel[j].Dot
		})

		var shift []*artifact.Transition
		var reduce []*artifact.Reduce
		var goTo []*artifact.Transition
	terminals:
		for _, t := range b.symTab.Terminals() {
			act, next, prod := tab.getAction(s.num, t.Num())
			switch act {
			case ActionShift:
				shift = append(shift, &artifact.Transition{Symbol: t.Num().Int(), State: next.Int()})
			case ActionReduce:
				for _, r := range reduce {
					if r.Production == prod.Int() {
						r.LookAhead = append(r.LookAhead, t.Num().Int())
						continue terminals
					}
				}
				reduce = append(reduce, &artifact.Reduce{LookAhead: []int{t.Num().Int()}, Production: prod.Int()})
			}
		}
		for _, n := range b.symTab.NonTerminals() {
			ty, next := tab.getGoTo(s.num, n.Num())
			if ty == GoToRegistered {
				goTo = append(goTo, &artifact.Transition{Symbol: n.Num().Int(), State: next.Int()})
			}
		}
		sort.Slice(shift, func(i, j int) bool { return shift[i].State < shift[j].State })
		sort.Slice(reduce, func(i, j int) bool { return reduce[i].Production < reduce[j].Production })
		sort.Slice(goTo, func(i, j int) bool { return goTo[i].State < goTo[j].State })

		var sr []*artifact.SRConflict
		for _, c := range srByState[s.num] {
			entry := &artifact.SRConflict{
				Symbol: c.sym.Num().Int(), State: c.nextState.Int(), Production: c.prodNum.Int(), ResolvedBy: c.resolvedBy.Int(),
			}
			ty, next, prod := tab.getAction(s.num, c.sym.Num())
			if ty == ActionShift {
				n := next.Int()
				entry.AdoptedState = &n
			} else {
				n := prod.Int()
				entry.AdoptedProduction = &n
			}
			sr = append(sr, entry)
		}
		sort.Slice(sr, func(i, j int) bool { return sr[i].Symbol < sr[j].Symbol })

		var rr []*artifact.RRConflict
		for _, c := range rrByState[s.num] {
			_, _, prod := tab.getAction(s.num, c.sym.Num())
			rr = append(rr, &artifact.RRConflict{
				Symbol: c.sym.Num().Int(), Production1: c.prodNum1.Int(), Production2: c.prodNum2.Int(),
				AdoptedProduction: prod.Int(), ResolvedBy: c.resolvedBy.Int(),
			})
		}
		sort.Slice(rr, func(i, j int) bool { return rr[i].Symbol < rr[j].Symbol })

		states[s.num.Int()] = &artifact.State{
			Number: s.num.Int(), Kernel: kernel, Shift: shift, Reduce: reduce, GoTo: goTo, SRConflict: sr, RRConflict: rr,
		}
	}
	return states, nil
}
