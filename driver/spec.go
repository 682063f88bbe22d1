// Package driver is the runtime half of the generator: a table-driven
// shift/reduce engine that walks the action/goto arrays an
// artifact.CompiledGrammar carries, with single-token panic-mode recovery
// through the reserved error terminal. It never constructs a table itself
// — that is entirely the grammar package's job — it only interprets one.
package driver

import "github.com/kymerac/lalrgen/artifact"

// tableView narrows a *artifact.CompiledGrammar down to the handful of
// lookups the parse loop performs, so the loop reads as table operations
// rather than repeated field-chain dereferences.
type tableView struct {
	g *artifact.CompiledGrammar
}

func newTableView(g *artifact.CompiledGrammar) *tableView {
	return &tableView{g: g}
}

func (v *tableView) initialState() int            { return v.g.Table.InitialState }
func (v *tableView) startProduction() int         { return v.g.Table.StartProduction }
func (v *tableView) terminalCount() int           { return v.g.Table.TerminalCount }
func (v *tableView) nonTerminalCount() int        { return v.g.Table.NonTerminalCount }
func (v *tableView) eofSymbol() int               { return v.g.Table.EOFSymbol }
func (v *tableView) errorSymbol() int             { return v.g.Table.ErrorSymbol }
func (v *tableView) lhs(prod int) int             { return v.g.Table.LHSSymbols[prod] }
func (v *tableView) altLen(prod int) int          { return v.g.Table.AlternativeSymbolCounts[prod] }
func (v *tableView) terminalName(t int) string    { return v.g.Table.Terminals[t] }
func (v *tableView) nonTerminalName(n int) string { return v.g.Table.NonTerminals[n] }

func (v *tableView) isErrorTrapper(state int) bool {
	return v.g.Table.ErrorTrapperStates[state] != 0
}

func (v *tableView) recovers(prod int) bool {
	return v.g.Table.RecoverProductions[prod] != 0
}

func (v *tableView) action(state, terminal int) int {
	return v.g.Table.Action[state*v.terminalCount()+terminal]
}

func (v *tableView) goTo(state, nonTerminal int) int {
	return v.g.Table.GoTo[state*v.nonTerminalCount()+nonTerminal]
}

func (v *tableView) kindToTerminal(kindID int) int {
	return v.g.Lexical.Maleeni.KindToTerminal[kindID]
}

func (v *tableView) terminalToKind(terminal int) int {
	return v.g.Lexical.Maleeni.TerminalToKind[terminal]
}

func (v *tableView) skip(kindID int) bool {
	return v.g.Lexical.Maleeni.Skip[kindID] > 0
}

func (v *tableView) astAction(prod int) []int {
	return v.g.Action.Entries[prod]
}
