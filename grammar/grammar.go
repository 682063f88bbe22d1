package grammar

import (
	"fmt"

	"github.com/kymerac/lalrgen/artifact"
	"github.com/kymerac/lalrgen/diag"
	"github.com/kymerac/lalrgen/grammar/symbol"
	"github.com/kymerac/lalrgen/lexical"
)

// Grammar is a Builder's Finalize output: a fully resolved production set
// with an interned symbol table, ready for automaton construction. Nothing
// in this package ever mutates a Grammar after Finalize returns it.
type Grammar struct {
	name        string
	symTab      *symbol.Table
	productions *productionSet
	start       symbol.Symbol
	errorSymbol symbol.Symbol
	prec        *precedenceTable
	lexSpec     *lexical.Spec
}

// CompileOption configures a Compile run.
type CompileOption func(*compileConfig)

type compileConfig struct {
	report bool
}

// WithReport requests that Compile also render the human-readable
// automaton report (component E's describe-tooling output). Building it is
// skipped by default since most callers only want the runnable table.
func WithReport() CompileOption {
	return func(c *compileConfig) { c.report = true }
}

// Compile runs the full pipeline over a finalized Grammar: FIRST-set
// computation (component C's prerequisite), canonical LR(0) automaton
// construction (component C), LALR(1) lookahead propagation (component D),
// action/goto table compilation with conflict resolution (component E),
// and lexical-spec compilation via the external DFA engine (component F).
// It returns the emittable artifact, the number of warnings reported to
// sink (unresolved conflicts that fell back to the default rule, and
// symbols that turned out to be unreferenced), and, if requested, the
// diagnostic report; report is nil unless WithReport was passed.
func Compile(gram *Grammar, sink diag.Sink, opts ...CompileOption) (*artifact.CompiledGrammar, *artifact.Report, int, error) {
	cfg := &compileConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	nWarn := 0

	first, err := genFirstSet(gram.productions)
	if err != nil {
		return nil, nil, nWarn, fmt.Errorf("computing FIRST sets: %w", err)
	}

	lr0, err := genLR0Automaton(gram.productions, gram.start, gram.errorSymbol)
	if err != nil {
		return nil, nil, nWarn, fmt.Errorf("constructing LR(0) automaton: %w", err)
	}

	lalr, err := genLALRAutomaton(lr0, gram.productions, first)
	if err != nil {
		return nil, nil, nWarn, fmt.Errorf("propagating LALR(1) lookahead: %w", err)
	}

	symTabReader := gram.symTab.Reader()
	tb := &tableBuilder{
		automaton: lalr.automaton,
		prods:     gram.productions,
		termCount: symTabReader.TerminalCount(),
		nontCount: symTabReader.NonTerminalCount(),
		symTab:    symTabReader,
		prec:      gram.prec,
		sink:      sink,
	}
	tab, err := tb.build()
	if err != nil {
		return nil, nil, nWarn, fmt.Errorf("compiling parsing table: %w", err)
	}
	nWarn += tb.reportConflicts()

	var report *artifact.Report
	if cfg.report {
		report, err = tb.genReport(tab, gram)
		if err != nil {
			return nil, nil, nWarn, fmt.Errorf("rendering report: %w", err)
		}
	}

	compiledLex, err := lexical.Build(gram.name, gram.lexSpec, symTabReader)
	if err != nil {
		return nil, nil, nWarn, fmt.Errorf("compiling lexical specification: %w", err)
	}
	nWarn += reportUnusedSymbols(gram.lexSpec, sink)

	all := gram.productions.all()
	lhsSyms := make([]int, len(all)+1)
	altSymCounts := make([]int, len(all)+1)
	astEntries := make([][]int, len(all)+1)
	for _, p := range all {
		lhsSyms[p.num] = p.lhs.Num().Int()
		altSymCounts[p.num] = p.rhsLen()

		entry := make([]int, p.rhsLen())
		for i := range entry {
			entry[i] = i + 1
		}
		astEntries[p.num] = entry
	}

	action := make([]int, len(tab.action))
	for i, e := range tab.action {
		action[i] = int(e)
	}
	goTo := make([]int, len(tab.goTo))
	for i, e := range tab.goTo {
		goTo[i] = int(e)
	}

	compiled := &artifact.CompiledGrammar{
		Name: gram.name,
		Lexical: &artifact.LexicalSpecification{
			Lexer: "maleeni",
			Maleeni: &artifact.Maleeni{
				Spec:           compiledLex.Spec,
				KindToTerminal: compiledLex.KindToTerminal,
				TerminalToKind: compiledLex.TerminalToKind,
				Skip:           compiledLex.Skip,
			},
		},
		Table: &artifact.ParsingTable{
			Action:                  action,
			GoTo:                    goTo,
			StateCount:              tab.stateCount,
			InitialState:            tab.InitialState.Int(),
			StartProduction:         productionNumStart.Int(),
			LHSSymbols:              lhsSyms,
			AlternativeSymbolCounts: altSymCounts,
			Terminals:               symTabReader.TerminalTexts(),
			TerminalCount:           tab.terminalCount,
			NonTerminals:            symTabReader.NonTerminalTexts(),
			NonTerminalCount:        tab.nonTerminalCount,
			EOFSymbol:               symbol.SymbolEOF.Num().Int(),
			ErrorSymbol:             gram.errorSymbol.Num().Int(),
			ErrorTrapperStates:      tab.errorTrapperStates,
			RecoverProductions:      make([]int, len(all)+1),
		},
		Action: &artifact.ASTAction{Entries: astEntries},
	}

	return compiled, report, nWarn, nil
}

// reportUnusedSymbols reports diag.KindUnusedSymbol for every literal/regex
// lexSpec collected that no production body ever referenced — terminals
// declared only inside a %left/%right/%none group, say. It returns the
// number of warnings reported.
func reportUnusedSymbols(lexSpec *lexical.Spec, sink diag.Sink) int {
	n := 0
	for _, pattern := range lexSpec.Warnings() {
		sink.Report(&diag.SpecError{Kind: diag.KindUnusedSymbol, Args: []any{pattern}})
		n++
	}
	return n
}
