// Package artifact defines the JSON-serializable value a compile run
// produces: a self-contained compiled grammar with no back-references into
// the generator's internal state, ready to be written to disk or fed
// straight to the runtime parser driver.
package artifact

import mlspec "github.com/nihei9/maleeni/spec"

// CompiledGrammar is the complete output of one compile run.
type CompiledGrammar struct {
	Name     string                `json:"name"`
	Lexical  *LexicalSpecification `json:"lexical_specification"`
	Table    *ParsingTable         `json:"parsing_table"`
	Action   *ASTAction            `json:"ast_action"`
}

// LexicalSpecification names the external lexical collaborator and embeds
// whatever it produced; today that collaborator is always maleeni, but the
// field exists so a different regex/DFA engine could be swapped in without
// reshaping the rest of the artifact.
type LexicalSpecification struct {
	Lexer   string   `json:"lexer"`
	Maleeni *Maleeni `json:"maleeni"`
}

// Maleeni wraps the compiled DFA plus the index tables that translate one
// of its lexical "kinds" into this grammar's terminal symbol numbers.
type Maleeni struct {
	Spec           *mlspec.CompiledLexSpec `json:"spec"`
	KindToTerminal []int                   `json:"kind_to_terminal"`
	TerminalToKind []int                   `json:"terminal_to_kind"`
	Skip           []int                   `json:"skip"`
}

// ParsingTable is the dense action/goto table plus the reduce metadata the
// runtime driver needs to perform reductions (body length, head symbol).
type ParsingTable struct {
	Action                  []int    `json:"action"`
	GoTo                    []int    `json:"goto"`
	StateCount              int      `json:"state_count"`
	InitialState            int      `json:"initial_state"`
	StartProduction         int      `json:"start_production"`
	LHSSymbols              []int    `json:"lhs_symbols"`
	AlternativeSymbolCounts []int    `json:"alternative_symbol_counts"`
	Terminals               []string `json:"terminals"`
	TerminalCount           int      `json:"terminal_count"`
	NonTerminals            []string `json:"non_terminals"`
	NonTerminalCount        int      `json:"non_terminal_count"`
	EOFSymbol               int      `json:"eof_symbol"`
	ErrorSymbol             int      `json:"error_symbol"`
	ErrorTrapperStates      []int    `json:"error_trapper_states"`
	RecoverProductions      []int    `json:"recover_productions"`
}

// ASTAction carries, per production, the AST-shaping instruction the
// runtime driver applies on reduction: a positive entry keeps the child at
// that 1-based position, a negative entry splices in that child's own
// children (rule inlining).
type ASTAction struct {
	Entries [][]int `json:"entries"`
}

// Report is the optional, human- and machine-readable description of the
// compiled automaton: every state's kernel items, its transitions, and any
// conflicts the table compiler had to resolve. It is never required to run
// the parser; it exists for `describe` and for grammar authors debugging
// their own conflicts.
type Report struct {
	Terminals    []*Terminal    `json:"terminals"`
	NonTerminals []*NonTerminal `json:"non_terminals"`
	Productions  []*Production  `json:"productions"`
	States       []*State       `json:"states"`
}

type Terminal struct {
	Number        int    `json:"number"`
	Name          string `json:"name"`
	Precedence    int    `json:"prec"`
	Associativity string `json:"assoc"`
}

type NonTerminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

type Production struct {
	Number        int    `json:"number"`
	LHS           int    `json:"lhs"`
	RHS           []int  `json:"rhs"`
	ActionTag     string `json:"action_tag,omitempty"`
	Precedence    int    `json:"prec"`
	Associativity string `json:"assoc"`
}

type Item struct {
	Production int `json:"production"`
	Dot        int `json:"dot"`
}

type Transition struct {
	Symbol int `json:"symbol"`
	State  int `json:"state"`
}

type Reduce struct {
	LookAhead  []int `json:"look_ahead"`
	Production int   `json:"production"`
}

type SRConflict struct {
	Symbol            int  `json:"symbol"`
	State             int  `json:"state"`
	Production        int  `json:"production"`
	AdoptedState      *int `json:"adopted_state,omitempty"`
	AdoptedProduction *int `json:"adopted_production,omitempty"`
	ResolvedBy        int  `json:"resolved_by"`
}

type RRConflict struct {
	Symbol            int `json:"symbol"`
	Production1       int `json:"production_1"`
	Production2       int `json:"production_2"`
	AdoptedProduction int `json:"adopted_production"`
	ResolvedBy        int `json:"resolved_by"`
}

type State struct {
	Number     int           `json:"number"`
	Kernel     []*Item       `json:"kernel"`
	Shift      []*Transition `json:"shift"`
	Reduce     []*Reduce     `json:"reduce"`
	GoTo       []*Transition `json:"goto"`
	SRConflict []*SRConflict `json:"sr_conflict"`
	RRConflict []*RRConflict `json:"rr_conflict"`
}

// Conflict-resolution method codes, shared between SRConflict/RRConflict's
// ResolvedBy field and the table compiler that produces them.
const (
	ResolvedByPrec      = 1
	ResolvedByAssoc     = 2
	ResolvedByShift     = 3
	ResolvedByProdOrder = 4
)
