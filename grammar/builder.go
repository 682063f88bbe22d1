package grammar

import (
	"github.com/kymerac/lalrgen/diag"
	"github.com/kymerac/lalrgen/lexical"
)

// builderState is the explicit finite-state machine the fluent Builder
// API below is implemented as, rather than inferring the caller's intent
// from call-operator tricks: the production-building methods (Production,
// Identifier/Literal/Regex, EndExpression, EndProduction, and Symbol after
// Precedence) first check they are being called from a state that allows
// them, and report diag.KindSyntax otherwise. Grammar, Left/Right/None,
// Whitespace/WhitespaceRegex, Precedence and Error do not check the state.
type builderState int

const (
	stateAwaitingHead builderState = iota
	stateInBody
	stateAwaitingAlternative
	stateAwaitingPrecSymbol
)

// elementKind distinguishes the three things a production body element can
// be: a reference to another production's head, an inline literal string,
// or an inline regular expression.
type elementKind int

const (
	elemIdentifier elementKind = iota
	elemLiteral
	elemRegex
)

type bodyElement struct {
	kind elementKind
	text string
	line int
}

type altEvent struct {
	elements []bodyElement
	line     int
	tag      string
	prec     string // explicit %precedence symbol text, if any
}

type prodEvent struct {
	head string
	line int
	alts []altEvent
}

// precTermKind distinguishes a plain identifier term named in a precedence
// group from a literal/regex term, which additionally carries the raw
// pattern text so it can be registered with the lexical spec even when no
// production body ever references it.
type precTermKind int

const (
	precTermIdent precTermKind = iota
	precTermLiteral
	precTermRegex
)

type precTerm struct {
	kind    precTermKind
	name    string // resolved symbol-table name
	pattern string // raw literal/regex text; unset for precTermIdent
}

type precGroup struct {
	assoc assoc
	level int
	terms []precTerm
}

// Builder assembles a Grammar from a sequence of fluent calls. It is the
// sole entry point both the hand-written front-end (component B) and tests
// drive; the rest of the generator never sees an AST, only the Grammar
// this produces.
type Builder struct {
	sink diag.Sink

	state builderState
	name  string

	prods       []*prodEvent
	curProd     *prodEvent
	curAlt      *altEvent
	whitespace  []bodyElement
	precGroups  []*precGroup
	curPrecGroup *precGroup
	errorLine   int
	sawError    bool
}

func NewBuilder(sink diag.Sink) *Builder {
	return &Builder{sink: sink, state: stateAwaitingHead}
}

func (b *Builder) report(kind diag.ErrorKind, line int, args ...any) {
	b.sink.Report(&diag.SpecError{Kind: kind, Line: line, Args: args})
}

// Grammar names the grammar being built. It may be called at any time and
// does not affect the FSM state.
func (b *Builder) Grammar(name string) *Builder {
	b.name = name
	return b
}

// Production opens a new production with the given head identifier.
func (b *Builder) Production(head string, line int) *Builder {
	if b.state != stateAwaitingHead {
		b.report(diag.KindSyntax, line, "unexpected production header")
		return b
	}
	b.curProd = &prodEvent{head: head, line: line}
	b.curAlt = &altEvent{line: line}
	b.state = stateInBody
	return b
}

// Identifier appends a reference to another production's head to the
// current alternative.
func (b *Builder) Identifier(text string, line int) *Builder {
	return b.appendElement(elemIdentifier, text, line)
}

// Literal appends an inline fixed-string terminal to the current
// alternative.
func (b *Builder) Literal(text string, line int) *Builder {
	return b.appendElement(elemLiteral, text, line)
}

// Regex appends an inline regular-expression terminal to the current
// alternative.
func (b *Builder) Regex(text string, line int) *Builder {
	return b.appendElement(elemRegex, text, line)
}

func (b *Builder) appendElement(kind elementKind, text string, line int) *Builder {
	if b.state != stateInBody && b.state != stateAwaitingAlternative {
		b.report(diag.KindSyntax, line, "element outside a production body")
		return b
	}
	b.state = stateInBody
	b.curAlt.elements = append(b.curAlt.elements, bodyElement{kind: kind, text: text, line: line})
	return b
}

// EndExpression closes the current alternative and opens a new one (the
// grammar source's `|`).
func (b *Builder) EndExpression(line int) *Builder {
	if b.state != stateInBody {
		b.report(diag.KindSyntax, line, "unexpected alternative separator")
		return b
	}
	b.curProd.alts = append(b.curProd.alts, *b.curAlt)
	b.curAlt = &altEvent{line: line}
	b.state = stateAwaitingAlternative
	return b
}

// Action tags the alternative currently open with an opaque action
// identifier, carried through to the artifact unevaluated.
func (b *Builder) Action(tag string, line int) *Builder {
	if b.curAlt == nil {
		b.report(diag.KindSyntax, line, "action outside an alternative")
		return b
	}
	b.curAlt.tag = tag
	return b
}

// EndProduction closes the production opened by the most recent Production
// call.
func (b *Builder) EndProduction() *Builder {
	if (b.state != stateInBody && b.state != stateAwaitingAlternative) || b.curProd == nil {
		b.report(diag.KindSyntax, 0, "unexpected end of production")
		return b
	}
	b.curProd.alts = append(b.curProd.alts, *b.curAlt)
	b.prods = append(b.prods, b.curProd)
	b.curProd = nil
	b.curAlt = nil
	b.state = stateAwaitingHead
	return b
}

// Whitespace begins a %whitespace declaration; the skip pattern itself is
// recorded by the following WhitespaceRegex call (a Regex call here would
// be reported as an element outside a production body).
func (b *Builder) Whitespace() *Builder {
	b.state = stateAwaitingHead // whitespace regex is recorded via WhitespaceRegex below
	return b
}

// WhitespaceRegex records one %whitespace pattern. Split from Whitespace
// so the front-end can call Regex's lexical counterpart without the
// builder needing a second body-element mode.
func (b *Builder) WhitespaceRegex(text string, line int) *Builder {
	b.whitespace = append(b.whitespace, bodyElement{kind: elemRegex, text: text, line: line})
	return b
}

// Left, Right and None open a new precedence group at the next (higher)
// precedence level, exactly mirroring yacc's %left/%right/%none ordering:
// declarations later in the source bind tighter.
func (b *Builder) Left() *Builder  { return b.openPrecGroup(assocLeft) }
func (b *Builder) Right() *Builder { return b.openPrecGroup(assocRight) }
func (b *Builder) None() *Builder  { return b.openPrecGroup(assocNone) }

func (b *Builder) openPrecGroup(a assoc) *Builder {
	b.curPrecGroup = &precGroup{assoc: a, level: len(b.precGroups) + precMin}
	b.precGroups = append(b.precGroups, b.curPrecGroup)
	return b
}

// Precedence begins a %precedence directive whose following Symbol calls
// assign a production's explicit precedence override.
func (b *Builder) Precedence() *Builder {
	b.state = stateAwaitingPrecSymbol
	return b
}

// Symbol names a terminal within the current %left/%right/%none group, or
// (after Precedence()) the override terminal for the alternative currently
// open.
func (b *Builder) Symbol(text string, line int) *Builder {
	if b.state == stateAwaitingPrecSymbol {
		if b.curAlt == nil {
			b.report(diag.KindSyntax, line, "precedence override outside an alternative")
		} else {
			b.curAlt.prec = text
		}
		b.state = stateInBody
		return b
	}
	return b.appendPrecTerm(precTermIdent, text, "", line)
}

// LiteralSymbol names a literal terminal within the current %left/%right/
// %none group, the precedence-declaration counterpart to Literal.
func (b *Builder) LiteralSymbol(text string, line int) *Builder {
	return b.appendPrecTerm(precTermLiteral, lexical.LiteralSymbolName(text), text, line)
}

// RegexSymbol is LiteralSymbol's counterpart for an inline regular
// expression named within a precedence group.
func (b *Builder) RegexSymbol(text string, line int) *Builder {
	return b.appendPrecTerm(precTermRegex, lexical.RegexSymbolName(text), text, line)
}

func (b *Builder) appendPrecTerm(kind precTermKind, name, pattern string, line int) *Builder {
	if b.curPrecGroup == nil {
		b.report(diag.KindSyntax, line, "symbol declared outside a precedence group")
		return b
	}
	b.curPrecGroup.terms = append(b.curPrecGroup.terms, precTerm{kind: kind, name: name, pattern: pattern})
	return b
}

// Error marks the reserved error pseudo-terminal as present in this
// grammar's lexical/symbol universe so productions may reference it.
func (b *Builder) Error(line int) *Builder {
	b.sawError = true
	b.errorLine = line
	return b
}
