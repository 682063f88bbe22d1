// Package lexical is the adapter between the grammar's declared terminals
// and the external regex-to-DFA compiler that turns them into a runnable
// lexer. It never implements its own regex engine; that concern is
// deliberately delegated to github.com/nihei9/maleeni.
package lexical

import (
	"fmt"

	"github.com/kymerac/lalrgen/grammar/symbol"
)

type entryKind int

const (
	entryLiteral entryKind = iota
	entryRegex
	entryWhitespace
)

type entry struct {
	sym     symbol.Symbol // SymbolNil for a whitespace/skip entry
	kind    entryKind
	pattern string
	used    bool
}

// Spec collects the lexical patterns a grammar declares — literal and
// regex terminals plus %whitespace skip patterns — in declaration order,
// so the adapter can hand them to the external compiler in a stable
// sequence and so unreferenced patterns can be reported as warnings.
type Spec struct {
	entries    []*entry
	nextLit    int
	nextRegex  int
	nextWS     int
	byLiteral  map[string]symbol.Symbol
	byRegex    map[string]symbol.Symbol
}

func NewSpec() *Spec {
	return &Spec{
		byLiteral: map[string]symbol.Symbol{},
		byRegex:   map[string]symbol.Symbol{},
	}
}

// LiteralSymbolName produces the synthetic terminal name a literal's exact
// text maps to, so two identical literals ('+' appearing twice, say)
// intern to the same terminal symbol instead of two distinct ones.
func LiteralSymbolName(text string) string {
	return fmt.Sprintf("__lit_%x", []byte(text))
}

// RegexSymbolName is LiteralSymbolName's counterpart for inline regex
// terminals.
func RegexSymbolName(text string) string {
	return fmt.Sprintf("__re_%x", []byte(text))
}

func (s *Spec) AddLiteral(sym symbol.Symbol, text string) {
	if _, ok := s.byLiteral[text]; ok {
		return
	}
	s.byLiteral[text] = sym
	s.entries = append(s.entries, &entry{sym: sym, kind: entryLiteral, pattern: text})
}

func (s *Spec) AddRegex(sym symbol.Symbol, text string) {
	if _, ok := s.byRegex[text]; ok {
		return
	}
	s.byRegex[text] = sym
	s.entries = append(s.entries, &entry{sym: sym, kind: entryRegex, pattern: text})
}

func (s *Spec) AddWhitespace(text string) {
	s.entries = append(s.entries, &entry{kind: entryWhitespace, pattern: text})
}

// MarkUsed records that a production body actually references the
// terminal built from this literal/regex text, so Warnings can report
// dead lexical entries.
func (s *Spec) MarkUsed(sym symbol.Symbol) {
	for _, e := range s.entries {
		if e.sym == sym {
			e.used = true
		}
	}
}

// Warnings returns the declared literal/regex text of every entry that no
// production ever referenced.
func (s *Spec) Warnings() []string {
	var out []string
	for _, e := range s.entries {
		if e.kind == entryWhitespace || e.used {
			continue
		}
		out = append(out, e.pattern)
	}
	return out
}
