package grammar

import (
	"fmt"

	"github.com/kymerac/lalrgen/diag"
	"github.com/kymerac/lalrgen/grammar/symbol"
	"github.com/kymerac/lalrgen/lexical"
)

const reservedErrorName = "error"

// Finalize turns the sequence of builder events into a *Grammar: it
// resolves every identifier against a declared production head (anything
// else is an undefined-symbol error), interns every distinct literal/regex
// text as its own anonymous terminal, augments the grammar with a start
// production S' → S, assigns dense production numbers, and derives
// precedence for every production from its rightmost terminal unless an
// explicit override was given.
//
// It returns the built Grammar and the number of errors reported to sink;
// callers must not proceed to Compile when the count is non-zero.
func (b *Builder) Finalize() (*Grammar, int) {
	errCountBefore := 0
	if c, ok := b.sink.(*diag.Collector); ok {
		errCountBefore = c.ErrorCount()
	}

	if len(b.prods) == 0 {
		b.report(diag.KindNoProduction, 0)
		return nil, countErrors(b.sink, errCountBefore)
	}

	symTab := symbol.NewTable()
	w := symTab.Writer()

	start := w.DeclareStart(b.prods[0].head + "'")
	headSyms := map[string]symbol.Symbol{}
	for _, p := range b.prods {
		if _, ok := headSyms[p.head]; ok {
			continue
		}
		sym, err := w.InternNonTerminal(p.head)
		if err != nil {
			b.report(diag.KindInternalLimit, 0, err)
			return nil, countErrors(b.sink, errCountBefore)
		}
		headSyms[p.head] = sym
	}

	errSym := symbol.SymbolNil
	if b.sawError {
		sym, err := w.InternTerminal(reservedErrorName)
		if err != nil {
			b.report(diag.KindInternalLimit, b.errorLine, err)
			return nil, countErrors(b.sink, errCountBefore)
		}
		errSym = sym
	}

	prods := newProductionSet()
	prec := newPrecedenceTable()
	lexSpec := lexical.NewSpec()

	for level, group := range b.precGroups {
		for _, term := range group.terms {
			sym, err := w.InternTerminal(term.name)
			if err != nil {
				b.report(diag.KindInternalLimit, 0, err)
				continue
			}
			prec.declareTerminal(sym, level+precMin, group.assoc)

			switch term.kind {
			case precTermLiteral:
				lexSpec.AddLiteral(sym, term.pattern)
			case precTermRegex:
				lexSpec.AddRegex(sym, term.pattern)
			}
		}
	}

	for _, ws := range b.whitespace {
		lexSpec.AddWhitespace(ws.text)
	}

	resolveElement := func(e bodyElement) (symbol.Symbol, error) {
		switch e.kind {
		case elemIdentifier:
			if sym, ok := headSyms[e.text]; ok {
				return sym, nil
			}
			if e.text == reservedErrorName && !errSym.IsNil() {
				return errSym, nil
			}
			b.report(diag.KindUndefinedSymbol, e.line, e.text)
			return symbol.SymbolNil, fmt.Errorf("undefined symbol: %v", e.text)
		case elemLiteral:
			sym, err := w.InternTerminal(lexical.LiteralSymbolName(e.text))
			if err != nil {
				return symbol.SymbolNil, err
			}
			lexSpec.AddLiteral(sym, e.text)
			lexSpec.MarkUsed(sym)
			return sym, nil
		case elemRegex:
			sym, err := w.InternTerminal(lexical.RegexSymbolName(e.text))
			if err != nil {
				return symbol.SymbolNil, err
			}
			lexSpec.AddRegex(sym, e.text)
			lexSpec.MarkUsed(sym)
			return sym, nil
		default:
			return symbol.SymbolNil, fmt.Errorf("unknown element kind")
		}
	}

	for _, pe := range b.prods {
		head := headSyms[pe.head]

		for _, alt := range pe.alts {
			rhs := make([]symbol.Symbol, 0, len(alt.elements))
			ok := true
			for _, e := range alt.elements {
				sym, err := resolveElement(e)
				if err != nil {
					ok = false
					continue
				}
				rhs = append(rhs, sym)
			}
			if !ok {
				continue
			}

			var precSym symbol.Symbol
			if alt.prec != "" {
				if sym, ok := symTab.Reader().ToSymbol(alt.prec); ok {
					precSym = sym
				} else {
					b.report(diag.KindUndefinedSymbol, alt.line, alt.prec)
				}
			}

			prod, err := newProduction(head, rhs)
			if err != nil {
				b.report(diag.KindInternalLimit, pe.line, err)
				continue
			}
			prod.actionTag = alt.tag
			prod.precSym = precSym
			if !prods.append(prod) {
				b.report(diag.KindDuplicateProduction, pe.line, pe.head)
				continue
			}
		}
	}

	// Augment with S' → S, the sole production of the start symbol.
	augmented, err := newProduction(start, []symbol.Symbol{headSyms[b.prods[0].head]})
	if err != nil {
		b.report(diag.KindInternalLimit, 0, err)
		return nil, countErrors(b.sink, errCountBefore)
	}
	prods.append(augmented)

	prec.deriveProductionPrecedence(prods)

	if countErrors(b.sink, errCountBefore) > 0 {
		return nil, countErrors(b.sink, errCountBefore)
	}

	return &Grammar{
		name:        b.name,
		symTab:      symTab,
		productions: prods,
		start:       start,
		errorSymbol: errSym,
		prec:        prec,
		lexSpec:     lexSpec,
	}, countErrors(b.sink, errCountBefore)
}

func countErrors(sink diag.Sink, before int) int {
	c, ok := sink.(*diag.Collector)
	if !ok {
		return 0
	}
	return c.ErrorCount() - before
}
