package frontend

import (
	"github.com/kymerac/lalrgen/diag"
	"github.com/kymerac/lalrgen/grammar"
	"github.com/kymerac/lalrgen/lexical"
)

const reservedErrorName = "error"

// Parse reads a grammar source and drives b through the builder's fluent
// API, implementing:
//
//	grammar    := IDENT "{" statement* "}"
//	statement  := assoc_stmt | ws_stmt | prod_stmt
//	assoc_stmt := ("%left"|"%right"|"%none") symbol* ";"
//	ws_stmt    := "%whitespace" REGEX ";"
//	prod_stmt  := IDENT ":" expr ( "|" expr )* ";"
//	expr       := symbol* precedence? action?
//	precedence := "%precedence" symbol
//	action     := "[" IDENT "]"
//	symbol     := "error" | LITERAL | REGEX | IDENT
//
// On any hard syntax error the parser reports it to sink and advances to
// end-of-input rather than trying to resynchronize mid-construct.
func Parse(src string, sink diag.Sink) *grammar.Builder {
	p := &parser{lex: newLexer(src, sink), sink: sink, b: grammar.NewBuilder(sink)}
	p.tok = p.lex.next()
	p.parseGrammar()
	return p.b
}

type parser struct {
	lex  *lexer
	sink diag.Sink
	b    *grammar.Builder
	tok  *token
}

func (p *parser) report(kind diag.ErrorKind, line, col int, args ...any) {
	p.sink.Report(&diag.SpecError{Kind: kind, Line: line, Column: col, Args: args})
}

func (p *parser) advance() *token {
	cur := p.tok
	p.tok = p.lex.next()
	return cur
}

// expect consumes the current token if it matches kind, reporting a syntax
// error and leaving the token stream untouched otherwise.
func (p *parser) expect(kind tokenKind, what string) *token {
	if p.tok.kind != kind {
		p.report(diag.KindSyntax, p.tok.line, p.tok.col, "expected "+what)
		return nil
	}
	return p.advance()
}

// skipToEOF drains the remaining token stream after a hard error, matching
// the "advance to end-of-input" recovery rule.
func (p *parser) skipToEOF() {
	for p.tok.kind != tokEOF {
		p.advance()
	}
}

func (p *parser) parseGrammar() {
	nameTok := p.expect(tokIdent, "a grammar name")
	if nameTok == nil {
		p.skipToEOF()
		return
	}
	p.b.Grammar(nameTok.text)

	if p.expect(tokLBrace, "'{'") == nil {
		p.skipToEOF()
		return
	}

	for p.tok.kind != tokRBrace && p.tok.kind != tokEOF {
		if !p.parseStatement() {
			p.skipToEOF()
			return
		}
	}
	p.expect(tokRBrace, "'}'")
}

func (p *parser) parseStatement() bool {
	switch {
	case p.tok.kind == tokDirective && (p.tok.text == "%left" || p.tok.text == "%right" || p.tok.text == "%none"):
		return p.parseAssocStmt()
	case p.tok.kind == tokDirective && p.tok.text == "%whitespace":
		return p.parseWhitespaceStmt()
	case p.tok.kind == tokIdent:
		return p.parseProdStmt()
	default:
		p.report(diag.KindSyntax, p.tok.line, p.tok.col, "expected a production, %left/%right/%none, or %whitespace")
		return false
	}
}

func (p *parser) parseAssocStmt() bool {
	dir := p.advance()
	switch dir.text {
	case "%left":
		p.b.Left()
	case "%right":
		p.b.Right()
	case "%none":
		p.b.None()
	}

	for p.tok.kind == tokIdent || p.tok.kind == tokLiteral || p.tok.kind == tokRegex {
		tok := p.advance()
		switch tok.kind {
		case tokLiteral:
			p.b.LiteralSymbol(tok.text, tok.line)
		case tokRegex:
			p.b.RegexSymbol(tok.text, tok.line)
		default:
			p.b.Symbol(tok.text, tok.line)
		}
	}
	if p.expect(tokSemi, "';'") == nil {
		return false
	}
	return true
}

func (p *parser) parseWhitespaceStmt() bool {
	p.advance() // %whitespace
	tok := p.expect(tokRegex, "a regular expression")
	if tok == nil {
		return false
	}
	p.b.Whitespace()
	p.b.WhitespaceRegex(tok.text, tok.line)
	if p.expect(tokSemi, "';'") == nil {
		return false
	}
	return true
}

func (p *parser) parseProdStmt() bool {
	head := p.advance()
	p.b.Production(head.text, head.line)

	if p.expect(tokColon, "':'") == nil {
		return false
	}

	if !p.parseExpr() {
		return false
	}
	for p.tok.kind == tokBar {
		p.advance()
		p.b.EndExpression(p.tok.line)
		if !p.parseExpr() {
			return false
		}
	}

	if p.expect(tokSemi, "';'") == nil {
		return false
	}
	p.b.EndProduction()
	return true
}

// parseExpr consumes symbol* precedence? action? — the body elements of a
// single alternative, stopping at '|', ';', or a hard error.
func (p *parser) parseExpr() bool {
	for p.tok.kind == tokIdent || p.tok.kind == tokLiteral || p.tok.kind == tokRegex {
		p.parseSymbolElement()
	}

	if p.tok.kind == tokDirective && p.tok.text == "%precedence" {
		p.advance()
		if p.tok.kind != tokIdent && p.tok.kind != tokLiteral && p.tok.kind != tokRegex {
			p.report(diag.KindSyntax, p.tok.line, p.tok.col, "expected a symbol after %precedence")
			return false
		}
		name, line := p.symbolTableName(p.advance())
		p.b.Precedence()
		p.b.Symbol(name, line)
	}

	if p.tok.kind == tokLBracket {
		p.advance()
		tag := p.expect(tokIdent, "an action identifier")
		if tag == nil {
			return false
		}
		if p.expect(tokRBracket, "']'") == nil {
			return false
		}
		p.b.Action(tag.text, tag.line)
	}

	return true
}

// parseSymbolElement appends one body-element symbol (error | LITERAL |
// REGEX | IDENT) to the alternative currently open.
func (p *parser) parseSymbolElement() {
	tok := p.advance()
	switch tok.kind {
	case tokLiteral:
		p.b.Literal(tok.text, tok.line)
	case tokRegex:
		p.b.Regex(tok.text, tok.line)
	case tokIdent:
		if tok.text == reservedErrorName {
			p.b.Error(tok.line)
		}
		p.b.Identifier(tok.text, tok.line)
	}
}

// symbolTableName resolves a symbol token to the exact name it will be
// interned under: a literal or regex maps to its synthetic lexical name (so
// a %left declaration naming the same text as a production body reaches
// the same terminal), an identifier or the reserved error keyword is used
// verbatim.
func (p *parser) symbolTableName(tok *token) (string, int) {
	switch tok.kind {
	case tokLiteral:
		return lexical.LiteralSymbolName(tok.text), tok.line
	case tokRegex:
		return lexical.RegexSymbolName(tok.text), tok.line
	default:
		return tok.text, tok.line
	}
}
