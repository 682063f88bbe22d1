package driver

import (
	"io"

	mldriver "github.com/nihei9/maleeni/driver"

	"github.com/kymerac/lalrgen/artifact"
)

// VToken is the token shape the parser and its semantic actions consume,
// independent of whichever lexer produced it.
type VToken interface {
	TerminalID() int
	Lexeme() []byte
	EOF() bool
	Invalid() bool
	Position() (int, int)
}

// TokenStream yields VTokens one at a time, translating the lexer's kind
// IDs into this grammar's terminal numbers as it goes.
type TokenStream interface {
	Next() (VToken, error)
}

type vToken struct {
	terminalID int
	tok        *mldriver.Token
}

func (t *vToken) TerminalID() int {
	return t.terminalID
}

func (t *vToken) Lexeme() []byte {
	return t.tok.Lexeme
}

func (t *vToken) EOF() bool {
	return t.tok.EOF
}

func (t *vToken) Invalid() bool {
	return t.tok.Invalid
}

func (t *vToken) Position() (int, int) {
	return t.tok.Row, t.tok.Col
}

type tokenStream struct {
	lex            *mldriver.Lexer
	kindToTerminal []int
}

// NewTokenStream builds a standalone tokenizer over src using g's compiled
// lexical specification. The main Parser drives its own lexer internally;
// this entry point exists for callers that only want tokens — a test
// fixture replaying a source file kind by kind, for instance.
func NewTokenStream(g *artifact.CompiledGrammar, src io.Reader) (TokenStream, error) {
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(g.Lexical.Maleeni.Spec), src)
	if err != nil {
		return nil, err
	}

	return &tokenStream{
		lex:            lex,
		kindToTerminal: g.Lexical.Maleeni.KindToTerminal,
	}, nil
}

func (l *tokenStream) Next() (VToken, error) {
	tok, err := l.lex.Next()
	if err != nil {
		return nil, err
	}
	return &vToken{
		terminalID: l.kindToTerminal[tok.KindID],
		tok:        tok,
	}, nil
}
