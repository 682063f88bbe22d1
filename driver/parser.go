package driver

import (
	"fmt"
	"io"

	mldriver "github.com/nihei9/maleeni/driver"

	"github.com/kymerac/lalrgen/artifact"
)

type Node struct {
	KindName string
	Text     string
	Row      int
	Col      int
	Children []*Node
}

func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	if node.Text != "" {
		fmt.Fprintf(w, "%v%v %#v\n", ruledLine, node.KindName, node.Text)
	} else {
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)
	}

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

// SyntaxError records one unexpected token the parser couldn't shift or
// reduce, along with what it would have accepted instead.
type SyntaxError struct {
	Row               int
	Col               int
	Message           string
	Token             *mldriver.Token
	ExpectedTerminals []string
}

type ParserOption func(p *Parser) error

func MakeAST() ParserOption {
	return func(p *Parser) error {
		p.makeAST = true
		return nil
	}
}

func MakeCST() ParserOption {
	return func(p *Parser) error {
		p.makeCST = true
		return nil
	}
}

type semanticFrame struct {
	cst *Node
	ast *Node
}

// Parser is the table-driven shift/reduce engine: it interprets the
// action/goto arrays of a compiled grammar, never builds or modifies them.
type Parser struct {
	tab        *tableView
	lex        *mldriver.Lexer
	stateStack []int
	semStack   []*semanticFrame
	cst        *Node
	ast        *Node
	makeAST    bool
	makeCST    bool
	needSemAct bool
	onError    bool
	shiftCount int
	synErrs    []*SyntaxError
}

func NewParser(gram *artifact.CompiledGrammar, src io.Reader, opts ...ParserOption) (*Parser, error) {
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(gram.Lexical.Maleeni.Spec), src)
	if err != nil {
		return nil, err
	}

	p := &Parser{
		tab:        newTableView(gram),
		lex:        lex,
		stateStack: []int{},
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	p.needSemAct = p.makeAST || p.makeCST

	return p, nil
}

func (p *Parser) Parse() error {
	p.push(p.tab.initialState())
	tok, err := p.nextToken()
	if err != nil {
		return err
	}

ACTION_LOOP:
	for {
		act := p.lookupAction(tok)
		switch {
		case act < 0: // Shift
			nextState := act * -1

			if p.onError {
				// The parser leaves the error state on the first shift
				// after it has already shifted three tokens since trapping
				// the error; tokens skipped in the meantime do not reset
				// the count.
				if p.shiftCount < 3 {
					p.shiftCount++
				} else {
					p.onError = false
					p.shiftCount = 0
				}
			}

			p.shift(nextState)

			p.actOnShift(tok)

			tok, err = p.nextToken()
			if err != nil {
				return err
			}
		case act > 0: // Reduce
			prodNum := act

			if p.onError && p.tab.recovers(prodNum) {
				p.onError = false
				p.shiftCount = 0
			}

			accepted := p.reduce(prodNum)
			if accepted {
				p.actOnAccepting()

				return nil
			}

			p.actOnReduction(prodNum)
		default: // Error
			if p.onError {
				tok, err = p.nextToken()
				if err != nil {
					return err
				}
				if tok.EOF {
					return nil
				}

				continue ACTION_LOOP
			}

			p.synErrs = append(p.synErrs, &SyntaxError{
				Row:               tok.Row,
				Col:               tok.Col,
				Message:           "unexpected token",
				Token:             tok,
				ExpectedTerminals: p.searchLookahead(p.top()),
			})

			ok := p.trapError()
			if !ok {
				return nil
			}

			p.onError = true
			p.shiftCount = 0

			act, err := p.lookupActionOnError()
			if err != nil {
				return err
			}

			p.shift(act * -1)

			p.actOnError()
		}
	}
}

func (p *Parser) nextToken() (*mldriver.Token, error) {
	for {
		// The kind ID of an invalid token is always 0, and the parsing
		// table never carries an entry for kind ID 0, so an invalid token
		// surfaces as an ordinary syntax error without special-casing it
		// here.
		tok, err := p.lex.Next()
		if err != nil {
			return nil, err
		}

		if !tok.EOF && p.tab.skip(tok.KindID.Int()) {
			continue
		}

		return tok, nil
	}
}

func (p *Parser) tokenToTerminal(tok *mldriver.Token) int {
	if tok.EOF {
		return p.tab.eofSymbol()
	}

	return p.tab.kindToTerminal(tok.KindID.Int())
}

func (p *Parser) lookupAction(tok *mldriver.Token) int {
	term := p.tokenToTerminal(tok)
	return p.tab.action(p.top(), term)
}

func (p *Parser) lookupActionOnError() (int, error) {
	errSym := p.tab.errorSymbol()
	act := p.tab.action(p.top(), errSym)
	if act >= 0 {
		return 0, fmt.Errorf("an entry must be a shift action by the error symbol; entry: %v, state: %v, symbol: %v", act, p.top(), p.tab.terminalName(errSym))
	}

	return act, nil
}

func (p *Parser) shift(nextState int) {
	p.push(nextState)
}

func (p *Parser) reduce(prodNum int) bool {
	lhs := p.tab.lhs(prodNum)
	if lhs == p.tab.lhs(p.tab.startProduction()) {
		return true
	}
	n := p.tab.altLen(prodNum)
	p.pop(n)
	nextState := p.tab.goTo(p.top(), lhs)
	p.push(nextState)
	return false
}

func (p *Parser) trapError() bool {
	for {
		if p.tab.isErrorTrapper(p.top()) {
			return true
		}

		if p.top() != p.tab.initialState() {
			p.pop(1)
			if p.needSemAct {
				p.semStack = p.semStack[:len(p.semStack)-1]
			}
		} else {
			return false
		}
	}
}

func (p *Parser) actOnShift(tok *mldriver.Token) {
	if !p.needSemAct {
		return
	}

	term := p.tokenToTerminal(tok)

	var ast *Node
	var cst *Node
	if p.makeAST {
		ast = &Node{
			KindName: p.tab.terminalName(term),
			Text:     string(tok.Lexeme),
			Row:      tok.Row,
			Col:      tok.Col,
		}
	}
	if p.makeCST {
		cst = &Node{
			KindName: p.tab.terminalName(term),
			Text:     string(tok.Lexeme),
			Row:      tok.Row,
			Col:      tok.Col,
		}
	}

	p.semStack = append(p.semStack, &semanticFrame{
		cst: cst,
		ast: ast,
	})
}

func (p *Parser) actOnReduction(prodNum int) {
	if !p.needSemAct {
		return
	}

	lhs := p.tab.lhs(prodNum)

	// When an alternative is empty, n is 0 and handle is an empty slice.
	n := p.tab.altLen(prodNum)
	handle := p.semStack[len(p.semStack)-n:]

	var ast *Node
	var cst *Node
	if p.makeAST {
		act := p.tab.astAction(prodNum)
		var children []*Node
		if act != nil {
			// Count the children up front to avoid repeated slice growth.
			{
				l := 0
				for _, e := range act {
					if e > 0 {
						l++
					} else {
						offset := e*-1 - 1
						l += len(handle[offset].ast.Children)
					}
				}

				children = make([]*Node, l)
			}

			i := 0
			for _, e := range act {
				if e > 0 {
					offset := e - 1
					children[i] = handle[offset].ast
					i++
				} else {
					offset := e*-1 - 1
					for _, c := range handle[offset].ast.Children {
						children[i] = c
						i++
					}
				}
			}
		} else {
			// With no AST action the driver builds a node shaped like the
			// CST.
			children = make([]*Node, len(handle))
			for i, f := range handle {
				children[i] = f.ast
			}
		}

		ast = &Node{
			KindName: p.tab.nonTerminalName(lhs),
			Children: children,
		}
	}
	if p.makeCST {
		children := make([]*Node, len(handle))
		for i, f := range handle {
			children[i] = f.cst
		}

		cst = &Node{
			KindName: p.tab.nonTerminalName(lhs),
			Children: children,
		}
	}

	p.semStack = p.semStack[:len(p.semStack)-n]
	p.semStack = append(p.semStack, &semanticFrame{
		cst: cst,
		ast: ast,
	})
}

func (p *Parser) actOnAccepting() {
	if !p.needSemAct {
		return
	}

	top := p.semStack[len(p.semStack)-1]
	p.cst = top.cst
	p.ast = top.ast
}

func (p *Parser) actOnError() {
	if !p.needSemAct {
		return
	}

	errSym := p.tab.errorSymbol()

	var ast *Node
	var cst *Node
	if p.makeAST {
		ast = &Node{KindName: p.tab.terminalName(errSym)}
	}
	if p.makeCST {
		cst = &Node{KindName: p.tab.terminalName(errSym)}
	}

	p.semStack = append(p.semStack, &semanticFrame{
		cst: cst,
		ast: ast,
	})
}

func (p *Parser) top() int {
	return p.stateStack[len(p.stateStack)-1]
}

func (p *Parser) push(state int) {
	p.stateStack = append(p.stateStack, state)
}

func (p *Parser) pop(n int) {
	p.stateStack = p.stateStack[:len(p.stateStack)-n]
}

func (p *Parser) CST() *Node {
	return p.cst
}

func (p *Parser) AST() *Node {
	return p.ast
}

func (p *Parser) SyntaxErrors() []*SyntaxError {
	return p.synErrs
}

func (p *Parser) searchLookahead(state int) []string {
	kinds := []string{}
	termCount := p.tab.terminalCount()
	for term := 0; term < termCount; term++ {
		if p.tab.action(state, term) == 0 {
			continue
		}

		// The error symbol itself is never offered as a look-ahead symbol
		// since users can't type it intentionally.
		if term == p.tab.errorSymbol() {
			continue
		}

		if term == p.tab.eofSymbol() {
			kinds = append(kinds, "<eof>")
			continue
		}

		kindID := p.tab.terminalToKind(term)
		kinds = append(kinds, p.tab.g.Lexical.Maleeni.Spec.KindNames[kindID].String())
	}

	return kinds
}
