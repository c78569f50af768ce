package driver

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrtab.driver'.
func tracer() tracing.Trace {
	return tracing.Select("lrtab.driver")
}

type SyntaxError struct {
	Row               int
	Col               int
	Message           string
	Token             VToken
	ExpectedTerminals []string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v:%v: %v: %q; expected: %v", e.Row, e.Col, e.Message, e.Token.Lexeme(), e.ExpectedTerminals)
}

type ParserOption func(p *Parser) error

// SemanticAction registers a set of semantic actions the parser calls.
func SemanticAction(semAct SemanticActionSet) ParserOption {
	return func(p *Parser) error {
		p.semAct = semAct
		return nil
	}
}

// Parser is a shift-reduce engine driven by a compiled parsing table. It stops at the first
// syntax error.
type Parser struct {
	toks       TokenStream
	gram       Grammar
	stateStack []int
	semAct     SemanticActionSet
	synErrs    []*SyntaxError
}

func NewParser(gram Grammar, toks TokenStream, opts ...ParserOption) (*Parser, error) {
	p := &Parser{
		toks: toks,
		gram: gram,
	}

	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Parse runs the parser until it accepts the input or meets a syntax error. A syntax error is not
// returned as an error; SyntaxErrors returns it.
func (p *Parser) Parse() error {
	p.push(p.gram.InitialState())
	tok, err := p.toks.Next()
	if err != nil {
		return err
	}

	for {
		act := p.lookupAction(tok)
		switch {
		case act < 0: // Shift
			nextState := act * -1
			tracer().Debugf("shift %v; state: %v -> %v", p.gram.Terminal(p.tokenToTerminal(tok)), p.top(), nextState)
			p.push(nextState)

			// The EOF token stays as the lookahead after it has been shifted.
			if tok.EOF() {
				continue
			}

			if p.semAct != nil {
				p.semAct.Shift(tok)
			}

			tok, err = p.toks.Next()
			if err != nil {
				return err
			}
		case act > 0: // Reduce
			prodNum := act
			if prodNum == p.gram.StartProduction() {
				tracer().Debugf("accept; state: %v", p.top())
				if p.semAct != nil {
					p.semAct.Accept()
				}
				return nil
			}

			p.reduce(prodNum)
			tracer().Debugf("reduce %v; state: %v", prodNum, p.top())
			if p.semAct != nil {
				p.semAct.Reduce(prodNum)
			}
		default: // Error
			row, col := tok.Position()
			p.synErrs = append(p.synErrs, &SyntaxError{
				Row:               row,
				Col:               col,
				Message:           "unexpected token",
				Token:             tok,
				ExpectedTerminals: p.searchLookahead(p.top()),
			})
			if p.semAct != nil {
				p.semAct.MissError(tok)
			}
			return nil
		}
	}
}

func (p *Parser) tokenToTerminal(tok VToken) int {
	if tok.EOF() {
		return p.gram.EOF()
	}

	return tok.TerminalID()
}

func (p *Parser) lookupAction(tok VToken) int {
	return p.gram.Action(p.top(), p.tokenToTerminal(tok))
}

func (p *Parser) reduce(prodNum int) {
	lhs := p.gram.LHS(prodNum)
	n := p.gram.AlternativeSymbolCount(prodNum)
	p.pop(n)
	nextState := p.gram.GoTo(p.top(), lhs)
	p.push(nextState)
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

func (p *Parser) SyntaxErrors() []*SyntaxError {
	return p.synErrs
}

// searchLookahead returns the terminals a state can act on, in the order of their numbers. A
// terminal having an alias is shown as the alias.
func (p *Parser) searchLookahead(state int) []string {
	kinds := []string{}
	termCount := p.gram.TerminalCount()
	for term := 0; term < termCount; term++ {
		if p.gram.Action(state, term) == 0 {
			continue
		}

		if term == p.gram.EOF() {
			kinds = append(kinds, "<eof>")
			continue
		}

		if alias := p.gram.TerminalAlias(term); alias != "" {
			kinds = append(kinds, alias)
		} else {
			kinds = append(kinds, p.gram.Terminal(term))
		}
	}

	return kinds
}
