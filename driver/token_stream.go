package driver

import (
	"io"

	spec "github.com/nihei9/lrtab/spec/grammar"
	mldriver "github.com/nihei9/maleeni/driver"
)

// VToken is a token the parser consumes.
type VToken interface {
	// TerminalID returns the terminal number of the token. An invalid token has 0.
	TerminalID() int
	Lexeme() []byte
	EOF() bool
	Invalid() bool
	Position() (int, int)
}

// TokenStream supplies tokens. Once it has returned an EOF token, it keeps returning EOF tokens.
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
	skip           []int
	eof            *vToken
}

// NewTokenStream returns a token stream over a maleeni lexer. Tokens of skipped kinds never
// reach the parser.
func NewTokenStream(g *spec.CompiledGrammar, src io.Reader) (TokenStream, error) {
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(g.LexicalSpecification.Maleeni.Spec), src)
	if err != nil {
		return nil, err
	}

	return &tokenStream{
		lex:            lex,
		kindToTerminal: g.LexicalSpecification.Maleeni.KindToTerminal,
		skip:           g.LexicalSpecification.Maleeni.Skip,
	}, nil
}

func (l *tokenStream) Next() (VToken, error) {
	if l.eof != nil {
		return l.eof, nil
	}
	for {
		tok, err := l.lex.Next()
		if err != nil {
			return nil, err
		}
		if !tok.EOF && !tok.Invalid && l.skip[tok.KindID] > 0 {
			continue
		}

		t := &vToken{
			tok: tok,
		}
		if !tok.Invalid && !tok.EOF {
			t.terminalID = l.kindToTerminal[tok.KindID]
		}
		if tok.EOF {
			l.eof = t
		}
		return t, nil
	}
}
