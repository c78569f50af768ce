package spec

import (
	"strings"
	"sync"

	verr "github.com/nihei9/lrtab/error"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

type tokenKind string

const (
	tokenKindID        = tokenKind("id")
	tokenKindLiteral   = tokenKind("literal")
	tokenKindPattern   = tokenKind("pattern")
	tokenKindColon     = tokenKind(":")
	tokenKindOr        = tokenKind("|")
	tokenKindSemicolon = tokenKind(";")
	tokenKindDirective = tokenKind("directive")
	tokenKindUnclosed  = tokenKind("unclosed")
	tokenKindEOF       = tokenKind("eof")
)

// lexmachine identifies token types by integers; a token type is an index of this slice.
var tokenKinds = []tokenKind{
	tokenKindID,
	tokenKindLiteral,
	tokenKindPattern,
	tokenKindColon,
	tokenKindOr,
	tokenKindSemicolon,
	tokenKindDirective,
	tokenKindUnclosed,
}

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

var (
	lexerOnce sync.Once
	lexerDFA  *lexmachine.Lexer
	lexerErr  error
)

func compiledLexer() (*lexmachine.Lexer, error) {
	lexerOnce.Do(func() {
		l := lexmachine.NewLexer()
		l.Add([]byte(`( |\t|\r|\n)+`), skip)
		l.Add([]byte(`//[^\n]*`), skip)
		l.Add([]byte(`#[a-z]+`), makeToken(tokenKindDirective))
		l.Add([]byte(`[A-Za-z_][0-9A-Za-z_]*`), makeToken(tokenKindID))
		l.Add([]byte(`'([^'\\\n]|\\.)*'`), makeToken(tokenKindLiteral))
		l.Add([]byte(`"([^"\\\n]|\\.)*"`), makeToken(tokenKindPattern))
		l.Add([]byte(`'([^'\\\n]|\\.)*`), makeToken(tokenKindUnclosed))
		l.Add([]byte(`"([^"\\\n]|\\.)*`), makeToken(tokenKindUnclosed))
		l.Add([]byte(`:`), makeToken(tokenKindColon))
		l.Add([]byte(`\|`), makeToken(tokenKindOr))
		l.Add([]byte(`;`), makeToken(tokenKindSemicolon))
		lexerErr = l.Compile()
		lexerDFA = l
	})
	return lexerDFA, lexerErr
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(kind tokenKind) lexmachine.Action {
	id := 0
	for i, k := range tokenKinds {
		if k == kind {
			id = i
			break
		}
	}
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

// lex splits a grammar description into tokens. The last token is always an EOF token.
func lex(src []byte) ([]*token, error) {
	l, err := compiledLexer()
	if err != nil {
		return nil, err
	}
	s, err := l.Scanner(src)
	if err != nil {
		return nil, err
	}

	var toks []*token
	for tok, err, eos := s.Next(); !eos; tok, err, eos = s.Next() {
		if err != nil {
			if ui, ok := err.(*machines.UnconsumedInput); ok {
				text := string(ui.Text)
				if len(text) > 16 {
					text = text[:16]
				}
				return nil, &verr.SpecError{
					Cause:  synErrInvalidToken,
					Detail: text,
					Row:    ui.StartLine,
					Col:    ui.StartColumn,
				}
			}
			return nil, err
		}

		lt := tok.(*lexmachine.Token)
		t := &token{
			kind: tokenKinds[lt.Type],
			text: string(lt.Lexeme),
			pos:  newPosition(lt.StartLine, lt.StartColumn),
		}
		switch t.kind {
		case tokenKindUnclosed:
			return nil, &verr.SpecError{
				Cause: synErrUnclosedQuote,
				Row:   t.pos.Row,
				Col:   t.pos.Col,
			}
		case tokenKindLiteral:
			t.text = unescapeLiteral(t.text[1 : len(t.text)-1])
		case tokenKindPattern:
			t.text = strings.ReplaceAll(t.text[1:len(t.text)-1], `\"`, `"`)
		}
		if (t.kind == tokenKindLiteral || t.kind == tokenKindPattern) && t.text == "" {
			return nil, &verr.SpecError{
				Cause: synErrEmptyPattern,
				Row:   t.pos.Row,
				Col:   t.pos.Col,
			}
		}
		toks = append(toks, t)
	}

	var eofPos Position
	if len(toks) > 0 {
		eofPos = toks[len(toks)-1].pos
	}
	return append(toks, &token{
		kind: tokenKindEOF,
		pos:  eofPos,
	}), nil
}

// unescapeLiteral interprets \' and \\ in a literal. Other characters are taken as they are.
func unescapeLiteral(s string) string {
	var b strings.Builder
	escaped := false
	for _, c := range s {
		if !escaped && c == '\\' {
			escaped = true
			continue
		}
		if escaped && c != '\'' && c != '\\' {
			b.WriteRune('\\')
		}
		escaped = false
		b.WriteRune(c)
	}
	return b.String()
}
