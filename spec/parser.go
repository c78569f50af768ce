package spec

import (
	"io"

	verr "github.com/nihei9/lrtab/error"
)

type AssocType string

const (
	AssocTypeLeft     = AssocType("left")
	AssocTypeRight    = AssocType("right")
	AssocTypeNonAssoc = AssocType("nonassoc")
)

type RootNode struct {
	Name    string
	NamePos Position

	// Precedences holds precedence levels in declaration order. A later level binds tighter.
	Precedences []*PrecedenceNode
	Productions []*ProductionNode
}

type PrecedenceNode struct {
	Assoc   AssocType
	Symbols []*IDNode
	Pos     Position
}

type IDNode struct {
	ID  string
	Pos Position
}

type ProductionNode struct {
	LHS string
	RHS []*AlternativeNode
	Pos Position
}

// IsTerminalDefinition reports whether the production looks like `id: "pattern";`.
func (n *ProductionNode) IsTerminalDefinition() bool {
	return len(n.RHS) == 1 && len(n.RHS[0].Elements) == 1 && n.RHS[0].Elements[0].Pattern != ""
}

type AlternativeNode struct {
	Elements []*ElementNode
	Prec     *IDNode
	Skip     bool
	Pos      Position
}

type ElementNode struct {
	ID        string
	Pattern   string
	Literally bool
	Pos       Position
}

func Parse(src io.Reader) (*RootNode, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	toks, err := lex(b)
	if err != nil {
		return nil, err
	}

	p := &parser{
		toks: toks,
	}
	return p.parseRoot()
}

type parser struct {
	toks []*token
	pos  int
}

func (p *parser) peek() *token {
	return p.toks[p.pos]
}

func (p *parser) next() *token {
	tok := p.toks[p.pos]
	if tok.kind != tokenKindEOF {
		p.pos++
	}
	return tok
}

func (p *parser) consume(kind tokenKind) (*token, bool) {
	if p.peek().kind != kind {
		return nil, false
	}
	return p.next(), true
}

func (p *parser) errorAt(cause error, tok *token) error {
	e := &verr.SpecError{
		Cause: cause,
		Row:   tok.pos.Row,
		Col:   tok.pos.Col,
	}
	if tok.text != "" {
		e.Detail = tok.text
	}
	return e
}

func (p *parser) parseRoot() (*RootNode, error) {
	root := &RootNode{}
	for p.peek().kind != tokenKindEOF {
		tok := p.peek()
		switch tok.kind {
		case tokenKindDirective:
			err := p.parseTopLevelDirective(root)
			if err != nil {
				return nil, err
			}
		case tokenKindID:
			prod, err := p.parseProduction()
			if err != nil {
				return nil, err
			}
			root.Productions = append(root.Productions, prod)
		default:
			return nil, p.errorAt(synErrNoProductionName, tok)
		}
	}
	if len(root.Productions) == 0 {
		return nil, p.errorAt(synErrNoProduction, p.peek())
	}
	return root, nil
}

func (p *parser) parseTopLevelDirective(root *RootNode) error {
	dir := p.next()
	switch dir.text {
	case "#name":
		id, ok := p.consume(tokenKindID)
		if !ok {
			return p.errorAt(synErrNoDirectiveParam, dir)
		}
		root.Name = id.text
		root.NamePos = id.pos
	case "#left", "#right", "#nonassoc":
		prec := &PrecedenceNode{
			Assoc: AssocType(dir.text[1:]),
			Pos:   dir.pos,
		}
		for {
			id, ok := p.consume(tokenKindID)
			if !ok {
				break
			}
			prec.Symbols = append(prec.Symbols, &IDNode{
				ID:  id.text,
				Pos: id.pos,
			})
		}
		if len(prec.Symbols) == 0 {
			return p.errorAt(synErrNoDirectiveParam, dir)
		}
		root.Precedences = append(root.Precedences, prec)
	default:
		return p.errorAt(synErrUnknownDirective, dir)
	}
	if _, ok := p.consume(tokenKindSemicolon); !ok {
		return p.errorAt(synErrNoSemicolon, p.peek())
	}
	return nil
}

func (p *parser) parseProduction() (*ProductionNode, error) {
	lhs := p.next()
	if _, ok := p.consume(tokenKindColon); !ok {
		return nil, p.errorAt(synErrNoColon, p.peek())
	}

	prod := &ProductionNode{
		LHS: lhs.text,
		Pos: lhs.pos,
	}
	for {
		alt, err := p.parseAlternative()
		if err != nil {
			return nil, err
		}
		prod.RHS = append(prod.RHS, alt)
		if _, ok := p.consume(tokenKindOr); !ok {
			break
		}
	}
	if _, ok := p.consume(tokenKindSemicolon); !ok {
		return nil, p.errorAt(synErrNoSemicolon, p.peek())
	}
	return prod, nil
}

func (p *parser) parseAlternative() (*AlternativeNode, error) {
	alt := &AlternativeNode{
		Pos: p.peek().pos,
	}
	for {
		tok := p.peek()
		switch tok.kind {
		case tokenKindID:
			p.next()
			alt.Elements = append(alt.Elements, &ElementNode{
				ID:  tok.text,
				Pos: tok.pos,
			})
			continue
		case tokenKindLiteral, tokenKindPattern:
			p.next()
			alt.Elements = append(alt.Elements, &ElementNode{
				Pattern:   tok.text,
				Literally: tok.kind == tokenKindLiteral,
				Pos:       tok.pos,
			})
			continue
		}
		break
	}

	for p.peek().kind == tokenKindDirective {
		dir := p.next()
		switch dir.text {
		case "#prec":
			id, ok := p.consume(tokenKindID)
			if !ok {
				return nil, p.errorAt(synErrNoDirectiveParam, dir)
			}
			alt.Prec = &IDNode{
				ID:  id.text,
				Pos: id.pos,
			}
		case "#skip":
			alt.Skip = true
		default:
			return nil, p.errorAt(synErrUnknownDirective, dir)
		}
	}

	switch p.peek().kind {
	case tokenKindOr, tokenKindSemicolon:
		return alt, nil
	case tokenKindEOF:
		return nil, p.errorAt(synErrNoSemicolon, p.peek())
	default:
		return nil, p.errorAt(synErrUnexpectedToken, p.peek())
	}
}
