package driver

import (
	"fmt"
	"io"
	"strconv"
)

// SemanticActionSet is a set of semantic actions a parser calls.
type SemanticActionSet interface {
	// Shift runs when the parser shifts a token onto the state stack. It doesn't run for the EOF
	// token.
	Shift(tok VToken)

	// Reduce runs when the parser reduces an RHS of a production to its LHS. `prodNum` is a number of
	// the production.
	Reduce(prodNum int)

	// Accept runs when the parser accepts an input.
	Accept()

	// MissError runs when the parser meets a syntax error. `cause` is a token that caused the error.
	MissError(cause VToken)
}

var _ SemanticActionSet = &SyntaxTreeActionSet{}

// SyntaxTreeActionSet is an implementation of SemanticActionSet and constructs a concrete syntax
// tree.
type SyntaxTreeActionSet struct {
	gram     Grammar
	semStack []*Node
	tree     *Node
}

func NewSyntaxTreeActionSet(gram Grammar) *SyntaxTreeActionSet {
	return &SyntaxTreeActionSet{
		gram:     gram,
		semStack: make([]*Node, 0, 100),
	}
}

func (a *SyntaxTreeActionSet) Shift(tok VToken) {
	row, col := tok.Position()
	a.semStack = append(a.semStack, &Node{
		Type:     NodeTypeTerminal,
		KindName: a.gram.Terminal(tok.TerminalID()),
		Text:     string(tok.Lexeme()),
		Row:      row,
		Col:      col,
	})
}

func (a *SyntaxTreeActionSet) Reduce(prodNum int) {
	// When an alternative is empty, `n` will be 0, and `handle` will be empty slice.
	n := a.gram.AlternativeSymbolCount(prodNum)
	handle := make([]*Node, n)
	copy(handle, a.semStack[len(a.semStack)-n:])
	a.semStack = a.semStack[:len(a.semStack)-n]

	a.semStack = append(a.semStack, &Node{
		Type:     NodeTypeNonTerminal,
		KindName: a.gram.NonTerminal(a.gram.LHS(prodNum)),
		Children: handle,
	})
}

func (a *SyntaxTreeActionSet) Accept() {
	a.tree = a.semStack[len(a.semStack)-1]
	a.semStack = a.semStack[:len(a.semStack)-1]
}

func (a *SyntaxTreeActionSet) MissError(cause VToken) {
	a.semStack = a.semStack[:0]
}

// Tree returns a syntax tree when the parser has accepted an input. If a syntax error occurs, the
// return value is nil.
func (a *SyntaxTreeActionSet) Tree() *Node {
	return a.tree
}

type NodeType int

const (
	NodeTypeTerminal    = NodeType(1)
	NodeTypeNonTerminal = NodeType(2)
)

type Node struct {
	Type     NodeType `json:"type"`
	KindName string   `json:"kind_name"`
	Text     string   `json:"text,omitempty"`
	Row      int      `json:"row,omitempty"`
	Col      int      `json:"col,omitempty"`
	Children []*Node  `json:"children,omitempty"`
}

// PrintTree prints a syntax tree whose root is `node`.
func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	switch node.Type {
	case NodeTypeTerminal:
		fmt.Fprintf(w, "%v%v %v\n", ruledLine, node.KindName, strconv.Quote(node.Text))
	case NodeTypeNonTerminal:
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)

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
}
