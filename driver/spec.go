package driver

import spec "github.com/nihei9/lrtab/spec/grammar"

// Grammar is the view of a compiled grammar the parser runs on.
type Grammar interface {
	InitialState() int
	StartProduction() int
	Action(state int, terminal int) int
	GoTo(state int, lhs int) int
	AlternativeSymbolCount(prod int) int
	TerminalCount() int
	NonTerminal(nonTerminal int) string
	LHS(prod int) int
	EOF() int
	Terminal(terminal int) string
	TerminalAlias(terminal int) string
}

type grammarImpl struct {
	g *spec.CompiledGrammar
}

var _ Grammar = &grammarImpl{}

func NewGrammar(g *spec.CompiledGrammar) *grammarImpl {
	return &grammarImpl{
		g: g,
	}
}

func (g *grammarImpl) InitialState() int {
	return g.g.ParsingTable.InitialState
}

func (g *grammarImpl) StartProduction() int {
	return g.g.ParsingTable.StartProduction
}

func (g *grammarImpl) Action(state int, terminal int) int {
	return g.g.ParsingTable.Action[state*g.g.ParsingTable.TerminalCount+terminal]
}

func (g *grammarImpl) GoTo(state int, lhs int) int {
	return g.g.ParsingTable.GoTo[state*g.g.ParsingTable.NonTerminalCount+lhs]
}

func (g *grammarImpl) AlternativeSymbolCount(prod int) int {
	return g.g.ParsingTable.AlternativeSymbolCounts[prod]
}

func (g *grammarImpl) TerminalCount() int {
	return g.g.ParsingTable.TerminalCount
}

func (g *grammarImpl) NonTerminal(nonTerminal int) string {
	return g.g.ParsingTable.NonTerminals[nonTerminal]
}

func (g *grammarImpl) LHS(prod int) int {
	return g.g.ParsingTable.LHSSymbols[prod]
}

func (g *grammarImpl) EOF() int {
	return g.g.ParsingTable.EOFSymbol
}

func (g *grammarImpl) Terminal(terminal int) string {
	return g.g.ParsingTable.Terminals[terminal]
}

func (g *grammarImpl) TerminalAlias(terminal int) string {
	return g.g.LexicalSpecification.Maleeni.KindAliases[terminal]
}
