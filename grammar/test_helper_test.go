package grammar

import (
	"strings"
	"testing"

	"github.com/nihei9/lrtab/grammar/symbol"
	"github.com/nihei9/lrtab/spec"
)

func buildGrammar(t *testing.T, src string) *Grammar {
	t.Helper()

	ast, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := GrammarBuilder{
		AST: ast,
	}
	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return gram
}

type testSymbolGenerator func(text string) symbol.Symbol

func newTestSymbolGenerator(t *testing.T, symTab *symbol.SymbolTable) testSymbolGenerator {
	return func(text string) symbol.Symbol {
		t.Helper()

		sym, ok := symTab.ToSymbol(text)
		if !ok {
			t.Fatalf("symbol was not found: %v", text)
		}
		return sym
	}
}

// testProductionGenerator looks a production up in a grammar. It fails when the grammar has no
// such production.
type testProductionGenerator func(lhs string, rhs ...string) *Production

func newTestProductionGenerator(t *testing.T, gram *Grammar) testProductionGenerator {
	genSym := newTestSymbolGenerator(t, gram.symbolTable)
	return func(lhs string, rhs ...string) *Production {
		t.Helper()

		rhsSym := []symbol.Symbol{}
		for _, text := range rhs {
			rhsSym = append(rhsSym, genSym(text))
		}
		p, err := newProduction(genSym(lhs), rhsSym)
		if err != nil {
			t.Fatalf("failed to create a production: %v", err)
		}
		prod, ok := gram.productionSet.findByID(p.id)
		if !ok {
			t.Fatalf("production was not found: %v", p)
		}
		return prod
	}
}

type testItemGenerator func(lhs string, dot int, rhs ...string) *Item

func newTestItemGenerator(t *testing.T, genProd testProductionGenerator) testItemGenerator {
	return func(lhs string, dot int, rhs ...string) *Item {
		t.Helper()

		item, err := newItem(genProd(lhs, rhs...), dot)
		if err != nil {
			t.Fatalf("failed to create an item: %v", err)
		}
		return item
	}
}

// walk runs the LR driver loop over a sequence of terminals and reports whether the table
// accepts it.
func walk(t *testing.T, gram *Grammar, tab *ParsingTable, input ...string) bool {
	t.Helper()

	genSym := newTestSymbolGenerator(t, gram.symbolTable)
	toks := make([]symbol.Symbol, 0, len(input)+1)
	for _, text := range input {
		toks = append(toks, genSym(text))
	}
	toks = append(toks, symbol.SymbolEOF)

	stack := []StateNum{tab.InitialState}
	pos := 0
	for i := 0; i < 1000; i++ {
		top := stack[len(stack)-1]
		la := toks[pos]
		act, ok := tab.Action(top, la)
		if !ok {
			return false
		}
		switch act.Type {
		case ActionTypeAccept:
			return true
		case ActionTypeShift:
			stack = append(stack, act.State)
			// <eof> stays as the lookahead once it has been shifted.
			if pos < len(toks)-1 {
				pos++
			}
		case ActionTypeReduce:
			prod, ok := gram.productionSet.findByNum(act.Production)
			if !ok {
				t.Fatalf("production was not found: %v", act.Production)
			}
			stack = stack[:len(stack)-prod.rhsLen]
			next, ok := tab.GoTo(stack[len(stack)-1], prod.lhs)
			if !ok {
				t.Fatalf("goto was not found: state %v, symbol %v", stack[len(stack)-1], prod.lhs)
			}
			stack = append(stack, next)
		}
	}
	t.Fatalf("the driver loop didn't stop")
	return false
}
