package grammar

import (
	"testing"

	"github.com/nihei9/lrtab/grammar/symbol"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

type follow struct {
	nonTermText string
	symbols     []string
}

func TestFollowSet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrtab.grammar")
	defer teardown()

	tests := []struct {
		caption string
		src     string
		follow  []follow
	}{
		{
			caption: "productions contain only non-empty productions",
			src: `
#name test;

expr
    : expr add term
    | term
    ;
term
    : term mul factor
    | factor
    ;
factor
    : l_paren expr r_paren
    | id
    ;
add: "\+";
mul: "\*";
l_paren: "\(";
r_paren: "\)";
id: "[A-Za-z_][0-9A-Za-z_]*";
`,
			follow: []follow{
				{nonTermText: "expr'", symbols: []string{}},
				{nonTermText: "expr", symbols: []string{"add", "r_paren", "<eof>"}},
				{nonTermText: "term", symbols: []string{"add", "mul", "r_paren", "<eof>"}},
				{nonTermText: "factor", symbols: []string{"add", "mul", "r_paren", "<eof>"}},
			},
		},
		{
			caption: "productions contain an empty start production",
			src: `
#name test;

s
    :
    ;
`,
			follow: []follow{
				{nonTermText: "s'", symbols: []string{}},
				{nonTermText: "s", symbols: []string{"<eof>"}},
			},
		},
		{
			caption: "productions contain an empty production",
			src: `
#name test;

s
    : foo
    ;
foo
    :
    ;
`,
			follow: []follow{
				{nonTermText: "s'", symbols: []string{}},
				{nonTermText: "s", symbols: []string{"<eof>"}},
				{nonTermText: "foo", symbols: []string{"<eof>"}},
			},
		},
		{
			caption: "a nullable suffix passes FOLLOW of the LHS through",
			src: `
#name test;

s
    : foo bar baz
    ;
foo
    : x
    ;
bar
    : y
    |
    ;
baz
    : z
    |
    ;
x: 'x';
y: 'y';
z: 'z';
`,
			follow: []follow{
				{nonTermText: "s", symbols: []string{"<eof>"}},
				{nonTermText: "foo", symbols: []string{"y", "z", "<eof>"}},
				{nonTermText: "bar", symbols: []string{"z", "<eof>"}},
				{nonTermText: "baz", symbols: []string{"<eof>"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			gram := buildGrammar(t, tt.src)
			fst, err := genFirstSet(gram.productionSet)
			if err != nil {
				t.Fatal(err)
			}
			flw, err := genFollowSet(gram.productionSet, fst)
			if err != nil {
				t.Fatal(err)
			}
			genSym := newTestSymbolGenerator(t, gram.symbolTable)

			for _, ttFollow := range tt.follow {
				sym := genSym(ttFollow.nonTermText)
				actualFollow, err := flw.find(sym)
				if err != nil {
					t.Fatalf("failed to get a FOLLOW entry; non-terminal symbol: %v (%v), error: %v", ttFollow.nonTermText, sym, err)
				}

				expectedFollow := newFollowEntry()
				for _, s := range ttFollow.symbols {
					expectedFollow.add(genSym(s))
				}

				testFollow(t, actualFollow, expectedFollow)
			}
		})
	}
}

func TestSLR1Lookahead(t *testing.T) {
	gram := buildGrammar(t, `
#name test;

s
    : foo bar
    ;
foo
    : x
    ;
bar
    : y
    |
    ;
x: 'x';
y: 'y';
`)
	fst, err := genFirstSet(gram.productionSet)
	if err != nil {
		t.Fatal(err)
	}
	automaton, err := genAutomaton(gram.productionSet, gram.augmentedStartSymbol)
	if err != nil {
		t.Fatal(err)
	}
	la, err := genSLR1Lookahead(gram.productionSet, fst)
	if err != nil {
		t.Fatal(err)
	}
	genSym := newTestSymbolGenerator(t, gram.symbolTable)
	genProd := newTestProductionGenerator(t, gram)

	fooProd := genProd("foo", "x")
	startProd := genProd("s'", "s", "<eof>")
	for _, s := range automaton.States() {
		if _, ok := s.findItem(fooProd, 1); ok {
			testSymbols(t, la.Lookahead(s, fooProd), []symbol.Symbol{genSym("y"), symbol.SymbolEOF})
		} else if got := la.Lookahead(s, fooProd); got != nil {
			t.Errorf("a state not holding the final item must have no lookahead; state: %v, got: %v", s.Num(), got)
		}

		if got := la.Lookahead(s, startProd); got != nil {
			t.Errorf("the start production must have no lookahead; state: %v, got: %v", s.Num(), got)
		}
	}
}

func testFollow(t *testing.T, actual, expected *followEntry) {
	t.Helper()

	if len(actual.symbols) != len(expected.symbols) {
		t.Fatalf("unexpected symbol count of a FOLLOW entry; want: %v, got: %v", expected.symbols, actual.symbols)
	}

	for eSym := range expected.symbols {
		if _, ok := actual.symbols[eSym]; !ok {
			t.Fatalf("invalid FOLLOW entry; want: %v, got: %v", expected.symbols, actual.symbols)
		}
	}
}

// testSymbols compares terminals in order. Both sides must be sorted.
func testSymbols(t *testing.T, actual, expected []symbol.Symbol) {
	t.Helper()

	if len(actual) != len(expected) {
		t.Fatalf("unexpected symbols; want: %v, got: %v", expected, actual)
	}
	for i, sym := range expected {
		if actual[i] != sym {
			t.Fatalf("unexpected symbols; want: %v, got: %v", expected, actual)
		}
	}
}
