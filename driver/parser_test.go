package driver

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nihei9/lrtab/grammar"
	"github.com/nihei9/lrtab/spec"
	specgrammar "github.com/nihei9/lrtab/spec/grammar"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

const exprSpec = `
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
ws: "[\u{0009}\u{0020}]+" #skip;
add: '+';
mul: '*';
l_paren: '(';
r_paren: ')';
id: "[A-Za-z_][0-9A-Za-z_]*";
`

func compileSpec(t *testing.T, src string, opts ...grammar.CompileOption) *specgrammar.CompiledGrammar {
	t.Helper()

	ast, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := grammar.GrammarBuilder{
		AST: ast,
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	cg, _, err := grammar.Compile(g, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return cg
}

type testSemAct struct {
	gram   *specgrammar.CompiledGrammar
	actLog []string
}

func (a *testSemAct) Shift(tok VToken) {
	a.actLog = append(a.actLog, fmt.Sprintf("shift/%v", a.gram.ParsingTable.Terminals[tok.TerminalID()]))
}

func (a *testSemAct) Reduce(prodNum int) {
	lhsSym := a.gram.ParsingTable.LHSSymbols[prodNum]
	a.actLog = append(a.actLog, fmt.Sprintf("reduce/%v", a.gram.ParsingTable.NonTerminals[lhsSym]))
}

func (a *testSemAct) Accept() {
	a.actLog = append(a.actLog, "accept")
}

func (a *testSemAct) MissError(cause VToken) {
	a.actLog = append(a.actLog, "miss")
}

func TestParser_Parse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrtab.driver")
	defer teardown()

	tests := []struct {
		caption string
		specSrc string
		src     string
		synErr  bool
	}{
		{
			caption: "the parser accepts a valid input",
			specSrc: exprSpec,
			src:     `(a+(b+c))*d+e`,
		},
		{
			caption: "skipped tokens never reach the parser",
			specSrc: exprSpec,
			src:     "  id \t+  id ",
		},
		{
			caption: "the parser rejects an invalid input",
			specSrc: exprSpec,
			src:     `id id`,
			synErr:  true,
		},
		{
			caption: "the parser rejects an incomplete input",
			specSrc: exprSpec,
			src:     `(a+b`,
			synErr:  true,
		},
		{
			caption: "the parser rejects an empty input when the start symbol isn't nullable",
			specSrc: exprSpec,
			src:     ``,
			synErr:  true,
		},
		{
			caption: "the parser accepts an input reduced by an empty alternative",
			specSrc: `
#name test;

s
    : foo bar
    ;
foo
    : 'foo'
    |
    ;
bar: 'bar';
`,
			src: `bar`,
		},
		{
			caption: "the parser accepts an empty input when the start symbol is nullable",
			specSrc: `
#name test;

s
    : foo
    |
    ;
foo: 'foo';
`,
			src: ``,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			for _, class := range []grammar.Class{grammar.ClassLALR, grammar.ClassSLR} {
				cg := compileSpec(t, tt.specSrc, grammar.SpecifyClass(class))
				toks, err := NewTokenStream(cg, strings.NewReader(tt.src))
				if err != nil {
					t.Fatal(err)
				}
				p, err := NewParser(NewGrammar(cg), toks)
				if err != nil {
					t.Fatal(err)
				}
				err = p.Parse()
				if err != nil {
					t.Fatal(err)
				}
				synErrs := p.SyntaxErrors()
				if tt.synErr && len(synErrs) == 0 {
					t.Fatalf("%v: a syntax error must occur", class)
				}
				if !tt.synErr && len(synErrs) > 0 {
					for _, synErr := range synErrs {
						t.Logf("%v", synErr)
					}
					t.Fatalf("%v: unexpected syntax errors occurred", class)
				}
			}
		})
	}
}

func TestParser_SyntaxError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrtab.driver")
	defer teardown()

	tests := []struct {
		caption  string
		src      string
		lexeme   string
		invalid  bool
		eof      bool
		expected []string
	}{
		{
			caption:  "an operand cannot follow an operand",
			src:      `a b`,
			lexeme:   "b",
			expected: []string{"<eof>", "+", "*", ")"},
		},
		{
			caption:  "an operator cannot start an expression",
			src:      `+`,
			lexeme:   "+",
			expected: []string{"(", "id"},
		},
		{
			caption:  "a parenthesis must be closed",
			src:      `(a`,
			eof:      true,
			expected: []string{"+", ")"},
		},
		{
			caption: "an invalid token is a syntax error",
			src:     `a $`,
			lexeme:  "$",
			invalid: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			cg := compileSpec(t, exprSpec)
			toks, err := NewTokenStream(cg, strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			semAct := &testSemAct{
				gram: cg,
			}
			p, err := NewParser(NewGrammar(cg), toks, SemanticAction(semAct))
			if err != nil {
				t.Fatal(err)
			}
			err = p.Parse()
			if err != nil {
				t.Fatal(err)
			}

			synErrs := p.SyntaxErrors()
			if len(synErrs) != 1 {
				t.Fatalf("the parser must stop at the first syntax error; got: %v errors", len(synErrs))
			}
			synErr := synErrs[0]
			if synErr.Token.EOF() != tt.eof {
				t.Fatalf("unexpected EOF flag; want: %v, got: %v", tt.eof, synErr.Token.EOF())
			}
			if !tt.eof && string(synErr.Token.Lexeme()) != tt.lexeme {
				t.Fatalf("unexpected lexeme; want: %v, got: %v", tt.lexeme, string(synErr.Token.Lexeme()))
			}
			if synErr.Token.Invalid() != tt.invalid {
				t.Fatalf("unexpected invalid flag; want: %v, got: %v", tt.invalid, synErr.Token.Invalid())
			}
			if tt.expected != nil {
				if len(synErr.ExpectedTerminals) != len(tt.expected) {
					t.Fatalf("unexpected expected terminals; want: %v, got: %v", tt.expected, synErr.ExpectedTerminals)
				}
				for i, e := range tt.expected {
					if synErr.ExpectedTerminals[i] != e {
						t.Fatalf("unexpected expected terminals; want: %v, got: %v", tt.expected, synErr.ExpectedTerminals)
					}
				}
			}
			if last := semAct.actLog[len(semAct.actLog)-1]; last != "miss" {
				t.Fatalf("the last action must be a miss; got: %v", last)
			}
		})
	}
}

func TestParserWithSemanticAction(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrtab.driver")
	defer teardown()

	tests := []struct {
		caption string
		specSrc string
		src     string
		actLog  []string
	}{
		{
			caption: "the driver calls `Shift`, `Reduce`, and `Accept` in order",
			specSrc: exprSpec,
			src:     `a + b * c`,
			actLog: []string{
				"shift/id",
				"reduce/factor",
				"reduce/term",
				"reduce/expr",
				"shift/add",
				"shift/id",
				"reduce/factor",
				"reduce/term",
				"shift/mul",
				"shift/id",
				"reduce/factor",
				"reduce/term",
				"reduce/expr",
				"accept",
			},
		},
		{
			caption: "the driver reduces a chain of single productions before accepting",
			specSrc: `
#name test;

s
    : e
    ;
e
    : e add t
    | t
    ;
t
    : id
    ;
add: '+';
id: "[a-z]+";
`,
			src: `id+id`,
			actLog: []string{
				"shift/id",
				"reduce/t",
				"reduce/e",
				"shift/add",
				"shift/id",
				"reduce/t",
				"reduce/e",
				"reduce/s",
				"accept",
			},
		},
		{
			caption: "the driver reduces an empty alternative without shifting",
			specSrc: `
#name test;

s
    : foo bar
    ;
foo
    : 'foo'
    |
    ;
bar: 'bar';
`,
			src: `bar`,
			actLog: []string{
				"reduce/foo",
				"shift/bar",
				"reduce/s",
				"accept",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			cg := compileSpec(t, tt.specSrc)
			toks, err := NewTokenStream(cg, strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			semAct := &testSemAct{
				gram: cg,
			}
			p, err := NewParser(NewGrammar(cg), toks, SemanticAction(semAct))
			if err != nil {
				t.Fatal(err)
			}
			err = p.Parse()
			if err != nil {
				t.Fatal(err)
			}
			if len(p.SyntaxErrors()) > 0 {
				t.Fatalf("unexpected syntax errors: %v", p.SyntaxErrors())
			}

			if len(semAct.actLog) != len(tt.actLog) {
				t.Fatalf("unexpected action log; want: %+v, got: %+v", tt.actLog, semAct.actLog)
			}
			for i, e := range tt.actLog {
				if semAct.actLog[i] != e {
					t.Fatalf("unexpected action log; want: %+v, got: %+v", tt.actLog, semAct.actLog)
				}
			}
		})
	}
}

func TestSyntaxTreeActionSet(t *testing.T) {
	cg := compileSpec(t, exprSpec)
	gram := NewGrammar(cg)

	t.Run("the tree has the shape of the derivation", func(t *testing.T) {
		toks, err := NewTokenStream(cg, strings.NewReader(`a`))
		if err != nil {
			t.Fatal(err)
		}
		treeAct := NewSyntaxTreeActionSet(gram)
		p, err := NewParser(gram, toks, SemanticAction(treeAct))
		if err != nil {
			t.Fatal(err)
		}
		err = p.Parse()
		if err != nil {
			t.Fatal(err)
		}

		var b strings.Builder
		PrintTree(&b, treeAct.Tree())
		expected := `expr
└─ term
   └─ factor
      └─ id "a"
`
		if b.String() != expected {
			t.Fatalf("unexpected tree; want:\n%v\ngot:\n%v", expected, b.String())
		}
	})

	t.Run("a terminal node has its text", func(t *testing.T) {
		toks, err := NewTokenStream(cg, strings.NewReader(`(x)`))
		if err != nil {
			t.Fatal(err)
		}
		treeAct := NewSyntaxTreeActionSet(gram)
		p, err := NewParser(gram, toks, SemanticAction(treeAct))
		if err != nil {
			t.Fatal(err)
		}
		err = p.Parse()
		if err != nil {
			t.Fatal(err)
		}

		factor := treeAct.Tree().Children[0].Children[0]
		if factor.KindName != "factor" || len(factor.Children) != 3 {
			t.Fatalf("unexpected node: %+v", factor)
		}
		for i, e := range []string{"(", "", ")"} {
			c := factor.Children[i]
			if e == "" {
				if c.Type != NodeTypeNonTerminal {
					t.Fatalf("the middle child must be a non-terminal")
				}
				continue
			}
			if c.Type != NodeTypeTerminal || c.Text != e {
				t.Fatalf("unexpected terminal node; want: %v, got: %+v", e, c)
			}
		}
	})

	t.Run("no tree is built when a syntax error occurs", func(t *testing.T) {
		toks, err := NewTokenStream(cg, strings.NewReader(`a +`))
		if err != nil {
			t.Fatal(err)
		}
		treeAct := NewSyntaxTreeActionSet(gram)
		p, err := NewParser(gram, toks, SemanticAction(treeAct))
		if err != nil {
			t.Fatal(err)
		}
		err = p.Parse()
		if err != nil {
			t.Fatal(err)
		}
		if treeAct.Tree() != nil {
			t.Fatalf("a tree must not be built")
		}
	})
}

func TestTokenStream_EOF(t *testing.T) {
	cg := compileSpec(t, exprSpec)
	toks, err := NewTokenStream(cg, strings.NewReader(` a `))
	if err != nil {
		t.Fatal(err)
	}

	tok, err := toks.Next()
	if err != nil {
		t.Fatal(err)
	}
	if tok.EOF() || cg.ParsingTable.Terminals[tok.TerminalID()] != "id" {
		t.Fatalf("unexpected token: %v", string(tok.Lexeme()))
	}
	for i := 0; i < 3; i++ {
		tok, err := toks.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !tok.EOF() {
			t.Fatalf("the token stream must keep returning EOF")
		}
	}
}
