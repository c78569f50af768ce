package grammar

import (
	"errors"
	"testing"

	mlspec "github.com/nihei9/maleeni/spec"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestCompile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrtab.grammar")
	defer teardown()

	gram := buildGrammar(t, exprGrammar)
	cg, report, err := Compile(gram, EnableReporting())
	if err != nil {
		t.Fatal(err)
	}
	if cg.Name != "test" {
		t.Fatalf("unexpected name; want: test, got: %v", cg.Name)
	}

	tab := cg.ParsingTable
	if tab.StateCount != 13 {
		t.Fatalf("unexpected state count; want: 13, got: %v", tab.StateCount)
	}
	if len(tab.Action) != tab.StateCount*tab.TerminalCount {
		t.Fatalf("unexpected action table size; want: %v, got: %v", tab.StateCount*tab.TerminalCount, len(tab.Action))
	}
	if len(tab.GoTo) != tab.StateCount*tab.NonTerminalCount {
		t.Fatalf("unexpected goto table size; want: %v, got: %v", tab.StateCount*tab.NonTerminalCount, len(tab.GoTo))
	}
	if len(tab.Terminals) != tab.TerminalCount || len(tab.NonTerminals) != tab.NonTerminalCount {
		t.Fatalf("symbol names and counts are mismatched")
	}
	if act := tab.Action[tab.AcceptingState*tab.TerminalCount+tab.EOFSymbol]; act != tab.StartProduction {
		t.Fatalf("accept must be encoded as a reduction by the start production; got: %v", act)
	}
	if tab.Terminals[tab.EOFSymbol] != "<eof>" {
		t.Fatalf("unexpected name of the EOF symbol: %v", tab.Terminals[tab.EOFSymbol])
	}
	if tab.NonTerminals[tab.LHSSymbols[tab.StartProduction]] != "expr'" {
		t.Fatalf("unexpected LHS of the start production: %v", tab.NonTerminals[tab.LHSSymbols[tab.StartProduction]])
	}
	if tab.AlternativeSymbolCounts[tab.StartProduction] != 2 {
		t.Fatalf("the start production must have 2 symbols; got: %v", tab.AlternativeSymbolCounts[tab.StartProduction])
	}

	ml := cg.LexicalSpecification.Maleeni
	for kind, name := range ml.Spec.KindNames {
		if name == mlspec.LexKindNameNil {
			continue
		}
		term := ml.KindToTerminal[kind]
		if tab.Terminals[term] != name.String() {
			t.Fatalf("a kind is mapped to a wrong terminal; kind: %v, terminal: %v", name, tab.Terminals[term])
		}
		if ml.TerminalToKind[term] != kind {
			t.Fatalf("TerminalToKind is not the inverse of KindToTerminal; kind: %v", name)
		}
	}

	if report == nil {
		t.Fatalf("a report must be generated")
	}
	if report.Class != string(ClassLALR) {
		t.Fatalf("unexpected class; want: %v, got: %v", ClassLALR, report.Class)
	}
	if len(report.States) != tab.StateCount {
		t.Fatalf("unexpected state count of the report; want: %v, got: %v", tab.StateCount, len(report.States))
	}
	for _, s := range report.States {
		if s.Accept != (s.Number == tab.AcceptingState) {
			t.Fatalf("only the accepting state can accept; state: %v", s.Number)
		}
	}
	if text := ProductionText(report, tab.StartProduction); text != "expr' → expr <eof>" {
		t.Fatalf("unexpected text of the start production: %v", text)
	}
}

func TestCompile_Fingerprint(t *testing.T) {
	compile := func(opts ...CompileOption) string {
		t.Helper()
		cg, _, err := Compile(buildGrammar(t, exprGrammar), opts...)
		if err != nil {
			t.Fatal(err)
		}
		fp, err := Fingerprint(cg.ParsingTable)
		if err != nil {
			t.Fatal(err)
		}
		return fp
	}

	fp1 := compile()
	fp2 := compile()
	if fp1 != fp2 {
		t.Fatalf("the same grammar must produce the same table; %v vs %v", fp1, fp2)
	}
	if fp3 := compile(EnableReporting()); fp3 != fp1 {
		t.Fatalf("reporting must not change the table; %v vs %v", fp1, fp3)
	}
}

func TestCompile_Conflict(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrtab.grammar")
	defer teardown()

	stmt := `
stmt
    : kw_if cond kw_then stmt
    | kw_if cond kw_then stmt kw_else stmt
    | other
    ;
kw_if: 'if';
kw_then: 'then';
kw_else: 'else';
cond: 'c';
other: 'x';
ws: "[\u{0020}]+" #skip;
`

	t.Run("an unresolved conflict is reported", func(t *testing.T) {
		cg, report, err := Compile(buildGrammar(t, "#name test;\n"+stmt), EnableReporting())
		if cg != nil {
			t.Fatalf("a grammar having conflicts must not be compiled")
		}
		var conflicts ConflictErrors
		if !errors.As(err, &conflicts) || len(conflicts) != 1 {
			t.Fatalf("unexpected error: %v", err)
		}
		if report == nil {
			t.Fatalf("a report must be generated even if the grammar has conflicts")
		}

		found := 0
		for _, s := range report.States {
			for _, c := range s.SRConflict {
				found++
				if c.Reason != string(ReasonNoPrecedence) {
					t.Fatalf("unexpected reason: %v", c.Reason)
				}
				if c.AdoptedState != nil || c.AdoptedProduction != nil {
					t.Fatalf("an unresolved conflict has no adopted action")
				}
				if SymbolName(report, c.Symbol) != "kw_else" {
					t.Fatalf("unexpected symbol: %v", SymbolName(report, c.Symbol))
				}
			}
		}
		if found != 1 {
			t.Fatalf("unexpected shift/reduce conflict count; want: 1, got: %v", found)
		}
	})

	t.Run("a resolved conflict is reported with the adopted action", func(t *testing.T) {
		cg, report, err := Compile(buildGrammar(t, "#name test;\n#nonassoc kw_then;\n#nonassoc kw_else;\n"+stmt), EnableReporting())
		if err != nil {
			t.Fatal(err)
		}
		if cg == nil || report == nil {
			t.Fatalf("a compiled grammar and a report must be returned")
		}

		ws := -1
		for _, term := range report.Terminals {
			if term != nil && term.Name == "ws" {
				ws = term.Number
				if !term.Skip {
					t.Fatalf("ws must be a skipped terminal")
				}
			}
		}
		if ws < 0 {
			t.Fatalf("ws was not found in the report")
		}

		found := 0
		for _, s := range report.States {
			for _, c := range s.SRConflict {
				found++
				if c.AdoptedState == nil || *c.AdoptedState != c.State {
					t.Fatalf("shift must be adopted")
				}
				if c.ResolvedBy != ResolvedByPrec.Int() {
					t.Fatalf("unexpected resolution; want: %v, got: %v", ResolvedByPrec, c.ResolvedBy)
				}
			}
		}
		if found != 1 {
			t.Fatalf("unexpected shift/reduce conflict count; want: 1, got: %v", found)
		}
	})
}
