package grammar

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cnf/structhash"
	"github.com/nihei9/lrtab/grammar/symbol"
	spec "github.com/nihei9/lrtab/spec/grammar"
	mlcompiler "github.com/nihei9/maleeni/compiler"
	mlspec "github.com/nihei9/maleeni/spec"
)

// Class is a class of LR parsing tables. It decides which lookahead oracle is used.
type Class string

const (
	ClassSLR  = Class("slr")
	ClassLALR = Class("lalr")
)

type compileConfig struct {
	isReportingEnabled bool
	class              Class
}

type CompileOption func(config *compileConfig)

func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

func SpecifyClass(class Class) CompileOption {
	return func(config *compileConfig) {
		config.class = class
	}
}

// BuildParsingTable builds the automaton and the parsing table of a grammar. When the grammar
// has unresolvable conflicts, the error is ConflictErrors and the returned table is still
// usable for diagnostics.
func BuildParsingTable(gram *Grammar, class Class) (*Automaton, *ParsingTable, error) {
	b, err := newLRTableBuilder(gram, class)
	if err != nil {
		return nil, nil, err
	}
	tab := b.build()
	if len(b.conflicts) > 0 {
		return b.automaton, tab, b.conflicts
	}
	return b.automaton, tab, nil
}

func newLRTableBuilder(gram *Grammar, class Class) (*lrTableBuilder, error) {
	firstSet, err := genFirstSet(gram.productionSet)
	if err != nil {
		return nil, err
	}

	automaton, err := genAutomaton(gram.productionSet, gram.augmentedStartSymbol)
	if err != nil {
		return nil, err
	}

	var la Lookahead
	switch class {
	case ClassSLR:
		la, err = genSLR1Lookahead(gram.productionSet, firstSet)
	case ClassLALR, "":
		la, err = genLALR1Lookahead(automaton, gram.productionSet, firstSet)
	default:
		return nil, fmt.Errorf("unknown class: %v", class)
	}
	if err != nil {
		return nil, err
	}

	return &lrTableBuilder{
		automaton:    automaton,
		lookahead:    la,
		prods:        gram.productionSet,
		symTab:       gram.symbolTable,
		precAndAssoc: gram.precAndAssoc,
	}, nil
}

// Compile compiles a grammar into the lexical specification and the parsing table. When the
// grammar has unresolvable conflicts, Compile returns ConflictErrors together with the report
// if reporting is enabled.
func Compile(gram *Grammar, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{
		class: ClassLALR,
	}
	for _, opt := range opts {
		opt(config)
	}

	lexSpec, err, cErrs := mlcompiler.Compile(gram.lexSpec, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			writeCompileError(&b, cErrs[0])
			for _, cerr := range cErrs[1:] {
				fmt.Fprintf(&b, "\n")
				writeCompileError(&b, cerr)
			}
			return nil, nil, errors.New(b.String())
		}
		return nil, nil, fmt.Errorf("failed to compile the lexical specification: %w", err)
	}

	termTexts := gram.symbolTable.TerminalTexts()
	termCount := len(termTexts)

	kind2Term := make([]int, len(lexSpec.KindNames))
	term2Kind := make([]int, termCount)
	skip := make([]int, len(lexSpec.KindNames))
	for i, k := range lexSpec.KindNames {
		if k == mlspec.LexKindNameNil {
			kind2Term[mlspec.LexKindIDNil] = symbol.SymbolNil.Num().Int()
			term2Kind[symbol.SymbolNil.Num()] = mlspec.LexKindIDNil.Int()
			continue
		}

		sym, ok := gram.symbolTable.ToSymbol(k.String())
		if !ok {
			return nil, nil, fmt.Errorf("terminal symbol '%v' was not found in a symbol table", k)
		}
		kind2Term[i] = sym.Num().Int()
		term2Kind[sym.Num()] = i

		for _, sk := range gram.skipLexKinds {
			if k != sk {
				continue
			}
			skip[i] = 1
			break
		}
	}

	kindAliases := make([]string, termCount)
	for _, sym := range gram.symbolTable.TerminalSymbols() {
		kindAliases[sym.Num().Int()] = gram.kindAliases[sym]
	}

	nonTermTexts, err := gram.symbolTable.NonTerminalTexts()
	if err != nil {
		return nil, nil, err
	}
	nonTermCount := len(nonTermTexts)

	b, err := newLRTableBuilder(gram, config.class)
	if err != nil {
		return nil, nil, err
	}
	tab := b.build()

	var report *spec.Report
	if config.isReportingEnabled {
		report, err = b.genReport(tab, gram, config.class)
		if err != nil {
			return nil, nil, err
		}
	}
	if len(b.conflicts) > 0 {
		return nil, report, b.conflicts
	}

	action := make([]int, tab.stateCount*termCount)
	for key, act := range tab.action {
		pos := key.state.Int()*termCount + key.sym.Num().Int()
		switch act.Type {
		case ActionTypeShift:
			action[pos] = act.State.Int() * -1
		case ActionTypeReduce:
			action[pos] = act.Production.Int()
		case ActionTypeAccept:
			action[pos] = ProductionNumStart.Int()
		}
	}
	goTo := make([]int, tab.stateCount*nonTermCount)
	for key, next := range tab.goTo {
		goTo[key.state.Int()*nonTermCount+key.sym.Num().Int()] = next.Int()
	}

	prods := gram.productionSet.getAllProductions()
	lhsSyms := make([]int, len(prods)+1)
	altSymCounts := make([]int, len(prods)+1)
	for _, p := range prods {
		lhsSyms[p.num] = p.lhs.Num().Int()
		altSymCounts[p.num] = p.rhsLen
	}

	return &spec.CompiledGrammar{
		Name: gram.name,
		LexicalSpecification: &spec.LexicalSpecification{
			Lexer: "maleeni",
			Maleeni: &spec.Maleeni{
				Spec:           lexSpec,
				KindToTerminal: kind2Term,
				TerminalToKind: term2Kind,
				Skip:           skip,
				KindAliases:    kindAliases,
			},
		},
		ParsingTable: &spec.ParsingTable{
			Action:                  action,
			GoTo:                    goTo,
			StateCount:              tab.stateCount,
			InitialState:            tab.InitialState.Int(),
			AcceptingState:          tab.AcceptingState.Int(),
			StartProduction:         ProductionNumStart.Int(),
			LHSSymbols:              lhsSyms,
			AlternativeSymbolCounts: altSymCounts,
			Terminals:               termTexts,
			TerminalCount:           termCount,
			NonTerminals:            nonTermTexts,
			NonTerminalCount:        nonTermCount,
			EOFSymbol:               symbol.SymbolEOF.Num().Int(),
		},
	}, report, nil
}

// Fingerprint returns a digest of a parsing table. Equal tables have equal fingerprints.
func Fingerprint(tab *spec.ParsingTable) (string, error) {
	return structhash.Hash(tab, 1)
}

func writeCompileError(w io.Writer, cErr *mlcompiler.CompileError) {
	if cErr.Fragment {
		fmt.Fprintf(w, "fragment ")
	}
	fmt.Fprintf(w, "%v: %v", cErr.Kind, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(w, ": %v", cErr.Detail)
	}
}
