package grammar

import (
	"fmt"
	"regexp"
	"sort"

	verr "github.com/nihei9/lrtab/error"
	"github.com/nihei9/lrtab/grammar/symbol"
	"github.com/nihei9/lrtab/spec"
	mlspec "github.com/nihei9/maleeni/spec"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrtab.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("lrtab.grammar")
}

type assocType string

const (
	assocTypeNil      = assocType("")
	assocTypeLeft     = assocType("left")
	assocTypeRight    = assocType("right")
	assocTypeNonAssoc = assocType("nonassoc")
)

const (
	precNil = 0
	precMin = 1
)

// precAndAssoc represents precedence and associativities of terminal symbols and productions.
// A greater value means a higher precedence. A precedence level declared later in a grammar
// has a greater value.
type precAndAssoc struct {
	termPrec  map[symbol.Symbol]int
	termAssoc map[symbol.Symbol]assocType

	// prodPrec and prodAssoc are the precedence and the associativity of productions. A
	// production takes the precedence of the #prec terminal if it has the directive, or
	// inherits both from the rightmost terminal of its RHS.
	prodPrec  map[ProductionNum]int
	prodAssoc map[ProductionNum]assocType
}

func (pa *precAndAssoc) terminalPrecedence(sym symbol.Symbol) int {
	prec, ok := pa.termPrec[sym]
	if !ok {
		return precNil
	}

	return prec
}

func (pa *precAndAssoc) terminalAssociativity(sym symbol.Symbol) assocType {
	assoc, ok := pa.termAssoc[sym]
	if !ok {
		return assocTypeNil
	}

	return assoc
}

func (pa *precAndAssoc) productionPrecedence(prod ProductionNum) int {
	prec, ok := pa.prodPrec[prod]
	if !ok {
		return precNil
	}

	return prec
}

func (pa *precAndAssoc) productionAssociativity(prod ProductionNum) assocType {
	assoc, ok := pa.prodAssoc[prod]
	if !ok {
		return assocTypeNil
	}

	return assoc
}

// Grammar is a validated grammar. It is frozen once built.
type Grammar struct {
	name                 string
	lexSpec              *mlspec.LexSpec
	skipLexKinds         []mlspec.LexKindName
	kindAliases          map[symbol.Symbol]string
	sym2AnonPat          map[symbol.Symbol]string
	sym2Pat              map[symbol.Symbol]string
	productionSet        *productionSet
	augmentedStartSymbol symbol.Symbol
	symbolTable          *symbol.SymbolTable
	precAndAssoc         *precAndAssoc
}

func (g *Grammar) Name() string {
	return g.name
}

type GrammarBuilder struct {
	AST *spec.RootNode

	errs verr.SpecErrors
}

var snakeCase = regexp.MustCompile(`^[a-z][0-9a-z_]*$`)

func (b *GrammarBuilder) Build() (*Grammar, error) {
	if b.AST.Name == "" {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrNoGrammarName,
		})
	} else if !snakeCase.MatchString(b.AST.Name) {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrInvalidName,
			Detail: b.AST.Name,
			Row:    b.AST.NamePos.Row,
			Col:    b.AST.NamePos.Col,
		})
	}

	symTabAndLexSpec, err := b.genSymbolTableAndLexSpec(b.AST)
	if err != nil {
		return nil, err
	}

	prodsAndPrecs, err := b.genProductions(b.AST, symTabAndLexSpec)
	if err != nil {
		return nil, err
	}
	if prodsAndPrecs == nil {
		return nil, b.errs
	}

	pa, err := b.genPrecAndAssoc(symTabAndLexSpec.symTab, prodsAndPrecs)
	if err != nil {
		return nil, err
	}

	b.checkUnusedSymbols(b.AST, symTabAndLexSpec)

	if len(b.errs) > 0 {
		return nil, b.errs
	}

	symTabAndLexSpec.lexSpec.Name = b.AST.Name

	tracer().Debugf("grammar %v: %v productions", b.AST.Name, len(prodsAndPrecs.prods.getAllProductions()))

	return &Grammar{
		name:                 b.AST.Name,
		lexSpec:              symTabAndLexSpec.lexSpec,
		skipLexKinds:         symTabAndLexSpec.skip,
		kindAliases:          symTabAndLexSpec.aliases,
		sym2AnonPat:          symTabAndLexSpec.sym2AnonPat,
		sym2Pat:              symTabAndLexSpec.sym2Pat,
		productionSet:        prodsAndPrecs.prods,
		augmentedStartSymbol: prodsAndPrecs.augStartSym,
		symbolTable:          symTabAndLexSpec.symTab,
		precAndAssoc:         pa,
	}, nil
}

type symbolTableAndLexSpec struct {
	symTab      *symbol.SymbolTable
	anonPat2Sym map[string]symbol.Symbol
	sym2AnonPat map[symbol.Symbol]string
	sym2Pat     map[symbol.Symbol]string
	lexSpec     *mlspec.LexSpec
	skip        []mlspec.LexKindName
	aliases     map[symbol.Symbol]string
}

func elementPattern(elem *spec.ElementNode) string {
	if elem.Literally {
		return mlspec.EscapePattern(elem.Pattern)
	}
	return elem.Pattern
}

func (b *GrammarBuilder) genSymbolTableAndLexSpec(root *spec.RootNode) (*symbolTableAndLexSpec, error) {
	// Anonymous patterns take precedence over terminal definitions, so they must be registered
	// to `symTab` and `entries` first.
	symTab := symbol.NewSymbolTable()
	entries := []*mlspec.LexEntry{}

	anonPat2Sym := map[string]symbol.Symbol{}
	sym2AnonPat := map[symbol.Symbol]string{}
	sym2Pat := map[symbol.Symbol]string{}
	aliases := map[symbol.Symbol]string{}

	// An element having the same pattern as a terminal definition refers to the terminal.
	namedPats := map[string]struct{}{}
	for _, prod := range root.Productions {
		if prod.IsTerminalDefinition() {
			namedPats[elementPattern(prod.RHS[0].Elements[0])] = struct{}{}
		}
	}

	{
		knownPats := map[string]struct{}{}
		anonPats := []string{}
		literalPats := map[string]string{}
		for _, prod := range root.Productions {
			if prod.IsTerminalDefinition() {
				continue
			}
			for _, alt := range prod.RHS {
				for _, elem := range alt.Elements {
					if elem.Pattern == "" {
						continue
					}

					pattern := elementPattern(elem)
					if _, ok := knownPats[pattern]; ok {
						continue
					}
					if _, ok := namedPats[pattern]; ok {
						continue
					}

					knownPats[pattern] = struct{}{}
					anonPats = append(anonPats, pattern)
					if elem.Literally {
						literalPats[pattern] = elem.Pattern
					}
				}
			}
		}

		for i, p := range anonPats {
			kind := fmt.Sprintf("x_%v", i+1)

			sym, err := symTab.RegisterTerminalSymbol(kind)
			if err != nil {
				return nil, err
			}

			anonPat2Sym[p] = sym
			sym2AnonPat[sym] = p
			sym2Pat[sym] = p

			if lit, ok := literalPats[p]; ok {
				aliases[sym] = lit
			}

			entries = append(entries, &mlspec.LexEntry{
				Kind:    mlspec.LexKindName(kind),
				Pattern: mlspec.LexPattern(p),
			})
		}
	}

	skipKinds := []mlspec.LexKindName{}
	for _, prod := range root.Productions {
		if !prod.IsTerminalDefinition() {
			continue
		}

		if _, exist := symTab.ToSymbol(prod.LHS); exist {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateTerminal,
				Detail: prod.LHS,
				Row:    prod.Pos.Row,
				Col:    prod.Pos.Col,
			})
			continue
		}
		if !snakeCase.MatchString(prod.LHS) {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrInvalidName,
				Detail: prod.LHS,
				Row:    prod.Pos.Row,
				Col:    prod.Pos.Col,
			})
			continue
		}

		alt := prod.RHS[0]
		if alt.Prec != nil {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrPrecOnTerminalDef,
				Detail: prod.LHS,
				Row:    alt.Prec.Pos.Row,
				Col:    alt.Prec.Pos.Col,
			})
			continue
		}

		sym, err := symTab.RegisterTerminalSymbol(prod.LHS)
		if err != nil {
			return nil, err
		}

		elem := alt.Elements[0]
		pattern := elementPattern(elem)
		if elem.Literally {
			aliases[sym] = elem.Pattern
		}
		sym2Pat[sym] = pattern
		if _, ok := anonPat2Sym[pattern]; !ok {
			anonPat2Sym[pattern] = sym
		}
		if alt.Skip {
			skipKinds = append(skipKinds, mlspec.LexKindName(prod.LHS))
		}
		entries = append(entries, &mlspec.LexEntry{
			Kind:    mlspec.LexKindName(prod.LHS),
			Pattern: mlspec.LexPattern(pattern),
		})
	}

	return &symbolTableAndLexSpec{
		symTab:      symTab,
		anonPat2Sym: anonPat2Sym,
		sym2AnonPat: sym2AnonPat,
		sym2Pat:     sym2Pat,
		lexSpec: &mlspec.LexSpec{
			Entries: entries,
		},
		skip:    skipKinds,
		aliases: aliases,
	}, nil
}

type productionsAndPrecs struct {
	prods       *productionSet
	augStartSym symbol.Symbol
	prodPrecs   map[productionID]*spec.IDNode
}

// genProductions returns nil when the grammar has no non-terminal production or errors
// prevent the start symbol from being determined.
func (b *GrammarBuilder) genProductions(root *spec.RootNode, symTabAndLexSpec *symbolTableAndLexSpec) (*productionsAndPrecs, error) {
	symTab := symTabAndLexSpec.symTab
	anonPat2Sym := symTabAndLexSpec.anonPat2Sym

	var nonTermProds []*spec.ProductionNode
	for _, prod := range root.Productions {
		if prod.IsTerminalDefinition() {
			continue
		}
		nonTermProds = append(nonTermProds, prod)
	}
	if len(nonTermProds) == 0 {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrNoProduction,
		})
		return nil, nil
	}

	for _, prod := range nonTermProds {
		if sym, ok := symTab.ToSymbol(prod.LHS); ok && sym.IsTerminal() {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateName,
				Detail: prod.LHS,
				Row:    prod.Pos.Row,
				Col:    prod.Pos.Col,
			})
			continue
		}
		_, err := symTab.RegisterNonTerminalSymbol(prod.LHS)
		if err != nil {
			return nil, err
		}
	}

	startProd := nonTermProds[0]
	startSym, ok := symTab.ToSymbol(startProd.LHS)
	if !ok || !startSym.IsNonTerminal() {
		return nil, nil
	}
	augStartSym, err := symTab.RegisterStartSymbol(fmt.Sprintf("%s'", startProd.LHS))
	if err != nil {
		return nil, err
	}

	prods := newProductionSet()
	prodPrecs := map[productionID]*spec.IDNode{}

	p, err := newProduction(augStartSym, []symbol.Symbol{
		startSym,
		symbol.SymbolEOF,
	})
	if err != nil {
		return nil, err
	}
	prods.append(p)

	for _, prod := range nonTermProds {
		lhsSym, ok := symTab.ToSymbol(prod.LHS)
		if !ok || !lhsSym.IsNonTerminal() {
			continue
		}

	LOOP_RHS:
		for _, alt := range prod.RHS {
			if alt.Skip {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrSkipOnNonTerminal,
					Detail: prod.LHS,
					Row:    alt.Pos.Row,
					Col:    alt.Pos.Col,
				})
				continue
			}

			altSyms := make([]symbol.Symbol, len(alt.Elements))
			for i, elem := range alt.Elements {
				if elem.Pattern != "" {
					sym, ok := anonPat2Sym[elementPattern(elem)]
					if !ok {
						// All patterns are registered beforehand, so it's a bug if we cannot find them here.
						return nil, fmt.Errorf("pattern '%v' is undefined", elem.Pattern)
					}
					altSyms[i] = sym
					continue
				}

				sym, ok := symTab.ToSymbol(elem.ID)
				if !ok {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrUndefinedSym,
						Detail: elem.ID,
						Row:    elem.Pos.Row,
						Col:    elem.Pos.Col,
					})
					continue LOOP_RHS
				}
				altSyms[i] = sym
			}

			p, err := newProduction(lhsSym, altSyms)
			if err != nil {
				return nil, err
			}
			if !prods.append(p) {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDuplicateProduction,
					Detail: prod.LHS,
					Row:    alt.Pos.Row,
					Col:    alt.Pos.Col,
				})
				continue
			}
			if alt.Prec != nil {
				prodPrecs[p.id] = alt.Prec
			}
		}
	}

	return &productionsAndPrecs{
		prods:       prods,
		augStartSym: augStartSym,
		prodPrecs:   prodPrecs,
	}, nil
}

func (b *GrammarBuilder) genPrecAndAssoc(symTab *symbol.SymbolTable, prodsAndPrecs *productionsAndPrecs) (*precAndAssoc, error) {
	termPrec := map[symbol.Symbol]int{}
	termAssoc := map[symbol.Symbol]assocType{}
	precN := precMin
	for _, level := range b.AST.Precedences {
		for _, id := range level.Symbols {
			sym, ok := symTab.ToSymbol(id.ID)
			if !ok {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrUndefinedSym,
					Detail: id.ID,
					Row:    id.Pos.Row,
					Col:    id.Pos.Col,
				})
				continue
			}
			if !sym.IsTerminal() {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrPrecOnNonTerminal,
					Detail: id.ID,
					Row:    id.Pos.Row,
					Col:    id.Pos.Col,
				})
				continue
			}
			if _, alreadySet := termPrec[sym]; alreadySet {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDuplicateAssoc,
					Detail: id.ID,
					Row:    id.Pos.Row,
					Col:    id.Pos.Col,
				})
				continue
			}

			termPrec[sym] = precN
			termAssoc[sym] = assocType(level.Assoc)
		}
		precN++
	}

	prodPrec := map[ProductionNum]int{}
	prodAssoc := map[ProductionNum]assocType{}
	for _, prod := range prodsAndPrecs.prods.getAllProductions() {
		// A #prec directive changes only precedence, not associativity.
		if id, ok := prodsAndPrecs.prodPrecs[prod.id]; ok {
			sym, ok := symTab.ToSymbol(id.ID)
			if !ok {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrUndefinedSym,
					Detail: id.ID,
					Row:    id.Pos.Row,
					Col:    id.Pos.Col,
				})
				continue
			}
			if !sym.IsTerminal() {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrPrecOnNonTerminal,
					Detail: id.ID,
					Row:    id.Pos.Row,
					Col:    id.Pos.Col,
				})
				continue
			}
			prec, ok := termPrec[sym]
			if !ok {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrUndefinedPrec,
					Detail: id.ID,
					Row:    id.Pos.Row,
					Col:    id.Pos.Col,
				})
				continue
			}
			prodPrec[prod.num] = prec
			prodAssoc[prod.num] = assocTypeNil
			continue
		}

		term := prod.rightmostTerminal()
		if term.IsNil() {
			continue
		}
		if prec, ok := termPrec[term]; ok {
			prodPrec[prod.num] = prec
			prodAssoc[prod.num] = termAssoc[term]
		}
	}

	return &precAndAssoc{
		termPrec:  termPrec,
		termAssoc: termAssoc,
		prodPrec:  prodPrec,
		prodAssoc: prodAssoc,
	}, nil
}

// checkUnusedSymbols reports productions and terminals unreachable from the start symbol.
// A skipped terminal must be unreachable.
func (b *GrammarBuilder) checkUnusedSymbols(root *spec.RootNode, symTabAndLexSpec *symbolTableAndLexSpec) {
	lhs2Prods := map[string][]*spec.ProductionNode{}
	var start string
	for _, prod := range root.Productions {
		if prod.IsTerminalDefinition() {
			continue
		}
		if start == "" {
			start = prod.LHS
		}
		lhs2Prods[prod.LHS] = append(lhs2Prods[prod.LHS], prod)
	}
	if start == "" {
		return
	}

	used := map[string]struct{}{
		start: {},
	}
	unchecked := []string{start}
	for len(unchecked) > 0 {
		lhs := unchecked[0]
		unchecked = unchecked[1:]
		for _, prod := range lhs2Prods[lhs] {
			for _, alt := range prod.RHS {
				for _, elem := range alt.Elements {
					id := elem.ID
					if elem.Pattern != "" {
						sym, ok := symTabAndLexSpec.anonPat2Sym[elementPattern(elem)]
						if !ok {
							continue
						}
						id, _ = symTabAndLexSpec.symTab.ToText(sym)
					}
					if _, ok := used[id]; ok {
						continue
					}
					used[id] = struct{}{}
					unchecked = append(unchecked, id)
				}
			}
		}
	}

	reported := map[string]struct{}{}
	for _, prod := range root.Productions {
		if _, ok := reported[prod.LHS]; ok {
			continue
		}
		_, isUsed := used[prod.LHS]
		if !prod.IsTerminalDefinition() {
			if !isUsed {
				reported[prod.LHS] = struct{}{}
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrUnusedProduction,
					Detail: prod.LHS,
					Row:    prod.Pos.Row,
					Col:    prod.Pos.Col,
				})
			}
			continue
		}

		skip := prod.RHS[0].Skip
		switch {
		case isUsed && skip:
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrTermCannotBeSkipped,
				Detail: prod.LHS,
				Row:    prod.Pos.Row,
				Col:    prod.Pos.Col,
			})
		case !isUsed && !skip:
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrUnusedTerminal,
				Detail: prod.LHS,
				Row:    prod.Pos.Row,
				Col:    prod.Pos.Col,
			})
		}
		reported[prod.LHS] = struct{}{}
	}
}

func sortSymbols(syms []symbol.Symbol) {
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
}

func sortStateNums(nums []StateNum) {
	sort.Slice(nums, func(i, j int) bool {
		return nums[i] < nums[j]
	})
}
