package grammar

import (
	"fmt"
	"sort"

	spec "github.com/nihei9/lrtab/spec/grammar"
)

func assocText(assoc assocType) string {
	switch assoc {
	case assocTypeLeft:
		return "l"
	case assocTypeRight:
		return "r"
	case assocTypeNonAssoc:
		return "n"
	}
	return ""
}

func (b *lrTableBuilder) genReport(tab *ParsingTable, gram *Grammar, class Class) (*spec.Report, error) {
	var terms []*spec.Terminal
	{
		skip := map[string]struct{}{}
		for _, k := range gram.skipLexKinds {
			skip[k.String()] = struct{}{}
		}

		termSyms := b.symTab.TerminalSymbols()
		terms = make([]*spec.Terminal, len(termSyms)+1)
		for _, sym := range termSyms {
			name, ok := b.symTab.ToText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate terminals: symbol not found: %v", sym)
			}

			_, anonymous := gram.sym2AnonPat[sym]
			_, skipped := skip[name]
			terms[sym.Num()] = &spec.Terminal{
				Number:        sym.Num().Int(),
				Name:          name,
				Anonymous:     anonymous,
				Pattern:       gram.sym2Pat[sym],
				Skip:          skipped,
				Precedence:    b.precAndAssoc.terminalPrecedence(sym),
				Associativity: assocText(b.precAndAssoc.terminalAssociativity(sym)),
			}
		}
	}

	var nonTerms []*spec.NonTerminal
	{
		nonTermSyms := b.symTab.NonTerminalSymbols()
		nonTerms = make([]*spec.NonTerminal, len(nonTermSyms)+1)
		for _, sym := range nonTermSyms {
			name, ok := b.symTab.ToText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate non-terminals: symbol not found: %v", sym)
			}

			nonTerms[sym.Num()] = &spec.NonTerminal{
				Number: sym.Num().Int(),
				Name:   name,
			}
		}
	}

	var prods []*spec.Production
	{
		ps := b.prods.getAllProductions()
		prods = make([]*spec.Production, len(ps)+1)
		for _, p := range ps {
			rhs := make([]int, len(p.rhs))
			for i, e := range p.rhs {
				if e.IsTerminal() {
					rhs[i] = e.Num().Int()
				} else {
					rhs[i] = e.Num().Int() * -1
				}
			}

			prods[p.num.Int()] = &spec.Production{
				Number:        p.num.Int(),
				LHS:           p.lhs.Num().Int(),
				RHS:           rhs,
				Precedence:    b.precAndAssoc.productionPrecedence(p.num),
				Associativity: assocText(b.precAndAssoc.productionAssociativity(p.num)),
			}
		}
	}

	var states []*spec.State
	{
		srConflicts := map[StateNum][]*spec.SRConflict{}
		for _, r := range b.resolutions {
			c := &spec.SRConflict{
				Symbol:     r.sym.Num().Int(),
				State:      r.nextState.Int(),
				Production: r.prodNum.Int(),
				ResolvedBy: r.resolvedBy.Int(),
			}
			switch r.adopted.Type {
			case ActionTypeShift:
				n := r.adopted.State.Int()
				c.AdoptedState = &n
			case ActionTypeReduce:
				n := r.adopted.Production.Int()
				c.AdoptedProduction = &n
			}
			srConflicts[r.state] = append(srConflicts[r.state], c)
		}
		rrConflicts := map[StateNum][]*spec.RRConflict{}
		for _, con := range b.conflicts {
			switch c := con.(type) {
			case *ShiftReduceConflictError:
				srConflicts[c.State] = append(srConflicts[c.State], &spec.SRConflict{
					Symbol:     c.Symbol.Num().Int(),
					State:      c.NextState.Int(),
					Production: c.Production.Int(),
					Reason:     string(c.Reason),
				})
			case *ReduceReduceConflictError:
				rrConflicts[c.State] = append(rrConflicts[c.State], &spec.RRConflict{
					Symbol:      c.Symbol.Num().Int(),
					Production1: c.Production1.Int(),
					Production2: c.Production2.Int(),
				})
			}
		}

		states = make([]*spec.State, len(b.automaton.states))
		for _, s := range b.automaton.states {
			var kernel []*spec.Item
			for _, item := range s.KernelItems() {
				kernel = append(kernel, &spec.Item{
					Production: item.prod.num.Int(),
					Dot:        item.dot,
				})
			}

			var shift []*spec.Transition
			var reduce []*spec.Reduce
			var goTo []*spec.Transition
			var accept bool
			{
			TERMINALS_LOOP:
				for _, t := range b.symTab.TerminalSymbols() {
					act, ok := tab.Action(s.num, t)
					if !ok {
						continue
					}
					switch act.Type {
					case ActionTypeAccept:
						accept = true
					case ActionTypeShift:
						shift = append(shift, &spec.Transition{
							Symbol: t.Num().Int(),
							State:  act.State.Int(),
						})
					case ActionTypeReduce:
						for _, r := range reduce {
							if r.Production == act.Production.Int() {
								r.LookAhead = append(r.LookAhead, t.Num().Int())
								continue TERMINALS_LOOP
							}
						}
						reduce = append(reduce, &spec.Reduce{
							LookAhead:  []int{t.Num().Int()},
							Production: act.Production.Int(),
						})
					}
				}

				for _, n := range b.symTab.NonTerminalSymbols() {
					next, ok := tab.GoTo(s.num, n)
					if !ok {
						continue
					}
					goTo = append(goTo, &spec.Transition{
						Symbol: n.Num().Int(),
						State:  next.Int(),
					})
				}

				sort.Slice(shift, func(i, j int) bool {
					return shift[i].State < shift[j].State
				})
				sort.Slice(reduce, func(i, j int) bool {
					return reduce[i].Production < reduce[j].Production
				})
				sort.Slice(goTo, func(i, j int) bool {
					return goTo[i].State < goTo[j].State
				})
			}

			sr := srConflicts[s.num]
			sort.SliceStable(sr, func(i, j int) bool {
				return sr[i].Symbol < sr[j].Symbol
			})
			rr := rrConflicts[s.num]
			sort.SliceStable(rr, func(i, j int) bool {
				return rr[i].Symbol < rr[j].Symbol
			})

			states[s.num.Int()] = &spec.State{
				Number:     s.num.Int(),
				Kernel:     kernel,
				Shift:      shift,
				Reduce:     reduce,
				GoTo:       goTo,
				Accept:     accept,
				SRConflict: sr,
				RRConflict: rr,
			}
		}
	}

	return &spec.Report{
		Name:         gram.name,
		Class:        string(class),
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  prods,
		States:       states,
	}, nil
}

// SymbolName returns the name of a symbol number used in a report. A negative number denotes
// a non-terminal.
func SymbolName(report *spec.Report, num int) string {
	if num < 0 {
		return report.NonTerminals[-num].Name
	}
	if t := report.Terminals[num]; t.Anonymous && t.Pattern != "" {
		return fmt.Sprintf("%q", t.Pattern)
	}
	return report.Terminals[num].Name
}

// ProductionText renders a production of a report as `lhs → rhs`.
func ProductionText(report *spec.Report, num int) string {
	prod := report.Productions[num]
	text := fmt.Sprintf("%v →", report.NonTerminals[prod.LHS].Name)
	if len(prod.RHS) == 0 {
		return text + " ε"
	}
	for _, sym := range prod.RHS {
		text += " " + SymbolName(report, sym)
	}
	return text
}
