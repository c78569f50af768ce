package grammar

import (
	"fmt"

	"github.com/nihei9/lrtab/grammar/symbol"
)

// Lookahead decides on which terminals a state reduces by a production. It is defined for
// pairs where the final item of the production is in the state and returns terminals in
// ascending order.
type Lookahead interface {
	Lookahead(state *State, prod *Production) []symbol.Symbol
}

type stateAndSymbol struct {
	state StateNum
	sym   symbol.Symbol
}

type stateAndProduction struct {
	state StateNum
	prod  ProductionNum
}

type terminalSet map[symbol.Symbol]struct{}

func (s terminalSet) merge(t terminalSet) bool {
	changed := false
	for sym := range t {
		if _, ok := s[sym]; ok {
			continue
		}
		s[sym] = struct{}{}
		changed = true
	}
	return changed
}

func (s terminalSet) sorted() []symbol.Symbol {
	syms := make([]symbol.Symbol, 0, len(s))
	for sym := range s {
		syms = append(syms, sym)
	}
	sortSymbols(syms)
	return syms
}

// lalr1Lookahead is the LALR(1) oracle computed with the relations of DeRemer and Pennello.
//
//	DR(p, A)      = { t | p --A--> r --t--> }
//	(p, A) reads (r, C)        iff p --A--> r --C--> and C is nullable
//	(p, A) includes (p', B)    iff B → βAγ, γ is nullable and p' --β--> p
//	(q, A → ω) lookback (p, A) iff p --ω--> q
//
//	Read(p, A)    = DR(p, A) ∪ ⋃{ Read(r, C) | (p, A) reads (r, C) }
//	Follow(p, A)  = Read(p, A) ∪ ⋃{ Follow(p', B) | (p, A) includes (p', B) }
//	LA(q, A → ω)  = ⋃{ Follow(p, A) | (q, A → ω) lookback (p, A) }
type lalr1Lookahead struct {
	lookaheads map[stateAndProduction][]symbol.Symbol
}

var _ Lookahead = &lalr1Lookahead{}

func genLALR1Lookahead(automaton *Automaton, prods *productionSet, first *firstSet) (*lalr1Lookahead, error) {
	// Non-terminal transitions in state order and then in symbol order.
	var trans []stateAndSymbol
	transIdx := map[stateAndSymbol]int{}
	for _, s := range automaton.states {
		for _, sym := range s.TransitionSymbols() {
			if !sym.IsNonTerminal() {
				continue
			}
			t := stateAndSymbol{
				state: s.num,
				sym:   sym,
			}
			transIdx[t] = len(trans)
			trans = append(trans, t)
		}
	}

	read := make([]terminalSet, len(trans))
	reads := make([][]int, len(trans))
	for i, t := range trans {
		r, _ := automaton.states[t.state].Transition(t.sym)
		read[i] = terminalSet{}
		for _, sym := range r.TransitionSymbols() {
			switch {
			case sym.IsTerminal():
				read[i][sym] = struct{}{}
			case first.nullable(sym):
				reads[i] = append(reads[i], transIdx[stateAndSymbol{state: r.num, sym: sym}])
			}
		}
	}
	propagate(read, reads)

	includes := make([][]int, len(trans))
	for j, t := range trans {
		ps, _ := prods.findByLHS(t.sym)
		for _, prod := range ps {
			cur := automaton.states[t.state]
			for i, sym := range prod.rhs {
				if sym.IsNonTerminal() {
					fst, err := first.find(prod, i+1)
					if err != nil {
						return nil, err
					}
					if fst.empty {
						k, ok := transIdx[stateAndSymbol{state: cur.num, sym: sym}]
						if !ok {
							return nil, fmt.Errorf("a transition was not found; state: %v, symbol: %v", cur.num, sym)
						}
						includes[k] = append(includes[k], j)
					}
				}
				next, ok := cur.Transition(sym)
				if !ok {
					return nil, fmt.Errorf("a transition was not found; state: %v, symbol: %v", cur.num, sym)
				}
				cur = next
			}
		}
	}
	follow := read
	propagate(follow, includes)

	lookaheads := map[stateAndProduction][]symbol.Symbol{}
	for _, q := range automaton.states {
		for _, item := range q.FinalItems() {
			prod := item.prod
			if prod.isStart() {
				continue
			}
			la := terminalSet{}
			for _, p := range lookback(automaton, q, prod) {
				i, ok := transIdx[stateAndSymbol{state: p, sym: prod.lhs}]
				if !ok {
					return nil, fmt.Errorf("a lookback transition was not found; state: %v, production: %v", p, prod.num)
				}
				la.merge(follow[i])
			}
			lookaheads[stateAndProduction{state: q.num, prod: prod.num}] = la.sorted()
			tracer().Debugf("LA(%v, %v) = %v", q.num, prod.num, lookaheads[stateAndProduction{state: q.num, prod: prod.num}])
		}
	}

	return &lalr1Lookahead{
		lookaheads: lookaheads,
	}, nil
}

// propagate merges sets[j] into sets[i] for every edge i → j until nothing changes.
func propagate(sets []terminalSet, edges [][]int) {
	for {
		changed := false
		for i, js := range edges {
			for _, j := range js {
				if sets[i].merge(sets[j]) {
					changed = true
				}
			}
		}
		if !changed {
			return
		}
	}
}

// lookback walks the RHS of a production backwards from a state through back transitions
// and returns the states where the walk starts, in ascending order.
func lookback(automaton *Automaton, q *State, prod *Production) []StateNum {
	cur := []StateNum{q.num}
	for i := prod.rhsLen - 1; i >= 0; i-- {
		seen := map[StateNum]struct{}{}
		var prev []StateNum
		for _, n := range cur {
			for _, p := range automaton.states[n].BackTransitions(prod.rhs[i]) {
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				prev = append(prev, p)
			}
		}
		cur = prev
	}
	sortStateNums(cur)
	return cur
}

func (la *lalr1Lookahead) Lookahead(state *State, prod *Production) []symbol.Symbol {
	return la.lookaheads[stateAndProduction{state: state.num, prod: prod.num}]
}
