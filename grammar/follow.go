package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/lrtab/grammar/symbol"
)

type followEntry struct {
	symbols map[symbol.Symbol]struct{}
}

func newFollowEntry() *followEntry {
	return &followEntry{
		symbols: map[symbol.Symbol]struct{}{},
	}
}

func (e *followEntry) add(sym symbol.Symbol) bool {
	if _, ok := e.symbols[sym]; ok {
		return false
	}
	e.symbols[sym] = struct{}{}
	return true
}

func (e *followEntry) merge(fst *firstEntry, flw *followEntry) bool {
	changed := false

	if fst != nil {
		for sym := range fst.symbols {
			if e.add(sym) {
				changed = true
			}
		}
	}

	if flw != nil {
		for sym := range flw.symbols {
			if e.add(sym) {
				changed = true
			}
		}
	}

	return changed
}

func (e *followEntry) sorted() []symbol.Symbol {
	syms := make([]symbol.Symbol, 0, len(e.symbols))
	for sym := range e.symbols {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}

type followSet struct {
	set map[symbol.Symbol]*followEntry
}

func newFollow(prods *productionSet) *followSet {
	flw := &followSet{
		set: map[symbol.Symbol]*followEntry{},
	}
	for _, sym := range prods.nonTerminals() {
		flw.set[sym] = newFollowEntry()
	}
	return flw
}

func (flw *followSet) find(sym symbol.Symbol) (*followEntry, error) {
	e, ok := flw.set[sym]
	if !ok {
		return nil, fmt.Errorf("an entry of FOLLOW was not found; symbol: %s", sym)
	}
	return e, nil
}

// genFollowSet computes FOLLOW of every non-terminal. Because the augmented start
// production ends with <eof>, <eof> reaches FOLLOW through FIRST and needs no special case.
func genFollowSet(prods *productionSet, first *firstSet) (*followSet, error) {
	follow := newFollow(prods)
	for {
		more := false
		for _, prod := range prods.getAllProductions() {
			for i, sym := range prod.rhs {
				if !sym.IsNonTerminal() {
					continue
				}
				e, err := follow.find(sym)
				if err != nil {
					return nil, err
				}
				fst, err := first.find(prod, i+1)
				if err != nil {
					return nil, err
				}
				if e.merge(fst, nil) {
					more = true
				}
				if !fst.empty {
					continue
				}
				flw, err := follow.find(prod.lhs)
				if err != nil {
					return nil, err
				}
				if e.merge(nil, flw) {
					more = true
				}
			}
		}
		if !more {
			break
		}
	}

	return follow, nil
}

// slr1Lookahead is the SLR(1) oracle. A reduction by `A → α` fires on FOLLOW(A) in any
// state holding the final item.
type slr1Lookahead struct {
	follow *followSet
}

var _ Lookahead = &slr1Lookahead{}

func genSLR1Lookahead(prods *productionSet, first *firstSet) (*slr1Lookahead, error) {
	follow, err := genFollowSet(prods, first)
	if err != nil {
		return nil, err
	}
	return &slr1Lookahead{
		follow: follow,
	}, nil
}

func (la *slr1Lookahead) Lookahead(state *State, prod *Production) []symbol.Symbol {
	if prod.isStart() {
		return nil
	}
	if _, ok := state.findItem(prod, prod.rhsLen); !ok {
		return nil
	}
	e, err := la.follow.find(prod.lhs)
	if err != nil {
		return nil
	}
	return e.sorted()
}
