package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/lrtab/grammar/symbol"
)

// firstEntry is FIRST of a non-terminal or of a suffix of a right-hand side: the terminals
// that can begin a derived string, plus empty when the empty string is derivable.
type firstEntry struct {
	symbols map[symbol.Symbol]struct{}
	empty   bool
}

func newFirstEntry() *firstEntry {
	return &firstEntry{
		symbols: map[symbol.Symbol]struct{}{},
	}
}

// add reports whether sym was new to the entry.
func (e *firstEntry) add(sym symbol.Symbol) bool {
	if _, ok := e.symbols[sym]; ok {
		return false
	}
	e.symbols[sym] = struct{}{}
	return true
}

// addEmpty reports whether the entry was not empty-marked yet.
func (e *firstEntry) addEmpty() bool {
	if e.empty {
		return false
	}
	e.empty = true
	return true
}

// sorted returns the terminals of the entry in ascending order.
func (e *firstEntry) sorted() []symbol.Symbol {
	syms := make([]symbol.Symbol, 0, len(e.symbols))
	for sym := range e.symbols {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}

// firstSet maps each non-terminal to its FIRST.
type firstSet struct {
	set map[symbol.Symbol]*firstEntry
}

// genFirstSet computes FIRST of every non-terminal. Each round folds FIRST of every
// right-hand side into the entry of its left-hand side; the rounds stop once a round
// changes nothing.
func genFirstSet(prods *productionSet) (*firstSet, error) {
	fst := &firstSet{
		set: map[symbol.Symbol]*firstEntry{},
	}
	all := prods.getAllProductions()
	for _, prod := range all {
		if _, ok := fst.set[prod.lhs]; !ok {
			fst.set[prod.lhs] = newFirstEntry()
		}
	}

	for changed := true; changed; {
		changed = false
		for _, prod := range all {
			grew, err := fst.accumulate(fst.set[prod.lhs], prod.rhs)
			if err != nil {
				return nil, err
			}
			changed = changed || grew
		}
	}
	return fst, nil
}

// accumulate adds FIRST of a symbol sequence to acc and reports whether acc grew. Terminals
// of the sequence are taken until the first symbol that cannot derive the empty string; acc
// is empty-marked only when every symbol can.
func (fst *firstSet) accumulate(acc *firstEntry, seq []symbol.Symbol) (bool, error) {
	grew := false
	for _, sym := range seq {
		if sym.IsTerminal() {
			return acc.add(sym) || grew, nil
		}

		e, ok := fst.set[sym]
		if !ok {
			return false, fmt.Errorf("a non-terminal symbol has no production; symbol: %s", sym)
		}
		for s := range e.symbols {
			if acc.add(s) {
				grew = true
			}
		}
		if !e.empty {
			return grew, nil
		}
	}
	return acc.addEmpty() || grew, nil
}

// find returns FIRST of the RHS of a production from the head position. The entry is
// empty-marked when the whole suffix can derive the empty string.
func (fst *firstSet) find(prod *Production, head int) (*firstEntry, error) {
	entry := newFirstEntry()
	if head >= prod.rhsLen {
		entry.addEmpty()
		return entry, nil
	}
	_, err := fst.accumulate(entry, prod.rhs[head:])
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (fst *firstSet) findBySymbol(sym symbol.Symbol) *firstEntry {
	return fst.set[sym]
}

// nullable reports whether a non-terminal can derive the empty string.
func (fst *firstSet) nullable(sym symbol.Symbol) bool {
	if !sym.IsNonTerminal() {
		return false
	}
	e := fst.findBySymbol(sym)
	return e != nil && e.empty
}
