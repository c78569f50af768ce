package grammar

import (
	"fmt"

	"github.com/nihei9/lrtab/grammar/symbol"
)

// Automaton is the LR(0) automaton of a grammar. States are numbered in creation order and
// state 0 is the closure of S' →・S <eof>.
type Automaton struct {
	states         []*State
	key2State      map[stateKey]*State
	prods          *productionSet
	acceptingState *State
}

func genAutomaton(prods *productionSet, startSym symbol.Symbol) (*Automaton, error) {
	if !startSym.IsStart() {
		return nil, fmt.Errorf("passed symbol is not a start symbol")
	}
	startProds, ok := prods.findByLHS(startSym)
	if !ok || len(startProds) != 1 {
		return nil, fmt.Errorf("the augmented start symbol must have exactly one production")
	}

	a := &Automaton{
		key2State: map[stateKey]*State{},
		prods:     prods,
	}

	initialItem, err := newItem(startProds[0], 0)
	if err != nil {
		return nil, err
	}
	if _, err := a.addState([]*Item{initialItem}); err != nil {
		return nil, err
	}

	// a.states grows while we are visiting it, so every new state is expanded exactly once.
	for i := 0; i < len(a.states); i++ {
		src := a.states[i]
		kernels, syms, err := genNeighbourKernels(src)
		if err != nil {
			return nil, err
		}
		for _, sym := range syms {
			dst, err := a.addState(kernels[sym])
			if err != nil {
				return nil, err
			}
			if err := src.addTransition(sym, dst); err != nil {
				return nil, err
			}
			tracer().Debugf("goto(%v, %v) = %v", src.num, sym, dst.num)
		}
	}

	for _, s := range a.states {
		switch c := s.countAcceptingItems(); {
		case c > 1:
			return nil, fmt.Errorf("state %v has %v accepting items", s.num, c)
		case c == 1:
			if a.acceptingState != nil {
				return nil, fmt.Errorf("both state %v and state %v are accepting", a.acceptingState.num, s.num)
			}
			a.acceptingState = s
		}
	}
	if a.acceptingState == nil {
		return nil, fmt.Errorf("the automaton has no accepting state")
	}

	tracer().Infof("LR(0) automaton: %v states, accepting state: %v", len(a.states), a.acceptingState.num)

	return a, nil
}

// addState closes a kernel and returns the state holding the resulting items. When an equal
// state already exists, addState returns it instead of creating a new one.
func (a *Automaton) addState(kernel []*Item) (*State, error) {
	candidate := newState(StateNum(len(a.states)))
	for _, item := range kernel {
		candidate.addItem(item)
	}
	if err := closure(candidate, a.prods); err != nil {
		return nil, err
	}

	key := candidate.key()
	if s, ok := a.key2State[key]; ok {
		return s, nil
	}
	a.key2State[key] = candidate
	a.states = append(a.states, candidate)
	return candidate, nil
}

// closure adds S →・α for every item whose dotted symbol is S until no item is added.
func closure(s *State, prods *productionSet) error {
	unchecked := make([]*Item, len(s.items))
	copy(unchecked, s.items)
	for len(unchecked) > 0 {
		item := unchecked[0]
		unchecked = unchecked[1:]
		if !item.dottedSymbol.IsNonTerminal() {
			continue
		}

		ps, ok := prods.findByLHS(item.dottedSymbol)
		if !ok {
			return fmt.Errorf("a non-terminal symbol has no production: %v", item.dottedSymbol)
		}
		for _, prod := range ps {
			item, err := newItem(prod, 0)
			if err != nil {
				return err
			}
			if s.addItem(item) {
				unchecked = append(unchecked, item)
			}
		}
	}
	return nil
}

// genNeighbourKernels advances the dot of every non-final item. It returns the kernels keyed
// by the advanced symbol and the symbols in ascending order.
func genNeighbourKernels(s *State) (map[symbol.Symbol][]*Item, []symbol.Symbol, error) {
	kernels := map[symbol.Symbol][]*Item{}
	var syms []symbol.Symbol
	for _, item := range s.items {
		if item.final {
			continue
		}
		next, err := item.advance()
		if err != nil {
			return nil, nil, err
		}
		if _, ok := kernels[item.dottedSymbol]; !ok {
			syms = append(syms, item.dottedSymbol)
		}
		kernels[item.dottedSymbol] = append(kernels[item.dottedSymbol], next)
	}
	sortSymbols(syms)
	return kernels, syms, nil
}

// States returns all states in index order.
func (a *Automaton) States() []*State {
	return a.states
}

func (a *Automaton) State(num StateNum) (*State, bool) {
	if num < 0 || num.Int() >= len(a.states) {
		return nil, false
	}
	return a.states[num], true
}

func (a *Automaton) InitialState() *State {
	return a.states[stateNumInitial]
}

func (a *Automaton) AcceptingState() *State {
	return a.acceptingState
}
