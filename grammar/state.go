package grammar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/nihei9/lrtab/grammar/symbol"
)

type StateNum int

const stateNumInitial = StateNum(0)

func (n StateNum) Int() int {
	return int(n)
}

func (n StateNum) String() string {
	return strconv.Itoa(int(n))
}

// stateKey identifies an item set. Two states holding the same items have the same key.
type stateKey string

func genStateKey(items []*Item) stateKey {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "%v.%v;", item.prod.num, item.dot)
	}
	return stateKey(b.String())
}

// State is a node of the LR(0) automaton. Items are kept sorted in the order of Item.compare
// without duplicates.
type State struct {
	num   StateNum
	items []*Item

	// transitions maps a symbol to the destination state. A state has at most one
	// destination per symbol.
	transitions map[symbol.Symbol]*State

	// backTransitions maps a symbol to the set of state numbers that reach this state on the
	// symbol.
	backTransitions map[symbol.Symbol]*treeset.Set
}

func newState(num StateNum) *State {
	return &State{
		num:             num,
		transitions:     map[symbol.Symbol]*State{},
		backTransitions: map[symbol.Symbol]*treeset.Set{},
	}
}

func (s *State) Num() StateNum {
	return s.num
}

// Items returns all items of the state in ascending order.
func (s *State) Items() []*Item {
	return s.items
}

// KernelItems returns the kernel items of the state in ascending order.
func (s *State) KernelItems() []*Item {
	var items []*Item
	for _, item := range s.items {
		if item.kernel {
			items = append(items, item)
		}
	}
	return items
}

func (s *State) key() stateKey {
	return genStateKey(s.items)
}

func (s *State) search(prod *Production, dot int) int {
	return sort.Search(len(s.items), func(i int) bool {
		item := s.items[i]
		if item.prod.num != prod.num {
			return item.prod.num > prod.num
		}
		return item.dot >= dot
	})
}

// addItem inserts an item keeping the order. It returns false when the state already has an
// equal item.
func (s *State) addItem(item *Item) bool {
	i := s.search(item.prod, item.dot)
	if i < len(s.items) && s.items[i].compare(item) == 0 {
		return false
	}
	s.items = append(s.items, nil)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = item
	return true
}

func (s *State) findItem(prod *Production, dot int) (*Item, bool) {
	i := s.search(prod, dot)
	if i < len(s.items) && s.items[i].prod.num == prod.num && s.items[i].dot == dot {
		return s.items[i], true
	}
	return nil, false
}

// IsAccepting reports whether the state holds S' → S <eof>・.
func (s *State) IsAccepting() bool {
	return s.countAcceptingItems() == 1
}

func (s *State) countAcceptingItems() int {
	c := 0
	for _, item := range s.items {
		if item.IsAccepting() {
			c++
		}
	}
	return c
}

// FinalItems returns the items whose dot is at the end, in ascending order.
func (s *State) FinalItems() []*Item {
	var items []*Item
	for _, item := range s.items {
		if item.final {
			items = append(items, item)
		}
	}
	return items
}

// addTransition records `s --sym--> dst` and its inverse edge. Recording a second distinct
// destination for the same symbol is an error.
func (s *State) addTransition(sym symbol.Symbol, dst *State) error {
	if cur, ok := s.transitions[sym]; ok {
		if cur != dst {
			return fmt.Errorf("state %v already has a transition on %v to state %v; passed: %v", s.num, sym, cur.num, dst.num)
		}
		return nil
	}
	s.transitions[sym] = dst

	back, ok := dst.backTransitions[sym]
	if !ok {
		back = treeset.NewWith(utils.IntComparator)
		dst.backTransitions[sym] = back
	}
	back.Add(s.num.Int())

	return nil
}

// Transition returns the destination of the transition on a symbol.
func (s *State) Transition(sym symbol.Symbol) (*State, bool) {
	dst, ok := s.transitions[sym]
	return dst, ok
}

// TransitionSymbols returns the symbols having an outgoing transition in ascending order.
func (s *State) TransitionSymbols() []symbol.Symbol {
	syms := make([]symbol.Symbol, 0, len(s.transitions))
	for sym := range s.transitions {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}

// BackTransitions returns the states that reach this state on a symbol, in ascending order.
func (s *State) BackTransitions(sym symbol.Symbol) []StateNum {
	back, ok := s.backTransitions[sym]
	if !ok {
		return nil
	}
	nums := make([]StateNum, 0, back.Size())
	for _, v := range back.Values() {
		nums = append(nums, StateNum(v.(int)))
	}
	return nums
}

// BackTransitionSymbols returns the symbols having an incoming transition in ascending order.
func (s *State) BackTransitionSymbols() []symbol.Symbol {
	syms := make([]symbol.Symbol, 0, len(s.backTransitions))
	for sym := range s.backTransitions {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}
