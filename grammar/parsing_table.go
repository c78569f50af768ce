package grammar

import (
	"fmt"
	"strings"

	"github.com/nihei9/lrtab/grammar/symbol"
)

type ActionType string

const (
	ActionTypeShift  = ActionType("shift")
	ActionTypeReduce = ActionType("reduce")
	ActionTypeAccept = ActionType("accept")
)

// Action is one of shift, reduce, and accept. State is meaningful only for a shift and
// Production only for a reduction.
type Action struct {
	Type       ActionType
	State      StateNum
	Production ProductionNum
}

func newShiftAction(state StateNum) Action {
	return Action{
		Type:  ActionTypeShift,
		State: state,
	}
}

func newReduceAction(prod ProductionNum) Action {
	return Action{
		Type:       ActionTypeReduce,
		Production: prod,
	}
}

func newAcceptAction() Action {
	return Action{
		Type: ActionTypeAccept,
	}
}

func (a Action) String() string {
	switch a.Type {
	case ActionTypeShift:
		return fmt.Sprintf("shift %v", a.State)
	case ActionTypeReduce:
		return fmt.Sprintf("reduce %v", a.Production)
	}
	return string(a.Type)
}

type conflictResolutionMethod int

func (m conflictResolutionMethod) Int() int {
	return int(m)
}

const (
	ResolvedByPrec  conflictResolutionMethod = 1
	ResolvedByAssoc conflictResolutionMethod = 2
)

// shiftReduceResolution records a shift/reduce conflict resolved by precedence or
// associativity.
type shiftReduceResolution struct {
	state      StateNum
	sym        symbol.Symbol
	nextState  StateNum
	prodNum    ProductionNum
	adopted    Action
	resolvedBy conflictResolutionMethod
}

// ParsingTable holds the action table and the goto table. Both are read-only once built.
type ParsingTable struct {
	action     map[stateAndSymbol]Action
	goTo       map[stateAndSymbol]StateNum
	stateCount int

	InitialState   StateNum
	AcceptingState StateNum
}

// Action returns the action of a state on a terminal. It returns false when the table has no
// action, which means a syntax error.
func (t *ParsingTable) Action(state StateNum, sym symbol.Symbol) (Action, bool) {
	act, ok := t.action[stateAndSymbol{state: state, sym: sym}]
	return act, ok
}

// GoTo returns the state reached from a state on a non-terminal.
func (t *ParsingTable) GoTo(state StateNum, sym symbol.Symbol) (StateNum, bool) {
	next, ok := t.goTo[stateAndSymbol{state: state, sym: sym}]
	return next, ok
}

func (t *ParsingTable) StateCount() int {
	return t.stateCount
}

type lrTableBuilder struct {
	automaton    *Automaton
	lookahead    Lookahead
	prods        *productionSet
	symTab       *symbol.SymbolTable
	precAndAssoc *precAndAssoc

	conflicts   ConflictErrors
	resolutions []*shiftReduceResolution
}

// build compiles the automaton into a parsing table. Unresolvable conflicts don't stop
// the build; they are collected in b.conflicts and the conflicting slot keeps the action
// written first.
func (b *lrTableBuilder) build() *ParsingTable {
	tab := &ParsingTable{
		action:         map[stateAndSymbol]Action{},
		goTo:           map[stateAndSymbol]StateNum{},
		stateCount:     len(b.automaton.states),
		InitialState:   b.automaton.InitialState().num,
		AcceptingState: b.automaton.AcceptingState().num,
	}

	for _, state := range b.automaton.states {
		if state.IsAccepting() {
			b.writeAcceptAction(tab, state.num)
		}

		for _, sym := range state.TransitionSymbols() {
			next, _ := state.Transition(sym)
			if sym.IsTerminal() {
				b.writeShiftAction(tab, state.num, sym, next.num)
			} else {
				b.writeGoTo(tab, state.num, sym, next.num)
			}
		}

		for _, item := range state.FinalItems() {
			if item.prod.isStart() {
				continue
			}
			for _, a := range b.lookahead.Lookahead(state, item.prod) {
				b.writeReduceAction(tab, state.num, a, item.prod.num)
			}
		}
	}

	tracer().Infof("parsing table: %v states, %v actions, %v gotos, %v conflicts", tab.stateCount, len(tab.action), len(tab.goTo), len(b.conflicts))

	return tab
}

func (b *lrTableBuilder) writeAcceptAction(tab *ParsingTable, state StateNum) {
	key := stateAndSymbol{state: state, sym: symbol.SymbolEOF}
	if act, ok := tab.action[key]; ok {
		b.conflicts = append(b.conflicts, &AcceptConflictError{
			State:      state,
			Symbol:     symbol.SymbolEOF,
			SymbolName: b.symbolText(symbol.SymbolEOF),
			Action:     act,
		})
		return
	}
	tab.action[key] = newAcceptAction()
}

func (b *lrTableBuilder) writeShiftAction(tab *ParsingTable, state StateNum, sym symbol.Symbol, nextState StateNum) {
	key := stateAndSymbol{state: state, sym: sym}
	if act, ok := tab.action[key]; ok && act.Type == ActionTypeAccept {
		b.conflicts = append(b.conflicts, &AcceptConflictError{
			State:      state,
			Symbol:     sym,
			SymbolName: b.symbolText(sym),
			Action:     newShiftAction(nextState),
		})
		return
	}
	tab.action[key] = newShiftAction(nextState)
}

// writeReduceAction writes a reduce action. A collision with a shift action is resolved by
// precedence and associativity. Any other collision is a conflict.
func (b *lrTableBuilder) writeReduceAction(tab *ParsingTable, state StateNum, sym symbol.Symbol, prod ProductionNum) {
	key := stateAndSymbol{state: state, sym: sym}
	act, ok := tab.action[key]
	if !ok {
		tab.action[key] = newReduceAction(prod)
		return
	}

	switch act.Type {
	case ActionTypeAccept:
		b.conflicts = append(b.conflicts, &AcceptConflictError{
			State:      state,
			Symbol:     sym,
			SymbolName: b.symbolText(sym),
			Action:     newReduceAction(prod),
		})
	case ActionTypeReduce:
		if act.Production == prod {
			return
		}
		b.conflicts = append(b.conflicts, &ReduceReduceConflictError{
			State:           state,
			Symbol:          sym,
			SymbolName:      b.symbolText(sym),
			Production1:     act.Production,
			ProductionText1: b.productionText(act.Production),
			Production2:     prod,
			ProductionText2: b.productionText(prod),
		})
	case ActionTypeShift:
		adopted, method, reason := b.resolveSRConflict(sym, prod)
		if reason != "" {
			b.conflicts = append(b.conflicts, &ShiftReduceConflictError{
				State:          state,
				Symbol:         sym,
				SymbolName:     b.symbolText(sym),
				NextState:      act.State,
				Production:     prod,
				ProductionText: b.productionText(prod),
				Reason:         reason,
			})
			return
		}

		res := &shiftReduceResolution{
			state:      state,
			sym:        sym,
			nextState:  act.State,
			prodNum:    prod,
			adopted:    act,
			resolvedBy: method,
		}
		if adopted == ActionTypeReduce {
			res.adopted = newReduceAction(prod)
			tab.action[key] = res.adopted
		}
		b.resolutions = append(b.resolutions, res)
		tracer().Debugf("shift/reduce conflict resolved: state %v, symbol %v, %v", state, b.symbolText(sym), res.adopted)
	}
}

func (b *lrTableBuilder) writeGoTo(tab *ParsingTable, state StateNum, sym symbol.Symbol, nextState StateNum) {
	key := stateAndSymbol{state: state, sym: sym}
	if cur, ok := tab.goTo[key]; ok && cur != nextState {
		b.conflicts = append(b.conflicts, &GoToConflictError{
			State:      state,
			Symbol:     sym,
			SymbolName: b.symbolText(sym),
			NextState1: cur,
			NextState2: nextState,
		})
		return
	}
	tab.goTo[key] = nextState
}

// resolveSRConflict decides between shifting a terminal and reducing by a production. When
// the conflict cannot be resolved, it returns a non-empty reason.
func (b *lrTableBuilder) resolveSRConflict(sym symbol.Symbol, prod ProductionNum) (ActionType, conflictResolutionMethod, ShiftReduceConflictReason) {
	symPrec := b.precAndAssoc.terminalPrecedence(sym)
	prodPrec := b.precAndAssoc.productionPrecedence(prod)
	if symPrec == precNil || prodPrec == precNil {
		return "", 0, ReasonNoPrecedence
	}
	if prodPrec < symPrec {
		return ActionTypeShift, ResolvedByPrec, ""
	}
	if prodPrec > symPrec {
		return ActionTypeReduce, ResolvedByPrec, ""
	}

	// Equal precedences name one level, so the associativity of the lookahead terminal is the
	// level's. The associativity a production records is kept for the report only; a #prec
	// production has none of its own.
	switch b.precAndAssoc.terminalAssociativity(sym) {
	case assocTypeLeft:
		return ActionTypeReduce, ResolvedByAssoc, ""
	case assocTypeRight:
		return ActionTypeShift, ResolvedByAssoc, ""
	case assocTypeNonAssoc:
		return "", 0, ReasonNonAssoc
	}
	return "", 0, ReasonNoAssoc
}

func (b *lrTableBuilder) symbolText(sym symbol.Symbol) string {
	if b.symTab == nil {
		return sym.String()
	}
	text, ok := b.symTab.ToText(sym)
	if !ok {
		return sym.String()
	}
	return text
}

func (b *lrTableBuilder) productionText(num ProductionNum) string {
	prod, ok := b.prods.findByNum(num)
	if !ok {
		return num.String()
	}
	var s strings.Builder
	fmt.Fprintf(&s, "%v →", b.symbolText(prod.lhs))
	if prod.isEmpty() {
		fmt.Fprintf(&s, " ε")
	}
	for _, sym := range prod.rhs {
		fmt.Fprintf(&s, " %v", b.symbolText(sym))
	}
	return s.String()
}
