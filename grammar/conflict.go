package grammar

import (
	"fmt"
	"strings"

	"github.com/nihei9/lrtab/grammar/symbol"
)

// Conflict is an unresolvable collision of two actions in one slot of a parsing table.
type Conflict interface {
	error
	conflict()
}

// AcceptConflictError means another action claims the slot of the accept action.
type AcceptConflictError struct {
	State      StateNum
	Symbol     symbol.Symbol
	SymbolName string
	Action     Action
}

func (e *AcceptConflictError) Error() string {
	return fmt.Sprintf("accept conflict: state %v, symbol %v: accept vs %v", e.State, e.SymbolName, e.Action)
}

func (e *AcceptConflictError) conflict() {}

type ShiftReduceConflictReason string

const (
	// ReasonNoPrecedence means the production or the lookahead terminal has no precedence.
	ReasonNoPrecedence = ShiftReduceConflictReason("no precedence")

	// ReasonNonAssoc means the precedences are equal and the level is non-associative.
	ReasonNonAssoc = ShiftReduceConflictReason("non-associative")

	// ReasonNoAssoc means the precedences are equal and the level has no associativity.
	ReasonNoAssoc = ShiftReduceConflictReason("no associativity")
)

type ShiftReduceConflictError struct {
	State          StateNum
	Symbol         symbol.Symbol
	SymbolName     string
	NextState      StateNum
	Production     ProductionNum
	ProductionText string
	Reason         ShiftReduceConflictReason
}

func (e *ShiftReduceConflictError) Error() string {
	return fmt.Sprintf("shift/reduce conflict: state %v, symbol %v: shift %v vs reduce %v (%v): %v",
		e.State, e.SymbolName, e.NextState, e.Production, e.ProductionText, e.Reason)
}

func (e *ShiftReduceConflictError) conflict() {}

type ReduceReduceConflictError struct {
	State           StateNum
	Symbol          symbol.Symbol
	SymbolName      string
	Production1     ProductionNum
	ProductionText1 string
	Production2     ProductionNum
	ProductionText2 string
}

func (e *ReduceReduceConflictError) Error() string {
	return fmt.Sprintf("reduce/reduce conflict: state %v, symbol %v: reduce %v (%v) vs reduce %v (%v)",
		e.State, e.SymbolName, e.Production1, e.ProductionText1, e.Production2, e.ProductionText2)
}

func (e *ReduceReduceConflictError) conflict() {}

// GoToConflictError means two states claim one goto slot. A correct automaton never causes it.
type GoToConflictError struct {
	State      StateNum
	Symbol     symbol.Symbol
	SymbolName string
	NextState1 StateNum
	NextState2 StateNum
}

func (e *GoToConflictError) Error() string {
	return fmt.Sprintf("goto conflict: state %v, symbol %v: %v vs %v", e.State, e.SymbolName, e.NextState1, e.NextState2)
}

func (e *GoToConflictError) conflict() {}

var (
	_ Conflict = &AcceptConflictError{}
	_ Conflict = &ShiftReduceConflictError{}
	_ Conflict = &ReduceReduceConflictError{}
	_ Conflict = &GoToConflictError{}
)

// ConflictErrors holds all conflicts of a grammar in the order they were found.
type ConflictErrors []Conflict

func (e ConflictErrors) Error() string {
	switch len(e) {
	case 0:
		return ""
	case 1:
		return e[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%v conflicts", len(e))
	for _, c := range e {
		fmt.Fprintf(&b, "\n%v", c)
	}
	return b.String()
}
