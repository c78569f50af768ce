package grammar

import (
	"fmt"
	"strings"

	"github.com/nihei9/lrtab/grammar/symbol"
)

// Item is an LR(0) item, a production with a dot.
//
// E → E + T
//
// Dot | Dotted Symbol | Item
// ----+---------------+------------
// 0   | E             | E →・E + T
// 1   | +             | E → E・+ T
// 2   | T             | E → E +・T
// 3   | Nil           | E → E + T・
type Item struct {
	prod         *Production
	dot          int
	dottedSymbol symbol.Symbol

	// When final is true, the item looks like E → E + T・ and is a reduce candidate.
	final bool

	// When kernel is true, the item is the initial item S' →・S <eof> or has a dot after
	// at least one symbol.
	kernel bool
}

func newItem(prod *Production, dot int) (*Item, error) {
	if prod == nil {
		return nil, fmt.Errorf("production must be non-nil")
	}

	if dot < 0 || dot > prod.rhsLen {
		return nil, fmt.Errorf("dot must be between 0 and %v", prod.rhsLen)
	}

	dottedSymbol := symbol.SymbolNil
	if dot < prod.rhsLen {
		dottedSymbol = prod.rhs[dot]
	}

	return &Item{
		prod:         prod,
		dot:          dot,
		dottedSymbol: dottedSymbol,
		final:        dot == prod.rhsLen,
		kernel:       dot > 0 || prod.isStart(),
	}, nil
}

func (i *Item) Production() *Production {
	return i.prod
}

func (i *Item) Dot() int {
	return i.dot
}

// DottedSymbol returns the symbol right after the dot, or symbol.SymbolNil when the item is
// final.
func (i *Item) DottedSymbol() symbol.Symbol {
	return i.dottedSymbol
}

func (i *Item) IsFinal() bool {
	return i.final
}

func (i *Item) IsKernel() bool {
	return i.kernel
}

// IsAccepting reports whether the item is S' → S <eof>・.
func (i *Item) IsAccepting() bool {
	return i.final && i.prod.isStart()
}

// compare orders items by production number first and then by dot position.
func (i *Item) compare(j *Item) int {
	switch {
	case i.prod.num < j.prod.num:
		return -1
	case i.prod.num > j.prod.num:
		return 1
	case i.dot < j.dot:
		return -1
	case i.dot > j.dot:
		return 1
	}
	return 0
}

// advance returns a new item whose dot moved past the dotted symbol.
func (i *Item) advance() (*Item, error) {
	if i.final {
		return nil, fmt.Errorf("a final item cannot advance: %v", i)
	}
	return newItem(i.prod, i.dot+1)
}

func (i *Item) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v →", i.prod.lhs)
	for n, sym := range i.prod.rhs {
		if n == i.dot {
			fmt.Fprintf(&b, " ・")
		} else {
			fmt.Fprintf(&b, " ")
		}
		fmt.Fprintf(&b, "%v", sym)
	}
	if i.final {
		fmt.Fprintf(&b, " ・")
	}
	return b.String()
}
