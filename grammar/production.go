package grammar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"

	"github.com/nihei9/lrtab/grammar/symbol"
)

type productionID [32]byte

func (id productionID) String() string {
	return hex.EncodeToString(id[:])
}

func genProductionID(lhs symbol.Symbol, rhs []symbol.Symbol) productionID {
	seq := []byte{byte(lhs >> 8), byte(lhs)}
	for _, sym := range rhs {
		seq = append(seq, byte(sym>>8), byte(sym))
	}
	return productionID(sha256.Sum256(seq))
}

type ProductionNum uint16

const (
	ProductionNumStart = ProductionNum(1)
	productionNumMin   = ProductionNum(2)
)

func (n ProductionNum) Int() int {
	return int(n)
}

func (n ProductionNum) String() string {
	return strconv.Itoa(int(n))
}

// Production is a rule `lhs → rhs`. The production numbered ProductionNumStart is the
// augmented start production `S' → S <eof>`.
type Production struct {
	id     productionID
	num    ProductionNum
	lhs    symbol.Symbol
	rhs    []symbol.Symbol
	rhsLen int
}

func newProduction(lhs symbol.Symbol, rhs []symbol.Symbol) (*Production, error) {
	if lhs.IsNil() {
		return nil, fmt.Errorf("LHS must be a non-nil symbol; LHS: %v, RHS: %v", lhs, rhs)
	}
	if !lhs.IsNonTerminal() {
		return nil, fmt.Errorf("LHS must be a non-terminal symbol; LHS: %v, RHS: %v", lhs, rhs)
	}
	for _, sym := range rhs {
		if sym.IsNil() {
			return nil, fmt.Errorf("a symbol of RHS must be a non-nil symbol; LHS: %v, RHS: %v", lhs, rhs)
		}
	}

	return &Production{
		id:     genProductionID(lhs, rhs),
		lhs:    lhs,
		rhs:    rhs,
		rhsLen: len(rhs),
	}, nil
}

func (p *Production) Num() ProductionNum {
	return p.num
}

func (p *Production) LHS() symbol.Symbol {
	return p.lhs
}

func (p *Production) RHS() []symbol.Symbol {
	return p.rhs
}

func (p *Production) String() string {
	return fmt.Sprintf("%v → %v", p.lhs, p.rhs)
}

func (p *Production) isEmpty() bool {
	return p.rhsLen == 0
}

func (p *Production) isStart() bool {
	return p.lhs.IsStart()
}

// rightmostTerminal returns the last terminal symbol of the RHS, or symbol.SymbolNil when
// the RHS has no terminal.
func (p *Production) rightmostTerminal() symbol.Symbol {
	for i := p.rhsLen - 1; i >= 0; i-- {
		if p.rhs[i].IsTerminal() {
			return p.rhs[i]
		}
	}
	return symbol.SymbolNil
}

type productionSet struct {
	lhs2Prods map[symbol.Symbol][]*Production
	id2Prod   map[productionID]*Production
	prods     []*Production
	num       ProductionNum
}

func newProductionSet() *productionSet {
	return &productionSet{
		lhs2Prods: map[symbol.Symbol][]*Production{},
		id2Prod:   map[productionID]*Production{},
		num:       productionNumMin,
	}
}

// append numbers a production and stores it. It returns false when the set already has
// the same production.
func (ps *productionSet) append(prod *Production) bool {
	if _, ok := ps.id2Prod[prod.id]; ok {
		return false
	}

	if prod.lhs.IsStart() {
		prod.num = ProductionNumStart
	} else {
		prod.num = ps.num
		ps.num++
	}

	ps.lhs2Prods[prod.lhs] = append(ps.lhs2Prods[prod.lhs], prod)
	ps.id2Prod[prod.id] = prod
	ps.prods = append(ps.prods, prod)
	sort.Slice(ps.prods, func(i, j int) bool {
		return ps.prods[i].num < ps.prods[j].num
	})

	return true
}

func (ps *productionSet) findByID(id productionID) (*Production, bool) {
	prod, ok := ps.id2Prod[id]
	return prod, ok
}

// findByLHS returns productions of a non-terminal in declaration order.
func (ps *productionSet) findByLHS(lhs symbol.Symbol) ([]*Production, bool) {
	if lhs.IsNil() {
		return nil, false
	}

	prods, ok := ps.lhs2Prods[lhs]
	return prods, ok
}

func (ps *productionSet) findByNum(num ProductionNum) (*Production, bool) {
	i := sort.Search(len(ps.prods), func(i int) bool {
		return ps.prods[i].num >= num
	})
	if i < len(ps.prods) && ps.prods[i].num == num {
		return ps.prods[i], true
	}
	return nil, false
}

// getAllProductions returns all productions in ascending order of their numbers.
func (ps *productionSet) getAllProductions() []*Production {
	return ps.prods
}

// nonTerminals returns the LHS symbols in ascending order.
func (ps *productionSet) nonTerminals() []symbol.Symbol {
	syms := make([]symbol.Symbol, 0, len(ps.lhs2Prods))
	for sym := range ps.lhs2Prods {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}
