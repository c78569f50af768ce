package symbol

import (
	"fmt"
	"sort"
)

// A symbol is packed into 16 bits.
//
//	bit 15    | 1: terminal, 0: non-terminal
//	bit 14    | 1: the augmented start symbol or <eof>, 0: a user-defined symbol
//	bit 13..0 | the symbol number
const (
	maskTerminal = uint16(0x8000)
	maskReserved = uint16(0x4000)
	maskNum      = uint16(0x3fff)

	numStart = uint16(0x0001)
	numEOF   = uint16(0x0001)

	SymbolNil   = Symbol(0)
	symbolStart = Symbol(maskReserved | numStart)
	SymbolEOF   = Symbol(maskTerminal | maskReserved | numEOF)

	// Reserved names contain `<` and `>` so they never collide with user-defined names.
	nameEOF = "<eof>"

	// The number 1 is taken by the augmented start symbol and <eof> respectively.
	nonTerminalNumMin = SymbolNum(2)
	terminalNumMin    = SymbolNum(2)
	symbolNumMax      = SymbolNum(maskNum)
)

type SymbolNum uint16

func (n SymbolNum) Int() int {
	return int(n)
}

// Symbol is an interned handle of a grammar symbol. Symbols are compared by value and
// their natural order is used wherever the generator needs a deterministic order.
type Symbol uint16

func newSymbol(terminal bool, reserved bool, num SymbolNum) (Symbol, error) {
	if num > symbolNumMax {
		return SymbolNil, fmt.Errorf("too many symbols; limit: %v", symbolNumMax)
	}
	v := uint16(num)
	if terminal {
		v |= maskTerminal
	}
	if reserved {
		v |= maskReserved
	}
	return Symbol(v), nil
}

func (s Symbol) String() string {
	var prefix string
	switch {
	case s.IsNil():
		return "nil"
	case s.IsStart():
		prefix = "s"
	case s.IsEOF():
		prefix = "e"
	case s.IsTerminal():
		prefix = "t"
	default:
		prefix = "n"
	}
	return fmt.Sprintf("%v%v", prefix, s.Num())
}

func (s Symbol) Num() SymbolNum {
	return SymbolNum(uint16(s) & maskNum)
}

func (s Symbol) IsNil() bool {
	return s.Num() == 0
}

func (s Symbol) IsStart() bool {
	return !s.IsNil() && uint16(s)&(maskTerminal|maskReserved) == maskReserved
}

func (s Symbol) IsEOF() bool {
	return !s.IsNil() && uint16(s)&(maskTerminal|maskReserved) == maskTerminal|maskReserved
}

func (s Symbol) IsTerminal() bool {
	return !s.IsNil() && uint16(s)&maskTerminal != 0
}

func (s Symbol) IsNonTerminal() bool {
	return !s.IsNil() && uint16(s)&maskTerminal == 0
}

// SymbolTable interns symbol names. Terminals and non-terminals are numbered independently,
// so a terminal number and a non-terminal number can be used as column indexes of the action
// table and the goto table respectively.
type SymbolTable struct {
	text2Sym     map[string]Symbol
	sym2Text     map[Symbol]string
	termTexts    []string
	nonTermTexts []string
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		text2Sym: map[string]Symbol{
			nameEOF: SymbolEOF,
		},
		sym2Text: map[Symbol]string{
			SymbolEOF: nameEOF,
		},
		termTexts: []string{
			"",      // Nil
			nameEOF, // EOF
		},
		nonTermTexts: []string{
			"", // Nil
			"", // Start Symbol
		},
	}
}

// RegisterStartSymbol registers the augmented start symbol. There is always exactly one.
func (t *SymbolTable) RegisterStartSymbol(text string) (Symbol, error) {
	if sym, ok := t.text2Sym[text]; ok && sym != symbolStart {
		return SymbolNil, fmt.Errorf("the start symbol name is already used: %v", text)
	}
	if prev := t.nonTermTexts[symbolStart.Num()]; prev != "" {
		delete(t.text2Sym, prev)
	}
	t.text2Sym[text] = symbolStart
	t.sym2Text[symbolStart] = text
	t.nonTermTexts[symbolStart.Num()] = text
	return symbolStart, nil
}

func (t *SymbolTable) RegisterNonTerminalSymbol(text string) (Symbol, error) {
	if sym, ok := t.text2Sym[text]; ok {
		if !sym.IsNonTerminal() {
			return SymbolNil, fmt.Errorf("%v is already registered as a terminal symbol", text)
		}
		return sym, nil
	}
	sym, err := newSymbol(false, false, SymbolNum(len(t.nonTermTexts)))
	if err != nil {
		return SymbolNil, err
	}
	t.text2Sym[text] = sym
	t.sym2Text[sym] = text
	t.nonTermTexts = append(t.nonTermTexts, text)
	return sym, nil
}

func (t *SymbolTable) RegisterTerminalSymbol(text string) (Symbol, error) {
	if sym, ok := t.text2Sym[text]; ok {
		if !sym.IsTerminal() {
			return SymbolNil, fmt.Errorf("%v is already registered as a non-terminal symbol", text)
		}
		return sym, nil
	}
	sym, err := newSymbol(true, false, SymbolNum(len(t.termTexts)))
	if err != nil {
		return SymbolNil, err
	}
	t.text2Sym[text] = sym
	t.sym2Text[sym] = text
	t.termTexts = append(t.termTexts, text)
	return sym, nil
}

func (t *SymbolTable) ToSymbol(text string) (Symbol, bool) {
	sym, ok := t.text2Sym[text]
	return sym, ok
}

func (t *SymbolTable) ToText(sym Symbol) (string, bool) {
	text, ok := t.sym2Text[sym]
	return text, ok
}

// TerminalSymbols returns all terminals including <eof> in ascending order of their numbers.
// <eof> comes first.
func (t *SymbolTable) TerminalSymbols() []Symbol {
	return t.collect(func(sym Symbol) bool { return sym.IsTerminal() })
}

// NonTerminalSymbols returns all non-terminals including the augmented start symbol in
// ascending order of their numbers. The augmented start symbol comes first.
func (t *SymbolTable) NonTerminalSymbols() []Symbol {
	return t.collect(func(sym Symbol) bool { return sym.IsNonTerminal() })
}

func (t *SymbolTable) collect(pred func(Symbol) bool) []Symbol {
	var syms []Symbol
	for sym := range t.sym2Text {
		if !pred(sym) {
			continue
		}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i].Num() < syms[j].Num()
	})
	return syms
}

// TerminalTexts returns terminal names indexed by terminal numbers. Index 0 is unused.
func (t *SymbolTable) TerminalTexts() []string {
	return t.termTexts
}

// NonTerminalTexts returns non-terminal names indexed by non-terminal numbers. Index 0 is
// unused.
func (t *SymbolTable) NonTerminalTexts() ([]string, error) {
	if t.nonTermTexts[symbolStart.Num()] == "" {
		return nil, fmt.Errorf("symbol table has no start symbol")
	}
	return t.nonTermTexts, nil
}
