package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nihei9/lrtab/grammar"
	spec "github.com/nihei9/lrtab/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Print a report in a readable format",
		Example: `  lrtab show grammar-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}

	pterm.DefaultSection.Println("Conflicts")
	pterm.Println(conflictSummary(report))

	pterm.DefaultSection.Println("Terminals")
	for _, term := range report.Terminals {
		if term == nil {
			continue
		}
		pterm.Println(terminalText(term))
	}

	pterm.DefaultSection.Println("Productions")
	for _, prod := range report.Productions {
		if prod == nil {
			continue
		}
		pterm.Println(productionText(report, prod))
	}

	pterm.DefaultSection.Println(fmt.Sprintf("States (%v)", strings.ToUpper(report.Class)))
	for _, s := range report.States {
		pterm.DefaultTree.WithRoot(pterm.NewTreeFromLeveledList(stateList(report, s))).Render()
	}

	return nil
}

func readReport(path string) (*spec.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the report %s: %w", path, err)
	}
	defer f.Close()

	d, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	report := &spec.Report{}
	err = json.Unmarshal(d, report)
	if err != nil {
		return nil, err
	}

	return report, nil
}

func conflictSummary(report *spec.Report) string {
	var resolved, unresolved int
	for _, s := range report.States {
		for _, c := range s.SRConflict {
			if c.AdoptedState != nil || c.AdoptedProduction != nil {
				resolved++
			} else {
				unresolved++
			}
		}
		unresolved += len(s.RRConflict)
	}

	if resolved == 0 && unresolved == 0 {
		return "No conflict"
	}

	var b strings.Builder
	if resolved > 0 {
		fmt.Fprintf(&b, "%v resolved", resolved)
	}
	if unresolved > 0 {
		if resolved > 0 {
			fmt.Fprintf(&b, ", ")
		}
		fmt.Fprintf(&b, "%v unresolved", unresolved)
	}
	return b.String()
}

func precAndAssocText(prec int, assoc string) string {
	p := " -"
	if prec != 0 {
		p = fmt.Sprintf("%2v", prec)
	}
	a := "-"
	if assoc != "" {
		a = assoc
	}
	return p + " " + a
}

func terminalText(term *spec.Terminal) string {
	text := fmt.Sprintf("%4v %v %v", term.Number, precAndAssocText(term.Precedence, term.Associativity), term.Name)
	if term.Pattern != "" {
		text += fmt.Sprintf(" %q", term.Pattern)
	}
	if term.Skip {
		text += " (skip)"
	}
	return text
}

func productionText(report *spec.Report, prod *spec.Production) string {
	return fmt.Sprintf("%4v %v %v", prod.Number, precAndAssocText(prod.Precedence, prod.Associativity), grammar.ProductionText(report, prod.Number))
}

func itemText(report *spec.Report, item *spec.Item) string {
	prod := report.Productions[item.Production]

	var b strings.Builder
	fmt.Fprintf(&b, "%v →", report.NonTerminals[prod.LHS].Name)
	for i, sym := range prod.RHS {
		if i == item.Dot {
			fmt.Fprintf(&b, " ・")
		}
		fmt.Fprintf(&b, " %v", grammar.SymbolName(report, sym))
	}
	if item.Dot >= len(prod.RHS) {
		fmt.Fprintf(&b, " ・")
	}

	return fmt.Sprintf("%4v %v", prod.Number, b.String())
}

func srConflictText(report *spec.Report, c *spec.SRConflict) string {
	sym := grammar.SymbolName(report, c.Symbol)
	text := fmt.Sprintf("shift/reduce conflict (shift %v, reduce %v) on %v", c.State, c.Production, sym)
	switch {
	case c.AdoptedState != nil:
		text += fmt.Sprintf(": shift %v adopted", *c.AdoptedState)
	case c.AdoptedProduction != nil:
		text += fmt.Sprintf(": reduce %v adopted", *c.AdoptedProduction)
	default:
		return text + fmt.Sprintf(": unresolved (%v)", c.Reason)
	}

	switch c.ResolvedBy {
	case grammar.ResolvedByPrec.Int():
		text += " by precedence"
	case grammar.ResolvedByAssoc.Int():
		text += " by associativity"
	}
	return text
}

func rrConflictText(report *spec.Report, c *spec.RRConflict) string {
	return fmt.Sprintf("reduce/reduce conflict (%v, %v) on %v: unresolved", c.Production1, c.Production2, grammar.SymbolName(report, c.Symbol))
}

func stateList(report *spec.Report, s *spec.State) pterm.LeveledList {
	title := fmt.Sprintf("State %v", s.Number)
	if s.Accept {
		title += " (accept)"
	}
	ll := pterm.LeveledList{
		{Level: 0, Text: title},
	}
	add := func(level int, text string) {
		ll = append(ll, pterm.LeveledListItem{
			Level: level,
			Text:  text,
		})
	}

	for _, item := range s.Kernel {
		add(1, itemText(report, item))
	}
	for _, tran := range s.Shift {
		add(1, fmt.Sprintf("shift  %4v on %v", tran.State, grammar.SymbolName(report, tran.Symbol)))
	}
	for _, r := range s.Reduce {
		la := make([]string, len(r.LookAhead))
		for i, sym := range r.LookAhead {
			la[i] = grammar.SymbolName(report, sym)
		}
		add(1, fmt.Sprintf("reduce %4v on %v", r.Production, strings.Join(la, ", ")))
	}
	for _, tran := range s.GoTo {
		add(1, fmt.Sprintf("goto   %4v on %v", tran.State, grammar.SymbolName(report, -tran.Symbol)))
	}
	for _, c := range s.SRConflict {
		add(1, srConflictText(report, c))
	}
	for _, c := range s.RRConflict {
		add(1, rrConflictText(report, c))
	}

	return ll
}
