package main

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rootFlags = struct {
	trace *string
}{}

var rootCmd = &cobra.Command{
	Use:   "lrtab",
	Short: "Generate an LALR(1) or SLR(1) parsing table from a grammar",
	Long: `lrtab provides three features:
- Compiles a grammar into a portable parsing table and a report.
- Prints the report in a readable format.
- Parses a text stream with a compiled grammar.
  This feature is primarily aimed at debugging the grammar.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setUp,
}

func init() {
	rootFlags.trace = rootCmd.PersistentFlags().String("trace", "Error", "trace level [Debug|Info|Error]")
}

func setUp(cmd *cobra.Command, args []string) error {
	initDisplay()

	level := tracing.TraceLevelFromString(*rootFlags.trace)
	for _, key := range []string{"lrtab.grammar", "lrtab.driver"} {
		tracing.Select(key).SetTraceLevel(level)
	}
	return nil
}

func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		pterm.Error.Println(err.Error())
		return err
	}
	return nil
}
