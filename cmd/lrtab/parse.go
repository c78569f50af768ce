package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/nihei9/lrtab/driver"
	spec "github.com/nihei9/lrtab/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source      *string
	interactive *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <grammar file path>",
		Short:   "Parse a text stream",
		Example: `  cat src | lrtab parse grammar.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.interactive = cmd.Flags().BoolP("interactive", "i", false, "parse each line entered in a prompt")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a compiled grammar: %w", err)
	}

	if *parseFlags.interactive {
		return runREPL(cgram)
	}

	src := os.Stdin
	if *parseFlags.source != "" {
		f, err := os.Open(*parseFlags.source)
		if err != nil {
			return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
		}
		defer f.Close()
		src = f
	}

	ok, err := parse(cgram, src, os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("the input has a syntax error")
	}
	return nil
}

func runREPL(cgram *spec.CompiledGrammar) error {
	repl, err := readline.New(cgram.Name + "> ")
	if err != nil {
		return err
	}
	defer repl.Close()

	pterm.Info.Println("Quit with <ctrl>D")
	for {
		line, err := repl.Readline()
		if err != nil { // io.EOF or an interrupt
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		_, err = parse(cgram, strings.NewReader(line), os.Stdout)
		if err != nil {
			pterm.Error.Println(err.Error())
		}
	}
	return nil
}

// parse parses a source and prints its syntax tree to w. Syntax errors are printed as error
// messages and make the first return value false.
func parse(cgram *spec.CompiledGrammar, src io.Reader, w io.Writer) (bool, error) {
	toks, err := driver.NewTokenStream(cgram, src)
	if err != nil {
		return false, err
	}
	gram := driver.NewGrammar(cgram)
	treeAct := driver.NewSyntaxTreeActionSet(gram)
	p, err := driver.NewParser(gram, toks, driver.SemanticAction(treeAct))
	if err != nil {
		return false, err
	}
	err = p.Parse()
	if err != nil {
		return false, err
	}

	synErrs := p.SyntaxErrors()
	for _, synErr := range synErrs {
		pterm.Error.Println(syntaxErrorText(gram, synErr))
	}
	if len(synErrs) > 0 {
		return false, nil
	}

	driver.PrintTree(w, treeAct.Tree())
	return true, nil
}

func syntaxErrorText(gram driver.Grammar, synErr *driver.SyntaxError) string {
	tok := synErr.Token

	var b strings.Builder
	fmt.Fprintf(&b, "%v:%v: %v: ", synErr.Row+1, synErr.Col+1, synErr.Message)
	switch {
	case tok.EOF():
		fmt.Fprintf(&b, "<eof>")
	case tok.Invalid():
		fmt.Fprintf(&b, "'%v' (<invalid>)", string(tok.Lexeme()))
	default:
		fmt.Fprintf(&b, "'%v' (%v)", string(tok.Lexeme()), gram.Terminal(tok.TerminalID()))
	}
	if len(synErr.ExpectedTerminals) > 0 {
		fmt.Fprintf(&b, "; expected: %v", strings.Join(synErr.ExpectedTerminals, ", "))
	}
	return b.String()
}

func readCompiledGrammar(path string) (*spec.CompiledGrammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cgram := &spec.CompiledGrammar{}
	err = json.Unmarshal(data, cgram)
	if err != nil {
		return nil, err
	}
	return cgram, nil
}
