package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	verr "github.com/nihei9/lrtab/error"
	"github.com/nihei9/lrtab/grammar"
	"github.com/nihei9/lrtab/spec"
	specgrammar "github.com/nihei9/lrtab/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output *string
	class  *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile",
		Short:   "Compile grammar you defined into a parsing table",
		Example: `  lrtab compile grammar.lrtab -o grammar.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.class = cmd.Flags().StringP("class", "c", string(grammar.ClassLALR), "LALR or SLR")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) (retErr error) {
	var src io.Reader
	var grmPath string
	sourceName := "stdin"
	if len(args) > 0 {
		grmPath = args[0]
		sourceName = grmPath
		f, err := os.Open(grmPath)
		if err != nil {
			return fmt.Errorf("Cannot open the grammar file %s: %w", grmPath, err)
		}
		defer f.Close()
		src = f
	} else {
		src = os.Stdin
	}
	defer func() {
		var specErrs verr.SpecErrors
		if errors.As(retErr, &specErrs) {
			for _, err := range specErrs {
				err.FilePath = grmPath
				err.SourceName = sourceName
			}
		}
	}()

	gram, err := readGrammar(src)
	if err != nil {
		return err
	}

	var class grammar.Class
	switch *compileFlags.class {
	case "lalr", "LALR":
		class = grammar.ClassLALR
	case "slr", "SLR":
		class = grammar.ClassSLR
	default:
		return fmt.Errorf("An invalid class was specified: %v", *compileFlags.class)
	}

	cgram, report, err := grammar.Compile(gram, grammar.EnableReporting(), grammar.SpecifyClass(class))
	if err != nil {
		var conflicts grammar.ConflictErrors
		if errors.As(err, &conflicts) && report != nil {
			_, reportPath, pathErr := makeOutputFilePaths(report.Name, *compileFlags.output)
			if pathErr == nil && writeReport(report, reportPath) == nil {
				pterm.Info.Println(fmt.Sprintf("The report was written to %v", reportPath))
			}
		}
		return err
	}

	err = writeCompiledGrammarAndReport(cgram, report, *compileFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write an output files: %w", err)
	}

	var resolvedCount int
	for _, s := range report.States {
		resolvedCount += len(s.SRConflict)
	}
	if resolvedCount > 0 {
		pterm.Info.Println(fmt.Sprintf("%v conflicts were resolved by precedence and associativity", resolvedCount))
	}

	return nil
}

func readGrammar(src io.Reader) (*grammar.Grammar, error) {
	ast, err := spec.Parse(src)
	if err != nil {
		return nil, err
	}

	b := grammar.GrammarBuilder{
		AST: ast,
	}
	return b.Build()
}

// writeCompiledGrammarAndReport writes a compiled grammar and a report to files located at a specified path.
// This function selects one of the following output methods depending on how the path is specified.
//
//  1. When the path is a directory path, this function writes the compiled grammar and the report to
//     <path>/<grammar-name>.json and <path>/<grammar-name>-report.json files, respectively.
//  2. When the path is a file path or a non-existent path, this function assumes that the path represents a file
//     path for the compiled grammar. Then it also writes the report in the same directory as the compiled grammar.
//  3. When the path is an empty string, this function writes the compiled grammar to the stdout and writes
//     the report to a file named <current-directory>/<grammar-name>-report.json.
func writeCompiledGrammarAndReport(cgram *specgrammar.CompiledGrammar, report *specgrammar.Report, path string) error {
	cgramPath, reportPath, err := makeOutputFilePaths(cgram.Name, path)
	if err != nil {
		return err
	}

	{
		var cgramW io.Writer
		if cgramPath != "" {
			cgramFile, err := os.OpenFile(cgramPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return err
			}
			defer cgramFile.Close()
			cgramW = cgramFile
		} else {
			cgramW = os.Stdout
		}

		b, err := json.Marshal(cgram)
		if err != nil {
			return err
		}
		fmt.Fprintf(cgramW, "%v\n", string(b))
	}

	return writeReport(report, reportPath)
}

func writeReport(report *specgrammar.Report, path string) error {
	reportFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer reportFile.Close()

	b, err := json.Marshal(report)
	if err != nil {
		return err
	}
	fmt.Fprintf(reportFile, "%v\n", string(b))

	return nil
}

func makeOutputFilePaths(gramName string, path string) (string, string, error) {
	reportFileName := gramName + "-report.json"

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		return "", filepath.Join(wd, reportFileName), nil
	}

	fi, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return "", "", err
	}
	if os.IsNotExist(err) || !fi.IsDir() {
		dir, _ := filepath.Split(path)
		return path, filepath.Join(dir, reportFileName), nil
	}

	return filepath.Join(path, gramName+".json"), filepath.Join(path, reportFileName), nil
}
