package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kymerac/lalrgen/artifact"
	"github.com/kymerac/lalrgen/diag"
	"github.com/kymerac/lalrgen/frontend"
	"github.com/kymerac/lalrgen/grammar"
)

var compileFlags = struct {
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile",
		Short:   "Compile a grammar into a parsing table",
		Example: `  lalrgen compile grammar.lalr -o grammar.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) (retErr error) {
	var grmPath string
	if len(args) > 0 {
		grmPath = args[0]
	}

	gram, col, err := readGrammar(grmPath)
	if err != nil {
		return err
	}
	if col.HasErrors() {
		for _, e := range col.Errors() {
			fmt.Fprintf(os.Stderr, "%v\n", e)
		}
		return fmt.Errorf("%v grammar error(s)", col.ErrorCount())
	}

	cgram, report, nWarn, err := grammar.Compile(gram, col, grammar.WithReport())
	if err != nil {
		return err
	}
	if nWarn > 0 {
		for _, e := range col.Errors() {
			if diag.IsWarning(e.Kind) {
				fmt.Fprintf(os.Stderr, "warning: %v\n", e)
			}
		}
	}

	if err := writeCompiledGrammarAndReport(cgram, report, *compileFlags.output); err != nil {
		return fmt.Errorf("cannot write output files: %w", err)
	}

	return nil
}

func readGrammar(path string) (*grammar.Grammar, *diag.Collector, error) {
	var src io.Reader
	if path == "" {
		src = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open the grammar file %s: %w", path, err)
		}
		defer f.Close()
		src = f
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, nil, err
	}

	col := &diag.Collector{}
	b := frontend.Parse(string(data), col)
	gram, _ := b.Finalize()
	return gram, col, nil
}

// writeCompiledGrammarAndReport writes the compiled grammar and its report
// to files at path, choosing the layout the way the same-named path is
// interpreted:
//
//  1. path is a directory: writes <path>/<name>.json and
//     <path>/<name>-report.json.
//  2. path is a file path or doesn't exist yet: treats it as the compiled
//     grammar's path and writes the report alongside it.
//  3. path is empty: writes the compiled grammar to stdout and the report
//     to <cwd>/<name>-report.json.
func writeCompiledGrammarAndReport(cgram *artifact.CompiledGrammar, report *artifact.Report, path string) error {
	cgramPath, reportPath, err := makeOutputFilePaths(cgram.Name, path)
	if err != nil {
		return err
	}

	{
		var w io.Writer
		if cgramPath != "" {
			f, err := os.OpenFile(cgramPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		} else {
			w = os.Stdout
		}

		b, err := json.Marshal(cgram)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%v\n", string(b))
	}

	{
		f, err := os.OpenFile(reportPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()

		b, err := json.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Fprintf(f, "%v\n", string(b))
	}

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
