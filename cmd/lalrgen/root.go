package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lalrgen",
	Short: "Compile a grammar into an LALR(1) parsing table",
	Long: `lalrgen compiles a grammar description into a portable, JSON-serializable
LALR(1) parsing table, and can drive that table over a text stream directly
for grammar debugging.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
