// Command glint is the compiler front end's terminal driver: it
// tokenizes, parses, and type-checks one source file, then
// pretty-prints the tokens, AST, and typed AST (or the subset selected
// by flags). It never generates code, optimizes, links, resolves modules, or
// serves an LSP — those stages don't exist here.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/checker"
	"github.com/glintlang/glint/internal/diagnostics"
	"github.com/glintlang/glint/internal/lexer"
	"github.com/glintlang/glint/internal/parser"
	"github.com/glintlang/glint/internal/prelude"
	"github.com/glintlang/glint/internal/token"
)

func main() {
	var (
		showTokens bool
		showAST    bool
		showTyped  bool
		noColor    bool
		debug      bool
	)

	rootCmd := &cobra.Command{
		Use:           "glint <file>",
		Short:         "Tokenize, parse, and type-check a glint source file",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				os.Setenv("GLINT_DEBUG_LEXER", "1")
				os.Setenv("GLINT_DEBUG_PARSER", "1")
			}
			// With no selection flag, print all three stages.
			if !showTokens && !showAST && !showTyped {
				showTokens, showAST, showTyped = true, true, true
			}
			return run(args[0], showTokens, showAST, showTyped, !noColor)
		},
	}

	rootCmd.Flags().BoolVar(&showTokens, "tokens", false, "print only the token stream")
	rootCmd.Flags().BoolVar(&showAST, "ast", false, "print only the parsed AST")
	rootCmd.Flags().BoolVar(&showTyped, "typed", false, "print only the type-checked AST")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored diagnostic output")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable lexer/parser debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, Colorize("error: ", ColorRed, !noColor)+err.Error())
		os.Exit(1)
	}
}

func run(path string, showTokens, showAST, showTyped, useColor bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	toks, _, err := lexer.Tokenize(src)
	if err != nil {
		return err
	}
	if showTokens {
		printTokens(toks)
	}

	tree, err := parser.Parse(toks, src)
	if err != nil {
		return err
	}
	if showAST {
		fmt.Println(ast.Print(tree))
	}

	sink := diagnostics.NewSink()
	c := checker.New(sink)
	typed := c.Check(tree, prelude.New())
	if showTyped {
		fmt.Printf("%s : %s\n", ast.Print(typed), typed.Attribute())
	}

	for _, d := range sink.Items() {
		fmt.Fprintln(os.Stderr, Colorize("error: ", ColorRed, useColor)+d.String())
	}
	if sink.HasErrors() {
		return fmt.Errorf("%d diagnostic(s)", len(sink.Items()))
	}
	return nil
}

func printTokens(toks []token.SourceToken) {
	for _, t := range toks {
		fmt.Printf("%-12s %s  %s\n", t.Token.Kind, t.Loc, t.Token.String())
	}
}
