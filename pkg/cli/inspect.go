package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/githubnext/yamlls/pkg/console"
	"github.com/githubnext/yamlls/pkg/constants"
	"github.com/githubnext/yamlls/pkg/jsonast"
	"github.com/githubnext/yamlls/pkg/parser"
	"github.com/githubnext/yamlls/pkg/symbols"
	"github.com/spf13/cobra"
)

// NewSymbolsCommand creates the symbols command
func NewSymbolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "symbols <file>",
		Short: "Print the outline of a YAML file",
		Long: `Print one row per property of every document in the file, with its kind,
enclosing property and position.

Examples:
  ` + constants.CLIName + ` symbols deploy.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			return PrintSymbols(cmd.OutOrStdout(), args[0], verbose)
		},
	}
}

// PrintSymbols renders the outline of file as a table
func PrintSymbols(out io.Writer, file string, verbose bool) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	syms := symbols.Collect(parser.Parse(string(data)))
	if verbose {
		fmt.Fprintln(os.Stderr, console.FormatVerboseMessage(fmt.Sprintf("Found %d symbols in %s", len(syms), file)))
	}
	if len(syms) == 0 {
		fmt.Fprintln(out, console.FormatInfoMessage("No symbols found"))
		return nil
	}

	table := console.Table{
		Title:   console.ToRelativePath(file),
		Headers: []string{"Name", "Kind", "Container", "Position"},
	}
	for _, s := range syms {
		table.Rows = append(table.Rows, []string{s.Name, s.Kind.String(), s.Container, s.Range.Start.String()})
	}
	fmt.Fprint(out, console.RenderTable(table))
	return nil
}

// NewASTCommand creates the ast command
func NewASTCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ast <file>",
		Short: "Print the JSON value of each document, or the node at an offset",
		Long: `Print the JSON value of each document in a YAML file.

With --offset, print the node found at that byte offset instead: its kind, JSON pointer
and range, both by exact containment and by indentation.

Examples:
  ` + constants.CLIName + ` ast values.yaml
  ` + constants.CLIName + ` ast values.yaml --offset 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset, _ := cmd.Flags().GetInt("offset")
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			if cmd.Flags().Changed("offset") {
				return PrintNodeAt(cmd.OutOrStdout(), string(data), offset)
			}
			return PrintAST(cmd.OutOrStdout(), string(data))
		},
	}
	cmd.Flags().IntP("offset", "o", 0, "Byte offset to look up")
	return cmd
}

// PrintAST writes each document of text as indented JSON
func PrintAST(out io.Writer, text string) error {
	stream := parser.Parse(text)
	for i, doc := range stream.Documents {
		if doc.Root == nil {
			fmt.Fprintln(out, console.FormatWarningMessage(fmt.Sprintf("document %d has no value", i+1)))
			continue
		}
		data, err := json.MarshalIndent(jsonast.Interface(doc.Root), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode document %d: %w", i+1, err)
		}
		fmt.Fprintln(out, string(data))
	}
	return nil
}

// PrintNodeAt describes the nodes at offset in the document containing it
func PrintNodeAt(out io.Writer, text string, offset int) error {
	stream := parser.Parse(text)
	for _, doc := range stream.Documents {
		if doc.Root == nil || !jsonast.Contains(doc.Root, offset) {
			continue
		}
		fmt.Fprintln(out, describe(doc, "at offset", doc.NodeAtOffset(offset)))
		fmt.Fprintln(out, describe(doc, "by indentation", doc.NodeByIndentation(offset)))
		return nil
	}
	return fmt.Errorf("no document contains offset %d", offset)
}

func describe(doc *parser.Document, label string, n jsonast.Node) string {
	if n == nil {
		return label + ": none"
	}
	pointer := jsonast.Pointer(n)
	if pointer == "" {
		pointer = "/"
	}
	r := doc.Lines.Range(n.Start(), n.End())
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %s [%s-%s]", label, n.Kind(), pointer, r.Start, r.End)
	if s, ok := n.(*jsonast.String); ok && s.IsKey {
		b.WriteString(" (key)")
	}
	return b.String()
}
