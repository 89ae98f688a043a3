package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/githubnext/yamlls/pkg/cli"
	"github.com/githubnext/yamlls/pkg/console"
	"github.com/githubnext/yamlls/pkg/constants"
	"github.com/spf13/cobra"
)

// Build-time variables set by GoReleaser
var (
	version = "dev"
)

// Global flags
var verbose bool

var rootCmd = &cobra.Command{
	Use:   constants.CLIName,
	Short: "Validate YAML files against JSON schemas with positioned diagnostics",
	Long: `yamlls reads YAML files into a JSON-shaped syntax tree that keeps the source range
of every node, validates them against JSON schemas and reports each problem at its
line and column.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(console.FormatInfoMessage(fmt.Sprintf("%s version %s", constants.CLIName, version)))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output showing detailed information")

	rootCmd.AddCommand(cli.NewValidateCommand())
	rootCmd.AddCommand(cli.NewSymbolsCommand())
	rootCmd.AddCommand(cli.NewASTCommand())
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// findings were already printed
		if !errors.Is(err, cli.ErrFindings) {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		}
		os.Exit(1)
	}
}
