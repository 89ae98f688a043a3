package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/githubnext/yamlls/pkg/config"
	"github.com/githubnext/yamlls/pkg/console"
	"github.com/githubnext/yamlls/pkg/constants"
	"github.com/githubnext/yamlls/pkg/parser"
	"github.com/githubnext/yamlls/pkg/position"
	"github.com/githubnext/yamlls/pkg/schema"
	"github.com/githubnext/yamlls/pkg/validation"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
)

// MaxConcurrentFiles limits the number of files validated in parallel
const MaxConcurrentFiles = 8

// ErrFindings is returned when at least one file has error diagnostics
var ErrFindings = errors.New("validation reported errors")

// ValidateOptions control a validate run
type ValidateOptions struct {
	Paths []string
	// SchemaURL applies one schema to every file, ahead of configured associations
	SchemaURL  string
	ConfigPath string
	NoValidate bool
	Watch      bool
	Verbose    bool
	Out        io.Writer
}

// FileResult is the outcome of validating one file
type FileResult struct {
	Path        string
	Text        string
	Diagnostics []validation.Diagnostic
	Err         error
}

// Errors counts the error diagnostics of the result
func (r FileResult) Errors() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == validation.SeverityError {
			n++
		}
	}
	return n
}

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file-or-dir>...",
		Short: "Validate YAML files and report positioned diagnostics",
		Long: `Validate YAML files for syntax errors, duplicate keys and schema violations.

Directories are searched recursively for .yaml and .yml files. Schemas are taken from
the --schema flag or from the associations in the settings file.

Examples:
  ` + constants.CLIName + ` validate deploy.yaml
  ` + constants.CLIName + ` validate --schema k8s.json manifests/
  ` + constants.CLIName + ` validate --watch config/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaURL, _ := cmd.Flags().GetString("schema")
			configPath, _ := cmd.Flags().GetString("config")
			noValidate, _ := cmd.Flags().GetBool("no-validate")
			watch, _ := cmd.Flags().GetBool("watch")
			verbose, _ := cmd.Flags().GetBool("verbose")

			opts := ValidateOptions{
				Paths:      args,
				SchemaURL:  schemaURL,
				ConfigPath: configPath,
				NoValidate: noValidate,
				Watch:      watch,
				Verbose:    verbose,
				Out:        cmd.OutOrStdout(),
			}
			if watch {
				return WatchAndValidate(cmd.Context(), opts)
			}
			_, err := ValidatePaths(cmd.Context(), opts)
			return err
		},
	}

	cmd.Flags().StringP("schema", "s", "", "JSON schema file or URL applied to every file")
	cmd.Flags().StringP("config", "c", "", "Settings file (default "+config.DefaultFile+" when present)")
	cmd.Flags().Bool("no-validate", false, "Disable validation; files are still read and parsed")
	cmd.Flags().BoolP("watch", "w", false, "Watch the files and validate again on change")
	return cmd
}

// loadSettings reads the settings file and applies the flag overrides
func loadSettings(opts ValidateOptions) (config.Settings, error) {
	path, optional := opts.ConfigPath, false
	if path == "" {
		path, optional = config.DefaultFile, true
	}
	settings, err := config.Load(path, optional)
	if err != nil {
		return config.Settings{}, err
	}
	if opts.NoValidate {
		settings.Validate = false
	}
	if opts.SchemaURL != "" {
		settings.Schemas = append([]schema.Association{{Pattern: "**/*", URL: opts.SchemaURL}}, settings.Schemas...)
	}
	return settings, nil
}

// newValidator builds the validator and schema service for settings
func newValidator(settings config.Settings, verbose bool) *validation.Validator {
	service := schema.NewService(settings.Schemas, verbose)
	v := validation.New(newSpinningProvider(service))
	v.Configure(settings.Validation())
	return v
}

// spinningProvider shows a spinner while a schema is resolved. Lookups are
// serialised so that concurrent validations share one spinner line.
type spinningProvider struct {
	service *schema.Service
	mu      *sync.Mutex
	spinner *console.Spinner
}

func newSpinningProvider(service *schema.Service) spinningProvider {
	return spinningProvider{service: service, mu: &sync.Mutex{}, spinner: console.NewSpinner("Loading schema")}
}

func (p spinningProvider) SchemaForResource(ctx context.Context, uri string) (*schema.Schema, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var s *schema.Schema
	err := p.spinner.Run("Loading schema for "+console.ToRelativePath(strings.TrimPrefix(uri, "file://")), func() error {
		var err error
		s, err = p.service.SchemaForResource(ctx, uri)
		return err
	})
	return s, err
}

// ValidatePaths validates every YAML file reachable from opts.Paths and
// prints the findings. It returns ErrFindings when any file has errors.
func ValidatePaths(ctx context.Context, opts ValidateOptions) ([]FileResult, error) {
	settings, err := loadSettings(opts)
	if err != nil {
		return nil, err
	}
	files, err := CollectFiles(opts.Paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no YAML files found in %s", strings.Join(opts.Paths, ", "))
	}

	results := validateFiles(ctx, newValidator(settings, opts.Verbose), files, opts.Verbose)
	return results, report(opts.Out, results)
}

func validateFiles(ctx context.Context, v *validation.Validator, files []string, verbose bool) []FileResult {
	if verbose {
		fmt.Fprintln(os.Stderr, console.FormatInfoMessage(fmt.Sprintf("Validating %d files...", len(files))))
	}

	p := pool.NewWithResults[FileResult]().WithMaxGoroutines(MaxConcurrentFiles)
	for _, file := range files {
		p.Go(func() FileResult {
			return validateFile(ctx, v, file, verbose)
		})
	}
	results := p.Wait()

	// The pool returns results in completion order
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results
}

func validateFile(ctx context.Context, v *validation.Validator, file string, verbose bool) FileResult {
	result := FileResult{Path: file}
	data, err := os.ReadFile(file)
	if err != nil {
		result.Err = fmt.Errorf("failed to read %s: %w", file, err)
		return result
	}
	result.Text = string(data)

	if verbose {
		fmt.Fprintln(os.Stderr, console.FormatVerboseMessage("Validating "+file))
	}
	result.Diagnostics, result.Err = v.Validate(ctx, fileURI(file), parser.Parse(result.Text))
	return result
}

// report prints the findings of every result and a summary line
func report(out io.Writer, results []FileResult) error {
	var errorCount, warningCount, failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(r.Err.Error()))
		}
		lines := position.Lines(r.Text)
		for _, d := range r.Diagnostics {
			if d.Severity == validation.SeverityError {
				errorCount++
			} else {
				warningCount++
			}
			fmt.Fprint(out, console.FormatFinding(Finding(r.Path, lines, d)))
		}
	}

	summary := fmt.Sprintf("%d files checked, %d errors, %d warnings", len(results), errorCount, warningCount)
	if errorCount == 0 && failed == 0 {
		fmt.Fprintln(out, console.FormatSuccessMessage(summary))
		return nil
	}
	fmt.Fprintln(out, console.FormatCountMessage(summary))
	if failed > 0 {
		return fmt.Errorf("%d files could not be validated", failed)
	}
	return ErrFindings
}

// Finding converts a diagnostic of file into a console finding with one line of context
func Finding(file string, lines []string, d validation.Diagnostic) console.Finding {
	line := d.Range.Start.Line + 1
	pos := console.SourcePosition{
		File:   file,
		Line:   line,
		Column: d.Range.Start.Column + 1,
	}
	if d.Range.End.Line == d.Range.Start.Line {
		pos.EndColumn = d.Range.End.Column + 1
	}
	source, start := console.SourceContext(lines, line, 1)
	return console.Finding{
		Position:     pos,
		Type:         d.Severity.String(),
		Message:      d.Message,
		Context:      source,
		ContextStart: start,
	}
}

// CollectFiles expands directories into the YAML files below them. Explicit
// file arguments are kept whatever their extension.
func CollectFiles(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if isYAMLFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
	}
	return files, nil
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func fileURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return "file://" + filepath.ToSlash(path)
}
