package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/githubnext/yamlls/pkg/config"
	"github.com/githubnext/yamlls/pkg/console"
)

// debounceDelay groups bursts of editor writes into one validation
const debounceDelay = 300 * time.Millisecond

// WatchAndValidate validates opts.Paths once and then again whenever a
// watched YAML file is written or created, until ctx is done or the process
// is interrupted. The settings file is watched too; changing it reloads the
// settings and validates everything again.
func WatchAndValidate(ctx context.Context, opts ValidateOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := watchDirs(opts.Paths)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	fmt.Fprintf(opts.Out, "Watching for file changes in %d directories...\n", len(dirs))
	if opts.Verbose {
		fmt.Fprintln(opts.Out, "Press Ctrl+C to stop watching.")
	}

	if _, err := ValidatePaths(ctx, opts); err != nil && !errors.Is(err, ErrFindings) {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("Initial validation failed: %v", err)))
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settingsFile := opts.ConfigPath
	if settingsFile == "" {
		settingsFile = config.DefaultFile
	}

	// The timer is only read by this loop, so validations run one at a time
	// and none is in flight once the loop returns.
	debounce := time.NewTimer(debounceDelay)
	debounce.Stop()
	defer debounce.Stop()
	pending := newChangeSet()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			isSettings := sameFile(event.Name, settingsFile)
			if !isSettings && (!isYAMLFile(event.Name) || !inScope(opts.Paths, event.Name)) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if opts.Verbose {
				fmt.Fprintln(os.Stderr, console.FormatVerboseMessage(fmt.Sprintf("Detected change: %s (%s)", event.Name, event.Op.String())))
			}
			pending.add(event.Name, isSettings)
			debounce.Reset(debounceDelay)

		case <-debounce.C:
			files, all := pending.take()
			revalidate(ctx, opts, files, all)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			if opts.Verbose {
				fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("Watcher error: %v", err)))
			}

		case <-ctx.Done():
			if opts.Verbose {
				fmt.Fprintln(os.Stderr, console.FormatInfoMessage("Stopping watch mode..."))
			}
			return nil
		}
	}
}

// changeSet collects the files changed since the last validation
type changeSet struct {
	files     map[string]struct{}
	reloadAll bool
}

func newChangeSet() *changeSet {
	return &changeSet{files: make(map[string]struct{})}
}

// add records a change; a settings change means every path is validated again
func (c *changeSet) add(name string, settings bool) {
	if settings {
		c.reloadAll = true
		return
	}
	c.files[name] = struct{}{}
}

// take returns the sorted changed files and whether everything must be
// validated, and resets the set
func (c *changeSet) take() ([]string, bool) {
	files := make([]string, 0, len(c.files))
	for f := range c.files {
		files = append(files, f)
	}
	sort.Strings(files)
	all := c.reloadAll
	c.files = make(map[string]struct{})
	c.reloadAll = false
	return files, all
}

// revalidate checks the changed files, or every path when all is set
func revalidate(ctx context.Context, opts ValidateOptions, files []string, all bool) {
	run := opts
	if !all {
		if len(files) == 0 {
			return
		}
		run.Paths = files
	}
	fmt.Fprintln(opts.Out, console.FormatProgressMessage(fmt.Sprintf("Validating %d changed files", len(run.Paths))))
	if _, err := ValidatePaths(ctx, run); err != nil && !errors.Is(err, ErrFindings) {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
	}
}

// watchDirs returns the directories to watch for paths: each directory
// argument and its subdirectories, and the parent of each file argument
func watchDirs(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	add := func(d string) {
		if abs, err := filepath.Abs(d); err == nil {
			d = abs
		}
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}

	add(".")
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", p, err)
		}
		if !info.IsDir() {
			add(filepath.Dir(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && len(d.Name()) > 1 && d.Name()[0] == '.' {
					return filepath.SkipDir
				}
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
	}
	return dirs, nil
}

// inScope reports whether name is one of the file arguments or lies below
// one of the directory arguments
func inScope(paths []string, name string) bool {
	for _, p := range paths {
		if sameFile(p, name) {
			return true
		}
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			continue
		}
		dir, errDir := filepath.Abs(p)
		file, errFile := filepath.Abs(name)
		if errDir != nil || errFile != nil {
			continue
		}
		if rel, err := filepath.Rel(dir, file); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
