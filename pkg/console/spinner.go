package console

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// Spinner shows activity on stderr while a slow step runs. It does nothing
// when stderr is not a terminal.
type Spinner struct {
	spinner *spinner.Spinner
	enabled bool
}

// NewSpinner creates a stopped spinner showing message
func NewSpinner(message string) *Spinner {
	s := &Spinner{enabled: isatty.IsTerminal(os.Stderr.Fd())}
	if s.enabled {
		s.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.spinner.Suffix = " " + message
		_ = s.spinner.Color("cyan")
	}
	return s
}

// Start begins the animation
func (s *Spinner) Start() {
	if s.enabled {
		s.spinner.Start()
	}
}

// Stop ends the animation and clears the line
func (s *Spinner) Stop() {
	if s.enabled {
		s.spinner.Stop()
	}
}

// UpdateMessage replaces the text shown next to the spinner
func (s *Spinner) UpdateMessage(message string) {
	if s.enabled {
		s.spinner.Suffix = " " + message
	}
}

// IsEnabled reports whether the spinner draws anything
func (s *Spinner) IsEnabled() bool {
	return s.enabled
}

// Run shows message and spins while fn runs. A spinner may be reused for
// several steps, one at a time.
func (s *Spinner) Run(message string, fn func() error) error {
	s.UpdateMessage(message)
	s.Start()
	defer s.Stop()
	return fn()
}
