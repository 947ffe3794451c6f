package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"

	"github.com/thoreinstein/mcpm/internal/logging"
)

// StartSpinner shows message with a spinner on w while slow external work
// runs. Nothing is drawn when w is not a terminal or quiet is set. The
// returned func stops the spinner and is safe to call more than once.
func StartSpinner(w io.Writer, message string, quiet bool) func() {
	if quiet || !logging.IsTTY(w) {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	_ = s.Color("cyan")
	s.Start()

	stopped := false
	return func() {
		if stopped {
			return
		}
		stopped = true
		s.Stop()
	}
}
