// Package prompt provides the interactive prompts used by init, wizard and
// select: numbered choices, yes/no confirmation, free text and a fuzzy
// multi-select over catalog servers.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/thoreinstein/mcpm/internal/errors"
)

// Sentinel errors for prompts.
var (
	ErrNoOptions          = errors.New("no options to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Option is one entry of a numbered choice.
type Option struct {
	Label  string
	Detail string
}

// Prompter reads answers line by line from a reader.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter on stdin and stderr, leaving stdout for results.
func New() *Prompter {
	return NewWithIO(os.Stdin, os.Stderr)
}

// NewWithIO creates a Prompter with custom reader and writer for testing.
func NewWithIO(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(r), out: w}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrSelectionCancelled
		}
		return "", errors.Wrap(err, "reading answer")
	}
	return strings.TrimSpace(line), nil
}

// Choose shows a numbered list and returns the chosen index. An empty answer
// picks def. A single option is returned without prompting.
func (p *Prompter) Choose(question string, options []Option, def int) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}
	if len(options) == 1 {
		return 0, nil
	}
	if def < 0 || def >= len(options) {
		def = 0
	}

	fmt.Fprintln(p.out, question)
	for i, o := range options {
		if o.Detail != "" {
			fmt.Fprintf(p.out, "  [%d] %s - %s\n", i+1, o.Label, o.Detail)
			continue
		}
		fmt.Fprintf(p.out, "  [%d] %s\n", i+1, o.Label)
	}
	fmt.Fprintf(p.out, "Select [%d]: ", def+1)

	answer, err := p.readLine()
	if err != nil {
		return 0, err
	}
	if answer == "" {
		return def, nil
	}

	n, err := strconv.Atoi(answer)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidSelection, "%q is not a number", answer)
	}
	if n < 1 || n > len(options) {
		return 0, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", n, len(options))
	}
	return n - 1, nil
}

// ChooseMany shows a numbered list and accepts a comma or space separated
// list of numbers. An empty answer returns defaults.
func (p *Prompter) ChooseMany(question string, options []Option, defaults []int) ([]int, error) {
	if len(options) == 0 {
		return nil, ErrNoOptions
	}

	fmt.Fprintln(p.out, question)
	for i, o := range options {
		fmt.Fprintf(p.out, "  [%d] %s\n", i+1, o.Label)
	}
	hint := make([]string, len(defaults))
	for i, d := range defaults {
		hint[i] = strconv.Itoa(d + 1)
	}
	fmt.Fprintf(p.out, "Select [%s]: ", strings.Join(hint, ","))

	answer, err := p.readLine()
	if err != nil {
		return nil, err
	}
	if answer == "" {
		return defaults, nil
	}

	var picked []int
	seen := map[int]bool{}
	for _, f := range strings.FieldsFunc(answer, func(r rune) bool { return r == ',' || r == ' ' }) {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidSelection, "%q is not a number", f)
		}
		if n < 1 || n > len(options) {
			return nil, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", n, len(options))
		}
		if !seen[n-1] {
			seen[n-1] = true
			picked = append(picked, n-1)
		}
	}
	return picked, nil
}

// Confirm asks a yes/no question. An empty answer returns def.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.out, "%s [%s]: ", question, hint)

	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, errors.Wrapf(ErrInvalidSelection, "%q is not yes or no", answer)
	}
}

// Input asks for free text. An empty answer returns def.
func (p *Prompter) Input(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}
