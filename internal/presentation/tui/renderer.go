package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a function that renders markdown to ANSI using glamour,
// with the style picked from the terminal background.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// RendererFor returns a markdown renderer when f is a terminal and nil
// otherwise, so piped output stays plain markdown.
func RendererFor(f *os.File) func(string) (string, error) {
	if !IsTerminal(f) {
		return nil
	}
	render, err := NewRenderer()
	if err != nil {
		return nil
	}
	return render
}
