package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the CLI banner to w, colored when the terminal supports it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{`  ___         _                    `, "#818cf8"},
		{` | _ \___ ___| |_ _ __  __ _ _ _   `, "#a78bfa"},
		{` |  _/ _ (_-<|  _| '  \/ _' | ' \  `, "#c084fc"},
		{` |_| \___/__/ \__|_|_|_\__,_|_||_| `, "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
