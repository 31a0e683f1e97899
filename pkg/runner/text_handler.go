package runner

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ContentRenderer transforms markdown before it is written, e.g. to ANSI.
type ContentRenderer func(string) (string, error)

// TextHandler writes a markdown report per request.
type TextHandler struct {
	Writer   io.Writer
	Renderer ContentRenderer
}

// NewTextHandler creates a handler writing plain markdown to w.
func NewTextHandler(w io.Writer, renderer ContentRenderer) *TextHandler {
	return &TextHandler{Writer: w, Renderer: renderer}
}

func (h *TextHandler) write(md string) error {
	if h.Renderer != nil {
		out, err := h.Renderer(md)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		md = out
	}
	_, err := io.WriteString(h.Writer, md)
	return err
}

func (h *TextHandler) Begin(ctx context.Context, scenario string, requests int) error {
	if scenario == "" {
		scenario = "scenario"
	}
	return h.write(fmt.Sprintf("# %s\n\n%d request(s)\n\n", scenario, requests))
}

func (h *TextHandler) Step(ctx context.Context, s Step) error {
	var b strings.Builder

	title := s.Name
	if title == "" {
		title = "request"
	}
	mark := "ok"
	if !s.Passed {
		mark = "FAIL"
	}
	fmt.Fprintf(&b, "## %d. %s [%s]\n\n", s.Index, title, mark)

	r := s.Report
	fmt.Fprintf(&b, "| observed | changed | dirty | orphaned |\n|---|---|---|---|\n| %d | %d | %d | %d |\n\n",
		r.Observed, r.Changed, r.Dirty, r.Orphaned)
	fmt.Fprintf(&b, "- re-render: %s\n", list(r.DirtyIDs))
	fmt.Fprintf(&b, "- changed: %s\n", list(r.ChangedIDs))
	if s.Expected != nil && !s.Passed {
		fmt.Fprintf(&b, "- expected: %s\n", list(*s.Expected))
	}
	b.WriteString("\n")

	return h.write(b.String())
}

func (h *TextHandler) End(ctx context.Context, sum Summary) error {
	if sum.Failed == 0 {
		return h.write(fmt.Sprintf("**%d/%d passed**\n", sum.Steps, sum.Steps))
	}
	return h.write(fmt.Sprintf("**%d/%d failed**\n", sum.Failed, sum.Steps))
}

func list(ids []string) string {
	if len(ids) == 0 {
		return "_none_"
	}
	return "`" + strings.Join(ids, "`, `") + "`"
}
