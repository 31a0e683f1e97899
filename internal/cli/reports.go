package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/postman/pkg/domain"
)

// ListReports writes stored report IDs, one per line.
func ListReports(ctx context.Context, s *Stack, w io.Writer) error {
	ids, err := s.Store.List(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	return nil
}

// ShowReport writes one stored report as markdown, through render when set.
func ShowReport(ctx context.Context, s *Stack, id string, w io.Writer, render func(string) (string, error)) error {
	report, err := s.Store.Load(ctx, id)
	if err != nil {
		return err
	}
	md := ReportMarkdown(report)
	if render != nil {
		if md, err = render(md); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, md)
	return err
}

// ReportMarkdown formats a report for humans.
func ReportMarkdown(r *domain.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Report %s\n\n", r.RequestID)
	if !r.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "Finished at %s\n\n", r.FinishedAt.Format("2006-01-02 15:04:05.000 MST"))
	}
	b.WriteString("| observed | changed | dirty | orphaned | arm | resolve |\n|---|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %s | %s |\n\n",
		r.Observed, r.Changed, r.Dirty, r.Orphaned, r.ArmDuration, r.ResolveDuration)

	section := func(title string, ids []string) {
		fmt.Fprintf(&b, "## %s\n\n", title)
		if len(ids) == 0 {
			b.WriteString("_none_\n\n")
			return
		}
		for _, id := range ids {
			fmt.Fprintf(&b, "- `%s`\n", id)
		}
		b.WriteString("\n")
	}
	section("Re-render", r.DirtyIDs)
	section("Changed", r.ChangedIDs)
	return b.String()
}
