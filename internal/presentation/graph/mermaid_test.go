package graph

import (
	"strings"
	"testing"

	"github.com/aretw0/postman/pkg/adapters/memory"
	"github.com/aretw0/postman/pkg/domain"
	"github.com/aretw0/postman/pkg/policy"
)

func TestGenerateMermaid(t *testing.T) {
	root := memory.NewComponent("page", domain.KindPage).Append(
		memory.NewComponent("side-bar", domain.KindPanel).Append(
			memory.NewComponent("q.1", domain.KindControl),
		),
		memory.NewComponent("hdr", domain.KindLiteral),
	)

	out := GenerateMermaid(root, Classes{
		Boundary: policy.DefaultBoundary,
		Ignore:   policy.DefaultIgnore,
	}, &Overlay{
		ChangedIDs: []string{"q.1", "q.1"},
		DirtyIDs:   []string{"side-bar"},
	})

	for _, want := range []string{
		"graph TD\n",
		`page(("page <br/> <i>page</i>"))`,
		`side_bar[["side-bar <br/> <i>panel</i>"]]`,
		`q_1["q.1 <br/> <i>control</i>"]`,
		`hdr>"hdr <br/> <i>literal</i>"]`,
		"page --> side_bar",
		"side_bar --> q_1",
		"page -.-> hdr",
		"class hdr ignored;",
		"class q_1 changed;",
		"class side_bar dirty;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	if n := strings.Count(out, "class q_1 changed;"); n != 1 {
		t.Errorf("changed class applied %d times, want 1", n)
	}
	// Pre-order: the panel subtree comes before the literal sibling.
	if strings.Index(out, "q_1[") > strings.Index(out, "hdr>") {
		t.Error("nodes must be emitted in pre-order")
	}
}

func TestGenerateMermaid_NoOverlay(t *testing.T) {
	out := GenerateMermaid(memory.NewComponent("solo", domain.KindPage), Classes{}, nil)
	if strings.Contains(out, "classDef") {
		t.Errorf("unexpected styles without overlay:\n%s", out)
	}
	if GenerateMermaid(nil, Classes{}, nil) != "graph TD\n" {
		t.Error("nil root renders an empty graph")
	}
}
