package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/postman/pkg/domain"
	"github.com/aretw0/postman/pkg/policy"
)

// Classes tells the renderer how the engine classifies nodes.
// Nil predicates match nothing.
type Classes struct {
	Boundary policy.Predicate
	Ignore   policy.Predicate
}

// Overlay contains the outcome of one activation to highlight on the graph.
type Overlay struct {
	ChangedIDs []string
	DirtyIDs   []string
}

// GenerateMermaid renders a component tree as a Mermaid flowchart.
// Shapes follow the node classification:
// - Root: ((Circle))
// - Boundary: [[Subroutine]]
// - Ignored: >Flag] with a dotted edge
// - Default: [Rectangle]
func GenerateMermaid(root domain.Node, classes Classes, overlay *Overlay) string {
	if classes.Boundary == nil {
		classes.Boundary = policy.None
	}
	if classes.Ignore == nil {
		classes.Ignore = policy.None
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if root == nil {
		return sb.String()
	}

	type item struct {
		node   domain.Node
		parent string
	}
	ids := make(map[domain.Node]string)
	var ignored []string
	anon := 0
	stack := []item{{node: root}}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := ids[it.node]; seen {
			continue
		}

		label := domain.NodeID(it.node)
		if label == "" {
			anon++
			label = fmt.Sprintf("%s#%d", it.node.Kind(), anon)
		}
		safeID := sanitizeMermaidID(label)
		ids[it.node] = safeID

		isIgnored := classes.Ignore(it.node)
		opener, closer := "[", "]"
		switch {
		case it.parent == "":
			opener, closer = "((", "))"
		case isIgnored:
			opener, closer = ">", "]"
			ignored = append(ignored, safeID)
		case classes.Boundary(it.node):
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s <br/> <i>%s</i>\"%s\n", safeID, opener, escape(label), escape(string(it.node.Kind())), closer)

		if it.parent != "" {
			arrow := "-->"
			if isIgnored {
				arrow = "-.->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", it.parent, arrow, safeID)
		}

		children := it.node.Children()
		for i := len(children) - 1; i >= 0; i-- {
			if children[i] != nil {
				stack = append(stack, item{node: children[i], parent: safeID})
			}
		}
	}

	if len(ignored) > 0 {
		sb.WriteString("\n    classDef ignored fill:#f5f5f5,stroke:#9e9e9e,stroke-dasharray:3 3,color:#616161;\n")
		fmt.Fprintf(&sb, "    class %s ignored;\n", strings.Join(ignored, ","))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on either theme.
		sb.WriteString("    classDef changed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef dirty fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		writeClass(&sb, "changed", overlay.ChangedIDs)
		writeClass(&sb, "dirty", overlay.DirtyIDs)
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, class string, ids []string) {
	seen := make(map[string]bool)
	for _, id := range ids {
		safeID := sanitizeMermaidID(id)
		if safeID == "" || seen[safeID] {
			continue
		}
		seen[safeID] = true
		fmt.Fprintf(sb, "    class %s %s;\n", safeID, class)
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_", "#", "_", "$", "_", "<", "_", ">", "_")
	return r.Replace(id)
}
