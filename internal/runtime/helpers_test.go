package runtime_test

import (
	"github.com/aretw0/postman/pkg/adapters/memory"
	"github.com/aretw0/postman/pkg/domain"
)

// stubNode is a minimal host node without state or boundary capabilities.
type stubNode struct {
	id       string
	kind     domain.Kind
	children []domain.Node
}

func (s *stubNode) ID() string              { return s.id }
func (s *stubNode) Kind() domain.Kind       { return s.kind }
func (s *stubNode) Children() []domain.Node { return s.children }

func comp(id string, kind domain.Kind, kv ...any) *memory.Component {
	c := memory.NewComponent(id, kind)
	for i := 0; i+1 < len(kv); i += 2 {
		c.Set(kv[i].(string), kv[i+1])
	}
	return c
}

func ids(nodes []domain.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, domain.NodeID(n))
	}
	return out
}
