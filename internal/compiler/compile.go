package compiler

import (
	"fmt"

	"github.com/aretw0/postman/internal/dto"
	"github.com/aretw0/postman/pkg/adapters/memory"
	"github.com/aretw0/postman/pkg/domain"
	"github.com/aretw0/postman/pkg/dsl"
)

// Compiled is a scenario turned into a live component tree.
type Compiled struct {
	Scenario *dto.Scenario
	Root     *memory.Component

	builder *dsl.Builder
}

// Compile builds the component tree of sc. The root defaults to a page and
// every other node to a control when no kind is given.
func Compile(sc *dto.Scenario) (*Compiled, error) {
	rootKind := domain.Kind(sc.Tree.Kind)
	if rootKind == "" {
		rootKind = domain.KindPage
	}

	b := dsl.NewWithKind(sc.Tree.ID, rootKind)
	b.Root().State(sc.Tree.State)

	type pending struct {
		parent *dsl.NodeBuilder
		spec   dto.NodeSpec
	}
	var queue []pending
	for _, c := range sc.Tree.Children {
		queue = append(queue, pending{parent: b.Root(), spec: c})
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		if p.spec.ID == "" {
			return nil, fmt.Errorf("node under %q missing id", p.parent.Component().ID())
		}
		kind := domain.Kind(p.spec.Kind)
		if kind == "" {
			kind = domain.KindControl
		}
		nb := p.parent.Child(p.spec.ID, kind).State(p.spec.State)
		for _, c := range p.spec.Children {
			queue = append(queue, pending{parent: nb, spec: c})
		}
	}

	root, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Compiled{Scenario: sc, Root: root, builder: b}, nil
}

// Node returns a component of the tree by ID.
func (c *Compiled) Node(id string) (*memory.Component, bool) {
	return c.builder.Get(id)
}

// Apply runs the mutations of one request against the tree. Every target is
// resolved first; an unknown one fails the request with nothing applied.
func (c *Compiled) Apply(req dto.Request) error {
	targets := make([]*memory.Component, len(req.Mutations))
	for i, m := range req.Mutations {
		n, ok := c.Node(m.Node)
		if !ok {
			return fmt.Errorf("mutation targets unknown node %q", m.Node)
		}
		targets[i] = n
	}
	for i, m := range req.Mutations {
		for k, v := range m.Set {
			targets[i].Set(k, v)
		}
		for _, k := range m.Delete {
			targets[i].Delete(k)
		}
	}
	return nil
}
