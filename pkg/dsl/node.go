package dsl

import (
	"github.com/aretw0/postman/pkg/adapters/memory"
	"github.com/aretw0/postman/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a component and its children.
type NodeBuilder struct {
	c       *memory.Component
	parent  *NodeBuilder
	builder *Builder
}

// Child appends a child of any kind and returns its builder.
func (n *NodeBuilder) Child(id string, kind domain.Kind) *NodeBuilder {
	c := n.builder.register(id, kind)
	n.c.Append(c)
	return &NodeBuilder{c: c, parent: n, builder: n.builder}
}

// Panel appends a refresh-boundary child.
func (n *NodeBuilder) Panel(id string) *NodeBuilder {
	return n.Child(id, domain.KindPanel)
}

// Control appends a stateful child.
func (n *NodeBuilder) Control(id string) *NodeBuilder {
	return n.Child(id, domain.KindControl)
}

// Literal appends a static, ignorable child.
func (n *NodeBuilder) Literal(id string) *NodeBuilder {
	return n.Child(id, domain.KindLiteral)
}

// Set stores a state value on the current component.
func (n *NodeBuilder) Set(key string, value any) *NodeBuilder {
	n.c.Set(key, value)
	return n
}

// State stores every entry of s on the current component.
func (n *NodeBuilder) State(s map[string]any) *NodeBuilder {
	for k, v := range s {
		n.c.Set(k, v)
	}
	return n
}

// End returns the parent builder (the root returns itself).
func (n *NodeBuilder) End() *NodeBuilder {
	if n.parent == nil {
		return n
	}
	return n.parent
}

// Component returns the component being configured.
func (n *NodeBuilder) Component() *memory.Component {
	return n.c
}
