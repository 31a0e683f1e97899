package dsl

import (
	"fmt"

	"github.com/aretw0/postman/pkg/adapters/memory"
	"github.com/aretw0/postman/pkg/domain"
)

// Builder manages the tree construction.
type Builder struct {
	root  *NodeBuilder
	nodes map[string]*memory.Component
	dups  []string
}

// New creates a builder whose root is a page component with the given ID.
func New(rootID string) *Builder {
	return NewWithKind(rootID, domain.KindPage)
}

// NewWithKind creates a builder whose root has an arbitrary kind.
func NewWithKind(rootID string, kind domain.Kind) *Builder {
	b := &Builder{nodes: make(map[string]*memory.Component)}
	b.root = &NodeBuilder{c: b.register(rootID, kind), builder: b}
	return b
}

func (b *Builder) register(id string, kind domain.Kind) *memory.Component {
	c := memory.NewComponent(id, kind)
	if _, exists := b.nodes[id]; exists {
		b.dups = append(b.dups, id)
	} else {
		b.nodes[id] = c
	}
	return c
}

// Root returns the builder of the root node.
func (b *Builder) Root() *NodeBuilder {
	return b.root
}

// Get returns a component already added to the tree.
func (b *Builder) Get(id string) (*memory.Component, bool) {
	c, ok := b.nodes[id]
	return c, ok
}

// Build returns the root component. IDs must be unique within the tree.
func (b *Builder) Build() (*memory.Component, error) {
	if len(b.dups) > 0 {
		return nil, fmt.Errorf("duplicate component ids: %v", b.dups)
	}
	return b.root.c, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *memory.Component {
	root, err := b.Build()
	if err != nil {
		panic(err)
	}
	return root
}
