package memory

import (
	"maps"

	"github.com/aretw0/postman/pkg/domain"
)

// Component is an in-memory component tree node.
// It implements domain.Node, domain.StateHolder, domain.Identifiable and domain.Boundary,
// so it can play any role in a tree; policies decide which role applies.
// Not safe for concurrent use: a tree belongs to one request.
type Component struct {
	id       string
	kind     domain.Kind
	state    domain.Snapshot
	children []domain.Node
	parent   *Component

	mode  domain.RefreshMode
	dirty bool
}

// NewComponent creates a detached component with an empty state.
func NewComponent(id string, kind domain.Kind) *Component {
	return &Component{
		id:    id,
		kind:  kind,
		state: domain.Snapshot{},
	}
}

// ID implements domain.Identifiable.
func (c *Component) ID() string { return c.id }

// Kind implements domain.Node.
func (c *Component) Kind() domain.Kind { return c.kind }

// Children implements domain.Node.
func (c *Component) Children() []domain.Node { return c.children }

// Parent returns the component this one was appended to, or nil.
func (c *Component) Parent() *Component { return c.parent }

// Append adds children in order and returns c for chaining.
func (c *Component) Append(children ...*Component) *Component {
	for _, child := range children {
		child.parent = c
		c.children = append(c.children, child)
	}
	return c
}

// Snapshot implements domain.StateHolder. The returned map is a shallow copy.
func (c *Component) Snapshot() domain.Snapshot {
	return maps.Clone(c.state)
}

// Get returns a state value.
func (c *Component) Get(key string) (any, bool) {
	v, ok := c.state[key]
	return v, ok
}

// Set stores a state value.
func (c *Component) Set(key string, value any) {
	c.state[key] = value
}

// Delete removes a state key.
func (c *Component) Delete(key string) {
	delete(c.state, key)
}

// SetRefreshMode implements domain.Boundary.
func (c *Component) SetRefreshMode(m domain.RefreshMode) { c.mode = m }

// RefreshMode returns the current refresh mode (cascade until an activation arms the tree).
func (c *Component) RefreshMode() domain.RefreshMode { return c.mode }

// MarkDirty implements domain.Boundary.
func (c *Component) MarkDirty() { c.dirty = true }

// Dirty implements domain.Boundary.
func (c *Component) Dirty() bool { return c.dirty }

// NeedsRender reports whether the host should re-render this boundary:
// always in cascade mode, only when dirty in manual mode.
func (c *Component) NeedsRender() bool {
	return c.mode == domain.RefreshCascade || c.dirty
}

// Reset clears dirty flags and restores cascade mode across the subtree,
// ready for the next request.
func (c *Component) Reset() {
	c.Walk(func(n *Component) {
		n.dirty = false
		n.mode = domain.RefreshCascade
	})
}

// Walk visits c and its descendants in pre-order.
func (c *Component) Walk(fn func(*Component)) {
	stack := []*Component{c}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(n)
		for i := len(n.children) - 1; i >= 0; i-- {
			if child, ok := n.children[i].(*Component); ok {
				stack = append(stack, child)
			}
		}
	}
}

// Find returns the first component in the subtree with the given ID.
func (c *Component) Find(id string) (*Component, bool) {
	var found *Component
	c.Walk(func(n *Component) {
		if found == nil && n.id == id {
			found = n
		}
	})
	return found, found != nil
}
