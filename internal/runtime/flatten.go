package runtime

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/postman/pkg/domain"
	"github.com/aretw0/postman/pkg/policy"
)

// IgnorePolicy decides what happens below an ignorable node.
type IgnorePolicy int

const (
	// IgnoreSubtree drops the ignorable node and everything under it.
	IgnoreSubtree IgnorePolicy = iota
	// IgnoreNodeOnly drops the ignorable node but still flattens its descendants.
	IgnoreNodeOnly
)

func (p IgnorePolicy) String() string {
	switch p {
	case IgnoreSubtree:
		return "subtree"
	case IgnoreNodeOnly:
		return "node"
	default:
		return fmt.Sprintf("IgnorePolicy(%d)", int(p))
	}
}

// ParseIgnorePolicy accepts "subtree" (default when empty) or "node".
func ParseIgnorePolicy(s string) (IgnorePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "subtree":
		return IgnoreSubtree, nil
	case "node", "node-only", "node_only":
		return IgnoreNodeOnly, nil
	default:
		return 0, fmt.Errorf("unknown ignore policy %q (want subtree or node)", s)
	}
}

// Flat is the result of flattening a tree: the observed nodes in pre-order plus
// a parent index over every traversed node.
type Flat struct {
	Nodes  []domain.Node
	parent map[domain.Node]domain.Node
}

// Parent returns the parent of n as recorded during traversal.
// The root and untraversed nodes have no parent.
func (f *Flat) Parent(n domain.Node) (domain.Node, bool) {
	p, ok := f.parent[n]
	return p, ok
}

// Traversed is the number of nodes visited, including ignored ones that were descended into.
func (f *Flat) Traversed() int {
	return len(f.parent) + 1
}

type frame struct {
	node   domain.Node
	parent domain.Node
}

// Flatten walks the tree in pre-order (root first, then each child's subtree in
// child order) and returns every non-ignorable node. It never mutates the tree.
// A node reachable twice is reported as domain.ErrCyclicTree. Nil children are
// skipped; a typed nil (a nil pointer in a non-nil interface) is a precondition
// violation, since its methods cannot be called.
func Flatten(root domain.Node, ignore policy.Predicate, mode IgnorePolicy) (*Flat, error) {
	if root == nil || isNilNode(root) {
		return nil, fmt.Errorf("%w: nil root", domain.ErrPrecondition)
	}
	if ignore == nil {
		ignore = policy.None
	}

	flat := &Flat{parent: make(map[domain.Node]domain.Node)}
	seen := make(map[domain.Node]struct{})
	stack := []frame{{node: root}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, dup := seen[top.node]; dup {
			return nil, fmt.Errorf("%w: %s reached twice", domain.ErrCyclicTree, Label(top.node))
		}
		seen[top.node] = struct{}{}
		if top.parent != nil {
			flat.parent[top.node] = top.parent
		}

		if ignore(top.node) {
			if mode == IgnoreSubtree {
				continue
			}
		} else {
			flat.Nodes = append(flat.Nodes, top.node)
		}

		children := top.node.Children()
		for i := len(children) - 1; i >= 0; i-- {
			if children[i] == nil {
				continue
			}
			if isNilNode(children[i]) {
				return nil, fmt.Errorf("%w: child %d of %s is a nil %T", domain.ErrPrecondition, i, Label(top.node), children[i])
			}
			stack = append(stack, frame{node: children[i], parent: top.node})
		}
	}

	return flat, nil
}

func isNilNode(n domain.Node) bool {
	v := reflect.ValueOf(n)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Label names a node for logs and reports: its ID when it has one.
func Label(n domain.Node) string {
	if id := domain.NodeID(n); id != "" {
		return id
	}
	return fmt.Sprintf("<%s %T>", n.Kind(), n)
}
