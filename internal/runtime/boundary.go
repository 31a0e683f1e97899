package runtime

import (
	"fmt"

	"github.com/aretw0/postman/pkg/domain"
	"github.com/aretw0/postman/pkg/policy"
)

// Resolver finds the nearest enclosing refresh boundary of a node using the
// parent index built by Flatten. The walk is iterative.
type Resolver struct {
	flat       *Flat
	isBoundary policy.Predicate
}

// NewResolver creates a resolver over flat.
func NewResolver(flat *Flat, isBoundary policy.Predicate) *Resolver {
	if isBoundary == nil {
		isBoundary = policy.None
	}
	return &Resolver{flat: flat, isBoundary: isBoundary}
}

// Resolve returns the nearest strict ancestor of n classified as a boundary,
// or nil when the root is reached without finding one. It does not mutate anything.
func (r *Resolver) Resolve(n domain.Node) (domain.Boundary, error) {
	limit := r.flat.Traversed()
	cur := n
	for steps := 0; ; steps++ {
		if steps > limit {
			return nil, fmt.Errorf("%w: parent chain of %s does not terminate", domain.ErrCyclicTree, Label(n))
		}
		parent, ok := r.flat.Parent(cur)
		if !ok {
			return nil, nil
		}
		if r.isBoundary(parent) {
			b, ok := parent.(domain.Boundary)
			if !ok {
				return nil, fmt.Errorf("%w: %s", domain.ErrNotBoundary, Label(parent))
			}
			return b, nil
		}
		cur = parent
	}
}
