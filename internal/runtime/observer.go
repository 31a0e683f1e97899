package runtime

import (
	"fmt"
	"slices"

	"github.com/aretw0/postman/pkg/domain"
	"github.com/aretw0/postman/pkg/fingerprint"
	"github.com/aretw0/postman/pkg/ports"
)

// Observer records successive fingerprints of one node's state.
// It holds a back-reference to the node; it never owns or mutates it.
type Observer struct {
	node    domain.Node
	reader  ports.StateReader
	fp      ports.Fingerprinter
	digests []fingerprint.Digest
}

// NewObserver binds an observer to node.
func NewObserver(node domain.Node, reader ports.StateReader, fp ports.Fingerprinter) *Observer {
	return &Observer{
		node:   node,
		reader: reader,
		fp:     fp,
	}
}

// Node returns the observed node.
func (o *Observer) Node() domain.Node {
	return o.node
}

// Take fingerprints the node's current snapshot and appends the digest.
// Serialization failures are returned, never skipped: a skipped node could
// never be detected as changed.
func (o *Observer) Take() error {
	snap, err := o.reader.ReadState(o.node)
	if err != nil {
		return fmt.Errorf("read state of %s: %w", Label(o.node), err)
	}
	d, err := o.fp.Fingerprint(snap)
	if err != nil {
		return fmt.Errorf("fingerprint %s: %w", Label(o.node), err)
	}
	o.digests = append(o.digests, d)
	return nil
}

// IsChanged reports whether any recorded digest differs from the first.
// With fewer than two digests there is no baseline to compare against.
func (o *Observer) IsChanged() bool {
	if len(o.digests) < 2 {
		return false
	}
	first := o.digests[0]
	for _, d := range o.digests[1:] {
		if d != first {
			return true
		}
	}
	return false
}

// Digests returns a copy of the recorded digests in the order they were taken.
func (o *Observer) Digests() []fingerprint.Digest {
	return slices.Clone(o.digests)
}
