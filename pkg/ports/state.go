package ports

import (
	"github.com/aretw0/postman/pkg/domain"
	"github.com/aretw0/postman/pkg/fingerprint"
)

// StateReader exposes the state snapshot of a node.
// It is negotiated once when an engine is constructed.
type StateReader interface {
	// ReadState returns the node's current snapshot. Nodes without state
	// return an empty snapshot, not an error.
	ReadState(n domain.Node) (domain.Snapshot, error)
}

// StateReaderFunc adapts a function to StateReader.
type StateReaderFunc func(n domain.Node) (domain.Snapshot, error)

// ReadState calls f(n).
func (f StateReaderFunc) ReadState(n domain.Node) (domain.Snapshot, error) {
	return f(n)
}

// HolderReader reads snapshots from nodes implementing domain.StateHolder.
// Nodes that do not implement it are treated as stateless.
var HolderReader StateReader = StateReaderFunc(func(n domain.Node) (domain.Snapshot, error) {
	if h, ok := n.(domain.StateHolder); ok {
		return h.Snapshot(), nil
	}
	return nil, nil
})

// Fingerprinter produces deterministic, order-independent digests of snapshots.
type Fingerprinter interface {
	Fingerprint(s domain.Snapshot) (fingerprint.Digest, error)
}
