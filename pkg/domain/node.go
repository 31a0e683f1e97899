package domain

// Kind tags a node so policies can decide whether it is ignorable or a refresh boundary.
type Kind string

// Well-known kinds used by the bundled adapters and the default policies.
const (
	// KindLiteral is static markup with no state of its own.
	KindLiteral Kind = "literal"
	// KindPanel is a refresh boundary (an independently re-renderable region).
	KindPanel Kind = "panel"
	// KindControl is a regular stateful component.
	KindControl Kind = "control"
	// KindPage is the conventional root of a tree.
	KindPage Kind = "page"
)

// Node is one element of the observed component tree.
// Identity is interface equality, so implementations must be comparable
// (in practice, pointer types). The tree is owned by the host; the core only reads it.
type Node interface {
	Kind() Kind
	Children() []Node
}

// StateHolder exposes a read-only view of a node's persisted state.
// It must return the same logical data on every call during a request unless
// request processing legitimately mutated it.
type StateHolder interface {
	Snapshot() Snapshot
}

// Identifiable is implemented by nodes that carry a stable, human-readable ID.
// It is optional and only used for logs, reports and visualization.
type Identifiable interface {
	ID() string
}

// RefreshMode controls how a boundary decides to re-render.
type RefreshMode int

const (
	// RefreshCascade is the host default: the boundary refreshes whenever anything
	// inside it (or any trigger) fires.
	RefreshCascade RefreshMode = iota
	// RefreshManual disables cascading; the boundary refreshes only when marked dirty.
	RefreshManual
)

func (m RefreshMode) String() string {
	switch m {
	case RefreshCascade:
		return "cascade"
	case RefreshManual:
		return "manual"
	default:
		return "unknown"
	}
}

// Boundary is a node that is a unit of independent re-render.
// Marking it dirty is the detector's only externally visible output.
type Boundary interface {
	Node
	SetRefreshMode(RefreshMode)
	// MarkDirty must be idempotent.
	MarkDirty()
	Dirty() bool
}

// Snapshot is a node's key-value state at one point in time.
// Values must be deterministically serializable: scalars, strings, byte slices,
// and nested slices, maps and structs of those.
type Snapshot map[string]any

// NodeID returns the node's ID when it is Identifiable, or "" otherwise.
func NodeID(n Node) string {
	if id, ok := n.(Identifiable); ok {
		return id.ID()
	}
	return ""
}
