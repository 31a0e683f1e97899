package postman

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/postman/internal/runtime"
	"github.com/aretw0/postman/pkg/domain"
	"github.com/aretw0/postman/pkg/policy"
	"github.com/aretw0/postman/pkg/ports"
)

// IgnorePolicy decides what happens below an ignorable node.
type IgnorePolicy = runtime.IgnorePolicy

const (
	// IgnoreSubtree drops an ignorable node together with its descendants (default).
	IgnoreSubtree = runtime.IgnoreSubtree
	// IgnoreNodeOnly drops only the ignorable node; its descendants are still observed.
	IgnoreNodeOnly = runtime.IgnoreNodeOnly
)

// Engine is the high-level entry point of the library. It holds the
// capabilities negotiated once with the host and creates one Activator per request.
// An Engine is safe for concurrent use; Activators are not.
type Engine struct {
	ignore        policy.Predicate
	boundary      policy.Predicate
	ignoreExpr    string
	boundaryExpr  string
	ignorePolicy  IgnorePolicy
	reader        ports.StateReader
	fingerprinter ports.Fingerprinter
	store         ports.ReportStore
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithIgnore sets the predicate for ignorable (stateless, presentational) nodes.
func WithIgnore(p policy.Predicate) Option {
	return func(e *Engine) {
		e.ignore = p
	}
}

// WithIgnoreKinds marks the given kinds as ignorable.
func WithIgnoreKinds(kinds ...domain.Kind) Option {
	return WithIgnore(policy.Kinds(kinds...))
}

// WithIgnoreExpr adds an expr-lang expression that also marks nodes ignorable.
func WithIgnoreExpr(expression string) Option {
	return func(e *Engine) {
		e.ignoreExpr = expression
	}
}

// WithBoundary sets the predicate for refresh boundaries.
func WithBoundary(p policy.Predicate) Option {
	return func(e *Engine) {
		e.boundary = p
	}
}

// WithBoundaryKinds marks the given kinds as refresh boundaries.
func WithBoundaryKinds(kinds ...domain.Kind) Option {
	return WithBoundary(policy.Kinds(kinds...))
}

// WithBoundaryExpr adds an expr-lang expression that also marks nodes as boundaries.
func WithBoundaryExpr(expression string) Option {
	return func(e *Engine) {
		e.boundaryExpr = expression
	}
}

// WithIgnorePolicy selects what happens below ignorable nodes.
func WithIgnorePolicy(p IgnorePolicy) Option {
	return func(e *Engine) {
		e.ignorePolicy = p
	}
}

// WithStateReader sets how node snapshots are read. The default reads nodes
// implementing domain.StateHolder and treats the rest as stateless.
func WithStateReader(r ports.StateReader) Option {
	return func(e *Engine) {
		e.reader = r
	}
}

// WithFingerprinter overrides the snapshot fingerprinter.
func WithFingerprinter(f ports.Fingerprinter) Option {
	return func(e *Engine) {
		e.fingerprinter = f
	}
}

// WithReportStore persists every resolved report.
func WithReportStore(s ports.ReportStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// New initializes a new Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		ignore:       policy.DefaultIgnore,
		boundary:     policy.DefaultBoundary,
		ignorePolicy: IgnoreSubtree,
		reader:       ports.HolderReader,
	}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.ignoreExpr != "" {
		p, err := policy.Expr(eng.ignoreExpr)
		if err != nil {
			return nil, fmt.Errorf("ignore policy: %w", err)
		}
		eng.ignore = policy.Any(eng.ignore, p)
	}
	if eng.boundaryExpr != "" {
		p, err := policy.Expr(eng.boundaryExpr)
		if err != nil {
			return nil, fmt.Errorf("boundary policy: %w", err)
		}
		eng.boundary = policy.Any(eng.boundary, p)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	return eng, nil
}

// Store returns the configured report store, or nil.
func (e *Engine) Store() ports.ReportStore {
	return e.store
}

// Policies returns the resolved ignore and boundary predicates, expressions included.
func (e *Engine) Policies() (ignore, boundary policy.Predicate) {
	return e.ignore, e.boundary
}
