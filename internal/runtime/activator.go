package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/postman/pkg/domain"
	"github.com/aretw0/postman/pkg/fingerprint"
	"github.com/aretw0/postman/pkg/policy"
	"github.com/aretw0/postman/pkg/ports"
	"github.com/google/uuid"
)

type phase int

const (
	phaseIdle phase = iota
	phaseArmed
	phaseResolved
	phaseFailed
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseArmed:
		return "armed"
	case phaseResolved:
		return "resolved"
	default:
		return "failed"
	}
}

// Activator coordinates one request: OnTreeReady arms it (flatten, switch
// boundaries to manual refresh, take baselines) and OnStateFinalized resolves
// it (re-fingerprint, mark the boundaries of changed nodes dirty).
// An Activator is single-use and not safe for concurrent use.
type Activator struct {
	requestID     string
	ignore        policy.Predicate
	isBoundary    policy.Predicate
	ignorePolicy  IgnorePolicy
	reader        ports.StateReader
	fingerprinter ports.Fingerprinter
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	now           func() time.Time

	phase      phase
	flat       *Flat
	observers  []*Observer
	boundaries int
	armedFor   time.Duration
}

// ActivatorOption configures an Activator.
type ActivatorOption func(*Activator)

// WithIgnore sets the predicate for ignorable nodes.
func WithIgnore(p policy.Predicate) ActivatorOption {
	return func(a *Activator) {
		if p != nil {
			a.ignore = p
		}
	}
}

// WithBoundary sets the predicate for refresh boundaries.
func WithBoundary(p policy.Predicate) ActivatorOption {
	return func(a *Activator) {
		if p != nil {
			a.isBoundary = p
		}
	}
}

// WithIgnorePolicy selects what happens below ignorable nodes.
func WithIgnorePolicy(p IgnorePolicy) ActivatorOption {
	return func(a *Activator) {
		a.ignorePolicy = p
	}
}

// WithStateReader sets how node snapshots are read.
func WithStateReader(r ports.StateReader) ActivatorOption {
	return func(a *Activator) {
		if r != nil {
			a.reader = r
		}
	}
}

// WithFingerprinter overrides the snapshot fingerprinter.
func WithFingerprinter(f ports.Fingerprinter) ActivatorOption {
	return func(a *Activator) {
		if f != nil {
			a.fingerprinter = f
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) ActivatorOption {
	return func(a *Activator) {
		a.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ActivatorOption {
	return func(a *Activator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRequestID overrides the generated request ID.
func WithRequestID(id string) ActivatorOption {
	return func(a *Activator) {
		if id != "" {
			a.requestID = id
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) ActivatorOption {
	return func(a *Activator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewActivator creates an idle activator for one request.
func NewActivator(opts ...ActivatorOption) *Activator {
	a := &Activator{
		requestID:     uuid.NewString(),
		ignore:        policy.DefaultIgnore,
		isBoundary:    policy.DefaultBoundary,
		ignorePolicy:  IgnoreSubtree,
		reader:        ports.HolderReader,
		fingerprinter: fingerprint.New(),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("request_id", a.requestID)
	return a
}

// RequestID identifies this activation in logs, events and reports.
func (a *Activator) RequestID() string {
	return a.requestID
}

// Phase returns "idle", "armed", "resolved" or "failed".
func (a *Activator) Phase() string {
	return a.phase.String()
}

// Observers returns the observers created while arming, in pre-order.
func (a *Activator) Observers() []*Observer {
	out := make([]*Observer, len(a.observers))
	copy(out, a.observers)
	return out
}

// OnTreeReady arms the activator. It must be called once, before any state
// mutation of the request.
func (a *Activator) OnTreeReady(ctx context.Context, root domain.Node) error {
	if a.phase != phaseIdle {
		return fmt.Errorf("%w: tree ready while %s", domain.ErrHookOrder, a.phase)
	}
	start := a.now()

	flat, err := Flatten(root, a.ignore, a.ignorePolicy)
	if err != nil {
		a.phase = phaseFailed
		return fmt.Errorf("flatten tree: %w", err)
	}

	observers := make([]*Observer, 0, len(flat.Nodes))
	boundaries := 0
	for _, n := range flat.Nodes {
		if a.isBoundary(n) {
			b, ok := n.(domain.Boundary)
			if !ok {
				a.phase = phaseFailed
				return fmt.Errorf("%w: %s", domain.ErrNotBoundary, Label(n))
			}
			// Without this every boundary would refresh regardless of observed change.
			b.SetRefreshMode(domain.RefreshManual)
			boundaries++
		}

		o := NewObserver(n, a.reader, a.fingerprinter)
		if err := o.Take(); err != nil {
			a.phase = phaseFailed
			return fmt.Errorf("baseline: %w", err)
		}
		observers = append(observers, o)
	}

	a.flat = flat
	a.observers = observers
	a.boundaries = boundaries
	a.armedFor = a.now().Sub(start)
	a.phase = phaseArmed

	a.logger.Debug("activation armed",
		"nodes", len(observers),
		"boundaries", boundaries,
		"duration", a.armedFor,
	)

	if a.hooks.OnArmed != nil {
		a.hooks.OnArmed(ctx, &domain.ArmEvent{
			EventBase: domain.EventBase{
				Timestamp: a.now(),
				Type:      domain.EventArmed,
				RequestID: a.requestID,
			},
			Observed:   len(observers),
			Boundaries: boundaries,
			Duration:   a.armedFor,
		})
	}
	return nil
}

// OnStateFinalized resolves the activator. It must be called once, after all
// state mutation of the request and before output is produced.
func (a *Activator) OnStateFinalized(ctx context.Context) (*domain.Report, error) {
	if a.phase != phaseArmed {
		return nil, fmt.Errorf("%w: state finalized while %s", domain.ErrHookOrder, a.phase)
	}
	start := a.now()

	// Take every digest before marking anything, so marks cannot leak into snapshots.
	for _, o := range a.observers {
		if err := o.Take(); err != nil {
			a.phase = phaseFailed
			return nil, fmt.Errorf("final fingerprint: %w", err)
		}
	}

	report := &domain.Report{
		RequestID:   a.requestID,
		Observed:    len(a.observers),
		ArmDuration: a.armedFor,
	}

	resolver := NewResolver(a.flat, a.isBoundary)
	marked := make(map[domain.Boundary]struct{})
	for _, o := range a.observers {
		if !o.IsChanged() {
			continue
		}
		report.Changed++
		report.ChangedIDs = append(report.ChangedIDs, Label(o.Node()))

		b, err := resolver.Resolve(o.Node())
		if err != nil {
			a.phase = phaseFailed
			return nil, fmt.Errorf("resolve boundary: %w", err)
		}
		if b == nil {
			report.Orphaned++
			a.logger.Debug("changed node has no boundary", "node", Label(o.Node()))
			continue
		}
		if _, done := marked[b]; done {
			continue
		}
		b.MarkDirty()
		marked[b] = struct{}{}
		report.DirtyIDs = append(report.DirtyIDs, Label(b))

		if a.hooks.OnBoundaryMarked != nil {
			a.hooks.OnBoundaryMarked(ctx, &domain.BoundaryEvent{
				EventBase: domain.EventBase{
					Timestamp: a.now(),
					Type:      domain.EventBoundaryMarked,
					RequestID: a.requestID,
				},
				BoundaryID: Label(b),
				ChangedID:  Label(o.Node()),
			})
		}
	}

	report.Dirty = len(marked)
	report.FinishedAt = a.now()
	report.ResolveDuration = report.FinishedAt.Sub(start)
	a.phase = phaseResolved

	a.logger.Debug("activation resolved",
		"changed", report.Changed,
		"dirty", report.Dirty,
		"orphaned", report.Orphaned,
		"duration", report.ResolveDuration,
	)

	if a.hooks.OnResolved != nil {
		a.hooks.OnResolved(ctx, report)
	}
	return report, nil
}
