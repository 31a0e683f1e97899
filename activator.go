package postman

import (
	"context"
	"fmt"

	"github.com/aretw0/postman/internal/runtime"
	"github.com/aretw0/postman/pkg/domain"
)

// Activator drives change detection for exactly one request.
type Activator struct {
	rt     *runtime.Activator
	engine *Engine
}

// ActivatorOption customizes a single activation.
type ActivatorOption func(*[]runtime.ActivatorOption)

// WithRequestID sets the request ID instead of generating one.
func WithRequestID(id string) ActivatorOption {
	return func(opts *[]runtime.ActivatorOption) {
		*opts = append(*opts, runtime.WithRequestID(id))
	}
}

// NewActivator creates a fresh, idle Activator for one request.
func (e *Engine) NewActivator(opts ...ActivatorOption) *Activator {
	rtOpts := []runtime.ActivatorOption{
		runtime.WithIgnore(e.ignore),
		runtime.WithBoundary(e.boundary),
		runtime.WithIgnorePolicy(e.ignorePolicy),
		runtime.WithStateReader(e.reader),
		runtime.WithFingerprinter(e.fingerprinter),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLogger(e.logger),
	}
	for _, opt := range opts {
		opt(&rtOpts)
	}
	return &Activator{
		rt:     runtime.NewActivator(rtOpts...),
		engine: e,
	}
}

// RequestID identifies this activation.
func (a *Activator) RequestID() string {
	return a.rt.RequestID()
}

// Phase returns "idle", "armed", "resolved" or "failed".
func (a *Activator) Phase() string {
	return a.rt.Phase()
}

// OnTreeReady is the first hook: call it once the tree exists and before any mutation.
func (a *Activator) OnTreeReady(ctx context.Context, root domain.Node) error {
	return a.rt.OnTreeReady(ctx, root)
}

// OnStateFinalized is the second hook: call it after all mutation and before output.
// When the engine has a report store, the report is persisted before returning.
func (a *Activator) OnStateFinalized(ctx context.Context) (*domain.Report, error) {
	report, err := a.rt.OnStateFinalized(ctx)
	if err != nil {
		return nil, err
	}
	if a.engine.store != nil {
		if err := a.engine.store.Save(ctx, report); err != nil {
			return report, fmt.Errorf("save report: %w", err)
		}
	}
	return report, nil
}

// Process runs one complete request: it arms on root, calls handle to let the
// host mutate state, then resolves. An error from handle aborts the request
// before resolution: nothing is marked dirty, but boundaries stay in manual
// refresh mode and whatever handle already changed stays changed. Hosts that
// reuse the tree must reset it before the next request.
func (e *Engine) Process(ctx context.Context, root domain.Node, handle func(context.Context) error, opts ...ActivatorOption) (*domain.Report, error) {
	act := e.NewActivator(opts...)
	if err := act.OnTreeReady(ctx, root); err != nil {
		return nil, err
	}
	if handle != nil {
		if err := handle(ctx); err != nil {
			e.logger.Warn("request handler failed", "request_id", act.RequestID(), "err", err)
			return nil, err
		}
	}
	return act.OnStateFinalized(ctx)
}
