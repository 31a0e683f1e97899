package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/postman/pkg/domain"
)

// Chain fans every event out to each of hooks, in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		if h.OnArmed != nil {
			prev := out.OnArmed
			out.OnArmed = func(ctx context.Context, e *domain.ArmEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnArmed(ctx, e)
			}
		}
		if h.OnBoundaryMarked != nil {
			prev := out.OnBoundaryMarked
			out.OnBoundaryMarked = func(ctx context.Context, e *domain.BoundaryEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnBoundaryMarked(ctx, e)
			}
		}
		if h.OnResolved != nil {
			prev := out.OnResolved
			out.OnResolved = func(ctx context.Context, r *domain.Report) {
				if prev != nil {
					prev(ctx, r)
				}
				h.OnResolved(ctx, r)
			}
		}
	}
	return out
}

// LogHooks writes one structured line per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnArmed: func(ctx context.Context, e *domain.ArmEvent) {
			logger.InfoContext(ctx, "activation armed",
				"request_id", e.RequestID,
				"observed", e.Observed,
				"boundaries", e.Boundaries,
				"duration", e.Duration,
			)
		},
		OnBoundaryMarked: func(ctx context.Context, e *domain.BoundaryEvent) {
			logger.DebugContext(ctx, "boundary marked",
				"request_id", e.RequestID,
				"boundary", e.BoundaryID,
				"changed", e.ChangedID,
			)
		},
		OnResolved: func(ctx context.Context, r *domain.Report) {
			logger.InfoContext(ctx, "activation resolved",
				"request_id", r.RequestID,
				"changed", r.Changed,
				"dirty", r.Dirty,
				"orphaned", r.Orphaned,
				"dirty_ids", r.DirtyIDs,
			)
		},
	}
}
