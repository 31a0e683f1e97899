package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventArmed          EventType = "armed"
	EventResolved       EventType = "resolved"
	EventBoundaryMarked EventType = "boundary_marked"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RequestID string    `json:"request_id"`
}

// ArmEvent is emitted once the tree is flattened and baselined.
type ArmEvent struct {
	EventBase
	Observed   int           `json:"observed"`
	Boundaries int           `json:"boundaries"`
	Duration   time.Duration `json:"duration"`
}

// BoundaryEvent is emitted when a changed node causes its boundary to be marked dirty.
type BoundaryEvent struct {
	EventBase
	BoundaryID string `json:"boundary_id"`
	// ChangedID is the node whose change caused the mark.
	ChangedID string `json:"changed_id"`
}

// LifecycleHooks defines callbacks for activation observability.
type LifecycleHooks struct {
	OnArmed          func(context.Context, *ArmEvent)
	OnBoundaryMarked func(context.Context, *BoundaryEvent)
	OnResolved       func(context.Context, *Report)
}
