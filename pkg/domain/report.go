package domain

import "time"

// Report summarizes one request's activation.
type Report struct {
	RequestID string `json:"request_id"`

	// Observed is the number of flattened nodes that got an observer.
	Observed int `json:"observed"`
	// Changed is the number of observers whose fingerprints disagreed.
	Changed int `json:"changed"`
	// Dirty is the number of distinct boundaries marked dirty.
	Dirty int `json:"dirty"`
	// Orphaned counts changed nodes with no enclosing boundary.
	Orphaned int `json:"orphaned"`

	ChangedIDs []string `json:"changed_ids,omitempty"`
	DirtyIDs   []string `json:"dirty_ids,omitempty"`

	ArmDuration     time.Duration `json:"arm_duration"`
	ResolveDuration time.Duration `json:"resolve_duration"`
	FinishedAt      time.Time     `json:"finished_at"`
}

// Clean reports whether no boundary was marked dirty.
func (r *Report) Clean() bool {
	return r.Dirty == 0
}
