package runner

import (
	"context"

	"github.com/aretw0/postman/pkg/domain"
)

// Step is the outcome of one replayed request.
type Step struct {
	Index  int            `json:"index"`
	Name   string         `json:"name,omitempty"`
	Report *domain.Report `json:"report"`
	// Expected is nil when the request declared no expectation.
	Expected *[]string `json:"expected,omitempty"`
	Passed   bool      `json:"passed"`
}

// Summary closes a run.
type Summary struct {
	Scenario string `json:"scenario"`
	Steps    int    `json:"steps"`
	Failed   int    `json:"failed"`
}

// Handler receives run results. It decouples the runner from its output
// format (text for terminals, JSON lines for tooling).
type Handler interface {
	Begin(ctx context.Context, scenario string, requests int) error
	Step(ctx context.Context, step Step) error
	End(ctx context.Context, summary Summary) error
}
