package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/postman/internal/presentation/graph"
	"github.com/aretw0/postman/pkg/runner"
)

// Graph renders the scenario tree as Mermaid. With after > 0 the first
// after requests are replayed and the last one is overlaid on the graph.
func Graph(ctx context.Context, s *Stack, path string, after int) (string, error) {
	compiled, err := LoadScenario(path)
	if err != nil {
		return "", err
	}
	if after <= 0 {
		return graph.GenerateMermaid(compiled.Root, s.Classes, nil), nil
	}

	reqs := compiled.Scenario.Requests
	if after > len(reqs) {
		return "", fmt.Errorf("scenario has %d requests, cannot replay %d", len(reqs), after)
	}
	compiled.Scenario.Requests = reqs[:after]

	steps, err := runner.New(s.Engine, runner.WithLogger(s.Logger)).Run(ctx, compiled)
	if err != nil && len(steps) < after {
		return "", err
	}
	last := steps[len(steps)-1].Report
	return graph.GenerateMermaid(compiled.Root, s.Classes, &graph.Overlay{
		ChangedIDs: last.ChangedIDs,
		DirtyIDs:   last.DirtyIDs,
	}), nil
}
