package cli

import (
	"context"
	"io"

	"github.com/aretw0/postman/pkg/runner"
)

// SimulateOptions holds the flags of the simulate command.
type SimulateOptions struct {
	Path          string
	JSON          bool
	RequestPrefix string
	Output        io.Writer
	// Renderer turns markdown into terminal output; nil writes plain markdown.
	Renderer runner.ContentRenderer
}

// Simulate replays a scenario file and writes one result per request.
func Simulate(ctx context.Context, s *Stack, opts SimulateOptions) ([]runner.Step, error) {
	compiled, err := LoadScenario(opts.Path)
	if err != nil {
		return nil, err
	}

	var handler runner.Handler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.Output)
	} else {
		handler = runner.NewTextHandler(opts.Output, opts.Renderer)
	}

	r := runner.New(s.Engine,
		runner.WithHandler(handler),
		runner.WithLogger(s.Logger),
		runner.WithRequestPrefix(opts.RequestPrefix),
	)
	return r.Run(ctx, compiled)
}
