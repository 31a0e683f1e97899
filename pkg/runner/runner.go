package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/aretw0/postman"
	"github.com/aretw0/postman/internal/compiler"
)

// ErrExpectationFailed is returned by Run when at least one request dirtied a
// different set of boundaries than it declared.
var ErrExpectationFailed = errors.New("scenario expectations failed")

// Runner replays compiled scenarios through an Engine.
type Runner struct {
	Handler Handler
	Logger  *slog.Logger

	engine        *postman.Engine
	requestPrefix string
	activatorOpts []postman.ActivatorOption
}

// New creates a Runner. Without a handler, results are only returned.
func New(engine *postman.Engine, opts ...Option) *Runner {
	r := &Runner{
		engine: engine,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run replays every request of c in order and returns the steps.
// The tree is reset before each request, like a fresh page lifecycle.
func (r *Runner) Run(ctx context.Context, c *compiler.Compiled) ([]Step, error) {
	sc := c.Scenario
	if r.Handler != nil {
		if err := r.Handler.Begin(ctx, sc.Name, len(sc.Requests)); err != nil {
			return nil, err
		}
	}

	steps := make([]Step, 0, len(sc.Requests))
	failed := 0
	for i, req := range sc.Requests {
		if err := ctx.Err(); err != nil {
			return steps, err
		}

		opts := slices.Clone(r.activatorOpts)
		if r.requestPrefix != "" {
			opts = append(opts, postman.WithRequestID(fmt.Sprintf("%s-%d", r.requestPrefix, i+1)))
		}

		c.Root.Reset()
		report, err := r.engine.Process(ctx, c.Root, func(context.Context) error {
			return c.Apply(req)
		}, opts...)
		if err != nil {
			return steps, fmt.Errorf("request %d (%s): %w", i+1, req.Name, err)
		}

		step := Step{
			Index:    i + 1,
			Name:     req.Name,
			Report:   report,
			Expected: req.Expect,
			Passed:   req.Expect == nil || sameSet(*req.Expect, report.DirtyIDs),
		}
		if !step.Passed {
			failed++
			r.Logger.Warn("unexpected dirty boundaries",
				"request", step.Index,
				"want", *req.Expect,
				"got", report.DirtyIDs,
			)
		}
		steps = append(steps, step)

		if r.Handler != nil {
			if err := r.Handler.Step(ctx, step); err != nil {
				return steps, err
			}
		}
	}

	if r.Handler != nil {
		summary := Summary{Scenario: sc.Name, Steps: len(steps), Failed: failed}
		if err := r.Handler.End(ctx, summary); err != nil {
			return steps, err
		}
	}
	if failed > 0 {
		return steps, fmt.Errorf("%w: %d of %d", ErrExpectationFailed, failed, len(steps))
	}
	return steps, nil
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
