package runner

import (
	"log/slog"

	"github.com/aretw0/postman"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithHandler configures where results go.
func WithHandler(h Handler) Option {
	return func(r *Runner) {
		r.Handler = h
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithRequestPrefix derives request IDs as prefix-1, prefix-2, ...
// instead of random ones, which keeps stored reports addressable.
func WithRequestPrefix(prefix string) Option {
	return func(r *Runner) {
		r.requestPrefix = prefix
	}
}

// WithActivatorOptions passes extra options to every activation.
func WithActivatorOptions(opts ...postman.ActivatorOption) Option {
	return func(r *Runner) {
		r.activatorOpts = append(r.activatorOpts, opts...)
	}
}
