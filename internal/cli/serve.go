package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpAdapter "github.com/aretw0/postman/pkg/adapters/http"
	"github.com/aretw0/postman/pkg/adapters/memory"
	"github.com/aretw0/postman/pkg/session"
)

// ServeOptions holds the flags of the serve command.
type ServeOptions struct {
	Addr     string
	Scenario string
	Metrics  bool
}

// NewServer builds the demo host. Every page ID gets its own fresh copy of
// the scenario tree.
func NewServer(s *Stack, opts ServeOptions) (*http.Server, error) {
	if _, err := LoadScenario(opts.Scenario); err != nil {
		return nil, err
	}
	pages := session.NewManager(func(_ context.Context, _ string) (*memory.Component, error) {
		compiled, err := LoadScenario(opts.Scenario)
		if err != nil {
			return nil, err
		}
		return compiled.Root, nil
	}, session.WithLogger(s.Logger))

	handlerOpts := []httpAdapter.Option{
		httpAdapter.WithLogger(s.Logger),
		httpAdapter.WithClasses(s.Classes),
	}
	if opts.Metrics {
		handlerOpts = append(handlerOpts,
			httpAdapter.WithMetricsHandler(promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})))
	}

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           httpAdapter.NewHandler(s.Engine, pages, handlerOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Serve runs srv until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, s *Stack, srv *http.Server) error {
	serverErrors := make(chan error, 1)
	go func() {
		s.Logger.Info("starting postman demo host", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.Logger.Warn("graceful shutdown did not complete", "err", err)
			return srv.Close()
		}
		return nil
	}
}
