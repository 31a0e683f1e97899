package cli

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/postman"
	"github.com/aretw0/postman/internal/config"
	"github.com/aretw0/postman/internal/presentation/graph"
	"github.com/aretw0/postman/pkg/adapters/file"
	"github.com/aretw0/postman/pkg/adapters/memory"
	"github.com/aretw0/postman/pkg/adapters/redis"
	"github.com/aretw0/postman/pkg/observability"
	"github.com/aretw0/postman/pkg/ports"
)

// Stack is everything a command needs: the engine and the adapters behind it.
type Stack struct {
	Engine   *postman.Engine
	Store    ports.ReportStore
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Classes  graph.Classes
	Logger   *slog.Logger

	closers []func() error
}

// newRedisStore is swapped in tests.
var newRedisStore = redis.New

// NewStack wires an engine from cfg. Reports go to redis when an address is
// configured, then to a report directory, and to memory otherwise.
func NewStack(cfg config.Config) (*Stack, error) {
	logger := cfg.Logger()

	s := &Stack{
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
	}
	s.Metrics = observability.NewMetrics(s.Registry)

	if cfg.Redis.Addr != "" {
		rs := newRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		s.Store = rs
		s.closers = append(s.closers, rs.Close)
		logger.Debug("using redis report store", "addr", cfg.Redis.Addr)
	} else if cfg.Reports.Dir != "" {
		s.Store = file.New(cfg.Reports.Dir)
		logger.Debug("using file report store", "dir", cfg.Reports.Dir)
	} else {
		s.Store = memory.NewStore()
	}

	opts, err := cfg.EngineOptions()
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	opts = append(opts,
		postman.WithLogger(logger),
		postman.WithReportStore(s.Store),
		postman.WithLifecycleHooks(observability.Chain(
			s.Metrics.Hooks(),
			observability.LogHooks(logger),
		)),
	)

	eng, err := postman.New(opts...)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	s.Engine = eng

	ignore, boundary := eng.Policies()
	s.Classes = graph.Classes{Boundary: boundary, Ignore: ignore}
	return s, nil
}

// Close releases adapter connections.
func (s *Stack) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
