// Package redis persists resolution reports in Redis so they can be inspected
// from another process (the CLI, a dashboard) after the request is gone.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/postman/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "postman:report:"

// farFuture is the index score of reports that never expire.
const farFuture = 4102444800 // 2100-01-01

// Store implements ports.ReportStore using Redis. Each report is a JSON
// string key; a sorted set indexes them by expiry so List can prune lazily.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL expires reports after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithClock overrides time.Now for index scores.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New connects to the Redis server at address.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(requestID string) string {
	return s.prefix + requestID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save writes the report and indexes it in one pipeline.
func (s *Store) Save(ctx context.Context, report *domain.Report) error {
	if report == nil || report.RequestID == "" {
		return fmt.Errorf("%w: report without request id", domain.ErrPrecondition)
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	score := float64(farFuture)
	if s.ttl > 0 {
		score = float64(s.now().Add(s.ttl).Unix())
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(report.RequestID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: report.RequestID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save report to redis: %w", err)
	}
	return nil
}

// Load reads a report back. Expired or unknown IDs yield domain.ErrReportNotFound.
func (s *Store) Load(ctx context.Context, requestID string) (*domain.Report, error) {
	val, err := s.client.Get(ctx, s.key(requestID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report from redis: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal(val, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// Delete removes the report and its index entry.
func (s *Store) Delete(ctx context.Context, requestID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(requestID))
	pipe.ZRem(ctx, s.indexKey(), requestID)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns the IDs of live reports, oldest expiry first. Index entries
// whose expiry has passed are pruned on the way.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := fmt.Sprintf("%d", s.now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired reports: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return ids, nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
