// Package file persists activation reports as JSON documents on disk, one file
// per request. It lets separate CLI invocations share report history without
// running redis.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/postman/pkg/domain"
)

const ext = ".json"

// DefaultDir is used when New receives an empty directory.
var DefaultDir = filepath.Join(".postman", "reports")

// Store implements ports.ReportStore on the local filesystem.
type Store struct {
	Dir string
}

// New creates a Store rooted at dir.
func New(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{Dir: dir}
}

func (s *Store) path(requestID string) (string, error) {
	// A leading dot is reserved for temp files.
	if requestID == "" || strings.ContainsAny(requestID, `/\`) || strings.HasPrefix(requestID, ".") {
		return "", fmt.Errorf("%w: invalid request id %q", domain.ErrPrecondition, requestID)
	}
	return filepath.Join(s.Dir, requestID+ext), nil
}

// Save writes the report atomically: temp file, fsync, rename.
func (s *Store) Save(ctx context.Context, report *domain.Report) error {
	if report == nil {
		return fmt.Errorf("%w: nil report", domain.ErrPrecondition)
	}
	dest, err := s.path(report.RequestID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("ensure report directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(s.Dir, ".tmp-*"+ext)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("replace report file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("rename report file: %w", err)
	}
	return nil
}

// Load reads a report back.
func (s *Store) Load(ctx context.Context, requestID string) (*domain.Report, error) {
	p, err := s.path(requestID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("read report file: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", requestID, err)
	}
	return &report, nil
}

// Delete removes the report file. Missing files are not an error.
func (s *Store) Delete(ctx context.Context, requestID string) error {
	p, err := s.path(requestID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete report file: %w", err)
	}
	return nil
}

// List returns stored request IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list reports: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	slices.Sort(ids)
	return ids, nil
}
