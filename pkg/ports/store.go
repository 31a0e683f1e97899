package ports

import (
	"context"

	"github.com/aretw0/postman/pkg/domain"
)

// ReportStore persists activation reports so hosts can audit what was refreshed.
type ReportStore interface {
	// Save persists the report under its RequestID.
	Save(ctx context.Context, report *domain.Report) error

	// Load retrieves a report by request ID.
	// Returns domain.ErrReportNotFound if it does not exist.
	Load(ctx context.Context, requestID string) (*domain.Report, error)

	// List returns the IDs of stored reports.
	List(ctx context.Context) ([]string, error)

	// Delete removes a report.
	Delete(ctx context.Context, requestID string) error
}
