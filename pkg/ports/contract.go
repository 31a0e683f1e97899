package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/postman/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunReportStoreContract runs a suite of tests to verify that a ReportStore implementation
// adheres to the defined interface contract.
func RunReportStoreContract(t *testing.T, store ReportStore) {
	ctx := context.Background()
	requestID := "contract-test-request-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		report := &domain.Report{
			RequestID:  requestID,
			Observed:   7,
			Changed:    2,
			Dirty:      1,
			ChangedIDs: []string{"l1", "l1-label"},
			DirtyIDs:   []string{"b1"},
		}

		err := store.Save(ctx, report)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, requestID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, report.Observed, loaded.Observed)
		assert.Equal(t, report.Changed, loaded.Changed)
		assert.Equal(t, report.DirtyIDs, loaded.DirtyIDs)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+requestID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, &domain.Report{RequestID: requestID})
		require.NoError(t, err)

		err = store.Delete(ctx, requestID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, requestID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound, "Load after Delete should return ErrReportNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := requestID + "-1"
		id2 := requestID + "-2"
		_ = store.Save(ctx, &domain.Report{RequestID: id1})
		_ = store.Save(ctx, &domain.Report{RequestID: id2})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
