package storage

import (
	"context"

	"github.com/Vodeneev/linesheet/internal/extractor/merge"
	"github.com/Vodeneev/linesheet/internal/pkg/models"
)

// BundleStorage persists day bundles next to the exported files.
type BundleStorage interface {
	// StoreBundle upserts one day bundle; payload is the exported JSON document.
	StoreBundle(ctx context.Context, bundle models.DayBundle, payload []byte) error

	// StoreConflicts appends the odds conflicts of one run.
	StoreConflicts(ctx context.Context, runID string, conflicts []merge.Conflict) error

	// Close closes the database connection
	Close() error
}
