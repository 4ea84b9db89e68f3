package storage

import (
	"context"
	"testing"

	"github.com/Vodeneev/linesheet/internal/extractor/merge"
	"github.com/Vodeneev/linesheet/internal/pkg/config"
	"github.com/Vodeneev/linesheet/internal/pkg/models"
)

func newTestSQLite(t *testing.T) *SQLiteBundleStorage {
	t.Helper()
	s, err := NewSQLiteBundleStorage(context.Background(), &config.SQLiteConfig{Path: ":memory:", Table: "day_bundles"})
	if err != nil {
		t.Fatalf("NewSQLiteBundleStorage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreBundleUpserts(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first := models.DayBundle{DateKey: "2025-08-05", Totals: models.BundleTotals{Games: 1, Markets: 2, Leagues: []string{"Angol Premier League"}}}
	if err := s.StoreBundle(ctx, first, []byte(`{"v":1}`)); err != nil {
		t.Fatalf("StoreBundle: %v", err)
	}
	second := models.DayBundle{DateKey: "2025-08-05", Totals: models.BundleTotals{Games: 2, Markets: 5}}
	if err := s.StoreBundle(ctx, second, []byte(`{"v":2}`)); err != nil {
		t.Fatalf("StoreBundle: %v", err)
	}

	var count, games int
	var payload string
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*), MAX(total_games), MAX(payload) FROM day_bundles").Scan(&count, &games, &payload); err != nil {
		t.Fatal(err)
	}
	if count != 1 || games != 2 || payload != `{"v":2}` {
		t.Errorf("rows = %d, games = %d, payload = %s", count, games, payload)
	}
}

func TestSQLiteStoreConflictsIsIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	conflicts := []merge.Conflict{{
		Signature:        "2025-08-05|20:00|angol premier league|arsenal|chelsea",
		MarketType:       "main",
		PreviousOdds:     models.OddsTuple{1.8, 3.5, 4.2},
		CurrentOdds:      models.OddsTuple{1.75, 3.6, 4.4},
		PreviousDocument: "week_32.txt",
		CurrentDocument:  "week_32_fix.txt",
	}}
	for i := 0; i < 2; i++ {
		if err := s.StoreConflicts(ctx, "run-1", conflicts); err != nil {
			t.Fatalf("StoreConflicts: %v", err)
		}
	}
	if err := s.StoreConflicts(ctx, "run-1", nil); err != nil {
		t.Fatalf("StoreConflicts(nil): %v", err)
	}

	var count int
	var current string
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*), MAX(current_odds) FROM day_bundles_conflicts").Scan(&count, &current); err != nil {
		t.Fatal(err)
	}
	if count != 1 || current != "1.75;3.6;4.4" {
		t.Errorf("rows = %d, current = %q", count, current)
	}
}

func TestNewSQLiteBundleStorageValidates(t *testing.T) {
	ctx := context.Background()
	if _, err := NewSQLiteBundleStorage(ctx, &config.SQLiteConfig{Table: "day_bundles"}); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := NewSQLiteBundleStorage(ctx, &config.SQLiteConfig{Path: ":memory:", Table: "Bad"}); err == nil {
		t.Error("expected error for invalid table name")
	}
}
