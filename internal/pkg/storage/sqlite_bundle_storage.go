package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/Vodeneev/linesheet/internal/extractor/merge"
	"github.com/Vodeneev/linesheet/internal/pkg/config"
	"github.com/Vodeneev/linesheet/internal/pkg/models"
)

var _ BundleStorage = (*SQLiteBundleStorage)(nil)

// SQLiteBundleStorage keeps day bundles in a local database file, for runs
// without a Postgres server.
type SQLiteBundleStorage struct {
	db    *sql.DB
	table string
}

// NewSQLiteBundleStorage opens (or creates) the database file and its tables.
// ":memory:" is accepted as path.
func NewSQLiteBundleStorage(ctx context.Context, cfg *config.SQLiteConfig) (*SQLiteBundleStorage, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if !identifierPattern.MatchString(cfg.Table) {
		return nil, fmt.Errorf("invalid sqlite table name %q", cfg.Table)
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// a single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	s := &SQLiteBundleStorage{db: db, table: cfg.Table}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("SQLite bundle storage initialized", "path", cfg.Path, "table", cfg.Table)
	return s, nil
}

func (s *SQLiteBundleStorage) initSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			date_key TEXT PRIMARY KEY,
			total_games INTEGER NOT NULL,
			total_markets INTEGER NOT NULL,
			leagues TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`, s.table),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s_conflicts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			signature TEXT NOT NULL,
			market_type TEXT NOT NULL,
			previous_odds TEXT NOT NULL,
			current_odds TEXT NOT NULL,
			previous_document TEXT NOT NULL,
			current_document TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			UNIQUE(run_id, signature, market_type, current_document)
		)`, s.table),
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// StoreBundle replaces the row of the bundle's date.
func (s *SQLiteBundleStorage) StoreBundle(ctx context.Context, bundle models.DayBundle, payload []byte) error {
	row := newBundleRow(bundle)
	query := fmt.Sprintf(`
	INSERT INTO %s (date_key, total_games, total_markets, leagues, payload, updated_at)
	VALUES (?, ?, ?, ?, ?, datetime('now'))
	ON CONFLICT (date_key) DO UPDATE SET
		total_games = excluded.total_games,
		total_markets = excluded.total_markets,
		leagues = excluded.leagues,
		payload = excluded.payload,
		updated_at = excluded.updated_at
	`, s.table)
	if _, err := s.db.ExecContext(ctx, query,
		row.DateKey, row.TotalGames, row.TotalMarkets, row.Leagues, string(payload),
	); err != nil {
		return fmt.Errorf("failed to store bundle %s: %w", row.DateKey, err)
	}
	return nil
}

// StoreConflicts inserts the audit trail in one transaction.
func (s *SQLiteBundleStorage) StoreConflicts(ctx context.Context, runID string, conflicts []merge.Conflict) error {
	if len(conflicts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
	INSERT OR IGNORE INTO %s_conflicts (
		run_id, signature, market_type, previous_odds, current_odds,
		previous_document, current_document
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.table)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare conflict insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range conflicts {
		if _, err := stmt.ExecContext(ctx,
			runID, c.Signature, c.MarketType, c.PreviousOdds.Key(), c.CurrentOdds.Key(),
			c.PreviousDocument, c.CurrentDocument,
		); err != nil {
			return fmt.Errorf("failed to store conflict for %s: %w", c.Signature, err)
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteBundleStorage) Close() error {
	return s.db.Close()
}
