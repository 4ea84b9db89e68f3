package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/Vodeneev/linesheet/internal/extractor/merge"
	"github.com/Vodeneev/linesheet/internal/pkg/config"
	"github.com/Vodeneev/linesheet/internal/pkg/models"
)

// Ensure PostgresBundleStorage implements BundleStorage
var _ BundleStorage = (*PostgresBundleStorage)(nil)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// PostgresBundleStorage stores day bundles as JSONB documents, one row per date.
type PostgresBundleStorage struct {
	db    *sql.DB
	table string
}

// NewPostgresBundleStorage connects, pings and creates the tables if needed.
func NewPostgresBundleStorage(cfg *config.PostgresConfig) (*PostgresBundleStorage, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}
	if !identifierPattern.MatchString(cfg.Table) {
		return nil, fmt.Errorf("invalid postgres table name %q", cfg.Table)
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresBundleStorage{db: db, table: cfg.Table}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL bundle storage initialized successfully", "table", cfg.Table)
	return s, nil
}

func (s *PostgresBundleStorage) initSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		date_key VARCHAR(16) PRIMARY KEY,
		total_games INTEGER NOT NULL,
		total_markets INTEGER NOT NULL,
		leagues TEXT NOT NULL DEFAULT '',
		payload JSONB NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS %[1]s_conflicts (
		id SERIAL PRIMARY KEY,
		run_id VARCHAR(100) NOT NULL,
		signature VARCHAR(500) NOT NULL,
		market_type VARCHAR(500) NOT NULL,
		previous_odds VARCHAR(200) NOT NULL,
		current_odds VARCHAR(200) NOT NULL,
		previous_document VARCHAR(500) NOT NULL,
		current_document VARCHAR(500) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(run_id, signature, market_type, current_document)
	);

	CREATE INDEX IF NOT EXISTS idx_%[1]s_conflicts_signature ON %[1]s_conflicts(signature);
	`, s.table)
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// bundleRow holds the column values of one bundle row.
type bundleRow struct {
	DateKey      string
	TotalGames   int
	TotalMarkets int
	Leagues      string
}

func newBundleRow(b models.DayBundle) bundleRow {
	return bundleRow{
		DateKey:      b.DateKey,
		TotalGames:   b.Totals.Games,
		TotalMarkets: b.Totals.Markets,
		Leagues:      strings.Join(b.Totals.Leagues, "; "),
	}
}

// StoreBundle upserts the bundle: a newer run replaces the row of the same date.
func (s *PostgresBundleStorage) StoreBundle(ctx context.Context, bundle models.DayBundle, payload []byte) error {
	row := newBundleRow(bundle)
	query := fmt.Sprintf(`
	INSERT INTO %s (date_key, total_games, total_markets, leagues, payload, updated_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	ON CONFLICT (date_key) DO UPDATE SET
		total_games = EXCLUDED.total_games,
		total_markets = EXCLUDED.total_markets,
		leagues = EXCLUDED.leagues,
		payload = EXCLUDED.payload,
		updated_at = EXCLUDED.updated_at
	`, s.table)
	if _, err := s.db.ExecContext(ctx, query,
		row.DateKey, row.TotalGames, row.TotalMarkets, row.Leagues, string(payload),
	); err != nil {
		return fmt.Errorf("failed to store bundle %s: %w", row.DateKey, err)
	}
	return nil
}

// StoreConflicts inserts the audit trail in one transaction. Re-running the
// same run id is a no-op.
func (s *PostgresBundleStorage) StoreConflicts(ctx context.Context, runID string, conflicts []merge.Conflict) error {
	if len(conflicts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
	INSERT INTO %s_conflicts (
		run_id, signature, market_type, previous_odds, current_odds,
		previous_document, current_document
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (run_id, signature, market_type, current_document) DO NOTHING
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

// Close closes the database connection.
func (s *PostgresBundleStorage) Close() error {
	return s.db.Close()
}
