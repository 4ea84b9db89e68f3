package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/Vodeneev/linesheet/internal/extractor"
	pkgconfig "github.com/Vodeneev/linesheet/internal/pkg/config"
	"github.com/Vodeneev/linesheet/internal/pkg/export"
	"github.com/Vodeneev/linesheet/internal/pkg/logging"
	"github.com/Vodeneev/linesheet/internal/pkg/notify"
	"github.com/Vodeneev/linesheet/internal/pkg/performance"
	"github.com/Vodeneev/linesheet/internal/pkg/reference"
	"github.com/Vodeneev/linesheet/internal/pkg/storage"
)

type config struct {
	configPath string
	outputDir  string
	workers    int
	files      []string
}

func main() {
	if err := run(); err != nil {
		slog.Error("Linesheet failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()
	if len(cfg.files) == 0 {
		return fmt.Errorf("no input files: usage linesheet [-config path] file...")
	}

	appConfig := pkgconfig.Default()
	if cfg.configPath != "" {
		slog.Info("Loading config", "path", cfg.configPath)
		loaded, err := pkgconfig.Load(cfg.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		appConfig = loaded
	}
	if cfg.outputDir != "" {
		appConfig.Output.Dir = cfg.outputDir
	}
	if cfg.workers > 0 {
		appConfig.Extract.Workers = cfg.workers
	}

	_, logCloser, err := logging.SetupLogger(&appConfig.Logging, "linesheet")
	if err != nil {
		slog.Warn("Failed to setup logging, continuing with default logger", "error", err)
	} else {
		defer logCloser.Close()
	}

	ref, err := reference.Load(appConfig.Reference)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(ctx, cancel)

	start := time.Now()
	tracker := performance.NewTracker()

	readStart := time.Now()
	docs, err := loadDocuments(cfg.files)
	if err != nil {
		return err
	}
	tracker.RecordStage(performance.StageRead, time.Since(readStart))

	ext := extractor.New(ref)
	res, runErr := ext.Run(ctx, docs, extractor.RunOptions{
		Workers: appConfig.Extract.Workers,
		Tracker: tracker,
	})
	if res == nil {
		return fmt.Errorf("extraction failed: %w", runErr)
	}

	exportStart := time.Now()
	if err := writeOutputs(appConfig.Output, res); err != nil {
		return err
	}
	tracker.RecordStage(performance.StageExport, time.Since(exportStart))

	if appConfig.Postgres.DSN != "" || appConfig.SQLite.Path != "" {
		storeStart := time.Now()
		if err := storeBundles(ctx, appConfig, res); err != nil {
			slog.Error("Failed to store bundles", "error", err)
		}
		tracker.RecordStage(performance.StageStore, time.Since(storeStart))
	}

	broken := brokenDocuments(res)
	if appConfig.Telegram.Enabled {
		sendAlerts(ctx, &appConfig.Telegram, res, broken, time.Since(start))
	}

	tracker.PrintSummary()
	export.NewExporter().PrintSummary(res.Bundles)

	if runErr != nil {
		if errors.Is(runErr, extractor.ErrEmptyExtraction) {
			return fmt.Errorf("%d of %d documents yielded no fixtures: %w", len(broken), len(docs), runErr)
		}
		return runErr
	}
	return nil
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.configPath, "config", os.Getenv("CONFIG_PATH"), "Path to config file (embedded defaults when empty)")
	flag.StringVar(&cfg.outputDir, "out", "", "Output directory, overrides output.dir")
	flag.IntVar(&cfg.workers, "workers", 0, "Parallel document extraction, overrides extract.workers")
	flag.Parse()
	cfg.files = flag.Args()
	return cfg
}

func setupSignalHandler(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
}

func writeOutputs(cfg pkgconfig.OutputConfig, res *extractor.Result) error {
	w := export.NewWriter(cfg.Dir)

	path, err := w.WriteFlat(cfg.FlatFile, res.Fixtures)
	if err != nil {
		return fmt.Errorf("failed to write flat extraction: %w", err)
	}
	slog.Info("Wrote flat extraction", "path", path, "matches", len(res.Fixtures))

	if cfg.CSVFile != "" {
		path, err := w.WriteFlatCSV(cfg.CSVFile, res.Fixtures)
		if err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
		slog.Info("Wrote flat extraction csv", "path", path)
	}

	paths, err := w.WriteBundles(res.Bundles)
	if err != nil {
		return fmt.Errorf("failed to write day bundles: %w", err)
	}
	slog.Info("Wrote day bundles", "files", len(paths), "dir", cfg.Dir)

	if cfg.ConflictsFile != "" {
		path, err := w.WriteConflicts(cfg.ConflictsFile, res.Conflicts)
		if err != nil {
			return fmt.Errorf("failed to write conflicts: %w", err)
		}
		slog.Info("Wrote conflicts", "path", path, "conflicts", len(res.Conflicts))
	}
	return nil
}

// openStorage prefers Postgres and falls back to the local SQLite file.
func openStorage(ctx context.Context, cfg *pkgconfig.Config) (storage.BundleStorage, error) {
	if cfg.Postgres.DSN != "" {
		return storage.NewPostgresBundleStorage(&cfg.Postgres)
	}
	return storage.NewSQLiteBundleStorage(ctx, &cfg.SQLite)
}

func storeBundles(ctx context.Context, cfg *pkgconfig.Config, res *extractor.Result) error {
	s, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	exporter := export.NewExporter()
	for _, b := range res.Bundles {
		payload, err := exporter.ExportToJSON(exporter.ExportDay(b))
		if err != nil {
			return fmt.Errorf("failed to encode bundle %s: %w", b.DateKey, err)
		}
		if err := s.StoreBundle(ctx, b, payload); err != nil {
			return err
		}
	}
	runID := uuid.Must(uuid.NewV7()).String()
	if err := s.StoreConflicts(ctx, runID, res.Conflicts); err != nil {
		return err
	}
	slog.Info("Stored day bundles", "bundles", len(res.Bundles), "conflicts", len(res.Conflicts), "run_id", runID)
	return nil
}

func brokenDocuments(res *extractor.Result) []notify.BrokenDocument {
	var broken []notify.BrokenDocument
	for _, doc := range res.Documents {
		if doc.Stats.Fixtures > 0 {
			continue
		}
		broken = append(broken, notify.BrokenDocument{
			Name:    doc.Name,
			Lines:   doc.Stats.Lines,
			Noise:   doc.Stats.Noise,
			Dropped: doc.Stats.Dropped,
			Reasons: doc.Stats.NoiseReasons,
		})
	}
	return broken
}

func sendAlerts(ctx context.Context, cfg *pkgconfig.TelegramConfig, res *extractor.Result, broken []notify.BrokenDocument, took time.Duration) {
	n, err := notify.NewTelegramNotifier(cfg)
	if err != nil {
		slog.Error("Failed to create telegram notifier", "error", err)
		return
	}
	defer n.Stop()

	for _, doc := range broken {
		if err := n.SendBrokenDocumentAlert(ctx, doc); err != nil {
			slog.Warn("Failed to queue broken document alert", "document", doc.Name, "error", err)
		}
	}
	summary := notify.RunSummary{
		Documents: len(res.Documents),
		Broken:    len(broken),
		Fixtures:  len(res.Merged),
		Bundles:   len(res.Bundles),
		Conflicts: len(res.Conflicts),
		Duration:  took,
	}
	if err := n.SendRunSummary(ctx, summary); err != nil {
		slog.Warn("Failed to queue run summary", "error", err)
	}
}
