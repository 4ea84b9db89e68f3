package extractor

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Vodeneev/linesheet/internal/extractor/daysplit"
	"github.com/Vodeneev/linesheet/internal/extractor/merge"
	"github.com/Vodeneev/linesheet/internal/pkg/models"
	"github.com/Vodeneev/linesheet/internal/pkg/performance"
	"github.com/Vodeneev/linesheet/internal/pkg/validation"
)

// RunOptions configures a run over several documents.
type RunOptions struct {
	// Workers bounds parallel document extraction. Values below 1 mean one.
	Workers int
	// Tracker receives stage timings when set.
	Tracker *performance.Tracker
}

// Result is everything one run produced.
type Result struct {
	Documents  []*Document // ordered by rank, oldest first
	Fixtures   []models.Fixture
	Merged     []models.MergedFixture
	Bundles    []models.DayBundle
	Conflicts  []merge.Conflict
	MergeStats merge.Stats
	Invalid    int // merged fixtures that failed validation, still included
}

// Run extracts docs in parallel, merges them one by one from the oldest to the
// most recent document and splits the merged set by date. Documents that
// yield nothing are still part of the result; their ErrEmptyExtraction errors
// are joined into the returned error next to a valid result. Any other error
// (context cancellation) returns a nil result.
func (e *Extractor) Run(ctx context.Context, docs []SourceDocument, opts RunOptions) (*Result, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	extracted := make([]*Document, len(docs))
	docErrs := make([]error, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, src := range docs {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			doc, err := e.ExtractDocument(src)
			extracted[i] = doc
			docErrs[i] = err
			if opts.Tracker != nil {
				opts.Tracker.RecordDocument(src.Name, time.Since(start), doc.Stats.Lines, doc.Stats.Fixtures, doc.Stats.Markets, doc.Stats.Noise)
			}
			if err != nil {
				slog.Error("Document extraction failed", "document", src.Name, "error", err)
			} else {
				slog.Info("Extracted document",
					"document", src.Name,
					"fixtures", doc.Stats.Fixtures,
					"markets", doc.Stats.Markets,
					"noise", doc.Stats.Noise,
					"dropped", doc.Stats.Dropped)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	order := make([]int, len(docs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return docs[order[a]].Rank < docs[order[b]].Rank
	})

	mergeStart := time.Now()
	merger := merge.NewMerger()
	res := &Result{}
	var errs []error
	for _, i := range order {
		doc := extracted[i]
		res.Documents = append(res.Documents, doc)
		res.Fixtures = append(res.Fixtures, doc.Fixtures...)
		merger.AddDocument(doc.MergeInput())
		if docErrs[i] != nil {
			errs = append(errs, docErrs[i])
		}
	}
	res.Merged = merger.Fixtures()
	res.Conflicts = merger.Conflicts()
	res.MergeStats = merger.Stats()

	validator := validation.NewValidator()
	for i := range res.Merged {
		if err := validator.ValidateFixture(&res.Merged[i]); err != nil {
			res.Invalid++
			slog.Warn("Merged fixture failed validation", "signature", res.Merged[i].Signature, "error", err)
		}
	}
	if opts.Tracker != nil {
		opts.Tracker.RecordStage(performance.StageMerge, time.Since(mergeStart))
	}

	splitStart := time.Now()
	res.Bundles = daysplit.Split(res.Merged)
	if opts.Tracker != nil {
		opts.Tracker.RecordStage(performance.StageSplit, time.Since(splitStart))
	}

	slog.Info("Merged documents",
		"documents", len(docs),
		"fixtures", len(res.Merged),
		"bundles", len(res.Bundles),
		"duplicates", res.MergeStats.Duplicates,
		"conflicts", len(res.Conflicts),
		"invalid", res.Invalid)

	return res, errors.Join(errs...)
}
