package performance

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Stage names recorded with RecordStage.
const (
	StageRead   = "read"
	StageMerge  = "merge"
	StageSplit  = "split"
	StageExport = "export"
	StageStore  = "store"
)

// Tracker collects timings of one extraction run. Safe for concurrent use:
// documents are recorded from the extraction workers.
type Tracker struct {
	mu sync.RWMutex

	Documents []DocumentTiming
	Stages    map[string]time.Duration
}

// DocumentTiming is the extraction timing of a single document.
type DocumentTiming struct {
	Name     string
	Duration time.Duration
	Lines    int
	Fixtures int
	Markets  int
	Noise    int
}

func NewTracker() *Tracker {
	return &Tracker{Stages: make(map[string]time.Duration)}
}

// RecordDocument records the extraction of one document.
func (t *Tracker) RecordDocument(name string, d time.Duration, lines, fixtures, markets, noise int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Documents = append(t.Documents, DocumentTiming{
		Name:     name,
		Duration: d,
		Lines:    lines,
		Fixtures: fixtures,
		Markets:  markets,
		Noise:    noise,
	})
}

// RecordStage adds d to the total of a pipeline stage.
func (t *Tracker) RecordStage(stage string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Stages == nil {
		t.Stages = make(map[string]time.Duration)
	}
	t.Stages[stage] += d
}

// Summary is a snapshot of the tracker.
type Summary struct {
	Documents     int                      `json:"documents"`
	Lines         int                      `json:"lines"`
	Fixtures      int                      `json:"fixtures"`
	Markets       int                      `json:"markets"`
	Noise         int                      `json:"noise"`
	NoisePercent  float64                  `json:"noise_percent"`
	ExtractTotal  string                   `json:"extract_total"`
	AvgPerDoc     string                   `json:"avg_per_document"`
	Stages        map[string]string        `json:"stages"`
	SlowestDocs   []DocumentTiming         `json:"-"`
	stageDuration map[string]time.Duration // unexported, for logging
}

// Summarize aggregates everything recorded so far.
func (t *Tracker) Summarize() Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Summary{
		Documents:     len(t.Documents),
		Stages:        make(map[string]string, len(t.Stages)),
		stageDuration: make(map[string]time.Duration, len(t.Stages)),
	}
	var total time.Duration
	for _, d := range t.Documents {
		s.Lines += d.Lines
		s.Fixtures += d.Fixtures
		s.Markets += d.Markets
		s.Noise += d.Noise
		total += d.Duration
	}
	if s.Lines > 0 {
		s.NoisePercent = float64(s.Noise) / float64(s.Lines) * 100
	}
	s.ExtractTotal = total.String()
	if s.Documents > 0 {
		s.AvgPerDoc = (total / time.Duration(s.Documents)).String()
	}
	for stage, d := range t.Stages {
		s.Stages[stage] = d.String()
		s.stageDuration[stage] = d
	}

	slowest := append([]DocumentTiming(nil), t.Documents...)
	sort.Slice(slowest, func(i, j int) bool { return slowest[i].Duration > slowest[j].Duration })
	if len(slowest) > 3 {
		slowest = slowest[:3]
	}
	s.SlowestDocs = slowest
	return s
}

// PrintSummary logs the run summary.
func (t *Tracker) PrintSummary() {
	s := t.Summarize()
	if s.Documents == 0 {
		slog.Info("No performance data collected")
		return
	}

	slog.Info("Extraction summary",
		"documents", s.Documents,
		"lines", s.Lines,
		"fixtures", s.Fixtures,
		"markets", s.Markets,
		"noise", s.Noise,
		"noise_percent", s.NoisePercent,
		"extract_total", s.ExtractTotal,
		"avg_per_document", s.AvgPerDoc)

	stages := make([]string, 0, len(s.stageDuration))
	for stage := range s.stageDuration {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	for _, stage := range stages {
		slog.Info("Stage timing", "stage", stage, "duration", s.stageDuration[stage])
	}

	for _, d := range s.SlowestDocs {
		slog.Info("Slowest document",
			"document", d.Name,
			"duration", d.Duration,
			"lines", d.Lines,
			"fixtures", d.Fixtures)
	}
}
