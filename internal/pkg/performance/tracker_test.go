package performance

import (
	"sync"
	"testing"
	"time"
)

func TestTrackerSummarize(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for i := 1; i <= 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr.RecordDocument("doc", time.Duration(i)*time.Millisecond, 100, 10, 20, 5)
		}(i)
	}
	wg.Wait()
	tr.RecordStage(StageMerge, 2*time.Millisecond)
	tr.RecordStage(StageMerge, 3*time.Millisecond)

	s := tr.Summarize()
	if s.Documents != 4 || s.Lines != 400 || s.Fixtures != 40 || s.Noise != 20 {
		t.Errorf("summary = %+v", s)
	}
	if s.NoisePercent != 5 {
		t.Errorf("noise percent = %v, want 5", s.NoisePercent)
	}
	if s.Stages[StageMerge] != "5ms" {
		t.Errorf("merge stage = %q, want 5ms", s.Stages[StageMerge])
	}
	if len(s.SlowestDocs) != 3 || s.SlowestDocs[0].Duration != 4*time.Millisecond {
		t.Errorf("slowest = %+v", s.SlowestDocs)
	}
}

func TestTrackerEmpty(t *testing.T) {
	var tr Tracker
	tr.RecordStage(StageSplit, time.Millisecond)
	s := tr.Summarize()
	if s.Documents != 0 || s.AvgPerDoc != "" {
		t.Errorf("summary = %+v", s)
	}
	tr.PrintSummary()
}
