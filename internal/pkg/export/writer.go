package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Vodeneev/linesheet/internal/extractor/merge"
	"github.com/Vodeneev/linesheet/internal/pkg/models"
)

// BundleFileName is the file a day bundle is written to.
func BundleFileName(dateKey string) string {
	return fmt.Sprintf("games_%s.json", dateKey)
}

// Writer writes export files into one directory.
type Writer struct {
	dir      string
	exporter *Exporter
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, exporter: NewExporter()}
}

// WriteFlat writes the flat extraction and returns the file path.
func (w *Writer) WriteFlat(name string, fixtures []models.Fixture) (string, error) {
	return w.writeJSON(name, w.exporter.ExportFlat(fixtures))
}

// WriteBundles writes one file per day bundle.
func (w *Writer) WriteBundles(bundles []models.DayBundle) ([]string, error) {
	paths := make([]string, 0, len(bundles))
	for _, b := range bundles {
		path, err := w.writeJSON(BundleFileName(b.DateKey), w.exporter.ExportDay(b))
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteConflicts writes the merge audit file.
func (w *Writer) WriteConflicts(name string, conflicts []merge.Conflict) (string, error) {
	return w.writeJSON(name, w.exporter.ExportConflicts(conflicts))
}

// WriteFlatCSV writes the flat extraction as CSV for spreadsheet users.
func (w *Writer) WriteFlatCSV(name string, fixtures []models.Fixture) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	path := filepath.Join(w.dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write([]string{"league", "date", "time", "home_team", "away_team", "home_odds", "draw_odds", "away_odds", "raw_line"}); err != nil {
		return "", err
	}
	for _, m := range w.exporter.ExportFlat(fixtures).Matches {
		date := ""
		if m.Date != nil {
			date = *m.Date
		}
		if err := cw.Write([]string{
			m.League, date, m.Time, m.HomeTeam, m.AwayTeam,
			formatOdd(m.HomeOdds), formatOdd(m.DrawOdds), formatOdd(m.AwayOdds),
			m.RawLine,
		}); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func (w *Writer) writeJSON(name string, v any) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	path := filepath.Join(w.dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func formatOdd(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
