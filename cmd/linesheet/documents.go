package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Vodeneev/linesheet/internal/extractor"
	"github.com/Vodeneev/linesheet/internal/extractor/lines"
)

type inputFile struct {
	path    string
	modTime int64
	arg     int
}

// loadDocuments reads every text dump. Rank follows file modification time,
// ties keep the command line order, so the most recent program wins the merge.
func loadDocuments(paths []string) ([]extractor.SourceDocument, error) {
	files := make([]inputFile, 0, len(paths))
	for i, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		files = append(files, inputFile{path: p, modTime: info.ModTime().UnixNano(), arg: i})
	}
	rankFiles(files)

	docs := make([]extractor.SourceDocument, 0, len(files))
	for rank, f := range files {
		doc, err := readDocument(f.path, rank+1)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func rankFiles(files []inputFile) {
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].modTime != files[j].modTime {
			return files[i].modTime < files[j].modTime
		}
		return files[i].arg < files[j].arg
	})
}

func readDocument(path string, rank int) (extractor.SourceDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return extractor.SourceDocument{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	raw, err := lines.ReadAll(f)
	if err != nil {
		return extractor.SourceDocument{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return extractor.SourceDocument{Name: filepath.Base(path), Rank: rank, Lines: raw}, nil
}
