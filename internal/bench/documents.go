package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joseph-ayodele/ocr-bench/internal/common"
	"github.com/joseph-ayodele/ocr-bench/internal/layout"
	"github.com/joseph-ayodele/ocr-bench/internal/pdfinfo"
)

// Document is one input file to benchmark.
type Document struct {
	Path string
	Name string
}

// ResolveDocuments returns the document set for a run: every PDF directly
// inside inputDir sorted by name, or the single named file when inputFile is
// set. A missing directory or file is a fatal setup error.
func ResolveDocuments(inputDir, inputFile string) ([]Document, error) {
	if inputFile != "" {
		path := filepath.Join(inputDir, inputFile)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil, common.NewAppError("SETUP_ERROR", fmt.Sprintf("input PDF does not exist: %s", path), common.ErrNotFound)
		}
		if !pdfinfo.IsPDF(path) {
			return nil, common.NewAppError("SETUP_ERROR", fmt.Sprintf("input file must be a PDF: %s", inputFile), common.ErrInvalidInput)
		}
		return []Document{{Path: path, Name: filepath.Base(path)}}, nil
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, common.NewAppError("SETUP_ERROR", fmt.Sprintf("input directory does not exist: %s", inputDir), err)
	}
	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !pdfinfo.IsPDF(entry.Name()) {
			continue
		}
		docs = append(docs, Document{
			Path: filepath.Join(inputDir, entry.Name()),
			Name: entry.Name(),
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

// NewRunID creates a sortable timestamp-derived run id and its run directory.
// When the directory for the base id already exists (two invocations within
// one second, or a deliberate rerun clock collision) a numeric suffix is
// appended until a fresh directory is found.
func NewRunID(lm *layout.Manager, now time.Time) (string, error) {
	base := now.Format("20060102_150405")
	runID := base
	for suffix := 1; ; suffix++ {
		if _, err := os.Stat(lm.RunDir(runID)); os.IsNotExist(err) {
			break
		}
		runID = fmt.Sprintf("%s_%02d", base, suffix)
	}
	if err := layout.EnsureDir(lm.RunDir(runID)); err != nil {
		return "", common.NewAppError("SETUP_ERROR", "create run directory", err)
	}
	return runID, nil
}
