// Package layout computes the deterministic output layout for benchmark runs:
//
//	output/runs/<run_id>/<provider_id>/<document_stem>.md
//	output/runs/<run_id>/metrics.txt
//	output/metrics.txt
package layout

import (
	"os"
	"path/filepath"
	"strings"
)

// Manager translates (run_id, provider_id, document_name) into artifact and
// metrics file paths under a fixed output root. All path functions are pure;
// directories are only created on write.
type Manager struct {
	outputDir string
}

func NewManager(outputDir string) *Manager {
	return &Manager{outputDir: outputDir}
}

// RunDir returns the directory holding one run's artifacts.
func (m *Manager) RunDir(runID string) string {
	return filepath.Join(m.outputDir, "runs", runID)
}

// ArtifactPath returns the markdown artifact path for one (run, provider,
// document) triple. The document's extension is replaced with ".md", so two
// distinct (provider, document) pairs within a run never collide.
func (m *Manager) ArtifactPath(runID, providerID, documentName string) string {
	stem := strings.TrimSuffix(documentName, filepath.Ext(documentName))
	return filepath.Join(m.RunDir(runID), providerID, stem+".md")
}

// RunMetricsPath returns the run-scoped metrics file path.
func (m *Manager) RunMetricsPath(runID string) string {
	return filepath.Join(m.RunDir(runID), "metrics.txt")
}

// LifetimeMetricsPath returns the append-only metrics file shared by all runs.
func (m *Manager) LifetimeMetricsPath() string {
	return filepath.Join(m.outputDir, "metrics.txt")
}

// EnsureDir creates path and any missing parents; it is a no-op when the
// directory already exists.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// EnsureAndWrite creates the parent directories of path and writes content,
// truncating any prior file at that exact path. Reruns with the same run_id
// overwrite in place; different runs never collide because the run_id is part
// of the path.
func EnsureAndWrite(path, content string) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
