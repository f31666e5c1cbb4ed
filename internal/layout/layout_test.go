package layout

import (
	"os"
	"path/filepath"
	"testing"
)

func TestArtifactPathIsPureAndCollisionFree(t *testing.T) {
	m := NewManager("output")

	got := m.ArtifactPath("20260211_141500", "mistral", "invoice.pdf")
	want := filepath.Join("output", "runs", "20260211_141500", "mistral", "invoice.md")
	if got != want {
		t.Errorf("ArtifactPath: got %q, want %q", got, want)
	}
	if again := m.ArtifactPath("20260211_141500", "mistral", "invoice.pdf"); again != got {
		t.Errorf("ArtifactPath not pure: %q != %q", again, got)
	}

	seen := map[string]string{}
	for _, pair := range [][2]string{
		{"mistral", "invoice.pdf"},
		{"mistral", "scan.pdf"},
		{"landing_ai", "invoice.pdf"},
		{"landing_ai", "scan.pdf"},
	} {
		path := m.ArtifactPath("r1", pair[0], pair[1])
		if prior, dup := seen[path]; dup {
			t.Errorf("path collision: %s vs %s/%s both map to %q", prior, pair[0], pair[1], path)
		}
		seen[path] = pair[0] + "/" + pair[1]
	}
}

func TestMetricsPaths(t *testing.T) {
	m := NewManager("out")
	if got, want := m.RunMetricsPath("r1"), filepath.Join("out", "runs", "r1", "metrics.txt"); got != want {
		t.Errorf("RunMetricsPath: got %q, want %q", got, want)
	}
	if got, want := m.LifetimeMetricsPath(), filepath.Join("out", "metrics.txt"); got != want {
		t.Errorf("LifetimeMetricsPath: got %q, want %q", got, want)
	}
}

func TestEnsureAndWriteCreatesParentsAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs", "r1", "mistral", "invoice.md")

	if err := EnsureAndWrite(path, "first"); err != nil {
		t.Fatalf("first write: %v", err)
	}
	// Rerunning the same path overwrites in place rather than duplicating.
	if err := EnsureAndWrite(path, "second"); err != nil {
		t.Fatalf("second write: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw) != "second" {
		t.Errorf("expected overwrite, got %q", raw)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 artifact, found %d", len(entries))
	}
}
