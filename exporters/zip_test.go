package exporters

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func seedStaging(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
	return dir
}

func TestZipExporter_Export(t *testing.T) {
	staging := seedStaging(t, map[string]string{
		"python/boto3/__init__.py":  "init",
		"python/boto3/session.py":   "session",
		"python/pandas/__init__.py": "pandas",
	})
	output := filepath.Join(t.TempDir(), "layer.zip")

	exporter := &ZipExporter{}
	size, err := exporter.Export(staging, output)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if size == 0 {
		t.Fatalf("Expected non-zero archive size")
	}

	entries, err := InspectZip(output)
	if err != nil {
		t.Fatalf("InspectZip failed: %v", err)
	}

	found := map[string]bool{}
	for _, entry := range entries {
		found[entry.Name] = true
	}
	for _, want := range []string{
		"python/",
		"python/boto3/__init__.py",
		"python/boto3/session.py",
		"python/pandas/__init__.py",
	} {
		if !found[want] {
			t.Fatalf("Archive missing entry %s, got %v", want, found)
		}
	}
}

func TestZipExporter_EmptyStagingStillValid(t *testing.T) {
	staging := t.TempDir()
	if err := os.MkdirAll(filepath.Join(staging, "python"), 0755); err != nil {
		t.Fatalf("Failed to create layout dir: %v", err)
	}
	output := filepath.Join(t.TempDir(), "layer.zip")

	exporter := &ZipExporter{}
	if _, err := exporter.Export(staging, output); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	entries, err := InspectZip(output)
	if err != nil {
		t.Fatalf("Empty archive is not readable: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "python/" {
		t.Fatalf("Expected only the layout directory entry, got %v", entries)
	}
}

func TestZipExporter_FailureLeavesExistingArchiveIntact(t *testing.T) {
	output := filepath.Join(t.TempDir(), "layer.zip")
	prior := []byte("prior archive")
	if err := os.WriteFile(output, prior, 0644); err != nil {
		t.Fatalf("Failed to seed prior archive: %v", err)
	}

	exporter := &ZipExporter{}
	missing := filepath.Join(t.TempDir(), "no-such-staging")
	if _, err := exporter.Export(missing, output); err == nil {
		t.Fatalf("Expected error for missing staging directory")
	}

	after, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("Prior archive missing: %v", err)
	}
	if !reflect.DeepEqual(prior, after) {
		t.Fatalf("Prior archive was modified by failed export")
	}

	// No temp files left behind either.
	entries, err := os.ReadDir(filepath.Dir(output))
	if err != nil {
		t.Fatalf("Failed to list output directory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected only the prior archive, got %d entries", len(entries))
	}
}

func TestZipExporter_OverwritesPriorArchiveOnSuccess(t *testing.T) {
	staging := seedStaging(t, map[string]string{
		"python/pkg/__init__.py": "new",
	})
	output := filepath.Join(t.TempDir(), "layer.zip")
	if err := os.WriteFile(output, []byte("prior"), 0644); err != nil {
		t.Fatalf("Failed to seed prior archive: %v", err)
	}

	exporter := &ZipExporter{}
	if _, err := exporter.Export(staging, output); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if _, err := InspectZip(output); err != nil {
		t.Fatalf("Overwritten archive is not a valid zip: %v", err)
	}
}

func TestSummarizePackages(t *testing.T) {
	entries := []ArchiveEntry{
		{Name: "python/", UncompressedSize: 0},
		{Name: "python/boto3/", UncompressedSize: 0},
		{Name: "python/boto3/__init__.py", UncompressedSize: 100},
		{Name: "python/boto3/session.py", UncompressedSize: 50},
		{Name: "python/pandas/__init__.py", UncompressedSize: 200},
		{Name: "unrelated.txt", UncompressedSize: 10},
	}

	summaries := SummarizePackages(entries, "python")

	if len(summaries) != 2 {
		t.Fatalf("Expected 2 packages, got %d: %v", len(summaries), summaries)
	}
	if summaries[0].Name != "boto3" || summaries[0].Files != 2 || summaries[0].Size != 150 {
		t.Fatalf("Unexpected boto3 summary: %+v", summaries[0])
	}
	if summaries[1].Name != "pandas" || summaries[1].Files != 1 || summaries[1].Size != 200 {
		t.Fatalf("Unexpected pandas summary: %+v", summaries[1])
	}
}

func TestInspectZip_MissingArchive(t *testing.T) {
	if _, err := InspectZip(filepath.Join(t.TempDir(), "nope.zip")); err == nil {
		t.Fatalf("Expected error for missing archive")
	}
}
