package exporters

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestGetExporter(t *testing.T) {
	for _, name := range []string{"zip", "targz"} {
		exporter, err := GetExporter(name)
		if err != nil {
			t.Fatalf("GetExporter(%q) failed: %v", name, err)
		}
		if exporter.Name() != name {
			t.Fatalf("Expected exporter name %q, got %q", name, exporter.Name())
		}
	}
}

func TestGetExporter_Unknown(t *testing.T) {
	if _, err := GetExporter("rar"); err == nil {
		t.Fatalf("Expected error for unknown exporter")
	}
}

func TestListExporters(t *testing.T) {
	names := ListExporters()
	found := map[string]bool{}
	for _, name := range names {
		found[name] = true
	}
	if !found["zip"] || !found["targz"] {
		t.Fatalf("Expected zip and targz to be registered, got %v", names)
	}
}

func TestTarGzExporter_Export(t *testing.T) {
	staging := seedStaging(t, map[string]string{
		"python/boto3/__init__.py": "init",
	})
	output := filepath.Join(t.TempDir(), "layer.tar.gz")

	exporter := &TarGzExporter{}
	size, err := exporter.Export(staging, output)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if size == 0 {
		t.Fatalf("Expected non-zero archive size")
	}

	file, err := os.Open(output)
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		t.Fatalf("Archive is not valid gzip: %v", err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	found := map[string]bool{}
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Failed to read tar: %v", err)
		}
		found[header.Name] = true
	}

	if !found["python/boto3/__init__.py"] {
		t.Fatalf("Tarball missing installed file, got %v", found)
	}
}
