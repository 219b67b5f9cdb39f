package exporters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Exporter packages a staging directory into a single archive file. The
// staging directory's contents are packaged verbatim; an exporter never
// filters or rewrites them.
type Exporter interface {
	Name() string
	Export(stagingDir, outputPath string) (int64, error)
}

var exporters = make(map[string]Exporter)

func RegisterExporter(name string, exporter Exporter) {
	exporters[name] = exporter
}

func GetExporter(name string) (Exporter, error) {
	exporter, exists := exporters[name]
	if !exists {
		return nil, fmt.Errorf("exporter %s not found (available: %v)", name, ListExporters())
	}
	return exporter, nil
}

func ListExporters() []string {
	names := make([]string, 0, len(exporters))
	for name := range exporters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// atomicWrite writes the archive through fn into a temp file next to
// outputPath, then renames it into place. A failed export never truncates
// or replaces an archive from a prior successful run.
func atomicWrite(outputPath string, fn func(f *os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".olb-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp archive: %v", err)
	}
	tmpPath := tmp.Name()

	if err := fn(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize archive: %v", err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move archive into place: %v", err)
	}

	return nil
}
