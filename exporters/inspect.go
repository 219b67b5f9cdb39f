package exporters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ArchiveEntry is one file inside a layer archive.
type ArchiveEntry struct {
	Name             string `json:"name"`
	UncompressedSize uint64 `json:"uncompressed_size"`
	CompressedSize   uint64 `json:"compressed_size"`
}

// PackageSummary aggregates archive contents per top-level package
// directory under the runtime layout prefix.
type PackageSummary struct {
	Name  string `json:"name"`
	Files int    `json:"files"`
	Size  uint64 `json:"size"`
}

// InspectZip reads a layer archive back and returns its entries in archive
// order.
func InspectZip(path string) ([]ArchiveEntry, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %v", path, err)
	}
	defer reader.Close()

	entries := make([]ArchiveEntry, 0, len(reader.File))
	for _, file := range reader.File {
		entries = append(entries, ArchiveEntry{
			Name:             file.Name,
			UncompressedSize: file.UncompressedSize64,
			CompressedSize:   file.CompressedSize64,
		})
	}

	return entries, nil
}

// SummarizePackages groups entries under layoutPrefix (for example
// "python/") by their top-level directory.
func SummarizePackages(entries []ArchiveEntry, layoutPrefix string) []PackageSummary {
	if layoutPrefix != "" && !strings.HasSuffix(layoutPrefix, "/") {
		layoutPrefix += "/"
	}

	byName := make(map[string]*PackageSummary)
	for _, entry := range entries {
		name := entry.Name
		if layoutPrefix != "" {
			if !strings.HasPrefix(name, layoutPrefix) {
				continue
			}
			name = strings.TrimPrefix(name, layoutPrefix)
		}
		if name == "" {
			continue
		}

		top := name
		if idx := strings.Index(name, "/"); idx >= 0 {
			top = name[:idx]
		}
		if top == "" {
			continue
		}

		summary, exists := byName[top]
		if !exists {
			summary = &PackageSummary{Name: top}
			byName[top] = summary
		}
		if !strings.HasSuffix(entry.Name, "/") {
			summary.Files++
			summary.Size += entry.UncompressedSize
		}
	}

	summaries := make([]PackageSummary, 0, len(byName))
	for _, summary := range byName {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})

	return summaries
}
