// Package manifest reads and validates pip dependency manifests
// (requirements.txt format).
//
// A manifest is an ordered sequence of requirement strings. Order is
// preserved because pip processes the file top to bottom and later lines
// can override earlier pins. Comments and blank lines are skipped; inline
// comments are stripped; pip directives such as -r includes and --index-url
// options are recognized and carried opaquely for the installer to
// interpret.
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/bibin-skaria/olb/internal/errors"
)

type EntryKind string

const (
	EntryKindRequirement EntryKind = "requirement"
	EntryKindDirective   EntryKind = "directive" // -r, -c, --index-url, ...
)

// Entry is a single effective line of the manifest.
type Entry struct {
	Kind EntryKind `json:"kind"`
	Raw  string    `json:"raw"`
	Name string    `json:"name,omitempty"` // distribution name, requirements only
	Line int       `json:"line"`
}

type Manifest struct {
	Path    string  `json:"path"`
	Entries []Entry `json:"entries"`
}

// Load reads and validates the manifest at path. A missing manifest is a
// validation error; an empty manifest is valid.
func Load(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewValidationError("manifest",
			fmt.Sprintf("cannot read manifest %s: %v", path, err), err)
	}
	defer file.Close()

	m := &Manifest{Path: path}

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}

		entry, err := parseLine(line, lineNo)
		if err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.NewFilesystemError("manifest",
			fmt.Sprintf("failed to read manifest %s: %v", path, err), err)
	}

	return m, nil
}

// IsEmpty reports whether the manifest names no requirements at all. An
// empty manifest still produces a valid archive.
func (m *Manifest) IsEmpty() bool {
	return len(m.Requirements()) == 0
}

// Requirements returns the requirement entries in manifest order,
// excluding directives.
func (m *Manifest) Requirements() []Entry {
	var reqs []Entry
	for _, entry := range m.Entries {
		if entry.Kind == EntryKindRequirement {
			reqs = append(reqs, entry)
		}
	}
	return reqs
}

// Names returns the distribution names in manifest order.
func (m *Manifest) Names() []string {
	reqs := m.Requirements()
	names := make([]string, 0, len(reqs))
	for _, req := range reqs {
		names = append(names, req.Name)
	}
	return names
}

func parseLine(line string, lineNo int) (Entry, error) {
	if strings.HasPrefix(line, "-") {
		if err := validateDirective(line); err != nil {
			return Entry{}, errors.NewValidationError("manifest",
				fmt.Sprintf("line %d: %v", lineNo, err), err)
		}
		return Entry{Kind: EntryKindDirective, Raw: line, Line: lineNo}, nil
	}

	name, err := validateRequirement(line)
	if err != nil {
		return Entry{}, errors.NewValidationError("manifest",
			fmt.Sprintf("line %d: %v", lineNo, err), err)
	}

	return Entry{Kind: EntryKindRequirement, Raw: line, Name: name, Line: lineNo}, nil
}

// stripComment removes trailing comments and surrounding whitespace. pip
// treats an unescaped " #" as the start of a comment.
func stripComment(line string) string {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "#") {
		return ""
	}
	if idx := strings.Index(line, " #"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}
