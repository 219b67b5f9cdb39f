package manifest

import (
	"fmt"
	"regexp"
	"strings"
)

// Requirement grammar constants. This intentionally validates only enough
// to reject lines that cannot be a requirement; full resolution belongs to
// the package manager.
const (
	// Distribution names per the packaging name grammar.
	namePattern = `^([A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?)`
)

var (
	nameRegex = regexp.MustCompile(namePattern)

	// Directives pip accepts inside a requirements file.
	validDirectives = map[string]bool{
		"-r":                true,
		"--requirement":     true,
		"-c":                true,
		"--constraint":      true,
		"-e":                true,
		"--editable":        true,
		"-i":                true,
		"--index-url":       true,
		"--extra-index-url": true,
		"--no-index":        true,
		"-f":                true,
		"--find-links":      true,
		"--no-binary":       true,
		"--only-binary":     true,
		"--prefer-binary":   true,
		"--trusted-host":    true,
		"--pre":             true,
	}

	versionOperators = []string{"==", ">=", "<=", "~=", "!=", "===", ">", "<"}
)

// validateRequirement checks that line is a plausible requirement string
// and returns the distribution name. URL and path requirements
// (name @ url, ./local/dir) are accepted as-is.
func validateRequirement(line string) (string, error) {
	if line == "" {
		return "", fmt.Errorf("empty requirement")
	}

	// Local path requirement: leave resolution to pip.
	if strings.HasPrefix(line, ".") || strings.HasPrefix(line, "/") {
		return line, nil
	}

	match := nameRegex.FindString(line)
	if match == "" {
		return "", fmt.Errorf("invalid requirement %q: does not start with a distribution name", line)
	}

	rest := strings.TrimSpace(strings.TrimPrefix(line, match))

	// name @ url form
	if strings.HasPrefix(rest, "@") {
		return match, nil
	}

	// extras: name[extra1,extra2]
	if strings.HasPrefix(rest, "[") {
		closing := strings.Index(rest, "]")
		if closing < 0 {
			return "", fmt.Errorf("invalid requirement %q: unterminated extras", line)
		}
		rest = strings.TrimSpace(rest[closing+1:])
	}

	// environment marker: everything after ';' is opaque
	if idx := strings.Index(rest, ";"); idx >= 0 {
		rest = strings.TrimSpace(rest[:idx])
	}

	if rest == "" {
		return match, nil
	}

	for _, op := range versionOperators {
		if strings.HasPrefix(rest, op) {
			return match, nil
		}
	}

	// Direct URL requirement: the whole line is the requirement.
	if strings.Contains(line, "://") {
		return line, nil
	}

	return "", fmt.Errorf("invalid requirement %q: unexpected %q after name", line, rest)
}

// validateDirective checks that a line starting with '-' is a directive pip
// understands inside a requirements file.
func validateDirective(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return fmt.Errorf("empty directive")
	}

	flag := fields[0]
	if eq := strings.Index(flag, "="); eq >= 0 {
		flag = flag[:eq]
	}

	if !validDirectives[flag] {
		return fmt.Errorf("unknown directive %q", fields[0])
	}

	return nil
}
