package engine

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bibin-skaria/olb/internal/errors"
)

// Prune removes known-unnecessary artifacts from an installed package
// tree: installer metadata directories and interpreter bytecode caches.
// Purely a size optimization; the archive installs identically without it.
func Prune(dir string) (int, error) {
	var doomed []string

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}

		if entry.IsDir() {
			if prunableDir(entry.Name()) {
				doomed = append(doomed, path)
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasSuffix(entry.Name(), ".pyc") || strings.HasSuffix(entry.Name(), ".pyo") {
			doomed = append(doomed, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.NewFilesystemError("prune",
			fmt.Sprintf("failed to walk %s: %v", dir, err), err)
	}

	for _, path := range doomed {
		if err := os.RemoveAll(path); err != nil {
			return 0, errors.NewFilesystemError("prune",
				fmt.Sprintf("failed to remove %s: %v", path, err), err)
		}
	}

	return len(doomed), nil
}

func prunableDir(name string) bool {
	switch {
	case name == "__pycache__":
		return true
	case strings.HasSuffix(name, ".dist-info"):
		return true
	case strings.HasSuffix(name, ".egg-info"):
		return true
	default:
		return false
	}
}
