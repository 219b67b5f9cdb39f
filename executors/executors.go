package executors

import (
	"context"
	"fmt"
	"sort"

	"github.com/bibin-skaria/olb/internal/types"
)

// Executor provisions a build environment and runs the package manager
// against a manifest, writing into the staging target directory.
type Executor interface {
	Name() string
	Pull(ctx context.Context, image string, platform types.Platform) error
	Install(ctx context.Context, spec *types.InstallSpec) (*types.InstallResult, error)
}

var executors = make(map[string]Executor)

func RegisterExecutor(name string, executor Executor) {
	executors[name] = executor
}

func GetExecutor(name string) (Executor, error) {
	executor, exists := executors[name]
	if !exists {
		return nil, fmt.Errorf("executor %s not found (available: %v)", name, ListExecutors())
	}
	return executor, nil
}

func ListExecutors() []string {
	names := make([]string, 0, len(executors))
	for name := range executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
