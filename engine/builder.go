package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bibin-skaria/olb/executors"
	"github.com/bibin-skaria/olb/exporters"
	"github.com/bibin-skaria/olb/internal/errors"
	"github.com/bibin-skaria/olb/internal/types"
	"github.com/bibin-skaria/olb/manifest"
	"github.com/bibin-skaria/olb/registry"
)

// Builder orchestrates the layer build as an ordered sequence of fallible
// steps. Every step is a hard precondition for the next: the first failure
// aborts the build with no retry, no rollback, and no partial archive.
type Builder struct {
	config      *types.BuildConfig
	executor    executors.Executor
	exporter    exporters.Exporter
	registry    *registry.Client
	logger      *StructuredLogger
	progressOut io.Writer

	manifest *manifest.Manifest
	pruned   int
}

func NewBuilder(config *types.BuildConfig) (*Builder, error) {
	if config.ManifestPath == "" {
		config.ManifestPath = types.DefaultManifestPath
	}
	if config.StagingDir == "" {
		config.StagingDir = types.DefaultStagingDir
	}
	if config.OutputPath == "" {
		config.OutputPath = types.DefaultOutputPath
	}
	if config.Executor == "" {
		config.Executor = "container"
	}
	if config.Export == "" {
		config.Export = "zip"
	}
	if config.Platform.OS == "" {
		config.Platform = types.Platform{OS: "linux", Architecture: "amd64"}
	}

	executor, err := executors.GetExecutor(config.Executor)
	if err != nil {
		return nil, fmt.Errorf("failed to get executor: %v", err)
	}
	if config.Runtime != "" && config.Executor == "container" {
		executor = executors.NewContainerExecutor(config.Runtime)
	}

	exporter, err := exporters.GetExporter(config.Export)
	if err != nil {
		return nil, fmt.Errorf("failed to get exporter: %v", err)
	}

	buildID := fmt.Sprintf("olb-build-%d", time.Now().Unix())

	return &Builder{
		config:      config,
		executor:    executor,
		exporter:    exporter,
		registry:    registry.NewClient(),
		logger:      NewStructuredLogger(buildID),
		progressOut: os.Stdout,
	}, nil
}

func (b *Builder) SetProgressOutput(w io.Writer) {
	b.progressOut = w
}

// SetExecutor replaces the configured executor. Used by tests to run the
// pipeline without a container runtime.
func (b *Builder) SetExecutor(executor executors.Executor) {
	b.executor = executor
}

// Build runs the pipeline. The returned error is the failing step's typed
// error; the result carries per-step outcomes either way.
func (b *Builder) Build(ctx context.Context) (*types.BuildResult, error) {
	start := time.Now()
	b.pruned = 0

	result := &types.BuildResult{Success: false}

	m, err := manifest.Load(b.config.ManifestPath)
	if err != nil {
		result.Error = err.Error()
		result.Duration = time.Since(start).String()
		return result, err
	}
	b.manifest = m
	result.Packages = len(m.Requirements())

	b.logger.LogBuildStart(ctx, b.config.EffectiveImage(), b.config.Platform.String(),
		b.config.ManifestPath, result.Packages)

	steps := b.steps()
	for i, s := range steps {
		if s.skip != nil && s.skip() {
			result.Steps = append(result.Steps, &types.StepResult{
				Step:    s.name,
				Success: true,
				Skipped: true,
			})
			continue
		}

		b.progressf("[%d/%d] %s...\n", i+1, len(steps), s.name)

		stepStart := time.Now()
		stepErr := s.run(ctx)
		stepResult := &types.StepResult{
			Step:     s.name,
			Success:  stepErr == nil,
			Duration: time.Since(stepStart),
		}
		if s.detail != nil {
			stepResult.Detail = s.detail()
		}
		if stepErr != nil {
			stepResult.Error = stepErr.Error()
		}
		result.Steps = append(result.Steps, stepResult)

		if stepErr != nil {
			buildErr := errors.WrapError(stepErr, string(s.name))
			b.logger.LogStepFailed(ctx, stepResult, buildErr)

			result.Error = buildErr.Error()
			result.FailedStep = s.name
			result.Duration = time.Since(start).String()
			b.logger.LogBuildComplete(ctx, result)
			return result, buildErr
		}

		b.logger.LogStepComplete(ctx, stepResult)
	}

	result.Success = true
	result.Pruned = b.pruned
	result.OutputPath = b.config.OutputPath
	if info, err := os.Stat(b.config.OutputPath); err == nil {
		result.OutputSize = info.Size()
	}
	result.Duration = time.Since(start).String()

	b.logger.LogBuildComplete(ctx, result)
	return result, nil
}

// Clean removes the staging directory and the archive. Exposed for the
// clean subcommand.
func (b *Builder) Clean() error {
	if err := os.RemoveAll(b.config.StagingDir); err != nil {
		return errors.NewFilesystemError("clean",
			fmt.Sprintf("failed to remove staging directory %s: %v", b.config.StagingDir, err), err)
	}
	if err := os.Remove(b.config.OutputPath); err != nil && !os.IsNotExist(err) {
		return errors.NewFilesystemError("clean",
			fmt.Sprintf("failed to remove archive %s: %v", b.config.OutputPath, err), err)
	}
	return nil
}

func (b *Builder) stagingLayerDir() string {
	return filepath.Join(b.config.StagingDir, types.LayerDir)
}

func (b *Builder) progressf(format string, args ...interface{}) {
	if b.config.Progress && b.progressOut != nil {
		fmt.Fprintf(b.progressOut, format, args...)
	}
}
