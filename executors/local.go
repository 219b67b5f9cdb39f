package executors

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/bibin-skaria/olb/internal/types"
)

// LocalExecutor runs pip directly on the host. Only correct when the host
// already matches the target platform (for example inside a CI container
// built from the runtime image); the container executor is the default.
type LocalExecutor struct {
	python string
	output io.Writer
}

func NewLocalExecutor() *LocalExecutor {
	python := "python3"
	if _, err := exec.LookPath(python); err != nil {
		python = "python"
	}

	return &LocalExecutor{
		python: python,
		output: os.Stderr,
	}
}

func init() {
	RegisterExecutor("local", NewLocalExecutor())
}

func (e *LocalExecutor) Name() string {
	return "local"
}

func (e *LocalExecutor) SetOutput(w io.Writer) {
	e.output = w
}

// Pull is a no-op: there is no build environment to provision beyond the
// host itself, but the interpreter must exist.
func (e *LocalExecutor) Pull(ctx context.Context, image string, platform types.Platform) error {
	if _, err := exec.LookPath(e.python); err != nil {
		return fmt.Errorf("python interpreter not found on host: %w", err)
	}

	host := types.GetHostPlatform()
	if host.OS != platform.OS || host.Architecture != platform.Architecture {
		return fmt.Errorf("host platform %s does not match target %s; use the container executor",
			host.String(), platform.String())
	}

	return nil
}

func (e *LocalExecutor) Install(ctx context.Context, spec *types.InstallSpec) (*types.InstallResult, error) {
	result := &types.InstallResult{Success: false}

	targetDir, err := filepath.Abs(spec.TargetDir)
	if err != nil {
		result.Error = fmt.Sprintf("failed to resolve target directory: %v", err)
		return result, err
	}

	if spec.UpgradePip {
		if out, err := e.run(ctx, spec, "-m", "pip", "install", "--upgrade", "pip"); err != nil {
			result.Output = out
			result.Error = fmt.Sprintf("pip upgrade failed: %v", err)
			if exitErr, ok := err.(*exec.ExitError); ok {
				result.ExitCode = exitErr.ExitCode()
			}
			return result, fmt.Errorf("pip upgrade failed: %w", err)
		}
	}

	args := []string{"-m", "pip", "install", "-r", spec.ManifestPath, "--target", targetDir}
	if spec.IndexURL != "" {
		args = append(args, "--index-url", spec.IndexURL)
	}
	args = append(args, spec.ExtraArgs...)

	out, err := e.run(ctx, spec, args...)
	if err != nil {
		result.Output = out
		result.Error = fmt.Sprintf("install failed: %v", err)
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, fmt.Errorf("install failed: %w", err)
	}

	result.Success = true
	result.Output = out
	return result, nil
}

func (e *LocalExecutor) run(ctx context.Context, spec *types.InstallSpec, args ...string) (string, error) {
	var buf bytes.Buffer
	out := io.Writer(&buf)
	if e.output != nil {
		out = io.MultiWriter(&buf, e.output)
	}

	cmd := exec.CommandContext(ctx, e.python, args...)
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.Env = append(os.Environ(), types.EnvironmentList(spec.Environment)...)

	err := cmd.Run()
	return buf.String(), err
}
