package executors

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bibin-skaria/olb/internal/types"
)

// Container mount points. The manifest directory is mounted read-only so
// the install step cannot write outside the staging target.
const (
	containerTaskDir   = "/var/task"
	containerTargetDir = "/opt/python"
)

// ContainerExecutor runs pip inside a container image pinned to the target
// runtime's OS and architecture, so compiled native extensions match the
// deployment target.
type ContainerExecutor struct {
	runtime string
	output  io.Writer
}

func NewContainerExecutor(runtime string) *ContainerExecutor {
	if runtime == "" {
		// Prefer podman for rootless operation
		if _, err := exec.LookPath("podman"); err == nil {
			runtime = "podman"
		} else if _, err := exec.LookPath("docker"); err == nil {
			runtime = "docker"
		} else {
			runtime = "docker" // Default fallback
		}
	}

	return &ContainerExecutor{
		runtime: runtime,
		output:  os.Stderr,
	}
}

func init() {
	RegisterExecutor("container", NewContainerExecutor(""))
}

func (e *ContainerExecutor) Name() string {
	return "container"
}

// SetOutput redirects the runtime's streamed output (image pull progress,
// pip output).
func (e *ContainerExecutor) SetOutput(w io.Writer) {
	e.output = w
}

func (e *ContainerExecutor) Runtime() string {
	return e.runtime
}

func (e *ContainerExecutor) Pull(ctx context.Context, image string, platform types.Platform) error {
	if _, err := exec.LookPath(e.runtime); err != nil {
		return fmt.Errorf("container runtime %s not found: %w", e.runtime, err)
	}

	platformFlag := fmt.Sprintf("--platform=%s", platform.String())

	cmd := exec.CommandContext(ctx, e.runtime, "pull", platformFlag, image)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to pull image %s for %s: %w, output: %s",
			image, platform.String(), err, strings.TrimSpace(string(output)))
	}

	return nil
}

func (e *ContainerExecutor) Install(ctx context.Context, spec *types.InstallSpec) (*types.InstallResult, error) {
	result := &types.InstallResult{Success: false}

	manifestDir, err := filepath.Abs(filepath.Dir(spec.ManifestPath))
	if err != nil {
		result.Error = fmt.Sprintf("failed to resolve manifest directory: %v", err)
		return result, err
	}

	targetDir, err := filepath.Abs(spec.TargetDir)
	if err != nil {
		result.Error = fmt.Sprintf("failed to resolve target directory: %v", err)
		return result, err
	}

	args := []string{
		"run", "--rm",
		fmt.Sprintf("--platform=%s", spec.Platform.String()),
		"-v", fmt.Sprintf("%s:%s:ro", manifestDir, containerTaskDir),
		"-v", fmt.Sprintf("%s:%s", targetDir, containerTargetDir),
		"-w", containerTaskDir,
	}
	for _, kv := range types.EnvironmentList(spec.Environment) {
		args = append(args, "-e", kv)
	}
	args = append(args, spec.Image, "/bin/sh", "-c", installScript(spec))

	var buf bytes.Buffer
	out := io.Writer(&buf)
	if e.output != nil {
		out = io.MultiWriter(&buf, e.output)
	}

	cmd := exec.CommandContext(ctx, e.runtime, args...)
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		result.Output = buf.String()
		result.Error = fmt.Sprintf("install failed in %s: %v", spec.Image, err)
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, fmt.Errorf("install failed in %s: %w", spec.Image, err)
	}

	result.Success = true
	result.Output = buf.String()
	return result, nil
}

// installScript builds the shell command run inside the container. pip is
// upgraded first to avoid resolution bugs in stale versions shipped with
// the image.
func installScript(spec *types.InstallSpec) string {
	manifest := containerTaskDir + "/" + filepath.Base(spec.ManifestPath)

	install := []string{"python", "-m", "pip", "install", "-r", manifest, "--target", containerTargetDir}
	if spec.IndexURL != "" {
		install = append(install, "--index-url", spec.IndexURL)
	}
	install = append(install, spec.ExtraArgs...)

	if spec.UpgradePip {
		return fmt.Sprintf("python -m pip install --upgrade pip && %s", strings.Join(install, " "))
	}
	return strings.Join(install, " ")
}
