package types

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"
)

type StepName string

const (
	StepClean     StepName = "clean"
	StepProvision StepName = "provision"
	StepInstall   StepName = "install"
	StepPrune     StepName = "prune"
	StepArchive   StepName = "archive"
)

type Platform struct {
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	Variant      string `json:"variant,omitempty"`
}

func (p Platform) String() string {
	if p.Variant != "" {
		return fmt.Sprintf("%s/%s/%s", p.OS, p.Architecture, p.Variant)
	}
	return fmt.Sprintf("%s/%s", p.OS, p.Architecture)
}

func ParsePlatform(platform string) Platform {
	parts := strings.Split(platform, "/")
	if len(parts) < 2 {
		return Platform{OS: "linux", Architecture: "amd64"}
	}

	p := Platform{
		OS:           parts[0],
		Architecture: parts[1],
	}

	if len(parts) > 2 {
		p.Variant = parts[2]
	}

	return p
}

func GetHostPlatform() Platform {
	return Platform{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}
}

// GetLayerPlatforms returns the platforms the Lambda service offers for
// function execution. Archives built for any other platform will not load
// once attached to a function.
func GetLayerPlatforms() []Platform {
	return []Platform{
		{OS: "linux", Architecture: "amd64"},
		{OS: "linux", Architecture: "arm64"},
	}
}

// LayerDir is the subdirectory of the staging directory the Python runtime
// expects on its import path. It becomes the root entry of the archive.
const LayerDir = "python"

const (
	DefaultManifestPath  = "requirements.txt"
	DefaultStagingDir    = "layer"
	DefaultOutputPath    = "layer.zip"
	DefaultPythonVersion = "3.12"
)

type BuildConfig struct {
	ManifestPath  string   `json:"manifest_path" yaml:"requirements"`
	StagingDir    string   `json:"staging_dir" yaml:"staging"`
	OutputPath    string   `json:"output_path" yaml:"output"`
	Image         string   `json:"image" yaml:"image"`
	PythonVersion string   `json:"python_version" yaml:"python"`
	Platform      Platform `json:"platform" yaml:"-"`
	Runtime       string   `json:"runtime" yaml:"runtime"`
	Executor      string   `json:"executor" yaml:"executor"`
	Export        string   `json:"export" yaml:"export"`
	Prune         bool     `json:"prune" yaml:"prune"`
	UpgradePip    bool     `json:"upgrade_pip" yaml:"upgrade_pip"`
	VerifyImage   bool     `json:"verify_image" yaml:"verify_image"`
	IndexURL      string   `json:"index_url,omitempty" yaml:"index_url"`
	PipArgs       []string `json:"pip_args,omitempty" yaml:"pip_args"`
	Progress      bool     `json:"progress" yaml:"-"`
}

// EffectiveImage resolves the build image. An explicit image wins;
// otherwise the platform-provided runtime build image for the configured
// Python version is used, so compiled native extensions are built against
// the same environment they will execute in.
func (c *BuildConfig) EffectiveImage() string {
	if c.Image != "" {
		return c.Image
	}
	version := c.PythonVersion
	if version == "" {
		version = DefaultPythonVersion
	}
	return fmt.Sprintf("public.ecr.aws/sam/build-python%s", version)
}

type StepResult struct {
	Step     StepName      `json:"step"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Skipped  bool          `json:"skipped,omitempty"`
	Duration time.Duration `json:"duration"`
	Detail   string        `json:"detail,omitempty"`
}

type BuildResult struct {
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
	FailedStep StepName      `json:"failed_step,omitempty"`
	Steps      []*StepResult `json:"steps"`
	OutputPath string        `json:"output_path,omitempty"`
	OutputSize int64         `json:"output_size,omitempty"`
	Packages   int           `json:"packages"`
	Pruned     int           `json:"pruned,omitempty"`
	Duration   string        `json:"duration"`
}

// InstallSpec describes one package manager invocation. TargetDir is the
// absolute staging python directory the installer writes into;
// ManifestPath is the absolute manifest location on the host.
type InstallSpec struct {
	Image        string            `json:"image"`
	Platform     Platform          `json:"platform"`
	ManifestPath string            `json:"manifest_path"`
	TargetDir    string            `json:"target_dir"`
	UpgradePip   bool              `json:"upgrade_pip"`
	IndexURL     string            `json:"index_url,omitempty"`
	ExtraArgs    []string          `json:"extra_args,omitempty"`
	Environment  map[string]string `json:"environment,omitempty"`
}

// EnvironmentList flattens env into sorted KEY=VALUE form so command
// assembly is deterministic.
func EnvironmentList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := make([]string, 0, len(env))
	for _, k := range keys {
		list = append(list, k+"="+env[k])
	}
	return list
}

type InstallResult struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output,omitempty"`
}
