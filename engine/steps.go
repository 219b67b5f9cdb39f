package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/bibin-skaria/olb/internal/errors"
	"github.com/bibin-skaria/olb/internal/types"
)

// step is one fallible stage of the pipeline. skip, when set, marks the
// step as intentionally omitted rather than failed; detail supplies the
// human-readable outcome recorded on the step result.
type step struct {
	name   types.StepName
	run    func(ctx context.Context) error
	skip   func() bool
	detail func() string
}

func (b *Builder) steps() []step {
	return []step{
		{
			name: types.StepClean,
			run: func(ctx context.Context) error {
				return b.clean()
			},
			detail: func() string { return b.config.StagingDir },
		},
		{
			name: types.StepProvision,
			run: func(ctx context.Context) error {
				return b.provision(ctx)
			},
			detail: func() string { return b.config.EffectiveImage() },
		},
		{
			name: types.StepInstall,
			run: func(ctx context.Context) error {
				return b.install(ctx)
			},
			detail: func() string {
				return fmt.Sprintf("%d requirements", len(b.manifest.Requirements()))
			},
		},
		{
			name: types.StepPrune,
			skip: func() bool { return !b.config.Prune },
			run: func(ctx context.Context) error {
				n, err := Prune(b.stagingLayerDir())
				b.pruned = n
				return err
			},
			detail: func() string { return fmt.Sprintf("%d entries removed", b.pruned) },
		},
		{
			name: types.StepArchive,
			run: func(ctx context.Context) error {
				return b.archive()
			},
			detail: func() string { return b.config.OutputPath },
		},
	}
}

// clean deletes any pre-existing staging tree and recreates it empty, so
// the staging contents at archive time are exactly what this run's install
// wrote. Nothing survives from a prior run.
func (b *Builder) clean() error {
	if err := os.RemoveAll(b.config.StagingDir); err != nil {
		return errors.NewFilesystemError("clean",
			fmt.Sprintf("failed to remove staging directory %s: %v", b.config.StagingDir, err), err)
	}

	if err := os.MkdirAll(b.stagingLayerDir(), 0755); err != nil {
		return errors.NewFilesystemError("clean",
			fmt.Sprintf("failed to create staging directory %s: %v", b.stagingLayerDir(), err), err)
	}

	return nil
}

// provision validates the image reference, optionally verifies it against
// its registry, and pulls it through the container runtime.
func (b *Builder) provision(ctx context.Context) error {
	image := b.config.EffectiveImage()

	if _, err := b.registry.ParseReference(image); err != nil {
		return errors.NewValidationError("provision", err.Error(), err)
	}

	if b.config.VerifyImage {
		if err := b.registry.VerifyImage(ctx, image, b.config.Platform); err != nil {
			return errors.NewNetworkError("provision", err.Error(), err)
		}
	}

	if err := b.executor.Pull(ctx, image, b.config.Platform); err != nil {
		return errors.NewEnvironmentError("provision", err.Error(), err)
	}

	return nil
}

// install runs the package manager against the manifest, writing into the
// staging python directory. A failing install propagates the subprocess's
// exit code through the error chain.
func (b *Builder) install(ctx context.Context) error {
	spec := &types.InstallSpec{
		Image:        b.config.EffectiveImage(),
		Platform:     b.config.Platform,
		ManifestPath: b.config.ManifestPath,
		TargetDir:    b.stagingLayerDir(),
		UpgradePip:   b.config.UpgradePip,
		IndexURL:     b.config.IndexURL,
		ExtraArgs:    b.config.PipArgs,
	}

	installResult, err := b.executor.Install(ctx, spec)
	if err != nil {
		msg := err.Error()
		if installResult != nil && installResult.Error != "" {
			msg = installResult.Error
		}
		return errors.NewResolutionError("install", msg, err)
	}
	if installResult == nil || !installResult.Success {
		msg := "install failed"
		if installResult != nil && installResult.Error != "" {
			msg = installResult.Error
		}
		return errors.NewResolutionError("install", msg, nil)
	}

	return nil
}

// archive packages the staging directory into the output file. The write
// is atomic: a failure here or upstream never replaces an archive from a
// prior successful run with a truncated one.
func (b *Builder) archive() error {
	size, err := b.exporter.Export(b.config.StagingDir, b.config.OutputPath)
	if err != nil {
		return errors.NewFilesystemError("archive", err.Error(), err)
	}
	if size == 0 {
		return errors.NewFilesystemError("archive",
			fmt.Sprintf("archive %s is empty", b.config.OutputPath), nil)
	}

	return nil
}
