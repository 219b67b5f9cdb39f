package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bibin-skaria/olb/engine"
	"github.com/bibin-skaria/olb/exporters"
	"github.com/bibin-skaria/olb/internal/errors"
	"github.com/bibin-skaria/olb/internal/types"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(errors.ExitCode(err))
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "olb",
		Short: "Open Layer Builder - packages Python dependencies into Lambda layer archives",
		Long: `OLB packages Python dependencies into a zip archive deployable as a Lambda
layer. Installation runs inside a container image pinned to the target
runtime's OS and architecture, so compiled native extensions match the
deployment environment bit-for-bit.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage: true,
	}

	cmd.AddCommand(newBuildCommand())
	cmd.AddCommand(newInspectCommand())
	cmd.AddCommand(newCleanCommand())

	return cmd
}

func newBuildCommand() *cobra.Command {
	var (
		requirements string
		output       string
		staging      string
		image        string
		python       string
		platform     string
		runtime      string
		executor     string
		export       string
		prune        bool
		upgradePip   bool
		verifyImage  bool
		indexURL     string
		pipArgs      []string
		progress     bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a dependency layer archive from a requirements manifest",
		Long: `Build a Lambda layer archive from a pip requirements manifest. The staging
directory is deleted and recreated, dependencies are installed into it by a
containerized pip, and its contents are zipped into the output archive.
Every step is fatal on error; a failed run never replaces an archive from a
prior successful run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := &types.BuildConfig{
				ManifestPath:  types.DefaultManifestPath,
				StagingDir:    types.DefaultStagingDir,
				OutputPath:    types.DefaultOutputPath,
				PythonVersion: types.DefaultPythonVersion,
				Executor:      "container",
				Export:        "zip",
				Prune:         true,
				UpgradePip:    true,
			}

			if err := loadProjectConfig(projectConfigPath, config); err != nil {
				return err
			}

			flagPlatform := "linux/amd64"
			flags := cmd.Flags()
			applyString(flags, "requirements", &config.ManifestPath, requirements)
			applyString(flags, "output", &config.OutputPath, output)
			applyString(flags, "staging", &config.StagingDir, staging)
			applyString(flags, "image", &config.Image, image)
			applyString(flags, "python", &config.PythonVersion, python)
			applyString(flags, "runtime", &config.Runtime, runtime)
			applyString(flags, "executor", &config.Executor, executor)
			applyString(flags, "export", &config.Export, export)
			applyString(flags, "index-url", &config.IndexURL, indexURL)
			applyString(flags, "platform", &flagPlatform, platform)
			applyBool(flags, "prune", &config.Prune, prune)
			applyBool(flags, "upgrade-pip", &config.UpgradePip, upgradePip)
			applyBool(flags, "verify-image", &config.VerifyImage, verifyImage)
			if flags.Changed("pip-arg") {
				config.PipArgs = pipArgs
			}
			config.Platform = types.ParsePlatform(flagPlatform)
			config.Progress = progress

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			builder, err := engine.NewBuilder(config)
			if err != nil {
				return fmt.Errorf("failed to create builder: %v", err)
			}

			result, err := builder.Build(ctx)
			if err != nil {
				if buildErr, ok := err.(*errors.BuildError); ok {
					fmt.Fprintln(os.Stderr, buildErr.GetUserFriendlyMessage())
				}
				return err
			}

			fmt.Printf("Layer build completed successfully!\n")
			for _, s := range result.Steps {
				status := "✓"
				if s.Skipped {
					status = "-"
				}
				fmt.Printf("  %s %s", status, s.Step)
				if s.Detail != "" {
					fmt.Printf(" (%s)", s.Detail)
				}
				fmt.Printf("\n")
			}
			fmt.Printf("Output: %s\n", result.OutputPath)
			fmt.Printf("Size: %s\n", formatBytes(result.OutputSize))
			fmt.Printf("Packages: %d\n", result.Packages)
			fmt.Printf("Duration: %s\n", result.Duration)

			return nil
		},
	}

	cmd.Flags().StringVarP(&requirements, "requirements", "r", types.DefaultManifestPath, "Path to the requirements manifest")
	cmd.Flags().StringVarP(&output, "output", "o", types.DefaultOutputPath, "Path of the archive to write")
	cmd.Flags().StringVar(&staging, "staging", types.DefaultStagingDir, "Staging directory (deleted and recreated each run)")
	cmd.Flags().StringVar(&image, "image", "", "Build image (default: platform runtime image for --python)")
	cmd.Flags().StringVar(&python, "python", types.DefaultPythonVersion, "Python runtime version the layer targets")
	cmd.Flags().StringVar(&platform, "platform", "linux/amd64", "Target platform (linux/amd64 or linux/arm64)")
	cmd.Flags().StringVar(&runtime, "runtime", "", "Container runtime (default: autodetect podman, docker)")
	cmd.Flags().StringVar(&executor, "executor", "container", "Executor type (container, local)")
	cmd.Flags().StringVar(&export, "export", "zip", "Archive format (zip, targz)")
	cmd.Flags().BoolVar(&prune, "prune", true, "Remove metadata directories and bytecode caches before archiving")
	cmd.Flags().BoolVar(&upgradePip, "upgrade-pip", true, "Upgrade pip inside the build environment before installing")
	cmd.Flags().BoolVar(&verifyImage, "verify-image", false, "Verify the build image against its registry before pulling")
	cmd.Flags().StringVar(&indexURL, "index-url", "", "Alternate package index URL")
	cmd.Flags().StringArrayVar(&pipArgs, "pip-arg", []string{}, "Extra arguments passed to pip install")
	cmd.Flags().BoolVar(&progress, "progress", true, "Show progress")

	return cmd
}

func newInspectCommand() *cobra.Command {
	var listFiles bool

	cmd := &cobra.Command{
		Use:   "inspect [archive]",
		Short: "List the packages inside a layer archive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := types.DefaultOutputPath
			if len(args) > 0 {
				path = args[0]
			}

			entries, err := exporters.InspectZip(path)
			if err != nil {
				return err
			}

			if listFiles {
				for _, entry := range entries {
					fmt.Printf("%12d  %s\n", entry.UncompressedSize, entry.Name)
				}
				return nil
			}

			summaries := exporters.SummarizePackages(entries, types.LayerDir)
			if len(summaries) == 0 {
				fmt.Printf("Archive %s contains no packages\n", path)
				return nil
			}

			fmt.Printf("Archive: %s\n", path)
			for _, summary := range summaries {
				fmt.Printf("  %-40s %6d files  %s\n", summary.Name, summary.Files, formatBytes(int64(summary.Size)))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&listFiles, "files", false, "List individual files instead of package summaries")

	return cmd
}

func newCleanCommand() *cobra.Command {
	var (
		staging string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the staging directory and the archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, err := engine.NewBuilder(&types.BuildConfig{
				StagingDir: staging,
				OutputPath: output,
			})
			if err != nil {
				return fmt.Errorf("failed to create builder: %v", err)
			}

			if err := builder.Clean(); err != nil {
				return err
			}

			fmt.Printf("Removed %s and %s\n", staging, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&staging, "staging", types.DefaultStagingDir, "Staging directory to remove")
	cmd.Flags().StringVarP(&output, "output", "o", types.DefaultOutputPath, "Archive to remove")

	return cmd
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
