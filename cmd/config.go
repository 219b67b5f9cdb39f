package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"github.com/bibin-skaria/olb/internal/types"
)

// projectConfigPath is the optional per-project configuration file, read
// from the working directory. Flags explicitly set on the command line win
// over it.
const projectConfigPath = "olb.yaml"

func loadProjectConfig(path string, config *types.BuildConfig) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %v", path, err)
	}

	if err := yaml.UnmarshalStrict(data, config); err != nil {
		return fmt.Errorf("failed to parse %s: %v", path, err)
	}

	return nil
}

// applyString overrides dest with the flag value only when the flag was
// set explicitly, preserving project config values otherwise.
func applyString(flags *pflag.FlagSet, name string, dest *string, value string) {
	if flags.Changed(name) {
		*dest = value
	}
}

func applyBool(flags *pflag.FlagSet, name string, dest *bool, value bool) {
	if flags.Changed(name) {
		*dest = value
	}
}
