package types

import (
	"reflect"
	"testing"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		input string
		want  Platform
	}{
		{"linux/amd64", Platform{OS: "linux", Architecture: "amd64"}},
		{"linux/arm64", Platform{OS: "linux", Architecture: "arm64"}},
		{"linux/arm/v7", Platform{OS: "linux", Architecture: "arm", Variant: "v7"}},
		{"bogus", Platform{OS: "linux", Architecture: "amd64"}},
	}

	for _, tt := range tests {
		got := ParsePlatform(tt.input)
		if got != tt.want {
			t.Errorf("ParsePlatform(%q): expected %+v, got %+v", tt.input, tt.want, got)
		}
	}
}

func TestPlatformString(t *testing.T) {
	p := Platform{OS: "linux", Architecture: "arm", Variant: "v7"}
	if p.String() != "linux/arm/v7" {
		t.Fatalf("Expected linux/arm/v7, got %s", p.String())
	}

	p = Platform{OS: "linux", Architecture: "amd64"}
	if p.String() != "linux/amd64" {
		t.Fatalf("Expected linux/amd64, got %s", p.String())
	}
}

func TestEffectiveImage(t *testing.T) {
	config := &BuildConfig{}
	if got := config.EffectiveImage(); got != "public.ecr.aws/sam/build-python3.12" {
		t.Fatalf("Expected default runtime build image, got %s", got)
	}

	config.PythonVersion = "3.11"
	if got := config.EffectiveImage(); got != "public.ecr.aws/sam/build-python3.11" {
		t.Fatalf("Expected versioned runtime build image, got %s", got)
	}

	config.Image = "example.com/custom:latest"
	if got := config.EffectiveImage(); got != "example.com/custom:latest" {
		t.Fatalf("Expected explicit image to win, got %s", got)
	}
}

func TestEnvironmentList(t *testing.T) {
	env := map[string]string{
		"PIP_INDEX_URL": "https://pypi.example.com/simple",
		"A":             "1",
		"Z":             "26",
	}

	want := []string{"A=1", "PIP_INDEX_URL=https://pypi.example.com/simple", "Z=26"}
	if got := EnvironmentList(env); !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}

	if got := EnvironmentList(nil); len(got) != 0 {
		t.Fatalf("Expected empty list for nil env, got %v", got)
	}
}

func TestGetLayerPlatforms(t *testing.T) {
	platforms := GetLayerPlatforms()
	if len(platforms) != 2 {
		t.Fatalf("Expected 2 layer platforms, got %d", len(platforms))
	}
	for _, p := range platforms {
		if p.OS != "linux" {
			t.Fatalf("Layer platforms must be linux, got %s", p.String())
		}
	}
}
