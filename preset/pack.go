package preset

import (
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Expected manifest identifiers for preset packs.
const (
	PackAPIVersion = "thumbgen.trinitydev.io/v1"
	PackKind       = "PresetPack"
)

// PackConfig represents a YAML preset pack file in K8s-style manifest format.
type PackConfig struct {
	APIVersion string            `yaml:"apiVersion"`
	Kind       string            `yaml:"kind"`
	Metadata   metav1.ObjectMeta `yaml:"metadata,omitempty"`
	Spec       Pack              `yaml:"spec"`
}

// Pack is a set of presets distributed together.
type Pack struct {
	// Version is the pack's semantic version. Optional; validated when set.
	Version string `yaml:"version,omitempty"`

	Description string   `yaml:"description,omitempty"`
	Presets     []Preset `yaml:"presets"`
}

// validatePackVersion requires MAJOR.MINOR.PATCH, with or without a leading
// 'v'. StrictNewVersion rejects partial versions like "1.0".
func validatePackVersion(version string) error {
	if _, err := semver.StrictNewVersion(strings.TrimPrefix(version, "v")); err != nil {
		return fmt.Errorf("invalid pack version %q: %w", version, err)
	}
	return nil
}

// ParsePack parses a PresetPack manifest. Unknown kind or apiVersion is an
// error; so is a preset without an id or with non-positive dimensions.
func ParsePack(data []byte) (*Pack, error) {
	var cfg PackConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse preset pack: %w", err)
	}
	if cfg.Kind != PackKind {
		return nil, fmt.Errorf("unexpected manifest kind %q (want %q)", cfg.Kind, PackKind)
	}
	if cfg.APIVersion != PackAPIVersion {
		return nil, fmt.Errorf("unsupported apiVersion %q (want %q)", cfg.APIVersion, PackAPIVersion)
	}
	if cfg.Spec.Version != "" {
		if err := validatePackVersion(cfg.Spec.Version); err != nil {
			return nil, err
		}
	}

	for i, p := range cfg.Spec.Presets {
		if p.ID == "" {
			return nil, fmt.Errorf("preset %d: id is required", i)
		}
		if p.Width <= 0 || p.Height <= 0 {
			return nil, fmt.Errorf("preset %q: dimensions must be positive", p.ID)
		}
	}
	return &cfg.Spec, nil
}

// LoadPack reads and parses a PresetPack manifest from disk.
func LoadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset pack %s: %w", path, err)
	}
	return ParsePack(data)
}
