package prompt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Expected manifest identifiers for brand guideline files.
const (
	GuidelinesAPIVersion = "thumbgen.trinitydev.io/v1"
	GuidelinesKind       = "BrandGuidelines"
)

// GuidelinesConfig represents a YAML brand guidelines file in K8s-style
// manifest format.
type GuidelinesConfig struct {
	APIVersion string            `yaml:"apiVersion"`
	Kind       string            `yaml:"kind"`
	Metadata   metav1.ObjectMeta `yaml:"metadata,omitempty"`
	Spec       Guidelines        `yaml:"spec"`
}

// ParseGuidelines parses a BrandGuidelines manifest.
func ParseGuidelines(data []byte) (Guidelines, error) {
	var cfg GuidelinesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Guidelines{}, fmt.Errorf("failed to parse brand guidelines: %w", err)
	}
	if cfg.Kind != GuidelinesKind {
		return Guidelines{}, fmt.Errorf("unexpected manifest kind %q (want %q)", cfg.Kind, GuidelinesKind)
	}
	if cfg.APIVersion != GuidelinesAPIVersion {
		return Guidelines{}, fmt.Errorf("unsupported apiVersion %q (want %q)", cfg.APIVersion, GuidelinesAPIVersion)
	}
	return cfg.Spec, nil
}

// LoadGuidelines reads and parses a BrandGuidelines manifest from disk.
func LoadGuidelines(path string) (Guidelines, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Guidelines{}, fmt.Errorf("failed to read brand guidelines %s: %w", path, err)
	}
	return ParseGuidelines(data)
}
