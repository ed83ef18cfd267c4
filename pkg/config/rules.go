package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidationRules is the on-disk form of the validator configuration.
type ValidationRules struct {
	IgnoredResources   []string `yaml:"ignoredResources"`
	RequiredActivities []string `yaml:"requiredActivities"`
	Clustering         string   `yaml:"clustering"`
}

// LoadValidationRules reads a YAML rules file.
func LoadValidationRules(path string) (*ValidationRules, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read validation rules %s: %w", path, err)
	}
	return ParseValidationRules(raw)
}

// ParseValidationRules decodes YAML rules content.
func ParseValidationRules(raw []byte) (*ValidationRules, error) {
	var rules ValidationRules
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("decode validation rules: %w", err)
	}
	rules.IgnoredResources = trimAll(rules.IgnoredResources)
	rules.RequiredActivities = trimAll(rules.RequiredActivities)
	rules.Clustering = strings.TrimSpace(rules.Clustering)
	return &rules, nil
}

// Apply overrides env-derived values with any fields set in the file.
func (r *ValidationRules) Apply(cfg *ValidationConfig) {
	if r == nil || cfg == nil {
		return
	}
	if len(r.IgnoredResources) > 0 {
		cfg.IgnoredResources = r.IgnoredResources
	}
	if len(r.RequiredActivities) > 0 {
		cfg.RequiredActivities = r.RequiredActivities
	}
	if r.Clustering != "" {
		cfg.Clustering = r.Clustering
	}
}

func trimAll(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
