// Copyright EpiMind Project, 2026. All rights reserved.

package patterns

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// rulesFile is the on-disk shape of a caller-supplied rule file.
type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules parses a YAML rule file. Rules default to Shape "decimal",
// Kind "value" and Language "any" when unset, which covers the common
// case of adding a labeled numeric marker.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file %s: %w", path, err)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}

	for i := range f.Rules {
		if f.Rules[i].Shape == "" {
			f.Rules[i].Shape = ShapeDecimal
		}
		if f.Rules[i].Kind == "" {
			f.Rules[i].Kind = "value"
		}
		if f.Rules[i].Language == "" {
			f.Rules[i].Language = "any"
		}
		if f.Rules[i].Confidence == 0 {
			f.Rules[i].Confidence = 0.7
		}
	}
	return f.Rules, nil
}

// MergeFile registers the rules from a YAML file into the registry.
// A rule whose identifier collides with an existing (built-in or
// previously merged) rule is rejected with an error naming it; nothing
// is silently overridden.
func MergeFile(r *Registry, path string) error {
	rules, err := LoadRules(path)
	if err != nil {
		return err
	}
	for _, rule := range rules {
		if err := r.Register(rule); err != nil {
			return fmt.Errorf("merging custom rules from %s: %w", path, err)
		}
	}
	return nil
}
