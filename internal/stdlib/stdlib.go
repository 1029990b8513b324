// Package stdlib ships NumFu's standard-library metadata: a manifest
// describing which stdlib tags are pure built-in groups and which are
// additionally backed by a bundle written in NumFu itself (spec.md
// §4.4: "Some stdlib entries are built-in groups ... and some are
// additionally shipped as pre-parsed bundles").
package stdlib

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed manifest.yaml bundles
var files embed.FS

// Entry describes one stdlib tag.
type Entry struct {
	Name     string `yaml:"name"`
	Builtins bool   `yaml:"builtins"`          // true when the tag maps to a registered built-in group
	Bundle   string `yaml:"bundle,omitempty"`  // bundle file under bundles/, empty when none
	Doc      string `yaml:"doc,omitempty"`
}

// Manifest is the parsed manifest.yaml.
type Manifest struct {
	Modules []Entry `yaml:"modules"`
}

// Load parses the embedded manifest.
func Load() (*Manifest, error) {
	data, err := files.ReadFile("manifest.yaml")
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing stdlib manifest: %w", err)
	}
	return &m, nil
}

// Tags returns the set of valid stdlib module names.
func (m *Manifest) Tags() map[string]bool {
	out := make(map[string]bool, len(m.Modules))
	for _, e := range m.Modules {
		out[e.Name] = true
	}
	return out
}

// Bundle returns the NumFu source of a tag's bundle, if it ships one.
func (m *Manifest) Bundle(tag string) (string, bool) {
	for _, e := range m.Modules {
		if e.Name == tag && e.Bundle != "" {
			data, err := files.ReadFile("bundles/" + e.Bundle)
			if err != nil {
				return "", false
			}
			return string(data), true
		}
	}
	return "", false
}
