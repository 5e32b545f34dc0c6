// Package modelspec serves the static forecast model specifications shown
// on the dashboard.
package modelspec

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type Spec struct {
	ID              string   `json:"id" yaml:"-"`
	Accuracy        int      `json:"accuracy" yaml:"accuracy"`
	DataPoints      string   `json:"data_points" yaml:"data_points"`
	UpdateFrequency string   `json:"update_frequency" yaml:"update_frequency"`
	Features        []string `json:"features" yaml:"features"`
	TrainingSources []string `json:"training_sources" yaml:"-"`
}

type Catalog struct {
	Default         string          `yaml:"default"`
	TrainingSources []string        `yaml:"training_sources"`
	Models          map[string]Spec `yaml:"models"`
}

// Load parses a catalog document. The default model must be present.
func Load(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse model catalog: %w", err)
	}
	if _, ok := c.Models[c.Default]; !ok {
		return nil, fmt.Errorf("model catalog: default model %q not defined", c.Default)
	}

	for id, spec := range c.Models {
		spec.ID = id
		spec.TrainingSources = c.TrainingSources
		c.Models[id] = spec
	}
	return &c, nil
}

// Builtin returns the catalog shipped with the binary.
func Builtin() *Catalog {
	c, err := Load(catalogYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the spec for id, or the default spec for unknown ids.
func (c *Catalog) Get(id string) Spec {
	if spec, ok := c.Models[id]; ok {
		return spec
	}
	return c.Models[c.Default]
}

// IDs lists model ids alphabetically.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.Models))
	for id := range c.Models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
