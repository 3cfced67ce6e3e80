// Package intent classifies natural-language queries against a fixed intent
// catalog, gated by the column types the schema actually provides.
package intent

import (
	_ "embed"
	"fmt"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

// Intent names form a closed set.
const (
	Aggregation  = "aggregation"
	Comparison   = "comparison"
	Trending     = "trending"
	Ranking      = "ranking"
	Distribution = "distribution"
	Temporal     = "temporal"
	General      = "general"
)

// Column group requirements an intent can declare.
const (
	RequireDate    = "date"
	RequireNumeric = "numeric"
)

//go:embed intents.yaml
var intentsYAML []byte

// Definition is one catalog entry: the patterns that make an intent a
// candidate, the column groups the schema must provide, and the structural
// hints the repair engine and prompt builder consume.
type Definition struct {
	Name            string   `yaml:"name"`
	Patterns        []string `yaml:"patterns"`
	Requires        []string `yaml:"requires"`
	RequiresGroupBy bool     `yaml:"requires_group_by"`
	Hints           []string `yaml:"hints"`

	compiled []*regexp.Regexp
}

// Catalog is the immutable set of intent definitions, decoded once from the
// embedded YAML at process start.
type Catalog struct {
	defs []Definition
}

type catalogFile struct {
	Intents []Definition `yaml:"intents"`
}

var (
	defaultCatalog     *Catalog
	defaultCatalogErr  error
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the embedded intent catalog, decoding it on first use.
func DefaultCatalog() (*Catalog, error) {
	defaultCatalogOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = parseCatalog(intentsYAML)
	})
	return defaultCatalog, defaultCatalogErr
}

func parseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode intent catalog: %w", err)
	}
	if len(file.Intents) == 0 {
		return nil, fmt.Errorf("intent catalog is empty")
	}

	for i := range file.Intents {
		def := &file.Intents[i]
		if def.Name == "" {
			return nil, fmt.Errorf("intent catalog entry %d has no name", i)
		}
		for _, p := range def.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("intent %s has invalid pattern %q: %w", def.Name, p, err)
			}
			def.compiled = append(def.compiled, re)
		}
	}

	return &Catalog{defs: file.Intents}, nil
}

// Definitions returns the catalog entries in declaration order.
func (c *Catalog) Definitions() []Definition {
	return c.defs
}
