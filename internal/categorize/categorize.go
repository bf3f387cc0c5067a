// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package categorize assigns a topic label to a free-text query by
// scoring keyword overlap against fixed per-topic tables.
package categorize

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cre-research/pkg/types"
)

// defaultKeywords maps each topical category to its keyword set.
// Matching is case-insensitive substring containment, not
// word-boundary-aware: "rent" matches inside "parent".
var defaultKeywords = map[types.Category][]string{
	types.CategorySustainability: {
		"sustainability", "sustainable", "green", "leed", "energy",
		"carbon", "emission", "esg", "environmental", "breeam",
		"net zero", "renewable", "efficiency", "climate",
		"certification", "certified",
	},
	types.CategoryLeasing: {
		"lease", "leasing", "rent", "tenant", "landlord", "occupancy",
		"listing", "sublease", "vacancy rate", "square foot", "cam",
		"tenant improvement", "concession",
	},
	types.CategoryMarket: {
		"market", "trend", "forecast", "vacancy", "cap rate",
		"investment", "price", "demand", "supply", "absorption",
		"interest rate", "office", "retail", "industrial",
		"transaction", "yield",
	},
}

// Categorizer scores queries against a keyword table. The zero-cost
// constructor Default uses the built-in tables; Load reads overrides
// from a YAML file.
type Categorizer struct {
	keywords map[types.Category][]string
}

// Default returns a Categorizer backed by the built-in keyword tables.
func Default() *Categorizer {
	return &Categorizer{keywords: defaultKeywords}
}

// keywordsFile is the YAML shape of a keyword override file: a mapping
// from category name to keyword list.
type keywordsFile map[string][]string

// Load reads a keyword override file. Categories absent from the file
// keep their built-in table; the general category cannot carry
// keywords and is rejected.
func Load(path string) (*Categorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keywords file: %w", err)
	}

	var kf keywordsFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parsing keywords file: %w", err)
	}

	merged := make(map[types.Category][]string, len(defaultKeywords))
	for cat, words := range defaultKeywords {
		merged[cat] = words
	}
	for name, words := range kf {
		cat := types.Category(name)
		if cat == types.CategoryGeneral {
			return nil, fmt.Errorf("keywords file: %q is not a topical category", name)
		}
		if _, ok := merged[cat]; !ok {
			return nil, fmt.Errorf("keywords file: unknown category %q", name)
		}
		if len(words) > 0 {
			merged[cat] = words
		}
	}

	return &Categorizer{keywords: merged}, nil
}

// Categorize returns the category whose keyword table has the strictly
// highest number of distinct substring hits in the query. A tie among
// the top scores, or zero hits everywhere, resolves to general.
// Pure function: no I/O, deterministic.
func (c *Categorizer) Categorize(query string) types.Category {
	q := strings.ToLower(query)

	best := types.CategoryGeneral
	bestScore := 0
	tied := false

	for _, cat := range []types.Category{
		types.CategorySustainability,
		types.CategoryLeasing,
		types.CategoryMarket,
	} {
		score := 0
		for _, kw := range c.keywords[cat] {
			if strings.Contains(q, kw) {
				score++
			}
		}
		switch {
		case score > bestScore:
			best, bestScore, tied = cat, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}

	if bestScore == 0 || tied {
		return types.CategoryGeneral
	}
	return best
}

// Score returns the raw hit count for one category. Exposed for
// observability output; Categorize is the decision function.
func (c *Categorizer) Score(query string, cat types.Category) int {
	q := strings.ToLower(query)
	score := 0
	for _, kw := range c.keywords[cat] {
		if strings.Contains(q, kw) {
			score++
		}
	}
	return score
}
