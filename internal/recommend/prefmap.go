// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// WeightMap is an ordered term→weight map. Terms are normalized to trimmed
// lower case. Iteration follows first-insertion order, which makes every
// derived ordering (Keys, Above, Top) deterministic.
type WeightMap struct {
	keys    []string
	weights map[string]float64
}

// NewWeightMap creates an empty WeightMap.
func NewWeightMap() *WeightMap {
	return &WeightMap{weights: make(map[string]float64)}
}

// NormalizeTerm lower-cases and trims a preference term.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Add accumulates w onto term. Empty terms are ignored.
func (m *WeightMap) Add(term string, w float64) {
	term = NormalizeTerm(term)
	if term == "" {
		return
	}
	if _, ok := m.weights[term]; !ok {
		m.keys = append(m.keys, term)
	}
	m.weights[term] += w
}

// Get returns the weight of term (0 if absent).
func (m *WeightMap) Get(term string) float64 {
	if m == nil {
		return 0
	}
	return m.weights[NormalizeTerm(term)]
}

// Len returns the number of terms.
func (m *WeightMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns terms in insertion order.
func (m *WeightMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Max returns the largest weight (0 for an empty map).
func (m *WeightMap) Max() float64 {
	var maxW float64
	for i, k := range m.Keys() {
		if w := m.weights[k]; i == 0 || w > maxW {
			maxW = w
		}
	}
	return maxW
}

// Total returns the sum of all weights.
func (m *WeightMap) Total() float64 {
	var total float64
	for _, k := range m.Keys() {
		total += m.weights[k]
	}
	return total
}

// Normalized returns a copy with every weight divided by the maximum.
func (m *WeightMap) Normalized() *WeightMap {
	out := NewWeightMap()
	maxW := m.Max()
	for _, k := range m.Keys() {
		w := m.weights[k]
		if maxW > 0 {
			w /= maxW
		}
		out.Add(k, w)
	}
	return out
}

// Above returns terms whose weight is strictly greater than threshold, in insertion order.
func (m *WeightMap) Above(threshold float64) []string {
	var out []string
	for _, k := range m.Keys() {
		if m.weights[k] > threshold {
			out = append(out, k)
		}
	}
	return out
}

// Top returns up to n terms by descending weight; ties keep insertion order.
func (m *WeightMap) Top(n int) []string {
	keys := m.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		return m.weights[keys[i]] > m.weights[keys[j]]
	})
	if n >= 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

type weightEntry struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// MarshalJSON encodes the map as an ordered list of entries.
func (m *WeightMap) MarshalJSON() ([]byte, error) {
	entries := make([]weightEntry, 0, m.Len())
	for _, k := range m.Keys() {
		entries = append(entries, weightEntry{Term: k, Weight: m.weights[k]})
	}
	return json.Marshal(entries)
}

// UnmarshalJSON decodes an ordered list of entries.
func (m *WeightMap) UnmarshalJSON(data []byte) error {
	var entries []weightEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	m.keys = nil
	m.weights = make(map[string]float64, len(entries))
	for _, e := range entries {
		m.Add(e.Term, e.Weight)
	}
	return nil
}

// Preferences holds the weighted signal maps derived from a shelf.
type Preferences struct {
	Authors    *WeightMap
	Genres     *WeightMap
	Categories *WeightMap
	Themes     *WeightMap
}

// NewPreferences creates empty preference maps.
func NewPreferences() Preferences {
	return Preferences{
		Authors:    NewWeightMap(),
		Genres:     NewWeightMap(),
		Categories: NewWeightMap(),
		Themes:     NewWeightMap(),
	}
}

// AddBook folds a book into every map with weight w.
func (p *Preferences) AddBook(b *Book, w float64) {
	for _, a := range b.Authors() {
		p.Authors.Add(a, w)
	}
	p.Genres.Add(b.Genre, w)
	for _, c := range b.Categories {
		p.Categories.Add(c, w)
	}
	for _, t := range b.Themes {
		p.Themes.Add(t, w)
	}
}

// Normalized returns preferences with each map scaled to [0,1] by its own maximum.
func (p *Preferences) Normalized() Preferences {
	return Preferences{
		Authors:    p.Authors.Normalized(),
		Genres:     p.Genres.Normalized(),
		Categories: p.Categories.Normalized(),
		Themes:     p.Themes.Normalized(),
	}
}
