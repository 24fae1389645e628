// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

// Provider names. The engine consumes provider results in this order.
const (
	ProviderHistory    = "history"
	ProviderCategory   = "category"
	ProviderSimilarity = "similarity"
	ProviderTemporal   = "temporal"
	ProviderLanguage   = "language"
)

// ProviderOrder is the fixed consumption order of local providers.
var ProviderOrder = []string{ProviderHistory, ProviderCategory, ProviderSimilarity, ProviderTemporal, ProviderLanguage}

// Weights defines the relative contribution of each local provider.
type Weights struct {
	History    float64 `json:"history"`
	Category   float64 `json:"category"`
	Similarity float64 `json:"similarity"`
	Temporal   float64 `json:"temporal"`
	Language   float64 `json:"language"`
}

// Sum returns the sum of all components.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) Sum() float64 {
	return w.History + w.Category + w.Similarity + w.Temporal + w.Language
}

// Normalize returns a copy with weights scaled to sum to 1.0.
// An all-zero vector becomes uniform.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) Normalize() Weights {
	sum := w.Sum()
	if sum <= 0 {
		const equal = 1.0 / 5.0
		return Weights{History: equal, Category: equal, Similarity: equal, Temporal: equal, Language: equal}
	}
	return Weights{
		History:    w.History / sum,
		Category:   w.Category / sum,
		Similarity: w.Similarity / sum,
		Temporal:   w.Temporal / sum,
		Language:   w.Language / sum,
	}
}

// For returns the weight of a provider by name (0 for unknown names).
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) For(name string) float64 {
	switch name {
	case ProviderHistory:
		return w.History
	case ProviderCategory:
		return w.Category
	case ProviderSimilarity:
		return w.Similarity
	case ProviderTemporal:
		return w.Temporal
	case ProviderLanguage:
		return w.Language
	}
	return 0
}

// ToMap converts weights to a name→weight map.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) ToMap() map[string]float64 {
	m := make(map[string]float64, len(ProviderOrder))
	for _, name := range ProviderOrder {
		m[name] = w.For(name)
	}
	return m
}

// AdaptiveWeights adjusts the base vector for the user's behavior and
// language profile, then renormalizes it to sum to 1.0.
//
//nolint:gocritic // hugeParam: profiles passed by value for immutability
func AdaptiveWeights(cfg *Config, behavior BehaviorProfile, lang LanguageProfile) Weights {
	w := cfg.Weights.Normalize()
	adj := cfg.Adjustments

	if behavior.Eclectic {
		w.Category *= adj.EclecticCategoryBoost
	}
	if behavior.Loyal {
		w.History *= adj.LoyalHistoryBoost
		w.Similarity *= adj.LoyalSimilarityBoost
	}
	if behavior.Seasonal {
		w.Temporal *= adj.SeasonalTemporalBoost
	}
	if lang.PortugueseRatio > cfg.Language.PortugueseThreshold ||
		lang.NationalAffinity > cfg.Language.NationalAffinityThreshold {
		w.Language *= adj.LanguageBoost
	}

	return w.Normalize()
}
