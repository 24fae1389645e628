// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// LanguagePortuguese is the normalized code every Portuguese variant collapses to.
const LanguagePortuguese = "pt"

// languageVariants maps a normalized code to the textual variants found in
// catalog data. Matching is case-insensitive, so only distinct spellings are listed.
var languageVariants = map[string][]string{
	"pt": {"pt", "pt-br", "pt_br", "pt-pt", "pt_pt", "por", "portuguese", "português", "portugues"},
	"en": {"en", "en-us", "en_us", "en-gb", "en_gb", "eng", "english", "inglês", "ingles"},
	"es": {"es", "es-es", "es_es", "es-mx", "spa", "spanish", "español", "espanhol"},
	"fr": {"fr", "fr-fr", "fr_fr", "fre", "fra", "french", "français", "francês"},
}

var variantToLanguage = func() map[string]string {
	m := make(map[string]string)
	for code, variants := range languageVariants {
		for _, v := range variants {
			m[v] = code
		}
	}
	return m
}()

// NormalizeLanguage maps a language code or name to its normalized code.
// Unknown codes are lower-cased with any region suffix removed.
func NormalizeLanguage(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	if c == "" {
		return ""
	}
	if norm, ok := variantToLanguage[c]; ok {
		return norm
	}
	if i := strings.IndexAny(c, "-_"); i > 0 {
		c = c[:i]
		if norm, ok := variantToLanguage[c]; ok {
			return norm
		}
	}
	return c
}

// LanguageVariants returns the textual variants to match for a normalized code.
func LanguageVariants(code string) []string {
	norm := NormalizeLanguage(code)
	if variants, ok := languageVariants[norm]; ok {
		out := make([]string, len(variants))
		copy(out, variants)
		return out
	}
	if norm == "" {
		return nil
	}
	return []string{norm}
}

// LanguageMatches reports whether have and want normalize to the same
// language, so "en-CA" matches "en" and "Português" matches "pt".
func LanguageMatches(have, want string) bool {
	w := NormalizeLanguage(want)
	return w != "" && NormalizeLanguage(have) == w
}

// NationalAuthors is the curated list of Brazilian and Portuguese authors
// used for national-author affinity and the Portuguese fallback.
var NationalAuthors = []string{
	"Machado de Assis",
	"Clarice Lispector",
	"Jorge Amado",
	"Graciliano Ramos",
	"Carlos Drummond de Andrade",
	"Cecília Meireles",
	"Guimarães Rosa",
	"José de Alencar",
	"Lima Barreto",
	"Rachel de Queiroz",
	"Érico Veríssimo",
	"Monteiro Lobato",
	"Paulo Coelho",
	"Lygia Fagundes Telles",
	"Rubem Fonseca",
	"Ariano Suassuna",
	"Aluísio Azevedo",
	"Manuel Bandeira",
	"Conceição Evaristo",
	"José Saramago",
	"Fernando Pessoa",
	"Eça de Queirós",
}

// nationalSurnames are distinctive enough to identify an author alone.
var nationalSurnames = map[string]struct{}{
	"assis": {}, "lispector": {}, "amado": {}, "drummond": {}, "meireles": {},
	"alencar": {}, "queiroz": {}, "veríssimo": {}, "verissimo": {}, "lobato": {},
	"suassuna": {}, "azevedo": {}, "bandeira": {}, "evaristo": {}, "saramago": {},
	"pessoa": {}, "queirós": {},
}

var nationalFullNames = func() map[string]struct{} {
	m := make(map[string]struct{}, len(NationalAuthors))
	for _, a := range NationalAuthors {
		m[strings.ToLower(a)] = struct{}{}
	}
	return m
}()

// IsNationalAuthor reports whether any name in the author field is a known
// national author, by full name or distinctive surname.
func IsNationalAuthor(author string) bool {
	for _, name := range SplitNames(author) {
		lower := strings.ToLower(name)
		if _, ok := nationalFullNames[lower]; ok {
			return true
		}
		parts := strings.Fields(lower)
		if len(parts) == 0 {
			continue
		}
		if _, ok := nationalSurnames[parts[len(parts)-1]]; ok {
			return true
		}
	}
	return false
}

// languageShelfWeights weight shelf entries for the language profile.
// Abandoned entries are negative and feed the abandoned-language map.
var languageShelfWeights = map[ShelfType]float64{
	ShelfFavorite:   1.5,
	ShelfRead:       2.0,
	ShelfReading:    2.5,
	ShelfWantToRead: 1.0,
	ShelfAbandoned:  -1.0,
}

// LanguageProfile is the per-user language preference derived from the shelf.
type LanguageProfile struct {
	Weights          *WeightMap `json:"weights"`
	Abandoned        *WeightMap `json:"abandoned"`
	TotalWeight      float64    `json:"total_weight"`
	PortugueseRatio  float64    `json:"portuguese_ratio"`
	NationalAffinity float64    `json:"national_affinity"`
}

// BuildLanguageProfile accumulates language weights from shelf history.
func BuildLanguageProfile(shelf []ShelvedBook) LanguageProfile {
	p := LanguageProfile{
		Weights:   NewWeightMap(),
		Abandoned: NewWeightMap(),
	}
	for i := range shelf {
		b := &shelf[i].Book
		w := languageShelfWeights[shelf[i].Entry.Shelf]
		lang := NormalizeLanguage(b.Language)

		if w < 0 {
			p.Abandoned.Add(lang, -w)
			continue
		}
		p.Weights.Add(lang, w)
		p.TotalWeight += w
		if IsNationalAuthor(b.Author) {
			p.NationalAffinity += w
		}
	}
	if p.TotalWeight > 0 {
		p.PortugueseRatio = p.Weights.Get(LanguagePortuguese) / p.TotalWeight
	}
	return p
}

// Empty reports whether the profile carries no language signal.
//
//nolint:gocritic // hugeParam: profile passed by value for immutability
func (p LanguageProfile) Empty() bool {
	return p.Weights.Len() == 0 && p.Abandoned.Len() == 0
}

// PriorityLanguages returns "pt" first when the Portuguese ratio exceeds
// the threshold, then the top languages by weight, deduplicated.
//
//nolint:gocritic // hugeParam: profile passed by value for immutability
func (p LanguageProfile) PriorityLanguages(cfg LanguageConfig) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(code string) {
		if _, ok := seen[code]; ok || code == "" {
			return
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	if p.PortugueseRatio > cfg.PortugueseThreshold {
		add(LanguagePortuguese)
	}
	for _, code := range p.Weights.Top(cfg.TopLanguages) {
		add(code)
	}
	return out
}

// PreferredLanguages returns the languages local candidates are drawn from
// first: Portuguese when its ratio exceeds the threshold, otherwise none.
//
//nolint:gocritic // hugeParam: profile passed by value for immutability
func (p LanguageProfile) PreferredLanguages(cfg LanguageConfig) []string {
	if p.PortugueseRatio > cfg.PortugueseThreshold {
		return []string{LanguagePortuguese}
	}
	return nil
}

// ExcludedLanguages returns abandoned languages whose weight exceeds the threshold.
//
//nolint:gocritic // hugeParam: profile passed by value for immutability
func (p LanguageProfile) ExcludedLanguages(cfg LanguageConfig) []string {
	return p.Abandoned.Above(cfg.AbandonThreshold)
}

// Fingerprint is a short stable digest of the profile used in cache keys.
//
//nolint:gocritic // hugeParam: profile passed by value for immutability
func (p LanguageProfile) Fingerprint() string {
	var sb strings.Builder
	for _, code := range p.Weights.Keys() {
		sb.WriteString(code)
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatFloat(p.Weights.Get(code), 'f', 2, 64))
		sb.WriteByte(';')
	}
	sb.WriteByte('|')
	for _, code := range p.Abandoned.Keys() {
		sb.WriteString(code)
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatFloat(p.Abandoned.Get(code), 'f', 2, 64))
		sb.WriteByte(';')
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:8])
}
