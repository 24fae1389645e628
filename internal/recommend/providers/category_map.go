// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package providers

import "github.com/tomtom215/shelfwise/internal/recommend"

// relatedWeight scales the boost of a related term relative to its source term.
const relatedWeight = 0.7

// categoryMap relates genres and categories that readers tend to cross
// between. Keys and values are normalized terms.
var categoryMap = map[string][]string{
	"fantasy":           {"science fiction", "adventure", "mythology", "young adult"},
	"fantasia":          {"ficção científica", "aventura", "mitologia"},
	"science fiction":   {"fantasy", "dystopia", "technology"},
	"ficção científica": {"fantasia", "distopia"},
	"mystery":           {"thriller", "crime", "suspense"},
	"mistério":          {"suspense", "policial", "thriller"},
	"thriller":          {"mystery", "crime", "suspense"},
	"crime":             {"mystery", "thriller", "true crime"},
	"policial":          {"mistério", "suspense"},
	"romance":           {"drama", "contemporary", "literary fiction"},
	"drama":             {"romance", "literary fiction"},
	"horror":            {"thriller", "supernatural", "suspense"},
	"terror":            {"suspense", "sobrenatural"},
	"history":           {"biography", "historical fiction", "politics"},
	"história":          {"biografia", "política"},
	"biography":         {"history", "memoir"},
	"biografia":         {"história", "memórias"},
	"poetry":            {"literary fiction", "classics"},
	"poesia":            {"clássicos", "literatura brasileira"},
	"classics":          {"literary fiction", "poetry", "history"},
	"clássicos":         {"literatura brasileira", "poesia"},
	"self-help":         {"psychology", "business", "spirituality"},
	"autoajuda":         {"psicologia", "espiritualidade"},
	"psychology":        {"self-help", "philosophy", "science"},
	"philosophy":        {"psychology", "religion", "classics"},
	"filosofia":         {"psicologia", "religião"},
	"business":          {"economics", "self-help", "technology"},
	"young adult":       {"fantasy", "romance", "coming of age"},
	"children":          {"young adult", "picture books"},
	"infantil":          {"juvenil"},
	"juvenil":           {"infantil", "aventura"},
	"adventure":         {"fantasy", "action"},
	"aventura":          {"fantasia", "ação"},
	"fiction":           {"literary fiction", "contemporary"},
	"ficção":            {"romance", "literatura brasileira"},
}

// relatedTerms returns the normalized related terms of term.
func relatedTerms(term string) []string {
	return categoryMap[recommend.NormalizeTerm(term)]
}
