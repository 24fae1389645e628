// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package main loads a catalog fixture into the Shelfwise database.
//
// The fixture is a YAML (or JSON) document with a top-level "books" list:
//
//	books:
//	  - title: Dom Casmurro
//	    author: Machado de Assis
//	    genre: Romance
//	    categories: [Clássicos, Literatura Brasileira]
//	    language: pt
//	    year: 1899
//
// Usage:
//
//	seed -file books.yaml
//
// The database location comes from the usual configuration sources
// (CONFIG_PATH, DUCKDB_PATH). Books are inserted in one transaction.
package main
