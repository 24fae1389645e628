// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package models defines the HTTP wire types of the Shelfwise API: the
// response envelope shared by every endpoint and the request bodies of the
// shelf mutation endpoints.
//
// Request bodies carry go-playground/validator tags and are checked through
// the validation package before reaching the shelf service. Field names in
// validation errors follow the json tags.
package models
