// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package googlebooks

import (
	"strings"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// volumesResponse is the subset of the /volumes payload the client reads.
type volumesResponse struct {
	TotalItems int          `json:"totalItems"`
	Items      []volumeItem `json:"items"`
}

type volumeItem struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title      string            `json:"title"`
	Authors    []string          `json:"authors"`
	Categories []string          `json:"categories"`
	Language   string            `json:"language"`
	ImageLinks map[string]string `json:"imageLinks"`
}

// toVolumes converts items to external volumes, skipping entries without an
// ID or title and duplicates of an ID already seen.
func (r *volumesResponse) toVolumes(limit int) []recommend.ExternalVolume {
	out := make([]recommend.ExternalVolume, 0, len(r.Items))
	seen := make(map[string]struct{}, len(r.Items))
	for i := range r.Items {
		if len(out) >= limit {
			break
		}
		item := &r.Items[i]
		id := strings.TrimSpace(item.ID)
		title := strings.TrimSpace(item.VolumeInfo.Title)
		if id == "" || title == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		out = append(out, recommend.ExternalVolume{
			ExternalID: id,
			Title:      title,
			Authors:    trimAll(item.VolumeInfo.Authors),
			Categories: trimAll(item.VolumeInfo.Categories),
			Language:   strings.ToLower(strings.TrimSpace(item.VolumeInfo.Language)),
			ImageLinks: item.VolumeInfo.ImageLinks,
		})
	}
	return out
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
