// Package view projects marker state into render-ready view models. It keeps
// no state between calls; the marker store is the only source of truth.
package view

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/jask/mapmark/internal/marker"
)

// ListItem is one sidebar row.
type ListItem struct {
	ID          int
	Label       string
	Color       marker.Color
	Note        string
	Coordinates string
}

// EmptyState says why a list has no rows.
type EmptyState int

const (
	EmptyNone EmptyState = iota
	EmptyNoMarkers
	EmptyNoResults
)

// Message returns the text shown in place of an empty list.
func (e EmptyState) Message() string {
	switch e {
	case EmptyNoMarkers:
		return "No markers yet. Press a to start adding."
	case EmptyNoResults:
		return "No markers match this search."
	default:
		return ""
	}
}

// List is the projected sidebar.
type List struct {
	Items []ListItem
	Empty EmptyState
	// Suggestion is the closest label or note word to a search that matched
	// nothing. Empty when there is no reasonable candidate.
	Suggestion string
}

// Projection bundles everything the host renders after a mutation.
type Projection struct {
	List    List
	Counter int
	Filter  string
}

// Project builds the full projection for markers under filter.
func Project(markers []marker.Marker, filter string) Projection {
	return Projection{
		List:    RenderList(markers, filter),
		Counter: RenderCounter(markers),
		Filter:  filter,
	}
}

// RenderCounter returns the number of markers.
func RenderCounter(markers []marker.Marker) int {
	return len(markers)
}

// RenderList returns the markers matching filter as list rows, in sequence
// order. An empty filter matches everything.
func RenderList(markers []marker.Marker, filter string) List {
	var out List
	for _, m := range markers {
		if !Matches(m, filter) {
			continue
		}
		out.Items = append(out.Items, ListItem{
			ID:          m.ID,
			Label:       m.Label(),
			Color:       m.Color,
			Note:        m.Note,
			Coordinates: m.Position.String(),
		})
	}
	if len(out.Items) > 0 {
		return out
	}
	if filter == "" {
		out.Empty = EmptyNoMarkers
		return out
	}
	out.Empty = EmptyNoResults
	out.Suggestion = suggest(markers, filter)
	return out
}

// Matches reports whether m's note or label contains filter, ignoring case.
func Matches(m marker.Marker, filter string) bool {
	if filter == "" {
		return true
	}
	fold := cases.Fold()
	q := fold.String(filter)
	return strings.Contains(fold.String(m.Note), q) ||
		strings.Contains(fold.String(m.Label()), q)
}

func suggest(markers []marker.Marker, filter string) string {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(filter))
	if q == "" {
		return ""
	}
	limit := max(1, len([]rune(q))/3)
	best, bestDist := "", limit+1
	consider := func(candidate string) {
		c := fold.String(candidate)
		if c == "" || c == q {
			return
		}
		if d := levenshtein.ComputeDistance(q, c); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	for _, m := range markers {
		consider(m.Label())
		for _, word := range strings.Fields(m.Note) {
			consider(word)
		}
		consider(m.Note)
	}
	return best
}
