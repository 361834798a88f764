// Package marker owns the authoritative marker sequence of a map session.
//
// A marker's ID is its position in the sequence. Removing a marker shifts
// every later marker down by one, and the store rebinds their detail views
// before Remove returns, so the ID a caller sees always equals the index.
package marker

import (
	"fmt"
	"math"
)

// Position is a point in the map's planar coordinate space. X grows to the
// right and Y grows downward from the image's top-left corner.
type Position struct {
	X float64
	Y float64
}

// Rounded returns the position rounded to whole map units for display.
func (p Position) Rounded() (int, int) {
	return roundHalfUp(p.X), roundHalfUp(p.Y)
}

func (p Position) String() string {
	x, y := p.Rounded()
	return fmt.Sprintf("X:%d, Y:%d", x, y)
}

// roundHalfUp rounds halves toward positive infinity, so -2.5 becomes -2.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Color names one entry of the configured palette ("red", "green", ...).
type Color string

// VisualHandle is the layer's opaque reference to a drawn marker.
type VisualHandle string

// Marker is one user-placed point annotation.
type Marker struct {
	ID       int
	Position Position
	Color    Color
	Note     string
	Handle   VisualHandle
}

// Label is the display label shown in lists and detail views.
func (m Marker) Label() string {
	return Label(m.ID)
}

// Label returns the display label for the marker at index id.
func Label(id int) string {
	return fmt.Sprintf("Marker %d", id+1)
}

// Style describes how the layer should draw a marker.
type Style struct {
	Color Color
}

// Detail is the content bound to a marker's detail view. It carries the
// marker's current ID so that save/remove controls inside the view route
// back to the right record.
type Detail struct {
	ID       int
	Label    string
	Position Position
	Note     string
}

func detailOf(m Marker) Detail {
	return Detail{ID: m.ID, Label: m.Label(), Position: m.Position, Note: m.Note}
}

// Layer is the map-side collaborator that draws markers. The store is the
// only caller; handles are never released outside the owning record's
// removal path.
type Layer interface {
	CreateVisualMarker(pos Position, style Style) (VisualHandle, error)
	DestroyVisualMarker(h VisualHandle)
	BindDetailView(h VisualHandle, d Detail)
}
