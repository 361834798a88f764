package input

import "github.com/jask/mapmark/internal/marker"

// Event is one user gesture handed to the controller. The set is closed.
type Event interface {
	event()
}

// ToggleAdd is a click on the add/cancel button.
type ToggleAdd struct{}

// KeyDown is a key press outside any text input. Key uses Bubble Tea key
// names ("esc", "1", ...).
type KeyDown struct {
	Key string
}

// SurfaceClick is a click on the map surface at a map position.
type SurfaceClick struct {
	Pos marker.Position
}

// PointerMove reports the map position under the pointer.
type PointerMove struct {
	Pos marker.Position
}

// PickColor is a click on a palette swatch.
type PickColor struct {
	Color marker.Color
}

// SearchChanged carries the full search text after each keystroke.
type SearchChanged struct {
	Text string
}

// SaveNote confirms a note edit in a marker's detail view.
type SaveNote struct {
	ID   int
	Text string
}

// Source names where a remove action was triggered.
type Source string

const (
	SourceDetail Source = "detail"
	SourceList   Source = "list"
)

// Remove deletes a marker from either its detail view or its list row.
type Remove struct {
	ID     int
	Source Source
}

// ClearRequested is a click on "clear all".
type ClearRequested struct{}

// ConfirmAnswer answers a pending clear confirmation.
type ConfirmAnswer struct {
	Yes bool
}

// ZoomIn and ZoomOut are the zoom buttons.
type (
	ZoomIn  struct{}
	ZoomOut struct{}
)

func (ToggleAdd) event()      {}
func (KeyDown) event()        {}
func (SurfaceClick) event()   {}
func (PointerMove) event()    {}
func (PickColor) event()      {}
func (SearchChanged) event()  {}
func (SaveNote) event()       {}
func (Remove) event()         {}
func (ClearRequested) event() {}
func (ConfirmAnswer) event()  {}
func (ZoomIn) event()         {}
func (ZoomOut) event()        {}
