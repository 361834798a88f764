// Package input turns user gestures into marker store operations and mode
// changes. It owns the session's selection state and no marker data.
package input

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/jask/mapmark/internal/marker"
	"github.com/jask/mapmark/internal/view"
)

// Mode is the add-marker state machine.
type Mode int

const (
	Idle Mode = iota
	Placing
)

func (m Mode) String() string {
	if m == Placing {
		return "placing"
	}
	return "idle"
}

// Swatch is one selectable palette color and its quick-select key.
type Swatch struct {
	Color marker.Color
	Key   string
}

// State is the process-wide selection state of one viewer instance.
type State struct {
	SelectedColor  marker.Color
	Mode           Mode
	Filter         string
	ConfirmPending bool
	Pointer        marker.Position
	PointerValid   bool
}

// Surface is the part of the map collaborator the controller drives
// directly.
type Surface interface {
	ZoomIn()
	ZoomOut()
	Contains(pos marker.Position) bool
}

// Outcome reports what a dispatched event did.
type Outcome struct {
	// Handled is false when the event meant nothing in the current state.
	Handled bool
	// Changed is true when the marker store was mutated.
	Changed bool
	// Added is set when a marker was created.
	Added *marker.Marker
	// NeedsConfirm asks the host to show the clear-all prompt.
	NeedsConfirm bool
	Projection   view.Projection
}

// Controller dispatches events for one viewer instance.
type Controller struct {
	store      *marker.Store
	surface    Surface
	palette    []Swatch
	state      State
	projection view.Projection
	log        zerolog.Logger
}

// New returns a controller in Idle mode with defaultColor selected.
func New(store *marker.Store, surface Surface, palette []Swatch, defaultColor marker.Color, log zerolog.Logger) (*Controller, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("palette is empty")
	}
	if !lo.ContainsBy(palette, func(s Swatch) bool { return s.Color == defaultColor }) {
		return nil, fmt.Errorf("default color %q is not in the palette", defaultColor)
	}
	c := &Controller{
		store:   store,
		surface: surface,
		palette: append([]Swatch(nil), palette...),
		state:   State{SelectedColor: defaultColor, Mode: Idle},
		log:     log,
	}
	c.resync()
	return c, nil
}

// State returns a copy of the selection state.
func (c *Controller) State() State {
	return c.state
}

// Palette returns the configured swatches in display order.
func (c *Controller) Palette() []Swatch {
	return append([]Swatch(nil), c.palette...)
}

// Projection returns the view model produced by the last mutation.
func (c *Controller) Projection() view.Projection {
	return c.projection
}

// Marker returns the marker currently holding id.
func (c *Controller) Marker(id int) (marker.Marker, error) {
	return c.store.At(id)
}

// AddButtonLabel is the label of the add/cancel toggle for the current mode.
func (c *Controller) AddButtonLabel() string {
	if c.state.Mode == Placing {
		return "Cancel Adding"
	}
	return "Add Marker"
}

// Dispatch applies ev and returns the resulting outcome. Errors come from the
// marker store (OutOfRangeError, layer failures); state is unchanged when an
// error is returned.
func (c *Controller) Dispatch(ev Event) (Outcome, error) {
	out, err := c.dispatch(ev)
	out.Projection = c.projection
	return out, err
}

func (c *Controller) dispatch(ev Event) (Outcome, error) {
	switch e := ev.(type) {
	case ToggleAdd:
		if c.state.Mode == Idle {
			c.state.Mode = Placing
		} else {
			c.state.Mode = Idle
		}
		c.log.Debug().Stringer("mode", c.state.Mode).Msg("add mode toggled")
		return Outcome{Handled: true}, nil

	case KeyDown:
		return c.keyDown(e.Key), nil

	case SurfaceClick:
		return c.surfaceClick(e.Pos)

	case PointerMove:
		c.state.Pointer = e.Pos
		c.state.PointerValid = c.surface == nil || c.surface.Contains(e.Pos)
		return Outcome{Handled: true}, nil

	case PickColor:
		if !c.selectColor(e.Color) {
			return Outcome{}, nil
		}
		return Outcome{Handled: true}, nil

	case SearchChanged:
		c.state.Filter = e.Text
		c.resync()
		return Outcome{Handled: true}, nil

	case SaveNote:
		if err := c.store.SetNote(e.ID, e.Text); err != nil {
			return Outcome{}, fmt.Errorf("save note: %w", err)
		}
		c.resync()
		return Outcome{Handled: true, Changed: true}, nil

	case Remove:
		if err := c.store.Remove(e.ID); err != nil {
			return Outcome{}, fmt.Errorf("remove from %s: %w", e.Source, err)
		}
		c.log.Debug().Int("id", e.ID).Str("source", string(e.Source)).Msg("remove routed")
		c.resync()
		return Outcome{Handled: true, Changed: true}, nil

	case ClearRequested:
		if c.store.Len() == 0 {
			return Outcome{}, nil
		}
		c.state.ConfirmPending = true
		return Outcome{Handled: true, NeedsConfirm: true}, nil

	case ConfirmAnswer:
		if !c.state.ConfirmPending {
			return Outcome{}, nil
		}
		c.state.ConfirmPending = false
		if !e.Yes {
			return Outcome{Handled: true}, nil
		}
		c.store.Clear()
		c.resync()
		return Outcome{Handled: true, Changed: true}, nil

	case ZoomIn:
		if c.surface != nil {
			c.surface.ZoomIn()
		}
		return Outcome{Handled: true}, nil

	case ZoomOut:
		if c.surface != nil {
			c.surface.ZoomOut()
		}
		return Outcome{Handled: true}, nil
	}
	return Outcome{}, fmt.Errorf("unknown event %T", ev)
}

func (c *Controller) keyDown(key string) Outcome {
	if key == "esc" {
		if c.state.Mode != Placing {
			return Outcome{}
		}
		c.state.Mode = Idle
		c.log.Debug().Msg("add mode cancelled")
		return Outcome{Handled: true}
	}
	sw, ok := lo.Find(c.palette, func(s Swatch) bool { return s.Key != "" && s.Key == key })
	if !ok {
		return Outcome{}
	}
	c.selectColor(sw.Color)
	return Outcome{Handled: true}
}

func (c *Controller) surfaceClick(pos marker.Position) (Outcome, error) {
	if c.state.Mode != Placing {
		return Outcome{}, nil
	}
	if c.surface != nil && !c.surface.Contains(pos) {
		return Outcome{}, nil
	}
	m, err := c.store.Add(pos, c.state.SelectedColor)
	if err != nil {
		return Outcome{}, fmt.Errorf("add marker: %w", err)
	}
	c.resync()
	return Outcome{Handled: true, Changed: true, Added: &m}, nil
}

func (c *Controller) selectColor(color marker.Color) bool {
	if !lo.ContainsBy(c.palette, func(s Swatch) bool { return s.Color == color }) {
		return false
	}
	c.state.SelectedColor = color
	return true
}

func (c *Controller) resync() {
	c.projection = view.Project(c.store.All(), c.state.Filter)
}
