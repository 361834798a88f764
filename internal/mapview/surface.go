// Package mapview is the terminal map surface: an image overlay on a
// pannable, zoomable viewport with point markers drawn on top.
//
// Coordinates follow a simple planar CRS. Zoom 0 maps one map unit to one
// pixel and every zoom step doubles the scale. A terminal cell is one pixel
// wide and two pixels tall, since each cell draws two pixel rows with a
// half-block glyph.
package mapview

import (
	"fmt"
	"image"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jask/mapmark/internal/marker"
)

// Bounds is the image's bounding box, [0,0]..[Width,Height] in map units.
type Bounds struct {
	Width  float64
	Height float64
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p marker.Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= b.Width && p.Y <= b.Height
}

// Center is the middle of the box.
func (b Bounds) Center() marker.Position {
	return marker.Position{X: b.Width / 2, Y: b.Height / 2}
}

// LayerHandle identifies an image overlay layer.
type LayerHandle string

// Status is the load state of the image overlay.
type Status int

const (
	StatusNone Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

// Options configures zoom limits.
type Options struct {
	MinZoom int
	MaxZoom int
}

type overlay struct {
	handle LayerHandle
	source string
	bounds Bounds
	img    image.Image
	status Status
	err    error
}

type visual struct {
	pos    marker.Position
	style  lipgloss.Color
	detail marker.Detail
}

// Surface implements marker.Layer for a terminal viewport.
type Surface struct {
	opts    Options
	palette map[marker.Color]lipgloss.Color
	log     zerolog.Logger

	overlay *overlay
	bounds  Bounds
	cols    int
	rows    int
	zoom    int
	center  marker.Position
	fitTo   *Bounds

	visuals map[marker.VisualHandle]*visual
	order   []marker.VisualHandle
}

// New returns a surface with no overlay. palette maps marker colors to the
// terminal colors used to draw them.
func New(opts Options, palette map[marker.Color]lipgloss.Color, log zerolog.Logger) *Surface {
	if opts.MaxZoom < opts.MinZoom {
		opts.MaxZoom = opts.MinZoom
	}
	return &Surface{
		opts:    opts,
		palette: palette,
		log:     log,
		zoom:    clamp(0, opts.MinZoom, opts.MaxZoom),
		visuals: make(map[marker.VisualHandle]*visual),
	}
}

// CreateOverlayLayer registers the image at source as the map background
// covering b. The image itself is attached later with SetOverlayImage.
func (s *Surface) CreateOverlayLayer(source string, b Bounds) LayerHandle {
	h := LayerHandle(uuid.NewString())
	s.overlay = &overlay{handle: h, source: source, bounds: b, status: StatusLoading}
	s.bounds = b
	s.center = b.Center()
	return h
}

// SetOverlayImage attaches a decoded image, or the error that prevented
// decoding, to the overlay layer h.
func (s *Surface) SetOverlayImage(h LayerHandle, img image.Image, err error) error {
	if s.overlay == nil || s.overlay.handle != h {
		return fmt.Errorf("unknown overlay layer %q", h)
	}
	if err != nil {
		s.overlay.status = StatusFailed
		s.overlay.err = err
		s.log.Error().Err(err).Str("source", s.overlay.source).Msg("map image failed to load")
		return nil
	}
	s.overlay.img = img
	s.overlay.status = StatusReady
	s.log.Info().Str("source", s.overlay.source).Int("px_w", img.Bounds().Dx()).Int("px_h", img.Bounds().Dy()).Msg("map image loaded")
	return nil
}

// Status returns the overlay load state and, when failed, the cause.
func (s *Surface) Status() (Status, error) {
	if s.overlay == nil {
		return StatusNone, nil
	}
	return s.overlay.status, s.overlay.err
}

// Bounds returns the current map bounding box.
func (s *Surface) Bounds() Bounds {
	return s.bounds
}

// Resize sets the viewport size in terminal cells. A pending FitView is
// applied once the size is known.
func (s *Surface) Resize(cols, rows int) {
	s.cols, s.rows = max(cols, 0), max(rows, 0)
	if s.fitTo != nil && s.cols > 0 && s.rows > 0 {
		b := *s.fitTo
		s.fitTo = nil
		s.FitView(b)
	}
}

// Size returns the viewport size in cells.
func (s *Surface) Size() (int, int) {
	return s.cols, s.rows
}

// FitView centers b and picks the largest zoom that shows all of it.
func (s *Surface) FitView(b Bounds) {
	s.bounds = b
	s.center = b.Center()
	if s.cols == 0 || s.rows == 0 || b.Width <= 0 || b.Height <= 0 {
		s.fitTo = &b
		return
	}
	zx := math.Log2(float64(s.cols) / b.Width)
	zy := math.Log2(float64(s.rows*2) / b.Height)
	s.zoom = clamp(int(math.Floor(math.Min(zx, zy))), s.opts.MinZoom, s.opts.MaxZoom)
}

// Zoom returns the current zoom level.
func (s *Surface) Zoom() int {
	return s.zoom
}

// ZoomIn increases the zoom level by one, up to the configured maximum.
func (s *Surface) ZoomIn() {
	s.zoom = clamp(s.zoom+1, s.opts.MinZoom, s.opts.MaxZoom)
}

// ZoomOut decreases the zoom level by one, down to the configured minimum.
func (s *Surface) ZoomOut() {
	s.zoom = clamp(s.zoom-1, s.opts.MinZoom, s.opts.MaxZoom)
}

// Pan moves the view center by whole cells. The center stays inside the
// bounding box.
func (s *Surface) Pan(dCols, dRows int) {
	ux, uy := s.unitsPerCell()
	s.center.X = clampf(s.center.X+float64(dCols)*ux, 0, s.bounds.Width)
	s.center.Y = clampf(s.center.Y+float64(dRows)*uy, 0, s.bounds.Height)
}

// Center returns the map position at the middle of the viewport.
func (s *Surface) Center() marker.Position {
	return s.center
}

// Contains reports whether p lies inside the map bounds.
func (s *Surface) Contains(p marker.Position) bool {
	return s.bounds.Contains(p)
}

// ScreenToMap returns the map position under viewport cell (col, row).
func (s *Surface) ScreenToMap(col, row int) marker.Position {
	ux, uy := s.unitsPerCell()
	return marker.Position{
		X: s.center.X + (float64(col)+0.5-float64(s.cols)/2)*ux,
		Y: s.center.Y + (float64(row)+0.5-float64(s.rows)/2)*uy,
	}
}

// MapToScreen returns the viewport cell containing p, and false when p is
// outside the viewport.
func (s *Surface) MapToScreen(p marker.Position) (int, int, bool) {
	ux, uy := s.unitsPerCell()
	col := int(math.Floor((p.X-s.center.X)/ux + float64(s.cols)/2))
	row := int(math.Floor((p.Y-s.center.Y)/uy + float64(s.rows)/2))
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return col, row, false
	}
	return col, row, true
}

func (s *Surface) unitsPerCell() (float64, float64) {
	u := math.Ldexp(1, -s.zoom)
	return u, 2 * u
}

// CreateVisualMarker draws a marker at pos. It fails when the style's color
// has no terminal color.
func (s *Surface) CreateVisualMarker(pos marker.Position, style marker.Style) (marker.VisualHandle, error) {
	c, ok := s.palette[style.Color]
	if !ok {
		return "", fmt.Errorf("no terminal color for %q", style.Color)
	}
	h := marker.VisualHandle(uuid.NewString())
	s.visuals[h] = &visual{pos: pos, style: c}
	s.order = append(s.order, h)
	return h, nil
}

// DestroyVisualMarker removes the marker drawn for h.
func (s *Surface) DestroyVisualMarker(h marker.VisualHandle) {
	if _, ok := s.visuals[h]; !ok {
		return
	}
	delete(s.visuals, h)
	for i, v := range s.order {
		if v == h {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// BindDetailView sets the detail content shown when h is opened.
func (s *Surface) BindDetailView(h marker.VisualHandle, d marker.Detail) {
	if v, ok := s.visuals[h]; ok {
		v.detail = d
	}
}

// DetailView returns the content bound to h.
func (s *Surface) DetailView(h marker.VisualHandle) (marker.Detail, bool) {
	v, ok := s.visuals[h]
	if !ok {
		return marker.Detail{}, false
	}
	return v.detail, true
}

// HandleAt returns the topmost marker drawn in cell (col, row).
func (s *Surface) HandleAt(col, row int) (marker.VisualHandle, bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		h := s.order[i]
		c, r, ok := s.MapToScreen(s.visuals[h].pos)
		if ok && c == col && r == row {
			return h, true
		}
	}
	return "", false
}

// VisualCount returns the number of live visual markers.
func (s *Surface) VisualCount() int {
	return len(s.visuals)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampf(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
