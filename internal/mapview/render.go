package mapview

import (
	"image"
	"strings"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/charmbracelet/lipgloss"
)

const (
	halfBlock  = '▀'
	markerRune = '●'
	crossRune  = '+'
)

// RenderOptions controls the decorations drawn over the map.
type RenderOptions struct {
	// Crosshair marks the viewport center, where keyboard placement lands.
	Crosshair bool
	// Background fills cells outside the image.
	Background lipgloss.Color
	// Accent colors the crosshair and status messages.
	Accent lipgloss.Color
}

// Render draws the viewport at its current size.
func (s *Surface) Render(opts RenderOptions) string {
	if s.cols <= 0 || s.rows <= 0 {
		return ""
	}
	status, _ := s.Status()
	switch status {
	case StatusFailed:
		return s.message("map image failed to load", opts)
	case StatusLoading:
		return s.message("loading map…", opts)
	}

	c := canvas.New(s.cols, s.rows)
	empty := lipgloss.NewStyle().Background(opts.Background)
	img := s.imageOrNil()
	_, uy := s.unitsPerCell()
	for row := 0; row < s.rows; row++ {
		for col := 0; col < s.cols; col++ {
			p := s.ScreenToMap(col, row)
			if img == nil {
				c.SetRuneWithStyle(canvas.Point{X: col, Y: row}, ' ', empty)
				continue
			}
			top, bottom := p, p
			top.Y -= uy / 4
			bottom.Y += uy / 4
			style := empty
			tc, tok := sample(img, s.bounds, top)
			bc, bok := sample(img, s.bounds, bottom)
			if !tok && !bok {
				c.SetRuneWithStyle(canvas.Point{X: col, Y: row}, ' ', empty)
				continue
			}
			if tok {
				style = style.Foreground(hexColor(tc))
			} else {
				style = style.Foreground(opts.Background)
			}
			if bok {
				style = style.Background(hexColor(bc))
			}
			c.SetRuneWithStyle(canvas.Point{X: col, Y: row}, halfBlock, style)
		}
	}

	if opts.Crosshair {
		c.SetRuneWithStyle(canvas.Point{X: s.cols / 2, Y: s.rows / 2}, crossRune,
			lipgloss.NewStyle().Foreground(opts.Accent).Bold(true))
	}
	for _, h := range s.order {
		v := s.visuals[h]
		col, row, ok := s.MapToScreen(v.pos)
		if !ok {
			continue
		}
		c.SetRuneWithStyle(canvas.Point{X: col, Y: row}, markerRune,
			lipgloss.NewStyle().Foreground(v.style).Bold(true))
	}
	return c.View()
}

func (s *Surface) imageOrNil() image.Image {
	if s.overlay == nil || s.overlay.img == nil {
		return nil
	}
	return s.overlay.img
}

func (s *Surface) message(text string, opts RenderOptions) string {
	body := lipgloss.NewStyle().Foreground(opts.Accent).Bold(true).Render(text)
	placed := lipgloss.Place(s.cols, s.rows, lipgloss.Center, lipgloss.Center, body)
	lines := strings.Split(placed, "\n")
	if len(lines) > s.rows {
		lines = lines[:s.rows]
	}
	return strings.Join(lines, "\n")
}
