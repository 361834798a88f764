package mapview

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/mapmark/internal/marker"
)

// DecodeImage reads and decodes the overlay image at path.
func DecodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode map image %s: %w", path, err)
	}
	return img, nil
}

// sample returns the pixel that covers map position p when img is stretched
// over b. Nearest neighbour.
func sample(img image.Image, b Bounds, p marker.Position) (color.Color, bool) {
	if !b.Contains(p) || b.Width <= 0 || b.Height <= 0 {
		return nil, false
	}
	r := img.Bounds()
	x := r.Min.X + int(p.X/b.Width*float64(r.Dx()))
	y := r.Min.Y + int(p.Y/b.Height*float64(r.Dy()))
	x = min(x, r.Max.X-1)
	y = min(y, r.Max.Y-1)
	return img.At(x, y), true
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
