package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"path/filepath"

	"gopkg.in/src-d/go-billy.v4"
	"gopkg.in/src-d/go-billy.v4/util"

	"hexisland/internal/environment"
	"hexisland/internal/registry"
	"hexisland/internal/rgb"
	"hexisland/internal/scenery"
	"hexisland/internal/terrain"
)

var sqrt3 = math.Sqrt(3)

type Options struct {
	// HexSize is the centre-to-corner radius of a tile in pixels.
	HexSize float64
	// ElevationShade is the HSLuv lightness swing between the lowest and
	// highest tile of a band.
	ElevationShade float64
	Background     rgb.Color
	SnowRatio      float64
	Blend          environment.SnowBlend
	Buildings      []registry.Building
}

func DefaultOptions() Options {
	return Options{
		HexSize:        8,
		ElevationShade: 18,
		Background:     rgb.Hex(0x0A0A12),
		Blend:          environment.DefaultSnowBlend(),
	}
}

// Render draws the map top-down as pointy hexes in the odd-row offset
// layout, one flat colour per tile.
func Render(m *terrain.Map, opts Options) (*image.RGBA, error) {
	if m == nil {
		return nil, errors.New("map is nil")
	}
	if m.Columns <= 0 || m.Rows <= 0 {
		return nil, fmt.Errorf("invalid map dimensions %dx%d", m.Columns, m.Rows)
	}
	if opts.HexSize <= 0 {
		opts.HexSize = DefaultOptions().HexSize
	}

	size := opts.HexSize
	width := int(math.Ceil(sqrt3 * size * (float64(m.Columns) + 0.5)))
	height := int(math.Ceil(size * (1.5*float64(m.Rows-1) + 2)))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{toRGBA(opts.Background)}, image.Point{}, draw.Src)

	for _, cell := range m.Cells {
		fillHex(img, cell.Key, size, toRGBA(tileColor(cell, m.Thresholds, opts)))
	}
	for _, b := range opts.Buildings {
		parts := scenery.BuildingParts(b.Type)
		if len(parts) == 0 || !m.InBounds(b.Key) {
			continue
		}
		cx, cy := Center(b.Key, size)
		r := int(math.Max(1, size/3))
		marker := image.Rect(int(cx)-r, int(cy)-r, int(cx)+r+1, int(cy)+r+1)
		draw.Draw(img, marker, &image.Uniform{toRGBA(parts[0].Color)}, image.Point{}, draw.Src)
	}
	return img, nil
}

// Center returns the pixel centre of a tile.
func Center(key terrain.GridKey, size float64) (float64, float64) {
	x := sqrt3 * size * (float64(key.Column) + 0.5 + 0.5*float64(key.Row&1))
	y := size * (1 + 1.5*float64(key.Row))
	return x, y
}

func tileColor(cell terrain.Cell, t terrain.Thresholds, opts Options) rgb.Color {
	base := scenery.TileColors[cell.Biome]
	if cell.Biome.IsWater() {
		// Deeper water reads darker.
		depth := 0.0
		if t.Water > 0 {
			depth = 1 - cell.Elevation/t.Water
		}
		return base.Shade(-depth * opts.ElevationShade / 2)
	}
	span := 1 - t.Water
	rel := 0.5
	if span > 0 {
		rel = (cell.Elevation - t.Water) / span
	}
	shaded := base.Shade((rel - 0.5) * opts.ElevationShade)
	if opts.SnowRatio > 0 {
		shaded = opts.Blend.Apply(shaded, opts.SnowRatio, environment.RoleTop, environment.HeatNone)
	}
	return shaded
}

func fillHex(img *image.RGBA, key terrain.GridKey, size float64, c color.RGBA) {
	cx, cy := Center(key, size)
	halfWidth := sqrt3 / 2 * size
	bounds := img.Bounds()
	minX := max(bounds.Min.X, int(math.Floor(cx-halfWidth)))
	maxX := min(bounds.Max.X-1, int(math.Ceil(cx+halfWidth)))
	minY := max(bounds.Min.Y, int(math.Floor(cy-size)))
	maxY := min(bounds.Max.Y-1, int(math.Ceil(cy+size)))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := math.Abs(float64(x) + 0.5 - cx)
			dy := math.Abs(float64(y) + 0.5 - cy)
			if dx <= halfWidth && dy <= size-dx/sqrt3 {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func toRGBA(c rgb.Color) color.RGBA {
	v := c.Uint32()
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

// WritePNG encodes img and writes it to path on fs, creating parent
// directories as needed.
func WritePNG(fs billy.Filesystem, path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create preview directory: %w", err)
		}
	}
	if err := util.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	return nil
}
