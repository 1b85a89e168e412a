// Package geometry maps pixel coordinates on the pitch image to the
// fixed 18-zone grid used by event classification.
package geometry

import (
	"fmt"
	"math"

	"github.com/pitchvision/pitchvision/internal/domain/model"
)

// Grid layout constants. Zones are numbered 1..18 left-to-right,
// top-to-bottom; row 0 is the opponent-goal side.
const (
	ZoneCols  = 6
	ZoneRows  = 3
	ZoneCount = ZoneCols * ZoneRows

	// ZoneOutside is the sentinel returned for points off the pitch.
	ZoneOutside = 0
)

// Default pitch dimensions in pixels.
const (
	DefaultPitchWidth  = 1920
	DefaultPitchHeight = 1080
)

// Bounds is a zone's rectangle in pixel coordinates.
type Bounds struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// ZoneInfo describes one zone for visualization clients.
type ZoneInfo struct {
	Zone    int     `json:"zone"`
	Bounds  Bounds  `json:"bounds"`
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
}

// Grid partitions a pitch image into the 3x6 zone layout. It holds no
// mutable state and is safe for unsynchronized concurrent reads.
type Grid struct {
	width      float64
	height     float64
	zoneWidth  float64
	zoneHeight float64
}

// Option applies a configuration option to the Grid.
type Option func(*Grid)

// WithPitchSize sets the pitch dimensions in pixels.
func WithPitchSize(width, height float64) Option {
	return func(g *Grid) {
		if width > 0 && height > 0 {
			g.width = width
			g.height = height
		}
	}
}

// NewGrid creates a Grid over the default 1920x1080 pitch unless
// overridden by options.
func NewGrid(opts ...Option) *Grid {
	g := &Grid{
		width:  DefaultPitchWidth,
		height: DefaultPitchHeight,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.zoneWidth = g.width / ZoneCols
	g.zoneHeight = g.height / ZoneRows
	return g
}

// PixelToZone maps a pixel position to its zone id, or ZoneOutside when
// the point lies off the pitch. Edge pixels (x == width, y == height)
// clamp into the last column/row rather than falling outside.
func (g *Grid) PixelToZone(x, y float64) int {
	if x < 0 || x > g.width || y < 0 || y > g.height {
		return ZoneOutside
	}

	col := int(math.Floor(x / g.zoneWidth))
	row := int(math.Floor(y / g.zoneHeight))
	if col > ZoneCols-1 {
		col = ZoneCols - 1
	}
	if row > ZoneRows-1 {
		row = ZoneRows - 1
	}

	return row*ZoneCols + col + 1
}

// ZoneBounds returns the rectangle covered by a zone.
func (g *Grid) ZoneBounds(zone int) (Bounds, error) {
	if zone < 1 || zone > ZoneCount {
		return Bounds{}, fmt.Errorf("zone %d: %w", zone, ErrInvalidZone)
	}

	row := (zone - 1) / ZoneCols
	col := (zone - 1) % ZoneCols
	return Bounds{
		X1: float64(col) * g.zoneWidth,
		Y1: float64(row) * g.zoneHeight,
		X2: float64(col+1) * g.zoneWidth,
		Y2: float64(row+1) * g.zoneHeight,
	}, nil
}

// ZoneCenter returns the center point of a zone.
func (g *Grid) ZoneCenter(zone int) (model.Point, error) {
	b, err := g.ZoneBounds(zone)
	if err != nil {
		return model.Point{}, err
	}
	return model.Point{
		X: (b.X1 + b.X2) / 2,
		Y: (b.Y1 + b.Y2) / 2,
	}, nil
}

// IsForwardPass reports whether moving from zone a to zone b advances
// toward the opponent goal, i.e. into a lower row. A pass within the
// same row, backwards, or involving an invalid zone is not forward.
func (g *Grid) IsForwardPass(a, b int) bool {
	if a < 1 || a > ZoneCount || b < 1 || b > ZoneCount {
		return false
	}
	return (b-1)/ZoneCols < (a-1)/ZoneCols
}

// Layout returns the full zone geometry for visualization clients.
func (g *Grid) Layout() []ZoneInfo {
	zones := make([]ZoneInfo, 0, ZoneCount)
	for z := 1; z <= ZoneCount; z++ {
		b, _ := g.ZoneBounds(z)
		zones = append(zones, ZoneInfo{
			Zone:    z,
			Bounds:  b,
			CenterX: (b.X1 + b.X2) / 2,
			CenterY: (b.Y1 + b.Y2) / 2,
		})
	}
	return zones
}

// PitchWidth returns the configured pitch width in pixels.
func (g *Grid) PitchWidth() float64 { return g.width }

// PitchHeight returns the configured pitch height in pixels.
func (g *Grid) PitchHeight() float64 { return g.height }
