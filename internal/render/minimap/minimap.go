// Package minimap draws a fixed-size overview of the whole grid.
package minimap

import (
	"image"
	"io"
	"math"

	"github.com/gogpu/gg"

	"github.com/glabrego/photowall-cli/internal/grid"
	"github.com/glabrego/photowall-cli/internal/render/wall"
)

// Size is the edge length of the minimap in pixels.
const Size = 200

type Counter interface {
	Count() int
}

type CachedLister interface {
	CachedKeys() []grid.Key
}

type Minimap struct {
	posts  Counter
	tiles  CachedLister
	layout grid.Layout
	dc     *gg.Context
}

func New(posts Counter, tiles CachedLister, layout grid.Layout) *Minimap {
	return &Minimap{
		posts:  posts,
		tiles:  tiles,
		layout: layout,
		dc:     gg.NewContext(Size, Size),
	}
}

// Draw repaints the whole minimap for the given view of a canvasW×canvasH
// main canvas.
func (m *Minimap) Draw(view wall.View, canvasW, canvasH int) {
	dc := m.dc
	sx := float64(Size) / float64(m.layout.Cols)
	sy := float64(Size) / float64(m.layout.Rows)
	dotW, dotH := math.Max(1, sx), math.Max(1, sy)

	dc.ClearWithColor(gg.RGBA2(26.0/255, 16.0/255, 8.0/255, 0.9))

	// Every placed post sits at its arrival index, so the count is enough.
	if total := min(m.posts.Count(), m.layout.Capacity()); total > 0 {
		for i := 0; i < total; i++ {
			dc.DrawRectangle(float64(i%m.layout.Cols)*sx, float64(i/m.layout.Cols)*sy, dotW, dotH)
		}
		dc.SetRGBA(201.0/255, 123.0/255, 47.0/255, 0.2)
		_ = dc.Fill()
	}

	if cached := m.tiles.CachedKeys(); len(cached) > 0 {
		for _, k := range cached {
			dc.DrawRectangle(float64(k.X)*sx, float64(k.Y)*sy, dotW, dotH)
		}
		dc.SetHexColor("#c97b2f")
		_ = dc.Fill()
	}

	if x, y, w, h, ok := ViewportRect(view, canvasW, canvasH, m.layout, Size); ok {
		dc.SetHexColor("#ffffff")
		dc.SetLineWidth(1)
		dc.DrawRectangle(x, y, w, h)
		_ = dc.Stroke()
	}

	dc.SetRGBA(201.0/255, 123.0/255, 47.0/255, 0.6)
	dc.SetLineWidth(1)
	dc.DrawRectangle(0, 0, Size, Size)
	_ = dc.Stroke()
}

func (m *Minimap) Image() image.Image {
	return m.dc.Image()
}

func (m *Minimap) EncodePNG(w io.Writer) error {
	return m.dc.EncodePNG(w)
}

// ViewportRect projects the main canvas extent into a size×size minimap and
// clips it to the minimap. ok is false when nothing of it is inside.
func ViewportRect(view wall.View, canvasW, canvasH int, layout grid.Layout, size float64) (x, y, w, h float64, ok bool) {
	cs := layout.CellSize * view.Zoom
	sx := size / float64(layout.Cols)
	sy := size / float64(layout.Rows)

	rx := -view.OffsetX / cs * sx
	ry := -view.OffsetY / cs * sy
	rw := float64(canvasW) / cs * sx
	rh := float64(canvasH) / cs * sy

	x0, x1 := clamp(rx, 0, size), clamp(rx+rw, 0, size)
	y0, y1 := clamp(ry, 0, size), clamp(ry+rh, 0, size)
	if x1 <= x0 || y1 <= y0 {
		return 0, 0, 0, 0, false
	}
	return x0, y0, x1 - x0, y1 - y0, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
