// Package wall draws the photo grid and owns the view it is drawn from.
package wall

import (
	"fmt"
	"image"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/glabrego/photowall-cli/internal/grid"
	"github.com/glabrego/photowall-cli/internal/render/label"
)

const Background = "#1a1008"

// Palette holds the placeholder colours for cells whose image is not ready.
var Palette = []string{
	"#c97b2f",
	"#a85c20",
	"#d4924a",
	"#b87333",
	"#8b5e3c",
	"#cd853f",
	"#daa520",
	"#c8860a",
}

// PlaceholderHex picks a stable palette entry for a cell.
func PlaceholderHex(x, y int) string {
	n := len(Palette)
	return Palette[((x*31+y*17)%n+n)%n]
}

type PostSource interface {
	Post(x, y int) (grid.GridPost, bool)
}

type TileSource interface {
	Image(x, y int) *gg.ImageBuf
	IsLoading(x, y int) bool
}

// Observer hears about every drawn frame.
type Observer interface {
	VisibleKeysChanged(keys grid.KeySet)
	ViewChanged(view View)
}

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
)

func captionSource() *text.FontSource {
	fontOnce.Do(func() {
		src, err := text.NewFontSource(goregular.TTF)
		if err == nil {
			fontSource = src
		}
	})
	return fontSource
}

// Renderer keeps the canvas and the view. View mutations and Frame belong to
// the host goroutine; MarkDirty may be called from anywhere.
type Renderer struct {
	posts  PostSource
	tiles  TileSource
	layout grid.Layout

	dc        *gg.Context
	width     int
	height    int
	view      View
	dirty     atomic.Bool
	observers []Observer
	faces     map[int]text.Face
}

func New(posts PostSource, tiles TileSource, layout grid.Layout, width, height int) *Renderer {
	width, height = max(1, width), max(1, height)
	r := &Renderer{
		posts:  posts,
		tiles:  tiles,
		layout: layout,
		dc:     gg.NewContext(width, height),
		width:  width,
		height: height,
		view:   InitialView(layout),
		faces:  make(map[int]text.Face),
	}
	r.dirty.Store(true)
	return r
}

func (r *Renderer) Observe(o Observer) {
	r.observers = append(r.observers, o)
}

func (r *Renderer) Layout() grid.Layout {
	return r.layout
}

func (r *Renderer) View() View {
	return r.view
}

// SetView replaces the view, clamping its zoom.
func (r *Renderer) SetView(v View) {
	v.Zoom = r.layout.ClampZoom(v.Zoom)
	if math.IsNaN(v.OffsetX) || math.IsInf(v.OffsetX, 0) {
		v.OffsetX = 0
	}
	if math.IsNaN(v.OffsetY) || math.IsInf(v.OffsetY, 0) {
		v.OffsetY = 0
	}
	r.view = v
	r.MarkDirty()
}

func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

func (r *Renderer) CellSize() float64 {
	return r.layout.CellSize * r.view.Zoom
}

func (r *Renderer) PanBy(dx, dy float64) {
	r.view.OffsetX += dx
	r.view.OffsetY += dy
	r.MarkDirty()
}

func (r *Renderer) ZoomAt(cx, cy, factor float64) {
	r.view = ZoomAt(r.view, cx, cy, factor, r.layout)
	r.MarkDirty()
}

// JumpToCell centres the canvas on cell (x, y).
func (r *Renderer) JumpToCell(x, y int) {
	r.view = Centered(r.view, x, y, r.width, r.height, r.layout)
	r.MarkDirty()
}

func (r *Renderer) Resize(width, height int) error {
	if err := r.dc.Resize(width, height); err != nil {
		return fmt.Errorf("resize canvas: %w", err)
	}
	r.width, r.height = width, height
	r.MarkDirty()
	return nil
}

// CanvasToCell returns the cell under a canvas point. The result may lie
// outside the grid.
func (r *Renderer) CanvasToCell(cx, cy float64) grid.Key {
	cs := r.CellSize()
	return grid.Key{
		X: int(math.Floor((cx - r.view.OffsetX) / cs)),
		Y: int(math.Floor((cy - r.view.OffsetY) / cs)),
	}
}

// CellToCanvas returns the top-left canvas corner of a cell.
func (r *Renderer) CellToCanvas(x, y int) (float64, float64) {
	cs := r.CellSize()
	return float64(x)*cs + r.view.OffsetX, float64(y)*cs + r.view.OffsetY
}

func (r *Renderer) VisibleRange() Range {
	return VisibleRange(r.view, r.width, r.height, r.layout)
}

// VisibleKeys lists the cells in the visible range that hold a post.
func (r *Renderer) VisibleKeys() grid.KeySet {
	keys := grid.NewKeySet()
	rng := r.VisibleRange()
	for y := rng.Y0; y <= rng.Y1; y++ {
		for x := rng.X0; x <= rng.X1; x++ {
			if _, ok := r.posts.Post(x, y); ok {
				keys.Add(grid.Key{X: x, Y: y})
			}
		}
	}
	return keys
}

func (r *Renderer) MarkDirty() {
	r.dirty.Store(true)
}

func (r *Renderer) Dirty() bool {
	return r.dirty.Load()
}

// Frame redraws the canvas if anything changed since the last frame and
// reports whether it did.
func (r *Renderer) Frame() bool {
	if !r.dirty.CompareAndSwap(true, false) {
		return false
	}
	r.draw()

	keys := r.VisibleKeys()
	for _, o := range r.observers {
		o.VisibleKeysChanged(keys)
		o.ViewChanged(r.view)
	}
	return true
}

func (r *Renderer) Image() image.Image {
	return r.dc.Image()
}

func (r *Renderer) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}

func (r *Renderer) draw() {
	dc := r.dc
	cs := r.CellSize()
	zoom := r.view.Zoom

	dc.ClearWithColor(gg.Hex(Background))

	rng := r.VisibleRange()
	for y := rng.Y0; y <= rng.Y1; y++ {
		for x := rng.X0; x <= rng.X1; x++ {
			post, ok := r.posts.Post(x, y)
			if !ok {
				continue
			}
			px, py := r.CellToCanvas(x, y)

			if buf := r.tiles.Image(x, y); buf != nil {
				dc.DrawImageEx(buf, gg.DrawImageOptions{
					X:             px,
					Y:             py,
					DstWidth:      cs,
					DstHeight:     cs,
					Interpolation: gg.InterpBilinear,
					Opacity:       1,
					BlendMode:     gg.BlendNormal,
				})
			} else {
				dc.SetHexColor(PlaceholderHex(x, y))
				dc.DrawRectangle(px, py, cs, cs)
				_ = dc.Fill()

				if r.tiles.IsLoading(x, y) {
					dc.SetRGBA(0, 0, 0, 0.3)
					dc.DrawRectangle(px, py, cs, cs)
					_ = dc.Fill()
				}
			}

			if zoom >= r.layout.GridLineZoom {
				dc.SetRGBA(0, 0, 0, 0.4)
				dc.SetLineWidth(0.5)
				dc.DrawRectangle(px, py, cs, cs)
				_ = dc.Stroke()
			}

			if zoom >= r.layout.LabelZoom {
				r.drawCaption(post, px, py, cs)
			}
		}
	}
}

func (r *Renderer) drawCaption(post grid.GridPost, px, py, cs float64) {
	caption := label.For(post.Description)
	if caption == "" {
		return
	}
	face := r.face(math.Max(8, math.Min(14, cs*0.12)))
	if face == nil {
		return
	}
	size := face.Size()
	dc := r.dc

	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(px, py+cs-size*1.6, cs, size*1.6)
	_ = dc.Fill()

	dc.SetHexColor("#ffffff")
	dc.SetFont(face)
	dc.DrawString(caption, px+2, py+cs-size*0.4)
}

// face caches one caption face per whole pixel size.
func (r *Renderer) face(size float64) text.Face {
	px := int(math.Round(size))
	if f, ok := r.faces[px]; ok {
		return f
	}
	src := captionSource()
	if src == nil {
		return nil
	}
	f := src.Face(float64(px))
	r.faces[px] = f
	return f
}
