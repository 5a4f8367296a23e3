package minimap

import (
	"image/color"
	"math"
	"testing"

	"github.com/glabrego/photowall-cli/internal/grid"
	"github.com/glabrego/photowall-cli/internal/render/wall"
)

type fakeCounter int

func (c fakeCounter) Count() int { return int(c) }

type fakeCached []grid.Key

func (c fakeCached) CachedKeys() []grid.Key { return c }

func TestViewportRect_InitialView(t *testing.T) {
	layout := grid.DefaultLayout()
	x, y, w, h, ok := ViewportRect(wall.InitialView(layout), 800, 480, layout, Size)
	if !ok {
		t.Fatal("expected a visible rectangle")
	}
	// 800px at 160px per cell is 5 cells, 2px per cell on the minimap.
	if x != 0 || y != 0 || math.Abs(w-10) > 1e-9 || math.Abs(h-6) > 1e-9 {
		t.Fatalf("unexpected rect: %v %v %v %v", x, y, w, h)
	}
}

func TestViewportRect_ClipsToBounds(t *testing.T) {
	layout := grid.DefaultLayout()
	cs := layout.CellSize * layout.MinZoom

	// Canvas starts two cells left of the grid.
	v := wall.View{OffsetX: 2 * cs, OffsetY: 0, Zoom: layout.MinZoom}
	x, _, w, _, ok := ViewportRect(v, 800, 480, layout, Size)
	if !ok || x != 0 || math.Abs(w-6) > 1e-9 {
		t.Fatalf("expected left-clipped rect of width 6, got x=%v w=%v ok=%v", x, w, ok)
	}

	// Canvas ends past the bottom-right corner.
	v = wall.View{OffsetX: -97 * cs, OffsetY: -98 * cs, Zoom: layout.MinZoom}
	x, y, w, h, ok := ViewportRect(v, 800, 480, layout, Size)
	if !ok || math.Abs(x-194) > 1e-9 || math.Abs(y-196) > 1e-9 || math.Abs(x+w-Size) > 1e-9 || math.Abs(y+h-Size) > 1e-9 {
		t.Fatalf("unexpected clipped rect: %v %v %v %v", x, y, w, h)
	}

	v = wall.View{OffsetX: 1e7, Zoom: layout.MinZoom}
	if _, _, _, _, ok := ViewportRect(v, 800, 480, layout, Size); ok {
		t.Fatal("expected no rect when the view is off the grid")
	}
}

func rgba(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func TestDraw_CachedDotsOutshinePostDots(t *testing.T) {
	layout := grid.DefaultLayout()
	m := New(fakeCounter(250), fakeCached{{X: 10, Y: 1}}, layout)
	m.Draw(wall.View{OffsetX: -1e6, OffsetY: -1e6, Zoom: layout.MinZoom}, 800, 480)
	img := m.Image()

	if b := img.Bounds(); b.Dx() != Size || b.Dy() != Size {
		t.Fatalf("unexpected bounds: %v", b)
	}

	cached := rgba(img.At(21, 3))
	faint := rgba(img.At(41, 3))
	empty := rgba(img.At(150, 150))

	if cached.R < 190 {
		t.Fatalf("expected bright cached dot, got %v", cached)
	}
	if !(faint.R > empty.R && faint.R < cached.R) {
		t.Fatalf("expected faint post dot between background and cached: empty=%v faint=%v cached=%v", empty, faint, cached)
	}

	// (49,2) is the last placed post; (50,2) is empty.
	if got := rgba(img.At(101, 5)); got.R != empty.R {
		t.Fatalf("expected no dot past the last post, got %v", got)
	}
}
