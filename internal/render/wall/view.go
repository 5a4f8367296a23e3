package wall

import (
	"math"

	"github.com/glabrego/photowall-cli/internal/grid"
)

// View is the pan and zoom state. Offsets are canvas pixels added to a cell's
// world position; Zoom multiplies the base cell size.
type View struct {
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Zoom    float64 `json:"zoom"`
}

func InitialView(layout grid.Layout) View {
	return View{Zoom: layout.MinZoom}
}

// Range is an inclusive span of cells. It is empty when X0 > X1 or Y0 > Y1.
type Range struct {
	X0, Y0 int
	X1, Y1 int
}

func (r Range) Empty() bool {
	return r.X0 > r.X1 || r.Y0 > r.Y1
}

func (r Range) Contains(k grid.Key) bool {
	return k.X >= r.X0 && k.X <= r.X1 && k.Y >= r.Y0 && k.Y <= r.Y1
}

// VisibleRange covers a width×height canvas plus one cell on every side,
// clamped to the grid.
func VisibleRange(view View, width, height int, layout grid.Layout) Range {
	cs := layout.CellSize * view.Zoom
	return Range{
		X0: max(0, int(math.Floor(-view.OffsetX/cs))-1),
		Y0: max(0, int(math.Floor(-view.OffsetY/cs))-1),
		X1: min(layout.Cols-1, int(math.Ceil((float64(width)-view.OffsetX)/cs))+1),
		Y1: min(layout.Rows-1, int(math.Ceil((float64(height)-view.OffsetY)/cs))+1),
	}
}

// ZoomAt scales v about the canvas point (cx, cy) so the world point under
// it stays put. The resulting zoom is clamped to the layout's range.
func ZoomAt(v View, cx, cy, factor float64, layout grid.Layout) View {
	zoom := layout.ClampZoom(v.Zoom * factor)
	scale := zoom / v.Zoom
	return View{
		OffsetX: cx - scale*(cx-v.OffsetX),
		OffsetY: cy - scale*(cy-v.OffsetY),
		Zoom:    zoom,
	}
}

// Centered returns v moved so the centre of cell (x, y) sits in the middle of
// the canvas. Zoom is unchanged.
func Centered(v View, x, y, width, height int, layout grid.Layout) View {
	cs := layout.CellSize * v.Zoom
	v.OffsetX = float64(width)/2 - float64(x)*cs - cs/2
	v.OffsetY = float64(height)/2 - float64(y)*cs - cs/2
	return v
}
