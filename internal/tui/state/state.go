package state

import (
	"github.com/glabrego/photowall-cli/internal/render/wall"
)

const (
	// HUDLines sit above the wall; the progress, message and toolbar lines
	// sit below it.
	HUDLines    = 1
	ChromeLines = HUDLines + 3

	DefaultScale = 8
	MaxScale     = 32
)

func ClampScale(scale int) int {
	if scale < 1 {
		return DefaultScale
	}
	if scale > MaxScale {
		return MaxScale
	}
	return scale
}

// CanvasRows is the number of terminal rows the wall occupies.
func CanvasRows(height int) int {
	rows := height - ChromeLines
	if rows < 1 {
		return 1
	}
	return rows
}

// CanvasSize converts a terminal size to canvas pixels. One terminal cell
// shows a scale by 2*scale block of canvas as a single half-block glyph.
func CanvasSize(width, height, scale int) (int, int) {
	scale = ClampScale(scale)
	if width < 1 {
		width = 1
	}
	return width * scale, CanvasRows(height) * 2 * scale
}

// CanvasPoint maps a terminal cell to the canvas pixel at its centre. Cells
// outside the wall rows report false.
func CanvasPoint(col, row, width, height, scale int) (wall.Point, bool) {
	scale = ClampScale(scale)
	r := row - HUDLines
	if col < 0 || col >= width || r < 0 || r >= CanvasRows(height) {
		return wall.Point{}, false
	}
	return wall.Point{
		X: float64(col*scale) + float64(scale)/2,
		Y: float64(r*2*scale) + float64(scale),
	}, true
}

// ProgressWidth sizes the viewport progress bar for a terminal width.
func ProgressWidth(width int) int {
	w := width / 3
	if w < 10 {
		return 10
	}
	if w > 40 {
		return 40
	}
	return w
}
