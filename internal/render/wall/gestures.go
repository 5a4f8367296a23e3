package wall

import "math"

// WheelStep is the zoom factor applied per wheel notch.
const WheelStep = 1.1

type Point struct {
	X, Y float64
}

// Navigator is what gestures drive.
type Navigator interface {
	PanBy(dx, dy float64)
	ZoomAt(cx, cy, factor float64)
}

// Gestures turns pointer, wheel and touch input into pan and zoom calls.
// Coordinates are canvas pixels.
type Gestures struct {
	nav       Navigator
	panning   bool
	last      Point
	pinchDist float64
}

func NewGestures(nav Navigator) *Gestures {
	return &Gestures{nav: nav}
}

func (g *Gestures) Panning() bool {
	return g.panning
}

func (g *Gestures) PointerDown(p Point) {
	g.panning = true
	g.last = p
}

func (g *Gestures) PointerMove(p Point) {
	if !g.panning {
		return
	}
	g.nav.PanBy(p.X-g.last.X, p.Y-g.last.Y)
	g.last = p
}

func (g *Gestures) PointerUp() {
	g.panning = false
}

func (g *Gestures) PointerLeave() {
	g.panning = false
}

// Wheel zooms about p: scrolling up (negative delta) zooms in.
func (g *Gestures) Wheel(p Point, deltaY float64) {
	switch {
	case deltaY < 0:
		g.nav.ZoomAt(p.X, p.Y, WheelStep)
	case deltaY > 0:
		g.nav.ZoomAt(p.X, p.Y, 1/WheelStep)
	}
}

func (g *Gestures) TouchStart(touches []Point) {
	switch len(touches) {
	case 1:
		g.panning = true
		g.last = touches[0]
	case 2:
		g.panning = false
		g.pinchDist = distance(touches[0], touches[1])
	}
}

// TouchMove pans with one finger and pinch-zooms about the midpoint with two.
func (g *Gestures) TouchMove(touches []Point) {
	switch {
	case len(touches) == 1 && g.panning:
		g.nav.PanBy(touches[0].X-g.last.X, touches[0].Y-g.last.Y)
		g.last = touches[0]
	case len(touches) == 2:
		dist := distance(touches[0], touches[1])
		if g.pinchDist > 0 {
			cx := (touches[0].X + touches[1].X) / 2
			cy := (touches[0].Y + touches[1].Y) / 2
			g.nav.ZoomAt(cx, cy, dist/g.pinchDist)
		}
		g.pinchDist = dist
	}
}

func (g *Gestures) TouchEnd() {
	g.panning = false
	g.pinchDist = 0
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
