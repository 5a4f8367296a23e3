package grid

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/glabrego/photowall-cli/internal/postapi"
)

const (
	Cols          = 100
	Rows          = 100
	BaseCellSize  = 64.0
	MinZoom       = 2.5
	MaxZoom       = 10.0
	MaxConcurrent = 6
	PageSize      = 100
)

// Layout describes the grid geometry and the zoom range the renderer works in.
type Layout struct {
	Cols         int
	Rows         int
	CellSize     float64
	MinZoom      float64
	MaxZoom      float64
	GridLineZoom float64
	LabelZoom    float64
}

func DefaultLayout() Layout {
	return Layout{
		Cols:         Cols,
		Rows:         Rows,
		CellSize:     BaseCellSize,
		MinZoom:      MinZoom,
		MaxZoom:      MaxZoom,
		GridLineZoom: 3,
		LabelZoom:    5,
	}
}

func (l Layout) Capacity() int {
	return l.Cols * l.Rows
}

// KeyForIndex maps an arrival index to its row-major cell.
func (l Layout) KeyForIndex(i int) (Key, bool) {
	if i < 0 || i >= l.Capacity() {
		return Key{}, false
	}
	return Key{X: i % l.Cols, Y: i / l.Cols}, true
}

func (l Layout) Contains(k Key) bool {
	return k.X >= 0 && k.X < l.Cols && k.Y >= 0 && k.Y < l.Rows
}

func (l Layout) ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return l.MinZoom
	}
	return math.Max(l.MinZoom, math.Min(l.MaxZoom, z))
}

// Key addresses one grid cell.
type Key struct {
	X int
	Y int
}

func (k Key) String() string {
	return strconv.Itoa(k.X) + "," + strconv.Itoa(k.Y)
}

// ParseKey parses an "x,y" cell address. Surrounding spaces are allowed.
func ParseKey(s string) (Key, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Key{}, false
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Key{}, false
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Key{}, false
	}
	return Key{X: x, Y: y}, true
}

type KeySet map[Key]struct{}

func NewKeySet(keys ...Key) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s KeySet) Add(k Key) {
	s[k] = struct{}{}
}

func (s KeySet) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

func (s KeySet) Len() int {
	return len(s)
}

// Keys returns the members in row-major order.
func (s KeySet) Keys() []Key {
	out := make([]Key, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func (s KeySet) Equal(other KeySet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// GridPost is a post placed on the wall.
type GridPost struct {
	postapi.Post
	GridX int
	GridY int
}

func (p GridPost) Key() Key {
	return Key{X: p.GridX, Y: p.GridY}
}
