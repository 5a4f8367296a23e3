package view

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	xdraw "golang.org/x/image/draw"
)

const (
	halfBlock     = "▀"
	resetSGR      = "\x1b[0m"
	minimapMargin = 16
)

// EncodeHalfBlocks renders img as terminal lines. Every glyph stands for a
// scale by 2*scale block of pixels: the upper half's average colour is the
// foreground of '▀' and the lower half's is the background.
func EncodeHalfBlocks(img image.Image, scale int) []string {
	if img == nil {
		return nil
	}
	if scale < 1 {
		scale = 1
	}
	src := toRGBA(img)
	b := src.Bounds()
	cols := b.Dx() / scale
	rows := b.Dy() / scale
	if cols == 0 || rows == 0 {
		return nil
	}

	lines := make([]string, 0, (rows+1)/2)
	var sb strings.Builder
	for r := 0; r < rows; r += 2 {
		sb.Reset()
		var fg, bg color.RGBA
		for c := 0; c < cols; c++ {
			x := b.Min.X + c*scale
			top := blockAverage(src, x, b.Min.Y+r*scale, scale)
			bottom := top
			if r+1 < rows {
				bottom = blockAverage(src, x, b.Min.Y+(r+1)*scale, scale)
			}
			if c == 0 || top != fg {
				fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm", top.R, top.G, top.B)
				fg = top
			}
			if c == 0 || bottom != bg {
				fmt.Fprintf(&sb, "\x1b[48;2;%d;%d;%dm", bottom.R, bottom.G, bottom.B)
				bg = bottom
			}
			sb.WriteString(halfBlock)
		}
		sb.WriteString(resetSGR)
		lines = append(lines, sb.String())
	}
	return lines
}

// Compose copies the wall into a fresh image and, when minimap is not nil,
// scales it into the bottom-right corner.
func Compose(wallImg, minimap image.Image) *image.RGBA {
	b := wallImg.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, wallImg, b, xdraw.Src, nil)
	if minimap == nil {
		return dst
	}

	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	size := min(w, h) * 2 / 5
	if mb := minimap.Bounds(); size > mb.Dx() {
		size = mb.Dx()
	}
	if size < 8 || size+2*minimapMargin > min(w, h) {
		return dst
	}
	rect := image.Rect(w-size-minimapMargin, h-size-minimapMargin, w-minimapMargin, h-minimapMargin)
	xdraw.ApproxBiLinear.Scale(dst, rect, minimap, minimap.Bounds(), xdraw.Over, nil)
	return dst
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(b)
	xdraw.Draw(dst, b, img, b.Min, xdraw.Src)
	return dst
}

func blockAverage(img *image.RGBA, x0, y0, size int) color.RGBA {
	var r, g, b, n uint32
	bounds := img.Bounds()
	for y := y0; y < y0+size && y < bounds.Max.Y; y++ {
		i := img.PixOffset(x0, y)
		for x := x0; x < x0+size && x < bounds.Max.X; x++ {
			r += uint32(img.Pix[i])
			g += uint32(img.Pix[i+1])
			b += uint32(img.Pix[i+2])
			n++
			i += 4
		}
	}
	if n == 0 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: 255}
}
