package view

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"
)

func filled(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func TestEncodeHalfBlocks_Dimensions(t *testing.T) {
	img := filled(16, 16, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	lines := EncodeHalfBlocks(img, 2)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if got := strings.Count(line, halfBlock); got != 8 {
			t.Fatalf("line %d: expected 8 glyphs, got %d", i, got)
		}
		if !strings.HasSuffix(line, resetSGR) {
			t.Fatalf("line %d: expected trailing reset, got %q", i, line)
		}
	}
}

func TestEncodeHalfBlocks_UniformRowEmitsColoursOnce(t *testing.T) {
	img := filled(8, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	lines := EncodeHalfBlocks(img, 1)
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if got := strings.Count(lines[0], "\x1b[38;2;10;20;30m"); got != 1 {
		t.Fatalf("expected one foreground escape, got %d in %q", got, lines[0])
	}
	if got := strings.Count(lines[0], "\x1b[48;2;10;20;30m"); got != 1 {
		t.Fatalf("expected one background escape, got %d in %q", got, lines[0])
	}
}

func TestEncodeHalfBlocks_TopAndBottomHalves(t *testing.T) {
	img := filled(2, 4, color.RGBA{R: 255, A: 255})
	draw.Draw(img, image.Rect(0, 2, 2, 4), &image.Uniform{C: color.RGBA{B: 255, A: 255}}, image.Point{}, draw.Src)

	lines := EncodeHalfBlocks(img, 2)
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	want := "\x1b[38;2;255;0;0m\x1b[48;2;0;0;255m" + halfBlock + resetSGR
	if lines[0] != want {
		t.Fatalf("unexpected line: %q", lines[0])
	}
}

func TestEncodeHalfBlocks_AveragesBlocks(t *testing.T) {
	img := filled(2, 2, color.RGBA{A: 255})
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	img.Set(1, 1, color.RGBA{R: 200, A: 255})

	lines := EncodeHalfBlocks(img, 2)
	if len(lines) != 1 || !strings.Contains(lines[0], "\x1b[38;2;100;0;0m") {
		t.Fatalf("expected averaged red, got %q", lines)
	}
}

func TestEncodeHalfBlocks_OddRowCountAndTinyImages(t *testing.T) {
	lines := EncodeHalfBlocks(filled(4, 3, color.RGBA{G: 80, A: 255}), 1)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines for 3 pixel rows, got %d", len(lines))
	}
	if got := EncodeHalfBlocks(filled(1, 1, color.RGBA{}), 4); got != nil {
		t.Fatalf("expected nothing for an image smaller than one block, got %q", got)
	}
	if got := EncodeHalfBlocks(nil, 1); got != nil {
		t.Fatal("expected nil for nil image")
	}
}

func TestCompose_PlacesMinimapBottomRight(t *testing.T) {
	wallImg := filled(400, 300, color.RGBA{R: 26, G: 16, B: 8, A: 255})
	mini := filled(200, 200, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	out := Compose(wallImg, mini)
	if out.Bounds().Dx() != 400 || out.Bounds().Dy() != 300 {
		t.Fatalf("unexpected bounds: %v", out.Bounds())
	}
	if got := out.RGBAAt(5, 5); got.R != 26 {
		t.Fatalf("expected wall pixel in top-left, got %+v", got)
	}
	// size = 300*2/5 = 120, so the minimap spans x 264..384, y 164..284.
	if got := out.RGBAAt(320, 220); got.R != 255 || got.G != 255 {
		t.Fatalf("expected minimap pixel, got %+v", got)
	}
	if got := out.RGBAAt(395, 295); got.R != 26 {
		t.Fatalf("expected margin to show the wall, got %+v", got)
	}
	if wallImg.RGBAAt(320, 220).R != 26 {
		t.Fatal("expected the source wall image to stay untouched")
	}
}

func TestCompose_WithoutMinimap(t *testing.T) {
	wallImg := filled(40, 30, color.RGBA{R: 1, A: 255})
	out := Compose(wallImg, nil)
	if out == wallImg || out.RGBAAt(10, 10).R != 1 {
		t.Fatal("expected a copy of the wall")
	}
}
