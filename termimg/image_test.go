package termimg

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestEncodeEmpty(t *testing.T) {
	img, err := Encode(nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !img.Empty() {
		t.Fatalf("expected empty image")
	}
}

func TestEncodeGarbage(t *testing.T) {
	if _, err := Encode([]byte("not a picture")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestEncodeKittySequence(t *testing.T) {
	img, err := Encode(encodePNG(t, 8, 4))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(img.Data, "\x1b_G") {
		t.Fatalf("expected kitty graphics escape, got %q", img.Data[:min(len(img.Data), 8)])
	}
}

func TestCropToSquare(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 4))
	b := cropToSquare(img).Bounds()
	if b.Dx() != 4 || b.Dy() != 4 || b.Min.X != 3 {
		t.Fatalf("unexpected crop: %v", b)
	}
}

func TestCellsFor(t *testing.T) {
	if got := cellsFor(100, 0); got != 0 {
		t.Fatalf("unknown cell size should give 0, got %d", got)
	}
	if got := cellsFor(100, 9); got != 12 {
		t.Fatalf("expected rounding up, got %d", got)
	}
}
