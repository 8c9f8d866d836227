// Package termimg renders cover art for terminals that speak the kitty
// graphics protocol.
package termimg

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/dolmen-go/kittyimg"
)

// TerminalImage is an encoded picture and the number of cells it covers.
type TerminalImage struct {
	Cols int
	Rows int
	Data string
}

func (t TerminalImage) Empty() bool {
	return t.Data == ""
}

func cropToSquare(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	size := min(h, w)
	x0 := b.Min.X + (w-size)/2
	y0 := b.Min.Y + (h-size)/2
	rect := image.Rect(x0, y0, x0+size, y0+size)

	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return img
	}
	return sub.SubImage(rect)
}

// Encode decodes PNG or JPEG art, crops it to a centred square and
// encodes it for the terminal. Empty input gives an empty image.
func Encode(data []byte) (TerminalImage, error) {
	if len(data) == 0 {
		return TerminalImage{}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return TerminalImage{}, fmt.Errorf("decode artwork: %w", err)
	}
	square := cropToSquare(img)

	var w bytes.Buffer
	if err := kittyimg.Fprint(&w, square); err != nil {
		return TerminalImage{}, fmt.Errorf("encode artwork: %w", err)
	}

	size := square.Bounds().Dx()
	cellW, cellH := cellSize()
	return TerminalImage{
		Cols: cellsFor(size, cellW),
		Rows: cellsFor(size, cellH),
		Data: w.String(),
	}, nil
}

func cellsFor(px, cell int) int {
	if cell <= 0 {
		return 0
	}
	return (px + cell - 1) / cell
}
