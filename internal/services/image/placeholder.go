package image

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// Placeholder renders a soft blue PNG for when the local model cannot
// produce an image. A bordered white label box marks where generated art
// would sit so report layouts stay intact.
func Placeholder(width, height int) ([]byte, error) {
	if width <= 0 {
		width = 512
	}
	if height <= 0 {
		height = 512
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Vertical gradient from #E8F4F8 toward white.
	for y := 0; y < height; y++ {
		r := uint8(232 + (255-232)*y/height)
		row := color.RGBA{R: r, G: 244, B: 248, A: 255}
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, row)
		}
	}

	// Centered label box with a steel blue border.
	boxW := width * 3 / 4
	boxH := height / 5
	x0 := (width - boxW) / 2
	y0 := (height - boxH) / 2
	border := color.RGBA{R: 70, G: 130, B: 180, A: 255}
	fill := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	for y := y0; y < y0+boxH; y++ {
		for x := x0; x < x0+boxW; x++ {
			onEdge := y < y0+2 || y >= y0+boxH-2 || x < x0+2 || x >= x0+boxW-2
			if onEdge {
				img.SetRGBA(x, y, border)
			} else {
				img.SetRGBA(x, y, fill)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}
