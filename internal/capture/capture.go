// Package capture grabs the screen as an inline image for image queries.
package capture

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"

	"github.com/kbinani/screenshot"
)

// MaxWidth is the widest image sent to the model; wider captures are scaled down.
const MaxWidth = 1280

var ErrNoDisplay = errors.New("no active display to capture")

// Screen captures every active display into one image and returns it as a
// PNG data URL.
func Screen() (string, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return "", ErrNoDisplay
	}

	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}

	canvas := image.NewRGBA(union)
	captured := 0
	for i := 0; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		img, err := screenshot.CaptureRect(b)
		if err != nil {
			continue
		}
		draw.Draw(canvas, b, img, img.Bounds().Min, draw.Src)
		captured++
	}
	if captured == 0 {
		return "", fmt.Errorf("capture failed on all %d display(s)", n)
	}

	return EncodeDataURL(Fit(canvas, MaxWidth))
}

// Fit scales src down to maxWidth, keeping its aspect ratio.
func Fit(src image.Image, maxWidth int) image.Image {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if maxWidth <= 0 || w <= maxWidth {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	newH := int(math.Round(float64(h) * scale))
	if newH <= 0 {
		newH = 1
	}
	return resizeNearest(src, maxWidth, newH)
}

// EncodeDataURL encodes img as a PNG data URL.
func EncodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func resizeNearest(src image.Image, width int, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	srcBounds := src.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()
	if srcW == 0 || srcH == 0 {
		return dst
	}

	for y := 0; y < height; y++ {
		srcY := srcBounds.Min.Y + y*srcH/height
		for x := 0; x < width; x++ {
			srcX := srcBounds.Min.X + x*srcW/width
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}
	return dst
}
