// Package table models the on-screen geometry of supported poker clients:
// named per-seat regions, layout variants, and the pixel-sample heuristic
// that picks a variant for a screenshot.
package table

import (
	"image"
	"image/draw"
)

// Region is a named rectangle within a table rendering, expressed against the
// layout's reference width. Scaling never mutates the reference baseline.
type Region struct {
	Label    string
	X        int
	Y        int
	Width    int
	Height   int
	RefWidth int
}

// ScaledTo returns a copy of the region with its geometry proportionally
// scaled to the target image width.
func (r Region) ScaledTo(targetWidth int) Region {
	if r.RefWidth <= 0 || targetWidth == r.RefWidth {
		return r
	}
	scale := float64(targetWidth) / float64(r.RefWidth)
	return Region{
		Label:    r.Label,
		X:        int(float64(r.X) * scale),
		Y:        int(float64(r.Y) * scale),
		Width:    int(float64(r.Width) * scale),
		Height:   int(float64(r.Height) * scale),
		RefWidth: r.RefWidth,
	}
}

// Crop extracts the region from the image, scaling the region to the image
// width first. The crop is clamped to the image bounds and returned as a
// fresh RGBA so callers can encode it independently of the source.
func (r Region) Crop(img image.Image) image.Image {
	bounds := img.Bounds()
	scaled := r.ScaledTo(bounds.Dx())
	rect := image.Rect(
		bounds.Min.X+scaled.X,
		bounds.Min.Y+scaled.Y,
		bounds.Min.X+scaled.X+scaled.Width,
		bounds.Min.Y+scaled.Y+scaled.Height,
	).Intersect(bounds)
	if rect.Empty() {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	crop := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(crop, crop.Bounds(), img, rect.Min, draw.Src)
	return crop
}
