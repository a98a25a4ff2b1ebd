package table_test

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"unveil/internal/table"
)

func TestScaledToIsLinear(t *testing.T) {
	region := table.Region{Label: "top", X: 347, Y: 152, Width: 125, Height: 25, RefWidth: 793}

	base := region.ScaledTo(793)
	if base != region {
		t.Fatalf("scaling to the reference width must be the identity, got %+v", base)
	}

	doubled := region.ScaledTo(2 * 793)
	if doubled.X != 2*region.X || doubled.Y != 2*region.Y {
		t.Fatalf("expected doubled origin, got %+v", doubled)
	}
	if doubled.Width != 2*region.Width || doubled.Height != 2*region.Height {
		t.Fatalf("expected doubled size, got %+v", doubled)
	}
	if doubled.RefWidth != region.RefWidth {
		t.Fatalf("scaling must not touch the reference width, got %d", doubled.RefWidth)
	}
}

func paintedScreen(width, height int, at image.Point, fill color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 20, G: 20, B: 20, A: 255}), image.Point{}, draw.Src)
	img.SetRGBA(at.X, at.Y, fill)
	return img
}

func TestDetectLayoutGGPoker(t *testing.T) {
	img := paintedScreen(793, 600, image.Pt(702, 64), color.RGBA{R: 219, G: 15, B: 6, A: 255})
	if got := table.DetectLayout(img, 0); got.Name != "ggpoker" {
		t.Fatalf("expected ggpoker layout, got %q", got.Name)
	}
}

func TestDetectLayoutNatural8(t *testing.T) {
	img := paintedScreen(960, 700, image.Pt(880, 72), color.RGBA{R: 140, G: 39, B: 145, A: 255})
	if got := table.DetectLayout(img, 0); got.Name != "natural8" {
		t.Fatalf("expected natural8 layout, got %q", got.Name)
	}
}

func TestDetectLayoutToleratesNearbyColors(t *testing.T) {
	img := paintedScreen(793, 600, image.Pt(702, 64), color.RGBA{R: 200, G: 30, B: 20, A: 255})
	if got := table.DetectLayout(img, 30); got.Name != "ggpoker" {
		t.Fatalf("expected near-reference color to match ggpoker, got %q", got.Name)
	}
}

func TestDetectLayoutFallsBackWhenNothingMatches(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	if got := table.DetectLayout(img, 0); got.Name != "natural8" {
		t.Fatalf("expected fallback layout, got %q", got.Name)
	}
}

func TestCropClampsToBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 793, 600))
	region := table.Region{Label: "bottom", X: 700, Y: 560, Width: 125, Height: 60, RefWidth: 793}
	crop := region.Crop(img)
	bounds := crop.Bounds()
	if bounds.Dx() != 93 || bounds.Dy() != 40 {
		t.Fatalf("expected crop clamped to 93x40, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestSeatRegionsExcludeHeader(t *testing.T) {
	for _, region := range table.GGPoker.SeatRegions() {
		if region.Label == table.HeaderLabel {
			t.Fatal("seat regions must not include the header")
		}
	}
	if _, ok := table.GGPoker.Header(); !ok {
		t.Fatal("expected ggpoker layout to define a header region")
	}
}
