package table

import (
	"image"
	"image/color"
)

// Position labels shared by the seat-mapping configuration.
const (
	PositionTop         = "top"
	PositionTopLeft     = "top_left"
	PositionTopRight    = "top_right"
	PositionLeft        = "left"
	PositionRight       = "right"
	PositionBottom      = "bottom"
	PositionBottomLeft  = "bottom_left"
	PositionBottomRight = "bottom_right"
)

// HeaderLabel names the region carrying the hand identifier banner. It is
// cropped alongside the seat regions but never resolves to a seat.
const HeaderLabel = "hand_header"

// DefaultTolerance is the per-channel color tolerance used by layout
// detection when the caller does not override it.
const DefaultTolerance = 30

const (
	ggpokerRefWidth  = 793
	natural8RefWidth = 960

	seatBoxWidth  = 125
	seatBoxHeight = 25
)

// Layout is one table rendering variant: an ordered set of regions unique by
// label, plus the diagnostic pixel used to recognize the variant.
type Layout struct {
	Name           string
	Regions        []Region
	detectionPixel image.Point
	detectionColor color.RGBA
}

// SeatRegions returns the regions that map to seats, excluding the header.
func (l Layout) SeatRegions() []Region {
	seats := make([]Region, 0, len(l.Regions))
	for _, region := range l.Regions {
		if region.Label != HeaderLabel {
			seats = append(seats, region)
		}
	}
	return seats
}

// Header returns the hand-header region and whether the layout defines one.
func (l Layout) Header() (Region, bool) {
	for _, region := range l.Regions {
		if region.Label == HeaderLabel {
			return region, true
		}
	}
	return Region{}, false
}

func ggpokerRegion(label string, x, y int) Region {
	return Region{Label: label, X: x, Y: y, Width: seatBoxWidth, Height: seatBoxHeight, RefWidth: ggpokerRefWidth}
}

func natural8Region(label string, x, y int) Region {
	return Region{Label: label, X: x, Y: y, Width: seatBoxWidth, Height: seatBoxHeight, RefWidth: natural8RefWidth}
}

// GGPoker is the six-seat GGPoker client layout.
var GGPoker = Layout{
	Name: "ggpoker",
	Regions: []Region{
		{Label: HeaderLabel, X: 10, Y: 8, Width: 280, Height: 20, RefWidth: ggpokerRefWidth},
		ggpokerRegion(PositionTop, 347, 152),
		ggpokerRegion(PositionTopLeft, 29, 234),
		ggpokerRegion(PositionTopRight, 666, 234),
		ggpokerRegion(PositionBottomLeft, 29, 459),
		ggpokerRegion(PositionBottom, 347, 565),
		ggpokerRegion(PositionBottomRight, 666, 459),
	},
	detectionPixel: image.Pt(702, 64),
	detectionColor: color.RGBA{R: 219, G: 15, B: 6, A: 255},
}

// Natural8 is the five-seat Natural8 client layout.
var Natural8 = Layout{
	Name: "natural8",
	Regions: []Region{
		{Label: HeaderLabel, X: 12, Y: 10, Width: 300, Height: 22, RefWidth: natural8RefWidth},
		natural8Region(PositionTopLeft, 118, 196),
		natural8Region(PositionTopRight, 716, 196),
		natural8Region(PositionLeft, 38, 388),
		natural8Region(PositionRight, 797, 388),
		natural8Region(PositionBottom, 418, 596),
	},
	detectionPixel: image.Pt(880, 72),
	detectionColor: color.RGBA{R: 140, G: 39, B: 145, A: 255},
}

// layouts are probed in order; the last entry doubles as the fallback.
var layouts = []Layout{GGPoker, Natural8}

// DetectLayout picks the layout variant for a screenshot by sampling each
// variant's diagnostic pixel and comparing it to the reference color within a
// per-channel tolerance. Detection is total: when nothing matches it falls
// back to the Natural8 layout rather than failing the pipeline.
func DetectLayout(img image.Image, tolerance int) Layout {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	for _, layout := range layouts {
		if layout.matches(img, tolerance) {
			return layout
		}
	}
	return Natural8
}

func (l Layout) matches(img image.Image, tolerance int) bool {
	refWidth := l.referenceWidth()
	if refWidth <= 0 {
		return false
	}
	bounds := img.Bounds()
	scale := float64(bounds.Dx()) / float64(refWidth)
	x := bounds.Min.X + int(float64(l.detectionPixel.X)*scale)
	y := bounds.Min.Y + int(float64(l.detectionPixel.Y)*scale)
	if !image.Pt(x, y).In(bounds) {
		return false
	}
	sampled := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
	return withinTolerance(sampled.R, l.detectionColor.R, tolerance) &&
		withinTolerance(sampled.G, l.detectionColor.G, tolerance) &&
		withinTolerance(sampled.B, l.detectionColor.B, tolerance)
}

func (l Layout) referenceWidth() int {
	if len(l.Regions) == 0 {
		return 0
	}
	return l.Regions[0].RefWidth
}

func withinTolerance(a, b uint8, tolerance int) bool {
	diff := int(a) - int(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
