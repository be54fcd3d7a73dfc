package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrInvalidRegion is returned for an unknown region name or a rectangle that
// does not fit the image.
var ErrInvalidRegion = errors.New("invalid region")

// Region is a pixel rectangle. X2 and Y2 are exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// RegionNames lists the names accepted by NamedRegion.
var RegionNames = []string{
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

// NamedRegion resolves a region name against a width×height image.
//
// Halves and quadrants split at width/2 and height/2, so the right and bottom
// parts get the extra column or row of odd dimensions. "center" is the middle
// 50% of each axis.
func NamedRegion(name string, width, height int) (Region, error) {
	midX := width / 2
	midY := height / 2

	var r Region
	switch name {
	case "top-left":
		r = Region{0, 0, midX, midY}
	case "top-right":
		r = Region{midX, 0, width, midY}
	case "bottom-left":
		r = Region{0, midY, midX, height}
	case "bottom-right":
		r = Region{midX, midY, width, height}
	case "top-half":
		r = Region{0, 0, width, midY}
	case "bottom-half":
		r = Region{0, midY, width, height}
	case "left-half":
		r = Region{0, 0, midX, height}
	case "right-half":
		r = Region{midX, 0, width, height}
	case "center":
		qW := width / 4
		qH := height / 4
		r = Region{qW, qH, width - qW, height - qH}
	default:
		return Region{}, fmt.Errorf("%w: unknown region %q", ErrInvalidRegion, name)
	}
	return r, nil
}

// Crop returns the part of d inside r as a new Decoded image. The source grid
// is not modified.
func Crop(d *Decoded, r Region) (*Decoded, error) {
	w, h := d.Grid.Width, d.Grid.Height
	if r.X1 < 0 || r.Y1 < 0 || r.X2 > w || r.Y2 > h {
		return nil, fmt.Errorf("%w: (%d,%d)-(%d,%d) outside image bounds %dx%d",
			ErrInvalidRegion, r.X1, r.Y1, r.X2, r.Y2, w, h)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, fmt.Errorf("%w: (%d,%d)-(%d,%d) is empty", ErrInvalidRegion, r.X1, r.Y1, r.X2, r.Y2)
	}

	src := &image.NRGBA{
		Pix:    d.Grid.Pix,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	}
	cropped := imaging.Crop(src, image.Rect(r.X1, r.Y1, r.X2, r.Y2))

	return FromImage(cropped, d.Format), nil
}
