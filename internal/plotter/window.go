package plotter

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/fusion-energy/neutronics.report/internal/geometry"
)

// ErrUnknownBasis is returned for a slice basis other than xy, xz or yz.
var ErrUnknownBasis = errors.New("unknown slice basis")

// ErrUnboundedExtent is returned when a slice window is requested for a box
// that is infinite on one of the in-plane axes.
var ErrUnboundedExtent = errors.New("extent is unbounded")

// Basis2D names the pair of axes spanning a slice plane.
type Basis2D string

const (
	BasisXY Basis2D = "xy"
	BasisXZ Basis2D = "xz"
	BasisYZ Basis2D = "yz"
)

// ValidBases lists the supported slice bases.
var ValidBases = []Basis2D{BasisXY, BasisXZ, BasisYZ}

// ValidBasesString returns the supported bases as a comma-separated string.
func ValidBasesString() string {
	names := make([]string, len(ValidBases))
	for i, b := range ValidBases {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}

// PlotWindow is a 2-D slice view derived from a bounding box: centered on
// the box, sized by the box's widths on the two in-plane axes.
type PlotWindow struct {
	OriginCm [3]float64 `json:"origin_cm"`
	WidthCm  float64    `json:"width_cm"`
	HeightCm float64    `json:"height_cm"`
	Basis    Basis2D    `json:"basis"`
}

// SliceWindow derives the plot window of a bounding box for the given
// basis. The origin is the box center; width and height are the box widths
// on the basis axes (xy → x/y, xz → x/z, yz → y/z).
func SliceWindow(box geometry.BoundingBox, basis Basis2D) (PlotWindow, error) {
	var wAxis, hAxis geometry.Axis
	switch basis {
	case BasisXY:
		wAxis, hAxis = geometry.AxisX, geometry.AxisY
	case BasisXZ:
		wAxis, hAxis = geometry.AxisX, geometry.AxisZ
	case BasisYZ:
		wAxis, hAxis = geometry.AxisY, geometry.AxisZ
	default:
		return PlotWindow{}, fmt.Errorf("%w: %q (valid bases: %s)", ErrUnknownBasis, string(basis), ValidBasesString())
	}

	width, err := box.Width(wAxis)
	if err != nil {
		return PlotWindow{}, err
	}
	height, err := box.Width(hAxis)
	if err != nil {
		return PlotWindow{}, err
	}
	if math.IsInf(width, 0) || math.IsInf(height, 0) {
		return PlotWindow{}, fmt.Errorf("%w on basis %s", ErrUnboundedExtent, basis)
	}

	center := box.Center()
	return PlotWindow{
		// Axes the box does not bound have no finite midpoint; the slice
		// passes through zero there.
		OriginCm: [3]float64{finiteOrZero(center.X), finiteOrZero(center.Y), finiteOrZero(center.Z)},
		WidthCm:  width,
		HeightCm: height,
		Basis:    basis,
	}, nil
}

func finiteOrZero(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}
