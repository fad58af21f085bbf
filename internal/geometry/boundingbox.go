// Package geometry provides the immutable axis-aligned bounding box used
// to describe spatial extents. Coordinates are in centimeters, volumes in cm³.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrCornerSize is returned when a corner is constructed from a slice that
// does not have exactly three elements.
var ErrCornerSize = errors.New("corner must have exactly 3 elements")

// ErrUnknownAxis is returned when Width is asked about an axis tag outside x, y, z.
var ErrUnknownAxis = errors.New("unknown axis")

// Axis names one of the three coordinate axes.
type Axis string

// Axis constants
const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// ValidAxes contains all valid axis values
var ValidAxes = []Axis{AxisX, AxisY, AxisZ}

// ValidAxesString returns a comma-separated string of valid axes for error messages
func ValidAxesString() string {
	return "x, y, z"
}

// BoundingBox is an axis-aligned box described by its lower-left and
// upper-right corners. It is a plain value: operations never mutate a box,
// they return new ones, and two boxes compare equal with == when their
// corners match element-wise. No ordering between the corners is enforced;
// Volume and Width take absolute values, so swapped or degenerate corners
// are tolerated.
type BoundingBox struct {
	lowerLeft  r3.Vec
	upperRight r3.Vec
}

// New creates a bounding box from two corner coordinate slices. Each slice
// must have exactly three elements (x, y, z in cm); the values are copied,
// so the caller's slices can be reused afterwards. Corner values themselves
// are not range-checked.
func New(lowerLeft, upperRight []float64) (BoundingBox, error) {
	if len(lowerLeft) != 3 {
		return BoundingBox{}, fmt.Errorf("%w: lower_left has %d, want 3", ErrCornerSize, len(lowerLeft))
	}
	if len(upperRight) != 3 {
		return BoundingBox{}, fmt.Errorf("%w: upper_right has %d, want 3", ErrCornerSize, len(upperRight))
	}
	return BoundingBox{
		lowerLeft:  r3.Vec{X: lowerLeft[0], Y: lowerLeft[1], Z: lowerLeft[2]},
		upperRight: r3.Vec{X: upperRight[0], Y: upperRight[1], Z: upperRight[2]},
	}, nil
}

// NewFromVecs creates a bounding box directly from two corner vectors.
// The vector type fixes the length, so this cannot fail.
func NewFromVecs(lowerLeft, upperRight r3.Vec) BoundingBox {
	return BoundingBox{lowerLeft: lowerLeft, upperRight: upperRight}
}

// LowerLeft returns the lower-left corner.
func (b BoundingBox) LowerLeft() r3.Vec {
	return b.lowerLeft
}

// UpperRight returns the upper-right corner.
func (b BoundingBox) UpperRight() r3.Vec {
	return b.upperRight
}

// Corners returns both corners as a (lower-left, upper-right) pair.
func (b BoundingBox) Corners() (r3.Vec, r3.Vec) {
	return b.lowerLeft, b.upperRight
}

// Center returns the element-wise average of the two corners.
func (b BoundingBox) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.lowerLeft, b.upperRight))
}

// Volume returns the box volume in cm³. The absolute value is applied to
// the final edge product, so a box with swapped corners still reports a
// non-negative volume and a degenerate box reports 0.
func (b BoundingBox) Volume() float64 {
	d := r3.Sub(b.upperRight, b.lowerLeft)
	return math.Abs(d.X * d.Y * d.Z)
}

// Width returns the absolute extent of the box along the named axis.
// Axis tags outside x, y, z fail with ErrUnknownAxis; the box stays valid.
func (b BoundingBox) Width(axis Axis) (float64, error) {
	switch axis {
	case AxisX:
		return math.Abs(b.lowerLeft.X - b.upperRight.X), nil
	case AxisY:
		return math.Abs(b.lowerLeft.Y - b.upperRight.Y), nil
	case AxisZ:
		return math.Abs(b.lowerLeft.Z - b.upperRight.Z), nil
	default:
		return 0, fmt.Errorf("%w: %q (valid axes: %s)", ErrUnknownAxis, string(axis), ValidAxesString())
	}
}

// String renders the box for diagnostics. The layout is not a parsing contract.
func (b BoundingBox) String() string {
	return fmt.Sprintf("BoundingBox(lower_left=(%g, %g, %g), upper_right=(%g, %g, %g))",
		b.lowerLeft.X, b.lowerLeft.Y, b.lowerLeft.Z,
		b.upperRight.X, b.upperRight.Y, b.upperRight.Z)
}
