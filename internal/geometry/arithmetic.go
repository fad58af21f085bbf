package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Infinite returns the box covering all of space, with corners at -inf and
// +inf. It is the identity for Union and absorbs nothing under Intersection.
func Infinite() BoundingBox {
	inf := math.Inf(1)
	return BoundingBox{
		lowerLeft:  r3.Vec{X: -inf, Y: -inf, Z: -inf},
		upperRight: r3.Vec{X: inf, Y: inf, Z: inf},
	}
}

// Union returns the smallest box covering both b and other: the element-wise
// minimum of the lower corners and maximum of the upper corners.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	return BoundingBox{
		lowerLeft:  minElem(b.lowerLeft, other.lowerLeft),
		upperRight: maxElem(b.upperRight, other.upperRight),
	}
}

// Intersection returns the overlap region of b and other: the element-wise
// maximum of the lower corners and minimum of the upper corners. When the
// boxes are disjoint the result has inverted corners, which the type
// tolerates (Volume and Width stay non-negative).
func (b BoundingBox) Intersection(other BoundingBox) BoundingBox {
	return BoundingBox{
		lowerLeft:  maxElem(b.lowerLeft, other.lowerLeft),
		upperRight: minElem(b.upperRight, other.upperRight),
	}
}

// Expand pads all six faces outward by padding cm. A negative padding shrinks
// the box.
func (b BoundingBox) Expand(padding float64) BoundingBox {
	pad := r3.Vec{X: padding, Y: padding, Z: padding}
	return BoundingBox{
		lowerLeft:  r3.Sub(b.lowerLeft, pad),
		upperRight: r3.Add(b.upperRight, pad),
	}
}

// Translate shifts both corners by the given vector.
func (b BoundingBox) Translate(shift r3.Vec) BoundingBox {
	return BoundingBox{
		lowerLeft:  r3.Add(b.lowerLeft, shift),
		upperRight: r3.Add(b.upperRight, shift),
	}
}

// Contains reports whether the point lies strictly inside the box.
// Points on a face are outside.
func (b BoundingBox) Contains(p r3.Vec) bool {
	return b.lowerLeft.X < p.X && p.X < b.upperRight.X &&
		b.lowerLeft.Y < p.Y && p.Y < b.upperRight.Y &&
		b.lowerLeft.Z < p.Z && p.Z < b.upperRight.Z
}

func minElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

func maxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}
