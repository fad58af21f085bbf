package geometry

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func mustNew(t *testing.T, ll, ur []float64) BoundingBox {
	t.Helper()
	box, err := New(ll, ur)
	if err != nil {
		t.Fatalf("New(%v, %v) returned error: %v", ll, ur, err)
	}
	return box
}

func TestNewCornerSize(t *testing.T) {
	tests := []struct {
		name string
		ll   []float64
		ur   []float64
	}{
		{"lower_left too short", []float64{0, 0}, []float64{1, 1, 1}},
		{"lower_left too long", []float64{0, 0, 0, 0}, []float64{1, 1, 1}},
		{"upper_right too short", []float64{0, 0, 0}, []float64{1, 1}},
		{"upper_right too long", []float64{0, 0, 0}, []float64{1, 1, 1, 1}},
		{"both empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box, err := New(tt.ll, tt.ur)
			if err == nil {
				t.Fatalf("New(%v, %v) succeeded, want error", tt.ll, tt.ur)
			}
			if !errors.Is(err, ErrCornerSize) {
				t.Errorf("New(%v, %v) error = %v, want ErrCornerSize", tt.ll, tt.ur, err)
			}
			if box != (BoundingBox{}) {
				t.Errorf("New(%v, %v) returned non-zero box %v on error", tt.ll, tt.ur, box)
			}
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	ll := []float64{-1, -2, -3}
	ur := []float64{1, 2, 3}
	box := mustNew(t, ll, ur)

	// Mutating the caller's slices must not reach inside the box.
	ll[0] = 99
	ur[2] = -99

	if got, want := box.LowerLeft(), (r3.Vec{X: -1, Y: -2, Z: -3}); got != want {
		t.Errorf("LowerLeft() = %v after input mutation, want %v", got, want)
	}
	if got, want := box.UpperRight(), (r3.Vec{X: 1, Y: 2, Z: 3}); got != want {
		t.Errorf("UpperRight() = %v after input mutation, want %v", got, want)
	}
}

func TestCenter(t *testing.T) {
	tests := []struct {
		name     string
		ll       []float64
		ur       []float64
		expected r3.Vec
	}{
		{"symmetric box", []float64{-1, -2, -3}, []float64{1, 2, 3}, r3.Vec{}},
		{"offset box", []float64{0, 0, 0}, []float64{5, 5, 5}, r3.Vec{X: 2.5, Y: 2.5, Z: 2.5}},
		{"degenerate box", []float64{0, 0, 0}, []float64{0, 0, 0}, r3.Vec{}},
		{"swapped corners", []float64{5, 5, 5}, []float64{0, 0, 0}, r3.Vec{X: 2.5, Y: 2.5, Z: 2.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := mustNew(t, tt.ll, tt.ur)
			if got := box.Center(); got != tt.expected {
				t.Errorf("Center() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestVolume(t *testing.T) {
	tests := []struct {
		name     string
		ll       []float64
		ur       []float64
		expected float64
	}{
		{"example box", []float64{-1, -2, -3}, []float64{1, 2, 3}, 48},
		{"unit cube", []float64{0, 0, 0}, []float64{1, 1, 1}, 1},
		{"swapped corners stay non-negative", []float64{5, 5, 5}, []float64{0, 0, 0}, 125},
		{"one axis swapped", []float64{0, 0, 5}, []float64{5, 5, 0}, 125},
		{"degenerate box", []float64{0, 0, 0}, []float64{0, 0, 0}, 0},
		{"flat box", []float64{0, 0, 0}, []float64{2, 3, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := mustNew(t, tt.ll, tt.ur)
			got := box.Volume()
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Volume() = %v, want %v", got, tt.expected)
			}
			if got < 0 {
				t.Errorf("Volume() = %v, must never be negative", got)
			}
		})
	}
}

func TestWidth(t *testing.T) {
	box := mustNew(t, []float64{-1, -2, -3}, []float64{1, 2, 3})

	tests := []struct {
		name     string
		axis     Axis
		expected float64
	}{
		{"x width", AxisX, 2},
		{"y width", AxisY, 4},
		{"z width", AxisZ, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := box.Width(tt.axis)
			if err != nil {
				t.Fatalf("Width(%q) returned error: %v", tt.axis, err)
			}
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Width(%q) = %v, want %v", tt.axis, got, tt.expected)
			}
		})
	}
}

func TestWidthUnknownAxis(t *testing.T) {
	box := mustNew(t, []float64{0, 0, 0}, []float64{1, 1, 1})

	for _, axis := range []Axis{"w", "X", "xy", ""} {
		t.Run(string(axis), func(t *testing.T) {
			_, err := box.Width(axis)
			if !errors.Is(err, ErrUnknownAxis) {
				t.Errorf("Width(%q) error = %v, want ErrUnknownAxis", axis, err)
			}
		})
	}

	// The box stays usable after a failed Width call.
	if got, err := box.Width(AxisX); err != nil || got != 1 {
		t.Errorf("Width(x) after failed call = %v, %v, want 1, nil", got, err)
	}
}

func TestWidthSwappedCorners(t *testing.T) {
	box := mustNew(t, []float64{5, 5, 5}, []float64{0, 0, 0})
	for _, axis := range ValidAxes {
		got, err := box.Width(axis)
		if err != nil {
			t.Fatalf("Width(%q) returned error: %v", axis, err)
		}
		if got != 5 {
			t.Errorf("Width(%q) = %v, want 5", axis, got)
		}
	}
}

func TestDegenerateBox(t *testing.T) {
	box := mustNew(t, []float64{0, 0, 0}, []float64{0, 0, 0})

	if got := box.Volume(); got != 0 {
		t.Errorf("Volume() = %v, want 0", got)
	}
	if got := box.Center(); got != (r3.Vec{}) {
		t.Errorf("Center() = %v, want origin", got)
	}
	for _, axis := range ValidAxes {
		if got, _ := box.Width(axis); got != 0 {
			t.Errorf("Width(%q) = %v, want 0", axis, got)
		}
	}
}

func TestEquality(t *testing.T) {
	a := mustNew(t, []float64{-1, -2, -3}, []float64{1, 2, 3})
	b := mustNew(t, []float64{-1, -2, -3}, []float64{1, 2, 3})
	c := mustNew(t, []float64{-1, -2, -3}, []float64{1, 2, 4})
	d := NewFromVecs(r3.Vec{X: -1, Y: -2, Z: -3}, r3.Vec{X: 1, Y: 2, Z: 3})

	if a != b {
		t.Errorf("boxes with identical corners compare unequal: %v != %v", a, b)
	}
	if a != d {
		t.Errorf("New and NewFromVecs with identical corners compare unequal: %v != %v", a, d)
	}
	if a == c {
		t.Errorf("boxes with different corners compare equal: %v == %v", a, c)
	}
}

func TestCorners(t *testing.T) {
	box := mustNew(t, []float64{-1, -2, -3}, []float64{1, 2, 3})
	ll, ur := box.Corners()
	if ll != box.LowerLeft() || ur != box.UpperRight() {
		t.Errorf("Corners() = %v, %v, want %v, %v", ll, ur, box.LowerLeft(), box.UpperRight())
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		ll       []float64
		ur       []float64
		expected string
	}{
		{
			"example box",
			[]float64{-1, -2, -3}, []float64{1, 2, 3},
			"BoundingBox(lower_left=(-1, -2, -3), upper_right=(1, 2, 3))",
		},
		{
			"fractional corners",
			[]float64{-0.5, 0, 0}, []float64{0.5, 10, 100},
			"BoundingBox(lower_left=(-0.5, 0, 0), upper_right=(0.5, 10, 100))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := mustNew(t, tt.ll, tt.ur)
			if got := box.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
