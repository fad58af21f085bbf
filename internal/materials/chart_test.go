package materials

import (
	"math"
	"testing"
)

// Abundances must sum to 1 for every element in the chart, otherwise
// element expansion skews material compositions.
func TestChartAbundancesSumToOne(t *testing.T) {
	for symbol, isos := range naturalIsotopes {
		var sum float64
		for _, iso := range isos {
			sum += iso.Abundance
		}
		if math.Abs(sum-1.0) > 1e-6 {
			t.Errorf("element %s abundances sum to %v, want 1", symbol, sum)
		}
	}
}

func TestNaturalIsotopes(t *testing.T) {
	isos, err := NaturalIsotopes("H")
	if err != nil {
		t.Fatalf("NaturalIsotopes(H) returned error: %v", err)
	}
	if len(isos) != 2 {
		t.Fatalf("NaturalIsotopes(H) returned %d isotopes, want 2", len(isos))
	}

	// The returned slice is a copy.
	isos[0].Nuclide = "mutated"
	again, _ := NaturalIsotopes("H")
	if again[0].Nuclide != "H1" {
		t.Errorf("NaturalIsotopes returned aliased storage, chart entry became %q", again[0].Nuclide)
	}

	if _, err := NaturalIsotopes("Xx"); err == nil {
		t.Error("NaturalIsotopes(Xx) succeeded, want error")
	}
}

func TestAtomicMass(t *testing.T) {
	tests := []struct {
		nuclide  string
		expected float64
	}{
		{"H1", 1.00782503},
		{"O16", 15.99491462},
		{"U238", 238.05078840},
	}
	for _, tt := range tests {
		got, err := AtomicMass(tt.nuclide)
		if err != nil {
			t.Fatalf("AtomicMass(%s) returned error: %v", tt.nuclide, err)
		}
		if math.Abs(got-tt.expected) > 1e-6 {
			t.Errorf("AtomicMass(%s) = %v, want %v", tt.nuclide, got, tt.expected)
		}
	}

	if _, err := AtomicMass("Xx99"); err == nil {
		t.Error("AtomicMass(Xx99) succeeded, want error")
	}
}

func TestIsElement(t *testing.T) {
	if !IsElement("Fe") {
		t.Error("IsElement(Fe) = false, want true")
	}
	if IsElement("Fe56") {
		t.Error("IsElement(Fe56) = true, want false")
	}
}
