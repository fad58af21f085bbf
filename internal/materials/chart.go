package materials

import (
	"errors"
	"fmt"
)

// ErrUnknownElement is returned when an element symbol is not in the chart.
var ErrUnknownElement = errors.New("unknown element")

// ErrUnknownNuclide is returned when a nuclide name is not in the chart.
var ErrUnknownNuclide = errors.New("unknown nuclide")

// Isotope is one naturally occurring isotope of an element.
type Isotope struct {
	Nuclide   string
	Abundance float64 // atom fraction of the natural element
	MassAMU   float64
}

// naturalIsotopes is a compact chart of the elements the bundled library
// covers. Abundances are atom fractions and sum to 1 per element; masses
// are in amu. Source values match the evaluated nuclear data conventions
// (abundances rounded to the published significant figures).
var naturalIsotopes = map[string][]Isotope{
	"H": {
		{"H1", 0.999885, 1.00782503},
		{"H2", 0.000115, 2.01410178},
	},
	"Li": {
		{"Li6", 0.0759, 6.01512289},
		{"Li7", 0.9241, 7.01600344},
	},
	"Be": {
		{"Be9", 1.0, 9.01218307},
	},
	"B": {
		{"B10", 0.199, 10.01293695},
		{"B11", 0.801, 11.00930536},
	},
	"C": {
		{"C12", 0.9893, 12.0},
		{"C13", 0.0107, 13.00335484},
	},
	"N": {
		{"N14", 0.99636, 14.00307401},
		{"N15", 0.00364, 15.00010890},
	},
	"O": {
		{"O16", 0.99757, 15.99491462},
		{"O17", 0.00038, 16.99913176},
		{"O18", 0.00205, 17.99915961},
	},
	"Na": {
		{"Na23", 1.0, 22.98976928},
	},
	"Al": {
		{"Al27", 1.0, 26.98153853},
	},
	"Si": {
		{"Si28", 0.92223, 27.97692653},
		{"Si29", 0.04685, 28.97649466},
		{"Si30", 0.03092, 29.97377014},
	},
	"Fe": {
		{"Fe54", 0.05845, 53.93960899},
		{"Fe56", 0.91754, 55.93493633},
		{"Fe57", 0.02119, 56.93539284},
		{"Fe58", 0.00282, 57.93327443},
	},
	"Zr": {
		{"Zr90", 0.5145, 89.90469770},
		{"Zr91", 0.1122, 90.90563960},
		{"Zr92", 0.1715, 91.90503470},
		{"Zr94", 0.1738, 93.90631080},
		{"Zr96", 0.0280, 95.90827140},
	},
	"U": {
		{"U234", 0.000054, 234.04095230},
		{"U235", 0.007204, 235.04393010},
		{"U238", 0.992742, 238.05078840},
	},
}

// NaturalIsotopes returns the naturally occurring isotopes of the element
// with the given symbol. The returned slice is a copy.
func NaturalIsotopes(symbol string) ([]Isotope, error) {
	isos, ok := naturalIsotopes[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownElement, symbol)
	}
	out := make([]Isotope, len(isos))
	copy(out, isos)
	return out, nil
}

// IsElement reports whether the symbol names an element in the chart.
func IsElement(symbol string) bool {
	_, ok := naturalIsotopes[symbol]
	return ok
}

// AtomicMass returns the atomic mass in amu of the named nuclide.
// The chart is small, a linear scan is fine.
func AtomicMass(nuclide string) (float64, error) {
	for _, isos := range naturalIsotopes {
		for _, iso := range isos {
			if iso.Nuclide == nuclide {
				return iso.MassAMU, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownNuclide, nuclide)
}
