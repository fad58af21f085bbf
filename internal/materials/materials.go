// Package materials models material compositions for cross-section
// evaluation: nuclide and element components with atom or weight fractions,
// thermal scattering table assignments, densities, and an optional spatial
// extent per material.
package materials

import (
	"errors"
	"fmt"

	"github.com/fusion-energy/neutronics.report/internal/geometry"
	"github.com/fusion-energy/neutronics.report/internal/units"
)

// Basis identifies how a component fraction is interpreted.
type Basis string

// Basis constants
const (
	AtomBasis   Basis = "ao" // atom fraction
	WeightBasis Basis = "wo" // weight fraction
)

// ErrUnknownBasis is returned when a fraction basis is neither ao nor wo.
var ErrUnknownBasis = errors.New("unknown fraction basis")

// ErrMixedBasis is returned when one material mixes atom- and weight-basis
// components. Atom densities are only defined for a single basis.
var ErrMixedBasis = errors.New("material mixes atom and weight fractions")

// ErrNoDensity is returned when atom densities are requested from a
// material whose density was never set.
var ErrNoDensity = errors.New("material density not set")

// ErrNoComponents is returned when atom densities are requested from a
// material with an empty composition.
var ErrNoComponents = errors.New("material has no components")

// Component is one nuclide entry of a material composition.
type Component struct {
	Nuclide  string
	Fraction float64
	Basis    Basis
}

type density struct {
	value float64
	units string
}

// Material is a named composition of nuclides with a density and,
// optionally, a spatial extent. Components are kept in insertion order.
type Material struct {
	Name string

	components []Component
	sabTables  []string
	density    *density
	extent     *geometry.BoundingBox
}

// NewMaterial creates an empty material with the given name.
func NewMaterial(name string) *Material {
	return &Material{Name: name}
}

func checkComponent(fraction float64, basis Basis) error {
	if basis != AtomBasis && basis != WeightBasis {
		return fmt.Errorf("%w: %q (valid: ao, wo)", ErrUnknownBasis, string(basis))
	}
	if fraction <= 0 {
		return fmt.Errorf("component fraction must be positive, got %g", fraction)
	}
	return nil
}

// AddNuclide appends a single nuclide with the given fraction.
func (m *Material) AddNuclide(name string, fraction float64, basis Basis) error {
	if err := checkComponent(fraction, basis); err != nil {
		return fmt.Errorf("material %s: add nuclide %s: %w", m.Name, name, err)
	}
	m.components = append(m.components, Component{Nuclide: name, Fraction: fraction, Basis: basis})
	return nil
}

// AddElement expands a natural element into its isotopes and appends them.
// Atom-basis fractions split by isotopic abundance; weight-basis fractions
// split by the abundance-weighted isotope masses.
func (m *Material) AddElement(symbol string, fraction float64, basis Basis) error {
	if err := checkComponent(fraction, basis); err != nil {
		return fmt.Errorf("material %s: add element %s: %w", m.Name, symbol, err)
	}
	isos, err := NaturalIsotopes(symbol)
	if err != nil {
		return fmt.Errorf("material %s: add element: %w", m.Name, err)
	}

	switch basis {
	case AtomBasis:
		for _, iso := range isos {
			m.components = append(m.components, Component{
				Nuclide:  iso.Nuclide,
				Fraction: fraction * iso.Abundance,
				Basis:    basis,
			})
		}
	case WeightBasis:
		var elemMass float64
		for _, iso := range isos {
			elemMass += iso.Abundance * iso.MassAMU
		}
		for _, iso := range isos {
			m.components = append(m.components, Component{
				Nuclide:  iso.Nuclide,
				Fraction: fraction * iso.Abundance * iso.MassAMU / elemMass,
				Basis:    basis,
			})
		}
	}
	return nil
}

// AddSAlphaBeta attaches a thermal scattering table name, e.g. c_H_in_H2O.
func (m *Material) AddSAlphaBeta(table string) {
	m.sabTables = append(m.sabTables, table)
}

// SetDensity sets the material density. The unit tag must be one of the
// valid density units.
func (m *Material) SetDensity(unit string, value float64) error {
	if !units.IsValidDensityUnit(unit) {
		return fmt.Errorf("material %s: invalid density units %q (valid: %s)",
			m.Name, unit, units.ValidDensityUnitsString())
	}
	if value < 0 {
		return fmt.Errorf("material %s: density must not be negative, got %g", m.Name, value)
	}
	m.density = &density{value: value, units: unit}
	return nil
}

// Density returns the density value and unit tag, with ok=false when the
// density was never set.
func (m *Material) Density() (value float64, unit string, ok bool) {
	if m.density == nil {
		return 0, "", false
	}
	return m.density.value, m.density.units, true
}

// Components returns a copy of the composition in insertion order.
func (m *Material) Components() []Component {
	out := make([]Component, len(m.components))
	copy(out, m.components)
	return out
}

// SAlphaBeta returns the attached thermal scattering table names.
func (m *Material) SAlphaBeta() []string {
	out := make([]string, len(m.sabTables))
	copy(out, m.sabTables)
	return out
}

// SetExtent records the spatial extent of the material region.
func (m *Material) SetExtent(box geometry.BoundingBox) {
	m.extent = &box
}

// Extent returns the material's spatial extent, with ok=false when none
// was recorded.
func (m *Material) Extent() (geometry.BoundingBox, bool) {
	if m.extent == nil {
		return geometry.BoundingBox{}, false
	}
	return *m.extent, true
}

// AtomDensities derives per-nuclide atom densities in atom/(b·cm) from the
// density and the component fractions. All components must share one basis;
// weight fractions convert to atom fractions through the nuclide masses.
// Duplicate nuclide entries accumulate.
func (m *Material) AtomDensities() (map[string]float64, error) {
	if len(m.components) == 0 {
		return nil, fmt.Errorf("material %s: %w", m.Name, ErrNoComponents)
	}
	if m.density == nil {
		return nil, fmt.Errorf("material %s: %w", m.Name, ErrNoDensity)
	}

	basis := m.components[0].Basis
	for _, c := range m.components[1:] {
		if c.Basis != basis {
			return nil, fmt.Errorf("material %s: %w", m.Name, ErrMixedBasis)
		}
	}

	// Collapse to unnormalized atom fractions per nuclide.
	atomFrac := make(map[string]float64, len(m.components))
	for _, c := range m.components {
		f := c.Fraction
		if basis == WeightBasis {
			mass, err := AtomicMass(c.Nuclide)
			if err != nil {
				return nil, fmt.Errorf("material %s: %w", m.Name, err)
			}
			f /= mass
		}
		atomFrac[c.Nuclide] += f
	}
	var fracSum float64
	for _, f := range atomFrac {
		fracSum += f
	}

	// Total atom density in atom/(b·cm).
	var total float64
	if m.density.units == units.AtomPerBCm {
		total = m.density.value
	} else {
		rho := units.ConvertMassDensity(m.density.value, m.density.units)
		var meanMass float64 // amu per atom, averaged over atom fractions
		for nuc, f := range atomFrac {
			mass, err := AtomicMass(nuc)
			if err != nil {
				return nil, fmt.Errorf("material %s: %w", m.Name, err)
			}
			meanMass += (f / fracSum) * mass
		}
		total = rho * units.AvogadroPerBarnCm / meanMass
	}

	out := make(map[string]float64, len(atomFrac))
	for nuc, f := range atomFrac {
		out[nuc] = total * f / fracSum
	}
	return out, nil
}
