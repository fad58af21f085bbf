// Package units provides shared constants and validation for the unit
// conventions used throughout the model: lengths in centimeters, energies
// in electronvolts and microscopic cross sections in barns.
package units

// Energy unit constants
const (
	EV  = "ev"
	KEV = "kev"
	MEV = "mev"
)

// Density unit constants accepted by material decks
const (
	GramPerCm3 = "g/cm3"
	KgPerM3    = "kg/m3"
	AtomPerBCm = "atom/b-cm"
)

// BarnsToCm2 converts a microscopic cross section in barns to cm².
const BarnsToCm2 = 1e-24

// AvogadroPerBarnCm is Avogadro's number scaled so that
// density [g/cm³] / mass [amu] * AvogadroPerBarnCm yields atom/(b·cm).
const AvogadroPerBarnCm = 0.602214076

// ValidEnergyUnits contains all valid energy unit values
var ValidEnergyUnits = []string{EV, KEV, MEV}

// ValidDensityUnits contains all valid density unit values
var ValidDensityUnits = []string{GramPerCm3, KgPerM3, AtomPerBCm}

// IsValidEnergyUnit checks if the given unit is in the list of valid energy units
func IsValidEnergyUnit(unit string) bool {
	for _, validUnit := range ValidEnergyUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// IsValidDensityUnit checks if the given unit is in the list of valid density units
func IsValidDensityUnit(unit string) bool {
	for _, validUnit := range ValidDensityUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ValidEnergyUnitsString returns a comma-separated string of valid energy units for error messages
func ValidEnergyUnitsString() string {
	return "ev, kev, mev"
}

// ValidDensityUnitsString returns a comma-separated string of valid density units for error messages
func ValidDensityUnitsString() string {
	return "g/cm3, kg/m3, atom/b-cm"
}

// ConvertEnergy converts an energy from electronvolts to the target units.
// Cross-section tables store energies in eV.
func ConvertEnergy(energyEV float64, targetUnits string) float64 {
	switch targetUnits {
	case KEV:
		return energyEV * 1e-3
	case MEV:
		return energyEV * 1e-6
	case EV:
		return energyEV // no conversion needed
	default:
		return energyEV // default to eV if unknown unit
	}
}

// ConvertMassDensity converts a mass density to g/cm³. Number densities
// (atom/b-cm) carry no mass information and pass through unchanged; the
// material layer branches on the unit before calling this.
func ConvertMassDensity(value float64, unit string) float64 {
	switch unit {
	case KgPerM3:
		return value * 1e-3 // kg/m³ to g/cm³
	default:
		return value
	}
}
