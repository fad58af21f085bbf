package xsdata

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed library/demo_library.json
var demoLibraryJSON []byte

// Library is a cross-section library as read from a JSON library file.
type Library struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Nuclides    []LibraryNuclide `json:"nuclides"`
	Thermal     []ThermalTable   `json:"thermal_tables,omitempty"`
}

// LibraryNuclide is one nuclide with its pointwise reaction tables.
type LibraryNuclide struct {
	Name          string     `json:"name"`
	AtomicMassAMU float64    `json:"atomic_mass_amu"`
	Reactions     []Reaction `json:"reactions"`
}

// Reaction is a pointwise cross-section table for one MT number.
// EnergiesEV must be strictly increasing and the same length as Barns.
type Reaction struct {
	MT         int       `json:"mt"`
	Remark     string    `json:"remark,omitempty"`
	EnergiesEV []float64 `json:"energies_ev"`
	Barns      []float64 `json:"barns"`
}

// ThermalTable is an S(α,β) thermal scattering table: the nuclides it
// covers, its cutoff energy, and its thermal reaction curves.
type ThermalTable struct {
	Name     string     `json:"name"`
	CutoffEV float64    `json:"cutoff_ev"`
	Nuclides []string   `json:"nuclides"`
	Curves   []Reaction `json:"curves"`
}

// LoadLibrary reads and validates a JSON library file.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("xsdata: load %s: %w", path, err)
	}
	lib, err := ParseLibrary(data)
	if err != nil {
		return nil, fmt.Errorf("xsdata: parse %s: %w", path, err)
	}
	return lib, nil
}

// ParseLibrary unmarshals and validates JSON library data.
func ParseLibrary(data []byte) (*Library, error) {
	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, err
	}
	if err := lib.Validate(); err != nil {
		return nil, err
	}
	return &lib, nil
}

// DemoLibrary returns the embedded demonstration library: a handful of
// nuclides with coarse grids, good for seeding an empty database and for
// tests, not for real analysis.
func DemoLibrary() (*Library, error) {
	lib, err := ParseLibrary(demoLibraryJSON)
	if err != nil {
		return nil, fmt.Errorf("xsdata: embedded demo library: %w", err)
	}
	return lib, nil
}

// Validate checks the library for the invariants the store and the
// evaluator rely on: named nuclides, no duplicate reactions, table pairs
// of equal length with strictly increasing energies.
func (lib *Library) Validate() error {
	if lib.Name == "" {
		return fmt.Errorf("library has no name")
	}
	if len(lib.Nuclides) == 0 {
		return fmt.Errorf("library %s has no nuclides", lib.Name)
	}
	for _, nuc := range lib.Nuclides {
		if nuc.Name == "" {
			return fmt.Errorf("library %s: nuclide without a name", lib.Name)
		}
		if nuc.AtomicMassAMU <= 0 {
			return fmt.Errorf("nuclide %s: atomic mass must be positive, got %g", nuc.Name, nuc.AtomicMassAMU)
		}
		if len(nuc.Reactions) == 0 {
			return fmt.Errorf("nuclide %s has no reactions", nuc.Name)
		}
		seen := make(map[int]bool, len(nuc.Reactions))
		for _, r := range nuc.Reactions {
			if seen[r.MT] {
				return fmt.Errorf("nuclide %s: duplicate reaction MT=%d", nuc.Name, r.MT)
			}
			seen[r.MT] = true
			if err := r.validate(); err != nil {
				return fmt.Errorf("nuclide %s MT=%d: %w", nuc.Name, r.MT, err)
			}
		}
	}
	for _, tt := range lib.Thermal {
		if tt.Name == "" {
			return fmt.Errorf("library %s: thermal table without a name", lib.Name)
		}
		if tt.CutoffEV <= 0 {
			return fmt.Errorf("thermal table %s: cutoff must be positive, got %g", tt.Name, tt.CutoffEV)
		}
		if len(tt.Nuclides) == 0 {
			return fmt.Errorf("thermal table %s covers no nuclides", tt.Name)
		}
		seen := make(map[int]bool, len(tt.Curves))
		for _, r := range tt.Curves {
			if seen[r.MT] {
				return fmt.Errorf("thermal table %s: duplicate curve MT=%d", tt.Name, r.MT)
			}
			seen[r.MT] = true
			if err := r.validate(); err != nil {
				return fmt.Errorf("thermal table %s MT=%d: %w", tt.Name, r.MT, err)
			}
		}
	}
	return nil
}

func (r Reaction) validate() error {
	if r.MT <= 0 {
		return fmt.Errorf("mt must be positive, got %d", r.MT)
	}
	if len(r.EnergiesEV) != len(r.Barns) {
		return fmt.Errorf("%d energies but %d cross-section values", len(r.EnergiesEV), len(r.Barns))
	}
	if len(r.EnergiesEV) < 2 {
		return fmt.Errorf("need at least 2 points, got %d", len(r.EnergiesEV))
	}
	if r.EnergiesEV[0] <= 0 {
		return fmt.Errorf("energies must be positive, got %g", r.EnergiesEV[0])
	}
	for i := 1; i < len(r.EnergiesEV); i++ {
		if r.EnergiesEV[i] <= r.EnergiesEV[i-1] {
			return fmt.Errorf("energies not strictly increasing at index %d", i)
		}
	}
	for i, b := range r.Barns {
		if b < 0 {
			return fmt.Errorf("negative cross section %g at index %d", b, i)
		}
	}
	return nil
}

// Counts returns the number of nuclides, reactions and table points in the
// library, thermal curves included.
func (lib *Library) Counts() (nuclides, reactions, points int) {
	nuclides = len(lib.Nuclides)
	for _, nuc := range lib.Nuclides {
		reactions += len(nuc.Reactions)
		for _, r := range nuc.Reactions {
			points += len(r.EnergiesEV)
		}
	}
	for _, tt := range lib.Thermal {
		for _, r := range tt.Curves {
			points += len(r.EnergiesEV)
		}
	}
	return nuclides, reactions, points
}
