package materials

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fusion-energy/neutronics.report/internal/geometry"
)

// Deck is a set of materials loaded from a YAML deck file.
type Deck struct {
	Materials []*Material
}

type deckSpec struct {
	Materials []materialSpec `yaml:"materials"`
}

type materialSpec struct {
	Name     string        `yaml:"name"`
	Density  *densitySpec  `yaml:"density"`
	Elements []elementSpec `yaml:"elements"`
	Nuclides []nuclideSpec `yaml:"nuclides"`
	SAB      []string      `yaml:"sab"`
	Extent   *extentSpec   `yaml:"extent"`
}

type densitySpec struct {
	Value float64 `yaml:"value"`
	Units string  `yaml:"units"`
}

type elementSpec struct {
	Symbol   string  `yaml:"symbol"`
	Fraction float64 `yaml:"fraction"`
	Basis    string  `yaml:"basis"`
}

type nuclideSpec struct {
	Name     string  `yaml:"name"`
	Fraction float64 `yaml:"fraction"`
	Basis    string  `yaml:"basis"`
}

type extentSpec struct {
	LowerLeft  []float64 `yaml:"lower_left"`
	UpperRight []float64 `yaml:"upper_right"`
}

// LoadDeck reads a YAML material deck and builds the materials in it,
// including any per-material spatial extents.
func LoadDeck(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("materials: load %s: %w", path, err)
	}

	var spec deckSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("materials: unmarshal %s: %w", path, err)
	}
	if len(spec.Materials) == 0 {
		return nil, fmt.Errorf("materials: %s defines no materials", path)
	}

	deck := &Deck{}
	seen := make(map[string]bool, len(spec.Materials))
	for _, ms := range spec.Materials {
		if ms.Name == "" {
			return nil, fmt.Errorf("materials: %s: material without a name", path)
		}
		if seen[ms.Name] {
			return nil, fmt.Errorf("materials: %s: duplicate material %q", path, ms.Name)
		}
		seen[ms.Name] = true

		mat, err := buildMaterial(ms)
		if err != nil {
			return nil, fmt.Errorf("materials: %s: %w", path, err)
		}
		deck.Materials = append(deck.Materials, mat)
	}
	return deck, nil
}

func buildMaterial(ms materialSpec) (*Material, error) {
	mat := NewMaterial(ms.Name)

	for _, es := range ms.Elements {
		basis, err := parseBasis(es.Basis)
		if err != nil {
			return nil, fmt.Errorf("material %s: element %s: %w", ms.Name, es.Symbol, err)
		}
		if err := mat.AddElement(es.Symbol, es.Fraction, basis); err != nil {
			return nil, err
		}
	}
	for _, ns := range ms.Nuclides {
		basis, err := parseBasis(ns.Basis)
		if err != nil {
			return nil, fmt.Errorf("material %s: nuclide %s: %w", ms.Name, ns.Name, err)
		}
		if err := mat.AddNuclide(ns.Name, ns.Fraction, basis); err != nil {
			return nil, err
		}
	}
	for _, table := range ms.SAB {
		mat.AddSAlphaBeta(table)
	}
	if ms.Density != nil {
		if err := mat.SetDensity(ms.Density.Units, ms.Density.Value); err != nil {
			return nil, err
		}
	}
	if ms.Extent != nil {
		box, err := geometry.New(ms.Extent.LowerLeft, ms.Extent.UpperRight)
		if err != nil {
			return nil, fmt.Errorf("material %s: extent: %w", ms.Name, err)
		}
		mat.SetExtent(box)
	}
	return mat, nil
}

// parseBasis maps a deck basis tag to a Basis. An empty tag means atom
// fractions, matching the common deck shorthand.
func parseBasis(tag string) (Basis, error) {
	switch tag {
	case "", string(AtomBasis):
		return AtomBasis, nil
	case string(WeightBasis):
		return WeightBasis, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: ao, wo)", ErrUnknownBasis, tag)
	}
}

// Material returns the named material from the deck.
func (d *Deck) Material(name string) (*Material, bool) {
	for _, m := range d.Materials {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Names returns the material names in deck order.
func (d *Deck) Names() []string {
	names := make([]string, len(d.Materials))
	for i, m := range d.Materials {
		names[i] = m.Name
	}
	return names
}
