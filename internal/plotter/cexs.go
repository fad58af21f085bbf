// Package plotter evaluates continuous-energy cross sections for nuclides,
// natural elements and materials, and renders the resulting curves as PNG
// files or HTML charts.
package plotter

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/interp"

	"github.com/fusion-energy/neutronics.report/internal/materials"
	"github.com/fusion-energy/neutronics.report/internal/xsdata"
)

// ErrUnknownReaction is returned when a reaction type is neither a known
// name nor a raw MT number.
var ErrUnknownReaction = errors.New("unknown reaction type")

// ErrUnknownTarget is returned when a plot target is not a material in the
// deck, a nuclide in the store, or a chart element.
var ErrUnknownTarget = errors.New("unknown target")

// TargetKind says how a plot target was resolved.
type TargetKind string

const (
	TargetNuclide  TargetKind = "nuclide"
	TargetElement  TargetKind = "element"
	TargetMaterial TargetKind = "material"
)

// Series units.
const (
	UnitBarns = "b"    // microscopic, per atom
	UnitPerCm = "1/cm" // macroscopic
)

// knownReactions maps the common reaction names onto their ENDF MT numbers.
var knownReactions = []struct {
	Name string
	MT   int
}{
	{"total", 1},
	{"elastic", 2},
	{"inelastic", 4},
	{"fission", 18},
	{"absorption", 27},
	{"capture", 102},
}

// ResolveReactionType parses a reaction type: one of the known names or a
// raw positive MT number. Names are case-insensitive.
func ResolveReactionType(s string) (int, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, r := range knownReactions {
		if r.Name == name {
			return r.MT, nil
		}
	}
	if mt, err := strconv.Atoi(name); err == nil && mt > 0 {
		return mt, nil
	}
	return 0, fmt.Errorf("%w: %q (known types: %s)", ErrUnknownReaction, s, KnownReactionTypesString())
}

// MTName returns the common name of an MT number, or "" if it has none.
func MTName(mt int) string {
	for _, r := range knownReactions {
		if r.MT == mt {
			return r.Name
		}
	}
	return ""
}

// KnownReactionTypesString returns the known reaction names as a
// comma-separated string.
func KnownReactionTypesString() string {
	names := make([]string, len(knownReactions))
	for i, r := range knownReactions {
		names[i] = r.Name
	}
	return strings.Join(names, ", ")
}

// Options controls the energy grid the curves are evaluated on.
type Options struct {
	// EminEV and EmaxEV clamp the energy range; zero means the edge of the
	// available data.
	EminEV float64
	EmaxEV float64
	// Points resamples onto a log-spaced grid with this many points. Zero
	// keeps the union of the contributing table grids.
	Points int
}

// Series is one evaluated curve.
type Series struct {
	Label  string    `json:"label"`
	MT     int       `json:"mt"`
	Values []float64 `json:"values"`
}

// CrossSections is the result of one evaluation: a shared energy grid and
// one series per requested reaction type, in request order.
type CrossSections struct {
	Target     string     `json:"target"`
	Kind       TargetKind `json:"kind"`
	Unit       string     `json:"unit"`
	EnergiesEV []float64  `json:"energies_ev"`
	Series     []Series   `json:"series"`
}

// Calculate evaluates the requested reaction types for a target. The target
// is resolved as a material from the deck first, then as a nuclide in the
// store, then as a natural element. Deck may be nil for nuclide and element
// targets.
//
// Nuclide and element curves are microscopic (barns); element curves weight
// each natural isotope by its abundance, skipping isotopes the store has no
// data for. Material curves are macroscopic (1/cm), summing atom density
// times the microscopic value over the material's nuclides; where the
// material carries an S(α,β) table covering a nuclide, scattering below the
// table's cutoff energy comes from the thermal curves instead of the
// free-atom tables.
func Calculate(store *xsdata.Store, deck *materials.Deck, target string, types []string, opts Options) (*CrossSections, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("no reaction types requested")
	}
	mts := make([]int, len(types))
	for i, tp := range types {
		mt, err := ResolveReactionType(tp)
		if err != nil {
			return nil, err
		}
		mts[i] = mt
	}
	if opts.EminEV > 0 && opts.EmaxEV > 0 && opts.EmaxEV <= opts.EminEV {
		return nil, fmt.Errorf("empty energy range: emin %g >= emax %g eV", opts.EminEV, opts.EmaxEV)
	}
	if opts.Points == 1 || opts.Points < 0 {
		return nil, fmt.Errorf("points must be 0 (union grid) or at least 2, got %d", opts.Points)
	}

	b := &gridBuilder{store: store}

	var (
		curves []curve
		kind   TargetKind
		unit   string
		err    error
	)
	switch {
	case deckHasMaterial(deck, target):
		mat, _ := deck.Material(target)
		kind, unit = TargetMaterial, UnitPerCm
		curves, err = b.materialCurves(mat, mts)
	default:
		hasNuclide, herr := store.HasNuclide(target)
		if herr != nil {
			return nil, herr
		}
		if hasNuclide {
			kind, unit = TargetNuclide, UnitBarns
			curves, err = b.nuclideCurves(target, mts)
		} else if materials.IsElement(target) {
			kind, unit = TargetElement, UnitBarns
			curves, err = b.elementCurves(target, mts)
		} else {
			return nil, fmt.Errorf("%w: %q is not a material, nuclide or element", ErrUnknownTarget, target)
		}
	}
	if err != nil {
		return nil, err
	}

	grid, err := buildGrid(b.points, opts)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", target, err)
	}

	out := &CrossSections{Target: target, Kind: kind, Unit: unit, EnergiesEV: grid}
	for i, mt := range mts {
		values := make([]float64, len(grid))
		for j, e := range grid {
			values[j] = curves[i].at(e)
		}
		out.Series = append(out.Series, Series{Label: seriesLabel(target, mt), MT: mt, Values: values})
	}
	return out, nil
}

func deckHasMaterial(deck *materials.Deck, name string) bool {
	if deck == nil {
		return false
	}
	_, ok := deck.Material(name)
	return ok
}

func seriesLabel(target string, mt int) string {
	if name := MTName(mt); name != "" {
		return fmt.Sprintf("%s %s (MT=%d)", target, name, mt)
	}
	return fmt.Sprintf("%s MT=%d", target, mt)
}

// sampler evaluates one stored table by piecewise-linear interpolation.
// Outside the table's energy domain the value is zero, which is how
// threshold reactions below their threshold behave.
type sampler struct {
	pl     interp.PiecewiseLinear
	lo, hi float64
	ok     bool
}

func newSampler(t xsdata.Table) (sampler, error) {
	var s sampler
	if err := s.pl.Fit(t.EnergiesEV, t.Barns); err != nil {
		return sampler{}, err
	}
	s.lo = t.EnergiesEV[0]
	s.hi = t.EnergiesEV[len(t.EnergiesEV)-1]
	s.ok = true
	return s, nil
}

func (s sampler) at(e float64) float64 {
	if !s.ok || e < s.lo || e > s.hi {
		return 0
	}
	return s.pl.Predict(e)
}

// part is one weighted contribution to a curve: a free-atom table and an
// optional thermal replacement below the cutoff energy.
type part struct {
	weight  float64
	free    sampler
	thermal sampler
	cutoff  float64
}

func (p part) at(e float64) float64 {
	if p.cutoff > 0 && e < p.cutoff {
		return p.weight * p.thermal.at(e)
	}
	return p.weight * p.free.at(e)
}

type curve struct {
	parts []part
}

func (c curve) at(e float64) float64 {
	var total float64
	for _, p := range c.parts {
		total += p.at(e)
	}
	return total
}

// gridBuilder accumulates the energy points of every table that contributes
// to the requested curves. The union becomes the evaluation grid.
type gridBuilder struct {
	store  *xsdata.Store
	points []float64
}

// freePart fetches a nuclide's table for one MT. A missing table is not an
// error here; the caller decides whether anything was found at all.
func (b *gridBuilder) freePart(nuclide string, mt int, weight float64) (part, bool, error) {
	table, err := b.store.CrossSection(nuclide, mt)
	if errors.Is(err, xsdata.ErrNotFound) {
		return part{weight: weight}, false, nil
	}
	if err != nil {
		return part{}, false, err
	}
	s, err := newSampler(table)
	if err != nil {
		return part{}, false, fmt.Errorf("nuclide %s MT=%d: %w", nuclide, mt, err)
	}
	b.points = append(b.points, table.EnergiesEV...)
	return part{weight: weight, free: s}, true, nil
}

// attachThermal swaps in an S(α,β) curve below the table's cutoff for
// thermal scattering reactions. Reports whether a curve was attached.
func (b *gridBuilder) attachThermal(p *part, table, nuclide string, mt int) (bool, error) {
	if mt != 2 && mt != 4 {
		return false, nil
	}
	covers, err := b.store.ThermalCovers(table, nuclide)
	if err != nil {
		return false, err
	}
	if !covers {
		return false, nil
	}
	curveTab, err := b.store.ThermalCrossSection(table, mt)
	if errors.Is(err, xsdata.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	cutoff, err := b.store.ThermalCutoff(table)
	if err != nil {
		return false, err
	}
	s, err := newSampler(curveTab)
	if err != nil {
		return false, fmt.Errorf("thermal table %s MT=%d: %w", table, mt, err)
	}
	p.thermal = s
	p.cutoff = cutoff
	for _, e := range curveTab.EnergiesEV {
		if e < cutoff {
			b.points = append(b.points, e)
		}
	}
	// The handoff point itself belongs on the grid.
	b.points = append(b.points, cutoff)
	return true, nil
}

func (b *gridBuilder) nuclideCurves(nuclide string, mts []int) ([]curve, error) {
	curves := make([]curve, len(mts))
	for i, mt := range mts {
		p, found, err := b.freePart(nuclide, mt, 1)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("nuclide %s has no MT=%d table: %w", nuclide, mt, xsdata.ErrNotFound)
		}
		curves[i] = curve{parts: []part{p}}
	}
	return curves, nil
}

func (b *gridBuilder) elementCurves(element string, mts []int) ([]curve, error) {
	isotopes, err := materials.NaturalIsotopes(element)
	if err != nil {
		return nil, err
	}
	curves := make([]curve, len(mts))
	for i, mt := range mts {
		var c curve
		for _, iso := range isotopes {
			p, found, err := b.freePart(iso.Nuclide, mt, iso.Abundance)
			if err != nil {
				return nil, err
			}
			if found {
				c.parts = append(c.parts, p)
			}
		}
		if len(c.parts) == 0 {
			return nil, fmt.Errorf("element %s has no MT=%d data in the store: %w", element, mt, xsdata.ErrNotFound)
		}
		curves[i] = c
	}
	return curves, nil
}

func (b *gridBuilder) materialCurves(mat *materials.Material, mts []int) ([]curve, error) {
	dens, err := mat.AtomDensities()
	if err != nil {
		return nil, fmt.Errorf("material %s: %w", mat.Name, err)
	}
	nuclides := make([]string, 0, len(dens))
	for nuc := range dens {
		nuclides = append(nuclides, nuc)
	}
	sort.Strings(nuclides)

	// The composition must be fully resolvable even if individual
	// reactions are not.
	for _, nuc := range nuclides {
		ok, err := b.store.HasNuclide(nuc)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("material %s: nuclide %s is not in the data store: %w", mat.Name, nuc, xsdata.ErrNotFound)
		}
	}

	sabs := mat.SAlphaBeta()
	curves := make([]curve, len(mts))
	for i, mt := range mts {
		var c curve
		for _, nuc := range nuclides {
			p, found, err := b.freePart(nuc, mt, dens[nuc])
			if err != nil {
				return nil, err
			}
			for _, sab := range sabs {
				attached, err := b.attachThermal(&p, sab, nuc, mt)
				if err != nil {
					return nil, err
				}
				if attached {
					found = true
					break
				}
			}
			if found {
				c.parts = append(c.parts, p)
			}
		}
		if len(c.parts) == 0 {
			return nil, fmt.Errorf("material %s has no MT=%d data: %w", mat.Name, mt, xsdata.ErrNotFound)
		}
		curves[i] = c
	}
	return curves, nil
}

// buildGrid turns the accumulated table points into the evaluation grid:
// either their sorted union or a log-spaced resample, clamped to the
// requested range.
func buildGrid(points []float64, opts Options) ([]float64, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no energy points available")
	}
	lo, hi := points[0], points[0]
	for _, e := range points {
		lo = math.Min(lo, e)
		hi = math.Max(hi, e)
	}
	if opts.EminEV > 0 && opts.EminEV > lo {
		lo = opts.EminEV
	}
	if opts.EmaxEV > 0 && opts.EmaxEV < hi {
		hi = opts.EmaxEV
	}
	if lo > hi {
		return nil, fmt.Errorf("energy range [%g, %g] eV is outside the data", opts.EminEV, opts.EmaxEV)
	}

	if opts.Points > 1 {
		return logSpace(lo, hi, opts.Points), nil
	}

	sort.Float64s(points)
	grid := make([]float64, 0, len(points))
	for _, e := range points {
		if e < lo || e > hi {
			continue
		}
		if len(grid) > 0 && e == grid[len(grid)-1] {
			continue
		}
		grid = append(grid, e)
	}
	// Requested bounds that fall between table points still belong on the
	// grid so the series starts and ends at them.
	if opts.EminEV > 0 && (len(grid) == 0 || grid[0] > lo) {
		grid = append([]float64{lo}, grid...)
	}
	if opts.EmaxEV > 0 && grid[len(grid)-1] < hi {
		grid = append(grid, hi)
	}
	return grid, nil
}

// logSpace returns n points spaced evenly in log10 between lo and hi
// inclusive. Energies are validated positive on import, so the logs are
// finite.
func logSpace(lo, hi float64, n int) []float64 {
	if hi <= lo {
		return []float64{lo}
	}
	out := make([]float64, n)
	l0 := math.Log10(lo)
	l1 := math.Log10(hi)
	for i := range out {
		out[i] = math.Pow(10, l0+(l1-l0)*float64(i)/float64(n-1))
	}
	// Pin the endpoints against float drift.
	out[0] = lo
	out[n-1] = hi
	return out
}
