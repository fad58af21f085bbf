package plotter

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusion-energy/neutronics.report/internal/materials"
	"github.com/fusion-energy/neutronics.report/internal/xsdata"
)

// seedStore opens a migrated temp database seeded with the demo library.
func seedStore(t *testing.T) *xsdata.Store {
	t.Helper()
	db, err := xsdata.Open(filepath.Join(t.TempDir(), "xs.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	require.NoError(t, db.MigrateUp())

	store := xsdata.NewStore(db)
	lib, err := xsdata.DemoLibrary()
	require.NoError(t, err)
	_, err = store.ImportLibrary(lib, "test-seed")
	require.NoError(t, err)
	return store
}

// waterDeck builds a one-material deck: light water at 1 g/cm³, with or
// without its thermal scattering table.
func waterDeck(t *testing.T, withSab bool) *materials.Deck {
	t.Helper()
	mat := materials.NewMaterial("water")
	require.NoError(t, mat.AddElement("H", 2, materials.AtomBasis))
	require.NoError(t, mat.AddElement("O", 1, materials.AtomBasis))
	require.NoError(t, mat.SetDensity("g/cm3", 1.0))
	if withSab {
		mat.AddSAlphaBeta("c_H_in_H2O")
	}
	return &materials.Deck{Materials: []*materials.Material{mat}}
}

// gridIndex finds an exact energy on the grid.
func gridIndex(t *testing.T, grid []float64, energy float64) int {
	t.Helper()
	for i, e := range grid {
		if e == energy {
			return i
		}
	}
	t.Fatalf("energy %g not on grid %v", energy, grid)
	return -1
}

func assertResultShape(t *testing.T, cx *CrossSections, wantSeries int) {
	t.Helper()
	require.Len(t, cx.Series, wantSeries)
	require.NotEmpty(t, cx.EnergiesEV)
	for i := 1; i < len(cx.EnergiesEV); i++ {
		require.Greater(t, cx.EnergiesEV[i], cx.EnergiesEV[i-1], "grid must be strictly increasing")
	}
	for _, s := range cx.Series {
		require.Len(t, s.Values, len(cx.EnergiesEV), "series %s must span the grid", s.Label)
	}
}

func TestResolveReactionType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  int
	}{
		{"total", 1},
		{"elastic", 2},
		{"inelastic", 4},
		{"fission", 18},
		{"absorption", 27},
		{"capture", 102},
		{"ELASTIC", 2},
		{" fission ", 18},
		{"2", 2},
		{"51", 51},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			mt, err := ResolveReactionType(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, mt)
		})
	}

	t.Run("unknown inputs", func(t *testing.T) {
		t.Parallel()
		for _, input := range []string{"banana", "", "0", "-3", "2.5"} {
			_, err := ResolveReactionType(input)
			assert.ErrorIs(t, err, ErrUnknownReaction, "input %q", input)
		}
	})
}

func TestMTName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "elastic", MTName(2))
	assert.Equal(t, "capture", MTName(102))
	assert.Equal(t, "", MTName(51))
}

func TestCalculateNuclide(t *testing.T) {
	t.Parallel()
	store := seedStore(t)

	cx, err := Calculate(store, nil, "H1", []string{"total", "elastic", "capture"}, Options{})
	require.NoError(t, err)
	assertResultShape(t, cx, 3)

	assert.Equal(t, TargetNuclide, cx.Kind)
	assert.Equal(t, UnitBarns, cx.Unit)
	assert.Equal(t, "H1 total (MT=1)", cx.Series[0].Label)
	assert.Equal(t, []int{1, 2, 102}, []int{cx.Series[0].MT, cx.Series[1].MT, cx.Series[2].MT})

	// All three tables share one grid, so the union is that grid and the
	// node values come back exactly.
	require.Len(t, cx.EnergiesEV, 8)
	i := gridIndex(t, cx.EnergiesEV, 0.0253)
	assert.InDelta(t, 20.7, cx.Series[0].Values[i], 1e-9)
	assert.InDelta(t, 20.4, cx.Series[1].Values[i], 1e-9)
	assert.InDelta(t, 0.332, cx.Series[2].Values[i], 1e-9)
}

func TestCalculateTypeAliases(t *testing.T) {
	t.Parallel()
	store := seedStore(t)

	// A raw MT number and its name are the same request and must produce
	// identical series.
	cx, err := Calculate(store, nil, "H1", []string{"2", "elastic"}, Options{})
	require.NoError(t, err)
	assertResultShape(t, cx, 2)
	assert.Equal(t, cx.Series[0].Label, cx.Series[1].Label)
	assert.Equal(t, cx.Series[0].Values, cx.Series[1].Values)
}

func TestCalculateElement(t *testing.T) {
	t.Parallel()
	store := seedStore(t)

	t.Run("hydrogen", func(t *testing.T) {
		t.Parallel()
		cx, err := Calculate(store, nil, "H", []string{"total"}, Options{})
		require.NoError(t, err)
		assertResultShape(t, cx, 1)
		assert.Equal(t, TargetElement, cx.Kind)

		// 0.999885·σ(H1) + 0.000115·σ(H2) at 0.0253 eV.
		i := gridIndex(t, cx.EnergiesEV, 0.0253)
		assert.InDelta(t, 20.69801, cx.Series[0].Values[i], 1e-4)
	})

	t.Run("oxygen with partial isotope grids", func(t *testing.T) {
		t.Parallel()
		cx, err := Calculate(store, nil, "O", []string{"total"}, Options{})
		require.NoError(t, err)
		assertResultShape(t, cx, 1)

		// O17 and O18 sit on coarser grids and are interpolated.
		i := gridIndex(t, cx.EnergiesEV, 0.0253)
		assert.InDelta(t, 3.75922, cx.Series[0].Values[i], 1e-4)
	})

	t.Run("element with no stored isotopes", func(t *testing.T) {
		t.Parallel()
		_, err := Calculate(store, nil, "Li", []string{"total"}, Options{})
		assert.ErrorIs(t, err, xsdata.ErrNotFound)
	})
}

func TestCalculateMaterial(t *testing.T) {
	t.Parallel()
	store := seedStore(t)

	cx, err := Calculate(store, waterDeck(t, false), "water", []string{"total"}, Options{})
	require.NoError(t, err)
	assertResultShape(t, cx, 1)

	assert.Equal(t, TargetMaterial, cx.Kind)
	assert.Equal(t, UnitPerCm, cx.Unit)

	// Σ(0.0253 eV) for light water, all five isotopes contributing.
	i := gridIndex(t, cx.EnergiesEV, 0.0253)
	assert.InDelta(t, 1.50945, cx.Series[0].Values[i], 1e-4)
}

func TestCalculateMaterialThermalElastic(t *testing.T) {
	t.Parallel()
	store := seedStore(t)

	withSab, err := Calculate(store, waterDeck(t, true), "water", []string{"elastic"}, Options{})
	require.NoError(t, err)
	free, err := Calculate(store, waterDeck(t, false), "water", []string{"elastic"}, Options{})
	require.NoError(t, err)

	// Below the 4 eV cutoff the H1 contribution comes from the bound
	// thermal curve, which is much larger than the free-atom value.
	i := gridIndex(t, withSab.EnergiesEV, 0.0253)
	assert.InDelta(t, 3.13385, withSab.Series[0].Values[i], 1e-4)

	j := gridIndex(t, free.EnergiesEV, 0.0253)
	assert.InDelta(t, 1.48938, free.Series[0].Values[j], 1e-4)

	// Above the cutoff both agree: the thermal table no longer applies.
	k := gridIndex(t, withSab.EnergiesEV, 1e6)
	l := gridIndex(t, free.EnergiesEV, 1e6)
	assert.InDelta(t, free.Series[0].Values[l], withSab.Series[0].Values[k], 1e-9)
}

func TestCalculateMaterialThermalInelastic(t *testing.T) {
	t.Parallel()
	store := seedStore(t)

	// No free-atom table in the library carries MT=4 for water's nuclides;
	// the thermal table alone supplies the curve.
	cx, err := Calculate(store, waterDeck(t, true), "water", []string{"total", "inelastic"}, Options{})
	require.NoError(t, err)
	assertResultShape(t, cx, 2)

	inel := cx.Series[1]
	i := gridIndex(t, cx.EnergiesEV, 0.0253)
	assert.InDelta(t, 1.20327, inel.Values[i], 1e-4)

	// Above the cutoff there is nothing to contribute.
	j := gridIndex(t, cx.EnergiesEV, 1e6)
	assert.Equal(t, 0.0, inel.Values[j])

	// Without the thermal table the request has no data at all.
	_, err = Calculate(store, waterDeck(t, false), "water", []string{"inelastic"}, Options{})
	assert.ErrorIs(t, err, xsdata.ErrNotFound)
}

func TestCalculateResample(t *testing.T) {
	t.Parallel()
	store := seedStore(t)

	cx, err := Calculate(store, nil, "H1", []string{"total"}, Options{
		EminEV: 1e-3,
		EmaxEV: 1e6,
		Points: 50,
	})
	require.NoError(t, err)
	assertResultShape(t, cx, 1)

	require.Len(t, cx.EnergiesEV, 50)
	assert.Equal(t, 1e-3, cx.EnergiesEV[0])
	assert.Equal(t, 1e6, cx.EnergiesEV[49])
}

func TestCalculateRangeClamping(t *testing.T) {
	t.Parallel()
	store := seedStore(t)

	cx, err := Calculate(store, nil, "H1", []string{"total"}, Options{EminEV: 0.01, EmaxEV: 200})
	require.NoError(t, err)
	assertResultShape(t, cx, 1)

	// Union grid clipped to the bounds, with the bounds themselves added.
	assert.Equal(t, 0.01, cx.EnergiesEV[0])
	assert.Equal(t, 200.0, cx.EnergiesEV[len(cx.EnergiesEV)-1])
	gridIndex(t, cx.EnergiesEV, 0.0253)
	gridIndex(t, cx.EnergiesEV, 100.0)
}

func TestCalculateErrors(t *testing.T) {
	t.Parallel()
	store := seedStore(t)
	deck := waterDeck(t, true)

	tests := []struct {
		name    string
		target  string
		types   []string
		opts    Options
		wantErr error
	}{
		{
			name:    "unknown target",
			target:  "unobtainium",
			types:   []string{"total"},
			wantErr: ErrUnknownTarget,
		},
		{
			name:    "unknown reaction type",
			target:  "H1",
			types:   []string{"sideways"},
			wantErr: ErrUnknownReaction,
		},
		{
			name:    "nuclide missing reaction",
			target:  "H1",
			types:   []string{"fission"},
			wantErr: xsdata.ErrNotFound,
		},
		{
			name:   "empty energy range",
			target: "H1",
			types:  []string{"total"},
			opts:   Options{EminEV: 10, EmaxEV: 1},
		},
		{
			name:   "range outside data",
			target: "H1",
			types:  []string{"total"},
			opts:   Options{EminEV: 1e8},
		},
		{
			name:   "no types",
			target: "H1",
			types:  nil,
		},
		{
			name:   "single resample point",
			target: "H1",
			types:  []string{"total"},
			opts:   Options{Points: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Calculate(store, deck, tt.target, tt.types, tt.opts)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCalculateMaterialMissingNuclide(t *testing.T) {
	t.Parallel()
	store := seedStore(t)

	mat := materials.NewMaterial("salt")
	require.NoError(t, mat.AddNuclide("Na23", 1, materials.AtomBasis))
	require.NoError(t, mat.SetDensity("g/cm3", 2.17))
	deck := &materials.Deck{Materials: []*materials.Material{mat}}

	// The composition references a nuclide the demo library does not have.
	_, err := Calculate(store, deck, "salt", []string{"total"}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, xsdata.ErrNotFound)
	assert.Contains(t, err.Error(), "Na23")
}

func TestCalculateFissionResonances(t *testing.T) {
	t.Parallel()
	store := seedStore(t)

	cx, err := Calculate(store, nil, "U235", []string{"fission", "absorption"}, Options{})
	require.NoError(t, err)
	assertResultShape(t, cx, 2)

	i := gridIndex(t, cx.EnergiesEV, 0.0253)
	assert.InDelta(t, 585.0, cx.Series[0].Values[i], 1e-9)
}
