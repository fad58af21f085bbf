package report

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/fusion-energy/neutronics.report/internal/geometry"
	"github.com/fusion-energy/neutronics.report/internal/materials"
	"github.com/fusion-energy/neutronics.report/internal/plotter"
	"github.com/fusion-energy/neutronics.report/internal/xsdata"

	"gonum.org/v1/gonum/spatial/r3"
)

// handlePlotXS renders an interactive cross-section chart.
// Query params:
//
//	target (required): material name, nuclide or element symbol
//	types (optional, default "total"): comma-separated reaction names or MT numbers
//	emin, emax (optional): energy range in eV
//	points (optional): log-spaced grid size, 0 keeps the union grid
func (ws *WebServer) handlePlotXS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	cx, status, err := ws.evaluateRequest(r)
	if err != nil {
		ws.writeJSONError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	opts := plotter.HTMLOptions{Theme: ws.params.GetTheme()}
	if err := plotter.RenderHTML(cx, w, opts); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("render chart: %v", err))
		return
	}
}

// handleAPIXS returns the evaluated curves as JSON, same query params as
// the chart endpoint.
func (ws *WebServer) handleAPIXS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	cx, status, err := ws.evaluateRequest(r)
	if err != nil {
		ws.writeJSONError(w, status, err.Error())
		return
	}
	ws.writeJSON(w, cx)
}

// evaluateRequest parses the shared chart query parameters and runs the
// evaluation. The returned status is the HTTP status to report on error.
func (ws *WebServer) evaluateRequest(r *http.Request) (*plotter.CrossSections, int, error) {
	if ws.store == nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("no database configured for cross-section lookup")
	}

	q := r.URL.Query()
	target := q.Get("target")
	if target == "" {
		return nil, http.StatusBadRequest, fmt.Errorf("missing 'target' parameter")
	}

	types := []string{"total"}
	if raw := q.Get("types"); raw != "" {
		types = splitList(raw)
		if len(types) == 0 {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid 'types' parameter")
		}
	}

	opts := plotter.Options{
		EminEV: ws.params.GetEminEV(),
		EmaxEV: ws.params.GetEmaxEV(),
		Points: ws.params.GetGridPoints(),
	}
	if raw := q.Get("emin"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid 'emin' parameter")
		}
		opts.EminEV = v
	}
	if raw := q.Get("emax"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid 'emax' parameter")
		}
		opts.EmaxEV = v
	}
	if opts.EminEV > 0 && opts.EmaxEV > 0 && opts.EmaxEV <= opts.EminEV {
		return nil, http.StatusBadRequest, fmt.Errorf("empty energy range: emin %g >= emax %g eV", opts.EminEV, opts.EmaxEV)
	}
	if raw := q.Get("points"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v == 1 || v < 0 {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid 'points' parameter")
		}
		opts.Points = v
	}

	cx, err := plotter.Calculate(ws.store, ws.Deck(), target, types, opts)
	if err != nil {
		switch {
		case errors.Is(err, plotter.ErrUnknownReaction):
			return nil, http.StatusBadRequest, err
		case errors.Is(err, plotter.ErrUnknownTarget), errors.Is(err, xsdata.ErrNotFound):
			return nil, http.StatusNotFound, err
		}
		return nil, http.StatusInternalServerError, err
	}
	return cx, http.StatusOK, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type componentView struct {
	Nuclide  string  `json:"nuclide"`
	Fraction float64 `json:"fraction"`
	Basis    string  `json:"basis"`
}

type extentView struct {
	Bounded      bool                 `json:"bounded"`
	LowerLeftCm  []float64            `json:"lower_left_cm,omitempty"`
	UpperRightCm []float64            `json:"upper_right_cm,omitempty"`
	CenterCm     []float64            `json:"center_cm,omitempty"`
	WidthsCm     []float64            `json:"widths_cm,omitempty"`
	VolumeCm3    *float64             `json:"volume_cm3,omitempty"`
	Windows      []plotter.PlotWindow `json:"windows,omitempty"`
}

type materialView struct {
	Name         string          `json:"name"`
	DensityValue *float64        `json:"density_value,omitempty"`
	DensityUnits string          `json:"density_units,omitempty"`
	Components   []componentView `json:"components"`
	SAlphaBeta   []string        `json:"sab,omitempty"`
	Extent       *extentView     `json:"extent,omitempty"`
}

// handleAPIMaterials returns a JSON summary of the loaded deck: per-material
// composition, density, thermal tables and spatial extent with derived slice
// windows.
func (ws *WebServer) handleAPIMaterials(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	views := []materialView{}
	deck := ws.Deck()
	if deck != nil {
		for _, mat := range deck.Materials {
			views = append(views, materialSummary(mat))
		}
	}
	ws.writeJSON(w, views)
}

func materialSummary(mat *materials.Material) materialView {
	view := materialView{Name: mat.Name, SAlphaBeta: mat.SAlphaBeta()}
	if value, unit, ok := mat.Density(); ok {
		view.DensityValue = &value
		view.DensityUnits = unit
	}

	view.Components = []componentView{}
	for _, c := range mat.Components() {
		view.Components = append(view.Components, componentView{
			Nuclide:  c.Nuclide,
			Fraction: c.Fraction,
			Basis:    string(c.Basis),
		})
	}

	if box, ok := mat.Extent(); ok {
		view.Extent = extentSummary(box)
	}
	return view
}

// extentSummary converts a bounding box to its JSON view. Unbounded boxes
// carry no numbers because JSON cannot encode infinities; slice windows are
// attached for every basis whose in-plane axes are bounded.
func extentSummary(box geometry.BoundingBox) *extentView {
	view := &extentView{}

	ll, ur := box.Corners()
	if isFiniteVec(ll) && isFiniteVec(ur) {
		view.Bounded = true
		view.LowerLeftCm = vecSlice(ll)
		view.UpperRightCm = vecSlice(ur)
		view.CenterCm = vecSlice(box.Center())
		for _, axis := range geometry.ValidAxes {
			width, err := box.Width(axis)
			if err != nil {
				continue
			}
			view.WidthsCm = append(view.WidthsCm, width)
		}
		volume := box.Volume()
		view.VolumeCm3 = &volume
	}

	for _, basis := range plotter.ValidBases {
		win, err := plotter.SliceWindow(box, basis)
		if err != nil {
			continue
		}
		view.Windows = append(view.Windows, win)
	}
	return view
}

func isFiniteVec(v r3.Vec) bool {
	return !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

func vecSlice(v r3.Vec) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// handleAPIParams reports the effective plot parameters. Zero energy bounds
// mean the edge of the available data; zero grid points keeps the union of
// the table grids.
func (ws *WebServer) handleAPIParams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	params := map[string]interface{}{
		"emin_ev":         ws.params.GetEminEV(),
		"emax_ev":         ws.params.GetEmaxEV(),
		"grid_points":     ws.params.GetGridPoints(),
		"energy_unit":     ws.params.GetEnergyUnit(),
		"formats":         ws.params.GetFormats(),
		"image_width_in":  ws.params.GetImageWidthInches(),
		"image_height_in": ws.params.GetImageHeightInches(),
		"theme":           ws.params.GetTheme(),
	}
	ws.writeJSON(w, params)
}
