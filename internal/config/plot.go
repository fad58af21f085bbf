// Package config loads and validates plot parameter files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fusion-energy/neutronics.report/internal/units"
)

// PlotConfig represents the plot parameter configuration. The schema
// matches the /api/params endpoint so the same JSON can be used for both
// startup configuration and inspection at runtime.
type PlotConfig struct {
	// Energy grid params
	EminEV     *float64 `json:"emin_ev,omitempty"`
	EmaxEV     *float64 `json:"emax_ev,omitempty"`
	GridPoints *int     `json:"grid_points,omitempty"` // 0 keeps the union grid
	EnergyUnit *string  `json:"energy_unit,omitempty"` // display unit: ev, kev or mev

	// Output params
	Formats           []string `json:"formats,omitempty"` // png, html
	ImageWidthInches  *float64 `json:"image_width_in,omitempty"`
	ImageHeightInches *float64 `json:"image_height_in,omitempty"`
	Theme             *string  `json:"theme,omitempty"` // dark or white
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// EmptyPlotConfig returns a PlotConfig with all fields set to nil. The Get*
// methods supply defaults for unset fields.
func EmptyPlotConfig() *PlotConfig {
	return &PlotConfig{}
}

// Load reads a PlotConfig from a JSON file. Fields omitted from the JSON
// keep their defaults through the Get* accessors, so partial configs are
// safe.
func Load(path string) (*PlotConfig, error) {
	clean := filepath.Clean(path)
	if ext := filepath.Ext(clean); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Reject anything over 1 MB before reading.
	const maxConfigBytes = 1 << 20
	info, err := os.Stat(clean)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigBytes {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigBytes)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := EmptyPlotConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *PlotConfig) Validate() error {
	if c.EminEV != nil && *c.EminEV < 0 {
		return fmt.Errorf("emin_ev must be non-negative, got %g", *c.EminEV)
	}
	if c.EmaxEV != nil && *c.EmaxEV < 0 {
		return fmt.Errorf("emax_ev must be non-negative, got %g", *c.EmaxEV)
	}
	if c.EminEV != nil && c.EmaxEV != nil && *c.EminEV > 0 && *c.EmaxEV > 0 && *c.EmaxEV <= *c.EminEV {
		return fmt.Errorf("emax_ev (%g) must be greater than emin_ev (%g)", *c.EmaxEV, *c.EminEV)
	}

	if c.GridPoints != nil {
		if *c.GridPoints < 0 || *c.GridPoints == 1 {
			return fmt.Errorf("grid_points must be 0 or at least 2, got %d", *c.GridPoints)
		}
	}

	if c.EnergyUnit != nil && !units.IsValidEnergyUnit(*c.EnergyUnit) {
		return fmt.Errorf("invalid energy_unit %q (valid units: %s)", *c.EnergyUnit, units.ValidEnergyUnitsString())
	}

	for _, f := range c.Formats {
		if f != "png" && f != "html" {
			return fmt.Errorf("invalid output format %q (valid formats: png, html)", f)
		}
	}

	if c.ImageWidthInches != nil && *c.ImageWidthInches <= 0 {
		return fmt.Errorf("image_width_in must be positive, got %g", *c.ImageWidthInches)
	}
	if c.ImageHeightInches != nil && *c.ImageHeightInches <= 0 {
		return fmt.Errorf("image_height_in must be positive, got %g", *c.ImageHeightInches)
	}

	if c.Theme != nil && *c.Theme != "dark" && *c.Theme != "white" {
		return fmt.Errorf("invalid theme %q (valid themes: dark, white)", *c.Theme)
	}

	return nil
}

// GetEminEV returns the lower energy bound in eV, 0 meaning the edge of the
// available data.
func (c *PlotConfig) GetEminEV() float64 {
	if c.EminEV == nil {
		return 0
	}
	return *c.EminEV
}

// GetEmaxEV returns the upper energy bound in eV, 0 meaning the edge of the
// available data.
func (c *PlotConfig) GetEmaxEV() float64 {
	if c.EmaxEV == nil {
		return 0
	}
	return *c.EmaxEV
}

// GetGridPoints returns the resample point count, 0 meaning the union of
// the contributing table grids.
func (c *PlotConfig) GetGridPoints() int {
	if c.GridPoints == nil {
		return 0
	}
	return *c.GridPoints
}

// GetEnergyUnit returns the display energy unit or the default.
func (c *PlotConfig) GetEnergyUnit() string {
	if c.EnergyUnit == nil {
		return units.EV
	}
	return *c.EnergyUnit
}

// GetFormats returns the output formats or the default.
func (c *PlotConfig) GetFormats() []string {
	if len(c.Formats) == 0 {
		return []string{"png", "html"}
	}
	return c.Formats
}

// GetImageWidthInches returns the image width or the default.
func (c *PlotConfig) GetImageWidthInches() float64 {
	if c.ImageWidthInches == nil {
		return 10
	}
	return *c.ImageWidthInches
}

// GetImageHeightInches returns the image height or the default.
func (c *PlotConfig) GetImageHeightInches() float64 {
	if c.ImageHeightInches == nil {
		return 6
	}
	return *c.ImageHeightInches
}

// GetTheme returns the chart theme or the default.
func (c *PlotConfig) GetTheme() string {
	if c.Theme == nil {
		return "dark"
	}
	return *c.Theme
}
