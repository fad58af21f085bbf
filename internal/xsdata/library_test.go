package xsdata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDemoLibrary(t *testing.T) {
	lib, err := DemoLibrary()
	if err != nil {
		t.Fatalf("Failed to load demo library: %v", err)
	}

	if lib.Name == "" {
		t.Error("Expected demo library to have a name")
	}

	nuclides, reactions, points := lib.Counts()
	if nuclides != 10 {
		t.Errorf("Expected 10 nuclides in demo library, got %d", nuclides)
	}
	if reactions == 0 || points == 0 {
		t.Errorf("Expected non-zero reactions and points, got %d and %d", reactions, points)
	}

	// Every nuclide carries a total cross section.
	for _, nuc := range lib.Nuclides {
		hasTotal := false
		for _, r := range nuc.Reactions {
			if r.MT == 1 {
				hasTotal = true
			}
		}
		if !hasTotal {
			t.Errorf("Nuclide %s has no total (MT=1) table", nuc.Name)
		}
	}

	// Thermal tables only cover nuclides the library actually has.
	known := make(map[string]bool)
	for _, nuc := range lib.Nuclides {
		known[nuc.Name] = true
	}
	for _, tt := range lib.Thermal {
		for _, nuc := range tt.Nuclides {
			if !known[nuc] {
				t.Errorf("Thermal table %s covers unknown nuclide %s", tt.Name, nuc)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Library { return testLibrary() }

	tests := []struct {
		name    string
		mutate  func(*Library)
		wantErr string
	}{
		{
			name:    "valid library",
			mutate:  func(lib *Library) {},
			wantErr: "",
		},
		{
			name:    "missing name",
			mutate:  func(lib *Library) { lib.Name = "" },
			wantErr: "no name",
		},
		{
			name:    "no nuclides",
			mutate:  func(lib *Library) { lib.Nuclides = nil },
			wantErr: "no nuclides",
		},
		{
			name:    "unnamed nuclide",
			mutate:  func(lib *Library) { lib.Nuclides[0].Name = "" },
			wantErr: "without a name",
		},
		{
			name:    "non-positive mass",
			mutate:  func(lib *Library) { lib.Nuclides[0].AtomicMassAMU = 0 },
			wantErr: "atomic mass must be positive",
		},
		{
			name:    "nuclide without reactions",
			mutate:  func(lib *Library) { lib.Nuclides[0].Reactions = nil },
			wantErr: "no reactions",
		},
		{
			name: "duplicate MT",
			mutate: func(lib *Library) {
				lib.Nuclides[0].Reactions[1].MT = lib.Nuclides[0].Reactions[0].MT
			},
			wantErr: "duplicate reaction",
		},
		{
			name: "mismatched lengths",
			mutate: func(lib *Library) {
				lib.Nuclides[0].Reactions[0].Barns = []float64{1.0}
			},
			wantErr: "energies but",
		},
		{
			name: "single point",
			mutate: func(lib *Library) {
				lib.Nuclides[0].Reactions[0].EnergiesEV = []float64{1.0}
				lib.Nuclides[0].Reactions[0].Barns = []float64{1.0}
			},
			wantErr: "at least 2 points",
		},
		{
			name: "non-increasing energies",
			mutate: func(lib *Library) {
				lib.Nuclides[0].Reactions[0].EnergiesEV = []float64{1.0, 1.0, 2.0}
			},
			wantErr: "not strictly increasing",
		},
		{
			name: "non-positive energy",
			mutate: func(lib *Library) {
				lib.Nuclides[0].Reactions[0].EnergiesEV = []float64{0, 1.0, 2.0}
			},
			wantErr: "energies must be positive",
		},
		{
			name: "negative cross section",
			mutate: func(lib *Library) {
				lib.Nuclides[0].Reactions[0].Barns[1] = -1.0
			},
			wantErr: "negative cross section",
		},
		{
			name: "thermal table without cutoff",
			mutate: func(lib *Library) {
				lib.Thermal[0].CutoffEV = 0
			},
			wantErr: "cutoff must be positive",
		},
		{
			name: "thermal table without nuclides",
			mutate: func(lib *Library) {
				lib.Thermal[0].Nuclides = nil
			},
			wantErr: "covers no nuclides",
		},
		{
			name: "duplicate thermal curve",
			mutate: func(lib *Library) {
				curve := lib.Thermal[0].Curves[0]
				lib.Thermal[0].Curves = append(lib.Thermal[0].Curves, curve)
			},
			wantErr: "duplicate curve",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := valid()
			tt.mutate(lib)
			err := lib.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadLibrary(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "lib.json")

	data, err := json.Marshal(testLibrary())
	if err != nil {
		t.Fatalf("Failed to marshal test library: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write library file: %v", err)
	}

	lib, err := LoadLibrary(path)
	if err != nil {
		t.Fatalf("Failed to load library: %v", err)
	}
	if lib.Name != "test-lib" {
		t.Errorf("Expected library name test-lib, got %s", lib.Name)
	}

	if _, err := LoadLibrary(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestParseLibraryBadJSON(t *testing.T) {
	if _, err := ParseLibrary([]byte(`{"name": `)); err == nil {
		t.Error("Expected error for malformed JSON")
	}
	if _, err := ParseLibrary([]byte(`{"name": "x", "nuclides": []}`)); err == nil {
		t.Error("Expected validation error for empty library")
	}
}
