package xsdata

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a nuclide, reaction or thermal table is not
// in the database.
var ErrNotFound = errors.New("not found")

// Table is a pointwise cross-section table read back from the store.
type Table struct {
	EnergiesEV []float64 `json:"energies_ev"`
	Barns      []float64 `json:"barns"`
}

// ReactionInfo summarizes one stored reaction of a nuclide.
type ReactionInfo struct {
	MT     int    `json:"mt"`
	Remark string `json:"remark,omitempty"`
	Points int    `json:"points"`
}

// ImportRecord describes one library import run.
type ImportRecord struct {
	ImportID      string `json:"import_id"`
	Source        string `json:"source"`
	LibraryName   string `json:"library_name"`
	NuclideCount  int    `json:"nuclide_count"`
	ReactionCount int    `json:"reaction_count"`
	PointCount    int    `json:"point_count"`
	ImportedAt    int64  `json:"imported_at"` // unix nanos
}

// Stats summarizes the store contents.
type Stats struct {
	Nuclides      int `json:"nuclides"`
	Reactions     int `json:"reactions"`
	Points        int `json:"points"`
	ThermalTables int `json:"thermal_tables"`
	Imports       int `json:"imports"`
}

// Store provides persistence for cross-section libraries.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(db *DB) *Store {
	return &Store{db: db.DB}
}

// ImportLibrary writes a validated library into the store inside one
// transaction, replacing any previous tables for the same nuclides, and
// records the import run. If the record's ImportID is empty, a UUID is
// generated.
func (s *Store) ImportLibrary(lib *Library, source string) (*ImportRecord, error) {
	if err := lib.Validate(); err != nil {
		return nil, fmt.Errorf("import library: %w", err)
	}

	nuclides, reactions, points := lib.Counts()
	rec := &ImportRecord{
		ImportID:      uuid.New().String(),
		Source:        source,
		LibraryName:   lib.Name,
		NuclideCount:  nuclides,
		ReactionCount: reactions,
		PointCount:    points,
		ImportedAt:    time.Now().UnixNano(),
	}

	err := retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin import: %w", err)
		}
		defer tx.Rollback()

		for _, nuc := range lib.Nuclides {
			if err := importNuclide(tx, nuc); err != nil {
				return err
			}
		}
		for _, tt := range lib.Thermal {
			if err := importThermalTable(tx, tt); err != nil {
				return err
			}
		}

		_, err = tx.Exec(`
			INSERT INTO library_imports (
				import_id, source, library_name,
				nuclide_count, reaction_count, point_count, imported_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ImportID, rec.Source, rec.LibraryName,
			rec.NuclideCount, rec.ReactionCount, rec.PointCount, rec.ImportedAt,
		)
		if err != nil {
			return fmt.Errorf("record import: %w", err)
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func importNuclide(tx *sql.Tx, nuc LibraryNuclide) error {
	_, err := tx.Exec(`INSERT OR REPLACE INTO nuclides (name, atomic_mass_amu) VALUES (?, ?)`,
		nuc.Name, nuc.AtomicMassAMU)
	if err != nil {
		return fmt.Errorf("insert nuclide %s: %w", nuc.Name, err)
	}

	// Replace the nuclide's tables wholesale; partial point updates are
	// never meaningful.
	if _, err := tx.Exec(`DELETE FROM xs_points WHERE nuclide = ?`, nuc.Name); err != nil {
		return fmt.Errorf("clear points for %s: %w", nuc.Name, err)
	}
	if _, err := tx.Exec(`DELETE FROM reactions WHERE nuclide = ?`, nuc.Name); err != nil {
		return fmt.Errorf("clear reactions for %s: %w", nuc.Name, err)
	}

	for _, r := range nuc.Reactions {
		_, err := tx.Exec(`INSERT INTO reactions (nuclide, mt, remark) VALUES (?, ?, ?)`,
			nuc.Name, r.MT, r.Remark)
		if err != nil {
			return fmt.Errorf("insert reaction %s MT=%d: %w", nuc.Name, r.MT, err)
		}
		for i := range r.EnergiesEV {
			_, err := tx.Exec(`
				INSERT INTO xs_points (nuclide, mt, point_index, energy_ev, barns)
				VALUES (?, ?, ?, ?, ?)`,
				nuc.Name, r.MT, i, r.EnergiesEV[i], r.Barns[i])
			if err != nil {
				return fmt.Errorf("insert point %s MT=%d index=%d: %w", nuc.Name, r.MT, i, err)
			}
		}
	}
	return nil
}

func importThermalTable(tx *sql.Tx, tt ThermalTable) error {
	_, err := tx.Exec(`INSERT OR REPLACE INTO thermal_tables (name, cutoff_ev) VALUES (?, ?)`,
		tt.Name, tt.CutoffEV)
	if err != nil {
		return fmt.Errorf("insert thermal table %s: %w", tt.Name, err)
	}
	if _, err := tx.Exec(`DELETE FROM thermal_coverage WHERE table_name = ?`, tt.Name); err != nil {
		return fmt.Errorf("clear coverage for %s: %w", tt.Name, err)
	}
	if _, err := tx.Exec(`DELETE FROM thermal_points WHERE table_name = ?`, tt.Name); err != nil {
		return fmt.Errorf("clear thermal points for %s: %w", tt.Name, err)
	}

	for _, nuc := range tt.Nuclides {
		_, err := tx.Exec(`INSERT INTO thermal_coverage (table_name, nuclide) VALUES (?, ?)`,
			tt.Name, nuc)
		if err != nil {
			return fmt.Errorf("insert coverage %s/%s: %w", tt.Name, nuc, err)
		}
	}
	for _, r := range tt.Curves {
		for i := range r.EnergiesEV {
			_, err := tx.Exec(`
				INSERT INTO thermal_points (table_name, mt, point_index, energy_ev, barns)
				VALUES (?, ?, ?, ?, ?)`,
				tt.Name, r.MT, i, r.EnergiesEV[i], r.Barns[i])
			if err != nil {
				return fmt.Errorf("insert thermal point %s MT=%d index=%d: %w", tt.Name, r.MT, i, err)
			}
		}
	}
	return nil
}

// Nuclides returns the stored nuclide names, sorted.
func (s *Store) Nuclides() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM nuclides ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query nuclides: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan nuclide row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// HasNuclide reports whether the nuclide is in the store.
func (s *Store) HasNuclide(name string) (bool, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM nuclides WHERE name = ?`, name).Scan(&count); err != nil {
		return false, fmt.Errorf("query nuclide %s: %w", name, err)
	}
	return count > 0, nil
}

// NuclideMass returns the stored atomic mass in amu.
func (s *Store) NuclideMass(name string) (float64, error) {
	var mass float64
	err := s.db.QueryRow(`SELECT atomic_mass_amu FROM nuclides WHERE name = ?`, name).Scan(&mass)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("nuclide %s: %w", name, ErrNotFound)
		}
		return 0, fmt.Errorf("query nuclide mass %s: %w", name, err)
	}
	return mass, nil
}

// Reactions returns the stored reactions of a nuclide ordered by MT, with
// point counts.
func (s *Store) Reactions(nuclide string) ([]ReactionInfo, error) {
	rows, err := s.db.Query(`
		SELECT r.mt, r.remark, COUNT(p.point_index)
		FROM reactions r
		LEFT JOIN xs_points p ON p.nuclide = r.nuclide AND p.mt = r.mt
		WHERE r.nuclide = ?
		GROUP BY r.mt, r.remark
		ORDER BY r.mt`, nuclide)
	if err != nil {
		return nil, fmt.Errorf("query reactions for %s: %w", nuclide, err)
	}
	defer rows.Close()

	var infos []ReactionInfo
	for rows.Next() {
		var info ReactionInfo
		var remark sql.NullString
		if err := rows.Scan(&info.MT, &remark, &info.Points); err != nil {
			return nil, fmt.Errorf("scan reaction row: %w", err)
		}
		info.Remark = remark.String
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// CrossSection returns the pointwise table for one nuclide reaction.
func (s *Store) CrossSection(nuclide string, mt int) (Table, error) {
	table, err := s.queryTable(`
		SELECT energy_ev, barns FROM xs_points
		WHERE nuclide = ? AND mt = ?
		ORDER BY point_index`, nuclide, mt)
	if err != nil {
		return Table{}, fmt.Errorf("cross section %s MT=%d: %w", nuclide, mt, err)
	}
	return table, nil
}

// ThermalCrossSection returns the thermal curve of an S(α,β) table for
// one MT number.
func (s *Store) ThermalCrossSection(table string, mt int) (Table, error) {
	tab, err := s.queryTable(`
		SELECT energy_ev, barns FROM thermal_points
		WHERE table_name = ? AND mt = ?
		ORDER BY point_index`, table, mt)
	if err != nil {
		return Table{}, fmt.Errorf("thermal cross section %s MT=%d: %w", table, mt, err)
	}
	return tab, nil
}

func (s *Store) queryTable(query string, args ...interface{}) (Table, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return Table{}, err
	}
	defer rows.Close()

	var table Table
	for rows.Next() {
		var energy, barns float64
		if err := rows.Scan(&energy, &barns); err != nil {
			return Table{}, err
		}
		table.EnergiesEV = append(table.EnergiesEV, energy)
		table.Barns = append(table.Barns, barns)
	}
	if err := rows.Err(); err != nil {
		return Table{}, err
	}
	if len(table.EnergiesEV) == 0 {
		return Table{}, ErrNotFound
	}
	return table, nil
}

// HasThermalTable reports whether the named S(α,β) table is in the store.
func (s *Store) HasThermalTable(name string) (bool, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM thermal_tables WHERE name = ?`, name).Scan(&count); err != nil {
		return false, fmt.Errorf("query thermal table %s: %w", name, err)
	}
	return count > 0, nil
}

// ThermalCutoff returns the cutoff energy in eV below which the named
// thermal table replaces the free-atom curves.
func (s *Store) ThermalCutoff(name string) (float64, error) {
	var cutoff float64
	err := s.db.QueryRow(`SELECT cutoff_ev FROM thermal_tables WHERE name = ?`, name).Scan(&cutoff)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("thermal table %s: %w", name, ErrNotFound)
		}
		return 0, fmt.Errorf("query thermal cutoff %s: %w", name, err)
	}
	return cutoff, nil
}

// ThermalCovers reports whether the named thermal table covers the nuclide.
func (s *Store) ThermalCovers(table, nuclide string) (bool, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM thermal_coverage
		WHERE table_name = ? AND nuclide = ?`, table, nuclide).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query thermal coverage %s/%s: %w", table, nuclide, err)
	}
	return count > 0, nil
}

// ThermalTables returns the stored thermal table names, sorted.
func (s *Store) ThermalTables() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM thermal_tables ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query thermal tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan thermal table row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Imports returns the recorded import runs, newest first.
func (s *Store) Imports() ([]ImportRecord, error) {
	rows, err := s.db.Query(`
		SELECT import_id, source, library_name,
		       nuclide_count, reaction_count, point_count, imported_at
		FROM library_imports
		ORDER BY imported_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	var recs []ImportRecord
	for rows.Next() {
		var rec ImportRecord
		if err := rows.Scan(
			&rec.ImportID, &rec.Source, &rec.LibraryName,
			&rec.NuclideCount, &rec.ReactionCount, &rec.PointCount, &rec.ImportedAt,
		); err != nil {
			return nil, fmt.Errorf("scan import row: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Stats returns row counts for the whole store.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM nuclides`, &st.Nuclides},
		{`SELECT COUNT(*) FROM reactions`, &st.Reactions},
		{`SELECT COUNT(*) FROM xs_points`, &st.Points},
		{`SELECT COUNT(*) FROM thermal_tables`, &st.ThermalTables},
		{`SELECT COUNT(*) FROM library_imports`, &st.Imports},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dst); err != nil {
			return Stats{}, fmt.Errorf("store stats: %w", err)
		}
	}
	return st, nil
}
