// Package xsdata stores evaluated neutron cross-section data in sqlite:
// nuclides, their reactions keyed by ENDF MT number, pointwise
// energy/cross-section tables, thermal scattering tables, and a record of
// library imports. Schema changes go through versioned migrations.
package xsdata

import (
	"compress/gzip"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"
)

type DB struct {
	*sql.DB

	path string
}

// Open opens (creating if needed) the sqlite database at path. The schema
// is managed by migrations, not here; a freshly opened database may be
// empty until MigrateUp runs.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return &DB{DB: db, path: path}, nil
}

// Path returns the filesystem path the database was opened with.
func (db *DB) Path() string {
	return db.path
}

// AttachAdminRoutes mounts the tsweb debug pages on mux, with a tailsql
// console bound to this database and a gzip backup download built on
// VACUUM INTO.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB(fmt.Sprintf("sqlite://%s", db.path), db.DB, &tailsql.DBOptions{
		Label: "Nuclear data DB",
	})
	debug.Handle("tailsql/", "SQL console", tsql.NewMux())
	debug.Handle("backup", "Download a gzip backup of the database", http.HandlerFunc(db.handleBackup))
}

// handleBackup snapshots the live database with VACUUM INTO and streams the
// snapshot back gzip-compressed. The snapshot file is removed once sent.
func (db *DB) handleBackup(w http.ResponseWriter, r *http.Request) {
	name := fmt.Sprintf("xsdata-backup-%d.db", time.Now().Unix())
	snapshot := filepath.Join(os.TempDir(), name)
	if _, err := db.Exec("VACUUM INTO ?", snapshot); err != nil {
		http.Error(w, fmt.Sprintf("backup failed: %v", err), http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := os.Remove(snapshot); err != nil {
			log.Printf("failed to remove backup snapshot %s: %v", snapshot, err)
		}
	}()

	f, err := os.Open(snapshot)
	if err != nil {
		http.Error(w, fmt.Sprintf("backup unreadable: %v", err), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Encoding", "gzip")

	gz := gzip.NewWriter(w)
	defer gz.Close()
	// Headers are out the door once the copy starts, so a failure here can
	// only be logged.
	if _, err := io.Copy(gz, f); err != nil {
		log.Printf("backup download interrupted: %v", err)
	}
}
