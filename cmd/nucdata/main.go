package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fusion-energy/neutronics.report/internal/version"
	"github.com/fusion-energy/neutronics.report/internal/xsdata"
)

var (
	dbPath      = flag.String("db", "xsdata.db", "Path to the cross-section database")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "migrate":
		xsdata.RunMigrateCommand(args[1:], *dbPath)

	case "import":
		if len(args) < 2 {
			log.Fatal("Usage: nucdata import <library.json>")
		}
		if err := runImport(*dbPath, args[1], os.Stdout); err != nil {
			log.Fatalf("Import failed: %v", err)
		}

	case "info":
		if err := runInfo(*dbPath, os.Stdout); err != nil {
			log.Fatalf("Info failed: %v", err)
		}

	case "help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

// runImport loads a JSON library file and writes it into the store. The
// database is migrated first so importing into a fresh file works.
func runImport(dbPath, libPath string, w io.Writer) error {
	database, err := xsdata.Open(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.MigrateUp(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	lib, err := xsdata.LoadLibrary(libPath)
	if err != nil {
		return err
	}

	record, err := xsdata.NewStore(database).ImportLibrary(lib, libPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Imported %s from %s\n", record.LibraryName, record.Source)
	fmt.Fprintf(w, "  import id: %s\n", record.ImportID)
	fmt.Fprintf(w, "  nuclides:  %d\n", record.NuclideCount)
	fmt.Fprintf(w, "  reactions: %d\n", record.ReactionCount)
	fmt.Fprintf(w, "  points:    %d\n", record.PointCount)
	return nil
}

// runInfo summarizes the store: totals, each nuclide with its stored MT
// numbers, thermal tables with cutoffs, and the import history.
func runInfo(dbPath string, w io.Writer) error {
	database, err := xsdata.Open(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.MigrateUp(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	store := xsdata.NewStore(database)
	stats, err := store.Stats()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "=== Store %s ===\n", dbPath)
	fmt.Fprintf(w, "Nuclides:       %d\n", stats.Nuclides)
	fmt.Fprintf(w, "Reactions:      %d\n", stats.Reactions)
	fmt.Fprintf(w, "Points:         %d\n", stats.Points)
	fmt.Fprintf(w, "Thermal tables: %d\n", stats.ThermalTables)
	fmt.Fprintf(w, "Imports:        %d\n", stats.Imports)

	nuclides, err := store.Nuclides()
	if err != nil {
		return err
	}
	if len(nuclides) > 0 {
		fmt.Fprintln(w, "\nNuclides:")
	}
	for _, name := range nuclides {
		reactions, err := store.Reactions(name)
		if err != nil {
			return err
		}
		mts := make([]string, len(reactions))
		for i, r := range reactions {
			mts[i] = fmt.Sprintf("%d", r.MT)
		}
		fmt.Fprintf(w, "  %-6s MT %s\n", name, strings.Join(mts, " "))
	}

	tables, err := store.ThermalTables()
	if err != nil {
		return err
	}
	if len(tables) > 0 {
		fmt.Fprintln(w, "\nThermal tables:")
	}
	for _, table := range tables {
		cutoff, err := store.ThermalCutoff(table)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s (cutoff %g eV)\n", table, cutoff)
	}

	imports, err := store.Imports()
	if err != nil {
		return err
	}
	if len(imports) > 0 {
		fmt.Fprintln(w, "\nImports:")
	}
	for _, rec := range imports {
		at := time.Unix(0, rec.ImportedAt).UTC().Format(time.RFC3339)
		fmt.Fprintf(w, "  %s  %s from %s (%d nuclides, %d points)\n",
			at, rec.LibraryName, rec.Source, rec.NuclideCount, rec.PointCount)
	}
	return nil
}

// printUsage displays the top-level help message
func printUsage() {
	fmt.Println("Nuclear Data Store Administration")
	fmt.Println()
	fmt.Println("Usage: nucdata [-db <path>] <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate <action>       Manage the database schema (up, down, status, version, force)")
	fmt.Println("  import <library.json>  Import a cross-section library")
	fmt.Println("  info                   Summarize the store contents")
	fmt.Println("  help                   Show this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  nucdata migrate up")
	fmt.Println("  nucdata -db endf.db import endf_b_viii.json")
	fmt.Println("  nucdata -db endf.db info")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -db <path>    Path to database file (default: xsdata.db)")
}
