package xsdata

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

// RunMigrateCommand dispatches the 'migrate' subcommand. Failures exit the
// process; this is CLI plumbing, not library code.
func RunMigrateCommand(args []string, dbPath string) {
	if len(args) < 1 {
		PrintMigrateHelp()
		os.Exit(1)
	}

	// The schema is owned by the migrations, so the database is opened
	// without touching it.
	database, err := Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	switch action := args[0]; action {
	case "up":
		handleMigrateUp(database)
	case "down":
		handleMigrateDown(database)
	case "status":
		handleMigrateStatus(database)
	case "version":
		if len(args) < 2 {
			log.Fatal("Usage: nucdata migrate version <N>")
		}
		handleMigrateVersion(database, args[1])
	case "force":
		if len(args) < 2 {
			log.Fatal("Usage: nucdata migrate force <N>")
		}
		handleMigrateForce(database, args[1])
	case "help":
		PrintMigrateHelp()
	default:
		fmt.Printf("Unknown migrate action: %s\n\n", action)
		PrintMigrateHelp()
		os.Exit(1)
	}
}

func logSchemaVersion(database *DB) {
	version, dirty, err := database.MigrateVersion()
	if err != nil {
		log.Printf("Could not read schema version: %v", err)
		return
	}
	log.Printf("Schema now at version %d (dirty: %v)", version, dirty)
}

func handleMigrateUp(database *DB) {
	log.Printf("Applying pending migrations...")
	if err := database.MigrateUp(); err != nil {
		log.Fatalf("Migrate up failed: %v", err)
	}
	log.Println("✓ Migrations applied")
	logSchemaVersion(database)
}

func handleMigrateDown(database *DB) {
	log.Printf("Rolling back one migration...")
	if err := database.MigrateDown(); err != nil {
		log.Fatalf("Migrate down failed: %v", err)
	}
	log.Println("✓ Rolled back one migration")
	logSchemaVersion(database)
}

func handleMigrateStatus(database *DB) {
	status, err := database.MigrationStatus()
	if err != nil {
		log.Fatalf("Failed to read migration status: %v", err)
	}
	latest, err := LatestMigrationVersion()
	if err != nil {
		log.Fatalf("Failed to read embedded migrations: %v", err)
	}

	version, _ := status["current_version"].(uint)
	dirty, _ := status["dirty"].(bool)

	fmt.Println("=== Migration Status ===")
	fmt.Printf("Current version:  %d\n", version)
	fmt.Printf("Latest available: %d\n", latest)
	fmt.Printf("Dirty:            %v\n", dirty)
	fmt.Printf("Tracking table:   %v\n", status["schema_migrations_exists"])

	switch {
	case dirty:
		fmt.Println("\n⚠️  Database is dirty: a migration failed partway.")
		fmt.Println("Inspect the database, fix it, then run: nucdata migrate force <N>")
	case version < latest:
		fmt.Printf("\n⚠️  %d migration(s) pending. Run 'nucdata migrate up'.\n", latest-version)
	default:
		fmt.Println("\n✓ Schema is up to date")
	}
}

func handleMigrateVersion(database *DB, arg string) {
	target, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		log.Fatalf("Invalid version number %q", arg)
	}
	log.Printf("Migrating to version %d...", target)
	if err := database.MigrateTo(uint(target)); err != nil {
		log.Fatalf("Migrate to version %d failed: %v", target, err)
	}
	log.Printf("✓ Schema at version %d", target)
}

func handleMigrateForce(database *DB, arg string) {
	target, err := strconv.Atoi(arg)
	if err != nil {
		log.Fatalf("Invalid version number %q", arg)
	}

	fmt.Printf("⚠️  Forcing schema version to %d without running migrations.\n", target)
	fmt.Print("Continue? [y/N]: ")
	var answer string
	fmt.Scanln(&answer)
	if !strings.EqualFold(answer, "y") {
		log.Println("Aborted")
		os.Exit(0)
	}

	if err := database.MigrateForce(target); err != nil {
		log.Fatalf("Force failed: %v", err)
	}
	log.Printf("✓ Schema version forced to %d", target)
}

// PrintMigrateHelp writes the migrate subcommand usage to stdout.
func PrintMigrateHelp() {
	fmt.Println("Database Migration Commands")
	fmt.Println()
	fmt.Println("Usage: nucdata migrate <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up              Apply all pending migrations")
	fmt.Println("  down            Roll back the most recent migration")
	fmt.Println("  status          Show schema version and pending migrations")
	fmt.Println("  version <N>     Migrate up or down to version N")
	fmt.Println("  force <N>       Stamp the schema version (dirty-state recovery)")
	fmt.Println("  help            Show this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  nucdata migrate up")
	fmt.Println("  nucdata migrate status")
	fmt.Println("  nucdata migrate force 1")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -db <path>    Path to database file (default: xsdata.db)")
}
