package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fusion-energy/neutronics.report/internal/config"
	"github.com/fusion-energy/neutronics.report/internal/geometry"
	"github.com/fusion-energy/neutronics.report/internal/materials"
	"github.com/fusion-energy/neutronics.report/internal/plotter"
	"github.com/fusion-energy/neutronics.report/internal/report"
	"github.com/fusion-energy/neutronics.report/internal/security"
	"github.com/fusion-energy/neutronics.report/internal/version"
	"github.com/fusion-energy/neutronics.report/internal/xsdata"
)

var (
	deckPath    = flag.String("deck", "", "Material deck YAML to load")
	dbPath      = flag.String("db", "xsdata.db", "Cross-section database path")
	outDir      = flag.String("out", "reports", "Output directory for one-shot reports")
	configPath  = flag.String("config", "", "Plot parameter JSON file")
	targetsFlag = flag.String("targets", "", "Comma-separated targets to chart (default: deck materials, else stored nuclides)")
	typesFlag   = flag.String("types", "total", "Comma-separated reaction types or MT numbers")
	formatFlag  = flag.String("format", "", "Comma-separated output formats: png, html (default from config)")
	serve       = flag.Bool("serve", false, "Serve reports over HTTP instead of writing files")
	listen      = flag.String("listen", ":8080", "Listen address in serve mode")
	sample      = flag.Bool("sample", false, "Seed the demo library when the database is empty")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if *dbPath == "" {
		log.Fatal("Database path is required")
	}
	log.Printf("xsreport %s", version.String())

	params := config.EmptyPlotConfig()
	if *configPath != "" {
		var err error
		params, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load plot config: %v", err)
		}
	}

	database, err := xsdata.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.MigrateUp(); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	store := xsdata.NewStore(database)

	if *sample {
		if err := seedDemoLibrary(store); err != nil {
			log.Fatalf("failed to seed demo library: %v", err)
		}
	}

	var deck *materials.Deck
	if *deckPath != "" {
		deck, err = materials.LoadDeck(*deckPath)
		if err != nil {
			log.Fatalf("failed to load deck %s: %v", *deckPath, err)
		}
		log.Printf("loaded deck %s (%d materials)", *deckPath, len(deck.Names()))
		logDeckSummary(deck)
	}

	if *serve {
		runServer(database, deck, params)
		return
	}

	targets, err := resolveTargets(store, deck, *targetsFlag)
	if err != nil {
		log.Fatalf("cannot resolve targets: %v", err)
	}

	formats := params.GetFormats()
	if *formatFlag != "" {
		formats = splitList(*formatFlag)
	}

	written, err := generateReports(store, deck, reportOptions{
		Targets: targets,
		Types:   splitList(*typesFlag),
		Formats: formats,
		OutDir:  *outDir,
		Params:  params,
	})
	for _, path := range written {
		log.Printf("wrote %s", path)
	}
	if err != nil {
		log.Fatalf("report generation failed: %v", err)
	}
	log.Printf("report generation complete: %d files in %s", len(written), *outDir)
}

// runServer starts the report web server and the deck watcher, then blocks
// until SIGINT or SIGTERM.
func runServer(database *xsdata.DB, deck *materials.Deck, params *config.PlotConfig) {
	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	server := report.NewWebServer(report.WebServerConfig{
		Address:  *listen,
		DB:       database,
		Deck:     deck,
		DeckPath: *deckPath,
		Params:   params,
	})

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// reload the deck when the file changes on disk
	if *deckPath != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.WatchDeck(ctx); err != nil {
				log.Printf("deck watcher stopped: %v", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Start(ctx); err != nil {
			log.Printf("report server error: %v", err)
		}
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

// seedDemoLibrary imports the bundled demo library unless the store already
// holds nuclide data.
func seedDemoLibrary(store *xsdata.Store) error {
	stats, err := store.Stats()
	if err != nil {
		return err
	}
	if stats.Nuclides > 0 {
		log.Printf("store already holds %d nuclides, skipping demo seed", stats.Nuclides)
		return nil
	}

	lib, err := xsdata.DemoLibrary()
	if err != nil {
		return err
	}
	record, err := store.ImportLibrary(lib, "demo")
	if err != nil {
		return err
	}
	log.Printf("seeded demo library %s: %d nuclides, %d reactions, %d points",
		record.LibraryName, record.NuclideCount, record.ReactionCount, record.PointCount)
	return nil
}

// resolveTargets decides what to chart: the -targets list wins, then the
// deck materials, then everything in the store.
func resolveTargets(store *xsdata.Store, deck *materials.Deck, flagValue string) ([]string, error) {
	if flagValue != "" {
		targets := splitList(flagValue)
		if len(targets) == 0 {
			return nil, fmt.Errorf("-targets %q parses to nothing", flagValue)
		}
		return targets, nil
	}
	if deck != nil && len(deck.Materials) > 0 {
		return deck.Names(), nil
	}
	nuclides, err := store.Nuclides()
	if err != nil {
		return nil, err
	}
	if len(nuclides) == 0 {
		return nil, fmt.Errorf("nothing to chart: provide -deck or -targets, or seed the store")
	}
	return nuclides, nil
}

// logDeckSummary prints one line per material plus its spatial extent.
func logDeckSummary(deck *materials.Deck) {
	for _, mat := range deck.Materials {
		line := fmt.Sprintf("material %s: %d components", mat.Name, len(mat.Components()))
		if value, unit, ok := mat.Density(); ok {
			line += fmt.Sprintf(", density %g %s", value, unit)
		}
		if sab := mat.SAlphaBeta(); len(sab) > 0 {
			line += fmt.Sprintf(", thermal %s", strings.Join(sab, " "))
		}
		log.Print(line)

		if box, ok := mat.Extent(); ok {
			widths := make([]string, 0, len(geometry.ValidAxes))
			for _, axis := range geometry.ValidAxes {
				w, err := box.Width(axis)
				if err != nil {
					continue
				}
				widths = append(widths, fmt.Sprintf("%g", w))
			}
			log.Printf("  extent %v, widths [%s] cm, volume %g cm3",
				box, strings.Join(widths, " "), box.Volume())
		}
	}
}

type reportOptions struct {
	Targets []string
	Types   []string
	Formats []string
	OutDir  string
	Params  *config.PlotConfig
}

// generateReports evaluates and renders one chart set per target. The paths
// written so far are returned even when a later target fails.
func generateReports(store *xsdata.Store, deck *materials.Deck, opts reportOptions) ([]string, error) {
	if len(opts.Types) == 0 {
		return nil, fmt.Errorf("no reaction types requested")
	}
	if len(opts.Formats) == 0 {
		return nil, fmt.Errorf("no output formats requested")
	}
	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	calcOpts := plotter.Options{
		EminEV: opts.Params.GetEminEV(),
		EmaxEV: opts.Params.GetEmaxEV(),
		Points: opts.Params.GetGridPoints(),
	}

	var written []string
	for _, target := range opts.Targets {
		cx, err := plotter.Calculate(store, deck, target, opts.Types, calcOpts)
		if err != nil {
			return written, fmt.Errorf("target %s: %w", target, err)
		}

		base := security.SanitizeFilename(target) + "_xs"
		for _, format := range opts.Formats {
			path := filepath.Join(opts.OutDir, base+"."+format)
			switch format {
			case "png":
				err = renderPNGFile(cx, path, opts.Params)
			case "html":
				err = renderHTMLFile(cx, path, opts.Params)
			default:
				return written, fmt.Errorf("unknown format %q (valid: png, html)", format)
			}
			if err != nil {
				return written, fmt.Errorf("target %s: %w", target, err)
			}
			written = append(written, path)
		}
	}
	return written, nil
}

func renderPNGFile(cx *plotter.CrossSections, path string, params *config.PlotConfig) error {
	return plotter.RenderPNG(cx, path, plotter.PNGOptions{
		WidthInches:  params.GetImageWidthInches(),
		HeightInches: params.GetImageHeightInches(),
	})
}

func renderHTMLFile(cx *plotter.CrossSections, path string, params *config.PlotConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := plotter.RenderHTML(cx, f, plotter.HTMLOptions{Theme: params.GetTheme()}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
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
