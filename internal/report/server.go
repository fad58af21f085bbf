// Package report serves cross-section reports over HTTP: an embedded
// dashboard, chart and JSON endpoints backed by the plotter, and the
// database admin routes. The material deck can be reloaded from disk while
// the server runs.
package report

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fusion-energy/neutronics.report/internal/config"
	"github.com/fusion-energy/neutronics.report/internal/materials"
	"github.com/fusion-energy/neutronics.report/internal/xsdata"
)

//go:embed dashboard.html
var DashboardHTML embed.FS

// ANSI colors for the request log.
const (
	colorReset     = "\033[0m"
	colorCyan      = "\033[36m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
)

// WebServer handles the HTTP interface for cross-section reports.
// It provides the dashboard, chart rendering, JSON lookups and the
// database admin routes.
type WebServer struct {
	address  string
	db       *xsdata.DB
	store    *xsdata.Store
	params   *config.PlotConfig
	deckPath string
	server   *http.Server
	started  time.Time

	mu   sync.RWMutex
	deck *materials.Deck
}

// WebServerConfig carries the dependencies a WebServer needs at start.
type WebServerConfig struct {
	Address  string
	DB       *xsdata.DB
	Deck     *materials.Deck
	DeckPath string
	Params   *config.PlotConfig
}

// NewWebServer wires the report server. A nil DB disables the store-backed
// endpoints and a nil Params falls back to the built-in defaults.
func NewWebServer(cfg WebServerConfig) *WebServer {
	ws := &WebServer{
		address:  cfg.Address,
		db:       cfg.DB,
		params:   cfg.Params,
		deckPath: cfg.DeckPath,
		deck:     cfg.Deck,
		started:  time.Now(),
	}
	if ws.db != nil {
		ws.store = xsdata.NewStore(ws.db)
	}
	if ws.params == nil {
		ws.params = config.EmptyPlotConfig()
	}

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: LoggingMiddleware(ws.setupRoutes()),
	}

	return ws
}

// Deck returns the currently loaded material deck, which may be nil.
func (ws *WebServer) Deck() *materials.Deck {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.deck
}

// SetDeck swaps the material deck served by the report endpoints. In-flight
// requests keep the deck they already read.
func (ws *WebServer) SetDeck(deck *materials.Deck) {
	ws.mu.Lock()
	ws.deck = deck
	ws.mu.Unlock()
}

// Start serves until ctx is canceled, then shuts the listener down
// gracefully. The listen loop runs in its own goroutine so Start can block
// on the context.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("Starting report server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down report server...")

	// In-flight requests get one second to finish before the hard close.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("report server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("report server force close error: %v", err)
		}
	}

	log.Printf("report server routine stopped")
	return nil
}

// setupRoutes binds every endpoint the report server exposes.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/", ws.handleDashboard)
	mux.HandleFunc("/plot/xs", ws.handlePlotXS)
	mux.HandleFunc("/api/xs", ws.handleAPIXS)
	mux.HandleFunc("/api/materials", ws.handleAPIMaterials)
	mux.HandleFunc("/api/params", ws.handleAPIParams)

	if ws.db != nil {
		ws.db.AttachAdminRoutes(mux)
	}

	return mux
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write JSON response: %v", err)
	}
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// handleHealth reports liveness for probes and the dashboard footer.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "ok", "service": "xsreport", "timestamp": "%s"}`, time.Now().UTC().Format(time.RFC3339))
}

// handleDashboard renders the overview page: store stats, the loaded
// materials and chart frames for the current targets.
func (ws *WebServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")

	var stats xsdata.Stats
	if ws.store != nil {
		var err error
		stats, err = ws.store.Stats()
		if err != nil {
			http.Error(w, "Error reading store stats: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	type materialRow struct {
		Name       string
		Density    string
		Components int
		SAB        string
	}

	deck := ws.Deck()
	var rows []materialRow
	var targets []string
	if deck != nil {
		for _, mat := range deck.Materials {
			row := materialRow{
				Name:       mat.Name,
				Density:    "(not set)",
				Components: len(mat.Components()),
				SAB:        strings.Join(mat.SAlphaBeta(), ", "),
			}
			if value, unit, ok := mat.Density(); ok {
				row.Density = fmt.Sprintf("%g %s", value, unit)
			}
			rows = append(rows, row)
		}
		targets = deck.Names()
	}
	if len(targets) == 0 && ws.store != nil {
		// Without a deck the dashboard falls back to nuclide charts.
		nucs, err := ws.store.Nuclides()
		if err == nil {
			if len(nucs) > 4 {
				nucs = nucs[:4]
			}
			targets = nucs
		}
	}

	tmpl, err := template.ParseFS(DashboardHTML, "dashboard.html")
	if err != nil {
		http.Error(w, "Error loading template: "+err.Error(), http.StatusInternalServerError)
		return
	}

	data := struct {
		HTTPAddress string
		DeckPath    string
		Uptime      string
		Stats       xsdata.Stats
		Materials   []materialRow
		Targets     []string
	}{
		HTTPAddress: ws.address,
		DeckPath:    ws.deckPath,
		Uptime:      time.Since(ws.started).Round(time.Second).String(),
		Stats:       stats,
		Materials:   rows,
		Targets:     targets,
	}

	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Error executing template: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// statusWriter remembers the status code so the request log can color it.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.code = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	s := strconv.Itoa(statusCode)
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + s + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + s + colorReset
	case statusCode >= 400:
		return colorBoldRed + s + colorReset
	default:
		return s
	}
}

// LoggingMiddleware writes one colored line per request: status, method,
// URI and elapsed milliseconds.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)
		elapsed := float64(time.Since(start).Microseconds()) / 1000
		log.Printf(
			"[%s] %s %s%s%s %.1fms",
			statusCodeColor(sw.code), r.Method,
			colorCyan, r.RequestURI, colorReset,
			elapsed,
		)
	})
}
