// Command byos-server is a minimal BYOS display sink for development and
// bench testing. It accepts snapshot documents on /api/screen and renders
// the latest one as a monochrome page suitable for an e-ink display.
package main

import (
	"embed"
	"encoding/json"
	"flag"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/MatusOllah/slogcolor"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

//go:embed templates
var contentFS embed.FS

// screenServer holds the most recently posted snapshot document.
type screenServer struct {
	mu      sync.RWMutex
	data    map[string]any
	updated string

	tmpl *template.Template
	log  *slog.Logger
}

func newScreenServer(log *slog.Logger) (*screenServer, error) {
	tmpl, err := template.ParseFS(contentFS, "templates/display.tmpl.html")
	if err != nil {
		return nil, fmt.Errorf("parsing display template: %w", err)
	}
	return &screenServer{tmpl: tmpl, log: log}, nil
}

func (s *screenServer) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/screen", s.handleScreen).Methods(http.MethodPost)
	r.HandleFunc("/api/display", s.handleAPIDisplay).Methods(http.MethodGet)
	r.HandleFunc("/api/setup", s.handleSetup).Methods(http.MethodPost)
	r.HandleFunc("/api/log", s.handleLog).Methods(http.MethodPost)
	r.HandleFunc("/display", s.handleDisplay).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// handleScreen receives snapshot updates from the daemon.
func (s *screenServer) handleScreen(w http.ResponseWriter, r *http.Request) {
	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil || len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "no data provided"})
		return
	}

	now := time.Now().Format(time.RFC3339)
	data["timestamp"] = now

	s.mu.Lock()
	s.data = data
	s.updated = now
	s.mu.Unlock()

	s.log.Info("received screen update", "fields", len(data))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Screen data updated successfully",
		"timestamp": now,
	})
}

// handleAPIDisplay mimics the TRMNL cloud API display endpoint.
func (s *screenServer) handleAPIDisplay(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"image_url":       fmt.Sprintf("http://%s/display", r.Host),
		"refresh_rate":    300,
		"filename":        fmt.Sprintf("meshtastic-%d", time.Now().Unix()),
		"update_firmware": false,
	})
}

// handleSetup answers a TRMNL device's initial setup handshake.
func (s *screenServer) handleSetup(w http.ResponseWriter, r *http.Request) {
	deviceID := r.Header.Get("ID")
	if deviceID == "" {
		deviceID = "unknown"
	}
	s.log.Info("device setup request", "device", deviceID)

	friendly := deviceID
	if len(friendly) > 6 {
		friendly = friendly[:6]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"api_key":     "simple-byos-key",
		"friendly_id": strings.ToUpper(friendly),
		"image_url":   fmt.Sprintf("http://%s/display", r.Host),
		"message":     "Connected to BYOS display server",
	})
}

// handleLog accepts device log uploads.
func (s *screenServer) handleLog(w http.ResponseWriter, r *http.Request) {
	deviceID := r.Header.Get("ID")
	if deviceID == "" {
		deviceID = "unknown"
	}
	var logData map[string]any
	_ = json.NewDecoder(r.Body).Decode(&logData)

	s.log.Info("device log", "device", deviceID, "entries", len(logData))
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleDisplay renders the latest snapshot for the e-ink display.
func (s *screenServer) handleDisplay(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		s.log.Error("rendering display", "error", err)
	}
}

func (s *screenServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	updated := s.updated
	available := len(s.data) > 0
	s.mu.RUnlock()

	if updated == "" {
		updated = "Never"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"last_update":    updated,
		"data_available": available,
	})
}

func (s *screenServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	raw, _ := json.MarshalIndent(s.data, "", "  ")
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<html><body><h1>Mesh BYOS Server</h1>
<ul>
<li><a href="/display">/display</a> - display endpoint</li>
<li><a href="/api/screen">/api/screen</a> - POST endpoint for screen updates</li>
<li><a href="/health">/health</a> - health check</li>
</ul>
<pre>%s</pre></body></html>`, template.HTMLEscapeString(string(raw)))
}

func main() {
	listen := flag.String("listen", ":4567", "listen address")
	flag.Parse()

	slog.SetDefault(slog.New(slogcolor.NewHandler(os.Stderr, slogcolor.DefaultOptions)))

	srv, err := newScreenServer(slog.Default())
	if err != nil {
		slog.Error("initializing server", "error", err)
		os.Exit(1)
	}

	slog.Info("starting BYOS display server", "listen", *listen)
	if err := http.ListenAndServe(*listen, handlers.CombinedLoggingHandler(os.Stdout, srv.routes())); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
