// Package httpapi exposes the daemon's local HTTP surface: status,
// snapshot accessors, geo points, synthetic alert injection, and the
// Prometheus metrics endpoint.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oref-monitor/orefmon/internal/coordinator"
	"github.com/oref-monitor/orefmon/internal/fanout"
	"github.com/oref-monitor/orefmon/internal/schema"
)

// maxSyntheticDuration caps injected alert lifetimes.
const maxSyntheticDuration = time.Hour

// Server wires the API routes onto the coordinator, geo manager, and
// record-type classifier.
type Server struct {
	coord      *coordinator.Coordinator
	geo        *fanout.GeoManager
	classifier *schema.Classifier
	logger     *slog.Logger
	router     *mux.Router
}

// New creates the API server.
func New(coord *coordinator.Coordinator, geo *fanout.GeoManager, classifier *schema.Classifier, logger *slog.Logger) *Server {
	s := &Server{
		coord:      coord,
		geo:        geo,
		classifier: classifier,
		logger:     logger,
		router:     mux.NewRouter(),
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/alerts", s.handleAlerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts/active", s.handleActiveAlerts).Methods(http.MethodGet)
	api.HandleFunc("/geo", s.handleGeo).Methods(http.MethodGet)
	api.HandleFunc("/shelter/{area}", s.handleShelter).Methods(http.MethodGet)
	api.HandleFunc("/type/{area}", s.handleRecordType).Methods(http.MethodGet)
	api.HandleFunc("/synthetic", s.handleAddSynthetic).Methods(http.MethodPost)
	api.HandleFunc("/synthetic/{id}", s.handleRemoveSynthetic).Methods(http.MethodDelete)

	s.router.Handle("/metrics", promhttp.Handler())
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if !s.coord.Status().Ready {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.coord.Status())
}

func (s *Server) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.coord.Snapshot().Records)
}

func (s *Server) handleActiveAlerts(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.coord.ActiveAlerts())
}

func (s *Server) handleGeo(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.geo.Points())
}

func (s *Server) handleShelter(w http.ResponseWriter, r *http.Request) {
	area := mux.Vars(r)["area"]

	remaining, ok := s.coord.ShelterCountdown(area)
	if !ok {
		http.Error(w, "no active alert for area", http.StatusNotFound)
		return
	}
	s.writeJSON(w, map[string]any{"area": area, "secondsRemaining": remaining})
}

func (s *Server) handleRecordType(w http.ResponseWriter, r *http.Request) {
	area := mux.Vars(r)["area"]

	recordType, record, ok := s.classifier.LatestRecordType(s.coord.ActiveAlerts(), area)
	if !ok {
		http.Error(w, "no active record for area", http.StatusNotFound)
		return
	}
	s.writeJSON(w, map[string]any{
		"area":     area,
		"type":     recordType,
		"category": record.Category,
		"date":     record.Date,
	})
}

type syntheticRequest struct {
	Area     string `json:"area"`
	Title    string `json:"title"`
	Category int    `json:"category"`
	Seconds  int    `json:"seconds"`
}

func (s *Server) handleAddSynthetic(w http.ResponseWriter, r *http.Request) {
	var req syntheticRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Area == "" {
		http.Error(w, "area is required", http.StatusBadRequest)
		return
	}
	if req.Seconds <= 0 || time.Duration(req.Seconds)*time.Second > maxSyntheticDuration {
		http.Error(w, "seconds must be between 1 and 3600", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		req.Title = "Synthetic alert"
	}

	id := s.coord.AddSynthetic(req.Area, req.Title, req.Category, time.Duration(req.Seconds)*time.Second)

	w.WriteHeader(http.StatusCreated)
	s.writeJSON(w, map[string]int{"id": id})
}

func (s *Server) handleRemoveSynthetic(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := s.coord.RemoveSynthetic(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}
