// Package server exposes the HTTP API: disaster CRUD, enrichment lookups,
// the live event stream, and operational endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/disaster-response-service/internal/disasters"
	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/couchcryptid/disaster-response-service/internal/enrich"
	"github.com/couchcryptid/disaster-response-service/internal/events"
)

// ReadinessChecker reports whether a dependency is ready to serve.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server is the HTTP front door for the disaster response service.
type Server struct {
	httpServer *http.Server
	disasters  *disasters.Service
	enrich     *enrich.Service
	hub        *events.Hub
	ready      ReadinessChecker
	logger     *slog.Logger
}

// NewServer builds the server and registers all routes on addr.
func NewServer(
	addr string,
	disasterSvc *disasters.Service,
	enrichSvc *enrich.Service,
	hub *events.Hub,
	ready ReadinessChecker,
	logger *slog.Logger,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// Write timeout is left unset so the SSE stream can stay open.
			IdleTimeout: 60 * time.Second,
		},
		disasters: disasterSvc,
		enrich:    enrichSvc,
		hub:       hub,
		ready:     ready,
		logger:    logger,
	}

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /disasters", s.handleCreateDisaster)
	mux.HandleFunc("GET /disasters", s.handleListDisasters)
	mux.HandleFunc("GET /disasters/{id}", s.handleGetDisaster)
	mux.HandleFunc("PUT /disasters/{id}", s.handleUpdateDisaster)
	mux.HandleFunc("DELETE /disasters/{id}", s.handleDeleteDisaster)

	mux.HandleFunc("POST /geocode", s.handleGeocode)
	mux.HandleFunc("GET /disasters/{id}/social-media", s.handleSocialMedia)
	mux.HandleFunc("GET /disasters/{id}/official-updates", s.handleOfficialUpdates)
	mux.HandleFunc("POST /disasters/{id}/verify-image", s.handleVerifyImage)
	mux.HandleFunc("GET /disasters/{id}/resources", s.handleNearbyResources)

	mux.HandleFunc("GET /events", s.handleEventStream)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"service": "disaster-response-service"})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.ready.CheckReadiness(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleCreateDisaster(w http.ResponseWriter, r *http.Request) {
	var in disasters.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := s.disasters.Create(r.Context(), in)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleListDisasters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.DisasterFilter{
		Tag:     q.Get("tag"),
		OwnerID: q.Get("owner_id"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	list, err := s.disasters.List(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"disasters": list})
}

func (s *Server) handleGetDisaster(w http.ResponseWriter, r *http.Request) {
	d, err := s.disasters.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleUpdateDisaster(w http.ResponseWriter, r *http.Request) {
	var in disasters.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := s.disasters.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDisaster(w http.ResponseWriter, r *http.Request) {
	if err := s.disasters.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.enrich.Geocode(r.Context(), in.Description)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSocialMedia(w http.ResponseWriter, r *http.Request) {
	result, err := s.enrich.SocialMedia(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source": result.Source,
		"posts":  result.Value,
	})
}

func (s *Server) handleOfficialUpdates(w http.ResponseWriter, r *http.Request) {
	result, err := s.enrich.OfficialUpdates(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":  result.Source,
		"updates": result.Value,
	})
}

func (s *Server) handleVerifyImage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ImageURL string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.enrich.VerifyImage(r.Context(), r.PathValue("id"), in.ImageURL)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source": result.Source,
		"result": result.Value,
	})
}

func (s *Server) handleNearbyResources(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "lat must be a number")
		return
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "lon must be a number")
		return
	}

	id := r.PathValue("id")
	resources, err := s.enrich.NearbyResources(r.Context(), id, lat, lon)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"disaster_id": id,
		"resources":   resources,
	})
}

// writeDomainError maps service errors to HTTP status codes. Validation
// failures are the caller's fault, missing ids are 404, upstream provider
// failures surface as 502 naming the failed stage, and anything else is a
// plain 500.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, validationErr.Msg)
		return
	}

	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var adapterErr *domain.AdapterError
	if errors.As(err, &adapterErr) {
		s.logger.Error("upstream provider failed", "stage", adapterErr.Stage, "error", adapterErr.Err)
		writeError(w, http.StatusBadGateway, adapterErr.Stage+" failed")
		return
	}

	s.logger.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
