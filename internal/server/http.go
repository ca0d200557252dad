package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/alfredjeanlab/rolodex/internal/model"
)

// NewHTTPHandler returns an http.Handler with all routes and middleware
// registered.
func (s *Server) NewHTTPHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/{entity}/list", s.handleListRecords)
	mux.HandleFunc("GET /api/{entity}/export.xml", s.handleExportXML)
	mux.HandleFunc("GET /api/{entity}/export.csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	return chain(mux,
		RequestIDMiddleware,
		LoggingMiddleware(s.logger),
		s.metrics.Middleware,
		RecoveryMiddleware(s.logger),
	)
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", "request_id", RequestIDFromContext(r.Context()), "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  "database unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathEntity resolves the {entity} path segment, writing a 404 when it does
// not name a known entity.
func pathEntity(w http.ResponseWriter, r *http.Request) (model.Entity, bool) {
	entity, err := model.ParseEntity(r.PathValue("entity"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return entity, true
}

// queryParams returns the first value of each query parameter keyed by its
// lower-cased name, so "Name", "name" and "NAME" are the same parameter.
func queryParams(r *http.Request) map[string]string {
	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		k := strings.ToLower(key)
		if _, seen := params[k]; seen || len(values) == 0 {
			continue
		}
		params[k] = values[0]
	}
	return params
}

// filterFromQuery builds the list filter from the Name and Email parameters.
func filterFromQuery(params map[string]string) model.RecordFilter {
	return model.RecordFilter{
		Name:  params[strings.ToLower(model.FilterName)],
		Email: params[strings.ToLower(model.FilterEmail)],
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
