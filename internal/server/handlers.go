package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/serupa/internal/models"
	"github.com/hyperjump/serupa/internal/search"
)

const maxBodyBytes = 1 << 20

// Error messages returned to clients.
const (
	msgNotJSON        = "Request must be JSON"
	msgModelNotLoaded = "Model not loaded"
	msgInternal       = "Internal server error"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r.Header.Get("Content-Type")) {
		s.respondError(w, http.StatusBadRequest, msgNotJSON)
		return
	}
	var query models.SearchQuery
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&query); err != nil {
		s.logger.Debug("search: invalid body", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, msgNotJSON)
		return
	}

	response, err := s.engine.Search(r.Context(), &query)
	if err != nil {
		var verr *search.ValidationError
		switch {
		case errors.As(err, &verr):
			s.respondError(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, search.ErrModelNotLoaded):
			s.respondError(w, http.StatusServiceUnavailable, msgModelNotLoaded)
		default:
			s.logger.Error("search failed",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Error(err),
			)
			s.respondError(w, http.StatusInternalServerError, msgInternal)
		}
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:      "ok",
		ModelLoaded: s.engine.ModelLoaded(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.engine.Status(r.Context())
	if err != nil {
		s.logger.Error("status failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

// isJSON accepts application/json and application/*+json media types.
func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, models.ErrorResponse{Error: message})
}
