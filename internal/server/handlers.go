package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"cinerate/internal/api"
	"cinerate/internal/logging"
)

const maxMessageBytes = 64 << 10

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var msg api.Message
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxMessageBytes))
	if err := decoder.Decode(&msg); err != nil {
		if errors.Is(err, io.EOF) {
			s.writeError(w, http.StatusBadRequest, "empty request body")
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg.Type != api.MessageTypeGetRatings {
		s.writeError(w, http.StatusBadRequest, "unsupported message type")
		return
	}
	s.respondRatings(w, r, msg.MovieTitle)
}

func (s *Server) handleRatings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.respondRatings(w, r, r.URL.Query().Get("title"))
}

func (s *Server) respondRatings(w http.ResponseWriter, r *http.Request, title string) {
	logger := logging.WithContext(r.Context(), s.logger)
	result := s.ratings.GetRatings(r.Context(), title)
	logger.Debug("ratings request served",
		logging.String(logging.FieldMovieTitle, strings.TrimSpace(title)),
		logging.Bool("found", result != nil),
		logging.Bool("has_rating", result.HasRating()),
	)
	if result == nil {
		s.writeJSON(w, http.StatusOK, json.RawMessage("null"))
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	count, err := s.cache.Count(r.Context())
	if err != nil {
		logging.WarnWithContext(logging.WithContext(r.Context(), s.logger), "cache count failed", "cache_count_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "status reports zero cache entries"),
		)
	}
	s.writeJSON(w, http.StatusOK, api.StatusResponse{
		Running:      s.running.Load(),
		CacheBackend: s.cacheBackend,
		CacheEntries: count,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
