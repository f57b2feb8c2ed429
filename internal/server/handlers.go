package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/MiMa6/rag-search-system/internal/domain"
)

type queryRequest struct {
	Question     string `json:"question"`
	Collection   string `json:"collection,omitempty"`
	ResponseMode string `json:"response_mode,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.respondError(w, http.StatusBadRequest, "question is required")
		return
	}

	collection := req.Collection
	if collection == "" {
		collection = s.defaultCollection
	}

	engine, err := s.engineFor(collection)
	if err != nil {
		s.logger.Warn("engine init failed", zap.String("collection", collection), zap.Error(err))
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	s.logger.Debug("query request",
		zap.String("collection", collection),
		zap.String("mode", req.ResponseMode))
	answer, err := engine.Query(r.Context(), req.Question, req.ResponseMode)
	if err != nil {
		s.logger.Error("query failed", zap.String("collection", collection), zap.Error(err))
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"response": answer.Text,
	})
}

type collectionEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (s *Server) handleCollections(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.ListCollections()
	if err != nil {
		s.logger.Error("list collections failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	entries := make([]collectionEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, collectionEntry{Name: info.Name, Count: info.Count})
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"collections": entries,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	var pe *domain.ProviderError
	switch {
	case errors.Is(err, domain.ErrNoIndexLoaded), errors.Is(err, domain.ErrCollectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupportedResponseMode):
		return http.StatusBadRequest
	case errors.As(err, &pe):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
