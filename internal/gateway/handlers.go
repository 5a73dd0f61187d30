// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/sources"
)

type ingestRequest struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

type ingestResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// handleIngest accepts an article and publishes it at the pipeline
// entry. 202 means durably logged, not processed.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Source == "" {
		req.Source = "api"
	}

	// A caller-supplied id makes resubmission idempotent through the
	// stream's duplicate window; absent one we mint it.
	ev := event.NewRawEvent(req.Title, req.Content, req.Source)
	if req.ID != "" {
		ev.ID = req.ID
	}
	if err := s.publisher.Publish(r.Context(), event.SubjectRawEvents, ev.ID, ev); err != nil {
		logging.Error().Err(err).Msg("publishing ingested event")
		writeError(w, http.StatusServiceUnavailable, "event log unavailable")
		return
	}
	writeJSON(w, http.StatusAccepted, ingestResponse{ID: ev.ID, Status: "accepted"})
}

// handleRanked returns scored items ordered by final score.
func (s *Server) handleRanked(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.DefaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}

	items, err := s.items.ListRanked(r.Context(), limit)
	if err != nil {
		logging.Error().Err(err).Msg("listing ranked items")
		writeError(w, http.StatusInternalServerError, "listing ranked items failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

type createSourceRequest struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Config json.RawMessage `json:"config,omitempty"`
}

// handleCreateSource registers a source and announces it on new.source
// so the scheduler picks it up.
func (s *Server) handleCreateSource(w http.ResponseWriter, r *http.Request) {
	var req createSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Name == "" || req.Type == "" {
		writeError(w, http.StatusBadRequest, "name and type are required")
		return
	}

	created, err := s.repo.Create(r.Context(), &sources.Source{
		Name:     req.Name,
		Type:     req.Type,
		Config:   req.Config,
		IsActive: true,
	})
	if err != nil {
		logging.Error().Err(err).Str("source", req.Name).Msg("creating source")
		writeError(w, http.StatusInternalServerError, "creating source failed")
		return
	}

	ev := &event.SourceEvent{
		ID:       created.ID,
		Name:     created.Name,
		Type:     created.Type,
		Config:   created.Config,
		IsActive: created.IsActive,
	}
	msgID := fmt.Sprintf("new-source-%d", created.ID)
	if err := s.publisher.Publish(r.Context(), event.SubjectNewSource, msgID, ev); err != nil {
		// The row exists; the scheduler will still find it on its
		// next bootstrap. Surface the degraded path in the logs.
		logging.Error().Err(err).Int64("source_id", created.ID).Msg("announcing new source")
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleListSources returns every registered source.
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	list, err := s.repo.List(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("listing sources")
		writeError(w, http.StatusInternalServerError, "listing sources failed")
		return
	}
	if list == nil {
		list = []*sources.Source{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": list, "count": len(list)})
}

// handleDeleteSource deactivates a source and announces the removal on
// removed.source so the scheduler stops polling it.
func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}

	src, err := s.repo.GetByID(r.Context(), id)
	if errors.Is(err, sources.ErrSourceNotFound) {
		writeError(w, http.StatusNotFound, "source not found")
		return
	}
	if err != nil {
		logging.Error().Err(err).Int64("source_id", id).Msg("fetching source")
		writeError(w, http.StatusInternalServerError, "fetching source failed")
		return
	}

	if err := s.repo.Deactivate(r.Context(), id); err != nil {
		logging.Error().Err(err).Int64("source_id", id).Msg("deactivating source")
		writeError(w, http.StatusInternalServerError, "deactivating source failed")
		return
	}

	ev := &event.SourceEvent{ID: src.ID, Name: src.Name, Type: src.Type}
	msgID := fmt.Sprintf("removed-source-%d", src.ID)
	if err := s.publisher.Publish(r.Context(), event.SubjectRemovedSource, msgID, ev); err != nil {
		logging.Error().Err(err).Int64("source_id", id).Msg("announcing source removal")
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("encoding response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
