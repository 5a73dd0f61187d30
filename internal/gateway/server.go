// Sentinel-AI - Event-Driven News Intelligence Pipeline
// Copyright 2026 Sentinel-AI contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gsantopaolo/sentinel-AI

// Package gateway is the HTTP edge of the pipeline: event ingestion,
// the ranked feed, and source management. Everything it accepts is
// turned into events on the durable log; it never calls a stage
// directly.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gsantopaolo/sentinel-AI/internal/config"
	"github.com/gsantopaolo/sentinel-AI/internal/event"
	"github.com/gsantopaolo/sentinel-AI/internal/logging"
	"github.com/gsantopaolo/sentinel-AI/internal/sources"
	"github.com/gsantopaolo/sentinel-AI/internal/store"
)

// ItemReader serves the ranked feed.
type ItemReader interface {
	ListRanked(ctx context.Context, limit int) ([]*store.Item, error)
}

// SourceRepository is the registry slice the gateway manages.
type SourceRepository interface {
	Create(ctx context.Context, src *sources.Source) (*sources.Source, error)
	GetByID(ctx context.Context, id int64) (*sources.Source, error)
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*sources.Source, error)
}

// Publisher publishes ingestion and source-lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, subject, msgID string, e event.Validatable) error
}

// Server is the gateway HTTP server. It satisfies suture.Service.
type Server struct {
	cfg       config.GatewayConfig
	items     ItemReader
	repo      SourceRepository
	publisher Publisher
}

// NewServer builds the gateway.
func NewServer(cfg config.GatewayConfig, items ItemReader, repo SourceRepository, publisher Publisher) *Server {
	return &Server{cfg: cfg, items: items, repo: repo, publisher: publisher}
}

// String names the service in supervisor logs.
func (s *Server) String() string { return "gateway-server" }

// Serve runs the HTTP server until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.cfg.Addr).Msg("gateway listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/events", s.handleIngest)
		r.Get("/events/ranked", s.handleRanked)
		r.Route("/sources", func(r chi.Router) {
			r.Get("/", s.handleListSources)
			r.Post("/", s.handleCreateSource)
			r.Delete("/{id}", s.handleDeleteSource)
		})
	})
	return r
}
