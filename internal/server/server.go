// Package server exposes the record store over HTTP/JSON and gRPC.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/rolodex/internal/events"
	"github.com/alfredjeanlab/rolodex/internal/export"
	"github.com/alfredjeanlab/rolodex/internal/idgen"
	"github.com/alfredjeanlab/rolodex/internal/model"
	"github.com/alfredjeanlab/rolodex/internal/store"
)

// Server serves list and export requests from a store. It implements
// rpc.RecordsServer and provides the HTTP handler.
type Server struct {
	store     store.Store
	publisher events.Publisher
	envelope  export.Options
	logger    *slog.Logger
	metrics   *Metrics
	now       func() time.Time
}

// NewServer returns a Server backed by the given store and publisher.
// Company, ExportedBy and Version of envelope are the defaults of
// server-side exports when the request does not override them.
func NewServer(s store.Store, p events.Publisher, envelope export.Options, logger *slog.Logger) *Server {
	if p == nil {
		p = &events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:     s,
		publisher: p,
		envelope:  envelope,
		logger:    logger,
		metrics:   NewMetrics(),
		now:       time.Now,
	}
}

// Metrics returns the server's Prometheus collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// inputError indicates invalid user input.
// Transport layers map this to 400 / InvalidArgument.
type inputError string

func (e inputError) Error() string { return string(e) }

// publishCompleted publishes an ExportCompleted event. Failures are logged
// and never fail the export.
func (s *Server) publishCompleted(ctx context.Context, entity model.Entity, a export.Artifact, records int) {
	ev := events.ExportCompleted{
		ID:          idgen.MustExportID(),
		Entity:      entity.String(),
		Filename:    a.Name,
		ContentType: a.ContentType,
		Records:     records,
		Bytes:       len(a.Data),
		Source:      events.SourceHTTP,
		Destination: "download",
		At:          s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, events.TopicExportCompleted, ev); err != nil {
		s.logger.Warn("failed to publish event", "topic", events.TopicExportCompleted, "entity", entity, "error", err)
	}
}

func (s *Server) publishFailed(ctx context.Context, entity model.Entity, cause error) {
	ev := events.ExportFailed{
		ID:     idgen.MustExportID(),
		Entity: entity.String(),
		Source: events.SourceHTTP,
		Error:  cause.Error(),
		At:     s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, events.TopicExportFailed, ev); err != nil {
		s.logger.Warn("failed to publish event", "topic", events.TopicExportFailed, "entity", entity, "error", err)
	}
}
