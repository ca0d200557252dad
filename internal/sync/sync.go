// Package sync ships periodic XML snapshots of every entity to one or more
// destinations (local directory, S3, git).
package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/rolodex/internal/events"
	"github.com/alfredjeanlab/rolodex/internal/export"
	"github.com/alfredjeanlab/rolodex/internal/idgen"
	"github.com/alfredjeanlab/rolodex/internal/model"
	"github.com/alfredjeanlab/rolodex/internal/store"
)

// Destination is a named snapshot target.
type Destination interface {
	export.Deliverer
	// Name identifies the destination in logs and events ("s3", "git", ...).
	Name() string
}

// Scheduler runs periodic snapshots to one or more destinations.
type Scheduler struct {
	store        store.Store
	destinations []Destination
	interval     time.Duration
	envelope     export.Options
	publisher    events.Publisher
	logger       *slog.Logger
	now          func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that snapshots every entity from the
// store to the given destinations at the specified interval. Company,
// ExportedBy and Version of envelope stamp the metadata of each document.
func NewScheduler(s store.Store, destinations []Destination, interval time.Duration, envelope export.Options, publisher events.Publisher, logger *slog.Logger) *Scheduler {
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}
	return &Scheduler{
		store:        s,
		destinations: destinations,
		interval:     interval,
		envelope:     envelope,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// Start begins periodic snapshots. It runs an initial snapshot immediately,
// then on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current snapshot (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce snapshots every entity to every destination. Failures are
// logged and published per entity and destination; they never stop the
// remaining deliveries.
func (s *Scheduler) RunOnce(ctx context.Context) {
	delivered := 0
	for _, entity := range model.Entities {
		a, n, err := s.snapshot(ctx, entity)
		if err != nil {
			s.logger.Error("snapshot build failed", "entity", entity, "err", err)
			s.publishFailed(ctx, entity, "", err)
			continue
		}
		if n == 0 {
			s.logger.Debug("snapshot skipped, no records", "entity", entity)
			continue
		}

		for _, dest := range s.destinations {
			id := idgen.MustExportID()
			if err := dest.Deliver(ctx, a); err != nil {
				s.logger.Error("snapshot delivery failed", "entity", entity, "destination", dest.Name(), "err", err)
				s.publishFailed(ctx, entity, dest.Name(), err)
				continue
			}
			delivered++
			_ = s.publisher.Publish(ctx, events.TopicExportCompleted, events.ExportCompleted{
				ID:          id,
				Entity:      entity.String(),
				Filename:    a.Name,
				ContentType: a.ContentType,
				Records:     n,
				Bytes:       len(a.Data),
				Source:      events.SourceSnapshot,
				Destination: dest.Name(),
				At:          s.now().UTC(),
			})
		}
	}

	s.logger.Info("snapshot completed", "destinations", len(s.destinations), "deliveries", delivered)
}

// snapshot builds the XML document of one entity. Snapshot file names are
// stable ("customers.xml") so each run replaces the previous one.
func (s *Scheduler) snapshot(ctx context.Context, entity model.Entity) (export.Artifact, int, error) {
	records, err := s.store.ListRecords(ctx, entity, model.RecordFilter{})
	if err != nil {
		return export.Artifact{}, 0, err
	}
	if len(records) == 0 {
		return export.Artifact{}, 0, nil
	}

	opts := export.ForEntity(entity, s.now())
	opts.Filename = entity.String() + ".xml"
	opts.IncludeMetadata = true
	opts.Company = s.envelope.Company
	opts.ExportedBy = s.envelope.ExportedBy
	opts.Version = s.envelope.Version

	data, err := export.BuildXML(model.Items(records), opts)
	if err != nil {
		return export.Artifact{}, 0, err
	}
	return export.Artifact{Name: opts.Filename, ContentType: export.ContentTypeXML, Data: data}, len(records), nil
}

func (s *Scheduler) publishFailed(ctx context.Context, entity model.Entity, dest string, err error) {
	_ = s.publisher.Publish(ctx, events.TopicExportFailed, events.ExportFailed{
		ID:          idgen.MustExportID(),
		Entity:      entity.String(),
		Source:      events.SourceSnapshot,
		Destination: dest,
		Error:       err.Error(),
		At:          s.now().UTC(),
	})
}
