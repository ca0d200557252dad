// Package export builds XML and CSV documents from record lists and hands
// them to an injected delivery capability.
package export

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alfredjeanlab/rolodex/internal/model"
)

var (
	// ErrNoData is returned when an export is requested for an empty list.
	ErrNoData = errors.New("no data to export")
	// ErrExportInProgress is returned when an export is requested while
	// another one on the same Exporter has not finished.
	ErrExportInProgress = errors.New("export already in progress")
)

// Content types of the documents this package produces.
const (
	ContentTypeXML = "application/xml; charset=utf-8"
	ContentTypeCSV = "text/csv; charset=utf-8"
)

// Artifact is a named document ready to be delivered.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Deliverer delivers an artifact somewhere: a download response, a file,
// an object store.
type Deliverer interface {
	Deliver(ctx context.Context, a Artifact) error
}

// DelivererFunc adapts a function to the Deliverer interface.
type DelivererFunc func(ctx context.Context, a Artifact) error

func (f DelivererFunc) Deliver(ctx context.Context, a Artifact) error {
	return f(ctx, a)
}

// Exporter runs exports for a single session or page. It tracks whether an
// export is in flight and the error of the last one; that state is never
// shared between Exporters.
type Exporter struct {
	deliver Deliverer
	now     func() time.Time

	mu        sync.Mutex
	exporting bool
	lastErr   error
}

// NewExporter creates an Exporter delivering through d.
func NewExporter(d Deliverer) *Exporter {
	return &Exporter{deliver: d, now: time.Now}
}

// IsExporting reports whether an export is in flight.
func (e *Exporter) IsExporting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exporting
}

// LastError returns the error of the most recent export, or nil.
func (e *Exporter) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// ResetError clears the last export error.
func (e *Exporter) ResetError() {
	e.mu.Lock()
	e.lastErr = nil
	e.mu.Unlock()
}

// Export builds an XML document from items and delivers it. An empty list
// delivers nothing and records ErrNoData.
func (e *Exporter) Export(ctx context.Context, items []any, opts Options) (Artifact, error) {
	return e.run(ctx, len(items), func() (Artifact, error) {
		if opts.ExportedAt.IsZero() {
			opts.ExportedAt = e.now()
		}
		opts = opts.withDefaults()
		data, err := BuildXML(items, opts)
		if err != nil {
			return Artifact{}, fmt.Errorf("build xml: %w", err)
		}
		return Artifact{Name: opts.Filename, ContentType: ContentTypeXML, Data: data}, nil
	})
}

// ExportCSV builds a CSV document from records and delivers it. An empty
// filename defaults to "<entity>_YYYY-MM-DD.csv".
func (e *Exporter) ExportCSV(ctx context.Context, entity model.Entity, records []*model.Record, filename string) (Artifact, error) {
	return e.run(ctx, len(records), func() (Artifact, error) {
		if filename == "" {
			filename = DatedFilename(entity.String(), e.now(), "csv")
		}
		data, err := BuildCSV(entity, records)
		if err != nil {
			return Artifact{}, fmt.Errorf("build csv: %w", err)
		}
		return Artifact{Name: filename, ContentType: ContentTypeCSV, Data: data}, nil
	})
}

func (e *Exporter) run(ctx context.Context, n int, build func() (Artifact, error)) (Artifact, error) {
	e.mu.Lock()
	if e.exporting {
		e.mu.Unlock()
		return Artifact{}, ErrExportInProgress
	}
	if n == 0 {
		e.lastErr = ErrNoData
		e.mu.Unlock()
		return Artifact{}, ErrNoData
	}
	e.exporting = true
	e.lastErr = nil
	e.mu.Unlock()

	a, err := build()
	if err == nil {
		err = e.deliver.Deliver(ctx, a)
		if err != nil {
			err = fmt.Errorf("deliver %s: %w", a.Name, err)
		}
	}

	e.mu.Lock()
	e.exporting = false
	e.lastErr = err
	e.mu.Unlock()

	if err != nil {
		return Artifact{}, err
	}
	return a, nil
}
