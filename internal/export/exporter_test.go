package export

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/rolodex/internal/model"
)

// recordingDeliverer captures delivered artifacts.
type recordingDeliverer struct {
	mu        sync.Mutex
	artifacts []Artifact
	err       error
}

func (d *recordingDeliverer) Deliver(_ context.Context, a Artifact) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.artifacts = append(d.artifacts, a)
	return nil
}

func (d *recordingDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.artifacts)
}

func newTestExporter(d Deliverer) *Exporter {
	e := NewExporter(d)
	e.now = func() time.Time { return fixedTime }
	return e
}

func TestExporter_EmptyIsNoop(t *testing.T) {
	d := &recordingDeliverer{}
	e := newTestExporter(d)

	_, err := e.Export(context.Background(), nil, Options{})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("error = %v, want ErrNoData", err)
	}
	if d.count() != 0 {
		t.Fatalf("delivered %d artifacts, want 0", d.count())
	}
	if !errors.Is(e.LastError(), ErrNoData) {
		t.Fatalf("LastError = %v, want ErrNoData", e.LastError())
	}

	e.ResetError()
	if e.LastError() != nil {
		t.Fatalf("LastError after reset = %v", e.LastError())
	}
}

func TestExporter_DeliversWithDefaultFilename(t *testing.T) {
	d := &recordingDeliverer{}
	e := newTestExporter(d)

	a, err := e.Export(context.Background(), model.Items(sampleRecords()), Options{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if a.Name != "export_2026-03-14.xml" {
		t.Errorf("Name = %q", a.Name)
	}
	if a.ContentType != ContentTypeXML {
		t.Errorf("ContentType = %q", a.ContentType)
	}
	if d.count() != 1 || len(d.artifacts[0].Data) == 0 {
		t.Fatalf("expected one non-empty delivery, got %d", d.count())
	}
	if e.IsExporting() {
		t.Error("IsExporting() = true after completion")
	}
	if e.LastError() != nil {
		t.Errorf("LastError = %v", e.LastError())
	}
}

func TestExporter_DeliveryErrorIsKept(t *testing.T) {
	boom := errors.New("disk full")
	e := newTestExporter(&recordingDeliverer{err: boom})

	_, err := e.Export(context.Background(), model.Items(sampleRecords()), Options{Filename: "x.xml"})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if !errors.Is(e.LastError(), boom) {
		t.Fatalf("LastError = %v, want %v", e.LastError(), boom)
	}
}

func TestExporter_BuildErrorDeliversNothing(t *testing.T) {
	d := &recordingDeliverer{}
	e := newTestExporter(d)

	_, err := e.Export(context.Background(), []any{func() {}}, Options{})
	if err == nil {
		t.Fatal("expected build error")
	}
	if d.count() != 0 {
		t.Fatalf("delivered %d artifacts after build error", d.count())
	}
	if e.LastError() == nil {
		t.Fatal("LastError not set after build error")
	}
}

func TestExporter_RejectsConcurrentExport(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	e := newTestExporter(DelivererFunc(func(context.Context, Artifact) error {
		close(entered)
		<-release
		return nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := e.Export(context.Background(), model.Items(sampleRecords()), Options{})
		done <- err
	}()

	<-entered
	if !e.IsExporting() {
		t.Fatal("IsExporting() = false while delivery is blocked")
	}
	if _, err := e.Export(context.Background(), model.Items(sampleRecords()), Options{}); !errors.Is(err, ErrExportInProgress) {
		t.Fatalf("second export error = %v, want ErrExportInProgress", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first export: %v", err)
	}
}

func TestExporter_ExportCSV(t *testing.T) {
	d := &recordingDeliverer{}
	e := newTestExporter(d)

	a, err := e.ExportCSV(context.Background(), model.EntityCustomers, sampleRecords(), "")
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if a.Name != "customers_2026-03-14.csv" || a.ContentType != ContentTypeCSV {
		t.Errorf("artifact = %q (%s)", a.Name, a.ContentType)
	}

	if _, err := e.ExportCSV(context.Background(), model.EntityCustomers, nil, ""); !errors.Is(err, ErrNoData) {
		t.Fatalf("empty CSV error = %v, want ErrNoData", err)
	}
}
