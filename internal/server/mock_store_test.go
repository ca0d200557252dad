package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/rolodex/internal/export"
	"github.com/alfredjeanlab/rolodex/internal/model"
	"github.com/alfredjeanlab/rolodex/internal/store"
	"github.com/alfredjeanlab/rolodex/internal/store/storetest"
)

// mockStore is an in-memory store that filters and sorts with the entity
// schema, like the SQL store does.
type mockStore struct {
	mu      sync.Mutex
	records map[model.Entity][]*model.Record
	listErr error
	pingErr error

	lastFilter model.RecordFilter
}

var _ store.Store = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{records: make(map[model.Entity][]*model.Record)}
}

func (m *mockStore) ListRecords(_ context.Context, entity model.Entity, filter model.RecordFilter) ([]*model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	return storetest.List(m.records[entity], entity, filter)
}

func (m *mockStore) Ping(context.Context) error { return m.pingErr }
func (m *mockStore) Close() error               { return nil }

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

var errDB = errors.New("connection refused")

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer returns a Server over a seeded mock store with a fixed clock.
func newTestServer() (*Server, *mockStore, *recordingPublisher) {
	ms := newMockStore()
	iban := "IT60X0542811101000000123456"
	ms.records[model.EntityCustomers] = []*model.Record{
		{Entity: model.EntityCustomers, ID: 1, Name: "Joanna", Email: "joanna@example.com", Phone: "555"},
		{Entity: model.EntityCustomers, ID: 2, Name: "Anna", Address: "Via Roma 1", Email: "anna@example.com",
			IBAN: &iban, Reference: &model.Reference{Code: "VIP", Description: "Very important"}},
		{Entity: model.EntityCustomers, ID: 3, Name: "Bob", Email: "bob@acme.it"},
	}
	ms.records[model.EntityEmployees] = []*model.Record{
		{Entity: model.EntityEmployees, ID: 1, Code: "E1", FirstName: "Mario", LastName: "Rossi", Email: "mario@acme.it",
			Reference: &model.Reference{Code: "IT", Description: "Tech"}},
	}
	pub := &recordingPublisher{}
	s := NewServer(ms, pub, export.Options{Company: "Acme", ExportedBy: "ops", Version: "2.0"}, discardLogger())
	s.now = func() time.Time { return fixedNow }
	return s, ms, pub
}
