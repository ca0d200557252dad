package sync

import (
	"context"
	"sync"

	"github.com/alfredjeanlab/rolodex/internal/model"
	"github.com/alfredjeanlab/rolodex/internal/store"
	"github.com/alfredjeanlab/rolodex/internal/store/storetest"
)

// mockStore is a minimal in-memory store for snapshot tests.
type mockStore struct {
	records map[model.Entity][]*model.Record
	errs    map[model.Entity]error
}

var _ store.Store = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{
		records: make(map[model.Entity][]*model.Record),
		errs:    make(map[model.Entity]error),
	}
}

func (m *mockStore) ListRecords(_ context.Context, entity model.Entity, filter model.RecordFilter) ([]*model.Record, error) {
	if err := m.errs[entity]; err != nil {
		return nil, err
	}
	return storetest.List(m.records[entity], entity, filter)
}

func (m *mockStore) Ping(context.Context) error { return nil }
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

func (p *recordingPublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.topics {
		if t == topic {
			n++
		}
	}
	return n
}
