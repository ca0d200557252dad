package store

import (
	"context"

	"github.com/alfredjeanlab/rolodex/internal/model"
)

// Store defines the read-side persistence interface for records.
type Store interface {
	// ListRecords returns every record of the entity matching filter, ordered
	// by the entity's sort key, with the optional reference resolved. There
	// is no pagination.
	ListRecords(ctx context.Context, entity model.Entity, filter model.RecordFilter) ([]*model.Record, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
