// Package storetest provides helpers for in-memory store.Store fakes.
package storetest

import (
	"sort"

	"github.com/alfredjeanlab/rolodex/internal/model"
)

// List filters records with the entity schema and orders them by its sort
// key, then by ID. It mirrors the WHERE and ORDER BY clauses of the SQL
// store closely enough for handler tests; collation differences are ignored.
func List(records []*model.Record, entity model.Entity, filter model.RecordFilter) ([]*model.Record, error) {
	schema, err := model.SchemaFor(entity)
	if err != nil {
		return nil, err
	}
	out := schema.Filter(records, filter)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		for _, field := range schema.SortKey {
			if av, bv := a.Value(field), b.Value(field); av != bv {
				return av < bv
			}
		}
		return a.ID < b.ID
	})
	return out, nil
}
