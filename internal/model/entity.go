package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEntity is returned when an entity name is not one of the known entities.
var ErrUnknownEntity = errors.New("unknown entity")

// Entity names a browsable record collection. The value doubles as the
// URL path segment (/api/{entity}/list).
type Entity string

const (
	EntityCustomers Entity = "customers"
	EntityEmployees Entity = "employees"
	EntitySuppliers Entity = "suppliers"
)

// Entities lists every known entity in display order.
var Entities = []Entity{EntityCustomers, EntityEmployees, EntitySuppliers}

// String returns the string representation of the entity.
func (e Entity) String() string {
	return string(e)
}

// IsValid checks whether the entity is a known value.
func (e Entity) IsValid() bool {
	switch e {
	case EntityCustomers, EntityEmployees, EntitySuppliers:
		return true
	}
	return false
}

// ParseEntity resolves a user-supplied entity name. Matching ignores case,
// and the singular form is accepted ("customer" == "customers").
func ParseEntity(s string) (Entity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	e := Entity(s)
	if !e.IsValid() {
		e = Entity(s + "s")
	}
	if !e.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntity, s)
	}
	return e, nil
}

// Filter parameter names accepted by list queries.
const (
	FilterName  = "Name"
	FilterEmail = "Email"
)

// Schema describes how an entity's records are filtered, ordered and
// serialized. It is the single parameterization point for the generic list
// query; per-entity behavior lives here and nowhere else.
type Schema struct {
	Entity Entity
	// Singular is the display noun ("customer").
	Singular string
	// ReferenceKey is the wire name of the optional reference field, or ""
	// when the entity carries none.
	ReferenceKey string
	// Filters maps a filter parameter to the record fields it matches.
	// A record matches a parameter when any listed field contains the value.
	Filters map[string][]Field
	// SortKey is the ordered list of fields results are sorted by.
	SortKey []Field
}

// HasReference reports whether records of this entity carry a reference.
func (s *Schema) HasReference() bool {
	return s.ReferenceKey != ""
}

// Field identifies a record attribute in a schema.
type Field string

const (
	FieldName      Field = "name"
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldFullName  Field = "full_name" // first_name || ' ' || last_name
	FieldEmail     Field = "email"
)

var schemas = map[Entity]*Schema{
	EntityCustomers: {
		Entity:       EntityCustomers,
		Singular:     "customer",
		ReferenceKey: "customerCategory",
		Filters: map[string][]Field{
			FilterName:  {FieldName},
			FilterEmail: {FieldEmail},
		},
		SortKey: []Field{FieldName},
	},
	EntityEmployees: {
		Entity:       EntityEmployees,
		Singular:     "employee",
		ReferenceKey: "department",
		Filters: map[string][]Field{
			FilterName:  {FieldFirstName, FieldLastName, FieldFullName},
			FilterEmail: {FieldEmail},
		},
		SortKey: []Field{FieldLastName, FieldFirstName},
	},
	EntitySuppliers: {
		Entity:   EntitySuppliers,
		Singular: "supplier",
		Filters: map[string][]Field{
			FilterName:  {FieldName},
			FilterEmail: {FieldEmail},
		},
		SortKey: []Field{FieldName},
	},
}

// SchemaFor returns the schema of a known entity.
func SchemaFor(e Entity) (*Schema, error) {
	s, ok := schemas[e]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, string(e))
	}
	return s, nil
}
