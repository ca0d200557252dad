package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Reference is the optional one-to-one lookup attached to a record: a
// customer's category or an employee's department.
type Reference struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Record is the canonical row shape shared by every entity. String fields
// are required (NULL in the store reads as ""); IBAN and Reference are the
// only optional fields.
type Record struct {
	Entity    Entity
	ID        int64
	Code      string
	Name      string
	FirstName string
	LastName  string
	Address   string
	Email     string
	Phone     string
	IBAN      *string
	Reference *Reference
}

// Value returns the record's value for a schema field.
func (r *Record) Value(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldFirstName:
		return r.FirstName
	case FieldLastName:
		return r.LastName
	case FieldFullName:
		return r.FirstName + " " + r.LastName
	case FieldEmail:
		return r.Email
	}
	return ""
}

// DisplayName is the human label of the record.
func (r *Record) DisplayName() string {
	if r.Entity == EntityEmployees {
		return strings.TrimSpace(r.FirstName + " " + r.LastName)
	}
	return r.Name
}

// Key returns the record ID; it satisfies table.Row.
func (r *Record) Key() int64 {
	return r.ID
}

type customerWire struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Address          string     `json:"address"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	IBAN             *string    `json:"iban"`
	CustomerCategory *Reference `json:"customerCategory"`
}

type employeeWire struct {
	ID         int64      `json:"id"`
	Code       string     `json:"code"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Address    string     `json:"address"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Department *Reference `json:"department"`
}

type supplierWire struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// recordWire is the union of every entity's wire keys. It decodes any
// entity's DTO and encodes records whose entity is unset.
type recordWire struct {
	ID               int64      `json:"id"`
	Code             string     `json:"code,omitempty"`
	Name             string     `json:"name,omitempty"`
	FirstName        string     `json:"firstName,omitempty"`
	LastName         string     `json:"lastName,omitempty"`
	Address          string     `json:"address"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	IBAN             *string    `json:"iban,omitempty"`
	CustomerCategory *Reference `json:"customerCategory,omitempty"`
	Department       *Reference `json:"department,omitempty"`
}

// Wire returns the entity-specific DTO for the record. Field order of the
// returned struct is the order keys appear in JSON and XML output.
func (r Record) Wire() any {
	switch r.Entity {
	case EntityCustomers:
		return customerWire{
			ID: r.ID, Name: r.Name, Address: r.Address, Email: r.Email, Phone: r.Phone,
			IBAN: r.IBAN, CustomerCategory: r.Reference,
		}
	case EntityEmployees:
		return employeeWire{
			ID: r.ID, Code: r.Code, FirstName: r.FirstName, LastName: r.LastName,
			Address: r.Address, Email: r.Email, Phone: r.Phone, Department: r.Reference,
		}
	case EntitySuppliers:
		return supplierWire{ID: r.ID, Name: r.Name, Address: r.Address, Email: r.Email, Phone: r.Phone}
	}
	return recordWire{
		ID: r.ID, Code: r.Code, Name: r.Name, FirstName: r.FirstName, LastName: r.LastName,
		Address: r.Address, Email: r.Email, Phone: r.Phone, IBAN: r.IBAN, CustomerCategory: r.Reference,
	}
}

// MarshalJSON encodes the record in its entity's wire shape.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Wire())
}

// UnmarshalJSON decodes any entity's wire shape. The Entity field is not
// part of the wire format and is left untouched.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w struct {
		recordWire
		// Accepts the quoted form int64 values take in proto3 JSON.
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.ID = 0
	if w.ID != "" {
		id, err := w.ID.Int64()
		if err != nil {
			return fmt.Errorf("record id %q: %w", w.ID, err)
		}
		r.ID = id
	}
	r.Code = w.Code
	r.Name = w.Name
	r.FirstName = w.FirstName
	r.LastName = w.LastName
	r.Address = w.Address
	r.Email = w.Email
	r.Phone = w.Phone
	r.IBAN = w.IBAN
	r.Reference = w.CustomerCategory
	if w.Department != nil {
		r.Reference = w.Department
	}
	return nil
}

// Items converts records to their wire DTOs for document exports.
func Items(records []*Record) []any {
	items := make([]any, len(records))
	for i, r := range records {
		items[i] = r.Wire()
	}
	return items
}
