package postgres

import (
	"database/sql"

	"github.com/alfredjeanlab/rolodex/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// contact holds the nullable columns every entity table shares.
type contact struct {
	address sql.NullString
	email   sql.NullString
	phone   sql.NullString
}

func (c *contact) apply(r *model.Record) {
	r.Address = c.address.String
	r.Email = c.email.String
	r.Phone = c.phone.String
}

// scanCustomer scans a row in the customers column order.
func scanCustomer(row scannable) (*model.Record, sql.NullInt64, error) {
	var (
		r     model.Record
		c     contact
		iban  sql.NullString
		catID sql.NullInt64
	)
	if err := row.Scan(&r.ID, &r.Name, &c.address, &c.email, &c.phone, &iban, &catID); err != nil {
		return nil, catID, err
	}
	c.apply(&r)
	if iban.Valid {
		r.IBAN = &iban.String
	}
	return &r, catID, nil
}

// scanEmployee scans a row in the employees column order.
func scanEmployee(row scannable) (*model.Record, sql.NullInt64, error) {
	var (
		r     model.Record
		c     contact
		depID sql.NullInt64
	)
	if err := row.Scan(&r.ID, &r.Code, &r.FirstName, &r.LastName, &c.address, &c.email, &c.phone, &depID); err != nil {
		return nil, depID, err
	}
	c.apply(&r)
	return &r, depID, nil
}

// scanSupplier scans a row in the suppliers column order.
func scanSupplier(row scannable) (*model.Record, sql.NullInt64, error) {
	var (
		r model.Record
		c contact
	)
	if err := row.Scan(&r.ID, &r.Name, &c.address, &c.email, &c.phone); err != nil {
		return nil, sql.NullInt64{}, err
	}
	c.apply(&r)
	return &r, sql.NullInt64{}, nil
}
