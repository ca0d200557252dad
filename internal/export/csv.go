package export

import (
	"fmt"

	"github.com/jszwec/csvutil"

	"github.com/alfredjeanlab/rolodex/internal/model"
)

type customerRow struct {
	ID                  int64   `csv:"id"`
	Name                string  `csv:"name"`
	Address             string  `csv:"address"`
	Email               string  `csv:"email"`
	Phone               string  `csv:"phone"`
	IBAN                *string `csv:"iban"`
	CategoryCode        string  `csv:"category_code"`
	CategoryDescription string  `csv:"category_description"`
}

type employeeRow struct {
	ID                    int64  `csv:"id"`
	Code                  string `csv:"code"`
	FirstName             string `csv:"first_name"`
	LastName              string `csv:"last_name"`
	Address               string `csv:"address"`
	Email                 string `csv:"email"`
	Phone                 string `csv:"phone"`
	DepartmentCode        string `csv:"department_code"`
	DepartmentDescription string `csv:"department_description"`
}

type supplierRow struct {
	ID      int64  `csv:"id"`
	Name    string `csv:"name"`
	Address string `csv:"address"`
	Email   string `csv:"email"`
	Phone   string `csv:"phone"`
}

func refFields(r *model.Record) (string, string) {
	if r.Reference == nil {
		return "", ""
	}
	return r.Reference.Code, r.Reference.Description
}

// BuildCSV encodes records of one entity as CSV with a header row.
func BuildCSV(entity model.Entity, records []*model.Record) ([]byte, error) {
	switch entity {
	case model.EntityCustomers:
		rows := make([]customerRow, len(records))
		for i, r := range records {
			code, desc := refFields(r)
			rows[i] = customerRow{r.ID, r.Name, r.Address, r.Email, r.Phone, r.IBAN, code, desc}
		}
		return csvutil.Marshal(rows)
	case model.EntityEmployees:
		rows := make([]employeeRow, len(records))
		for i, r := range records {
			code, desc := refFields(r)
			rows[i] = employeeRow{r.ID, r.Code, r.FirstName, r.LastName, r.Address, r.Email, r.Phone, code, desc}
		}
		return csvutil.Marshal(rows)
	case model.EntitySuppliers:
		rows := make([]supplierRow, len(records))
		for i, r := range records {
			rows[i] = supplierRow{r.ID, r.Name, r.Address, r.Email, r.Phone}
		}
		return csvutil.Marshal(rows)
	}
	return nil, fmt.Errorf("%w: %q", model.ErrUnknownEntity, string(entity))
}
