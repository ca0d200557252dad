package browse

import (
	"time"

	"github.com/alfredjeanlab/rolodex/internal/export"
	"github.com/alfredjeanlab/rolodex/internal/model"
	"github.com/alfredjeanlab/rolodex/internal/table"
)

// SearchSpec declares one search input of a page.
type SearchSpec struct {
	Name        string
	Label       string
	Placeholder string
}

// Page is the static definition of an entity's list page.
type Page struct {
	Entity  model.Entity
	Title   string
	Columns []table.Column[*model.Record]
	Search  []SearchSpec
	// ExportOptions returns the document options of the page's export, or
	// is nil when the page has no export.
	ExportOptions func(at time.Time) export.Options
}

// HasExport reports whether the page offers an export.
func (p Page) HasExport() bool {
	return p.ExportOptions != nil
}

var pages = map[model.Entity]Page{
	model.EntityCustomers: {
		Entity: model.EntityCustomers,
		Title:  "Customers",
		Columns: []table.Column[*model.Record]{
			{Field: "name", Header: "Name"},
			{Field: "address", Header: "Address"},
			{Field: "email", Header: "Email"},
			{Field: "phone", Header: "Phone"},
			{Field: "iban", Header: "Iban"},
			{Field: "customerCategory.code", Header: "Customer Code"},
			{Field: "customerCategory.description", Header: "Customer Description"},
		},
		Search: []SearchSpec{
			{Name: model.FilterName, Label: "Name", Placeholder: "Name..."},
			{Name: model.FilterEmail, Label: "Email", Placeholder: "Email..."},
		},
		ExportOptions: func(at time.Time) export.Options {
			opts := export.ForEntity(model.EntityCustomers, at)
			opts.RootElement = "Customer"
			opts.ItemElement = "Customer"
			opts.IncludeMetadata = true
			return opts
		},
	},
	model.EntityEmployees: {
		Entity: model.EntityEmployees,
		Title:  "Employees",
		Columns: []table.Column[*model.Record]{
			{Field: "code", Header: "Code"},
			{Field: "firstName", Header: "FirstName"},
			{Field: "lastName", Header: "LastName"},
			{Field: "address", Header: "Address"},
			{Field: "email", Header: "Email"},
			{Field: "phone", Header: "Phone"},
			{Field: "department.code", Header: "Dep. Code"},
			{Field: "department.description", Header: "Dep. Description"},
		},
		Search: []SearchSpec{
			{Name: model.FilterName, Label: "First Name or Last Name", Placeholder: "First Name or Last Name..."},
			{Name: model.FilterEmail, Label: "Email", Placeholder: "Email..."},
		},
		ExportOptions: func(at time.Time) export.Options {
			opts := export.ForEntity(model.EntityEmployees, at)
			opts.IncludeMetadata = true
			return opts
		},
	},
	model.EntitySuppliers: {
		Entity: model.EntitySuppliers,
		Title:  "Suppliers",
		Columns: []table.Column[*model.Record]{
			{Field: "name", Header: "Name"},
			{Field: "address", Header: "Address"},
			{Field: "email", Header: "Email"},
			{Field: "phone", Header: "Phone"},
		},
	},
}

// PageFor returns the page definition of an entity.
func PageFor(e model.Entity) (Page, error) {
	p, ok := pages[e]
	if !ok {
		_, err := model.SchemaFor(e)
		return Page{}, err
	}
	return p, nil
}
