package export

import (
	"strings"
	"time"

	"github.com/alfredjeanlab/rolodex/internal/model"
)

// Envelope defaults.
const (
	DefaultRootElement = "Items"
	DefaultItemElement = "Item"
	DefaultCompany     = "Company"
	DefaultExportedBy  = "User"
	DefaultVersion     = "1.0"

	// Generator is written into the metadata envelope of every document.
	Generator = "Rolodex Export v1.0"
)

// Options control the shape and naming of an exported document. A zero
// Options is valid; empty fields take the defaults above.
type Options struct {
	Filename        string
	RootElement     string
	ItemElement     string
	IncludeMetadata bool
	Company         string
	ExportedBy      string
	Version         string

	// ExportedAt stamps the metadata envelope and the default filename.
	// Zero means now.
	ExportedAt time.Time
}

// withDefaults returns a copy of o with every empty field filled in.
func (o Options) withDefaults() Options {
	if o.ExportedAt.IsZero() {
		o.ExportedAt = time.Now()
	}
	o.ExportedAt = o.ExportedAt.UTC()
	if o.RootElement == "" {
		o.RootElement = DefaultRootElement
	}
	if o.ItemElement == "" {
		o.ItemElement = DefaultItemElement
	}
	if o.Company == "" {
		o.Company = DefaultCompany
	}
	if o.ExportedBy == "" {
		o.ExportedBy = DefaultExportedBy
	}
	if o.Version == "" {
		o.Version = DefaultVersion
	}
	if o.Filename == "" {
		o.Filename = DatedFilename("export", o.ExportedAt, "xml")
	}
	return o
}

// DatedFilename returns "<prefix>_YYYY-MM-DD.<ext>" for the UTC date of t.
func DatedFilename(prefix string, t time.Time, ext string) string {
	return prefix + "_" + t.UTC().Format("2006-01-02") + "." + strings.TrimPrefix(ext, ".")
}

// ForEntity returns the document options used for an entity's exports:
// root "Customers", item "Customer", filename "customers_YYYY-MM-DD.xml".
func ForEntity(e model.Entity, at time.Time) Options {
	root := titleCase(e.String())
	item := strings.TrimSuffix(root, "s")
	if s, err := model.SchemaFor(e); err == nil {
		item = titleCase(s.Singular)
	}
	return Options{
		Filename:    DatedFilename(e.String(), at, "xml"),
		RootElement: root,
		ItemElement: item,
		ExportedAt:  at,
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
