package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/alfredjeanlab/rolodex/internal/model"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// tableSpec maps an entity onto its table. columns must match the order
// expected by scan.
type tableSpec struct {
	table    string
	columns  string
	refTable string // "" when the entity has no reference
	scan     func(row scannable) (*model.Record, sql.NullInt64, error)
}

var tables = map[model.Entity]tableSpec{
	model.EntityCustomers: {
		table:    "customers",
		columns:  "id, name, address, email, phone, iban, customer_category_id",
		refTable: "customer_categories",
		scan:     scanCustomer,
	},
	model.EntityEmployees: {
		table:    "employees",
		columns:  "id, code, first_name, last_name, address, email, phone, department_id",
		refTable: "departments",
		scan:     scanEmployee,
	},
	model.EntitySuppliers: {
		table:   "suppliers",
		columns: "id, name, address, email, phone",
		scan:    scanSupplier,
	},
}

// fieldColumns maps schema fields to SQL expressions.
var fieldColumns = map[model.Field]string{
	model.FieldName:      "name",
	model.FieldFirstName: "first_name",
	model.FieldLastName:  "last_name",
	model.FieldFullName:  "(first_name || ' ' || last_name)",
	model.FieldEmail:     "email",
}

// filterOrder fixes the placeholder order of filter parameters.
var filterOrder = []string{model.FilterName, model.FilterEmail}

// likeEscaper escapes LIKE metacharacters so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func queryListRecords(ctx context.Context, db executor, entity model.Entity, filter model.RecordFilter) ([]*model.Record, error) {
	schema, err := model.SchemaFor(entity)
	if err != nil {
		return nil, err
	}
	spec, ok := tables[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownEntity, string(entity))
	}

	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	params := filter.Params()
	for _, param := range filterOrder {
		value, ok := params[param]
		if !ok {
			continue
		}
		fields := schema.Filters[param]
		if len(fields) == 0 {
			continue
		}
		p := nextArg()
		args = append(args, likeEscaper.Replace(value))
		ors := make([]string, len(fields))
		for i, f := range fields {
			ors[i] = fmt.Sprintf(`%s ILIKE '%%' || %s || '%%' ESCAPE '\'`, fieldColumns[f], p)
		}
		whereClauses = append(whereClauses, "("+strings.Join(ors, " OR ")+")")
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	orderBy := make([]string, 0, len(schema.SortKey)+1)
	for _, f := range schema.SortKey {
		orderBy = append(orderBy, fieldColumns[f])
	}
	orderBy = append(orderBy, "id")

	query := "SELECT " + spec.columns + " FROM " + spec.table + whereSQL +
		" ORDER BY " + strings.Join(orderBy, ", ")

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", entity, err)
	}
	defer rows.Close()

	var (
		records []*model.Record
		pending []refLink
	)
	for rows.Next() {
		r, refID, err := spec.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", schema.Singular, err)
		}
		r.Entity = entity
		records = append(records, r)
		if refID.Valid {
			pending = append(pending, refLink{record: r, id: refID.Int64})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", entity, err)
	}

	if spec.refTable == "" || len(pending) == 0 {
		return records, nil
	}

	refs, err := queryReferences(ctx, db, spec.refTable, pending)
	if err != nil {
		return nil, err
	}
	for _, link := range pending {
		// An id with no matching row leaves the reference nil.
		if ref, ok := refs[link.id]; ok {
			link.record.Reference = ref
		}
	}
	return records, nil
}

// refLink pairs a record with the foreign id of its unresolved reference.
type refLink struct {
	record *model.Record
	id     int64
}

// queryReferences resolves the distinct reference ids in one round trip.
func queryReferences(ctx context.Context, db executor, table string, links []refLink) (map[int64]*model.Reference, error) {
	seen := make(map[int64]bool, len(links))
	ids := make([]int64, 0, len(links))
	for _, link := range links {
		if !seen[link.id] {
			seen[link.id] = true
			ids = append(ids, link.id)
		}
	}

	rows, err := db.QueryContext(ctx,
		"SELECT id, code, description FROM "+table+" WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", table, err)
	}
	defer rows.Close()

	refs := make(map[int64]*model.Reference, len(ids))
	for rows.Next() {
		var (
			id          int64
			code        string
			description sql.NullString
		)
		if err := rows.Scan(&id, &code, &description); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		refs[id] = &model.Reference{Code: code, Description: description.String}
	}
	return refs, rows.Err()
}
