package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alfredjeanlab/rolodex/internal/browse"
	"github.com/alfredjeanlab/rolodex/internal/model"
	"github.com/alfredjeanlab/rolodex/internal/table"
	"github.com/alfredjeanlab/rolodex/internal/ui"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printRecordTable renders records with the entity page's columns. Output
// is plain text unless stdout supports color.
func printRecordTable(w io.Writer, entity model.Entity, records []*model.Record, plain bool) error {
	page, err := browse.PageFor(entity)
	if err != nil {
		return err
	}
	t := &table.Table[*model.Record]{
		Columns: page.Columns,
		Data:    records,
		Plain:   plain,
	}
	if _, err := t.WriteTo(w); err != nil {
		return err
	}
	schema, _ := model.SchemaFor(entity)
	noun := schema.Singular
	if len(records) != 1 {
		noun = entity.String()
	}
	_, err = fmt.Fprintf(w, "\n%s\n", ui.RenderMuted(fmt.Sprintf("%d %s", len(records), noun)))
	return err
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}
