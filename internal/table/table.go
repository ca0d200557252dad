// Package table renders record lists as terminal tables with loading,
// error and empty states, an optional search row and an optional export
// button.
package table

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
)

// Fixed texts of the table states.
const (
	Placeholder        = "-"
	LoadingText        = "Loading..."
	ErrorTitle         = "Oops, something went wrong"
	ErrorHint          = "Try reloading page"
	EmptyText          = "No data"
	DefaultExportLabel = "Export"
	ExportingLabel     = "Exporting..."
)

// State is the display state of a table. States are mutually exclusive and
// resolved in declaration order.
type State int

const (
	StateLoading State = iota
	StateError
	StateEmpty
	StateRows
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateEmpty:
		return "empty"
	case StateRows:
		return "rows"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Column describes one table column. Field is a dot-path into the row's
// JSON form ("customerCategory.code"); Render, when set, takes precedence.
type Column[T any] struct {
	Field  string
	Header string
	Render func(row T) string
}

// SearchField is a search input whose value is owned by the caller. The
// table only displays it and forwards changes to OnChange.
type SearchField struct {
	Name        string
	Label       string
	Placeholder string
	Value       string
	OnChange    func(value string)
	Focused     bool
	// View replaces the default rendering of the value, e.g. with a live
	// text input.
	View string
}

// ExportButton configures the export affordance.
type ExportButton struct {
	Label     string
	Exporting bool
}

// Table is a generic list view over rows of type T.
type Table[T any] struct {
	Title   string
	Columns []Column[T]
	Data    []T
	Loading bool
	Err     error
	Search  []SearchField
	Export  *ExportButton

	// Spinner is the loading indicator frame shown next to LoadingText.
	Spinner string
	// Plain renders tab-aligned text without borders or styling.
	Plain bool
}

// State returns the current display state.
func (t *Table[T]) State() State {
	switch {
	case t.Loading:
		return StateLoading
	case t.Err != nil:
		return StateError
	case len(t.Data) == 0:
		return StateEmpty
	}
	return StateRows
}

// ExportEnabled reports whether the export button can be pressed.
func (t *Table[T]) ExportEnabled() bool {
	if t.Export == nil {
		return false
	}
	return !t.Loading && len(t.Data) > 0 && !t.Export.Exporting
}

// ExportLabel returns the export button label for the current state.
func (t *Table[T]) ExportLabel() string {
	if t.Export == nil {
		return ""
	}
	if t.Export.Exporting {
		return ExportingLabel
	}
	if t.Export.Label != "" {
		return t.Export.Label
	}
	return DefaultExportLabel
}

// SetSearch forwards a new value for the named search field to its
// OnChange callback. It reports whether the field exists.
func (t *Table[T]) SetSearch(name, value string) bool {
	for _, f := range t.Search {
		if f.Name == name {
			if f.OnChange != nil {
				f.OnChange(value)
			}
			return true
		}
	}
	return false
}

// Headers returns the column headers.
func (t *Table[T]) Headers() []string {
	h := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		h[i] = c.Header
	}
	return h
}

// Cells renders one row. Empty or missing values become Placeholder.
func (t *Table[T]) Cells(row T) []string {
	cells := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		var v string
		if c.Render != nil {
			v = c.Render(row)
		} else {
			v, _ = Lookup(row, c.Field)
		}
		if strings.TrimSpace(v) == "" {
			v = Placeholder
		}
		cells[i] = v
	}
	return cells
}

// View renders the whole table: title, search row, export button and body.
func (t *Table[T]) View() string {
	var b strings.Builder
	if t.Title != "" {
		b.WriteString(t.style(titleStyle).Render(t.Title))
		b.WriteString("\n")
	}
	if bar := t.toolbar(); bar != "" {
		b.WriteString(bar)
		b.WriteString("\n")
	}
	b.WriteString(t.Body())
	return b.String()
}

// WriteTo writes View to w.
func (t *Table[T]) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, t.View()+"\n")
	return int64(n), err
}

// Body renders only the state-dependent part of the table.
func (t *Table[T]) Body() string {
	switch t.State() {
	case StateLoading:
		text := LoadingText
		if t.Spinner != "" {
			text = t.Spinner + " " + text
		}
		return t.style(mutedStyle).Render(text)
	case StateError:
		return t.style(errorStyle).Render(ErrorTitle) + "\n" + t.style(mutedStyle).Render(ErrorHint)
	case StateEmpty:
		return t.style(mutedStyle).Render(EmptyText)
	}

	rows := make([][]string, len(t.Data))
	for i, r := range t.Data {
		rows[i] = t.Cells(r)
	}
	if t.Plain {
		return plainGrid(t.Headers(), rows)
	}
	return ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(t.Headers()...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

func (t *Table[T]) toolbar() string {
	var parts []string
	for _, f := range t.Search {
		parts = append(parts, t.searchView(f))
	}
	if t.Export != nil {
		label := "[ " + t.ExportLabel() + " ]"
		if t.ExportEnabled() {
			parts = append(parts, t.style(buttonStyle).Render(label))
		} else {
			parts = append(parts, t.style(disabledButtonStyle).Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

func (t *Table[T]) searchView(f SearchField) string {
	label := f.Label
	if label == "" {
		label = f.Name
	}
	value := f.View
	if value == "" {
		switch {
		case f.Value != "":
			value = f.Value
		case f.Placeholder != "":
			value = t.style(mutedStyle).Render(f.Placeholder)
		}
	}
	marker := " "
	if f.Focused {
		marker = ">"
	}
	return marker + " " + t.style(labelStyle).Render(label+":") + " " + value
}

// style returns s, or an unstyled style in plain mode.
func (t *Table[T]) style(s lipgloss.Style) lipgloss.Style {
	if t.Plain {
		return lipgloss.NewStyle()
	}
	return s
}

func plainGrid(headers []string, rows [][]string) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}
