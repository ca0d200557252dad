// Package browse implements the interactive list page: search inputs with
// debounced server-side filtering, a record table and an XML export of the
// filtered rows.
package browse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alfredjeanlab/rolodex/internal/client"
	"github.com/alfredjeanlab/rolodex/internal/export"
	"github.com/alfredjeanlab/rolodex/internal/model"
	"github.com/alfredjeanlab/rolodex/internal/table"
)

const (
	// DebounceDelay is the quiet period after the last keystroke before a
	// filtered fetch is issued.
	DebounceDelay = 500 * time.Millisecond

	fetchTimeout = 30 * time.Second
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"})
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF6B6B"})
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// debounceMsg fires DebounceDelay after a keystroke. Only the tick carrying
// the latest tag triggers a fetch.
type debounceMsg struct {
	tag int
}

// fetchedMsg carries the result of the fetch with sequence number seq.
type fetchedMsg struct {
	seq     int
	records []*model.Record
	err     error
}

// exportedMsg carries the result of an export.
type exportedMsg struct {
	artifact export.Artifact
	records  int
	err      error
}

// Options configure a Model.
type Options struct {
	// Envelope supplies Company, ExportedBy and Version of exports.
	Envelope export.Options
	// Deliverer receives exported documents. A nil Deliverer disables export.
	Deliverer export.Deliverer
	// Plain renders the table without borders or colors.
	Plain bool
}

// Model is the bubbletea model of one entity page.
type Model struct {
	ctx      context.Context
	page     Page
	schema   *model.Schema
	client   client.RecordsClient
	exporter *export.Exporter
	envelope export.Options
	plain    bool
	now      func() time.Time

	inputs  []textinput.Model
	focus   int
	spinner spinner.Model

	records []*model.Record
	loading bool
	err     error

	debounceTag int
	fetchSeq    int

	exportPending bool
	status        string
	statusErr     bool

	width int
}

// New creates the page model for entity. The first fetch is issued by Init.
func New(ctx context.Context, entity model.Entity, c client.RecordsClient, opts Options) (*Model, error) {
	page, err := PageFor(entity)
	if err != nil {
		return nil, err
	}
	schema, err := model.SchemaFor(entity)
	if err != nil {
		return nil, err
	}

	inputs := make([]textinput.Model, len(page.Search))
	for i, spec := range page.Search {
		in := textinput.New()
		in.Placeholder = spec.Placeholder
		in.Prompt = ""
		in.CharLimit = 128
		if i == 0 {
			in.Focus()
		}
		inputs[i] = in
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:      ctx,
		page:     page,
		schema:   schema,
		client:   c,
		envelope: opts.Envelope,
		plain:    opts.Plain,
		now:      time.Now,
		inputs:   inputs,
		spinner:  sp,
		loading:  true,
		fetchSeq: 1,
	}
	if opts.Deliverer != nil && page.HasExport() {
		m.exporter = export.NewExporter(opts.Deliverer)
	}
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, m.fetch(m.fetchSeq))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case debounceMsg:
		if msg.tag != m.debounceTag {
			return m, nil
		}
		m.fetchSeq++
		m.loading = true
		return m, m.fetch(m.fetchSeq)

	case fetchedMsg:
		if msg.seq != m.fetchSeq {
			// A newer fetch has been issued; this response is stale.
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.records = msg.records
		return m, nil

	case exportedMsg:
		m.exportPending = false
		if msg.err != nil {
			m.status = "Export failed: " + msg.err.Error()
			m.statusErr = true
			return m, nil
		}
		m.status = fmt.Sprintf("Export complete! %d records exported to %s", msg.records, msg.artifact.Name)
		m.statusErr = false
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "shift+tab":
		if len(m.inputs) == 0 {
			return m, nil
		}
		m.inputs[m.focus].Blur()
		if msg.String() == "tab" {
			m.focus = (m.focus + 1) % len(m.inputs)
		} else {
			m.focus = (m.focus + len(m.inputs) - 1) % len(m.inputs)
		}
		return m, m.inputs[m.focus].Focus()
	case "ctrl+e":
		return m, m.startExport()
	case "ctrl+r":
		m.fetchSeq++
		m.loading = true
		return m, m.fetch(m.fetchSeq)
	}

	if len(m.inputs) == 0 {
		return m, nil
	}
	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.inputs[m.focus].Value() == before {
		return m, cmd
	}

	m.debounceTag++
	m.loading = true
	tag := m.debounceTag
	return m, tea.Batch(cmd, tea.Tick(DebounceDelay, func(time.Time) tea.Msg {
		return debounceMsg{tag: tag}
	}))
}

// Filter returns the filter formed by the current input values.
func (m *Model) Filter() model.RecordFilter {
	var f model.RecordFilter
	for i, spec := range m.page.Search {
		switch spec.Name {
		case model.FilterName:
			f.Name = m.inputs[i].Value()
		case model.FilterEmail:
			f.Email = m.inputs[i].Value()
		}
	}
	return f
}

// fetch returns a command that lists records with the current filter,
// tagged with seq.
func (m *Model) fetch(seq int) tea.Cmd {
	entity, filter := m.page.Entity, m.Filter()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, fetchTimeout)
		defer cancel()
		records, err := m.client.ListRecords(ctx, entity, filter)
		return fetchedMsg{seq: seq, records: records, err: err}
	}
}

// startExport exports the currently displayed records that match the
// search values, using the page's document options.
func (m *Model) startExport() tea.Cmd {
	if m.exporter == nil {
		return nil
	}
	tbl := m.table()
	if !tbl.ExportEnabled() {
		return nil
	}

	subset := m.schema.Filter(m.records, m.Filter())
	opts := m.page.ExportOptions(m.now())
	if m.envelope.Company != "" {
		opts.Company = m.envelope.Company
	}
	if m.envelope.ExportedBy != "" {
		opts.ExportedBy = m.envelope.ExportedBy
	}
	if m.envelope.Version != "" {
		opts.Version = m.envelope.Version
	}

	m.exportPending = true
	m.status = ""
	exporter, ctx := m.exporter, m.ctx
	return func() tea.Msg {
		a, err := exporter.Export(ctx, model.Items(subset), opts)
		return exportedMsg{artifact: a, records: len(subset), err: err}
	}
}

func (m *Model) table() *table.Table[*model.Record] {
	t := &table.Table[*model.Record]{
		Title:   m.page.Title,
		Columns: m.page.Columns,
		Data:    m.records,
		Loading: m.loading,
		Err:     m.err,
		Spinner: m.spinner.View(),
		Plain:   m.plain,
	}
	for i, spec := range m.page.Search {
		t.Search = append(t.Search, table.SearchField{
			Name:        spec.Name,
			Label:       spec.Label,
			Placeholder: spec.Placeholder,
			Value:       m.inputs[i].Value(),
			Focused:     i == m.focus,
			View:        m.inputs[i].View(),
		})
	}
	if m.exporter != nil {
		t.Export = &table.ExportButton{Exporting: m.exportPending || m.exporter.IsExporting()}
	}
	return t
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.table().View())
	b.WriteString("\n\n")
	if m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = failStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help()))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) help() string {
	keys := []string{}
	if len(m.inputs) > 1 {
		keys = append(keys, "tab: next field")
	}
	if m.exporter != nil {
		keys = append(keys, "ctrl+e: export")
	}
	keys = append(keys, "ctrl+r: reload", "esc: quit")
	return strings.Join(keys, " • ")
}
