package browse

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/beevik/etree"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alfredjeanlab/rolodex/internal/export"
	"github.com/alfredjeanlab/rolodex/internal/model"
	"github.com/alfredjeanlab/rolodex/internal/store/storetest"
)

// fakeClient filters seeded records with the entity schema and records
// every call.
type fakeClient struct {
	mu      sync.Mutex
	records map[model.Entity][]*model.Record
	err     error
	calls   []model.RecordFilter
}

func (f *fakeClient) ListRecords(_ context.Context, entity model.Entity, filter model.RecordFilter) ([]*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, filter)
	if f.err != nil {
		return nil, f.err
	}
	return storetest.List(f.records[entity], entity, filter)
}

func (f *fakeClient) Health(context.Context) (string, error) { return "ok", nil }
func (f *fakeClient) Close() error                           { return nil }

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// recordingDeliverer captures delivered artifacts.
type recordingDeliverer struct {
	artifacts []export.Artifact
}

func (d *recordingDeliverer) Deliver(_ context.Context, a export.Artifact) error {
	d.artifacts = append(d.artifacts, a)
	return nil
}

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func seededClient() *fakeClient {
	return &fakeClient{records: map[model.Entity][]*model.Record{
		model.EntityCustomers: {
			{Entity: model.EntityCustomers, ID: 1, Name: "Anna", Email: "anna@example.com"},
			{Entity: model.EntityCustomers, ID: 2, Name: "Bob", Email: "bob@acme.it"},
			{Entity: model.EntityCustomers, ID: 3, Name: "Joanna", Email: "jo@example.com"},
			{Entity: model.EntityCustomers, ID: 4, Name: "Dan", Email: "dan@acme.it"},
		},
	}}
}

func newTestModel(t *testing.T, entity model.Entity, c *fakeClient, d export.Deliverer) *Model {
	t.Helper()
	m, err := New(context.Background(), entity, c, Options{
		Envelope:  export.Options{Company: "Acme", ExportedBy: "ops"},
		Deliverer: d,
		Plain:     true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.now = func() time.Time { return fixedNow }
	return m
}

func typeRunes(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func names(records []*model.Record) string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.DisplayName()
	}
	return strings.Join(out, ",")
}

func TestNew_UnknownEntity(t *testing.T) {
	if _, err := New(context.Background(), "invoices", seededClient(), Options{}); !errors.Is(err, model.ErrUnknownEntity) {
		t.Fatalf("error = %v, want ErrUnknownEntity", err)
	}
}

func TestInitialFetch(t *testing.T) {
	c := seededClient()
	m := newTestModel(t, model.EntityCustomers, c, nil)
	if !m.loading {
		t.Fatal("model should start loading")
	}

	msg := m.fetch(m.fetchSeq)()
	m.Update(msg)
	if m.loading {
		t.Error("loading should clear after the fetch completes")
	}
	if got := names(m.records); got != "Anna,Bob,Dan,Joanna" {
		t.Errorf("records = %s", got)
	}
}

func TestDebounce_OnlyLastKeystrokeFetches(t *testing.T) {
	c := seededClient()
	m := newTestModel(t, model.EntityCustomers, c, nil)

	typeRunes(m, "ann")
	if m.debounceTag != 3 {
		t.Fatalf("debounceTag = %d, want 3", m.debounceTag)
	}

	for tag := 1; tag <= 2; tag++ {
		if _, cmd := m.Update(debounceMsg{tag: tag}); cmd != nil {
			t.Fatalf("superseded tick %d issued a fetch", tag)
		}
	}
	_, cmd := m.Update(debounceMsg{tag: 3})
	if cmd == nil {
		t.Fatal("latest tick did not issue a fetch")
	}
	m.Update(cmd())

	if c.callCount() != 1 {
		t.Fatalf("fetches = %d, want 1", c.callCount())
	}
	if c.calls[0].Name != "ann" {
		t.Errorf("fetched with Name=%q, want ann", c.calls[0].Name)
	}
	if got := names(m.records); got != "Anna,Joanna" {
		t.Errorf("records = %s, want Anna,Joanna", got)
	}
}

func TestDebounce_UnchangedKeyDoesNotSchedule(t *testing.T) {
	m := newTestModel(t, model.EntityCustomers, seededClient(), nil)
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.debounceTag != 0 {
		t.Fatalf("cursor movement scheduled a fetch (tag %d)", m.debounceTag)
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	c := seededClient()
	m := newTestModel(t, model.EntityCustomers, c, nil)

	typeRunes(m, "d")
	_, first := m.Update(debounceMsg{tag: m.debounceTag})

	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	typeRunes(m, "j")
	_, second := m.Update(debounceMsg{tag: m.debounceTag})

	if first == nil || second == nil {
		t.Fatal("expected two fetches")
	}
	firstMsg, secondMsg := first(), second()

	// The older request resolves last.
	m.Update(secondMsg)
	m.Update(firstMsg)

	if got := names(m.records); got != "Joanna" {
		t.Fatalf("records = %s, want Joanna (stale Dan response applied)", got)
	}
}

func TestStaleResponseBeforeLatest(t *testing.T) {
	c := seededClient()
	m := newTestModel(t, model.EntityCustomers, c, nil)

	typeRunes(m, "d")
	_, first := m.Update(debounceMsg{tag: m.debounceTag})
	typeRunes(m, "x")
	_, second := m.Update(debounceMsg{tag: m.debounceTag})

	m.Update(first())
	if !m.loading {
		t.Fatal("stale response ended the loading state of the newer fetch")
	}
	m.Update(second())
	if m.loading || len(m.records) != 0 {
		t.Fatalf("loading=%v records=%s", m.loading, names(m.records))
	}
}

func TestFetchErrorThenRecovery(t *testing.T) {
	c := seededClient()
	c.err = errors.New("HTTP 500: failed to list customers")
	m := newTestModel(t, model.EntityCustomers, c, nil)

	m.Update(m.fetch(m.fetchSeq)())
	if m.err == nil {
		t.Fatal("fetch error not kept")
	}
	if !strings.Contains(m.View(), "Oops, something went wrong") {
		t.Error("error state not rendered")
	}

	c.err = nil
	typeRunes(m, "b")
	_, cmd := m.Update(debounceMsg{tag: m.debounceTag})
	m.Update(cmd())
	if m.err != nil {
		t.Fatalf("error not cleared: %v", m.err)
	}
	if got := names(m.records); got != "Bob" {
		t.Errorf("records = %s, want Bob", got)
	}
}

func TestFilter_FromInputs(t *testing.T) {
	m := newTestModel(t, model.EntityEmployees, seededClient(), nil)
	typeRunes(m, "ross")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeRunes(m, "acme")

	f := m.Filter()
	if f.Name != "ross" || f.Email != "acme" {
		t.Fatalf("filter = %+v", f)
	}
	if m.focus != 1 {
		t.Errorf("focus = %d, want 1", m.focus)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.focus != 0 {
		t.Errorf("focus after shift+tab = %d, want 0", m.focus)
	}
}

func TestExport_FilteredSubset(t *testing.T) {
	c := seededClient()
	d := &recordingDeliverer{}
	m := newTestModel(t, model.EntityCustomers, c, d)
	m.Update(m.fetch(m.fetchSeq)())

	// Displayed rows are unfiltered; the search value has not been fetched yet.
	m.inputs[0].SetValue("ann")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	if cmd == nil {
		t.Fatal("ctrl+e did not start an export")
	}
	if !m.table().Export.Exporting {
		t.Error("export button should show the in-flight state")
	}
	m.Update(cmd())

	if len(d.artifacts) != 1 {
		t.Fatalf("delivered %d artifacts, want 1", len(d.artifacts))
	}
	a := d.artifacts[0]
	if a.Name != "customers_2026-03-14.xml" {
		t.Errorf("filename = %q", a.Name)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(a.Data); err != nil {
		t.Fatalf("parse: %v", err)
	}
	meta := doc.Root().SelectElement("Metadata")
	if meta == nil || meta.SelectElement("Company").Text() != "Acme" {
		t.Fatal("metadata envelope missing or without the configured company")
	}
	items := doc.Root().SelectElement("Customer").SelectElements("Customer")
	if len(items) != 2 {
		t.Fatalf("exported %d customers, want 2", len(items))
	}
	if !strings.HasPrefix(m.status, "Export complete! 2 records") {
		t.Errorf("status = %q", m.status)
	}
	if m.table().Export.Exporting {
		t.Error("export button still in flight after completion")
	}
}

func TestExport_NoMatches(t *testing.T) {
	d := &recordingDeliverer{}
	m := newTestModel(t, model.EntityCustomers, seededClient(), d)
	m.Update(m.fetch(m.fetchSeq)())
	m.inputs[0].SetValue("zzz")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	m.Update(cmd())

	if len(d.artifacts) != 0 {
		t.Fatal("empty export delivered a document")
	}
	if m.status != "Export failed: no data to export" || !m.statusErr {
		t.Errorf("status = %q", m.status)
	}
}

func TestExport_DisabledWhileLoading(t *testing.T) {
	m := newTestModel(t, model.EntityCustomers, seededClient(), &recordingDeliverer{})
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlE}); cmd != nil {
		t.Fatal("export started while loading")
	}
}

func TestSuppliers_NoSearchNoExport(t *testing.T) {
	m := newTestModel(t, model.EntitySuppliers, seededClient(), &recordingDeliverer{})
	if len(m.inputs) != 0 || m.exporter != nil {
		t.Fatalf("inputs=%d exporter=%v", len(m.inputs), m.exporter)
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); cmd != nil {
		t.Error("typing on a page without search issued a command")
	}
	if strings.Contains(m.View(), "ctrl+e") {
		t.Error("help mentions export on a page without export")
	}
}

func TestView_Loading(t *testing.T) {
	m := newTestModel(t, model.EntityEmployees, seededClient(), nil)
	view := m.View()
	for _, want := range []string{"Employees", "Loading...", "First Name or Last Name:"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t, model.EntityCustomers, seededClient(), nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("esc did not quit")
	}
}
