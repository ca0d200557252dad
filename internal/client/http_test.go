package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alfredjeanlab/rolodex/internal/model"
)

// testHandler captures the incoming request details and returns a canned response.
type testHandler struct {
	// captured from the request
	method    string
	path      string
	query     url.Values
	accept    string
	userAgent string
	calls     int

	// canned response
	statusCode   int
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls++
	h.method = r.Method
	h.path = r.URL.Path
	h.query = r.URL.Query()
	h.accept = r.Header.Get("Accept")
	h.userAgent = r.Header.Get("User-Agent")

	w.Header().Set("Content-Type", "application/json")
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if h.responseBody != "" {
		_, _ = w.Write([]byte(h.responseBody))
	}
}

// newTestClient creates an HTTPClient pointed at a test server with the given handler.
func newTestClient(h http.Handler) (*HTTPClient, *httptest.Server) {
	srv := httptest.NewServer(h)
	c := NewHTTPClient(srv.URL)
	return c, srv
}

// --- ListRecords ---

func TestHTTPClient_ListRecords_Customers(t *testing.T) {
	h := &testHandler{
		responseBody: `[
			{"id": 1, "name": "Anna", "address": "Via Roma 1", "email": "anna@example.com", "phone": "123",
			 "iban": "IT60X", "customerCategory": {"code": "VIP", "description": "Very important"}},
			{"id": 3, "name": "Joanna", "address": "", "email": "jo@example.com", "phone": "",
			 "iban": null, "customerCategory": null}
		]`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	records, err := c.ListRecords(context.Background(), model.EntityCustomers, model.RecordFilter{Name: "ann"})
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}

	if h.method != http.MethodGet {
		t.Errorf("method = %q, want GET", h.method)
	}
	if h.path != "/api/customers/list" {
		t.Errorf("path = %q, want /api/customers/list", h.path)
	}
	if got := h.query.Get("Name"); got != "ann" {
		t.Errorf("Name = %q, want ann", got)
	}
	if _, ok := h.query["Email"]; ok {
		t.Error("empty Email filter should be omitted from the query")
	}
	if h.accept != "application/json" {
		t.Errorf("accept = %q, want application/json", h.accept)
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	first := records[0]
	if first.Entity != model.EntityCustomers {
		t.Errorf("Entity = %q, want customers", first.Entity)
	}
	if first.Name != "Anna" || first.IBAN == nil || *first.IBAN != "IT60X" {
		t.Errorf("first record = %+v", first)
	}
	if first.Reference == nil || first.Reference.Description != "Very important" {
		t.Errorf("Reference = %+v, want VIP", first.Reference)
	}
	if records[1].Reference != nil || records[1].IBAN != nil {
		t.Errorf("second record should carry nulls, got %+v", records[1])
	}
}

func TestHTTPClient_ListRecords_EmployeesBothFilters(t *testing.T) {
	h := &testHandler{
		responseBody: `[{"id": 5, "code": "E5", "firstName": "Mario", "lastName": "Rossi",
			"address": "", "email": "mario@acme.it", "phone": "", "department": {"code": "IT", "description": "Tech"}}]`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	records, err := c.ListRecords(context.Background(), model.EntityEmployees, model.RecordFilter{Name: "ross", Email: "acme"})
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if h.path != "/api/employees/list" {
		t.Errorf("path = %q", h.path)
	}
	if h.query.Get("Name") != "ross" || h.query.Get("Email") != "acme" {
		t.Errorf("query = %v", h.query)
	}
	if len(records) != 1 || records[0].DisplayName() != "Mario Rossi" {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Reference == nil || records[0].Reference.Code != "IT" {
		t.Errorf("department not decoded: %+v", records[0].Reference)
	}
}

func TestHTTPClient_ListRecords_NoFilter(t *testing.T) {
	h := &testHandler{responseBody: `[]`}
	c, srv := newTestClient(h)
	defer srv.Close()

	records, err := c.ListRecords(context.Background(), model.EntitySuppliers, model.RecordFilter{})
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(h.query) != 0 {
		t.Errorf("query = %v, want none", h.query)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("records = %v, want empty non-nil slice", records)
	}
}

func TestHTTPClient_ListRecords_WhitespaceSentVerbatim(t *testing.T) {
	h := &testHandler{responseBody: `[]`}
	c, srv := newTestClient(h)
	defer srv.Close()

	if _, err := c.ListRecords(context.Background(), model.EntityCustomers, model.RecordFilter{Name: "anna "}); err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if got := h.query.Get("Name"); got != "anna " {
		t.Errorf("Name = %q, want %q", got, "anna ")
	}
}

func TestHTTPClient_ListRecords_NullBody(t *testing.T) {
	h := &testHandler{responseBody: `null`}
	c, srv := newTestClient(h)
	defer srv.Close()

	records, err := c.ListRecords(context.Background(), model.EntitySuppliers, model.RecordFilter{})
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if records == nil {
		t.Error("records should be an empty slice, not nil")
	}
}

// --- Health ---

func TestHTTPClient_Health(t *testing.T) {
	h := &testHandler{
		responseBody: `{"status": "ok"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	status, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if h.path != "/api/health" {
		t.Errorf("path = %q, want /api/health", h.path)
	}
	if status != "ok" {
		t.Errorf("status = %q, want 'ok'", status)
	}
}

func TestHTTPClient_Health_Unavailable(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusServiceUnavailable,
		responseBody: `{"status":"unavailable","error":"database unreachable"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	status, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v, want the status without an error", err)
	}
	if status != "unavailable" {
		t.Errorf("status = %q, want unavailable", status)
	}
	if h.userAgent != "rx" {
		t.Errorf("User-Agent = %q, want rx", h.userAgent)
	}
}

// --- Error handling ---

func TestHTTPClient_Error_JSONBody(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusInternalServerError,
		responseBody: `{"error": "failed to list customers"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.ListRecords(context.Background(), model.EntityCustomers, model.RecordFilter{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
	}
	if apiErr.Message != "failed to list customers" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if err.Error() != "HTTP 500: failed to list customers" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestHTTPClient_Error_PlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.Health(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Message != "gateway down" {
		t.Errorf("Message = %q, want 'gateway down'", apiErr.Message)
	}
}

func TestHTTPClient_Error_InvalidJSON(t *testing.T) {
	h := &testHandler{responseBody: `not json`}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.ListRecords(context.Background(), model.EntityCustomers, model.RecordFilter{})
	if err == nil || !strings.Contains(err.Error(), "decoding response") {
		t.Fatalf("error = %v, want decoding error", err)
	}
}

func TestHTTPClient_ContextCanceled(t *testing.T) {
	h := &testHandler{responseBody: `{"status": "ok"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Health(ctx)
	if err == nil {
		t.Fatal("expected error for canceled context, got nil")
	}
	if !strings.Contains(err.Error(), "context canceled") {
		t.Errorf("error = %q, want to contain 'context canceled'", err.Error())
	}
}

func TestNewHTTPClient_TrimsTrailingSlash(t *testing.T) {
	h := &testHandler{responseBody: `{"status": "ok"}`}
	srv := httptest.NewServer(h)
	defer srv.Close()

	c := NewHTTPClient(srv.URL + "/")
	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if h.path != "/api/health" {
		t.Errorf("path = %q, want /api/health", h.path)
	}
}

func TestResolveBaseURL(t *testing.T) {
	t.Setenv(ServerEnv, "")
	if got := ResolveBaseURL(""); got != DefaultBaseURL {
		t.Errorf("ResolveBaseURL() = %q, want default", got)
	}

	t.Setenv(ServerEnv, "http://rolodex:9000")
	if got := ResolveBaseURL(""); got != "http://rolodex:9000" {
		t.Errorf("ResolveBaseURL() = %q, want env value", got)
	}
	if got := ResolveBaseURL("http://flag:1"); got != "http://flag:1" {
		t.Errorf("ResolveBaseURL(flag) = %q, want flag value", got)
	}
}

func TestHTTPClient_ImplementsRecordsClient(t *testing.T) {
	var _ RecordsClient = (*HTTPClient)(nil)
	var _ RecordsClient = (*GRPCClient)(nil)
}
