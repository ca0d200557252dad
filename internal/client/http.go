package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alfredjeanlab/rolodex/internal/model"
)

const (
	// requestTimeout bounds a request that the caller's context does not.
	requestTimeout = 60 * time.Second

	userAgent = "rx"
)

// HTTPClient talks to the rolodex HTTP/JSON API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient returns a client for baseURL (e.g. "http://localhost:8080").
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (c *HTTPClient) Close() error { return nil }

// ListRecords calls GET /api/{entity}/list. Empty filter values are left out
// of the query string, and a null body decodes as an empty list.
func (c *HTTPClient) ListRecords(ctx context.Context, entity model.Entity, filter model.RecordFilter) ([]*model.Record, error) {
	query := url.Values{}
	for key, value := range filter.Params() {
		query.Set(key, value)
	}

	records := []*model.Record{}
	if err := c.get(ctx, "/api/"+url.PathEscape(entity.String())+"/list", query, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []*model.Record{}
	}
	for _, r := range records {
		r.Entity = entity
	}
	return records, nil
}

// Health calls GET /api/health. An unhealthy server answers 503 with its
// status, which is returned without an error.
func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	err := c.get(ctx, "/api/health", nil, &resp)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable && apiErr.Status != "" {
		return apiErr.Status, nil
	}
	if err != nil {
		return "", err
	}
	return resp.Status, nil
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	// Status is the "status" field of the body, when present.
	Status string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// errorBody is the JSON error shape written by the server.
type errorBody struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

// get performs a GET of path with query and decodes the JSON body into out.
func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			apiErr.Status = eb.Status
			if eb.Error != "" {
				apiErr.Message = eb.Error
			}
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
