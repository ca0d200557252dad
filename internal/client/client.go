// Package client provides a transport-agnostic interface for the rolodex
// service with HTTP/JSON and gRPC implementations.
package client

import (
	"context"
	"os"

	"github.com/alfredjeanlab/rolodex/internal/model"
)

// DefaultBaseURL is the server used when neither a flag nor $ROLODEX_SERVER
// names one.
const DefaultBaseURL = "http://localhost:8080"

// ServerEnv names the environment variable holding the server base URL.
const ServerEnv = "ROLODEX_SERVER"

// RecordsClient is the interface the rx commands and the browser use to
// talk to the rolodex server.
type RecordsClient interface {
	// ListRecords returns the entity's records matching filter, in server order.
	ListRecords(ctx context.Context, entity model.Entity, filter model.RecordFilter) ([]*model.Record, error)

	Health(ctx context.Context) (string, error)

	Close() error
}

// ResolveBaseURL picks the server base URL: an explicit value, then
// $ROLODEX_SERVER, then DefaultBaseURL.
func ResolveBaseURL(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv(ServerEnv); v != "" {
		return v
	}
	return DefaultBaseURL
}
