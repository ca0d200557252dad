package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event topic constants
const (
	TopicExportCompleted = "rolodex.export.completed"
	TopicExportFailed    = "rolodex.export.failed"

	// TopicAll matches every rolodex event.
	TopicAll = "rolodex.>"
)

// Export sources.
const (
	SourceHTTP     = "http"
	SourceSnapshot = "snapshot"
	SourceCLI      = "cli"
)

// Event types

type ExportCompleted struct {
	ID          string    `json:"id"`
	Entity      string    `json:"entity"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Records     int       `json:"records"`
	Bytes       int       `json:"bytes"`
	Source      string    `json:"source"`
	Destination string    `json:"destination,omitempty"`
	At          time.Time `json:"at"`
}

type ExportFailed struct {
	ID          string    `json:"id"`
	Entity      string    `json:"entity"`
	Source      string    `json:"source"`
	Destination string    `json:"destination,omitempty"`
	Error       string    `json:"error"`
	At          time.Time `json:"at"`
}

// Publisher sends export events to the bus. Publishing is best effort:
// callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Subscriber streams raw event payloads. Cancel unsubscribes and closes the
// channel.
type Subscriber interface {
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}

// NoopPublisher discards every event. The server uses it when no NATS URL
// is configured.
type NoopPublisher struct{}

func (*NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (*NoopPublisher) Close() error { return nil }

// Summary renders an event payload as a single human-readable line.
// Payloads that are not export events are returned verbatim.
func Summary(data []byte) string {
	var ev struct {
		ID          string `json:"id"`
		Entity      string `json:"entity"`
		Filename    string `json:"filename"`
		Records     int    `json:"records"`
		Source      string `json:"source"`
		Destination string `json:"destination"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(data, &ev); err != nil || ev.ID == "" {
		return string(data)
	}
	where := ev.Source
	if ev.Destination != "" {
		where += " -> " + ev.Destination
	}
	if ev.Error != "" {
		return fmt.Sprintf("%s  FAILED  %s (%s): %s", ev.ID, ev.Entity, where, ev.Error)
	}
	return fmt.Sprintf("%s  %s  %d records -> %s (%s)", ev.ID, ev.Entity, ev.Records, ev.Filename, where)
}
