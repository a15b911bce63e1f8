// Package events provides the event types emitted while tables are loaded,
// validated and ranked. Listeners receive them over a channel, which lets the
// CLI drive spinners and the dashboard push updates to connected browsers.
package events

import (
	"time"
)

// EventType identifies what happened.
type EventType string

const (
	// EventDatasetLoaded is emitted when a table passes schema validation.
	EventDatasetLoaded EventType = "dataset_loaded"

	// EventDatasetRejected is emitted when a table cannot be read or fails
	// schema validation.
	EventDatasetRejected EventType = "dataset_rejected"

	// EventRankingStarted is emitted before a metric is ranked.
	EventRankingStarted EventType = "ranking_started"

	// EventRankingRendered is emitted once a ranking and its figure are built.
	EventRankingRendered EventType = "ranking_rendered"

	// EventRankingFailed is emitted when a metric cannot be ranked.
	EventRankingFailed EventType = "ranking_failed"
)

// Event is a single notification about a table or ranking.
type Event struct {
	// Type specifies the kind of event.
	Type EventType `json:"type"`
	// Timestamp indicates when the event occurred.
	Timestamp time.Time `json:"timestamp"`
	// Source names the table, usually its file name.
	Source string `json:"source,omitempty"`
	// Rows is the number of data rows in the table.
	Rows int `json:"rows,omitempty"`
	// Metrics lists the metric columns present in the table.
	Metrics []string `json:"metrics,omitempty"`
	// Metric is the column being ranked.
	Metric string `json:"metric,omitempty"`
	// N is the requested number of ranked rows.
	N int `json:"n,omitempty"`
	// Duration is how long the operation took.
	Duration time.Duration `json:"duration,omitempty"`
	// ErrorKind classifies a failure: load, schema or empty_result.
	ErrorKind string `json:"error_kind,omitempty"`
	// Error is the user-facing failure message.
	Error string `json:"error,omitempty"`
}

// Listener receives events.
type Listener interface {
	// StartListening consumes events until the channel is closed.
	StartListening(events <-chan Event)

	// StopListening is called after the channel has been closed.
	StopListening()
}

// NoopListener discards every event.
type NoopListener struct{}

// StartListening drains the channel.
func (n *NoopListener) StartListening(events <-chan Event) {
	for range events {
	}
}

// StopListening implements the Listener interface.
func (n *NoopListener) StopListening() {}

// Recorder is a Listener that keeps every event it receives.
type Recorder struct {
	events []Event
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// StartListening records events until the channel is closed.
func (r *Recorder) StartListening(events <-chan Event) {
	for e := range events {
		r.events = append(r.events, e)
	}
}

// StopListening implements the Listener interface.
func (r *Recorder) StopListening() {}

// Events returns the recorded events in arrival order.
func (r *Recorder) Events() []Event {
	return r.events
}

// Types returns the type of each recorded event.
func (r *Recorder) Types() []EventType {
	types := make([]EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}
