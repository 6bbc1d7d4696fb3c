// Package events defines the messages pushed to WebSocket clients.
package events

import "time"

// Message types
const (
	TypeConnection   = "connection"
	TypeStatsUpdated = "stats_updated"
)

// Message is the envelope of every WebSocket message
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// NewMessage stamps a message with the current UTC time
func NewMessage(messageType string, data interface{}, traceID string) Message {
	return Message{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		TraceID:   traceID,
	}
}

// StatsUpdated announces a completed extraction run. Clients fetch the
// document itself from /api/stats.
type StatsUpdated struct {
	RunID       string    `json:"run_id"`
	Scenarios   int       `json:"scenarios"`
	Files       int       `json:"files"`
	Records     int       `json:"records"`
	Failures    int       `json:"failures"`
	Outputs     []string  `json:"outputs"`
	CompletedAt time.Time `json:"completed_at"`
}

// Connection is sent to a client right after it connects
type Connection struct {
	Status   string `json:"status"`
	ClientID string `json:"client_id"`
}
