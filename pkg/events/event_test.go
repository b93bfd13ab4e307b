package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueryAnswered_Payload(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	e := QueryAnswered{
		Query:       "organic shampoo under $20",
		Task:        "product_search",
		Strategy:    "local_only",
		NumProducts: 2,
		Citations:   []string{"DOC 1"},
		Channel:     "rest",
		Elapsed:     1500 * time.Millisecond,
		OccurredAt:  at,
	}

	p := e.Payload()

	assert.Equal(t, TypeQueryAnswered, e.EventType())
	assert.Equal(t, at, e.Timestamp())
	assert.Equal(t, "local_only", p["strategy"])
	assert.Equal(t, int64(1500), p["elapsed_ms"])
	assert.Equal(t, "2026-03-01T10:00:00Z", p["occurred_at"])
}

func TestAudioCleaned_Payload(t *testing.T) {
	e := AudioCleaned{Deleted: 3, MaxAge: 24 * time.Hour, Trigger: "cron"}

	p := e.Payload()

	assert.Equal(t, TypeAudioCleaned, p["type"])
	assert.Equal(t, 24.0, p["max_age_hours"])
	assert.Equal(t, 3, p["deleted"])
}

func TestBaseEvent(t *testing.T) {
	e := BaseEvent{Type: "events.QUERY_ANSWERED", Data: map[string]interface{}{"task": "comparison"}}

	assert.Equal(t, "events.QUERY_ANSWERED", e.EventType())
	assert.Equal(t, "comparison", e.Payload()["task"])
}
