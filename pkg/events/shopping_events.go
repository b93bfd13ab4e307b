package events

import "time"

const (
	TypeQueryAnswered = "QUERY_ANSWERED"
	TypeAudioCleaned  = "AUDIO_CLEANED"
)

// QueryAnswered is emitted once per pipeline run
type QueryAnswered struct {
	Query       string
	Task        string
	Strategy    string
	NumProducts int
	Citations   []string
	Channel     string // "rest", "voice" or "cli"
	Failed      []string
	Elapsed     time.Duration
	OccurredAt  time.Time
}

func (e QueryAnswered) EventType() string { return TypeQueryAnswered }

func (e QueryAnswered) Payload() map[string]interface{} {
	return map[string]interface{}{
		"type":         TypeQueryAnswered,
		"query":        e.Query,
		"task":         e.Task,
		"strategy":     e.Strategy,
		"num_products": e.NumProducts,
		"citations":    e.Citations,
		"channel":      e.Channel,
		"failed":       e.Failed,
		"elapsed_ms":   e.Elapsed.Milliseconds(),
		"occurred_at":  e.OccurredAt.Format(time.RFC3339),
	}
}

func (e QueryAnswered) Timestamp() time.Time { return e.OccurredAt }

// AudioCleaned reports a retention sweep
type AudioCleaned struct {
	Deleted    int
	MaxAge     time.Duration
	Trigger    string // "cron" or "admin"
	OccurredAt time.Time
}

func (e AudioCleaned) EventType() string { return TypeAudioCleaned }

func (e AudioCleaned) Payload() map[string]interface{} {
	return map[string]interface{}{
		"type":          TypeAudioCleaned,
		"deleted":       e.Deleted,
		"max_age_hours": e.MaxAge.Hours(),
		"trigger":       e.Trigger,
		"occurred_at":   e.OccurredAt.Format(time.RFC3339),
	}
}

func (e AudioCleaned) Timestamp() time.Time { return e.OccurredAt }
