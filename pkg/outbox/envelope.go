package outbox

import (
	"encoding/json"
	"time"
)

// ActorRef names the binary, and the request when there is one, that
// caused the event.
type ActorRef struct {
	Source    string `json:"source"`
	RequestID string `json:"request_id,omitempty"`
}

// PayloadEnvelope is the JSON stored in outbox_events.payload and published
// verbatim as the Pub/Sub message body. Data holds the event-specific struct
// from the payloads package.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"event_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
