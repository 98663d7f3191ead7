package kafka

import (
	"encoding/json"
	"time"
)

// Envelope is the JSON record written to the topic. Data holds the event
// payload; Type selects how consumers decode it.
type Envelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Decode unmarshals Data into v.
func (e Envelope) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}
