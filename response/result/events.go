package result

import "encoding/json"

// Event is a single event pushed by the server over a duplex connection.
// Query is the canonical string of the subscription that produced it and is
// the only routing key the client relies on; Data stays raw until a
// subscriber decodes it.
type Event struct {
	Query  string              `json:"query"`
	Data   EventData           `json:"data"`
	Events map[string][]string `json:"events,omitempty"`
}

// EventData is a tagged event payload. Type discriminates the shape of
// Value (new block, transaction and so on).
type EventData struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}
