package query

import (
	"encoding/json"
	"fmt"

	"github.com/FindoraNetwork/tendermint-rpc/response"
)

// EventType represents a kind of event the server can be queried for.
type EventType byte

const (
	// NewBlockEvent is emitted when the chain commits a new block.
	NewBlockEvent EventType = iota
	// TxEvent is emitted for every transaction included in a block.
	TxEvent
)

// String is a good old Stringer implementation.
func (e EventType) String() string {
	switch e {
	case NewBlockEvent:
		return "NewBlock"
	case TxEvent:
		return "Tx"
	default:
		return "unknown"
	}
}

// EventTypeFromString converts the input string into an EventType if it's
// possible. Only the exact literals "NewBlock" and "Tx" are recognized.
func EventTypeFromString(s string) (EventType, error) {
	switch s {
	case "NewBlock":
		return NewBlockEvent, nil
	case "Tx":
		return TxEvent, nil
	default:
		return 0, response.NewInvalidParamsError(fmt.Sprintf("unrecognized event type: %s", s))
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (e EventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (e *EventType) UnmarshalJSON(b []byte) error {
	var s string

	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}
	t, err := EventTypeFromString(s)
	if err != nil {
		return err
	}
	*e = t
	return nil
}
