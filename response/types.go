/*
Package response contains the inbound half of the JSON-RPC envelope: the
generic response wrapper with its version/result/error rules and the error
type shared by locally generated and server-sent errors. The same decoding
path is used for plain HTTP exchanges and for frames demultiplexed from a
websocket connection.
*/
package response

import (
	"encoding/json"

	"github.com/FindoraNetwork/tendermint-rpc/request"
)

// Header is a generic JSON-RPC 2.0 response header (ID and JSON-RPC version).
type Header struct {
	ID      json.RawMessage `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
}

// HeaderAndError adds an Error (that can be empty) to the Header, it's used
// to construct type-specific responses.
type HeaderAndError struct {
	Header
	Error *Error `json:"error,omitempty"`
}

// Raw represents a standard raw JSON-RPC 2.0
// response: http://www.jsonrpc.org/specification#response_object.
type Raw struct {
	HeaderAndError
	Result json.RawMessage `json:"result,omitempty"`
}

// DecodeResult validates the envelope and unmarshals its result into v.
// An unsupported protocol version rejects the whole message before result
// or error are looked at. A response carrying an error returns that error;
// one carrying neither error nor result is malformed.
func (r *Raw) DecodeResult(v any) error {
	if r.JSONRPC != request.JSONRPCVersion {
		return NewServerError("unsupported JSON-RPC version: " + r.JSONRPC)
	}
	if r.Error != nil {
		return r.Error
	}
	if r.Result == nil {
		return NewServerError("server returned neither result nor error")
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(r.Result, v); err != nil {
		return NewParseError(err.Error())
	}
	return nil
}

// FromJSON parses a complete response message, envelope checks included,
// and unmarshals the result into v.
func FromJSON(data []byte, v any) error {
	raw := new(Raw)
	if err := json.Unmarshal(data, raw); err != nil {
		return NewParseError(err.Error())
	}
	return raw.DecodeResult(v)
}
