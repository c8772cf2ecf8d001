/*
Package request contains the outgoing half of the JSON-RPC envelope together
with the generic header used to classify inbound frames. It's deliberately
tiny: per-endpoint parameter shapes live with their callers, this package
only fixes the wire framing.
*/
package request

import (
	"encoding/json"
	"io"
)

// JSONRPCVersion is the only JSON-RPC protocol version supported.
const JSONRPCVersion = "2.0"

// Raw represents a JSON-RPC request on its way to the server. Params is
// method-specific; the server expects named parameters, so it's usually a
// map or a struct with json tags.
type Raw struct {
	// JSONRPC is the protocol version, only valid when it contains JSONRPCVersion.
	JSONRPC string `json:"jsonrpc"`
	// Method is the method being called.
	Method string `json:"method"`
	// Params is a set of method-specific parameters passed to the call.
	Params any `json:"params"`
	// ID is an identifier associated with this request, unique among
	// in-flight requests on one connection. The client uses numeric IDs.
	ID uint64 `json:"id"`
}

// NewRaw returns a request for the given method with a correct version field.
func NewRaw(id uint64, method string, params any) *Raw {
	return &Raw{
		JSONRPC: JSONRPCVersion,
		Method:  method,
		Params:  params,
		ID:      id,
	}
}

// In represents an inbound frame's generic header. It's used to tell
// correlated responses (RawID present) from anything else before the
// payload is inspected.
type In struct {
	JSONRPC   string          `json:"jsonrpc"`
	Method    string          `json:"method,omitempty"`
	RawParams json.RawMessage `json:"params,omitempty"`
	RawID     json.RawMessage `json:"id,omitempty"`
}

// NewIn creates a new In struct.
func NewIn() *In {
	return &In{}
}

// DecodeData decodes the given reader into the the request struct.
func (r *In) DecodeData(data io.ReadCloser) error {
	defer data.Close()
	return json.NewDecoder(data).Decode(r)
}
