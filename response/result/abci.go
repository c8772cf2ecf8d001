package result

import "encoding/json"

// ABCIInfo is the response of the `abci_info` call, describing the
// application run by the node.
type ABCIInfo struct {
	Response struct {
		Data             string `json:"data,omitempty"`
		Version          string `json:"version,omitempty"`
		AppVersion       uint64 `json:"app_version,string,omitempty"`
		LastBlockHeight  int64  `json:"last_block_height,string,omitempty"`
		LastBlockAppHash []byte `json:"last_block_app_hash,omitempty"`
	} `json:"response"`
}

// ABCIQuery is the response of the `abci_query` call.
type ABCIQuery struct {
	Response struct {
		Code   uint32          `json:"code"`
		Log    string          `json:"log,omitempty"`
		Info   string          `json:"info,omitempty"`
		Index  int64           `json:"index,string"`
		Key    []byte          `json:"key,omitempty"`
		Value  []byte          `json:"value,omitempty"`
		Proof  json.RawMessage `json:"proof_ops,omitempty"`
		Height int64           `json:"height,string"`
	} `json:"response"`
}
