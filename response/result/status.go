/*
Package result contains the per-endpoint response payloads. These are plain
serialization structs with no behavior, numeric chain values follow the
server's convention of being encoded as JSON strings.
*/
package result

// Status is the response of the `status` call, a summary of the node and
// the chain head it's at.
type Status struct {
	NodeInfo      NodeInfo      `json:"node_info"`
	SyncInfo      SyncInfo      `json:"sync_info"`
	ValidatorInfo ValidatorInfo `json:"validator_info"`
}

// NodeInfo describes the remote node itself.
type NodeInfo struct {
	ID         string `json:"id"`
	ListenAddr string `json:"listen_addr"`
	Network    string `json:"network"`
	Version    string `json:"version"`
	Channels   string `json:"channels"`
	Moniker    string `json:"moniker"`
}

// SyncInfo describes the node's view of the chain head.
type SyncInfo struct {
	LatestBlockHash   string `json:"latest_block_hash"`
	LatestAppHash     string `json:"latest_app_hash"`
	LatestBlockHeight int64  `json:"latest_block_height,string"`
	LatestBlockTime   string `json:"latest_block_time"`
	CatchingUp        bool   `json:"catching_up"`
}

// ValidatorInfo describes the node's own validator key and power.
type ValidatorInfo struct {
	Address     string `json:"address"`
	PubKey      PubKey `json:"pub_key"`
	VotingPower int64  `json:"voting_power,string"`
}

// PubKey is a type/value public key representation.
type PubKey struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
