package result

import "encoding/json"

// NetInfo is the response of the `net_info` call, describing the node's P2P
// connections.
type NetInfo struct {
	Listening bool     `json:"listening"`
	Listeners []string `json:"listeners"`
	NPeers    int64    `json:"n_peers,string"`
	Peers     []Peer   `json:"peers"`
}

// Peer describes one P2P connection of the node.
type Peer struct {
	NodeInfo         NodeInfo        `json:"node_info"`
	IsOutbound       bool            `json:"is_outbound"`
	ConnectionStatus json.RawMessage `json:"connection_status"`
	RemoteIP         string          `json:"remote_ip"`
}

// Health is the response of the `health` call. It's empty on purpose, a
// healthy node answers with an empty result.
type Health struct{}

// Genesis is the response of the `genesis` call.
type Genesis struct {
	GenesisTime     string          `json:"genesis_time"`
	ChainID         string          `json:"chain_id"`
	ConsensusParams json.RawMessage `json:"consensus_params"`
	Validators      []Validator     `json:"validators"`
	AppHash         string          `json:"app_hash"`
	AppState        json.RawMessage `json:"app_state,omitempty"`
}

// ConsensusState is the response of the `consensus_state` call. The round
// state is node-version specific, so it stays raw.
type ConsensusState struct {
	RoundState json.RawMessage `json:"round_state"`
}
