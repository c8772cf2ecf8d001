package result

import "encoding/json"

// BlockID identifies a block by hash together with the hash of its parts.
type BlockID struct {
	Hash  string `json:"hash"`
	Parts struct {
		Total int64  `json:"total,string"`
		Hash  string `json:"hash"`
	} `json:"parts"`
}

// BlockHeader carries the consensus-relevant block fields the client cares
// about; everything else stays raw.
type BlockHeader struct {
	ChainID         string  `json:"chain_id"`
	Height          int64   `json:"height,string"`
	Time            string  `json:"time"`
	LastBlockID     BlockID `json:"last_block_id"`
	DataHash        string  `json:"data_hash"`
	AppHash         string  `json:"app_hash"`
	ProposerAddress string  `json:"proposer_address"`
}

// Block wraps a block header with its transaction data and evidence.
type Block struct {
	Header BlockHeader `json:"header"`
	Data   struct {
		Txs []string `json:"txs"`
	} `json:"data"`
	Evidence struct {
		Evidence json.RawMessage `json:"evidence"`
	} `json:"evidence"`
	LastCommit json.RawMessage `json:"last_commit"`
}

// BlockResponse is the response of the `block` call.
type BlockResponse struct {
	BlockID BlockID `json:"block_id"`
	Block   Block   `json:"block"`
}

// BlockMeta is a block header plus identification metadata as returned by
// the `blockchain` call.
type BlockMeta struct {
	BlockID   BlockID     `json:"block_id"`
	BlockSize int64       `json:"block_size,string"`
	Header    BlockHeader `json:"header"`
	NumTxs    int64       `json:"num_txs,string"`
}

// BlockchainInfo is the response of the `blockchain` call: headers for a
// height range, highest first.
type BlockchainInfo struct {
	LastHeight int64       `json:"last_height,string"`
	BlockMetas []BlockMeta `json:"block_metas"`
}

// BlockResults is the response of the `block_results` call, the ABCI
// results produced while executing one block.
type BlockResults struct {
	Height     int64           `json:"height,string"`
	TxsResults []TxResult      `json:"txs_results"`
	Events     json.RawMessage `json:"begin_block_events,omitempty"`
	Validator  json.RawMessage `json:"validator_updates,omitempty"`
}

// Commit is the response of the `commit` call.
type Commit struct {
	SignedHeader struct {
		Header BlockHeader     `json:"header"`
		Commit json.RawMessage `json:"commit"`
	} `json:"signed_header"`
	CanonicalCommit bool `json:"canonical"`
}
