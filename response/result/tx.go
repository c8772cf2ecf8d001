package result

import "encoding/json"

// TxResult is the ABCI result of executing one transaction.
type TxResult struct {
	Code      uint32          `json:"code"`
	Data      []byte          `json:"data,omitempty"`
	Log       string          `json:"log,omitempty"`
	Info      string          `json:"info,omitempty"`
	GasWanted int64           `json:"gas_wanted,string"`
	GasUsed   int64           `json:"gas_used,string"`
	Events    json.RawMessage `json:"events,omitempty"`
	Codespace string          `json:"codespace,omitempty"`
}

// BroadcastTx is the response of the `broadcast_tx_async` and
// `broadcast_tx_sync` calls.
type BroadcastTx struct {
	Code uint32 `json:"code"`
	Data []byte `json:"data,omitempty"`
	Log  string `json:"log,omitempty"`
	Hash string `json:"hash"`
}

// BroadcastTxCommit is the response of the `broadcast_tx_commit` call. It
// includes both the mempool check and the execution result of the
// transaction, available once it's been included in a block.
type BroadcastTxCommit struct {
	CheckTx   TxResult `json:"check_tx"`
	DeliverTx TxResult `json:"deliver_tx"`
	Hash      string   `json:"hash"`
	Height    int64    `json:"height,string"`
}

// Tx is the response of the `tx` call: one committed transaction with its
// execution result and, optionally, its inclusion proof.
type Tx struct {
	Hash     string          `json:"hash"`
	Height   int64           `json:"height,string"`
	Index    uint32          `json:"index"`
	TxResult TxResult        `json:"tx_result"`
	TxBytes  []byte          `json:"tx"`
	Proof    json.RawMessage `json:"proof,omitempty"`
}

// TxSearch is the response of the `tx_search` call: one page of matching
// transactions plus the server-reported total across all pages.
type TxSearch struct {
	Txs        []Tx  `json:"txs"`
	TotalCount int64 `json:"total_count,string"`
}

// BroadcastEvidence is the response of the `broadcast_evidence` call.
type BroadcastEvidence struct {
	Hash string `json:"hash"`
}
