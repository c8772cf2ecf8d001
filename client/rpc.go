package client

import (
	"fmt"
	"strconv"
	"time"

	"github.com/FindoraNetwork/tendermint-rpc/query"
	"github.com/FindoraNetwork/tendermint-rpc/response"
	"github.com/FindoraNetwork/tendermint-rpc/response/result"
)

// Order is the result ordering accepted by search endpoints.
type Order string

const (
	// OrderAsc sorts results oldest first.
	OrderAsc Order = "asc"
	// OrderDesc sorts results newest first.
	OrderDesc Order = "desc"
)

const (
	// healthPollInterval is the probing period of WaitUntilHealthy.
	healthPollInterval = 200 * time.Millisecond

	// validatorsPerPage is the page size used when fetching the complete
	// validator set.
	validatorsPerPage = 30
	// maxValidatorPages caps the pagination loop of ValidatorsAll. The
	// loop otherwise trusts the server-reported total, and a misbehaving
	// peer that keeps moving the total could make it spin forever.
	maxValidatorPages = 100
)

func heightParams(height int64) map[string]any {
	if height <= 0 {
		return map[string]any{}
	}
	return map[string]any{"height": strconv.FormatInt(height, 10)}
}

// ABCIInfo returns information about the application run by the node.
func (c *Client) ABCIInfo() (*result.ABCIInfo, error) {
	resp := new(result.ABCIInfo)
	if err := c.performRequest("abci_info", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ABCIQuery queries the application for some state. Height 0 means the
// latest committed state; prove requests a Merkle proof of the result.
func (c *Client) ABCIQuery(path string, data []byte, height int64, prove bool) (*result.ABCIQuery, error) {
	params := map[string]any{
		"path":   path,
		"data":   fmt.Sprintf("%X", data),
		"height": strconv.FormatInt(height, 10),
		"prove":  prove,
	}
	resp := new(result.ABCIQuery)
	if err := c.performRequest("abci_query", params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Block returns the block at the given height.
func (c *Client) Block(height int64) (*result.BlockResponse, error) {
	resp := new(result.BlockResponse)
	if err := c.performRequest("block", heightParams(height), resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// LatestBlock returns the most recently committed block.
func (c *Client) LatestBlock() (*result.BlockResponse, error) {
	return c.Block(0)
}

// BlockResults returns the application results for the block at the given
// height.
func (c *Client) BlockResults(height int64) (*result.BlockResults, error) {
	resp := new(result.BlockResults)
	if err := c.performRequest("block_results", heightParams(height), resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// LatestBlockResults returns the application results for the most recently
// committed block.
func (c *Client) LatestBlockResults() (*result.BlockResults, error) {
	return c.BlockResults(0)
}

// Blockchain returns block headers for min <= height <= max, highest first.
// The server returns at most 20 of them.
func (c *Client) Blockchain(min, max int64) (*result.BlockchainInfo, error) {
	params := map[string]any{
		"minHeight": strconv.FormatInt(min, 10),
		"maxHeight": strconv.FormatInt(max, 10),
	}
	resp := new(result.BlockchainInfo)
	if err := c.performRequest("blockchain", params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// BroadcastTxAsync submits a transaction and returns immediately, without
// waiting for the mempool check.
func (c *Client) BroadcastTxAsync(tx []byte) (*result.BroadcastTx, error) {
	return c.broadcastTx("broadcast_tx_async", tx)
}

// BroadcastTxSync submits a transaction and returns the mempool check
// result.
func (c *Client) BroadcastTxSync(tx []byte) (*result.BroadcastTx, error) {
	return c.broadcastTx("broadcast_tx_sync", tx)
}

func (c *Client) broadcastTx(method string, tx []byte) (*result.BroadcastTx, error) {
	resp := new(result.BroadcastTx)
	if err := c.performRequest(method, map[string]any{"tx": tx}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// BroadcastTxCommit submits a transaction and waits until it's been
// included in a block, returning both the mempool check and the execution
// result. Only useful for testing, production code should use the async or
// sync variants and subscribe to the transaction's events.
func (c *Client) BroadcastTxCommit(tx []byte) (*result.BroadcastTxCommit, error) {
	resp := new(result.BroadcastTxCommit)
	if err := c.performRequest("broadcast_tx_commit", map[string]any{"tx": tx}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// BroadcastEvidence submits evidence of validator misbehavior.
func (c *Client) BroadcastEvidence(evidence []byte) (*result.BroadcastEvidence, error) {
	resp := new(result.BroadcastEvidence)
	if err := c.performRequest("broadcast_evidence", map[string]any{"evidence": evidence}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Commit returns the commit for the block at the given height.
func (c *Client) Commit(height int64) (*result.Commit, error) {
	resp := new(result.Commit)
	if err := c.performRequest("commit", heightParams(height), resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// LatestCommit returns the commit for the most recently committed block.
func (c *Client) LatestCommit() (*result.Commit, error) {
	return c.Commit(0)
}

// ConsensusState returns a snapshot of the node's current consensus round
// state.
func (c *Client) ConsensusState() (*result.ConsensusState, error) {
	resp := new(result.ConsensusState)
	if err := c.performRequest("consensus_state", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Genesis returns the genesis document of the chain.
func (c *Client) Genesis() (*result.Genesis, error) {
	resp := new(struct {
		Genesis result.Genesis `json:"genesis"`
	})
	if err := c.performRequest("genesis", nil, resp); err != nil {
		return nil, err
	}
	return &resp.Genesis, nil
}

// Health checks whether the node is up. A healthy node answers with an
// empty result, so there is nothing to return besides the error.
func (c *Client) Health() error {
	return c.performRequest("health", nil, nil)
}

// NetInfo returns information about the node's P2P connections.
func (c *Client) NetInfo() (*result.NetInfo, error) {
	resp := new(result.NetInfo)
	if err := c.performRequest("net_info", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Status returns the node status including node info, latest block hash,
// app hash, block height and time.
func (c *Client) Status() (*result.Status, error) {
	resp := new(result.Status)
	if err := c.performRequest("status", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Tx returns the committed transaction with the given hash, optionally with
// an inclusion proof.
func (c *Client) Tx(hash []byte, prove bool) (*result.Tx, error) {
	params := map[string]any{
		"hash":  hash,
		"prove": prove,
	}
	resp := new(result.Tx)
	if err := c.performRequest("tx", params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// TxSearch returns one page of committed transactions matching the query
// together with their execution results.
func (c *Client) TxSearch(q query.Query, prove bool, page, perPage int, order Order) (*result.TxSearch, error) {
	params := map[string]any{
		"query":    q.String(),
		"prove":    prove,
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(perPage),
		"order_by": string(order),
	}
	resp := new(result.TxSearch)
	if err := c.performRequest("tx_search", params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Validators returns one page of the validator set at the given height.
// Non-positive page or perPage values leave the paging choice to the server.
func (c *Client) Validators(height int64, page, perPage int) (*result.Validators, error) {
	params := heightParams(height)
	if page > 0 {
		params["page"] = strconv.Itoa(page)
	}
	if perPage > 0 {
		params["per_page"] = strconv.Itoa(perPage)
	}
	resp := new(result.Validators)
	if err := c.performRequest("validators", params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ValidatorsAll fetches the complete validator set at the given height,
// requesting successive pages until the accumulated count matches the
// server-reported total. It gives up with an error after maxValidatorPages
// pages to avoid looping forever on a peer whose totals never converge.
func (c *Client) ValidatorsAll(height int64) (*result.Validators, error) {
	var all []result.Validator

	for page := 1; page <= maxValidatorPages; page++ {
		resp, err := c.Validators(height, page, validatorsPerPage)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Validators...)
		if int64(len(all)) >= resp.Total {
			return &result.Validators{
				BlockHeight: resp.BlockHeight,
				Validators:  all,
				Count:       int64(len(all)),
				Total:       resp.Total,
			}, nil
		}
	}
	return nil, response.NewInternalError(fmt.Sprintf("validator set pagination did not converge after %d pages", maxValidatorPages))
}

// WaitUntilHealthy polls the health endpoint every 200ms until it succeeds
// or the given timeout elapses, in which case a client internal error
// carrying the elapsed time is returned.
func (c *Client) WaitUntilHealthy(timeout time.Duration) error {
	started := time.Now()
	deadline := started.Add(timeout)

	for c.Health() != nil {
		if !time.Now().Before(deadline) {
			return response.NewInternalError(fmt.Sprintf("timed out waiting for healthy response after %dms", time.Since(started).Milliseconds()))
		}
		select {
		case <-c.ctx.Done():
			return c.ctx.Err()
		case <-time.After(healthPollInterval):
		}
	}
	return nil
}
