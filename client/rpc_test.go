package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/FindoraNetwork/tendermint-rpc/query"
	"github.com/FindoraNetwork/tendermint-rpc/request"
	"github.com/FindoraNetwork/tendermint-rpc/response"
	"github.com/FindoraNetwork/tendermint-rpc/response/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcClientTestCase struct {
	name           string
	invoke         func(c *Client) (any, error)
	fails          bool
	serverResponse string
	check          func(t *testing.T, result any)
}

// serverResponse json data mirrors the upstream RPC reference examples,
// trimmed down to the fields we deserialize.
var rpcClientTestCases = map[string][]rpcClientTestCase{
	"status": {
		{
			name: "positive",
			invoke: func(c *Client) (any, error) {
				return c.Status()
			},
			serverResponse: `{"jsonrpc":"2.0","id":1,"result":{"node_info":{"id":"f9baeaa15fedf5e1ef7448dd60f46c01f1a9e9c4","network":"dockerchain","version":"0.34.9","moniker":"dockernode"},"sync_info":{"latest_block_hash":"63F7C5","latest_app_hash":"0000","latest_block_height":"1262196","latest_block_time":"2021-03-18T07:38:49.123456789Z","catching_up":false},"validator_info":{"address":"6FD41B","pub_key":{"type":"tendermint/PubKeyEd25519","value":"l9Xhrs="},"voting_power":"10"}}}`,
			check: func(t *testing.T, res any) {
				st, ok := res.(*result.Status)
				require.True(t, ok)
				assert.Equal(t, "dockerchain", st.NodeInfo.Network)
				assert.EqualValues(t, 1262196, st.SyncInfo.LatestBlockHeight)
				assert.EqualValues(t, 10, st.ValidatorInfo.VotingPower)
			},
		},
		{
			name: "error response",
			invoke: func(c *Client) (any, error) {
				return c.Status()
			},
			fails:          true,
			serverResponse: `{"jsonrpc":"2.0","id":1,"error":{"code":-32603,"message":"Internal error","data":"boom"}}`,
		},
		{
			name: "unsupported version",
			invoke: func(c *Client) (any, error) {
				return c.Status()
			},
			fails:          true,
			serverResponse: `{"jsonrpc":"1.0","id":1,"result":{}}`,
		},
	},
	"block": {
		{
			name: "positive",
			invoke: func(c *Client) (any, error) {
				return c.Block(10)
			},
			serverResponse: `{"jsonrpc":"2.0","id":1,"result":{"block_id":{"hash":"112BC173FD838FB68EB43476816CD7B4C6661B6884A9E357B417EE957E1CF8F7","parts":{"total":"1","hash":"38D4B26B5B725C4F13571EFE022C030390E4C33C8CF6F88EDD142EA769642DBD"}},"block":{"header":{"chain_id":"dockerchain","height":"10","time":"2020-03-15T16:57:08.151Z","proposer_address":"6FD41B"},"data":{"txs":["dHgxCg=="]}}}}`,
			check: func(t *testing.T, res any) {
				b, ok := res.(*result.BlockResponse)
				require.True(t, ok)
				assert.EqualValues(t, 10, b.Block.Header.Height)
				assert.Len(t, b.Block.Data.Txs, 1)
			},
		},
	},
	"blockchain": {
		{
			name: "positive",
			invoke: func(c *Client) (any, error) {
				return c.Blockchain(1, 2)
			},
			serverResponse: `{"jsonrpc":"2.0","id":1,"result":{"last_height":"1276718","block_metas":[{"block_id":{"hash":"0AB"},"block_size":"1000087","header":{"chain_id":"dockerchain","height":"2"},"num_txs":"54"},{"block_id":{"hash":"0AC"},"block_size":"1000102","header":{"chain_id":"dockerchain","height":"1"},"num_txs":"7"}]}}`,
			check: func(t *testing.T, res any) {
				bi, ok := res.(*result.BlockchainInfo)
				require.True(t, ok)
				assert.EqualValues(t, 1276718, bi.LastHeight)
				require.Len(t, bi.BlockMetas, 2)
				assert.EqualValues(t, 54, bi.BlockMetas[0].NumTxs)
			},
		},
	},
	"broadcast_tx_sync": {
		{
			name: "positive",
			invoke: func(c *Client) (any, error) {
				return c.BroadcastTxSync([]byte("tx"))
			},
			serverResponse: `{"jsonrpc":"2.0","id":1,"result":{"code":0,"data":"","log":"","hash":"0D33F2F03A5234F38706E43004489E061AC40A2E"}}`,
			check: func(t *testing.T, res any) {
				bt, ok := res.(*result.BroadcastTx)
				require.True(t, ok)
				assert.EqualValues(t, 0, bt.Code)
				assert.Equal(t, "0D33F2F03A5234F38706E43004489E061AC40A2E", bt.Hash)
			},
		},
	},
	"tx_search": {
		{
			name: "positive",
			invoke: func(c *Client) (any, error) {
				return c.TxSearch(query.MustEventType("Tx").AndGte("tx.height", int64(3)), false, 1, 30, OrderAsc)
			},
			serverResponse: `{"jsonrpc":"2.0","id":1,"result":{"txs":[{"hash":"D70952032620CC4E2737EB8AC379806359D8E0B17B0488F627997A0B043ABDED","height":"1000","index":0,"tx_result":{"code":0,"log":"","gas_wanted":"200000","gas_used":"28000"},"tx":"dHgxCg=="}],"total_count":"1"}}`,
			check: func(t *testing.T, res any) {
				ts, ok := res.(*result.TxSearch)
				require.True(t, ok)
				require.Len(t, ts.Txs, 1)
				assert.EqualValues(t, 1000, ts.Txs[0].Height)
				assert.EqualValues(t, 1, ts.TotalCount)
			},
		},
	},
	"net_info": {
		{
			name: "positive",
			invoke: func(c *Client) (any, error) {
				return c.NetInfo()
			},
			serverResponse: `{"jsonrpc":"2.0","id":1,"result":{"listening":true,"listeners":["Listener(@)"],"n_peers":"1","peers":[{"node_info":{"id":"5576458aef205977e18fd50b274e9b5d9014525a","network":"cosmoshub-2"},"is_outbound":true,"remote_ip":"95.179.148.96"}]}}`,
			check: func(t *testing.T, res any) {
				ni, ok := res.(*result.NetInfo)
				require.True(t, ok)
				assert.True(t, ni.Listening)
				require.Len(t, ni.Peers, 1)
				assert.Equal(t, "cosmoshub-2", ni.Peers[0].NodeInfo.Network)
			},
		},
	},
	"abci_info": {
		{
			name: "positive",
			invoke: func(c *Client) (any, error) {
				return c.ABCIInfo()
			},
			serverResponse: `{"jsonrpc":"2.0","id":1,"result":{"response":{"data":"{\"size\":0}","version":"0.17.0","last_block_height":"488120","last_block_app_hash":"cED2OQ=="}}}`,
			check: func(t *testing.T, res any) {
				ai, ok := res.(*result.ABCIInfo)
				require.True(t, ok)
				assert.EqualValues(t, 488120, ai.Response.LastBlockHeight)
			},
		},
	},
	"genesis": {
		{
			name: "positive",
			invoke: func(c *Client) (any, error) {
				return c.Genesis()
			},
			serverResponse: `{"jsonrpc":"2.0","id":1,"result":{"genesis":{"genesis_time":"2020-03-15T16:57:08.151Z","chain_id":"dockerchain","validators":[{"address":"6FD41B","pub_key":{"type":"tendermint/PubKeyEd25519","value":"l9Xhrs="},"voting_power":"10"}],"app_hash":""}}}`,
			check: func(t *testing.T, res any) {
				g, ok := res.(*result.Genesis)
				require.True(t, ok)
				assert.Equal(t, "dockerchain", g.ChainID)
				require.Len(t, g.Validators, 1)
			},
		},
	},
	"commit": {
		{
			name: "positive",
			invoke: func(c *Client) (any, error) {
				return c.LatestCommit()
			},
			serverResponse: `{"jsonrpc":"2.0","id":1,"result":{"signed_header":{"header":{"chain_id":"dockerchain","height":"10"},"commit":{"round":"1"}},"canonical":true}}`,
			check: func(t *testing.T, res any) {
				cm, ok := res.(*result.Commit)
				require.True(t, ok)
				assert.EqualValues(t, 10, cm.SignedHeader.Header.Height)
				assert.True(t, cm.CanonicalCommit)
			},
		},
	},
}

func handleRPC(t *testing.T, w http.ResponseWriter, req *http.Request, resp string) {
	r := request.NewIn()
	require.NoError(t, r.DecodeData(req.Body))
	require.Equal(t, request.JSONRPCVersion, r.JSONRPC)
	require.NotEmpty(t, r.Method)
	w.Header().Set("Content-Type", "application/json")
	_, err := w.Write([]byte(resp))
	require.NoError(t, err)
}

func TestRPCClient(t *testing.T) {
	for method, cases := range rpcClientTestCases {
		t.Run(method, func(t *testing.T) {
			for _, tc := range cases {
				t.Run(tc.name, func(t *testing.T) {
					srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
						handleRPC(t, w, req, tc.serverResponse)
					}))
					t.Cleanup(srv.Close)

					c, err := New(context.TODO(), srv.URL, Options{})
					require.NoError(t, err)
					t.Cleanup(c.Close)

					res, err := tc.invoke(c)
					if tc.fails {
						require.Error(t, err)
						return
					}
					require.NoError(t, err)
					if tc.check != nil {
						tc.check(t, res)
					}
				})
			}
		})
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		handleRPC(t, w, req, `{"jsonrpc":"2.0","id":1,"result":{}}`)
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.TODO(), srv.URL, Options{})
	require.NoError(t, err)
	require.NoError(t, c.Health())
}

func TestValidatorsAll(t *testing.T) {
	const total = 65 // 3 pages at 30 per page

	var pagesServed int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r := request.NewIn()
		require.NoError(t, r.DecodeData(req.Body))
		var params struct {
			Page    string `json:"page"`
			PerPage string `json:"per_page"`
		}
		require.NoError(t, json.Unmarshal(r.RawParams, &params))
		page, err := strconv.Atoi(params.Page)
		require.NoError(t, err)
		pagesServed++

		count := validatorsPerPage
		if page*validatorsPerPage > total {
			count = total - (page-1)*validatorsPerPage
		}
		vals := make([]string, 0, count)
		for i := 0; i < count; i++ {
			vals = append(vals, fmt.Sprintf(`{"address":"v%d-%d","pub_key":{"type":"t","value":"v"},"voting_power":"1","proposer_priority":"0"}`, page, i))
		}
		resp := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"result":{"block_height":"100","validators":[%s],"count":"%d","total":"%d"}}`,
			strings.Join(vals, ","), count, total)
		w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.TODO(), srv.URL, Options{})
	require.NoError(t, err)

	res, err := c.ValidatorsAll(100)
	require.NoError(t, err)
	assert.Equal(t, 3, pagesServed)
	assert.Len(t, res.Validators, total)
	assert.EqualValues(t, total, res.Count)
	assert.EqualValues(t, total, res.Total)
}

func TestValidatorsAllDoesNotConverge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// Empty pages with an ever-positive total never let the loop
		// reach its target.
		handleRPC(t, w, req, `{"jsonrpc":"2.0","id":1,"result":{"block_height":"100","validators":[],"count":"0","total":"10"}}`)
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.TODO(), srv.URL, Options{})
	require.NoError(t, err)

	_, err = c.ValidatorsAll(100)
	require.Error(t, err)
	var rpcErr *response.Error
	require.True(t, errors.As(err, &rpcErr))
	assert.EqualValues(t, response.InternalErrorCode, rpcErr.Code)
}

func TestWaitUntilHealthy(t *testing.T) {
	t.Run("eventually healthy", func(t *testing.T) {
		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			calls++
			if calls < 3 {
				handleRPC(t, w, req, `{"jsonrpc":"2.0","id":1,"error":{"code":-32603,"message":"Internal error"}}`)
				return
			}
			handleRPC(t, w, req, `{"jsonrpc":"2.0","id":1,"result":{}}`)
		}))
		t.Cleanup(srv.Close)

		c, err := New(context.TODO(), srv.URL, Options{})
		require.NoError(t, err)
		require.NoError(t, c.WaitUntilHealthy(5*time.Second))
		assert.Equal(t, 3, calls)
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			handleRPC(t, w, req, `{"jsonrpc":"2.0","id":1,"error":{"code":-32603,"message":"Internal error"}}`)
		}))
		t.Cleanup(srv.Close)

		c, err := New(context.TODO(), srv.URL, Options{})
		require.NoError(t, err)

		err = c.WaitUntilHealthy(300 * time.Millisecond)
		require.Error(t, err)
		var rpcErr *response.Error
		require.True(t, errors.As(err, &rpcErr))
		assert.EqualValues(t, response.InternalErrorCode, rpcErr.Code)
		assert.Contains(t, rpcErr.Data, "timed out")
	})
}

func TestRequestIDsAreFresh(t *testing.T) {
	var ids []uint64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r := request.NewIn()
		require.NoError(t, r.DecodeData(req.Body))
		var id uint64
		require.NoError(t, json.Unmarshal(r.RawID, &id))
		ids = append(ids, id)
		w.Write([]byte(fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"result":{}}`, id)))
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.TODO(), srv.URL, Options{})
	require.NoError(t, err)

	require.NoError(t, c.Health())
	require.NoError(t, c.Health())
	require.NoError(t, c.Health())
	require.Equal(t, []uint64{1, 2, 3}, ids)
}
