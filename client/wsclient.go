package client

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/FindoraNetwork/tendermint-rpc/request"
	"github.com/FindoraNetwork/tendermint-rpc/response"
	"github.com/FindoraNetwork/tendermint-rpc/response/result"
	"github.com/gorilla/websocket"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// WSClient is a websocket-enabled RPC client that can be used with
// appropriate servers. It's supposed to be faster than Client because it has
// persistent connection to the server and at the same time it exposes some
// functionality that is only provided via websockets (like event
// subscription mechanism).
type WSClient struct {
	Client
	ws       *websocket.Conn
	done     chan struct{}
	requests chan *request.Raw
	shutdown chan struct{}
	state    *atomic.Int32

	respLock     sync.Mutex
	respChannels map[uint64]chan *response.Raw

	// subLock serializes subscribe/unsubscribe operations so that the
	// first subscriber to a query is the only one talking to the server
	// about it. It's never held by the reader goroutine.
	subLock sync.Mutex
	// feedsLock guards feeds. The reader takes it shared for every event
	// fan-out, which also means a listener removed under the exclusive
	// lock can't have a delivery in flight.
	feedsLock sync.RWMutex
	feeds     map[string]*feed
}

// Connection states. They only ever advance.
const (
	wsConnecting int32 = iota
	wsRunning
	wsDraining
	wsClosed
)

const (
	// Message limit for receiving side.
	wsReadLimit = 10 * 1024 * 1024

	// Disconnection timeout.
	wsPongLimit = 60 * time.Second

	// Ping period for connection liveness check.
	wsPingPeriod = wsPongLimit / 2

	// Write deadline.
	wsWriteLimit = wsPingPeriod / 2
)

// NewWS returns a new WSClient ready to use (with established websocket
// connection). You need to use websocket URL for it like `ws://1.2.3.4/ws`.
func NewWS(ctx context.Context, endpoint string, opts Options) (*WSClient, error) {
	cl := new(Client)
	if err := initClient(ctx, cl, endpoint, opts); err != nil {
		return nil, err
	}
	cl.cli = nil

	wsc := &WSClient{
		Client:       *cl,
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
		requests:     make(chan *request.Raw),
		respChannels: make(map[uint64]chan *response.Raw),
		feeds:        make(map[string]*feed),
		state:        atomic.NewInt32(wsConnecting),
	}

	dialer := websocket.Dialer{HandshakeTimeout: opts.DialTimeout}
	ws, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	wsc.ws = ws
	wsc.state.Store(wsRunning)

	go wsc.wsReader()
	go wsc.wsWriter()
	wsc.requestF = wsc.makeWsRequest
	return wsc, nil
}

// Close closes connection to the remote side rendering this client instance
// unusable.
func (c *WSClient) Close() {
	// Closing the shutdown channel sends a signal to wsWriter to break out
	// of the loop. In doing so it does ws.Close() closing the network
	// connection which in turn makes wsReader receive an error from
	// ReadJSON() and also break out of the loop running its drain sequence.
	if c.state.CompareAndSwap(wsRunning, wsDraining) {
		close(c.shutdown)
	}
	<-c.done
}

func (c *WSClient) wsReader() {
	c.ws.SetReadLimit(wsReadLimit)
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(wsPongLimit)) })
	for {
		rr := new(response.Raw)
		if err := c.ws.SetReadDeadline(time.Now().Add(wsPongLimit)); err != nil {
			break
		}
		if err := c.ws.ReadJSON(rr); err != nil {
			// Timeout/connection loss/malformed frame.
			break
		}
		if id, ok := parseRequestID(rr.ID); ok {
			if ch := c.takeResponseChannel(id); ch != nil {
				// Delivered as-is, DecodeResult on the caller's side
				// deals with version and error envelopes.
				ch <- rr
				continue
			}
		}
		if rr.JSONRPC != request.JSONRPCVersion {
			c.log.Warn("dropping frame with unsupported JSON-RPC version",
				zap.String("version", rr.JSONRPC))
			continue
		}
		// Not a correlated response, so it has to be a pushed event.
		ev := new(result.Event)
		if rr.Result == nil || json.Unmarshal(rr.Result, ev) != nil {
			c.log.Warn("dropping frame that is neither a response nor an event")
			continue
		}
		c.notifyEvent(ev)
	}
	c.drain()
}

func (c *WSClient) wsWriter() {
	pingTicker := time.NewTicker(wsPingPeriod)
	defer c.ws.Close()
	defer pingTicker.Stop()
	for {
		select {
		case <-c.shutdown:
			return
		case <-c.done:
			return
		case req := <-c.requests:
			if err := c.ws.SetWriteDeadline(time.Now().Add(c.opts.RequestTimeout)); err != nil {
				return
			}
			if err := c.ws.WriteJSON(req); err != nil {
				return
			}
		case <-pingTicker.C:
			if err := c.ws.SetWriteDeadline(time.Now().Add(wsWriteLimit)); err != nil {
				return
			}
			if err := c.ws.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}

// drain fails everything that is still outstanding once the reader loop has
// terminated: pending calls get ErrConnClosed, subscriber channels are
// closed. Run exactly once, from the reader goroutine.
func (c *WSClient) drain() {
	c.state.Store(wsDraining)

	c.respLock.Lock()
	for id := range c.respChannels {
		delete(c.respChannels, id)
	}
	c.respLock.Unlock()

	c.feedsLock.Lock()
	for qs, f := range c.feeds {
		for sub := range f.subs {
			sub.err.Store(response.ErrConnClosed)
			close(sub.events)
			subscriptionsActive.Dec()
		}
		delete(c.feeds, qs)
	}
	c.feedsLock.Unlock()

	c.state.Store(wsClosed)
	close(c.done)
}

// registerRespChannel creates a one-shot delivery slot for the given
// request ID.
func (c *WSClient) registerRespChannel(id uint64) chan *response.Raw {
	ch := make(chan *response.Raw, 1)
	c.respLock.Lock()
	c.respChannels[id] = ch
	c.respLock.Unlock()
	return ch
}

// takeResponseChannel removes and returns the delivery slot for the given
// request ID, nil if there is none. An entry is consumed at most once.
func (c *WSClient) takeResponseChannel(id uint64) chan *response.Raw {
	c.respLock.Lock()
	defer c.respLock.Unlock()
	ch := c.respChannels[id]
	delete(c.respChannels, id)
	return ch
}

func (c *WSClient) makeWsRequest(r *request.Raw) (*response.Raw, error) {
	if c.state.Load() != wsRunning {
		return nil, response.ErrConnClosed
	}
	ch := c.registerRespChannel(r.ID)
	select {
	case <-c.done:
		c.takeResponseChannel(r.ID)
		return nil, response.ErrConnClosed
	case <-c.ctx.Done():
		c.takeResponseChannel(r.ID)
		return nil, c.ctx.Err()
	case c.requests <- r:
	}
	select {
	case <-c.done:
		return nil, response.ErrConnClosed
	case <-c.ctx.Done():
		c.takeResponseChannel(r.ID)
		return nil, c.ctx.Err()
	case resp := <-ch:
		return resp, nil
	}
}

// parseRequestID recovers a client-generated numeric request ID from a raw
// envelope ID. Anything else (strings, suffixed IDs some servers attach to
// events) doesn't correlate with a pending call.
func parseRequestID(raw json.RawMessage) (uint64, bool) {
	s := string(raw)
	if len(s) > 1 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	id, err := strconv.ParseUint(s, 10, 64)
	return id, err == nil
}
