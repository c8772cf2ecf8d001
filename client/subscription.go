package client

import (
	"sync"

	"github.com/FindoraNetwork/tendermint-rpc/query"
	"github.com/FindoraNetwork/tendermint-rpc/response"
	"github.com/FindoraNetwork/tendermint-rpc/response/result"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	methodSubscribe   = "subscribe"
	methodUnsubscribe = "unsubscribe"

	// This sets the per-subscriber event buffer depth. The reader
	// goroutine blocks once a subscriber falls this far behind, which
	// stalls the whole connection, so consume events promptly or Close
	// the subscription.
	eventBufSize = 64
)

// feed is the per-query bookkeeping shared by all local subscribers of one
// canonical query string. While a feed exists, exactly one server-side
// subscription for its query exists, no matter how many local handles
// reference it.
type feed struct {
	refs int
	subs map[*Subscription]struct{}
}

// Subscription represents one local interest in a query's event stream.
// Events are consumed from Events(); Close drops the interest, which
// unsubscribes from the server once the last local handle for the same
// query is gone.
type Subscription struct {
	id       string
	queryStr string
	client   *WSClient
	events   chan *result.Event
	// done is closed by Close before any locks are taken, it releases a
	// reader that is blocked delivering into a full events buffer.
	done      chan struct{}
	closeOnce sync.Once
	err       atomic.Error
}

// ID returns the handle's unique identifier. It only has local meaning.
func (s *Subscription) ID() string {
	return s.id
}

// Query returns the canonical query string this subscription is routed by.
func (s *Subscription) Query() string {
	return s.queryStr
}

// Events returns the channel the subscription's events arrive on. It's
// closed when the subscription terminates, check Err afterwards to tell an
// orderly Close from a connection loss.
func (s *Subscription) Events() <-chan *result.Event {
	return s.events
}

// Err returns the reason the event channel was closed: nil after a local
// Close, ErrConnClosed after a connection loss. It returns nil while the
// subscription is live.
func (s *Subscription) Err() error {
	return s.err.Load()
}

// Close drops this handle's interest in its query. It's safe to call
// multiple times and after a connection loss.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.client.unsubscribe(s)
	})
	return err
}

type subscribeParams struct {
	Query string `json:"query"`
}

// Subscribe registers interest in events matching the given query. If some
// other live subscription already uses an equivalent query (equal canonical
// strings), it's shared: no wire traffic happens and the new handle just
// joins the existing server-side subscription. Otherwise a subscribe call
// is made and the handle is returned once the server acknowledged it.
func (c *WSClient) Subscribe(q query.Query) (*Subscription, error) {
	qs := q.String()
	sub := &Subscription{
		id:       uuid.NewString(),
		queryStr: qs,
		client:   c,
		events:   make(chan *result.Event, eventBufSize),
		done:     make(chan struct{}),
	}

	c.subLock.Lock()
	defer c.subLock.Unlock()

	c.feedsLock.Lock()
	if c.state.Load() != wsRunning {
		c.feedsLock.Unlock()
		return nil, response.ErrConnClosed
	}
	if f, ok := c.feeds[qs]; ok {
		f.refs++
		f.subs[sub] = struct{}{}
		c.feedsLock.Unlock()
		subscriptionsActive.Inc()
		return sub, nil
	}
	// First local interest in this query. The route is installed before
	// the subscribe call goes out: the server may push a matching event
	// right behind the acknowledgement, and the reader handles that frame
	// before this goroutine regains control.
	c.feeds[qs] = &feed{refs: 1, subs: map[*Subscription]struct{}{sub: {}}}
	c.feedsLock.Unlock()
	subscriptionsActive.Inc()

	if err := c.performRequest(methodSubscribe, subscribeParams{Query: qs}, nil); err != nil {
		// Take the provisional route back out. On a connection loss the
		// drain sequence may already have swept it.
		c.feedsLock.Lock()
		if f, ok := c.feeds[qs]; ok {
			if _, mine := f.subs[sub]; mine {
				delete(c.feeds, qs)
				subscriptionsActive.Dec()
			}
		}
		c.feedsLock.Unlock()
		return nil, err
	}
	return sub, nil
}

// unsubscribe removes one local handle. Local state is released right away;
// when the last handle for a query goes, the wire unsubscribe is issued
// best-effort in the background so that a slow or unresponsive peer can't
// delay the caller or leak local resources.
func (c *WSClient) unsubscribe(s *Subscription) error {
	// Signal before taking any locks: the reader may be blocked delivering
	// into this handle's full buffer while holding feedsLock shared, and
	// it won't release it until the delivery is abandoned.
	close(s.done)

	c.subLock.Lock()
	defer c.subLock.Unlock()

	c.feedsLock.Lock()
	f, ok := c.feeds[s.queryStr]
	if ok {
		_, ok = f.subs[s]
	}
	if !ok {
		// Already gone, the connection was drained.
		c.feedsLock.Unlock()
		return nil
	}
	delete(f.subs, s)
	f.refs--
	last := f.refs == 0
	if last {
		delete(c.feeds, s.queryStr)
	}
	c.feedsLock.Unlock()

	// The reader fans out under feedsLock.RLock, so after the removal
	// above no delivery to this subscription can be in flight.
	close(s.events)
	subscriptionsActive.Dec()

	if last {
		go func(qs string) {
			if err := c.performRequest(methodUnsubscribe, subscribeParams{Query: qs}, nil); err != nil {
				c.log.Warn("unsubscribe failed",
					zap.String("query", qs),
					zap.Error(err))
			}
		}(s.queryStr)
	}
	return nil
}

// notifyEvent routes a pushed event to every local subscriber of its query
// string. Events are delivered in arrival order: the reader goroutine is
// the only sender, so every subscriber sees event N before any sees N+1.
// Events for queries with no local feed are dropped, that's the normal
// outcome of an unsubscribe racing the server.
func (c *WSClient) notifyEvent(ev *result.Event) {
	eventsReceived.Inc()
	c.feedsLock.RLock()
	defer c.feedsLock.RUnlock()
	f, ok := c.feeds[ev.Query]
	if !ok {
		eventsUnroutable.Inc()
		return
	}
	for sub := range f.subs {
		select {
		case sub.events <- ev:
		case <-sub.done:
			// The handle is closing, skip it rather than wait for a
			// consumer that's gone.
		case <-c.shutdown:
			return
		}
	}
}
