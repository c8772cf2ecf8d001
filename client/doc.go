/*
Package client implements the consensus engine RPC client.

Client provides the ordinary request/response endpoints over HTTP: chain
state queries, block and transaction retrieval, transaction broadcast.

	c, err := client.New(context.Background(), "http://localhost:26657", client.Options{})
	if err != nil {
		return err
	}
	st, err := c.Status()

WSClient keeps one duplex websocket connection and adds the event
subscription mechanism on top of the same call surface. Subscriptions are
expressed with the query package and shared: any number of local handles
for equivalent queries map onto a single server-side subscription.

	wsc, err := client.NewWS(context.Background(), "ws://localhost:26657/websocket", client.Options{})
	if err != nil {
		return err
	}
	sub, err := wsc.Subscribe(query.FromEventType(query.NewBlockEvent))
	if err != nil {
		return err
	}
	for ev := range sub.Events() {
		// ...
	}

Closing a subscription handle is the only cancellation mechanism; once the
last handle for a query is closed the server-side subscription is dropped
too. On connection loss every outstanding call fails with
response.ErrConnClosed and every event channel is closed.
*/
package client
