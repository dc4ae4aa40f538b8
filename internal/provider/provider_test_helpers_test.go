package provider

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"alph-link/go-provider/internal/chainid"
	"alph-link/go-provider/internal/channel"
)

type recordedRequest struct {
	env        channel.RequestEnvelope
	chainScope string
}

// fakeChannel is a scripted channel: tests drive signals by hand and
// inspect what the dispatcher forwarded.
type fakeChannel struct {
	mu       sync.Mutex
	state    string
	handlers channel.Handlers

	session     channel.Session
	snapshotErr error

	requests   []recordedRequest
	respond    func(env channel.RequestEnvelope, chainScope string) (json.RawMessage, error)
	requestErr error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{state: channel.StateDisconnected}
}

func (c *fakeChannel) SetHandlers(h channel.Handlers) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = h
}

func (c *fakeChannel) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *fakeChannel) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.state = channel.StateConnected
	onConnect := c.handlers.OnConnect
	c.mu.Unlock()
	if onConnect != nil {
		onConnect()
	}
	return nil
}

func (c *fakeChannel) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = channel.StateDisconnected
	return nil
}

func (c *fakeChannel) Snapshot(ctx context.Context) (channel.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshotErr != nil {
		return channel.Session{}, c.snapshotErr
	}
	return c.session, nil
}

func (c *fakeChannel) Request(ctx context.Context, env channel.RequestEnvelope, chainScope string) (json.RawMessage, error) {
	c.mu.Lock()
	c.requests = append(c.requests, recordedRequest{env: env, chainScope: chainScope})
	respond := c.respond
	requestErr := c.requestErr
	c.mu.Unlock()

	if requestErr != nil {
		return nil, requestErr
	}
	if respond != nil {
		return respond(env, chainScope)
	}
	return json.Marshal(map[string]string{
		"unsignedTx": "0a0b",
		"txId":       "t1",
		"signature":  "s1",
	})
}

func (c *fakeChannel) recorded() []recordedRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]recordedRequest(nil), c.requests...)
}

func (c *fakeChannel) fireSessionCreated(s channel.Session) {
	c.mu.Lock()
	h := c.handlers.OnSessionCreated
	c.mu.Unlock()
	h(s)
}

func (c *fakeChannel) fireSessionUpdated(s channel.Session) {
	c.mu.Lock()
	h := c.handlers.OnSessionUpdated
	c.mu.Unlock()
	h(s)
}

func (c *fakeChannel) fireNotification(n channel.Notification) {
	c.mu.Lock()
	h := c.handlers.OnNotification
	c.mu.Unlock()
	h(n)
}

func (c *fakeChannel) fireDisconnect() {
	c.mu.Lock()
	h := c.handlers.OnDisconnect
	c.mu.Unlock()
	h()
}

func newTestProvider(t *testing.T, scope chainid.Scope, ch channel.Channel) *Provider {
	t.Helper()
	p, err := New(Options{Scope: scope, Channel: ch})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

// eventsNamed returns the backlog events matching name, in order.
func eventsNamed(p *Provider, name string) []Event {
	replay, _, cancel := p.Events(0)
	cancel()
	out := make([]Event, 0, len(replay))
	for _, event := range replay {
		if event.Name == name {
			out = append(out, event)
		}
	}
	return out
}

func stringsPayload(t *testing.T, entries []string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return raw
}
