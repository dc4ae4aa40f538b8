package channel

import (
	"context"
	"encoding/json"
	"sync"
)

// Responder is the remote-signer side of a relay topic. Implementations
// answer scoped requests and expose the session they currently grant.
type Responder interface {
	CurrentSession(topic string) Session
	HandleRequest(ctx context.Context, env RequestEnvelope, chainScope string) (json.RawMessage, error)
}

// Relay is an in-process message relay pairing provider endpoints with
// responders by topic. It stands in for the multi-hop transport during tests
// and local development; delivery order per topic matches publish order.
type Relay struct {
	mu         sync.Mutex
	responders map[string]Responder
	endpoints  map[string]*RelayChannel
}

func NewRelay() *Relay {
	return &Relay{
		responders: make(map[string]Responder),
		endpoints:  make(map[string]*RelayChannel),
	}
}

// Bind attaches the responder serving a topic. A later Bind for the same
// topic replaces the previous responder.
func (r *Relay) Bind(topic string, responder Responder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responders[topic] = responder
}

// Endpoint returns the provider-side channel for a topic, creating it on
// first use.
func (r *Relay) Endpoint(topic string) *RelayChannel {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ep, ok := r.endpoints[topic]; ok {
		return ep
	}
	ep := &RelayChannel{relay: r, topic: topic, state: StateDisconnected}
	r.endpoints[topic] = ep
	return ep
}

func (r *Relay) responder(topic string) (Responder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	responder, ok := r.responders[topic]
	return responder, ok
}

// SessionCreated pushes a session-created signal to the topic's endpoint.
func (r *Relay) SessionCreated(topic string, session Session) {
	if ep := r.connectedEndpoint(topic); ep != nil {
		ep.deliver(func(h Handlers) {
			if h.OnSessionCreated != nil {
				h.OnSessionCreated(session)
			}
		})
	}
}

// SessionUpdated pushes a session-updated signal to the topic's endpoint.
func (r *Relay) SessionUpdated(topic string, session Session) {
	if ep := r.connectedEndpoint(topic); ep != nil {
		ep.deliver(func(h Handlers) {
			if h.OnSessionUpdated != nil {
				h.OnSessionUpdated(session)
			}
		})
	}
}

// Notify pushes a notification signal to the topic's endpoint.
func (r *Relay) Notify(topic string, n Notification) {
	if ep := r.connectedEndpoint(topic); ep != nil {
		ep.deliver(func(h Handlers) {
			if h.OnNotification != nil {
				h.OnNotification(n)
			}
		})
	}
}

// Drop disconnects the topic's endpoint from the remote side.
func (r *Relay) Drop(topic string) {
	if ep := r.connectedEndpoint(topic); ep != nil {
		ep.drop()
	}
}

func (r *Relay) connectedEndpoint(topic string) *RelayChannel {
	r.mu.Lock()
	defer r.mu.Unlock()
	ep, ok := r.endpoints[topic]
	if !ok || ep.State() != StateConnected {
		return nil
	}
	return ep
}

// RelayChannel is the provider-facing Channel over a Relay topic.
type RelayChannel struct {
	relay *Relay
	topic string

	mu       sync.Mutex
	state    string
	handlers Handlers
}

func (c *RelayChannel) SetHandlers(h Handlers) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = h
}

func (c *RelayChannel) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *RelayChannel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnected
	c.mu.Unlock()

	c.deliver(func(h Handlers) {
		if h.OnConnect != nil {
			h.OnConnect()
		}
	})
	return nil
}

func (c *RelayChannel) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateDisconnected
	c.mu.Unlock()
	return nil
}

func (c *RelayChannel) Snapshot(ctx context.Context) (Session, error) {
	if c.State() != StateConnected {
		return Session{}, ErrNotConnected
	}
	responder, ok := c.relay.responder(c.topic)
	if !ok {
		return Session{}, ErrNoResponder
	}
	return responder.CurrentSession(c.topic), nil
}

func (c *RelayChannel) Request(ctx context.Context, env RequestEnvelope, chainScope string) (json.RawMessage, error) {
	if c.State() != StateConnected {
		return nil, ErrNotConnected
	}
	responder, ok := c.relay.responder(c.topic)
	if !ok {
		return nil, ErrNoResponder
	}
	return responder.HandleRequest(ctx, env, chainScope)
}

func (c *RelayChannel) drop() {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return
	}
	c.state = StateDisconnected
	c.mu.Unlock()

	c.deliver(func(h Handlers) {
		if h.OnDisconnect != nil {
			h.OnDisconnect()
		}
	})
}

// deliver invokes one handler callback with the handler set captured under
// the lock. The relay calls deliver from the publishing goroutine, so per
// topic the callback order equals publish order.
func (c *RelayChannel) deliver(fn func(Handlers)) {
	c.mu.Lock()
	handlers := c.handlers
	c.mu.Unlock()
	fn(handlers)
}
