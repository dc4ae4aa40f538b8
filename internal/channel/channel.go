package channel

import (
	"context"
	"encoding/json"
	"errors"
)

const (
	StateDisconnected = "disconnected"
	StateConnecting   = "connecting"
	StateConnected    = "connected"
)

// Notification kinds the provider interprets; every other kind passes
// through to the application untouched.
const (
	KindAccountsChanged = "accountsChanged"
	KindChainChanged    = "chainChanged"
)

var (
	ErrNotConnected = errors.New("channel is not connected")
	ErrClosed       = errors.New("channel is closed")
	ErrNoResponder  = errors.New("no responder is bound to the topic")
)

// Session is a raw session descriptor as delivered by the remote side:
// undecoded chain and account strings plus the topic that scopes them.
type Session struct {
	Topic    string   `json:"topic"`
	Chains   []string `json:"chains"`
	Accounts []string `json:"accounts"`
}

// Notification is a remote-originated event outside the session lifecycle.
type Notification struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// RequestEnvelope frames one outbound signing request.
type RequestEnvelope struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Handlers are the typed signal callbacks a channel delivers. Each field
// covers one signal category; nil fields are skipped. A channel must never
// invoke two handlers concurrently.
type Handlers struct {
	OnConnect        func()
	OnSessionCreated func(Session)
	OnSessionUpdated func(Session)
	OnNotification   func(Notification)
	OnDisconnect     func()
}

// Channel is the asynchronous transport between the provider and the remote
// signer. Implementations deliver signals through Handlers and accept scoped
// requests; session establishment (pairing, encryption) is their concern,
// not the provider's.
type Channel interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Snapshot(ctx context.Context) (Session, error)
	Request(ctx context.Context, env RequestEnvelope, chainScope string) (json.RawMessage, error)
	SetHandlers(h Handlers)
	State() string
}
