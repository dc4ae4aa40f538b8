//go:build real_waku

package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	ma "github.com/multiformats/go-multiaddr"
	wakuNode "github.com/waku-org/go-waku/waku/v2/node"
	"github.com/waku-org/go-waku/waku/v2/protocol"
	wpb "github.com/waku-org/go-waku/waku/v2/protocol/pb"
	"github.com/waku-org/go-waku/waku/v2/protocol/relay"
)

const (
	wakuPubsubTopic  = "/waku/2/default-waku/proto"
	wakuContentTopic = "/alph-link/1/session/proto"
)

const (
	frameRequest        = "request"
	frameResponse       = "response"
	frameSnapshotAsk    = "snapshot"
	frameSnapshotReply  = "snapshot-reply"
	frameSessionCreated = "session-created"
	frameSessionUpdated = "session-updated"
	frameNotification   = "notification"
	frameDisconnect     = "disconnect"
)

// wakuFrame is the wire envelope every channel message travels in. Topic
// scopes the frame to one provider/responder pair; CorrelID pairs responses
// with requests.
type wakuFrame struct {
	Topic      string           `json:"topic"`
	Type       string           `json:"type"`
	CorrelID   string           `json:"correlId,omitempty"`
	ChainScope string           `json:"chainScope,omitempty"`
	Request    *RequestEnvelope `json:"request,omitempty"`
	Session    *Session         `json:"session,omitempty"`
	Kind       string           `json:"kind,omitempty"`
	Payload    json.RawMessage  `json:"payload,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// WakuConfig configures the go-waku backed channel.
type WakuConfig struct {
	Port           int
	BootstrapPeers []string
	RequestTimeout time.Duration
}

// ValidateBootstrapPeers rejects config entries that are not multiaddrs
// before the node ever dials them.
func ValidateBootstrapPeers(peers []string) error {
	for _, peer := range peers {
		if _, err := ma.NewMultiaddr(peer); err != nil {
			return fmt.Errorf("bootstrap peer %q: %w", peer, err)
		}
	}
	return nil
}

// WakuChannel is a Channel carried over go-waku relay. Frames are JSON
// payloads on a fixed content topic, filtered by session topic on receive.
type WakuChannel struct {
	topic string
	cfg   WakuConfig

	mu       sync.Mutex
	state    string
	node     *wakuNode.WakuNode
	handlers Handlers
	pending  map[string]chan wakuFrame
	snapshot map[string]chan wakuFrame
	nextID   uint64
}

func NewWakuChannel(topic string, cfg WakuConfig) (*WakuChannel, error) {
	if err := ValidateBootstrapPeers(cfg.BootstrapPeers); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &WakuChannel{
		topic:    topic,
		cfg:      cfg,
		state:    StateDisconnected,
		pending:  make(map[string]chan wakuFrame),
		snapshot: make(map[string]chan wakuFrame),
	}, nil
}

func (c *WakuChannel) SetHandlers(h Handlers) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = h
}

func (c *WakuChannel) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *WakuChannel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.mu.Unlock()

	hostAddr, err := net.ResolveTCPAddr("tcp", net.JoinHostPort("0.0.0.0", strconv.Itoa(c.cfg.Port)))
	if err != nil {
		return c.failConnect(err)
	}
	node, err := wakuNode.New(
		wakuNode.WithHostAddress(hostAddr),
		wakuNode.WithWakuRelay(),
	)
	if err != nil {
		return c.failConnect(err)
	}
	if err := node.Start(ctx); err != nil {
		return c.failConnect(err)
	}
	for _, peer := range c.cfg.BootstrapPeers {
		_ = node.DialPeer(ctx, peer)
	}

	filter := protocol.NewContentFilter(wakuPubsubTopic, wakuContentTopic)
	subs, err := node.Relay().Subscribe(context.Background(), filter)
	if err != nil {
		node.Stop()
		return c.failConnect(err)
	}

	c.mu.Lock()
	c.node = node
	c.state = StateConnected
	onConnect := c.handlers.OnConnect
	c.mu.Unlock()

	for _, sub := range subs {
		go c.consume(sub)
	}
	if onConnect != nil {
		onConnect()
	}
	return nil
}

func (c *WakuChannel) failConnect(err error) error {
	c.mu.Lock()
	c.state = StateDisconnected
	c.mu.Unlock()
	return err
}

func (c *WakuChannel) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	node := c.node
	c.node = nil
	c.state = StateDisconnected
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	for id, ch := range c.snapshot {
		close(ch)
		delete(c.snapshot, id)
	}
	c.mu.Unlock()

	if node != nil {
		node.Stop()
	}
	return nil
}

func (c *WakuChannel) Snapshot(ctx context.Context) (Session, error) {
	frame, err := c.roundTrip(ctx, wakuFrame{Type: frameSnapshotAsk}, c.snapshot)
	if err != nil {
		return Session{}, err
	}
	if frame.Session == nil {
		return Session{}, errors.New("snapshot reply carried no session")
	}
	return *frame.Session, nil
}

func (c *WakuChannel) Request(ctx context.Context, env RequestEnvelope, chainScope string) (json.RawMessage, error) {
	frame, err := c.roundTrip(ctx, wakuFrame{
		Type:       frameRequest,
		ChainScope: chainScope,
		Request:    &env,
	}, c.pending)
	if err != nil {
		return nil, err
	}
	if frame.Error != "" {
		return nil, errors.New(frame.Error)
	}
	return frame.Payload, nil
}

func (c *WakuChannel) roundTrip(ctx context.Context, frame wakuFrame, inbox map[string]chan wakuFrame) (wakuFrame, error) {
	c.mu.Lock()
	if c.state != StateConnected || c.node == nil {
		c.mu.Unlock()
		return wakuFrame{}, ErrNotConnected
	}
	c.nextID++
	correlID := strconv.FormatUint(c.nextID, 10)
	reply := make(chan wakuFrame, 1)
	inbox[correlID] = reply
	node := c.node
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(inbox, correlID)
		c.mu.Unlock()
	}()

	frame.Topic = c.topic
	frame.CorrelID = correlID
	if err := publishFrame(ctx, node, frame); err != nil {
		return wakuFrame{}, err
	}

	timeout, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()
	select {
	case got, ok := <-reply:
		if !ok {
			return wakuFrame{}, ErrClosed
		}
		return got, nil
	case <-timeout.Done():
		return wakuFrame{}, timeout.Err()
	}
}

func publishFrame(ctx context.Context, node *wakuNode.WakuNode, frame wakuFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	ts := time.Now().UnixNano()
	wm := &wpb.WakuMessage{
		Payload:      payload,
		ContentTopic: wakuContentTopic,
		Timestamp:    &ts,
	}
	_, err = node.Relay().Publish(ctx, wm, relay.WithPubSubTopic(wakuPubsubTopic))
	return err
}

func (c *WakuChannel) consume(sub *relay.Subscription) {
	for env := range sub.Ch {
		if env == nil || env.Message() == nil {
			continue
		}
		var frame wakuFrame
		if err := json.Unmarshal(env.Message().Payload, &frame); err != nil {
			continue
		}
		if frame.Topic != c.topic {
			continue
		}
		c.dispatchFrame(frame)
	}
}

func (c *WakuChannel) dispatchFrame(frame wakuFrame) {
	c.mu.Lock()
	handlers := c.handlers
	var reply chan wakuFrame
	switch frame.Type {
	case frameResponse:
		reply = c.pending[frame.CorrelID]
	case frameSnapshotReply:
		reply = c.snapshot[frame.CorrelID]
	}
	c.mu.Unlock()

	if reply != nil {
		select {
		case reply <- frame:
		default:
		}
		return
	}

	switch frame.Type {
	case frameSessionCreated:
		if handlers.OnSessionCreated != nil && frame.Session != nil {
			handlers.OnSessionCreated(*frame.Session)
		}
	case frameSessionUpdated:
		if handlers.OnSessionUpdated != nil && frame.Session != nil {
			handlers.OnSessionUpdated(*frame.Session)
		}
	case frameNotification:
		if handlers.OnNotification != nil {
			handlers.OnNotification(Notification{Kind: frame.Kind, Payload: frame.Payload})
		}
	case frameDisconnect:
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		if handlers.OnDisconnect != nil {
			handlers.OnDisconnect()
		}
	}
}
