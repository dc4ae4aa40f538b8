package provider

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"alph-link/go-provider/internal/chainid"
	"alph-link/go-provider/internal/channel"
	"alph-link/go-provider/pkg/models"
)

const snapshotTimeout = 10 * time.Second

// Options configures a Provider.
type Options struct {
	// Scope is the chain/group the provider serves. Group may be
	// chainid.AnyGroup.
	Scope chainid.Scope
	// Channel is the transport to the remote signer.
	Channel channel.Channel
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Metrics defaults to an unregistered set.
	Metrics *Metrics
	// EventBacklog bounds the event hub replay history.
	EventBacklog int
	// NotificationLimiter optionally throttles inbound notifications per
	// kind; nil allows everything.
	NotificationLimiter *channel.KindLimiter
	// Snapshots optionally persists published state across restarts.
	Snapshots *SnapshotStore
}

// state is the provider's mutable aggregate. The bridge (via the
// reconciler) is its only writer; the dispatcher reads it under RLock.
// lastRawAccounts/lastRawChains cache the most recent wire payloads as the
// dedup key; they are not observable state.
type state struct {
	chainRef        int
	group           int
	accounts        []chainid.Account
	lastRawAccounts []string
	lastRawChains   []string
}

// Provider brokers signing requests between an application and a remote
// key-holding agent over an asynchronous channel, reconciling the session's
// chain/account state as it changes.
type Provider struct {
	scope     chainid.Scope
	ch        channel.Channel
	logger    *slog.Logger
	metrics   *Metrics
	hub       *EventHub
	limiter   *channel.KindLimiter
	snapshots *SnapshotStore

	// bridgeMu serializes every state transition: channel callbacks may
	// arrive from arbitrary goroutines but reconcile one at a time.
	bridgeMu sync.Mutex

	stateMu sync.RWMutex
	state   state
}

func New(opts Options) (*Provider, error) {
	if opts.Channel == nil {
		return nil, errors.New("provider requires a channel")
	}
	if opts.Scope.ChainRef < 0 {
		return nil, errors.New("provider scope chain ref must be non-negative")
	}
	if opts.Scope.Group < 0 && opts.Scope.Group != chainid.AnyGroup {
		return nil, errors.New("provider scope group must be non-negative or the wildcard")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics(prometheus.NewRegistry())
	}
	backlog := opts.EventBacklog
	if backlog <= 0 {
		backlog = 256
	}

	p := &Provider{
		scope:     opts.Scope,
		ch:        opts.Channel,
		logger:    logger,
		metrics:   metrics,
		hub:       NewEventHub(backlog),
		limiter:   opts.NotificationLimiter,
		snapshots: opts.Snapshots,
	}
	p.state = state{
		chainRef: opts.Scope.ChainRef,
		group:    opts.Scope.Group,
		accounts: nil,
	}
	p.bootstrapFromSnapshot()
	p.ch.SetHandlers(p.handlers())
	return p, nil
}

// Start connects the channel; the connect signal pulls the initial
// session snapshot through the reconciler.
func (p *Provider) Start(ctx context.Context) error {
	return p.ch.Connect(ctx)
}

// Stop disconnects the channel without emitting a disconnect event; the
// shutdown was locally requested, not remotely observed.
func (p *Provider) Stop(ctx context.Context) error {
	return p.ch.Disconnect(ctx)
}

// Events subscribes to application events from fromSeq (0 for everything
// still in the backlog).
func (p *Provider) Events(fromSeq int64) ([]Event, <-chan Event, func()) {
	return p.hub.Subscribe(fromSeq)
}

// ChainID returns the currently published chain scoping.
func (p *Provider) ChainID() chainid.ChainID {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return chainid.ChainID{ChainRef: p.state.chainRef, Group: p.state.group}
}

// GetAccounts answers from published state only; it never touches the
// channel.
func (p *Provider) GetAccounts() []models.Account {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return toModelAccounts(p.state.accounts)
}

func (p *Provider) accountByAddress(address string) (chainid.Account, bool) {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	for _, acct := range p.state.accounts {
		if acct.Address == address {
			return acct, true
		}
	}
	return chainid.Account{}, false
}

func (p *Provider) publishedChainRef() int {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.state.chainRef
}

func toModelAccounts(accounts []chainid.Account) []models.Account {
	out := make([]models.Account, 0, len(accounts))
	for _, acct := range accounts {
		out = append(out, models.Account{
			Address:   acct.Address,
			PublicKey: acct.PublicKey,
			Group:     acct.Group,
		})
	}
	return out
}
