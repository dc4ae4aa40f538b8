package provider

import (
	"context"
	"encoding/json"
	"time"

	"alph-link/go-provider/internal/channel"
)

// handlers builds the typed signal callbacks the channel delivers into.
// Every callback funnels through bridgeMu so state transitions happen one
// at a time regardless of which goroutine the channel calls from.
func (p *Provider) handlers() channel.Handlers {
	return channel.Handlers{
		OnConnect:        p.onConnect,
		OnSessionCreated: p.onSessionCreated,
		OnSessionUpdated: p.onSessionUpdated,
		OnNotification:   p.onNotification,
		OnDisconnect:     p.onDisconnect,
	}
}

// onConnect pulls the current session snapshot from the channel and feeds
// it through the reconciler once.
func (p *Provider) onConnect() {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	session, err := p.ch.Snapshot(ctx)
	if err != nil {
		p.logWarn("bridge_connect", "session snapshot failed", "error", err.Error())
		return
	}

	p.bridgeMu.Lock()
	defer p.bridgeMu.Unlock()
	p.reconcileChains(session.Chains, "connect")
	p.reconcileAccounts(session.Accounts, "connect")
}

func (p *Provider) onSessionCreated(session channel.Session) {
	p.bridgeMu.Lock()
	defer p.bridgeMu.Unlock()
	p.reconcileChains(session.Chains, "session-created")
	p.reconcileAccounts(session.Accounts, "session-created")
}

// onSessionUpdated feeds chain permissions only when the currently
// published chain is no longer granted; accounts always supersede the
// cache, matched chain or not.
func (p *Provider) onSessionUpdated(session channel.Session) {
	p.bridgeMu.Lock()
	defer p.bridgeMu.Unlock()
	if !p.currentChainStillGranted(session.Chains) {
		p.reconcileChains(session.Chains, "session-updated")
	}
	p.reconcileAccounts(session.Accounts, "session-updated")
}

// onNotification routes the two reconciling kinds into the reconciler and
// re-emits every other kind verbatim.
func (p *Provider) onNotification(n channel.Notification) {
	if !p.limiter.Allow(n.Kind, time.Now()) {
		p.metrics.NotificationsLimited.Inc()
		p.logWarn("bridge_notification", "notification dropped by rate limiter", "kind", n.Kind)
		return
	}

	switch n.Kind {
	case channel.KindAccountsChanged:
		raw, err := decodeStringList(n.Payload)
		if err != nil {
			p.logWarn("bridge_notification", "accountsChanged payload is not a string list", "error", err.Error())
			return
		}
		p.bridgeMu.Lock()
		defer p.bridgeMu.Unlock()
		p.reconcileAccounts(raw, "notification")
	case channel.KindChainChanged:
		raw, err := decodeStringList(n.Payload)
		if err != nil {
			p.logWarn("bridge_notification", "chainChanged payload is not a string list", "error", err.Error())
			return
		}
		p.bridgeMu.Lock()
		defer p.bridgeMu.Unlock()
		p.reconcileChains(raw, "notification")
	default:
		p.metrics.NotificationsPassedOn.Inc()
		p.emit(n.Kind, json.RawMessage(n.Payload))
	}
}

// onDisconnect is terminal: the event is re-emitted to the application and
// no further channel activity is expected.
func (p *Provider) onDisconnect() {
	p.emit(EventDisconnect, nil)
	p.logInfo("bridge_disconnect", "channel disconnected")
}

func decodeStringList(payload json.RawMessage) ([]string, error) {
	var raw []string
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
