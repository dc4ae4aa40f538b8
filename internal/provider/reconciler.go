package provider

import (
	"alph-link/go-provider/internal/chainid"
)

// reconcileAccounts merges a raw account-string payload into published
// state. Two-tier dedup: a payload identical to the last one seen on the
// wire is a no-op, and a new payload whose filtered result matches what is
// already published is also a no-op. trigger is diagnostics-only.
//
// Callers hold bridgeMu; the reconciler is the state's single writer.
func (p *Provider) reconcileAccounts(raw []string, trigger string) {
	p.metrics.ReconcileRuns.WithLabelValues("accounts", trigger).Inc()

	p.stateMu.RLock()
	sameRaw := stringsEqual(raw, p.state.lastRawAccounts)
	p.stateMu.RUnlock()
	if sameRaw {
		return
	}

	filtered := p.decodeAndFilterAccounts(raw, trigger)

	p.stateMu.Lock()
	p.state.lastRawAccounts = append([]string(nil), raw...)
	if accountsEqual(filtered, p.state.accounts) {
		p.stateMu.Unlock()
		return
	}
	p.state.accounts = filtered
	p.stateMu.Unlock()

	p.persistSnapshot()
	p.emit(EventAccountsChanged, toModelAccounts(filtered))
	p.logInfo("reconcile_accounts", "published accounts changed",
		"trigger", trigger,
		"count", len(filtered),
	)
}

// reconcileChains merges a raw chain-string payload. The first entry
// compatible with the configured scope wins; incoming order is preserved
// from the source and is significant.
func (p *Provider) reconcileChains(raw []string, trigger string) {
	p.metrics.ReconcileRuns.WithLabelValues("chains", trigger).Inc()

	p.stateMu.RLock()
	sameRaw := stringsEqual(raw, p.state.lastRawChains)
	p.stateMu.RUnlock()
	if sameRaw {
		return
	}

	match, found := p.firstCompatibleChain(raw)

	p.stateMu.Lock()
	p.state.lastRawChains = append([]string(nil), raw...)
	if !found || (match.ChainRef == p.state.chainRef && match.Group == p.state.group) {
		p.stateMu.Unlock()
		return
	}
	p.state.chainRef = match.ChainRef
	p.state.group = match.Group
	p.stateMu.Unlock()

	p.persistSnapshot()
	p.emit(EventChainChanged, p.chainChangedPayload(match))
	p.logInfo("reconcile_chains", "published chain changed",
		"trigger", trigger,
		"chain_ref", match.ChainRef,
		"group", match.Group,
	)
}

// decodeAndFilterAccounts decodes every raw entry, dropping malformed ones
// individually so one bad entry cannot abort the batch, then keeps the
// entries compatible with the configured scope.
func (p *Provider) decodeAndFilterAccounts(raw []string, trigger string) []chainid.Account {
	filtered := make([]chainid.Account, 0, len(raw))
	for _, entry := range raw {
		acct, err := chainid.DecodeAccount(entry, p.scope.ChainRef)
		if err != nil {
			p.metrics.MalformedDropped.Inc()
			p.logDebug("reconcile_accounts", "dropped malformed account entry",
				"trigger", trigger,
				"error", err.Error(),
			)
			continue
		}
		if !chainid.CompatibleAccount(acct, p.scope) {
			continue
		}
		filtered = append(filtered, acct)
	}
	return filtered
}

func (p *Provider) firstCompatibleChain(raw []string) (chainid.ChainID, bool) {
	for _, entry := range raw {
		id, err := chainid.DecodeChain(entry)
		if err != nil {
			p.metrics.MalformedDropped.Inc()
			continue
		}
		if !p.scope.MatchesChain(id) {
			continue
		}
		return id, true
	}
	return chainid.ChainID{}, false
}

// chainChangedPayload is a bare chain ref when a concrete group is
// configured; under the wildcard the effective group is part of the
// observable change, so the payload carries both.
func (p *Provider) chainChangedPayload(id chainid.ChainID) any {
	if p.scope.Wildcard() {
		return [2]int{id.ChainRef, id.Group}
	}
	return id.ChainRef
}

func (p *Provider) emit(name string, payload any) {
	p.metrics.EventsEmitted.WithLabelValues(name).Inc()
	p.hub.Publish(name, payload)
}

// currentChainStillGranted reports whether any entry of a raw chain list
// decodes to the currently published chain.
func (p *Provider) currentChainStillGranted(raw []string) bool {
	current := p.ChainID()
	for _, entry := range raw {
		id, err := chainid.DecodeChain(entry)
		if err != nil {
			continue
		}
		if id == current {
			return true
		}
	}
	return false
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func accountsEqual(a, b []chainid.Account) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
