package provider

import (
	"encoding/json"
	"errors"
	"io/fs"

	"alph-link/go-provider/internal/chainid"
	"alph-link/go-provider/internal/securestore"
)

// SnapshotStore persists the published provider state so a restarting
// process can republish it before the channel reconnects. Unconfigured
// storage is a silent no-op.
type SnapshotStore struct {
	path   string
	secret string
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

func (s *SnapshotStore) Configure(path, secret string) {
	s.path, s.secret = securestore.NormalizeStorageConfig(path, secret)
}

type persistedSnapshot struct {
	Version  int               `json:"version"`
	ChainRef int               `json:"chain_ref"`
	Group    int               `json:"group"`
	Accounts []snapshotAccount `json:"accounts"`
}

type snapshotAccount struct {
	Address   string `json:"address"`
	PublicKey string `json:"public_key"`
	Group     int    `json:"group"`
	ChainRef  int    `json:"chain_ref"`
}

// Bootstrap loads the last persisted state; ok is false when storage is
// unconfigured or nothing was persisted yet.
func (s *SnapshotStore) Bootstrap() (chainid.ChainID, []chainid.Account, bool, error) {
	if !securestore.IsStorageConfigured(s.path, s.secret) {
		return chainid.ChainID{}, nil, false, nil
	}
	plaintext, err := securestore.ReadDecryptedFile(s.path, s.secret)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return chainid.ChainID{}, nil, false, nil
		}
		return chainid.ChainID{}, nil, false, err
	}

	var snap persistedSnapshot
	if err := json.Unmarshal(plaintext, &snap); err != nil {
		return chainid.ChainID{}, nil, false, err
	}
	if snap.Version != 1 {
		return chainid.ChainID{}, nil, false, errors.New("provider snapshot payload is invalid")
	}

	accounts := make([]chainid.Account, 0, len(snap.Accounts))
	for _, acct := range snap.Accounts {
		accounts = append(accounts, chainid.Account{
			Address:   acct.Address,
			PublicKey: acct.PublicKey,
			Group:     acct.Group,
			ChainRef:  acct.ChainRef,
		})
	}
	return chainid.ChainID{ChainRef: snap.ChainRef, Group: snap.Group}, accounts, true, nil
}

func (s *SnapshotStore) Persist(id chainid.ChainID, accounts []chainid.Account) error {
	if !securestore.IsStorageConfigured(s.path, s.secret) {
		return nil
	}
	snap := persistedSnapshot{
		Version:  1,
		ChainRef: id.ChainRef,
		Group:    id.Group,
		Accounts: make([]snapshotAccount, 0, len(accounts)),
	}
	for _, acct := range accounts {
		snap.Accounts = append(snap.Accounts, snapshotAccount{
			Address:   acct.Address,
			PublicKey: acct.PublicKey,
			Group:     acct.Group,
			ChainRef:  acct.ChainRef,
		})
	}
	return securestore.WriteEncryptedJSON(s.path, s.secret, snap)
}

// bootstrapFromSnapshot seeds published state from persisted data before
// the channel delivers anything. The raw dedup caches stay empty: the next
// wire payload must still be compared against live state, not a snapshot.
func (p *Provider) bootstrapFromSnapshot() {
	if p.snapshots == nil {
		return
	}
	id, accounts, ok, err := p.snapshots.Bootstrap()
	if err != nil {
		p.logWarn("snapshot_bootstrap", "snapshot load failed", "error", err.Error())
		return
	}
	if !ok {
		return
	}
	if !p.scope.MatchesChain(id) {
		p.logWarn("snapshot_bootstrap", "persisted snapshot is out of scope",
			"chain_ref", id.ChainRef,
			"group", id.Group,
		)
		return
	}
	p.stateMu.Lock()
	p.state.chainRef = id.ChainRef
	p.state.group = id.Group
	p.state.accounts = accounts
	p.stateMu.Unlock()
	p.logInfo("snapshot_bootstrap", "published state restored from snapshot",
		"count", len(accounts),
	)
}

func (p *Provider) persistSnapshot() {
	if p.snapshots == nil {
		return
	}
	p.stateMu.RLock()
	id := chainid.ChainID{ChainRef: p.state.chainRef, Group: p.state.group}
	accounts := append([]chainid.Account(nil), p.state.accounts...)
	p.stateMu.RUnlock()
	if err := p.snapshots.Persist(id, accounts); err != nil {
		p.logWarn("snapshot_persist", "snapshot write failed", "error", err.Error())
	}
}
