package walletmock

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"

	"alph-link/go-provider/internal/chainid"
	"alph-link/go-provider/internal/channel"
)

var (
	ErrOutOfScope    = errors.New("request chain scope is outside the wallet's grant")
	ErrUnknownMethod = errors.New("wallet does not serve this method")
	ErrNoSuchAccount = errors.New("wallet holds no such account")
)

// Wallet is the remote-signer side of the protocol: it mirrors the
// provider's codec and compatibility filter, holds accounts derived from a
// mnemonic, and answers signing requests with ed25519 signatures over the
// request digest.
type Wallet struct {
	chainRef int

	mu       sync.Mutex
	accounts []DerivedAccount
}

// New derives one account per listed group at index 0.
func New(mnemonic string, chainRef int, groups []int) (*Wallet, error) {
	w := &Wallet{chainRef: chainRef}
	for _, group := range groups {
		acct, err := DeriveAccount(mnemonic, chainRef, group, 0)
		if err != nil {
			return nil, err
		}
		w.accounts = append(w.accounts, acct)
	}
	return w, nil
}

// Accounts returns a copy of the wallet's current account set.
func (w *Wallet) Accounts() []DerivedAccount {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]DerivedAccount(nil), w.accounts...)
}

// SetAccounts replaces the wallet's account set, e.g. between session
// updates in a scenario.
func (w *Wallet) SetAccounts(accounts []DerivedAccount) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.accounts = append([]DerivedAccount(nil), accounts...)
}

// CurrentSession renders the wallet's grant as a raw session descriptor:
// one chain string per held group plus every account string, encoded the
// same way the provider decodes them.
func (w *Wallet) CurrentSession(topic string) channel.Session {
	w.mu.Lock()
	defer w.mu.Unlock()

	seenGroups := make(map[int]bool)
	chains := make([]string, 0, len(w.accounts))
	accounts := make([]string, 0, len(w.accounts))
	for _, acct := range w.accounts {
		if !seenGroups[acct.Group] {
			seenGroups[acct.Group] = true
			chains = append(chains, chainid.EncodeChain(acct.ChainRef, acct.Group))
		}
		accounts = append(accounts, chainid.EncodeAccount(chainid.Account{
			Address:   acct.Address,
			PublicKey: acct.PublicKey,
			Group:     acct.Group,
			ChainRef:  acct.ChainRef,
		}))
	}
	return channel.Session{Topic: topic, Chains: chains, Accounts: accounts}
}

// HandleRequest validates the scope tag against the wallet's own grant,
// resolves the signer and answers the method. The scope check mirrors the
// provider-side compatibility filter from the other direction.
func (w *Wallet) HandleRequest(ctx context.Context, env channel.RequestEnvelope, chainScope string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scope, err := chainid.DecodeChain(chainScope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutOfScope, err)
	}
	if scope.ChainRef != w.chainRef {
		return nil, fmt.Errorf("%w: chain ref %d", ErrOutOfScope, scope.ChainRef)
	}

	var params struct {
		SignerAddress string `json:"signerAddress"`
		UnsignedTx    string `json:"unsignedTx"`
		HexString     string `json:"hexString"`
		Message       string `json:"message"`
	}
	if err := json.Unmarshal(env.Params, &params); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}

	acct, ok := w.accountByAddress(params.SignerAddress)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchAccount, params.SignerAddress)
	}
	if acct.Group != scope.Group {
		return nil, fmt.Errorf("%w: account group %d, scope group %d", ErrOutOfScope, acct.Group, scope.Group)
	}

	switch env.Method {
	case "alph_signTransferTx", "alph_signContractCreationTx", "alph_signScriptTx",
		"alph_signUnsignedTx", "alph_signHexString":
		return w.signTx(acct, env)
	case "alph_signMessage":
		signature := signDigest(acct.PrivateKey, []byte(params.Message))
		return json.Marshal(map[string]string{"signature": signature})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, env.Method)
	}
}

// signTx fabricates a deterministic unsigned transaction from the request
// payload and signs its id. Real transaction construction happens against a
// chain node and is outside this responder's scope.
func (w *Wallet) signTx(acct DerivedAccount, env channel.RequestEnvelope) (json.RawMessage, error) {
	digest := blake2b.Sum256(append([]byte(env.Method+":"), env.Params...))
	unsignedTx := hex.EncodeToString(digest[:])
	txIDHash := blake2b.Sum256(digest[:])
	txID := hex.EncodeToString(txIDHash[:])
	signature := signDigest(acct.PrivateKey, txIDHash[:])
	return json.Marshal(map[string]string{
		"unsignedTx": unsignedTx,
		"txId":       txID,
		"signature":  signature,
	})
}

func (w *Wallet) accountByAddress(address string) (DerivedAccount, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, acct := range w.accounts {
		if acct.Address == address {
			return acct, true
		}
	}
	return DerivedAccount{}, false
}

func signDigest(priv ed25519.PrivateKey, payload []byte) string {
	digest := blake2b.Sum256(payload)
	return hex.EncodeToString(ed25519.Sign(priv, digest[:]))
}
