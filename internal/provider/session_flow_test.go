package provider

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"golang.org/x/crypto/blake2b"

	"alph-link/go-provider/internal/chainid"
	"alph-link/go-provider/internal/channel"
	"alph-link/go-provider/internal/walletmock"
	"alph-link/go-provider/pkg/models"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestSessionFlowOverRelay(t *testing.T) {
	relay := channel.NewRelay()
	wallet, err := walletmock.New(testMnemonic, 4, []int{0, 2})
	if err != nil {
		t.Fatalf("new wallet: %v", err)
	}
	const topic = "session-topic-1"
	relay.Bind(topic, wallet)

	p, err := New(Options{
		Scope:   chainid.Scope{ChainRef: 4, Group: chainid.AnyGroup},
		Channel: relay.Endpoint(topic),
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if err := p.Start(t.Context()); err != nil {
		t.Fatalf("start: %v", err)
	}

	accounts := p.GetAccounts()
	if len(accounts) != 2 {
		t.Fatalf("expected both wallet accounts, got %+v", accounts)
	}
	if events := eventsNamed(p, EventAccountsChanged); len(events) != 1 {
		t.Fatalf("expected one accountsChanged from connect, got %d", len(events))
	}

	// Sign through the relay and verify the wallet's ed25519 signature.
	signer := wallet.Accounts()[1]
	result, err := p.SignMessage(t.Context(), models.SignMessageParams{
		SignerAddress: signer.Address,
		Message:       "alph-link handshake",
	})
	if err != nil {
		t.Fatalf("sign message: %v", err)
	}
	sig, err := hex.DecodeString(result.Signature)
	if err != nil {
		t.Fatalf("signature is not hex: %v", err)
	}
	pub, err := hex.DecodeString(signer.PublicKey)
	if err != nil {
		t.Fatalf("public key is not hex: %v", err)
	}
	digest := blake2b.Sum256([]byte("alph-link handshake"))
	if !ed25519.Verify(ed25519.PublicKey(pub), digest[:], sig) {
		t.Fatal("wallet signature does not verify")
	}

	// Shrinking the wallet's account set and announcing it supersedes the
	// published accounts.
	wallet.SetAccounts(wallet.Accounts()[:1])
	relay.SessionUpdated(topic, wallet.CurrentSession(topic))
	if got := p.GetAccounts(); len(got) != 1 {
		t.Fatalf("session update not applied: %+v", got)
	}

	// Remote drop reaches the application as a terminal event.
	relay.Drop(topic)
	if events := eventsNamed(p, EventDisconnect); len(events) != 1 {
		t.Fatalf("expected one disconnect event, got %d", len(events))
	}
}

func TestSessionFlowScopedProviderFiltersForeignGroups(t *testing.T) {
	relay := channel.NewRelay()
	wallet, err := walletmock.New(testMnemonic, 4, []int{0, 2})
	if err != nil {
		t.Fatalf("new wallet: %v", err)
	}
	const topic = "session-topic-2"
	relay.Bind(topic, wallet)

	p, err := New(Options{
		Scope:   chainid.Scope{ChainRef: 4, Group: 2},
		Channel: relay.Endpoint(topic),
	})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if err := p.Start(t.Context()); err != nil {
		t.Fatalf("start: %v", err)
	}

	accounts := p.GetAccounts()
	if len(accounts) != 1 {
		t.Fatalf("expected only the group-2 account, got %+v", accounts)
	}
	if accounts[0].Group != 2 {
		t.Fatalf("unexpected group: %d", accounts[0].Group)
	}
}
