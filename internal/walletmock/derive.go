package walletmock

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/mr-tron/base58/base58"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/hkdf"
)

const hkdfInfoAccount = "alph-link/wallet/account/v1"

// DerivedAccount is one wallet-held account: the ed25519 keypair plus its
// wire identity.
type DerivedAccount struct {
	Address    string
	PublicKey  string
	Group      int
	ChainRef   int
	PrivateKey ed25519.PrivateKey
}

// DeriveAccount deterministically derives the account at (chainRef, group,
// index) from a bip39 mnemonic. The address is the base58 of the
// blake2b-256 public key hash with the group appended, which keeps distinct
// groups at distinct addresses without any real chain semantics.
func DeriveAccount(mnemonic string, chainRef, group, index int) (DerivedAccount, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return DerivedAccount{}, fmt.Errorf("mnemonic is invalid")
	}
	seed := bip39.NewSeed(mnemonic, "")

	info := fmt.Sprintf("%s/%d/%d/%d", hkdfInfoAccount, chainRef, group, index)
	keySeed, err := hkdfExpand(seed, info, ed25519.SeedSize)
	if err != nil {
		return DerivedAccount{}, err
	}
	priv := ed25519.NewKeyFromSeed(keySeed)
	pub := priv.Public().(ed25519.PublicKey)

	hash := blake2b.Sum256(pub)
	addrBytes := append(hash[:], byte(group))

	return DerivedAccount{
		Address:    base58.Encode(addrBytes),
		PublicKey:  hex.EncodeToString(pub),
		Group:      group,
		ChainRef:   chainRef,
		PrivateKey: priv,
	}, nil
}

func hkdfExpand(seed []byte, info string, outLen int) ([]byte, error) {
	reader := hkdf.New(sha256.New, seed, nil, []byte(info))
	out := make([]byte, outLen)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}
