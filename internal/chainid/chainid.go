package chainid

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Namespace is the fixed identifier namespace this provider serves.
const Namespace = "alephium"

// AnyGroup is the wildcard group sentinel: accounts from every group of the
// configured chain are in scope.
const AnyGroup = -1

// InvalidRef marks a numeric field that was present on the wire but did not
// parse. It never equals a configured ref and never equals AnyGroup, so
// compatibility checks reject it without a special case.
const InvalidRef = math.MinInt32

const sep = ":"

var ErrMalformedIdentifier = errors.New("malformed identifier")

// ChainID identifies a chain partition: a chain reference plus a group within
// it. Values are compared by value and never mutated after decode.
type ChainID struct {
	ChainRef int
	Group    int
}

// Account is one decoded account entry. Address and PublicKey are opaque
// strings owned by the wallet side; the provider never interprets them.
type Account struct {
	Address   string `json:"address"`
	PublicKey string `json:"publicKey"`
	Group     int    `json:"group"`
	ChainRef  int    `json:"-"`
}

// EncodeChain renders the canonical chain string, e.g. "alephium:4:2".
func EncodeChain(chainRef, group int) string {
	return Namespace + sep + strconv.Itoa(chainRef) + sep + strconv.Itoa(group)
}

// DecodeChain parses a chain string. Legacy payloads separated chainRef and
// group with "-" instead of ":"; both forms decode to the same value.
// Numeric fields that do not parse come back as InvalidRef rather than an
// error so a batch of mixed entries can still be filtered entry by entry.
func DecodeChain(s string) (ChainID, error) {
	normalized := normalizeChainSeparators(s)
	if !strings.HasPrefix(normalized, Namespace+sep) {
		return ChainID{}, fmt.Errorf("%w: chain %q lacks %q namespace", ErrMalformedIdentifier, s, Namespace)
	}
	fields := strings.Split(normalized, sep)
	if len(fields) < 3 {
		return ChainID{}, fmt.Errorf("%w: chain %q has %d fields, want 3", ErrMalformedIdentifier, s, len(fields))
	}
	return ChainID{
		ChainRef: parseRef(fields[1]),
		Group:    parseGroup(fields[2]),
	}, nil
}

// EncodeAccount renders the canonical five-field account string,
// e.g. "alephium:4:2:addr:pubkey".
func EncodeAccount(a Account) string {
	return strings.Join([]string{
		Namespace,
		strconv.Itoa(a.ChainRef),
		strconv.Itoa(a.Group),
		a.Address,
		a.PublicKey,
	}, sep)
}

// DecodeAccount parses an account string. The canonical form carries five
// fields with the chain ref embedded; the legacy four-field form
// ("alephium:<group>:<address>:<publicKey>") omits it, in which case
// fallbackChainRef fills the gap. Legacy payloads also used "-" or "+" in
// place of ":"; both are normalized before splitting.
func DecodeAccount(s string, fallbackChainRef int) (Account, error) {
	normalized := normalizeAccountSeparators(s)
	if !strings.HasPrefix(normalized, Namespace+sep) {
		return Account{}, fmt.Errorf("%w: account %q lacks %q namespace", ErrMalformedIdentifier, s, Namespace)
	}
	fields := strings.Split(normalized, sep)

	var acct Account
	switch len(fields) {
	case 5:
		acct = Account{
			ChainRef:  parseRef(fields[1]),
			Group:     parseGroup(fields[2]),
			Address:   fields[3],
			PublicKey: fields[4],
		}
	case 4:
		acct = Account{
			ChainRef:  fallbackChainRef,
			Group:     parseGroup(fields[1]),
			Address:   fields[2],
			PublicKey: fields[3],
		}
	default:
		return Account{}, fmt.Errorf("%w: account %q has %d fields, want 4 or 5", ErrMalformedIdentifier, s, len(fields))
	}

	if acct.Address == "" || acct.PublicKey == "" {
		return Account{}, fmt.Errorf("%w: account %q has empty address or public key", ErrMalformedIdentifier, s)
	}
	return acct, nil
}

func parseRef(field string) int {
	n, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil || n < 0 {
		return InvalidRef
	}
	return n
}

// parseGroup admits the AnyGroup wildcard alongside concrete groups.
func parseGroup(field string) int {
	n, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil || (n < 0 && n != AnyGroup) {
		return InvalidRef
	}
	return n
}

func normalizeChainSeparators(s string) string {
	return normalizeDashes(strings.TrimSpace(s))
}

func normalizeAccountSeparators(s string) string {
	return normalizeDashes(strings.ReplaceAll(strings.TrimSpace(s), "+", sep))
}

// normalizeDashes maps the legacy "-" separator to ":". A "-" directly after
// another separator is a sign, not a separator, so the wildcard group "-1"
// survives normalization in both forms ("alephium:4:-1", "alephium-4--1").
func normalizeDashes(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] != '-' {
			continue
		}
		if i > 0 && b[i-1] == ':' {
			continue
		}
		b[i] = ':'
	}
	return string(b)
}
