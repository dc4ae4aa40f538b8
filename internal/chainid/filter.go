package chainid

import "strings"

// Scope is the locally configured chain scoping a provider operates under.
// Group may be AnyGroup to accept accounts from every group of the chain.
type Scope struct {
	ChainRef int
	Group    int
}

// Wildcard reports whether the scope accepts any group.
func (s Scope) Wildcard() bool {
	return s.Group == AnyGroup
}

// Matches reports whether a decoded chain/group pair equals the scope.
// Account compatibility binds both fields; the wildcard relaxes only the
// group.
func (s Scope) Matches(id ChainID) bool {
	if id.ChainRef == InvalidRef || id.Group == InvalidRef {
		return false
	}
	if id.ChainRef != s.ChainRef {
		return false
	}
	return s.Wildcard() || id.Group == s.Group
}

// MatchesChain reports whether a granted chain falls inside the scope. A
// grant may move the chain ref (the wallet switching networks); only the
// group is bound, and the wildcard relaxes it.
func (s Scope) MatchesChain(id ChainID) bool {
	if id.ChainRef == InvalidRef || id.Group == InvalidRef {
		return false
	}
	return s.Wildcard() || id.Group == s.Group
}

// CompatibleChain reports whether a raw chain string belongs to this scope.
// Malformed strings and unparseable refs are incompatible, never an error.
func CompatibleChain(raw string, s Scope) bool {
	if !strings.HasPrefix(strings.TrimSpace(raw), Namespace) {
		return false
	}
	id, err := DecodeChain(raw)
	if err != nil {
		return false
	}
	return s.MatchesChain(id)
}

// CompatibleAccount reports whether a decoded account belongs to this scope.
func CompatibleAccount(a Account, s Scope) bool {
	return s.Matches(ChainID{ChainRef: a.ChainRef, Group: a.Group})
}
