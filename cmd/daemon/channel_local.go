//go:build !real_waku

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"alph-link/go-provider/internal/bootstrap/providerconfig"
	"alph-link/go-provider/internal/chainid"
	"alph-link/go-provider/internal/channel"
	"alph-link/go-provider/internal/walletmock"
)

// newChannel wires an in-process relay. When ALPHLINK_WALLET_MNEMONIC is
// set, a loopback wallet responder is bound to the topic so the daemon
// answers its own session requests; useful for local development without a
// real remote signer.
func newChannel(cfg providerconfig.Config, logger *slog.Logger) (channel.Channel, error) {
	relay := channel.NewRelay()
	if mnemonic := strings.TrimSpace(os.Getenv("ALPHLINK_WALLET_MNEMONIC")); mnemonic != "" {
		groups := []int{cfg.Group}
		if cfg.Group == chainid.AnyGroup {
			groups = []int{0, 1, 2, 3}
		}
		wallet, err := walletmock.New(mnemonic, cfg.ChainRef, groups)
		if err != nil {
			return nil, fmt.Errorf("loopback wallet: %w", err)
		}
		relay.Bind(cfg.Topic, wallet)
		logger.Info("loopback wallet bound", "topic", cfg.Topic, "groups", groups)
	}
	return relay.Endpoint(cfg.Topic), nil
}
