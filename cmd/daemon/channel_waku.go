//go:build real_waku

package main

import (
	"log/slog"
	"time"

	"alph-link/go-provider/internal/bootstrap/providerconfig"
	"alph-link/go-provider/internal/channel"
)

func newChannel(cfg providerconfig.Config, logger *slog.Logger) (channel.Channel, error) {
	logger.Info("waku channel enabled", "port", cfg.RelayPort, "bootstrap_peers", len(cfg.BootstrapPeers))
	return channel.NewWakuChannel(cfg.Topic, channel.WakuConfig{
		Port:           cfg.RelayPort,
		BootstrapPeers: cfg.BootstrapPeers,
		RequestTimeout: 30 * time.Second,
	})
}
