package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"alph-link/go-provider/internal/bootstrap/providerconfig"
	"alph-link/go-provider/internal/channel"
	"alph-link/go-provider/internal/provider"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "Path to config.yaml (optional)")
	topic := flag.String("topic", "", "Session topic override")
	flag.Parse()
	if *showVersion {
		fmt.Printf("alph-link-daemon version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if *topic != "" {
		_ = os.Setenv("ALPHLINK_TOPIC", *topic)
	}

	cfg := providerconfig.LoadFromPath(*configPath)
	if cfg.Topic == "" {
		log.Fatal("alph-link-daemon requires a session topic (config provider.topic or ALPHLINK_TOPIC)")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	snapshots := provider.NewSnapshotStore()
	snapshots.Configure(cfg.SnapshotPath, cfg.SnapshotSecret)

	ch, err := newChannel(cfg, logger)
	if err != nil {
		log.Fatalf("alph-link-daemon channel setup failed: %v", err)
	}

	p, err := provider.New(provider.Options{
		Scope:               cfg.Scope(),
		Channel:             ch,
		Logger:              logger,
		Metrics:             provider.NewMetrics(prometheus.DefaultRegisterer),
		EventBacklog:        cfg.EventBacklog,
		NotificationLimiter: channel.NewKindLimiter(cfg.NotificationRPS, cfg.NotificationBurst, cfg.NotificationTTL),
		Snapshots:           snapshots,
	})
	if err != nil {
		log.Fatalf("alph-link-daemon failed to initialize: %v", err)
	}

	if err := p.Start(ctx); err != nil {
		log.Fatalf("alph-link-daemon failed to connect: %v", err)
	}
	logger.Info("alph-link-daemon started", "topic", cfg.Topic, "chain_ref", cfg.ChainRef, "group", cfg.Group)

	replay, events, cancel := p.Events(0)
	defer cancel()
	for _, event := range replay {
		logger.Info("provider event", "event", event.Name, "seq", event.Seq)
	}

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := p.Stop(shutdownCtx)
			shutdownCancel()
			if err != nil {
				log.Fatalf("alph-link-daemon failed to stop cleanly: %v", err)
			}
			logger.Info("alph-link-daemon stopped")
			return
		case event, ok := <-events:
			if !ok {
				logger.Warn("event subscription closed")
				return
			}
			logger.Info("provider event", "event", event.Name, "seq", event.Seq)
			if event.Name == provider.EventDisconnect {
				logger.Info("session ended by remote")
				return
			}
		}
	}
}
