package providerconfig

import (
	"os"
	"path/filepath"
	"testing"

	"alph-link/go-provider/internal/chainid"
)

func intPtr(v int) *int {
	return &v
}

func TestDefaultConfigIsWildcard(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Group != chainid.AnyGroup {
		t.Fatalf("expected wildcard group, got %d", cfg.Group)
	}
	if !cfg.Scope().Wildcard() {
		t.Fatal("expected wildcard scope")
	}
}

func TestMergeOverridesScoping(t *testing.T) {
	dst := DefaultConfig()
	src := fileConfig{
		Provider: fileProviderConfig{
			ChainRef:          intPtr(4),
			Group:             intPtr(2),
			Topic:             "session-topic",
			EventBacklog:      64,
			NotificationRPS:   2,
			NotificationBurst: 4,
		},
		Storage: fileStorageConfig{SnapshotPath: "/var/lib/alphlink/snapshot.enc"},
	}

	Merge(&dst, src)

	if dst.ChainRef != 4 {
		t.Fatalf("expected chainRef=4, got %d", dst.ChainRef)
	}
	if dst.Group != 2 {
		t.Fatalf("expected group=2, got %d", dst.Group)
	}
	if dst.Topic != "session-topic" {
		t.Fatalf("expected topic override, got %q", dst.Topic)
	}
	if dst.EventBacklog != 64 {
		t.Fatalf("expected eventBacklog=64, got %d", dst.EventBacklog)
	}
	if dst.SnapshotPath != "/var/lib/alphlink/snapshot.enc" {
		t.Fatalf("unexpected snapshot path %q", dst.SnapshotPath)
	}
}

func TestMergeKeepsExplicitWildcard(t *testing.T) {
	dst := DefaultConfig()
	dst.Group = 2
	Merge(&dst, fileConfig{Provider: fileProviderConfig{Group: intPtr(chainid.AnyGroup)}})
	if dst.Group != chainid.AnyGroup {
		t.Fatalf("explicit wildcard lost: got %d", dst.Group)
	}
}

func TestLoadFromPathWithEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	payload := []byte("provider:\n  chainRef: 4\n  group: 2\n  topic: file-topic\n")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ALPHLINK_GROUP", "-1")
	t.Setenv("ALPHLINK_SNAPSHOT_SECRET", "env-secret")

	cfg := LoadFromPath(path)

	if cfg.ChainRef != 4 {
		t.Fatalf("expected chainRef=4, got %d", cfg.ChainRef)
	}
	if cfg.Group != chainid.AnyGroup {
		t.Fatalf("expected env wildcard override, got %d", cfg.Group)
	}
	if cfg.Topic != "file-topic" {
		t.Fatalf("unexpected topic %q", cfg.Topic)
	}
	if cfg.SnapshotSecret != "env-secret" {
		t.Fatalf("unexpected snapshot secret %q", cfg.SnapshotSecret)
	}
}

func TestLoadFromPathMissingFileFallsBack(t *testing.T) {
	cfg := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if cfg.EventBacklog != DefaultConfig().EventBacklog {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}
