package providerconfig

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"alph-link/go-provider/internal/chainid"
)

// Config is the daemon's effective configuration.
type Config struct {
	ChainRef          int
	Group             int
	Topic             string
	EventBacklog      int
	NotificationRPS   float64
	NotificationBurst int
	NotificationTTL   time.Duration
	SnapshotPath      string
	SnapshotSecret    string
	BootstrapPeers    []string
	RelayPort         int
}

func DefaultConfig() Config {
	return Config{
		ChainRef:          0,
		Group:             chainid.AnyGroup,
		EventBacklog:      256,
		NotificationRPS:   5,
		NotificationBurst: 10,
		NotificationTTL:   10 * time.Minute,
	}
}

// Scope renders the configured chain scoping.
func (c Config) Scope() chainid.Scope {
	return chainid.Scope{ChainRef: c.ChainRef, Group: c.Group}
}

type fileConfig struct {
	Provider fileProviderConfig `yaml:"provider"`
	Relay    fileRelayConfig    `yaml:"relay"`
	Storage  fileStorageConfig  `yaml:"storage"`
}

type fileProviderConfig struct {
	ChainRef          *int          `yaml:"chainRef"`
	Group             *int          `yaml:"group"`
	Topic             string        `yaml:"topic"`
	EventBacklog      int           `yaml:"eventBacklog"`
	NotificationRPS   float64       `yaml:"notificationRps"`
	NotificationBurst int           `yaml:"notificationBurst"`
	NotificationTTL   time.Duration `yaml:"notificationIdleTtl"`
}

type fileRelayConfig struct {
	Port           int      `yaml:"port"`
	BootstrapPeers []string `yaml:"bootstrapPeers"`
}

type fileStorageConfig struct {
	SnapshotPath string `yaml:"snapshotPath"`
}

// LoadFromPath reads the first readable candidate config file, merges it
// over the defaults and applies env overrides. A missing file is not an
// error; defaults plus env are a valid configuration.
func LoadFromPath(configPath string) Config {
	cfg := DefaultConfig()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates,
			"go-provider/configs/config.yaml",
			"configs/config.yaml",
		)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var parsed fileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}

		merged := cfg
		Merge(&merged, parsed)
		ApplyEnvOverrides(&merged)
		return merged
	}

	ApplyEnvOverrides(&cfg)
	return cfg
}

func Merge(dst *Config, src fileConfig) {
	if src.Provider.ChainRef != nil {
		dst.ChainRef = *src.Provider.ChainRef
	}
	if src.Provider.Group != nil {
		dst.Group = *src.Provider.Group
	}
	if src.Provider.Topic != "" {
		dst.Topic = src.Provider.Topic
	}
	if src.Provider.EventBacklog != 0 {
		dst.EventBacklog = src.Provider.EventBacklog
	}
	if src.Provider.NotificationRPS != 0 {
		dst.NotificationRPS = src.Provider.NotificationRPS
	}
	if src.Provider.NotificationBurst != 0 {
		dst.NotificationBurst = src.Provider.NotificationBurst
	}
	if src.Provider.NotificationTTL != 0 {
		dst.NotificationTTL = src.Provider.NotificationTTL
	}
	if src.Relay.Port != 0 {
		dst.RelayPort = src.Relay.Port
	}
	if src.Relay.BootstrapPeers != nil {
		dst.BootstrapPeers = src.Relay.BootstrapPeers
	}
	if src.Storage.SnapshotPath != "" {
		dst.SnapshotPath = src.Storage.SnapshotPath
	}
}

// ApplyEnvOverrides layers ALPHLINK_* variables over the config. The
// snapshot secret is env-only, never a file value.
func ApplyEnvOverrides(cfg *Config) {
	if raw := strings.TrimSpace(os.Getenv("ALPHLINK_CHAIN_REF")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cfg.ChainRef = v
		}
	}
	if raw := strings.TrimSpace(os.Getenv("ALPHLINK_GROUP")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cfg.Group = v
		}
	}
	if topic := strings.TrimSpace(os.Getenv("ALPHLINK_TOPIC")); topic != "" {
		cfg.Topic = topic
	}
	if path := strings.TrimSpace(os.Getenv("ALPHLINK_SNAPSHOT_PATH")); path != "" {
		cfg.SnapshotPath = path
	}
	if secret := strings.TrimSpace(os.Getenv("ALPHLINK_SNAPSHOT_SECRET")); secret != "" {
		cfg.SnapshotSecret = secret
	}
}
