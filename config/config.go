package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Fleet      FleetConfig      `yaml:"fleet"`
	Store      StoreConfig      `yaml:"store"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the notice worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port              int     `yaml:"port"`
	RequestUserHeader string  `yaml:"request_user_header"`
	RateLimitPerSec   float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst    int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds   int     `yaml:"cache_ttl_seconds"`
}

// FleetConfig describes the physical slot fleet and its timing constants.
type FleetConfig struct {
	Size                       int           `yaml:"size"`
	ReservationWindowSeconds   int           `yaml:"reservation_window_seconds"`
	ReservationWindow          time.Duration `yaml:"-"` // Ignored by YAML parser
	GateDwellSeconds           int           `yaml:"gate_dwell_seconds"`
	GateDwell                  time.Duration `yaml:"-"`
	RequirePaymentConfirmation bool          `yaml:"require_payment_confirmation"`
}

// StoreConfig holds the connection settings for the shared real-time store.
type StoreConfig struct {
	DSN                    string        `yaml:"dsn"`
	PollIntervalSeconds    int           `yaml:"poll_interval_seconds"`
	PollInterval           time.Duration `yaml:"-"`
	MaxOpenConns           int           `yaml:"max_open_conns"`
	MaxIdleConns           int           `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int           `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Fleet.Size <= 0 {
		cfg.Fleet.Size = 6
	}
	if cfg.Fleet.ReservationWindowSeconds <= 0 {
		cfg.Fleet.ReservationWindowSeconds = 600
	}
	cfg.Fleet.ReservationWindow = time.Duration(cfg.Fleet.ReservationWindowSeconds) * time.Second

	if cfg.Fleet.GateDwellSeconds <= 0 {
		cfg.Fleet.GateDwellSeconds = 10
	}
	cfg.Fleet.GateDwell = time.Duration(cfg.Fleet.GateDwellSeconds) * time.Second

	if cfg.Store.PollIntervalSeconds <= 0 {
		cfg.Store.PollIntervalSeconds = 1
	}
	cfg.Store.PollInterval = time.Duration(cfg.Store.PollIntervalSeconds) * time.Second

	if cfg.Server.RequestUserHeader == "" {
		cfg.Server.RequestUserHeader = "X-User-ID"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
