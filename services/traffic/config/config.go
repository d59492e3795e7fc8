package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// GitHubConfig defines how the source hosting API is reached
type GitHubConfig struct {
	BaseURL           string `toml:"BaseURL"`
	TimeoutInSeconds  uint32 `toml:"TimeoutInSeconds"`
	RepositoriesLimit int    `toml:"RepositoriesLimit"`
}

// CollectorConfig defines when and how repositories are collected
type CollectorConfig struct {
	Schedule              string `toml:"Schedule"`
	CollectOnStart        bool   `toml:"CollectOnStart"`
	NumWorkers            int    `toml:"NumWorkers"`
	BatchTimeoutInSeconds uint32 `toml:"BatchTimeoutInSeconds"`
}

// CacheConfig defines the query results cache
type CacheConfig struct {
	NumEntries   int    `toml:"NumEntries"`
	TTLInSeconds uint32 `toml:"TTLInSeconds"`
}

// QueryConfig defines the limits of the read path
type QueryConfig struct {
	MaxSeriesDays int `toml:"MaxSeriesDays"`
}

// Config maps to the config.toml file for the traffic service
type Config struct {
	ListenAddress string          `toml:"ListenAddress"`
	DatabasePath  string          `toml:"DatabasePath"`
	GitHub        GitHubConfig    `toml:"GitHub"`
	Collector     CollectorConfig `toml:"Collector"`
	Cache         CacheConfig     `toml:"Cache"`
	Query         QueryConfig     `toml:"Query"`
}

// LoadConfig parses a TOML file into the Config struct
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filepath, err)
	}

	var cfg Config
	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.GitHub.BaseURL == "" {
		cfg.GitHub.BaseURL = "https://api.github.com"
	}
	if cfg.GitHub.TimeoutInSeconds == 0 {
		cfg.GitHub.TimeoutInSeconds = 30
	}
	if cfg.GitHub.RepositoriesLimit == 0 {
		cfg.GitHub.RepositoriesLimit = 100
	}
	if cfg.Collector.Schedule == "" {
		cfg.Collector.Schedule = "0 0 * * *"
	}
	if cfg.Collector.NumWorkers <= 0 {
		cfg.Collector.NumWorkers = 1
	}
	if cfg.Collector.BatchTimeoutInSeconds == 0 {
		cfg.Collector.BatchTimeoutInSeconds = 300
	}
	if cfg.Cache.NumEntries <= 0 {
		cfg.Cache.NumEntries = 256
	}
	if cfg.Cache.TTLInSeconds == 0 {
		cfg.Cache.TTLInSeconds = 3600
	}
	if cfg.Query.MaxSeriesDays == 0 {
		cfg.Query.MaxSeriesDays = 3660
	}
}
