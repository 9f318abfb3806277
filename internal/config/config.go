package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

type Config struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
	Storage     string `mapstructure:"storage"`
	MongoURI    string `mapstructure:"mongo_uri"`
	MongoDB     string `mapstructure:"mongo_db"`

	// DisconnectGrace is how long a dropped connection may reconnect before
	// being purged from its rooms.
	DisconnectGrace time.Duration `mapstructure:"disconnect_grace"`

	// CleanupInterval is the period of the empty-room eviction sweep.
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("storage", StorageMemory)
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_db", "sprintjam")
	v.SetDefault("disconnect_grace", "3s")
	v.SetDefault("cleanup_interval", "10m")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Storage != StorageMemory && cfg.Storage != StorageMongo {
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}

	return &cfg, nil
}
