// Package config loads relcore's runtime configuration (buffer pool
// size, replacer K, data directory) from a YAML file. Page size is not
// configurable here: it is the compile-time constant storage.PageSize.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is relcore's top-level configuration.
type Config struct {
	Storage struct {
		DataDir string `mapstructure:"data_dir"`
	} `mapstructure:"storage"`
	BufferPool struct {
		PoolSize  int `mapstructure:"pool_size"`
		ReplacerK int `mapstructure:"replacer_k"`
	} `mapstructure:"buffer_pool"`
}

// Default returns a Config with the same defaults Load applies
// before reading a file, suitable for tests and the demo shell.
func Default() *Config {
	cfg := &Config{}
	cfg.Storage.DataDir = "./data"
	cfg.BufferPool.PoolSize = 64
	cfg.BufferPool.ReplacerK = 2
	return cfg
}

// Load reads and parses the YAML config file at path, applying
// defaults for any field it leaves unset.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("buffer_pool.pool_size", 64)
	v.SetDefault("buffer_pool.replacer_k", 2)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return &cfg, nil
}
