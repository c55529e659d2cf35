package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultConfigFile = "config.yaml"

type Config struct {
	Download DownloadConfig `mapstructure:"download" yaml:"download"`
	Client   ClientConfig   `mapstructure:"client" yaml:"client"`
	Serve    ServeConfig    `mapstructure:"serve" yaml:"serve"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
}

type DownloadConfig struct {
	ServerURL string `mapstructure:"server_url" yaml:"server_url"`
	Output    string `mapstructure:"output" yaml:"output"`
}

type ClientConfig struct {
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	BufferSize   int           `mapstructure:"buffer_size" yaml:"buffer_size"`
}

type ServeConfig struct {
	Addr      string `mapstructure:"addr" yaml:"addr"`
	File      string `mapstructure:"file" yaml:"file"`
	ChunkSize int    `mapstructure:"chunk_size" yaml:"chunk_size"`
	Jitter    bool   `mapstructure:"jitter" yaml:"jitter"`
	Seed      uint64 `mapstructure:"seed" yaml:"seed"`
}

type LogConfig struct {
	Path          string `mapstructure:"path" yaml:"path"`
	Level         string `mapstructure:"level" yaml:"level"`
	IncludeStdout bool   `mapstructure:"include_stdout" yaml:"include_stdout"`
}

type StoreConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Driver     string `mapstructure:"driver" yaml:"driver"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	DSN        string `mapstructure:"dsn" yaml:"dsn"`
}

// Load builds the configuration. Environment variables (RANGEFETCH_*)
// override the YAML file, which overrides defaults. An empty path uses
// config.yaml when present and defaults alone otherwise; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set Defaults
	v.SetDefault("download.server_url", "http://localhost:8080")
	v.SetDefault("download.output", "output.bin")
	v.SetDefault("client.write_timeout", 10*time.Second)
	v.SetDefault("client.read_timeout", 5*time.Second)
	v.SetDefault("client.dial_timeout", 10*time.Second)
	v.SetDefault("client.buffer_size", 4096)
	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("serve.file", "")
	v.SetDefault("serve.chunk_size", 0)
	v.SetDefault("serve.jitter", false)
	v.SetDefault("serve.seed", 0)
	v.SetDefault("log.path", "rangefetch.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.include_stdout", true)
	v.SetDefault("store.enabled", true)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "./data/rangefetch.db")
	v.SetDefault("store.dsn", "")

	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	} else if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read config File
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// Support Environment Variables
	v.SetEnvPrefix("RANGEFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Client.BufferSize <= 0 {
		// Default to a sane value
		c.Client.BufferSize = 4096
	}

	if c.Client.WriteTimeout <= 0 || c.Client.ReadTimeout <= 0 {
		return errors.New("client: read and write timeouts must be positive")
	}

	if c.Client.DialTimeout <= 0 {
		c.Client.DialTimeout = c.Client.WriteTimeout
	}

	if c.Serve.ChunkSize < 0 {
		return fmt.Errorf("serve: chunk_size must not be negative, got %d", c.Serve.ChunkSize)
	}

	if c.Store.Enabled {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.SQLitePath == "" {
				return errors.New("store: sqlite_path is required for the sqlite driver")
			}
		case "postgres":
			if c.Store.DSN == "" {
				return errors.New("store: dsn is required for the postgres driver")
			}
		default:
			return fmt.Errorf("store: unknown driver %q", c.Store.Driver)
		}
	}

	if c.Download.Output == "" {
		c.Download.Output = "output.bin"
	}

	return nil
}
