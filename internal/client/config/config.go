package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the profilekeeper client.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	DatabasePath        string
	// KeyPath is the device key used to seal passwords for silent reauth.
	// Empty means "device.key" next to the database.
	KeyPath           string
	EmbeddingURL      string
	FrameDir          string
	AllowSilentReauth bool
	MatchThreshold    float64
	LivenessDuration  time.Duration
	LogLevel          string
}

func (c *Config) LoadDefaults() {
	*c = Config{
		ServerEndpointAddr:  "127.0.0.1:50051",
		OnlineCheckInterval: 3 * time.Second,
		DatabasePath:        filepath.Join("data", "profilekeeper.db"),
		EmbeddingURL:        "http://127.0.0.1:8000",
		FrameDir:            "frames",
		MatchThreshold:      0.7,
		LivenessDuration:    2 * time.Second,
		LogLevel:            "info",
	}
}

// DeviceKeyPath returns KeyPath or its default.
func (c *Config) DeviceKeyPath() string {
	if c.KeyPath != "" {
		return c.KeyPath
	}
	return filepath.Join(filepath.Dir(c.DatabasePath), "device.key")
}

// Validate reports settings the client cannot run with. Unit-length
// descriptors are at most 2 apart, which bounds the threshold.
func (c *Config) Validate() error {
	var errs []error
	if c.ServerEndpointAddr == "" {
		errs = append(errs, errors.New("server address is empty"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	if c.OnlineCheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("online check interval %s must be positive", c.OnlineCheckInterval))
	}
	if c.MatchThreshold <= 0 || c.MatchThreshold > 2 {
		errs = append(errs, fmt.Errorf("match threshold %v is outside (0, 2]", c.MatchThreshold))
	}
	if c.LivenessDuration < 0 {
		errs = append(errs, fmt.Errorf("liveness duration %s is negative", c.LivenessDuration))
	}
	return errors.Join(errs...)
}

// LoadConfig layers defaults, the JSON file and flags, later sources winning.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
