package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c := Config{KeyPath: "stale.key", AllowSilentReauth: true}
	c.LoadDefaults()

	assert.Empty(t, c.KeyPath)
	assert.False(t, c.AllowSilentReauth)
	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, filepath.Join("data", "profilekeeper.db"), c.DatabasePath)
	assert.Equal(t, 0.7, c.MatchThreshold)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_LayersSources(t *testing.T) {
	path := configFile(t, `{"frame_dir": "from-file", "database_path": "file.db"}`)
	withArgs(t, "-c", path, "-d", "flag.db", "-m", "0.5")

	c := LoadConfig()
	require.NotNil(t, c)
	assert.Equal(t, "from-file", c.FrameDir)
	assert.Equal(t, "flag.db", c.DatabasePath)
	assert.Equal(t, 0.5, c.MatchThreshold)
	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
}

func TestDeviceKeyPath(t *testing.T) {
	c := Config{DatabasePath: filepath.Join("var", "pk", "local.db")}
	assert.Equal(t, filepath.Join("var", "pk", "device.key"), c.DeviceKeyPath())

	c.KeyPath = "/etc/pk/device.key"
	assert.Equal(t, "/etc/pk/device.key", c.DeviceKeyPath())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"no server", func(c *Config) { c.ServerEndpointAddr = "" }, "server address is empty"},
		{"no database", func(c *Config) { c.DatabasePath = "" }, "database path is empty"},
		{"zero probe interval", func(c *Config) { c.OnlineCheckInterval = 0 }, "online check interval"},
		{"threshold too large", func(c *Config) { c.MatchThreshold = 2.5 }, "outside (0, 2]"},
		{"threshold zero", func(c *Config) { c.MatchThreshold = 0 }, "outside (0, 2]"},
		{"negative liveness", func(c *Config) { c.LivenessDuration = -time.Second }, "liveness duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			assert.ErrorContains(t, c.Validate(), tt.wantErr)
		})
	}
}
