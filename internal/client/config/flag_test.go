package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"profilekeeper"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestParseFlags_Overrides(t *testing.T) {
	base := Config{
		ServerEndpointAddr:  "localhost:50051",
		OnlineCheckInterval: 5 * time.Second,
		DatabasePath:        "profilekeeper.db",
		FrameDir:            "frames",
		MatchThreshold:      0.7,
	}

	tests := []struct {
		name string
		args []string
		edit func(c *Config)
	}{
		{
			name: "no flags keep defaults",
			edit: func(*Config) {},
		},
		{
			name: "server and probe interval",
			args: []string{"-a", "keeper.internal:7000", "-i", "30"},
			edit: func(c *Config) {
				c.ServerEndpointAddr = "keeper.internal:7000"
				c.OnlineCheckInterval = 30 * time.Second
			},
		},
		{
			name: "face pipeline locations",
			args: []string{"-e=http://embedder:8000", "-f", "/var/lib/frames"},
			edit: func(c *Config) {
				c.EmbeddingURL = "http://embedder:8000"
				c.FrameDir = "/var/lib/frames"
			},
		},
		{
			name: "silent reauth before another flag",
			args: []string{"-s", "-d", "alt.db"},
			edit: func(c *Config) {
				c.AllowSilentReauth = true
				c.DatabasePath = "alt.db"
			},
		},
		{
			name: "matching and device key",
			args: []string{"-m", "0.45", "-k", "dev.key", "-l", "debug"},
			edit: func(c *Config) {
				c.MatchThreshold = 0.45
				c.KeyPath = "dev.key"
				c.LogLevel = "debug"
			},
		},
		{
			name: "config file and unknown flags are skipped",
			args: []string{"-c", "cfg.json", "-verbose", "-a", "remote:1"},
			edit: func(c *Config) { c.ServerEndpointAddr = "remote:1" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)

			got, want := base, base
			tt.edit(&want)
			parseFlags(&got)

			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFlags_BadInterval(t *testing.T) {
	withArgs(t, "-i", "often")
	cfg := Config{}
	assert.Panics(t, func() { parseFlags(&cfg) })
}
