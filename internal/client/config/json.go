package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/profilekeeper/internal/flagx"
	"github.com/dmitrijs2005/profilekeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero-able fields left out of the file keep their current value.
type JsonConfig struct {
	ServerEndpointAddr  string          `json:"server_endpoint_addr"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	DatabasePath        string          `json:"database_path"`
	KeyPath             string          `json:"key_path"`
	EmbeddingURL        string          `json:"embedding_url"`
	FrameDir            string          `json:"frame_dir"`
	AllowSilentReauth   *bool           `json:"allow_silent_reauth"`
	MatchThreshold      *float64        `json:"match_threshold"`
	LivenessDuration    *timex.Duration `json:"liveness_duration"`
	LogLevel            string          `json:"log_level"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.KeyPath, jc.KeyPath)
	setString(&cfg.EmbeddingURL, jc.EmbeddingURL)
	setString(&cfg.FrameDir, jc.FrameDir)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.AllowSilentReauth != nil {
		cfg.AllowSilentReauth = *jc.AllowSilentReauth
	}
	if jc.MatchThreshold != nil {
		cfg.MatchThreshold = *jc.MatchThreshold
	}
	if jc.LivenessDuration != nil {
		cfg.LivenessDuration = jc.LivenessDuration.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
