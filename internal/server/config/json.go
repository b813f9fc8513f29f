package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/profilekeeper/internal/flagx"
	"github.com/dmitrijs2005/profilekeeper/internal/timex"
)

// fileConfig mirrors Config for the JSON file. Durations accept "15m" or
// integer nanoseconds.
type fileConfig struct {
	EndpointAddrGRPC             string          `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string          `json:"database_dsn"`
	SecretKey                    string          `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	LogLevel                     string          `json:"log_level"`
}

// parseJson overlays cfg with the file passed as -c or -config. Keys absent
// from the file keep their current value. Read and decode errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var fc fileConfig
	if err := json.Unmarshal(raw, &fc); err != nil {
		panic(err)
	}
	fc.apply(cfg)
}

func (fc *fileConfig) apply(cfg *Config) {
	for dst, v := range map[*string]string{
		&cfg.EndpointAddrGRPC: fc.EndpointAddrGRPC,
		&cfg.DatabaseDSN:      fc.DatabaseDSN,
		&cfg.SecretKey:        fc.SecretKey,
		&cfg.LogLevel:         fc.LogLevel,
	} {
		if v != "" {
			*dst = v
		}
	}
	if d := fc.AccessTokenValidityDuration; d != nil {
		cfg.AccessTokenValidityDuration = d.Duration
	}
	if d := fc.RefreshTokenValidityDuration; d != nil {
		cfg.RefreshTokenValidityDuration = d.Duration
	}
}
