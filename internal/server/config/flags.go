package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/flagx"
)

var serverFlags = []string{"-a", "-d", "-s", "-t", "-r", "-l"}

// parseFlags applies the server flags found in os.Args:
//
//	-a  gRPC listen address
//	-d  PostgreSQL DSN
//	-s  token signing secret
//	-t  access token validity, minutes
//	-r  refresh token validity, minutes
//	-l  log level
//
// A malformed value panics.
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.EndpointAddrGRPC, "a", cfg.EndpointAddrGRPC, "gRPC listen address")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "token signing secret")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	access := fs.Int("t", minutes(cfg.AccessTokenValidityDuration), "access token validity in minutes")
	refresh := fs.Int("r", minutes(cfg.RefreshTokenValidityDuration), "refresh token validity in minutes")

	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], serverFlags)); err != nil {
		panic(err)
	}

	cfg.AccessTokenValidityDuration = time.Duration(*access) * time.Minute
	cfg.RefreshTokenValidityDuration = time.Duration(*refresh) * time.Minute
}

func minutes(d time.Duration) int {
	return int(d / time.Minute)
}
