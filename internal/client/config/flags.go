package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/flagx"
)

var (
	clientFlags     = []string{"-a", "-i", "-d", "-k", "-e", "-f", "-m", "-l", "-s"}
	clientBoolFlags = []string{"-s"}
)

// parseFlags applies the client flags found in os.Args:
//
//	-a  RemoteStore address
//	-i  connectivity probe interval, seconds
//	-d  local database path
//	-k  device key path
//	-e  face embedding server URL
//	-f  camera frame directory
//	-m  match threshold
//	-l  log level
//	-s  allow silent reauthentication
//
// Anything else on the command line is ignored. A malformed value panics.
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "RemoteStore address")
	probe := fs.Int("i", int(cfg.OnlineCheckInterval/time.Second), "connectivity probe interval in seconds")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.KeyPath, "k", cfg.KeyPath, "device key path")
	fs.StringVar(&cfg.EmbeddingURL, "e", cfg.EmbeddingURL, "face embedding server URL")
	fs.StringVar(&cfg.FrameDir, "f", cfg.FrameDir, "camera frame directory")
	fs.Float64Var(&cfg.MatchThreshold, "m", cfg.MatchThreshold, "face match threshold")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.AllowSilentReauth, "s", cfg.AllowSilentReauth, "allow silent reauthentication")

	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], clientFlags, clientBoolFlags...)); err != nil {
		panic(err)
	}
	cfg.OnlineCheckInterval = time.Duration(*probe) * time.Second
}
