// Package config loads runtime configuration for the profilekeeper client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
// Intervals use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "database_path": "data/profilekeeper.db",
//	  "embedding_url": "http://127.0.0.1:8000",
//	  "frame_dir": "frames",
//	  "allow_silent_reauth": false,
//	  "match_threshold": 0.7,
//	  "liveness_duration": "2s",
//	  "log_level": "info"
//	}
//
// allow_silent_reauth (flag -s) stores the password sealed to a device key
// so an offline session can be upgraded without a prompt. Anyone holding
// the database and the key file can recover the password. It is off by
// default.
package config
