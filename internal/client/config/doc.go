// Package config loads runtime configuration for the campus client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables prefixed with CAMPUS_ (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend, e.g. http://localhost:8000
//	-t int      request timeout (seconds)
//	-d string   credential store driver: sqlite, bolt or memory
//	-s string   credential store file path
//	-i int      online status check interval (seconds)
//	-l string   log level
//
// # JSON schema
//
// Durations can be either strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:8000",
//	  "request_timeout": "10s",
//	  "store_driver": "sqlite",
//	  "store_path": "session.db",
//	  "institutional_domain": "edu",
//	  "online_check_interval": "3s",
//	  "log_level": "info"
//	}
package config
