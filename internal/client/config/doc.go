// Package config loads runtime configuration for the shoplist client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-f string   local database file for the session
//	-t int      request timeout (seconds)
//	-m          use the in-memory demo backend
//	-l string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration, so the timeout can be either a string
// like "10s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "database_file": "shoplist.db",
//	  "request_timeout": "10s",
//	  "in_memory": false,
//	  "log_level": "warn"
//	}
package config
