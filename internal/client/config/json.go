package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/shoplist/internal/flagx"
	"github.com/dmitrijs2005/shoplist/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	DatabaseFile       string         `json:"database_file"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	InMemory           *bool          `json:"in_memory"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c/-config. Keys missing
// from the file keep their current values. Read or decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DatabaseFile != "" {
		cfg.DatabaseFile = jc.DatabaseFile
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.InMemory != nil {
		cfg.InMemory = *jc.InMemory
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
