package config

import "fmt"

// EngineConfig defines allocation-pass settings.
type EngineConfig struct {
	// ProcessIntervalSeconds is the period between scheduled passes.
	ProcessIntervalSeconds int `json:"process_interval_seconds"`
	// ImmediateOnUrgent triggers a pass as soon as a high or critical
	// priority request arrives instead of waiting for the next tick.
	ImmediateOnUrgent bool `json:"immediate_on_urgent"`
	// APIPort is the listen address of the HTTP API, e.g. ":8080".
	APIPort string `json:"api_port"`
	// APIToken protects the pass log endpoint when non-empty; clients must
	// send it as a bearer token.
	APIToken string `json:"api_token"`
}

// SetDefaults applies sane defaults.
func (c *EngineConfig) SetDefaults() {
	if c.ProcessIntervalSeconds == 0 {
		c.ProcessIntervalSeconds = 30
	}
	if c.APIPort == "" {
		c.APIPort = ":8080"
	}
}

// Validate checks mandatory fields.
func (c EngineConfig) Validate() error {
	if c.ProcessIntervalSeconds <= 0 {
		return fmt.Errorf("process_interval_seconds must be positive")
	}
	return nil
}
