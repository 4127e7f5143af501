// Package config provides structural configuration for the out-of-order
// pipeline model.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the structural parameters of the pipeline.
type Config struct {
	// NumPhysRegs is the number of physical registers backing the
	// architectural register file. Default: 24.
	NumPhysRegs int `json:"num_phys_regs"`

	// NumCCRegs is the number of condition-code rename slots. Default: 16.
	NumCCRegs int `json:"num_cc_regs"`

	// IQSize is the capacity of the unified issue queue. Default: 24.
	IQSize int `json:"iq_size"`

	// ROBSize is the capacity of the reorder buffer. Default: 32.
	ROBSize int `json:"rob_size"`

	// LSQSize is the capacity of the load/store queue. Default: 16.
	LSQSize int `json:"lsq_size"`

	// BQSize is the capacity of the branch queue. Default: 16.
	BQSize int `json:"bq_size"`

	// BTBSlots is the number of branch target buffer slots. Default: 4.
	BTBSlots int `json:"btb_slots"`

	// DataMemorySize is the number of data-memory words. Default: 4096.
	DataMemorySize int `json:"data_memory_size"`
}

// DefaultConfig returns the configuration from the APEX reference design.
func DefaultConfig() *Config {
	return &Config{
		NumPhysRegs:    24,
		NumCCRegs:      16,
		IQSize:         24,
		ROBSize:        32,
		LSQSize:        16,
		BQSize:         16,
		BTBSlots:       4,
		DataMemorySize: 4096,
	}
}

// LoadConfig reads configuration from a JSON file. Missing fields keep
// their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that all capacities are positive.
func (c *Config) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"num_phys_regs", c.NumPhysRegs},
		{"num_cc_regs", c.NumCCRegs},
		{"iq_size", c.IQSize},
		{"rob_size", c.ROBSize},
		{"lsq_size", c.LSQSize},
		{"bq_size", c.BQSize},
		{"btb_slots", c.BTBSlots},
		{"data_memory_size", c.DataMemorySize},
	}
	for _, ch := range checks {
		if ch.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", ch.name, ch.value)
		}
	}
	return nil
}
