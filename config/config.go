package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"rignet/native/rig"
	"rignet/native/treasury"
)

// Config captures the runtime configuration for the rignet simulator daemon.
// Engine parameter bounds are enforced by the engines at construction; Load
// only validates the daemon-level surface.
type Config struct {
	Env                string `toml:"Env"`
	LogLevel           string `toml:"LogLevel"`
	MetricsAddress     string `toml:"MetricsAddress"`
	ScenarioFile       string `toml:"ScenarioFile"`
	ProtocolFeeAddress string `toml:"ProtocolFeeAddress"`
	TeamAddress        string `toml:"TeamAddress"`

	Rig      rig.Config      `toml:"rig"`
	Treasury treasury.Config `toml:"treasury"`
}

// Load reads the TOML configuration from the given path and applies daemon
// defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("config file %s has unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "local"
	}
	if strings.TrimSpace(cfg.MetricsAddress) == "" {
		cfg.MetricsAddress = ":9464"
	}
	if strings.TrimSpace(cfg.ScenarioFile) == "" {
		cfg.ScenarioFile = "scenario.yaml"
	}
	if strings.TrimSpace(cfg.Treasury.PaymentToken) == "" {
		cfg.Treasury.PaymentToken = "LPR"
	}
	return cfg, nil
}
