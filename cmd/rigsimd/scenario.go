package main

import (
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario drives the simulator: a set of funded actors and a timeline of
// mine/buy steps executed against a deterministic clock.
type Scenario struct {
	Actors []Actor `yaml:"actors"`
	Steps  []Step  `yaml:"steps"`
}

// Actor names a simulated participant and its genesis funding, in wei.
type Actor struct {
	Name    string `yaml:"name"`
	FuelWei string `yaml:"fuel_wei"`
	LPRWei  string `yaml:"lpr_wei"`
}

// Step is a single timeline entry. At is measured in seconds from the rig's
// start time.
type Step struct {
	At        int64    `yaml:"at"`
	Action    string   `yaml:"action"`
	Actor     string   `yaml:"actor"`
	Recipient string   `yaml:"recipient,omitempty"`
	MaxPrice  string   `yaml:"max_price,omitempty"`
	Metadata  string   `yaml:"metadata,omitempty"`
	Assets    []string `yaml:"assets,omitempty"`
}

const (
	actionMine = "mine"
	actionBuy  = "buy"
)

// LoadScenario reads and validates the YAML scenario at path. Steps are
// returned sorted by time.
func LoadScenario(path string) (*Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer file.Close()

	scenario := &Scenario{}
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(scenario); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := scenario.validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(scenario.Steps, func(i, j int) bool {
		return scenario.Steps[i].At < scenario.Steps[j].At
	})
	return scenario, nil
}

func (s *Scenario) validate() error {
	if len(s.Actors) == 0 {
		return fmt.Errorf("scenario: at least one actor required")
	}
	names := make(map[string]bool, len(s.Actors))
	for _, actor := range s.Actors {
		name := strings.TrimSpace(actor.Name)
		if name == "" {
			return fmt.Errorf("scenario: actor name required")
		}
		if names[name] {
			return fmt.Errorf("scenario: duplicate actor %q", name)
		}
		names[name] = true
	}
	for i, step := range s.Steps {
		if step.At < 0 {
			return fmt.Errorf("scenario: step %d has negative time", i)
		}
		if step.Action != actionMine && step.Action != actionBuy {
			return fmt.Errorf("scenario: step %d has unknown action %q", i, step.Action)
		}
		if !names[strings.TrimSpace(step.Actor)] {
			return fmt.Errorf("scenario: step %d references unknown actor %q", i, step.Actor)
		}
		if step.Action == actionBuy && len(step.Assets) == 0 {
			return fmt.Errorf("scenario: step %d buy needs at least one asset", i)
		}
	}
	return nil
}

func parseWei(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("invalid wei amount %q", value)
	}
	return amount, nil
}
