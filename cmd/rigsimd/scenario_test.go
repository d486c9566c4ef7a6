package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

func TestLoadScenarioSortsSteps(t *testing.T) {
	path := writeScenario(t, `
actors:
  - name: alice
    fuel_wei: "1000000"
steps:
  - at: 900
    action: mine
    actor: alice
  - at: 100
    action: mine
    actor: alice
`)
	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if len(scenario.Steps) != 2 {
		t.Fatalf("steps: got %d want 2", len(scenario.Steps))
	}
	if scenario.Steps[0].At != 100 || scenario.Steps[1].At != 900 {
		t.Fatalf("steps not sorted: %v", scenario.Steps)
	}
}

func TestLoadScenarioValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no actors", "steps: []\n"},
		{"duplicate actor", "actors:\n  - name: a\n  - name: a\n"},
		{"unknown action", "actors:\n  - name: a\nsteps:\n  - at: 1\n    action: steal\n    actor: a\n"},
		{"unknown actor", "actors:\n  - name: a\nsteps:\n  - at: 1\n    action: mine\n    actor: b\n"},
		{"buy without assets", "actors:\n  - name: a\nsteps:\n  - at: 1\n    action: buy\n    actor: a\n"},
		{"unknown field", "actors:\n  - name: a\n    color: red\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadScenario(writeScenario(t, tc.body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseWei(t *testing.T) {
	if amount, err := parseWei("  "); err != nil || amount != nil {
		t.Fatalf("blank must parse to nil: %v %v", amount, err)
	}
	if amount, err := parseWei("12345"); err != nil || amount.Int64() != 12345 {
		t.Fatalf("parse: %v %v", amount, err)
	}
	if _, err := parseWei("-1"); err == nil {
		t.Fatalf("negative must fail")
	}
	if _, err := parseWei("0x10"); err == nil {
		t.Fatalf("hex must fail")
	}
}
