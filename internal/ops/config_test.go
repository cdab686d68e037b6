package ops

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"quote": {"volume": 20, "imbalanceThreshold": 0.3},
		"hedge": {"retryBudget": 3, "unwind": true}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Quote.Volume != 20 || cfg.Quote.ImbalanceThreshold != 0.3 {
		t.Fatalf("quote config: %+v", cfg.Quote)
	}
	if cfg.Hedge.RetryBudget != 3 || !cfg.Hedge.Unwind {
		t.Fatalf("hedge config: %+v", cfg.Hedge)
	}
	// Untouched sections keep their defaults.
	if cfg.Risk.PositionLimit != 100 || cfg.Risk.TickSize != 100 {
		t.Fatalf("risk defaults lost: %+v", cfg.Risk)
	}
	if cfg.Venue.Primary != "ETF" || cfg.Venue.Secondary != "FUT" {
		t.Fatalf("venue defaults lost: %+v", cfg.Venue)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"same symbols":      `{"venue": {"url": "ws://x", "primary": "ETF", "secondary": "ETF"}}`,
		"zero tick":         `{"risk": {"positionLimit": 100, "lotSize": 10, "tickSize": 0, "minBid": 1, "maxAsk": 100}}`,
		"oversized quote":   `{"quote": {"volume": 500, "imbalanceThreshold": 0.5}}`,
		"negative retries":  `{"hedge": {"retryBudget": -1}}`,
		"journal missing db": `{"journal": {"enabled": true}}`,
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
