package oracle

import (
	"flag"
	"testing"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("oracle", flag.ContinueOnError)
	t.Setenv("BOUNTIES_SYNC_DB_PATH", "data/custom.db")

	cfg, err := ParseConfig(fs, []string{"-symbol", "eth", "-rate-usd", "612.50", "-decimals", "8"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/custom.db" {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, "data/custom.db")
	}
	if cfg.Symbol != "eth" || cfg.RateUSD != "612.50" || cfg.Decimals != 8 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("oracle", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/sync.db" || cfg.Decimals != 18 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}
