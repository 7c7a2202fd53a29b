package cmd

import (
	"context"
	"flag"
	"testing"
)

type testConfig struct {
	FeedPath string `env:"CMD_TEST_FEED_PATH" envDefault:"data/feed.ndjson"`
	DBPath   string `env:"CMD_TEST_DB_PATH" envDefault:"data/sync.db"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CMD_TEST_FEED_PATH", "env:feed")
	t.Setenv("CMD_TEST_DB_PATH", "env:db")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfg.FeedPath, "feed-path", cfg.FeedPath, "feed path")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "db path")

	if err := ParseArgs(fs, []string{"-feed-path", "flag:feed"}); err != nil {
		t.Fatalf("parse args: %v", err)
	}

	if cfg.FeedPath != "flag:feed" {
		t.Fatalf("feed path = %q, want flag override", cfg.FeedPath)
	}
	if cfg.DBPath != "env:db" {
		t.Fatalf("db path = %q, want env default", cfg.DBPath)
	}
}

func TestParseConfigRejectsNil(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected error for nil config target")
	}
}

func TestRunWithTelemetryRequiresService(t *testing.T) {
	err := RunWithTelemetry(context.Background(), " ", func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected error for empty service name")
	}
}

func TestRunWithTelemetryExecutesRun(t *testing.T) {
	ran := false
	err := RunWithTelemetry(context.Background(), ServiceSyncd, func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ran {
		t.Fatal("run function was not executed")
	}
}
