// Package oracle parses oracle command flags and applies one token rate
// update to the sync view.
package oracle

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	entrypoint "github.com/bountynet/bounties-sync/internal/platform/cmd"
	"github.com/bountynet/bounties-sync/internal/sync/projection"
	"github.com/bountynet/bounties-sync/internal/sync/registry"
	"github.com/bountynet/bounties-sync/internal/sync/storage/sqlite"
)

// Config holds oracle command configuration.
type Config struct {
	DBPath   string `env:"BOUNTIES_SYNC_DB_PATH" envDefault:"data/sync.db"`
	Symbol   string `env:"BOUNTIES_SYNC_ORACLE_SYMBOL"`
	Decimals int    `env:"BOUNTIES_SYNC_ORACLE_DECIMALS" envDefault:"18"`
	RateUSD  string `env:"BOUNTIES_SYNC_ORACLE_RATE_USD"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The sync SQLite database path")
	fs.StringVar(&cfg.Symbol, "symbol", cfg.Symbol, "Token symbol to register or update")
	fs.IntVar(&cfg.Decimals, "decimals", cfg.Decimals, "Token decimals (immutable after registration)")
	fs.StringVar(&cfg.RateUSD, "rate-usd", cfg.RateUSD, "USD rate per whole token")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run registers the rate update and reprices every live bounty paying in the
// token.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceOracle, func(ctx context.Context) error {
		if strings.TrimSpace(cfg.Symbol) == "" {
			return fmt.Errorf("token symbol is required")
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(cfg.RateUSD))
		if err != nil {
			return fmt.Errorf("parse usd rate: %w", err)
		}

		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open sync sqlite store: %w", err)
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				log.Printf("close sync sqlite store: %v", closeErr)
			}
		}()

		reg := registry.New(store)
		updated, err := reg.Upsert(ctx, cfg.Symbol, cfg.Decimals, rate)
		if err != nil {
			return err
		}

		router := projection.NewRouter(store, reg)
		repriced, err := router.RepriceToken(ctx, updated.Symbol)
		if err != nil {
			return err
		}
		log.Printf("updated %s to %s USD; repriced %d bounties", updated.Symbol, rate, repriced)
		return nil
	})
}
