package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/bountynet/bounties-sync/internal/sync/registry"
)

// TokenSeed is one entry of the startup token seed file. Seeding lets a
// fresh view price known tokens before the oracle collaborator reports in.
type TokenSeed struct {
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	// PriceUSD is the USD rate per whole token as a decimal string.
	PriceUSD string `json:"priceUSD"`
}

// LoadTokenSeeds reads a JSON array of token seeds from path.
func LoadTokenSeeds(path string) ([]TokenSeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token seed file: %w", err)
	}
	var seeds []TokenSeed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return nil, fmt.Errorf("decode token seed file %s: %w", path, err)
	}
	return seeds, nil
}

// SeedTokens registers every seed entry through the registry.
func SeedTokens(ctx context.Context, reg *registry.Registry, seeds []TokenSeed) error {
	for _, seed := range seeds {
		rate, err := decimal.NewFromString(seed.PriceUSD)
		if err != nil {
			return fmt.Errorf("parse seed rate for %s: %w", seed.Symbol, err)
		}
		if _, err := reg.Upsert(ctx, seed.Symbol, seed.Decimals, rate); err != nil {
			return fmt.Errorf("seed token %s: %w", seed.Symbol, err)
		}
	}
	return nil
}
