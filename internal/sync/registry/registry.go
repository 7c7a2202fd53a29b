// Package registry exposes the oracle-fed token registry. Reads come from
// every pricing call; writes come only from the oracle collaborator, so the
// registry is read-mostly and shared under reader/writer locking.
package registry

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/bountynet/bounties-sync/internal/platform/errors"
	"github.com/bountynet/bounties-sync/internal/sync/domain/token"
	"github.com/bountynet/bounties-sync/internal/sync/storage"
	"github.com/shopspring/decimal"
)

// Registry provides symbol-keyed access to registered tokens.
type Registry struct {
	mu    sync.RWMutex
	store storage.TokenStore
}

// New creates a Registry over the given token store.
func New(store storage.TokenStore) *Registry {
	return &Registry{store: store}
}

// Lookup returns the token for symbol, reporting absence without error.
// Lookup implements pricing.TokenSource.
func (r *Registry) Lookup(ctx context.Context, symbol string) (token.Token, bool, error) {
	symbol = token.NormalizeSymbol(symbol)
	if symbol == "" {
		return token.Token{}, false, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, err := r.store.GetToken(ctx, symbol)
	if apperrors.IsCode(err, apperrors.CodeNotFound) {
		return token.Token{}, false, nil
	}
	if err != nil {
		return token.Token{}, false, err
	}
	return token.Token{
		Symbol:   record.Symbol,
		Decimals: record.Decimals,
		PriceUSD: record.PriceUSD,
	}, true, nil
}

// Upsert registers a token or updates its USD rate. Rates are last-write-wins;
// decimals are immutable once a symbol is registered, and a conflicting
// re-registration fails.
func (r *Registry) Upsert(ctx context.Context, symbol string, decimals int, priceUSD decimal.Decimal) (token.Token, error) {
	t := token.Token{
		Symbol:   token.NormalizeSymbol(symbol),
		Decimals: decimals,
		PriceUSD: priceUSD,
	}
	if err := t.Validate(); err != nil {
		return token.Token{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.store.GetToken(ctx, t.Symbol)
	switch {
	case err == nil:
		if existing.Decimals != t.Decimals {
			return token.Token{}, token.ErrDecimalsConflict.WithMeta(
				map[string]string{"symbol": t.Symbol})
		}
	case apperrors.IsCode(err, apperrors.CodeNotFound):
		// first registration
	default:
		return token.Token{}, err
	}

	if err := r.store.PutToken(ctx, storage.TokenRecord{
		Symbol:    t.Symbol,
		Decimals:  t.Decimals,
		PriceUSD:  t.PriceUSD,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		return token.Token{}, err
	}
	return t, nil
}

// List returns every registered token.
func (r *Registry) List(ctx context.Context) ([]token.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records, err := r.store.ListTokens(ctx)
	if err != nil {
		return nil, err
	}
	tokens := make([]token.Token, 0, len(records))
	for _, record := range records {
		tokens = append(tokens, token.Token{
			Symbol:   record.Symbol,
			Decimals: record.Decimals,
			PriceUSD: record.PriceUSD,
		})
	}
	return tokens, nil
}
