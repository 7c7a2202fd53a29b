// Package pricing converts raw on-chain integer amounts into exact token
// quantities and USD figures. All arithmetic is exact base-10; binary
// floating point never enters the computation.
package pricing

import (
	"context"
	"strings"

	apperrors "github.com/bountynet/bounties-sync/internal/platform/errors"
	"github.com/bountynet/bounties-sync/internal/sync/domain/token"
	"github.com/shopspring/decimal"
)

// USDScale is the number of fractional digits kept on USD figures.
const USDScale = 8

// ErrRawValueInvalid indicates a raw amount that is not an unsigned decimal integer.
var ErrRawValueInvalid = apperrors.New(apperrors.CodePricingRawValueInvalid, "raw amount must be an unsigned decimal integer")

// ParseRaw parses a raw on-chain amount. Raw amounts are unsigned integers of
// arbitrary precision carried as decimal strings.
func ParseRaw(rawValue string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(rawValue)
	if trimmed == "" {
		return decimal.Decimal{}, ErrRawValueInvalid
	}
	for _, c := range trimmed {
		if c < '0' || c > '9' {
			return decimal.Decimal{}, ErrRawValueInvalid.WithMeta(
				map[string]string{"value": trimmed})
		}
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, apperrors.Wrap(apperrors.CodePricingRawValueInvalid,
			"raw amount must be an unsigned decimal integer", err)
	}
	return value, nil
}

// Quantity scales a raw integer amount by the token's decimal precision:
// rawValue * 10^-decimals, computed by exact decimal scaling.
func Quantity(rawValue string, decimals int) (decimal.Decimal, error) {
	if decimals < 0 {
		return decimal.Decimal{}, token.ErrDecimalsNegative
	}
	value, err := ParseRaw(rawValue)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return value.Shift(int32(-decimals)), nil
}

// USDPrice converts a raw amount into USD at the given rate, rounded
// half-up to USDScale fractional digits.
func USDPrice(rawValue string, decimals int, usdRate decimal.Decimal) (decimal.Decimal, error) {
	quantity, err := Quantity(rawValue, decimals)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return quantity.Mul(usdRate).Round(USDScale), nil
}

// TokenSource resolves a symbol to a registered token. The registry
// implements it; tests substitute fakes.
type TokenSource interface {
	// Lookup returns the token for symbol, reporting absence without error.
	Lookup(ctx context.Context, symbol string) (token.Token, bool, error)
}

// ForToken prices a raw amount against the registry. An unregistered symbol
// degrades to a zero price rather than failing the triggering mutation.
func ForToken(ctx context.Context, source TokenSource, symbol string, decimals int, rawValue string) (decimal.Decimal, *token.Token, error) {
	registered, ok, err := source.Lookup(ctx, symbol)
	if err != nil {
		return decimal.Decimal{}, nil, err
	}
	if !ok {
		return decimal.Zero, nil, nil
	}
	price, err := USDPrice(rawValue, decimals, registered.PriceUSD)
	if err != nil {
		return decimal.Decimal{}, nil, err
	}
	return price, &registered, nil
}
