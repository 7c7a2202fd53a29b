// Package token defines the registry rules for oracle-fed token records.
package token

import (
	"strings"

	apperrors "github.com/bountynet/bounties-sync/internal/platform/errors"
	"github.com/shopspring/decimal"
)

// Token is one registered payout token with its oracle-supplied USD rate.
type Token struct {
	// Symbol is the unique registry key (e.g. "ETH").
	Symbol string
	// Decimals is the token's precision, fixed at registration.
	Decimals int
	// PriceUSD is the current USD rate per whole token. Last write wins;
	// only the oracle collaborator writes it.
	PriceUSD decimal.Decimal
}

var (
	// ErrSymbolEmpty indicates a registration without a symbol.
	ErrSymbolEmpty = apperrors.New(apperrors.CodeTokenSymbolEmpty, "token symbol is required")
	// ErrDecimalsNegative indicates an invalid precision.
	ErrDecimalsNegative = apperrors.New(apperrors.CodeTokenDecimalsNegative, "token decimals must not be negative")
	// ErrDecimalsConflict indicates a re-registration that changes a symbol's precision.
	ErrDecimalsConflict = apperrors.New(apperrors.CodeTokenDecimalsConflict, "token decimals are immutable once registered")
	// ErrRateNegative indicates an oracle rate below zero.
	ErrRateNegative = apperrors.New(apperrors.CodeTokenRateNegative, "token usd rate must not be negative")
)

// NormalizeSymbol canonicalizes a registry key.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Validate checks registration invariants.
func (t Token) Validate() error {
	if NormalizeSymbol(t.Symbol) == "" {
		return ErrSymbolEmpty
	}
	if t.Decimals < 0 {
		return ErrDecimalsNegative
	}
	if t.PriceUSD.IsNegative() {
		return ErrRateNegative
	}
	return nil
}
