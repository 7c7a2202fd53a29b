package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bountynet/bounties-sync/internal/sync/storage"
)

// PutToken upserts one token registry row.
func (s *Store) PutToken(ctx context.Context, t storage.TokenRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(t.Symbol) == "" {
		return fmt.Errorf("token symbol is required")
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO tokens (symbol, decimals, price_usd, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (symbol) DO UPDATE SET
    decimals = excluded.decimals,
    price_usd = excluded.price_usd,
    updated_at = excluded.updated_at`,
		t.Symbol,
		int64(t.Decimals),
		toAmount(t.PriceUSD),
		toMillis(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put token: %w", err)
	}
	return nil
}

// GetToken fetches one token registry row by symbol.
func (s *Store) GetToken(ctx context.Context, symbol string) (storage.TokenRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.TokenRecord{}, err
	}
	if s == nil || s.db == nil {
		return storage.TokenRecord{}, fmt.Errorf("storage is not configured")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT symbol, decimals, price_usd, updated_at FROM tokens WHERE symbol = ?`, symbol)
	record, err := scanToken(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.TokenRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.TokenRecord{}, fmt.Errorf("get token: %w", err)
	}
	return record, nil
}

// ListTokens returns every token registry row ordered by symbol.
func (s *Store) ListTokens(ctx context.Context) ([]storage.TokenRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol, decimals, price_usd, updated_at FROM tokens ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var records []storage.TokenRecord
	for rows.Next() {
		record, err := scanToken(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanToken(scan func(dest ...any) error) (storage.TokenRecord, error) {
	var (
		record    storage.TokenRecord
		priceUSD  string
		updatedAt int64
	)
	if err := scan(&record.Symbol, &record.Decimals, &priceUSD, &updatedAt); err != nil {
		return storage.TokenRecord{}, err
	}
	var err error
	if record.PriceUSD, err = fromAmount(priceUSD); err != nil {
		return storage.TokenRecord{}, err
	}
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
