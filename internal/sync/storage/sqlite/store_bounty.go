package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bountynet/bounties-sync/internal/sync/domain/bounty"
	"github.com/bountynet/bounties-sync/internal/sync/storage"
)

const bountyColumns = `bounty_id, stage, issuer, deadline, pays_tokens, token_symbol,
token_decimals, fulfillment_amount, usd_price, balance, data_hash, title,
description, issuer_name, issuer_email, last_event_at, created_at, updated_at`

// PutBounty upserts a bounty aggregate row.
func (s *Store) PutBounty(ctx context.Context, b storage.BountyRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if b.Stage == bounty.StageUnspecified {
		return fmt.Errorf("bounty stage is required")
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO bounties (`+bountyColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (bounty_id) DO UPDATE SET
    stage = excluded.stage,
    issuer = excluded.issuer,
    deadline = excluded.deadline,
    pays_tokens = excluded.pays_tokens,
    token_symbol = excluded.token_symbol,
    token_decimals = excluded.token_decimals,
    fulfillment_amount = excluded.fulfillment_amount,
    usd_price = excluded.usd_price,
    balance = excluded.balance,
    data_hash = excluded.data_hash,
    last_event_at = excluded.last_event_at,
    updated_at = excluded.updated_at`,
		b.BountyID,
		string(b.Stage),
		b.Issuer,
		toMillis(b.Deadline),
		boolToInt(b.PaysTokens),
		b.TokenSymbol,
		int64(b.TokenDecimals),
		toAmount(b.FulfillmentAmount),
		toAmount(b.USDPrice),
		toAmount(b.Balance),
		b.DataHash,
		b.Title,
		b.Description,
		b.IssuerName,
		b.IssuerEmail,
		toMillis(b.LastEventAt),
		toMillis(b.CreatedAt),
		toMillis(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put bounty: %w", err)
	}
	return nil
}

// GetBounty fetches a bounty aggregate by id.
func (s *Store) GetBounty(ctx context.Context, bountyID int64) (storage.BountyRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.BountyRecord{}, err
	}
	if s == nil || s.db == nil {
		return storage.BountyRecord{}, fmt.Errorf("storage is not configured")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+bountyColumns+` FROM bounties WHERE bounty_id = ?`, bountyID)
	record, err := scanBounty(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.BountyRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.BountyRecord{}, fmt.Errorf("get bounty: %w", err)
	}
	return record, nil
}

// ListBounties returns up to limit bounty rows with id greater than afterID,
// ordered by id ascending.
func (s *Store) ListBounties(ctx context.Context, afterID int64, limit int) ([]storage.BountyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bountyColumns+` FROM bounties WHERE bounty_id > ? ORDER BY bounty_id ASC LIMIT ?`,
		afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list bounties: %w", err)
	}
	defer rows.Close()

	var records []storage.BountyRecord
	for rows.Next() {
		record, err := scanBounty(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan bounty: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SetBountyMetadata updates enrichment fields only; lifecycle and monetary
// columns are untouched.
func (s *Store) SetBountyMetadata(ctx context.Context, bountyID int64, meta storage.BountyMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE bounties SET title = ?, description = ?, issuer_name = ?, issuer_email = ? WHERE bounty_id = ?`,
		meta.Title, meta.Description, meta.IssuerName, meta.IssuerEmail, bountyID)
	if err != nil {
		return fmt.Errorf("set bounty metadata: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set bounty metadata: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanBounty(scan func(dest ...any) error) (storage.BountyRecord, error) {
	var (
		record      storage.BountyRecord
		stage       string
		deadline    int64
		paysTokens  int64
		amount      string
		usdPrice    string
		balance     string
		lastEventAt int64
		createdAt   int64
		updatedAt   int64
	)
	err := scan(
		&record.BountyID,
		&stage,
		&record.Issuer,
		&deadline,
		&paysTokens,
		&record.TokenSymbol,
		&record.TokenDecimals,
		&amount,
		&usdPrice,
		&balance,
		&record.DataHash,
		&record.Title,
		&record.Description,
		&record.IssuerName,
		&record.IssuerEmail,
		&lastEventAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.BountyRecord{}, err
	}

	normalized, ok := bounty.NormalizeStage(stage)
	if !ok {
		return storage.BountyRecord{}, fmt.Errorf("stored stage %q is invalid", stage)
	}
	record.Stage = normalized
	record.Deadline = fromMillis(deadline)
	record.PaysTokens = paysTokens != 0
	record.LastEventAt = fromMillis(lastEventAt)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)

	if record.FulfillmentAmount, err = fromAmount(amount); err != nil {
		return storage.BountyRecord{}, err
	}
	if record.USDPrice, err = fromAmount(usdPrice); err != nil {
		return storage.BountyRecord{}, err
	}
	if record.Balance, err = fromAmount(balance); err != nil {
		return storage.BountyRecord{}, err
	}
	return record, nil
}
