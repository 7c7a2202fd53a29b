package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bountynet/bounties-sync/internal/sync/storage"
)

const fulfillmentColumns = `bounty_id, fulfillment_id, fulfiller, accepted,
data_hash, description, fulfiller_name, fulfiller_email, created_at, updated_at`

// PutFulfillment upserts one fulfillment row scoped to its bounty.
func (s *Store) PutFulfillment(ctx context.Context, f storage.FulfillmentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO fulfillments (`+fulfillmentColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (bounty_id, fulfillment_id) DO UPDATE SET
    fulfiller = excluded.fulfiller,
    accepted = excluded.accepted,
    data_hash = excluded.data_hash,
    updated_at = excluded.updated_at`,
		f.BountyID,
		f.FulfillmentID,
		f.Fulfiller,
		boolToInt(f.Accepted),
		f.DataHash,
		f.Description,
		f.FulfillerName,
		f.FulfillerEmail,
		toMillis(f.CreatedAt),
		toMillis(f.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put fulfillment: %w", err)
	}
	return nil
}

// GetFulfillment fetches one fulfillment by its composite key.
func (s *Store) GetFulfillment(ctx context.Context, bountyID, fulfillmentID int64) (storage.FulfillmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.FulfillmentRecord{}, err
	}
	if s == nil || s.db == nil {
		return storage.FulfillmentRecord{}, fmt.Errorf("storage is not configured")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+fulfillmentColumns+` FROM fulfillments WHERE bounty_id = ? AND fulfillment_id = ?`,
		bountyID, fulfillmentID)
	record, err := scanFulfillment(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.FulfillmentRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.FulfillmentRecord{}, fmt.Errorf("get fulfillment: %w", err)
	}
	return record, nil
}

// ListFulfillments returns every fulfillment for a bounty ordered by id.
func (s *Store) ListFulfillments(ctx context.Context, bountyID int64) ([]storage.FulfillmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fulfillmentColumns+` FROM fulfillments WHERE bounty_id = ? ORDER BY fulfillment_id ASC`,
		bountyID)
	if err != nil {
		return nil, fmt.Errorf("list fulfillments: %w", err)
	}
	defer rows.Close()

	var records []storage.FulfillmentRecord
	for rows.Next() {
		record, err := scanFulfillment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan fulfillment: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SetFulfillmentMetadata updates enrichment fields only.
func (s *Store) SetFulfillmentMetadata(ctx context.Context, bountyID, fulfillmentID int64, meta storage.FulfillmentMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE fulfillments SET description = ?, fulfiller_name = ?, fulfiller_email = ? WHERE bounty_id = ? AND fulfillment_id = ?`,
		meta.Description, meta.FulfillerName, meta.FulfillerEmail, bountyID, fulfillmentID)
	if err != nil {
		return fmt.Errorf("set fulfillment metadata: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set fulfillment metadata: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanFulfillment(scan func(dest ...any) error) (storage.FulfillmentRecord, error) {
	var (
		record    storage.FulfillmentRecord
		accepted  int64
		createdAt int64
		updatedAt int64
	)
	err := scan(
		&record.BountyID,
		&record.FulfillmentID,
		&record.Fulfiller,
		&accepted,
		&record.DataHash,
		&record.Description,
		&record.FulfillerName,
		&record.FulfillerEmail,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.FulfillmentRecord{}, err
	}
	record.Accepted = accepted != 0
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
