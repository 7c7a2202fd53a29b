package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/bountynet/bounties-sync/internal/sync/domain/event"
	"github.com/bountynet/bounties-sync/internal/sync/storage"
)

// EnqueueNotification inserts one pending announcement row. Callers invoke
// this inside WithinTx so the row commits with the state change it announces.
func (s *Store) EnqueueNotification(ctx context.Context, n storage.NotificationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO notification_outbox (kind, bounty_id, fulfillment_id, combined, status, attempt_count, last_error, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, 0, '', ?, ?)`,
		string(n.Kind),
		n.BountyID,
		n.FulfillmentID,
		boolToInt(n.Combined),
		storage.NotificationPending,
		toMillis(n.CreatedAt),
		toMillis(n.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

// ListPendingNotifications returns up to limit pending rows in enqueue order.
func (s *Store) ListPendingNotifications(ctx context.Context, limit int) ([]storage.NotificationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, kind, bounty_id, fulfillment_id, combined, status, attempt_count, last_error, created_at, updated_at
FROM notification_outbox
WHERE status = ?
ORDER BY id ASC
LIMIT ?`, storage.NotificationPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending notifications: %w", err)
	}
	defer rows.Close()

	var records []storage.NotificationRecord
	for rows.Next() {
		var (
			record    storage.NotificationRecord
			kind      string
			combined  int64
			createdAt int64
			updatedAt int64
		)
		if err := rows.Scan(&record.ID, &kind, &record.BountyID, &record.FulfillmentID,
			&combined, &record.Status, &record.AttemptCount, &record.LastError,
			&createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		record.Kind = event.Kind(kind)
		record.Combined = combined != 0
		record.CreatedAt = fromMillis(createdAt)
		record.UpdatedAt = fromMillis(updatedAt)
		records = append(records, record)
	}
	return records, rows.Err()
}

// MarkNotificationSent finalizes a delivered row.
func (s *Store) MarkNotificationSent(ctx context.Context, id int64, sentAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	res, err := s.db.ExecContext(ctx, `
UPDATE notification_outbox
SET status = ?, updated_at = ?
WHERE id = ?`, storage.NotificationSent, toMillis(sentAt), id)
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkNotificationFailed records a failed delivery attempt. Rows that reach
// maxAttempts flip to the dead status and leave the pending queue.
func (s *Store) MarkNotificationFailed(ctx context.Context, id int64, attemptErr string, maxAttempts int, failedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	res, err := s.db.ExecContext(ctx, `
UPDATE notification_outbox
SET attempt_count = attempt_count + 1,
    last_error = ?,
    status = CASE WHEN attempt_count + 1 >= ? THEN ? ELSE status END,
    updated_at = ?
WHERE id = ?`, attemptErr, maxAttempts, storage.NotificationDead, toMillis(failedAt), id)
	if err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
