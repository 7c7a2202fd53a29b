package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bountynet/bounties-sync/internal/sync/storage"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultBatchSize    = 50
	defaultMaxAttempts  = 5
)

// DispatcherConfig controls outbox drain behavior.
type DispatcherConfig struct {
	// PollInterval is the pause between drain rounds.
	PollInterval time.Duration
	// BatchSize caps rows claimed per round.
	BatchSize int
	// MaxAttempts moves a repeatedly failing row to the dead status.
	MaxAttempts int
}

func (c DispatcherConfig) normalized() DispatcherConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	return c
}

// Dispatcher drains the notification outbox into a Notifier.
type Dispatcher struct {
	store    storage.NotificationOutboxStore
	notifier Notifier
	cfg      DispatcherConfig
}

// NewDispatcher creates a Dispatcher over the given outbox and sink.
func NewDispatcher(store storage.NotificationOutboxStore, notifier Notifier, cfg DispatcherConfig) *Dispatcher {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Dispatcher{store: store, notifier: notifier, cfg: cfg.normalized()}
}

// Run drains the outbox until ctx is done. Delivery failures are recorded on
// the row and retried on later rounds; they never stop the loop.
func (d *Dispatcher) Run(ctx context.Context) error {
	if d == nil || d.store == nil {
		return fmt.Errorf("dispatcher is not configured")
	}

	if _, err := d.DrainOnce(ctx); err != nil {
		log.Printf("notification drain failed: %v", err)
	}

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := d.DrainOnce(ctx); err != nil {
				log.Printf("notification drain failed: %v", err)
			}
		}
	}
}

// DrainOnce delivers one batch of pending rows and reports how many were
// delivered.
func (d *Dispatcher) DrainOnce(ctx context.Context) (int, error) {
	pending, err := d.store.ListPendingNotifications(ctx, d.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending notifications: %w", err)
	}

	delivered := 0
	for _, row := range pending {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}

		announce := Announcement{
			Kind:          row.Kind,
			BountyID:      row.BountyID,
			FulfillmentID: row.FulfillmentID,
			Combined:      row.Combined,
		}
		if err := d.notifier.Announce(ctx, announce); err != nil {
			if markErr := d.store.MarkNotificationFailed(ctx, row.ID, err.Error(),
				d.cfg.MaxAttempts, time.Now().UTC()); markErr != nil {
				return delivered, fmt.Errorf("mark notification failed: %w", markErr)
			}
			continue
		}
		if err := d.store.MarkNotificationSent(ctx, row.ID, time.Now().UTC()); err != nil {
			return delivered, fmt.Errorf("mark notification sent: %w", err)
		}
		delivered++
	}
	return delivered, nil
}
