package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bountynet/bounties-sync/internal/sync/domain/event"
	"github.com/bountynet/bounties-sync/internal/sync/storage"
)

type fakeOutbox struct {
	rows []storage.NotificationRecord
}

func (s *fakeOutbox) EnqueueNotification(_ context.Context, n storage.NotificationRecord) error {
	n.ID = int64(len(s.rows) + 1)
	if n.Status == "" {
		n.Status = storage.NotificationPending
	}
	s.rows = append(s.rows, n)
	return nil
}

func (s *fakeOutbox) ListPendingNotifications(_ context.Context, limit int) ([]storage.NotificationRecord, error) {
	var pending []storage.NotificationRecord
	for _, n := range s.rows {
		if n.Status == storage.NotificationPending {
			pending = append(pending, n)
		}
		if limit > 0 && len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (s *fakeOutbox) MarkNotificationSent(_ context.Context, id int64, sentAt time.Time) error {
	for i, n := range s.rows {
		if n.ID == id {
			s.rows[i].Status = storage.NotificationSent
			s.rows[i].UpdatedAt = sentAt
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeOutbox) MarkNotificationFailed(_ context.Context, id int64, attemptErr string, maxAttempts int, failedAt time.Time) error {
	for i, n := range s.rows {
		if n.ID == id {
			s.rows[i].AttemptCount++
			s.rows[i].LastError = attemptErr
			s.rows[i].UpdatedAt = failedAt
			if s.rows[i].AttemptCount >= maxAttempts {
				s.rows[i].Status = storage.NotificationDead
			}
			return nil
		}
	}
	return storage.ErrNotFound
}

type captureNotifier struct {
	announcements []Announcement
	err           error
}

func (n *captureNotifier) Announce(_ context.Context, a Announcement) error {
	if n.err != nil {
		return n.err
	}
	n.announcements = append(n.announcements, a)
	return nil
}

func enqueue(t *testing.T, outbox *fakeOutbox, kind event.Kind, bountyID int64) {
	t.Helper()

	err := outbox.EnqueueNotification(context.Background(), storage.NotificationRecord{
		Kind:     kind,
		BountyID: bountyID,
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
}

func TestDrainOnceDeliversPendingRows(t *testing.T) {
	outbox := &fakeOutbox{}
	sink := &captureNotifier{}
	d := NewDispatcher(outbox, sink, DispatcherConfig{})

	enqueue(t, outbox, event.KindBountyIssued, 1)
	enqueue(t, outbox, event.KindContributionAdded, 2)

	delivered, err := d.DrainOnce(context.Background())
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if delivered != 2 || len(sink.announcements) != 2 {
		t.Fatalf("expected two deliveries, got %d (%+v)", delivered, sink.announcements)
	}
	if sink.announcements[0].Kind != event.KindBountyIssued || sink.announcements[0].BountyID != 1 {
		t.Fatalf("unexpected first announcement: %+v", sink.announcements[0])
	}

	// A second drain finds nothing left.
	delivered, err = d.DrainOnce(context.Background())
	if err != nil {
		t.Fatalf("second drain: %v", err)
	}
	if delivered != 0 {
		t.Fatalf("expected empty queue, delivered %d", delivered)
	}
}

func TestDrainOnceRetriesFailedDeliveries(t *testing.T) {
	outbox := &fakeOutbox{}
	sink := &captureNotifier{err: errors.New("sink down")}
	d := NewDispatcher(outbox, sink, DispatcherConfig{MaxAttempts: 2})

	enqueue(t, outbox, event.KindBountyKilled, 1)

	if _, err := d.DrainOnce(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if outbox.rows[0].Status != storage.NotificationPending || outbox.rows[0].AttemptCount != 1 {
		t.Fatalf("expected retryable row, got %+v", outbox.rows[0])
	}

	// The sink recovers and the retry succeeds.
	sink.err = nil
	delivered, err := d.DrainOnce(context.Background())
	if err != nil {
		t.Fatalf("retry drain: %v", err)
	}
	if delivered != 1 || outbox.rows[0].Status != storage.NotificationSent {
		t.Fatalf("expected delivered row, got %+v", outbox.rows[0])
	}
}

func TestDrainOnceMovesExhaustedRowsToDead(t *testing.T) {
	outbox := &fakeOutbox{}
	sink := &captureNotifier{err: errors.New("sink down")}
	d := NewDispatcher(outbox, sink, DispatcherConfig{MaxAttempts: 2})

	enqueue(t, outbox, event.KindBountyFulfilled, 1)

	for range 2 {
		if _, err := d.DrainOnce(context.Background()); err != nil {
			t.Fatalf("drain: %v", err)
		}
	}
	if outbox.rows[0].Status != storage.NotificationDead {
		t.Fatalf("expected dead row, got %+v", outbox.rows[0])
	}

	// Dead rows never deliver, even after the sink recovers.
	sink.err = nil
	delivered, err := d.DrainOnce(context.Background())
	if err != nil {
		t.Fatalf("drain after recovery: %v", err)
	}
	if delivered != 0 {
		t.Fatalf("expected dead row skipped, delivered %d", delivered)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	outbox := &fakeOutbox{}
	d := NewDispatcher(outbox, &captureNotifier{}, DispatcherConfig{PollInterval: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected run loop to stop")
	}
}

func TestAnnouncementMessages(t *testing.T) {
	combined := Announcement{Kind: event.KindBountyIssued, Combined: true}
	if combined.Message() != "bounty issued and activated" {
		t.Fatalf("unexpected combined message %q", combined.Message())
	}
	plain := Announcement{Kind: event.KindFulfillmentAccepted}
	if plain.Message() != "fulfillment accepted" {
		t.Fatalf("unexpected message %q", plain.Message())
	}
	unknown := Announcement{Kind: event.Kind("mystery")}
	if unknown.Message() != "bounty updated" {
		t.Fatalf("unexpected fallback message %q", unknown.Message())
	}
}
