// Package notify delivers best-effort announcements for committed bounty
// changes. Delivery is decoupled from event application through the
// notification outbox: appliers enqueue rows inside the mutation transaction
// and the dispatcher drains them afterwards, so a committed change is never
// announced before it is visible and a failed delivery never blocks sync.
package notify

import (
	"context"
	"log"

	"github.com/bountynet/bounties-sync/internal/sync/domain/event"
)

// Announcement is one human-facing notice about a committed bounty change.
type Announcement struct {
	Kind          event.Kind
	BountyID      int64
	FulfillmentID int64
	// Combined marks a single notice covering an issue-and-activate pair.
	Combined bool
}

// Message renders the announcement headline.
func (a Announcement) Message() string {
	if a.Combined {
		return "bounty issued and activated"
	}
	switch a.Kind {
	case event.KindBountyIssued:
		return "bounty issued"
	case event.KindBountyActivated:
		return "bounty activated"
	case event.KindBountyKilled:
		return "bounty killed"
	case event.KindBountyChanged:
		return "bounty details changed"
	case event.KindIssuerTransferred:
		return "bounty transferred to a new issuer"
	case event.KindContributionAdded:
		return "contribution added"
	case event.KindDeadlineExtended:
		return "deadline extended"
	case event.KindPayoutIncreased:
		return "payout increased"
	case event.KindBountyFulfilled:
		return "bounty fulfilled"
	case event.KindFulfillmentUpdated:
		return "fulfillment updated"
	case event.KindFulfillmentAccepted:
		return "fulfillment accepted"
	}
	return "bounty updated"
}

// Notifier delivers one announcement to an external channel.
type Notifier interface {
	Announce(ctx context.Context, a Announcement) error
}

// LogNotifier writes announcements to the process log. It is the default
// sink when no external channel is configured.
type LogNotifier struct{}

// Announce implements Notifier.
func (LogNotifier) Announce(_ context.Context, a Announcement) error {
	if a.Kind.IsFulfillment() {
		log.Printf("announce bounty %d fulfillment %d: %s", a.BountyID, a.FulfillmentID, a.Message())
		return nil
	}
	log.Printf("announce bounty %d: %s", a.BountyID, a.Message())
	return nil
}
