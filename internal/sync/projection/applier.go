package projection

import (
	"context"
	"time"

	"github.com/bountynet/bounties-sync/internal/sync/domain/event"
	"github.com/bountynet/bounties-sync/internal/sync/pricing"
	"github.com/bountynet/bounties-sync/internal/sync/storage"
)

// apply carries the per-dispatch state shared between the router and the
// kind-specific appliers. It lives for exactly one transaction.
type apply struct {
	store  storage.Store
	tokens pricing.TokenSource

	bounty storage.BountyRecord
	found  bool

	change AppliedChange
	// notify names the announcement to enqueue on commit; empty suppresses it.
	notify event.Kind
	// notifyCombined marks an issue-and-activate announcement.
	notifyCombined bool
}

// noop downgrades the dispatch to an idempotent duplicate; nothing is
// persisted and no announcement is enqueued.
func (a *apply) noop() {
	a.change.Outcome = OutcomeDuplicate
	a.notify = ""
	a.notifyCombined = false
}

// repriceBounty recomputes the cached USD figure for the current payout at
// the registry rate. An unregistered token degrades the price to zero.
func (a *apply) repriceBounty(ctx context.Context) error {
	price, _, err := pricing.ForToken(ctx, a.tokens,
		a.bounty.TokenSymbol, a.bounty.TokenDecimals, a.bounty.FulfillmentAmount.String())
	if err != nil {
		return err
	}
	a.bounty.USDPrice = price
	return nil
}

func registerHandlers(r *Router) {
	handle(r, event.KindBountyIssued, true, (*apply).applyIssued)
	handle(r, event.KindBountyActivated, false, (*apply).applyActivated)
	handle(r, event.KindBountyKilled, false, (*apply).applyKilled)
	handle(r, event.KindBountyChanged, false, (*apply).applyChanged)
	handle(r, event.KindIssuerTransferred, false, (*apply).applyIssuerTransferred)
	handle(r, event.KindContributionAdded, false, (*apply).applyContributionAdded)
	handle(r, event.KindDeadlineExtended, false, (*apply).applyDeadlineExtended)
	handle(r, event.KindPayoutIncreased, false, (*apply).applyPayoutIncreased)
	handle(r, event.KindBountyFulfilled, false, (*apply).applyFulfilled)
	handle(r, event.KindFulfillmentUpdated, false, (*apply).applyFulfillmentUpdated)
	handle(r, event.KindFulfillmentAccepted, false, (*apply).applyFulfillmentAccepted)
}

// unixSeconds converts a chain timestamp to UTC time.
func unixSeconds(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}
