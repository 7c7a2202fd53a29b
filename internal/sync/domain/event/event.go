// Package event defines the chain event envelope consumed by the sync engine.
package event

import (
	"strings"
	"time"
)

// Kind identifies the kind of an on-chain bounty event.
type Kind string

// Bounty lifecycle events.
const (
	// KindBountyIssued records the creation of a bounty.
	KindBountyIssued Kind = "bounty_issued"
	// KindBountyActivated records a draft bounty going live.
	KindBountyActivated Kind = "bounty_activated"
	// KindBountyKilled records a bounty being terminated by its issuer.
	KindBountyKilled Kind = "bounty_killed"
	// KindBountyChanged records a metadata change on a bounty.
	KindBountyChanged Kind = "bounty_changed"
	// KindIssuerTransferred records issuer ownership moving to a new address.
	KindIssuerTransferred Kind = "issuer_transferred"
	// KindContributionAdded records funds added to the bounty balance.
	KindContributionAdded Kind = "contribution_added"
	// KindDeadlineExtended records a deadline moving forward in time.
	KindDeadlineExtended Kind = "deadline_extended"
	// KindPayoutIncreased records a raise of the per-fulfillment payout.
	KindPayoutIncreased Kind = "payout_increased"
)

// Fulfillment events.
const (
	// KindBountyFulfilled records a new fulfillment submitted against a bounty.
	KindBountyFulfilled Kind = "bounty_fulfilled"
	// KindFulfillmentUpdated records an update to a submitted fulfillment.
	KindFulfillmentUpdated Kind = "fulfillment_updated"
	// KindFulfillmentAccepted records the issuer accepting a fulfillment.
	KindFulfillmentAccepted Kind = "fulfillment_accepted"
)

// Event is one finalized chain event addressed to a single bounty aggregate.
// The upstream feed has already filtered to trusted, finalized events; the
// envelope carries routing fields and a kind-specific JSON payload.
type Event struct {
	// Kind identifies the kind of event.
	Kind Kind
	// BountyID is the on-chain bounty the event is addressed to.
	BountyID int64
	// FulfillmentID scopes fulfillment events within the bounty.
	// Meaningful only for fulfillment kinds.
	FulfillmentID int64
	// Timestamp is the chain timestamp of the event, used as the
	// staleness watermark for the target aggregate.
	Timestamp time.Time
	// PayloadJSON holds kind-specific data as JSON.
	PayloadJSON []byte
}

// IsValid reports whether the event kind is one of the known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindBountyIssued, KindBountyActivated, KindBountyKilled,
		KindBountyChanged, KindIssuerTransferred, KindContributionAdded,
		KindDeadlineExtended, KindPayoutIncreased,
		KindBountyFulfilled, KindFulfillmentUpdated, KindFulfillmentAccepted:
		return true
	}
	return false
}

// IsFulfillment reports whether the kind targets a fulfillment sub-aggregate.
func (k Kind) IsFulfillment() bool {
	switch k {
	case KindBountyFulfilled, KindFulfillmentUpdated, KindFulfillmentAccepted:
		return true
	}
	return false
}

// NormalizeKind canonicalizes feed kind labels.
func NormalizeKind(value string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(value)))
	if !k.IsValid() {
		return "", false
	}
	return k, true
}
