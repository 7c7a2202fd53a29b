package event

import (
	apperrors "github.com/bountynet/bounties-sync/internal/platform/errors"
)

var (
	// ErrKindUnknown indicates an event kind outside the closed set.
	ErrKindUnknown = apperrors.New(apperrors.CodeEventKindUnknown, "event kind is unknown")
	// ErrMissingBountyID indicates an event without a target bounty.
	ErrMissingBountyID = apperrors.New(apperrors.CodeEventMissingBountyID, "event bounty id is required")
	// ErrMissingTimestamp indicates an event without a chain timestamp.
	ErrMissingTimestamp = apperrors.New(apperrors.CodeEventMissingTimestamp, "event timestamp is required")
	// ErrPayloadInvalid indicates a payload that does not match the kind's shape.
	ErrPayloadInvalid = apperrors.New(apperrors.CodeEventPayloadInvalid, "event payload does not match kind")
)

// Validate checks the envelope routing fields. Payload shape is checked at
// dispatch time when the kind-specific struct is decoded.
func (e Event) Validate() error {
	if !e.Kind.IsValid() {
		return ErrKindUnknown.WithMeta(map[string]string{"kind": string(e.Kind)})
	}
	// On-chain bounty ids are zero-based; only negatives are malformed.
	if e.BountyID < 0 {
		return ErrMissingBountyID
	}
	if e.Timestamp.IsZero() {
		return ErrMissingTimestamp
	}
	if e.Kind.IsFulfillment() && e.FulfillmentID < 0 {
		return ErrPayloadInvalid.WithMeta(map[string]string{"field": "fulfillmentId"})
	}
	return nil
}
