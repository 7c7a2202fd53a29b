package projection

import (
	"context"
	"strconv"
	"strings"

	apperrors "github.com/bountynet/bounties-sync/internal/platform/errors"
	"github.com/bountynet/bounties-sync/internal/sync/domain/event"
	"github.com/bountynet/bounties-sync/internal/sync/storage"
)

// requireActiveForFulfillment gates every fulfillment kind on an active bounty.
func (a *apply) requireActiveForFulfillment(kind event.Kind) error {
	if !a.bounty.Stage.AllowsFunding() {
		return apperrors.WithMetadata(apperrors.CodeFulfillmentNotActive,
			"fulfillments require an active bounty",
			map[string]string{"stage": string(a.bounty.Stage), "kind": string(kind)})
	}
	return nil
}

// getFulfillment loads the targeted fulfillment, mapping absence to a
// not-found error carrying both ids.
func (a *apply) getFulfillment(ctx context.Context, evt event.Event) (storage.FulfillmentRecord, error) {
	f, err := a.store.GetFulfillment(ctx, evt.BountyID, evt.FulfillmentID)
	if apperrors.IsCode(err, apperrors.CodeNotFound) {
		return storage.FulfillmentRecord{}, apperrors.WithMetadata(apperrors.CodeNotFound,
			"event references unknown fulfillment",
			map[string]string{
				"bountyId":      strconv.FormatInt(evt.BountyID, 10),
				"fulfillmentId": strconv.FormatInt(evt.FulfillmentID, 10),
			})
	}
	return f, err
}

func (a *apply) applyFulfilled(ctx context.Context, evt event.Event, payload event.FulfilledPayload) error {
	if err := a.requireActiveForFulfillment(evt.Kind); err != nil {
		return err
	}
	// Re-submitting an existing fulfillment id absorbs feed replay the same
	// way re-issuing a bounty does.
	if _, err := a.store.GetFulfillment(ctx, evt.BountyID, evt.FulfillmentID); err == nil {
		a.noop()
		return nil
	} else if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		return err
	}

	fulfiller := strings.TrimSpace(payload.Fulfiller)
	if fulfiller == "" {
		return apperrors.New(apperrors.CodeEventPayloadInvalid, "fulfiller address is required")
	}

	if err := a.store.PutFulfillment(ctx, storage.FulfillmentRecord{
		BountyID:      evt.BountyID,
		FulfillmentID: evt.FulfillmentID,
		Fulfiller:     fulfiller,
		DataHash:      strings.TrimSpace(payload.DataHash),
		CreatedAt:     evt.Timestamp,
		UpdatedAt:     evt.Timestamp,
	}); err != nil {
		return err
	}
	a.notify = event.KindBountyFulfilled
	return nil
}

func (a *apply) applyFulfillmentUpdated(ctx context.Context, evt event.Event, payload event.FulfillmentUpdatedPayload) error {
	if err := a.requireActiveForFulfillment(evt.Kind); err != nil {
		return err
	}
	f, err := a.getFulfillment(ctx, evt)
	if err != nil {
		return err
	}
	if hash := strings.TrimSpace(payload.DataHash); hash != "" {
		f.DataHash = hash
	}
	f.UpdatedAt = evt.Timestamp
	if err := a.store.PutFulfillment(ctx, f); err != nil {
		return err
	}
	a.notify = event.KindFulfillmentUpdated
	return nil
}

func (a *apply) applyFulfillmentAccepted(ctx context.Context, evt event.Event, _ event.FulfillmentAcceptedPayload) error {
	if err := a.requireActiveForFulfillment(evt.Kind); err != nil {
		return err
	}
	f, err := a.getFulfillment(ctx, evt)
	if err != nil {
		return err
	}
	// Acceptance is monotonic; re-accepting is a no-op, not an error.
	if f.Accepted {
		a.noop()
		return nil
	}
	f.Accepted = true
	f.UpdatedAt = evt.Timestamp
	if err := a.store.PutFulfillment(ctx, f); err != nil {
		return err
	}
	a.notify = event.KindFulfillmentAccepted
	return nil
}
