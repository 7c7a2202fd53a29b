package metadata

import (
	"context"
	"fmt"
	"log"

	"github.com/bountynet/bounties-sync/internal/sync/domain/event"
	"github.com/bountynet/bounties-sync/internal/sync/projection"
	"github.com/bountynet/bounties-sync/internal/sync/storage"
)

// EnrichmentStore is the slice of the storage boundary enrichment writes to.
type EnrichmentStore interface {
	SetBountyMetadata(ctx context.Context, bountyID int64, meta storage.BountyMetadata) error
	GetFulfillment(ctx context.Context, bountyID, fulfillmentID int64) (storage.FulfillmentRecord, error)
	SetFulfillmentMetadata(ctx context.Context, bountyID, fulfillmentID int64, meta storage.FulfillmentMetadata) error
}

// Enricher fills display fields after a dispatch commits. Only the kinds that
// introduce or replace a data hash trigger a resolution.
type Enricher struct {
	store    EnrichmentStore
	resolver Resolver
}

// NewEnricher creates an Enricher over the given store and resolver.
func NewEnricher(store EnrichmentStore, resolver Resolver) *Enricher {
	return &Enricher{store: store, resolver: resolver}
}

// Apply resolves and persists display fields for one committed change.
// Resolution failures are reported but leave the aggregate readable with its
// previous fields.
func (e *Enricher) Apply(ctx context.Context, change projection.AppliedChange) error {
	if e == nil || e.store == nil || e.resolver == nil {
		return nil
	}
	if change.Outcome != projection.OutcomeApplied {
		return nil
	}

	switch change.Kind {
	case event.KindBountyIssued, event.KindBountyChanged:
		return e.enrichBounty(ctx, change)
	case event.KindBountyFulfilled, event.KindFulfillmentUpdated:
		return e.enrichFulfillment(ctx, change)
	}
	return nil
}

func (e *Enricher) enrichBounty(ctx context.Context, change projection.AppliedChange) error {
	if change.Bounty.DataHash == "" {
		return nil
	}
	data, err := e.resolver.ResolveBounty(ctx, change.Bounty.DataHash)
	if err != nil {
		log.Printf("resolve bounty %d metadata: %v", change.BountyID, err)
		return nil
	}
	meta := storage.BountyMetadata{
		Title:       data.Title,
		Description: data.Description,
		IssuerName:  data.IssuerName,
		IssuerEmail: data.IssuerEmail,
	}
	if err := e.store.SetBountyMetadata(ctx, change.BountyID, meta); err != nil {
		return fmt.Errorf("set bounty %d metadata: %w", change.BountyID, err)
	}
	return nil
}

func (e *Enricher) enrichFulfillment(ctx context.Context, change projection.AppliedChange) error {
	f, err := e.store.GetFulfillment(ctx, change.BountyID, change.FulfillmentID)
	if err != nil {
		return fmt.Errorf("load fulfillment %d/%d: %w", change.BountyID, change.FulfillmentID, err)
	}
	if f.DataHash == "" {
		return nil
	}
	data, err := e.resolver.ResolveFulfillment(ctx, f.DataHash)
	if err != nil {
		log.Printf("resolve fulfillment %d/%d metadata: %v", change.BountyID, change.FulfillmentID, err)
		return nil
	}
	meta := storage.FulfillmentMetadata{
		Description:    data.Description,
		FulfillerName:  data.FulfillerName,
		FulfillerEmail: data.FulfillerEmail,
	}
	if err := e.store.SetFulfillmentMetadata(ctx, change.BountyID, change.FulfillmentID, meta); err != nil {
		return fmt.Errorf("set fulfillment %d/%d metadata: %w", change.BountyID, change.FulfillmentID, err)
	}
	return nil
}
