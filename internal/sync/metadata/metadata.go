// Package metadata resolves content-addressed bounty documents and folds
// their display fields into the materialized view. Resolution happens after
// the owning event commits: a gateway outage delays titles and descriptions
// but never blocks or fails event application.
package metadata

import "context"

// BountyData carries the display fields of a bounty metadata document,
// including the issuer block the document embeds.
type BountyData struct {
	Title       string
	Description string
	IssuerName  string
	IssuerEmail string
}

// FulfillmentData carries the display fields of a fulfillment document,
// including the fulfiller block the document embeds.
type FulfillmentData struct {
	Description    string
	FulfillerName  string
	FulfillerEmail string
}

// Resolver fetches metadata documents by content hash.
type Resolver interface {
	ResolveBounty(ctx context.Context, dataHash string) (BountyData, error)
	ResolveFulfillment(ctx context.Context, dataHash string) (FulfillmentData, error)
}
