package event

// Payload shapes are closed per event kind. The router unmarshals the
// envelope's PayloadJSON into exactly one of these before dispatching, so
// handlers never inspect an open-ended field bag.

// IssuedPayload carries the initial bounty attributes from bounty_issued.
type IssuedPayload struct {
	// Issuer is the address that issued the bounty.
	Issuer string `json:"issuer"`
	// Deadline is the bounty deadline as a unix timestamp in seconds.
	Deadline int64 `json:"deadline"`
	// PaysTokens distinguishes fungible-token payouts from native currency.
	PaysTokens bool `json:"paysTokens"`
	// TokenSymbol names the payout token (empty for native currency).
	TokenSymbol string `json:"tokenSymbol"`
	// TokenDecimals is the token's decimal precision.
	TokenDecimals int `json:"tokenDecimals"`
	// FulfillmentAmount is the raw integer payout per accepted fulfillment,
	// as a decimal string of arbitrary precision.
	FulfillmentAmount string `json:"fulfillmentAmount"`
	// IssueAndActivate marks a bounty created directly in the active stage.
	IssueAndActivate bool `json:"issueAndActivate"`
	// DataHash is the content hash of the bounty metadata document.
	DataHash string `json:"data,omitempty"`
}

// ActivatedPayload carries bounty_activated fields.
type ActivatedPayload struct {
	// IssueAndActivate marks the activation that accompanied issuance; the
	// announcement then covers both steps at once.
	IssueAndActivate bool `json:"issueAndActivate"`
}

// FulfilledPayload carries bounty_fulfilled fields.
type FulfilledPayload struct {
	// Fulfiller is the address that submitted the fulfillment.
	Fulfiller string `json:"fulfiller"`
	// DataHash is the content hash of the fulfillment metadata document.
	DataHash string `json:"data,omitempty"`
}

// FulfillmentUpdatedPayload carries fulfillment_updated fields.
type FulfillmentUpdatedPayload struct {
	// DataHash replaces the fulfillment metadata pointer.
	DataHash string `json:"data,omitempty"`
}

// FulfillmentAcceptedPayload carries fulfillment_accepted fields.
// Acceptance has no payload data beyond the envelope.
type FulfillmentAcceptedPayload struct{}

// KilledPayload carries bounty_killed fields.
// Kills have no payload data beyond the envelope.
type KilledPayload struct{}

// ContributionPayload carries contribution_added fields.
type ContributionPayload struct {
	// Amount is the raw integer contribution, as a decimal string.
	Amount string `json:"amount"`
	// IssueAndActivate marks the contribution bundled into an
	// issue-and-activate transaction; it is not separately announced.
	IssueAndActivate bool `json:"issueAndActivate"`
}

// DeadlineExtendedPayload carries deadline_extended fields.
type DeadlineExtendedPayload struct {
	// NewDeadline is the replacement deadline as a unix timestamp in seconds.
	NewDeadline int64 `json:"newDeadline"`
}

// ChangedPayload carries bounty_changed fields.
type ChangedPayload struct {
	// DataHash replaces the bounty metadata pointer.
	DataHash string `json:"data,omitempty"`
}

// IssuerTransferredPayload carries issuer_transferred fields.
type IssuerTransferredPayload struct {
	// NewIssuer is the address taking over the bounty.
	NewIssuer string `json:"newIssuer"`
}

// PayoutIncreasedPayload carries payout_increased fields.
type PayoutIncreasedPayload struct {
	// NewFulfillmentAmount is the raised raw payout, as a decimal string.
	NewFulfillmentAmount string `json:"newFulfillmentAmount"`
}
