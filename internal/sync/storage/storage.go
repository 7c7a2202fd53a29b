// Package storage defines the persistence boundary for the materialized
// bounty view. Implementations must be transactional: every event application
// commits fully or not at all.
package storage

import (
	"context"
	"time"

	apperrors "github.com/bountynet/bounties-sync/internal/platform/errors"
	"github.com/bountynet/bounties-sync/internal/sync/domain/bounty"
	"github.com/bountynet/bounties-sync/internal/sync/domain/event"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such aggregate"
// states and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// BountyRecord captures the materialized bounty aggregate that catalog and
// search views read.
type BountyRecord struct {
	BountyID      int64
	Stage         bounty.Stage
	Issuer        string
	Deadline      time.Time
	PaysTokens    bool
	TokenSymbol   string
	TokenDecimals int
	// FulfillmentAmount is the raw integer payout per accepted fulfillment.
	FulfillmentAmount decimal.Decimal
	// USDPrice is the cached conversion of FulfillmentAmount at the
	// registry rate current when the amount last changed.
	USDPrice decimal.Decimal
	// Balance is the raw integer funding accumulated via contributions.
	Balance decimal.Decimal
	// DataHash points at the content-addressed metadata document.
	DataHash string
	// Title, Description, IssuerName and IssuerEmail are filled in after
	// commit by the metadata resolver collaborator; empty until enrichment
	// runs. IssuerName/IssuerEmail describe the issuer from the document;
	// Issuer stays the authoritative chain address.
	Title       string
	Description string
	IssuerName  string
	IssuerEmail string
	// LastEventAt is the ordering watermark: the chain timestamp of the
	// last successfully applied event.
	LastEventAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FulfillmentRecord captures one fulfillment sub-aggregate scoped to a bounty.
type FulfillmentRecord struct {
	BountyID      int64
	FulfillmentID int64
	Fulfiller     string
	// Accepted is monotonic: once true it never resets.
	Accepted bool
	DataHash string
	// Description, FulfillerName and FulfillerEmail are filled in after
	// commit by the metadata resolver. Fulfiller stays the authoritative
	// chain address.
	Description    string
	FulfillerName  string
	FulfillerEmail string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BountyMetadata carries the resolved display fields of a bounty document.
type BountyMetadata struct {
	Title       string
	Description string
	IssuerName  string
	IssuerEmail string
}

// FulfillmentMetadata carries the resolved display fields of a fulfillment
// document.
type FulfillmentMetadata struct {
	Description    string
	FulfillerName  string
	FulfillerEmail string
}

// TokenRecord captures one oracle-fed token registry row.
type TokenRecord struct {
	Symbol    string
	Decimals  int
	PriceUSD  decimal.Decimal
	UpdatedAt time.Time
}

// Notification outbox statuses.
const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationDead    = "dead"
)

// NotificationRecord is one post-commit announcement waiting for best-effort
// delivery. Rows are enqueued in the same transaction as the state change
// they announce, so delivery never observes uncommitted state.
type NotificationRecord struct {
	ID            int64
	Kind          event.Kind
	BountyID      int64
	FulfillmentID int64
	// Combined marks an issue-and-activate announcement covering both steps.
	Combined     bool
	Status       string
	AttemptCount int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BountyStore owns the bounty aggregates the lifecycle machine mutates.
type BountyStore interface {
	PutBounty(ctx context.Context, b BountyRecord) error
	GetBounty(ctx context.Context, bountyID int64) (BountyRecord, error)
	// ListBounties returns up to limit records with bounty id greater than
	// afterID, ordered by bounty id ascending.
	ListBounties(ctx context.Context, afterID int64, limit int) ([]BountyRecord, error)
	// SetBountyMetadata updates enrichment fields without touching
	// lifecycle or monetary state.
	SetBountyMetadata(ctx context.Context, bountyID int64, meta BountyMetadata) error
}

// FulfillmentStore owns fulfillment sub-aggregates scoped to a bounty.
type FulfillmentStore interface {
	PutFulfillment(ctx context.Context, f FulfillmentRecord) error
	GetFulfillment(ctx context.Context, bountyID, fulfillmentID int64) (FulfillmentRecord, error)
	ListFulfillments(ctx context.Context, bountyID int64) ([]FulfillmentRecord, error)
	// SetFulfillmentMetadata updates enrichment fields only.
	SetFulfillmentMetadata(ctx context.Context, bountyID, fulfillmentID int64, meta FulfillmentMetadata) error
}

// TokenStore owns the token registry rows written by the oracle collaborator.
type TokenStore interface {
	PutToken(ctx context.Context, t TokenRecord) error
	GetToken(ctx context.Context, symbol string) (TokenRecord, error)
	ListTokens(ctx context.Context) ([]TokenRecord, error)
}

// NotificationOutboxStore owns the best-effort announcement queue.
type NotificationOutboxStore interface {
	EnqueueNotification(ctx context.Context, n NotificationRecord) error
	// ListPendingNotifications returns up to limit pending rows ordered by id.
	ListPendingNotifications(ctx context.Context, limit int) ([]NotificationRecord, error)
	// MarkNotificationSent finalizes a delivered row.
	MarkNotificationSent(ctx context.Context, id int64, sentAt time.Time) error
	// MarkNotificationFailed records a failed attempt; rows past maxAttempts
	// move to the dead status.
	MarkNotificationFailed(ctx context.Context, id int64, attemptErr string, maxAttempts int, failedAt time.Time) error
}

// Store is the composite persistence boundary for the sync engine.
type Store interface {
	BountyStore
	FulfillmentStore
	TokenStore
	NotificationOutboxStore
	// WithinTx runs fn against a transactional view of the store; all
	// writes inside fn commit together or roll back together.
	WithinTx(ctx context.Context, fn func(Store) error) error
	Close() error
}
