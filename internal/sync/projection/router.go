package projection

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync"

	apperrors "github.com/bountynet/bounties-sync/internal/platform/errors"
	"github.com/bountynet/bounties-sync/internal/sync/domain/event"
	"github.com/bountynet/bounties-sync/internal/sync/pricing"
	"github.com/bountynet/bounties-sync/internal/sync/storage"
)

// Outcome classifies what one dispatch did to the target aggregate.
type Outcome string

const (
	// OutcomeApplied means the event mutated the aggregate.
	OutcomeApplied Outcome = "applied"
	// OutcomeDuplicate means the event had already been absorbed; the
	// dispatch succeeded with no observable side effect.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeStale means the event was older than the aggregate watermark
	// and was dropped.
	OutcomeStale Outcome = "stale"
)

// AppliedChange reports the result of one dispatched event.
type AppliedChange struct {
	Kind          event.Kind
	BountyID      int64
	FulfillmentID int64
	Outcome       Outcome
	// Bounty is the aggregate state after the dispatch.
	Bounty storage.BountyRecord
}

// Router dispatches chain events to the registered applier by kind, checking
// aggregate preconditions before calling the handler. Typed handlers
// registered via handle receive auto-unmarshalled payloads.
type Router struct {
	store    storage.Store
	tokens   pricing.TokenSource
	handlers map[event.Kind]handlerEntry
	kinds    []event.Kind

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// handlerEntry declares the preconditions and apply function for one kind.
type handlerEntry struct {
	// creates marks the one kind allowed to target a missing aggregate.
	creates bool
	apply   func(*apply, context.Context, event.Event) error
}

// NewRouter creates a Router with all lifecycle and fulfillment handlers
// registered.
func NewRouter(store storage.Store, tokens pricing.TokenSource) *Router {
	r := &Router{
		store:    store,
		tokens:   tokens,
		handlers: make(map[event.Kind]handlerEntry),
		locks:    make(map[int64]*sync.Mutex),
	}
	registerHandlers(r)
	return r
}

// handle registers a typed handler for the given event kind. The handler
// receives a pre-unmarshalled payload; the event envelope is passed through
// for routing fields.
func handle[P any](r *Router, k event.Kind, creates bool,
	fn func(*apply, context.Context, event.Event, P) error) {
	r.handlers[k] = handlerEntry{
		creates: creates,
		apply: func(a *apply, ctx context.Context, evt event.Event) error {
			var payload P
			if len(evt.PayloadJSON) > 0 {
				if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
					return apperrors.Wrap(apperrors.CodeEventPayloadInvalid,
						"decode "+string(k)+" payload", err)
				}
			}
			return fn(a, ctx, evt, payload)
		},
	}
	r.kinds = append(r.kinds, k)
}

// HandledKinds returns all registered event kinds in registration order.
func (r *Router) HandledKinds() []event.Kind {
	return append([]event.Kind(nil), r.kinds...)
}

// lockFor returns the serialization lock for one bounty aggregate.
func (r *Router) lockFor(bountyID int64) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[bountyID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[bountyID] = l
	}
	return l
}

// Dispatch validates and applies one event. Events addressed to the same
// bounty are serialized; events for distinct bounties may run in parallel.
// The aggregate mutation and the announcement enqueue commit in one
// transaction; stale and duplicate events succeed without mutating anything.
func (r *Router) Dispatch(ctx context.Context, evt event.Event) (AppliedChange, error) {
	if err := evt.Validate(); err != nil {
		return AppliedChange{}, err
	}
	entry, ok := r.handlers[evt.Kind]
	if !ok {
		return AppliedChange{}, apperrors.WithMetadata(apperrors.CodeEventKindUnknown,
			"no handler for event kind", map[string]string{"kind": string(evt.Kind)})
	}

	lock := r.lockFor(evt.BountyID)
	lock.Lock()
	defer lock.Unlock()

	var change AppliedChange
	err := r.store.WithinTx(ctx, func(tx storage.Store) error {
		a := &apply{store: tx, tokens: r.tokens, change: AppliedChange{
			Kind:          evt.Kind,
			BountyID:      evt.BountyID,
			FulfillmentID: evt.FulfillmentID,
			Outcome:       OutcomeApplied,
		}}

		existing, err := tx.GetBounty(ctx, evt.BountyID)
		switch {
		case err == nil:
			a.bounty = existing
			a.found = true
		case apperrors.IsCode(err, apperrors.CodeNotFound):
			if !entry.creates {
				return apperrors.WithMetadata(apperrors.CodeNotFound,
					"event references unknown bounty",
					map[string]string{"bountyId": strconv.FormatInt(evt.BountyID, 10)})
			}
		default:
			return err
		}

		// Stale replay: strictly older than the watermark is dropped.
		if a.found && evt.Timestamp.Before(a.bounty.LastEventAt) {
			a.change.Outcome = OutcomeStale
			a.change.Bounty = a.bounty
			change = a.change
			return nil
		}

		if err := entry.apply(a, ctx, evt); err != nil {
			return err
		}

		if a.change.Outcome == OutcomeApplied {
			a.bounty.LastEventAt = evt.Timestamp
			a.bounty.UpdatedAt = evt.Timestamp
			if err := tx.PutBounty(ctx, a.bounty); err != nil {
				return err
			}
			if a.notify != "" {
				if err := tx.EnqueueNotification(ctx, storage.NotificationRecord{
					Kind:          a.notify,
					BountyID:      evt.BountyID,
					FulfillmentID: evt.FulfillmentID,
					Combined:      a.notifyCombined,
					Status:        storage.NotificationPending,
					CreatedAt:     evt.Timestamp,
					UpdatedAt:     evt.Timestamp,
				}); err != nil {
					return err
				}
			}
		}

		a.change.Bounty = a.bounty
		change = a.change
		return nil
	})
	if err != nil {
		return AppliedChange{}, err
	}

	if change.Outcome == OutcomeStale {
		log.Printf("drop stale %s for bounty %d: event at %s behind watermark %s",
			change.Kind, change.BountyID, evt.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
			change.Bounty.LastEventAt.UTC().Format("2006-01-02T15:04:05Z"))
	}
	return change, nil
}
