package projection

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bountynet/bounties-sync/internal/sync/domain/token"
	"github.com/bountynet/bounties-sync/internal/sync/storage"
)

type fulfillmentKey struct {
	bountyID      int64
	fulfillmentID int64
}

// fakeStore is an in-memory storage.Store. WithinTx runs the function
// directly; transactional isolation is covered by the sqlite store tests.
type fakeStore struct {
	bounties      map[int64]storage.BountyRecord
	fulfillments  map[fulfillmentKey]storage.FulfillmentRecord
	tokens        map[string]storage.TokenRecord
	notifications []storage.NotificationRecord

	putBountyErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bounties:     make(map[int64]storage.BountyRecord),
		fulfillments: make(map[fulfillmentKey]storage.FulfillmentRecord),
		tokens:       make(map[string]storage.TokenRecord),
	}
}

func (s *fakeStore) PutBounty(_ context.Context, b storage.BountyRecord) error {
	if s.putBountyErr != nil {
		return s.putBountyErr
	}
	s.bounties[b.BountyID] = b
	return nil
}

func (s *fakeStore) GetBounty(_ context.Context, bountyID int64) (storage.BountyRecord, error) {
	b, ok := s.bounties[bountyID]
	if !ok {
		return storage.BountyRecord{}, storage.ErrNotFound
	}
	return b, nil
}

func (s *fakeStore) ListBounties(_ context.Context, afterID int64, limit int) ([]storage.BountyRecord, error) {
	ids := make([]int64, 0, len(s.bounties))
	for id := range s.bounties {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	records := make([]storage.BountyRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, s.bounties[id])
	}
	return records, nil
}

func (s *fakeStore) SetBountyMetadata(_ context.Context, bountyID int64, meta storage.BountyMetadata) error {
	b, ok := s.bounties[bountyID]
	if !ok {
		return storage.ErrNotFound
	}
	b.Title = meta.Title
	b.Description = meta.Description
	b.IssuerName = meta.IssuerName
	b.IssuerEmail = meta.IssuerEmail
	s.bounties[bountyID] = b
	return nil
}

func (s *fakeStore) PutFulfillment(_ context.Context, f storage.FulfillmentRecord) error {
	s.fulfillments[fulfillmentKey{f.BountyID, f.FulfillmentID}] = f
	return nil
}

func (s *fakeStore) GetFulfillment(_ context.Context, bountyID, fulfillmentID int64) (storage.FulfillmentRecord, error) {
	f, ok := s.fulfillments[fulfillmentKey{bountyID, fulfillmentID}]
	if !ok {
		return storage.FulfillmentRecord{}, storage.ErrNotFound
	}
	return f, nil
}

func (s *fakeStore) ListFulfillments(_ context.Context, bountyID int64) ([]storage.FulfillmentRecord, error) {
	var records []storage.FulfillmentRecord
	for key, f := range s.fulfillments {
		if key.bountyID == bountyID {
			records = append(records, f)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].FulfillmentID < records[j].FulfillmentID })
	return records, nil
}

func (s *fakeStore) SetFulfillmentMetadata(_ context.Context, bountyID, fulfillmentID int64, meta storage.FulfillmentMetadata) error {
	key := fulfillmentKey{bountyID, fulfillmentID}
	f, ok := s.fulfillments[key]
	if !ok {
		return storage.ErrNotFound
	}
	f.Description = meta.Description
	f.FulfillerName = meta.FulfillerName
	f.FulfillerEmail = meta.FulfillerEmail
	s.fulfillments[key] = f
	return nil
}

func (s *fakeStore) PutToken(_ context.Context, t storage.TokenRecord) error {
	s.tokens[t.Symbol] = t
	return nil
}

func (s *fakeStore) GetToken(_ context.Context, symbol string) (storage.TokenRecord, error) {
	t, ok := s.tokens[symbol]
	if !ok {
		return storage.TokenRecord{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *fakeStore) ListTokens(_ context.Context) ([]storage.TokenRecord, error) {
	records := make([]storage.TokenRecord, 0, len(s.tokens))
	for _, t := range s.tokens {
		records = append(records, t)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Symbol < records[j].Symbol })
	return records, nil
}

func (s *fakeStore) EnqueueNotification(_ context.Context, n storage.NotificationRecord) error {
	n.ID = int64(len(s.notifications) + 1)
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *fakeStore) ListPendingNotifications(_ context.Context, limit int) ([]storage.NotificationRecord, error) {
	var records []storage.NotificationRecord
	for _, n := range s.notifications {
		if n.Status == storage.NotificationPending {
			records = append(records, n)
		}
		if limit > 0 && len(records) == limit {
			break
		}
	}
	return records, nil
}

func (s *fakeStore) MarkNotificationSent(_ context.Context, id int64, sentAt time.Time) error {
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications[i].Status = storage.NotificationSent
			s.notifications[i].UpdatedAt = sentAt
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeStore) MarkNotificationFailed(_ context.Context, id int64, attemptErr string, maxAttempts int, failedAt time.Time) error {
	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications[i].AttemptCount++
			s.notifications[i].LastError = attemptErr
			s.notifications[i].UpdatedAt = failedAt
			if s.notifications[i].AttemptCount >= maxAttempts {
				s.notifications[i].Status = storage.NotificationDead
			}
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeStore) WithinTx(_ context.Context, fn func(storage.Store) error) error {
	return fn(s)
}

func (s *fakeStore) Close() error { return nil }

// fakeTokens is an in-memory pricing.TokenSource keyed by symbol.
type fakeTokens struct {
	registered map[string]token.Token
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{registered: make(map[string]token.Token)}
}

func (f *fakeTokens) add(symbol string, decimals int, rate string) {
	symbol = token.NormalizeSymbol(symbol)
	f.registered[symbol] = token.Token{
		Symbol:   symbol,
		Decimals: decimals,
		PriceUSD: decimal.RequireFromString(rate),
	}
}

func (f *fakeTokens) Lookup(_ context.Context, symbol string) (token.Token, bool, error) {
	t, ok := f.registered[token.NormalizeSymbol(symbol)]
	return t, ok, nil
}
