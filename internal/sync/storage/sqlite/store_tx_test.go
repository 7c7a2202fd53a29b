package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/bountynet/bounties-sync/internal/sync/storage"
)

func TestWithinTxCommitsWrites(t *testing.T) {
	store := openTestStore(t)

	err := store.WithinTx(context.Background(), func(tx storage.Store) error {
		if err := tx.PutBounty(context.Background(), testBountyRecord(1)); err != nil {
			return err
		}
		return tx.PutFulfillment(context.Background(), testFulfillmentRecord(1, 0))
	})
	if err != nil {
		t.Fatalf("within tx: %v", err)
	}

	if _, err := store.GetBounty(context.Background(), 1); err != nil {
		t.Fatalf("get bounty after commit: %v", err)
	}
	if _, err := store.GetFulfillment(context.Background(), 1, 0); err != nil {
		t.Fatalf("get fulfillment after commit: %v", err)
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	store := openTestStore(t)
	boom := errors.New("boom")

	err := store.WithinTx(context.Background(), func(tx storage.Store) error {
		if err := tx.PutBounty(context.Background(), testBountyRecord(2)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}

	if _, err := store.GetBounty(context.Background(), 2); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected rolled back bounty to be missing, got %v", err)
	}
}

func TestWithinTxNestedJoinsEnclosing(t *testing.T) {
	store := openTestStore(t)
	boom := errors.New("boom")

	err := store.WithinTx(context.Background(), func(tx storage.Store) error {
		if err := tx.PutBounty(context.Background(), testBountyRecord(3)); err != nil {
			return err
		}
		return tx.WithinTx(context.Background(), func(inner storage.Store) error {
			if err := inner.PutBounty(context.Background(), testBountyRecord(4)); err != nil {
				return err
			}
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}

	// The inner failure aborts the whole enclosing transaction.
	if _, err := store.GetBounty(context.Background(), 3); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected outer write rolled back, got %v", err)
	}
	if _, err := store.GetBounty(context.Background(), 4); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected inner write rolled back, got %v", err)
	}
}
