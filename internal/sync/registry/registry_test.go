package registry

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bountynet/bounties-sync/internal/sync/domain/token"
	"github.com/bountynet/bounties-sync/internal/sync/storage"
)

type fakeTokenStore struct {
	tokens map[string]storage.TokenRecord
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]storage.TokenRecord)}
}

func (s *fakeTokenStore) PutToken(_ context.Context, t storage.TokenRecord) error {
	s.tokens[t.Symbol] = t
	return nil
}

func (s *fakeTokenStore) GetToken(_ context.Context, symbol string) (storage.TokenRecord, error) {
	t, ok := s.tokens[symbol]
	if !ok {
		return storage.TokenRecord{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *fakeTokenStore) ListTokens(_ context.Context) ([]storage.TokenRecord, error) {
	records := make([]storage.TokenRecord, 0, len(s.tokens))
	for _, t := range s.tokens {
		records = append(records, t)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Symbol < records[j].Symbol })
	return records, nil
}

func TestUpsertNormalizesSymbol(t *testing.T) {
	r := New(newFakeTokenStore())

	got, err := r.Upsert(context.Background(), " dai ", 18, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got.Symbol != "DAI" {
		t.Fatalf("expected normalized symbol DAI, got %q", got.Symbol)
	}

	found, ok, err := r.Lookup(context.Background(), "dai")
	if err != nil || !ok {
		t.Fatalf("expected lookup hit, got ok=%v err=%v", ok, err)
	}
	if found.Decimals != 18 || !found.PriceUSD.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unexpected token: %+v", found)
	}
}

func TestUpsertValidation(t *testing.T) {
	r := New(newFakeTokenStore())

	if _, err := r.Upsert(context.Background(), "  ", 18, decimal.NewFromInt(1)); err == nil {
		t.Fatal("expected empty symbol to fail")
	}
	if _, err := r.Upsert(context.Background(), "DAI", -1, decimal.NewFromInt(1)); err == nil {
		t.Fatal("expected negative decimals to fail")
	}
	if _, err := r.Upsert(context.Background(), "DAI", 18, decimal.NewFromInt(-1)); err == nil {
		t.Fatal("expected negative rate to fail")
	}
}

func TestUpsertRateIsLastWriteWins(t *testing.T) {
	r := New(newFakeTokenStore())

	if _, err := r.Upsert(context.Background(), "ETH", 18, decimal.NewFromInt(600)); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := r.Upsert(context.Background(), "ETH", 18, decimal.NewFromInt(700)); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, ok, err := r.Lookup(context.Background(), "ETH")
	if err != nil || !ok {
		t.Fatalf("expected lookup hit, got ok=%v err=%v", ok, err)
	}
	if !got.PriceUSD.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("expected latest rate 700, got %s", got.PriceUSD)
	}
}

func TestUpsertRejectsDecimalsChange(t *testing.T) {
	r := New(newFakeTokenStore())

	if _, err := r.Upsert(context.Background(), "ETH", 18, decimal.NewFromInt(600)); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	_, err := r.Upsert(context.Background(), "ETH", 8, decimal.NewFromInt(600))
	if !errors.Is(err, token.ErrDecimalsConflict) {
		t.Fatalf("expected decimals conflict, got %v", err)
	}

	got, ok, err := r.Lookup(context.Background(), "ETH")
	if err != nil || !ok {
		t.Fatalf("expected lookup hit, got ok=%v err=%v", ok, err)
	}
	if got.Decimals != 18 {
		t.Fatalf("expected original decimals kept, got %d", got.Decimals)
	}
}

func TestLookupAbsentSymbol(t *testing.T) {
	r := New(newFakeTokenStore())

	if _, ok, err := r.Lookup(context.Background(), "NOPE"); ok || err != nil {
		t.Fatalf("expected quiet miss, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := r.Lookup(context.Background(), "  "); ok || err != nil {
		t.Fatalf("expected quiet miss for blank symbol, got ok=%v err=%v", ok, err)
	}
}

func TestListReturnsRegisteredTokens(t *testing.T) {
	r := New(newFakeTokenStore())

	for _, symbol := range []string{"ZRX", "DAI"} {
		if _, err := r.Upsert(context.Background(), symbol, 18, decimal.NewFromInt(1)); err != nil {
			t.Fatalf("upsert %s: %v", symbol, err)
		}
	}

	got, err := r.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Symbol != "DAI" || got[1].Symbol != "ZRX" {
		t.Fatalf("unexpected tokens: %+v", got)
	}
}
