package projection

import (
	"context"

	"github.com/bountynet/bounties-sync/internal/sync/domain/token"
	"github.com/bountynet/bounties-sync/internal/sync/pricing"
	"github.com/bountynet/bounties-sync/internal/sync/storage"
)

const repricePageSize = 200

// RepriceToken recomputes the cached USD figure of every live bounty paying
// in symbol. The oracle collaborator calls this after a registry rate change
// so the usdPrice invariant holds between lifecycle events. Terminal bounties
// keep their last committed figures.
func (r *Router) RepriceToken(ctx context.Context, symbol string) (int, error) {
	symbol = token.NormalizeSymbol(symbol)
	repriced := 0
	afterID := int64(-1)
	for {
		page, err := r.store.ListBounties(ctx, afterID, repricePageSize)
		if err != nil {
			return repriced, err
		}
		if len(page) == 0 {
			return repriced, nil
		}
		for _, b := range page {
			afterID = b.BountyID
			if b.TokenSymbol != symbol || b.Stage.IsTerminal() {
				continue
			}
			if err := r.repriceOne(ctx, b.BountyID); err != nil {
				return repriced, err
			}
			repriced++
		}
	}
}

// repriceOne re-reads and reprices a single aggregate under its serialization
// lock, so a racing lifecycle event cannot be overwritten.
func (r *Router) repriceOne(ctx context.Context, bountyID int64) error {
	lock := r.lockFor(bountyID)
	lock.Lock()
	defer lock.Unlock()

	return r.store.WithinTx(ctx, func(tx storage.Store) error {
		b, err := tx.GetBounty(ctx, bountyID)
		if err != nil {
			return err
		}
		if b.Stage.IsTerminal() {
			return nil
		}
		price, _, err := pricing.ForToken(ctx, r.tokens,
			b.TokenSymbol, b.TokenDecimals, b.FulfillmentAmount.String())
		if err != nil {
			return err
		}
		if b.USDPrice.Equal(price) {
			return nil
		}
		b.USDPrice = price
		return tx.PutBounty(ctx, b)
	})
}
