package projection

import (
	"context"
	"strings"

	"github.com/bountynet/bounties-sync/internal/sync/domain/bounty"
	"github.com/bountynet/bounties-sync/internal/sync/domain/event"
	"github.com/bountynet/bounties-sync/internal/sync/domain/token"
	"github.com/bountynet/bounties-sync/internal/sync/pricing"
	"github.com/bountynet/bounties-sync/internal/sync/storage"
	"github.com/shopspring/decimal"
)

func (a *apply) applyIssued(ctx context.Context, evt event.Event, payload event.IssuedPayload) error {
	// Re-issuing an existing bounty id absorbs event feed replay: the
	// dispatch succeeds and returns the stored aggregate unchanged.
	if a.found {
		a.noop()
		return nil
	}

	issuer := strings.TrimSpace(payload.Issuer)
	if issuer == "" {
		return bounty.ErrIssuerEmpty
	}
	amount, err := pricing.ParseRaw(payload.FulfillmentAmount)
	if err != nil {
		return err
	}
	if payload.TokenDecimals < 0 {
		return token.ErrDecimalsNegative
	}

	stage := bounty.StageDraft
	if payload.IssueAndActivate {
		stage = bounty.StageActive
	}

	a.bounty = storage.BountyRecord{
		BountyID:          evt.BountyID,
		Stage:             stage,
		Issuer:            issuer,
		Deadline:          unixSeconds(payload.Deadline),
		PaysTokens:        payload.PaysTokens,
		TokenSymbol:       token.NormalizeSymbol(payload.TokenSymbol),
		TokenDecimals:     payload.TokenDecimals,
		FulfillmentAmount: amount,
		Balance:           decimal.Zero,
		DataHash:          strings.TrimSpace(payload.DataHash),
		CreatedAt:         evt.Timestamp,
	}
	a.found = true
	if err := a.repriceBounty(ctx); err != nil {
		return err
	}

	// An issue-and-activate bounty is announced once, at activation.
	if !payload.IssueAndActivate {
		a.notify = event.KindBountyIssued
	}
	return nil
}

func (a *apply) applyActivated(_ context.Context, _ event.Event, payload event.ActivatedPayload) error {
	// The activation bundled with an issue-and-activate issuance arrives
	// after the bounty is already active; tolerate it instead of
	// re-triggering activation side effects.
	if a.bounty.Stage == bounty.StageActive {
		a.noop()
		return nil
	}
	if !a.bounty.Stage.CanActivate() {
		return stageTransitionError(a.bounty.Stage, bounty.StageActive)
	}
	a.bounty.Stage = bounty.StageActive

	if payload.IssueAndActivate {
		a.notify = event.KindBountyIssued
		a.notifyCombined = true
	} else {
		a.notify = event.KindBountyActivated
	}
	return nil
}

func (a *apply) applyKilled(_ context.Context, _ event.Event, _ event.KilledPayload) error {
	if !a.bounty.Stage.CanKill() {
		return stageTransitionError(a.bounty.Stage, bounty.StageDead)
	}
	a.bounty.Stage = bounty.StageDead
	a.notify = event.KindBountyKilled
	return nil
}

func (a *apply) applyContributionAdded(_ context.Context, _ event.Event, payload event.ContributionPayload) error {
	if !a.bounty.Stage.AllowsFunding() {
		return stageDisallowsError(a.bounty.Stage, event.KindContributionAdded)
	}
	amount, err := pricing.ParseRaw(payload.Amount)
	if err != nil {
		return err
	}
	a.bounty.Balance = a.bounty.Balance.Add(amount)

	// The contribution folded into an issue-and-activate transaction is
	// covered by the combined announcement.
	if !payload.IssueAndActivate {
		a.notify = event.KindContributionAdded
	}
	return nil
}

func (a *apply) applyDeadlineExtended(_ context.Context, _ event.Event, payload event.DeadlineExtendedPayload) error {
	if !a.bounty.Stage.AllowsFunding() {
		return stageDisallowsError(a.bounty.Stage, event.KindDeadlineExtended)
	}
	newDeadline := unixSeconds(payload.NewDeadline)
	if !newDeadline.After(a.bounty.Deadline) {
		return bounty.ErrDeadlineNotExtended.WithMeta(map[string]string{
			"current": a.bounty.Deadline.UTC().Format("2006-01-02T15:04:05Z"),
			"new":     newDeadline.Format("2006-01-02T15:04:05Z"),
		})
	}
	a.bounty.Deadline = newDeadline
	a.notify = event.KindDeadlineExtended
	return nil
}

func (a *apply) applyChanged(_ context.Context, _ event.Event, payload event.ChangedPayload) error {
	if !a.bounty.Stage.AllowsMetadataChange() {
		return stageDisallowsError(a.bounty.Stage, event.KindBountyChanged)
	}
	if hash := strings.TrimSpace(payload.DataHash); hash != "" {
		a.bounty.DataHash = hash
	}
	a.notify = event.KindBountyChanged
	return nil
}

func (a *apply) applyIssuerTransferred(_ context.Context, _ event.Event, payload event.IssuerTransferredPayload) error {
	if !a.bounty.Stage.AllowsMetadataChange() {
		return stageDisallowsError(a.bounty.Stage, event.KindIssuerTransferred)
	}
	newIssuer := strings.TrimSpace(payload.NewIssuer)
	if newIssuer == "" {
		return bounty.ErrIssuerEmpty
	}
	a.bounty.Issuer = newIssuer
	a.notify = event.KindIssuerTransferred
	return nil
}

func (a *apply) applyPayoutIncreased(ctx context.Context, _ event.Event, payload event.PayoutIncreasedPayload) error {
	if !a.bounty.Stage.AllowsFunding() {
		return stageDisallowsError(a.bounty.Stage, event.KindPayoutIncreased)
	}
	newAmount, err := pricing.ParseRaw(payload.NewFulfillmentAmount)
	if err != nil {
		return err
	}
	// The chain contract only emits increases; anything else is malformed.
	if newAmount.LessThanOrEqual(a.bounty.FulfillmentAmount) {
		return bounty.ErrPayoutNotIncreased.WithMeta(map[string]string{
			"current": a.bounty.FulfillmentAmount.String(),
			"new":     newAmount.String(),
		})
	}
	a.bounty.FulfillmentAmount = newAmount
	if err := a.repriceBounty(ctx); err != nil {
		return err
	}
	a.notify = event.KindPayoutIncreased
	return nil
}

func stageTransitionError(from, to bounty.Stage) error {
	return bounty.ErrInvalidStageTransition.WithMeta(
		map[string]string{"from": string(from), "to": string(to)})
}

func stageDisallowsError(stage bounty.Stage, kind event.Kind) error {
	return bounty.ErrStageDisallowsOp.WithMeta(
		map[string]string{"stage": string(stage), "kind": string(kind)})
}
