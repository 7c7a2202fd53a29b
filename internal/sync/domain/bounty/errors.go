package bounty

import apperrors "github.com/bountynet/bounties-sync/internal/platform/errors"

var (
	// ErrInvalidStageTransition indicates an event not allowed from the current stage.
	ErrInvalidStageTransition = apperrors.New(apperrors.CodeBountyInvalidStageTransition, "bounty stage transition is not allowed")
	// ErrStageDisallowsOp indicates the current stage rejects the operation without a stage change.
	ErrStageDisallowsOp = apperrors.New(apperrors.CodeBountyStageDisallowsOp, "bounty stage does not allow this operation")
	// ErrDeadlineNotExtended indicates a deadline_extended event that does not move the deadline forward.
	ErrDeadlineNotExtended = apperrors.New(apperrors.CodeBountyDeadlineNotExtended, "new deadline must be after the current deadline")
	// ErrPayoutNotIncreased indicates a payout_increased event that does not raise the payout.
	ErrPayoutNotIncreased = apperrors.New(apperrors.CodeBountyPayoutNotIncreased, "new fulfillment amount must exceed the current amount")
	// ErrIssuerEmpty indicates an issuance or transfer without an issuer address.
	ErrIssuerEmpty = apperrors.New(apperrors.CodeBountyIssuerEmpty, "issuer address is required")
)
