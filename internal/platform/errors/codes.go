// Package errors provides structured error handling for the sync engine.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Event errors
	CodeEventKindUnknown      Code = "EVENT_KIND_UNKNOWN"
	CodeEventPayloadInvalid   Code = "EVENT_PAYLOAD_INVALID"
	CodeEventMissingBountyID  Code = "EVENT_MISSING_BOUNTY_ID"
	CodeEventMissingTimestamp Code = "EVENT_MISSING_TIMESTAMP"

	// Bounty lifecycle errors
	CodeBountyInvalidStageTransition Code = "BOUNTY_INVALID_STAGE_TRANSITION"
	CodeBountyStageDisallowsOp       Code = "BOUNTY_STAGE_DISALLOWS_OPERATION"
	CodeBountyDeadlineNotExtended    Code = "BOUNTY_DEADLINE_NOT_EXTENDED"
	CodeBountyPayoutNotIncreased     Code = "BOUNTY_PAYOUT_NOT_INCREASED"
	CodeBountyIssuerEmpty            Code = "BOUNTY_ISSUER_EMPTY"

	// Fulfillment errors
	CodeFulfillmentNotActive Code = "FULFILLMENT_BOUNTY_NOT_ACTIVE"

	// Token registry errors
	CodeTokenSymbolEmpty      Code = "TOKEN_SYMBOL_EMPTY"
	CodeTokenDecimalsNegative Code = "TOKEN_DECIMALS_NEGATIVE"
	CodeTokenDecimalsConflict Code = "TOKEN_DECIMALS_CONFLICT"
	CodeTokenRateNegative     Code = "TOKEN_RATE_NEGATIVE"

	// Pricing errors
	CodePricingRawValueInvalid Code = "PRICING_RAW_VALUE_INVALID"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes for the API surface that
// serves this materialized view.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, malformed event payloads
	case CodeEventKindUnknown,
		CodeEventPayloadInvalid,
		CodeEventMissingBountyID,
		CodeEventMissingTimestamp,
		CodeBountyIssuerEmpty,
		CodeTokenSymbolEmpty,
		CodeTokenDecimalsNegative,
		CodeTokenRateNegative,
		CodePricingRawValueInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - aggregate state does not allow the operation
	case CodeBountyInvalidStageTransition,
		CodeBountyStageDisallowsOp,
		CodeBountyDeadlineNotExtended,
		CodeBountyPayoutNotIncreased,
		CodeFulfillmentNotActive,
		CodeTokenDecimalsConflict:
		return codes.FailedPrecondition

	// NotFound - event references an unknown aggregate
	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
