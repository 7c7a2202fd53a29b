package errors

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsMatchesByCode(t *testing.T) {
	sentinel := New(CodeBountyIssuerEmpty, "issuer address is required")
	got := sentinel.WithMeta(map[string]string{"bounty": "7"})

	if !errors.Is(got, sentinel) {
		t.Fatal("expected metadata copy to match its sentinel by code")
	}
	if errors.Is(got, New(CodeNotFound, "not found")) {
		t.Fatal("expected different codes not to match")
	}
	if errors.Is(got, errors.New("issuer address is required")) {
		t.Fatal("expected plain errors not to match by message")
	}
}

func TestWithMetaPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := Wrap(CodeUnknown, "write failed", cause).WithMeta(map[string]string{"path": "/tmp/x"})

	if !errors.Is(wrapped, cause) {
		t.Fatal("expected cause to survive WithMeta")
	}
	if wrapped.Metadata["path"] != "/tmp/x" {
		t.Fatalf("unexpected metadata: %+v", wrapped.Metadata)
	}
}

func TestGetCodeAndMetadata(t *testing.T) {
	err := WithMetadata(CodeTokenDecimalsConflict, "token decimals are immutable once registered",
		map[string]string{"symbol": "ETH"})
	deep := fmt.Errorf("upsert: %w", err)

	if got := GetCode(deep); got != CodeTokenDecimalsConflict {
		t.Fatalf("GetCode = %s, want %s", got, CodeTokenDecimalsConflict)
	}
	if got := GetMetadata(deep); got["symbol"] != "ETH" {
		t.Fatalf("GetMetadata = %+v", got)
	}
	if got := GetCode(errors.New("plain")); got != CodeUnknown {
		t.Fatalf("GetCode for plain error = %s, want %s", got, CodeUnknown)
	}
	if got := GetMetadata(errors.New("plain")); got != nil {
		t.Fatalf("GetMetadata for plain error = %+v, want nil", got)
	}
}

func TestGRPCCode(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeEventKindUnknown, codes.InvalidArgument},
		{CodePricingRawValueInvalid, codes.InvalidArgument},
		{CodeBountyInvalidStageTransition, codes.FailedPrecondition},
		{CodeTokenDecimalsConflict, codes.FailedPrecondition},
		{CodeNotFound, codes.NotFound},
		{CodeUnknown, codes.Internal},
		{Code("SOMETHING_NEW"), codes.Internal},
	}
	for _, tc := range tests {
		if got := tc.code.GRPCCode(); got != tc.want {
			t.Errorf("GRPCCode(%s) = %s, want %s", tc.code, got, tc.want)
		}
	}
}

func TestToGRPCStatus(t *testing.T) {
	err := WithMetadata(CodeBountyStageDisallowsOp, "bounty stage does not allow this operation",
		map[string]string{"stage": "dead", "kind": "contribution_added"})

	st, ok := status.FromError(err.ToGRPCStatus())
	if !ok {
		t.Fatal("expected a grpc status error")
	}
	if st.Code() != codes.FailedPrecondition {
		t.Fatalf("status code = %s, want %s", st.Code(), codes.FailedPrecondition)
	}
	if st.Message() != err.Message {
		t.Fatalf("status message = %q, want %q", st.Message(), err.Message)
	}

	var info *errdetails.ErrorInfo
	for _, detail := range st.Details() {
		if d, ok := detail.(*errdetails.ErrorInfo); ok {
			info = d
		}
	}
	if info == nil {
		t.Fatal("expected ErrorInfo detail")
	}
	if info.Reason != string(CodeBountyStageDisallowsOp) || info.Domain != Domain {
		t.Fatalf("unexpected error info: %+v", info)
	}
	if info.Metadata["stage"] != "dead" {
		t.Fatalf("unexpected detail metadata: %+v", info.Metadata)
	}
}
