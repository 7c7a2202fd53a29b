package app

import (
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/bountynet/bounties-sync/internal/platform/errors"
	"github.com/bountynet/bounties-sync/internal/sync/domain/event"
)

// feedEntry is one NDJSON line from the finalized-event feed. The upstream
// decoder has already filtered to trusted, finalized chain events.
type feedEntry struct {
	Event         string          `json:"event"`
	BountyID      int64           `json:"bountyId"`
	FulfillmentID int64           `json:"fulfillmentId"`
	// Timestamp is the chain timestamp in unix seconds.
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// ParseFeedLine decodes one feed line into an event envelope.
func ParseFeedLine(line []byte) (event.Event, error) {
	var entry feedEntry
	if err := json.Unmarshal(line, &entry); err != nil {
		return event.Event{}, apperrors.Wrap(apperrors.CodeEventPayloadInvalid,
			"decode feed line", err)
	}

	kind, ok := event.NormalizeKind(entry.Event)
	if !ok {
		return event.Event{}, apperrors.WithMetadata(apperrors.CodeEventKindUnknown,
			"feed line names an unknown event kind",
			map[string]string{"event": entry.Event})
	}
	// Chain bounty ids are zero-based; a negative id would also poison the
	// worker shard index downstream.
	if entry.BountyID < 0 {
		return event.Event{}, apperrors.New(apperrors.CodeEventMissingBountyID,
			fmt.Sprintf("feed line carries negative bounty id %d", entry.BountyID))
	}
	if entry.Timestamp <= 0 {
		return event.Event{}, apperrors.New(apperrors.CodeEventMissingTimestamp,
			fmt.Sprintf("feed line for bounty %d has no timestamp", entry.BountyID))
	}

	return event.Event{
		Kind:          kind,
		BountyID:      entry.BountyID,
		FulfillmentID: entry.FulfillmentID,
		Timestamp:     time.Unix(entry.Timestamp, 0).UTC(),
		PayloadJSON:   entry.Payload,
	}, nil
}
