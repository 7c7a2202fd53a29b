// Package bounty holds the bounty lifecycle rules applied by the sync engine.
package bounty

import "strings"

// Stage describes the bounty lifecycle label used by domain decisions.
type Stage string

const (
	StageUnspecified Stage = ""
	StageDraft       Stage = "draft"
	StageActive      Stage = "active"
	StageDead        Stage = "dead"
	StageCompleted   Stage = "completed"
	StageExpired     Stage = "expired"
)

// NormalizeStage canonicalizes stage labels from feeds and storage.
func NormalizeStage(value string) (Stage, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return StageUnspecified, false
	}
	switch strings.ToLower(trimmed) {
	case "draft":
		return StageDraft, true
	case "active":
		return StageActive, true
	case "dead":
		return StageDead, true
	case "completed":
		return StageCompleted, true
	case "expired":
		return StageExpired, true
	default:
		return StageUnspecified, false
	}
}

// IsTerminal reports whether no event may mutate the bounty's stage or
// monetary fields anymore. Dead is the only terminal stage.
func (s Stage) IsTerminal() bool {
	return s == StageDead
}

// CanActivate reports whether bounty_activated is allowed from s.
func (s Stage) CanActivate() bool {
	return s == StageDraft
}

// CanKill reports whether bounty_killed is allowed from s.
func (s Stage) CanKill() bool {
	return s == StageDraft || s == StageActive
}

// AllowsFunding reports whether contributions, payout raises, deadline
// extensions, and fulfillments are allowed from s.
func (s Stage) AllowsFunding() bool {
	return s == StageActive
}

// AllowsMetadataChange reports whether bounty_changed and issuer_transferred
// are allowed from s.
func (s Stage) AllowsMetadataChange() bool {
	return s == StageDraft || s == StageActive
}
