// Package projection applies finalized chain events to the materialized
// bounty view. The Router is the sole entry point: it validates the envelope,
// serializes work per bounty aggregate, runs the kind-specific applier inside
// one storage transaction, and enqueues post-commit announcements.
package projection
