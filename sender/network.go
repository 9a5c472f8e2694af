package sender

import (
	"context"

	"github.com/arbiternet/disputecast/types"
)

// ReconnectPolicy tells the transport layer what to do with requests
// addressed to peers it is not currently connected to.
type ReconnectPolicy int

const (
	// ImmediateDrop drops requests for disconnected peers.
	ImmediateDrop ReconnectPolicy = iota
	// TryConnect attempts to establish a fresh connection before giving up.
	TryConnect
)

// OutgoingDisputeRequest pairs a dispute request with its target authority
// and the channel on which the transport layer reports the outcome.
//
// The transport must either send exactly one value on Response (nil for a
// confirmed acknowledgment, an error otherwise) or close the channel; a
// closed channel counts as a failed delivery.
type OutgoingDisputeRequest struct {
	Target  types.AuthorityID
	Request types.DisputeRequest

	Response chan error
}

// Network is the transport layer as consumed by the dispatcher. Submission
// is fire-and-forget: the call returns once the batch has been handed off,
// and each request's outcome arrives later on its Response channel.
type Network interface {
	SendRequestBatch(ctx context.Context, reqs []OutgoingDisputeRequest, policy ReconnectPolicy) error
}

// SessionLookup answers session membership queries. Lookups must be
// idempotent and side-effect free; callers assume they hit a cache with a
// bounded failure mode.
type SessionLookup interface {
	LookupSession(ctx context.Context, ref types.Hash, session types.SessionIndex) (*types.SessionMembership, error)
}
