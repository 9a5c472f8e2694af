package sender

import (
	"context"

	"github.com/arbiternet/disputecast/types"
)

// relevantAuthorities determines all authorities that should receive the
// dispute request.
//
// This is all validators of the session the candidate occurred in and all
// authorities of all currently active sessions, excluding ourselves. An
// authority relevant to multiple sessions appears once.
func (t *SendTask) relevantAuthorities(
	ctx context.Context,
	active types.ActiveSessions,
) (map[types.AuthorityID]struct{}, error) {
	authorities := make(map[types.AuthorityID]struct{})

	// Validators of the dispute's own session, anchored at the dispute's
	// reference point.
	membership, err := t.lookup.LookupSession(ctx, t.request.Anchor, t.request.SessionIndex)
	if err != nil {
		return nil, ErrSessionLookup{Session: t.request.SessionIndex, Err: err}
	}
	for i, key := range membership.ValidatorKeys() {
		if i == membership.OurIndex {
			continue
		}
		authorities[key] = struct{}{}
	}

	// The full authority set of every currently active session.
	for session, head := range active {
		membership, err := t.lookup.LookupSession(ctx, head, session)
		if err != nil {
			return nil, ErrSessionLookup{Session: session, Err: err}
		}
		for i, key := range membership.DiscoveryKeys {
			if i == membership.OurIndex {
				continue
			}
			authorities[key] = struct{}{}
		}
	}

	return authorities, nil
}
