package types

import (
	"fmt"
)

// OurIndexUnset marks the local node as absent from a session's discovery
// key list.
const OurIndexUnset = -1

// SessionMembership is the answer to a membership lookup for one session at
// one reference point: the ordered list of authority discovery keys, the
// size of the validator prefix of that list, and where the local node sits
// in it, if anywhere.
//
// The key list is ordered by validator index. The first ValidatorCount
// entries belong to the session's validators; any remaining entries belong
// to the extended authority set.
type SessionMembership struct {
	DiscoveryKeys  []AuthorityID
	ValidatorCount int

	// OurIndex is the local node's position in DiscoveryKeys, or
	// OurIndexUnset if the local node is not part of the set.
	OurIndex int
}

// ValidateBasic performs basic validation.
func (m SessionMembership) ValidateBasic() error {
	if m.ValidatorCount < 0 || m.ValidatorCount > len(m.DiscoveryKeys) {
		return fmt.Errorf("validator count %d out of range [0, %d]", m.ValidatorCount, len(m.DiscoveryKeys))
	}
	if m.OurIndex < OurIndexUnset || m.OurIndex >= len(m.DiscoveryKeys) {
		return fmt.Errorf("our index %d out of range [-1, %d)", m.OurIndex, len(m.DiscoveryKeys))
	}
	for i, key := range m.DiscoveryKeys {
		if err := key.Validate(); err != nil {
			return fmt.Errorf("invalid discovery key (#%d): %w", i, err)
		}
	}
	return nil
}

// ValidatorKeys returns the validator prefix of the discovery key list.
func (m SessionMembership) ValidatorKeys() []AuthorityID {
	return m.DiscoveryKeys[:m.ValidatorCount]
}

// ActiveSessions maps every currently active session to the reference point
// at which its membership should be looked up. It is supplied by the driver
// and may be stale; the resolver simply reflects whatever view it is given.
type ActiveSessions map[SessionIndex]Hash
