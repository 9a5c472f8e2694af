package types

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	tmbytes "github.com/arbiternet/disputecast/libs/bytes"
)

// HashSize is the size in bytes of candidate hashes and chain reference
// points.
const HashSize = 32

// AuthorityIDByteLength is the length of an authority discovery key.
const AuthorityIDByteLength = 32

// reAuthorityID is a regexp for valid authority IDs.
var reAuthorityID = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Hash is a chain reference point: the position at which a session
// membership lookup is anchored.
type Hash = tmbytes.HexBytes

// SessionIndex identifies a session, the time-bounded epoch that fixes a
// validator and authority membership set.
type SessionIndex int64

// CandidateHash is the content hash identifying the disputed candidate. It
// is the sole identity of a dispute for tracking and logging purposes.
type CandidateHash [HashSize]byte

// CandidateHashFromBytes converts a raw hash into a CandidateHash, or errors
// if the input has the wrong length.
func CandidateHashFromBytes(bz []byte) (CandidateHash, error) {
	var h CandidateHash
	if len(bz) != HashSize {
		return h, fmt.Errorf("invalid candidate hash length %d, expected %d", len(bz), HashSize)
	}
	copy(h[:], bz)
	return h, nil
}

// Bytes returns the hash as a byte slice.
func (h CandidateHash) Bytes() []byte { return h[:] }

func (h CandidateHash) String() string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

// AuthorityID is a hex-encoded authority discovery key identifying a
// network-addressable validator. It must be lowercased (for uniqueness) and
// of length 2*AuthorityIDByteLength.
type AuthorityID string

// NewAuthorityID returns a lowercased (normalized) AuthorityID, or errors if
// the authority ID is invalid.
func NewAuthorityID(id string) (AuthorityID, error) {
	a := AuthorityID(strings.ToLower(id))
	return a, a.Validate()
}

// Bytes converts the authority ID to its binary byte representation.
func (a AuthorityID) Bytes() ([]byte, error) {
	bz, err := hex.DecodeString(string(a))
	if err != nil {
		return nil, fmt.Errorf("invalid authority ID encoding: %w", err)
	}
	return bz, nil
}

// Validate validates the AuthorityID.
func (a AuthorityID) Validate() error {
	switch {
	case len(a) == 0:
		return errors.New("empty authority ID")

	case len(a) != 2*AuthorityIDByteLength:
		return fmt.Errorf("invalid authority ID length %d, expected %d", len(a), 2*AuthorityIDByteLength)

	case !reAuthorityID.MatchString(string(a)):
		return errors.New("authority ID can only contain lowercased hex digits")

	default:
		return nil
	}
}

// DisputeRequest is the statement bundle that has to reach all relevant
// authorities for a dispute. It is immutable once created and cheap to copy;
// identity is the candidate hash.
type DisputeRequest struct {
	// CandidateHash is the hash of the disputed candidate.
	CandidateHash CandidateHash

	// SessionIndex is the session the candidate occurred in.
	SessionIndex SessionIndex

	// Anchor is the reference point of the dispute's own session, used for
	// membership lookups of that session.
	Anchor Hash

	// Statements is the opaque evidentiary payload. Its encoding is the
	// transport layer's concern.
	Statements []byte
}

// ValidateBasic performs basic validation.
func (req DisputeRequest) ValidateBasic() error {
	if req.SessionIndex < 0 {
		return fmt.Errorf("negative session index %d", req.SessionIndex)
	}
	if len(req.Anchor) != HashSize {
		return fmt.Errorf("invalid anchor length %d, expected %d", len(req.Anchor), HashSize)
	}
	if len(req.Statements) == 0 {
		return errors.New("empty statements payload")
	}
	return nil
}

func (req DisputeRequest) String() string {
	return fmt.Sprintf("DisputeRequest{%v@%d}", req.CandidateHash, req.SessionIndex)
}
