package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorityID(t *testing.T) {
	lower := strings.Repeat("ab", AuthorityIDByteLength)
	upper := strings.ToUpper(lower)

	testCases := []struct {
		name   string
		input  string
		expect AuthorityID
		ok     bool
	}{
		{"valid lowercase", lower, AuthorityID(lower), true},
		{"normalizes uppercase", upper, AuthorityID(lower), true},
		{"empty", "", "", false},
		{"too short", "abcd", "", false},
		{"too long", lower + "ab", "", false},
		{"non-hex characters", strings.Repeat("zz", AuthorityIDByteLength), "", false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			id, err := NewAuthorityID(tc.input)
			if !tc.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, id)

			bz, err := id.Bytes()
			require.NoError(t, err)
			assert.Len(t, bz, AuthorityIDByteLength)
		})
	}
}

func TestCandidateHashFromBytes(t *testing.T) {
	bz := make([]byte, HashSize)
	bz[0] = 0xde
	bz[HashSize-1] = 0xef

	h, err := CandidateHashFromBytes(bz)
	require.NoError(t, err)
	assert.Equal(t, bz, h.Bytes())
	assert.True(t, strings.HasPrefix(h.String(), "DE"))

	_, err = CandidateHashFromBytes(bz[:HashSize-1])
	require.Error(t, err)
}

func TestDisputeRequestValidateBasic(t *testing.T) {
	valid := DisputeRequest{
		SessionIndex: 7,
		Anchor:       make([]byte, HashSize),
		Statements:   []byte("statements"),
	}
	require.NoError(t, valid.ValidateBasic())

	negSession := valid
	negSession.SessionIndex = -1
	require.Error(t, negSession.ValidateBasic())

	badAnchor := valid
	badAnchor.Anchor = []byte{0x01}
	require.Error(t, badAnchor.ValidateBasic())

	noStatements := valid
	noStatements.Statements = nil
	require.Error(t, noStatements.ValidateBasic())
}

func TestSessionMembershipValidateBasic(t *testing.T) {
	keys := []AuthorityID{
		AuthorityID(strings.Repeat("aa", AuthorityIDByteLength)),
		AuthorityID(strings.Repeat("bb", AuthorityIDByteLength)),
		AuthorityID(strings.Repeat("cc", AuthorityIDByteLength)),
	}

	valid := SessionMembership{DiscoveryKeys: keys, ValidatorCount: 2, OurIndex: 1}
	require.NoError(t, valid.ValidateBasic())
	assert.Equal(t, keys[:2], valid.ValidatorKeys())

	absent := SessionMembership{DiscoveryKeys: keys, ValidatorCount: 3, OurIndex: OurIndexUnset}
	require.NoError(t, absent.ValidateBasic())

	badCount := SessionMembership{DiscoveryKeys: keys, ValidatorCount: 4, OurIndex: OurIndexUnset}
	require.Error(t, badCount.ValidateBasic())

	badIndex := SessionMembership{DiscoveryKeys: keys, ValidatorCount: 3, OurIndex: 3}
	require.Error(t, badIndex.ValidateBasic())

	badKey := SessionMembership{
		DiscoveryKeys:  []AuthorityID{"nope"},
		ValidatorCount: 1,
		OurIndex:       OurIndexUnset,
	}
	require.Error(t, badKey.ValidateBasic())
}
