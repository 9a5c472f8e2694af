package sender

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arbiternet/disputecast/types"
)

// mockLookup serves canned session memberships, keyed by session index.
type mockLookup struct {
	mtx      sync.Mutex
	sessions map[types.SessionIndex]*types.SessionMembership
	err      error
}

func newMockLookup() *mockLookup {
	return &mockLookup{sessions: make(map[types.SessionIndex]*types.SessionMembership)}
}

func (m *mockLookup) LookupSession(
	_ context.Context,
	_ types.Hash,
	session types.SessionIndex,
) (*types.SessionMembership, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	membership, ok := m.sessions[session]
	if !ok {
		return nil, fmt.Errorf("unknown session %d", session)
	}
	return membership, nil
}

func (m *mockLookup) setSession(session types.SessionIndex, membership *types.SessionMembership) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.sessions[session] = membership
}

func (m *mockLookup) setError(err error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.err = err
}

// mockNetwork records submitted batches and lets tests answer individual
// requests.
type mockNetwork struct {
	mtx       sync.Mutex
	batches   [][]OutgoingDisputeRequest
	policies  []ReconnectPolicy
	err       error
	responded map[chan error]bool
}

func newMockNetwork() *mockNetwork {
	return &mockNetwork{responded: make(map[chan error]bool)}
}

func (m *mockNetwork) SendRequestBatch(
	_ context.Context,
	reqs []OutgoingDisputeRequest,
	policy ReconnectPolicy,
) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, reqs)
	m.policies = append(m.policies, policy)
	return nil
}

func (m *mockNetwork) numBatches() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return len(m.batches)
}

func (m *mockNetwork) batchTargets(i int) []types.AuthorityID {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	targets := make([]types.AuthorityID, 0, len(m.batches[i]))
	for _, req := range m.batches[i] {
		targets = append(targets, req.Target)
	}
	return targets
}

// respond answers the oldest unanswered request addressed to the given
// authority. A nil err confirms the request.
func (m *mockNetwork) respond(t *testing.T, authority types.AuthorityID, err error) {
	t.Helper()
	m.mtx.Lock()
	defer m.mtx.Unlock()
	for _, batch := range m.batches {
		for _, req := range batch {
			if req.Target != authority || m.responded[req.Response] {
				continue
			}
			m.responded[req.Response] = true
			req.Response <- err
			return
		}
	}
	t.Fatalf("no unanswered request for authority %v", authority)
}

// dropRequest closes the response channel of the oldest unanswered request
// to the given authority, simulating a transport that gave up silently.
func (m *mockNetwork) dropRequest(t *testing.T, authority types.AuthorityID) {
	t.Helper()
	m.mtx.Lock()
	defer m.mtx.Unlock()
	for _, batch := range m.batches {
		for _, req := range batch {
			if req.Target != authority || m.responded[req.Response] {
				continue
			}
			m.responded[req.Response] = true
			close(req.Response)
			return
		}
	}
	t.Fatalf("no unanswered request for authority %v", authority)
}

// requestCount returns how many requests have been submitted to the given
// authority across all batches.
func (m *mockNetwork) requestCount(authority types.AuthorityID) int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	count := 0
	for _, batch := range m.batches {
		for _, req := range batch {
			if req.Target == authority {
				count++
			}
		}
	}
	return count
}

// mockSpawner wraps the real spawner and can be made to fail the nth spawn
// (1-based).
type mockSpawner struct {
	real   Spawner
	failAt int32
	count  int32
}

func newMockSpawner() *mockSpawner {
	return &mockSpawner{real: NewSpawner()}
}

func (m *mockSpawner) Spawn(name string, run func(ctx context.Context)) (*TaskHandle, error) {
	n := atomic.AddInt32(&m.count, 1)
	if m.failAt != 0 && n >= atomic.LoadInt32(&m.failAt) {
		return nil, errors.New("spawner out of capacity")
	}
	return m.real.Spawn(name, run)
}

// authority builds a deterministic, valid AuthorityID from a single byte.
func authority(b byte) types.AuthorityID {
	return types.AuthorityID(strings.Repeat(fmt.Sprintf("%02x", b), types.AuthorityIDByteLength))
}

func membership(ourIndex, validatorCount int, keys ...types.AuthorityID) *types.SessionMembership {
	return &types.SessionMembership{
		DiscoveryKeys:  keys,
		ValidatorCount: validatorCount,
		OurIndex:       ourIndex,
	}
}

func testRequest(session types.SessionIndex) types.DisputeRequest {
	var candidate types.CandidateHash
	candidate[0] = byte(session)
	return types.DisputeRequest{
		CandidateHash: candidate,
		SessionIndex:  session,
		Anchor:        make([]byte, types.HashSize),
		Statements:    []byte("dispute statements"),
	}
}

// nextFinished reads one completion message, failing the test if none
// arrives in time.
func nextFinished(t *testing.T, rx <-chan FinishedSend) FinishedSend {
	t.Helper()
	select {
	case msg := <-rx:
		return msg
	case <-time.After(time.Second):
		require.FailNow(t, "timed out waiting for finished send")
		return FinishedSend{}
	}
}
