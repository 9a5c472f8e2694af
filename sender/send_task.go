package sender

import (
	"context"
	"sort"

	"github.com/arbiternet/disputecast/libs/log"
	"github.com/arbiternet/disputecast/types"
)

// TaskResult is the terminal outcome of a single send attempt.
type TaskResult int

const (
	// TaskFailed means the attempt did not get the request to its peer. It
	// should be retried in that case.
	TaskFailed TaskResult = iota
	// TaskSucceeded means the peer confirmed receipt.
	TaskSucceeded
)

func (r TaskResult) String() string {
	switch r {
	case TaskFailed:
		return "failed"
	case TaskSucceeded:
		return "succeeded"
	default:
		return "unknown"
	}
}

// FinishedSend reports a completed send attempt back to the owner. Exactly
// one message is produced per spawned response handler, unless the handler
// was cancelled first.
type FinishedSend struct {
	Candidate types.CandidateHash
	Authority types.AuthorityID
	Result    TaskResult
}

// deliveryStatus is the state of one statement delivery to one authority.
type deliveryStatus struct {
	// pending is the handle of the response handler while the request is in
	// flight, and nil once the delivery succeeded. Cancelling it aborts the
	// attempt.
	pending *TaskHandle
}

func (s deliveryStatus) succeeded() bool { return s.pending == nil }

// SendTask keeps track of all the authorities that have to be reached for
// one dispute.
//
// The task is single-owner: Refresh and OnFinishedSend must be serialized
// by the caller (the Sender service does this on its run loop). All
// cross-task communication happens over the completion channel, so no
// internal locking is needed.
type SendTask struct {
	logger  log.Logger
	metrics *Metrics

	lookup  SessionLookup
	network Network
	spawner Spawner

	// The request we are supposed to get out to all validators of the
	// dispute's session and to all authorities of the currently active
	// sessions.
	request types.DisputeRequest

	// The set of authorities we need to send our messages to, with the
	// delivery state per authority. This set changes at session boundaries.
	deliveries map[types.AuthorityID]deliveryStatus

	// Whether or not any sends have failed since the last refresh.
	hasFailedSends bool

	// Sender to be cloned into spawned response handlers.
	tx chan<- FinishedSend
}

// NewSendTask initiates sending a dispute message to peers. It performs the
// initial refresh and fails iff that refresh fails.
func NewSendTask(
	ctx context.Context,
	logger log.Logger,
	metrics *Metrics,
	lookup SessionLookup,
	network Network,
	spawner Spawner,
	active types.ActiveSessions,
	tx chan<- FinishedSend,
	request types.DisputeRequest,
) (*SendTask, error) {
	t := &SendTask{
		logger:     logger,
		metrics:    metrics,
		lookup:     lookup,
		network:    network,
		spawner:    spawner,
		request:    request,
		deliveries: make(map[types.AuthorityID]deliveryStatus),
		tx:         tx,
	}
	if err := t.Refresh(ctx, active); err != nil {
		return nil, err
	}
	return t, nil
}

// Refresh makes sure we are sending to all relevant authorities.
//
// This function is called at construction and should also be called
// whenever a session change happens and on a regular basis to ensure failed
// attempts are retried.
func (t *SendTask) Refresh(ctx context.Context, active types.ActiveSessions) error {
	targets, err := t.relevantAuthorities(ctx, active)
	if err != nil {
		return err
	}

	newAuthorities := make([]types.AuthorityID, 0, len(targets))
	for authority := range targets {
		if _, ok := t.deliveries[authority]; !ok {
			newAuthorities = append(newAuthorities, authority)
		}
	}
	// Deterministic dispatch order.
	sort.Slice(newAuthorities, func(i, j int) bool { return newAuthorities[i] < newAuthorities[j] })

	// Get rid of dead/irrelevant deliveries. Cancelling the handle aborts a
	// still pending attempt; a late completion for the authority is simply
	// ignored by OnFinishedSend.
	for authority, status := range t.deliveries {
		if _, ok := targets[authority]; ok {
			continue
		}
		if status.pending != nil {
			status.pending.Cancel()
		}
		delete(t.deliveries, authority)
		t.metrics.TrackedDeliveries.Add(-1)
	}

	// Start any new sends that are needed.
	newStatuses, err := t.sendRequests(ctx, newAuthorities)
	if err != nil {
		return err
	}
	for authority, status := range newStatuses {
		t.deliveries[authority] = status
		t.metrics.TrackedDeliveries.Add(1)
	}

	// The flag tracks failures since the last refresh, and the retries for
	// those failures have just been issued.
	t.hasFailedSends = false
	return nil
}

// HasFailedSends reports whether any sends failed since the last refresh.
// The driver may use it to refresh sooner than the regular cadence.
func (t *SendTask) HasFailedSends() bool {
	return t.hasFailedSends
}

// OnFinishedSend handles a finished response handler.
func (t *SendTask) OnFinishedSend(authority types.AuthorityID, result TaskResult) {
	switch result {
	case TaskFailed:
		t.logger.Error(
			"could not get dispute message out; if this keeps happening, check whether the dispute made it on chain",
			"candidate", t.request.CandidateHash,
			"authority", authority,
		)
		t.metrics.FailedSends.Add(1)
		t.hasFailedSends = true
		// Remove state, so the next refresh knows what to try again.
		if _, ok := t.deliveries[authority]; ok {
			delete(t.deliveries, authority)
			t.metrics.TrackedDeliveries.Add(-1)
		}
	case TaskSucceeded:
		if _, ok := t.deliveries[authority]; !ok {
			// Can happen when the authority became irrelevant while the
			// response was already queued.
			t.logger.Debug(
				"received finished-send for untracked authority",
				"candidate", t.request.CandidateHash,
				"authority", authority,
				"result", result,
			)
			return
		}
		t.metrics.SucceededSends.Add(1)
		// We are done with this authority.
		t.deliveries[authority] = deliveryStatus{}
	}
}

// Cancel aborts all in-flight attempts and drops the tracking state. Used
// when the dispute is no longer being distributed.
func (t *SendTask) Cancel() {
	for authority, status := range t.deliveries {
		if status.pending != nil {
			status.pending.Cancel()
		}
		delete(t.deliveries, authority)
		t.metrics.TrackedDeliveries.Add(-1)
	}
}

// Request returns the dispute request this task is distributing.
func (t *SendTask) Request() types.DisputeRequest {
	return t.request
}
