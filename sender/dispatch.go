package sender

import (
	"context"
	"fmt"

	"github.com/arbiternet/disputecast/libs/log"
	"github.com/arbiternet/disputecast/types"
)

// sendRequests starts delivery of the dispute message to the given
// authorities and spawns a response handler per request.
//
// The whole batch is handed to the transport layer in a single call. A
// spawn failure or a failed hand-off aborts the dispatch: already spawned
// handlers are cancelled and the error is returned.
func (t *SendTask) sendRequests(
	ctx context.Context,
	receivers []types.AuthorityID,
) (map[types.AuthorityID]deliveryStatus, error) {
	statuses := make(map[types.AuthorityID]deliveryStatus, len(receivers))
	reqs := make([]OutgoingDisputeRequest, 0, len(receivers))

	abort := func() {
		for _, status := range statuses {
			status.pending.Cancel()
		}
	}

	for _, receiver := range receivers {
		out := OutgoingDisputeRequest{
			Target:   receiver,
			Request:  t.request,
			Response: make(chan error, 1),
		}

		handle, err := t.spawner.Spawn(
			"dispute-sender",
			waitResponseTask(t.logger, out, t.request.CandidateHash, receiver, t.tx),
		)
		if err != nil {
			abort()
			return nil, ErrSpawnFailed{Name: "dispute-sender", Err: err}
		}

		reqs = append(reqs, out)
		statuses[receiver] = deliveryStatus{pending: handle}
	}

	// We should be connected, but if not - try!
	if err := t.network.SendRequestBatch(ctx, reqs, TryConnect); err != nil {
		abort()
		return nil, fmt.Errorf("failed to submit dispute request batch: %w", err)
	}

	t.metrics.DispatchedRequests.Add(float64(len(reqs)))
	return statuses, nil
}

// waitResponseTask builds the body of a spawned response handler: await the
// outcome of a single outgoing request and report it on tx. If the handler
// is cancelled before the response arrives, or the receiving side is gone,
// nothing is reported.
func waitResponseTask(
	logger log.Logger,
	out OutgoingDisputeRequest,
	candidate types.CandidateHash,
	receiver types.AuthorityID,
	tx chan<- FinishedSend,
) func(ctx context.Context) {
	return func(ctx context.Context) {
		var result TaskResult

		select {
		case err, ok := <-out.Response:
			switch {
			case !ok:
				logger.Error(
					"dispute request terminated without a response",
					"candidate", candidate,
					"authority", receiver,
				)
				result = TaskFailed
			case err != nil:
				logger.Error(
					"error sending dispute statements to peer",
					"candidate", candidate,
					"authority", receiver,
					"err", err,
				)
				result = TaskFailed
			default:
				logger.Debug(
					"sending dispute message succeeded",
					"candidate", candidate,
					"authority", receiver,
				)
				result = TaskSucceeded
			}
		case <-ctx.Done():
			// Cancelled: the authority became irrelevant before the
			// response arrived. Nothing to report.
			return
		}

		select {
		case tx <- FinishedSend{Candidate: candidate, Authority: receiver, Result: result}:
		case <-ctx.Done():
			logger.Debug(
				"failed to notify owner about dispute sending result",
				"candidate", candidate,
				"authority", receiver,
			)
		}
	}
}
