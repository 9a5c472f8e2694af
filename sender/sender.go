package sender

import (
	"context"
	"sync"
	"time"

	"github.com/arbiternet/disputecast/libs/log"
	"github.com/arbiternet/disputecast/libs/service"
	"github.com/arbiternet/disputecast/types"
)

const (
	// finishedSendsBuffer bounds how many unprocessed completion messages
	// the channel can hold before response handlers block (and unblock via
	// cancellation).
	finishedSendsBuffer = 1024

	// defaultRetryInterval is how often tasks that reported failed sends
	// are refreshed.
	defaultRetryInterval = 10 * time.Second
)

// Sender distributes dispute requests to the authorities that need to see
// them, one SendTask per dispute.
//
// It owns the completion channel: the run loop drains it and routes every
// finished send to its task, and periodically retries tasks with failed
// sends. The driver starts disputes with StartSending, keeps the session
// view fresh with Refresh and drops resolved disputes with StopSending.
type Sender struct {
	service.BaseService
	logger  log.Logger
	metrics *Metrics

	lookup  SessionLookup
	network Network
	spawner Spawner

	retryInterval time.Duration

	mtx      sync.Mutex
	disputes map[types.CandidateHash]*SendTask
	active   types.ActiveSessions

	rx     chan FinishedSend
	quitCh chan struct{}
	doneCh chan struct{}
}

// NewSender constructs a Sender. Metrics may be NopMetrics.
func NewSender(
	logger log.Logger,
	metrics *Metrics,
	lookup SessionLookup,
	network Network,
	spawner Spawner,
) *Sender {
	s := &Sender{
		logger:        logger,
		metrics:       metrics,
		lookup:        lookup,
		network:       network,
		spawner:       spawner,
		retryInterval: defaultRetryInterval,
		disputes:      make(map[types.CandidateHash]*SendTask),
		active:        make(types.ActiveSessions),
		rx:            make(chan FinishedSend, finishedSendsBuffer),
		quitCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
	s.BaseService = *service.NewBaseService(logger, "DisputeSender", s)
	return s
}

// OnStart implements service.Implementation.
func (s *Sender) OnStart(ctx context.Context) error {
	go s.run(ctx)
	return nil
}

// OnStop implements service.Implementation. It stops the run loop and
// cancels all in-flight attempts.
func (s *Sender) OnStop() {
	close(s.quitCh)
	<-s.doneCh

	s.mtx.Lock()
	defer s.mtx.Unlock()
	for candidate, task := range s.disputes {
		task.Cancel()
		delete(s.disputes, candidate)
		s.metrics.ActiveDisputes.Add(-1)
	}
}

// StartSending initiates distribution of a dispute request. Starting an
// already known dispute is a no-op.
func (s *Sender) StartSending(ctx context.Context, req types.DisputeRequest) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.disputes[req.CandidateHash]; ok {
		s.logger.Debug("dispute already being distributed", "candidate", req.CandidateHash)
		return nil
	}

	task, err := NewSendTask(ctx, s.logger, s.metrics, s.lookup, s.network, s.spawner, s.active, s.rx, req)
	if err != nil {
		return err
	}

	s.disputes[req.CandidateHash] = task
	s.metrics.ActiveDisputes.Add(1)
	return nil
}

// Refresh records the new active session view and refreshes every task
// against it. It should be called whenever the set of active sessions
// changes. All tasks are attempted; the first error is returned.
func (s *Sender) Refresh(ctx context.Context, active types.ActiveSessions) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.active = make(types.ActiveSessions, len(active))
	for session, head := range active {
		s.active[session] = head
	}

	var firstErr error
	for candidate, task := range s.disputes {
		if err := task.Refresh(ctx, s.active); err != nil {
			s.logger.Error("failed to refresh dispute sends", "candidate", candidate, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// StopSending drops a dispute, cancelling any in-flight attempts. Stopping
// an unknown dispute is a no-op.
func (s *Sender) StopSending(candidate types.CandidateHash) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	task, ok := s.disputes[candidate]
	if !ok {
		return
	}
	task.Cancel()
	delete(s.disputes, candidate)
	s.metrics.ActiveDisputes.Add(-1)
}

// ActiveDisputes returns the number of disputes currently being
// distributed.
func (s *Sender) ActiveDisputes() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.disputes)
}

func (s *Sender) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-s.rx:
			s.onFinishedSend(msg)
		case <-ticker.C:
			s.retryFailed(ctx)
		case <-ctx.Done():
			return
		case <-s.quitCh:
			return
		}
	}
}

func (s *Sender) onFinishedSend(msg FinishedSend) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	task, ok := s.disputes[msg.Candidate]
	if !ok {
		// The dispute was dropped while responses were still in flight.
		s.logger.Debug(
			"received finished-send for unknown dispute",
			"candidate", msg.Candidate,
			"authority", msg.Authority,
		)
		return
	}
	task.OnFinishedSend(msg.Authority, msg.Result)
}

// retryFailed refreshes every task that reported failed sends since its
// last refresh, issuing fresh attempts for the failed authorities.
func (s *Sender) retryFailed(ctx context.Context) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for candidate, task := range s.disputes {
		if !task.HasFailedSends() {
			continue
		}
		if err := task.Refresh(ctx, s.active); err != nil {
			s.logger.Error("failed to retry dispute sends", "candidate", candidate, "err", err)
		}
	}
}
