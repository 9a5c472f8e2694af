package sender

import (
	"fmt"

	"github.com/arbiternet/disputecast/types"
)

// ErrSpawnFailed means the spawn facility could not start a response
// handler. Spawn failures are fatal: the whole dispatch they occurred in is
// aborted and the error propagates out of the refresh.
type ErrSpawnFailed struct {
	Name string
	Err  error
}

func (e ErrSpawnFailed) Error() string {
	return fmt.Sprintf("failed to spawn task %q: %v", e.Name, e.Err)
}

func (e ErrSpawnFailed) Unwrap() error { return e.Err }

// ErrSessionLookup means a membership lookup failed during a refresh. The
// refresh attempt is aborted, leaving the previously tracked deliveries
// untouched; the next refresh simply tries again.
type ErrSessionLookup struct {
	Session types.SessionIndex
	Err     error
}

func (e ErrSessionLookup) Error() string {
	return fmt.Sprintf("failed to look up membership of session %d: %v", e.Session, e.Err)
}

func (e ErrSessionLookup) Unwrap() error { return e.Err }
