// Package sender distributes dispute statement bundles to the validators
// that need to see them.
//
// For every dispute a SendTask keeps track of which authorities have
// confirmed receipt and which attempts are still in flight. Refreshing a
// task reconciles its tracking against the currently relevant authority set:
// authorities that rotated out are dropped (cancelling their in-flight
// attempts), newly relevant ones get a fresh send, and authorities whose
// last attempt failed are retried. Response handling runs in spawned tasks
// that funnel their outcome back to the owner over a single channel, so the
// task itself needs no locking.
//
// The Sender service owns one SendTask per dispute, drains the completion
// channel and periodically retries tasks that reported failed sends. The
// transport layer, the session membership source and the task spawner are
// consumed through narrow interfaces and supplied by the caller.
package sender
