// Package jobqueue implements the single-consumer job queue of spec §4.2:
// a FIFO of async jobs where at most one is ever running, used to serialize
// calls into a provider that does not support concurrent invocation
// (internal/registry's serialParameterProvider).
//
// Go has no destructors, so the C++ original's "the destructor cancels
// every remaining job, guarded by an exit marker plus a teardown mutex
// distinct from the queue's own mutex" becomes an explicit Close method.
// Callers that own a Queue must call Close when done; failing to do so
// leaks nothing (no goroutines run in the background — jobs only run
// synchronously inside Enqueue/onComplete calls), but pending jobs will
// simply never be cancelled.
package jobqueue
