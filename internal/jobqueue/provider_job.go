package jobqueue

import (
	"errors"
	"sync"

	"github.com/wago/wdx-core/internal/future"
)

// ErrCleanedUpBeforeResponse is the exception a ProviderJob rejects its
// promise with when the queue is torn down (or the job is otherwise
// cancelled) before the wrapped provider call ever resolved.
var ErrCleanedUpBeforeResponse = errors.New("serial wrapper cleaned up before response was received")

// ProviderJob adapts a functor returning future.Future[R] into a Job,
// forwarding whichever of value/exception arrives into an owned promise.
// internal/registry's serialParameterProvider enqueues a fresh
// ProviderJob per call so the wrapped provider never observes more than one
// outstanding call at a time.
type ProviderJob[R any] struct {
	call    func() future.Future[R]
	promise *future.Promise[R]

	mu      sync.Mutex
	pending *future.Future[R]
}

// NewProviderJob builds a job that, once started, invokes call and forwards
// its result into promise.
func NewProviderJob[R any](promise *future.Promise[R], call func() future.Future[R]) *ProviderJob[R] {
	return &ProviderJob[R]{call: call, promise: promise}
}

// Start invokes the wrapped provider call and installs notifiers that
// forward the result into the owned promise, then signals completion.
func (j *ProviderJob[R]) Start(onComplete func()) {
	f := j.call()
	j.mu.Lock()
	j.pending = &f
	j.mu.Unlock()

	_ = f.SetNotifier(func(v R) {
		_ = j.promise.SetValue(v)
		onComplete()
	})
	_ = f.SetExceptionNotifier(func(err error) {
		_ = j.promise.SetException(err)
		onComplete()
	})
}

// Cancel dismisses the pending future (if the job had started), replaces
// its notifiers with no-ops so a late provider response cannot race with
// teardown, and — if the promise is still unfulfilled — rejects it with
// ErrCleanedUpBeforeResponse.
func (j *ProviderJob[R]) Cancel() {
	j.mu.Lock()
	pending := j.pending
	j.mu.Unlock()

	if pending != nil && !pending.Ready() {
		_ = pending.SetNotifier(func(R) {})
		_ = pending.SetExceptionNotifier(func(error) {})
		pending.Dismiss()
	}
	_ = j.promise.SetException(ErrCleanedUpBeforeResponse)
}
