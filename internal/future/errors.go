package future

import "errors"

// ErrAlreadyRetrieved is returned by Get/GetException/SetNotifier when the
// future's result was already consumed — either by a prior Get call or by
// an already-installed notifier firing eagerly.
var ErrAlreadyRetrieved = errors.New("future: result already retrieved")

// ErrInvalid is returned when operating on a future that was never obtained
// from a promise (its zero value) or whose promise was abandoned without a
// value, exception, or dismissal ever being recorded.
var ErrInvalid = errors.New("future: invalid future")

// ErrPromiseAlreadySatisfied is returned by SetValue/SetException when the
// promise was already fulfilled.
var ErrPromiseAlreadySatisfied = errors.New("promise: already satisfied")

// ErrBrokenPromise is the exception recorded on a future whose promise was
// abandoned (garbage collected) without being fulfilled or dismissed.
var ErrBrokenPromise = errors.New("promise: broken promise")
