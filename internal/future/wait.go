package future

import (
	"reflect"
	"time"
)

// WaitForAny blocks the calling goroutine until at least one of futures is
// ready, or until deadline elapses if deadline is non-nil. It returns the
// index of the first ready future and true, or -1 and false on timeout.
//
// Behavior is undefined (a documented contract, not a recovered error, per
// spec §4.1) if any of the input futures already has a notifier installed:
// WaitForAny and SetNotifier are alternative, mutually exclusive ways of
// being woken by the same future, and combining them races to consume the
// single-reader result.
func WaitForAny[T any](futures []Future[T], deadline *time.Time) (int, bool) {
	if len(futures) == 0 {
		return -1, false
	}

	cases := make([]reflect.SelectCase, 0, len(futures)+1)
	for _, f := range futures {
		cases = append(cases, reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(f.doneChan()),
		})
	}

	var timer *time.Timer
	if deadline != nil {
		d := time.Until(*deadline)
		if d < 0 {
			d = 0
		}
		timer = time.NewTimer(d)
		defer timer.Stop()
		cases = append(cases, reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(timer.C),
		})
	}

	chosen, _, _ := reflect.Select(cases)
	if chosen >= len(futures) {
		return -1, false
	}
	return chosen, true
}
