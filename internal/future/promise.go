package future

// Promise is the single-writer half of the future/promise pair. SetValue
// and SetException are mutually exclusive and may each be called at most
// once; a second call of either returns ErrPromiseAlreadySatisfied. A
// promise dropped without being fulfilled or dismissed resolves its future
// with ErrBrokenPromise (best-effort, via a finalizer — callers that control
// their own abandonment path should call SetException explicitly instead of
// relying on garbage collection timing).
type Promise[T any] struct {
	s *sharedState[T]
}

// New creates a fresh promise/future pair.
func New[T any]() *Promise[T] {
	p := &Promise[T]{s: newSharedState[T]()}
	registerBrokenPromiseFinalizer(p)
	return p
}

// Future returns the single reader handle for this promise. Safe to call
// more than once; all returned values share state, though only one should
// be used as "the" reader per the single-reader contract.
func (p *Promise[T]) Future() Future[T] {
	return Future[T]{s: p.s}
}

// SetValue fulfills the promise with a value. Clears any dismiss notifier
// before waking waiters, per the "fulfillment clears the dismiss notifier
// before signaling waiters" rule.
func (p *Promise[T]) SetValue(v T) error {
	p.s.mu.Lock()
	if p.s.satisfied {
		p.s.mu.Unlock()
		return ErrPromiseAlreadySatisfied
	}
	p.s.satisfied = true
	p.s.hasValue = true
	p.s.value = v
	p.s.diNotifier = nil

	notifier := p.s.notifier
	notifierSet := p.s.notifierSet
	if notifierSet {
		p.s.retrieved = true
	}
	p.s.mu.Unlock()

	close(p.s.done)
	if notifierSet && notifier != nil {
		notifier(v)
	}
	return nil
}

// SetException rejects the promise with an error. Same mutual-exclusion and
// dismiss-notifier-clearing rules as SetValue.
func (p *Promise[T]) SetException(err error) error {
	p.s.mu.Lock()
	if p.s.satisfied {
		p.s.mu.Unlock()
		return ErrPromiseAlreadySatisfied
	}
	p.s.satisfied = true
	p.s.hasException = true
	p.s.exception = err
	p.s.diNotifier = nil

	notifier := p.s.exNotifier
	notifierSet := p.s.exNotifier != nil
	if notifierSet {
		p.s.retrieved = true
	}
	p.s.mu.Unlock()

	close(p.s.done)
	if notifierSet {
		notifier(err)
	}
	return nil
}

// SetDismissNotifier installs the callback invoked at most once, on the
// future's first Dismiss call. Later dismisses are no-ops. Installing a new
// notifier after the promise is already fulfilled is a no-op — there is
// nothing left to dismiss.
func (p *Promise[T]) SetDismissNotifier(n func()) {
	p.s.mu.Lock()
	if p.s.satisfied {
		p.s.mu.Unlock()
		return
	}
	p.s.diNotifier = n
	fire := p.s.dismissed && !p.s.diFired
	if fire {
		p.s.diFired = true
	}
	p.s.mu.Unlock()
	if fire {
		n()
	}
}

// Dismissed reports whether the future's Dismiss has been called; providers
// use this to decide whether delivering a late value is still worthwhile.
func (p *Promise[T]) Dismissed() bool {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return p.s.dismissed
}
