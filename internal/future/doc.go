// Package future implements the cancellable future/promise primitive used
// throughout wdx-core's provider plumbing (spec §4.1). A Promise is a
// single-writer, single-reader rendezvous that resolves with a value, an
// error, or a cooperative dismissal. Unlike the standard library's implicit
// "just use a channel" idiom, this type preserves three behaviors the
// dispatcher depends on:
//
//   - a late-installed notifier that fires immediately (and consumes the
//     result) if the value is already present,
//   - an idempotent Dismiss that fires its notifier at most once, and
//   - a WaitForAny that blocks a synchronous caller across a heterogeneous
//     set of futures without requiring every future to register a
//     permanent notifier.
//
// The dispatcher's hot path (internal/dispatch) never blocks on Get; it only
// installs notifiers, so state mutation for one request batch happens on
// exactly one goroutine at a time (the notifier-chaining contract of
// spec §4.3 step 7).
package future
