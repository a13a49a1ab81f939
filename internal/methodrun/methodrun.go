// Package methodrun implements method-invocation run objects (spec §4.8): a
// handle a caller polls for an asynchronous invocation's eventual response,
// identified by a base-36 monotonic counter and keyed together with the
// method it belongs to.
package methodrun

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wago/wdx-core/internal/device"
	"github.com/wago/wdx-core/internal/future"
	"github.com/wago/wdx-core/internal/metrics"
	"github.com/wago/wdx-core/internal/providerapi"
	"github.com/wago/wdx-core/pkg/logging"
)

// MaxRuns is spec §4.8's "the manager caps concurrent runs at 1000."
const MaxRuns = 1000

const defaultSweepInterval = 1 * time.Second

// ErrRunObjectMaxExceeded is returned by AddRunFromResponse/AddRunFromFuture
// once MaxRuns runs are already live.
var ErrRunObjectMaxExceeded = fmt.Errorf("methodrun: run_object_max_exceeded")

// ErrRunNotFound is returned by GetRun/RemoveRun when no run exists with the
// given id for the given method, or it belongs to a different method (spec
// §4.8: "lookup by (method_path, run_id) requires the path to match —
// otherwise the run is reported not-found").
var ErrRunNotFound = fmt.Errorf("methodrun: run not found")

// ReadyHandler is invoked, with the run's id, once a pending invocation
// resolves.
type ReadyHandler func(runID string)

// Run is one method invocation's run object: the method it belongs to, its
// timeout window, and (once resolved) the named response.
type Run struct {
	ID     string
	Method device.ParameterInstanceID

	TimeoutSpan time.Duration

	mu         sync.Mutex
	timeoutAt  time.Time
	timeoutSet bool
	response   *providerapi.MethodInvocationResponse
}

// TimeoutLeft reports how much of the run's timeout window remains. Before
// the window has started (a pending run created from a future that has not
// resolved yet) it reports the full span, mirroring the original's
// UINT64_MAX-timeout_time sentinel.
func (r *Run) TimeoutLeft() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.timeoutSet {
		return r.TimeoutSpan
	}
	left := time.Until(r.timeoutAt)
	if left < 0 {
		return 0
	}
	return left
}

// Response returns the run's invocation response and whether it has
// resolved yet.
func (r *Run) Response() (providerapi.MethodInvocationResponse, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.response == nil {
		return providerapi.MethodInvocationResponse{}, false
	}
	return *r.response, true
}

func (r *Run) lapsed(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timeoutSet && !now.Before(r.timeoutAt)
}

// Manager owns every live run object, capped at MaxRuns, with a background
// sweep evicting expired ones — the same ticker/mutex-map shape
// internal/monitor and internal/filetransfer use, grounded on the teacher's
// internal/oauth/token_store.go cleanup loop.
type Manager struct {
	mu     sync.Mutex
	runs   map[string]*Run
	nextID uint64
	met    *metrics.Metrics

	sweepInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
}

// SetMetrics installs the collectors this manager reports run-object
// population and lapses through. Optional.
func (m *Manager) SetMetrics(met *metrics.Metrics) {
	m.mu.Lock()
	m.met = met
	m.mu.Unlock()
}

// NewManager returns a manager with no runs, its id counter seeded from
// process start (spec §4.8: "an id derived from a base-36 monotonically
// increasing counter seeded from process-start"), with its sweep loop
// already running; call Stop when the service shuts down.
func NewManager() *Manager {
	m := &Manager{
		runs:          map[string]*Run{},
		nextID:        uint64(time.Now().Unix()),
		sweepInterval: defaultSweepInterval,
		stop:          make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

func (m *Manager) nextRunID() string {
	return strconv.FormatUint(atomic.AddUint64(&m.nextID, 1), 36)
}

// AddRunFromResponse records a run whose response is already known (spec
// §4.8: "created synchronously from a resolved response"); its timeout
// window starts immediately.
func (m *Manager) AddRunFromResponse(method device.ParameterInstanceID, timeoutSpan time.Duration, response providerapi.MethodInvocationResponse) (string, error) {
	m.mu.Lock()
	if len(m.runs) >= MaxRuns {
		m.mu.Unlock()
		return "", ErrRunObjectMaxExceeded
	}
	id := m.nextRunID()
	run := &Run{
		ID:          id,
		Method:      method,
		TimeoutSpan: timeoutSpan,
		timeoutAt:   time.Now().Add(timeoutSpan),
		timeoutSet:  true,
		response:    &response,
	}
	m.runs[id] = run
	met := m.met
	count := len(m.runs)
	m.mu.Unlock()
	if met != nil {
		met.MethodRunsActive.Set(float64(count))
	}
	return id, nil
}

// AddRunFromFuture records a pending run for an in-flight invocation; its
// timeout window only starts once invokeFuture resolves, at which point
// ready is called with the run's id (spec §4.8: "created ... asynchronously
// from a pending future, in which case a ready handler is called when the
// future resolves and the timeout window starts at that moment").
func (m *Manager) AddRunFromFuture(ctx context.Context, method device.ParameterInstanceID, timeoutSpan time.Duration, invokeFuture future.Future[providerapi.MethodInvocationResponse], ready ReadyHandler) (string, error) {
	m.mu.Lock()
	if len(m.runs) >= MaxRuns {
		m.mu.Unlock()
		return "", ErrRunObjectMaxExceeded
	}
	id := m.nextRunID()
	run := &Run{ID: id, Method: method, TimeoutSpan: timeoutSpan}
	m.runs[id] = run
	met := m.met
	count := len(m.runs)
	m.mu.Unlock()
	if met != nil {
		met.MethodRunsActive.Set(float64(count))
	}

	settle := func(response providerapi.MethodInvocationResponse) {
		run.mu.Lock()
		run.timeoutAt = time.Now().Add(timeoutSpan)
		run.timeoutSet = true
		run.response = &response
		run.mu.Unlock()
		ready(id)
	}

	onErr := func(err error) {
		logging.Warn("methodrun", "no exception is expected on an invoke future delivered to a run object, got: %v", err)
		settle(providerapi.MethodInvocationResponse{Message: err.Error()})
	}

	if err := invokeFuture.SetExceptionNotifier(onErr); err != nil {
		onErr(err)
		return id, nil
	}
	if err := invokeFuture.SetNotifier(settle); err != nil && err != future.ErrAlreadyRetrieved {
		onErr(err)
	}
	return id, nil
}

// GetRun looks up a run by (method, run_id); the method must match exactly,
// per spec §4.8.
func (m *Manager) GetRun(method device.ParameterInstanceID, runID string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok || run.Method != method {
		return nil, ErrRunNotFound
	}
	return run, nil
}

// GetRuns returns every live run belonging to method, in no particular
// order.
func (m *Manager) GetRuns(method device.ParameterInstanceID) []*Run {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Run
	for _, run := range m.runs {
		if run.Method == method {
			out = append(out, run)
		}
	}
	return out
}

// RemoveRun deletes a run by (method, run_id); the method must match.
func (m *Manager) RemoveRun(method device.ParameterInstanceID, runID string) error {
	m.mu.Lock()
	run, ok := m.runs[runID]
	if !ok || run.Method != method {
		m.mu.Unlock()
		return ErrRunNotFound
	}
	delete(m.runs, runID)
	met := m.met
	count := len(m.runs)
	m.mu.Unlock()
	if met != nil {
		met.MethodRunsActive.Set(float64(count))
	}
	return nil
}

// CleanRuns evicts every run whose timeout has lapsed. Exposed for explicit
// invocation alongside the background sweep.
func (m *Manager) CleanRuns() {
	m.sweep()
}

// MaxRunsReached reports whether the manager is at capacity.
func (m *Manager) MaxRunsReached() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs) >= MaxRuns
}

// Stop halts the background sweep; safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Manager) sweepLoop() {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stop:
			return
		}
	}
}

func (m *Manager) sweep() {
	now := time.Now()
	m.mu.Lock()
	var evicted int
	for id, run := range m.runs {
		if run.lapsed(now) {
			delete(m.runs, id)
			evicted++
		}
	}
	met := m.met
	count := len(m.runs)
	m.mu.Unlock()

	if evicted > 0 {
		logging.Debug("methodrun", "evicted %d expired run object(s)", evicted)
		if met != nil {
			met.MethodRunsLapsed.Add(float64(evicted))
			met.MethodRunsActive.Set(float64(count))
		}
	}
}
