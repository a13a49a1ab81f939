// Package monitor implements monitoring lists (spec §4.6): a named,
// timeout-lapsed subscription to a fixed set of parameter targets, backed
// by a cached batched read.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wago/wdx-core/internal/device"
	"github.com/wago/wdx-core/internal/dispatch"
	"github.com/wago/wdx-core/internal/future"
	"github.com/wago/wdx-core/internal/metrics"
	"github.com/wago/wdx-core/internal/model"
	"github.com/wago/wdx-core/pkg/logging"
)

// defaultSweepInterval is how often the background lapse check runs,
// grounded on the teacher's oauth token store's cleanupLoop (5 minutes is
// too coarse for per-second monitoring timeouts, so this package sweeps
// far more often).
const defaultSweepInterval = 1 * time.Second

// List is one monitoring list: an ordered, fixed target set, its timeout,
// and the last response cache (spec §4.6: "an ordered vector of instance
// pointers, a timeout in seconds ..., and a result cache").
type List struct {
	ID      uint64
	Targets []dispatch.Target
	Timeout time.Duration

	mu         sync.Mutex
	lastAccess time.Time
	cache      []dispatch.ReadResult
}

func (l *List) touch() {
	l.mu.Lock()
	l.lastAccess = time.Now()
	l.mu.Unlock()
}

func (l *List) lapsed(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return now.Sub(l.lastAccess) > l.Timeout
}

// Manager owns every live monitoring list and sweeps lapsed ones on a
// background ticker, mirroring the teacher's token-store cleanup-loop
// shape (internal/oauth/token_store.go: NewTokenStore starts
// go ts.cleanupLoop(), Stop closes a done channel).
type Manager struct {
	store *device.Store

	mu     sync.Mutex
	model  *model.Model
	lists  map[uint64]*List
	nextID uint64
	met    *metrics.Metrics

	sweepInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
}

// SetMetrics installs the collectors this manager reports monitoring-list
// population and lapses through. Optional; a manager with none installed
// simply skips instrumentation.
func (m *Manager) SetMetrics(met *metrics.Metrics) {
	m.mu.Lock()
	m.met = met
	m.mu.Unlock()
}

// NewManager returns a manager with no lists, with its sweep loop already
// running; call Stop when the service shuts down.
func NewManager(store *device.Store) *Manager {
	m := &Manager{
		store:         store,
		lists:         map[uint64]*List{},
		sweepInterval: defaultSweepInterval,
		stop:          make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// SetModel installs the model to resolve new targets and re-derive
// instantiations values against (spec §3: the live model is swapped
// wholesale on reload, never mutated in place).
func (m *Manager) SetModel(mdl *model.Model) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.model = mdl
}

// CreateMonitoringList validates targets, rejects a zero timeout (spec
// §4.6: "0 = one-shot, rejected at creation"), and assigns an unsigned
// 64-bit id.
func (m *Manager) CreateMonitoringList(targets []dispatch.Target, timeoutSeconds int) (*List, error) {
	if timeoutSeconds <= 0 {
		return nil, fmt.Errorf("monitor: a monitoring list requires a positive timeout_seconds (0 is one-shot and rejected)")
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("monitor: a monitoring list requires at least one target")
	}

	for _, t := range targets {
		if _, resp := dispatch.ResolveTarget(m.store, t); !resp.Status.IsSuccess() {
			return nil, fmt.Errorf("monitor: target does not resolve: %s", resp.Message)
		}
	}

	id := atomic.AddUint64(&m.nextID, 1)
	l := &List{
		ID:         id,
		Targets:    append([]dispatch.Target(nil), targets...),
		Timeout:    time.Duration(timeoutSeconds) * time.Second,
		lastAccess: time.Now(),
	}

	m.mu.Lock()
	m.lists[id] = l
	met := m.met
	count := len(m.lists)
	m.mu.Unlock()
	if met != nil {
		met.MonitoringListsActive.Set(float64(count))
	}

	return l, nil
}

// GetValuesForMonitoringList behaves like a batched read restricted to the
// list's fixed targets (spec §4.6), refreshing the list's last-access
// heartbeat so the lapse sweep leaves it alone.
func (m *Manager) GetValuesForMonitoringList(ctx context.Context, id uint64) (future.Future[[]dispatch.ReadResult], bool) {
	m.mu.Lock()
	l, ok := m.lists[id]
	mdl := m.model
	m.mu.Unlock()
	if !ok {
		return future.Future[[]dispatch.ReadResult]{}, false
	}

	l.touch()
	f := dispatch.Read(ctx, m.store, mdl, l.Targets, false)

	p := future.New[[]dispatch.ReadResult]()
	_ = f.SetNotifier(func(results []dispatch.ReadResult) {
		l.mu.Lock()
		l.cache = results
		l.mu.Unlock()
		_ = p.SetValue(results)
	})
	_ = f.SetExceptionNotifier(func(err error) {
		_ = p.SetException(err)
	})
	return p.Future(), true
}

// DeleteMonitoringList removes a list, reporting whether it existed.
func (m *Manager) DeleteMonitoringList(id uint64) bool {
	m.mu.Lock()
	if _, ok := m.lists[id]; !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.lists, id)
	met := m.met
	count := len(m.lists)
	m.mu.Unlock()
	if met != nil {
		met.MonitoringListsActive.Set(float64(count))
	}
	return true
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
	var lapsed []uint64
	for id, l := range m.lists {
		if l.lapsed(now) {
			lapsed = append(lapsed, id)
		}
	}
	for _, id := range lapsed {
		delete(m.lists, id)
	}
	met := m.met
	count := len(m.lists)
	m.mu.Unlock()

	if len(lapsed) > 0 {
		logging.Debug("monitor", "lapsed %d monitoring list(s) with no access inside their timeout window", len(lapsed))
		if met != nil {
			met.MonitoringListsLapsed.Add(float64(len(lapsed)))
			met.MonitoringListsActive.Set(float64(count))
		}
	}
}
