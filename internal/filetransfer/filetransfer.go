// Package filetransfer implements upload-id sessions (spec §4.7): a core
// side bookkeeping layer over each file_provider_i's read/write/get_file_info
// create operations, keyed by an opaque id the owning parameter provider
// hands back from create_parameter_upload_id.
package filetransfer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wago/wdx-core/internal/device"
	"github.com/wago/wdx-core/internal/dispatch"
	"github.com/wago/wdx-core/internal/metrics"
	"github.com/wago/wdx-core/internal/providerapi"
	"github.com/wago/wdx-core/pkg/logging"
)

// maxConcurrentUploadIDs is spec §4.7's "the limit is 100 concurrent upload
// ids; exceeding yields upload_id_max_exceeded."
const maxConcurrentUploadIDs = 100

// defaultSweepInterval mirrors internal/monitor's choice: the teacher's own
// token-store cleanup cadence (minutes) is too coarse for per-second
// upload-id timeouts.
const defaultSweepInterval = 1 * time.Second

// ErrUploadIDMaxExceeded is returned by CreateUploadID once
// maxConcurrentUploadIDs sessions are already live.
var ErrUploadIDMaxExceeded = fmt.Errorf("filetransfer: upload_id_max_exceeded")

// ErrUnknownUploadID is returned by any session operation against an id that
// does not exist (never registered, already lapsed, or already removed).
var ErrUnknownUploadID = fmt.Errorf("filetransfer: unknown_file_id")

// session is one live upload-id record: the owning provider (also the
// file_provider_i implementation, per this package's decision that a
// provider offering upload ids serves its own file operations directly),
// the context path it was created for, its timeout, and a last-access
// heartbeat refreshed by every successful operation.
type session struct {
	id          string
	owner       providerapi.ParameterProvider
	files       providerapi.FileProvider
	contextPath string
	timeout     time.Duration

	mu         sync.Mutex
	lastAccess time.Time
}

func (s *session) touch() {
	s.mu.Lock()
	s.lastAccess = time.Now()
	s.mu.Unlock()
}

func (s *session) lapsed(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastAccess) > s.timeout
}

// Manager owns every live upload-id session and sweeps lapsed ones on a
// background ticker, the same shape internal/monitor uses (itself grounded
// on the teacher's internal/oauth/token_store.go cleanup loop).
type Manager struct {
	store *device.Store

	mu       sync.Mutex
	sessions map[string]*session
	met      *metrics.Metrics

	sweepInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
}

// SetMetrics installs the collectors this manager reports upload-id
// population and lapses through. Optional.
func (m *Manager) SetMetrics(met *metrics.Metrics) {
	m.mu.Lock()
	m.met = met
	m.mu.Unlock()
}

// NewManager returns a manager with no sessions, with its sweep loop already
// running; call Stop when the service shuts down. Wire EvictProvider into
// registry.Registry.AddUnregisterHook so an unregistered provider's sessions
// are discarded (spec §4.5: "evicts any live upload ids it owned").
func NewManager(store *device.Store) *Manager {
	m := &Manager{
		store:         store,
		sessions:      map[string]*session{},
		sweepInterval: defaultSweepInterval,
		stop:          make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// CreateUploadID resolves contextParameterPath against the live device
// graph, asks its bound provider for a new upload id, and records the
// session. The provider must also implement providerapi.FileProvider to
// serve the session's read/write/get_file_info/create calls.
func (m *Manager) CreateUploadID(ctx context.Context, contextParameterPath string, timeoutSeconds int) (string, error) {
	m.mu.Lock()
	count := len(m.sessions)
	m.mu.Unlock()
	if count >= maxConcurrentUploadIDs {
		return "", ErrUploadIDMaxExceeded
	}

	inst, resp := dispatch.ResolveTarget(m.store, dispatch.Target{ParameterPath: contextParameterPath})
	if !resp.Status.IsSuccess() {
		return "", fmt.Errorf("filetransfer: %s does not resolve: %s", contextParameterPath, resp.Message)
	}
	if inst.Provider == nil {
		return "", fmt.Errorf("filetransfer: no provider is bound to %s", contextParameterPath)
	}
	files, ok := inst.Provider.(providerapi.FileProvider)
	if !ok {
		return "", fmt.Errorf("filetransfer: provider bound to %s does not implement file transfer", contextParameterPath)
	}

	f := inst.Provider.CreateParameterUploadID(ctx, contextParameterPath, timeoutSeconds)
	id, err := f.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("filetransfer: provider declined create_parameter_upload_id: %w", err)
	}

	sess := &session{
		id:          id,
		owner:       inst.Provider,
		files:       files,
		contextPath: contextParameterPath,
		timeout:     time.Duration(timeoutSeconds) * time.Second,
		lastAccess:  time.Now(),
	}

	m.mu.Lock()
	m.sessions[id] = sess
	met := m.met
	count = len(m.sessions)
	m.mu.Unlock()
	if met != nil {
		met.UploadIDsActive.Set(float64(count))
	}

	return id, nil
}

func (m *Manager) get(id string) (*session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Read serves file_read against id's session, refreshing its heartbeat on
// success (spec §4.7: "each successful read/write/info/create on the id
// refreshes the heartbeat").
func (m *Manager) Read(ctx context.Context, id string, offset, length int64) ([]byte, error) {
	sess, ok := m.get(id)
	if !ok {
		return nil, ErrUnknownUploadID
	}
	data, err := sess.files.Read(ctx, offset, length).Get(ctx)
	if err != nil {
		return nil, err
	}
	sess.touch()
	return data, nil
}

// Write serves file_write against id's session.
func (m *Manager) Write(ctx context.Context, id string, offset int64, data []byte) error {
	sess, ok := m.get(id)
	if !ok {
		return ErrUnknownUploadID
	}
	if _, err := sess.files.Write(ctx, offset, data).Get(ctx); err != nil {
		return err
	}
	sess.touch()
	return nil
}

// GetFileInfo serves get_file_info against id's session.
func (m *Manager) GetFileInfo(ctx context.Context, id string) (providerapi.FileInfo, error) {
	sess, ok := m.get(id)
	if !ok {
		return providerapi.FileInfo{}, ErrUnknownUploadID
	}
	info, err := sess.files.GetFileInfo(ctx).Get(ctx)
	if err != nil {
		return providerapi.FileInfo{}, err
	}
	sess.touch()
	return info, nil
}

// Create serves file create(capacity) against id's session.
func (m *Manager) Create(ctx context.Context, id string, capacity int64) error {
	sess, ok := m.get(id)
	if !ok {
		return ErrUnknownUploadID
	}
	if _, err := sess.files.Create(ctx, capacity).Get(ctx); err != nil {
		return err
	}
	sess.touch()
	return nil
}

// EvictProvider discards every session owned by provider without notifying
// it, intended as a registry.Registry unregister hook: a provider that just
// unregistered cannot be asked to acknowledge remove_parameter_upload_id.
func (m *Manager) EvictProvider(provider providerapi.ParameterProvider) {
	m.mu.Lock()
	for id, sess := range m.sessions {
		if sess.owner == provider {
			delete(m.sessions, id)
		}
	}
	met := m.met
	count := len(m.sessions)
	m.mu.Unlock()
	if met != nil {
		met.UploadIDsActive.Set(float64(count))
	}
}

// Cleanup drains every live session by invoking remove_parameter_upload_id
// on each owner concurrently and returns once all have acknowledged (spec
// §4.7: "cleanup() drains all upload ids ... and returns a future that
// resolves when all have acknowledged").
func (m *Manager) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	sessions := make([]*session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.sessions = map[string]*session{}
	met := m.met
	m.mu.Unlock()
	if met != nil {
		met.UploadIDsActive.Set(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sess := range sessions {
		sess := sess
		g.Go(func() error {
			_, err := sess.owner.RemoveParameterUploadID(gctx, sess.id, sess.contextPath).Get(gctx)
			return err
		})
	}
	return g.Wait()
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

// sweep evicts every lapsed session, asking its owner to acknowledge
// remove_parameter_upload_id on a background context (spec §4.7: "on lapse,
// the core calls remove_parameter_upload_id on the provider and discards the
// record").
func (m *Manager) sweep() {
	now := time.Now()
	m.mu.Lock()
	var lapsed []*session
	for id, sess := range m.sessions {
		if sess.lapsed(now) {
			lapsed = append(lapsed, sess)
			delete(m.sessions, id)
		}
	}
	met := m.met
	count := len(m.sessions)
	m.mu.Unlock()

	for _, sess := range lapsed {
		sess := sess
		go func() {
			if _, err := sess.owner.RemoveParameterUploadID(context.Background(), sess.id, sess.contextPath).Get(context.Background()); err != nil {
				logging.Warn("filetransfer", "provider failed to acknowledge remove_parameter_upload_id for lapsed id %s: %v", sess.id, err)
			}
		}()
	}
	if len(lapsed) > 0 {
		logging.Debug("filetransfer", "lapsed %d upload id(s) with no access inside their timeout window", len(lapsed))
		if met != nil {
			met.UploadIDsLapsed.Add(float64(len(lapsed)))
			met.UploadIDsActive.Set(float64(count))
		}
	}
}
