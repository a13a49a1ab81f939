// Package registry implements the provider registry and selector matching
// of spec §4.5: providers register an opaque identity plus a selector
// list, and the registry rescans the live device/instance graph on
// registration and on every model/description update, binding
// ParameterInstance.Provider for every match.
package registry

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/wago/wdx-core/internal/device"
	"github.com/wago/wdx-core/internal/model"
	"github.com/wago/wdx-core/internal/providerapi"
	"github.com/wago/wdx-core/pkg/logging"
)

// entry is one registered parameter provider: its opaque handle, the
// original provider the caller supplied, the effective provider actually
// bound to matching instances (the original, or a serialized wrapper), and
// the selector list cached at registration time.
type entry struct {
	handle    uuid.UUID
	original  providerapi.ParameterProvider
	effective providerapi.ParameterProvider
	serial    *serialParameterProvider // non-nil only in serialized mode
	selectors []providerapi.Selector
}

// Registry tracks every registered parameter provider and keeps the live
// device store's instance bindings in sync with their selectors.
type Registry struct {
	mu      sync.Mutex
	devices *device.Store
	model   *model.Model

	entries  map[uuid.UUID]*entry
	byOrigin map[providerapi.ParameterProvider]uuid.UUID

	unregisterHooks []func(providerapi.ParameterProvider)
}

// New returns a registry bound to devices, with no model yet loaded.
// Until SetModel installs a model, Rescan binds nothing, id-scoped
// selectors included.
func New(devices *device.Store) *Registry {
	return &Registry{
		devices:  devices,
		entries:  map[uuid.UUID]*entry{},
		byOrigin: map[providerapi.ParameterProvider]uuid.UUID{},
	}
}

// AddUnregisterHook registers fn to be called, with the original
// (unwrapped) provider, whenever that provider is unregistered. Used by
// internal/filetransfer to evict upload ids the provider owned (spec §4.5:
// "evicts any live upload ids it owned") without this package depending on
// filetransfer.
func (r *Registry) AddUnregisterHook(fn func(providerapi.ParameterProvider)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unregisterHooks = append(r.unregisterHooks, fn)
}

// SetModel installs the current live model and rescans every device's
// instances against every registered provider's selectors (spec §4.5: "on
// model/description updates, the registry rescans every instance").
func (r *Registry) SetModel(m *model.Model) {
	r.mu.Lock()
	r.model = m
	r.mu.Unlock()
	r.Rescan()
}

// RegisterParameterProvider registers provider with the selectors its
// GetProvidedParameters reports, optionally wrapping it in serialized mode,
// and immediately rescans the device graph for matches. Returns an opaque handle used to unregister.
func (r *Registry) RegisterParameterProvider(provider providerapi.ParameterProvider, serialized bool) (uuid.UUID, error) {
	selectors, err := provider.GetProvidedParameters()
	if err != nil {
		logging.Warn("registry", "provider failed GetProvidedParameters at registration, treating as provider_not_operational: %v", err)
	}

	e := &entry{
		handle:    uuid.New(),
		original:  provider,
		effective: provider,
		selectors: selectors,
	}
	if serialized {
		sp := newSerialParameterProvider(provider)
		e.serial = sp
		e.effective = sp
	}

	r.mu.Lock()
	r.entries[e.handle] = e
	r.byOrigin[provider] = e.handle
	r.mu.Unlock()

	r.Rescan()
	return e.handle, nil
}

// UnregisterParameterProvider removes the provider identified by handle,
// clearing every instance binding that pointed to it and running any
// registered unregister hooks.
func (r *Registry) UnregisterParameterProvider(handle uuid.UUID) error {
	r.mu.Lock()
	e, ok := r.entries[handle]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("registry: no provider registered with handle %s", handle)
	}
	delete(r.entries, handle)
	delete(r.byOrigin, e.original)
	hooks := append([]func(providerapi.ParameterProvider){}, r.unregisterHooks...)
	r.mu.Unlock()

	r.clearBindings(e.effective)
	if e.serial != nil {
		e.serial.close()
	}
	for _, hook := range hooks {
		hook(e.original)
	}
	return nil
}

// UnregisterParameterProviderByOrigin unregisters by the original,
// unwrapped provider pointer the caller originally supplied — the second
// way spec §4.5 requires unregistration to work ("the registry tracks both
// pointers so the caller can unregister by either").
func (r *Registry) UnregisterParameterProviderByOrigin(provider providerapi.ParameterProvider) error {
	r.mu.Lock()
	handle, ok := r.byOrigin[provider]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("registry: provider is not registered")
	}
	return r.UnregisterParameterProvider(handle)
}

func (r *Registry) clearBindings(provider providerapi.ParameterProvider) {
	for _, dev := range r.devices.All() {
		dev.Instances.ClearProvider(provider)
	}
}

// Rescan walks every registered device's instances against every registered
// provider's selectors and (re)binds matches. Called automatically by
// RegisterParameterProvider and SetModel; exposed for callers that apply a
// WDD after registration and need an explicit rebind pass.
func (r *Registry) Rescan() {
	r.mu.Lock()
	m := r.model
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	if m == nil {
		return
	}

	for _, dev := range r.devices.All() {
		for _, inst := range dev.Instances.GetAll() {
			for _, e := range entries {
				if matchesAny(e.selectors, m, dev, inst) {
					dev.Instances.SetProvider(inst.ID, e.effective)
					break
				}
			}
		}
	}
}

func matchesAny(selectors []providerapi.Selector, m *model.Model, dev *device.Device, inst *device.ParameterInstance) bool {
	for _, sel := range selectors {
		if matches(sel, m, dev, inst) {
			return true
		}
	}
	return false
}
