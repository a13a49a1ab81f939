package device

import (
	"fmt"
	"sync"
)

// Device is one registered head-station/kbus/rlb device: its identity plus
// the instance collection and class-instantiation bookkeeping created from
// its WDD (spec §3 lifecycle).
type Device struct {
	ID              string
	OrderNumber     string
	FirmwareVersion string

	Instances *InstanceCollection

	mu                  sync.Mutex
	classInstantiations map[string]map[uint16]*ClassInstantiation // class base path -> instance id -> record
	collectedFeatures   []string
}

// NewDevice returns a device with an empty instance collection, ready for
// WDD application.
func NewDevice(id, orderNumber, firmwareVersion string) *Device {
	return &Device{
		ID:                  id,
		OrderNumber:         orderNumber,
		FirmwareVersion:     firmwareVersion,
		Instances:           NewInstanceCollection(),
		classInstantiations: map[string]map[uint16]*ClassInstantiation{},
	}
}

// SetClassInstantiation records (or replaces) the class set an instance id
// of classBasePath currently declares.
func (d *Device) SetClassInstantiation(classBasePath string, rec ClassInstantiation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.classInstantiations[classBasePath] == nil {
		d.classInstantiations[classBasePath] = map[uint16]*ClassInstantiation{}
	}
	r := rec
	d.classInstantiations[classBasePath][rec.InstanceID] = &r
}

// SetCollectedFeatures records the WDD-declared feature set for the device
// (spec §3: device "owns ... collected_features").
func (d *Device) SetCollectedFeatures(features []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.collectedFeatures = append([]string(nil), features...)
}

// CollectedFeatures returns the device's WDD-declared feature set.
func (d *Device) CollectedFeatures() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.collectedFeatures...)
}

// ClassInstantiations returns every instance id recorded for classBasePath.
func (d *Device) ClassInstantiations(classBasePath string) []*ClassInstantiation {
	d.mu.Lock()
	defer d.mu.Unlock()
	byInstance := d.classInstantiations[classBasePath]
	out := make([]*ClassInstantiation, 0, len(byInstance))
	for _, rec := range byInstance {
		out = append(out, rec)
	}
	return out
}

// RemoveClassInstantiation drops one instance id of classBasePath (a
// class-instance reset, spec §4.4 consistency pass).
func (d *Device) RemoveClassInstantiation(classBasePath string, instanceID uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.classInstantiations[classBasePath], instanceID)
}

// Store holds every registered device (spec §3: "devices are created by
// register_devices and removed by unregister_devices").
type Store struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// NewStore returns an empty device store.
func NewStore() *Store {
	return &Store{devices: map[string]*Device{}}
}

// Register adds a device, returning an error if its id is already taken.
func (s *Store) Register(d *Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.devices[d.ID]; exists {
		return fmt.Errorf("device: %q is already registered", d.ID)
	}
	s.devices[d.ID] = d
	return nil
}

// Unregister removes a device and its entire instance collection.
func (s *Store) Unregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.devices, id)
}

// Get returns the device with the given id, or false if none is
// registered.
func (s *Store) Get(id string) (*Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.devices[id]
	return d, ok
}

// All returns every registered device.
func (s *Store) All() []*Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Device, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, d)
	}
	return out
}
