// Package dispatch implements the batched read/write dispatcher of spec
// §4.3/§4.4: resolving targets against the live device graph, partitioning
// them by bound provider into portions, issuing provider calls
// concurrently, and integrating results back into a single response
// vector in deterministic, source-order sequence (spec §5).
package dispatch

import (
	"fmt"

	"github.com/wago/wdx-core/internal/device"
	"github.com/wago/wdx-core/internal/dispatcherr"
)

// Target addresses one parameter instance, either directly by id or by a
// device-path/parameter-path pair (spec §4.3: "a list of targets (by
// (parameter_id, instance_id, device_id) or by (device_path,
// parameter_path))").
type Target struct {
	ByID          bool
	ID            device.ParameterInstanceID
	DevicePath    string
	ParameterPath string
}

// ResolveTarget looks t up against store, returning the live instance or a
// per-item routing-error response (spec §4.3 step 1). Exported so
// internal/methodrun can resolve a method target the same way.
func ResolveTarget(store *device.Store, t Target) (*device.ParameterInstance, dispatcherr.Response) {
	var deviceID string
	if t.ByID {
		deviceID = t.ID.DeviceID
	} else {
		canon, err := device.NormalizeDevicePath(t.DevicePath)
		if err != nil {
			return nil, dispatcherr.Err(dispatcherr.StatusUnknownDevice, err.Error())
		}
		deviceID = canon
	}

	dev, ok := store.Get(deviceID)
	if !ok {
		return nil, dispatcherr.Err(dispatcherr.StatusUnknownDevice, fmt.Sprintf("device %q is not registered", deviceID))
	}

	if t.ByID {
		inst := dev.Instances.GetByID(t.ID)
		if inst == nil {
			return nil, dispatcherr.Err(dispatcherr.StatusUnknownParameterID, fmt.Sprintf("parameter id %d instance %d not found on device %q", t.ID.ParameterID, t.ID.InstanceID, deviceID))
		}
		return inst, dispatcherr.Success()
	}

	inst := dev.Instances.GetByPath(t.ParameterPath)
	if inst == nil {
		return nil, dispatcherr.Err(dispatcherr.StatusUnknownParameterPath, fmt.Sprintf("parameter path %q not found on device %q", t.ParameterPath, deviceID))
	}
	return inst, dispatcherr.Success()
}
