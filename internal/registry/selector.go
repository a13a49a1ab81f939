package registry

import (
	"github.com/wago/wdx-core/internal/device"
	"github.com/wago/wdx-core/internal/model"
	"github.com/wago/wdx-core/internal/providerapi"
)

// matches reports whether sel claims inst, given the owning model and
// device (spec §4.5: "a selector matches (a) any device, (b) a device
// collection, or (c) a specific device, and selects parameters by (a)
// parameter-definition id, (b) feature name, or (c) class name").
func matches(sel providerapi.Selector, m *model.Model, dev *device.Device, inst *device.ParameterInstance) bool {
	if !matchesDevice(sel, dev) {
		return false
	}
	return matchesParameter(sel, m, inst)
}

func matchesDevice(sel providerapi.Selector, dev *device.Device) bool {
	switch sel.DeviceScope {
	case providerapi.DeviceScopeAny:
		return true
	case providerapi.DeviceScopeSpecific:
		return sel.DeviceID == dev.ID
	case providerapi.DeviceScopeCollection:
		return sel.CollectionName == dev.OrderNumber
	default:
		return false
	}
}

func matchesParameter(sel providerapi.Selector, m *model.Model, inst *device.ParameterInstance) bool {
	switch sel.ParamScope {
	case providerapi.ParamScopeID:
		return sel.ParameterID == inst.Definition.ID
	case providerapi.ParamScopeFeature:
		f, ok := m.Features[sel.FeatureName]
		if !ok {
			return false
		}
		for _, p := range f.ResolvedParameters {
			if p.ID == inst.Definition.ID {
				return true
			}
		}
		return false
	case providerapi.ParamScopeClass:
		classID, ok := m.ParameterOwner[inst.Definition.ID]
		if !ok {
			return false
		}
		return m.IsInstanceOf(classID, sel.ClassName)
	default:
		return false
	}
}
