package device

import (
	"math"

	"github.com/wago/wdx-core/internal/model"
	"github.com/wago/wdx-core/internal/providerapi"
)

// DynamicPlaceholderInstanceID marks a parameter instance belonging to a
// dynamic class whose actual instance set is reported by the provider at
// read time rather than fixed by the WDD (spec §3, glossary "Dynamic
// class"). instance_id == 0 means "not a class instance" (scalar).
const DynamicPlaceholderInstanceID uint16 = math.MaxUint16

// ParameterInstanceID identifies one parameter instance.
type ParameterInstanceID struct {
	ParameterID uint32
	InstanceID  uint16
	DeviceID    string
}

// EqualsIgnoringDevice reports whether two ids name the same
// (parameter, instance) pair regardless of device, mirroring the original's
// value_declaration lookup helper.
func (id ParameterInstanceID) EqualsIgnoringDevice(other ParameterInstanceID) bool {
	return id.ParameterID == other.ParameterID && id.InstanceID == other.InstanceID
}

// ParameterInstance is a live, addressable parameter on a device: a
// reference to its (possibly override-cloned) definition, optionally a
// fixed value that shortcuts provider calls, and the provider currently
// bound to it (spec §3 "Parameter instance").
type ParameterInstance struct {
	ID         ParameterInstanceID
	Definition model.ParameterDefinition
	// BasePath is the owning class's base path, used to rebuild both the
	// request-facing and internal tree paths for this instance.
	BasePath string

	FixedValue                  *model.Value
	Provider                    providerapi.ParameterProvider
	StatusUnavailableIfNotProvided bool
}

// ValueDeclaration is a WDD-supplied initial value for one parameter
// instance, applied when the instance collection is populated.
type ValueDeclaration struct {
	ID                             ParameterInstanceID
	Value                          *model.Value
	StatusUnavailableIfNotProvided bool
}

func findValueDeclaration(values []ValueDeclaration, id ParameterInstanceID) (ValueDeclaration, bool) {
	for _, v := range values {
		if v.ID.EqualsIgnoringDevice(id) {
			return v, true
		}
	}
	return ValueDeclaration{}, false
}

// ClassInstantiation is the per-instance record of which classes an
// instance id of a class-instantiations parameter currently declares
// (spec §3 "Class instantiation"): declared in the WDD, or reported by a
// provider at read time for dynamic classes.
type ClassInstantiation struct {
	InstanceID        uint16
	Classes           []string
	AdditionalClasses []string
	// CollectedClasses is resolved_includes closure, re-derived against the
	// live model before being exposed (spec §3: "the core re-resolves its
	// collected_classes against the live model before exposing it").
	CollectedClasses []string
}
