// Package providerapi defines the contracts wdx-core consumes from backend
// providers (spec §6): parameter providers, file providers, and model/
// description/extension providers. These are interfaces the core calls
// into — concrete implementations (talking to kbus, rlb, or the head
// station) live outside this module's scope.
package providerapi

import (
	"context"

	"github.com/wago/wdx-core/internal/future"
	"github.com/wago/wdx-core/internal/model"
)

// Selector describes which parameters/devices a provider claims, as
// registered via ParameterProvider.GetProvidedParameters (spec §4.5).
type Selector struct {
	// Device scoping: exactly one of DeviceScope fields applies.
	DeviceScope    DeviceScope
	DeviceID       string   // used when DeviceScope == DeviceScopeSpecific
	CollectionName string   // used when DeviceScope == DeviceScopeCollection

	// Parameter scoping: exactly one of ParamScope fields applies.
	ParamScope  ParamScope
	ParameterID uint32 // used when ParamScope == ParamScopeID
	FeatureName string // used when ParamScope == ParamScopeFeature
	ClassName   string // used when ParamScope == ParamScopeClass
}

type DeviceScope int

const (
	DeviceScopeAny DeviceScope = iota
	DeviceScopeCollection
	DeviceScopeSpecific
)

type ParamScope int

const (
	ParamScopeID ParamScope = iota
	ParamScopeFeature
	ParamScopeClass
)

// ValueResponse is one positional slot of a get_parameter_values result:
// exactly one of Value or an error condition is meaningful.
type ValueResponse struct {
	Value      model.Value
	Handled    bool // false means "unhandled": the provider declined this id
	Unavailable bool
	Message    string
}

// SetRequest is one positional item of a set_parameter_values_connection_aware
// call.
type SetRequest struct {
	ParameterID uint32
	InstanceID  uint16
	Value       model.Value
}

// SetResponse mirrors one SetRequest.
type SetResponse struct {
	Success              bool
	ConnectionChangesDeferred bool
	Message              string
	DomainCode           string
}

// MethodInvocationResponse carries ordered out-arguments, positionally
// aligned with the method definition's OutArgs.
type MethodInvocationResponse struct {
	OutArgs []model.Value
	Message string
}

// ParameterProvider is the consumed contract of spec §6's
// parameter_provider_i: synchronous selector discovery plus future-returning
// batched read/write/invoke/upload-id operations. Implementations must
// tolerate concurrent calls unless registered in serialized mode (in which
// case the registry wraps them in a serial_parameter_provider, see
// internal/jobqueue and internal/registry).
type ParameterProvider interface {
	// GetProvidedParameters is synchronous per spec §6; errors here bring
	// the provider to provider_not_operational rather than failing a
	// request.
	GetProvidedParameters() ([]Selector, error)

	GetParameterValues(ctx context.Context, ids []ParameterKey) future.Future[[]ValueResponse]
	SetParameterValuesConnectionAware(ctx context.Context, requests []SetRequest, deferConnectionChanges bool) future.Future[[]SetResponse]
	InvokeMethod(ctx context.Context, methodID ParameterKey, inArgs []model.Value) future.Future[MethodInvocationResponse]

	CreateParameterUploadID(ctx context.Context, contextParameterPath string, timeoutSeconds int) future.Future[string]
	RemoveParameterUploadID(ctx context.Context, uploadID string, contextParameterPath string) future.Future[struct{}]
}

// ParameterKey identifies one parameter instance for a provider call.
type ParameterKey struct {
	ParameterID uint32
	InstanceID  uint16
	DeviceID    string
}

// FileInfo describes a file-transfer session's backing content (spec §4.7).
type FileInfo struct {
	Size     int64
	Capacity int64
}

// FileProvider is the consumed contract of spec §6/§4.7's file_provider_i.
type FileProvider interface {
	Read(ctx context.Context, offset, length int64) future.Future[[]byte]
	Write(ctx context.Context, offset int64, data []byte) future.Future[struct{}]
	GetFileInfo(ctx context.Context) future.Future[FileInfo]
	Create(ctx context.Context, capacity int64) future.Future[struct{}]
}

// DeviceDescriptor is one entry of ModelProvider.GetProvidedDevices: the
// selector a device-description/extension provider claims plus enough
// identity to request its WDD.
type DeviceDescriptor struct {
	DeviceID      string
	OrderNumber   string
	FirmwareVersion string
}

// DeviceExtension carries extension features/descriptions reported by
// get_device_extensions (spec §6), layered onto a device's base WDD.
type DeviceExtension struct {
	Features []model.FeatureDefinition
	WDDText  string
}

// ModelProvider is the consumed contract for WDM/WDD/extension discovery
// (spec §6's model-/description-/extension-provider contract).
type ModelProvider interface {
	GetModelInformation(ctx context.Context) (wdmText string, err error)
	GetProvidedDevices(ctx context.Context) ([]DeviceDescriptor, error)
	GetDeviceInformation(ctx context.Context, orderNumber, firmwareVersion string) (wddText string, err error)
	GetDeviceExtensions(ctx context.Context, deviceID string) ([]DeviceExtension, error)
}
