package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wago/wdx-core/internal/device"
	"github.com/wago/wdx-core/internal/dispatcherr"
	"github.com/wago/wdx-core/internal/model"
	"github.com/wago/wdx-core/internal/providerapi"
)

func buildTwoParamDevice(t *testing.T) (*model.Model, *device.Store, *device.Device) {
	t.Helper()
	maxVal := model.Value{Type: model.ValueTypeUint32, Raw: float64(100)}
	m := model.NewModel("TestModel", "1.0.0")
	m.Classes["Tests"] = &model.ClassDefinition{
		ID:       "Tests",
		BasePath: "Tests",
		OwnParameters: []model.ParameterDefinition{
			{ID: 100, Path: "A", ValueType: model.ValueTypeString, Writeable: true},
			{ID: 101, Path: "B", ValueType: model.ValueTypeUint32, Writeable: true, Overrideables: model.Overrideables{Max: &maxVal}},
		},
	}
	require.NoError(t, m.Finalize())

	dev := device.NewDevice("0-0", "", "")
	defA, _ := m.ParameterDefinitionFor("Tests", 100)
	defB, _ := m.ParameterDefinitionFor("Tests", 101)
	require.NoError(t, dev.Instances.AddInstances("0-0", 0, "Tests", []device.ParameterInstance{{Definition: defA}, {Definition: defB}}, nil, false))

	store := device.NewStore()
	require.NoError(t, store.Register(dev))
	return m, store, dev
}

// TestWriteValidationFailureRejectsSiblingsAsOtherInvalid reproduces spec's
// set-with-validation-failure scenario: one provider bound to two ids,
// writing [{100,"blub"},{101,999}] where 101 exceeds its max. The whole
// portion is rejected before it ever reaches the provider: index 0 (no
// validation issue of its own) becomes other_invalid_value_in_set and
// index 1 keeps its specific validation error.
func TestWriteValidationFailureRejectsSiblingsAsOtherInvalid(t *testing.T) {
	m, store, dev := buildTwoParamDevice(t)

	called := false
	p := &scriptedProvider{onSet: func(reqs []providerapi.SetRequest) []providerapi.SetResponse {
		called = true
		return make([]providerapi.SetResponse, len(reqs))
	}}
	require.True(t, dev.Instances.SetProvider(device.ParameterInstanceID{ParameterID: 100, InstanceID: 0, DeviceID: "0-0"}, p))
	require.True(t, dev.Instances.SetProvider(device.ParameterInstanceID{ParameterID: 101, InstanceID: 0, DeviceID: "0-0"}, p))

	ctx := context.Background()
	items := []WriteItem{
		{Target: Target{ByID: true, ID: device.ParameterInstanceID{ParameterID: 100, InstanceID: 0, DeviceID: "0-0"}}, Value: model.Value{Type: model.ValueTypeString, Raw: "blub"}},
		{Target: Target{ByID: true, ID: device.ParameterInstanceID{ParameterID: 101, InstanceID: 0, DeviceID: "0-0"}}, Value: model.Value{Type: model.ValueTypeUint32, Raw: float64(999)}},
	}
	f := Write(ctx, store, m, items, false)
	results, err := f.Get(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, dispatcherr.StatusOtherInvalidValueInSet, results[0].Status)
	require.Equal(t, dispatcherr.StatusInvalidValue, results[1].Status)
	require.False(t, called, "provider must never be dispatched when its portion is invalid")
}

func buildInstantiationsDevice(t *testing.T) (*model.Model, *device.Store, *device.Device, uint32) {
	t.Helper()
	baseID := uint32(1)
	m := model.NewModel("TestModel", "1.0.0")
	m.Classes["Base"] = &model.ClassDefinition{
		ID:       "Base",
		BaseID:   &baseID,
		BasePath: "Slot",
		OwnParameters: []model.ParameterDefinition{
			{ID: baseID, Path: "", ValueType: model.ValueTypeInstantiations, Rank: model.RankScalar, Writeable: true},
			{ID: 10, Path: "P1", ValueType: model.ValueTypeString, Writeable: true},
			{ID: 11, Path: "P2", ValueType: model.ValueTypeString, Writeable: true},
		},
	}
	require.NoError(t, m.Finalize())

	dev := device.NewDevice("0-0", "", "")
	baseDef, _ := m.ParameterDefinitionFor("Base", baseID)
	dev.Instances.AddClassInstance("0-0", "Slot", device.ParameterInstance{Definition: baseDef}, nil, false)

	p1Def, _ := m.ParameterDefinitionFor("Base", 10)
	p2Def, _ := m.ParameterDefinitionFor("Base", 11)
	require.NoError(t, dev.Instances.AddInstances("0-0", 1, "Slot", []device.ParameterInstance{{Definition: p1Def}, {Definition: p2Def}}, nil, false))
	require.NoError(t, dev.Instances.AddInstances("0-0", 2, "Slot", []device.ParameterInstance{{Definition: p1Def}, {Definition: p2Def}}, nil, false))

	store := device.NewStore()
	require.NoError(t, store.Register(dev))
	return m, store, dev, baseID
}

// TestWriteInstantiationsMissingParameterRejectsReset reproduces spec's
// instantiations-reset-with-missing-value scenario: the batch declares two
// new instances (1, 2) of class Base but omits P2 for instance 2. The reset
// item is rejected with missing_parameter_for_instantiation and its
// siblings in the same provider portion become other_invalid_value_in_set.
func TestWriteInstantiationsMissingParameterRejectsReset(t *testing.T) {
	m, store, dev, baseID := buildInstantiationsDevice(t)

	p := &scriptedProvider{onSet: func(reqs []providerapi.SetRequest) []providerapi.SetResponse {
		t.Fatal("provider must never be dispatched when the consistency pass rejects its portion")
		return nil
	}}
	require.True(t, dev.Instances.SetProvider(device.ParameterInstanceID{ParameterID: baseID, InstanceID: 0, DeviceID: "0-0"}, p))
	for _, instanceID := range []uint16{1, 2} {
		for _, paramID := range []uint32{10, 11} {
			require.True(t, dev.Instances.SetProvider(device.ParameterInstanceID{ParameterID: paramID, InstanceID: instanceID, DeviceID: "0-0"}, p))
		}
	}

	resetValue := model.Value{Type: model.ValueTypeInstantiations, Class: []model.ClassInstantiationValue{
		{InstanceID: 1, Classes: []string{"Base"}},
		{InstanceID: 2, Classes: []string{"Base"}},
	}}

	ctx := context.Background()
	items := []WriteItem{
		{Target: Target{ByID: true, ID: device.ParameterInstanceID{ParameterID: baseID, InstanceID: 0, DeviceID: "0-0"}}, Value: resetValue},
		{Target: Target{ByID: true, ID: device.ParameterInstanceID{ParameterID: 10, InstanceID: 1, DeviceID: "0-0"}}, Value: model.Value{Type: model.ValueTypeString, Raw: "a"}},
		{Target: Target{ByID: true, ID: device.ParameterInstanceID{ParameterID: 11, InstanceID: 1, DeviceID: "0-0"}}, Value: model.Value{Type: model.ValueTypeString, Raw: "b"}},
		{Target: Target{ByID: true, ID: device.ParameterInstanceID{ParameterID: 10, InstanceID: 2, DeviceID: "0-0"}}, Value: model.Value{Type: model.ValueTypeString, Raw: "c"}},
		// P2 for instance 2 intentionally omitted.
	}
	f := Write(ctx, store, m, items, false)
	results, err := f.Get(ctx)
	require.NoError(t, err)
	require.Len(t, results, 4)
	require.Equal(t, dispatcherr.StatusMissingParameterForInstantiation, results[0].Status)
	require.Equal(t, dispatcherr.StatusOtherInvalidValueInSet, results[1].Status)
	require.Equal(t, dispatcherr.StatusOtherInvalidValueInSet, results[2].Status)
	require.Equal(t, dispatcherr.StatusOtherInvalidValueInSet, results[3].Status)
}
